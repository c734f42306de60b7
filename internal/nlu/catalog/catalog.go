// Package catalog resolves free-text service mentions against the service
// catalog, tolerating typos and partial names via fuzzy matching.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sahilm/fuzzy"
)

// Resolution is the outcome of resolving a service mention.
type Resolution struct {
	Resolved      bool    `json:"resolved"`
	Confidence    float64 `json:"confidence"`
	Method        string  `json:"method"` // "exact" or "fuzzy"
	CategoryID    string  `json:"category_id,omitempty"`
	SubcategoryID string  `json:"subcategory_id,omitempty"`
	RateCardID    string  `json:"rate_card_id,omitempty"`
	Name          string  `json:"name,omitempty"`
}

// Resolver resolves free text to a catalog entry.
type Resolver interface {
	Resolve(ctx context.Context, text string) (*Resolution, error)
}

// Entry is one resolvable catalog row.
type Entry struct {
	Name          string
	CategoryID    string
	SubcategoryID string
	RateCardID    string
	Aliases       []string
}

// FuzzyResolver resolves against an in-memory catalog using ranked fuzzy
// matching. The catalog is immutable after construction; the result cache is
// the only mutable state and is concurrency-safe.
type FuzzyResolver struct {
	entries []Entry
	names   []string // search corpus: names then aliases, index-aligned with lookup
	lookup  []int    // names index -> entries index
	cache   *expirable.LRU[string, *Resolution]
}

var _ Resolver = (*FuzzyResolver)(nil)

// NewFuzzyResolver builds a resolver over the given entries.
func NewFuzzyResolver(entries []Entry) *FuzzyResolver {
	r := &FuzzyResolver{
		entries: entries,
		cache:   expirable.NewLRU[string, *Resolution](512, nil, 10*time.Minute),
	}
	for i, entry := range entries {
		r.names = append(r.names, strings.ToLower(entry.Name))
		r.lookup = append(r.lookup, i)
		for _, alias := range entry.Aliases {
			r.names = append(r.names, strings.ToLower(alias))
			r.lookup = append(r.lookup, i)
		}
	}
	return r
}

// Resolve matches text against the catalog. Exact name or alias matches win
// at full confidence; otherwise the best fuzzy match is returned with
// confidence scaled by match quality. Unresolvable text yields
// Resolved=false, never an error.
func (r *FuzzyResolver) Resolve(ctx context.Context, text string) (*Resolution, error) {
	query := strings.ToLower(strings.TrimSpace(text))
	if query == "" {
		return &Resolution{Resolved: false}, nil
	}

	if cached, ok := r.cache.Get(query); ok {
		return cached, nil
	}

	res := r.resolve(query)
	r.cache.Add(query, res)
	return res, nil
}

func (r *FuzzyResolver) resolve(query string) *Resolution {
	for i, name := range r.names {
		if name == query {
			return r.resolution(r.lookup[i], 1.0, "exact")
		}
	}

	matches := fuzzy.Find(query, r.names)
	if len(matches) == 0 {
		return &Resolution{Resolved: false}
	}

	best := matches[0]
	// fuzzy scores grow with match quality; scale against the query length
	// so short sloppy matches don't masquerade as confident ones.
	confidence := scoreToConfidence(best.Score, len(query))
	if confidence < 0.5 {
		return &Resolution{Resolved: false}
	}
	return r.resolution(r.lookup[best.Index], confidence, "fuzzy")
}

func (r *FuzzyResolver) resolution(entryIdx int, confidence float64, method string) *Resolution {
	entry := r.entries[entryIdx]
	return &Resolution{
		Resolved:      true,
		Confidence:    confidence,
		Method:        method,
		CategoryID:    entry.CategoryID,
		SubcategoryID: entry.SubcategoryID,
		RateCardID:    entry.RateCardID,
		Name:          entry.Name,
	}
}

// scoreToConfidence maps a fuzzy match score into [0,1]. A perfect
// contiguous match of an n-char query scores roughly n-1 bonus points plus
// firsts; anything at or above that maps near 0.95.
func scoreToConfidence(score, queryLen int) float64 {
	if queryLen == 0 || score < 0 {
		return 0
	}
	ideal := float64(queryLen * 8)
	c := 0.5 + 0.45*float64(score)/ideal
	if c > 0.95 {
		c = 0.95
	}
	if c < 0 {
		c = 0
	}
	return c
}

// DefaultEntries is the built-in service catalog used when the caller does
// not supply one.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "AC Repair", CategoryID: "cat_ac", SubcategoryID: "sub_ac_repair", RateCardID: "rc_ac_repair", Aliases: []string{"ac service", "air conditioner repair", "ac not cooling"}},
		{Name: "AC Installation", CategoryID: "cat_ac", SubcategoryID: "sub_ac_install", RateCardID: "rc_ac_install", Aliases: []string{"ac install", "new ac setup"}},
		{Name: "Deep Home Cleaning", CategoryID: "cat_cleaning", SubcategoryID: "sub_deep_clean", RateCardID: "rc_deep_clean", Aliases: []string{"deep clean", "full house cleaning"}},
		{Name: "Sofa Cleaning", CategoryID: "cat_cleaning", SubcategoryID: "sub_sofa_clean", RateCardID: "rc_sofa_clean", Aliases: []string{"sofa shampoo", "couch cleaning"}},
		{Name: "Bathroom Cleaning", CategoryID: "cat_cleaning", SubcategoryID: "sub_bathroom_clean", RateCardID: "rc_bathroom_clean", Aliases: []string{"bathroom deep clean"}},
		{Name: "Pipe Leakage Fix", CategoryID: "cat_plumbing", SubcategoryID: "sub_pipe_leak", RateCardID: "rc_pipe_leak", Aliases: []string{"leaking pipe", "pipe repair", "tap leakage"}},
		{Name: "Drain Unblocking", CategoryID: "cat_plumbing", SubcategoryID: "sub_drain", RateCardID: "rc_drain", Aliases: []string{"blocked drain", "clogged sink"}},
		{Name: "Switchboard Repair", CategoryID: "cat_electrical", SubcategoryID: "sub_switchboard", RateCardID: "rc_switchboard", Aliases: []string{"switch repair", "socket repair"}},
		{Name: "Fan Installation", CategoryID: "cat_electrical", SubcategoryID: "sub_fan_install", RateCardID: "rc_fan_install", Aliases: []string{"ceiling fan fitting"}},
		{Name: "Cockroach Control", CategoryID: "cat_pest", SubcategoryID: "sub_cockroach", RateCardID: "rc_cockroach", Aliases: []string{"cockroach treatment", "pest control"}},
		{Name: "Termite Control", CategoryID: "cat_pest", SubcategoryID: "sub_termite", RateCardID: "rc_termite", Aliases: []string{"termite treatment"}},
		{Name: "Washing Machine Repair", CategoryID: "cat_appliance", SubcategoryID: "sub_washing_machine", RateCardID: "rc_washing_machine", Aliases: []string{"washer repair"}},
		{Name: "Refrigerator Repair", CategoryID: "cat_appliance", SubcategoryID: "sub_fridge", RateCardID: "rc_fridge", Aliases: []string{"fridge repair", "fridge not cooling"}},
		{Name: "Geyser Repair", CategoryID: "cat_appliance", SubcategoryID: "sub_geyser", RateCardID: "rc_geyser", Aliases: []string{"water heater repair"}},
		{Name: "Interior Painting", CategoryID: "cat_painting", SubcategoryID: "sub_interior_paint", RateCardID: "rc_interior_paint", Aliases: []string{"wall painting", "house painting"}},
		{Name: "Salon At Home", CategoryID: "cat_salon", SubcategoryID: "sub_salon_home", RateCardID: "rc_salon_home", Aliases: []string{"haircut at home", "home salon"}},
	}
}
