// Package normalizer converts raw entity strings into their canonical
// representations: ISO dates, 24-hour times, closed action vocabulary,
// canonical location and identifier strings. Every normalizer is total: it
// never panics and reports failure through its second return value.
package normalizer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"booking-assistant-nlu/internal/nlu"
)

// Normalizer holds the timezone and clock used for date math. All methods
// are pure given a fixed clock and are safe for concurrent use.
type Normalizer struct {
	location *time.Location
	now      func() time.Time
}

// New creates a Normalizer for the given IANA timezone, e.g. "Asia/Kolkata".
func New(timezone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	n := &Normalizer{location: loc}
	n.now = func() time.Time { return time.Now().In(loc) }
	return n, nil
}

// NewWithClock creates a Normalizer with an injected clock. Used by tests
// and by callers that need deterministic date resolution.
func NewWithClock(timezone string, now func() time.Time) (*Normalizer, error) {
	n, err := New(timezone)
	if err != nil {
		return nil, err
	}
	n.now = now
	return n, nil
}

// Now returns the normalizer's current time in its timezone.
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.location)
}

var timeOfDayDefaults = map[string]string{
	"morning":   "10:00",
	"afternoon": "14:00",
	"evening":   "18:00",
	"night":     "20:00",
}

var (
	re12Hour = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(a\.?m\.?|p\.?m\.?)`)
	re24Hour = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// Time converts a raw time phrase into 24-hour "HH:MM" form.
// Cascade: 12-hour clock → 24-hour clock → coarse time-of-day keywords.
func (n *Normalizer) Time(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := re12Hour.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 {
			return "", false
		}
		meridiem := strings.ToLower(strings.ReplaceAll(m[3], ".", ""))
		if meridiem == "pm" && hour != 12 {
			hour += 12
		}
		if meridiem == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}

	if m := re24Hour.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}

	lower := strings.ToLower(raw)
	for keyword, canonical := range timeOfDayDefaults {
		if strings.Contains(lower, keyword) {
			return canonical, true
		}
	}

	return "", false
}

// actionFamilies lists the closed action vocabulary in match priority order.
// Explicit action families come before the generic list family so a phrase
// like "cancel my booking" is never read as a list request.
var actionFamilies = []struct {
	canonical string
	keywords  []string
}{
	{"cancel", []string{"cancel", "cancellation", "call off"}},
	{"reschedule", []string{"reschedule", "postpone", "move"}},
	{"modify", []string{"modify", "update", "edit", "change"}},
	{"book", []string{"book", "schedule", "arrange", "order", "need", "want"}},
	{"list", []string{"list", "show", "view", "display", "see", "check", "get"}},
}

var canonicalActions = map[string]bool{
	"book": true, "cancel": true, "reschedule": true, "modify": true, "list": true,
}

// Action maps a raw action phrase onto the canonical action vocabulary
// (book, cancel, reschedule, modify, list). Idempotent on canonical values.
func (n *Normalizer) Action(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", false
	}
	if canonicalActions[lower] {
		return lower, true
	}
	for _, family := range actionFamilies {
		for _, keyword := range family.keywords {
			if containsWord(lower, keyword) {
				return family.canonical, true
			}
		}
	}
	return "", false
}

var knownCities = map[string]string{
	"bangalore": "Bangalore", "bengaluru": "Bangalore",
	"mumbai": "Mumbai", "bombay": "Mumbai",
	"delhi": "Delhi", "new delhi": "Delhi",
	"hyderabad": "Hyderabad", "chennai": "Chennai", "madras": "Chennai",
	"pune": "Pune", "kolkata": "Kolkata", "calcutta": "Kolkata",
	"ahmedabad": "Ahmedabad", "jaipur": "Jaipur", "gurgaon": "Gurgaon",
	"gurugram": "Gurgaon", "noida": "Noida", "lucknow": "Lucknow",
}

var rePincode = regexp.MustCompile(`\b(\d{6})\b`)

// KnownCities returns the lowercase city names the normalizer recognizes.
func KnownCities() []string {
	cities := make([]string, 0, len(knownCities))
	for name := range knownCities {
		cities = append(cities, name)
	}
	sort.Strings(cities)
	return cities
}

// Location canonicalizes a raw location string: a bare 6-digit pincode stays
// a pincode, known city names map to their canonical spelling, and anything
// else is whitespace-cleaned and kept as supplied.
func (n *Normalizer) Location(raw string) (string, bool) {
	cleaned := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")
	if cleaned == "" {
		return "", false
	}

	if rePincode.MatchString(cleaned) && len(strings.Fields(cleaned)) == 1 {
		return rePincode.FindString(cleaned), true
	}

	if city, ok := knownCities[strings.ToLower(cleaned)]; ok {
		return city, true
	}

	return cleaned, true
}

var (
	reBookingCanonical = regexp.MustCompile(`(?i)\b(ORD[A-Z0-9]{8})\b`)
	reBookingHyphen    = regexp.MustCompile(`(?i)\b(?:ORD|BK|BOOK)[-_]?(\d{4,8})\b`)
	reBookingBare      = regexp.MustCompile(`\b(\d{4,6})\b`)
)

// BookingID canonicalizes booking identifiers to the ORD-prefixed 8-character
// form. Legacy hyphenated and bare numeric forms are reconstructed by
// zero-padding the numeric part.
func (n *Normalizer) BookingID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := reBookingCanonical.FindStringSubmatch(raw); m != nil {
		return strings.ToUpper(m[1]), true
	}
	if m := reBookingHyphen.FindStringSubmatch(raw); m != nil {
		return "ORD" + padBookingNumber(m[1]), true
	}
	if m := reBookingBare.FindStringSubmatch(raw); m != nil {
		return "ORD" + padBookingNumber(m[1]), true
	}

	return "", false
}

func padBookingNumber(digits string) string {
	for len(digits) < 8 {
		digits = "0" + digits
	}
	return digits
}

// serviceTypes maps service keywords to canonical service tags.
var serviceTypes = map[string]string{
	"ac": "ac", "air conditioner": "ac", "air conditioning": "ac", "a/c": "ac", "hvac": "ac",
	"plumbing": "plumbing", "plumber": "plumbing", "pipe": "plumbing", "tap": "plumbing", "leak": "plumbing",
	"electrical": "electrical", "electrician": "electrical", "wiring": "electrical", "switchboard": "electrical",
	"cleaning": "cleaning", "deep clean": "cleaning", "housekeeping": "cleaning", "sofa clean": "cleaning",
	"carpentry": "carpentry", "carpenter": "carpentry", "furniture": "carpentry",
	"painting": "painting", "painter": "painting", "paint": "painting",
	"pest control": "pest_control", "pest": "pest_control", "cockroach": "pest_control", "termite": "pest_control",
	"appliance": "appliance_repair", "refrigerator": "appliance_repair", "fridge": "appliance_repair",
	"washing machine": "appliance_repair", "microwave": "appliance_repair", "geyser": "appliance_repair",
	"salon": "salon", "haircut": "salon", "spa": "salon", "massage": "salon",
	"gardening": "gardening", "gardener": "gardening", "lawn": "gardening",
}

// ServiceType maps a raw service phrase onto the canonical service tag.
// Longer keywords are preferred so "washing machine" wins over "machine".
func (n *Normalizer) ServiceType(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", false
	}
	if canonical, ok := serviceTypes[lower]; ok {
		return canonical, true
	}
	best := ""
	bestKeyword := ""
	for keyword, canonical := range serviceTypes {
		if !containsWord(lower, keyword) {
			continue
		}
		if len(keyword) > len(bestKeyword) || (len(keyword) == len(bestKeyword) && keyword < bestKeyword) {
			best = canonical
			bestKeyword = keyword
		}
	}
	if best != "" {
		return best, true
	}
	return "", false
}

var ratingWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
}

var reRatingDigit = regexp.MustCompile(`\b([1-5])\b`)

// Rating extracts a 1–5 rating from digits or number words.
func (n *Normalizer) Rating(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if m := reRatingDigit.FindStringSubmatch(lower); m != nil {
		return m[1], true
	}
	for word, digit := range ratingWords {
		if containsWord(lower, word) {
			return digit, true
		}
	}
	return "", false
}

// passthroughTags have no defined normalizer; raw values survive unchanged.
var passthroughTags = map[nlu.EntityTag]bool{
	nlu.EntityIssueType:          true,
	nlu.EntityPaymentType:        true,
	nlu.EntityRefundType:         true,
	nlu.EntityDescription:        true,
	nlu.EntityNotes:              true,
	nlu.EntityName:               true,
	nlu.EntityPhone:              true,
	nlu.EntityEmail:              true,
	nlu.EntityPolicyType:         true,
	nlu.EntityInfoType:           true,
	nlu.EntityStatusFilter:       true,
	nlu.EntitySortBy:             true,
	nlu.EntityLimit:              true,
	nlu.EntityUrgency:            true,
	nlu.EntityFrequency:          true,
	nlu.EntityQuantity:           true,
	nlu.EntityPreferredStaff:     true,
	nlu.EntityLandmark:           true,
	nlu.EntityAddressLine:        true,
	nlu.EntityTransactionID:      true,
	nlu.EntityServiceSubcategory: true,
}

// Normalize applies the tag-specific normalizer to one raw value.
func (n *Normalizer) Normalize(tag nlu.EntityTag, raw string) (string, bool) {
	switch tag {
	case nlu.EntityDate:
		return n.Date(raw)
	case nlu.EntityTime:
		return n.Time(raw)
	case nlu.EntityAction:
		return n.Action(raw)
	case nlu.EntityLocation, nlu.EntityCity, nlu.EntityPincode:
		return n.Location(raw)
	case nlu.EntityBookingID, nlu.EntityOrderID:
		return n.BookingID(raw)
	case nlu.EntityServiceType:
		return n.ServiceType(raw)
	case nlu.EntityRating:
		return n.Rating(raw)
	default:
		if passthroughTags[tag] {
			return strings.TrimSpace(raw), true
		}
		return "", false
	}
}

// All normalizes a full raw-entity map. Two repairs run before per-field
// normalization: an order_id key without a booking_id is renamed, and a date
// value carrying a time-of-day keyword is split into date and time values.
// Entities whose normalization fails are dropped; passthrough tags survive
// unchanged.
func (n *Normalizer) All(raw map[nlu.EntityTag]string) map[nlu.EntityTag]string {
	if len(raw) == 0 {
		return nil
	}

	repaired := make(map[nlu.EntityTag]string, len(raw))
	for tag, value := range raw {
		repaired[tag] = value
	}

	if v, ok := repaired[nlu.EntityOrderID]; ok {
		if _, hasBooking := repaired[nlu.EntityBookingID]; !hasBooking {
			repaired[nlu.EntityBookingID] = v
		}
		delete(repaired, nlu.EntityOrderID)
	}

	if dateVal, ok := repaired[nlu.EntityDate]; ok {
		lower := strings.ToLower(dateVal)
		for keyword := range timeOfDayDefaults {
			if containsWord(lower, keyword) {
				if _, hasTime := repaired[nlu.EntityTime]; !hasTime {
					repaired[nlu.EntityTime] = keyword
				}
				stripped := strings.Join(strings.Fields(strings.ReplaceAll(lower, keyword, " ")), " ")
				repaired[nlu.EntityDate] = stripped
				break
			}
		}
	}

	out := make(map[nlu.EntityTag]string, len(repaired))
	for tag, value := range repaired {
		if canonical, ok := n.Normalize(tag, value); ok && canonical != "" {
			out[tag] = canonical
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// containsWord reports whether s contains w as a whole word.
func containsWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		leftOK := start == 0 || !isWordChar(s[start-1])
		rightOK := end == len(s) || !isWordChar(s[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
		if idx >= len(s) {
			return false
		}
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
