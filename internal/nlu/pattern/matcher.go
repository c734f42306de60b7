package pattern

import (
	"sort"
	"strings"

	"booking-assistant-nlu/internal/nlu"
)

const (
	wholeWordScore = 0.3
	substringScore = 0.2
	keywordCap     = 0.95
	regexScore     = 0.95
)

// IntentScore is one intent candidate produced by the matcher.
type IntentScore struct {
	Tag        nlu.IntentTag
	Confidence float64
}

// Matcher scores intents with keyword and regex tables. It performs no I/O
// and holds no mutable state; a single instance is shared across requests.
type Matcher struct {
	tables *Tables
}

// NewMatcher creates a Matcher over the given tables.
func NewMatcher(tables *Tables) *Matcher {
	return &Matcher{tables: tables}
}

// Match scores every intent against the message and returns candidates with
// non-zero confidence, sorted descending. Ties keep table encounter order.
func (m *Matcher) Match(message string) []IntentScore {
	lower := strings.ToLower(message)

	var scores []IntentScore
	for _, rule := range m.tables.Intents {
		score := 0.0
		for _, keyword := range rule.Keywords {
			if containsWholeWord(lower, keyword) {
				score += wholeWordScore
			} else if strings.Contains(lower, keyword) {
				score += substringScore
			}
		}
		if score > keywordCap {
			score = keywordCap
		}

		for _, re := range rule.Regexes {
			if re.MatchString(message) {
				if score < regexScore {
					score = regexScore
				}
				break
			}
		}

		if score > 0 {
			scores = append(scores, IntentScore{Tag: rule.Tag, Confidence: score})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})
	return scores
}

// containsWholeWord reports whether message contains keyword bounded by
// non-word characters. Multi-word keywords match as phrases.
func containsWholeWord(message, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(message[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		leftOK := start == 0 || !isWordByte(message[start-1])
		rightOK := end == len(message) || !isWordByte(message[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
		if idx >= len(message) {
			return false
		}
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
