package pattern

import (
	"regexp"
	"strings"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/internal/nlu/normalizer"
)

// Extractor pulls raw entity values out of a single message with keyword
// dictionaries and regexes, then canonicalizes each hit through the
// normalizer. Rules are independent; any tag may stay unset.
type Extractor struct {
	norm *normalizer.Normalizer
}

// NewExtractor creates an Extractor using the given normalizer.
func NewExtractor(norm *normalizer.Normalizer) *Extractor {
	return &Extractor{norm: norm}
}

var (
	reExplicitAction = regexp.MustCompile(`(?i)\b(cancel|cancellation|reschedule|postpone|modify|edit|book|schedule|arrange)\b`)
	reUpdateAction   = regexp.MustCompile(`(?i)\b(update|change)\b.{0,20}\b(booking|appointment|time|date|slot|address)\b`)
	reListAction     = regexp.MustCompile(`(?i)\b(list|show|view|display|check|see|get)\s+(?:my\s+|all\s+|me\s+)?(bookings|appointments|orders|booking history)\b`)
	reListSuffix     = regexp.MustCompile(`(?i)\b(bookings|appointments|orders)\s+(list|history|so far)\b`)

	reDatePhrase = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bday after tomorrow\b`),
		regexp.MustCompile(`(?i)\b(today|tomorrow|tonight|tmrw)\b`),
		regexp.MustCompile(`(?i)\bnext (week|month)\b`),
		regexp.MustCompile(`(?i)\bin \d+ (days?|weeks?)\b`),
		regexp.MustCompile(`(?i)\b(?:next |this |on |coming )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\s+\d{1,2}(?:st|nd|rd|th)?(?:\s*,?\s*\d{4})?\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)(?:\s*,?\s*\d{4})?\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?\b`),
	}

	reTimePhrase = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d{1,2}(?:[:.]\d{2})?\s*(?:a\.?m\.?|p\.?m\.?)`),
		regexp.MustCompile(`\b(?:[01]?\d|2[0-3]):[0-5]\d\b`),
		regexp.MustCompile(`(?i)\b(morning|afternoon|evening|night)\b`),
	}

	rePincodeToken = regexp.MustCompile(`\b\d{6}\b`)

	reBookingToken = regexp.MustCompile(`(?i)\b(ORD[A-Z0-9]{8}|(?:ORD|BK|BOOK)[-_]\d{4,8})\b`)

	reTransaction = regexp.MustCompile(`(?i)\b(TXN[A-Z0-9]{6,12}|UTR\d{10,16})\b`)

	reRatingPhrase = regexp.MustCompile(`(?i)\b([1-5])\s*(?:star|stars|/5|out of 5)\b`)
)

var issueTypes = map[string]string{
	"late": "late_arrival", "never came": "no_show", "no show": "no_show",
	"didn't come": "no_show", "did not come": "no_show",
	"damaged": "damage", "broke": "damage", "damage": "damage",
	"rude": "behavior", "misbehaved": "behavior", "unprofessional": "behavior",
	"incomplete": "incomplete_work", "half done": "incomplete_work",
	"poor quality": "quality", "bad quality": "quality", "not working": "quality",
}

var paymentTypes = map[string]string{
	"upi": "upi", "gpay": "upi", "phonepe": "upi", "paytm": "upi",
	"credit card": "card", "debit card": "card", "card": "card",
	"net banking": "netbanking", "netbanking": "netbanking",
	"cash": "cash", "wallet": "wallet",
}

// ExtractAction resolves the action vocabulary from a full message.
// Explicit action keywords are checked strictly before the list pattern
// family, so "cancel my booking" is never read as a list request.
func (e *Extractor) ExtractAction(message string) (string, bool) {
	if m := reExplicitAction.FindStringSubmatch(message); m != nil {
		return e.normAction(m[1])
	}
	if reUpdateAction.MatchString(message) {
		return "modify", true
	}
	if reListAction.MatchString(message) || reListSuffix.MatchString(message) {
		return "list", true
	}
	return "", false
}

func (e *Extractor) normAction(raw string) (string, bool) {
	canonical, ok := e.norm.Action(raw)
	if !ok {
		return "", false
	}
	return canonical, true
}

// ExtractDatePhrase finds the first date-like span in the message.
func (e *Extractor) ExtractDatePhrase(message string) (string, bool) {
	for _, re := range reDatePhrase {
		if m := re.FindString(message); m != "" {
			return m, true
		}
	}
	return "", false
}

// ExtractTimePhrase finds the first time-like span in the message.
func (e *Extractor) ExtractTimePhrase(message string) (string, bool) {
	for _, re := range reTimePhrase {
		if m := re.FindString(message); m != "" {
			return m, true
		}
	}
	return "", false
}

// ExtractRaw runs every entity rule against the message and returns the
// normalized entity map. Hits whose normalization fails are dropped; tags
// without a normalizer pass through raw.
func (e *Extractor) ExtractRaw(message string) map[nlu.EntityTag]string {
	raw := make(map[nlu.EntityTag]string)

	if action, ok := e.ExtractAction(message); ok {
		raw[nlu.EntityAction] = action
	}

	if service, ok := e.norm.ServiceType(message); ok {
		raw[nlu.EntityServiceType] = service
	}

	if phrase, ok := e.ExtractDatePhrase(message); ok {
		raw[nlu.EntityDate] = phrase
	}
	if phrase, ok := e.ExtractTimePhrase(message); ok {
		raw[nlu.EntityTime] = phrase
	}

	if m := reBookingToken.FindString(message); m != "" {
		raw[nlu.EntityBookingID] = m
	}
	if m := reTransaction.FindString(message); m != "" {
		raw[nlu.EntityTransactionID] = m
	}

	if m := rePincodeToken.FindString(message); m != "" {
		raw[nlu.EntityLocation] = m
	} else if city := e.findKnownCity(message); city != "" {
		raw[nlu.EntityLocation] = city
	}

	if m := reRatingPhrase.FindStringSubmatch(message); m != nil {
		raw[nlu.EntityRating] = m[1]
	}

	lower := strings.ToLower(message)
	if issue := matchKeywordDict(lower, issueTypes); issue != "" {
		raw[nlu.EntityIssueType] = issue
	}
	if payment := matchKeywordDict(lower, paymentTypes); payment != "" {
		raw[nlu.EntityPaymentType] = payment
	}

	return e.norm.All(raw)
}

func (e *Extractor) findKnownCity(message string) string {
	lower := strings.ToLower(message)
	for _, city := range normalizer.KnownCities() {
		if containsWholeWord(lower, city) {
			return city
		}
	}
	return ""
}

// matchKeywordDict returns the canonical value of the longest matching
// keyword, preferring longer (more specific) keys.
func matchKeywordDict(lower string, dict map[string]string) string {
	best := ""
	bestKeyword := ""
	for keyword, canonical := range dict {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if len(keyword) > len(bestKeyword) || (len(keyword) == len(bestKeyword) && keyword < bestKeyword) {
			best = canonical
			bestKeyword = keyword
		}
	}
	return best
}
