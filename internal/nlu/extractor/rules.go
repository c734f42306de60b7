package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/internal/nlu/normalizer"
)

var (
	reBookingCanonical = regexp.MustCompile(`(?i)\b(ORD[A-Z0-9]{8})\b`)
	reBookingPrefixed  = regexp.MustCompile(`(?i)\b(?:ORD|BK|BOOK)[-_]?\d{4,8}\b`)
	reBareDigits       = regexp.MustCompile(`^\d{4,6}$`)
	rePincode          = regexp.MustCompile(`\b\d{6}\b`)
	rePureDigits       = regexp.MustCompile(`^\d+$`)
	reTransactionID    = regexp.MustCompile(`(?i)\b(TXN[A-Z0-9]{6,12}|UTR\d{10,16})\b`)
	reLetters          = regexp.MustCompile(`[a-zA-Z]`)
)

var issueKeywords = map[string]string{
	"late": "late_arrival", "never came": "no_show", "no show": "no_show",
	"didn't come": "no_show", "did not come": "no_show",
	"damaged": "damage", "broke": "damage", "damage": "damage",
	"rude": "behavior", "misbehaved": "behavior", "unprofessional": "behavior",
	"incomplete": "incomplete_work", "half done": "incomplete_work",
	"poor quality": "quality", "bad quality": "quality", "not working": "quality",
}

var paymentKeywords = map[string]string{
	"upi": "upi", "gpay": "upi", "phonepe": "upi", "paytm": "upi",
	"credit card": "card", "debit card": "card", "card": "card",
	"net banking": "netbanking", "netbanking": "netbanking",
	"cash": "cash", "wallet": "wallet",
}

var refundKeywords = map[string]string{
	"full refund": "full", "full": "full", "everything": "full",
	"partial": "partial", "partial refund": "partial", "half": "partial",
	"wallet": "wallet_credit", "credit": "wallet_credit",
}

var policyKeywords = map[string]string{
	"cancellation": "cancellation", "cancel": "cancellation",
	"refund": "refund", "reschedule": "rescheduling", "rescheduling": "rescheduling",
	"payment": "payment", "warranty": "warranty", "guarantee": "warranty",
}

var statusKeywords = map[string]string{
	"upcoming": "upcoming", "scheduled": "upcoming", "future": "upcoming",
	"completed": "completed", "done": "completed", "past": "completed",
	"cancelled": "cancelled", "canceled": "cancelled",
	"active": "active", "ongoing": "active", "all": "all",
}

var sortKeywords = map[string]string{
	"newest": "date_desc", "latest": "date_desc", "recent": "date_desc",
	"oldest": "date_asc", "earliest": "date_asc",
}

// patternExtract applies the tag-specific pattern rule. A numbered menu
// reply resolves against the options shown regardless of tag.
func (e *Extractor) patternExtract(ctx context.Context, message string, tag nlu.EntityTag, fctx *FollowUpContext) *nlu.EntityExtractionResult {
	if r := e.numberedOption(message, tag, fctx); r != nil {
		return r
	}

	switch tag {
	case nlu.EntityAction:
		return e.extractAction(message)
	case nlu.EntityDate:
		return e.extractDate(message)
	case nlu.EntityTime:
		return e.extractTime(message)
	case nlu.EntityLocation:
		return e.extractLocation(message)
	case nlu.EntityPincode:
		return e.extractPincode(message)
	case nlu.EntityBookingID, nlu.EntityOrderID:
		return e.extractBookingID(message, tag)
	case nlu.EntityServiceType:
		return e.extractServiceType(ctx, message)
	case nlu.EntityTransactionID:
		return e.extractTransactionID(message)
	case nlu.EntityRating:
		return e.extractRating(message)
	case nlu.EntityIssueType:
		return e.extractKeyword(message, tag, issueKeywords)
	case nlu.EntityPaymentType:
		return e.extractKeyword(message, tag, paymentKeywords)
	case nlu.EntityRefundType:
		return e.extractKeyword(message, tag, refundKeywords)
	case nlu.EntityPolicyType:
		return e.extractKeyword(message, tag, policyKeywords)
	case nlu.EntityStatusFilter:
		return e.extractKeyword(message, tag, statusKeywords)
	case nlu.EntitySortBy:
		return e.extractKeyword(message, tag, sortKeywords)
	case nlu.EntityLimit:
		return e.extractLimit(message)
	case nlu.EntityDescription:
		return e.extractDescription(message)
	default:
		return nil
	}
}

// numberedOption resolves a bare number against the menu the assistant last
// showed.
func (e *Extractor) numberedOption(message string, tag nlu.EntityTag, fctx *FollowUpContext) *nlu.EntityExtractionResult {
	if fctx == nil || len(fctx.Options) == 0 {
		return nil
	}
	trimmed := strings.TrimRight(strings.TrimSpace(message), ".")
	if !rePureDigits.MatchString(trimmed) {
		return nil
	}
	idx, err := strconv.Atoi(trimmed)
	if err != nil || idx < 1 || idx > len(fctx.Options) {
		return nil
	}
	value := fctx.Options[idx-1]
	normalized, ok := e.norm.Normalize(tag, value)
	if !ok {
		normalized = value
	}
	return &nlu.EntityExtractionResult{
		Tag:             tag,
		RawValue:        trimmed,
		NormalizedValue: normalized,
		Confidence:      confidenceExact,
		Method:          nlu.MethodNumberedOption,
		Metadata:        map[string]any{"option": value},
	}
}

func (e *Extractor) extractAction(message string) *nlu.EntityExtractionResult {
	action, ok := e.pat.ExtractAction(message)
	if !ok {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             nlu.EntityAction,
		RawValue:        message,
		NormalizedValue: action,
		Confidence:      confidenceStrong,
		Method:          nlu.MethodPattern,
	}
}

func (e *Extractor) extractDate(message string) *nlu.EntityExtractionResult {
	if phrase, ok := e.pat.ExtractDatePhrase(message); ok {
		if normalized, ok := e.norm.Date(phrase); ok {
			return &nlu.EntityExtractionResult{
				Tag:             nlu.EntityDate,
				RawValue:        phrase,
				NormalizedValue: normalized,
				Confidence:      confidenceMedium,
				Method:          nlu.MethodPattern,
			}
		}
	}
	// short replies like "the 15th" have no recognizable phrase but may
	// still parse as a whole
	if len(strings.Fields(message)) <= 4 {
		if normalized, ok := e.norm.Date(message); ok {
			return &nlu.EntityExtractionResult{
				Tag:             nlu.EntityDate,
				RawValue:        message,
				NormalizedValue: normalized,
				Confidence:      confidenceLiberal,
				Method:          nlu.MethodHeuristic,
			}
		}
	}
	return nil
}

func (e *Extractor) extractTime(message string) *nlu.EntityExtractionResult {
	if phrase, ok := e.pat.ExtractTimePhrase(message); ok {
		if normalized, ok := e.norm.Time(phrase); ok {
			return &nlu.EntityExtractionResult{
				Tag:             nlu.EntityTime,
				RawValue:        phrase,
				NormalizedValue: normalized,
				Confidence:      confidenceMedium,
				Method:          nlu.MethodPattern,
			}
		}
	}
	return nil
}

// extractLocation cascades from the most to the least structured form:
// a comma-separated address with a pincode, a bare pincode reply, a pincode
// inside a sentence, a known city, and finally a short free-text area name.
func (e *Extractor) extractLocation(message string) *nlu.EntityExtractionResult {
	pincode := rePincode.FindString(message)

	if strings.Count(message, ",") >= 2 && pincode != "" {
		cleaned := strings.Join(strings.Fields(message), " ")
		metadata := map[string]any{"pincode": pincode}
		if city := e.knownCityIn(message); city != "" {
			metadata["city"] = city
		}
		return &nlu.EntityExtractionResult{
			Tag:             nlu.EntityLocation,
			RawValue:        message,
			NormalizedValue: cleaned,
			Confidence:      confidenceStrong,
			Method:          nlu.MethodPattern,
			Metadata:        metadata,
		}
	}

	if pincode != "" {
		confidence := confidenceStrong
		if strings.TrimSpace(message) == pincode {
			confidence = confidenceExact
		}
		var metadata map[string]any
		if city := e.knownCityIn(message); city != "" {
			metadata = map[string]any{"city": city}
		}
		return &nlu.EntityExtractionResult{
			Tag:             nlu.EntityLocation,
			RawValue:        message,
			NormalizedValue: pincode,
			Confidence:      confidence,
			Method:          nlu.MethodPattern,
			Metadata:        metadata,
		}
	}

	if city := e.knownCityIn(message); city != "" {
		return &nlu.EntityExtractionResult{
			Tag:             nlu.EntityLocation,
			RawValue:        message,
			NormalizedValue: city,
			Confidence:      confidenceMedium,
			Method:          nlu.MethodPattern,
		}
	}

	// a short reply to "where?" is probably an area name
	if words := strings.Fields(message); len(words) <= 2 && reLetters.MatchString(message) {
		if normalized, ok := e.norm.Location(message); ok {
			return &nlu.EntityExtractionResult{
				Tag:             nlu.EntityLocation,
				RawValue:        message,
				NormalizedValue: normalized,
				Confidence:      confidenceHeuristic,
				Method:          nlu.MethodHeuristic,
			}
		}
	}
	return nil
}

func (e *Extractor) extractPincode(message string) *nlu.EntityExtractionResult {
	pincode := rePincode.FindString(message)
	if pincode == "" {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             nlu.EntityPincode,
		RawValue:        message,
		NormalizedValue: pincode,
		Confidence:      confidenceExact,
		Method:          nlu.MethodPattern,
	}
}

// extractBookingID recognizes the canonical ORD form at full confidence,
// prefixed legacy forms below it, and a bare 4-6 digit reply lowest, since
// bare digits could be anything.
func (e *Extractor) extractBookingID(message string, tag nlu.EntityTag) *nlu.EntityExtractionResult {
	trimmed := strings.TrimSpace(message)

	if m := reBookingCanonical.FindString(message); m != "" {
		return e.bookingResult(tag, m, confidenceExact, nlu.MethodPattern)
	}
	if m := reBookingPrefixed.FindString(message); m != "" {
		return e.bookingResult(tag, m, confidenceMedium, nlu.MethodPattern)
	}
	if reBareDigits.MatchString(trimmed) {
		return e.bookingResult(tag, trimmed, confidenceHeuristic, nlu.MethodHeuristic)
	}
	return nil
}

func (e *Extractor) bookingResult(tag nlu.EntityTag, raw string, confidence float64, method nlu.Method) *nlu.EntityExtractionResult {
	normalized, ok := e.norm.BookingID(raw)
	if !ok {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             tag,
		RawValue:        raw,
		NormalizedValue: normalized,
		Confidence:      confidence,
		Method:          method,
	}
}

// extractServiceType consults the catalog resolver first; a confident
// catalog hit carries the resolved identifiers in its metadata. The keyword
// dictionary is the fallback.
func (e *Extractor) extractServiceType(ctx context.Context, message string) *nlu.EntityExtractionResult {
	if e.catalog != nil {
		res, err := e.catalog.Resolve(ctx, message)
		if err == nil && res.Resolved && res.Confidence >= patternShortCircuit {
			normalized, ok := e.norm.ServiceType(res.Name)
			if !ok {
				normalized = strings.ToLower(res.Name)
			}
			return &nlu.EntityExtractionResult{
				Tag:             nlu.EntityServiceType,
				RawValue:        message,
				NormalizedValue: normalized,
				Confidence:      res.Confidence,
				Method:          nlu.MethodCatalogResolver,
				Metadata: map[string]any{
					"catalog_name":   res.Name,
					"category_id":    res.CategoryID,
					"subcategory_id": res.SubcategoryID,
					"rate_card_id":   res.RateCardID,
				},
			}
		}
	}

	if normalized, ok := e.norm.ServiceType(message); ok {
		return &nlu.EntityExtractionResult{
			Tag:             nlu.EntityServiceType,
			RawValue:        message,
			NormalizedValue: normalized,
			Confidence:      confidenceModerate,
			Method:          nlu.MethodPattern,
		}
	}
	return nil
}

func (e *Extractor) extractTransactionID(message string) *nlu.EntityExtractionResult {
	m := reTransactionID.FindString(message)
	if m == "" {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             nlu.EntityTransactionID,
		RawValue:        m,
		NormalizedValue: strings.ToUpper(m),
		Confidence:      confidenceExact,
		Method:          nlu.MethodPattern,
	}
}

func (e *Extractor) extractRating(message string) *nlu.EntityExtractionResult {
	normalized, ok := e.norm.Rating(message)
	if !ok {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             nlu.EntityRating,
		RawValue:        message,
		NormalizedValue: normalized,
		Confidence:      confidenceStrong,
		Method:          nlu.MethodPattern,
	}
}

func (e *Extractor) extractKeyword(message string, tag nlu.EntityTag, dict map[string]string) *nlu.EntityExtractionResult {
	lower := strings.ToLower(message)
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
	if best == "" {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             tag,
		RawValue:        bestKeyword,
		NormalizedValue: best,
		Confidence:      confidenceModerate,
		Method:          nlu.MethodPattern,
	}
}

func (e *Extractor) extractLimit(message string) *nlu.EntityExtractionResult {
	trimmed := strings.TrimSpace(message)
	fields := strings.Fields(trimmed)
	for _, f := range fields {
		if rePureDigits.MatchString(f) {
			if v, err := strconv.Atoi(f); err == nil && v > 0 && v <= 100 {
				return &nlu.EntityExtractionResult{
					Tag:             nlu.EntityLimit,
					RawValue:        f,
					NormalizedValue: f,
					Confidence:      confidenceStrong,
					Method:          nlu.MethodPattern,
				}
			}
		}
	}
	return nil
}

// extractDescription accepts nearly anything, because when the assistant
// asked "describe the problem" the whole reply is the answer.
func (e *Extractor) extractDescription(message string) *nlu.EntityExtractionResult {
	trimmed := strings.TrimSpace(message)
	if len(strings.Fields(trimmed)) < 2 && len(trimmed) < 3 {
		return nil
	}
	return &nlu.EntityExtractionResult{
		Tag:             nlu.EntityDescription,
		RawValue:        trimmed,
		NormalizedValue: trimmed,
		Confidence:      confidenceLiberal,
		Method:          nlu.MethodHeuristic,
	}
}

func (e *Extractor) knownCityIn(message string) string {
	lower := strings.ToLower(message)
	for _, city := range normalizer.KnownCities() {
		if containsWholeWord(lower, city) {
			if canonical, ok := e.norm.Location(city); ok {
				return canonical
			}
		}
	}
	return ""
}

func containsWholeWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		leftOK := start == 0 || !isWordByte(s[start-1])
		rightOK := end == len(s) || !isWordByte(s[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
		if idx >= len(s) {
			return false
		}
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
