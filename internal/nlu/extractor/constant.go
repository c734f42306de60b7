package extractor

// Log prefixes
const (
	LogPrefixExtract = "internal.nlu.extractor.ExtractFromFollowUp"
)

// Confidence levels assigned by the pattern rules. Pattern hits at or above
// patternShortCircuit skip the LLM entirely.
const (
	patternShortCircuit = 0.7

	confidenceExact     = 0.95
	confidenceStrong    = 0.9
	confidenceMedium    = 0.85
	confidenceModerate  = 0.8
	confidenceLiberal   = 0.7
	confidenceHeuristic = 0.6

	// LLM extractions below this confidence are discarded entirely.
	llmConfidenceFloor = 0.5
)

// notFoundSentinel is what the model must return when the entity is absent.
const notFoundSentinel = "NOT_FOUND"

const (
	PromptExtractSystem = `You extract one specific piece of information from a user's reply
in a home-services booking conversation. Return JSON only:
{"value": "<the extracted value verbatim>", "confidence": <0.0-1.0>}
If the reply does not contain the requested information, return
{"value": "NOT_FOUND", "confidence": 0}. Never invent a value.`

	PromptExtractUser = `The assistant asked the user for: %s

Recent conversation:
%s
User reply: "%s"

Extract the %s from the user reply.`
)

const extractTemperature = 0.0

// entityDescriptions phrase each tag for the extraction prompt.
var entityDescriptions = map[string]string{
	"action":         "the booking action (book, cancel, reschedule, modify, or list)",
	"service_type":   "the type of home service",
	"date":           "the date",
	"time":           "the time of day",
	"location":       "the location, address, or pincode",
	"booking_id":     "the booking or order identifier",
	"transaction_id": "the payment transaction identifier",
	"issue_type":     "the kind of problem being reported",
	"payment_type":   "the payment method",
	"refund_type":    "the kind of refund wanted",
	"rating":         "the rating from 1 to 5",
	"description":    "the description of the issue or request",
	"policy_type":    "which policy is being asked about",
	"info_type":      "what information is being asked for",
	"status_filter":  "the booking status to filter by",
	"sort_by":        "the requested ordering",
	"limit":          "how many results are wanted",
}
