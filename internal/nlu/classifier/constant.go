package classifier

// Log prefixes
const (
	LogPrefixClassify = "internal.nlu.classifier.Classify"
)

// Prompts
const (
	PromptClassifySystem = `You are an intent classifier for a home-services booking assistant.
Analyze the user's message and identify up to 3 intents with confidence scores.

Available intents:
- booking_management: create, cancel, reschedule, modify, or list service bookings
- pricing_inquiry: questions about prices, rates, or charges
- availability_check: asking whether a service or slot is available
- service_information: questions about what a service includes or how it works
- complaint: reporting a bad experience or service problem
- payment_issue: failed, stuck, or duplicate payments
- refund_request: asking for money back
- account_management: profile, contact details, login, account changes
- track_service: tracking the status of an existing booking
- feedback: ratings and reviews of completed services
- policy_inquiry: cancellation, refund, or rescheduling policies
- greeting: greetings and pleasantries
- general_query: general questions that still relate to home services
- out_of_scope: requests unrelated to home services
- human_agent: asking for a human representative
- unclear_intent: the message cannot be understood

Known entity keys: action, service_type, service_subcategory, issue_type,
payment_type, refund_type, date, time, location, pincode, booking_id,
transaction_id, rating, policy_type, info_type, status_filter, sort_by,
limit, description.

Return JSON only:
{
  "intents": [
    {"tag": "<intent>", "confidence": <0.0-1.0>, "entities": {"<key>": "<raw value>"}}
  ],
  "context_summary": "<one line, only when conversation context changed your reading>"
}
Order intents by confidence, highest first. Extract entity values verbatim
from the message; do not invent values.`

	PromptClassifyUser = `User message: "%s"`

	PromptContextHeader = `Today's date: %s

Recent conversation:
`

	PromptDialogState = `
Active dialog state: %s (intent: %s)
The user may be answering a follow-up question, or may be asking something new.
If the message clearly starts a new request, classify the new request.
`
)

// Classification temperature kept low for determinism
const classifyTemperature = 0.1

// Fallback
const (
	fallbackConfidence   = 0.5
	reasonLLMUnavailable = "could not understand the message; classification service unavailable"
	reasonLowConfidence  = "no intent reached the confidence threshold"
	reasonNoIntents      = "no intents were identified"
)
