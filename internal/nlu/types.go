package nlu

// IntentTag identifies the user's high-level goal in one utterance.
type IntentTag string

const (
	IntentBookingManagement  IntentTag = "booking_management"
	IntentPricingInquiry     IntentTag = "pricing_inquiry"
	IntentAvailabilityCheck  IntentTag = "availability_check"
	IntentServiceInformation IntentTag = "service_information"
	IntentComplaint          IntentTag = "complaint"
	IntentPaymentIssue       IntentTag = "payment_issue"
	IntentRefundRequest      IntentTag = "refund_request"
	IntentAccountManagement  IntentTag = "account_management"
	IntentTrackService       IntentTag = "track_service"
	IntentFeedback           IntentTag = "feedback"
	IntentPolicyInquiry      IntentTag = "policy_inquiry"
	IntentGreeting           IntentTag = "greeting"
	IntentGeneralQuery       IntentTag = "general_query"
	IntentOutOfScope         IntentTag = "out_of_scope"
	IntentUnclear            IntentTag = "unclear_intent"
	IntentHumanAgent         IntentTag = "human_agent"
)

// Valid reports whether the tag is one of the known intents.
func (t IntentTag) Valid() bool {
	_, ok := profiles[t]
	return ok
}

// EntityTag identifies a named piece of structured information extracted
// from text.
type EntityTag string

const (
	EntityAction             EntityTag = "action"
	EntityServiceType        EntityTag = "service_type"
	EntityServiceSubcategory EntityTag = "service_subcategory"
	EntityIssueType          EntityTag = "issue_type"
	EntityPaymentType        EntityTag = "payment_type"
	EntityRefundType         EntityTag = "refund_type"
	EntityDate               EntityTag = "date"
	EntityTime               EntityTag = "time"
	EntityLocation           EntityTag = "location"
	EntityAddressLine        EntityTag = "address_line"
	EntityCity               EntityTag = "city"
	EntityPincode            EntityTag = "pincode"
	EntityLandmark           EntityTag = "landmark"
	EntityBookingID          EntityTag = "booking_id"
	EntityOrderID            EntityTag = "order_id"
	EntityTransactionID      EntityTag = "transaction_id"
	EntityRating             EntityTag = "rating"
	EntityPolicyType         EntityTag = "policy_type"
	EntityInfoType           EntityTag = "info_type"
	EntityStatusFilter       EntityTag = "status_filter"
	EntitySortBy             EntityTag = "sort_by"
	EntityLimit              EntityTag = "limit"
	EntityDescription        EntityTag = "description"
	EntityName               EntityTag = "name"
	EntityPhone              EntityTag = "phone"
	EntityEmail              EntityTag = "email"
	EntityUrgency            EntityTag = "urgency"
	EntityFrequency          EntityTag = "frequency"
	EntityQuantity           EntityTag = "quantity"
	EntityPreferredStaff     EntityTag = "preferred_staff"
	EntityNotes              EntityTag = "notes"
)

// Method records how an entity or intent was produced.
type Method string

const (
	MethodPattern         Method = "pattern"
	MethodHeuristic       Method = "heuristic"
	MethodLLM             Method = "llm"
	MethodNumberedOption  Method = "numbered_option"
	MethodCombinedPattern Method = "combined_pattern"
	MethodCatalogResolver Method = "catalog_resolver"
)

// RankedIntent is one candidate intent with its confidence and the entities
// relevant to it.
type RankedIntent struct {
	Tag        IntentTag            `json:"tag"`
	Confidence float64              `json:"confidence"`
	Entities   map[EntityTag]string `json:"entities,omitempty"`
}

// ClassificationResult is the outcome of one classification turn.
// Invariants: Intents is sorted descending by confidence with at most
// MaxIntents entries; PrimaryIntent equals Intents[0].Tag when non-empty;
// RequiresClarification is set when no intent is confident enough to act on.
type ClassificationResult struct {
	Intents               []RankedIntent `json:"intents"`
	PrimaryIntent         IntentTag      `json:"primary_intent"`
	RequiresClarification bool           `json:"requires_clarification"`
	ClarificationReason   string         `json:"clarification_reason,omitempty"`
	ContextUsed           bool           `json:"context_used"`
	ContextSummary        string         `json:"context_summary,omitempty"`
}

// EntityExtractionResult is the outcome of resolving one entity from a
// follow-up message. NormalizedValue is always in the canonical form for the
// tag, or empty when normalization failed.
type EntityExtractionResult struct {
	Tag             EntityTag      `json:"tag"`
	RawValue        string         `json:"raw_value"`
	NormalizedValue string         `json:"normalized_value,omitempty"`
	Confidence      float64        `json:"confidence"`
	Method          Method         `json:"method"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ConversationTurn is one prior message in the conversation, supplied
// read-only by the caller.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// DialogState is an externally supplied snapshot of the multi-turn dialog.
// The engine only reads it.
type DialogState struct {
	State         string         `json:"state"`
	Intent        IntentTag      `json:"intent,omitempty"`
	PendingAction map[string]any `json:"pending_action,omitempty"`
}
