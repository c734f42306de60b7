package nlu

// IntentProfile is the static configuration for one intent: which entities
// it needs, which agent handles it downstream, and its relative priority.
// Profiles are created once at build time and never mutated.
type IntentProfile struct {
	Tag      IntentTag
	Required []EntityTag
	Optional []EntityTag
	Agent    string
	Priority int
}

var profiles = map[IntentTag]IntentProfile{
	IntentBookingManagement: {
		Tag:      IntentBookingManagement,
		Required: []EntityTag{EntityAction},
		Optional: []EntityTag{
			EntityServiceType, EntityServiceSubcategory, EntityDate, EntityTime,
			EntityLocation, EntityPincode, EntityBookingID, EntityStatusFilter,
			EntitySortBy, EntityLimit, EntityFrequency, EntityPreferredStaff, EntityNotes,
		},
		Agent:    "booking_agent",
		Priority: 10,
	},
	IntentPricingInquiry: {
		Tag:      IntentPricingInquiry,
		Required: []EntityTag{EntityServiceType},
		Optional: []EntityTag{EntityServiceSubcategory, EntityLocation, EntityQuantity},
		Agent:    "pricing_agent",
		Priority: 8,
	},
	IntentAvailabilityCheck: {
		Tag:      IntentAvailabilityCheck,
		Required: []EntityTag{EntityServiceType},
		Optional: []EntityTag{EntityDate, EntityTime, EntityLocation, EntityPincode},
		Agent:    "availability_agent",
		Priority: 8,
	},
	IntentServiceInformation: {
		Tag:      IntentServiceInformation,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityServiceType, EntityServiceSubcategory, EntityInfoType},
		Agent:    "info_agent",
		Priority: 6,
	},
	IntentComplaint: {
		Tag:      IntentComplaint,
		Required: []EntityTag{EntityIssueType},
		Optional: []EntityTag{EntityBookingID, EntityDescription, EntityUrgency},
		Agent:    "support_agent",
		Priority: 9,
	},
	IntentPaymentIssue: {
		Tag:      IntentPaymentIssue,
		Required: []EntityTag{EntityPaymentType},
		Optional: []EntityTag{EntityBookingID, EntityTransactionID, EntityDescription},
		Agent:    "payment_agent",
		Priority: 9,
	},
	IntentRefundRequest: {
		Tag:      IntentRefundRequest,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityBookingID, EntityTransactionID, EntityRefundType, EntityDescription},
		Agent:    "refund_agent",
		Priority: 9,
	},
	IntentAccountManagement: {
		Tag:      IntentAccountManagement,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityName, EntityPhone, EntityEmail, EntityLocation},
		Agent:    "account_agent",
		Priority: 5,
	},
	IntentTrackService: {
		Tag:      IntentTrackService,
		Required: []EntityTag{EntityBookingID},
		Optional: []EntityTag{},
		Agent:    "tracking_agent",
		Priority: 8,
	},
	IntentFeedback: {
		Tag:      IntentFeedback,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityRating, EntityBookingID, EntityDescription},
		Agent:    "feedback_agent",
		Priority: 4,
	},
	IntentPolicyInquiry: {
		Tag:      IntentPolicyInquiry,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityPolicyType},
		Agent:    "policy_agent",
		Priority: 5,
	},
	IntentGreeting: {
		Tag:      IntentGreeting,
		Required: []EntityTag{},
		Optional: []EntityTag{},
		Agent:    "conversation_agent",
		Priority: 2,
	},
	IntentGeneralQuery: {
		Tag:      IntentGeneralQuery,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityDescription},
		Agent:    "conversation_agent",
		Priority: 3,
	},
	IntentOutOfScope: {
		Tag:      IntentOutOfScope,
		Required: []EntityTag{},
		Optional: []EntityTag{},
		Agent:    "conversation_agent",
		Priority: 1,
	},
	IntentUnclear: {
		Tag:      IntentUnclear,
		Required: []EntityTag{},
		Optional: []EntityTag{},
		Agent:    "clarification_agent",
		Priority: 1,
	},
	IntentHumanAgent: {
		Tag:      IntentHumanAgent,
		Required: []EntityTag{},
		Optional: []EntityTag{EntityDescription},
		Agent:    "escalation_agent",
		Priority: 7,
	},
}

// Profiles returns the static intent profile table.
func Profiles() map[IntentTag]IntentProfile {
	return profiles
}

// ProfileFor returns the profile for the given intent.
func ProfileFor(tag IntentTag) (IntentProfile, bool) {
	p, ok := profiles[tag]
	return p, ok
}

// AgentFor resolves the downstream agent identifier for an intent. Unknown
// intents route to the clarification agent.
func AgentFor(tag IntentTag) string {
	if p, ok := profiles[tag]; ok {
		return p.Agent
	}
	return profiles[IntentUnclear].Agent
}

// RelevantEntities reports whether the entity tag is in the profile's
// required or optional set.
func (p IntentProfile) Relevant(tag EntityTag) bool {
	for _, t := range p.Required {
		if t == tag {
			return true
		}
	}
	for _, t := range p.Optional {
		if t == tag {
			return true
		}
	}
	return false
}

// FilterEntities returns only the entities relevant to the profile.
func (p IntentProfile) FilterEntities(entities map[EntityTag]string) map[EntityTag]string {
	if len(entities) == 0 {
		return nil
	}
	filtered := make(map[EntityTag]string)
	for tag, value := range entities {
		if p.Relevant(tag) {
			filtered[tag] = value
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
