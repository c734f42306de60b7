package pattern

import (
	"regexp"

	"booking-assistant-nlu/internal/nlu"
)

// IntentRule binds one intent to its keyword list and high-confidence regex
// patterns. Rules are evaluated in slice order so ties in score keep a
// stable, deterministic ranking.
type IntentRule struct {
	Tag      nlu.IntentTag
	Keywords []string
	Regexes  []*regexp.Regexp
}

// Tables is the full set of pattern-matching configuration. Built once at
// startup and read-only afterwards; safe to share across goroutines.
type Tables struct {
	Intents []IntentRule
}

// DefaultTables builds the built-in keyword and regex tables.
func DefaultTables() *Tables {
	return &Tables{
		Intents: []IntentRule{
			{
				Tag: nlu.IntentBookingManagement,
				Keywords: []string{
					"book", "booking", "appointment", "cancel", "reschedule",
					"schedule", "postpone", "slot", "my bookings",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(book|cancel|reschedule|modify)\b.*\b(service|booking|bookings|appointment|cleaner|technician)\b`),
					regexp.MustCompile(`(?i)\b(list|show|view|display)\b.*\b(bookings|appointments|orders)\b`),
					regexp.MustCompile(`(?i)\bcancel\b.*\bORD[A-Z0-9]{4,}\b`),
				},
			},
			{
				Tag: nlu.IntentPricingInquiry,
				Keywords: []string{
					"price", "pricing", "cost", "charge", "charges", "rate",
					"how much", "fee", "expensive", "quote",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\bhow much\b.*\b(cost|charge|price|pay)\b`),
					regexp.MustCompile(`(?i)\bwhat.{0,20}\b(price|cost|rate|charges?)\b`),
				},
			},
			{
				Tag: nlu.IntentAvailabilityCheck,
				Keywords: []string{
					"available", "availability", "free slot", "open slot",
					"slots available", "when can", "earliest",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(is|are|any)\b.{0,30}\bavailab(le|ility)\b`),
					regexp.MustCompile(`(?i)\bwhen can (you|someone|a technician)\b`),
				},
			},
			{
				Tag: nlu.IntentServiceInformation,
				Keywords: []string{
					"what services", "what do you offer", "tell me about",
					"details about", "how does", "included", "what is covered",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\bwhat (services|all)\b.*\b(offer|provide|available)\b`),
					regexp.MustCompile(`(?i)\bwhat('s| is) included\b`),
				},
			},
			{
				Tag: nlu.IntentComplaint,
				Keywords: []string{
					"complaint", "complain", "terrible", "horrible", "worst",
					"unhappy", "disappointed", "rude", "late", "damaged",
					"not working", "poor service", "bad service",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(file|raise|register|make)\b.{0,15}\bcomplaint\b`),
					regexp.MustCompile(`(?i)\b(technician|cleaner|staff)\b.{0,30}\b(rude|late|never (came|showed)|did ?n.?t (come|show))\b`),
				},
			},
			{
				Tag: nlu.IntentPaymentIssue,
				Keywords: []string{
					"payment failed", "payment issue", "charged twice",
					"double charged", "payment stuck", "transaction failed",
					"money deducted", "payment not going",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(payment|transaction)\b.{0,25}\b(fail(ed)?|stuck|declined|error|issue|problem)\b`),
					regexp.MustCompile(`(?i)\b(charged|debited|deducted)\b.{0,20}\b(twice|double|extra|wrongly)\b`),
				},
			},
			{
				Tag: nlu.IntentRefundRequest,
				Keywords: []string{
					"refund", "money back", "return my money", "reimburse",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(want|need|give|get|request|initiate)\b.{0,20}\brefund\b`),
					regexp.MustCompile(`(?i)\bmoney back\b`),
				},
			},
			{
				Tag: nlu.IntentAccountManagement,
				Keywords: []string{
					"my account", "my profile", "change my number",
					"update my address", "change my email", "delete my account",
					"login", "password",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(update|change|edit|delete)\b.{0,15}\b(account|profile|number|email|password|address)\b`),
				},
			},
			{
				Tag: nlu.IntentTrackService,
				Keywords: []string{
					"track", "status of", "where is", "eta", "on the way",
					"order status", "booking status",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(track|status of)\b.{0,25}\b(booking|order|service|ORD[A-Z0-9]+)\b`),
					regexp.MustCompile(`(?i)\bwhere is\b.{0,25}\b(technician|cleaner|my order)\b`),
				},
			},
			{
				Tag: nlu.IntentFeedback,
				Keywords: []string{
					"feedback", "review", "rating", "rate", "stars",
					"great service", "excellent", "loved",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(leave|give|share|submit)\b.{0,15}\b(feedback|review|rating)\b`),
					regexp.MustCompile(`(?i)\b[1-5] stars?\b`),
				},
			},
			{
				Tag: nlu.IntentPolicyInquiry,
				Keywords: []string{
					"policy", "cancellation policy", "refund policy",
					"terms", "conditions", "warranty", "guarantee",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(cancellation|refund|reschedul\w*|payment)\b.{0,10}\bpolicy\b`),
					regexp.MustCompile(`(?i)\bterms (and|&) conditions\b`),
				},
			},
			{
				Tag: nlu.IntentGreeting,
				Keywords: []string{
					"hello", "hi", "hey", "good morning", "good afternoon",
					"good evening", "namaste",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)^\s*(hi|hello|hey|namaste|yo)[\s!.,]*$`),
					regexp.MustCompile(`(?i)^\s*good (morning|afternoon|evening)[\s!.,]*$`),
				},
			},
			{
				Tag: nlu.IntentHumanAgent,
				Keywords: []string{
					"human", "real person", "customer care", "talk to someone",
					"agent", "representative", "executive",
				},
				Regexes: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(talk|speak|connect)\b.{0,15}\b(human|person|agent|someone|executive|representative)\b`),
				},
			},
			{
				Tag: nlu.IntentGeneralQuery,
				Keywords: []string{
					"question", "help me understand", "how do i", "can you help",
				},
			},
		},
	}
}
