package normalizer_test

import (
	"testing"
	"time"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/internal/nlu/normalizer"
)

// Fixed clock: Wednesday, 2026-03-04 15:30 UTC
var baseTime = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

func newTestNormalizer(t *testing.T) *normalizer.Normalizer {
	t.Helper()
	n, err := normalizer.NewWithClock("UTC", func() time.Time { return baseTime })
	if err != nil {
		t.Fatalf("unexpected error creating normalizer: %v", err)
	}
	return n
}

func TestNew(t *testing.T) {
	if _, err := normalizer.New("Asia/Kolkata"); err != nil {
		t.Fatalf("unexpected error for valid timezone: %v", err)
	}
	if _, err := normalizer.New("Invalid/Timezone"); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestDate(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"Today", "today", "2026-03-04", true},
		{"Tomorrow", "tomorrow", "2026-03-05", true},
		{"Day After Tomorrow", "day after tomorrow", "2026-03-06", true},
		{"Next Week", "next week", "2026-03-11", true},
		{"Next Month", "next month", "2026-04-04", true},
		{"In 3 Days", "in 3 days", "2026-03-07", true},
		{"In 2 Weeks", "in 2 weeks", "2026-03-18", true},
		{"Next Monday", "next monday", "2026-03-09", true},
		{"Plain Friday", "friday", "2026-03-06", true},
		{"Past Weekday Rolls Forward", "tuesday", "2026-03-10", true},
		// Base day is Wednesday: plain "wednesday" resolves to today,
		// "next wednesday" skips to the following week.
		{"Same Weekday Plain", "wednesday", "2026-03-04", true},
		{"Next Same Weekday", "next wednesday", "2026-03-11", true},
		{"Named Month Day", "march 20", "2026-03-20", true},
		{"Day Named Month", "20 march", "2026-03-20", true},
		{"Named Month With Year", "january 15 2027", "2027-01-15", true},
		{"Past Named Month Rolls To Next Year", "january 15", "2027-01-15", true},
		{"ISO Passthrough", "2026-06-01", "2026-06-01", true},
		{"Numeric Day First", "25/12/2026", "2026-12-25", true},
		{"Numeric Two Digit Year", "25-12-26", "2026-12-25", true},
		{"Numeric Day Over Twelve", "15/04/2026", "2026-04-15", true},
		{"Garbage", "banana sandwich", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Date(tt.raw)
			if ok != tt.ok {
				t.Fatalf("Date(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDateIdempotent(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{"tomorrow", "next friday", "25/12/2026", "march 20"}
	for _, raw := range inputs {
		first, ok := n.Date(raw)
		if !ok {
			t.Fatalf("Date(%q) failed", raw)
		}
		second, ok := n.Date(first)
		if !ok || second != first {
			t.Errorf("Date not idempotent: Date(%q)=%q, Date(%q)=%q", raw, first, first, second)
		}
	}
}

// The day/month disambiguation for ambiguous numeric dates (both components
// <= 12) intentionally defaults to day-first international ordering. This is
// a known limitation inherited from the source behavior: "03/04/2026" means
// April 3rd here, not March 4th.
func TestDateAmbiguousNumericDefaultsDayFirst(t *testing.T) {
	n := newTestNormalizer(t)

	got, ok := n.Date("03/04/2026")
	if !ok {
		t.Fatalf("Date failed for ambiguous numeric input")
	}
	if got != "2026-04-03" {
		t.Errorf("expected day-first 2026-04-03, got %q", got)
	}
}

func TestTime(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"2pm", "2pm", "14:00", true},
		{"10:30am", "10:30am", "10:30", true},
		{"12 AM", "12 am", "00:00", true},
		{"12 PM", "12 pm", "12:00", true},
		{"Dotted", "6.30 p.m.", "18:30", true},
		{"24 Hour", "14:45", "14:45", true},
		{"Morning", "morning", "10:00", true},
		{"Afternoon", "tomorrow afternoon", "14:00", true},
		{"Evening", "evening", "18:00", true},
		{"Night", "night", "20:00", true},
		{"Garbage", "whenever", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Time(tt.raw)
			if ok != tt.ok {
				t.Fatalf("Time(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Time(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAction(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"cancel my booking", "cancel"},
		{"please reschedule it", "reschedule"},
		{"I want to book AC service", "book"},
		{"update the address", "modify"},
		{"show my bookings", "list"},
		{"book", "book"},
	}
	for _, tt := range tests {
		got, ok := n.Action(tt.raw)
		if !ok || got != tt.want {
			t.Errorf("Action(%q) = %q/%v, want %q", tt.raw, got, ok, tt.want)
		}
	}

	// Round trip: normalizing a canonical action is a no-op
	for _, raw := range []string{"cancel my booking", "book a cleaner", "list everything"} {
		once, _ := n.Action(raw)
		twice, _ := n.Action(once)
		if once != twice {
			t.Errorf("Action not idempotent for %q: %q vs %q", raw, once, twice)
		}
	}

	if _, ok := n.Action("xyzzy"); ok {
		t.Errorf("expected failure for unknown action phrase")
	}
}

func TestLocation(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"560001", "560001"},
		{"bengaluru", "Bangalore"},
		{"  Mumbai  ", "Mumbai"},
		{"12  MG Road,   Indiranagar, Bangalore 560038", "12 MG Road, Indiranagar, Bangalore 560038"},
	}
	for _, tt := range tests {
		got, ok := n.Location(tt.raw)
		if !ok || got != tt.want {
			t.Errorf("Location(%q) = %q/%v, want %q", tt.raw, got, ok, tt.want)
		}
	}
}

func TestBookingID(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"ORD12345678", "ORD12345678", true},
		{"ord12ab34cd", "ORD12AB34CD", true},
		{"ORD-123456", "ORD00123456", true},
		{"BK-4521", "ORD00004521", true},
		{"45213", "ORD00045213", true},
		{"no id here", "", false},
	}
	for _, tt := range tests {
		got, ok := n.BookingID(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("BookingID(%q) = %q/%v, want %q/%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAll(t *testing.T) {
	n := newTestNormalizer(t)

	t.Run("Order ID Renamed To Booking ID", func(t *testing.T) {
		out := n.All(map[nlu.EntityTag]string{
			nlu.EntityOrderID: "ORD12345678",
		})
		if out[nlu.EntityBookingID] != "ORD12345678" {
			t.Errorf("expected booking_id ORD12345678, got %v", out)
		}
		if _, ok := out[nlu.EntityOrderID]; ok {
			t.Errorf("order_id should be removed after rename")
		}
	})

	t.Run("Date With Time Of Day Splits", func(t *testing.T) {
		out := n.All(map[nlu.EntityTag]string{
			nlu.EntityDate: "tomorrow morning",
		})
		if out[nlu.EntityDate] != "2026-03-05" {
			t.Errorf("expected date 2026-03-05, got %q", out[nlu.EntityDate])
		}
		if out[nlu.EntityTime] != "10:00" {
			t.Errorf("expected time 10:00, got %q", out[nlu.EntityTime])
		}
	})

	t.Run("Failed Normalization Drops Entity", func(t *testing.T) {
		out := n.All(map[nlu.EntityTag]string{
			nlu.EntityDate:   "gibberish value",
			nlu.EntityAction: "cancel it",
		})
		if _, ok := out[nlu.EntityDate]; ok {
			t.Errorf("unnormalizable date should be dropped")
		}
		if out[nlu.EntityAction] != "cancel" {
			t.Errorf("expected action cancel, got %v", out)
		}
	})

	t.Run("Passthrough Tags Survive", func(t *testing.T) {
		out := n.All(map[nlu.EntityTag]string{
			nlu.EntityIssueType:   "technician was late",
			nlu.EntityPaymentType: "upi",
		})
		if out[nlu.EntityIssueType] != "technician was late" {
			t.Errorf("issue_type should pass through, got %v", out)
		}
		if out[nlu.EntityPaymentType] != "upi" {
			t.Errorf("payment_type should pass through, got %v", out)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if out := n.All(nil); out != nil {
			t.Errorf("expected nil for empty input, got %v", out)
		}
	})
}
