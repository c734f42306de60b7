package extractor_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/internal/nlu/catalog"
	"booking-assistant-nlu/internal/nlu/extractor"
	"booking-assistant-nlu/internal/nlu/normalizer"
	"booking-assistant-nlu/internal/nlu/pattern"
	"booking-assistant-nlu/pkg/llmprovider"
	"booking-assistant-nlu/pkg/log"
)

var baseTime = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

type fakeInvoker struct {
	response string
	err      error
	calls    int
}

func (f *fakeInvoker) GenerateJSON(ctx context.Context, req *llmprovider.Request, out any) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

func newTestExtractor(t *testing.T, llm extractor.LLMInvoker) *extractor.Extractor {
	t.Helper()
	n, err := normalizer.NewWithClock("UTC", func() time.Time { return baseTime })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return extractor.New(
		log.NewNop(),
		llm,
		pattern.NewExtractor(n),
		n,
		catalog.NewFuzzyResolver(catalog.DefaultEntries()),
	)
}

func TestExtractFromFollowUp(t *testing.T) {
	ctx := context.Background()

	t.Run("Bare Pincode Reply", func(t *testing.T) {
		invoker := &fakeInvoker{err: errors.New("must not be called")}
		e := newTestExtractor(t, invoker)

		got := e.ExtractFromFollowUp(ctx, "560001", nlu.EntityLocation, nil)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.NormalizedValue != "560001" || got.Confidence != 0.95 || got.Method != nlu.MethodPattern {
			t.Errorf("unexpected result: %+v", got)
		}
		if invoker.calls != 0 {
			t.Errorf("confident pattern hit must not invoke the llm, got %d calls", invoker.calls)
		}
	})

	t.Run("Address With Pincode", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractFromFollowUp(ctx, "12 MG Road, Indiranagar, Bangalore, 560038", nlu.EntityLocation, nil)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.Confidence != 0.9 {
			t.Errorf("expected confidence 0.9, got %f", got.Confidence)
		}
		if got.Metadata["pincode"] != "560038" {
			t.Errorf("expected pincode metadata, got %v", got.Metadata)
		}
		if got.Metadata["city"] != "Bangalore" {
			t.Errorf("expected city metadata, got %v", got.Metadata)
		}
	})

	t.Run("Date Phrase", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractFromFollowUp(ctx, "tomorrow works for me", nlu.EntityDate, nil)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.NormalizedValue != "2026-03-05" || got.Method != nlu.MethodPattern {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("Canonical Booking ID", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractFromFollowUp(ctx, "it's ORD12345678", nlu.EntityBookingID, nil)
		if got == nil || got.NormalizedValue != "ORD12345678" || got.Confidence != 0.95 {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("Bare Digits Booking ID Is Weak", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractFromFollowUp(ctx, "12345", nlu.EntityBookingID, nil)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.NormalizedValue != "ORD00012345" {
			t.Errorf("expected zero-padded reconstruction, got %+v", got)
		}
		if got.Confidence != 0.6 || got.Method != nlu.MethodHeuristic {
			t.Errorf("bare digits should be low confidence, got %+v", got)
		}
	})

	t.Run("Numbered Option", func(t *testing.T) {
		invoker := &fakeInvoker{err: errors.New("must not be called")}
		e := newTestExtractor(t, invoker)

		fctx := &extractor.FollowUpContext{
			Intent:  nlu.IntentComplaint,
			Options: []string{"late arrival", "no show", "damage"},
		}
		got := e.ExtractFromFollowUp(ctx, "2", nlu.EntityIssueType, fctx)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.Method != nlu.MethodNumberedOption || got.NormalizedValue != "no show" {
			t.Errorf("unexpected result: %+v", got)
		}
		if got.Metadata["option"] != "no show" {
			t.Errorf("expected selected option in metadata, got %v", got.Metadata)
		}
	})

	t.Run("Catalog Service Resolution", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractFromFollowUp(ctx, "sofa cleaning", nlu.EntityServiceType, nil)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.Method != nlu.MethodCatalogResolver {
			t.Errorf("expected catalog resolution, got %+v", got)
		}
		if got.Metadata["subcategory_id"] != "sub_sofa_clean" {
			t.Errorf("expected catalog ids in metadata, got %v", got.Metadata)
		}
		if got.NormalizedValue != "cleaning" {
			t.Errorf("expected canonical service tag, got %q", got.NormalizedValue)
		}
	})

	t.Run("LLM Fallback", func(t *testing.T) {
		invoker := &fakeInvoker{response: `{"value": "next friday", "confidence": 0.75}`}
		e := newTestExtractor(t, invoker)

		got := e.ExtractFromFollowUp(ctx, "the usual one near my office", nlu.EntityDate, nil)
		if got == nil {
			t.Fatal("expected a result")
		}
		if got.Method != nlu.MethodLLM {
			t.Errorf("expected llm method, got %+v", got)
		}
		if got.NormalizedValue != "2026-03-06" {
			t.Errorf("expected 2026-03-06, got %q", got.NormalizedValue)
		}
		if got.Confidence != 0.75 {
			t.Errorf("expected confidence 0.75, got %f", got.Confidence)
		}
	})

	t.Run("Low Confidence LLM Is A Failure", func(t *testing.T) {
		invoker := &fakeInvoker{response: `{"value": "next friday", "confidence": 0.2}`}
		e := newTestExtractor(t, invoker)

		if got := e.ExtractFromFollowUp(ctx, "the usual one near my office", nlu.EntityDate, nil); got != nil {
			t.Errorf("expected a doubted guess to be rejected, got %+v", got)
		}
	})

	t.Run("Low Confidence LLM Keeps Weak Pattern Result", func(t *testing.T) {
		invoker := &fakeInvoker{response: `{"value": "98765", "confidence": 0.3}`}
		e := newTestExtractor(t, invoker)

		got := e.ExtractFromFollowUp(ctx, "12345", nlu.EntityBookingID, nil)
		if got == nil || got.Method != nlu.MethodHeuristic || got.NormalizedValue != "ORD00012345" {
			t.Errorf("expected the weak pattern hit, got %+v", got)
		}
	})

	t.Run("Not Found Sentinel", func(t *testing.T) {
		invoker := &fakeInvoker{response: `{"value": "NOT_FOUND", "confidence": 0}`}
		e := newTestExtractor(t, invoker)

		got := e.ExtractFromFollowUp(ctx, "no idea honestly", nlu.EntityTime, nil)
		if got != nil {
			t.Errorf("expected nil result, got %+v", got)
		}
	})

	t.Run("LLM Error Falls Back To Weak Pattern", func(t *testing.T) {
		invoker := &fakeInvoker{err: errors.New("provider down")}
		e := newTestExtractor(t, invoker)

		got := e.ExtractFromFollowUp(ctx, "12345", nlu.EntityBookingID, nil)
		if got == nil || got.Method != nlu.MethodHeuristic {
			t.Errorf("expected weak pattern fallback, got %+v", got)
		}
	})

	t.Run("Empty Message", func(t *testing.T) {
		e := newTestExtractor(t, nil)
		if got := e.ExtractFromFollowUp(ctx, "  ", nlu.EntityDate, nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestExtractMultipleEntities(t *testing.T) {
	ctx := context.Background()

	t.Run("Combined Date And Time", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractMultipleEntities(ctx, "tomorrow at 2pm", []nlu.EntityTag{nlu.EntityDate, nlu.EntityTime}, nil)
		date, time_ := got[nlu.EntityDate], got[nlu.EntityTime]
		if date == nil || time_ == nil {
			t.Fatalf("expected both entities, got %v", got)
		}
		if date.Method != nlu.MethodCombinedPattern || time_.Method != nlu.MethodCombinedPattern {
			t.Errorf("expected combined extraction, got %s / %s", date.Method, time_.Method)
		}
		if date.NormalizedValue != "2026-03-05" || time_.NormalizedValue != "14:00" {
			t.Errorf("unexpected values: %q / %q", date.NormalizedValue, time_.NormalizedValue)
		}
	})

	t.Run("Independent Tags", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractMultipleEntities(ctx, "cancel ORD12345678", []nlu.EntityTag{nlu.EntityAction, nlu.EntityBookingID}, nil)
		if got[nlu.EntityAction] == nil || got[nlu.EntityAction].NormalizedValue != "cancel" {
			t.Errorf("expected cancel action, got %v", got[nlu.EntityAction])
		}
		if got[nlu.EntityBookingID] == nil || got[nlu.EntityBookingID].NormalizedValue != "ORD12345678" {
			t.Errorf("expected booking id, got %v", got[nlu.EntityBookingID])
		}
	})

	t.Run("Missing Entities Are Absent", func(t *testing.T) {
		e := newTestExtractor(t, nil)

		got := e.ExtractMultipleEntities(ctx, "hello there", []nlu.EntityTag{nlu.EntityDate, nlu.EntityRating}, nil)
		if len(got) != 0 {
			t.Errorf("expected no entities, got %v", got)
		}
	})
}
