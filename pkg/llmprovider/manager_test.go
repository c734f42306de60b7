package llmprovider_test

import (
	"context"
	"errors"
	"testing"

	"booking-assistant-nlu/pkg/llmprovider"
	"booking-assistant-nlu/pkg/log"
)

// mockProvider is a hand-rolled Provider with programmable behavior
type mockProvider struct {
	name     string
	response *llmprovider.Response
	err      error
	calls    int
}

func (m *mockProvider) GenerateContent(ctx context.Context, req *llmprovider.Request) (*llmprovider.Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) Name() string  { return m.name }
func (m *mockProvider) Model() string { return m.name + "-model" }

func okResponse(text string) *llmprovider.Response {
	return &llmprovider.Response{Text: text, Usage: &llmprovider.Usage{TotalTokens: 10}}
}

func TestGenerateContent(t *testing.T) {
	ctx := context.Background()
	req := &llmprovider.Request{Messages: []llmprovider.Message{{Role: "user", Text: "hi"}}}

	t.Run("No Providers", func(t *testing.T) {
		m := llmprovider.NewManager(nil, &llmprovider.Config{}, log.NewNop())
		_, err := m.GenerateContent(ctx, req)
		if !errors.Is(err, llmprovider.ErrNoProvidersConfigured) {
			t.Errorf("expected ErrNoProvidersConfigured, got %v", err)
		}
	})

	t.Run("First Provider Succeeds", func(t *testing.T) {
		p1 := &mockProvider{name: "gemini", response: okResponse(`{"ok":true}`)}
		p2 := &mockProvider{name: "deepseek", response: okResponse(`{"ok":true}`)}
		m := llmprovider.NewManager([]llmprovider.Provider{p1, p2}, &llmprovider.Config{FallbackEnabled: true, RetryAttempts: 1}, log.NewNop())

		resp, err := m.GenerateContent(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Text != `{"ok":true}` {
			t.Errorf("unexpected response text %q", resp.Text)
		}
		if p2.calls != 0 {
			t.Errorf("second provider should not be called, got %d calls", p2.calls)
		}
	})

	t.Run("Fallback To Second Provider", func(t *testing.T) {
		p1 := &mockProvider{name: "gemini", err: errors.New("quota exceeded")}
		p2 := &mockProvider{name: "deepseek", response: okResponse("fallback")}
		m := llmprovider.NewManager([]llmprovider.Provider{p1, p2}, &llmprovider.Config{FallbackEnabled: true, RetryAttempts: 1}, log.NewNop())

		resp, err := m.GenerateContent(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Text != "fallback" {
			t.Errorf("expected fallback response, got %q", resp.Text)
		}
	})

	t.Run("Fallback Disabled Stops After First", func(t *testing.T) {
		p1 := &mockProvider{name: "gemini", err: errors.New("down")}
		p2 := &mockProvider{name: "deepseek", response: okResponse("never")}
		m := llmprovider.NewManager([]llmprovider.Provider{p1, p2}, &llmprovider.Config{FallbackEnabled: false, RetryAttempts: 1}, log.NewNop())

		_, err := m.GenerateContent(ctx, req)
		if !errors.Is(err, llmprovider.ErrAllProvidersFailed) {
			t.Errorf("expected ErrAllProvidersFailed, got %v", err)
		}
		if p2.calls != 0 {
			t.Errorf("second provider should not be tried when fallback is disabled")
		}
	})

	t.Run("Retry Exhaustion", func(t *testing.T) {
		p1 := &mockProvider{name: "gemini", err: errors.New("flaky")}
		m := llmprovider.NewManager([]llmprovider.Provider{p1}, &llmprovider.Config{RetryAttempts: 3}, log.NewNop())

		_, err := m.GenerateContent(ctx, req)
		if !errors.Is(err, llmprovider.ErrAllProvidersFailed) {
			t.Errorf("expected ErrAllProvidersFailed, got %v", err)
		}
		if p1.calls != 3 {
			t.Errorf("expected 3 attempts, got %d", p1.calls)
		}
	})

	t.Run("Empty Response Is An Error", func(t *testing.T) {
		p1 := &mockProvider{name: "gemini", response: okResponse("")}
		m := llmprovider.NewManager([]llmprovider.Provider{p1}, &llmprovider.Config{RetryAttempts: 1}, log.NewNop())

		_, err := m.GenerateContent(ctx, req)
		if !errors.Is(err, llmprovider.ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
		// both the sentinel and the provider cause stay inspectable
		if !errors.Is(err, llmprovider.ErrAllProvidersFailed) {
			t.Errorf("expected ErrAllProvidersFailed in the chain, got %v", err)
		}
	})
}

func TestGenerateJSON(t *testing.T) {
	ctx := context.Background()
	req := &llmprovider.Request{Messages: []llmprovider.Message{{Role: "user", Text: "classify"}}}

	type payload struct {
		Intent string `json:"intent"`
	}

	t.Run("Plain JSON", func(t *testing.T) {
		p := &mockProvider{name: "gemini", response: okResponse(`{"intent":"greeting"}`)}
		m := llmprovider.NewManager([]llmprovider.Provider{p}, &llmprovider.Config{RetryAttempts: 1}, log.NewNop())

		var out payload
		if err := m.GenerateJSON(ctx, req, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Intent != "greeting" {
			t.Errorf("expected greeting, got %q", out.Intent)
		}
	})

	t.Run("Fenced JSON", func(t *testing.T) {
		p := &mockProvider{name: "gemini", response: okResponse("```json\n{\"intent\":\"complaint\"}\n```")}
		m := llmprovider.NewManager([]llmprovider.Provider{p}, &llmprovider.Config{RetryAttempts: 1}, log.NewNop())

		var out payload
		if err := m.GenerateJSON(ctx, req, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Intent != "complaint" {
			t.Errorf("expected complaint, got %q", out.Intent)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		p := &mockProvider{name: "gemini", response: okResponse("not json at all")}
		m := llmprovider.NewManager([]llmprovider.Provider{p}, &llmprovider.Config{RetryAttempts: 1}, log.NewNop())

		var out payload
		err := m.GenerateJSON(ctx, req, &out)
		if !errors.Is(err, llmprovider.ErrMalformedOutput) {
			t.Errorf("expected ErrMalformedOutput, got %v", err)
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Bare", `{"a":1}`, `{"a":1}`},
		{"JSON Fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Plain Fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"Whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := llmprovider.StripCodeFences(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
