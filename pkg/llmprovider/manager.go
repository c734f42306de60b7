package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"booking-assistant-nlu/pkg/log"
	"booking-assistant-nlu/pkg/retry"
)

// Manager orchestrates provider selection, fallback, retry, and pacing
type Manager struct {
	providers []Provider
	config    *Config
	limiter   *rate.Limiter
	logger    log.Logger
}

// Config defines configuration for the Provider Manager
type Config struct {
	FallbackEnabled bool
	RetryAttempts   int
	RetryDelay      time.Duration
	RetryFactor     float64
	MaxTotalTimeout time.Duration // Global timeout for the entire fallback chain
	RequestsPerMin  int           // Client-side pacing of outbound LLM calls; 0 disables
}

// NewManager creates a new Provider Manager with the given providers, config, and logger
func NewManager(providers []Provider, config *Config, logger log.Logger) *Manager {
	var limiter *rate.Limiter
	if config.RequestsPerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMin)/60.0), config.RequestsPerMin/10+1)
	}
	return &Manager{
		providers: providers,
		config:    config,
		limiter:   limiter,
		logger:    logger,
	}
}

// GenerateContent iterates through providers in priority order with fallback logic
func (m *Manager) GenerateContent(ctx context.Context, req *Request) (*Response, error) {
	if len(m.providers) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	callID := uuid.NewString()

	var cancel context.CancelFunc
	if m.config.MaxTotalTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, m.config.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error

	for _, provider := range m.providers {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("global timeout exceeded: %w", ctx.Err())
		default:
		}

		resp, err := m.generateWithRetry(ctx, provider, req)
		if err == nil {
			m.logger.Infof(ctx, "LLM call %s succeeded: provider=%s model=%s tokens=%d",
				callID, provider.Name(), provider.Model(), resp.Usage.TotalTokens)
			return resp, nil
		}

		m.logger.Warnf(ctx, "LLM call %s failed: provider=%s model=%s err=%v",
			callID, provider.Name(), provider.Model(), err)
		lastErr = err

		if !m.config.FallbackEnabled {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

// generateWithRetry retries a single provider with exponential backoff
func (m *Manager) generateWithRetry(ctx context.Context, provider Provider, req *Request) (*Response, error) {
	attempts := m.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	factor := m.config.RetryFactor
	if factor <= 0 {
		factor = 2
	}

	var resp *Response
	err := retry.Do(ctx, retry.Config{
		Attempts:     attempts,
		InitialDelay: m.config.RetryDelay,
		Factor:       factor,
	}, func(ctx context.Context) error {
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		r, err := provider.GenerateContent(ctx, req)
		if err != nil {
			return err
		}
		if r.Text == "" {
			return &ProviderError{Provider: provider.Name(), Err: ErrEmptyResponse}
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GenerateJSON invokes the providers requesting structured output and
// unmarshals the response into out. Markdown code fences around the JSON are
// stripped, since some models wrap their output despite JSON mode.
func (m *Manager) GenerateJSON(ctx context.Context, req *Request, out any) error {
	resp, err := m.GenerateContent(ctx, req)
	if err != nil {
		return err
	}

	text := StripCodeFences(resp.Text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// StripCodeFences removes ```json ... ``` or ``` ... ``` wrappers.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
