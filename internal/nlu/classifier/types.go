package classifier

import (
	"context"

	"booking-assistant-nlu/pkg/llmprovider"
)

// Thresholds are the confidence cut-offs that shape a classification turn.
type Thresholds struct {
	// PatternMatch is the minimum pattern confidence for the LLM-free fast
	// path. Exactly one candidate must clear it.
	PatternMatch float64
	// LLMAccept is the confidence at which an LLM intent is taken as-is.
	LLMAccept float64
	// Secondary is the floor below which candidate intents are discarded.
	Secondary float64
	// Clarification marks the primary confidence under which the engine
	// asks the user to clarify.
	Clarification float64
	// MaxIntents caps the ranked intent list.
	MaxIntents int
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PatternMatch:  0.9,
		LLMAccept:     0.7,
		Secondary:     0.6,
		Clarification: 0.5,
		MaxIntents:    3,
	}
}

// LLMInvoker is the slice of the provider manager the classifier needs.
type LLMInvoker interface {
	GenerateJSON(ctx context.Context, req *llmprovider.Request, out any) error
}

var _ LLMInvoker = (*llmprovider.Manager)(nil)

// llmIntent is one intent candidate as emitted by the model.
type llmIntent struct {
	Tag        string            `json:"tag"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities,omitempty"`
}

// llmClassification is the structured output requested from the model.
type llmClassification struct {
	Intents        []llmIntent `json:"intents"`
	ContextSummary string      `json:"context_summary,omitempty"`
}

// classificationSchema constrains structured model output to the
// llmClassification shape.
func classificationSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"intents": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"tag":        map[string]interface{}{"type": "string"},
						"confidence": map[string]interface{}{"type": "number"},
						"entities":   map[string]interface{}{"type": "object"},
					},
					"required": []string{"tag", "confidence"},
				},
			},
			"context_summary": map[string]interface{}{"type": "string"},
		},
		"required": []string{"intents"},
	}
}
