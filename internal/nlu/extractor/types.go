package extractor

import (
	"context"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/pkg/llmprovider"
)

// FollowUpContext carries what the conversation already knows when the user
// answers a follow-up question.
type FollowUpContext struct {
	// Intent is the intent the follow-up belongs to.
	Intent nlu.IntentTag
	// History is the recent conversation, oldest first.
	History []nlu.ConversationTurn
	// Options holds the numbered menu the assistant last showed, if any,
	// so a bare "2" can be resolved to the second option.
	Options []string
}

// LLMInvoker is the slice of the provider manager the extractor needs.
type LLMInvoker interface {
	GenerateJSON(ctx context.Context, req *llmprovider.Request, out any) error
}

var _ LLMInvoker = (*llmprovider.Manager)(nil)

// llmExtraction is the structured output requested from the model for one
// entity.
type llmExtraction struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

func extractionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"value":      map[string]interface{}{"type": "string"},
			"confidence": map[string]interface{}{"type": "number"},
		},
		"required": []string{"value"},
	}
}
