package extractor

import (
	"context"
	"fmt"
	"strings"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/pkg/llmprovider"
)

// ExtractFromFollowUp resolves one entity from a follow-up reply. Pattern
// rules run first and short-circuit when confident; otherwise the LLM is
// asked, and a weak pattern hit is kept as the last resort. Returns nil when
// nothing usable was found.
func (e *Extractor) ExtractFromFollowUp(ctx context.Context, message string, tag nlu.EntityTag, fctx *FollowUpContext) *nlu.EntityExtractionResult {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	patternHit := e.patternExtract(ctx, message, tag, fctx)
	if patternHit != nil && patternHit.Confidence >= patternShortCircuit {
		return patternHit
	}

	if llmHit := e.llmExtract(ctx, message, tag, fctx); llmHit != nil {
		return llmHit
	}

	// weak pattern hit beats nothing
	return patternHit
}

// ExtractMultipleEntities resolves several entities from one reply. When
// both a date and a time are wanted and the reply carries both phrases, they
// are taken together in one pass so "tomorrow at 2pm" never loses its time
// half to the date rule.
func (e *Extractor) ExtractMultipleEntities(ctx context.Context, message string, tags []nlu.EntityTag, fctx *FollowUpContext) map[nlu.EntityTag]*nlu.EntityExtractionResult {
	message = strings.TrimSpace(message)
	results := make(map[nlu.EntityTag]*nlu.EntityExtractionResult)
	if message == "" || len(tags) == 0 {
		return results
	}

	remaining := tags
	if wantsBoth(tags, nlu.EntityDate, nlu.EntityTime) {
		if date, timeOfDay, ok := e.combinedDateTime(message); ok {
			results[nlu.EntityDate] = date
			results[nlu.EntityTime] = timeOfDay
			remaining = without(tags, nlu.EntityDate, nlu.EntityTime)
		}
	}

	for _, tag := range remaining {
		if r := e.ExtractFromFollowUp(ctx, message, tag, fctx); r != nil {
			results[tag] = r
		}
	}
	return results
}

// combinedDateTime extracts a date phrase and a time phrase from the same
// message in one pass.
func (e *Extractor) combinedDateTime(message string) (*nlu.EntityExtractionResult, *nlu.EntityExtractionResult, bool) {
	datePhrase, dateOK := e.pat.ExtractDatePhrase(message)
	timePhrase, timeOK := e.pat.ExtractTimePhrase(message)
	if !dateOK || !timeOK {
		return nil, nil, false
	}
	dateNorm, dateOK := e.norm.Date(datePhrase)
	timeNorm, timeOK := e.norm.Time(timePhrase)
	if !dateOK || !timeOK {
		return nil, nil, false
	}
	return &nlu.EntityExtractionResult{
			Tag:             nlu.EntityDate,
			RawValue:        datePhrase,
			NormalizedValue: dateNorm,
			Confidence:      confidenceStrong,
			Method:          nlu.MethodCombinedPattern,
		}, &nlu.EntityExtractionResult{
			Tag:             nlu.EntityTime,
			RawValue:        timePhrase,
			NormalizedValue: timeNorm,
			Confidence:      confidenceStrong,
			Method:          nlu.MethodCombinedPattern,
		}, true
}

// llmExtract asks the model for the entity value. A sentinel answer means
// the entity is absent from the reply.
func (e *Extractor) llmExtract(ctx context.Context, message string, tag nlu.EntityTag, fctx *FollowUpContext) *nlu.EntityExtractionResult {
	if e.llm == nil {
		return nil
	}

	description, ok := entityDescriptions[string(tag)]
	if !ok {
		description = strings.ReplaceAll(string(tag), "_", " ")
	}

	var history strings.Builder
	if fctx != nil {
		start := 0
		if len(fctx.History) > 4 {
			start = len(fctx.History) - 4
		}
		for _, turn := range fctx.History[start:] {
			fmt.Fprintf(&history, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	req := &llmprovider.Request{
		SystemInstruction: PromptExtractSystem,
		Messages: []llmprovider.Message{
			{Role: "user", Text: fmt.Sprintf(PromptExtractUser, description, history.String(), message, description)},
		},
		Temperature:    extractTemperature,
		MaxTokens:      256,
		ResponseSchema: extractionSchema(),
	}

	var out llmExtraction
	if err := e.llm.GenerateJSON(ctx, req, &out); err != nil {
		e.l.Warnf(ctx, "%s: llm extraction failed for %s: %v", LogPrefixExtract, tag, err)
		return nil
	}

	value := strings.TrimSpace(out.Value)
	if value == "" || strings.EqualFold(value, notFoundSentinel) {
		return nil
	}

	// a guess the model itself doubts is a failure, not an answer
	confidence := out.Confidence
	if confidence < llmConfidenceFloor {
		return nil
	}
	if confidence > 1 {
		confidence = 1
	}

	normalized, _ := e.norm.Normalize(tag, value)
	return &nlu.EntityExtractionResult{
		Tag:             tag,
		RawValue:        value,
		NormalizedValue: normalized,
		Confidence:      confidence,
		Method:          nlu.MethodLLM,
	}
}

func wantsBoth(tags []nlu.EntityTag, a, b nlu.EntityTag) bool {
	var hasA, hasB bool
	for _, t := range tags {
		if t == a {
			hasA = true
		}
		if t == b {
			hasB = true
		}
	}
	return hasA && hasB
}

func without(tags []nlu.EntityTag, drop ...nlu.EntityTag) []nlu.EntityTag {
	dropSet := make(map[nlu.EntityTag]bool, len(drop))
	for _, d := range drop {
		dropSet[d] = true
	}
	out := make([]nlu.EntityTag, 0, len(tags))
	for _, t := range tags {
		if !dropSet[t] {
			out = append(out, t)
		}
	}
	return out
}
