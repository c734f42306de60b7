package classifier

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/pkg/llmprovider"
)

// multiIntentConnectives hint that one message carries more than one
// request, which disqualifies the pattern fast path.
var multiIntentConnectives = []string{" and ", " also ", " plus ", " then ", " after "}

const historyWindow = 6

// Classify determines the intents behind message. History and state are
// optional conversation context. The returned method records which path
// produced the result. Classify never returns an error; when the LLM is
// unreachable it degrades to unclear_intent with a clarification request.
func (c *Classifier) Classify(ctx context.Context, message string, history []nlu.ConversationTurn, state *nlu.DialogState) (*nlu.ClassificationResult, nlu.Method) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return c.fallback(reasonNoIntents), nlu.MethodPattern
	}

	contextual := len(history) > 0 || state != nil

	if result, ok := c.tryFastPath(ctx, trimmed, contextual); ok {
		return result, nlu.MethodPattern
	}

	result := c.classifyWithLLM(ctx, trimmed, history, state)
	result.ContextUsed = contextual
	return result, nlu.MethodLLM
}

// tryFastPath answers from patterns alone when exactly one candidate clears
// the pattern threshold and the message does not look multi-intent. The fast
// path also applies mid-dialog: an unambiguous new request overrides any
// pending follow-up question.
func (c *Classifier) tryFastPath(ctx context.Context, message string, contextual bool) (*nlu.ClassificationResult, bool) {
	if hasMultiIntentConnective(message) {
		return nil, false
	}

	cacheKey := strings.ToLower(message)
	if !contextual {
		if cached, ok := c.cache.Get(cacheKey); ok {
			return copyResult(cached), true
		}
	}

	scores := c.matcher.Match(message)
	var strong []nlu.RankedIntent
	for _, s := range scores {
		if s.Confidence >= c.thresholds.PatternMatch {
			strong = append(strong, nlu.RankedIntent{Tag: s.Tag, Confidence: s.Confidence})
		}
	}
	if len(strong) != 1 {
		return nil, false
	}

	top := strong[0]
	top.Entities = c.relevantEntities(top.Tag, c.extractor.ExtractRaw(message))

	result := &nlu.ClassificationResult{
		Intents:       []nlu.RankedIntent{top},
		PrimaryIntent: top.Tag,
	}
	c.l.Debugf(ctx, "%s: fast path hit intent=%s confidence=%.2f", LogPrefixClassify, top.Tag, top.Confidence)

	if !contextual {
		// cache an independent copy so caller mutations can't leak back in
		c.cache.Add(cacheKey, *copyResult(*result))
	}
	return result, true
}

// classifyWithLLM runs the slow path. Provider fallback and bounded retry
// live inside the invoker.
func (c *Classifier) classifyWithLLM(ctx context.Context, message string, history []nlu.ConversationTurn, state *nlu.DialogState) *nlu.ClassificationResult {
	if c.llm == nil {
		return c.fallback(reasonLLMUnavailable)
	}

	var out llmClassification
	if err := c.llm.GenerateJSON(ctx, c.buildRequest(message, history, state), &out); err != nil {
		c.l.Warnf(ctx, "%s: llm classification failed, degrading: %v", LogPrefixClassify, err)
		return c.fallback(reasonLLMUnavailable)
	}

	intents := c.rankIntents(message, out.Intents)
	if len(intents) == 0 {
		return c.fallback(reasonLowConfidence)
	}

	result := &nlu.ClassificationResult{
		Intents:        intents,
		PrimaryIntent:  intents[0].Tag,
		ContextSummary: out.ContextSummary,
	}
	if intents[0].Confidence < c.thresholds.Clarification {
		result.RequiresClarification = true
		result.ClarificationReason = reasonLowConfidence
	}
	return result
}

// rankIntents validates, corroborates, normalizes, filters, and orders the
// model's candidates. Candidates below the accept threshold survive only
// when the pattern matcher independently scored the same tag.
func (c *Classifier) rankIntents(message string, candidates []llmIntent) []nlu.RankedIntent {
	patternScores := make(map[nlu.IntentTag]float64)
	for _, s := range c.matcher.Match(message) {
		patternScores[s.Tag] = s.Confidence
	}

	var ranked []nlu.RankedIntent
	for _, cand := range candidates {
		tag := nlu.IntentTag(strings.TrimSpace(cand.Tag))
		if !tag.Valid() {
			continue
		}
		confidence := clamp01(cand.Confidence)
		if confidence < c.thresholds.Secondary {
			continue
		}
		if confidence < c.thresholds.LLMAccept && patternScores[tag] == 0 {
			continue
		}
		ranked = append(ranked, nlu.RankedIntent{
			Tag:        tag,
			Confidence: confidence,
			Entities:   c.relevantEntities(tag, c.normalizeLLMEntities(message, tag, cand.Entities)),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		pi, _ := nlu.ProfileFor(ranked[i].Tag)
		pj, _ := nlu.ProfileFor(ranked[j].Tag)
		return pi.Priority > pj.Priority
	})
	ranked = dedupeByTag(ranked)
	if len(ranked) > c.thresholds.MaxIntents {
		ranked = ranked[:c.thresholds.MaxIntents]
	}
	return ranked
}

// normalizeLLMEntities canonicalizes the model's raw entity values. For
// booking intents an explicit action verb in the message overrides whatever
// action the model reported.
func (c *Classifier) normalizeLLMEntities(message string, tag nlu.IntentTag, raw map[string]string) map[nlu.EntityTag]string {
	entities := make(map[nlu.EntityTag]string, len(raw)+1)
	for key, value := range raw {
		entities[nlu.EntityTag(key)] = value
	}
	if tag == nlu.IntentBookingManagement {
		if action, ok := c.extractor.ExtractAction(message); ok {
			entities[nlu.EntityAction] = action
		}
	}
	return c.norm.All(entities)
}

func (c *Classifier) relevantEntities(tag nlu.IntentTag, entities map[nlu.EntityTag]string) map[nlu.EntityTag]string {
	profile, ok := nlu.ProfileFor(tag)
	if !ok {
		return nil
	}
	return profile.FilterEntities(entities)
}

func (c *Classifier) buildRequest(message string, history []nlu.ConversationTurn, state *nlu.DialogState) *llmprovider.Request {
	var b strings.Builder
	if len(history) > 0 || state != nil {
		fmt.Fprintf(&b, PromptContextHeader, c.norm.Now().Format("2006-01-02"))
		start := 0
		if len(history) > historyWindow {
			start = len(history) - historyWindow
		}
		for _, turn := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		if state != nil {
			fmt.Fprintf(&b, PromptDialogState, state.State, state.Intent)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, PromptClassifyUser, message)

	return &llmprovider.Request{
		SystemInstruction: PromptClassifySystem,
		Messages: []llmprovider.Message{
			{Role: "user", Text: b.String()},
		},
		Temperature:    classifyTemperature,
		MaxTokens:      1024,
		ResponseSchema: classificationSchema(),
	}
}

func (c *Classifier) fallback(reason string) *nlu.ClassificationResult {
	return &nlu.ClassificationResult{
		Intents: []nlu.RankedIntent{
			{Tag: nlu.IntentUnclear, Confidence: fallbackConfidence},
		},
		PrimaryIntent:         nlu.IntentUnclear,
		RequiresClarification: true,
		ClarificationReason:   reason,
	}
}

// hasMultiIntentConnective reports whether the message contains a
// coordinating connective. "day after tomorrow" is a date phrase, not a
// second request, so it is excised before checking.
func hasMultiIntentConnective(message string) bool {
	lower := strings.ToLower(message)
	lower = strings.ReplaceAll(lower, "day after tomorrow", "")
	for _, conn := range multiIntentConnectives {
		if strings.Contains(lower, conn) {
			return true
		}
	}
	return false
}

func dedupeByTag(intents []nlu.RankedIntent) []nlu.RankedIntent {
	seen := make(map[nlu.IntentTag]bool, len(intents))
	out := intents[:0]
	for _, in := range intents {
		if seen[in.Tag] {
			continue
		}
		seen[in.Tag] = true
		out = append(out, in)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// copyResult clones the intent list and each entity map, since results are
// caller-owned once returned.
func copyResult(r nlu.ClassificationResult) *nlu.ClassificationResult {
	out := r
	out.Intents = append([]nlu.RankedIntent(nil), r.Intents...)
	for i, intent := range out.Intents {
		if intent.Entities == nil {
			continue
		}
		entities := make(map[nlu.EntityTag]string, len(intent.Entities))
		for tag, value := range intent.Entities {
			entities[tag] = value
		}
		out.Intents[i].Entities = entities
	}
	return &out
}
