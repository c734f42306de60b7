package classifier

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/internal/nlu/normalizer"
	"booking-assistant-nlu/internal/nlu/pattern"
	"booking-assistant-nlu/pkg/log"
)

const (
	fastPathCacheSize = 1024
	fastPathCacheTTL  = 5 * time.Minute
)

// Classifier determines user intents with a pattern fast path and an LLM
// slow path.
type Classifier struct {
	l          log.Logger
	llm        LLMInvoker
	matcher    *pattern.Matcher
	extractor  *pattern.Extractor
	norm       *normalizer.Normalizer
	thresholds Thresholds

	// fast-path results for context-free messages
	cache *expirable.LRU[string, nlu.ClassificationResult]
}

// New builds a Classifier. The LLM invoker may be nil, in which case every
// slow-path classification falls back to unclear_intent.
func New(l log.Logger, llm LLMInvoker, matcher *pattern.Matcher, extractor *pattern.Extractor, norm *normalizer.Normalizer, thresholds Thresholds) *Classifier {
	if thresholds.MaxIntents <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Classifier{
		l:          l,
		llm:        llm,
		matcher:    matcher,
		extractor:  extractor,
		norm:       norm,
		thresholds: thresholds,
		cache:      expirable.NewLRU[string, nlu.ClassificationResult](fastPathCacheSize, nil, fastPathCacheTTL),
	}
}
