package extractor

import (
	"booking-assistant-nlu/internal/nlu/catalog"
	"booking-assistant-nlu/internal/nlu/normalizer"
	"booking-assistant-nlu/internal/nlu/pattern"
	"booking-assistant-nlu/pkg/log"
)

// Extractor resolves single entities from follow-up replies. Pattern rules
// answer first; the LLM fills in only what patterns cannot read.
type Extractor struct {
	l       log.Logger
	llm     LLMInvoker
	pat     *pattern.Extractor
	norm    *normalizer.Normalizer
	catalog catalog.Resolver
}

// New builds an Extractor. llm and catalogResolver may be nil; the
// corresponding stages are then skipped.
func New(l log.Logger, llm LLMInvoker, pat *pattern.Extractor, norm *normalizer.Normalizer, catalogResolver catalog.Resolver) *Extractor {
	return &Extractor{
		l:       l,
		llm:     llm,
		pat:     pat,
		norm:    norm,
		catalog: catalogResolver,
	}
}
