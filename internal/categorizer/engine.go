// Package categorizer assigns spending categories through a two-tier engine:
// an AI batch classifier when configured, and a deterministic keyword/sign
// tier that both serves as the fallback and the only tier in offline
// deployments.
package categorizer

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
)

// Engine is the two-tier categorization engine. Categorize is total: it
// never fails and always returns one result per input, in order.
type Engine struct {
	ai           AIClient // nil when the AI tier is not configured
	rules        *RuleCategorizer
	instructions InstructionSource // nil when preference context is unavailable
	cache        *gocache.Cache
	logger       logging.Logger
}

// NewEngine builds the engine. ai and instructions may be nil; cacheTTL <= 0
// disables result memoization.
func NewEngine(ai AIClient, rules *RuleCategorizer, instructions InstructionSource, cacheTTL time.Duration, logger logging.Logger) *Engine {
	if rules == nil {
		rules = NewRuleCategorizer(nil)
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	var cache *gocache.Cache
	if cacheTTL > 0 {
		cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &Engine{ai: ai, rules: rules, instructions: instructions, cache: cache, logger: logger}
}

// Categorize classifies a batch. The AI tier handles the whole batch in one
// request; any AI failure (unreachable service, malformed or misaligned
// response) is caught and the entire batch is re-run through the rule tier,
// so no transaction ever lacks a result and no error escapes.
func (e *Engine) Categorize(ctx context.Context, txs []models.ParsedTransaction) []models.Categorization {
	if len(txs) == 0 {
		return nil
	}

	if cached, ok := e.fromCache(txs); ok {
		return cached
	}

	if e.ai != nil {
		results, err := e.categorizeWithAI(ctx, txs)
		if err == nil {
			e.toCache(txs, results)
			return results
		}
		e.logger.WithError(err).Warn("AI categorization failed, falling back to rules",
			logging.Field{Key: logging.FieldCount, Value: len(txs)})
	}

	results := e.rules.Categorize(txs)
	e.toCache(txs, results)
	return results
}

func (e *Engine) categorizeWithAI(ctx context.Context, txs []models.ParsedTransaction) ([]models.Categorization, error) {
	var ins []string
	if e.instructions != nil {
		loaded, err := e.instructions.Instructions(ctx)
		if err != nil {
			// Missing preference context degrades the prompt, not the batch.
			e.logger.WithError(err).Warn("could not load preference instructions")
		} else {
			ins = loaded
		}
	}
	results, err := e.ai.CategorizeBatch(ctx, txs, ins)
	if err != nil {
		return nil, &parsererror.CategorizationError{Tier: "ai", Err: err}
	}
	return results, nil
}

// fromCache serves the whole batch from the merchant-level cache, but only
// when every transaction hits; a partial hit would break result ordering
// guarantees for mixed batches.
func (e *Engine) fromCache(txs []models.ParsedTransaction) ([]models.Categorization, bool) {
	if e.cache == nil {
		return nil, false
	}
	out := make([]models.Categorization, len(txs))
	for i, tx := range txs {
		v, ok := e.cache.Get(cacheKey(tx))
		if !ok {
			return nil, false
		}
		out[i] = v.(models.Categorization)
	}
	return out, true
}

func (e *Engine) toCache(txs []models.ParsedTransaction, results []models.Categorization) {
	if e.cache == nil {
		return
	}
	for i, tx := range txs {
		e.cache.SetDefault(cacheKey(tx), results[i])
	}
}

func cacheKey(tx models.ParsedTransaction) string {
	sign := "-"
	if tx.Amount.IsPositive() {
		sign = "+"
	}
	return sign + "|" + tx.Description
}
