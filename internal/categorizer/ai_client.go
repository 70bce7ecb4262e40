package categorizer

import (
	"context"

	"jmoretti/finledger/internal/models"
)

// AIClient is the external batch classification contract. One call covers
// the whole statement; implementations must return exactly one result per
// input transaction, in input order.
type AIClient interface {
	CategorizeBatch(ctx context.Context, txs []models.ParsedTransaction, instructions []string) ([]models.Categorization, error)
}

// InstructionSource provides the durable per-merchant preference
// instructions the AI tier includes in its context.
type InstructionSource interface {
	Instructions(ctx context.Context) ([]string, error)
}
