// Package pipeline orchestrates the ingestion-to-reconciliation flow on
// behalf of the external caller: statement preview, ledger commit, and
// post-persistence edits with their liability and preference coupling.
package pipeline

import (
	"context"

	"github.com/shopspring/decimal"

	"jmoretti/finledger/internal/categorizer"
	"jmoretti/finledger/internal/ingest"
	"jmoretti/finledger/internal/liability"
	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/preferences"
	"jmoretti/finledger/internal/store"
)

// Service is the pipeline facade.
type Service struct {
	ingest      *ingest.Service
	engine      *categorizer.Engine
	learner     *preferences.Learner
	liabilities *liability.Service
	store       store.Store
	logger      logging.Logger
}

func NewService(in *ingest.Service, engine *categorizer.Engine, learner *preferences.Learner, liabilities *liability.Service, st store.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{
		ingest:      in,
		engine:      engine,
		learner:     learner,
		liabilities: liabilities,
		store:       st,
		logger:      logger,
	}
}

// PreviewResult is what the upload caller renders before committing.
type PreviewResult struct {
	Detected         bool                            `json:"detected"`
	Institution      string                          `json:"institution"`
	ParserName       string                          `json:"parserName"`
	Success          bool                            `json:"success"`
	TransactionCount int                             `json:"transactionCount"`
	DuplicateCount   int                             `json:"duplicateCount"`
	Transactions     []models.CategorizedTransaction `json:"transactions"`
	AccountType      models.AccountType              `json:"accountType"`
	Error            string                          `json:"error,omitempty"`
}

// Preview parses a statement, flags duplicates, and categorizes the batch.
// Nothing is persisted. Each returned transaction carries OriginalCategory
// so a later human edit can be recognized as a true correction.
func (s *Service) Preview(ctx context.Context, data []byte) (PreviewResult, error) {
	detection := s.ingest.Detect(data)
	parsed := s.ingest.Parse(data)
	if !parsed.Success {
		return PreviewResult{
			Detected:    detection.Detected,
			Institution: parsed.Institution,
			ParserName:  detection.ParserName,
			AccountType: parsed.AccountType,
			Error:       parsed.Error,
		}, nil
	}

	flagged, err := s.ingest.FlagDuplicates(ctx, parsed.Transactions)
	if err != nil {
		return PreviewResult{}, err
	}

	categorizations := s.engine.Categorize(ctx, parsed.Transactions)
	dupCount := 0
	for i := range flagged {
		c := categorizations[i]
		flagged[i].Category = c.Category
		flagged[i].Subcategory = c.Subcategory
		flagged[i].Merchant = c.Merchant
		flagged[i].IsTransfer = flagged[i].IsTransfer || c.IsTransfer
		flagged[i].OriginalCategory = c.Category
		if flagged[i].IsDuplicate {
			dupCount++
		}
	}

	return PreviewResult{
		Detected:         detection.Detected,
		Institution:      parsed.Institution,
		ParserName:       detection.ParserName,
		Success:          true,
		TransactionCount: len(flagged),
		DuplicateCount:   dupCount,
		Transactions:     flagged,
		AccountType:      parsed.AccountType,
	}, nil
}

// CommitResult reports a completed ledger commit.
type CommitResult struct {
	Inserted    int    `json:"inserted"`
	AccountID   string `json:"accountId"`
	NewPayments int    `json:"newPayments"`
}

// Commit persists the reviewed preview transactions and runs liability
// matching for each inserted transaction in insert order. Duplicates the
// reviewer chose to exclude are dropped here.
func (s *Service) Commit(ctx context.Context, accountID string, txs []models.CategorizedTransaction) (CommitResult, error) {
	include := make([]models.CategorizedTransaction, 0, len(txs))
	for _, tx := range txs {
		if tx.IsDuplicate && !tx.IncludeDuplicate {
			continue
		}
		include = append(include, tx)
	}

	inserted, err := s.store.InsertTransactions(ctx, accountID, include)
	if err != nil {
		return CommitResult{}, err
	}

	newPayments := 0
	for _, tx := range inserted {
		payment, err := s.liabilities.MatchTransaction(ctx, tx)
		if err != nil {
			// Matching failure must not undo the committed insert; surfaced
			// in logs and skipped for this transaction.
			s.logger.WithError(err).Warn("liability matching failed",
				logging.Field{Key: logging.FieldTransactionID, Value: tx.ID})
			continue
		}
		if payment != nil {
			newPayments++
		}
	}

	s.logger.Info("statement committed",
		logging.Field{Key: logging.FieldAccountID, Value: accountID},
		logging.Field{Key: logging.FieldCount, Value: len(inserted)})
	return CommitResult{
		Inserted:    len(inserted),
		AccountID:   accountID,
		NewPayments: newPayments,
	}, nil
}

// TransactionUpdate is a partial edit of a persisted transaction. Nil
// fields are left unchanged.
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	Category    *string
	Subcategory *string
	IsTransfer  *bool
}

// UpdateTransaction applies a post-persistence edit.
//
// Amount coupling: when the transaction has an applied payment, the payment
// is reversed (restoring the balance) and matching re-runs against the new
// amount, all inside one store transaction, so no intermediate state
// reflects both the old and new amounts.
//
// Category coupling: a category different from the stored OriginalCategory
// is a true correction and feeds the preference learner.
func (s *Service) UpdateTransaction(ctx context.Context, id string, update TransactionUpdate) (models.Transaction, error) {
	var updated models.Transaction
	err := s.store.Transact(ctx, func(st store.Store) error {
		tx, err := st.GetTransaction(ctx, id)
		if err != nil {
			return err
		}

		amountChanged := update.Amount != nil && !update.Amount.Equal(tx.Amount)
		if amountChanged {
			if err := s.liabilities.ReleaseTransaction(ctx, st, tx.ID); err != nil {
				return err
			}
			tx.Amount = *update.Amount
		}
		if update.Category != nil {
			tx.Category = *update.Category
		}
		if update.Subcategory != nil {
			tx.Subcategory = *update.Subcategory
		}
		if update.IsTransfer != nil {
			tx.IsTransfer = *update.IsTransfer
		}

		if err := st.UpdateTransaction(ctx, tx); err != nil {
			return err
		}
		if amountChanged {
			if _, err := s.liabilities.RematchTransaction(ctx, st, tx); err != nil {
				return err
			}
		}
		updated = tx
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.learnCorrection(ctx, updated, update)
	return updated, nil
}

// learnCorrection feeds the preference learner when a category edit differs
// from the engine's original suggestion. Learning failures are logged, not
// surfaced: the edit itself already succeeded.
func (s *Service) learnCorrection(ctx context.Context, tx models.Transaction, update TransactionUpdate) {
	if s.learner == nil || update.Category == nil {
		return
	}
	if *update.Category == "" || *update.Category == tx.OriginalCategory {
		return
	}
	merchant := tx.Merchant
	if merchant == "" {
		merchant = categorizer.NormalizeMerchant(tx.Description)
	}
	_, err := s.learner.Learn(ctx, preferences.Correction{
		Merchant:    merchant,
		Category:    tx.Category,
		Subcategory: tx.Subcategory,
		IsTransfer:  tx.IsTransfer,
	})
	if err != nil {
		s.logger.WithError(err).Warn("preference learning failed",
			logging.Field{Key: logging.FieldMerchant, Value: merchant})
	}
}

// DeleteTransaction removes a transaction, reversing its applied payment
// first so the liability balance stays consistent.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	return s.store.Transact(ctx, func(st store.Store) error {
		if _, err := st.GetTransaction(ctx, id); err != nil {
			return err
		}
		if err := s.liabilities.ReleaseTransaction(ctx, st, id); err != nil {
			return err
		}
		return st.DeleteTransaction(ctx, id)
	})
}

// ItemOutcome reports one transaction's result within a bulk operation.
type ItemOutcome struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkUpdate applies the same update to many transactions. Each transaction
// is processed independently: one failure never aborts the others, and each
// outcome is reported individually.
func (s *Service) BulkUpdate(ctx context.Context, ids []string, update TransactionUpdate) []ItemOutcome {
	out := make([]ItemOutcome, 0, len(ids))
	for _, id := range ids {
		_, err := s.UpdateTransaction(ctx, id, update)
		out = append(out, outcome(id, err))
	}
	return out
}

// BulkDelete deletes many transactions with the same per-item isolation.
func (s *Service) BulkDelete(ctx context.Context, ids []string) []ItemOutcome {
	out := make([]ItemOutcome, 0, len(ids))
	for _, id := range ids {
		out = append(out, outcome(id, s.DeleteTransaction(ctx, id)))
	}
	return out
}

func outcome(id string, err error) ItemOutcome {
	if err != nil {
		return ItemOutcome{ID: id, Error: err.Error()}
	}
	return ItemOutcome{ID: id, Success: true}
}

// ApplyPayment, SkipPayment, and ReversePayment expose the payment actions
// to the caller.
func (s *Service) ApplyPayment(ctx context.Context, paymentID string) error {
	return s.liabilities.Apply(ctx, paymentID)
}

func (s *Service) SkipPayment(ctx context.Context, paymentID string) error {
	return s.liabilities.Skip(ctx, paymentID)
}

func (s *Service) ReversePayment(ctx context.Context, paymentID string) error {
	return s.liabilities.Reverse(ctx, paymentID)
}
