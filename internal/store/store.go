// Package store defines the persistence operations the pipeline consumes
// and provides two implementations: an embedded SQLite database and an
// in-memory store used by tests.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"jmoretti/finledger/internal/models"
)

// TransactionStore covers the ledger transaction operations.
type TransactionStore interface {
	// InsertTransactions batch-inserts previewed transactions for an account
	// and returns them with persisted ids, in input order.
	InsertTransactions(ctx context.Context, accountID string, txs []models.CategorizedTransaction) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// ListTransactions returns an account's transactions ordered by date
	// then insertion time; an empty accountID returns every account.
	ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error)

	// HasTransaction is the duplicate-detector query over the
	// (date, amount, normalized description) fingerprint.
	HasTransaction(ctx context.Context, date string, amount string, description string) (bool, error)
}

// PreferenceStore covers categorization preference persistence.
type PreferenceStore interface {
	UpsertLearnedPreference(ctx context.Context, merchant, instruction string) (models.Preference, error)
	ListPreferences(ctx context.Context) ([]models.Preference, error)
}

// LiabilityStore covers liabilities, payment rules, and payments.
// ListActiveRules returns rules ordered by creation sequence; that order is
// the deterministic tie-break when several rules match one transaction.
type LiabilityStore interface {
	CreateLiability(ctx context.Context, name string, balance decimal.Decimal) (models.Liability, error)
	GetLiability(ctx context.Context, id string) (models.Liability, error)
	AdjustLiabilityBalance(ctx context.Context, id string, delta decimal.Decimal) error

	CreateRule(ctx context.Context, rule models.LiabilityPaymentRule) (models.LiabilityPaymentRule, error)
	ListActiveRules(ctx context.Context) ([]models.LiabilityPaymentRule, error)

	CreatePayment(ctx context.Context, payment models.LiabilityPayment) (models.LiabilityPayment, error)
	GetPayment(ctx context.Context, id string) (models.LiabilityPayment, error)
	SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	ActivePaymentForTransaction(ctx context.Context, transactionID string) (*models.LiabilityPayment, error)
	ListPayments(ctx context.Context, liabilityID string) ([]models.LiabilityPayment, error)
}

// Store is the full persistence surface. Transact runs fn against a view of
// the store whose writes commit together or not at all; the liability state
// machine relies on it so no error can leave a payment status and a balance
// reflecting different worlds. Implementations serialize transactions, which
// provides the per-liability mutual exclusion the balance invariant needs.
type Store interface {
	TransactionStore
	PreferenceStore
	LiabilityStore

	Transact(ctx context.Context, fn func(Store) error) error
}
