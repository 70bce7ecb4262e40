// Package models defines the canonical transaction representation that every
// statement format converts into, plus the categorization, preference, and
// liability types shared across the pipeline.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType identifies the kind of account a statement belongs to.
type AccountType string

const (
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeBank       AccountType = "bank"
	AccountTypeBrokerage  AccountType = "brokerage"
)

// ParsedTransaction is the canonical, not-yet-persisted transaction produced
// by the parser chain. Dates are always ISO (YYYY-MM-DD) and the amount sign
// is always normalized so that outflows are negative, regardless of the
// convention the source institution uses.
type ParsedTransaction struct {
	Date        string            `json:"date"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Category    string            `json:"category,omitempty"`
	Subcategory string            `json:"subcategory,omitempty"`
	Merchant    string            `json:"merchant,omitempty"`
	IsTransfer  bool              `json:"isTransfer"`
	RawData     map[string]string `json:"rawData,omitempty"`
}

// ParseResult is the uniform outcome of running one parser over a statement.
// A failed parse carries zero transactions and an error message.
type ParseResult struct {
	Success      bool                `json:"success"`
	Transactions []ParsedTransaction `json:"transactions"`
	AccountType  AccountType         `json:"accountType"`
	Institution  string              `json:"institution"`
	Error        string              `json:"error,omitempty"`
}

// DetectionResult labels a statement for preview without parsing it.
type DetectionResult struct {
	Detected    bool   `json:"detected"`
	ParserName  string `json:"parserName"`
	Institution string `json:"institution"`
}

// Categorization is the per-transaction output of the categorization engine.
// Both the AI tier and the rule-based tier produce this same shape.
type Categorization struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Merchant    string `json:"merchant,omitempty"`
	IsTransfer  bool   `json:"isTransfer"`
}

// CategorizedTransaction is a parsed transaction decorated for preview:
// the engine's suggestion, the original suggestion preserved so later edits
// can be recognized as true corrections, and the duplicate flags.
type CategorizedTransaction struct {
	ParsedTransaction
	OriginalCategory string `json:"originalCategory"`
	IsDuplicate      bool   `json:"isDuplicate"`
	IncludeDuplicate bool   `json:"includeDuplicate"`
}

// Transaction is a persisted ledger transaction.
type Transaction struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"accountId"`
	Date             string          `json:"date"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	Category         string          `json:"category,omitempty"`
	Subcategory      string          `json:"subcategory,omitempty"`
	Merchant         string          `json:"merchant,omitempty"`
	IsTransfer       bool            `json:"isTransfer"`
	OriginalCategory string          `json:"originalCategory,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Parsed returns the canonical view of a persisted transaction, used when a
// stored transaction is re-run through categorization or liability matching.
func (t Transaction) Parsed() ParsedTransaction {
	return ParsedTransaction{
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Merchant:    t.Merchant,
		IsTransfer:  t.IsTransfer,
	}
}
