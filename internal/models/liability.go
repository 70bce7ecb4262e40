package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Liability is a tracked debt instrument with a running balance that applied
// payments reduce.
type Liability struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LiabilityPaymentRule describes how ledger transactions are recognized as
// payments toward a liability. At least one match field must be set. Seq is
// the creation sequence and provides the deterministic tie-break when several
// active rules match one transaction.
type LiabilityPaymentRule struct {
	ID               string    `json:"id"`
	LiabilityID      string    `json:"liabilityId"`
	MatchMerchant    string    `json:"matchMerchant,omitempty"`
	MatchDescription string    `json:"matchDescription,omitempty"`
	MatchAccountID   string    `json:"matchAccountId,omitempty"`
	AutoApply        bool      `json:"autoApply"`
	IsActive         bool      `json:"isActive"`
	Seq              int64     `json:"seq"`
	CreatedAt        time.Time `json:"createdAt"`
}

// HasMatchField reports whether the rule carries at least one match criterion.
func (r LiabilityPaymentRule) HasMatchField() bool {
	return r.MatchMerchant != "" || r.MatchDescription != "" || r.MatchAccountID != ""
}

// PaymentStatus is the tagged state of a liability payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApplied  PaymentStatus = "applied"
	PaymentSkipped  PaymentStatus = "skipped"
	PaymentReversed PaymentStatus = "reversed"
)

// paymentTransitions is the full transition table. skipped and reversed are
// terminal; a new match produces a fresh record instead.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentApplied, PaymentSkipped},
	PaymentApplied: {PaymentReversed},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves this state.
func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

// LiabilityPayment links a ledger transaction to a liability. Amount is the
// positive payment value; only applied payments are reflected in the
// liability balance. A transaction has at most one active (non-reversed)
// payment at a time.
type LiabilityPayment struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	LiabilityID   string          `json:"liabilityId"`
	RuleID        string          `json:"ruleId,omitempty"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Active reports whether the payment still claims its transaction.
// Reversed payments are superseded; skipped payments still block re-matching
// of the same transaction until it changes.
func (p LiabilityPayment) Active() bool {
	return p.Status != PaymentReversed
}
