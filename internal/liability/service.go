// Package liability matches ledger transactions against payment rules and
// runs the payment lifecycle that keeps each liability balance synchronized
// with its applied payments.
package liability

import (
	"context"
	"strings"

	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
	"jmoretti/finledger/internal/store"
)

// Service owns payment matching and the payment state machine. Every
// transition that touches a balance runs inside one store transaction, so no
// failure leaves payment status and balance disagreeing.
type Service struct {
	store  store.Store
	logger logging.Logger
}

func NewService(st store.Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{store: st, logger: logger}
}

// MatchTransaction evaluates active rules against a newly inserted
// transaction. Rules are evaluated in creation order and the first match
// wins. A match creates a payment: applied immediately when the rule says
// autoApply, pending otherwise. Returns nil when nothing matches or the
// transaction already has an active payment.
func (s *Service) MatchTransaction(ctx context.Context, tx models.Transaction) (*models.LiabilityPayment, error) {
	existing, err := s.store.ActivePaymentForTransaction(ctx, tx.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	var created *models.LiabilityPayment
	err = s.store.Transact(ctx, func(st store.Store) error {
		var err error
		created, err = s.RematchTransaction(ctx, st, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if created != nil {
		s.logger.Info("liability payment matched",
			logging.Field{Key: logging.FieldPaymentID, Value: created.ID},
			logging.Field{Key: logging.FieldLiabilityID, Value: created.LiabilityID},
			logging.Field{Key: logging.FieldStatus, Value: string(created.Status)})
	}
	return created, nil
}

// ruleMatches applies substring semantics, case-insensitively, over the
// rule's populated match fields. Every populated field must match.
func ruleMatches(rule models.LiabilityPaymentRule, tx models.Transaction) bool {
	if !rule.HasMatchField() {
		return false
	}
	if rule.MatchMerchant != "" && !containsFold(tx.Merchant, rule.MatchMerchant) {
		return false
	}
	if rule.MatchDescription != "" && !containsFold(tx.Description, rule.MatchDescription) {
		return false
	}
	if rule.MatchAccountID != "" && rule.MatchAccountID != tx.AccountID {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Apply moves a pending payment to applied and decreases the liability
// balance by the payment amount. Illegal from any other state; nothing is
// mutated on rejection.
func (s *Service) Apply(ctx context.Context, paymentID string) error {
	return s.transition(ctx, paymentID, "apply", models.PaymentApplied, true)
}

// Reverse moves an applied payment to reversed and restores the balance.
func (s *Service) Reverse(ctx context.Context, paymentID string) error {
	return s.transition(ctx, paymentID, "reverse", models.PaymentReversed, true)
}

// Skip moves a pending payment to skipped. No balance effect.
func (s *Service) Skip(ctx context.Context, paymentID string) error {
	return s.transition(ctx, paymentID, "skip", models.PaymentSkipped, false)
}

func (s *Service) transition(ctx context.Context, paymentID, action string, target models.PaymentStatus, touchesBalance bool) error {
	return s.store.Transact(ctx, func(st store.Store) error {
		payment, err := st.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if !payment.Status.CanTransition(target) {
			return &parsererror.StateTransitionError{
				PaymentID: paymentID,
				From:      string(payment.Status),
				Action:    action,
			}
		}
		if err := st.SetPaymentStatus(ctx, paymentID, target); err != nil {
			return err
		}
		if touchesBalance {
			delta := payment.Amount.Neg() // apply decreases the balance
			if target == models.PaymentReversed {
				delta = payment.Amount // reverse restores it
			}
			if err := st.AdjustLiabilityBalance(ctx, payment.LiabilityID, delta); err != nil {
				return err
			}
		}
		s.logger.Info("payment transition",
			logging.Field{Key: logging.FieldPaymentID, Value: paymentID},
			logging.Field{Key: logging.FieldStatus, Value: string(target)})
		return nil
	})
}

// ReleaseTransaction reverses the transaction's applied payment, if any,
// restoring the liability balance. Pending payments are superseded without a
// balance effect, recorded as reversed so a fresh match can claim the
// transaction. Called before a transaction's amount changes or the
// transaction is deleted.
func (s *Service) ReleaseTransaction(ctx context.Context, st store.Store, transactionID string) error {
	payment, err := st.ActivePaymentForTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	if payment == nil {
		return nil
	}
	switch payment.Status {
	case models.PaymentApplied:
		if err := st.SetPaymentStatus(ctx, payment.ID, models.PaymentReversed); err != nil {
			return err
		}
		return st.AdjustLiabilityBalance(ctx, payment.LiabilityID, payment.Amount)
	case models.PaymentPending, models.PaymentSkipped:
		return st.SetPaymentStatus(ctx, payment.ID, models.PaymentReversed)
	default:
		return nil
	}
}

// RematchTransaction runs rule matching for a transaction inside the
// caller's transaction scope: first matching rule (creation order) wins, and
// autoApply rules apply the payment and decrement the balance in the same
// scope. Returns the new payment, or nil when no rule matches.
func (s *Service) RematchTransaction(ctx context.Context, st store.Store, tx models.Transaction) (*models.LiabilityPayment, error) {
	rules, err := st.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if !ruleMatches(rule, tx) {
			continue
		}
		payment := models.LiabilityPayment{
			TransactionID: tx.ID,
			LiabilityID:   rule.LiabilityID,
			RuleID:        rule.ID,
			Status:        models.PaymentPending,
			Amount:        tx.Amount.Abs(),
		}
		created, err := st.CreatePayment(ctx, payment)
		if err != nil {
			return nil, err
		}
		if rule.AutoApply {
			if err := st.SetPaymentStatus(ctx, created.ID, models.PaymentApplied); err != nil {
				return nil, err
			}
			created.Status = models.PaymentApplied
			if err := st.AdjustLiabilityBalance(ctx, created.LiabilityID, created.Amount.Neg()); err != nil {
				return nil, err
			}
		}
		return &created, nil
	}
	return nil, nil
}
