package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
)

// MemoryStore is the in-memory Store implementation used by tests and
// offline preview runs. Transact snapshots state and restores it on error,
// giving the same all-or-nothing behavior as the SQLite implementation.
type MemoryStore struct {
	mu           sync.Mutex
	transactions map[string]models.Transaction
	preferences  map[string]models.Preference // keyed by lowercase merchant
	liabilities  map[string]models.Liability
	rules        map[string]models.LiabilityPaymentRule
	payments     map[string]models.LiabilityPayment
	ruleSeq      int64
	inTx         bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]models.Transaction),
		preferences:  make(map[string]models.Preference),
		liabilities:  make(map[string]models.Liability),
		rules:        make(map[string]models.LiabilityPaymentRule),
		payments:     make(map[string]models.LiabilityPayment),
	}
}

func (s *MemoryStore) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

// Transact snapshots state, runs fn against the same store, and restores the
// snapshot if fn fails. A nested Transact joins the open transaction, as the
// SQLite implementation does: the outer snapshot covers rollback for both.
// Like that implementation, transaction bodies assume the single-writer
// model; writes from other goroutines must not interleave with one.
func (s *MemoryStore) Transact(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	if s.inTx {
		s.mu.Unlock()
		return fn(s)
	}
	s.inTx = true
	snapshot := s.snapshot()
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.restore(snapshot)
	}
	return err
}

type memSnapshot struct {
	transactions map[string]models.Transaction
	preferences  map[string]models.Preference
	liabilities  map[string]models.Liability
	rules        map[string]models.LiabilityPaymentRule
	payments     map[string]models.LiabilityPayment
	ruleSeq      int64
}

func (s *MemoryStore) snapshot() memSnapshot {
	return memSnapshot{
		transactions: copyMap(s.transactions),
		preferences:  copyMap(s.preferences),
		liabilities:  copyMap(s.liabilities),
		rules:        copyMap(s.rules),
		payments:     copyMap(s.payments),
		ruleSeq:      s.ruleSeq,
	}
}

func (s *MemoryStore) restore(snap memSnapshot) {
	s.transactions = snap.transactions
	s.preferences = snap.preferences
	s.liabilities = snap.liabilities
	s.rules = snap.rules
	s.payments = snap.payments
	s.ruleSeq = snap.ruleSeq
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ---- TransactionStore ----

func (s *MemoryStore) InsertTransactions(ctx context.Context, accountID string, txs []models.CategorizedTransaction) ([]models.Transaction, error) {
	defer s.lock()()

	out := make([]models.Transaction, 0, len(txs))
	now := time.Now().UTC()
	for _, tx := range txs {
		t := models.Transaction{
			ID:               uuid.NewString(),
			AccountID:        accountID,
			Date:             tx.Date,
			Description:      tx.Description,
			Amount:           tx.Amount,
			Category:         tx.Category,
			Subcategory:      tx.Subcategory,
			Merchant:         tx.Merchant,
			IsTransfer:       tx.IsTransfer,
			OriginalCategory: tx.OriginalCategory,
			CreatedAt:        now,
		}
		s.transactions[t.ID] = t
		out = append(out, t)
	}
	return out, nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	defer s.lock()()
	t, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, &parsererror.NotFoundError{Kind: "transaction", ID: id}
	}
	return t, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	defer s.lock()()
	if _, ok := s.transactions[tx.ID]; !ok {
		return &parsererror.NotFoundError{Kind: "transaction", ID: tx.ID}
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *MemoryStore) DeleteTransaction(ctx context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.transactions[id]; !ok {
		return &parsererror.NotFoundError{Kind: "transaction", ID: id}
	}
	delete(s.transactions, id)
	return nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	defer s.lock()()
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if accountID != "" && t.AccountID != accountID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) HasTransaction(ctx context.Context, date, amount, description string) (bool, error) {
	defer s.lock()()
	want := fingerprint(date, amount, description)
	for _, t := range s.transactions {
		if fingerprint(t.Date, t.Amount.String(), t.Description) == want {
			return true, nil
		}
	}
	return false, nil
}

func fingerprint(date, amount, description string) string {
	desc := strings.Join(strings.Fields(strings.ToUpper(description)), " ")
	return date + "|" + amount + "|" + desc
}

// ---- PreferenceStore ----

func (s *MemoryStore) UpsertLearnedPreference(ctx context.Context, merchant, instruction string) (models.Preference, error) {
	defer s.lock()()

	key := strings.ToLower(strings.TrimSpace(merchant))
	now := time.Now().UTC()
	if existing, ok := s.preferences[key]; ok {
		existing.Instruction = instruction
		existing.UpdatedAt = now
		s.preferences[key] = existing
		return existing, nil
	}
	pref := models.Preference{
		ID:          uuid.NewString(),
		Merchant:    merchant,
		Instruction: instruction,
		Source:      models.PreferenceSourceLearned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.preferences[key] = pref
	return pref, nil
}

func (s *MemoryStore) ListPreferences(ctx context.Context) ([]models.Preference, error) {
	defer s.lock()()
	out := make([]models.Preference, 0, len(s.preferences))
	for _, p := range s.preferences {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Merchant < out[j].Merchant })
	return out, nil
}

// ---- LiabilityStore ----

func (s *MemoryStore) CreateLiability(ctx context.Context, name string, balance decimal.Decimal) (models.Liability, error) {
	defer s.lock()()
	l := models.Liability{
		ID:        uuid.NewString(),
		Name:      name,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}
	s.liabilities[l.ID] = l
	return l, nil
}

func (s *MemoryStore) GetLiability(ctx context.Context, id string) (models.Liability, error) {
	defer s.lock()()
	l, ok := s.liabilities[id]
	if !ok {
		return models.Liability{}, &parsererror.NotFoundError{Kind: "liability", ID: id}
	}
	return l, nil
}

func (s *MemoryStore) AdjustLiabilityBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	defer s.lock()()
	l, ok := s.liabilities[id]
	if !ok {
		return &parsererror.NotFoundError{Kind: "liability", ID: id}
	}
	l.Balance = l.Balance.Add(delta)
	s.liabilities[id] = l
	return nil
}

func (s *MemoryStore) CreateRule(ctx context.Context, rule models.LiabilityPaymentRule) (models.LiabilityPaymentRule, error) {
	defer s.lock()()
	if !rule.HasMatchField() {
		return models.LiabilityPaymentRule{}, &parsererror.DataExtractionError{
			Parser: "rule", Field: "match", Reason: "at least one match field must be set",
		}
	}
	if _, ok := s.liabilities[rule.LiabilityID]; !ok {
		return models.LiabilityPaymentRule{}, &parsererror.NotFoundError{Kind: "liability", ID: rule.LiabilityID}
	}
	s.ruleSeq++
	rule.ID = uuid.NewString()
	rule.Seq = s.ruleSeq
	rule.CreatedAt = time.Now().UTC()
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *MemoryStore) ListActiveRules(ctx context.Context) ([]models.LiabilityPaymentRule, error) {
	defer s.lock()()
	out := make([]models.LiabilityPaymentRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *MemoryStore) CreatePayment(ctx context.Context, payment models.LiabilityPayment) (models.LiabilityPayment, error) {
	defer s.lock()()
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now().UTC()
	s.payments[payment.ID] = payment
	return payment, nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, id string) (models.LiabilityPayment, error) {
	defer s.lock()()
	p, ok := s.payments[id]
	if !ok {
		return models.LiabilityPayment{}, &parsererror.NotFoundError{Kind: "payment", ID: id}
	}
	return p, nil
}

func (s *MemoryStore) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	defer s.lock()()
	p, ok := s.payments[id]
	if !ok {
		return &parsererror.NotFoundError{Kind: "payment", ID: id}
	}
	p.Status = status
	s.payments[id] = p
	return nil
}

func (s *MemoryStore) ActivePaymentForTransaction(ctx context.Context, transactionID string) (*models.LiabilityPayment, error) {
	defer s.lock()()
	for _, p := range s.payments {
		if p.TransactionID == transactionID && p.Active() {
			payment := p
			return &payment, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListPayments(ctx context.Context, liabilityID string) ([]models.LiabilityPayment, error) {
	defer s.lock()()
	out := make([]models.LiabilityPayment, 0)
	for _, p := range s.payments {
		if liabilityID == "" || p.LiabilityID == liabilityID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
