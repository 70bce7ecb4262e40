package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	date TEXT NOT NULL,
	description TEXT NOT NULL,
	amount TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	subcategory TEXT NOT NULL DEFAULT '',
	merchant TEXT NOT NULL DEFAULT '',
	is_transfer INTEGER NOT NULL DEFAULT 0,
	original_category TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_fingerprint ON transactions(fingerprint);

CREATE TABLE IF NOT EXISTS preferences (
	id TEXT PRIMARY KEY,
	merchant TEXT NOT NULL,
	merchant_key TEXT NOT NULL UNIQUE,
	instruction TEXT NOT NULL,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS liabilities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	balance TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS liability_rules (
	id TEXT PRIMARY KEY,
	liability_id TEXT NOT NULL REFERENCES liabilities(id),
	match_merchant TEXT NOT NULL DEFAULT '',
	match_description TEXT NOT NULL DEFAULT '',
	match_account_id TEXT NOT NULL DEFAULT '',
	auto_apply INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	seq INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS liability_payments (
	id TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL,
	liability_id TEXT NOT NULL REFERENCES liabilities(id),
	rule_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	amount TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_transaction ON liability_payments(transaction_id);
`

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same query methods
// serve direct calls and Transact-scoped calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore is the embedded persistence implementation. A single
// connection with WAL journaling keeps SQLite's locking out of the way and
// gives the single-writer semantics the liability balance requires.
type SQLiteStore struct {
	db *sql.DB
	q  dbtx
}

// OpenSQLite opens (and bootstraps) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}
	return &SQLiteStore{db: db, q: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Transact runs fn inside one SQL transaction.
func (s *SQLiteStore) Transact(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		// Nested Transact joins the outer transaction.
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	scoped := &SQLiteStore{db: s.db, q: tx}
	if err := fn(scoped); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ---- TransactionStore ----

func (s *SQLiteStore) InsertTransactions(ctx context.Context, accountID string, txs []models.CategorizedTransaction) ([]models.Transaction, error) {
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
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO transactions
			(id, account_id, date, description, amount, category, subcategory,
			 merchant, is_transfer, original_category, fingerprint, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.AccountID, t.Date, t.Description, t.Amount.String(),
			t.Category, t.Subcategory, t.Merchant, boolInt(t.IsTransfer),
			t.OriginalCategory, fingerprint(t.Date, t.Amount.String(), t.Description),
			t.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return nil, fmt.Errorf("inserting transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, account_id, date, description, amount, category, subcategory,
		       merchant, is_transfer, original_category, created_at
		FROM transactions WHERE id = ?`, id)
	return scanTransaction(row, id)
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx models.Transaction) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, description = ?, amount = ?, category = ?, subcategory = ?,
		    merchant = ?, is_transfer = ?, fingerprint = ?
		WHERE id = ?`,
		tx.Date, tx.Description, tx.Amount.String(), tx.Category, tx.Subcategory,
		tx.Merchant, boolInt(tx.IsTransfer),
		fingerprint(tx.Date, tx.Amount.String(), tx.Description), tx.ID)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}
	return requireRow(res, "transaction", tx.ID)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, date, description, amount, category, subcategory,
		       merchant, is_transfer, original_category, created_at
		FROM transactions`
	args := []any{}
	if accountID != "" {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY date, created_at`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) HasTransaction(ctx context.Context, date, amount, description string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE fingerprint = ?`,
		fingerprint(date, amount, description)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking duplicate: %w", err)
	}
	return n > 0, nil
}

// ---- PreferenceStore ----

func (s *SQLiteStore) UpsertLearnedPreference(ctx context.Context, merchant, instruction string) (models.Preference, error) {
	key := strings.ToLower(strings.TrimSpace(merchant))
	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO preferences (id, merchant, merchant_key, instruction, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(merchant_key) DO UPDATE SET
			instruction = excluded.instruction,
			updated_at = excluded.updated_at`,
		id, merchant, key, instruction, string(models.PreferenceSourceLearned),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return models.Preference{}, fmt.Errorf("upserting preference: %w", err)
	}

	row := s.q.QueryRowContext(ctx, `
		SELECT id, merchant, instruction, source, created_at, updated_at
		FROM preferences WHERE merchant_key = ?`, key)
	return scanPreference(row)
}

func (s *SQLiteStore) ListPreferences(ctx context.Context) ([]models.Preference, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, merchant, instruction, source, created_at, updated_at
		FROM preferences ORDER BY merchant`)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Preference
	for rows.Next() {
		p, err := scanPreferenceRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- LiabilityStore ----

func (s *SQLiteStore) CreateLiability(ctx context.Context, name string, balance decimal.Decimal) (models.Liability, error) {
	l := models.Liability{
		ID:        uuid.NewString(),
		Name:      name,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO liabilities (id, name, balance, created_at) VALUES (?, ?, ?, ?)`,
		l.ID, l.Name, l.Balance.String(), l.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return models.Liability{}, fmt.Errorf("creating liability: %w", err)
	}
	return l, nil
}

func (s *SQLiteStore) GetLiability(ctx context.Context, id string) (models.Liability, error) {
	var l models.Liability
	var balance, createdAt string
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, balance, created_at FROM liabilities WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &balance, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Liability{}, &parsererror.NotFoundError{Kind: "liability", ID: id}
	}
	if err != nil {
		return models.Liability{}, fmt.Errorf("loading liability: %w", err)
	}
	l.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return models.Liability{}, fmt.Errorf("corrupt balance for liability %s: %w", id, err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return l, nil
}

func (s *SQLiteStore) AdjustLiabilityBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	l, err := s.GetLiability(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `UPDATE liabilities SET balance = ? WHERE id = ?`,
		l.Balance.Add(delta).String(), id)
	if err != nil {
		return fmt.Errorf("adjusting balance: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateRule(ctx context.Context, rule models.LiabilityPaymentRule) (models.LiabilityPaymentRule, error) {
	if !rule.HasMatchField() {
		return models.LiabilityPaymentRule{}, &parsererror.DataExtractionError{
			Parser: "rule", Field: "match", Reason: "at least one match field must be set",
		}
	}
	if _, err := s.GetLiability(ctx, rule.LiabilityID); err != nil {
		return models.LiabilityPaymentRule{}, err
	}

	var maxSeq sql.NullInt64
	if err := s.q.QueryRowContext(ctx, `SELECT MAX(seq) FROM liability_rules`).Scan(&maxSeq); err != nil {
		return models.LiabilityPaymentRule{}, fmt.Errorf("allocating rule seq: %w", err)
	}
	rule.ID = uuid.NewString()
	rule.Seq = maxSeq.Int64 + 1
	rule.CreatedAt = time.Now().UTC()

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO liability_rules
		(id, liability_id, match_merchant, match_description, match_account_id,
		 auto_apply, is_active, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.LiabilityID, rule.MatchMerchant, rule.MatchDescription,
		rule.MatchAccountID, boolInt(rule.AutoApply), boolInt(rule.IsActive),
		rule.Seq, rule.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return models.LiabilityPaymentRule{}, fmt.Errorf("creating rule: %w", err)
	}
	return rule, nil
}

func (s *SQLiteStore) ListActiveRules(ctx context.Context) ([]models.LiabilityPaymentRule, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, liability_id, match_merchant, match_description, match_account_id,
		       auto_apply, is_active, seq, created_at
		FROM liability_rules WHERE is_active = 1 ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.LiabilityPaymentRule
	for rows.Next() {
		var r models.LiabilityPaymentRule
		var autoApply, isActive int
		var createdAt string
		if err := rows.Scan(&r.ID, &r.LiabilityID, &r.MatchMerchant, &r.MatchDescription,
			&r.MatchAccountID, &autoApply, &isActive, &r.Seq, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		r.AutoApply = autoApply != 0
		r.IsActive = isActive != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreatePayment(ctx context.Context, payment models.LiabilityPayment) (models.LiabilityPayment, error) {
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now().UTC()
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO liability_payments
		(id, transaction_id, liability_id, rule_id, status, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.TransactionID, payment.LiabilityID, payment.RuleID,
		string(payment.Status), payment.Amount.String(),
		payment.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return models.LiabilityPayment{}, fmt.Errorf("creating payment: %w", err)
	}
	return payment, nil
}

func (s *SQLiteStore) GetPayment(ctx context.Context, id string) (models.LiabilityPayment, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, transaction_id, liability_id, rule_id, status, amount, created_at
		FROM liability_payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LiabilityPayment{}, &parsererror.NotFoundError{Kind: "payment", ID: id}
	}
	return p, err
}

func (s *SQLiteStore) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE liability_payments SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}
	return requireRow(res, "payment", id)
}

func (s *SQLiteStore) ActivePaymentForTransaction(ctx context.Context, transactionID string) (*models.LiabilityPayment, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, transaction_id, liability_id, rule_id, status, amount, created_at
		FROM liability_payments
		WHERE transaction_id = ? AND status != ?
		ORDER BY created_at DESC LIMIT 1`,
		transactionID, string(models.PaymentReversed))
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) ListPayments(ctx context.Context, liabilityID string) ([]models.LiabilityPayment, error) {
	query := `
		SELECT id, transaction_id, liability_id, rule_id, status, amount, created_at
		FROM liability_payments`
	args := []any{}
	if liabilityID != "" {
		query += ` WHERE liability_id = ?`
		args = append(args, liabilityID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.LiabilityPayment
	for rows.Next() {
		var p models.LiabilityPayment
		var status, amount, createdAt string
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.LiabilityID, &p.RuleID,
			&status, &amount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt payment amount: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- scan helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner, id string) (models.Transaction, error) {
	var t models.Transaction
	var amount, createdAt string
	var isTransfer int
	err := row.Scan(&t.ID, &t.AccountID, &t.Date, &t.Description, &amount,
		&t.Category, &t.Subcategory, &t.Merchant, &isTransfer,
		&t.OriginalCategory, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, &parsererror.NotFoundError{Kind: "transaction", ID: id}
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("loading transaction: %w", err)
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("corrupt amount for transaction %s: %w", id, err)
	}
	t.IsTransfer = isTransfer != 0
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return t, nil
}

func scanPreference(row rowScanner) (models.Preference, error) {
	var p models.Preference
	var source, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Merchant, &p.Instruction, &source, &createdAt, &updatedAt); err != nil {
		return models.Preference{}, fmt.Errorf("loading preference: %w", err)
	}
	p.Source = models.PreferenceSource(source)
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return p, nil
}

func scanPreferenceRows(rows *sql.Rows) (models.Preference, error) {
	return scanPreference(rows)
}

func scanPayment(row rowScanner) (models.LiabilityPayment, error) {
	var p models.LiabilityPayment
	var status, amount, createdAt string
	err := row.Scan(&p.ID, &p.TransactionID, &p.LiabilityID, &p.RuleID,
		&status, &amount, &createdAt)
	if err != nil {
		return models.LiabilityPayment{}, err
	}
	p.Status = models.PaymentStatus(status)
	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.LiabilityPayment{}, fmt.Errorf("corrupt payment amount: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return p, nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &parsererror.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
