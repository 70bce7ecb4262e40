package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteTransactionRoundtrip(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	inserted, err := st.InsertTransactions(ctx, "acct-1", []models.CategorizedTransaction{{
		ParsedTransaction: models.ParsedTransaction{
			Date:        "2024-01-15",
			Description: "WHOLE FOODS MARKET",
			Amount:      decimal.RequireFromString("-82.19"),
			Category:    "Groceries",
			Merchant:    "Whole Foods",
			IsTransfer:  false,
		},
		OriginalCategory: "Groceries",
	}})
	require.NoError(t, err)
	require.Len(t, inserted, 1)

	got, err := st.GetTransaction(ctx, inserted[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "WHOLE FOODS MARKET", got.Description)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("-82.19")),
		"decimal survives the TEXT roundtrip")
	assert.Equal(t, "Groceries", got.OriginalCategory)

	found, err := st.HasTransaction(ctx, "2024-01-15", "-82.19", "WHOLE FOODS MARKET")
	require.NoError(t, err)
	assert.True(t, found)

	got.Category = "Dining"
	require.NoError(t, st.UpdateTransaction(ctx, got))

	listed, err := st.ListTransactions(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Dining", listed[0].Category)

	require.NoError(t, st.DeleteTransaction(ctx, got.ID))
	_, err = st.GetTransaction(ctx, got.ID)
	var nf *parsererror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestSQLitePreferenceUpsert(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	first, err := st.UpsertLearnedPreference(ctx, "Blue Bottle", `"Blue Bottle" should be categorized as Dining`)
	require.NoError(t, err)

	second, err := st.UpsertLearnedPreference(ctx, "blue bottle", `"Blue Bottle" should be categorized as Shopping`)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same merchant key updates in place")

	prefs, err := st.ListPreferences(ctx)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Contains(t, prefs[0].Instruction, "Shopping")
}

func TestSQLiteTransactRollback(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	liab, err := st.CreateLiability(ctx, "Car Loan", decimal.RequireFromString("12000"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.Transact(ctx, func(s Store) error {
		if err := s.AdjustLiabilityBalance(ctx, liab.ID, decimal.RequireFromString("-350")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := st.GetLiability(ctx, liab.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("12000")),
		"rolled back balance, got %s", got.Balance)
}

func TestSQLitePaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openTestDB(t)

	liab, err := st.CreateLiability(ctx, "Card", decimal.RequireFromString("500"))
	require.NoError(t, err)

	rule, err := st.CreateRule(ctx, models.LiabilityPaymentRule{
		LiabilityID: liab.ID, MatchMerchant: "Auto Finance", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.Seq)

	p, err := st.CreatePayment(ctx, models.LiabilityPayment{
		TransactionID: "tx-1",
		LiabilityID:   liab.ID,
		RuleID:        rule.ID,
		Status:        models.PaymentPending,
		Amount:        decimal.RequireFromString("350"),
	})
	require.NoError(t, err)

	active, err := st.ActivePaymentForTransaction(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, p.ID, active.ID)

	require.NoError(t, st.SetPaymentStatus(ctx, p.ID, models.PaymentReversed))
	active, err = st.ActivePaymentForTransaction(ctx, "tx-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	payments, err := st.ListPayments(ctx, liab.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentReversed, payments[0].Status)
}
