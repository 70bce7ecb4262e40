package pipeline

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmoretti/finledger/internal/categorizer"
	"jmoretti/finledger/internal/ingest"
	"jmoretti/finledger/internal/liability"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/ofxparser"
	"jmoretti/finledger/internal/parsers"
	"jmoretti/finledger/internal/pdfparser"
	"jmoretti/finledger/internal/preferences"
	"jmoretti/finledger/internal/store"
)

func newPipeline(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	in := ingest.NewService(parsers.NewChain(nil), ofxparser.New(nil),
		pdfparser.New(&pdfparser.MockExtractor{}, nil), st, nil)
	engine := categorizer.NewEngine(nil, nil, nil, 0, nil)
	learner := preferences.NewLearner(st, nil)
	liabilities := liability.NewService(st, nil)
	return NewService(in, engine, learner, liabilities, st, nil), st
}

const amexStatement = `Date,Description,Card Member,Account #,Amount
01/15/2024,AMAZON.COM ORDER,J MORETTI,-11111,25.00
01/16/2024,WHOLE FOODS MARKET,J MORETTI,-11111,82.19
01/17/2024,AUTO FINANCE CO WEB PMT,J MORETTI,-11111,350.00
`

func TestPreview(t *testing.T) {
	svc, _ := newPipeline(t)

	result, err := svc.Preview(context.Background(), []byte(amexStatement))
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)

	assert.Equal(t, "American Express", result.Institution)
	assert.Equal(t, models.AccountTypeCreditCard, result.AccountType)
	assert.Equal(t, 3, result.TransactionCount)
	assert.Equal(t, 0, result.DuplicateCount)

	amazon := result.Transactions[0]
	assert.True(t, amazon.Amount.Equal(decimal.RequireFromString("-25")),
		"positive expense normalized to negative outflow")
	assert.Equal(t, "Shopping", amazon.Category)
	assert.Equal(t, amazon.Category, amazon.OriginalCategory,
		"original category recorded for later correction detection")
}

func TestPreviewFlagsDuplicatesOnReupload(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPipeline(t)

	first, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, "amex-1", first.Transactions)
	require.NoError(t, err)

	second, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	assert.Equal(t, 3, second.DuplicateCount, "every transaction is a repeat")
	for _, tx := range second.Transactions {
		assert.True(t, tx.IsDuplicate)
		assert.False(t, tx.IncludeDuplicate)
	}
}

func TestPreviewUnparseable(t *testing.T) {
	svc, _ := newPipeline(t)
	result, err := svc.Preview(context.Background(), []byte("garbage\nwithout,structure"))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	svc, st := newPipeline(t)

	liab, err := st.CreateLiability(ctx, "Car Loan", decimal.RequireFromString("12000"))
	require.NoError(t, err)
	_, err = st.CreateRule(ctx, models.LiabilityPaymentRule{
		LiabilityID:      liab.ID,
		MatchDescription: "AUTO FINANCE",
		AutoApply:        true,
		IsActive:         true,
	})
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)

	result, err := svc.Commit(ctx, "amex-1", preview.Transactions)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, "amex-1", result.AccountID)
	assert.Equal(t, 1, result.NewPayments)

	got, err := st.GetLiability(ctx, liab.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("11650")),
		"auto-applied payment reflected in balance, got %s", got.Balance)
}

func TestCommitExcludesUnwantedDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPipeline(t)

	first, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, "amex-1", first.Transactions)
	require.NoError(t, err)

	second, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)

	// Reviewer opts one duplicate back in.
	second.Transactions[0].IncludeDuplicate = true
	result, err := svc.Commit(ctx, "amex-1", second.Transactions)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
}

func TestUpdateTransactionAmountRematches(t *testing.T) {
	ctx := context.Background()
	svc, st := newPipeline(t)

	liab, err := st.CreateLiability(ctx, "Car Loan", decimal.RequireFromString("12000"))
	require.NoError(t, err)
	_, err = st.CreateRule(ctx, models.LiabilityPaymentRule{
		LiabilityID:      liab.ID,
		MatchDescription: "AUTO FINANCE",
		AutoApply:        true,
		IsActive:         true,
	})
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, "amex-1", preview.Transactions)
	require.NoError(t, err)

	txs, err := st.ListTransactions(ctx, "amex-1")
	require.NoError(t, err)
	var loanTx models.Transaction
	for _, tx := range txs {
		if tx.Description == "AUTO FINANCE CO WEB PMT" {
			loanTx = tx
		}
	}
	require.NotEmpty(t, loanTx.ID)

	newAmount := decimal.RequireFromString("-375.00")
	_, err = svc.UpdateTransaction(ctx, loanTx.ID, TransactionUpdate{Amount: &newAmount})
	require.NoError(t, err)

	got, err := st.GetLiability(ctx, liab.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("11625")),
		"balance = original - new amount after reverse and re-match, got %s", got.Balance)

	payments, err := st.ListPayments(ctx, liab.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2, "one reversed payment, one fresh match")
	byStatus := map[models.PaymentStatus]models.LiabilityPayment{}
	for _, p := range payments {
		byStatus[p.Status] = p
	}
	require.Contains(t, byStatus, models.PaymentReversed)
	require.Contains(t, byStatus, models.PaymentApplied)
	assert.True(t, byStatus[models.PaymentReversed].Amount.Equal(decimal.RequireFromString("350")))
	assert.True(t, byStatus[models.PaymentApplied].Amount.Equal(decimal.RequireFromString("375")))
}

func TestUpdateTransactionCategoryLearns(t *testing.T) {
	ctx := context.Background()
	svc, st := newPipeline(t)

	preview, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, "amex-1", preview.Transactions)
	require.NoError(t, err)

	txs, err := st.ListTransactions(ctx, "amex-1")
	require.NoError(t, err)
	target := txs[0]

	newCategory := "Groceries"
	updated, err := svc.UpdateTransaction(ctx, target.ID, TransactionUpdate{Category: &newCategory})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Category)

	prefs, err := st.ListPreferences(ctx)
	require.NoError(t, err)
	require.Len(t, prefs, 1, "a category correction teaches the categorizer")
	assert.Contains(t, prefs[0].Instruction, "Groceries")

	// A repeated correction for the same merchant replaces, never duplicates.
	_, err = svc.UpdateTransaction(ctx, target.ID, TransactionUpdate{Category: &newCategory})
	require.NoError(t, err)
	prefs, err = st.ListPreferences(ctx)
	require.NoError(t, err)
	assert.Len(t, prefs, 1)
}

func TestDeleteTransactionReleasesPayment(t *testing.T) {
	ctx := context.Background()
	svc, st := newPipeline(t)

	liab, err := st.CreateLiability(ctx, "Car Loan", decimal.RequireFromString("12000"))
	require.NoError(t, err)
	_, err = st.CreateRule(ctx, models.LiabilityPaymentRule{
		LiabilityID:      liab.ID,
		MatchDescription: "AUTO FINANCE",
		AutoApply:        true,
		IsActive:         true,
	})
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, "amex-1", preview.Transactions)
	require.NoError(t, err)

	txs, err := st.ListTransactions(ctx, "amex-1")
	require.NoError(t, err)
	for _, tx := range txs {
		if tx.Description == "AUTO FINANCE CO WEB PMT" {
			require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
		}
	}

	got, err := st.GetLiability(ctx, liab.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("12000")),
		"deleting the payment transaction restores the balance")
}

func TestBulkOperationsIsolateFailures(t *testing.T) {
	ctx := context.Background()
	svc, st := newPipeline(t)

	preview, err := svc.Preview(ctx, []byte(amexStatement))
	require.NoError(t, err)
	_, err = svc.Commit(ctx, "amex-1", preview.Transactions)
	require.NoError(t, err)

	txs, err := st.ListTransactions(ctx, "amex-1")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	outcomes := svc.BulkDelete(ctx, []string{txs[0].ID, "no-such-id", txs[1].ID})
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.NotEmpty(t, outcomes[1].Error)
	assert.True(t, outcomes[2].Success, "failure of one item does not abort the rest")

	remaining, err := st.ListTransactions(ctx, "amex-1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
