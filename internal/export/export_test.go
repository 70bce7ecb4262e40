package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmoretti/finledger/internal/models"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{
			ID:          "tx-1",
			AccountID:   "acct-1",
			Date:        "2024-01-15",
			Description: "WHOLE FOODS MARKET",
			Amount:      decimal.RequireFromString("-82.19"),
			Category:    "Groceries",
			Merchant:    "Whole Foods",
		},
		{
			ID:          "tx-2",
			AccountID:   "acct-1",
			Date:        "2024-01-16",
			Description: "TRANSFER TO SAVINGS",
			Amount:      decimal.RequireFromString("-500"),
			Category:    "Transfer",
			IsTransfer:  true,
		},
	}
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, sampleTransactions()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "header plus one line per transaction")
	assert.Equal(t, "Date,Description,Amount,Category,Subcategory,Merchant,AccountID,IsTransfer", lines[0])
	assert.Contains(t, lines[1], "-82.19")
	assert.Contains(t, lines[1], "Groceries")
	assert.Contains(t, lines[2], "-500.00", "amounts exported with two decimal places")
	assert.Contains(t, lines[2], "true")
}

func TestWriteTransactionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, WriteTransactionsFile(path, sampleTransactions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WHOLE FOODS MARKET")
}
