package categorizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmoretti/finledger/internal/models"
)

func TestRuleCategorizerKeywordOrder(t *testing.T) {
	// First matching rule wins; a description hitting both Transfer and
	// Shopping keywords lands on the earlier Transfer rule.
	r := NewRuleCategorizer(nil)
	results := r.Categorize([]models.ParsedTransaction{
		tx("ONLINE TRANSFER TO AMAZON STORE CARD", "-100.00"),
	})
	require.Len(t, results, 1)
	assert.Equal(t, "Transfer", results[0].Category)
	assert.True(t, results[0].IsTransfer)
}

func TestRuleCategorizerTable(t *testing.T) {
	r := NewRuleCategorizer(nil)

	tests := []struct {
		desc     string
		amount   string
		category string
	}{
		{"TRADER JOE'S #552", "-43.10", "Groceries"},
		{"AUTO FINANCE CO PAYMENT", "-350.00", "Debt Payment"},
		{"SHELL OIL 5744", "-48.00", "Auto & Transport"},
		{"ACME CORP PAYROLL", "3200.00", "Income"},
		{"CVS/PHARMACY #0823", "-12.99", "Health"},
		{"COMPLETELY UNKNOWN", "-5.00", "Uncategorized"},
		{"COMPLETELY UNKNOWN", "5.00", "Income"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			results := r.Categorize([]models.ParsedTransaction{tx(tt.desc, tt.amount)})
			require.Len(t, results, 1)
			assert.Equal(t, tt.category, results[0].Category)
		})
	}
}

func TestLoadKeywordRules(t *testing.T) {
	content := `rules:
  - category: Dining
    subcategory: Coffee
    keywords: ["BLUE BOTTLE", "PHILZ"]
  - category: Transfer
    is_transfer: true
    keywords: ["WISE TRANSFER"]
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadKeywordRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Dining", rules[0].Category)
	assert.Equal(t, "Coffee", rules[0].Subcategory)
	assert.True(t, rules[1].IsTransfer)

	r := NewRuleCategorizer(rules)
	results := r.Categorize([]models.ParsedTransaction{tx("PHILZ COFFEE SF", "-6.00")})
	assert.Equal(t, "Dining", results[0].Category)

	_, err = LoadKeywordRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"STARBUCKS STORE 10236", "Starbucks Store"},
		{"SQ *BLUE BOTTLE COFFEE", "Sq Blue Bottle Coffee"},
		{"POS DEBIT WHOLE FOODS #10236", "Whole Foods"},
		{"TARGET # 423", "Target"},
		{"AMAZON.COM", "Amazon.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMerchant(tt.input), "input %q", tt.input)
	}
}
