package amountutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "45.00", "45", false},
		{"negative", "-45.00", "-45", false},
		{"dollar sign", "$1,234.56", "1234.56", false},
		{"parentheses negate", "(45.00)", "-45", false},
		{"parentheses with symbol", "($1,200.00)", "-1200", false},
		{"euro", "€99.95", "99.95", false},
		{"apostrophe separator", "1'234.50", "1234.50", false},
		{"internal spaces", "1 234.50", "1234.50", false},
		{"empty", "", "", true},
		{"symbols only", "$,", "", true},
		{"text", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestIsParsable(t *testing.T) {
	assert.True(t, IsParsable("-45.00"))
	assert.True(t, IsParsable("$1,234.56"))
	assert.False(t, IsParsable(""))
	assert.False(t, IsParsable("WHOLE FOODS"))
	assert.False(t, IsParsable("01/15/2024"))
}
