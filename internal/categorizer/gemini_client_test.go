package categorizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"jmoretti/finledger/internal/models"
)

func TestBuildBatchPrompt(t *testing.T) {
	txs := []models.ParsedTransaction{
		tx("STARBUCKS STORE 10236", "-5.75"),
		tx("ACME PAYROLL", "3200.00"),
	}
	instructions := []string{`"Starbucks" should be categorized as Dining / Coffee`}

	prompt := buildBatchPrompt(txs, instructions)

	assert.Contains(t, prompt, "1. date=2024-01-15 amount=-5.75")
	assert.Contains(t, prompt, `description="ACME PAYROLL"`)
	assert.Contains(t, prompt, "Groceries, Dining")
	assert.Contains(t, prompt, `- "Starbucks" should be categorized as Dining / Coffee`)
	assert.Contains(t, prompt, "exactly one object per transaction")
	assert.Contains(t, prompt, "no surrounding prose or markdown")
}

func TestBuildBatchPromptWithoutInstructions(t *testing.T) {
	prompt := buildBatchPrompt([]models.ParsedTransaction{tx("X", "-1.00")}, nil)
	assert.NotContains(t, prompt, "User preferences")
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare array", `[{"category":"Dining"}]`, `[{"category":"Dining"}]`},
		{"markdown fenced", "```json\n[{\"category\":\"Dining\"}]\n```", `[{"category":"Dining"}]`},
		{"leading prose", "Here you go: [1,2]", "[1,2]"},
		{"no array", "sorry, cannot help", "sorry, cannot help"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONArray(tt.input))
		})
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", 0, nil)
	assert.Error(t, err)
}
