package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
)

// GeminiClient implements AIClient against the Google Gemini API. The model
// is run at temperature 0 so repeated uploads of the same statement
// categorize identically.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient dials the Gemini API. modelName defaults to
// gemini-1.5-flash when empty.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	var temp float32 // zero temperature for deterministic output
	model.Temperature = &temp

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// geminiResult is the JSON element shape the prompt asks the model for.
type geminiResult struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Merchant    string `json:"merchant,omitempty"`
	IsTransfer  bool   `json:"is_transfer"`
}

// CategorizeBatch sends the whole batch in one request and decodes one
// result per transaction. A count mismatch is an error: the caller falls
// back to the rule tier rather than guessing at alignment.
func (c *GeminiClient) CategorizeBatch(ctx context.Context, txs []models.ParsedTransaction, instructions []string) ([]models.Categorization, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildBatchPrompt(txs, instructions)
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	var results []geminiResult
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &results); err != nil {
		return nil, fmt.Errorf("undecodable Gemini response: %w", err)
	}
	if len(results) != len(txs) {
		return nil, fmt.Errorf("Gemini returned %d results for %d transactions", len(results), len(txs))
	}

	out := make([]models.Categorization, len(results))
	for i, r := range results {
		out[i] = models.Categorization{
			Category:    strings.TrimSpace(r.Category),
			Subcategory: strings.TrimSpace(r.Subcategory),
			Merchant:    strings.TrimSpace(r.Merchant),
			IsTransfer:  r.IsTransfer,
		}
	}
	c.logger.Debug("Gemini batch categorization complete",
		logging.Field{Key: logging.FieldCount, Value: len(out)})
	return out, nil
}

func buildBatchPrompt(txs []models.ParsedTransaction, instructions []string) string {
	var b strings.Builder
	b.WriteString("Categorize the following personal finance transactions.\n")
	b.WriteString("For each transaction return an object with: category (one of ")
	b.WriteString(strings.Join(CanonicalCategories, ", "))
	b.WriteString("), optional subcategory, merchant (the normalized merchant name), and is_transfer (true when the money moves between the user's own accounts).\n")
	b.WriteString("Respond with a JSON array containing exactly one object per transaction, in the same order. Output the array only, with no surrounding prose or markdown.\n")

	if len(instructions) > 0 {
		b.WriteString("\nUser preferences (follow these over your own judgment):\n")
		for _, ins := range instructions {
			b.WriteString("- ")
			b.WriteString(ins)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nTransactions:\n")
	for i, tx := range txs {
		fmt.Fprintf(&b, "%d. date=%s amount=%s description=%q\n", i+1, tx.Date, tx.Amount.String(), tx.Description)
	}
	return b.String()
}

// extractJSONArray tolerates models that wrap the array in markdown fences.
func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
