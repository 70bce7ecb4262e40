package categorizer

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"jmoretti/finledger/internal/models"
)

// CanonicalCategories is the category vocabulary both tiers draw from.
var CanonicalCategories = []string{
	"Groceries", "Dining", "Shopping", "Auto & Transport", "Travel",
	"Entertainment", "Health", "Home", "Bills & Utilities", "Insurance",
	"Services", "Fees", "Income", "Transfer", "Debt Payment", "Cash",
	"Uncategorized",
}

// KeywordRule maps description keywords to a category. Rules are evaluated
// in order; the first matching keyword wins.
type KeywordRule struct {
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	Keywords    []string `yaml:"keywords"`
	IsTransfer  bool     `yaml:"is_transfer,omitempty"`
}

type rulesFile struct {
	Rules []KeywordRule `yaml:"rules"`
}

// LoadKeywordRules reads keyword rules from a YAML file.
func LoadKeywordRules(path string) ([]KeywordRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	return f.Rules, nil
}

// DefaultKeywordRules is the compiled-in fallback table used when no rules
// file is configured. Most specific entries come first.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Category: "Transfer", IsTransfer: true, Keywords: []string{
			"TRANSFER", "XFER", "ZELLE", "VENMO CASHOUT", "ONLINE TRANSFER"}},
		{Category: "Income", Subcategory: "Salary", Keywords: []string{
			"PAYROLL", "DIRECT DEP", "DIRECT DEPOSIT", "SALARY"}},
		{Category: "Debt Payment", Keywords: []string{
			"AUTO FINANCE", "LOAN PAYMENT", "LOAN PMT", "MORTGAGE", "STUDENT LOAN", "LENDING"}},
		{Category: "Groceries", Keywords: []string{
			"WHOLE FOODS", "TRADER JOE", "SAFEWAY", "KROGER", "ALDI", "COSTCO", "GROCERY", "MARKET"}},
		{Category: "Dining", Keywords: []string{
			"STARBUCKS", "COFFEE", "RESTAURANT", "PIZZA", "CHIPOTLE", "MCDONALD", "DOORDASH", "GRUBHUB", "CAFE", "BAR & GRILL"}},
		{Category: "Auto & Transport", Keywords: []string{
			"SHELL", "CHEVRON", "EXXON", "UBER", "LYFT", "PARKING", "TOLL", "GAS STATION", "TRANSIT"}},
		{Category: "Travel", Keywords: []string{
			"AIRLINES", "DELTA AIR", "UNITED", "MARRIOTT", "HILTON", "AIRBNB", "HOTEL"}},
		{Category: "Entertainment", Keywords: []string{
			"NETFLIX", "SPOTIFY", "HULU", "CINEMA", "THEATRE", "STEAM", "TICKETMASTER"}},
		{Category: "Bills & Utilities", Keywords: []string{
			"ELECTRIC", "WATER UTIL", "COMCAST", "XFINITY", "VERIZON", "AT&T", "T-MOBILE", "INTERNET", "UTILITY"}},
		{Category: "Health", Keywords: []string{
			"PHARMACY", "CVS", "WALGREENS", "DENTAL", "MEDICAL", "CLINIC"}},
		{Category: "Insurance", Keywords: []string{
			"GEICO", "ALLSTATE", "STATE FARM", "PROGRESSIVE", "INSURANCE"}},
		{Category: "Home", Keywords: []string{
			"HOME DEPOT", "LOWES", "IKEA", "RENT PAYMENT"}},
		{Category: "Shopping", Keywords: []string{
			"AMAZON", "TARGET", "WALMART", "BEST BUY", "EBAY", "ETSY"}},
		{Category: "Cash", Keywords: []string{
			"ATM", "WITHDRAWAL", "CASH BACK"}},
		{Category: "Fees", Keywords: []string{
			"SERVICE FEE", "OVERDRAFT", "ANNUAL FEE", "INTEREST CHARGE", "LATE FEE"}},
	}
}

// RuleCategorizer is the deterministic keyword/sign fallback tier. It always
// produces a result, so the engine's contract of one categorization per
// transaction holds even with the AI tier unreachable.
type RuleCategorizer struct {
	rules []KeywordRule
}

func NewRuleCategorizer(rules []KeywordRule) *RuleCategorizer {
	if len(rules) == 0 {
		rules = DefaultKeywordRules()
	}
	return &RuleCategorizer{rules: rules}
}

// Categorize classifies each transaction by keyword, falling back to sign:
// positive amounts with no keyword match default to Income, negatives to
// Uncategorized.
func (r *RuleCategorizer) Categorize(txs []models.ParsedTransaction) []models.Categorization {
	out := make([]models.Categorization, len(txs))
	for i, tx := range txs {
		out[i] = r.categorizeOne(tx)
	}
	return out
}

func (r *RuleCategorizer) categorizeOne(tx models.ParsedTransaction) models.Categorization {
	desc := strings.ToUpper(tx.Description)
	result := models.Categorization{
		Merchant:   NormalizeMerchant(tx.Description),
		IsTransfer: tx.IsTransfer,
	}

	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, strings.ToUpper(kw)) {
				result.Category = rule.Category
				result.Subcategory = rule.Subcategory
				if rule.IsTransfer {
					result.IsTransfer = true
				}
				return result
			}
		}
	}

	// Sign fallback. A parser-assigned category (institution mapping table)
	// survives when keywords say nothing.
	switch {
	case tx.Category != "":
		result.Category = tx.Category
		result.Subcategory = tx.Subcategory
	case tx.Amount.IsPositive():
		result.Category = "Income"
	default:
		result.Category = "Uncategorized"
	}
	return result
}

var (
	merchantNoiseRe = regexp.MustCompile(`(?i)#\s*\d+|\b(pos|debit|credit|purchase|card\s*\d+|\d{4,})\b`)
	merchantSpaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeMerchant reduces a raw statement description to a readable
// merchant name: strips POS noise, reference numbers, and store numbers,
// then title-cases the remainder.
func NormalizeMerchant(description string) string {
	s := merchantNoiseRe.ReplaceAllString(description, " ")
	s = strings.NewReplacer("*", " ", "  ", " ").Replace(s)
	s = strings.TrimSpace(merchantSpaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return strings.TrimSpace(description)
	}

	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
