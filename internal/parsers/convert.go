package parsers

import (
	"strings"

	"github.com/shopspring/decimal"

	"jmoretti/finledger/internal/amountutils"
	"jmoretti/finledger/internal/dateutils"
	"jmoretti/finledger/internal/models"
)

// signConvention describes how an institution reports outflows.
type signConvention int

const (
	// signNegativeOutflow means the export already reports outflows as
	// negative amounts; no adjustment needed.
	signNegativeOutflow signConvention = iota

	// signPositiveExpense means purchases are reported positive and credits
	// negative, so every amount is negated.
	signPositiveExpense
)

// rowFields is the minimal extraction an institution parser does per row
// before the shared normalization in buildTransaction.
type rowFields struct {
	Date        string
	Description string
	Amount      string
	Category    string
}

// buildTransaction applies the shared per-row policy: rows missing a date,
// description, or amount are rejected; malformed dates or amounts skip the
// row; the amount sign is normalized to outflow-negative.
func buildTransaction(f rowFields, conv signConvention, raw map[string]string, categoryMap map[string]string) (models.ParsedTransaction, bool) {
	if f.Date == "" || f.Description == "" || f.Amount == "" {
		return models.ParsedTransaction{}, false
	}

	date, err := dateutils.NormalizeISO(f.Date)
	if err != nil {
		return models.ParsedTransaction{}, false
	}

	amount, err := amountutils.Parse(f.Amount)
	if err != nil {
		return models.ParsedTransaction{}, false
	}
	if conv == signPositiveExpense {
		amount = amount.Neg()
	}

	tx := models.ParsedTransaction{
		Date:        date,
		Description: strings.TrimSpace(f.Description),
		Amount:      amount,
		RawData:     raw,
	}
	if f.Category != "" && categoryMap != nil {
		// Unmapped institution categories stay unset.
		if mapped, ok := categoryMap[NormalizeHeader(f.Category)]; ok {
			tx.Category = mapped
		}
	}
	return tx, true
}

// splitAmount resolves separate debit/credit columns into one signed value
// with outflows negative. Exactly one of the two cells is expected per row.
func splitAmount(debit, credit string) (decimal.Decimal, bool) {
	if debit != "" {
		d, err := amountutils.Parse(debit)
		if err != nil {
			return decimal.Zero, false
		}
		return d.Abs().Neg(), true
	}
	if credit != "" {
		c, err := amountutils.Parse(credit)
		if err != nil {
			return decimal.Zero, false
		}
		return c.Abs(), true
	}
	return decimal.Zero, false
}

// isCardPayment recognizes the "payment to this account" rows credit-card
// parsers drop at parse time: paying a card bill is a transfer between the
// user's own accounts, not spending.
func isCardPayment(description string) bool {
	d := strings.ToUpper(description)
	for _, marker := range []string{
		"PAYMENT THANK YOU",
		"ONLINE PAYMENT - THANK YOU",
		"AUTOPAY PAYMENT",
		"AUTOMATIC PAYMENT",
		"MOBILE PAYMENT - THANK YOU",
	} {
		if strings.Contains(d, marker) {
			return true
		}
	}
	return false
}
