package parsers

import (
	"jmoretti/finledger/internal/models"
)

// CapitalOneCardParser handles Capital One credit card exports:
//
//	Transaction Date,Posted Date,Card No.,Description,Category,Debit,Credit
//
// Amounts arrive unsigned in separate Debit/Credit columns; debits become
// negative outflows, credits positive inflows.
type CapitalOneCardParser struct{}

var capitalOneCategoryMap = map[string]string{
	"dining":        "Dining",
	"grocery":       "Groceries",
	"gas/automotive": "Auto & Transport",
	"airfare":       "Travel",
	"lodging":       "Travel",
	"merchandise":   "Shopping",
	"entertainment": "Entertainment",
	"health care":   "Health",
	"phone/cable":   "Bills & Utilities",
	"insurance":     "Insurance",
	"other services": "Services",
}

func (p *CapitalOneCardParser) Name() string                    { return "capitalone_card" }
func (p *CapitalOneCardParser) Institution() string             { return "Capital One" }
func (p *CapitalOneCardParser) AccountType() models.AccountType { return models.AccountTypeCreditCard }

// Detect keys on the split Debit/Credit columns alongside Posted Date.
func (p *CapitalOneCardParser) Detect(headers []string, sampleRows [][]string) bool {
	cols := NewColumnMap(headers)
	return cols.Has("Transaction Date", "Posted Date", "Description", "Debit", "Credit")
}

func (p *CapitalOneCardParser) Parse(headers []string, rows [][]string) models.ParseResult {
	cols := NewColumnMap(headers)
	var txs []models.ParsedTransaction
	for _, row := range rows {
		desc := cols.Get(row, "Description")
		if isCardPayment(desc) {
			continue
		}
		amount, ok := splitAmount(cols.Get(row, "Debit"), cols.Get(row, "Credit"))
		if !ok {
			continue
		}
		tx, ok := buildTransaction(rowFields{
			Date:        cols.Get(row, "Transaction Date"),
			Description: desc,
			Amount:      amount.String(),
			Category:    cols.Get(row, "Category"),
		}, signNegativeOutflow, cols.RawData(row), capitalOneCategoryMap)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}
	return models.ParseResult{
		Success:      true,
		Transactions: txs,
		AccountType:  p.AccountType(),
		Institution:  p.Institution(),
	}
}
