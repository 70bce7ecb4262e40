package parsers

import (
	"jmoretti/finledger/internal/models"
)

// AmexCardParser handles American Express credit card exports:
//
//	Date,Description,Card Member,Account #,Amount
//
// Amex reports purchases as positive amounts and credits as negative, the
// opposite of the canonical convention, so every amount is negated.
type AmexCardParser struct{}

func (p *AmexCardParser) Name() string                    { return "amex_card" }
func (p *AmexCardParser) Institution() string             { return "American Express" }
func (p *AmexCardParser) AccountType() models.AccountType { return models.AccountTypeCreditCard }

// Detect keys on the Card Member / Account # pair, which no other supported
// format carries.
func (p *AmexCardParser) Detect(headers []string, sampleRows [][]string) bool {
	cols := NewColumnMap(headers)
	return cols.Has("Date", "Description", "Amount", "Card Member", "Account #")
}

func (p *AmexCardParser) Parse(headers []string, rows [][]string) models.ParseResult {
	cols := NewColumnMap(headers)
	var txs []models.ParsedTransaction
	for _, row := range rows {
		desc := cols.Get(row, "Description")
		if isCardPayment(desc) {
			continue
		}
		tx, ok := buildTransaction(rowFields{
			Date:        cols.Get(row, "Date"),
			Description: desc,
			Amount:      cols.Get(row, "Amount"),
		}, signPositiveExpense, cols.RawData(row), nil)
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
