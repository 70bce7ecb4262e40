package parsers

import (
	"strings"

	"jmoretti/finledger/internal/models"
)

// BankOfAmericaParser handles Bank of America checking exports:
//
//	Date,Description,Amount,Running Bal.
//
// Outflows are already negative. Exports lead with summary rows (beginning
// balance and the like) whose amount cell is empty; those are skipped by the
// missing-amount rule.
type BankOfAmericaParser struct{}

func (p *BankOfAmericaParser) Name() string                    { return "bofa_bank" }
func (p *BankOfAmericaParser) Institution() string             { return "Bank of America" }
func (p *BankOfAmericaParser) AccountType() models.AccountType { return models.AccountTypeBank }

// Detect keys on the Running Bal. column next to the generic trio.
func (p *BankOfAmericaParser) Detect(headers []string, sampleRows [][]string) bool {
	cols := NewColumnMap(headers)
	return cols.Has("Date", "Description", "Amount") &&
		(cols.Has("Running Bal.") || cols.Has("Running Bal"))
}

func (p *BankOfAmericaParser) Parse(headers []string, rows [][]string) models.ParseResult {
	cols := NewColumnMap(headers)
	var txs []models.ParsedTransaction
	for _, row := range rows {
		desc := cols.Get(row, "Description")
		if strings.HasPrefix(strings.ToLower(desc), "beginning balance") {
			continue
		}
		tx, ok := buildTransaction(rowFields{
			Date:        cols.Get(row, "Date"),
			Description: desc,
			Amount:      cols.Get(row, "Amount"),
		}, signNegativeOutflow, cols.RawData(row), nil)
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
