package parsers

import (
	"strings"

	"jmoretti/finledger/internal/models"
)

// ChaseCardParser handles Chase credit card exports:
//
//	Transaction Date,Post Date,Description,Category,Type,Amount,Memo
//
// Chase already reports purchases as negative amounts.
type ChaseCardParser struct{}

// chaseCategoryMap translates Chase's category strings into canonical
// categories. Values Chase emits that are not listed stay unset.
var chaseCategoryMap = map[string]string{
	"food & drink":   "Dining",
	"groceries":      "Groceries",
	"gas":            "Auto & Transport",
	"travel":         "Travel",
	"shopping":       "Shopping",
	"entertainment":  "Entertainment",
	"health & wellness": "Health",
	"home":           "Home",
	"bills & utilities": "Bills & Utilities",
	"personal":       "Personal",
	"professional services": "Services",
}

func (p *ChaseCardParser) Name() string                    { return "chase_card" }
func (p *ChaseCardParser) Institution() string             { return "Chase" }
func (p *ChaseCardParser) AccountType() models.AccountType { return models.AccountTypeCreditCard }

// Detect requires the Transaction Date / Post Date pair plus the Type column;
// Description and Amount alone are far too common to key on.
func (p *ChaseCardParser) Detect(headers []string, sampleRows [][]string) bool {
	cols := NewColumnMap(headers)
	return cols.Has("Transaction Date", "Post Date", "Description", "Amount", "Type")
}

func (p *ChaseCardParser) Parse(headers []string, rows [][]string) models.ParseResult {
	cols := NewColumnMap(headers)
	var txs []models.ParsedTransaction
	for _, row := range rows {
		desc := cols.Get(row, "Description")
		txType := cols.Get(row, "Type")
		if strings.EqualFold(txType, "Payment") || isCardPayment(desc) {
			continue
		}
		tx, ok := buildTransaction(rowFields{
			Date:        cols.Get(row, "Transaction Date"),
			Description: desc,
			Amount:      cols.Get(row, "Amount"),
			Category:    cols.Get(row, "Category"),
		}, signNegativeOutflow, cols.RawData(row), chaseCategoryMap)
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
