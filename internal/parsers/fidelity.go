package parsers

import (
	"strings"

	"jmoretti/finledger/internal/models"
)

// FidelityBrokerageParser handles Fidelity brokerage history exports:
//
//	Run Date,Action,Symbol,Description,Type,Quantity,Price ($),Commission ($),
//	Fees ($),Accrued Interest ($),Amount ($),Settlement Date
//
// Cash movements in and out of the brokerage account are transfers between
// the user's own accounts and are flagged as such.
type FidelityBrokerageParser struct{}

func (p *FidelityBrokerageParser) Name() string                    { return "fidelity_brokerage" }
func (p *FidelityBrokerageParser) Institution() string             { return "Fidelity" }
func (p *FidelityBrokerageParser) AccountType() models.AccountType { return models.AccountTypeBrokerage }

// Detect keys on Run Date plus the dollar-suffixed Amount column.
func (p *FidelityBrokerageParser) Detect(headers []string, sampleRows [][]string) bool {
	cols := NewColumnMap(headers)
	return cols.Has("Run Date", "Action", "Amount ($)")
}

func (p *FidelityBrokerageParser) Parse(headers []string, rows [][]string) models.ParseResult {
	cols := NewColumnMap(headers)
	var txs []models.ParsedTransaction
	for _, row := range rows {
		action := cols.Get(row, "Action")
		desc := action
		if symbol := cols.Get(row, "Symbol"); symbol != "" {
			desc = action + " " + symbol
		}
		tx, ok := buildTransaction(rowFields{
			Date:        cols.Get(row, "Run Date"),
			Description: desc,
			Amount:      cols.Get(row, "Amount ($)"),
		}, signNegativeOutflow, cols.RawData(row), nil)
		if !ok {
			continue
		}
		tx.IsTransfer = isBrokerageTransfer(action)
		if tx.IsTransfer {
			tx.Category = "Transfer"
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

func isBrokerageTransfer(action string) bool {
	a := strings.ToUpper(action)
	for _, marker := range []string{
		"ELECTRONIC FUNDS TRANSFER",
		"EFT",
		"TRANSFERRED FROM",
		"TRANSFERRED TO",
		"WIRE TRANSFER",
	} {
		if strings.Contains(a, marker) {
			return true
		}
	}
	return false
}
