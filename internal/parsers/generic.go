package parsers

import (
	"jmoretti/finledger/internal/amountutils"
	"jmoretti/finledger/internal/dateutils"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/parsererror"
)

// GenericCSVParser is the best-effort fallback that runs when no institution
// parser matches. It locates the date, description, and amount-bearing
// columns by header name first and by value sniffing second, and assumes the
// canonical outflow-negative convention. It fails only when one of the three
// required columns cannot be located.
type GenericCSVParser struct{}

var (
	genericDateHeaders = []string{
		"date", "transaction date", "posting date", "posted date", "trans date",
	}
	genericDescHeaders = []string{
		"description", "memo", "payee", "merchant", "name", "details",
		"transaction description",
	}
	genericAmountHeaders = []string{
		"amount", "transaction amount", "value",
	}
	genericDebitHeaders  = []string{"debit", "withdrawal", "withdrawals", "money out"}
	genericCreditHeaders = []string{"credit", "deposit", "deposits", "money in"}
)

func (p *GenericCSVParser) Name() string                    { return "generic_csv" }
func (p *GenericCSVParser) Institution() string             { return "Unknown" }
func (p *GenericCSVParser) AccountType() models.AccountType { return models.AccountTypeBank }

// Detect always succeeds; whether the format is actually usable is decided
// inside Parse, where the required columns are located.
func (p *GenericCSVParser) Detect(headers []string, sampleRows [][]string) bool {
	return len(headers) > 0
}

type genericLayout struct {
	dateIdx   int
	descIdx   int
	amountIdx int // -1 when split debit/credit columns are used
	debitIdx  int
	creditIdx int
}

func (p *GenericCSVParser) Parse(headers []string, rows [][]string) models.ParseResult {
	layout, err := p.locateColumns(headers, rows)
	if err != nil {
		return models.ParseResult{
			Success:     false,
			AccountType: p.AccountType(),
			Institution: p.Institution(),
			Error:       err.Error(),
		}
	}

	cols := NewColumnMap(headers)
	var txs []models.ParsedTransaction
	for _, row := range rows {
		f := rowFields{
			Date:        cell(row, layout.dateIdx),
			Description: cell(row, layout.descIdx),
		}
		if layout.amountIdx >= 0 {
			f.Amount = cell(row, layout.amountIdx)
		} else {
			amount, ok := splitAmount(cell(row, layout.debitIdx), cell(row, layout.creditIdx))
			if !ok {
				continue
			}
			f.Amount = amount.String()
		}
		tx, ok := buildTransaction(f, signNegativeOutflow, cols.RawData(row), nil)
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

func (p *GenericCSVParser) locateColumns(headers []string, rows [][]string) (genericLayout, error) {
	cols := NewColumnMap(headers)
	layout := genericLayout{dateIdx: -1, descIdx: -1, amountIdx: -1, debitIdx: -1, creditIdx: -1}

	if i, ok := cols.Index(genericDateHeaders...); ok {
		layout.dateIdx = i
	}
	if i, ok := cols.Index(genericDescHeaders...); ok {
		layout.descIdx = i
	}
	if i, ok := cols.Index(genericAmountHeaders...); ok {
		layout.amountIdx = i
	} else if di, ok := cols.Index(genericDebitHeaders...); ok {
		if ci, ok := cols.Index(genericCreditHeaders...); ok {
			layout.debitIdx = di
			layout.creditIdx = ci
		}
	}

	sample := rows
	if len(sample) > 10 {
		sample = sample[:10]
	}

	// Header names were inconclusive: sniff column roles from sample values.
	if layout.dateIdx < 0 {
		layout.dateIdx = sniffColumn(sample, len(headers), func(v string) bool {
			_, err := dateutils.Parse(v)
			return err == nil
		}, nil)
	}
	if layout.dateIdx < 0 {
		return layout, &parsererror.DataExtractionError{Parser: p.Name(), Field: "date", Reason: "no date-bearing column found"}
	}

	if layout.amountIdx < 0 && layout.debitIdx < 0 {
		layout.amountIdx = sniffColumn(sample, len(headers), amountutils.IsParsable, map[int]bool{layout.dateIdx: true})
	}
	if layout.amountIdx < 0 && layout.debitIdx < 0 {
		return layout, &parsererror.DataExtractionError{Parser: p.Name(), Field: "amount", Reason: "no amount-bearing column found"}
	}

	if layout.descIdx < 0 {
		taken := map[int]bool{layout.dateIdx: true, layout.amountIdx: true, layout.debitIdx: true, layout.creditIdx: true}
		layout.descIdx = sniffColumn(sample, len(headers), func(v string) bool {
			if amountutils.IsParsable(v) {
				return false
			}
			if _, err := dateutils.Parse(v); err == nil {
				return false
			}
			return v != ""
		}, taken)
	}
	if layout.descIdx < 0 {
		return layout, &parsererror.DataExtractionError{Parser: p.Name(), Field: "description", Reason: "no description column found"}
	}
	return layout, nil
}

// sniffColumn returns the index of the column whose sample values best
// satisfy the predicate, requiring a strict majority of non-empty cells.
func sniffColumn(sample [][]string, width int, match func(string) bool, taken map[int]bool) int {
	best, bestScore := -1, 0
	for col := 0; col < width; col++ {
		if taken[col] {
			continue
		}
		score, seen := 0, 0
		for _, row := range sample {
			v := cell(row, col)
			if v == "" {
				continue
			}
			seen++
			if match(v) {
				score++
			}
		}
		if seen == 0 || score*2 <= seen {
			continue
		}
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return trimCell(row[i])
}
