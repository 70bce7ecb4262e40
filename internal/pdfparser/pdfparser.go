package pdfparser

import (
	"bytes"
	"regexp"
	"strings"

	"jmoretti/finledger/internal/amountutils"
	"jmoretti/finledger/internal/dateutils"
	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
)

// txLineRe matches a statement table line: a leading date, a description,
// and a trailing amount. Amounts may be wrapped in parentheses or carry
// currency symbols and thousands separators.
var txLineRe = regexp.MustCompile(`^\s*(\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2})\s+(.+?)\s+(\(?-?\$?[\d,]+\.\d{2}\)?)\s*$`)

// periodRe matches statement period lines like
// "Statement Period: 01/01/2024 - 01/31/2024".
var periodRe = regexp.MustCompile(`(?i)statement period:?\s*(\d{1,2}/\d{1,2}/\d{4})\s*(?:-|to|through)\s*(\d{1,2}/\d{1,2}/\d{4})`)

// Parser converts PDF statement bytes into a canonical ParseResult by way of
// the text-extraction collaborator.
type Parser struct {
	extractor Extractor
	logger    logging.Logger
}

func New(extractor Extractor, logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Parser{extractor: extractor, logger: logger}
}

// Looks reports whether the payload is a PDF document.
func Looks(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// StatementPeriod is the date range one uploaded statement covers.
type StatementPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Parse extracts text from the PDF and scans it line by line for
// transaction rows. Lines that don't look like transactions are ignored;
// a malformed date or amount skips only its line.
func (p *Parser) Parse(data []byte) (models.ParseResult, *StatementPeriod) {
	text, err := p.extractor.ExtractText(data)
	if err != nil {
		p.logger.WithError(err).Warn("PDF text extraction failed")
		return models.ParseResult{
			Success:     false,
			AccountType: models.AccountTypeBank,
			Institution: "PDF",
			Error:       "could not extract text from PDF: " + err.Error(),
		}, nil
	}

	var period *StatementPeriod
	var txs []models.ParsedTransaction
	for _, line := range strings.Split(text, "\n") {
		if period == nil {
			if m := periodRe.FindStringSubmatch(line); m != nil {
				start, err1 := dateutils.NormalizeISO(m[1])
				end, err2 := dateutils.NormalizeISO(m[2])
				if err1 == nil && err2 == nil {
					period = &StatementPeriod{Start: start, End: end}
				}
				continue
			}
		}

		m := txLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		date, err := dateutils.NormalizeISO(m[1])
		if err != nil {
			continue
		}
		amount, err := amountutils.Parse(m[3])
		if err != nil {
			continue
		}
		desc := strings.TrimSpace(m[2])
		if desc == "" {
			continue
		}
		txs = append(txs, models.ParsedTransaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			RawData:     map[string]string{"line": strings.TrimSpace(line)},
		})
	}

	if len(txs) == 0 {
		return models.ParseResult{
			Success:     false,
			AccountType: models.AccountTypeBank,
			Institution: "PDF",
			Error:       "no transaction lines found in PDF text",
		}, period
	}

	p.logger.Info("PDF statement parsed",
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return models.ParseResult{
		Success:      true,
		Transactions: txs,
		AccountType:  models.AccountTypeBank,
		Institution:  "PDF",
	}, period
}
