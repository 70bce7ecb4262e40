// Package ingest is the ingestion front-end: it dispatches an uploaded
// statement to the CSV parser chain, the OFX importer, or the PDF extraction
// path, and flags duplicates against persisted history.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/ofxparser"
	"jmoretti/finledger/internal/parsererror"
	"jmoretti/finledger/internal/parsers"
	"jmoretti/finledger/internal/pdfparser"
)

// DuplicateChecker is the persistence operation the duplicate detector
// consumes: does a transaction with this fingerprint already exist?
type DuplicateChecker interface {
	HasTransaction(ctx context.Context, date string, amount string, description string) (bool, error)
}

// Service is the ingestion front-end.
type Service struct {
	chain  *parsers.Chain
	ofx    *ofxparser.Parser
	pdf    *pdfparser.Parser
	dups   DuplicateChecker
	logger logging.Logger
}

func NewService(chain *parsers.Chain, ofx *ofxparser.Parser, pdf *pdfparser.Parser, dups DuplicateChecker, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Service{chain: chain, ofx: ofx, pdf: pdf, dups: dups, logger: logger}
}

// Parse dispatches raw statement bytes to the right extraction path and
// returns the uniform result.
func (s *Service) Parse(data []byte) models.ParseResult {
	switch {
	case pdfparser.Looks(data):
		result, _ := s.pdf.Parse(data)
		return result
	case ofxparser.Looks(data):
		return s.ofx.Parse(data)
	default:
		headers, rows, err := ReadCSV(bytes.NewReader(data))
		if err != nil {
			return models.ParseResult{
				Success:     false,
				AccountType: models.AccountTypeBank,
				Institution: "Unknown",
				Error:       err.Error(),
			}
		}
		return s.chain.Parse(headers, rows)
	}
}

// Detect runs only format detection, for preview labeling. Non-CSV inputs
// are labeled by their extraction path.
func (s *Service) Detect(data []byte) models.DetectionResult {
	switch {
	case pdfparser.Looks(data):
		return models.DetectionResult{Detected: true, ParserName: "pdf", Institution: "PDF"}
	case ofxparser.Looks(data):
		return models.DetectionResult{Detected: true, ParserName: "ofx", Institution: "OFX"}
	default:
		headers, rows, err := ReadCSV(bytes.NewReader(data))
		if err != nil {
			return models.DetectionResult{}
		}
		sample := rows
		if len(sample) > 5 {
			sample = sample[:5]
		}
		return s.chain.Detect(headers, sample)
	}
}

// FlagDuplicates decorates parsed transactions with duplicate flags against
// persisted history. Duplicates are flagged, never dropped: legitimate
// repeats (recurring charges) would otherwise be wrongly suppressed, so the
// inclusion decision is left to the reviewer via IncludeDuplicate.
func (s *Service) FlagDuplicates(ctx context.Context, txs []models.ParsedTransaction) ([]models.CategorizedTransaction, error) {
	out := make([]models.CategorizedTransaction, 0, len(txs))
	for _, tx := range txs {
		isDup, err := s.dups.HasTransaction(ctx, tx.Date, tx.Amount.String(), NormalizeDescription(tx.Description))
		if err != nil {
			return nil, err
		}
		out = append(out, models.CategorizedTransaction{
			ParsedTransaction: tx,
			IsDuplicate:       isDup,
			IncludeDuplicate:  !isDup,
		})
	}
	return out, nil
}

// NormalizeDescription reduces a description to its fingerprint form:
// uppercased with whitespace collapsed. Duplicate detection is deterministic
// over the (date, amount, normalized description) triple.
func NormalizeDescription(desc string) string {
	return strings.Join(strings.Fields(strings.ToUpper(desc)), " ")
}

// ReadCSV splits CSV text into a header row and data rows. Ragged rows are
// tolerated; fully empty rows are dropped.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var headers []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if isEmptyRow(record) {
			continue
		}
		if headers == nil {
			headers = record
			continue
		}
		rows = append(rows, record)
	}
	if headers == nil {
		return nil, nil, &parsererror.InvalidFormatError{Reason: "no header row found"}
	}
	return headers, rows, nil
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
