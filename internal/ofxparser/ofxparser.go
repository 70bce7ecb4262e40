// Package ofxparser imports OFX 2.x (XML) statement downloads. OFX carries
// its own signed amounts (debits negative), so unlike the CSV formats no
// sign flipping is needed, only date normalization.
package ofxparser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/xmlpath.v2"

	"jmoretti/finledger/internal/amountutils"
	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
)

var (
	stmtTrnPath    = xmlpath.MustCompile("//STMTTRN")
	datePath       = xmlpath.MustCompile("DTPOSTED")
	amountPath     = xmlpath.MustCompile("TRNAMT")
	namePath       = xmlpath.MustCompile("NAME")
	memoPath       = xmlpath.MustCompile("MEMO")
	trnTypePath    = xmlpath.MustCompile("TRNTYPE")
	creditCardPath = xmlpath.MustCompile("//CREDITCARDMSGSRSV1")
)

// Parser converts OFX XML bytes into a canonical ParseResult.
type Parser struct {
	logger logging.Logger
}

func New(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Parser{logger: logger}
}

// Looks reports whether the payload resembles an OFX 2.x document.
func Looks(data []byte) bool {
	head := strings.ToUpper(string(data[:min(len(data), 512)]))
	return strings.Contains(head, "<OFX") || strings.Contains(head, "OFXHEADER")
}

// Parse extracts all statement transactions from an OFX document.
func (p *Parser) Parse(data []byte) models.ParseResult {
	// OFX 2.x files lead with processing instructions the XML parser accepts;
	// OFX 1.x SGML headers (Key:Value lines) must be stripped first.
	data = stripSGMLHeader(data)

	root, err := xmlpath.Parse(bytes.NewReader(data))
	if err != nil {
		return failure(fmt.Sprintf("invalid OFX document: %v", err))
	}

	accountType := models.AccountTypeBank
	institution := "OFX Bank"
	if creditCardPath.Exists(root) {
		accountType = models.AccountTypeCreditCard
		institution = "OFX Credit Card"
	}

	var txs []models.ParsedTransaction
	iter := stmtTrnPath.Iter(root)
	for iter.Next() {
		node := iter.Node()
		tx, ok := p.convert(node)
		if !ok {
			continue
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return failure("no statement transactions found in OFX document")
	}
	p.logger.Info("OFX statement parsed",
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: logging.FieldInstitution, Value: institution})
	return models.ParseResult{
		Success:      true,
		Transactions: txs,
		AccountType:  accountType,
		Institution:  institution,
	}
}

func (p *Parser) convert(node *xmlpath.Node) (models.ParsedTransaction, bool) {
	rawDate, _ := datePath.String(node)
	rawAmount, _ := amountPath.String(node)
	desc, _ := namePath.String(node)
	if memo, ok := memoPath.String(node); ok && strings.TrimSpace(desc) == "" {
		desc = memo
	}

	date, ok := normalizeOFXDate(rawDate)
	if !ok {
		return models.ParsedTransaction{}, false
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return models.ParsedTransaction{}, false
	}
	amount, err := amountutils.Parse(rawAmount)
	if err != nil {
		return models.ParsedTransaction{}, false
	}

	tx := models.ParsedTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		RawData:     map[string]string{"DTPOSTED": strings.TrimSpace(rawDate), "TRNAMT": strings.TrimSpace(rawAmount)},
	}
	if trnType, ok := trnTypePath.String(node); ok {
		t := strings.ToUpper(strings.TrimSpace(trnType))
		tx.RawData["TRNTYPE"] = t
		if t == "XFER" {
			tx.IsTransfer = true
		}
	}
	return tx, true
}

// normalizeOFXDate converts DTPOSTED values (YYYYMMDD, optionally followed by
// time and timezone qualifiers) to ISO form.
func normalizeOFXDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) < 8 {
		return "", false
	}
	s = s[:8]
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:8], true
}

func stripSGMLHeader(data []byte) []byte {
	if i := bytes.Index(data, []byte("<OFX")); i > 0 {
		head := data[:i]
		if !bytes.Contains(head, []byte("<?")) {
			return data[i:]
		}
	}
	return data
}

func failure(msg string) models.ParseResult {
	return models.ParseResult{
		Success:     false,
		AccountType: models.AccountTypeBank,
		Institution: "OFX",
		Error:       msg,
	}
}
