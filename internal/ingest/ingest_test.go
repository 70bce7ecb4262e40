package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmoretti/finledger/internal/models"
	"jmoretti/finledger/internal/ofxparser"
	"jmoretti/finledger/internal/parsers"
	"jmoretti/finledger/internal/pdfparser"
	"jmoretti/finledger/internal/store"
)

func newService(extractorText string) *Service {
	return NewService(
		parsers.NewChain(nil),
		ofxparser.New(nil),
		pdfparser.New(&pdfparser.MockExtractor{Text: extractorText}, nil),
		store.NewMemoryStore(),
		nil,
	)
}

func TestParseDispatch(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		s := newService("")
		data := []byte("Date,Description,Amount\n2024-01-15,COFFEE SHOP,-4.50\n")
		result := s.Parse(data)
		require.True(t, result.Success, result.Error)
		require.Len(t, result.Transactions, 1)
	})

	t.Run("ofx", func(t *testing.T) {
		s := newService("")
		data := []byte(`<OFX><BANKMSGSRSV1><STMTTRN><DTPOSTED>20240115</DTPOSTED><TRNAMT>-4.50</TRNAMT><NAME>COFFEE</NAME></STMTTRN></BANKMSGSRSV1></OFX>`)
		result := s.Parse(data)
		require.True(t, result.Success, result.Error)
		assert.Equal(t, "2024-01-15", result.Transactions[0].Date)
	})

	t.Run("pdf", func(t *testing.T) {
		s := newService("01/03/2024  CHECKCARD GROCERY   -54.20\n")
		result := s.Parse([]byte("%PDF-1.7 fake body"))
		require.True(t, result.Success, result.Error)
		require.Len(t, result.Transactions, 1)
	})

	t.Run("unparseable", func(t *testing.T) {
		s := newService("")
		result := s.Parse([]byte(""))
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})
}

func TestDetect(t *testing.T) {
	s := newService("")

	d := s.Detect([]byte("%PDF-1.7"))
	assert.Equal(t, "pdf", d.ParserName)

	d = s.Detect([]byte("<OFX></OFX>"))
	assert.Equal(t, "ofx", d.ParserName)

	d = s.Detect([]byte("Date,Description,Card Member,Account #,Amount\n01/15/2024,AMAZON,J M,-1,25.00\n"))
	assert.True(t, d.Detected)
	assert.Equal(t, "amex_card", d.ParserName)

	d = s.Detect([]byte(""))
	assert.False(t, d.Detected)
}

func TestFlagDuplicates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := NewService(parsers.NewChain(nil), ofxparser.New(nil),
		pdfparser.New(&pdfparser.MockExtractor{}, nil), st, nil)

	_, err := st.InsertTransactions(ctx, "acct-1", []models.CategorizedTransaction{{
		ParsedTransaction: models.ParsedTransaction{
			Date:        "2024-01-15",
			Description: "WHOLE FOODS MARKET",
			Amount:      decimal.RequireFromString("-82.19"),
		},
	}})
	require.NoError(t, err)

	flagged, err := s.FlagDuplicates(ctx, []models.ParsedTransaction{
		{Date: "2024-01-15", Description: "Whole Foods   Market", Amount: decimal.RequireFromString("-82.19")},
		{Date: "2024-01-16", Description: "NEW PURCHASE", Amount: decimal.RequireFromString("-10.00")},
	})
	require.NoError(t, err)
	require.Len(t, flagged, 2, "duplicates are flagged, never dropped")

	assert.True(t, flagged[0].IsDuplicate)
	assert.False(t, flagged[0].IncludeDuplicate, "duplicates default to excluded")
	assert.False(t, flagged[1].IsDuplicate)
	assert.True(t, flagged[1].IncludeDuplicate)
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "WHOLE FOODS MARKET", NormalizeDescription("  whole   Foods market "))
	assert.Equal(t, "", NormalizeDescription("   "))
}

func TestReadCSV(t *testing.T) {
	t.Run("ragged rows tolerated", func(t *testing.T) {
		headers, rows, err := ReadCSV(strings.NewReader("A,B,C\n1,2\n\n4,5,6,7\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, headers)
		require.Len(t, rows, 2, "empty row dropped")
		assert.Equal(t, []string{"1", "2"}, rows[0])
	})

	t.Run("no header", func(t *testing.T) {
		_, _, err := ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}
