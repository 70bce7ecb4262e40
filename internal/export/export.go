// Package export writes persisted transactions back out as CSV so the
// ledger can feed spreadsheets and other tools.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"jmoretti/finledger/internal/logging"
	"jmoretti/finledger/internal/models"
)

// Row is the exported CSV layout. Dates stay ISO and amounts keep the
// outflow-negative convention the ledger stores.
type Row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
	Subcategory string `csv:"Subcategory"`
	Merchant    string `csv:"Merchant"`
	AccountID   string `csv:"AccountID"`
	IsTransfer  bool   `csv:"IsTransfer"`
}

// WriteTransactions marshals the transactions to w in export layout.
func WriteTransactions(w io.Writer, txs []models.Transaction) error {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Category:    tx.Category,
			Subcategory: tx.Subcategory,
			Merchant:    tx.Merchant,
			AccountID:   tx.AccountID,
			IsTransfer:  tx.IsTransfer,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsFile writes the export to a file path.
func WriteTransactionsFile(path string, txs []models.Transaction) error {
	log := logging.GetLogger()

	file, err := os.Create(path)
	if err != nil {
		log.WithError(err).Error("Failed to create export file")
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := WriteTransactions(file, txs); err != nil {
		log.WithError(err).Error("Failed to write transactions to CSV")
		return err
	}

	log.Info("Successfully wrote transactions to CSV",
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return nil
}
