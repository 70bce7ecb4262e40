// Package parsers turns raw statement rows into canonical transactions.
//
// Each supported institution format implements StatementParser. The chain
// runs Detect in a fixed, most-specific-first order; header sets overlap
// between institutions, so Detect implementations must require a combination
// of signals rather than a single header. The generic fallback parser always
// sits last.
package parsers

import "jmoretti/finledger/internal/models"

// StatementParser is the flat contract every institution format implements.
type StatementParser interface {
	// Name identifies the parser in detection results and logs.
	Name() string

	// Institution is the human-readable institution label.
	Institution() string

	// AccountType is the kind of account this format belongs to.
	AccountType() models.AccountType

	// Detect reports whether the header row plus a few sample rows look like
	// this institution's export. It must not mutate its arguments.
	Detect(headers []string, sampleRows [][]string) bool

	// Parse converts all rows into canonical transactions. Rows missing a
	// date, description, or amount are skipped; a malformed date skips only
	// its row. Parse never returns a partially normalized transaction: every
	// emitted date is YYYY-MM-DD and every outflow is negative.
	Parse(headers []string, rows [][]string) models.ParseResult
}
