// Package parsererror defines the typed errors shared across the ingestion
// and reconciliation pipeline. Parser and row-level problems recover locally;
// state-machine and referential errors surface verbatim to the caller.
package parsererror

import "fmt"

// InvalidFormatError reports input that no parser in the chain could handle.
type InvalidFormatError struct {
	Reason string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("unparseable statement: %s", e.Reason)
}

// DataExtractionError reports a statement that matched a format but from
// which required data could not be extracted.
type DataExtractionError struct {
	Parser string
	Field  string
	Reason string
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("%s: could not extract %s: %s", e.Parser, e.Field, e.Reason)
}

// StateTransitionError reports a payment action attempted from an illegal
// source state. Nothing is mutated when this error is returned.
type StateTransitionError struct {
	PaymentID string
	From      string
	Action    string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s payment %s: status is %q", e.Action, e.PaymentID, e.From)
}

// NotFoundError reports a referential failure: an id that resolves to nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// CategorizationError reports a failure inside one categorization tier.
// The engine never surfaces it: the batch falls back to the rule tier.
type CategorizationError struct {
	Tier string
	Err  error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization tier %s failed: %v", e.Tier, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}
