package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFiscalID marks a document without a valid TimbreFiscalDigital
	// UUID. It is not yet an authority-stamped invoice: excluded silently,
	// counted but never surfaced as an error.
	ErrMissingFiscalID = errors.New("missing or malformed fiscal identifier")

	// ErrMalformedAmount marks a document whose numeric attributes cannot be
	// parsed. The document is excluded and counted as a soft warning.
	ErrMalformedAmount = errors.New("malformed monetary amount")

	// ErrEmptyBatch means the caller supplied no documents at all.
	ErrEmptyBatch = errors.New("empty batch: no documents supplied")

	// ErrNoValidRecords means a non-empty input yielded zero records.
	ErrNoValidRecords = errors.New("no valid data extracted from supplied documents")

	// ErrBatchNotFound means the requested batch id is not registered.
	ErrBatchNotFound = errors.New("batch not found")
)

// ParseError wraps a failure to turn raw bytes into a document tree. It is
// fatal for that one document only; the batch continues.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
