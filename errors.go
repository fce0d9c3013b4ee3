package pdfquiz

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the client and the generation controller
var (
	// ErrNotFound indicates the backend has no record of the requested file.
	ErrNotFound = errors.New("file not found")

	// ErrNotPDF indicates an upload payload was rejected locally because it
	// does not sniff as a PDF. No request is made for such payloads.
	ErrNotPDF = errors.New("payload is not a PDF")

	// ErrGenerationInFlight indicates a generation request for the same file
	// and artifact kind is already outstanding.
	ErrGenerationInFlight = errors.New("generation already in flight")
)

// DataError reports quiz content that violates the document invariants. It
// is distinct from transport errors so callers can tell the user the
// content, not the connection, is at fault.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "invalid quiz data: " + e.Reason
}

// APIError is a non-2xx backend response with its decoded error message.
// The backend reports failures as {"error": "..."}.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}
