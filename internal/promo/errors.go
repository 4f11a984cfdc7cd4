package promo

import "fmt"

// ProviderError reports that an upstream API call failed: a non-success
// status, a transport error, or a structurally malformed payload. Provider
// calls are never retried; the enclosing operation fails with this error.
type ProviderError struct {
	// Provider names the upstream service (e.g. "openai", "voyage").
	Provider string
	// Err is the underlying cause.
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError reports that a provider call succeeded but the
// returned content does not satisfy the expected contract — typically text
// that is not valid JSON after fence-stripping. Raw carries the unparsed
// content for diagnostics.
type MalformedResponseError struct {
	// Raw is the provider output that failed to parse.
	Raw string
	// Err is the parse error.
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ProcessingError wraps a pipeline stage failure with the stage's identity.
// The interactive pipeline aborts on the first ProcessingError; no record is
// written unless every pre-store stage succeeded.
type ProcessingError struct {
	// Stage names the failed stage (extract, template, translate, embed,
	// store, search).
	Stage string
	// Err is the underlying cause.
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// StoreError reports a document-store operation failure.
type StoreError struct {
	// Op names the store operation (insert, find, update, search, index).
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
