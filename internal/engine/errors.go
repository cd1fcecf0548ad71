package engine

import "errors"

var (
	// ErrSchemaMismatch: a required column or dimension is absent. Fatal to the request.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrEmptySelection: a filter or selection produced zero rows. A data condition, not a failure.
	ErrEmptySelection = errors.New("empty selection")
	// ErrUndefined: a derived metric has no value because an input is missing.
	ErrUndefined = errors.New("undefined derivation")
	// ErrSourceLoad: a raw table could not be read or failed validation.
	ErrSourceLoad = errors.New("source load failure")
	// ErrInvalidRange: start year after end year.
	ErrInvalidRange = errors.New("invalid year range")
)
