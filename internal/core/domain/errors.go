package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOracleUnavailable indicates the ranking oracle is not configured
	// or did not answer. Search degrades to the store text index.
	ErrOracleUnavailable = errors.New("ranking oracle unavailable")

	// ErrTextIndexUnavailable indicates the store has no usable text index
	// for the query. Search degrades to pattern matching.
	ErrTextIndexUnavailable = errors.New("text index unavailable")

	// ErrTranslatorUnavailable indicates no translation service is configured.
	ErrTranslatorUnavailable = errors.New("translator unavailable")
)
