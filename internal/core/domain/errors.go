package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates the provider API key is not configured.
	// Surfaced before any provider call is attempted.
	ErrMissingCredential = errors.New("API key not configured")

	// ErrMissingQuestion indicates the query entry point received no question.
	ErrMissingQuestion = errors.New("no question provided")

	// ErrModelMismatch indicates the configured embedding model differs from
	// the one recorded in the vector store. Querying with a different model
	// than the one used at ingestion produces meaningless similarities.
	ErrModelMismatch = errors.New("embedding model mismatch")
)
