package oracle

import "errors"

// Failure taxonomy of the oracle core. Callers match with errors.Is; the host
// maps each kind onto its own rejection convention. Every failure aborts the
// invocation with no storage side effects.
var (
	// ErrNotFound reports an absent entity for a required read.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized reports a caller identity that does not hold the
	// required role (config owner or asset feeder).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists rejects re-registration of a symbol. The original
	// design folded this into the authorization failure; it gets its own
	// kind so callers can tell a duplicate from a permission problem.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput reports a malformed address, symbol or decimal.
	ErrInvalidInput = errors.New("invalid input")
)
