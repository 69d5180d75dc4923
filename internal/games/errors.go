package games

import "errors"

// Error kinds reported by match operations. Wrapped with detail, test with errors.Is.
var (
	ErrStageMismatch = errors.New("operation not allowed in current stage")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrIllegalTarget = errors.New("illegal target")

	// ErrInvariant means the match state is internally inconsistent (programmer error).
	ErrInvariant = errors.New("match invariant violated")
)
