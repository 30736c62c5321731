package interfaces

import "errors"

// Error kinds reported to callers. Call sites wrap them with context using
// fmt.Errorf("%w: ...", ErrX) so errors.Is keeps working.
var (
	// ErrValidation marks malformed input
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing page, transcription or version
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a write made against a stale revision
	ErrConflict = errors.New("conflict")

	// ErrStorage marks a failed read, write or commit
	ErrStorage = errors.New("storage error")
)
