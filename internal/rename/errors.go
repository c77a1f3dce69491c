package rename

import "errors"

// Sentinel errors surfaced by the planning and apply stages. Callers match
// them with errors.Is; everything else wraps the underlying os error.
var (
	// ErrNotFound indicates the target directory does not exist or is not a
	// directory. It aborts the whole run.
	ErrNotFound = errors.New("directory not found")

	// ErrCollisionExhausted indicates no free name could be found for an
	// entry within the counter limit. It marks that entry only; the rest of
	// the plan proceeds.
	ErrCollisionExhausted = errors.New("collision counter exhausted")
)
