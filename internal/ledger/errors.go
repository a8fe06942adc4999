// Package ledger holds the versioned in-memory record collection that
// the rest of the engine reads from. One store serves one user; every
// successful mutation bumps a monotonic version counter.
package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist or was removed.
var ErrNotFound = errors.New("record not found")

// ErrStaleVersion is returned when a caller acts on an outdated ledger
// version.
var ErrStaleVersion = errors.New("stale ledger version")

// ValidationError rejects a mutation before any state changes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
