package engine

import (
	"fmt"
	"strings"
)

// InconsistentStateError reports projections that disagreed with a replay of
// the event log. It is logged and healed, never returned to callers of
// Record.
type InconsistentStateError struct {
	UserID string
	Diffs  []string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent state for user %q: %s", e.UserID, strings.Join(e.Diffs, "; "))
}
