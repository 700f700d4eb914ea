package event

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownQuestion    = errors.New("unknown question")
	ErrForeignQuestion    = errors.New("question belongs to another user")
	ErrInvalidHintLevel   = errors.New("invalid hint level")
	ErrMissingCorrectness = errors.New("either correct or score is required")
)

// ValidationError reports a submission or hint request rejected before any
// state was touched.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// OutOfOrderError is returned when an event timestamp is earlier than the
// user's most recent recorded event.
type OutOfOrderError struct {
	UserID string
	Last   time.Time
	Got    time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("event for user %q at %s is earlier than last event at %s",
		e.UserID, e.Got.Format(time.RFC3339Nano), e.Last.Format(time.RFC3339Nano))
}
