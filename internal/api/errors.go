package api

import (
	"errors"
	"net/http"

	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/question"
)

// requestError is a malformed request body.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		reqErr     *requestError
		validation *event.ValidationError
		outOfOrder *event.OutOfOrderError
		batchErr   *question.BatchError
		invalid    *question.InvalidError
	)
	switch {
	case errors.Is(err, event.ErrUnknownQuestion):
		return http.StatusNotFound
	case errors.As(err, &outOfOrder), errors.Is(err, question.ErrIdentityChanged):
		return http.StatusConflict
	case errors.As(err, &validation), errors.As(err, &reqErr),
		errors.As(err, &batchErr), errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
