package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core services. Handlers map these to HTTP
// status codes; anything else is treated as a fatal storage error and is
// never retried.
var (
	ErrNotFound            = errors.New("record not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below configured minimum")
	ErrLimitReached        = errors.New("daily limit reached")
	ErrEarningLimitReached = errors.New("daily earning limit reached")
	ErrTaskTooFast         = errors.New("task completed too fast")
	ErrAlreadyClaimed      = errors.New("bonus already claimed today")
	ErrAlreadyCompleted    = errors.New("task already completed today")
	ErrChallengeIncomplete = errors.New("challenge not completed yet")
	ErrValidation          = errors.New("invalid request")
)

// TransitionError reports a withdrawal state change attempted from a state
// where it is not allowed. It names the current status so the caller can see
// what a concurrent actor already did.
type TransitionError struct {
	Action        string
	CurrentStatus string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s withdrawal in status %q", e.Action, e.CurrentStatus)
}

// IsConflict reports whether err is a state-transition conflict.
func IsConflict(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
