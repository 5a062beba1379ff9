package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a state transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when every guard for a permitted trigger fails.
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrUnknownStatus is returned when a status string maps to no trigger.
	ErrUnknownStatus = errors.New("unknown target status")
)

// TransitionError carries the state and trigger of a failed transition.
type TransitionError struct {
	From    State
	Trigger Trigger
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: trigger %s from state %s", e.Err, e.Trigger, e.From)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
