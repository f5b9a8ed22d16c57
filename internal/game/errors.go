package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdem/poker"
)

// Validation failures. These are always recoverable: the request is rejected
// and no state changes.
var (
	ErrSeatTaken         = errors.New("seat taken")
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrDuplicatePlayer   = errors.New("player already seated")
	ErrPlayerNotFound    = errors.New("no player in seat")
	ErrNotPlayersTurn    = errors.New("not player's turn")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidPlayer     = errors.New("invalid player")
	ErrHandInProgress    = errors.New("hand in progress")
	ErrWrongPhase        = errors.New("operation not allowed in current phase")
	ErrNotEnoughPlayers  = errors.New("need at least two players with chips")
)

// ErrNoEligiblePlayer signals that nobody is left to act on this street.
var ErrNoEligiblePlayer = errors.New("no eligible player")

// Invariant violations. These abort the hand.
var (
	ErrEmptyDeck      = poker.ErrEmptyDeck
	ErrDealerNotFound = errors.New("dealer not found")
)

// ValidationError wraps a rejected request.
type ValidationError struct {
	Op   string
	Seat int
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Seat > 0 {
		return fmt.Sprintf("%s seat %d: %v", e.Op, e.Seat, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StateError reports a broken invariant that forced the hand to be aborted.
type StateError struct {
	Op     string
	HandID string
	Err    error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s (hand %s aborted): %v", e.Op, e.HandID, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func invalid(op string, seat int, err error) error {
	return &ValidationError{Op: op, Seat: seat, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateError reports whether err is a StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
