package session

import (
	"fmt"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
)

// PlayHand deals one hand on engine and plays it to the end on the calling
// goroutine, asking policies for every decision. Seats without a policy
// check and call. Invalid decisions are replaced with a check or fold.
//
// It is the synchronous counterpart of Session, used for simulations and
// tests where there is no human and no clock.
func PlayHand(engine *game.Engine, policies map[int]policy.Policy) (*game.HandResult, error) {
	if err := engine.StartHand(); err != nil {
		return nil, err
	}
	// Each action either ends the hand or moves the history forward, so the
	// bound only guards against an engine bug.
	for range 10_000 {
		if engine.Phase() != game.PhaseBetting {
			return engine.Result(), nil
		}
		seat := engine.TurnSeat()
		view, err := engine.ViewFor(seat)
		if err != nil {
			return nil, err
		}
		p, ok := policies[seat]
		if !ok {
			p = policy.CheckCall{}
		}
		d := policy.Sanitize(view, p.Decide(view))
		if err := engine.SubmitAction(seat, d.Action, d.Amount); err != nil {
			return nil, fmt.Errorf("seat %d %s %d: %w", seat, d.Action, d.Amount, err)
		}
	}
	return nil, fmt.Errorf("hand %s did not finish", engine.HandID())
}
