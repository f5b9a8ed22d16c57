package policy

import (
	"github.com/lox/holdem/internal/game"
)

// CheckCall checks when it can and calls otherwise. Facing a bet it cannot
// call it goes all-in. It never bets or raises, which makes hands played
// against it fully determined by the deck.
type CheckCall struct{}

// Decide implements Policy.
func (CheckCall) Decide(view game.TableView) game.Decision {
	return choose(view, "check-call", game.Check, game.Call, game.AllIn)
}

// Scripted plays a fixed list of decisions in order and falls back to
// another policy when the script runs out or an entry is not valid.
type Scripted struct {
	steps    []game.Decision
	fallback Policy
}

// NewScripted creates a scripted policy. Exhausted scripts check-call.
func NewScripted(steps ...game.Decision) *Scripted {
	return &Scripted{steps: steps, fallback: CheckCall{}}
}

// Then sets the policy used once the script is exhausted.
func (s *Scripted) Then(p Policy) *Scripted {
	s.fallback = p
	return s
}

// Remaining returns how many scripted decisions are left.
func (s *Scripted) Remaining() int { return len(s.steps) }

// Decide implements Policy.
func (s *Scripted) Decide(view game.TableView) game.Decision {
	if len(s.steps) == 0 {
		return s.fallback.Decide(view)
	}
	d := s.steps[0]
	s.steps = s.steps[1:]
	if !Valid(view, d) {
		return s.fallback.Decide(view)
	}
	return d
}
