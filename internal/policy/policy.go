// Package policy chooses actions for seats not controlled by a person.
//
// A Policy sees only the game.TableView for its own seat: the public table
// state plus its own hole cards. Policies are pure decision functions;
// timing (think delays, timeouts) belongs to the caller.
package policy

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/lox/holdem/internal/game"
)

// Policy picks an action for the seat described by view.
type Policy interface {
	Decide(view game.TableView) game.Decision
}

// Func adapts an ordinary function to Policy.
type Func func(view game.TableView) game.Decision

// Decide calls f(view).
func (f Func) Decide(view game.TableView) game.Decision { return f(view) }

// choose returns the first of the preferred actions that is valid, at its
// minimum amount. It falls back to checking, then folding.
func choose(view game.TableView, reasoning string, preferred ...game.Action) game.Decision {
	for _, a := range append(preferred, game.Check, game.Fold) {
		if opt, ok := view.Option(a); ok {
			return game.Decision{Action: a, Amount: opt.Min, Reasoning: reasoning}
		}
	}
	return game.Decision{Action: game.Fold, Reasoning: "no valid actions: " + reasoning}
}

// sized returns a Bet or Raise to target, clamped into the legal range.
func sized(opt game.ValidAction, target int, reasoning string) game.Decision {
	return game.Decision{
		Action:    opt.Action,
		Amount:    min(max(target, opt.Min), opt.Max),
		Reasoning: reasoning,
	}
}

// aggressive returns a bet or raise to target if either is valid.
func aggressive(view game.TableView, target int, reasoning string) (game.Decision, bool) {
	for _, a := range []game.Action{game.Bet, game.Raise} {
		if opt, ok := view.Option(a); ok {
			return sized(opt, target, reasoning), true
		}
	}
	return game.Decision{}, false
}

// potOdds returns the share of the final pot a call would contribute.
func potOdds(view game.TableView) float64 {
	if view.ToCall <= 0 {
		return 0
	}
	return float64(view.ToCall) / float64(view.Pot+view.ToCall)
}

// Names lists the policies ByName understands.
func Names() []string {
	return []string{"checkcall", "random", "equity", "fold"}
}

// ByName builds a policy from its configuration name. rng seeds the
// policies that need randomness.
func ByName(name string, rng *rand.Rand) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "checkcall", "callbot", "call":
		return CheckCall{}, nil
	case "random", "randbot":
		return NewWeightedRandom(rng), nil
	case "equity":
		return NewEquity(rng), nil
	case "fold", "foldbot":
		return Func(func(view game.TableView) game.Decision {
			return choose(view, "always folds", game.Check, game.Fold)
		}), nil
	}
	return nil, fmt.Errorf("unknown policy %q (want one of %s)", name, strings.Join(Names(), ", "))
}

// Valid reports whether d is one of the view's valid actions with an amount
// inside its range.
func Valid(view game.TableView, d game.Decision) bool {
	opt, ok := view.Option(d.Action)
	if !ok {
		return false
	}
	if d.Action == game.Bet || d.Action == game.Raise {
		return d.Amount >= opt.Min && d.Amount <= opt.Max
	}
	return true
}

// Sanitize replaces an invalid decision with a check or fold so a bad policy
// can never stall the table.
func Sanitize(view game.TableView, d game.Decision) game.Decision {
	if Valid(view, d) {
		return d
	}
	return choose(view, fmt.Sprintf("replaced invalid %s %d", d.Action, d.Amount))
}
