package policy

import (
	rand "math/rand/v2"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// DefaultWeights are the base action weights for WeightedRandom.
var DefaultWeights = map[game.Action]float64{
	game.Fold:  1,
	game.Check: 4,
	game.Call:  3,
	game.Bet:   1.5,
	game.Raise: 1,
	game.AllIn: 0.15,
}

// WeightedRandom picks among the valid actions at random. Base weights are
// scaled by the strength of the hole cards so good hands bet more and fold
// less. It never folds when it could check.
type WeightedRandom struct {
	rng     *rand.Rand
	Weights map[game.Action]float64
}

// NewWeightedRandom creates a weighted random policy. A nil rng is seeded
// from the clock.
func NewWeightedRandom(rng *rand.Rand) *WeightedRandom {
	if rng == nil {
		rng = randutil.New(randutil.Seed(0))
	}
	return &WeightedRandom{rng: rng, Weights: DefaultWeights}
}

// Decide implements Policy.
func (w *WeightedRandom) Decide(view game.TableView) game.Decision {
	if len(view.ValidActions) == 0 {
		return game.Decision{Action: game.Fold, Reasoning: "no valid actions"}
	}
	strength := poker.CategorizeHoleCards(view.HoleCards).Strength()

	weights := make([]float64, len(view.ValidActions))
	var total float64
	for i, opt := range view.ValidActions {
		wt := w.Weights[opt.Action]
		switch opt.Action {
		case game.Fold:
			if view.Can(game.Check) {
				wt = 0
			}
			wt *= 1.2 - strength
		case game.Bet, game.Raise, game.AllIn:
			wt *= 0.5 + strength
		}
		weights[i] = wt
		total += wt
	}
	if total <= 0 {
		return choose(view, "random fallback")
	}

	pick := w.rng.Float64() * total
	chosen := view.ValidActions[len(view.ValidActions)-1]
	for i, wt := range weights {
		if pick < wt {
			chosen = view.ValidActions[i]
			break
		}
		pick -= wt
	}

	switch chosen.Action {
	case game.Bet, game.Raise:
		// Somewhere between the minimum and a pot-sized raise.
		upper := min(chosen.Max, max(chosen.Min, view.HighestBet+view.Pot))
		target := chosen.Min
		if upper > chosen.Min {
			target += w.rng.IntN(upper - chosen.Min + 1)
		}
		return sized(chosen, target, "random "+chosen.Action.String())
	default:
		return game.Decision{Action: chosen.Action, Amount: chosen.Min, Reasoning: "random " + chosen.Action.String()}
	}
}
