package policy

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// workerResult holds the results from a Monte Carlo worker
type workerResult struct {
	wins    int
	ties    int
	samples int
}

// EstimateEquity estimates the share of the pot hole wins against the given
// number of random opponent hands, completing the board at random. Ties
// count as half a win. Samples are split across parallel workers, each with
// its own generator derived from rng, so results are reproducible for a
// given rng state.
func EstimateEquity(ctx context.Context, hole, board []poker.Card, opponents, samples int, rng *rand.Rand) (float64, error) {
	if len(hole) != 2 {
		return 0, errors.New("equity needs exactly two hole cards")
	}
	if len(board) > 5 {
		return 0, errors.New("board has more than five cards")
	}
	if opponents < 1 {
		return 1, nil
	}
	if samples <= 0 {
		return 0, errors.New("samples must be positive")
	}

	used := poker.NewCardSet(hole...)
	for _, c := range board {
		used = used.Add(c)
	}
	var available []poker.Card
	for s := poker.Clubs; s <= poker.Spades; s++ {
		for r := poker.Two; r <= poker.Ace; r++ {
			if c := poker.NewCard(r, s); !used.Contains(c) {
				available = append(available, c)
			}
		}
	}
	if need := 2*opponents + 5 - len(board); need > len(available) {
		return 0, errors.New("not enough cards left for that many opponents")
	}

	workers := min(runtime.NumCPU(), 8, samples)
	results := make([]workerResult, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		n := samples / workers
		if w < samples%workers {
			n++
		}
		workerRNG := randutil.Child(rng)
		g.Go(func() error {
			res, err := runEquityWorker(ctx, hole, board, available, opponents, n, workerRNG)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total workerResult
	for _, r := range results {
		total.wins += r.wins
		total.ties += r.ties
		total.samples += r.samples
	}
	if total.samples == 0 {
		return 0, nil
	}
	return (float64(total.wins) + float64(total.ties)/2) / float64(total.samples), nil
}

func runEquityWorker(ctx context.Context, hole, board, available []poker.Card, opponents, samples int, rng *rand.Rand) (workerResult, error) {
	var res workerResult
	deck := make([]poker.Card, len(available))
	hero := make([]poker.Card, 0, 7)
	villain := make([]poker.Card, 0, 7)
	missing := 5 - len(board)
	need := 2*opponents + missing

	for i := range samples {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		// Partial Fisher-Yates: only the cards we deal get shuffled.
		copy(deck, available)
		for j := range need {
			k := j + rng.IntN(len(deck)-j)
			deck[j], deck[k] = deck[k], deck[j]
		}

		runout := deck[2*opponents : need]
		hero = append(append(append(hero[:0], hole...), board...), runout...)
		heroRank := poker.Evaluate(hero...)

		best := poker.HandRank(0)
		for o := range opponents {
			villain = append(append(append(villain[:0], deck[2*o:2*o+2]...), board...), runout...)
			best = max(best, poker.Evaluate(villain...))
		}

		switch {
		case heroRank > best:
			res.wins++
		case heroRank == best:
			res.ties++
		}
		res.samples++
	}
	return res, nil
}

// Equity decides from a Monte Carlo estimate of hand equity against the
// players still in the hand: raise when strong, call when the price is
// right, otherwise check or fold.
type Equity struct {
	rng    *rand.Rand
	logger zerolog.Logger

	Samples    int
	RaiseAbove float64 // equity needed to bet or raise
	CallMargin float64 // equity needed above pot odds to call
}

// NewEquity creates an equity policy with default thresholds.
func NewEquity(rng *rand.Rand) *Equity {
	if rng == nil {
		rng = randutil.New(randutil.Seed(0))
	}
	return &Equity{
		rng:        rng,
		logger:     zerolog.Nop(),
		Samples:    400,
		RaiseAbove: 0.7,
		CallMargin: 0.05,
	}
}

// WithLogger sets a logger for decision details.
func (e *Equity) WithLogger(logger zerolog.Logger) *Equity {
	e.logger = logger.With().Str("component", "equity").Logger()
	return e
}

// Decide implements Policy.
func (e *Equity) Decide(view game.TableView) game.Decision {
	opponents := max(1, view.ActivePlayers()-1)
	eq, err := EstimateEquity(context.Background(), view.HoleCards, view.Board, opponents, e.Samples, e.rng)
	if err != nil {
		e.logger.Warn().Err(err).Int("seat", view.Seat).Msg("Equity estimate failed")
		return choose(view, "equity unavailable")
	}
	odds := potOdds(view)
	e.logger.Debug().
		Int("seat", view.Seat).
		Str("hole", poker.FormatCards(view.HoleCards)).
		Str("board", poker.FormatCards(view.Board)).
		Float64("equity", eq).
		Float64("pot_odds", odds).
		Msg("Equity decision")

	if eq >= e.RaiseAbove {
		target := view.HighestBet + max(view.Pot*2/3, 1)
		if d, ok := aggressive(view, target, "strong equity"); ok {
			return d
		}
	}
	if view.ToCall == 0 {
		return choose(view, "checking with equity", game.Check)
	}
	if eq >= odds+e.CallMargin {
		if view.Can(game.Call) {
			return choose(view, "priced in", game.Call)
		}
		if eq >= 0.5 {
			return choose(view, "calling all-in", game.AllIn)
		}
	}
	return choose(view, "not enough equity", game.Fold)
}
