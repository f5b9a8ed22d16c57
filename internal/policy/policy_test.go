package policy

import (
	"context"
	"math"
	"testing"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

func view(toCall int, options ...game.ValidAction) game.TableView {
	return game.TableView{ToCall: toCall, ValidActions: options}
}

var (
	fold  = game.ValidAction{Action: game.Fold}
	check = game.ValidAction{Action: game.Check}
	call  = game.ValidAction{Action: game.Call, Min: 20, Max: 20}
	bet   = game.ValidAction{Action: game.Bet, Min: 20, Max: 1000}
	raise = game.ValidAction{Action: game.Raise, Min: 40, Max: 1000}
	allIn = game.ValidAction{Action: game.AllIn, Min: 1000, Max: 1000}
)

func TestCheckCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		view game.TableView
		want game.Action
	}{
		{"checks when free", view(0, fold, check, bet, allIn), game.Check},
		{"calls a bet", view(20, fold, call, raise, allIn), game.Call},
		{"all-in when call is impossible", view(20, fold, allIn), game.AllIn},
		{"folds with nothing else", view(20, fold), game.Fold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := CheckCall{}.Decide(tt.view)
			if d.Action != tt.want {
				t.Fatalf("got %s, want %s", d.Action, tt.want)
			}
			if !Valid(tt.view, d) {
				t.Fatalf("decision %+v is not valid", d)
			}
		})
	}
}

func TestScriptedPlaysInOrderThenFallsBack(t *testing.T) {
	t.Parallel()

	s := NewScripted(
		game.Decision{Action: game.Raise, Amount: 60},
		game.Decision{Action: game.Check}, // invalid when facing a bet
	)
	v := view(20, fold, call, raise, allIn)

	if d := s.Decide(v); d.Action != game.Raise || d.Amount != 60 {
		t.Fatalf("first = %+v, want raise to 60", d)
	}
	if d := s.Decide(v); d.Action != game.Call {
		t.Fatalf("invalid scripted check should fall back to call, got %+v", d)
	}
	if s.Remaining() != 0 {
		t.Fatalf("remaining = %d", s.Remaining())
	}

	s.Then(Func(func(game.TableView) game.Decision { return game.Decision{Action: game.Fold} }))
	if d := s.Decide(v); d.Action != game.Fold {
		t.Fatalf("fallback = %+v, want fold", d)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	v := view(20, fold, call, raise, allIn)
	if d := Sanitize(v, game.Decision{Action: game.Raise, Amount: 10}); d.Action != game.Fold {
		t.Fatalf("raise below minimum facing a bet should become a fold, got %+v", d)
	}
	keep := game.Decision{Action: game.Raise, Amount: 500}
	if d := Sanitize(v, keep); d != keep {
		t.Fatalf("valid decision changed to %+v", d)
	}
	if d := Sanitize(view(0, fold, check), game.Decision{Action: game.Call}); d.Action != game.Check {
		t.Fatalf("got %+v, want check", d)
	}
}

func TestWeightedRandomOnlyChoosesValidActions(t *testing.T) {
	t.Parallel()

	p := NewWeightedRandom(randutil.New(3))
	views := []game.TableView{
		view(0, fold, check, bet, allIn),
		view(20, fold, call, raise, allIn),
		view(20, fold, allIn),
	}
	seen := map[game.Action]int{}
	for i := range 3000 {
		v := views[i%len(views)]
		v.Pot = 60
		v.HighestBet = 20
		d := p.Decide(v)
		if !Valid(v, d) {
			t.Fatalf("invalid decision %+v for %v", d, v.ValidActions)
		}
		if d.Action == game.Fold && v.Can(game.Check) {
			t.Fatal("folded when checking was free")
		}
		seen[d.Action]++
	}
	for _, a := range []game.Action{game.Fold, game.Check, game.Call, game.Bet, game.Raise, game.AllIn} {
		if seen[a] == 0 {
			t.Errorf("never chose %s in 3000 decisions", a)
		}
	}
}

func TestWeightedRandomIsReproducible(t *testing.T) {
	t.Parallel()

	a := NewWeightedRandom(randutil.New(11))
	b := NewWeightedRandom(randutil.New(11))
	v := view(20, fold, call, raise, allIn)
	v.Pot = 30
	for range 200 {
		if da, db := a.Decide(v), b.Decide(v); da != db {
			t.Fatalf("same seed diverged: %+v vs %+v", da, db)
		}
	}
}

func TestEstimateEquity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	aces := poker.MustParseCards("As Ah")

	eq, err := EstimateEquity(ctx, aces, nil, 1, 6000, randutil.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(eq-0.85) > 0.03 {
		t.Fatalf("AA vs one random hand = %.3f, want about 0.85", eq)
	}

	eq3, err := EstimateEquity(ctx, aces, nil, 3, 6000, randutil.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if eq3 >= eq {
		t.Fatalf("equity should drop against more opponents: %.3f vs %.3f", eq3, eq)
	}

	royal := poker.MustParseCards("Ah Kh Qh Jh Th")
	eq, err = EstimateEquity(ctx, poker.MustParseCards("2c 3d"), royal, 2, 500, randutil.New(1))
	if err != nil {
		t.Fatal(err)
	}
	if eq != 0.5 {
		t.Fatalf("board plays for everyone, equity = %v, want 0.5", eq)
	}

	again, _ := EstimateEquity(ctx, aces, nil, 1, 1000, randutil.New(5))
	same, _ := EstimateEquity(ctx, aces, nil, 1, 1000, randutil.New(5))
	if again != same {
		t.Fatalf("same seed gave %v and %v", again, same)
	}
}

func TestEstimateEquityErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rng := randutil.New(1)
	if _, err := EstimateEquity(ctx, poker.MustParseCards("As"), nil, 1, 10, rng); err == nil {
		t.Error("one hole card should fail")
	}
	if _, err := EstimateEquity(ctx, poker.MustParseCards("As Ad"), nil, 30, 10, rng); err == nil {
		t.Error("thirty opponents cannot be dealt")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := EstimateEquity(cancelled, poker.MustParseCards("As Ad"), nil, 1, 1000, rng); err == nil {
		t.Error("cancelled context should stop the workers")
	}
}

// tableView starts a real hand and returns the view for the seat to act.
func tableView(t *testing.T, deck []poker.Card) game.TableView {
	t.Helper()
	e, err := game.NewEngine(game.Blinds{Small: 10, Big: 20},
		game.WithDeckSource(game.StackedDecks(deck)),
		game.WithHandIDs(func() string { return "h" }))
	if err != nil {
		t.Fatal(err)
	}
	for seat := 1; seat <= 2; seat++ {
		if err := e.SeatPlayer(string(rune('a'+seat)), seat, 1000, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.StartHand(); err != nil {
		t.Fatal(err)
	}
	v, err := e.ViewFor(e.TurnSeat())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestEquityPolicy(t *testing.T) {
	t.Parallel()

	// Heads-up deal order is seat 2 then seat 1; seat 1 acts first.
	strong := tableView(t, poker.MustParseCards("2c As 7d Ah"))
	d := NewEquity(randutil.New(2)).Decide(strong)
	if d.Action != game.Raise || !Valid(strong, d) {
		t.Fatalf("pocket aces should raise, got %+v", d)
	}

	weak := tableView(t, poker.MustParseCards("Ac 2s Ad 7h"))
	p := NewEquity(randutil.New(2))
	p.CallMargin = 0.2
	d = p.Decide(weak)
	if d.Action != game.Fold {
		t.Fatalf("7-2 offsuit with a steep call margin should fold, got %+v", d)
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range Names() {
		p, err := ByName(name, randutil.New(1))
		if err != nil || p == nil {
			t.Fatalf("ByName(%q) = %v, %v", name, p, err)
		}
		v := view(20, fold, call, raise, allIn)
		v.HoleCards = poker.MustParseCards("Kd Qd")
		v.Pot = 30
		if d := p.Decide(v); !Valid(v, d) {
			t.Fatalf("%s made invalid decision %+v", name, d)
		}
	}
	if _, err := ByName("shark", nil); err == nil {
		t.Fatal("unknown policy should fail")
	}
}
