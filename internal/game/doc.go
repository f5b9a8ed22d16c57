// Package game implements the rules of a single Texas Hold'em table.
//
// The main type is Engine, which owns the seats, the dealer button and the
// hand in progress, and moves each hand through blinds, four betting
// streets and showdown.
//
// # Basic Usage
//
// Seat players, start a hand and submit actions for whoever is to act:
//
//	e, err := game.NewEngine(game.Blinds{Small: 5, Big: 10})
//	e.SeatPlayer("alice", 1, 1000, "")
//	e.SeatPlayer("bob", 2, 1000, "")
//	e.StartHand()
//	view, _ := e.ViewFor(e.TurnSeat())
//	e.SubmitAction(view.Seat, game.Call, 0)
//	if e.Phase() == game.PhaseFinished {
//	    winners := e.Result().Winners
//	}
//
// Bet and raise amounts are the total the player's street bet becomes, not
// the increment.
//
// # Deterministic Testing
//
// Inject the shuffle source and hand IDs for reproducible hands:
//
//	e, _ := game.NewEngine(blinds,
//	    game.WithRNG(randutil.New(42)),
//	    game.WithHandIDs(func() string { return "hand-1" }))
//
// Or stack the deck outright, in deal order:
//
//	deck := poker.MustParseCards("As Kd Ah Kc ...")
//	e, _ := game.NewEngine(blinds, game.WithDeckSource(game.StackedDecks(deck)))
//
// # Architecture
//
// Engine delegates responsibilities to specialized components:
//   - Table: seats, button movement and blind positions
//   - BettingRound: turn order, valid actions and street completion
//   - PotLedger: contributions and side pots
//   - ResolveShowdown: hand evaluation and pot awards
//
// Engine is synchronous. Every change is reported to an optional Notifier
// as a typed Event after it is applied.
package game
