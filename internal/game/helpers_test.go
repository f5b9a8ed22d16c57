package game

import (
	"fmt"
	"testing"

	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// stackDeck builds a deck dealing holes[i] to the i-th seat in deal order
// (clockwise from the dealer's left), then the board with a burn card before
// each street. Unused cards fill the burns and the rest of the deck.
func stackDeck(t testing.TB, holes []string, board string) []poker.Card {
	t.Helper()
	hands := make([][]poker.Card, len(holes))
	used := poker.NewCardSet()
	for i, h := range holes {
		cards, err := poker.ParseCards(h)
		if err != nil || len(cards) != 2 {
			t.Fatalf("bad hole cards %q: %v", h, err)
		}
		hands[i] = cards
		for _, c := range cards {
			used = used.Add(c)
		}
	}
	boardCards, err := poker.ParseCards(board)
	if err != nil || len(boardCards) != 5 {
		t.Fatalf("bad board %q: %v", board, err)
	}
	for _, c := range boardCards {
		used = used.Add(c)
	}

	var spare []poker.Card
	for s := poker.Clubs; s <= poker.Spades; s++ {
		for r := poker.Two; r <= poker.Ace; r++ {
			if c := poker.NewCard(r, s); !used.Contains(c) {
				spare = append(spare, c)
			}
		}
	}
	burn := func() poker.Card {
		c := spare[0]
		spare = spare[1:]
		return c
	}

	var deck []poker.Card
	for round := range 2 {
		for _, h := range hands {
			deck = append(deck, h[round])
		}
	}
	deck = append(deck, burn())
	deck = append(deck, boardCards[:3]...)
	deck = append(deck, burn(), boardCards[3], burn(), boardCards[4])
	return append(deck, spare...)
}

type engineFixture struct {
	*Engine
	events *Recorder
}

// newTestEngine seats one player per stack in seats 1..n as p1..pn.
func newTestEngine(t testing.TB, blinds Blinds, stacks []int, opts ...Option) engineFixture {
	t.Helper()
	rec := &Recorder{}
	n := 0
	base := []Option{
		WithRNG(randutil.New(42)),
		WithNotifier(rec),
		WithHandIDs(func() string {
			n++
			return fmt.Sprintf("hand-%d", n)
		}),
	}
	e, err := NewEngine(blinds, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for i, chips := range stacks {
		if err := e.SeatPlayer(fmt.Sprintf("p%d", i+1), i+1, chips, ""); err != nil {
			t.Fatalf("SeatPlayer: %v", err)
		}
	}
	return engineFixture{Engine: e, events: rec}
}

// act submits an action for whoever is to act and fails the test unless it
// was seat's turn.
func (f engineFixture) act(t testing.TB, seat int, action Action, amount int) {
	t.Helper()
	if turn := f.TurnSeat(); turn != seat {
		t.Fatalf("expected seat %d to act, turn is %d", seat, turn)
	}
	if err := f.SubmitAction(seat, action, amount); err != nil {
		t.Fatalf("seat %d %s %d: %v", seat, action, amount, err)
	}
}

// checkDown checks or calls every remaining decision until the hand ends.
func (f engineFixture) checkDown(t testing.TB) {
	t.Helper()
	for f.Phase() == PhaseBetting {
		seat := f.TurnSeat()
		action := Check
		if !f.hand.round.Allows(f.table.Player(seat), Check) {
			action = Call
		}
		f.act(t, seat, action, 0)
	}
}

func sumChips(players []*Player) int {
	n := 0
	for _, p := range players {
		n += p.Chips
	}
	return n
}

func mustCards(t testing.TB, s string) []poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return cards
}
