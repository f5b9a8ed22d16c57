package poker

import (
	"errors"
	rand "math/rand/v2"
)

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is an ordered sequence of unique cards. Draws come off the top.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a full 52-card deck shuffled with rng.
// A nil rng falls back to the package level generator.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle()
	return d
}

// NewOrderedDeck creates a deck that deals cards exactly in the given order.
// Intended for stacked decks in tests and replays.
func NewOrderedDeck(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle puts every card back and applies a Fisher-Yates shuffle.
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// DrawN draws n cards. Nothing is drawn unless all n are available.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrEmptyDeck
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out, nil
}

// Burn discards the top card face down.
func (d *Deck) Burn() error {
	_, err := d.Draw()
	return err
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
