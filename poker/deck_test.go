package poker

import (
	"errors"
	rand "math/rand/v2"
	"testing"
)

func TestDeckDrawsAllCardsOnce(t *testing.T) {
	t.Parallel()
	d := NewDeck(rand.New(rand.NewPCG(1, 2)))

	var seen CardSet
	for i := 0; i < 52; i++ {
		c, err := d.Draw()
		if err != nil {
			t.Fatalf("draw %d failed: %v", i+1, err)
		}
		if !c.IsValid() {
			t.Fatalf("draw %d returned invalid card %v", i+1, c)
		}
		if seen.Contains(c) {
			t.Fatalf("card %s drawn twice", c)
		}
		seen = seen.Add(c)
	}
	if seen.Count() != 52 {
		t.Errorf("expected 52 distinct cards, got %d", seen.Count())
	}
	if _, err := d.Draw(); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("53rd draw should fail with ErrEmptyDeck, got %v", err)
	}
}

func TestDeckShuffleDeterministic(t *testing.T) {
	t.Parallel()
	a := NewDeck(rand.New(rand.NewPCG(42, 7)))
	b := NewDeck(rand.New(rand.NewPCG(42, 7)))
	c := NewDeck(rand.New(rand.NewPCG(43, 7)))

	ca, _ := a.DrawN(52)
	cb, _ := b.DrawN(52)
	cc, _ := c.DrawN(52)

	differs := false
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("same seed produced different decks at %d", i)
		}
		if ca[i] != cc[i] {
			differs = true
		}
	}
	if !differs {
		t.Error("different seeds produced identical decks")
	}
}

func TestDeckShuffleIsRoughlyUniform(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(99, 1))
	const trials = 5200
	counts := make(map[Card]int)
	for i := 0; i < trials; i++ {
		d := NewDeck(rng)
		top, _ := d.Draw()
		counts[top]++
	}
	// Each card should be on top about 100 times.
	for c, n := range counts {
		if n < 50 || n > 160 {
			t.Errorf("card %s on top %d times out of %d", c, n, trials)
		}
	}
	if len(counts) != 52 {
		t.Errorf("expected every card on top at least once, got %d", len(counts))
	}
}

func TestDeckDrawNAllOrNothing(t *testing.T) {
	t.Parallel()
	d := NewOrderedDeck(MustParseCard("Ah"), MustParseCard("Kh"))
	if _, err := d.DrawN(3); !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("expected ErrEmptyDeck, got %v", err)
	}
	if d.Remaining() != 2 {
		t.Errorf("failed DrawN should not consume cards, remaining %d", d.Remaining())
	}
	if err := d.Burn(); err != nil {
		t.Fatalf("burn: %v", err)
	}
	c, err := d.Draw()
	if err != nil || c != MustParseCard("Kh") {
		t.Errorf("expected Kh after burn, got %v (%v)", c, err)
	}
}
