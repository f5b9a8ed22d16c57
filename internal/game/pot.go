package game

import (
	"slices"
)

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"` // seats that can win it
}

// contribution is one seat's money in the hand. The ledger keeps its own
// copy so a player leaving mid-hand cannot change what the pots hold.
type contribution struct {
	playerID  string
	total     int // everything put in this hand
	collected int // portion already swept into the pots
	folded    bool
}

// PotLedger accounts for every chip committed during a hand and splits the
// collected chips into a main pot and side pots.
type PotLedger struct {
	entries map[int]*contribution
}

// NewPotLedger creates an empty ledger.
func NewPotLedger() *PotLedger {
	return &PotLedger{entries: make(map[int]*contribution)}
}

func (l *PotLedger) entry(seat int, playerID string) *contribution {
	c, ok := l.entries[seat]
	if !ok {
		c = &contribution{playerID: playerID}
		l.entries[seat] = c
	}
	return c
}

// Join registers a seat dealt into the hand.
func (l *PotLedger) Join(seat int, playerID string) {
	l.entry(seat, playerID)
}

// Add records chips committed by seat on the current street.
func (l *PotLedger) Add(seat int, amount int) {
	if amount <= 0 {
		return
	}
	l.entry(seat, "").total += amount
}

// Fold marks seat as no longer eligible for any pot. Its chips stay in.
func (l *PotLedger) Fold(seat int) {
	if c, ok := l.entries[seat]; ok {
		c.folded = true
	}
}

// Collect sweeps the current street's bets into the pots.
func (l *PotLedger) Collect() {
	for _, c := range l.entries {
		c.collected = c.total
	}
}

// Total returns every chip committed this hand, collected or not.
func (l *PotLedger) Total() int {
	n := 0
	for _, c := range l.entries {
		n += c.total
	}
	return n
}

// Uncollected returns chips bet on the current street not yet in a pot.
func (l *PotLedger) Uncollected() int {
	n := 0
	for _, c := range l.entries {
		n += c.total - c.collected
	}
	return n
}

// Contributed returns everything seat has committed this hand.
func (l *PotLedger) Contributed(seat int) int {
	if c, ok := l.entries[seat]; ok {
		return c.total
	}
	return 0
}

// Seats returns every seat with an entry, ascending.
func (l *PotLedger) Seats() []int {
	seats := make([]int, 0, len(l.entries))
	for seat := range l.entries {
		seats = append(seats, seat)
	}
	slices.Sort(seats)
	return seats
}

// Pots splits the collected chips by contribution level. The first pot is
// the main pot; each later pot is a side pot contested only by the seats
// that put in at least that much. Chips from folded seats stay in the layer
// they reached. A layer nobody live can win merges into the pot below it.
func (l *PotLedger) Pots() []Pot {
	var levels []int
	for _, c := range l.entries {
		if c.collected > 0 && !slices.Contains(levels, c.collected) {
			levels = append(levels, c.collected)
		}
	}
	slices.Sort(levels)

	seats := l.Seats()
	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, seat := range seats {
			c := l.entries[seat]
			pot.Amount += min(c.collected, level) - min(c.collected, prev)
			if !c.folded && c.collected >= level {
				pot.Eligible = append(pot.Eligible, seat)
			}
		}
		prev = level

		if n := len(pots); n > 0 && (len(pot.Eligible) == 0 || slices.Equal(pots[n-1].Eligible, pot.Eligible)) {
			pots[n-1].Amount += pot.Amount
			continue
		}
		pots = append(pots, pot)
	}
	return pots
}
