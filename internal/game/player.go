package game

import (
	"github.com/lox/holdem/poker"
)

// Status is a player's participation in the current hand.
type Status int

const (
	Active Status = iota
	Folded
	StatusAllIn
	SittingOut
)

var statusNames = [...]string{"active", "folded", "allin", "sitting_out"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Player is a seated player.
type Player struct {
	ID     string
	Avatar string
	Seat   int
	Chips  int

	HoleCards  []poker.Card
	CurrentBet int // uncollected bet on this street
	TotalBet   int // everything committed this hand
	Status     Status

	IsDealer     bool
	IsSmallBlind bool
	IsBigBlind   bool

	sitOut bool // requested to sit out from the next hand
}

// InHand reports whether the player still contests the pot.
func (p *Player) InHand() bool {
	return p.Status == Active || p.Status == StatusAllIn
}

// CanAct reports whether the player can still make betting decisions.
func (p *Player) CanAct() bool {
	return p.Status == Active
}

// commit moves delta chips from the stack into the current bet. A player
// left with no chips is all-in.
func (p *Player) commit(delta int) {
	p.Chips -= delta
	p.CurrentBet += delta
	p.TotalBet += delta
	if p.Chips == 0 && p.Status == Active {
		p.Status = StatusAllIn
	}
}

func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.TotalBet = 0
	p.IsDealer = false
	p.IsSmallBlind = false
	p.IsBigBlind = false
	if p.sitOut || p.Chips == 0 {
		p.Status = SittingOut
	} else {
		p.Status = Active
	}
}
