package game

import (
	"slices"

	"github.com/lox/holdem/poker"
)

// Award is what one player won from the hand.
type Award struct {
	Seat        int            `json:"seat"`
	PlayerID    string         `json:"player_id"`
	Amount      int            `json:"amount"`
	Rank        poker.HandRank `json:"-"`
	Description string         `json:"hand,omitempty"`
	BestHand    []poker.Card   `json:"best_hand,omitempty"`
}

// PotResult records how one pot was split.
type PotResult struct {
	Amount      int    `json:"amount"`
	Eligible    []int  `json:"eligible"`
	Winners     []int  `json:"winners"`
	Description string `json:"hand,omitempty"`
}

// HandResult is the outcome of a finished hand.
type HandResult struct {
	HandID      string               `json:"hand_id"`
	Winners     []Award              `json:"winners"`
	Pots        []PotResult          `json:"pots"`
	Board       []poker.Card         `json:"board"`
	Shown       map[int][]poker.Card `json:"shown,omitempty"`
	PotAmount   int                  `json:"pot_amount"`
	EndedByFold bool                 `json:"ended_by_fold"`
}

// Won returns the amount seat won, or 0.
func (r *HandResult) Won(seat int) int {
	if r == nil {
		return 0
	}
	for _, a := range r.Winners {
		if a.Seat == seat {
			return a.Amount
		}
	}
	return 0
}

type showdownHand struct {
	player *Player
	rank   poker.HandRank
	best   []poker.Card
}

// ResolveShowdown ranks the hands still in and splits each pot between the
// best eligible hands. Ties split evenly; odd chips go one at a time to the
// tied winners clockwise from the seat left of the dealer. Winnings are
// credited to the players' stacks.
func ResolveShowdown(players []*Player, board []poker.Card, pots []Pot, dealerSeat int) *HandResult {
	hands := make(map[int]showdownHand, len(players))
	result := &HandResult{
		Board: slices.Clone(board),
		Shown: make(map[int][]poker.Card),
	}
	for _, p := range players {
		if !p.InHand() {
			continue
		}
		cards := append(slices.Clone(p.HoleCards), board...)
		rank, best := poker.BestHand(cards...)
		hands[p.Seat] = showdownHand{player: p, rank: rank, best: best}
		result.Shown[p.Seat] = slices.Clone(p.HoleCards)
	}

	awards := make(map[int]int)
	for _, pot := range pots {
		pr := PotResult{Amount: pot.Amount, Eligible: slices.Clone(pot.Eligible)}
		var best poker.HandRank
		for _, seat := range pot.Eligible {
			h, ok := hands[seat]
			if !ok {
				continue
			}
			switch {
			case len(pr.Winners) == 0 || h.rank > best:
				best = h.rank
				pr.Winners = []int{seat}
			case h.rank == best:
				pr.Winners = append(pr.Winners, seat)
			}
		}
		if len(pr.Winners) == 0 {
			continue
		}
		if len(pr.Winners) > 1 || len(pot.Eligible) > 1 {
			pr.Description = best.String()
		}
		splitPot(awards, pot.Amount, pr.Winners, dealerSeat)
		result.Pots = append(result.Pots, pr)
		result.PotAmount += pot.Amount
	}

	result.Winners = makeAwards(awards, hands, dealerSeat)
	return result
}

// splitPot divides amount between winners, handing remainder chips out
// clockwise from the dealer's left.
func splitPot(awards map[int]int, amount int, winners []int, dealerSeat int) {
	ordered := slices.Clone(winners)
	slices.SortFunc(ordered, func(a, b int) int {
		return clockwiseFrom(dealerSeat, a) - clockwiseFrom(dealerSeat, b)
	})
	share := amount / len(ordered)
	rem := amount % len(ordered)
	for i, seat := range ordered {
		awards[seat] += share
		if i < rem {
			awards[seat]++
		}
	}
}

func makeAwards(awards map[int]int, hands map[int]showdownHand, dealerSeat int) []Award {
	out := make([]Award, 0, len(awards))
	for seat, amount := range awards {
		h := hands[seat]
		h.player.Chips += amount
		a := Award{
			Seat:     seat,
			PlayerID: h.player.ID,
			Amount:   amount,
			Rank:     h.rank,
			BestHand: h.best,
		}
		if h.rank != 0 {
			a.Description = h.rank.String()
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Award) int {
		return clockwiseFrom(dealerSeat, a.Seat) - clockwiseFrom(dealerSeat, b.Seat)
	})
	return out
}
