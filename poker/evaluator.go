package poker

import (
	"fmt"
	"math/bits"
)

// HandType enumerates the hand categories from weakest to strongest.
type HandType uint8

const (
	HighCard HandType = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var handTypeNames = [...]string{
	"High Card",
	"Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
	"Royal Flush",
}

func (t HandType) String() string {
	if int(t) >= len(handTypeNames) {
		return "Unknown"
	}
	return handTypeNames[t]
}

// HandRank is a totally ordered hand strength. Higher values are stronger
// and equal values tie. The category lives in the top bits followed by up
// to five tie-break ranks, one nibble each, most significant first.
type HandRank uint32

const (
	typeShift   = 20
	kickerShift = 4
)

func makeRank(t HandType, ranks ...Rank) HandRank {
	v := HandRank(t) << typeShift
	shift := typeShift - kickerShift
	for _, r := range ranks {
		v |= HandRank(r) << shift
		shift -= kickerShift
	}
	return v
}

// Type returns the category of the hand.
func (hr HandRank) Type() HandType {
	return HandType(hr >> typeShift)
}

// Ranks returns the tie-break ranks in significance order.
func (hr HandRank) Ranks() []Rank {
	out := make([]Rank, 0, 5)
	for shift := typeShift - kickerShift; shift >= 0; shift -= kickerShift {
		r := Rank((hr >> shift) & 0xf)
		if r == 0 {
			break
		}
		out = append(out, r)
	}
	return out
}

// String describes the hand, e.g. "Full House, Kings full of Tens".
func (hr HandRank) String() string {
	r := hr.Ranks()
	at := func(i int) Rank {
		if i < len(r) {
			return r[i]
		}
		return 0
	}
	switch hr.Type() {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", at(0).Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", at(0).Plural())
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", at(0).Plural(), at(1).Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", at(0).Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", at(0).Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", at(0).Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", at(0).Plural(), at(1).Plural())
	case Pair:
		return fmt.Sprintf("Pair of %s", at(0).Plural())
	default:
		if len(r) == 0 {
			return "No Hand"
		}
		return fmt.Sprintf("High Card, %s", at(0).Name())
	}
}

// CompareHands returns 1 if a beats b, -1 if b beats a and 0 on a tie.
func CompareHands(a, b HandRank) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// Evaluate returns the rank of the best five card hand that can be formed
// from cards. It needs at least five cards and returns 0 otherwise.
func Evaluate(cards ...Card) HandRank {
	if len(cards) < 5 {
		return 0
	}

	var suitMasks [4]uint16
	var counts [Ace + 1]uint8
	var rankMask uint16
	for _, c := range cards {
		bit := uint16(1) << c.Rank
		suitMasks[c.Suit] |= bit
		rankMask |= bit
		counts[c.Rank]++
	}

	var flushMask uint16
	for _, m := range suitMasks {
		if bits.OnesCount16(m) < 5 {
			continue
		}
		if hi := straightHigh(m); hi > 0 {
			if hi == Ace {
				return makeRank(RoyalFlush, Ace)
			}
			return makeRank(StraightFlush, hi)
		}
		if topRanks(m, 5, 0)[0] > topRanks(flushMask, 1, 0)[0] {
			flushMask = m
		}
	}

	var quads, trips, pairs []Rank
	for r := Ace; r >= Two; r-- {
		switch {
		case counts[r] >= 4:
			quads = append(quads, r)
		case counts[r] == 3:
			trips = append(trips, r)
		case counts[r] == 2:
			pairs = append(pairs, r)
		}
	}

	if len(quads) > 0 {
		kicker := topRanks(rankMask, 1, quads[0])
		return makeRank(FourOfAKind, quads[0], kicker[0])
	}

	if len(trips) > 0 && (len(trips) > 1 || len(pairs) > 0) {
		var full Rank
		if len(trips) > 1 {
			full = trips[1]
		}
		if len(pairs) > 0 && pairs[0] > full {
			full = pairs[0]
		}
		return makeRank(FullHouse, trips[0], full)
	}

	if flushMask != 0 {
		return makeRank(Flush, topRanks(flushMask, 5, 0)...)
	}

	if hi := straightHigh(rankMask); hi > 0 {
		return makeRank(Straight, hi)
	}

	if len(trips) > 0 {
		kickers := topRanks(rankMask, 2, trips[0])
		return makeRank(ThreeOfAKind, append([]Rank{trips[0]}, kickers...)...)
	}

	if len(pairs) >= 2 {
		kicker := topRanks(rankMask, 1, pairs[0], pairs[1])
		return makeRank(TwoPair, pairs[0], pairs[1], kicker[0])
	}

	if len(pairs) == 1 {
		kickers := topRanks(rankMask, 3, pairs[0])
		return makeRank(Pair, append([]Rank{pairs[0]}, kickers...)...)
	}

	return makeRank(HighCard, topRanks(rankMask, 5, 0)...)
}

// BestHand returns the rank and the five cards making up the best hand.
func BestHand(cards ...Card) (HandRank, []Card) {
	if len(cards) < 5 {
		return 0, nil
	}
	best := HandRank(0)
	var bestCards []Card
	combo := make([]Card, 5)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			if r := Evaluate(combo...); r > best || bestCards == nil {
				best = r
				bestCards = append(bestCards[:0], combo...)
			}
			return
		}
		for i := start; i <= len(cards)-(5-depth); i++ {
			combo[depth] = cards[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best, bestCards
}

// straightHigh returns the top rank of the highest straight in mask, or 0.
func straightHigh(mask uint16) Rank {
	for hi := Ace; hi >= Six; hi-- {
		run := uint16(0x1f) << (hi - 4)
		if mask&run == run {
			return hi
		}
	}
	wheel := uint16(1)<<Ace | uint16(1)<<Two | uint16(1)<<Three | uint16(1)<<Four | uint16(1)<<Five
	if mask&wheel == wheel {
		return Five
	}
	return 0
}

// topRanks returns the n highest ranks present in mask skipping excluded ones.
// The result is padded with zero ranks when mask runs out.
func topRanks(mask uint16, n int, exclude ...Rank) []Rank {
	out := make([]Rank, 0, n)
	for r := Ace; r >= Two && len(out) < n; r-- {
		if mask&(1<<r) == 0 {
			continue
		}
		skip := false
		for _, e := range exclude {
			if e == r {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, r)
		}
	}
	for len(out) < n {
		out = append(out, 0)
	}
	return out
}
