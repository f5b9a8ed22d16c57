package poker

// HoleCardCategory buckets a starting hand by pre-flop strength.
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "premium"
	CategoryStrong  HoleCardCategory = "strong"
	CategoryMedium  HoleCardCategory = "medium"
	CategoryWeak    HoleCardCategory = "weak"
	CategoryTrash   HoleCardCategory = "trash"
	CategoryUnknown HoleCardCategory = "unknown"
)

// Strength maps the category onto 0..1 for policies that scale aggression.
func (c HoleCardCategory) Strength() float64 {
	switch c {
	case CategoryPremium:
		return 1.0
	case CategoryStrong:
		return 0.8
	case CategoryMedium:
		return 0.6
	case CategoryWeak:
		return 0.35
	case CategoryTrash:
		return 0.1
	default:
		return 0
	}
}

// CategorizeHoleCards classifies two hole cards.
//
//	premium: JJ+, AK
//	strong:  TT, AQ, AJ
//	medium:  77-99, suited broadway
//	weak:    22-66, suited connectors and one-gappers
//	trash:   everything else
func CategorizeHoleCards(hole []Card) HoleCardCategory {
	if len(hole) != 2 || !hole[0].IsValid() || !hole[1].IsValid() {
		return CategoryUnknown
	}

	low, high := hole[0].Rank, hole[1].Rank
	if low > high {
		low, high = high, low
	}
	suited := hole[0].Suit == hole[1].Suit
	pair := low == high

	switch {
	case pair && low >= Jack, low == King && high == Ace:
		return CategoryPremium
	case pair && low == Ten, high == Ace && (low == Queen || low == Jack):
		return CategoryStrong
	case pair && low >= Seven, suited && low >= Ten:
		return CategoryMedium
	case pair, suited && high-low <= 2:
		return CategoryWeak
	default:
		return CategoryTrash
	}
}
