package poker

import (
	"fmt"
	"math/bits"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Suit is one of the four card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

var suitSymbols = [...]string{"♣", "♦", "♥", "♠"}

// String returns the single letter used in card codes.
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return suitChars[s : s+1]
}

// Symbol returns the unicode suit symbol.
func (s Suit) Symbol() string {
	if s > Spades {
		return "?"
	}
	return suitSymbols[s]
}

// IsRed reports whether the suit is hearts or diamonds.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank is a card rank, Two (2) through Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

var rankNames = [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}

// String returns the single character used in card codes (T for ten).
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	i := r - Two
	return rankChars[i : i+1]
}

// Name returns the English name of the rank ("Queen").
func (r Rank) Name() string {
	if r < Two || r > Ace {
		return "Unknown"
	}
	return rankNames[r-Two]
}

// Plural returns the English plural of the rank ("Sixes").
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card from a rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsValid reports whether the card holds a real rank and suit.
func (c Card) IsValid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit <= Spades
}

// String returns the canonical two character code, rank then suit ("Ah", "Td").
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Pretty renders the card with its suit symbol ("A♥").
func (c Card) Pretty() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// index maps the card onto 0..51.
func (c Card) index() int {
	return int(c.Rank-Two)*4 + int(c.Suit)
}

// MarshalText encodes the card using its canonical code.
func (c Card) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid card rank=%d suit=%d", c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card code.
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard parses a single card such as "Ah", "td", "10d" or "Q♠".
func ParseCard(s string) (Card, error) {
	card, rest, err := parseOne(strings.TrimSpace(s))
	if err != nil {
		return Card{}, err
	}
	if rest != "" {
		return Card{}, fmt.Errorf("unexpected trailing input %q in card %q", rest, s)
	}
	return card, nil
}

// MustParseCard is ParseCard for literals in tests and tables.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a list of cards. Cards may be concatenated ("AsKs")
// or separated by spaces or commas ("As Ks, 10d").
func ParseCards(s string) ([]Card, error) {
	var cards []Card
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	for _, field := range fields {
		rest := field
		for rest != "" {
			card, remaining, err := parseOne(rest)
			if err != nil {
				return nil, err
			}
			cards = append(cards, card)
			rest = remaining
		}
	}
	return cards, nil
}

// MustParseCards is ParseCards for literals in tests and tables.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseOne(s string) (Card, string, error) {
	if s == "" {
		return Card{}, "", fmt.Errorf("empty card")
	}

	var rank Rank
	switch {
	case strings.HasPrefix(s, "10"):
		rank = Ten
		s = s[2:]
	default:
		i := strings.IndexByte(rankChars, byte(unicode.ToUpper(rune(s[0]))))
		if i < 0 {
			return Card{}, "", fmt.Errorf("invalid rank %q", s[:1])
		}
		rank = Two + Rank(i)
		s = s[1:]
	}

	if s == "" {
		return Card{}, "", fmt.Errorf("missing suit after rank %s", rank)
	}
	r, size := utf8.DecodeRuneInString(s)
	var suit Suit
	switch unicode.ToLower(r) {
	case 'c', '♣':
		suit = Clubs
	case 'd', '♦':
		suit = Diamonds
	case 'h', '♥':
		suit = Hearts
	case 's', '♠':
		suit = Spades
	default:
		return Card{}, "", fmt.Errorf("invalid suit %q", string(r))
	}
	return Card{Rank: rank, Suit: suit}, s[size:], nil
}

// FormatCards joins card codes with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// CardSet is a bitset over the 52 cards.
type CardSet uint64

// NewCardSet builds a set from cards.
func NewCardSet(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s = s.Add(c)
	}
	return s
}

// Add returns the set with c included.
func (s CardSet) Add(c Card) CardSet {
	return s | 1<<uint(c.index())
}

// Contains reports whether c is in the set.
func (s CardSet) Contains(c Card) bool {
	return s&(1<<uint(c.index())) != 0
}

// Count returns the number of cards in the set.
func (s CardSet) Count() int {
	return bits.OnesCount64(uint64(s))
}
