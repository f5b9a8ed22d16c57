package game

import (
	rand "math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/lox/holdem/poker"
)

// Rules are the table rules that vary between games.
type Rules struct {
	// BigBlindOption gives the big blind a chance to check or raise when
	// everyone just calls pre-flop. Without it, posting the big blind counts
	// as the big blind's action and a completed call closes the street.
	BigBlindOption bool
}

// DeckSource builds the deck for a new hand.
type DeckSource func(rng *rand.Rand) *poker.Deck

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With().Str("component", "engine").Logger()
	}
}

// WithRNG sets the generator used to shuffle every hand's deck.
func WithRNG(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithNotifier sets the receiver of outbound events.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithDeckSource replaces the shuffled deck, e.g. with a stacked deck in
// tests.
func WithDeckSource(src DeckSource) Option {
	return func(e *Engine) { e.newDeck = src }
}

// WithHandIDs sets the hand ID generator.
func WithHandIDs(next func() string) Option {
	return func(e *Engine) { e.newHandID = next }
}

// WithRules sets the table rules.
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// StackedDecks returns a DeckSource dealing each given deck in turn. Once
// they run out every further hand gets a fresh shuffled deck.
func StackedDecks(decks ...[]poker.Card) DeckSource {
	i := 0
	return func(rng *rand.Rand) *poker.Deck {
		if i < len(decks) {
			d := poker.NewOrderedDeck(decks[i]...)
			i++
			return d
		}
		return poker.NewDeck(rng)
	}
}
