package game

import (
	"slices"

	"github.com/lox/holdem/poker"
)

// GamePhase gates which operations are legal.
type GamePhase int

const (
	PhaseWaiting GamePhase = iota
	PhaseDealing
	PhaseBetting
	PhaseShowdown
	PhaseFinished
)

var phaseNames = [...]string{"waiting", "dealing", "betting", "showdown", "finished"}

func (p GamePhase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ActionRecord is one entry in the hand history.
type ActionRecord struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
	Street   Street `json:"street"`
	Action   Action `json:"action"`
	Amount   int    `json:"amount"` // chips moved by this action
	Total    int    `json:"total"`  // player's street total afterwards
	AllIn    bool   `json:"all_in,omitempty"`
}

// SeatView is the public view of one seat.
type SeatView struct {
	Seat         int          `json:"seat"`
	PlayerID     string       `json:"player_id"`
	Avatar       string       `json:"avatar,omitempty"`
	Chips        int          `json:"chips"`
	CurrentBet   int          `json:"current_bet"`
	TotalBet     int          `json:"total_bet"`
	Status       Status       `json:"status"`
	IsDealer     bool         `json:"is_dealer,omitempty"`
	IsSmallBlind bool         `json:"is_small_blind,omitempty"`
	IsBigBlind   bool         `json:"is_big_blind,omitempty"`
	HasCards     bool         `json:"has_cards"`
	HoleCards    []poker.Card `json:"hole_cards,omitempty"` // only once shown down
}

// PublicState is everything visible to every seat.
type PublicState struct {
	HandID        string         `json:"hand_id,omitempty"`
	HandNumber    int            `json:"hand_number"`
	Phase         GamePhase      `json:"phase"`
	Street        Street         `json:"street"`
	Board         []poker.Card   `json:"board"`
	Pot           int            `json:"pot"`
	Pots          []Pot          `json:"pots,omitempty"`
	HighestBet    int            `json:"highest_bet"`
	LastRaiseSize int            `json:"last_raise_size"`
	TurnSeat      int            `json:"turn_seat,omitempty"`
	DealerSeat    int            `json:"dealer_seat,omitempty"`
	Blinds        Blinds         `json:"blinds"`
	Seats         []SeatView     `json:"seats"`
	History       []ActionRecord `json:"history,omitempty"`
	Result        *HandResult    `json:"result,omitempty"`
}

// Seat returns the view of seat, if occupied.
func (s PublicState) Seat(seat int) (SeatView, bool) {
	for _, v := range s.Seats {
		if v.Seat == seat {
			return v, true
		}
	}
	return SeatView{}, false
}

// PrivateState is what only the player in Seat may see.
type PrivateState struct {
	Seat      int          `json:"seat"`
	PlayerID  string       `json:"player_id"`
	HoleCards []poker.Card `json:"hole_cards"`
}

// TableView is the information a decision maker for Seat is allowed to use.
type TableView struct {
	PublicState
	Seat         int           `json:"seat"`
	HoleCards    []poker.Card  `json:"hole_cards"`
	Chips        int           `json:"chips"`
	CurrentBet   int           `json:"current_bet"`
	ToCall       int           `json:"to_call"`
	ValidActions []ValidAction `json:"valid_actions"`
}

// Can reports whether action is among the valid actions.
func (v TableView) Can(action Action) bool {
	_, ok := v.Option(action)
	return ok
}

// Option returns the valid action entry for action.
func (v TableView) Option(action Action) (ValidAction, bool) {
	for _, va := range v.ValidActions {
		if va.Action == action {
			return va, true
		}
	}
	return ValidAction{}, false
}

// ActivePlayers counts seats still contesting the pot, including the viewer.
func (v TableView) ActivePlayers() int {
	n := 0
	for _, s := range v.Seats {
		if s.Status == Active || s.Status == StatusAllIn {
			n++
		}
	}
	return n
}

// Decision is a chosen action. Amount is the raise-to total for Bet and
// Raise and ignored otherwise.
type Decision struct {
	Action    Action `json:"action"`
	Amount    int    `json:"amount,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

func clonePots(pots []Pot) []Pot {
	out := make([]Pot, len(pots))
	for i, p := range pots {
		out[i] = Pot{Amount: p.Amount, Eligible: slices.Clone(p.Eligible)}
	}
	return out
}
