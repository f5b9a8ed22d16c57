package game

import (
	"github.com/lox/holdem/poker"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for outbound notifications
const (
	EventTypeHandStarted EventType = "hand_started"
	EventTypeBetPlaced   EventType = "bet_placed"
	EventTypeStreetDealt EventType = "street_dealt"
	EventTypeHandEnded   EventType = "hand_ended"
	EventTypeHandAborted EventType = "hand_aborted"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is something that happened at the table. Events carry only public
// information.
type Event interface {
	EventType() EventType
}

// SeatSummary describes a player dealt into a hand.
type SeatSummary struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
	Chips    int    `json:"chips"`
}

// HandStarted is published once blinds are posted and cards dealt.
type HandStarted struct {
	HandID     string        `json:"hand_id"`
	HandNumber int           `json:"hand_number"`
	Dealer     int           `json:"dealer"`
	SmallBlind int           `json:"small_blind"`
	BigBlind   int           `json:"big_blind"`
	Blinds     Blinds        `json:"blinds"`
	Players    []SeatSummary `json:"players"`
}

// BetPlaced is published for every applied action, blinds included.
type BetPlaced struct {
	HandID   string `json:"hand_id"`
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
	Street   Street `json:"street"`
	Action   Action `json:"action"`
	Amount   int    `json:"amount"`
	Total    int    `json:"total"`
	Pot      int    `json:"pot"`
}

// StreetDealt is published when community cards are revealed.
type StreetDealt struct {
	HandID string       `json:"hand_id"`
	Street Street       `json:"street"`
	Cards  []poker.Card `json:"cards"`
	Board  []poker.Card `json:"board"`
}

// HandEnded is published when the pot has been awarded.
type HandEnded struct {
	HandID      string  `json:"hand_id"`
	WinnerID    string  `json:"winner_id"`
	PotAmount   int     `json:"pot_amount"`
	Winners     []Award `json:"winners"`
	EndedByFold bool    `json:"ended_by_fold"`
}

// HandAborted is published when an invariant violation cancels a hand and
// every contribution is refunded.
type HandAborted struct {
	HandID string `json:"hand_id"`
	Reason string `json:"reason"`
}

func (HandStarted) EventType() EventType { return EventTypeHandStarted }
func (BetPlaced) EventType() EventType   { return EventTypeBetPlaced }
func (StreetDealt) EventType() EventType { return EventTypeStreetDealt }
func (HandEnded) EventType() EventType   { return EventTypeHandEnded }
func (HandAborted) EventType() EventType { return EventTypeHandAborted }

// Notifier receives events. Implementations must not block and their
// failures are never reported back to the engine.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// NopNotifier discards events.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(Event) {}

// Recorder is a Notifier that keeps every event, for tests and replays.
type Recorder struct {
	Events []Event
}

// Notify appends e.
func (r *Recorder) Notify(e Event) { r.Events = append(r.Events, e) }

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	out := make([]EventType, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.EventType()
	}
	return out
}
