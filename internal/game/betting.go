package game

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	PreFlop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"preflop", "flop", "turn", "river"}

func (s Street) String() string {
	if s < 0 || int(s) >= len(streetNames) {
		return "unknown"
	}
	return streetNames[s]
}

// MarshalText encodes the street by name.
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// boardSize is the number of community cards visible once s has been dealt.
func (s Street) boardSize() int {
	return [...]int{0, 3, 4, 5}[s]
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
	// Forced bets only appear in hand history.
	PostSmallBlind
	PostBigBlind
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise", "allin", "small_blind", "big_blind"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts user input into a player action. Common short forms
// are accepted.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold", "f":
		return Fold, nil
	case "check", "k", "x":
		return Check, nil
	case "call", "c":
		return Call, nil
	case "bet", "b":
		return Bet, nil
	case "raise", "r":
		return Raise, nil
	case "allin", "all-in", "all_in", "a", "shove":
		return AllIn, nil
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, s)
}

// ValidAction is an action a player may take along with the legal range of
// raise-to totals for Bet and Raise. Call and AllIn carry their exact total
// in both Min and Max.
type ValidAction struct {
	Action Action `json:"action"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}

// BettingRound tracks the betting on a single street.
type BettingRound struct {
	Street          Street
	HighestBet      int
	LastRaiseSize   int
	CurrentTurnSeat int // 0 when nobody is to act
	IsFreshStreet   bool

	bigBlind int
	acted    map[int]bool // seats that acted since the last full raise
}

// NewBettingRound starts a street with no bets.
func NewBettingRound(street Street, bigBlind int) *BettingRound {
	return &BettingRound{
		Street:        street,
		IsFreshStreet: true,
		bigBlind:      bigBlind,
		acted:         make(map[int]bool),
	}
}

// HasActed reports whether seat has acted since the street began or the last
// full raise.
func (r *BettingRound) HasActed(seat int) bool {
	return r.acted[seat]
}

// markActed records that seat needs no further action unless the bet is
// raised again. Used for the big blind when it gets no pre-flop option.
func (r *BettingRound) markActed(seat int) {
	r.acted[seat] = true
}

// minRaiseIncrement is the smallest legal raise over HighestBet.
func (r *BettingRound) minRaiseIncrement() int {
	return max(r.LastRaiseSize, r.bigBlind)
}

// MinRaiseTo returns the smallest legal raise-to total.
func (r *BettingRound) MinRaiseTo() int {
	if r.HighestBet == 0 {
		return r.bigBlind
	}
	return r.HighestBet + r.minRaiseIncrement()
}

// ValidActions returns the actions open to p. Only Active players may act.
func (r *BettingRound) ValidActions(p *Player) []ValidAction {
	if p == nil || p.Status != Active {
		return nil
	}
	toCall := r.HighestBet - p.CurrentBet
	allIn := p.CurrentBet + p.Chips

	actions := []ValidAction{{Action: Fold}}
	if toCall <= 0 {
		actions = append(actions, ValidAction{Action: Check})
	}
	if toCall > 0 && p.Chips > toCall {
		actions = append(actions, ValidAction{Action: Call, Min: r.HighestBet, Max: r.HighestBet})
	}
	if r.HighestBet == 0 && p.Chips > 0 {
		actions = append(actions, ValidAction{Action: Bet, Min: min(r.bigBlind, allIn), Max: allIn})
	}
	if r.HighestBet > 0 && p.Chips > toCall+r.LastRaiseSize {
		actions = append(actions, ValidAction{Action: Raise, Min: min(r.MinRaiseTo(), allIn), Max: allIn})
	}
	if p.Chips > 0 {
		actions = append(actions, ValidAction{Action: AllIn, Min: allIn, Max: allIn})
	}
	return actions
}

// Allows reports whether action is currently valid for p.
func (r *BettingRound) Allows(p *Player, action Action) bool {
	for _, va := range r.ValidActions(p) {
		if va.Action == action {
			return true
		}
	}
	return false
}

// Apply validates and applies an action by the player in seat. For Bet and
// Raise, amount is the raise-to total; an amount under the minimum is raised
// to it. Nothing changes unless the action is accepted.
func (r *BettingRound) Apply(t *Table, seat int, action Action, amount int) (ActionRecord, error) {
	p := t.Player(seat)
	if p == nil {
		return ActionRecord{}, invalid("apply "+action.String(), seat, ErrPlayerNotFound)
	}
	if seat != r.CurrentTurnSeat {
		return ActionRecord{}, invalid("apply "+action.String(), seat, ErrNotPlayersTurn)
	}
	if !r.Allows(p, action) {
		return ActionRecord{}, invalid("apply "+action.String(), seat, ErrInvalidAction)
	}

	var target int // player's CurrentBet after the action
	switch action {
	case Fold, Check:
		target = p.CurrentBet
	case Call:
		target = r.HighestBet
	case AllIn:
		target = p.CurrentBet + p.Chips
	case Bet, Raise:
		if amount-p.CurrentBet > p.Chips {
			return ActionRecord{}, invalid("apply "+action.String(), seat,
				fmt.Errorf("%w: raise to %d needs %d, have %d", ErrInsufficientChips, amount, amount-p.CurrentBet, p.Chips))
		}
		target = max(amount, r.MinRaiseTo())
		target = min(target, p.CurrentBet+p.Chips)
	default:
		return ActionRecord{}, invalid("apply "+action.String(), seat, ErrInvalidAction)
	}

	delta := target - p.CurrentBet
	if action == Fold {
		p.Status = Folded
	} else {
		p.commit(delta)
	}

	if target > r.HighestBet {
		raise := target - r.HighestBet
		if raise >= r.minRaiseIncrement() {
			r.LastRaiseSize = raise
			clear(r.acted)
		}
		r.HighestBet = target
	}
	r.acted[seat] = true
	r.IsFreshStreet = false

	return ActionRecord{
		Seat:     seat,
		PlayerID: p.ID,
		Street:   r.Street,
		Action:   action,
		Amount:   delta,
		Total:    p.CurrentBet,
		AllIn:    p.Status == StatusAllIn,
	}, nil
}

// IsComplete reports whether betting on this street is over: every Active
// player has matched HighestBet and, when two or more can still act, each of
// them has acted since the street began or the last full raise.
func (r *BettingRound) IsComplete(t *Table) bool {
	active := 0
	for _, p := range t.Players() {
		if p.Status != Active {
			continue
		}
		if p.CurrentBet != r.HighestBet {
			return false
		}
		active++
	}
	if active < 2 {
		return true
	}
	if r.IsFreshStreet {
		return false
	}
	for _, p := range t.Players() {
		if p.Status == Active && !r.acted[p.Seat] {
			return false
		}
	}
	return true
}

// AdvanceTurn moves the turn to the next Active seat clockwise. When no seat
// can act it clears the turn and returns ErrNoEligiblePlayer.
func (r *BettingRound) AdvanceTurn(t *Table) (int, error) {
	next := t.nextSeat(r.CurrentTurnSeat, isActive)
	if next == 0 {
		r.CurrentTurnSeat = 0
		return 0, ErrNoEligiblePlayer
	}
	r.CurrentTurnSeat = next
	return next, nil
}
