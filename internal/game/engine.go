package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/rs/zerolog"

	"github.com/lox/holdem/internal/handid"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// Engine runs hands at one table. It owns all game state: callers change it
// only through the methods below and read it through copies.
//
// Engine is synchronous and not safe for concurrent use; wrap it in a
// session.Session when decisions arrive from several goroutines.
type Engine struct {
	table    *Table
	rules    Rules
	logger   zerolog.Logger
	rng      *rand.Rand
	notifier Notifier

	newDeck   DeckSource
	newHandID func() string

	phase      GamePhase
	handNumber int
	hand       *hand
	result     *HandResult
}

// hand is the state that lives for a single hand.
type hand struct {
	id      string
	deck    *poker.Deck
	board   []poker.Card
	round   *BettingRound
	ledger  *PotLedger
	dealt   map[int]*Player // everyone dealt in, even if they later leave
	history []ActionRecord
}

// NewEngine creates an engine for a table with the given blinds.
func NewEngine(blinds Blinds, opts ...Option) (*Engine, error) {
	if err := blinds.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		table:    NewTable(blinds),
		logger:   zerolog.Nop(),
		notifier: NopNotifier{},
		newDeck:  poker.NewDeck,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = randutil.New(randutil.Seed(0))
	}
	if e.newHandID == nil {
		e.newHandID = handid.Generate
	}
	return e, nil
}

// Phase returns the current phase.
func (e *Engine) Phase() GamePhase { return e.phase }

// Rules returns the table rules.
func (e *Engine) Rules() Rules { return e.rules }

// Blinds returns the table blinds.
func (e *Engine) Blinds() Blinds { return e.table.Blinds() }

// HandID returns the current or last hand's ID.
func (e *Engine) HandID() string {
	if e.hand == nil {
		return ""
	}
	return e.hand.id
}

// Result returns the outcome of the last finished hand, or nil.
func (e *Engine) Result() *HandResult { return e.result }

// TurnSeat returns the seat to act, or 0.
func (e *Engine) TurnSeat() int {
	if e.phase != PhaseBetting || e.hand == nil {
		return 0
	}
	return e.hand.round.CurrentTurnSeat
}

// HistoryLen returns the number of actions applied in the current hand.
func (e *Engine) HistoryLen() int {
	if e.hand == nil {
		return 0
	}
	return len(e.hand.history)
}

// CanStart reports whether enough players have chips to deal a hand.
func (e *Engine) CanStart() bool {
	return e.phase != PhaseBetting && e.table.Count(eligibleForHand) >= 2
}

func (e *Engine) inProgress() bool {
	return e.phase == PhaseDealing || e.phase == PhaseBetting || e.phase == PhaseShowdown
}

// SeatPlayer seats a new player. A player seated during a hand waits for the
// next one.
func (e *Engine) SeatPlayer(id string, seat, chips int, avatar string) error {
	if id == "" {
		return invalid("seat player", seat, ErrInvalidPlayer)
	}
	if chips < 0 {
		return invalid("seat player", seat, fmt.Errorf("%w: negative stack %d", ErrInvalidAmount, chips))
	}
	p := &Player{ID: id, Avatar: avatar, Chips: chips}
	if e.inProgress() {
		p.Status = SittingOut
	}
	if err := e.table.Seat(p, seat); err != nil {
		return err
	}
	e.logger.Info().Str("player", id).Int("seat", seat).Int("chips", chips).Msg("Player seated")
	return nil
}

// SitOut keeps a player out of hands from the next one on.
func (e *Engine) SitOut(seat int) error { return e.table.SitOut(seat) }

// SitIn returns a player to the game from the next hand.
func (e *Engine) SitIn(seat int) error { return e.table.SitIn(seat) }

// StartHand rotates the button, posts blinds and deals a new hand.
func (e *Engine) StartHand() error {
	if e.inProgress() {
		return invalid("start hand", 0, ErrHandInProgress)
	}
	if err := e.table.AssignRolesForNewHand(); err != nil {
		if errors.Is(err, ErrDealerNotFound) {
			return &StateError{Op: "assign roles", Err: err}
		}
		return err
	}

	e.handNumber++
	e.result = nil
	e.phase = PhaseDealing
	h := &hand{
		id:     e.newHandID(),
		deck:   e.newDeck(e.rng),
		ledger: NewPotLedger(),
		dealt:  make(map[int]*Player),
	}
	e.hand = h

	started := HandStarted{
		HandID:     h.id,
		HandNumber: e.handNumber,
		Dealer:     e.table.DealerSeat(),
		SmallBlind: e.table.SmallBlindSeat(),
		BigBlind:   e.table.BigBlindSeat(),
		Blinds:     e.table.Blinds(),
	}
	for _, p := range e.table.Players() {
		if p.Status != Active {
			continue
		}
		h.dealt[p.Seat] = p
		h.ledger.Join(p.Seat, p.ID)
		started.Players = append(started.Players, SeatSummary{Seat: p.Seat, PlayerID: p.ID, Chips: p.Chips})
	}

	sb, bb := e.table.CollectBlinds()
	h.ledger.Add(e.table.SmallBlindSeat(), sb)
	h.ledger.Add(e.table.BigBlindSeat(), bb)

	for range 2 {
		for _, seat := range e.dealOrder() {
			c, err := h.deck.Draw()
			if err != nil {
				return e.abort("deal hole cards", err)
			}
			p := h.dealt[seat]
			p.HoleCards = append(p.HoleCards, c)
		}
	}

	round := NewBettingRound(PreFlop, e.table.Blinds().Big)
	round.HighestBet = max(sb, bb)
	round.LastRaiseSize = e.table.Blinds().Big
	if !e.rules.BigBlindOption {
		round.markActed(e.table.BigBlindSeat())
	}
	round.CurrentTurnSeat = e.table.nextSeat(e.table.BigBlindSeat(), isActive)
	h.round = round
	e.phase = PhaseBetting

	e.logger.Info().
		Str("hand_id", h.id).
		Int("hand", e.handNumber).
		Int("dealer", started.Dealer).
		Int("players", len(started.Players)).
		Msg("Hand started")
	e.notifier.Notify(started)
	e.record(e.forced(e.table.SmallBlindSeat(), PostSmallBlind, sb))
	e.record(e.forced(e.table.BigBlindSeat(), PostBigBlind, bb))

	return e.settle(false)
}

func (e *Engine) forced(seat int, action Action, amount int) ActionRecord {
	p := e.table.Player(seat)
	return ActionRecord{
		Seat:     seat,
		PlayerID: p.ID,
		Street:   PreFlop,
		Action:   action,
		Amount:   amount,
		Total:    p.CurrentBet,
		AllIn:    p.Status == StatusAllIn,
	}
}

// dealOrder lists the seats in the hand clockwise from the dealer's left.
func (e *Engine) dealOrder() []int {
	seats := make([]int, 0, len(e.hand.dealt))
	for seat := range e.hand.dealt {
		seats = append(seats, seat)
	}
	dealer := e.table.DealerSeat()
	slices.SortFunc(seats, func(a, b int) int {
		return clockwiseFrom(dealer, a) - clockwiseFrom(dealer, b)
	})
	return seats
}

// ValidActions returns the actions open to seat. It is empty unless it is
// that seat's turn.
func (e *Engine) ValidActions(seat int) []ValidAction {
	if e.phase != PhaseBetting || e.hand.round.CurrentTurnSeat != seat {
		return nil
	}
	return e.hand.round.ValidActions(e.table.Player(seat))
}

// SubmitAction applies an action for the seat to act. For Bet and Raise,
// amount is the raise-to total. Rejected actions return a ValidationError
// and change nothing.
func (e *Engine) SubmitAction(seat int, action Action, amount int) error {
	if e.phase != PhaseBetting {
		return invalid("submit "+action.String(), seat, ErrWrongPhase)
	}
	rec, err := e.hand.round.Apply(e.table, seat, action, amount)
	if err != nil {
		return err
	}
	e.hand.ledger.Add(seat, rec.Amount)
	if action == Fold {
		e.hand.ledger.Fold(seat)
	}
	e.record(rec)
	return e.settle(true)
}

func (e *Engine) record(rec ActionRecord) {
	e.hand.history = append(e.hand.history, rec)
	e.logger.Debug().
		Str("hand_id", e.hand.id).
		Int("seat", rec.Seat).
		Str("street", rec.Street.String()).
		Str("action", rec.Action.String()).
		Int("amount", rec.Amount).
		Msg("Action applied")
	e.notifier.Notify(BetPlaced{
		HandID:   e.hand.id,
		Seat:     rec.Seat,
		PlayerID: rec.PlayerID,
		Street:   rec.Street,
		Action:   rec.Action,
		Amount:   rec.Amount,
		Total:    rec.Total,
		Pot:      e.hand.ledger.Total(),
	})
}

// FoldPlayer folds a player out of turn, e.g. when they disconnect or time
// out. The hand then continues as if they had folded in turn.
func (e *Engine) FoldPlayer(seat int) error {
	if e.phase != PhaseBetting {
		return invalid("fold player", seat, ErrWrongPhase)
	}
	p := e.table.Player(seat)
	if p == nil {
		return invalid("fold player", seat, ErrPlayerNotFound)
	}
	if !p.InHand() {
		return invalid("fold player", seat, ErrInvalidAction)
	}
	wasTurn := e.hand.round.CurrentTurnSeat == seat
	e.forceFold(p)
	return e.settle(wasTurn)
}

func (e *Engine) forceFold(p *Player) {
	p.Status = Folded
	e.hand.ledger.Fold(p.Seat)
	e.record(ActionRecord{
		Seat:     p.Seat,
		PlayerID: p.ID,
		Street:   e.hand.round.Street,
		Action:   Fold,
		Total:    p.CurrentBet,
	})
}

// RemovePlayer takes a player off the table. A player still in the hand is
// folded first and their chips stay in the pot.
func (e *Engine) RemovePlayer(seat int) error {
	p := e.table.Player(seat)
	if p == nil {
		return invalid("remove player", seat, ErrPlayerNotFound)
	}
	if e.phase != PhaseBetting || !p.InHand() {
		_, err := e.table.Leave(seat)
		if err == nil {
			e.logger.Info().Str("player", p.ID).Int("seat", seat).Msg("Player left")
		}
		return err
	}

	wasTurn := e.hand.round.CurrentTurnSeat == seat
	e.forceFold(p)
	if _, err := e.table.Leave(seat); err != nil {
		return err
	}
	e.logger.Info().Str("player", p.ID).Int("seat", seat).Str("hand_id", e.hand.id).Msg("Player left mid-hand")
	return e.settle(wasTurn)
}

// settle moves the hand forward until someone has to act or it ends.
func (e *Engine) settle(moveTurn bool) error {
	h := e.hand
	for {
		if e.table.Count((*Player).InHand) < 2 {
			return e.finishByFold()
		}
		if !h.round.IsComplete(e.table) {
			if !moveTurn {
				return nil
			}
			if _, err := h.round.AdvanceTurn(e.table); err == nil {
				return nil
			}
		}
		moveTurn = false
		if err := e.endStreet(); err != nil {
			return e.abort("deal "+(h.round.Street+1).String(), err)
		}
		if e.phase != PhaseBetting {
			return nil
		}
	}
}

// endStreet collects the bets and deals the next street, or goes to
// showdown after the river.
func (e *Engine) endStreet() error {
	h := e.hand
	h.ledger.Collect()
	for _, p := range e.table.Players() {
		p.CurrentBet = 0
	}
	if h.round.Street == River {
		e.showdown()
		return nil
	}

	next := h.round.Street + 1
	if err := h.deck.Burn(); err != nil {
		return err
	}
	cards, err := h.deck.DrawN(next.boardSize() - len(h.board))
	if err != nil {
		return err
	}
	h.board = append(h.board, cards...)

	round := NewBettingRound(next, e.table.Blinds().Big)
	round.CurrentTurnSeat = e.table.nextSeat(e.table.DealerSeat(), isActive)
	h.round = round

	e.logger.Debug().Str("hand_id", h.id).Str("street", next.String()).Str("board", poker.FormatCards(h.board)).Msg("Street dealt")
	e.notifier.Notify(StreetDealt{
		HandID: h.id,
		Street: next,
		Cards:  slices.Clone(cards),
		Board:  slices.Clone(h.board),
	})
	return nil
}

// finishByFold awards everything to the last player holding cards.
func (e *Engine) finishByFold() error {
	h := e.hand
	var winner *Player
	for _, p := range e.table.Players() {
		if p.InHand() {
			winner = p
			break
		}
	}
	if winner == nil {
		return e.abort("award pot", ErrNoEligiblePlayer)
	}

	h.ledger.Collect()
	for _, p := range e.table.Players() {
		p.CurrentBet = 0
	}
	amount := h.ledger.Total()
	winner.Chips += amount
	e.finish(&HandResult{
		Winners: []Award{{Seat: winner.Seat, PlayerID: winner.ID, Amount: amount}},
		Pots: []PotResult{{
			Amount:   amount,
			Eligible: []int{winner.Seat},
			Winners:  []int{winner.Seat},
		}},
		Board:       slices.Clone(h.board),
		PotAmount:   amount,
		EndedByFold: true,
	})
	return nil
}

func (e *Engine) showdown() {
	e.phase = PhaseShowdown
	h := e.hand
	result := ResolveShowdown(e.table.Players(), h.board, h.ledger.Pots(), e.table.DealerSeat())
	e.finish(result)
}

func (e *Engine) finish(result *HandResult) {
	h := e.hand
	result.HandID = h.id
	h.round.CurrentTurnSeat = 0
	e.result = result
	e.phase = PhaseFinished

	var winnerID string
	if len(result.Winners) > 0 {
		winnerID = result.Winners[0].PlayerID
	}
	e.logger.Info().
		Str("hand_id", h.id).
		Str("winner", winnerID).
		Int("pot", result.PotAmount).
		Bool("fold", result.EndedByFold).
		Msg("Hand complete")
	e.notifier.Notify(HandEnded{
		HandID:      h.id,
		WinnerID:    winnerID,
		PotAmount:   result.PotAmount,
		Winners:     slices.Clone(result.Winners),
		EndedByFold: result.EndedByFold,
	})
}

// abort cancels the hand after an invariant violation. Every contribution
// goes back to the player who made it and the table returns to Waiting.
func (e *Engine) abort(op string, cause error) error {
	h := e.hand
	for seat, p := range h.dealt {
		p.Chips += h.ledger.Contributed(seat)
		p.CurrentBet = 0
		p.TotalBet = 0
		p.HoleCards = nil
		if p.Status != SittingOut {
			p.Status = Active
		}
	}
	e.hand = nil
	e.phase = PhaseWaiting

	e.logger.Error().Err(cause).Str("hand_id", h.id).Str("op", op).Msg("Hand aborted")
	e.notifier.Notify(HandAborted{HandID: h.id, Reason: cause.Error()})
	return &StateError{Op: op, HandID: h.id, Err: cause}
}

// PublicState returns what every seat can see.
func (e *Engine) PublicState() PublicState {
	s := PublicState{
		HandNumber: e.handNumber,
		Phase:      e.phase,
		DealerSeat: e.table.DealerSeat(),
		Blinds:     e.table.Blinds(),
		Result:     e.result,
	}
	var shown map[int][]poker.Card
	if e.result != nil {
		shown = e.result.Shown
	}
	if h := e.hand; h != nil {
		s.HandID = h.id
		s.Street = h.round.Street
		s.Board = slices.Clone(h.board)
		if e.phase == PhaseBetting {
			// Once settled the chips are back in the stacks.
			s.Pot = h.ledger.Total()
			s.Pots = clonePots(h.ledger.Pots())
		}
		s.HighestBet = h.round.HighestBet
		s.LastRaiseSize = h.round.LastRaiseSize
		s.TurnSeat = e.TurnSeat()
		s.History = slices.Clone(h.history)
	}
	for _, p := range e.table.Players() {
		v := SeatView{
			Seat:         p.Seat,
			PlayerID:     p.ID,
			Avatar:       p.Avatar,
			Chips:        p.Chips,
			CurrentBet:   p.CurrentBet,
			TotalBet:     p.TotalBet,
			Status:       p.Status,
			IsDealer:     p.IsDealer,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
			HasCards:     len(p.HoleCards) > 0,
		}
		if cards, ok := shown[p.Seat]; ok {
			v.HoleCards = slices.Clone(cards)
		}
		s.Seats = append(s.Seats, v)
	}
	return s
}

// PrivateState returns the hole cards of the player in seat.
func (e *Engine) PrivateState(seat int) (PrivateState, error) {
	p, err := e.table.lookup("private state", seat)
	if err != nil {
		return PrivateState{}, err
	}
	return PrivateState{Seat: seat, PlayerID: p.ID, HoleCards: slices.Clone(p.HoleCards)}, nil
}

// ViewFor builds the decision view for seat: public state plus that seat's
// own cards and options, and nothing about anyone else's cards.
func (e *Engine) ViewFor(seat int) (TableView, error) {
	p, err := e.table.lookup("view", seat)
	if err != nil {
		return TableView{}, err
	}
	v := TableView{
		PublicState:  e.PublicState(),
		Seat:         seat,
		HoleCards:    slices.Clone(p.HoleCards),
		Chips:        p.Chips,
		CurrentBet:   p.CurrentBet,
		ValidActions: e.ValidActions(seat),
	}
	if e.phase == PhaseBetting {
		v.ToCall = max(0, e.hand.round.HighestBet-p.CurrentBet)
	}
	return v, nil
}

// Snapshot returns the public state with every dealt hand face up. It is
// for logs, replays and tests and must never reach a decision maker.
func (e *Engine) Snapshot() PublicState {
	s := e.PublicState()
	for i := range s.Seats {
		if p := e.table.Player(s.Seats[i].Seat); p != nil && len(p.HoleCards) > 0 {
			s.Seats[i].HoleCards = slices.Clone(p.HoleCards)
		}
	}
	return s
}

// Board returns the community cards dealt so far.
func (e *Engine) Board() []poker.Card {
	if e.hand == nil {
		return nil
	}
	return slices.Clone(e.hand.board)
}

// Chips returns the stack of the player in seat.
func (e *Engine) Chips(seat int) int {
	if p := e.table.Player(seat); p != nil {
		return p.Chips
	}
	return 0
}

// TotalChips returns all chips at the table, including those in the pot.
func (e *Engine) TotalChips() int {
	total := 0
	for _, p := range e.table.Players() {
		total += p.Chips
	}
	if e.hand != nil && e.phase == PhaseBetting {
		total += e.hand.ledger.Total()
	}
	return total
}
