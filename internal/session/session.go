// Package session serializes access to a game.Engine.
//
// A Session owns its engine on a single goroutine. Human actions, table
// changes and opponent decisions all arrive as commands on one channel, so
// the engine never sees concurrent calls. Opponent policies run off the
// loop after an optional think delay; their decisions carry a turn token
// and are dropped if the table moved on while they were thinking.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
)

// ErrClosed is returned by commands sent after the session stopped.
var ErrClosed = errors.New("session closed")

// Config controls session timing.
type Config struct {
	// ThinkDelay is how long opponent policies wait before acting.
	ThinkDelay time.Duration
	// ActTimeout folds a seat that has not acted in time. Zero disables it.
	ActTimeout time.Duration
	// AutoStart deals the next hand automatically after HandPause.
	AutoStart bool
	HandPause time.Duration
}

// DefaultConfig returns the timings used by the interactive client.
func DefaultConfig() Config {
	return Config{
		ThinkDelay: 800 * time.Millisecond,
		ActTimeout: 0,
		AutoStart:  true,
		HandPause:  3 * time.Second,
	}
}

// turn identifies one decision point. It changes with every applied action
// so a late decision can never land on a later turn.
type turn struct {
	handID string
	seq    int
	seat   int
}

func (t turn) String() string { return fmt.Sprintf("%s/%d/%d", t.handID, t.seq, t.seat) }

// Stats counts what the session did on its own.
type Stats struct {
	Decisions int // policy decisions applied
	Dropped   int // decisions that arrived after their turn had passed
	Timeouts  int // seats folded by the act timeout
}

type command struct {
	name  string
	fn    func() error
	reply chan error
	query bool
}

// Session runs one table.
type Session struct {
	engine   *game.Engine
	policies map[int]policy.Policy
	clock    quartz.Clock
	logger   zerolog.Logger
	cfg      Config

	cmds    chan command
	updates chan game.PublicState
	done    chan struct{}

	// decideMu serializes policy calls; policies keep their own RNG state.
	decideMu sync.Mutex

	// Owned by the loop goroutine.
	group     *errgroup.Group
	scheduled turn
	stats     Stats
	timers    []*quartz.Timer
	startTmr  *quartz.Timer
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for think delays and timeouts.
func WithClock(c quartz.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger.With().Str("component", "session").Logger() }
}

// WithConfig sets the session timings.
func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithPolicy lets p play the given seat. Seats without a policy wait for
// Submit.
func WithPolicy(seat int, p policy.Policy) Option {
	return func(s *Session) { s.policies[seat] = p }
}

// New creates a session around engine. Call Run to start it.
func New(engine *game.Engine, opts ...Option) *Session {
	s := &Session{
		engine:   engine,
		policies: make(map[int]policy.Policy),
		clock:    quartz.NewReal(),
		logger:   zerolog.Nop(),
		cfg:      DefaultConfig(),
		cmds:     make(chan command),
		updates:  make(chan game.PublicState, 32),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Updates delivers the public state after every change. When the reader
// falls behind the oldest pending update is dropped.
func (s *Session) Updates() <-chan game.PublicState { return s.updates }

// Run processes commands until ctx is cancelled. It returns after every
// in-flight decision has finished.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	s.group = g
	g.Go(func() error {
		defer close(s.done)
		defer s.stopTimers()
		s.changed()
		for {
			select {
			case <-ctx.Done():
				return nil
			case cmd := <-s.cmds:
				err := cmd.fn()
				if err != nil {
					s.logger.Debug().Err(err).Str("command", cmd.name).Msg("Command rejected")
				}
				if !cmd.query {
					s.changed()
				}
				if cmd.reply != nil {
					cmd.reply <- err
				}
			}
		}
	})
	return g.Wait()
}

// do runs fn on the loop goroutine and waits for its result.
func (s *Session) do(ctx context.Context, name string, fn func() error) error {
	return s.send(ctx, command{name: name, fn: fn})
}

// query is do for commands that leave the table unchanged.
func (s *Session) query(ctx context.Context, name string, fn func() error) error {
	return s.send(ctx, command{name: name, fn: fn, query: true})
}

func (s *Session) send(ctx context.Context, cmd command) error {
	reply := make(chan error, 1)
	cmd.reply = reply
	select {
	case s.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue sends fn to the loop without waiting for a result. It is used
// from timer callbacks and decision goroutines.
func (s *Session) enqueue(name string, fn func() error) {
	select {
	case s.cmds <- command{name: name, fn: fn}:
	case <-s.done:
	}
}

// StartHand deals a new hand.
func (s *Session) StartHand(ctx context.Context) error {
	return s.do(ctx, "start hand", s.engine.StartHand)
}

// Submit applies an action for seat.
func (s *Session) Submit(ctx context.Context, seat int, action game.Action, amount int) error {
	return s.do(ctx, "submit", func() error {
		return s.engine.SubmitAction(seat, action, amount)
	})
}

// Seat adds a player to the table.
func (s *Session) Seat(ctx context.Context, id string, seat, chips int, avatar string) error {
	return s.do(ctx, "seat", func() error {
		return s.engine.SeatPlayer(id, seat, chips, avatar)
	})
}

// Leave removes the player at seat, folding them if they are in a hand.
func (s *Session) Leave(ctx context.Context, seat int) error {
	return s.do(ctx, "leave", func() error {
		delete(s.policies, seat)
		return s.engine.RemovePlayer(seat)
	})
}

// SitOut keeps seat out of future hands.
func (s *Session) SitOut(ctx context.Context, seat int) error {
	return s.do(ctx, "sit out", func() error { return s.engine.SitOut(seat) })
}

// SitIn returns seat to play from the next hand.
func (s *Session) SitIn(ctx context.Context, seat int) error {
	return s.do(ctx, "sit in", func() error { return s.engine.SitIn(seat) })
}

// SetPolicy hands seat to p, or back to Submit when p is nil.
func (s *Session) SetPolicy(ctx context.Context, seat int, p policy.Policy) error {
	return s.do(ctx, "set policy", func() error {
		if p == nil {
			delete(s.policies, seat)
		} else {
			s.policies[seat] = p
		}
		s.scheduled = turn{}
		return nil
	})
}

// State returns the public table state.
func (s *Session) State(ctx context.Context) (game.PublicState, error) {
	var st game.PublicState
	err := s.query(ctx, "state", func() error {
		st = s.engine.PublicState()
		return nil
	})
	return st, err
}

// Stats returns the session counters.
func (s *Session) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.query(ctx, "stats", func() error {
		st = s.stats
		return nil
	})
	return st, err
}

// View returns what the player at seat may see.
func (s *Session) View(ctx context.Context, seat int) (game.TableView, error) {
	var v game.TableView
	err := s.query(ctx, "view", func() error {
		var err error
		v, err = s.engine.ViewFor(seat)
		return err
	})
	return v, err
}

// changed runs on the loop after every command: it publishes the new state
// and schedules whatever the table is waiting for.
func (s *Session) changed() {
	s.publish(s.engine.PublicState())

	switch s.engine.Phase() {
	case game.PhaseBetting:
		s.cancelStart()
		s.scheduleTurn()
	case game.PhaseFinished, game.PhaseWaiting:
		s.stopTurnTimers()
		s.scheduled = turn{}
		s.scheduleStart()
	}
}

func (s *Session) publish(st game.PublicState) {
	for {
		select {
		case s.updates <- st:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func (s *Session) current() turn {
	return turn{handID: s.engine.HandID(), seq: s.engine.HistoryLen(), seat: s.engine.TurnSeat()}
}

func (s *Session) scheduleTurn() {
	tok := s.current()
	if tok == s.scheduled || tok.seat == 0 {
		return
	}
	s.stopTurnTimers()
	s.scheduled = tok
	log := s.logger.With().Str("hand_id", tok.handID).Int("seat", tok.seat).Logger()

	if s.cfg.ActTimeout > 0 {
		s.timers = append(s.timers, s.clock.AfterFunc(s.cfg.ActTimeout, func() {
			s.enqueue("timeout", func() error {
				if s.current() != tok {
					return nil
				}
				log.Info().Dur("timeout", s.cfg.ActTimeout).Msg("Player timed out, folding")
				s.stats.Timeouts++
				return s.engine.FoldPlayer(tok.seat)
			})
		}, "session", "timeout"))
	}

	p, ok := s.policies[tok.seat]
	if !ok {
		return
	}
	view, err := s.engine.ViewFor(tok.seat)
	if err != nil {
		log.Warn().Err(err).Msg("No view for policy seat")
		return
	}
	if s.cfg.ThinkDelay <= 0 {
		s.group.Go(func() error {
			s.decide(tok, p, view)
			return nil
		})
		return
	}
	s.timers = append(s.timers, s.clock.AfterFunc(s.cfg.ThinkDelay, func() {
		s.decide(tok, p, view)
	}, "session", "think"))
}

// decide runs a policy off the loop and queues its decision.
func (s *Session) decide(tok turn, p policy.Policy, view game.TableView) {
	select {
	case <-s.done:
		return
	default:
	}
	s.decideMu.Lock()
	d := policy.Sanitize(view, p.Decide(view))
	s.decideMu.Unlock()

	s.enqueue("decision", func() error {
		if s.current() != tok {
			s.logger.Debug().Stringer("turn", tok).Str("action", d.Action.String()).Msg("Dropping stale decision")
			s.stats.Dropped++
			return nil
		}
		s.logger.Debug().
			Str("hand_id", tok.handID).
			Int("seat", tok.seat).
			Str("action", d.Action.String()).
			Int("amount", d.Amount).
			Str("reasoning", d.Reasoning).
			Msg("Policy decided")
		s.stats.Decisions++
		return s.engine.SubmitAction(tok.seat, d.Action, d.Amount)
	})
}

func (s *Session) scheduleStart() {
	if !s.cfg.AutoStart || s.startTmr != nil || !s.engine.CanStart() {
		return
	}
	last := s.engine.HandID()
	start := func() {
		s.enqueue("auto start", func() error {
			s.startTmr = nil
			if s.engine.HandID() != last || !s.engine.CanStart() {
				return nil
			}
			return s.engine.StartHand()
		})
	}
	s.startTmr = s.clock.AfterFunc(s.cfg.HandPause, start, "session", "start")
}

func (s *Session) cancelStart() {
	if s.startTmr != nil {
		s.startTmr.Stop()
		s.startTmr = nil
	}
}

func (s *Session) stopTurnTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]
}

func (s *Session) stopTimers() {
	s.stopTurnTimers()
	s.cancelStart()
}
