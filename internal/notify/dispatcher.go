// Package notify delivers table events to outside listeners.
//
// The engine publishes events synchronously through game.Notifier. A
// Dispatcher accepts them without blocking, queues them, and fans them out
// to sinks on its own goroutine. Delivery is best effort: a full queue
// drops the event and a failing sink is logged and otherwise ignored, so a
// slow or broken listener can never hold up a hand.
package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdem/internal/game"
)

// Envelope wraps an event with where and when it happened.
type Envelope struct {
	Type  game.EventType `json:"type"`
	Table string         `json:"table"`
	Time  time.Time      `json:"time"`
	Event game.Event     `json:"event"`
}

// Sink is one destination for events.
type Sink interface {
	Name() string
	Send(ctx context.Context, env Envelope) error
	Close() error
}

// Dispatcher queues events and fans them out to sinks.
type Dispatcher struct {
	table       string
	sinks       []Sink
	queue       chan Envelope
	clock       quartz.Clock
	logger      zerolog.Logger
	sendTimeout time.Duration
	dropped     atomic.Int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBuffer sets how many events may wait for delivery.
func WithBuffer(n int) DispatcherOption {
	return func(d *Dispatcher) { d.queue = make(chan Envelope, max(n, 1)) }
}

// WithClock sets the clock used to timestamp events.
func WithClock(c quartz.Clock) DispatcherOption {
	return func(d *Dispatcher) { d.clock = c }
}

// WithSendTimeout bounds each sink delivery.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.sendTimeout = timeout }
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger.With().Str("component", "notify").Logger() }
}

// NewDispatcher creates a dispatcher for table's events.
func NewDispatcher(table string, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		table:       table,
		sinks:       sinks,
		queue:       make(chan Envelope, 256),
		clock:       quartz.NewReal(),
		logger:      zerolog.Nop(),
		sendTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify implements game.Notifier. It never blocks.
func (d *Dispatcher) Notify(e game.Event) {
	env := Envelope{Type: e.EventType(), Table: d.table, Time: d.clock.Now(), Event: e}
	select {
	case d.queue <- env:
	default:
		n := d.dropped.Add(1)
		d.logger.Warn().Str("type", env.Type.String()).Int64("dropped", n).Msg("Event queue full, dropping event")
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Run delivers queued events until ctx is cancelled, then flushes what is
// already queued and closes every sink.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case env := <-d.queue:
			d.deliver(ctx, env)
		case <-ctx.Done():
			d.flush()
			return d.close()
		}
	}
}

func (d *Dispatcher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	for {
		select {
		case env := <-d.queue:
			d.deliver(ctx, env)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, env Envelope) {
	for _, s := range d.sinks {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		err := s.Send(sendCtx, env)
		cancel()
		if err != nil {
			d.logger.Warn().Err(err).Str("sink", s.Name()).Str("type", env.Type.String()).Msg("Event delivery failed")
		}
	}
}

func (d *Dispatcher) close() error {
	var errs []error
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
