package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

// Subject returns the NATS subject for an event type at table, e.g.
// "holdem.main.hand_started".
func Subject(prefix, table string, t game.EventType) string {
	return fmt.Sprintf("%s.%s.%s", prefix, table, t)
}

// NATSSink publishes each event as JSON on a per-table subject.
type NATSSink struct {
	conn   *nats.Conn
	prefix string
	owned  bool
}

// NewNATSSink publishes on an existing connection, which the caller closes.
func NewNATSSink(conn *nats.Conn, prefix string) *NATSSink {
	return &NATSSink{conn: conn, prefix: prefix}
}

// DialNATS connects to url and returns a sink that owns the connection.
func DialNATS(url, prefix string, logger zerolog.Logger) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("holdem"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Str("url", url).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return &NATSSink{conn: conn, prefix: prefix, owned: true}, nil
}

// Name implements Sink.
func (s *NATSSink) Name() string { return "nats" }

// Send implements Sink.
func (s *NATSSink) Send(_ context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.conn.Publish(Subject(s.prefix, env.Table, env.Type), data)
}

// Close flushes pending messages and closes an owned connection.
func (s *NATSSink) Close() error {
	if !s.owned {
		return nil
	}
	return s.conn.Drain()
}

const writeWait = 5 * time.Second

// WebSocketSink writes each event as a JSON text frame to a websocket
// endpoint. A failed connection is dropped and redialed on the next send.
type WebSocketSink struct {
	url    string
	dialer *websocket.Dialer
	logger zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketSink creates a sink for url. It dials lazily.
func NewWebSocketSink(url string, logger zerolog.Logger) *WebSocketSink {
	return &WebSocketSink{
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger.With().Str("sink", "websocket").Str("url", url).Logger(),
	}
}

// Name implements Sink.
func (s *WebSocketSink) Name() string { return "websocket" }

// Send implements Sink. A write on a stale connection is retried once on
// a fresh one.
func (s *WebSocketSink) Send(ctx context.Context, env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for attempt := range 2 {
		if s.conn == nil {
			if s.conn, _, err = s.dialer.DialContext(ctx, s.url, nil); err != nil {
				s.conn = nil
				return fmt.Errorf("dial %s: %w", s.url, err)
			}
			if attempt > 0 {
				s.logger.Info().Msg("Websocket redialed")
			}
		}
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(writeWait)
		}
		_ = s.conn.SetWriteDeadline(deadline)
		if err = s.conn.WriteJSON(env); err == nil {
			return nil
		}
		_ = s.conn.Close()
		s.conn = nil
	}
	return err
}

// Close sends a close frame and closes the connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := s.conn.Close()
	s.conn = nil
	return err
}

// LogSink writes events to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// NewLogSink logs events at level.
func NewLogSink(logger zerolog.Logger, level zerolog.Level) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "events").Logger(), level: level}
}

// Name implements Sink.
func (s *LogSink) Name() string { return "log" }

// Send implements Sink.
func (s *LogSink) Send(_ context.Context, env Envelope) error {
	ev := s.logger.WithLevel(s.level).Str("table", env.Table).Str("type", env.Type.String())
	switch e := env.Event.(type) {
	case game.HandStarted:
		ev = ev.Str("hand_id", e.HandID).Int("hand_number", e.HandNumber).Int("dealer", e.Dealer).Int("players", len(e.Players))
	case game.BetPlaced:
		ev = ev.Str("hand_id", e.HandID).Int("seat", e.Seat).Str("action", e.Action.String()).Int("amount", e.Amount).Int("pot", e.Pot)
	case game.StreetDealt:
		ev = ev.Str("hand_id", e.HandID).Str("street", e.Street.String()).Str("board", poker.FormatCards(e.Board))
	case game.HandEnded:
		ev = ev.Str("hand_id", e.HandID).Str("winner", e.WinnerID).Int("pot", e.PotAmount).Bool("by_fold", e.EndedByFold)
	case game.HandAborted:
		ev = ev.Str("hand_id", e.HandID).Str("reason", e.Reason)
	}
	ev.Msg("Table event")
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error { return nil }
