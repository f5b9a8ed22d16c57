package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

type chanSink struct {
	name string
	got  chan Envelope
	err  error
}

func newChanSink(name string, err error) *chanSink {
	return &chanSink{name: name, got: make(chan Envelope, 64), err: err}
}

func (s *chanSink) Name() string { return s.name }

func (s *chanSink) Send(_ context.Context, env Envelope) error {
	s.got <- env
	return s.err
}

func (s *chanSink) Close() error { return nil }

func receive(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
		return Envelope{}
	}
}

func run(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errc)
	})
}

func TestDispatcherFansOut(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	broken := newChanSink("broken", errors.New("listener went away"))
	ok := newChanSink("ok", nil)
	d := NewDispatcher("main", []Sink{broken, ok}, WithClock(clock))
	run(t, d)

	d.Notify(game.HandStarted{HandID: "h1", HandNumber: 1, Dealer: 1})
	d.Notify(game.HandEnded{HandID: "h1", WinnerID: "p2", PotAmount: 30})

	// A failing sink does not stop delivery to the others.
	for _, want := range []game.EventType{game.EventTypeHandStarted, game.EventTypeHandEnded} {
		env := receive(t, ok.got)
		assert.Equal(t, want, env.Type)
		assert.Equal(t, "main", env.Table)
		assert.Equal(t, clock.Now(), env.Time)
		assert.Equal(t, want, receive(t, broken.got).Type)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	t.Parallel()

	sink := newChanSink("ok", nil)
	d := NewDispatcher("main", []Sink{sink}, WithBuffer(2))
	for i := range 5 {
		d.Notify(game.BetPlaced{HandID: "h1", Amount: i})
	}
	assert.EqualValues(t, 3, d.Dropped())

	run(t, d)
	assert.Equal(t, 0, receive(t, sink.got).Event.(game.BetPlaced).Amount)
	assert.Equal(t, 1, receive(t, sink.got).Event.(game.BetPlaced).Amount)
}

func TestEnvelopeJSON(t *testing.T) {
	t.Parallel()

	env := Envelope{
		Type:  game.EventTypeStreetDealt,
		Table: "main",
		Event: game.StreetDealt{
			HandID: "h1",
			Street: game.Flop,
			Cards:  poker.MustParseCards("Ah Kd 7c"),
			Board:  poker.MustParseCards("Ah Kd 7c"),
		},
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded struct {
		Type  string `json:"type"`
		Event struct {
			Street string   `json:"street"`
			Cards  []string `json:"cards"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "street_dealt", decoded.Type)
	assert.Equal(t, "flop", decoded.Event.Street)
	assert.Equal(t, []string{"Ah", "Kd", "7c"}, decoded.Event.Cards)
}

func TestSubject(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "holdem.main.hand_ended", Subject("holdem", "main", game.EventTypeHandEnded))
}

func TestWebSocketSinkRedials(t *testing.T) {
	t.Parallel()

	frames := make(chan map[string]any, 16)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Each connection accepts one frame, then hangs up.
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err == nil {
			frames <- msg
		}
	}))
	defer srv.Close()

	sink := NewWebSocketSink("ws"+strings.TrimPrefix(srv.URL, "http"), zerolog.Nop())
	defer sink.Close()

	ctx := context.Background()
	send := func(handID string) {
		t.Helper()
		env := Envelope{Type: game.EventTypeHandStarted, Table: "main", Event: game.HandStarted{HandID: handID}}
		// The first write after a hang-up may be accepted by the kernel
		// before the peer's close is noticed, so allow a second send.
		require.Eventually(t, func() bool {
			if err := sink.Send(ctx, env); err != nil {
				return false
			}
			select {
			case msg := <-frames:
				return msg["event"].(map[string]any)["hand_id"] == handID
			case <-time.After(200 * time.Millisecond):
				return false
			}
		}, 5*time.Second, 10*time.Millisecond)
	}
	send("h1")
	send("h2")
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf), zerolog.InfoLevel)
	err := sink.Send(context.Background(), Envelope{
		Type:  game.EventTypeBetPlaced,
		Table: "main",
		Event: game.BetPlaced{HandID: "h1", Seat: 3, Action: game.Raise, Amount: 60, Pot: 90},
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "bet_placed", line["type"])
	assert.Equal(t, "raise", line["action"])
	assert.EqualValues(t, 3, line["seat"])
	assert.EqualValues(t, 90, line["pot"])
}

func TestDispatcherAsNotifier(t *testing.T) {
	t.Parallel()

	sink := newChanSink("ok", nil)
	d := NewDispatcher("main", []Sink{sink})
	run(t, d)

	e, err := game.NewEngine(game.Blinds{Small: 5, Big: 10}, game.WithNotifier(d))
	require.NoError(t, err)
	require.NoError(t, e.SeatPlayer("a", 1, 100, ""))
	require.NoError(t, e.SeatPlayer("b", 2, 100, ""))
	require.NoError(t, e.StartHand())
	require.NoError(t, e.SubmitAction(1, game.Fold, 0))

	var types []game.EventType
	for {
		env := receive(t, sink.got)
		types = append(types, env.Type)
		if env.Type == game.EventTypeHandEnded {
			break
		}
	}
	assert.Equal(t, game.EventTypeHandStarted, types[0])
	assert.Contains(t, types, game.EventTypeBetPlaced)
}
