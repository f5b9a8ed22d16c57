package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/poker"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// engineTable drives a real engine directly, without a session.
type engineTable struct {
	engine  *game.Engine
	updates chan game.PublicState
}

func newEngineTable(t *testing.T) *engineTable {
	t.Helper()
	// Seat 2 is dealt first: seat 1 gets Kd Qd, seat 2 gets 7c 2h.
	deck := poker.MustParseCards("7c Kd 2h Qd 3s Ad Jd Td 4c 5h 6s 9c")
	e, err := game.NewEngine(game.Blinds{Small: 10, Big: 20},
		game.WithDeckSource(game.StackedDecks(deck)),
		game.WithHandIDs(func() string { return "hand-1" }))
	require.NoError(t, err)
	require.NoError(t, e.SeatPlayer("alice", 1, 1000, ""))
	require.NoError(t, e.SeatPlayer("bob", 2, 1000, ""))
	return &engineTable{engine: e, updates: make(chan game.PublicState, 8)}
}

func (f *engineTable) StartHand(context.Context) error { return f.engine.StartHand() }

func (f *engineTable) Submit(_ context.Context, seat int, action game.Action, amount int) error {
	return f.engine.SubmitAction(seat, action, amount)
}

func (f *engineTable) View(_ context.Context, seat int) (game.TableView, error) {
	return f.engine.ViewFor(seat)
}

func (f *engineTable) Updates() <-chan game.PublicState { return f.updates }

// refresh feeds the engine state to m and resolves any view fetch.
func refresh(t *testing.T, m *Model, f *engineTable) {
	t.Helper()
	if cmd := m.applyState(f.engine.PublicState()); cmd != nil {
		m.Update(cmd())
	}
}

func logText(m *Model) string { return strings.Join(m.Log(), "\n") }

func TestParseCommand(t *testing.T) {
	t.Parallel()

	view := &game.TableView{
		PublicState: game.PublicState{HighestBet: 20},
		ValidActions: []game.ValidAction{
			{Action: game.Fold},
			{Action: game.Call, Min: 20, Max: 20},
			{Action: game.Raise, Min: 40, Max: 1000},
		},
	}
	tests := []struct {
		input string
		view  *game.TableView
		want  Command
		err   bool
	}{
		{"", nil, Command{Kind: CmdContinue}, false},
		{"quit", nil, Command{Kind: CmdQuit}, false},
		{"d", nil, Command{Kind: CmdDeal}, false},
		{"?", nil, Command{Kind: CmdHelp}, false},
		{"f", view, Command{Kind: CmdAction, Action: game.Fold}, false},
		{"CALL", view, Command{Kind: CmdAction, Action: game.Call}, false},
		{"raise 120", view, Command{Kind: CmdAction, Action: game.Raise, Amount: 120}, false},
		{"raise to $120", view, Command{Kind: CmdAction, Action: game.Raise, Amount: 120}, false},
		{"raise by 50", view, Command{Kind: CmdAction, Action: game.Raise, Amount: 70}, false},
		{"r", view, Command{Kind: CmdAction, Action: game.Raise, Amount: 40}, false},
		{"bet 60", nil, Command{Kind: CmdAction, Action: game.Bet, Amount: 60}, false},
		{"allin", view, Command{Kind: CmdAction, Action: game.AllIn}, false},
		{"bet", view, Command{}, true},
		{"raise", nil, Command{}, true},
		{"raise by", view, Command{}, true},
		{"raise lots", view, Command{}, true},
		{"raise 10 20", view, Command{}, true},
		{"call 20", view, Command{}, true},
		{"dance", view, Command{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := parseCommand(tt.input, tt.view)
			if tt.err {
				if err == nil {
					t.Fatalf("parseCommand(%q) = %+v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCommand(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("parseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModelPlaysAHand(t *testing.T) {
	t.Parallel()

	f := newEngineTable(t)
	m := New(context.Background(), f, 1, zerolog.Nop())

	// Enter between hands deals.
	cmd := m.handleInput("")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	refresh(t, m, f)

	require.NotNil(t, m.view, "heads-up dealer acts first")
	assert.Len(t, m.view.HoleCards, 2)
	text := logText(m)
	assert.Contains(t, text, "Hand #1")
	assert.Contains(t, text, "alice (you) posts small blind $10")
	assert.Contains(t, text, "bob posts big blind $20")

	cmd = m.handleInput("raise to 60")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Nil(t, m.view)
	refresh(t, m, f)
	assert.Contains(t, logText(m), "alice (you) raises to $60")

	// Not our turn any more.
	assert.Nil(t, m.handleInput("call"))
	assert.Contains(t, logText(m), "Not your turn")

	require.NoError(t, f.engine.SubmitAction(2, game.Fold, 0))
	refresh(t, m, f)
	text = logText(m)
	assert.Contains(t, text, "bob folds")
	assert.Contains(t, text, "alice (you) wins $80")
	assert.Nil(t, m.view)
}

func TestModelShowdownLog(t *testing.T) {
	t.Parallel()

	f := newEngineTable(t)
	m := New(context.Background(), f, 2, zerolog.Nop())
	require.NoError(t, f.engine.StartHand())
	refresh(t, m, f)
	assert.Nil(t, m.view, "seat 1 acts first")

	require.NoError(t, f.engine.SubmitAction(1, game.Call, 0))
	for f.engine.Phase() == game.PhaseBetting {
		seat := f.engine.TurnSeat()
		require.NoError(t, f.engine.SubmitAction(seat, game.Check, 0))
		refresh(t, m, f)
	}
	refresh(t, m, f)

	text := logText(m)
	assert.Contains(t, text, "*** FLOP *** [A♦ J♦ T♦]")
	assert.Contains(t, text, "*** RIVER ***")
	assert.Contains(t, text, "alice shows [K♦ Q♦]")
	assert.Contains(t, text, "alice wins $40 with Royal Flush")
}

func TestModelErrorsAreLogged(t *testing.T) {
	t.Parallel()

	f := newEngineTable(t)
	m := New(context.Background(), f, 1, zerolog.Nop())

	m.handleInput("dance")
	assert.Contains(t, logText(m), `unknown command "dance"`)

	// Submitting out of turn goes through the engine and comes back as a message.
	m.Update(m.submit(Command{Kind: CmdAction, Action: game.Check})())
	assert.Contains(t, logText(m), "not allowed in current phase")
}

func TestModelView(t *testing.T) {
	t.Parallel()

	f := newEngineTable(t)
	m := New(context.Background(), f, 1, zerolog.Nop())
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	require.NoError(t, f.engine.StartHand())
	refresh(t, m, f)

	out := m.View()
	assert.Contains(t, out, "Pot: $30")
	assert.Contains(t, out, "Actions:")
	assert.Contains(t, out, "[call $10]")
	assert.Contains(t, out, "alice (you)")
}

func TestModelQuits(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), newEngineTable(t), 1, zerolog.Nop())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.actionInput.SetValue("quit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
