// Package tui is a terminal client for one seat at a session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/lox/holdem/internal/game"
)

// Table is the part of a session the client drives.
type Table interface {
	StartHand(ctx context.Context) error
	Submit(ctx context.Context, seat int, action game.Action, amount int) error
	View(ctx context.Context, seat int) (game.TableView, error)
	Updates() <-chan game.PublicState
}

type (
	stateMsg  game.PublicState
	viewMsg   game.TableView
	errMsg    struct{ err error }
	closedMsg struct{}
)

// seen marks how much of the current hand is already in the log.
type seen struct {
	handID  string
	history int
	board   int
	result  bool
}

// Model is the Bubble Tea model for the poker client
type Model struct {
	table  Table
	seat   int
	ctx    context.Context
	logger zerolog.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	state       game.PublicState
	view        *game.TableView // set while it is our turn
	gameLog     []string
	seen        seen
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// New creates a client for seat.
func New(ctx context.Context, table Table, seat int, logger zerolog.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		table:       table,
		seat:        seat,
		ctx:         ctx,
		logger:      logger.With().Str("component", "tui").Int("seat", seat).Logger(),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
}

// Run shows the client until the player quits or ctx is cancelled.
func Run(ctx context.Context, table Table, seat int, logger zerolog.Logger) error {
	p := tea.NewProgram(New(ctx, table, seat, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts listening for table updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-m.table.Updates():
			return stateMsg(st)
		case <-m.ctx.Done():
			return closedMsg{}
		}
	}
}

func (m *Model) fetchView() tea.Cmd {
	return func() tea.Msg {
		v, err := m.table.View(m.ctx, m.seat)
		if err != nil {
			return errMsg{err}
		}
		return viewMsg(v)
	}
}

func (m *Model) submit(cmd Command) tea.Cmd {
	return func() tea.Msg {
		if err := m.table.Submit(m.ctx, m.seat, cmd.Action, cmd.Amount); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *Model) deal() tea.Cmd {
	return func() tea.Msg {
		if err := m.table.StartHand(m.ctx); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case stateMsg:
		cmds = append(cmds, m.applyState(game.PublicState(msg)), m.waitForUpdate())

	case viewMsg:
		v := game.TableView(msg)
		if m.myTurn() && v.HandID == m.state.HandID {
			m.view = &v
		}

	case errMsg:
		m.addLog(ErrorStyle.Render(msg.err.Error()))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				cmd := m.handleInput(m.actionInput.Value())
				m.actionInput.SetValue("")
				if m.quitting {
					return m, cmd
				}
				cmds = append(cmds, cmd)
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) myTurn() bool {
	return m.state.Phase == game.PhaseBetting && m.state.TurnSeat == m.seat
}

// handleInput runs one line typed by the player.
func (m *Model) handleInput(input string) tea.Cmd {
	cmd, err := parseCommand(input, m.view)
	if err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
		return nil
	}
	switch cmd.Kind {
	case CmdQuit:
		m.quitting = true
		return tea.Quit
	case CmdHelp:
		m.addLog(InfoStyle.Render(helpText))
	case CmdDeal:
		return m.deal()
	case CmdContinue:
		if m.state.Phase != game.PhaseBetting {
			return m.deal()
		}
	case CmdAction:
		if !m.myTurn() || m.view == nil {
			m.addLog(WarningStyle.Render("Not your turn"))
			return nil
		}
		m.view = nil
		m.logger.Debug().Str("action", cmd.Action.String()).Int("amount", cmd.Amount).Msg("Submitting action")
		return m.submit(cmd)
	}
	return nil
}

// applyState logs what changed since the last update.
func (m *Model) applyState(st game.PublicState) tea.Cmd {
	m.state = st
	if st.HandID == "" {
		m.view = nil
		return nil
	}
	if st.HandID != m.seen.handID {
		m.seen = seen{handID: st.HandID}
		m.addLog("")
		m.addLog(HeaderStyle.Render(fmt.Sprintf(" Hand #%d ", st.HandNumber)) + " " + InfoStyle.Render(st.HandID))
	}

	history := st.History
	if m.seen.history > len(history) {
		m.seen.history = len(history)
	}
	for _, rec := range history[m.seen.history:] {
		m.addLog(m.describe(rec))
	}
	m.seen.history = len(history)

	if len(st.Board) > m.seen.board {
		m.addLog(HandInfoStyle.Render(fmt.Sprintf("*** %s ***", boardName(len(st.Board)))) + " " + renderCards(st.Board))
		m.seen.board = len(st.Board)
	}

	if r := st.Result; r != nil && r.HandID == st.HandID && !m.seen.result {
		m.seen.result = true
		m.logResult(st, r)
	}

	if m.myTurn() {
		return m.fetchView()
	}
	m.view = nil
	return nil
}

func boardName(n int) string {
	switch n {
	case 3:
		return "FLOP"
	case 4:
		return "TURN"
	default:
		return "RIVER"
	}
}

func (m *Model) name(seat int, id string) string {
	if seat == m.seat {
		return id + " (you)"
	}
	return id
}

// describe renders one history entry.
func (m *Model) describe(rec game.ActionRecord) string {
	who := m.name(rec.Seat, rec.PlayerID)
	var line string
	switch rec.Action {
	case game.PostSmallBlind:
		line = fmt.Sprintf("%s posts small blind $%d", who, rec.Amount)
	case game.PostBigBlind:
		line = fmt.Sprintf("%s posts big blind $%d", who, rec.Amount)
	case game.Fold:
		line = fmt.Sprintf("%s folds", who)
	case game.Check:
		line = fmt.Sprintf("%s checks", who)
	case game.Call:
		line = fmt.Sprintf("%s calls $%d", who, rec.Amount)
	case game.Bet:
		line = fmt.Sprintf("%s bets $%d", who, rec.Total)
	case game.Raise:
		line = fmt.Sprintf("%s raises to $%d", who, rec.Total)
	case game.AllIn:
		line = fmt.Sprintf("%s is all-in for $%d", who, rec.Total)
	default:
		line = fmt.Sprintf("%s %s", who, rec.Action)
	}
	if rec.AllIn && rec.Action != game.AllIn {
		line += " and is all-in"
	}
	return line
}

func (m *Model) logResult(st game.PublicState, r *game.HandResult) {
	for _, seat := range st.Seats {
		if cards, ok := r.Shown[seat.Seat]; ok {
			m.addLog(fmt.Sprintf("%s shows %s", m.name(seat.Seat, seat.PlayerID), renderCards(cards)))
		}
	}
	for _, w := range r.Winners {
		line := fmt.Sprintf("%s wins $%d", m.name(w.Seat, w.PlayerID), w.Amount)
		if w.Description != "" && !r.EndedByFold {
			line += " with " + w.Description
		}
		m.addLog(SuccessStyle.Render(line))
	}
	m.addLog(InfoStyle.Render("Press enter to deal the next hand"))
}

// addLog adds an entry to the game log and scrolls to it.
func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the log entries so far.
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the pot, board and seats.
func (m *Model) renderSidebarPane() string {
	var b strings.Builder
	st := m.state

	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", st.Pot)))
	if st.HighestBet > 0 {
		b.WriteString(" | ")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", st.HighestBet)))
	}
	b.WriteString("\n")
	if len(st.Board) > 0 {
		b.WriteString("Board: " + renderCards(st.Board) + "\n")
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Blinds %d/%d", st.Blinds.Small, st.Blinds.Big)))
	b.WriteString("\n\n")

	for _, s := range st.Seats {
		marker := "  "
		if s.Seat == st.TurnSeat {
			marker = "> "
		}
		role := ""
		if s.IsDealer {
			role = " (D)"
		}
		line := fmt.Sprintf("%s%d %s%s $%d", marker, s.Seat, m.name(s.Seat, s.PlayerID), role, s.Chips)
		if s.CurrentBet > 0 {
			line += fmt.Sprintf(" [%d]", s.CurrentBet)
		}
		switch s.Status {
		case game.Folded, game.SittingOut:
			line = InfoStyle.Render(line + " " + s.Status.String())
		case game.StatusAllIn:
			line = WarningStyle.Render(line + " all-in")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// renderActionPane renders the hand, the valid actions and the input.
func (m *Model) renderActionPane() string {
	var b strings.Builder

	if v := m.view; v != nil {
		info := fmt.Sprintf("Hand: %s  Pot: $%d", renderCards(v.HoleCards), v.Pot)
		if v.ToCall > 0 {
			info += fmt.Sprintf("  To call: $%d", v.ToCall)
		}
		b.WriteString(HandInfoStyle.Render(info) + "\n")
		b.WriteString(renderValidActions(v.ValidActions, v.ToCall) + "\n")
		m.actionInput.Placeholder = "fold, check, call, bet 60, raise 120, raise by 40, all-in"
	} else {
		status := "Waiting..."
		if m.state.Phase != game.PhaseBetting {
			status = "Between hands"
		}
		b.WriteString(HandInfoStyle.Render(status) + "\n")
		m.actionInput.Placeholder = "Enter to deal, 'help' for commands, 'quit' to exit"
	}

	b.WriteString(m.actionInput.View() + "\n")
	if m.focusedPane == 0 {
		b.WriteString(helpStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Tab to input"))
	} else {
		b.WriteString(helpStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

// renderValidActions renders the actions the engine allows right now.
func renderValidActions(valid []game.ValidAction, toCall int) string {
	var actions []string
	for _, va := range valid {
		switch va.Action {
		case game.Fold:
			actions = append(actions, ErrorStyle.Render("[fold]"))
		case game.Check:
			actions = append(actions, SuccessStyle.Render("[check]"))
		case game.Call:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", toCall)))
		case game.Bet, game.Raise:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[%s $%d-%d]", va.Action, va.Min, va.Max)))
		case game.AllIn:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[allin $%d]", va.Max)))
		}
	}
	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}
