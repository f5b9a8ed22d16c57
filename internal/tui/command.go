package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/holdem/internal/game"
)

// CommandKind says what a line of input asks for.
type CommandKind int

const (
	CmdContinue CommandKind = iota // empty line
	CmdAction
	CmdDeal
	CmdHelp
	CmdQuit
)

// Command is one parsed line of input.
type Command struct {
	Kind   CommandKind
	Action game.Action
	Amount int // raise-to total for bet and raise
}

const helpText = `Commands:
  fold (f), check (k), call (c), all-in (a)
  bet N / raise N       bet or raise to a total of N
  raise by N            raise N more than the current bet
  bet / raise           minimum bet or raise
  deal (d)              start the next hand
  quit (q)`

// parseCommand turns a line of input into a Command. view is the current
// decision, or nil when it is not the player's turn; it is needed to
// resolve "raise by" and default amounts.
func parseCommand(input string, view *game.TableView) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Kind: CmdContinue}, nil
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return Command{Kind: CmdQuit}, nil
	case "d", "deal", "n", "next":
		return Command{Kind: CmdDeal}, nil
	case "h", "help", "?":
		return Command{Kind: CmdHelp}, nil
	}

	action, err := game.ParseAction(fields[0])
	if err != nil {
		return Command{}, fmt.Errorf("unknown command %q, type help", fields[0])
	}
	cmd := Command{Kind: CmdAction, Action: action}
	if action != game.Bet && action != game.Raise {
		if len(fields) > 1 {
			return Command{}, fmt.Errorf("%s takes no amount", action)
		}
		return cmd, nil
	}

	args := fields[1:]
	by := false
	if len(args) > 0 && (args[0] == "to" || args[0] == "by") {
		by = args[0] == "by"
		args = args[1:]
	}
	switch len(args) {
	case 0:
		if by {
			return Command{}, errors.New("raise by how much?")
		}
		if view == nil {
			return Command{}, fmt.Errorf("%s needs an amount", action)
		}
		opt, ok := view.Option(action)
		if !ok {
			return Command{}, fmt.Errorf("cannot %s now", action)
		}
		cmd.Amount = opt.Min
		return cmd, nil
	case 1:
	default:
		return Command{}, fmt.Errorf("too many arguments to %s", action)
	}

	n, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
	if err != nil || n <= 0 {
		return Command{}, fmt.Errorf("invalid amount %q", args[0])
	}
	if by {
		if view == nil {
			return Command{}, errors.New("raise by needs a bet to raise")
		}
		n += view.HighestBet
	}
	cmd.Amount = n
	return cmd, nil
}
