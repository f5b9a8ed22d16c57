package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

type EvalCmd struct {
	Cards []string `kong:"arg,help='Five to seven cards, e.g. As Kd Qh Jc Ts 2d 3c'"`
}

func (c *EvalCmd) Run() error {
	return evaluate(os.Stdout, strings.Join(c.Cards, " "))
}

func evaluate(w io.Writer, input string) error {
	cards, err := parseDistinct(input)
	if err != nil {
		return err
	}
	if len(cards) < 5 || len(cards) > 7 {
		return fmt.Errorf("need five to seven cards, got %d", len(cards))
	}
	rank, best := poker.BestHand(cards...)
	fmt.Fprintf(w, "%s  %s\n", poker.FormatCards(best), rank)
	return nil
}

type EquityCmd struct {
	Hole      string `kong:"arg,help='Two hole cards, e.g. AsAh'"`
	Board     string `kong:"short='b',help='Zero to five board cards'"`
	Opponents int    `kong:"short='o',default='1',help='Number of opponents holding random hands'"`
	Samples   int    `kong:"short='s',default='20000',help='Number of Monte Carlo samples'"`
	Seed      int64  `kong:"help='Seed for reproducible estimates (0 for random)'"`
}

func (c *EquityCmd) Run() error {
	return c.estimate(context.Background(), os.Stdout)
}

func (c *EquityCmd) estimate(ctx context.Context, w io.Writer) error {
	hole, err := parseDistinct(c.Hole)
	if err != nil {
		return err
	}
	if len(hole) != 2 {
		return errors.New("equity needs exactly two hole cards")
	}
	all, err := parseDistinct(c.Hole + " " + c.Board)
	if err != nil {
		return err
	}
	board := all[2:]

	seed := randutil.Seed(c.Seed)
	equity, err := policy.EstimateEquity(ctx, hole, board, c.Opponents, c.Samples, randutil.New(seed))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)", poker.FormatCards(hole), poker.CategorizeHoleCards(hole))
	if len(board) > 0 {
		fmt.Fprintf(w, " on %s", poker.FormatCards(board))
	}
	fmt.Fprintf(w, " vs %d: %.1f%% equity\n", c.Opponents, equity*100)
	return nil
}

// parseDistinct parses cards and rejects duplicates.
func parseDistinct(input string) ([]poker.Card, error) {
	cards, err := poker.ParseCards(input)
	if err != nil {
		return nil, err
	}
	seen := poker.NewCardSet()
	for _, c := range cards {
		if seen.Contains(c) {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen = seen.Add(c)
	}
	return cards, nil
}
