package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/notify"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/session"
)

type SimulateCmd struct {
	Config  string `kong:"short='c',default='holdem.hcl',type='path',help='Table configuration file; human seats play check/call'"`
	Hands   int    `kong:"short='n',default='1000',help='Number of hands to play'"`
	Seed    int64  `kong:"help='Seed for deterministic play (0 for random), overrides the config file'"`
	JSON    bool   `kong:"help='Print the summary as JSON'"`
	Publish bool   `kong:"help='Publish hand events to the configured notify sinks'"`
	LogFlags
}

// SeatSummary is how one player did over a simulation.
type SeatSummary struct {
	Seat     int     `json:"seat"`
	Player   string  `json:"player"`
	Policy   string  `json:"policy"`
	Start    int     `json:"start"`
	Chips    int     `json:"chips"`
	Net      int     `json:"net"`
	HandsWon int     `json:"hands_won"`
	BBPer100 float64 `json:"bb_per_100"`
}

// Summary is the outcome of a simulation.
type Summary struct {
	Seed        int64         `json:"seed"`
	HandsPlayed int           `json:"hands_played"`
	Stopped     string        `json:"stopped,omitempty"`
	Seats       []SeatSummary `json:"seats"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	logger, err := setupLogger(os.Stderr, firstNonEmpty(c.LogLevel, cfg.Log.Level), c.LogJSON || cfg.Log.JSON)
	if err != nil {
		return err
	}

	var notifier game.Notifier = game.NopNotifier{}
	if c.Publish {
		sinks, err := buildSinks(cfg, logger)
		if err != nil {
			return err
		}
		d := notify.NewDispatcher(cfg.Table.Name, sinks,
			notify.WithBuffer(cfg.Notify.Buffer),
			notify.WithLogger(logger))
		stop := runDispatcher(d)
		defer func() {
			if err := stop(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close notify sinks")
			}
		}()
		notifier = d
	}

	summary, err := simulate(cfg, c.Hands, randutil.Seed(firstNonZero(c.Seed, cfg.Table.Seed)), notifier, logger)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	printSummary(os.Stdout, summary, cfg.Table.BigBlind)
	return nil
}

// simulate plays up to hands hands at the configured table, stopping early
// when fewer than two players have chips.
func simulate(cfg *config.Config, hands int, seed int64, notifier game.Notifier, logger zerolog.Logger) (*Summary, error) {
	rng := randutil.New(seed)
	engine, err := game.NewEngine(cfg.Blinds(),
		game.WithLogger(logger),
		game.WithRNG(randutil.Child(rng)),
		game.WithNotifier(notifier),
		game.WithRules(cfg.Rules()))
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Players {
		if err := engine.SeatPlayer(p.Name, p.Seat, p.Chips, p.Avatar); err != nil {
			return nil, fmt.Errorf("seat %s: %w", p.Name, err)
		}
	}
	policies, err := cfg.Policies(rng)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Seed: seed}
	won := map[int]int{}
	for summary.HandsPlayed < hands {
		if !engine.CanStart() {
			summary.Stopped = "fewer than two players have chips"
			break
		}
		result, err := session.PlayHand(engine, policies)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", summary.HandsPlayed+1, err)
		}
		summary.HandsPlayed++
		for _, w := range result.Winners {
			if w.Amount > 0 {
				won[w.Seat]++
			}
		}
		logger.Debug().
			Str("hand_id", result.HandID).
			Int("pot", result.PotAmount).
			Int("winners", len(result.Winners)).
			Msg("Hand complete")
	}

	for _, p := range cfg.Players {
		chips := engine.Chips(p.Seat)
		s := SeatSummary{
			Seat:     p.Seat,
			Player:   p.Name,
			Policy:   p.Policy,
			Start:    p.Chips,
			Chips:    chips,
			Net:      chips - p.Chips,
			HandsWon: won[p.Seat],
		}
		if p.Policy == config.Human {
			s.Policy = "checkcall"
		}
		if summary.HandsPlayed > 0 {
			s.BBPer100 = float64(s.Net) / float64(cfg.Table.BigBlind) / float64(summary.HandsPlayed) * 100
		}
		summary.Seats = append(summary.Seats, s)
	}
	logger.Info().Int("hands", summary.HandsPlayed).Int64("seed", seed).Msg("Simulation complete")
	return summary, nil
}

var netStyle = map[bool]lipgloss.Style{
	true:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	false: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

func printSummary(w io.Writer, s *Summary, bigBlind int) {
	title := lipgloss.NewStyle().Bold(true)
	fmt.Fprintln(w, title.Render(fmt.Sprintf("Hands played: %d (seed %d, big blind %d)", s.HandsPlayed, s.Seed, bigBlind)))
	if s.Stopped != "" {
		fmt.Fprintf(w, "Stopped early: %s\n", s.Stopped)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Seat", "Player", "Policy", "Chips", "Net", "Won", "bb/100")
	for _, seat := range s.Seats {
		t.Row(
			strconv.Itoa(seat.Seat),
			seat.Player,
			seat.Policy,
			strconv.Itoa(seat.Chips),
			netStyle[seat.Net >= 0].Render(fmt.Sprintf("%+d", seat.Net)),
			strconv.Itoa(seat.HandsWon),
			fmt.Sprintf("%.1f", seat.BBPer100),
		)
	}
	fmt.Fprintln(w, t.Render())
}
