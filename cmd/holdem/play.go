package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/notify"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/session"
	"github.com/lox/holdem/internal/tui"
)

type PlayCmd struct {
	Config  string `kong:"short='c',default='holdem.hcl',type='path',help='Table configuration file'"`
	Seed    int64  `kong:"help='Seed for deterministic play (0 for random), overrides the config file'"`
	LogFile string `kong:"help='Write logs here instead of the config file setting (default holdem.log)'"`
	LogFlags
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	humans := cfg.Humans()
	if len(humans) != 1 {
		return fmt.Errorf("play needs exactly one player with policy %q, found %d (use simulate for bots only)", config.Human, len(humans))
	}

	logFile, err := os.OpenFile(firstNonEmpty(c.LogFile, cfg.Log.File, "holdem.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()
	logger, err := setupLogger(logFile, firstNonEmpty(c.LogLevel, cfg.Log.Level), c.LogJSON || cfg.Log.JSON)
	if err != nil {
		return err
	}

	seed := randutil.Seed(firstNonZero(c.Seed, cfg.Table.Seed))
	logger.Info().Int64("seed", seed).Str("table", cfg.Table.Name).Msg("Starting table")

	ctx, cancel := signalContext(logger)
	defer cancel()

	rig, err := newTableRig(cfg, seed, logger)
	if err != nil {
		return err
	}

	tui.ConfigureColor(os.Stdout)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rig.session.Run(ctx) })
	g.Go(func() error { return rig.dispatcher.Run(ctx) })
	g.Go(func() error {
		defer cancel()
		err := tui.Run(ctx, rig.session, humans[0].Seat, logger)
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// tableRig is everything needed to run one configured table.
type tableRig struct {
	engine     *game.Engine
	session    *session.Session
	dispatcher *notify.Dispatcher
}

func newTableRig(cfg *config.Config, seed int64, logger zerolog.Logger) (*tableRig, error) {
	rng := randutil.New(seed)

	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		return nil, err
	}
	dispatcher := notify.NewDispatcher(cfg.Table.Name, sinks,
		notify.WithBuffer(cfg.Notify.Buffer),
		notify.WithLogger(logger))

	engine, err := game.NewEngine(cfg.Blinds(),
		game.WithLogger(logger),
		game.WithRNG(randutil.Child(rng)),
		game.WithNotifier(dispatcher),
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
	opts := []session.Option{
		session.WithClock(quartz.NewReal()),
		session.WithLogger(logger),
		session.WithConfig(cfg.Session()),
	}
	for seat, p := range policies {
		opts = append(opts, session.WithPolicy(seat, p))
	}

	return &tableRig{
		engine:     engine,
		session:    session.New(engine, opts...),
		dispatcher: dispatcher,
	}, nil
}

func buildSinks(cfg *config.Config, logger zerolog.Logger) ([]notify.Sink, error) {
	var sinks []notify.Sink
	n := cfg.Notify
	if n.LogEvents {
		sinks = append(sinks, notify.NewLogSink(logger, zerolog.InfoLevel))
	}
	if n.NATSURL != "" {
		s, err := notify.DialNATS(n.NATSURL, n.NATSPrefix, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if n.WebSocketURL != "" {
		sinks = append(sinks, notify.NewWebSocketSink(n.WebSocketURL, logger))
	}
	return sinks, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// runDispatcher runs d until the returned stop func is called, which waits
// for queued events to be flushed.
func runDispatcher(d *notify.Dispatcher) (stop func() error) {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()
	return func() error {
		cancel()
		return <-errc
	}
}
