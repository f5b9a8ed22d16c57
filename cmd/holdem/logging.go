package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// LogFlags are shared by every command.
type LogFlags struct {
	LogLevel string `kong:"help='Log level (trace|debug|info|warn|error), overrides the config file'"`
	LogJSON  bool   `kong:"name='log-json',help='Write structured JSON logs'"`
}

// setupLogger configures zerolog for w: pretty console output, or JSON
// when structured is set.
func setupLogger(w io.Writer, level string, structured bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
		}
	}
	if structured {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: w != os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

// signalContext creates a context that is cancelled on interrupt signals
// and logs the signal.
func signalContext(logger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
