// Package config loads table configuration from HCL.
package config

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/policy"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/session"
)

// Human is the policy name for a seat played from the terminal.
const Human = "human"

// Config represents the complete table configuration
type Config struct {
	Table   TableConfig    `hcl:"table,block"`
	Players []PlayerConfig `hcl:"player,block"`
	Notify  *NotifyConfig  `hcl:"notify,block"`
	Log     *LogConfig     `hcl:"log,block"`
}

// TableConfig defines the table and its timing
type TableConfig struct {
	Name           string `hcl:"name,label"`
	SmallBlind     int    `hcl:"small_blind"`
	BigBlind       int    `hcl:"big_blind"`
	BigBlindOption bool   `hcl:"big_blind_option,optional"`
	Seed           int64  `hcl:"seed,optional"`
	AutoStart      *bool  `hcl:"auto_start,optional"`
	ThinkDelay     string `hcl:"think_delay,optional"`
	ActTimeout     string `hcl:"act_timeout,optional"`
	HandPause      string `hcl:"hand_pause,optional"`

	thinkDelay time.Duration
	actTimeout time.Duration
	handPause  time.Duration
}

// PlayerConfig seats one player
type PlayerConfig struct {
	Name   string `hcl:"name,label"`
	Seat   int    `hcl:"seat"`
	Chips  int    `hcl:"chips,optional"`
	Policy string `hcl:"policy,optional"`
	Avatar string `hcl:"avatar,optional"`
}

// NotifyConfig selects where table events are published
type NotifyConfig struct {
	NATSURL      string `hcl:"nats_url,optional"`
	NATSPrefix   string `hcl:"nats_prefix,optional"`
	WebSocketURL string `hcl:"websocket_url,optional"`
	LogEvents    bool   `hcl:"log_events,optional"`
	Buffer       int    `hcl:"buffer,optional"`
}

// LogConfig controls logging output
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// Default returns a heads-up table against one equity opponent.
func Default() *Config {
	c := &Config{
		Table: TableConfig{Name: "main", SmallBlind: 10, BigBlind: 20},
		Players: []PlayerConfig{
			{Name: "you", Seat: 1, Chips: 1000, Policy: Human},
			{Name: "equity", Seat: 2, Chips: 1000, Policy: "equity", Avatar: "🤖"},
		},
	}
	c.applyDefaults()
	_ = c.Validate() // resolves durations; the defaults are valid
	return c
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	t := &c.Table
	if t.AutoStart == nil {
		on := true
		t.AutoStart = &on
	}
	if t.ThinkDelay == "" {
		t.ThinkDelay = "800ms"
	}
	if t.HandPause == "" {
		t.HandPause = "3s"
	}
	for i := range c.Players {
		p := &c.Players[i]
		if p.Chips == 0 {
			p.Chips = t.BigBlind * 50 // 50 big blinds
		}
		if p.Policy == "" {
			p.Policy = "checkcall"
		}
	}
	if c.Notify == nil {
		c.Notify = &NotifyConfig{}
	}
	if c.Notify.NATSPrefix == "" {
		c.Notify.NATSPrefix = "holdem"
	}
	if c.Notify.Buffer == 0 {
		c.Notify.Buffer = 256
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate validates the configuration and resolves durations.
func (c *Config) Validate() error {
	t := &c.Table
	if err := c.Blinds().Validate(); err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}

	var err error
	durations := []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"think_delay", t.ThinkDelay, &t.thinkDelay},
		{"act_timeout", t.ActTimeout, &t.actTimeout},
		{"hand_pause", t.HandPause, &t.handPause},
	}
	for _, d := range durations {
		if d.src == "" {
			*d.dst = 0
			continue
		}
		if *d.dst, err = time.ParseDuration(d.src); err != nil || *d.dst < 0 {
			return fmt.Errorf("table %s: invalid %s %q", t.Name, d.name, d.src)
		}
	}

	if len(c.Players) < 2 {
		return fmt.Errorf("table %s: at least two players must be configured", t.Name)
	}
	validPolicies := append([]string{Human}, policy.Names()...)
	seats := map[int]string{}
	names := map[string]bool{}
	for _, p := range c.Players {
		if p.Seat < 1 || p.Seat > game.MaxSeats {
			return fmt.Errorf("player %s: seat must be between 1 and %d", p.Name, game.MaxSeats)
		}
		if other, taken := seats[p.Seat]; taken {
			return fmt.Errorf("player %s: seat %d already taken by %s", p.Name, p.Seat, other)
		}
		seats[p.Seat] = p.Name
		if names[p.Name] {
			return fmt.Errorf("player %s: duplicate name", p.Name)
		}
		names[p.Name] = true
		if p.Chips <= 0 {
			return fmt.Errorf("player %s: chips must be positive", p.Name)
		}
		if !slices.Contains(validPolicies, p.Policy) {
			return fmt.Errorf("player %s: invalid policy %s (want one of %s)",
				p.Name, p.Policy, strings.Join(validPolicies, ", "))
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Notify.Buffer < 1 {
		return fmt.Errorf("notify buffer must be positive")
	}
	return nil
}

// Blinds returns the table blinds.
func (c *Config) Blinds() game.Blinds {
	return game.Blinds{Small: c.Table.SmallBlind, Big: c.Table.BigBlind}
}

// Rules returns the table rules.
func (c *Config) Rules() game.Rules {
	return game.Rules{BigBlindOption: c.Table.BigBlindOption}
}

// Session returns the session timing. Validate must have succeeded.
func (c *Config) Session() session.Config {
	return session.Config{
		ThinkDelay: c.Table.thinkDelay,
		ActTimeout: c.Table.actTimeout,
		AutoStart:  *c.Table.AutoStart,
		HandPause:  c.Table.handPause,
	}
}

// Humans returns the players controlled from the terminal.
func (c *Config) Humans() []PlayerConfig {
	var out []PlayerConfig
	for _, p := range c.Players {
		if p.Policy == Human {
			out = append(out, p)
		}
	}
	return out
}

// Policies builds the policy for every seat not played by a human. Each
// policy gets its own generator derived from rng.
func (c *Config) Policies(rng *rand.Rand) (map[int]policy.Policy, error) {
	out := make(map[int]policy.Policy)
	for _, p := range c.Players {
		if p.Policy == Human {
			continue
		}
		pol, err := policy.ByName(p.Policy, randutil.Child(rng))
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", p.Name, err)
		}
		out[p.Seat] = pol
	}
	return out, nil
}
