package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play at a table from the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Play many hands between policies and report results"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate the best five-card hand from five to seven cards"`
	Equity   EquityCmd        `cmd:"" help:"Estimate hand equity against random hands"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("holdem"),
		kong.Description("Texas Hold'em at the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
