package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config  string `short:"c" default:"stonepaper.hcl" help:"Path to HCL configuration file"`
	Debug   bool   `help:"Enable debug logging"`
	LogFile string `help:"Write logs to this file (overrides config)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play in the terminal"`
	Serve    ServeCmd         `cmd:"" help:"Serve the browser game"`
	History  HistoryCmd       `cmd:"" help:"Show or clear the leaderboard"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate many sessions with a random player"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("stonepaper"),
		kong.Description("Stone, paper, scissors against the computer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
