package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Host Bluff games over WebSocket"`
	Client   ClientCmd        `cmd:"" help:"Connect as an interactive client"`
	Games    GamesCmd         `cmd:"" help:"List the games open on a server"`
	Spawn    SpawnCmd         `cmd:"" help:"Seat bot clients at tables for demos and load testing"`
	Simulate SimulateCmd      `cmd:"" help:"Play bot-vs-bot games offline and report statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bluff"),
		kong.Description("Multiplayer Bluff card game server, client and simulator"),
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
