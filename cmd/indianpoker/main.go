package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the Indian poker server"`
	Client   ClientCmd        `cmd:"" help:"Connect as an interactive client"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate games with random players"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("indianpoker"),
		kong.Description("Indian poker server with blind-card betting and pot settlement"),
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
