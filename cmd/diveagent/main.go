package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	APIKey   string `env:"ANTHROPIC_API_KEY" help:"Anthropic API key"`
	BaseURL  string `help:"Custom API base URL"`
	Config   string `help:"Config file path"`
	LogLevel string `default:"warn" help:"Log level"`

	Chat ChatCmd `cmd:"" default:"1" help:"Start an interactive dive logging chat (default)"`
	Tag  TagCmd  `cmd:"" help:"Tag a processing session with dive metadata directly"`
	KB   KBCmd   `cmd:"" name:"kb" help:"Rebuild the dive knowledge base from processed sessions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("diveagent"),
		kong.Description("Dive video logging assistant"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
