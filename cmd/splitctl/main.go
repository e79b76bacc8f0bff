// Command splitctl manages SplitLah accounts and runs splits from the terminal.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/mmynk/splitlah/internal/cli"
	"github.com/mmynk/splitlah/pkg/logging"
)

func main() {
	env := &cli.Env{Out: os.Stdout, Err: os.Stderr}
	flag.StringVar(&env.ConfigPath, "config", "", "path to the YAML config file")
	flag.BoolVar(&env.Plain, "plain", false, "print raw markdown instead of styled output")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands(env) {
		commander.Register(c, "")
	}

	flag.Parse()
	logging.Setup()
	env.Logger = slog.Default()
	os.Exit(int(commander.Execute(context.Background())))
}
