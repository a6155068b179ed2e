// Command dealerctl is the operator CLI: schema migrations, connectivity
// checks, demo data and one-off sale operations against the configured backend.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&migrateCmd{}, "database")
	commander.Register(&pingCmd{}, "database")
	commander.Register(&seedCmd{}, "database")

	commander.Register(&registerSaleCmd{}, "sales")
	commander.Register(&cancelSaleCmd{}, "sales")
	commander.Register(&classifyCmd{}, "sales")

	commander.Register(&tokenCmd{}, "auth")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
