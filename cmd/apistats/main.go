package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PentesterFlow/apistats/internal/cli"
	"github.com/PentesterFlow/apistats/pkg/collector"
)

var version = "1.0.0"

func main() {
	cmd := cli.NewCommand(cli.Options{
		Name:  "apistats",
		Short: "Collect API endpoint statistics from design documents",
		Long: `apistats - API endpoint statistics collector.

Scans *-rest-api-design.md (and .html) design documents in a directory,
extracts the HTTP endpoints they describe and writes a markdown statistics
report and a JSON export of every endpoint.`,
		Version: version,
		Base:    collector.DefaultConfig,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
