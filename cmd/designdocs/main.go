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
		Name:  "designdocs",
		Short: "Analyze API design documentation",
		Long: `designdocs - API design documentation analyzer.

Reads every line of the design documents in a directory, prints a per-service
breakdown of the endpoints found and writes design-analysis-report.json.`,
		Version: version,
		Base:    collector.DesignDocsConfig,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
