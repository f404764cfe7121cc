// Package cli builds the cobra commands shared by the apistats and
// designdocs binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apierrors "github.com/PentesterFlow/apistats/internal/errors"
	"github.com/PentesterFlow/apistats/internal/logger"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/state"
	"github.com/PentesterFlow/apistats/pkg/collector"
)

// Options describe one binary.
type Options struct {
	Name    string
	Short   string
	Long    string
	Version string
	// Base returns the configuration flags and config files are applied to.
	Base func() *collector.Config
}

type flags struct {
	configFile  string
	verbose     bool
	debug       bool
	report      string
	jsonFile    string
	yamlFile    string
	mode        string
	style       string
	suffixes    []string
	include     []string
	exclude     []string
	history     string
	showHistory bool
}

// NewCommand creates the root command of a binary.
func NewCommand(opts Options) *cobra.Command {
	cmd, _ := newCommand(opts)
	return cmd
}

func newCommand(opts Options) (*cobra.Command, *flags) {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           opts.Name + " [directory]",
		Short:         opts.Short,
		Long:          opts.Long,
		Version:       opts.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Debug mode")
	cmd.Flags().StringVar(&f.report, "report", "", "Markdown report file (empty disables)")
	cmd.Flags().StringVar(&f.jsonFile, "json", "", "JSON export file (empty disables)")
	cmd.Flags().StringVar(&f.yamlFile, "yaml", "", "Also write the export as YAML to this file")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Lines considered for endpoints (fenced, all)")
	cmd.Flags().StringVar(&f.style, "style", "", "Printed report style (markdown, console)")
	cmd.Flags().StringArrayVar(&f.suffixes, "suffix", nil, "Design document file suffix (repeatable)")
	cmd.Flags().StringArrayVar(&f.include, "include", nil, "File name patterns to include (regex)")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "File name patterns to exclude (regex)")
	cmd.Flags().StringVar(&f.history, "history", "", "Record runs in this history file")
	cmd.Flags().BoolVar(&f.showHistory, "show-history", false, "List recorded runs and exit")

	return cmd, f
}

func run(cmd *cobra.Command, args []string, opts Options, f *flags) error {
	config, err := buildConfig(cmd, args, opts, f)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:     logger.LevelFromFlags(config.Verbose, config.Debug, logger.InfoLevel),
		Pretty:    true,
		Output:    cmd.ErrOrStderr(),
		Component: opts.Name,
	})

	if f.showHistory {
		return showHistory(cmd.OutOrStdout(), config.History.Path)
	}

	c, err := collector.New(
		collector.WithConfig(config),
		collector.WithLogger(log),
		collector.WithStdout(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := c.Run(ctx); err != nil {
		if apierrors.GetKind(err) == apierrors.Cancelled {
			log.Warn("Interrupted, no output written")
		}
		return err
	}
	return nil
}

// buildConfig applies the config file, then the positional directory, then
// explicitly set flags.
func buildConfig(cmd *cobra.Command, args []string, opts Options, f *flags) (*collector.Config, error) {
	config := opts.Base()

	if f.configFile != "" {
		loaded, err := collector.LoadFromFile(f.configFile, config)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if len(args) == 1 {
		config.Directory = args[0]
	}

	changed := cmd.Flags().Changed
	if changed("report") {
		config.Output.ReportFile = f.report
	}
	if changed("json") {
		config.Output.DataFile = f.jsonFile
	}
	if changed("yaml") {
		config.Output.YAMLFile = f.yamlFile
	}
	if changed("mode") {
		mode, err := parser.ParseMode(f.mode)
		if err != nil {
			return nil, apierrors.NewConfigError("flags", "invalid --mode", err)
		}
		config.Mode = mode
	}
	if changed("style") {
		config.Output.Style = f.style
	}
	if changed("suffix") {
		config.Scope.Suffixes = append([]string(nil), f.suffixes...)
	}
	config.Scope.IncludePatterns = append(config.Scope.IncludePatterns, f.include...)
	config.Scope.ExcludePatterns = append(config.Scope.ExcludePatterns, f.exclude...)
	if changed("history") {
		config.History.Path = f.history
	}
	if changed("verbose") {
		config.Verbose = f.verbose
	}
	if changed("debug") {
		config.Debug = f.debug
	}

	return config, nil
}

func showHistory(w io.Writer, path string) error {
	if path == "" {
		return apierrors.NewConfigError("history", "--show-history needs --history or history.path", nil)
	}

	runs, err := collector.ListHistory(path)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded in %s\n", path)
		return nil
	}

	fmt.Fprintf(w, "%-5s %-20s %-11s %6s %10s %9s  %s\n",
		"ID", "GENERATED", "TOOL", "FILES", "ENDPOINTS", "PATTERNS", "DIRECTORY")
	for _, r := range runs {
		fmt.Fprintln(w, formatRun(r))
	}
	return nil
}

func formatRun(r state.Run) string {
	line := fmt.Sprintf("%-5d %-20s %-11s %6d %10d %9d  %s",
		r.ID, r.GeneratedAt.UTC().Format(time.RFC3339), r.Tool, r.Files, r.Endpoints, r.UniquePatterns, r.Directory)
	if len(r.AuthTypes) > 0 {
		line += " [" + strings.Join(r.AuthTypes, ", ") + "]"
	}
	return line
}
