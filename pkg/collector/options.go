package collector

import (
	"io"
	"time"

	"github.com/PentesterFlow/apistats/internal/logger"
	"github.com/PentesterFlow/apistats/internal/metrics"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/state"
)

// Option is a functional option for configuring the Collector.
type Option func(*Collector) error

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(c *Collector) error {
		if cfg != nil {
			c.config = cfg.Clone()
		}
		return nil
	}
}

// WithDirectory sets the directory to scan.
func WithDirectory(dir string) Option {
	return func(c *Collector) error {
		c.config.Directory = dir
		return nil
	}
}

// WithMode sets which lines are considered for endpoints.
func WithMode(mode parser.Mode) Option {
	return func(c *Collector) error {
		c.config.Mode = mode
		return nil
	}
}

// WithSuffixes replaces the accepted file suffixes.
func WithSuffixes(suffixes ...string) Option {
	return func(c *Collector) error {
		if len(suffixes) > 0 {
			c.config.Scope.Suffixes = append([]string(nil), suffixes...)
		}
		return nil
	}
}

// WithIncludePatterns adds file name patterns to include.
func WithIncludePatterns(patterns ...string) Option {
	return func(c *Collector) error {
		c.config.Scope.IncludePatterns = append(c.config.Scope.IncludePatterns, patterns...)
		return nil
	}
}

// WithExcludePatterns adds file name patterns to exclude.
func WithExcludePatterns(patterns ...string) Option {
	return func(c *Collector) error {
		c.config.Scope.ExcludePatterns = append(c.config.Scope.ExcludePatterns, patterns...)
		return nil
	}
}

// WithOutputs sets the report and data file paths. Empty strings disable
// the corresponding output.
func WithOutputs(reportFile, dataFile string) Option {
	return func(c *Collector) error {
		c.config.Output.ReportFile = reportFile
		c.config.Output.DataFile = dataFile
		return nil
	}
}

// WithYAMLOutput also writes the export as YAML to path.
func WithYAMLOutput(path string) Option {
	return func(c *Collector) error {
		c.config.Output.YAMLFile = path
		return nil
	}
}

// WithStyle sets the report style.
func WithStyle(style string) Option {
	return func(c *Collector) error {
		c.config.Output.Style = style
		return nil
	}
}

// WithStdout sets where the rendered report is printed. Nil disables printing.
func WithStdout(w io.Writer) Option {
	return func(c *Collector) error {
		c.stdout = w
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Collector) error {
		c.logger = l
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Collector) error {
		c.metrics = m
		return nil
	}
}

// WithHistory records every completed run in h. The collector does not
// close a history passed this way.
func WithHistory(h state.History) Option {
	return func(c *Collector) error {
		c.history = h
		return nil
	}
}

// WithHistoryFile records runs in a bbolt file at path.
func WithHistoryFile(path string) Option {
	return func(c *Collector) error {
		c.config.History.Path = path
		return nil
	}
}

// WithClock sets the time source used for generated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(c *Collector) error {
		c.config.Verbose = verbose
		return nil
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(c *Collector) error {
		c.config.Debug = debug
		return nil
	}
}
