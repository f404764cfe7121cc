// Package collector runs the endpoint statistics pipeline over a directory
// of API design documents.
package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PentesterFlow/apistats/internal/classify"
	apierrors "github.com/PentesterFlow/apistats/internal/errors"
	"github.com/PentesterFlow/apistats/internal/logger"
	"github.com/PentesterFlow/apistats/internal/metrics"
	"github.com/PentesterFlow/apistats/internal/output"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/report"
	"github.com/PentesterFlow/apistats/internal/scope"
	"github.com/PentesterFlow/apistats/internal/state"
	"github.com/PentesterFlow/apistats/internal/stats"
)

// Collector is the pipeline orchestrator.
type Collector struct {
	config  *Config
	logger  *logger.Logger
	metrics *metrics.Collector
	history state.History
	stdout  io.Writer
	now     func() time.Time
}

// Result is the outcome of a run.
type Result struct {
	// Files are the selected input documents.
	Files []string
	// Export is nil when no input documents were found.
	Export *output.Export
	// Report holds the rendered display text.
	Report report.Rendered
	// Outputs lists the files written, in order.
	Outputs []string
	// Run is the history entry recorded for this run, if any.
	Run *state.Run
}

// Empty reports whether the run found no input documents.
func (r *Result) Empty() bool {
	return r.Export == nil
}

// New creates a new collector with the given options.
func New(opts ...Option) (*Collector, error) {
	c := &Collector{
		config: DefaultConfig(),
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	if c.logger == nil {
		c.logger = logger.New(logger.Config{
			Level:     logger.LevelFromFlags(c.config.Verbose, c.config.Debug, logger.WarnLevel),
			Pretty:    true,
			Output:    os.Stderr,
			Component: "collector",
		})
	}

	if c.metrics == nil {
		c.metrics = metrics.New()
	}

	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Collector) Config() *Config {
	return c.config.Clone()
}

// Metrics returns the run metrics collector.
func (c *Collector) Metrics() *metrics.Collector {
	return c.metrics
}

// Run scans the configured directory and writes the configured outputs.
// Unreadable documents are skipped and listed in the export. Selection,
// output and cancellation errors are returned.
func (c *Collector) Run(ctx context.Context) (*Result, error) {
	cfg := c.config
	c.metrics.Reset()

	selector, err := scope.NewSelector(cfg.Scope)
	if err != nil {
		return nil, err
	}

	files, err := selector.Select(cfg.Directory)
	if err != nil {
		c.logger.ErrorEvent(err, cfg.Directory, "select")
		return nil, err
	}
	c.metrics.RecordFilesDiscovered(len(files))

	result := &Result{Files: files}

	if len(files) == 0 {
		c.logger.Infof("No design documents in %s", cfg.Directory)
		c.printf("No API design documents found in %s (%s)\n",
			cfg.Directory, strings.Join(patternsOf(cfg.Scope.Suffixes), ", "))
		c.metrics.Finish()
		return result, nil
	}

	c.logger.Infof("Found %d design documents in %s", len(files), cfg.Directory)

	dedup := state.NewDeduplicator(cfg.EstimatedPerDoc)
	names := scope.DocumentNames(files)
	var (
		endpoints  []parser.Endpoint
		auth       parser.AuthSet
		fileErrors []output.FileError
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, apierrors.NewCancelledError(file, "scan")
		}

		eps, schemes, err := c.scanFile(file, names[file], dedup)
		if err != nil {
			scanErr := apierrors.Categorize(err, file)
			if scanErr.Kind == apierrors.Cancelled {
				return nil, scanErr
			}
			c.metrics.RecordReadError(scanErr.Kind.String())
			c.logger.WithFile(file).Warnf("Skipping file: %s", scanErr.Message)
			fileErrors = append(fileErrors, output.FileError{
				File:  filepath.Base(file),
				Kind:  scanErr.Kind.String(),
				Error: scanErr.Message,
			})
			continue
		}

		endpoints = append(endpoints, eps...)
		auth.Add(schemes...)
	}

	s := stats.Fold(endpoints, auth.Labels())
	c.metrics.Finish()

	var snap *metrics.Snapshot
	if cfg.Output.IncludeMetrics {
		snap = c.metrics.Snapshot()
	}

	exp := output.NewExport(output.Params{
		Tool:         cfg.Tool,
		Directory:    cfg.Directory,
		Mode:         cfg.Mode,
		GeneratedAt:  c.now(),
		Stats:        s,
		Endpoints:    endpoints,
		FilesScanned: len(files) - len(fileErrors),
		FileErrors:   fileErrors,
		Metrics:      snap,
	})
	result.Export = exp

	style, err := report.ParseStyle(cfg.Output.Style)
	if err != nil {
		return nil, apierrors.NewConfigError("render", "invalid report style", err)
	}
	rendered, err := report.Render(exp, style)
	if err != nil {
		return nil, apierrors.NewConfigError("render", "failed to render report", err)
	}
	result.Report = rendered

	if err := ctx.Err(); err != nil {
		return nil, apierrors.NewCancelledError("", "write")
	}

	c.printf("%s", rendered.Display)

	if err := c.writeOutputs(exp, rendered, result); err != nil {
		c.logger.ErrorEvent(err, "", "write")
		return result, err
	}

	c.logger.StatsEvent(c.metrics.Snapshot().Summary())

	result.Run = c.recordRun(exp)

	return result, nil
}

// scanFile reads, normalizes and scans one document identified by doc. The
// returned endpoints are classified and deduplicated.
func (c *Collector) scanFile(path, doc string, dedup *state.Deduplicator) ([]parser.Endpoint, []string, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, apierrors.NewReadError(path, err)
	}

	content := string(data)
	if parser.IsHTML(path) {
		content, err = parser.NormalizeHTML(bytes.NewReader(data))
		if err != nil {
			return nil, nil, apierrors.NewParseError(path, "normalize html", err)
		}
	}

	scanner := parser.NewScanner(doc, content, c.config.Mode)

	var endpoints []parser.Endpoint
	duplicates := 0
	for scanner.Scan() {
		ep := scanner.Endpoint()
		retained := dedup.Accept(doc, ep.Method, ep.Path)
		c.metrics.RecordMatch(retained)
		if !retained {
			duplicates++
			continue
		}
		classify.Apply(&ep)
		endpoints = append(endpoints, ep)
	}

	c.metrics.RecordFileScanned(scanner.Lines(), int64(len(data)))
	c.logger.FileEvent(filepath.Base(path), len(endpoints), duplicates, time.Since(start))
	c.logger.Debugf("%s: %s", filepath.Base(path), report.Found(len(endpoints)))

	return endpoints, scanner.AuthSchemes(), nil
}

// writeOutputs writes the report and export files. Any failure is fatal.
func (c *Collector) writeOutputs(exp *output.Export, rendered report.Rendered, result *Result) error {
	out := c.config.Output

	if out.ReportFile != "" {
		if err := writeReport(out.ReportFile, rendered.Display); err != nil {
			return apierrors.NewWriteError(out.ReportFile, err)
		}
		c.logger.OutputEvent("report", out.ReportFile, len(rendered.Display))
		result.Outputs = append(result.Outputs, out.ReportFile)
		c.printf("\n✓ Report saved to %s\n", out.ReportFile)
	}

	for _, path := range []string{out.DataFile, out.YAMLFile} {
		if path == "" {
			continue
		}
		n, err := output.WriteFile(path, exp)
		if err != nil {
			return apierrors.NewWriteError(path, err)
		}
		c.logger.OutputEvent("export", path, int(n))
		result.Outputs = append(result.Outputs, path)
		c.printf("✓ Exported endpoint data to %s\n", path)
	}

	return nil
}

func writeReport(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// recordRun saves a run summary when history is configured. History failures
// are logged and do not fail the run.
func (c *Collector) recordRun(exp *output.Export) *state.Run {
	h := c.history
	if h == nil && c.config.History.Path != "" {
		bolt, err := state.NewBoltHistory(c.config.History.Path)
		if err != nil {
			c.logger.WithError(err).Warn("Run history unavailable")
			return nil
		}
		defer bolt.Close()
		h = bolt
	}
	if h == nil {
		return nil
	}

	run := NewRun(exp)
	if err := h.Save(run); err != nil {
		c.logger.WithError(err).Warn("Failed to record run history")
		return nil
	}
	return run
}

// NewRun summarizes an export as a history entry.
func NewRun(exp *output.Export) *state.Run {
	byMethod := make(map[string]int, exp.Statistics.ByMethod.Len())
	for _, e := range exp.Statistics.ByMethod.Entries() {
		byMethod[e.Key] = e.Count
	}
	return &state.Run{
		GeneratedAt:    exp.GeneratedAt,
		Tool:           exp.Tool,
		Directory:      exp.Directory,
		Files:          exp.Summary.FilesScanned,
		Endpoints:      exp.Summary.TotalEndpoints,
		UniquePatterns: exp.Summary.UniquePathPatterns,
		ByMethod:       byMethod,
		AuthTypes:      append([]string{}, exp.Statistics.AuthTypesObserved...),
	}
}

// ListHistory returns the runs stored in the bbolt file at path, oldest first.
func ListHistory(path string) ([]state.Run, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apierrors.NewReadError(path, err)
	}
	h, err := state.NewBoltHistory(path)
	if err != nil {
		return nil, apierrors.NewReadError(path, err)
	}
	defer h.Close()
	return h.List()
}

func (c *Collector) printf(format string, args ...interface{}) {
	if c.stdout != nil {
		fmt.Fprintf(c.stdout, format, args...)
	}
}

func patternsOf(suffixes []string) []string {
	out := make([]string, len(suffixes))
	for i, s := range suffixes {
		out[i] = "*" + s
	}
	return out
}
