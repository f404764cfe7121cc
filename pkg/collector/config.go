package collector

import (
	"encoding/json"
	"os"
	"strings"

	apierrors "github.com/PentesterFlow/apistats/internal/errors"
	"github.com/PentesterFlow/apistats/internal/output"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/report"
	"github.com/PentesterFlow/apistats/internal/scope"
	"gopkg.in/yaml.v3"
)

// Default output names.
const (
	DefaultReportFile      = "api-statistics-report.md"
	DefaultDataFile        = "api-endpoints-data.json"
	DefaultDesignDocsFile  = "design-analysis-report.json"
	DefaultEstimatedPerDoc = 1000
)

// Config holds all collector configuration.
type Config struct {
	// Tool name recorded in exports and history
	Tool string `json:"tool" yaml:"tool"`

	// Directory scanned for design documents
	Directory string `json:"directory" yaml:"directory"`

	// Which lines of a document are considered for endpoints
	Mode parser.Mode `json:"mode" yaml:"mode"`

	// File selection rules
	Scope scope.Rules `json:"scope" yaml:"scope"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Run history
	History HistoryConfig `json:"history" yaml:"history"`

	// Expected endpoints per document, sizes the dedup filters
	EstimatedPerDoc int `json:"estimated_per_doc" yaml:"estimated_per_doc"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// OutputConfig controls what a run writes.
type OutputConfig struct {
	// Style of the rendered report: markdown or console
	Style string `json:"style" yaml:"style"`

	// ReportFile receives the rendered report; empty disables it
	ReportFile string `json:"report_file" yaml:"report_file"`

	// DataFile receives the JSON export; empty disables it
	DataFile string `json:"data_file" yaml:"data_file"`

	// YAMLFile receives a YAML copy of the export; empty disables it
	YAMLFile string `json:"yaml_file" yaml:"yaml_file"`

	// IncludeMetrics embeds run metrics in the export
	IncludeMetrics bool `json:"include_metrics" yaml:"include_metrics"`
}

// HistoryConfig enables the run history store.
type HistoryConfig struct {
	// Path of the bbolt file; empty disables history
	Path string `json:"path" yaml:"path"`
}

// DefaultConfig returns the stats collector configuration.
func DefaultConfig() *Config {
	return &Config{
		Tool:      "apistats",
		Directory: ".",
		Mode:      parser.ModeFenced,
		Scope:     scope.DefaultRules(),
		Output: OutputConfig{
			Style:          string(report.StyleMarkdown),
			ReportFile:     DefaultReportFile,
			DataFile:       DefaultDataFile,
			IncludeMetrics: true,
		},
		EstimatedPerDoc: DefaultEstimatedPerDoc,
	}
}

// DesignDocsConfig returns the design-doc analyzer configuration: every
// line is considered and the console report is printed.
func DesignDocsConfig() *Config {
	return &Config{
		Tool:      "designdocs",
		Directory: ".",
		Mode:      parser.ModeAllSurfaces,
		Scope:     scope.DefaultRules(),
		Output: OutputConfig{
			Style:          string(report.StyleConsole),
			DataFile:       DefaultDesignDocsFile,
			IncludeMetrics: true,
		},
		EstimatedPerDoc: DefaultEstimatedPerDoc,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON) on top of base.
// A nil base starts from DefaultConfig.
func LoadFromFile(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.NewConfigError("load", "failed to read config file "+path, err)
	}

	config := base
	if config == nil {
		config = DefaultConfig()
	} else {
		config = base.Clone()
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jerr := json.Unmarshal(data, config); jerr != nil {
			return nil, apierrors.NewConfigError("load", "failed to parse config file "+path, err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file. Paths ending in .json are
// written as JSON, everything else as YAML.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return apierrors.NewConfigError("save", "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return apierrors.NewWriteError(path, err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Directory == "" {
		return apierrors.NewConfigError("validate", "directory is required", nil)
	}

	if c.Mode != parser.ModeFenced && c.Mode != parser.ModeAllSurfaces {
		return apierrors.NewConfigError("validate", "unknown scan mode "+c.Mode.String(), nil)
	}

	if len(c.Scope.Suffixes) == 0 {
		return apierrors.NewConfigError("validate", "at least one file suffix is required", nil)
	}

	if _, err := report.ParseStyle(c.Output.Style); err != nil {
		return apierrors.NewConfigError("validate", "invalid report style", err)
	}

	if c.Output.YAMLFile != "" && output.FormatFromPath(c.Output.YAMLFile) != output.FormatYAML {
		return apierrors.NewConfigError("validate", "yaml file must end in .yaml or .yml", nil)
	}

	if c.EstimatedPerDoc < 0 {
		return apierrors.NewConfigError("validate", "estimated endpoints per document must not be negative", nil)
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
