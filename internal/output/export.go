package output

import (
	"time"

	"github.com/PentesterFlow/apistats/internal/metrics"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/stats"
)

// Ranked list sizes in the export.
const (
	TopPatternsLimit        = 20
	TopQueryParametersLimit = 15
)

// Export is the structured payload of a run. It decodes back into an equal
// value from both JSON and YAML.
type Export struct {
	GeneratedAt        time.Time           `json:"generated_at" yaml:"generated_at"`
	Tool               string              `json:"tool" yaml:"tool"`
	Directory          string              `json:"directory" yaml:"directory"`
	Mode               parser.Mode         `json:"mode" yaml:"mode"`
	Summary            Summary             `json:"summary" yaml:"summary"`
	Statistics         stats.Stats         `json:"statistics" yaml:"statistics"`
	Maturity           stats.MaturityScore `json:"maturity" yaml:"maturity"`
	TopPatterns        []stats.Entry       `json:"top_patterns" yaml:"top_patterns"`
	TopQueryParameters []stats.Entry       `json:"top_query_parameters" yaml:"top_query_parameters"`
	Endpoints          []parser.Endpoint   `json:"endpoints" yaml:"endpoints"`
	FileErrors         []FileError         `json:"file_errors" yaml:"file_errors"`
	Metrics            *metrics.Snapshot   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Summary holds the headline numbers of a run.
type Summary struct {
	TotalEndpoints     int `json:"total_endpoints" yaml:"total_endpoints"`
	UniquePathPatterns int `json:"unique_path_patterns" yaml:"unique_path_patterns"`
	FilesScanned       int `json:"files_scanned" yaml:"files_scanned"`
	Services           int `json:"services" yaml:"services"`
	APIGroups          int `json:"api_groups" yaml:"api_groups"`
	APIVersions        int `json:"api_versions" yaml:"api_versions"`
	ResourceTypes      int `json:"resource_types" yaml:"resource_types"`
	MaturityScore      int `json:"maturity_score" yaml:"maturity_score"`
}

// FileError records an input file that was skipped.
type FileError struct {
	File  string `json:"file" yaml:"file"`
	Kind  string `json:"kind" yaml:"kind"`
	Error string `json:"error" yaml:"error"`
}

// Params are the inputs to NewExport.
type Params struct {
	Tool         string
	Directory    string
	Mode         parser.Mode
	GeneratedAt  time.Time
	Stats        stats.Stats
	Endpoints    []parser.Endpoint
	FilesScanned int
	FileErrors   []FileError
	Metrics      *metrics.Snapshot
}

// NewExport assembles the export payload. Nil slices are replaced with empty
// ones so the payload encodes the same way in every format.
func NewExport(p Params) *Export {
	s := p.Stats
	maturity := stats.Maturity(s)

	endpoints := make([]parser.Endpoint, len(p.Endpoints))
	for i, ep := range p.Endpoints {
		if ep.Parameters == nil {
			ep.Parameters = []string{}
		}
		if ep.QueryParameters == nil {
			ep.QueryParameters = []string{}
		}
		endpoints[i] = ep
	}

	fileErrors := make([]FileError, len(p.FileErrors))
	copy(fileErrors, p.FileErrors)

	return &Export{
		GeneratedAt: p.GeneratedAt.UTC(),
		Tool:        p.Tool,
		Directory:   p.Directory,
		Mode:        p.Mode,
		Summary: Summary{
			TotalEndpoints:     s.TotalEndpoints,
			UniquePathPatterns: s.UniquePathPatterns,
			FilesScanned:       p.FilesScanned,
			Services:           s.FilesWithEndpoints(),
			APIGroups:          s.ByGroup.Len(),
			APIVersions:        s.ByVersion.Len(),
			ResourceTypes:      len(s.ResourceTypes),
			MaturityScore:      maturity.Total,
		},
		Statistics:         s,
		Maturity:           maturity,
		TopPatterns:        s.PatternFrequency.Top(TopPatternsLimit),
		TopQueryParameters: s.QueryParameterFrequency.Top(TopQueryParametersLimit),
		Endpoints:          endpoints,
		FileErrors:         fileErrors,
		Metrics:            p.Metrics,
	}
}
