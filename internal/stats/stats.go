// Package stats folds classified endpoints into aggregate statistics.
package stats

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/PentesterFlow/apistats/internal/classify"
	"github.com/PentesterFlow/apistats/internal/parser"
)

// Stats is the aggregate over every retained endpoint of a run.
type Stats struct {
	TotalEndpoints          int         `json:"total_endpoints" yaml:"total_endpoints"`
	ByMethod                Tally       `json:"by_method" yaml:"by_method"`
	ByGroup                 Tally       `json:"by_group" yaml:"by_group"`
	ByVersion               Tally       `json:"by_version" yaml:"by_version"`
	ByFile                  []FileStats `json:"by_file" yaml:"by_file"`
	PatternFrequency        Tally       `json:"pattern_frequency" yaml:"pattern_frequency"`
	UniquePathPatterns      int         `json:"unique_path_patterns" yaml:"unique_path_patterns"`
	QueryParameterFrequency Tally       `json:"query_parameter_frequency" yaml:"query_parameter_frequency"`
	AuthTypesObserved       []string    `json:"auth_types_observed" yaml:"auth_types_observed"`
	ResourceTypes           []string    `json:"resource_types" yaml:"resource_types"`
}

// FileStats is the breakdown for one source document.
type FileStats struct {
	File      string   `json:"file" yaml:"file"`
	Service   string   `json:"service" yaml:"service"`
	Total     int      `json:"total" yaml:"total"`
	ByMethod  Tally    `json:"by_method" yaml:"by_method"`
	ByGroup   Tally    `json:"by_group" yaml:"by_group"`
	Resources []string `json:"resources" yaml:"resources"`
}

// Fold aggregates records. It does not modify records and returns a fresh
// Stats on every call. authSchemes is the union of labels seen while
// scanning; it is copied as given.
func Fold(records []parser.Endpoint, authSchemes []string) Stats {
	s := Stats{
		ByFile:            []FileStats{},
		AuthTypesObserved: append([]string{}, authSchemes...),
		ResourceTypes:     []string{},
	}

	fileIndex := make(map[string]int)
	fileResources := make(map[string]map[string]struct{})
	collapsed := make(map[string]struct{})
	resources := make(map[string]struct{})

	for _, ep := range records {
		s.TotalEndpoints++
		s.ByMethod.Inc(ep.Method)
		s.ByGroup.Inc(ep.Group)
		s.ByVersion.Inc(ep.Version)

		idx, ok := fileIndex[ep.SourceFile]
		if !ok {
			idx = len(s.ByFile)
			fileIndex[ep.SourceFile] = idx
			fileResources[ep.SourceFile] = make(map[string]struct{})
			s.ByFile = append(s.ByFile, FileStats{
				File:    ep.SourceFile,
				Service: ServiceName(ep.SourceFile),
			})
		}
		fs := &s.ByFile[idx]
		fs.Total++
		fs.ByMethod.Inc(ep.Method)
		fs.ByGroup.Inc(ep.Group)

		if r, ok := classify.Resource(ep.Path); ok {
			resources[r] = struct{}{}
			fileResources[ep.SourceFile][r] = struct{}{}
		}

		s.PatternFrequency.Inc(classify.PatternKey(ep.Path))
		collapsed[classify.CollapseParams(ep.Path)] = struct{}{}

		for _, q := range ep.QueryParameters {
			s.QueryParameterFrequency.Inc(q)
		}
	}

	s.UniquePathPatterns = len(collapsed)
	s.ResourceTypes = sortedKeys(resources)
	for i := range s.ByFile {
		s.ByFile[i].Resources = sortedKeys(fileResources[s.ByFile[i].File])
	}
	return s
}

// FilesWithEndpoints returns the number of documents that contributed at
// least one endpoint.
func (s Stats) FilesWithEndpoints() int {
	return len(s.ByFile)
}

// designSuffix is the file-name convention for design documents.
const designSuffix = "-rest-api-design"

// ServiceName turns a document name such as user-management-rest-api-design
// into "User Management".
func ServiceName(file string) string {
	name := strings.TrimSuffix(file, designSuffix)
	name = strings.TrimSpace(strings.ReplaceAll(name, "-", " "))
	if name == "" {
		return file
	}
	return cases.Title(language.English).String(name)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
