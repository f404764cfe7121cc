// Package classify derives version, group and parameters from endpoint paths.
package classify

import (
	"regexp"
	"strings"

	"github.com/PentesterFlow/apistats/internal/parser"
)

// Placeholders used by PatternKey and CollapseParams.
const (
	ParamPlaceholder   = "{id}"
	VersionPlaceholder = "v{n}"
)

var (
	versionPattern = regexp.MustCompile(`^v\d+(\.\d+)?$`)
	paramPattern   = regexp.MustCompile(`\{([^}]*)\}`)
)

// Result is the classification of a single path.
type Result struct {
	Version    string
	Group      string
	Parameters []string
}

// Classify returns the version, group and parameter names of path. It only
// looks at path, so classifying the same path again yields the same result.
func Classify(path string) Result {
	segments := splitPath(path)
	return Result{
		Version:    version(segments),
		Group:      group(segments),
		Parameters: Parameters(path),
	}
}

// Apply classifies ep.Path and stores the result on ep.
func Apply(ep *parser.Endpoint) {
	r := Classify(ep.Path)
	ep.Version = r.Version
	ep.Group = r.Group
	ep.Parameters = r.Parameters
}

// IsVersion reports whether segment looks like v1 or v2.1.
func IsVersion(segment string) bool {
	return versionPattern.MatchString(segment)
}

func version(segments []string) string {
	for _, s := range segments {
		if IsVersion(s) {
			return s
		}
	}
	return parser.NoVersion
}

// group skips an `api/vN` or bare `vN` prefix and returns the first segment
// that is not a placeholder.
func group(segments []string) string {
	switch {
	case len(segments) >= 2 && segments[0] == "api" && IsVersion(segments[1]):
		segments = segments[2:]
	case len(segments) >= 1 && IsVersion(segments[0]):
		segments = segments[1:]
	}
	for _, s := range segments {
		if !strings.Contains(s, "{") {
			return s
		}
	}
	return parser.RootGroup
}

// Parameters returns the names inside every {...} in path, left to right.
// Repeated names are kept.
func Parameters(path string) []string {
	found := paramPattern.FindAllStringSubmatch(path, -1)
	params := make([]string, 0, len(found))
	for _, m := range found {
		params = append(params, m[1])
	}
	return params
}

// DistinctParameters returns params without repeats, in first-seen order.
func DistinctParameters(params []string) []string {
	seen := make(map[string]struct{}, len(params))
	out := make([]string, 0, len(params))
	for _, p := range params {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CollapseParams replaces every {...} placeholder with {id}.
func CollapseParams(path string) string {
	return paramPattern.ReplaceAllString(path, ParamPlaceholder)
}

// PatternKey is the canonical shape of path used for frequency counting: a
// leading /api segment is dropped, placeholders become {id} and version
// segments become v{n}.
//
//	/api/v2/products/{id}/reviews/{reviewId} -> /v{n}/products/{id}/reviews/{id}
func PatternKey(path string) string {
	segments := splitPath(path)
	if len(segments) > 1 && segments[0] == "api" {
		segments = segments[1:]
	}
	for i, s := range segments {
		switch {
		case IsVersion(s):
			segments[i] = VersionPlaceholder
		case strings.Contains(s, "{"):
			segments[i] = CollapseParams(s)
		}
	}
	return "/" + strings.Join(segments, "/")
}

// Resource is the resource type an endpoint operates on: its group, unless
// the path has none.
func Resource(path string) (string, bool) {
	g := Classify(path).Group
	if g == parser.RootGroup {
		return "", false
	}
	return g, true
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
