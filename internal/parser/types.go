package parser

import (
	"fmt"
	"strings"
)

// Methods is the fixed set of HTTP methods recognized in documentation.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

var methodSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Methods))
	for _, method := range Methods {
		m[method] = struct{}{}
	}
	return m
}()

// NormalizeMethod upper-cases token and reports whether it is a known method.
func NormalizeMethod(token string) (string, bool) {
	upper := strings.ToUpper(token)
	_, ok := methodSet[upper]
	return upper, ok
}

// Surface is the textual convention an endpoint was written in.
type Surface string

const (
	SurfaceBare   Surface = "bare"
	SurfaceBullet Surface = "bullet"
	SurfaceCode   Surface = "code"
	SurfaceBold   Surface = "bold"
	SurfaceTable  Surface = "table"
)

// Mode selects which lines of a document are considered for endpoints.
type Mode int

const (
	// ModeFenced only considers lines inside ``` blocks tagged http or
	// untagged. Every surface form applies to those lines.
	ModeFenced Mode = iota
	// ModeAllSurfaces considers every line of the document.
	ModeAllSurfaces
)

// String returns the flag spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFenced:
		return "fenced"
	case ModeAllSurfaces:
		return "all"
	default:
		return "unknown"
	}
}

// ParseMode parses the flag spelling of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fenced", "fence", "code":
		return ModeFenced, nil
	case "all", "all-surfaces", "any":
		return ModeAllSurfaces, nil
	default:
		return ModeFenced, fmt.Errorf("unknown scan mode %q (want fenced or all)", s)
	}
}

// MarshalText implements encoding.TextMarshaler so modes read well in config files.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Authentication scheme labels.
const (
	AuthBearer     = "Bearer Token"
	AuthAPIKey     = "API Key"
	AuthBasic      = "Basic Auth"
	AuthClientCert = "Client Certificate"
)

// Sentinels used when a path carries no version or no meaningful segment.
const (
	NoVersion = "no-version"
	RootGroup = "root"
)

// Endpoint is one extracted (method, path) occurrence with derived metadata.
// Version, Group and Parameters are filled in by the classifier.
type Endpoint struct {
	Method          string   `json:"method" yaml:"method"`
	Path            string   `json:"path" yaml:"path"`
	SourceFile      string   `json:"file" yaml:"file"`
	Section         string   `json:"section" yaml:"section"`
	// Line is 1-based within the scanned text. For HTML documents that is
	// the normalized markdown, not the source file.
	Line            int      `json:"line" yaml:"line"`
	Surface         Surface  `json:"surface" yaml:"surface"`
	Version         string   `json:"version" yaml:"version"`
	Group           string   `json:"group" yaml:"group"`
	Parameters      []string `json:"parameters" yaml:"parameters"`
	QueryParameters []string `json:"query_parameters" yaml:"query_parameters"`
}

// Key returns the (method, path) identity used for deduplication.
func (e Endpoint) Key() string {
	return e.Method + " " + e.Path
}
