// Package parser extracts HTTP endpoints from API design documents.
//
// A Scanner walks a document once, line by line, tracking whether it is
// inside a fenced code block and which heading it is under. Every line is
// also checked for authentication header examples.
package parser

import (
	"strings"
)

// Scanner reads endpoints from one document. It is single-pass and cannot
// be restarted; create a new Scanner to read the document again.
type Scanner struct {
	name  string
	lines []string
	mode  Mode

	pos       int
	inFence   bool
	fenceLang string
	section   string

	pending []Endpoint
	current Endpoint
	auth    AuthSet
}

// NewScanner creates a scanner over content. name identifies the document
// in the emitted endpoints.
func NewScanner(name, content string, mode Mode) *Scanner {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return &Scanner{
		name:  name,
		lines: strings.Split(content, "\n"),
		mode:  mode,
	}
}

// Scan advances to the next endpoint. It returns false once the document
// is exhausted.
func (s *Scanner) Scan() bool {
	for len(s.pending) == 0 {
		if s.pos >= len(s.lines) {
			return false
		}
		s.scanLine(s.pos)
		s.pos++
	}
	s.current = s.pending[0]
	s.pending = s.pending[1:]
	return true
}

// Endpoint returns the endpoint produced by the last call to Scan.
func (s *Scanner) Endpoint() Endpoint {
	return s.current
}

// AuthSchemes returns the authentication labels seen so far, in first-seen
// order. After Scan returns false it covers the whole document.
func (s *Scanner) AuthSchemes() []string {
	return s.auth.Labels()
}

// Lines returns the number of lines in the document.
func (s *Scanner) Lines() int {
	return len(s.lines)
}

func (s *Scanner) scanLine(i int) {
	line := strings.TrimSpace(s.lines[i])
	if line == "" {
		return
	}

	s.auth.Add(DetectAuth(line)...)

	if isFence(line) {
		if s.inFence {
			s.inFence = false
			s.fenceLang = ""
		} else {
			s.inFence = true
			s.fenceLang = fenceLanguage(line)
		}
		return
	}

	if !s.inFence && strings.HasPrefix(line, "#") {
		s.section = strings.TrimSpace(strings.TrimLeft(line, "#"))
	}

	if !s.eligible() {
		return
	}

	matches := matchLine(line)
	if len(matches) == 0 {
		return
	}

	block := queryBlock(s.lines, i)
	for _, m := range matches {
		s.pending = append(s.pending, Endpoint{
			Method:          m.method,
			Path:            m.path,
			SourceFile:      s.name,
			Section:         s.section,
			Line:            i + 1,
			Surface:         m.surface,
			QueryParameters: mergeNames(m.query, block),
		})
	}
}

// eligible reports whether the current line may carry endpoints.
func (s *Scanner) eligible() bool {
	if s.mode == ModeAllSurfaces {
		return true
	}
	return s.inFence && (s.fenceLang == "" || s.fenceLang == "http")
}

func isFence(line string) bool {
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~")
}

// fenceLanguage returns the lower-cased first word of the info string.
func fenceLanguage(line string) string {
	info := strings.TrimSpace(strings.TrimLeft(line, "`~"))
	if fields := strings.Fields(info); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return ""
}

// Extract scans content to completion and returns its endpoints and the
// authentication labels it mentions.
func Extract(name, content string, mode Mode) ([]Endpoint, []string) {
	s := NewScanner(name, content, mode)
	var endpoints []Endpoint
	for s.Scan() {
		endpoints = append(endpoints, s.Endpoint())
	}
	return endpoints, s.AuthSchemes()
}
