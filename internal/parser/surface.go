package parser

import (
	"strings"
)

// match is a single method+path hit on one line.
type match struct {
	method  string
	path    string
	query   []string
	surface Surface
}

// matchLine runs the tokenizer over one trimmed line. Forms are tried in a
// fixed order (table, leading, code spans, bold) and a pair that several
// forms agree on is returned once.
func matchLine(line string) []match {
	if !containsMethodHint(line) {
		return nil
	}

	var out []match
	seen := make(map[string]struct{})
	add := func(m match) {
		key := m.method + " " + m.path
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}

	if strings.HasPrefix(line, "|") {
		for _, m := range matchTableRow(line) {
			add(m)
		}
	} else if m, ok := matchLeading(line); ok {
		add(m)
	}
	for _, m := range matchCodeSpans(line) {
		add(m)
	}
	for _, m := range matchBold(line) {
		add(m)
	}

	return out
}

// containsMethodHint is a cheap prefilter: every form needs a '/' somewhere.
func containsMethodHint(line string) bool {
	return strings.IndexByte(line, '/') >= 0
}

// matchLeading handles `METHOD /path`, bullets (`-`, `•`, `* `) and a
// bold method (`**METHOD** /path`) at the start of the line.
func matchLeading(line string) (match, bool) {
	rest := line
	surface := SurfaceBare

	switch {
	case strings.HasPrefix(rest, "**"):
	case strings.HasPrefix(rest, "-"):
		rest = strings.TrimLeft(rest[1:], " \t")
		surface = SurfaceBullet
	case strings.HasPrefix(rest, "•"):
		rest = strings.TrimLeft(rest[len("•"):], " \t")
		surface = SurfaceBullet
	case strings.HasPrefix(rest, "* "):
		rest = strings.TrimLeft(rest[2:], " \t")
		surface = SurfaceBullet
	}

	var token string
	if strings.HasPrefix(rest, "**") {
		end := strings.Index(rest[2:], "**")
		if end < 0 {
			return match{}, false
		}
		token = rest[2 : 2+end]
		rest = rest[2+end+2:]
		if surface == SurfaceBare {
			surface = SurfaceBold
		}
	} else {
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			return match{}, false
		}
		token = rest[:end]
		rest = rest[end:]
	}

	return methodAndPath(token, rest, surface)
}

// matchCodeSpans handles inline code spans anywhere on the line.
func matchCodeSpans(line string) []match {
	var out []match
	for {
		start := strings.IndexByte(line, '`')
		if start < 0 {
			break
		}
		end := strings.IndexByte(line[start+1:], '`')
		if end < 0 {
			break
		}
		span := strings.TrimSpace(line[start+1 : start+1+end])
		line = line[start+1+end+1:]

		sep := strings.IndexAny(span, " \t")
		if sep < 0 {
			continue
		}
		if m, ok := methodAndPath(span[:sep], span[sep:], SurfaceCode); ok {
			out = append(out, m)
		}
	}
	return out
}

// matchBold handles `**METHOD** /path` anywhere on the line.
func matchBold(line string) []match {
	var out []match
	for {
		start := strings.Index(line, "**")
		if start < 0 {
			break
		}
		end := strings.Index(line[start+2:], "**")
		if end < 0 {
			break
		}
		token := line[start+2 : start+2+end]
		line = line[start+2+end+2:]

		if m, ok := methodAndPath(token, line, SurfaceBold); ok {
			out = append(out, m)
		}
	}
	return out
}

// matchTableRow handles adjacent `| METHOD | /path |` cells.
func matchTableRow(line string) []match {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	var out []match
	for i := 0; i+1 < len(cells); i++ {
		method, ok := NormalizeMethod(stripDecoration(cells[i]))
		if !ok {
			continue
		}
		path, query, ok := readPath(stripDecoration(cells[i+1]))
		if !ok {
			continue
		}
		out = append(out, match{method: method, path: path, query: query, surface: SurfaceTable})
	}
	return out
}

// methodAndPath validates token as a method and reads the path that must
// follow it after at least one blank.
func methodAndPath(token, rest string, surface Surface) (match, bool) {
	method, ok := NormalizeMethod(strings.TrimSpace(token))
	if !ok {
		return match{}, false
	}
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return match{}, false
	}
	path, query, ok := readPath(strings.TrimLeft(rest, " \t"))
	if !ok {
		return match{}, false
	}
	return match{method: method, path: path, query: query, surface: surface}, true
}

// readPath reads a path token from the start of s. The token runs to the
// first blank or markdown delimiter and keeps every other character, minus
// trailing sentence punctuation. An optional opening backtick is skipped, a
// `?` starts a query string whose names are returned.
func readPath(s string) (string, []string, bool) {
	s = strings.TrimPrefix(s, "`")
	if !strings.HasPrefix(s, "/") {
		return "", nil, false
	}

	end := 0
	for end < len(s) && !endsPath(s[end]) {
		end++
	}
	path := strings.TrimRight(s[:end], ".,:;")

	var query []string
	if end < len(s) && s[end] == '?' {
		rest := s[end+1:]
		stop := strings.IndexAny(rest, " \t`|)")
		if stop >= 0 {
			rest = rest[:stop]
		}
		query = queryStringNames(rest)
	}

	if len(path) < 2 || path[0] != '/' {
		return "", nil, false
	}
	return path, query, true
}

func endsPath(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '?', '`', '|', ')', ']', '"', '\'', '<':
		return true
	}
	return false
}

func stripDecoration(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, "*`")
	return strings.TrimSpace(cell)
}
