package parser

import (
	"regexp"
	"strings"
)

const (
	queryHeader = "Query Parameters:"
	// queryLookahead bounds how far past the header a parameter list may run.
	queryLookahead = 18
)

var (
	queryBulletPattern = regexp.MustCompile("^-\\s*`?(\\w+)`?\\s*[:(]")
	queryNamePattern   = regexp.MustCompile(`^\w+$`)
)

// queryBlock collects parameter names from a "Query Parameters:" list that
// directly follows the endpoint on line i. Blank lines are skipped; the
// first other non-bullet line ends the list.
func queryBlock(lines []string, i int) []string {
	if i+1 >= len(lines) || !strings.Contains(lines[i+1], queryHeader) {
		return nil
	}

	var names []string
	last := i + 2 + queryLookahead
	if last > len(lines) {
		last = len(lines)
	}
	for j := i + 2; j < last; j++ {
		line := strings.TrimSpace(lines[j])
		if strings.HasPrefix(line, "-") {
			if m := queryBulletPattern.FindStringSubmatch(line); m != nil {
				names = append(names, m[1])
			}
			continue
		}
		if line != "" {
			break
		}
	}
	return names
}

// queryStringNames returns the parameter names of a raw query string
// (`page=1&limit=20`), skipping anything that is not a plain identifier.
func queryStringNames(raw string) []string {
	var names []string
	for _, pair := range strings.FieldsFunc(raw, func(r rune) bool { return r == '&' || r == ';' }) {
		name := pair
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			name = pair[:eq]
		}
		if queryNamePattern.MatchString(name) {
			names = append(names, name)
		}
	}
	return names
}

// mergeNames concatenates name lists keeping the first occurrence of each.
func mergeNames(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, name := range list {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
