// Package report renders run results for people: a markdown document for
// the stats collector and a plain console report for the design-doc
// analyzer.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/PentesterFlow/apistats/internal/output"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/stats"
)

// Style selects the display report layout.
type Style string

const (
	StyleMarkdown Style = "markdown"
	StyleConsole  Style = "console"
)

// Bar widths.
const (
	MarkdownBarWidth     = 20
	ConsoleBarWidth      = 30
	DistributionBarWidth = 50
)

const (
	barFull  = "█"
	barEmpty = "░"
)

// ParseStyle parses a style name.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleMarkdown, "md":
		return StyleMarkdown, nil
	case StyleConsole, "text":
		return StyleConsole, nil
	default:
		return "", fmt.Errorf("unknown report style %q", s)
	}
}

// Rendered is the pair of outputs produced for a run.
type Rendered struct {
	Display string
	Payload *output.Export
}

// Render produces the display report for exp in the given style. The export
// itself is passed through as the payload.
func Render(exp *output.Export, style Style) (Rendered, error) {
	var display string
	switch style {
	case StyleMarkdown:
		display = Markdown(exp)
	case StyleConsole:
		display = Console(exp)
	default:
		return Rendered{}, fmt.Errorf("unknown report style %q", style)
	}
	return Rendered{Display: display, Payload: exp}, nil
}

// Percent formats count/total*100 with one decimal. A zero total yields "0".
func Percent(count, total int) string {
	if total <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(count)/float64(total)*100)
}

// Ratio formats a/b with one decimal. A zero divisor yields "0".
func Ratio(a, b int) string {
	if b <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(a)/float64(b))
}

// Bar draws count against max as a bar of exactly width cells.
func Bar(count, max, width int) string {
	filled := barLength(count, max, width)
	return strings.Repeat(barFull, filled) + strings.Repeat(barEmpty, width-filled)
}

func barLength(count, max, width int) int {
	if max <= 0 || count <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(float64(count) / float64(max) * float64(width)))
	if n > width {
		n = width
	}
	return n
}

// Found is the headline sentence reporting the endpoint count.
func Found(endpoints int) string {
	return plural(endpoints, "endpoint") + " found"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// maxCount returns the highest count among entries.
func maxCount(entries []stats.Entry) int {
	max := 0
	for _, e := range entries {
		if e.Count > max {
			max = e.Count
		}
	}
	return max
}

// versionsForDisplay orders versions by count, with no-version last.
func versionsForDisplay(t stats.Tally) []stats.Entry {
	entries := t.Top(-1)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key != parser.NoVersion && entries[j].Key == parser.NoVersion
	})
	return entries
}

// filesBySize orders per-document breakdowns by endpoint count.
func filesBySize(files []stats.FileStats) []stats.FileStats {
	out := make([]stats.FileStats, len(files))
	copy(out, files)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

func joinEntries(entries []stats.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s (%d)", e.Key, e.Count)
	}
	return strings.Join(parts, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func mostCommon(t stats.Tally) string {
	e, ok := stats.MostCommon(t)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s)", e.Key, plural(e.Count, "endpoint"))
}
