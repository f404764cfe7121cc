package report

import (
	"fmt"
	"strings"

	"github.com/PentesterFlow/apistats/internal/output"
	"github.com/PentesterFlow/apistats/internal/parser"
)

const (
	consoleTopPatterns = 10
	consoleSamples     = 5
)

// consoleMethods are always listed, even at zero. Other methods are listed
// only when present.
var consoleMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

var (
	heavyRule = strings.Repeat("━", 80)
	lightRule = strings.Repeat("─", 40)
	wideRule  = strings.Repeat("─", 80)
)

// Console renders the design-doc analysis report printed to stdout.
func Console(exp *output.Export) string {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	s := exp.Statistics
	total := s.TotalEndpoints

	line("%s", heavyRule)
	line("📊 DESIGN DOCUMENTATION ANALYSIS REPORT")
	line("%s", heavyRule)
	line("")

	line("📈 OVERALL STATISTICS")
	line("%s", lightRule)
	line("Total Design Documents: %d", exp.Summary.FilesScanned)
	line("Total API Services: %d", s.FilesWithEndpoints())
	line("Total Endpoints: %d", total)
	line("%s", Found(total))
	line("")

	methods := append([]string{}, consoleMethods...)
	for _, m := range parser.Methods {
		if !contains(methods, m) && s.ByMethod.Get(m) > 0 {
			methods = append(methods, m)
		}
	}
	max := 0
	for _, m := range methods {
		if c := s.ByMethod.Get(m); c > max {
			max = c
		}
	}

	line("🔄 HTTP METHOD DISTRIBUTION")
	line("%s", lightRule)
	for _, m := range methods {
		count := s.ByMethod.Get(m)
		line("%-7s %s %d (%s%%)", m, Bar(count, max, ConsoleBarWidth), count, Percent(count, total))
	}
	line("")

	line("🎯 SERVICE BREAKDOWN")
	line("%s", wideRule)
	for _, fs := range filesBySize(s.ByFile) {
		line("")
		line("📦 %s", fs.Service)
		line("   File: %s", fs.File)
		line("   Total Endpoints: %d", fs.Total)
		line("   Resources: %s", orDefault(strings.Join(fs.Resources, ", "), "N/A"))

		counts := make([]string, len(consoleMethods))
		for i, m := range consoleMethods {
			counts[i] = fmt.Sprintf("%s(%d)", m, fs.ByMethod.Get(m))
		}
		line("   Methods: %s", strings.Join(counts, " "))

		samples := endpointsOf(exp.Endpoints, fs.File)
		if len(samples) > 0 {
			line("   Sample Endpoints:")
			for i, ep := range samples {
				if i == consoleSamples {
					line("     ... and %d more", len(samples)-consoleSamples)
					break
				}
				line("     • %s %s", ep.Method, ep.Path)
			}
		}
	}
	line("")

	line("🔍 COMMON ENDPOINT PATTERNS")
	line("%s", lightRule)
	for _, e := range s.PatternFrequency.Top(consoleTopPatterns) {
		line("%dx  %s", e.Count, e.Key)
	}
	line("")

	line("📚 RESOURCE TYPES")
	line("%s", lightRule)
	line("%s", orDefault(strings.Join(s.ResourceTypes, ", "), "N/A"))
	line("")

	if len(exp.FileErrors) > 0 {
		line("⚠️  SKIPPED FILES")
		line("%s", lightRule)
		for _, fe := range exp.FileErrors {
			line("%s: %s", fe.File, fe.Error)
		}
		line("")
	}

	line("%s", heavyRule)
	line("✅ SUMMARY")
	line("%s", lightRule)
	line("Average endpoints per service: %s", Ratio(total, s.FilesWithEndpoints()))
	line("Most common method: %s", mostCommonKey(exp))
	line("Total unique resources: %d", len(s.ResourceTypes))
	line("%s", heavyRule)

	return b.String()
}

func mostCommonKey(exp *output.Export) string {
	top := exp.Statistics.ByMethod.Top(1)
	if len(top) == 0 {
		return "N/A"
	}
	return top[0].Key
}

func endpointsOf(endpoints []parser.Endpoint, file string) []parser.Endpoint {
	var out []parser.Endpoint
	for _, ep := range endpoints {
		if ep.SourceFile == file {
			out = append(out, ep)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
