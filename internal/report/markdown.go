package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/PentesterFlow/apistats/internal/output"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/stats"
)

// Ranked list sizes in the markdown report.
const (
	markdownTopGroups      = 15
	markdownTopQueryParams = 15
	markdownTopPatterns    = 10
	markdownTopFileGroups  = 5
)

type mdWriter struct {
	b strings.Builder
}

func (w *mdWriter) line(format string, args ...interface{}) {
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *mdWriter) blank() {
	w.b.WriteByte('\n')
}

// Markdown renders the statistics report written to api-statistics-report.md.
func Markdown(exp *output.Export) string {
	w := &mdWriter{}
	s := exp.Statistics
	total := s.TotalEndpoints

	w.line("# API Endpoints Statistics Report")
	w.blank()
	w.line("> Generated: %s", exp.GeneratedAt.Format(time.RFC3339))
	w.line("> %s in %s", Found(total), plural(exp.Summary.FilesScanned, "file"))
	w.blank()

	w.line("## 📊 Overall Statistics")
	w.blank()
	w.line("| Metric | Value |")
	w.line("|--------|-------|")
	w.line("| **Total Endpoints** | %d |", total)
	w.line("| **Unique Path Patterns** | %d |", s.UniquePathPatterns)
	w.line("| **Total Files Scanned** | %d |", exp.Summary.FilesScanned)
	w.line("| **Authentication Types** | %s |", orDefault(strings.Join(s.AuthTypesObserved, ", "), "None detected"))
	w.blank()

	methods := s.ByMethod.Top(-1)
	maxMethod := maxCount(methods)
	w.line("## 🔄 Endpoints by HTTP Method")
	w.blank()
	w.line("| Method | Count | Percentage | Visualization |")
	w.line("|--------|-------|------------|---------------|")
	for _, e := range methods {
		w.line("| **%s** | %d | %s%% | `%s` |", e.Key, e.Count, Percent(e.Count, total), Bar(e.Count, maxMethod, MarkdownBarWidth))
	}
	w.blank()

	w.line("## 📦 Endpoints by API Group/Domain")
	w.blank()
	w.line("| Group | Count | Percentage |")
	w.line("|-------|-------|------------|")
	for _, e := range s.ByGroup.Top(markdownTopGroups) {
		w.line("| **%s** | %d | %s%% |", e.Key, e.Count, Percent(e.Count, total))
	}
	w.blank()

	w.line("## 🏷️ Endpoints by API Version")
	w.blank()
	w.line("| Version | Count | Percentage |")
	w.line("|---------|-------|------------|")
	for _, e := range versionsForDisplay(s.ByVersion) {
		label := "**" + e.Key + "**"
		if e.Key == parser.NoVersion {
			label = "*(no version)*"
		}
		w.line("| %s | %d | %s%% |", label, e.Count, Percent(e.Count, total))
	}
	w.blank()

	w.line("## 📁 Endpoints by File")
	w.blank()
	for _, fs := range filesBySize(s.ByFile) {
		w.line("### 📄 %s", fs.File)
		w.blank()
		w.line("- **Service:** %s", fs.Service)
		w.line("- **Total Endpoints:** %d", fs.Total)
		w.line("- **Methods:** %s", joinEntries(fs.ByMethod.Entries()))
		w.line("- **Top Groups:** %s", joinEntries(fs.ByGroup.Top(markdownTopFileGroups)))
		w.blank()
	}

	w.line("## 🔍 Most Common Query Parameters")
	w.blank()
	if s.QueryParameterFrequency.Len() > 0 {
		w.line("| Parameter | Occurrences |")
		w.line("|-----------|-------------|")
		for _, e := range s.QueryParameterFrequency.Top(markdownTopQueryParams) {
			w.line("| `%s` | %d |", e.Key, e.Count)
		}
	} else {
		w.line("*No query parameters found*")
	}
	w.blank()

	w.line("## 🔗 Most Common Path Patterns")
	w.blank()
	w.line("| Count | Pattern |")
	w.line("|-------|---------|")
	for _, e := range s.PatternFrequency.Top(markdownTopPatterns) {
		w.line("| %d | `%s` |", e.Count, e.Key)
	}
	w.blank()

	avgPerFile := Ratio(total, s.FilesWithEndpoints())

	w.line("## 📈 Summary")
	w.blank()
	w.line("| Metric | Value |")
	w.line("|--------|-------|")
	w.line("| **Average endpoints per file** | %s |", avgPerFile)
	w.line("| **Most common HTTP method** | %s |", mostCommon(s.ByMethod))
	w.line("| **Largest API group** | %s |", mostCommon(s.ByGroup))
	w.line("| **Total unique query parameters** | %d |", s.QueryParameterFrequency.Len())
	w.blank()

	if len(exp.FileErrors) > 0 {
		w.line("## ⚠️ Skipped Files")
		w.blank()
		for _, fe := range exp.FileErrors {
			w.line("- `%s`: %s", fe.File, fe.Error)
		}
		w.blank()
	}

	w.line("---")
	w.blank()
	w.line("# 🎯 Grand Total Summary")
	w.blank()
	writeTotals(w, exp)
	writeMaturity(w, exp.Maturity)

	w.blank()
	w.line("---")
	w.blank()
	w.line("> 📝 **Note:** This report provides a comprehensive analysis of your API structure.")
	w.line("> Use these metrics to identify areas for improvement and ensure API consistency.")

	return w.b.String()
}

func writeTotals(w *mdWriter, exp *output.Export) {
	s := exp.Statistics
	total := s.TotalEndpoints

	get := s.ByMethod.Get("GET")
	post := s.ByMethod.Get("POST")
	put := s.ByMethod.Get("PUT")
	patch := s.ByMethod.Get("PATCH")
	del := s.ByMethod.Get("DELETE")
	writes := post + put + patch

	w.line("## 📊 Endpoint Totals")
	w.blank()
	w.line("| Metric | Count |")
	w.line("|--------|-------|")
	w.line("| **Total Endpoints** | %d |", total)
	w.line("| **Total Files** | %d |", s.FilesWithEndpoints())
	w.line("| **Unique Path Patterns** | %d |", s.UniquePathPatterns)
	w.line("| **Total API Groups** | %d |", s.ByGroup.Len())
	w.line("| **Total API Versions** | %d |", s.ByVersion.Len())
	w.blank()

	w.line("## 🔧 Operation Breakdown")
	w.blank()
	w.line("| Operation Type | Count | Percentage |")
	w.line("|----------------|-------|------------|")
	w.line("| **READ** Operations (GET) | %d | %s%% |", get, Percent(get, total))
	w.line("| **WRITE** Operations (POST/PUT/PATCH) | %d | %s%% |", writes, Percent(writes, total))
	w.line("| **DELETE** Operations | %d | %s%% |", del, Percent(del, total))
	w.blank()

	rows := []stats.Entry{{Key: "GET", Count: get}, {Key: "POST", Count: post}, {Key: "PUT", Count: put}, {Key: "DELETE", Count: del}}
	if patch > 0 {
		rows = append(rows, stats.Entry{Key: "PATCH", Count: patch})
	}
	max := maxCount(rows)
	w.line("## 📊 Method Distribution")
	w.blank()
	w.line("```")
	for _, e := range rows {
		w.line("%-7s %4d %s", e.Key+":", e.Count, strings.Repeat(barFull, barLength(e.Count, max, DistributionBarWidth)))
	}
	w.line("```")
	w.blank()

	w.line("## 📐 Complexity Metrics")
	w.blank()
	w.line("| Metric | Value |")
	w.line("|--------|-------|")
	w.line("| **Average Endpoints per File** | %s |", Ratio(total, s.FilesWithEndpoints()))
	w.line("| **Average Endpoints per Group** | %s |", Ratio(total, s.ByGroup.Len()))
	w.line("| **Total Query Parameter Uses** | %d |", s.QueryParameterFrequency.Total())
	w.line("| **Unique Query Parameters** | %d |", s.QueryParameterFrequency.Len())
	w.line("| **Authentication Methods** | %d |", len(s.AuthTypesObserved))
	w.blank()
}

func writeMaturity(w *mdWriter, m stats.MaturityScore) {
	w.line("## 🏆 API Maturity Score")
	w.blank()
	w.line("### Overall Score: **%d/100**", m.Total)
	w.blank()
	w.line("| Category | Score | Status |")
	w.line("|----------|-------|--------|")
	w.line("| **Versioning** | %d/%d | %s |", m.Versioning, stats.MaxVersioning, status(m.Versioning >= stats.MaxVersioning, "✅ Excellent", "⚠️ Basic"))
	w.line("| **Authentication** | %d/%d | %s |", m.Authentication, stats.MaxAuthentication, status(m.Authentication >= stats.MaxAuthentication, "✅ Implemented", "❌ Missing"))
	w.line("| **Query Parameters** | %d/%d | %s |", m.QueryParameters, stats.MaxQueryParameters, status(m.QueryParameters >= stats.MaxQueryParameters, "✅ Rich", "⚠️ Limited"))

	crud := "❌ Minimal"
	switch {
	case m.CRUD >= stats.MaxCRUD:
		crud = "✅ Complete"
	case m.CRUD >= stats.MaxCRUD/2:
		crud = "⚠️ Partial"
	}
	w.line("| **CRUD Coverage** | %d/%d | %s |", m.CRUD, stats.MaxCRUD, crud)
}

func status(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
