package collector

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	apierrors "github.com/PentesterFlow/apistats/internal/errors"
	"github.com/PentesterFlow/apistats/internal/logger"
	"github.com/PentesterFlow/apistats/internal/output"
	"github.com/PentesterFlow/apistats/internal/parser"
	"github.com/PentesterFlow/apistats/internal/state"
)

const usersDoc = "# User Management API\n\n" +
	"Authorization: Bearer <token>\n\n" +
	"## Users\n" +
	"```http\n" +
	"GET /api/v1/users?page=1\n" +
	"POST /api/v1/users\n" +
	"GET /api/v1/users\n" +
	"GET /api/v1/users/{id}\n" +
	"```\n" +
	"GET /api/v1/prose-only\n"

const ordersDoc = `<html><body><h1>Orders API</h1>
<pre><code class="language-http">GET /api/v2/orders
POST /api/v2/orders</code></pre>
<p>DELETE /api/v2/orders/{id}</p></body></html>`

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func writeDocs(t *testing.T, dir string, docs map[string]string) {
	t.Helper()
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func sampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{
		"user-management-rest-api-design.md": usersDoc,
		"orders-rest-api-design.html":        ordersDoc,
		"README.md":                          "GET /api/v1/not-selected\n",
	})
	return dir
}

// newTestCollector writes every output under out.
func newTestCollector(t *testing.T, dir, out string, stdout *bytes.Buffer, opts ...Option) *Collector {
	t.Helper()
	base := []Option{
		WithDirectory(dir),
		WithOutputs(filepath.Join(out, "report.md"), filepath.Join(out, "data.json")),
		WithLogger(logger.Nop()),
		WithClock(func() time.Time { return fixedTime }),
	}
	if stdout != nil {
		base = append(base, WithStdout(stdout))
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// =============================================================================
// New Tests
// =============================================================================

func TestNew(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Metrics() == nil {
		t.Error("Metrics() should not be nil")
	}
	if c.Config().Tool != "apistats" {
		t.Errorf("Config().Tool = %q", c.Config().Tool)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"bad style", []Option{WithStyle("pdf")}},
		{"empty directory", []Option{WithDirectory("")}},
		{"bad yaml output", []Option{WithYAMLOutput("out.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if err == nil {
				t.Fatal("New() should fail")
			}
			if !apierrors.IsFatal(err) {
				t.Error("configuration errors should be fatal")
			}
		})
	}
}

func TestOptions(t *testing.T) {
	c, err := New(
		WithConfig(DesignDocsConfig()),
		WithDirectory("docs"),
		WithMode(parser.ModeFenced),
		WithSuffixes("-design.md"),
		WithIncludePatterns("^a"),
		WithExcludePatterns("^b"),
		WithYAMLOutput("out.yaml"),
		WithHistoryFile("runs.db"),
		WithVerbose(true),
		WithDebug(true),
		WithClock(nil),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	cfg := c.Config()
	if cfg.Tool != "designdocs" {
		t.Errorf("Tool = %q, want designdocs", cfg.Tool)
	}
	if cfg.Directory != "docs" {
		t.Errorf("Directory = %q", cfg.Directory)
	}
	if cfg.Mode != parser.ModeFenced {
		t.Errorf("Mode = %v", cfg.Mode)
	}
	if !reflect.DeepEqual(cfg.Scope.Suffixes, []string{"-design.md"}) {
		t.Errorf("Suffixes = %v", cfg.Scope.Suffixes)
	}
	if !reflect.DeepEqual(cfg.Scope.IncludePatterns, []string{"^a"}) {
		t.Errorf("IncludePatterns = %v", cfg.Scope.IncludePatterns)
	}
	if !reflect.DeepEqual(cfg.Scope.ExcludePatterns, []string{"^b"}) {
		t.Errorf("ExcludePatterns = %v", cfg.Scope.ExcludePatterns)
	}
	if cfg.Output.YAMLFile != "out.yaml" || cfg.History.Path != "runs.db" {
		t.Errorf("Output = %+v, History = %+v", cfg.Output, cfg.History)
	}
	if !cfg.Verbose || !cfg.Debug {
		t.Error("Verbose and Debug should be set")
	}
	if c.now == nil {
		t.Error("WithClock(nil) should keep the default clock")
	}
}

// =============================================================================
// Run Tests
// =============================================================================

func TestCollector_Run(t *testing.T) {
	dir := sampleDir(t)
	out := t.TempDir()
	var stdout bytes.Buffer
	history := state.NewMemoryHistory()

	c := newTestCollector(t, dir, out, &stdout,
		WithYAMLOutput(filepath.Join(out, "data.yaml")),
		WithHistory(history),
	)

	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Empty() {
		t.Fatal("Run() found no documents")
	}
	if len(result.Files) != 2 {
		t.Fatalf("Files = %v, want 2 design documents", result.Files)
	}

	exp := result.Export
	var keys []string
	for _, ep := range exp.Endpoints {
		keys = append(keys, ep.SourceFile+" "+ep.Key())
	}
	want := []string{
		"orders-rest-api-design GET /api/v2/orders",
		"orders-rest-api-design POST /api/v2/orders",
		"user-management-rest-api-design GET /api/v1/users",
		"user-management-rest-api-design POST /api/v1/users",
		"user-management-rest-api-design GET /api/v1/users/{id}",
	}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("endpoints = %v\nwant %v", keys, want)
	}

	if exp.Endpoints[0].Version != "v2" || exp.Endpoints[0].Group != "orders" {
		t.Errorf("orders endpoint not classified: %+v", exp.Endpoints[0])
	}
	if !reflect.DeepEqual(exp.Endpoints[4].Parameters, []string{"id"}) {
		t.Errorf("Parameters = %v, want [id]", exp.Endpoints[4].Parameters)
	}
	if exp.Summary.TotalEndpoints != 5 || exp.Summary.FilesScanned != 2 || exp.Summary.Services != 2 {
		t.Errorf("Summary = %+v", exp.Summary)
	}
	if !reflect.DeepEqual(exp.Statistics.AuthTypesObserved, []string{parser.AuthBearer}) {
		t.Errorf("AuthTypesObserved = %v", exp.Statistics.AuthTypesObserved)
	}
	if exp.Statistics.QueryParameterFrequency.Get("page") != 1 {
		t.Error("query parameter page should be counted")
	}
	if !exp.GeneratedAt.Equal(fixedTime) || exp.Tool != "apistats" || exp.Mode != parser.ModeFenced {
		t.Errorf("export header = %v %q %v", exp.GeneratedAt, exp.Tool, exp.Mode)
	}

	if exp.Metrics == nil {
		t.Fatal("export should carry metrics")
	}
	if exp.Metrics.EndpointsMatched != 6 || exp.Metrics.DuplicatesDropped != 1 {
		t.Errorf("metrics matched = %d, duplicates = %d", exp.Metrics.EndpointsMatched, exp.Metrics.DuplicatesDropped)
	}
	if exp.Metrics.FilesScanned != 2 || exp.Metrics.FilesDiscovered != 2 {
		t.Errorf("metrics files = %+v", exp.Metrics)
	}

	if !strings.Contains(stdout.String(), "5 endpoints found in 2 files") {
		t.Errorf("stdout should carry the report:\n%s", stdout.String())
	}

	wantOutputs := []string{
		filepath.Join(out, "report.md"),
		filepath.Join(out, "data.json"),
		filepath.Join(out, "data.yaml"),
	}
	if !reflect.DeepEqual(result.Outputs, wantOutputs) {
		t.Errorf("Outputs = %v", result.Outputs)
	}

	md, err := os.ReadFile(wantOutputs[0])
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if string(md) != result.Report.Display {
		t.Error("report file differs from the rendered report")
	}

	for _, path := range wantOutputs[1:] {
		got, err := output.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		if !reflect.DeepEqual(got.Endpoints, exp.Endpoints) {
			t.Errorf("%s endpoints differ", path)
		}
		if !reflect.DeepEqual(got.Statistics, exp.Statistics) {
			t.Errorf("%s statistics differ", path)
		}
	}

	runs, _ := history.List()
	if len(runs) != 1 {
		t.Fatalf("history has %d runs, want 1", len(runs))
	}
	if runs[0].Endpoints != 5 || runs[0].ByMethod["GET"] != 3 {
		t.Errorf("run = %+v", runs[0])
	}
	if result.Run == nil || result.Run.Tool != "apistats" {
		t.Errorf("Result.Run = %+v", result.Run)
	}
}

func TestCollector_AllSurfaces(t *testing.T) {
	dir := sampleDir(t)
	c := newTestCollector(t, dir, t.TempDir(), nil, WithMode(parser.ModeAllSurfaces))

	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Adds the prose endpoint in each document.
	if got := result.Export.Summary.TotalEndpoints; got != 7 {
		t.Errorf("TotalEndpoints = %d, want 7", got)
	}
}

func TestCollector_DuplicatesAcrossDocumentsKept(t *testing.T) {
	dir := t.TempDir()
	doc := "```\nGET /api/v1/health\nGET /api/v1/health\n```\n"
	writeDocs(t, dir, map[string]string{
		"a-rest-api-design.md": doc,
		"b-rest-api-design.md": doc,
	})

	c := newTestCollector(t, dir, t.TempDir(), nil)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Export.Summary.TotalEndpoints; got != 2 {
		t.Errorf("TotalEndpoints = %d, want 2", got)
	}
	if got := result.Export.Statistics.ByMethod.Get("GET"); got != 2 {
		t.Errorf("GET = %d, want 2", got)
	}
}

func TestCollector_SameStemDifferentFormats(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{
		"users-rest-api-design.md":   "```\nGET /api/v1/users\n```\n",
		"users-rest-api-design.html": "<pre><code>GET /api/v1/users</code></pre>",
	})

	c := newTestCollector(t, dir, t.TempDir(), nil)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	exp := result.Export
	if exp.Summary.TotalEndpoints != 2 {
		t.Errorf("TotalEndpoints = %d, want 2", exp.Summary.TotalEndpoints)
	}
	if exp.Metrics.DuplicatesDropped != 0 {
		t.Errorf("DuplicatesDropped = %d, want 0", exp.Metrics.DuplicatesDropped)
	}

	var files []string
	for _, fs := range exp.Statistics.ByFile {
		files = append(files, fs.File)
	}
	want := []string{"users-rest-api-design.html", "users-rest-api-design.md"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ByFile = %v, want %v", files, want)
	}
}

func TestCollector_NoDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{"notes.md": "GET /api/v1/users\n"})
	out := t.TempDir()
	var stdout bytes.Buffer

	c := newTestCollector(t, dir, out, &stdout)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Empty() {
		t.Error("Empty() should be true")
	}
	if !strings.Contains(stdout.String(), "No API design documents found") {
		t.Errorf("stdout = %q", stdout.String())
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("no outputs should be written, found %d", len(entries))
	}
}

func TestCollector_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeDocs(t, dir, map[string]string{
		"empty-rest-api-design.md": "# Nothing here\n\nJust prose.\n",
	})
	out := t.TempDir()
	var stdout bytes.Buffer

	c := newTestCollector(t, dir, out, &stdout)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Export.Summary.TotalEndpoints != 0 {
		t.Errorf("TotalEndpoints = %d, want 0", result.Export.Summary.TotalEndpoints)
	}
	if !strings.Contains(stdout.String(), "0 endpoints found") {
		t.Errorf("stdout should state 0 endpoints found:\n%s", stdout.String())
	}
	if len(result.Outputs) != 2 {
		t.Errorf("Outputs = %v, want report and data", result.Outputs)
	}
}

func TestCollector_UnreadableDocumentSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	dir := sampleDir(t)
	locked := filepath.Join(dir, "locked-rest-api-design.md")
	writeDocs(t, dir, map[string]string{"locked-rest-api-design.md": "```\nGET /x\n```\n"})
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(locked, 0644)

	c := newTestCollector(t, dir, t.TempDir(), nil)
	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	exp := result.Export
	if exp.Summary.TotalEndpoints != 5 {
		t.Errorf("TotalEndpoints = %d, want 5", exp.Summary.TotalEndpoints)
	}
	if len(exp.FileErrors) != 1 {
		t.Fatalf("FileErrors = %v, want 1", exp.FileErrors)
	}
	fe := exp.FileErrors[0]
	if fe.File != "locked-rest-api-design.md" || fe.Kind != "read" || fe.Error != "permission denied" {
		t.Errorf("FileError = %+v", fe)
	}
	if exp.Metrics.ReadErrors != 1 {
		t.Errorf("ReadErrors = %d, want 1", exp.Metrics.ReadErrors)
	}
}

func TestCollector_Cancelled(t *testing.T) {
	dir := sampleDir(t)
	out := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCollector(t, dir, out, nil)
	_, err := c.Run(ctx)
	if err == nil {
		t.Fatal("Run() should fail when cancelled")
	}
	if apierrors.GetKind(err) != apierrors.Cancelled {
		t.Errorf("error kind = %v, want cancelled", apierrors.GetKind(err))
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Error("cancelled run should not write outputs")
	}
}

func TestCollector_MissingDirectory(t *testing.T) {
	c := newTestCollector(t, filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	_, err := c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail for a missing directory")
	}
	if apierrors.GetKind(err) != apierrors.Scope {
		t.Errorf("error kind = %v, want scope", apierrors.GetKind(err))
	}
}

func TestCollector_WriteFailure(t *testing.T) {
	dir := sampleDir(t)
	out := t.TempDir()
	blocker := filepath.Join(out, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	c := newTestCollector(t, dir, out, nil,
		WithOutputs(filepath.Join(blocker, "report.md"), ""),
	)
	_, err := c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the report cannot be written")
	}
	if apierrors.GetKind(err) != apierrors.Write {
		t.Errorf("error kind = %v, want write", apierrors.GetKind(err))
	}
	if !apierrors.IsFatal(err) {
		t.Error("write errors should be fatal")
	}
}

func TestCollector_HistoryFile(t *testing.T) {
	dir := sampleDir(t)
	db := filepath.Join(t.TempDir(), "history", "runs.db")

	for i := 0; i < 2; i++ {
		c := newTestCollector(t, dir, t.TempDir(), nil, WithHistoryFile(db))
		if _, err := c.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error = %v", i, err)
		}
	}

	runs, err := ListHistory(db)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListHistory() = %d runs, want 2", len(runs))
	}
	if runs[0].ID >= runs[1].ID {
		t.Errorf("runs out of order: %d, %d", runs[0].ID, runs[1].ID)
	}
	if runs[1].Files != 2 || runs[1].UniquePatterns == 0 {
		t.Errorf("run = %+v", runs[1])
	}
}

func TestListHistory_Missing(t *testing.T) {
	_, err := ListHistory(filepath.Join(t.TempDir(), "none.db"))
	if err == nil {
		t.Fatal("ListHistory() on a missing file should fail")
	}
	if apierrors.GetKind(err) != apierrors.Read {
		t.Errorf("error kind = %v, want read", apierrors.GetKind(err))
	}
}

func TestCollector_ConsoleStyle(t *testing.T) {
	dir := sampleDir(t)
	data := filepath.Join(t.TempDir(), DefaultDesignDocsFile)
	var stdout bytes.Buffer

	c, err := New(
		WithConfig(DesignDocsConfig()),
		WithDirectory(dir),
		WithOutputs("", data),
		WithLogger(logger.Nop()),
		WithStdout(&stdout),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "DESIGN DOCUMENTATION ANALYSIS REPORT") {
		t.Errorf("console report not printed:\n%s", stdout.String())
	}
	if result.Export.Tool != "designdocs" || result.Export.Mode != parser.ModeAllSurfaces {
		t.Errorf("export header = %q %v", result.Export.Tool, result.Export.Mode)
	}
	if !reflect.DeepEqual(result.Outputs, []string{data}) {
		t.Errorf("Outputs = %v, want only the data file", result.Outputs)
	}
}

func TestNewRun(t *testing.T) {
	exp := &output.Export{Tool: "apistats", GeneratedAt: fixedTime}
	exp.Statistics.ByMethod.Add("GET", 2)
	exp.Summary.TotalEndpoints = 2

	run := NewRun(exp)
	if run.Tool != "apistats" || run.Endpoints != 2 || run.ByMethod["GET"] != 2 {
		t.Errorf("NewRun() = %+v", run)
	}
	if run.AuthTypes == nil {
		t.Error("AuthTypes should not be nil")
	}
}
