package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{
		Level:  level,
		Pretty: false,
		Output: buf,
	})
}

func TestNew(t *testing.T) {
	if New(DefaultConfig()) == nil {
		t.Fatal("New() returned nil")
	}
	if NewDefault() == nil {
		t.Fatal("NewDefault() returned nil")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != InfoLevel {
		t.Errorf("Level = %v, want InfoLevel", cfg.Level)
	}
	if !cfg.Pretty {
		t.Error("Pretty should be true by default")
	}
	if cfg.Output == nil {
		t.Error("Output should not be nil")
	}
}

func TestLevelFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		debug   bool
		want    Level
	}{
		{"neither", false, false, WarnLevel},
		{"verbose", true, false, InfoLevel},
		{"debug", false, true, DebugLevel},
		{"both", true, true, DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromFlags(tt.verbose, tt.debug, WarnLevel); got != tt.want {
				t.Errorf("LevelFromFlags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithComponent("collector")
	l.Info("test message")

	if !strings.Contains(buf.String(), "collector") {
		t.Errorf("Output should contain component: %s", buf.String())
	}
}

func TestLogger_WithFileAndField(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).
		WithFile("users-rest-api-design.md").
		WithField("mode", "fenced")
	l.Info("scanning")

	output := buf.String()
	for _, want := range []string{"users-rest-api-design.md", `"mode":"fenced"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %s: %s", want, output)
		}
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithError(errors.New("broken pipe"))
	l.Warn("write failed")

	if !strings.Contains(buf.String(), "broken pipe") {
		t.Errorf("Output should contain error: %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, WarnLevel)

	l.Debug("dbg-line")
	l.Info("info-line")
	l.Warn("warn-line")
	l.Error("error-line")

	output := buf.String()
	if strings.Contains(output, "dbg-line") || strings.Contains(output, "info-line") {
		t.Errorf("debug and info should be filtered: %s", output)
	}
	if !strings.Contains(output, "warn-line") || !strings.Contains(output, "error-line") {
		t.Errorf("warn and error should be present: %s", output)
	}
}

func TestLogger_FileEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel)

	l.FileEvent("orders-rest-api-design", 12, 3, 5*time.Millisecond)

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if data["file"] != "orders-rest-api-design" {
		t.Errorf("file = %v", data["file"])
	}
	if data["endpoints"] != float64(12) {
		t.Errorf("endpoints = %v, want 12", data["endpoints"])
	}
	if data["duplicates"] != float64(3) {
		t.Errorf("duplicates = %v, want 3", data["duplicates"])
	}
}

func TestLogger_OutputEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel)

	l.OutputEvent("json", "api-endpoints-data.json", 2048)

	output := buf.String()
	if !strings.Contains(output, "api-endpoints-data.json") || !strings.Contains(output, "2048") {
		t.Errorf("Output should contain path and size: %s", output)
	}
}

func TestLogger_ErrorEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ErrorLevel)

	l.ErrorEvent(errors.New("permission denied"), "secret-rest-api-design.md", "read")

	output := buf.String()
	for _, want := range []string{"secret-rest-api-design.md", "read", "permission denied"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q: %s", want, output)
		}
	}
}

func TestLogger_StatsEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel)

	l.StatsEvent(map[string]interface{}{
		"files_scanned": 4,
		"read_errors":   1,
	})

	if !strings.Contains(buf.String(), "files_scanned") {
		t.Errorf("Output should contain files_scanned: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, DebugLevel)

	l.Debug("should appear")
	l.SetLevel(ErrorLevel)
	l.Debug("should not appear")

	output := buf.String()
	if !strings.Contains(output, "should appear") {
		t.Error("First debug should appear")
	}
	if strings.Contains(output, "should not appear") {
		t.Error("Debug after SetLevel(ErrorLevel) should be filtered")
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing happens")
	l.FileEvent("a", 1, 0, time.Millisecond)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if err != nil {
				t.Fatalf("ParseLevel() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
