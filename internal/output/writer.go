// Package output writes and reads the structured export of a run.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Writer defines the interface for export writers.
type Writer interface {
	// WriteExport writes the complete export
	WriteExport(exp *Export) error

	// Flush flushes any buffered output
	Flush() error

	// Close closes the writer
	Close() error
}

// Config holds output configuration.
type Config struct {
	Format Format
	Pretty bool
}

// NewWriter creates a new export writer.
func NewWriter(w io.Writer, config Config) Writer {
	switch config.Format {
	case FormatYAML:
		return NewYAMLWriter(w)
	default:
		return NewJSONWriter(w, config.Pretty)
	}
}

// WriteFile writes exp to path in the format implied by its extension and
// returns the number of bytes written.
func WriteFile(path string, exp *Export) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: f}
	w := NewWriter(cw, Config{Format: FormatFromPath(path), Pretty: true})
	if err := w.WriteExport(exp); err != nil {
		f.Close()
		return cw.n, err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return cw.n, err
	}
	return cw.n, f.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
