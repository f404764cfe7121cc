package output

import (
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes the export as a YAML document.
type YAMLWriter struct {
	mu     sync.Mutex
	writer io.Writer
	closed bool
}

// NewYAMLWriter creates a new YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{writer: w}
}

// WriteExport writes the complete export.
func (y *YAMLWriter) WriteExport(exp *Export) error {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.closed {
		return nil
	}

	enc := yaml.NewEncoder(y.writer)
	enc.SetIndent(2)
	if err := enc.Encode(exp); err != nil {
		return err
	}
	return enc.Close()
}

// Flush flushes the writer.
func (y *YAMLWriter) Flush() error {
	y.mu.Lock()
	defer y.mu.Unlock()

	if flusher, ok := y.writer.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close closes the writer.
func (y *YAMLWriter) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()

	y.closed = true

	if closer, ok := y.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
