package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadExport decodes an export written by one of the writers.
func ReadExport(r io.Reader, format Format) (*Export, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var exp Export
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &exp)
	case FormatJSON:
		err = json.Unmarshal(data, &exp)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s export: %w", format, err)
	}
	return &exp, nil
}

// ReadFile decodes the export at path, picking the format from its extension.
func ReadFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadExport(f, FormatFromPath(path))
}
