package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/MeKo-Tech/slipscan/internal/source"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// loadImageFile reads and decodes an image from disk.
func loadImageFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, err := source.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// outputWriter opens the output destination, stdout when file is empty. The
// returned closer is a no-op for stdout.
func outputWriter(stdout io.Writer, file string) (io.Writer, func() error, error) {
	if file == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(file)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// writeJSONOutput marshals payload as indented JSON to the destination.
func writeJSONOutput(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// validateOutputFormat checks the --format value.
func validateOutputFormat(format string) error {
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be text or json)", format)
	}
	return nil
}

// orUnset renders an optional string field for text output.
func orUnset(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
