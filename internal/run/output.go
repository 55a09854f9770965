package run

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteReport encodes a report as indented JSON.
func WriteReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteReportFile writes a report to path, or to stdout when path is "-"
// or empty.
func WriteReportFile(path string, report Report) error {
	if path == "" || path == "-" {
		return WriteReport(os.Stdout, report)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	if err := WriteReport(f, report); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	return nil
}
