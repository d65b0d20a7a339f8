// Package timestamps reads and writes the CSV log of paired capture and
// device timestamps shared by the capture, drain, generate, convert and
// compare commands.
package timestamps

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Schema names the two required columns of a timestamp log. Exports from
// other telemetry platforms use different header names, so both are
// configurable.
type Schema struct {
	CaptureColumn string
	DeviceColumn  string
}

func DefaultSchema() Schema {
	return Schema{
		CaptureColumn: "Timestamp",
		DeviceColumn:  "Timestamp (ESP32)",
	}
}

// Reading is one parsed row: the wall-clock time the ingest host captured
// the reading, and the time the device's own clock reported.
type Reading struct {
	Capture time.Time
	Device  time.Time
}

// MissingColumnsError reports required header columns absent from the input.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = strconv.Quote(c)
	}
	return fmt.Sprintf("input is missing required column(s): %s", strings.Join(quoted, ", "))
}

// layouts are tried in order when parsing a timestamp value. Fractional
// seconds are optional in all of them.
var layouts = []string{
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006/01/02 15:04:05.999999999",
}

// StripQuotes removes one pair of wrapping double quotes if present. Exports
// write datetime values with literal quotes embedded in the field, so the
// value still carries them after CSV unescaping.
func StripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseTimestamp parses a datetime value after trimming whitespace and
// wrapping quotes. Quoted and unquoted values parse identically.
func ParseTimestamp(s string) (time.Time, error) {
	v := StripQuotes(strings.TrimSpace(s))
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ReadFile parses a timestamp log. Columns beyond the two named by the
// schema are ignored. The error wraps os.ErrNotExist when the input does
// not exist, and is a *MissingColumnsError naming every absent column when
// the header does not match the schema.
func ReadFile(path string, schema Schema) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadFile() got err when calling os.Open(): %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("ReadFile() got err when reading header: %w", err)
	}

	captureIdx, deviceIdx := -1, -1
	for i, cell := range header {
		switch StripQuotes(strings.TrimSpace(cell)) {
		case schema.CaptureColumn:
			captureIdx = i
		case schema.DeviceColumn:
			deviceIdx = i
		}
	}

	var missing []string
	if captureIdx == -1 {
		missing = append(missing, schema.CaptureColumn)
	}
	if deviceIdx == -1 {
		missing = append(missing, schema.DeviceColumn)
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var readings []Reading
	row := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadFile() got err when reading row %d: %w", row, err)
		}

		capture, err := ParseTimestamp(rec[captureIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", row, schema.CaptureColumn, err)
		}
		device, err := ParseTimestamp(rec[deviceIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", row, schema.DeviceColumn, err)
		}

		readings = append(readings, Reading{Capture: capture, Device: device})
		row++
	}

	return readings, nil
}
