package timestamps

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// CaptureLayout is the format capture hosts stamp rows with. Millisecond
// precision keeps sub-second latencies measurable against device clocks
// that only report whole seconds.
const CaptureLayout = "2006-01-02 15:04:05.000"

// SensorColumns are the conventional extra columns capture hosts log after
// the two timestamp columns.
var SensorColumns = []string{"temperature", "humidity", "pressure", "co2_ppm"}

// Row is one log entry to be written. Device holds the device-reported
// timestamp verbatim, as it arrived off the wire. Fields hold the values of
// any extra sensor columns, aligned with the column names the log was
// opened with.
type Row struct {
	Capture time.Time
	Device  string
	Fields  []string
}

// Log appends rows to a timestamp CSV log. Timestamp values are written
// with wrapping double quotes embedded in the field, matching the export
// format ReadFile strips.
type Log struct {
	f     *os.File
	w     *csv.Writer
	extra int
}

// OpenLog opens a log for appending, creating it with a header row when the
// file is new or empty.
func OpenLog(path string, schema Schema, extraColumns []string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("OpenLog() got err when calling os.OpenFile(): %w", err)
	}
	return newLog(f, schema, extraColumns, true)
}

// CreateLog opens a log for writing from scratch, truncating any existing
// file at path.
func CreateLog(path string, schema Schema, extraColumns []string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("CreateLog() got err when calling os.Create(): %w", err)
	}
	return newLog(f, schema, extraColumns, false)
}

func newLog(f *os.File, schema Schema, extraColumns []string, checkSize bool) (*Log, error) {
	writeHeader := true
	if checkSize {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("newLog() got err when calling Stat(): %w", err)
		}
		writeHeader = info.Size() == 0
	}

	l := &Log{f: f, w: csv.NewWriter(f), extra: len(extraColumns)}
	if writeHeader {
		header := append([]string{schema.CaptureColumn, schema.DeviceColumn}, extraColumns...)
		if err := l.w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("newLog() got err when writing header: %w", err)
		}
	}
	return l, nil
}

// Append writes rows and flushes them to disk.
func (l *Log) Append(rows ...Row) error {
	for _, r := range rows {
		rec := make([]string, 0, 2+l.extra)
		rec = append(rec, quote(r.Capture.Format(CaptureLayout)), quote(r.Device))
		rec = append(rec, r.Fields...)
		for len(rec) < 2+l.extra {
			rec = append(rec, "")
		}
		if err := l.w.Write(rec); err != nil {
			return fmt.Errorf("Append() got err when writing row: %w", err)
		}
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("Append() got err when flushing: %w", err)
	}
	return nil
}

func (l *Log) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

func quote(s string) string {
	return `"` + s + `"`
}
