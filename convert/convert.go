// Package convert turns a timestamp log into the tab-separated per-minute
// latency file the plotting pipeline consumes.
package convert

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nazwana/latensi/latency"
	"github.com/nazwana/latensi/sink"
	"github.com/nazwana/latensi/timestamps"
)

// Baseline is the constant reference value written on every output row,
// giving plots a horizontal zero line to read latencies against.
const Baseline = "0.0"

// WaktuLayout formats the first capture timestamp of each minute group.
const WaktuLayout = "15:04:05"

type Options struct {
	InputPath  string
	OutputPath string
	Schema     timestamps.Schema
}

// Result summarises a successful conversion.
type Result struct {
	Rows        int // Rows is the number of input rows parsed.
	Minutes     int // Minutes is the number of groups written.
	OutputPath  string
	Aggregation *latency.Aggregation // Aggregation summarises latencies across the whole run.
}

// Run reads the input log, aggregates latency per capture minute and writes
// the output file. The output is only created once reading and aggregation
// have succeeded, so a failed run leaves no file behind. Failures form a
// closed set: an error wrapping os.ErrNotExist when the input is absent, a
// *timestamps.MissingColumnsError when the schema does not match, and a
// descriptive error otherwise.
func Run(options *Options, metrics sink.Sink) (*Result, error) {
	readings, err := timestamps.ReadFile(options.InputPath, options.Schema)
	if err != nil {
		return nil, fmt.Errorf("Run() got err when calling timestamps.ReadFile(): %w", err)
	}

	aggregator := latency.NewMinuteAggregator()
	collector := latency.NewArrayCollector()
	for _, s := range latency.FromReadings(readings) {
		aggregator.Add(s)
		collector.Add(time.Duration(s.Seconds * float64(time.Second)))
	}
	averages := aggregator.Averages()

	if err := writeAverages(options.OutputPath, averages); err != nil {
		return nil, err
	}

	for _, m := range averages {
		metrics.LogMinuteAverage(m.Minute, m.Mean)
	}
	aggregation := collector.Aggregate()
	metrics.LogRunSummary(len(readings), len(averages), float64(aggregation.Mean)/float64(time.Second))

	return &Result{
		Rows:        len(readings),
		Minutes:     len(averages),
		OutputPath:  options.OutputPath,
		Aggregation: aggregation,
	}, nil
}

// writeAverages writes the tab-separated output: a header row, then one
// newline-terminated row per minute in first-appearance order. latensi uses
// the shortest decimal form that round-trips the mean.
func writeAverages(path string, averages []latency.MinuteAverage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writeAverages() got err when calling os.Create(): %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write([]string{"waktu", "latensi", "baseline"}); err != nil {
		f.Close()
		return fmt.Errorf("writeAverages() got err when writing header: %w", err)
	}
	for _, m := range averages {
		rec := []string{
			m.First.Format(WaktuLayout),
			strconv.FormatFloat(m.Mean, 'f', -1, 64),
			Baseline,
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("writeAverages() got err when writing row for minute %s: %w", m.Minute, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writeAverages() got err when flushing: %w", err)
	}
	return f.Close()
}
