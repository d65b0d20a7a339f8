// Package generate writes synthetic timestamp logs so the rest of the
// pipeline can be exercised without hardware on the network.
package generate

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/nazwana/latensi/stats"
	"github.com/nazwana/latensi/timestamps"
)

// DeviceLayout is the format device firmware reports its RTC in: whole
// seconds only.
const DeviceLayout = "2006-01-02 15:04:05"

type Options struct {
	OutputPath string
	Schema     timestamps.Schema
	Rows       int
	// Start is the first capture timestamp. Zero means now.
	Start    time.Time
	Interval time.Duration
	// Offset parameters feed the truncated normal distribution device
	// clock offsets are drawn from, in seconds.
	OffsetMean   float64
	OffsetStddev float64
	OffsetMin    float64
	OffsetMax    float64
	// Seed makes the offset sequence reproducible when non-zero.
	Seed uint64
}

// Run writes a fresh log of Rows synthetic readings and returns how many
// were written. Device timestamps are capture minus a sampled offset,
// truncated to whole seconds the way real firmware reports them.
func Run(options *Options) (int, error) {
	l, err := timestamps.CreateLog(options.OutputPath, options.Schema, timestamps.SensorColumns)
	if err != nil {
		return 0, fmt.Errorf("Run() got err when calling timestamps.CreateLog(): %w", err)
	}

	sampler := stats.NewTruncatedNormalSampler(
		options.OffsetMin,
		options.OffsetMax,
		options.OffsetMean,
		options.OffsetStddev,
		options.Seed,
	)

	start := options.Start
	if start.IsZero() {
		start = time.Now().Truncate(time.Second)
	}

	rows := make([]timestamps.Row, 0, options.Rows)
	for i := 0; i < options.Rows; i++ {
		// Spread capture stamps across the second the way real network
		// arrivals land.
		phase := time.Duration((i*137)%1000) * time.Millisecond
		captureTime := start.Add(time.Duration(i)*options.Interval + phase)

		offset := sampler.Sample()
		device := captureTime.Add(-time.Duration(offset * float64(time.Second)))

		rows = append(rows, timestamps.Row{
			Capture: captureTime,
			Device:  device.Format(DeviceLayout),
			Fields:  sensorFields(i),
		})
	}

	if err := l.Append(rows...); err != nil {
		l.Close()
		return 0, fmt.Errorf("Run() got err when calling Append(): %w", err)
	}
	if err := l.Close(); err != nil {
		return 0, fmt.Errorf("Run() got err when calling Close(): %w", err)
	}
	return len(rows), nil
}

// sensorFields fills the extra columns with slow-moving weather values so
// generated fixtures read like real logs.
func sensorFields(i int) []string {
	t := float64(i)
	temperature := 28 + 1.5*math.Sin(t/180)
	humidity := 65 + 5*math.Cos(t/240)
	pressure := 1009 + 1.2*math.Sin(t/300)
	co2 := 640 + 40*math.Sin(t/90)
	return []string{
		strconv.FormatFloat(temperature, 'f', 1, 64),
		strconv.FormatFloat(humidity, 'f', 1, 64),
		strconv.FormatFloat(pressure, 'f', 1, 64),
		strconv.FormatFloat(co2, 'f', 0, 64),
	}
}
