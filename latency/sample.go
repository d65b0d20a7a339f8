package latency

import (
	"time"

	"github.com/nazwana/latensi/timestamps"
)

// MinuteLayout keys samples to the capture minute they fall in.
const MinuteLayout = "15:04"

// Sample is one reading's derived latency: how far the capture clock ran
// ahead of the device clock, in seconds. Negative when the device clock was
// ahead.
type Sample struct {
	Minute  string
	Seconds float64
	Capture time.Time
}

// NewSample derives a sample from a reading. The minute key comes from the
// capture clock, not the device clock.
func NewSample(r timestamps.Reading) Sample {
	return Sample{
		Minute:  r.Capture.Format(MinuteLayout),
		Seconds: r.Capture.Sub(r.Device).Seconds(),
		Capture: r.Capture,
	}
}

// FromReadings derives samples in input order.
func FromReadings(readings []timestamps.Reading) []Sample {
	samples := make([]Sample, len(readings))
	for i, r := range readings {
		samples[i] = NewSample(r)
	}
	return samples
}

// Seconds extracts the raw latency values, preserving order.
func Seconds(samples []Sample) []float64 {
	seconds := make([]float64, len(samples))
	for i, s := range samples {
		seconds[i] = s.Seconds
	}
	return seconds
}
