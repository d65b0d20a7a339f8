package latency

import (
	"testing"
	"time"

	"github.com/nazwana/latensi/timestamps"
	"github.com/stretchr/testify/assert"
)

func reading(capture, device string) timestamps.Reading {
	c, err := timestamps.ParseTimestamp(capture)
	if err != nil {
		panic(err)
	}
	d, err := timestamps.ParseTimestamp(device)
	if err != nil {
		panic(err)
	}
	return timestamps.Reading{Capture: c, Device: d}
}

func TestNewSample(t *testing.T) {
	type args struct {
		capture string
		device  string
	}
	tests := []struct {
		name        string
		args        args
		wantMinute  string
		wantSeconds float64
	}{
		{
			name:        "Positive latency when the device clock lags",
			args:        args{capture: "2024-10-03 10:00:01.500", device: "2024-10-03 10:00:01.000"},
			wantMinute:  "10:00",
			wantSeconds: 0.5,
		},
		{
			name:        "Negative latency when the device clock leads",
			args:        args{capture: "2024-10-03 10:00:01.000", device: "2024-10-03 10:00:02.500"},
			wantMinute:  "10:00",
			wantSeconds: -1.5,
		},
		{
			name:        "Minute key comes from the capture clock",
			args:        args{capture: "2024-10-03 10:01:00.200", device: "2024-10-03 10:00:59.900"},
			wantMinute:  "10:01",
			wantSeconds: 0.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSample(reading(tt.args.capture, tt.args.device))
			if got.Minute != tt.wantMinute {
				t.Errorf("NewSample().Minute = %v, want %v", got.Minute, tt.wantMinute)
			}
			assert.InDeltaf(t, tt.wantSeconds, got.Seconds, 1e-9, "NewSample().Seconds = %v, want %v", got.Seconds, tt.wantSeconds)
		})
	}
}

func TestMinuteAggregatorAveragesWithinAMinute(t *testing.T) {
	a := NewMinuteAggregator()
	a.Add(NewSample(reading("2024-10-03 10:00:01.500", "2024-10-03 10:00:01")))
	a.Add(NewSample(reading("2024-10-03 10:00:31.700", "2024-10-03 10:00:31")))

	averages := a.Averages()
	assert.Len(t, averages, 1)
	assert.Equal(t, "10:00", averages[0].Minute)
	assert.InDelta(t, 0.6, averages[0].Mean, 1e-9)
	assert.Equal(t, "10:00:01", averages[0].First.Format("15:04:05"))
}

func TestMinuteAggregatorPreservesAppearanceOrder(t *testing.T) {
	a := NewMinuteAggregator()
	a.Add(NewSample(reading("2024-10-03 10:05:10", "2024-10-03 10:05:09")))
	a.Add(NewSample(reading("2024-10-03 10:02:20", "2024-10-03 10:02:19")))
	a.Add(NewSample(reading("2024-10-03 10:05:40", "2024-10-03 10:05:39")))

	averages := a.Averages()
	assert.Len(t, averages, 2)
	assert.Equal(t, "10:05", averages[0].Minute)
	assert.Equal(t, "10:02", averages[1].Minute)
	// The out-of-order sample still lands in the first group, and the first
	// capture timestamp is the first seen, not the earliest.
	assert.Equal(t, "10:05:10", averages[0].First.Format("15:04:05"))
}

func TestMinuteAggregatorCollapsesMinutesAcrossDates(t *testing.T) {
	a := NewMinuteAggregator()
	a.Add(NewSample(reading("2024-10-03 10:00:01", "2024-10-03 10:00:00")))
	a.Add(NewSample(reading("2024-10-04 10:00:05", "2024-10-04 10:00:02")))

	averages := a.Averages()
	assert.Equal(t, 1, a.Len())
	assert.Len(t, averages, 1)
	assert.InDelta(t, 2.0, averages[0].Mean, 1e-9)
}

func TestMinuteAggregatorEmptyInput(t *testing.T) {
	a := NewMinuteAggregator()
	assert.Empty(t, a.Averages())
	assert.Equal(t, 0, a.Len())
}
