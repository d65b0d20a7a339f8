package latency

import "time"

// MinuteAverage is the aggregate for one capture minute.
type MinuteAverage struct {
	Minute string    // Minute is the HH:MM group key.
	Mean   float64   // Mean is the arithmetic mean latency in seconds.
	First  time.Time // First is the capture timestamp of the minute's first row.
}

type minuteGroup struct {
	sum   float64
	count int
	first time.Time
}

// MinuteAggregator groups samples by capture minute in a single pass,
// keeping a running sum, count and first capture timestamp per minute.
// Groups are reported in first-appearance order, never sorted; minutes from
// different dates share a group as only HH:MM keys it.
type MinuteAggregator struct {
	order  []string
	groups map[string]*minuteGroup
}

func NewMinuteAggregator() *MinuteAggregator {
	return &MinuteAggregator{groups: make(map[string]*minuteGroup)}
}

func (a *MinuteAggregator) Add(s Sample) {
	g, ok := a.groups[s.Minute]
	if !ok {
		g = &minuteGroup{first: s.Capture}
		a.groups[s.Minute] = g
		a.order = append(a.order, s.Minute)
	}
	g.sum += s.Seconds
	g.count++
}

// Len returns the number of distinct minutes seen so far.
func (a *MinuteAggregator) Len() int {
	return len(a.order)
}

// Averages returns one aggregate per minute, in the order the minutes first
// appeared in the input.
func (a *MinuteAggregator) Averages() []MinuteAverage {
	averages := make([]MinuteAverage, 0, len(a.order))
	for _, minute := range a.order {
		g := a.groups[minute]
		averages = append(averages, MinuteAverage{
			Minute: minute,
			Mean:   g.sum / float64(g.count),
			First:  g.first,
		})
	}
	return averages
}
