package latency

import "time"

type Aggregation struct {
	Mean time.Duration // Mean is the arithmetic mean latency.
	P50  time.Duration // P50 is the 50th percentile latency.
	P75  time.Duration // P75 is the 75th percentile latency.
	P95  time.Duration // P95 is the 95th percentile latency.
}

// Collector is the windowed view used by the live capture path.
type Collector interface {
	Add(d time.Duration)     // Add sends a new latency to the collector.
	Aggregate() *Aggregation // Aggregate calculates aggregate metrics over the collected latencies.
	Reset()                  // Reset resets the state of the collector for reuse.
}

// BatchCollector additionally exposes the raw values for whole-run
// statistics over an offline input.
type BatchCollector interface {
	Collector
	All() []float64 // All gets all the latencies collected, in seconds.
	Len() int       // Len gets the number of latencies collected.
}
