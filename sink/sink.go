package sink

// Sink receives derived latency metrics. It is the data output channel,
// separate from operational logging.
type Sink interface {
	LogLatency(seconds float64)                                  // Takes in one reading's latency in seconds.
	LogAggregateLatencies(p50 float64, p75 float64, p95 float64) // Takes in window percentiles in seconds.
	LogMinuteAverage(minute string, mean float64)
	LogRunSummary(rows int, minutes int, mean float64)
	Close()
}

// noopSink does not record anything.
type noopSink struct{}

func NewNoopSink() *noopSink {
	return &noopSink{}
}

func (*noopSink) LogLatency(float64) {
	return
}

func (*noopSink) LogAggregateLatencies(float64, float64, float64) {
	return
}

func (*noopSink) LogMinuteAverage(string, float64) {
	return
}

func (*noopSink) LogRunSummary(int, int, float64) {
	return
}

func (*noopSink) Close() {
	return
}
