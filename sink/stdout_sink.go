package sink

import (
	"log"
)

// stdoutSink logs metrics to standard output.
type stdoutSink struct{}

func NewStdoutSink() *stdoutSink {
	return &stdoutSink{}
}

func (*stdoutSink) LogLatency(_ float64) {
	// Do not log non-aggregated latencies to stdout.
	return
}

func (*stdoutSink) LogAggregateLatencies(p50 float64, p75 float64, p95 float64) {
	log.Printf("p50: %.3f, p75: %.3f, p95: %.3f\n", p50, p75, p95)
}

func (*stdoutSink) LogMinuteAverage(minute string, mean float64) {
	log.Printf("menit %s: mean latency %.3fs\n", minute, mean)
}

func (*stdoutSink) LogRunSummary(rows int, minutes int, mean float64) {
	log.Printf("run summary: %d rows over %d minutes, mean latency %.3fs\n", rows, minutes, mean)
}

func (*stdoutSink) Close() {
	return
}
