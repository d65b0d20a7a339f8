package sink

import (
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// influxDBSink writes metrics to an external InfluxDB instance.
type influxDBSink struct {
	client      influxdb2.Client
	asyncWriter api.WriteAPI
}

func NewInfluxDBSink(baseURL, authToken, org, bucket string) *influxDBSink {
	options := influxdb2.DefaultOptions()
	options.WriteOptions().SetBatchSize(1000)
	options.WriteOptions().SetFlushInterval(250)

	client := influxdb2.NewClientWithOptions(baseURL, authToken, options)
	writeAPI := client.WriteAPI(org, bucket)

	// Create a goroutine for reading and logging async write errors.
	errorsCh := writeAPI.Errors()
	go func() {
		for err := range errorsCh {
			log.Printf("influxdb2 sink async write error: %v\n", err)
		}
	}()

	return &influxDBSink{
		client:      client,
		asyncWriter: writeAPI,
	}
}

func (s *influxDBSink) LogLatency(seconds float64) {
	p := influxdb2.NewPointWithMeasurement("latensi_reading").
		AddField("latency", seconds).
		SetTime(time.Now())
	s.asyncWriter.WritePoint(p)
}

func (s *influxDBSink) LogAggregateLatencies(p50 float64, p75 float64, p95 float64) {
	p := influxdb2.NewPointWithMeasurement("latensi_window").
		AddField("p50", p50).
		AddField("p75", p75).
		AddField("p95", p95).
		SetTime(time.Now())
	s.asyncWriter.WritePoint(p)
}

func (s *influxDBSink) LogMinuteAverage(minute string, mean float64) {
	p := influxdb2.NewPointWithMeasurement("latensi_minute").
		AddTag("menit", minute).
		AddField("mean", mean).
		SetTime(time.Now())
	s.asyncWriter.WritePoint(p)
}

func (s *influxDBSink) LogRunSummary(rows int, minutes int, mean float64) {
	p := influxdb2.NewPointWithMeasurement("latensi_run").
		AddField("rows", rows).
		AddField("minutes", minutes).
		AddField("mean", mean).
		SetTime(time.Now())
	s.asyncWriter.WritePoint(p)
}

// Close blocks until buffered points have been written. Required for
// single-shot runs, which would otherwise exit before the async writer
// flushes.
func (s *influxDBSink) Close() {
	s.asyncWriter.Flush()
	s.client.Close()
}
