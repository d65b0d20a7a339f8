// Package capture runs the HTTP ingest server devices post telemetry to,
// stamping each reading with local capture time and logging the pair of
// timestamps the converter later works from.
package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	routing "github.com/jackwhelpton/fasthttp-routing/v2"
	"github.com/nazwana/latensi/latency"
	"github.com/nazwana/latensi/sink"
	"github.com/nazwana/latensi/timestamps"
	"github.com/valyala/fasthttp"
)

// Telemetry is the JSON body devices post. SensorTimestamp carries the
// device RTC reading; it is logged verbatim so the log reflects exactly
// what the device reported.
type Telemetry struct {
	SensorTimestamp string   `json:"sensor_timestamp"`
	Temperature     *float64 `json:"temperature"`
	Humidity        *float64 `json:"humidity"`
	Pressure        *float64 `json:"pressure"`
	CO2PPM          *float64 `json:"co2_ppm"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

type ServerOptions struct {
	ListenAddr string
	Buffer     Buffer
	Collector  latency.Collector
	Sink       sink.Sink
	Clock      Clock
	// MaxSkew is the largest offset a reading may carry before it is
	// dropped. Zero disables the guard.
	MaxSkew       time.Duration
	FlushInterval time.Duration
}

type Server struct {
	listenAddr    string
	buffer        Buffer
	collector     latency.Collector
	sink          sink.Sink
	clock         Clock
	maxSkew       time.Duration
	flushInterval time.Duration

	// accepted and dropped count readings since the last reset, protected
	// from race conditions by countersMux.
	accepted    int
	dropped     int
	countersMux *sync.RWMutex

	server *fasthttp.Server
	// loopWG allows the flush loop goroutine to be gracefully stopped.
	loopWG    *sync.WaitGroup
	loopStop  chan bool
	isStarted bool
}

func NewServer(options *ServerOptions) *Server {
	clock := options.Clock
	if clock == nil {
		clock = NewRealtimeClock()
	}
	return &Server{
		listenAddr:    options.ListenAddr,
		buffer:        options.Buffer,
		collector:     options.Collector,
		sink:          options.Sink,
		clock:         clock,
		maxSkew:       options.MaxSkew,
		flushInterval: options.FlushInterval,
		countersMux:   &sync.RWMutex{},
		isStarted:     false,
	}
}

func (s *Server) Start() error {
	if s.isStarted {
		return errors.New("server already started")
	}

	router := routing.New()
	router.Post("/telemetry", s.telemetryHandler())
	router.Get("/stats", s.statsHandler())
	router.Post("/reset", s.resetHandler())

	s.server = &fasthttp.Server{
		Handler:         router.HandleRequest,
		CloseOnShutdown: true,
	}

	s.loopStop = make(chan bool, 1)
	s.loopWG = &sync.WaitGroup{}
	s.loopWG.Add(1)
	go s.flushLoop()

	go func() {
		if err := s.server.ListenAndServe(s.listenAddr); err != nil {
			log.Fatalf("fasthttp: server error: %v", err)
		}
	}()

	s.isStarted = true
	return nil
}

// Stop shuts the listener down, stops the flush loop and flushes the
// buffer, in this order so no accepted reading is lost.
func (s *Server) Stop() error {
	if !s.isStarted {
		return errors.New("server not yet started")
	}

	if err := s.server.Shutdown(); err != nil {
		return fmt.Errorf("Stop() got err when calling Shutdown(): %w", err)
	}

	close(s.loopStop)
	s.loopWG.Wait()

	if err := s.buffer.Close(); err != nil {
		return fmt.Errorf("Stop() got err when calling buffer.Close(): %w", err)
	}

	s.isStarted = false
	return nil
}

func (s *Server) telemetryHandler() routing.Handler {
	return func(c *routing.Context) error {
		if err := s.ingest(c.PostBody()); err != nil {
			if errors.Is(err, errMalformed) {
				return routing.NewHTTPError(fasthttp.StatusBadRequest, err.Error())
			}
			return err
		}
		c.SetStatusCode(fasthttp.StatusNoContent)
		return nil
	}
}

// errMalformed marks bodies the ingest path could not make sense of, so the
// handler can answer 400 rather than 500.
var errMalformed = errors.New("malformed telemetry")

// ingest stamps one posted reading with local capture time and routes it to
// the collector, the sink and the buffer. Readings whose offset exceeds the
// skew guard are counted and discarded: the device clock has not synced yet
// and is reporting an epoch fallback that would poison the minute means.
func (s *Server) ingest(body []byte) error {
	var t Telemetry
	if err := json.Unmarshal(body, &t); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	now := s.clock.Now()
	device, err := timestamps.ParseTimestamp(t.SensorTimestamp)
	if err != nil {
		return fmt.Errorf("%w: bad sensor_timestamp: %v", errMalformed, err)
	}

	offset := now.Sub(device)
	if s.maxSkew > 0 && (offset > s.maxSkew || offset < -s.maxSkew) {
		s.countersMux.Lock()
		s.dropped++
		s.countersMux.Unlock()
		return nil
	}

	s.collector.Add(offset)
	s.sink.LogLatency(offset.Seconds())

	row := timestamps.Row{
		Capture: now,
		Device:  t.SensorTimestamp,
		Fields:  telemetryFields(&t),
	}
	if err := s.buffer.Push(row); err != nil {
		return fmt.Errorf("could not buffer reading: err = %w", err)
	}

	s.countersMux.Lock()
	s.accepted++
	s.countersMux.Unlock()
	return nil
}

func (s *Server) statsHandler() routing.Handler {
	return func(c *routing.Context) error {
		aggregation := s.collector.Aggregate()
		s.countersMux.RLock()
		accepted, dropped := s.accepted, s.dropped
		s.countersMux.RUnlock()

		response := &struct {
			Accepted int
			Dropped  int
			Mean     float64
			P50      float64
			P75      float64
			P95      float64
		}{
			Accepted: accepted,
			Dropped:  dropped,
			Mean:     float64(aggregation.Mean) / float64(time.Second),
			P50:      float64(aggregation.P50) / float64(time.Second),
			P75:      float64(aggregation.P75) / float64(time.Second),
			P95:      float64(aggregation.P95) / float64(time.Second),
		}

		b, err := json.Marshal(response)
		if err != nil {
			return fmt.Errorf("could not marshal aggregation: err = %w", err)
		}
		return c.Write(b)
	}
}

func (s *Server) resetHandler() routing.Handler {
	return func(c *routing.Context) error {
		s.collector.Reset()
		s.countersMux.Lock()
		s.accepted, s.dropped = 0, 0
		s.countersMux.Unlock()
		return c.Write("collector reset\n")
	}
}

func (s *Server) flushLoop() {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	defer s.loopWG.Done()
	for {
		select {
		case <-ticker.C:
			if err := s.buffer.Flush(); err != nil {
				log.Printf("capture: flush error: %v\n", err)
			}

			aggregation := s.collector.Aggregate()

			// The sink operates with seconds.
			p50 := float64(aggregation.P50) / float64(time.Second)
			p75 := float64(aggregation.P75) / float64(time.Second)
			p95 := float64(aggregation.P95) / float64(time.Second)
			s.sink.LogAggregateLatencies(p50, p75, p95)
		case <-s.loopStop:
			return
		}
	}
}

func telemetryFields(t *Telemetry) []string {
	format := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return []string{format(t.Temperature), format(t.Humidity), format(t.Pressure), format(t.CO2PPM)}
}
