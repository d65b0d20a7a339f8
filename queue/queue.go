// Package queue buffers timestamp rows through a Redis-backed queue so
// capture hosts can stay write-light while a separate drainer appends to
// the CSV log.
package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adjust/rmq/v3"
	"github.com/go-redis/redis/v7"
	"github.com/nazwana/latensi/timestamps"
)

const connectionTag = "latensi"

// payload is the JSON wire form of one buffered row.
type payload struct {
	Capture string   `json:"capture"`
	Device  string   `json:"device"`
	Fields  []string `json:"fields,omitempty"`
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

func open(options *Options) (rmq.Connection, rmq.Queue, error) {
	// Ping first so an unreachable Redis fails fast with a clear error
	// instead of surfacing as rmq heartbeat errors later.
	client := redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})
	if _, err := client.Ping().Result(); err != nil {
		return nil, nil, fmt.Errorf("open() got err when calling Ping(): %w", err)
	}

	errChan := make(chan error, 16)
	go func() {
		for err := range errChan {
			log.Printf("rmq background error: %v\n", err)
		}
	}()

	conn, err := rmq.OpenConnectionWithRedisClient(connectionTag, client, errChan)
	if err != nil {
		return nil, nil, fmt.Errorf("open() got err when calling OpenConnectionWithRedisClient(): %w", err)
	}

	q, err := conn.OpenQueue(options.Queue)
	if err != nil {
		return nil, nil, fmt.Errorf("open() got err when calling OpenQueue(): %w", err)
	}

	return conn, q, nil
}

// Publisher pushes rows onto the queue.
type Publisher struct {
	conn  rmq.Connection
	queue rmq.Queue
}

func NewPublisher(options *Options) (*Publisher, error) {
	conn, q, err := open(options)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, queue: q}, nil
}

func (p *Publisher) Publish(r timestamps.Row) error {
	b, err := encodeRow(r)
	if err != nil {
		return fmt.Errorf("Publish() got err when encoding row: %w", err)
	}
	if err := p.queue.PublishBytes(b); err != nil {
		return fmt.Errorf("Publish() got err when calling PublishBytes(): %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	<-p.conn.StopAllConsuming()
}

// Drain consumes queued rows into the log until the queue has been idle for
// idleTimeout, returning the number of rows drained.
func Drain(options *Options, l *timestamps.Log, idleTimeout time.Duration) (int, error) {
	conn, q, err := open(options)
	if err != nil {
		return 0, err
	}

	if err := q.StartConsuming(10, time.Second); err != nil {
		return 0, fmt.Errorf("Drain() got err when calling StartConsuming(): %w", err)
	}

	var mux sync.Mutex
	count := 0
	lastDelivery := time.Now()

	if _, err := q.AddConsumerFunc(connectionTag+"-drain", func(d rmq.Delivery) {
		row, err := decodeRow(d.Payload())
		if err != nil {
			log.Printf("drain: rejecting malformed payload: %v\n", err)
			if err := d.Reject(); err != nil {
				log.Printf("drain: reject failed: %v\n", err)
			}
			return
		}

		mux.Lock()
		defer mux.Unlock()
		if err := l.Append(row); err != nil {
			log.Printf("drain: append failed, rejecting: %v\n", err)
			if err := d.Reject(); err != nil {
				log.Printf("drain: reject failed: %v\n", err)
			}
			return
		}
		count++
		lastDelivery = time.Now()
		if err := d.Ack(); err != nil {
			log.Printf("drain: ack failed: %v\n", err)
		}
	}); err != nil {
		return 0, fmt.Errorf("Drain() got err when calling AddConsumerFunc(): %w", err)
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		mux.Lock()
		idle := time.Since(lastDelivery)
		mux.Unlock()
		if idle >= idleTimeout {
			break
		}
	}

	<-conn.StopAllConsuming()
	return count, nil
}

func encodeRow(r timestamps.Row) ([]byte, error) {
	return json.Marshal(payload{
		Capture: r.Capture.Format(timestamps.CaptureLayout),
		Device:  r.Device,
		Fields:  r.Fields,
	})
}

func decodeRow(s string) (timestamps.Row, error) {
	var p payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return timestamps.Row{}, fmt.Errorf("decodeRow() got err when calling json.Unmarshal(): %w", err)
	}
	capture, err := timestamps.ParseTimestamp(p.Capture)
	if err != nil {
		return timestamps.Row{}, fmt.Errorf("decodeRow() got err when parsing capture timestamp: %w", err)
	}
	return timestamps.Row{Capture: capture, Device: p.Device, Fields: p.Fields}, nil
}
