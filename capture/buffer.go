package capture

import (
	"fmt"
	"sync"

	"github.com/nazwana/latensi/queue"
	"github.com/nazwana/latensi/timestamps"
)

// Buffer accumulates accepted rows between flushes.
type Buffer interface {
	Push(r timestamps.Row) error
	Flush() error // Flush writes out anything accumulated.
	Close() error // Close flushes and releases the buffer.
}

// memoryBuffer holds rows in process memory and appends them to the CSV log
// on each flush.
type memoryBuffer struct {
	rows    []timestamps.Row
	rowsMux *sync.Mutex
	log     *timestamps.Log
}

func NewMemoryBuffer(l *timestamps.Log) *memoryBuffer {
	return &memoryBuffer{
		rows:    []timestamps.Row{},
		rowsMux: &sync.Mutex{},
		log:     l,
	}
}

func (b *memoryBuffer) Push(r timestamps.Row) error {
	b.rowsMux.Lock()
	b.rows = append(b.rows, r)
	b.rowsMux.Unlock()
	return nil
}

func (b *memoryBuffer) Flush() error {
	b.rowsMux.Lock()
	rows := b.rows
	b.rows = []timestamps.Row{}
	b.rowsMux.Unlock()

	if len(rows) == 0 {
		return nil
	}
	if err := b.log.Append(rows...); err != nil {
		return fmt.Errorf("Flush() got err when calling Append(): %w", err)
	}
	return nil
}

func (b *memoryBuffer) Close() error {
	if err := b.Flush(); err != nil {
		return err
	}
	return b.log.Close()
}

// Len returns the number of rows awaiting a flush.
func (b *memoryBuffer) Len() int {
	b.rowsMux.Lock()
	defer b.rowsMux.Unlock()
	return len(b.rows)
}

// queueBuffer forwards rows straight to a Redis-backed queue. Flushing is a
// no-op as nothing is held locally; a drainer owns the CSV log.
type queueBuffer struct {
	publisher *queue.Publisher
}

func NewQueueBuffer(publisher *queue.Publisher) *queueBuffer {
	return &queueBuffer{publisher: publisher}
}

func (b *queueBuffer) Push(r timestamps.Row) error {
	return b.publisher.Publish(r)
}

func (b *queueBuffer) Flush() error {
	return nil
}

func (b *queueBuffer) Close() error {
	b.publisher.Close()
	return nil
}
