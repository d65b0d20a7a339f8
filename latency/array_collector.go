package latency

import (
	"fmt"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// arrayCollector captures every latency it is given. As storage and
// computation are both O(n), this has been designed for single-shot batch
// runs rather than long-lived capture.
type arrayCollector struct {
	seconds    []float64
	secondsMux *sync.Mutex
}

func NewArrayCollector() *arrayCollector {
	return &arrayCollector{
		seconds:    []float64{},
		secondsMux: &sync.Mutex{},
	}
}

func (c *arrayCollector) All() []float64 {
	c.secondsMux.Lock()
	defer c.secondsMux.Unlock()
	values := make([]float64, len(c.seconds))
	copy(values, c.seconds)
	return values
}

func (c *arrayCollector) Len() int {
	c.secondsMux.Lock()
	defer c.secondsMux.Unlock()
	return len(c.seconds)
}

func (c *arrayCollector) Add(d time.Duration) {
	c.secondsMux.Lock()
	c.seconds = append(c.seconds, float64(d)/float64(time.Second))
	c.secondsMux.Unlock()
}

func (c *arrayCollector) Aggregate() *Aggregation {
	// The stats package creates a copy of the array, so we must hold onto
	// the mutex while calculations are being made.
	c.secondsMux.Lock()
	defer c.secondsMux.Unlock()

	// The stats package requires input arrays to be non-empty.
	if len(c.seconds) == 0 {
		return &Aggregation{}
	}

	mean, err := stats.Mean(c.seconds)
	if err != nil {
		panic(fmt.Errorf("unexpected err in arrayCollector.Aggregate() while calculating mean: %w", err))
	}
	p50, err := stats.Median(c.seconds)
	if err != nil {
		panic(fmt.Errorf("unexpected err in arrayCollector.Aggregate() while calculating p50: %w", err))
	}
	p75, err := stats.Percentile(c.seconds, 75)
	if err != nil {
		panic(fmt.Errorf("unexpected err in arrayCollector.Aggregate() while calculating p75: %w", err))
	}
	p95, err := stats.Percentile(c.seconds, 95)
	if err != nil {
		panic(fmt.Errorf("unexpected err in arrayCollector.Aggregate() while calculating p95: %w", err))
	}

	return &Aggregation{
		Mean: time.Duration(mean * float64(time.Second)),
		P50:  time.Duration(p50 * float64(time.Second)),
		P75:  time.Duration(p75 * float64(time.Second)),
		P95:  time.Duration(p95 * float64(time.Second)),
	}
}

func (c *arrayCollector) Reset() {
	c.secondsMux.Lock()
	c.seconds = []float64{}
	c.secondsMux.Unlock()
}
