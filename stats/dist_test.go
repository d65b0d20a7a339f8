package stats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func TestTruncatedNormalSamplerStaysWithinBounds(t *testing.T) {
	sampler := NewTruncatedNormalSampler(-1, 2, 0.5, 0.2, 7)

	var samples []float64
	for i := 0; i < 10000; i++ {
		s := sampler.Sample()
		if s < -1 || s > 2 {
			t.Fatalf("sample %d out of bounds: %v", i, s)
		}
		samples = append(samples, s)
	}

	mean := 0.0
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))
	assert.InDeltaf(t, 0.5, mean, 0.05, "sample mean should sit near the distribution mean")

	p, err := plot.New()
	if err != nil {
		panic(err)
	}

	hist, err := plotter.NewHist(plotter.Values(samples), 1000)
	if err != nil {
		panic(err)
	}
	p.Add(hist)

	if err := p.Save(10*vg.Inch, 10*vg.Inch, filepath.Join(t.TempDir(), "plot.png")); err != nil {
		panic(err)
	}
}

func TestTruncatedNormalSamplerIsReproducible(t *testing.T) {
	first := NewTruncatedNormalSampler(-1, 2, 0.5, 0.2, 42)
	second := NewTruncatedNormalSampler(-1, 2, 0.5, 0.2, 42)

	for i := 0; i < 100; i++ {
		assert.Equalf(t, first.Sample(), second.Sample(), "sample %d should match for the same seed", i)
	}
}

func TestTruncatedNormalSamplerTightTruncation(t *testing.T) {
	sampler := NewTruncatedNormalSampler(0.4, 0.6, 0.5, 5, 7)

	for i := 0; i < 1000; i++ {
		s := sampler.Sample()
		if s < 0.4 || s > 0.6 {
			t.Fatalf("sample %d escaped a tight truncation: %v", i, s)
		}
	}
}
