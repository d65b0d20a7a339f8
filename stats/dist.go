package stats

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"time"
)

// TruncatedNormalSampler draws values from a normal distribution restricted
// to [lo, hi] using an inverse transform method.
// Reference: https://www.r-bloggers.com/2020/08/generating-data-from-a-truncated-distribution/
type TruncatedNormalSampler struct {
	norm distuv.Normal
	uni  distuv.Uniform
}

// NewTruncatedNormalSampler initialises a sampler. A zero seed seeds from
// the current time; any other seed makes the sequence reproducible.
func NewTruncatedNormalSampler(lo, hi, mean, stddev float64, seed uint64) *TruncatedNormalSampler {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	src := rand.NewSource(seed)

	norm := distuv.Normal{
		Mu:    mean,
		Sigma: stddev,
		Src:   src,
	}

	a := norm.CDF(lo)
	b := norm.CDF(hi)
	return &TruncatedNormalSampler{
		norm: norm,
		uni: distuv.Uniform{
			Min: a,
			Max: b,
			Src: src,
		},
	}
}

func (s *TruncatedNormalSampler) Sample() float64 {
	return s.norm.Quantile(s.uni.Rand())
}
