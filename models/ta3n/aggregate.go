package ta3n

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Aggregate pools per-segment feature vectors into one clip-level vector
// according to the stream's aggregation strategy. Input is one row per
// segment, all rows the same width; when the stream was built with a fixed
// segment count the row count must match it.
func (s *Stream) Aggregate(segments [][]float64) ([]float64, error) {
	n := len(segments)
	if n == 0 {
		return nil, fmt.Errorf("no segments to aggregate")
	}
	if s.segments > 0 && n != s.segments {
		return nil, fmt.Errorf("expected %d segments, got %d", s.segments, n)
	}

	dim := len(segments[0])
	for i, seg := range segments {
		if len(seg) != dim {
			return nil, fmt.Errorf("segment %d has width %d, want %d", i, len(seg), dim)
		}
	}

	switch s.aggregation {
	case AggAvgPool:
		return pool(segments, uniformWeights(n)), nil
	case AggTemPooling:
		return pool(segments, taperWeights(n)), nil
	case AggTemAttn:
		return pool(segments, attentionWeights(segments)), nil
	case AggTRN:
		return relationPool(segments, dim), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregation, string(s.aggregation))
	}
}

// pool computes the weighted sum of the segment rows
func pool(segments [][]float64, weights []float64) []float64 {
	out := make([]float64, len(segments[0]))
	for i, seg := range segments {
		floats.AddScaled(out, weights[i], seg)
	}
	return out
}

func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

// taperWeights builds normalized Hamming-window weights so that central
// segments dominate the clip representation
func taperWeights(n int) []float64 {
	w := window.Hamming(n)
	sum := floats.Sum(w)
	if sum <= 0 {
		return uniformWeights(n)
	}
	floats.Scale(1.0/sum, w)
	return w
}

// attentionWeights computes a softmax over segment energies (L2 norms), so
// higher-energy segments contribute more
func attentionWeights(segments [][]float64) []float64 {
	n := len(segments)
	norms := make([]float64, n)
	for i, seg := range segments {
		norms[i] = floats.Norm(seg, 2)
	}

	// stabilized softmax
	maxNorm := floats.Max(norms)
	w := make([]float64, n)
	for i, v := range norms {
		w[i] = math.Exp(v - maxNorm)
	}
	floats.Scale(1.0/floats.Sum(w), w)
	return w
}

// relationPool averages mean-pooled windows of consecutive segments at every
// scale from 2 up to the segment count, then averages across scales
func relationPool(segments [][]float64, dim int) []float64 {
	n := len(segments)
	if n == 1 {
		out := make([]float64, dim)
		copy(out, segments[0])
		return out
	}

	acc := make([]float64, dim)
	scales := 0
	for k := 2; k <= n; k++ {
		windows := n - k + 1
		scaleAcc := make([]float64, dim)
		for start := 0; start < windows; start++ {
			for i := start; i < start+k; i++ {
				floats.AddScaled(scaleAcc, 1.0/float64(k), segments[i])
			}
		}
		floats.Scale(1.0/float64(windows), scaleAcc)
		floats.Add(acc, scaleAcc)
		scales++
	}
	floats.Scale(1.0/float64(scales), acc)
	return acc
}
