package dsp

import (
	"math"
	"sort"
)

const epsilon = 1e-10

// RMS returns the root-mean-square of x, 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// Peak returns the maximum absolute sample value.
func Peak(x []float64) float64 {
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// DB converts a linear amplitude to dBFS, flooring at -100 for
// non-positive input.
func DB(linear float64) float64 {
	if linear <= 0 {
		return -100
	}
	v := 20 * math.Log10(linear)
	if v < -100 {
		return -100
	}
	return v
}

// Percentile returns the p-th percentile (0-100) of x using linear
// interpolation between closest ranks.
func Percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// PearsonCorrelation returns the correlation coefficient of two
// equal-length signals. Returns 1 for degenerate (constant) inputs, which
// matches the identical-channel case this is used for.
func PearsonCorrelation(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 1
	}
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA <= epsilon || varB <= epsilon {
		return 1
	}
	return cov / math.Sqrt(varA*varB)
}

// FrameRMS computes the RMS of overlapping frames of x.
func FrameRMS(x []float64, frameLength, hopLength int) []float64 {
	if len(x) == 0 || frameLength <= 0 || hopLength <= 0 {
		return nil
	}
	var out []float64
	for start := 0; start < len(x); start += hopLength {
		end := start + frameLength
		if end > len(x) {
			end = len(x)
		}
		out = append(out, RMS(x[start:end]))
		if end == len(x) {
			break
		}
	}
	return out
}
