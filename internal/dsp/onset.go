package dsp

import "math"

// OnsetStrength computes a rectified spectral-flux envelope: for each STFT
// frame, the mean positive magnitude increase over the previous frame.
func OnsetStrength(x []float64) []float64 {
	spec := STFT(x)
	if len(spec) < 2 {
		return nil
	}
	env := make([]float64, len(spec)-1)
	for t := 1; t < len(spec); t++ {
		var flux float64
		for f := range spec[t] {
			if d := spec[t][f] - spec[t-1][f]; d > 0 {
				flux += d
			}
		}
		env[t-1] = flux / float64(len(spec[t]))
	}
	return env
}

// DetectOnsets picks envelope peaks that exceed an adaptive local
// threshold (local mean plus a fraction of the global deviation), returning
// STFT frame indices.
func DetectOnsets(env []float64) []int {
	if len(env) == 0 {
		return nil
	}
	var mean float64
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))
	var dev float64
	for _, v := range env {
		dev += (v - mean) * (v - mean)
	}
	dev = math.Sqrt(dev / float64(len(env)))

	const window = 3
	var onsets []int
	for t := range env {
		lo := t - window
		if lo < 0 {
			lo = 0
		}
		hi := t + window + 1
		if hi > len(env) {
			hi = len(env)
		}
		localMax := true
		var localMean float64
		for i := lo; i < hi; i++ {
			localMean += env[i]
			if i != t && env[i] > env[t] {
				localMax = false
			}
		}
		localMean /= float64(hi - lo)
		if localMax && env[t] > localMean+0.3*dev && env[t] > mean {
			// Suppress double triggers inside the local window.
			if len(onsets) > 0 && t-onsets[len(onsets)-1] <= window {
				continue
			}
			onsets = append(onsets, t)
		}
	}
	return onsets
}
