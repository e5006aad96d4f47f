package dsp

import "sort"

// HPSSRatios estimates the share of a signal's spectral energy that is
// harmonic (tonal) versus percussive (transient) using median filtering of
// the magnitude spectrogram: harmonic structures persist across time,
// percussive structures spread across frequency.
func HPSSRatios(x []float64) (harmonic, percussive float64) {
	spec := STFT(x)
	if len(spec) == 0 {
		return 0, 0
	}
	const kernel = 17

	bins := len(spec[0])
	frames := len(spec)

	var totalEnergy, harmonicEnergy, percussiveEnergy float64
	col := make([]float64, 0, kernel)
	row := make([]float64, 0, kernel)
	for t := 0; t < frames; t++ {
		for f := 0; f < bins; f++ {
			m := spec[t][f]
			e := m * m
			totalEnergy += e

			// Median across time at this bin.
			col = col[:0]
			for dt := -kernel / 2; dt <= kernel/2; dt++ {
				tt := t + dt
				if tt >= 0 && tt < frames {
					col = append(col, spec[tt][f])
				}
			}
			h := median(col)

			// Median across frequency at this frame.
			row = row[:0]
			for df := -kernel / 2; df <= kernel/2; df++ {
				ff := f + df
				if ff >= 0 && ff < bins {
					row = append(row, spec[t][ff])
				}
			}
			p := median(row)

			if h >= p {
				harmonicEnergy += e
			} else {
				percussiveEnergy += e
			}
		}
	}
	if totalEnergy <= epsilon {
		return 0, 0
	}
	return harmonicEnergy / totalEnergy, percussiveEnergy / totalEnergy
}

func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
