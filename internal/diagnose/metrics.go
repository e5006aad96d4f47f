package diagnose

import (
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/dsp"
)

// computeMetrics derives the base measurements for one stem. mixRMSDB is
// the whole-mix RMS used for the relative level.
func computeMetrics(samples []float64, sampleRate int, mixRMSDB float64) InstrumentMetrics {
	rms := dsp.RMS(samples)
	m := InstrumentMetrics{
		RMSDB:  dsp.DB(rms),
		PeakDB: dsp.DB(dsp.Peak(samples)),
	}
	m.CrestFactor = m.PeakDB - m.RMSDB
	m.LevelVsMix = m.RMSDB - mixRMSDB

	// Frame RMS with a quarter-second hop; the spread of the loudest and
	// quietest frames is the dynamic range, in linear units.
	frames := dsp.FrameRMS(samples, sampleRate/2, sampleRate/4)
	if len(frames) > 0 {
		m.DynamicRange = dsp.Percentile(frames, 95) - dsp.Percentile(frames, 5)
	}

	env := dsp.OnsetStrength(samples)
	if len(env) > 0 {
		var sum float64
		for _, v := range env {
			sum += v
		}
		m.OnsetStrength = sum / float64(len(env))
	}

	harmonic, percussive := dsp.HPSSRatios(samples)
	m.HarmonicRatio = harmonic
	m.PercussiveRatio = percussive

	return m
}

// bandLevels averages the linear mean spectrum over each named range and
// converts to dB. An empty band floors at -100.
func bandLevels(spectrum, freqs []float64, ranges []BandLevel) []BandLevel {
	out := make([]BandLevel, len(ranges))
	for i, r := range ranges {
		var sum float64
		var count int
		for j, f := range freqs {
			if j < len(spectrum) && f >= r.Low && f < r.High {
				sum += spectrum[j]
				count++
			}
		}
		level := -100.0
		if count > 0 {
			level = dsp.DB(sum / float64(count))
		}
		out[i] = BandLevel{Name: r.Name, Low: r.Low, High: r.High, DB: level}
	}
	return out
}
