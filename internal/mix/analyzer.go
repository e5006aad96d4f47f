// Package mix extracts whole-mix metrics (loudness, stereo image,
// dynamics, frequency balance, transients, low-end content) from a decoded
// 2-mix waveform.
package mix

import (
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/audio"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/dsp"
)

// NumBands is the fixed frequency-band count of every analysis.
const NumBands = 7

// Band is one of the fixed analysis bands.
type Band struct {
	Name string
	Low  float64
	High float64
}

// Bands spans 20 Hz to 16 kHz in seven non-overlapping ranges.
var Bands = [NumBands]Band{
	{"Sub Bass", 20, 80},
	{"Bass", 80, 250},
	{"Low-Mid", 250, 500},
	{"Mid", 500, 2000},
	{"High-Mid", 2000, 4000},
	{"Presence", 4000, 8000},
	{"Brilliance", 8000, 16000},
}

// Metrics is the whole-mix measurement record.
type Metrics struct {
	RMSDB       float64 `json:"rms_db"`
	PeakDB      float64 `json:"peak_db"`
	CrestFactor float64 `json:"crest_factor"`

	StereoWidth float64 `json:"stereo_width"`
	Correlation float64 `json:"correlation"`

	DynamicRange float64             `json:"dynamic_range"`
	BandEnergies [NumBands]float64   `json:"band_energies"`

	OnsetAvg     float64 `json:"onset_avg"`
	OnsetMax     float64 `json:"onset_max"`
	OnsetDensity float64 `json:"onset_density"`

	SubBassRatio float64 `json:"sub_bass_ratio"`

	// VeryLowRMS is the linear RMS below ~40 Hz, used by the subsonic
	// high-pass recommendation.
	VeryLowRMS float64 `json:"very_low_rms"`

	Duration float64 `json:"duration"`
}

// Analyze computes all whole-mix metrics. Every sub-analysis is a pure
// function of the waveform and cannot fail.
func Analyze(w *audio.Waveform) Metrics {
	m := Metrics{Duration: w.Duration}

	analyzeStereoImage(w, &m)
	analyzeDynamics(w, &m)
	analyzeFrequency(w, &m)
	analyzeTransients(w, &m)
	analyzeLowEnd(w, &m)

	return m
}

func analyzeStereoImage(w *audio.Waveform, m *Metrics) {
	m.Correlation = dsp.PearsonCorrelation(w.Left, w.Right)

	mid := make([]float64, len(w.Left))
	side := make([]float64, len(w.Left))
	for i := range w.Left {
		mid[i] = (w.Left[i] + w.Right[i]) / 2
		side[i] = (w.Left[i] - w.Right[i]) / 2
	}
	m.StereoWidth = dsp.RMS(side) / (dsp.RMS(mid) + 1e-10) * 100
}

func analyzeDynamics(w *audio.Waveform, m *Metrics) {
	m.PeakDB = dsp.DB(dsp.Peak(w.Mono))
	m.RMSDB = dsp.DB(dsp.RMS(w.Mono))
	m.CrestFactor = m.PeakDB - m.RMSDB

	// ~1 s frames with ~0.5 s hop.
	frames := dsp.FrameRMS(w.Mono, w.SampleRate, w.SampleRate/2)
	framesDB := make([]float64, len(frames))
	for i, f := range frames {
		framesDB[i] = dsp.DB(f)
	}
	m.DynamicRange = dsp.Percentile(framesDB, 95) - dsp.Percentile(framesDB, 5)
}

func analyzeFrequency(w *audio.Waveform, m *Metrics) {
	spectrum := dsp.SpectrumDB(dsp.MeanSpectrum(dsp.STFT(w.Mono)))
	freqs := dsp.FFTFrequencies(w.SampleRate)
	m.BandEnergies = BandLevels(spectrum, freqs)
	m.SubBassRatio = m.BandEnergies[0] - m.BandEnergies[1]
}

// BandLevels averages a dB spectrum into the seven fixed bands. A band
// with no bins reports -100 dB.
func BandLevels(spectrumDB, freqs []float64) [NumBands]float64 {
	var levels [NumBands]float64
	for b, band := range Bands {
		var sum float64
		var count int
		for i, f := range freqs {
			if i < len(spectrumDB) && f >= band.Low && f < band.High {
				sum += spectrumDB[i]
				count++
			}
		}
		if count == 0 {
			levels[b] = -100
		} else {
			levels[b] = sum / float64(count)
		}
	}
	return levels
}

func analyzeTransients(w *audio.Waveform, m *Metrics) {
	env := dsp.OnsetStrength(w.Mono)
	if len(env) == 0 {
		return
	}
	var sum, max float64
	for _, v := range env {
		sum += v
		if v > max {
			max = v
		}
	}
	m.OnsetAvg = sum / float64(len(env))
	m.OnsetMax = max
	if w.Duration > 0 {
		m.OnsetDensity = float64(len(dsp.DetectOnsets(env))) / w.Duration
	}
}

func analyzeLowEnd(w *audio.Waveform, m *Metrics) {
	lp := dsp.Lowpass(4, 40, w.SampleRate)
	m.VeryLowRMS = dsp.RMS(lp.FiltFilt(w.Mono))
}
