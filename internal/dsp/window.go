// Package dsp holds the signal-processing primitives shared by the mix
// analyzer, the stem separator and the diagnostic engine: STFT, Butterworth
// filter cascades, onset detection and a median-filter HPSS.
package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// STFT geometry for all spectral analysis.
	FrameSize = 2048
	HopSize   = 512
)

// Hann returns an n-point Hann window.
func Hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// STFT computes the magnitude spectrogram of x, indexed [frame][bin],
// with FrameSize/2+1 positive-frequency bins per frame.
func STFT(x []float64) [][]float64 {
	return stftWithPlan(x, FrameSize, HopSize, Hann(FrameSize), fourier.NewFFT(FrameSize))
}

func stftWithPlan(x []float64, n, hop int, win []float64, fft *fourier.FFT) [][]float64 {
	if len(x) == 0 {
		return nil
	}
	frames := 1
	if len(x) > n {
		frames += (len(x) - n) / hop
	}
	spec := make([][]float64, frames)
	buf := make([]float64, n)
	for i := 0; i < frames; i++ {
		start := i * hop
		for k := 0; k < n; k++ {
			if start+k < len(x) {
				buf[k] = x[start+k] * win[k]
			} else {
				buf[k] = 0
			}
		}
		out := fft.Coefficients(nil, buf)
		row := make([]float64, len(out))
		for f := range out {
			row[f] = math.Hypot(real(out[f]), imag(out[f]))
		}
		spec[i] = row
	}
	return spec
}

// FFTFrequencies returns the center frequency of every positive STFT bin.
func FFTFrequencies(sampleRate int) []float64 {
	bins := FrameSize/2 + 1
	freqs := make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sampleRate) / float64(FrameSize)
	}
	return freqs
}

// MeanSpectrum averages a magnitude spectrogram over time, yielding one
// linear magnitude per frequency bin.
func MeanSpectrum(spec [][]float64) []float64 {
	if len(spec) == 0 {
		return nil
	}
	mean := make([]float64, len(spec[0]))
	for _, frame := range spec {
		for f, m := range frame {
			mean[f] += m
		}
	}
	for f := range mean {
		mean[f] /= float64(len(spec))
	}
	return mean
}

// SpectrumDB converts a linear magnitude spectrum to dB relative to its own
// peak, flooring at -100 dB.
func SpectrumDB(spectrum []float64) []float64 {
	ref := 0.0
	for _, m := range spectrum {
		if m > ref {
			ref = m
		}
	}
	db := make([]float64, len(spectrum))
	for i, m := range spectrum {
		if ref <= 0 || m <= 0 {
			db[i] = -100
			continue
		}
		v := 20 * math.Log10(m/ref)
		if v < -100 {
			v = -100
		}
		db[i] = v
	}
	return db
}
