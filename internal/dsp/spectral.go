package dsp

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// ComplexSTFT computes a complex spectrogram [frame][bin] suitable for
// modification and resynthesis via ISTFT.
func ComplexSTFT(x []float64) [][]complex128 {
	if len(x) == 0 {
		return nil
	}
	win := Hann(FrameSize)
	fft := fourier.NewFFT(FrameSize)
	frames := 1
	if len(x) > FrameSize {
		frames += (len(x) - FrameSize) / HopSize
	}
	spec := make([][]complex128, frames)
	buf := make([]float64, FrameSize)
	for i := 0; i < frames; i++ {
		start := i * HopSize
		for k := 0; k < FrameSize; k++ {
			if start+k < len(x) {
				buf[k] = x[start+k] * win[k]
			} else {
				buf[k] = 0
			}
		}
		out := fft.Coefficients(nil, buf)
		row := make([]complex128, len(out))
		copy(row, out)
		spec[i] = row
	}
	return spec
}

// ISTFT resynthesizes a signal of the given length from a complex
// spectrogram using windowed overlap-add.
func ISTFT(spec [][]complex128, length int) []float64 {
	win := Hann(FrameSize)
	fft := fourier.NewFFT(FrameSize)
	out := make([]float64, length)
	norm := make([]float64, length)
	for i, row := range spec {
		frame := fft.Sequence(nil, row)
		start := i * HopSize
		for k := 0; k < FrameSize && start+k < length; k++ {
			// fourier.FFT.Sequence returns an unnormalized inverse.
			out[start+k] += frame[k] / float64(FrameSize) * win[k]
			norm[start+k] += win[k] * win[k]
		}
	}
	for i := range out {
		if norm[i] > epsilon {
			out[i] /= norm[i]
		}
	}
	return out
}
