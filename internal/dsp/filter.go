package dsp

import "math"

// Biquad is a single second-order IIR section in direct form II transposed.
type Biquad struct {
	b0, b1, b2, a1, a2 float64
}

// SOS is a cascade of second-order sections.
type SOS []Biquad

// Lowpass designs a Butterworth low-pass cascade of the given even order.
func Lowpass(order int, cutoff float64, sampleRate int) SOS {
	return design(order, cutoff, sampleRate, newLowpassBiquad)
}

// Highpass designs a Butterworth high-pass cascade of the given even order.
func Highpass(order int, cutoff float64, sampleRate int) SOS {
	return design(order, cutoff, sampleRate, newHighpassBiquad)
}

// Bandpass designs a band-pass as a high-pass at low cascaded with a
// low-pass at high, each of the given order.
func Bandpass(order int, low, high float64, sampleRate int) SOS {
	sos := Highpass(order, low, sampleRate)
	return append(sos, Lowpass(order, high, sampleRate)...)
}

// design cascades order/2 sections with Butterworth pole Q values.
func design(order int, cutoff float64, sampleRate int, section func(freq, q, fs float64) Biquad) SOS {
	if order < 2 {
		order = 2
	}
	n := order / 2
	sos := make(SOS, 0, n)
	for i := 0; i < n; i++ {
		theta := math.Pi * (2*float64(i) + 1) / (2 * float64(order))
		q := 1 / (2 * math.Sin(theta))
		sos = append(sos, section(cutoff, q, float64(sampleRate)))
	}
	return sos
}

func newLowpassBiquad(freq, q, fs float64) Biquad {
	w0 := 2 * math.Pi * clampFreq(freq, fs) / fs
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Biquad{
		b0: (1 - cosw) / 2 / a0,
		b1: (1 - cosw) / a0,
		b2: (1 - cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

func newHighpassBiquad(freq, q, fs float64) Biquad {
	w0 := 2 * math.Pi * clampFreq(freq, fs) / fs
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	a0 := 1 + alpha
	return Biquad{
		b0: (1 + cosw) / 2 / a0,
		b1: -(1 + cosw) / a0,
		b2: (1 + cosw) / 2 / a0,
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
}

// clampFreq keeps the cutoff strictly inside (0, Nyquist).
func clampFreq(freq, fs float64) float64 {
	nyquist := fs / 2
	if freq >= nyquist {
		freq = nyquist * 0.999
	}
	if freq <= 0 {
		freq = 1
	}
	return freq
}

// Filter applies the cascade to x and returns a new slice.
func (s SOS) Filter(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for _, bq := range s {
		var z1, z2 float64
		for i, v := range out {
			y := bq.b0*v + z1
			z1 = bq.b1*v - bq.a1*y + z2
			z2 = bq.b2*v - bq.a2*y
			out[i] = y
		}
	}
	return out
}

// FiltFilt applies the cascade forward and backward for zero-phase output.
func (s SOS) FiltFilt(x []float64) []float64 {
	out := s.Filter(x)
	reverse(out)
	out = s.Filter(out)
	reverse(out)
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
