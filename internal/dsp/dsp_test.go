package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return x
}

func TestRMS(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
	assert.InDelta(t, 1.0, RMS([]float64{1, -1, 1, -1}), 1e-12)
	// Full-scale sine has RMS 1/sqrt(2).
	assert.InDelta(t, 1/math.Sqrt2, RMS(sine(100, 22050, 22050)), 1e-3)
}

func TestDBFloor(t *testing.T) {
	assert.Equal(t, -100.0, DB(0))
	assert.Equal(t, -100.0, DB(-0.5))
	assert.InDelta(t, 0.0, DB(1), 1e-12)
	assert.InDelta(t, -6.0206, DB(0.5), 1e-3)
}

func TestPercentile(t *testing.T) {
	x := []float64{5, 1, 4, 2, 3}
	assert.InDelta(t, 1.0, Percentile(x, 0), 1e-12)
	assert.InDelta(t, 3.0, Percentile(x, 50), 1e-12)
	assert.InDelta(t, 5.0, Percentile(x, 100), 1e-12)
	assert.InDelta(t, 4.8, Percentile(x, 95), 1e-12)
}

func TestPearsonCorrelation(t *testing.T) {
	a := sine(440, 22050, 4096)
	assert.InDelta(t, 1.0, PearsonCorrelation(a, a), 1e-9)

	inverted := make([]float64, len(a))
	for i, v := range a {
		inverted[i] = -v
	}
	assert.InDelta(t, -1.0, PearsonCorrelation(a, inverted), 1e-9)

	// Constant signals are degenerate and report full correlation.
	assert.Equal(t, 1.0, PearsonCorrelation(make([]float64, 100), make([]float64, 100)))
}

func TestSTFTShape(t *testing.T) {
	x := sine(1000, 22050, 22050)
	spec := STFT(x)
	require.NotEmpty(t, spec)
	expected := 1 + (len(x)-FrameSize)/HopSize
	assert.Len(t, spec, expected)
	assert.Len(t, spec[0], FrameSize/2+1)
}

func TestSTFTPeakBin(t *testing.T) {
	const freq = 1000.0
	x := sine(freq, 22050, 44100)
	mean := MeanSpectrum(STFT(x))
	freqs := FFTFrequencies(22050)

	peakBin := 0
	for i, m := range mean {
		if m > mean[peakBin] {
			peakBin = i
		}
	}
	assert.InDelta(t, freq, freqs[peakBin], float64(22050)/FrameSize+1)
}

func TestSpectrumDB(t *testing.T) {
	db := SpectrumDB([]float64{1, 0.5, 0})
	assert.InDelta(t, 0.0, db[0], 1e-12)
	assert.InDelta(t, -6.0206, db[1], 1e-3)
	assert.Equal(t, -100.0, db[2])
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	const sr = 22050
	low := sine(100, sr, sr)
	high := sine(8000, sr, sr)

	lp := Lowpass(4, 500, sr)
	passedLow := RMS(lp.FiltFilt(low))
	passedHigh := RMS(lp.FiltFilt(high))

	assert.Greater(t, passedLow, 0.5)
	assert.Less(t, passedHigh, 0.01)
}

func TestHighpassAttenuatesLowFrequencies(t *testing.T) {
	const sr = 22050
	low := sine(50, sr, sr)
	high := sine(5000, sr, sr)

	hp := Highpass(6, 1000, sr)
	assert.Less(t, RMS(hp.FiltFilt(low)), 0.01)
	assert.Greater(t, RMS(hp.FiltFilt(high)), 0.5)
}

func TestBandpassKeepsBand(t *testing.T) {
	const sr = 22050
	bp := Bandpass(6, 60, 250, sr)
	inBand := RMS(bp.FiltFilt(sine(120, sr, sr)))
	below := RMS(bp.FiltFilt(sine(20, sr, sr)))
	above := RMS(bp.FiltFilt(sine(2000, sr, sr)))

	assert.Greater(t, inBand, 0.4)
	assert.Less(t, below, 0.05)
	assert.Less(t, above, 0.05)
}

func TestISTFTRoundTrip(t *testing.T) {
	x := sine(440, 22050, 4*FrameSize)
	y := ISTFT(ComplexSTFT(x), len(x))

	// Compare away from the edges, where overlap-add has full coverage.
	var maxErr float64
	for i := FrameSize; i < len(x)-FrameSize; i++ {
		if e := math.Abs(x[i] - y[i]); e > maxErr {
			maxErr = e
		}
	}
	assert.Less(t, maxErr, 1e-6)
}

func TestOnsetDetection(t *testing.T) {
	const sr = 22050
	// Four clicks, one per second, over silence.
	x := make([]float64, 4*sr)
	for i := 0; i < 4; i++ {
		at := i*sr + sr/2
		for j := 0; j < 200; j++ {
			x[at+j] = 0.9 * math.Exp(-float64(j)/40)
		}
	}
	env := OnsetStrength(x)
	require.NotEmpty(t, env)
	onsets := DetectOnsets(env)
	assert.Len(t, onsets, 4)
}

func TestOnsetStrengthSilence(t *testing.T) {
	env := OnsetStrength(make([]float64, 22050))
	for _, v := range env {
		assert.Equal(t, 0.0, v)
	}
	assert.Empty(t, DetectOnsets(env))
}

func TestHPSSRatios(t *testing.T) {
	const sr = 22050
	tone := sine(440, sr, 2*sr)
	harm, perc := HPSSRatios(tone)
	assert.Greater(t, harm, 0.8)
	assert.Less(t, perc, 0.2)

	// Click train is dominated by percussive energy.
	clicks := make([]float64, 2*sr)
	for i := 0; i < len(clicks); i += sr / 8 {
		clicks[i] = 1
	}
	harm, perc = HPSSRatios(clicks)
	assert.Greater(t, perc, harm)
}
