package stems

import (
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/dsp"
)

// Stem is an approximated single-instrument signal derived from the mono
// downmix. Owned by the separator for one analysis run; consumers treat
// Samples as read-only.
type Stem struct {
	Tag     Tag
	Samples []float64
}

// Separator derives per-instrument proxy signals from the mono downmix.
type Separator struct {
	mono       []float64
	sampleRate int
}

func NewSeparator(mono []float64, sampleRate int) *Separator {
	return &Separator{mono: mono, sampleRate: sampleRate}
}

// Separate produces one stem per recognized tag, in lineup order.
func (s *Separator) Separate(tags []Tag) []Stem {
	stems := make([]Stem, 0, len(tags))
	for _, tag := range tags {
		stems = append(stems, Stem{Tag: tag, Samples: s.extract(tag)})
	}
	return stems
}

func (s *Separator) extract(tag Tag) []float64 {
	switch tag {
	case TagVocal:
		return s.extractVocal()
	case TagKick:
		return s.extractKick()
	case TagSnare:
		return s.extractSnare()
	case TagHihat:
		return dsp.Highpass(6, 6000, s.sampleRate).Filter(s.mono)
	case TagTom:
		return dsp.Bandpass(4, 80, 250, s.sampleRate).Filter(s.mono)
	case TagBass:
		return dsp.Bandpass(6, 60, 250, s.sampleRate).Filter(s.mono)
	case TagElectricGuitar:
		return dsp.Bandpass(4, 200, 3000, s.sampleRate).Filter(s.mono)
	case TagAcousticGuitar:
		return dsp.Bandpass(4, 100, 5000, s.sampleRate).Filter(s.mono)
	case TagKeyboard:
		return dsp.Bandpass(4, 200, 4000, s.sampleRate).Filter(s.mono)
	case TagSynth:
		return dsp.Bandpass(4, 100, 8000, s.sampleRate).Filter(s.mono)
	}
	return nil
}

// extractVocal band-limits to the vocal range and emphasizes the 1-4 kHz
// formant region by 1.8x in the spectral domain.
func (s *Separator) extractVocal() []float64 {
	vocal := dsp.Highpass(6, 200, s.sampleRate).Filter(s.mono)
	vocal = dsp.Lowpass(6, 5000, s.sampleRate).Filter(vocal)

	spec := dsp.ComplexSTFT(vocal)
	freqs := dsp.FFTFrequencies(s.sampleRate)
	for _, frame := range spec {
		for f := range frame {
			if freqs[f] >= 1000 && freqs[f] <= 4000 {
				frame[f] *= 1.8
			}
		}
	}
	return dsp.ISTFT(spec, len(vocal))
}

// extractKick band-limits to the kick fundamental and boosts short windows
// around detected onsets to bring the hits forward.
func (s *Separator) extractKick() []float64 {
	kick := dsp.Bandpass(6, 40, 120, s.sampleRate).Filter(s.mono)

	env := dsp.OnsetStrength(s.mono)
	for _, frame := range dsp.DetectOnsets(env) {
		// Envelope index i corresponds to STFT frame i+1.
		sample := (frame + 1) * dsp.HopSize
		if sample >= len(kick) {
			continue
		}
		start := sample - 500
		if start < 0 {
			start = 0
		}
		end := sample + 2000
		if end > len(kick) {
			end = len(kick)
		}
		for i := start; i < end; i++ {
			kick[i] *= 2.0
		}
	}
	return kick
}

// extractSnare layers the drum's body, attack and snap bands.
func (s *Separator) extractSnare() []float64 {
	body := dsp.Bandpass(4, 200, 400, s.sampleRate).Filter(s.mono)
	attack := dsp.Bandpass(4, 2000, 5000, s.sampleRate).Filter(s.mono)
	snap := dsp.Bandpass(4, 6000, 10000, s.sampleRate).Filter(s.mono)

	snare := make([]float64, len(s.mono))
	for i := range snare {
		snare[i] = body[i]*0.4 + attack[i]*0.4 + snap[i]*0.2
	}
	return snare
}
