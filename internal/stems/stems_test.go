package stems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/audio"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/dsp"
)

func TestParseLineupJapanese(t *testing.T) {
	tags := ParseLineup("ボーカル、キック、キック、ベース")
	assert.Equal(t, []Tag{TagVocal, TagKick, TagBass}, tags)
}

func TestParseLineupEnglishAndNewlines(t *testing.T) {
	tags := ParseLineup("Vocal\nSnare, Hi-Hat\nElectric Guitar")
	assert.Equal(t, []Tag{TagVocal, TagSnare, TagHihat, TagElectricGuitar}, tags)
}

func TestParseLineupLongestAliasWins(t *testing.T) {
	// An acoustic guitar must not be swallowed by the generic guitar alias.
	assert.Equal(t, []Tag{TagAcousticGuitar}, ParseLineup("アコースティックギター"))
	assert.Equal(t, []Tag{TagAcousticGuitar}, ParseLineup("acoustic guitar"))
	assert.Equal(t, []Tag{TagElectricGuitar}, ParseLineup("ギター"))
}

func TestParseLineupDropsUnknown(t *testing.T) {
	tags := ParseLineup("トランペット、vocal、theremin")
	assert.Equal(t, []Tag{TagVocal}, tags)
}

func TestParseLineupEmpty(t *testing.T) {
	assert.Empty(t, ParseLineup(""))
	assert.Empty(t, ParseLineup("、、、"))
}

func sine(freq float64, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(audio.SampleRate))
	}
	return x
}

func TestSeparateProducesStemPerTag(t *testing.T) {
	mono := sine(440, audio.SampleRate)
	sep := NewSeparator(mono, audio.SampleRate)

	tags := []Tag{TagVocal, TagKick, TagBass}
	stems := sep.Separate(tags)
	assert.Len(t, stems, len(tags))
	for i, st := range stems {
		assert.Equal(t, tags[i], st.Tag)
		assert.Len(t, st.Samples, len(mono))
	}
}

func TestBassStemRejectsHighFrequencies(t *testing.T) {
	low := sine(100, 2*audio.SampleRate)
	high := sine(5000, 2*audio.SampleRate)
	sep := NewSeparator(low, audio.SampleRate)

	inBand := sep.Separate([]Tag{TagBass})[0].Samples
	outOfBand := NewSeparator(high, audio.SampleRate).Separate([]Tag{TagBass})[0].Samples

	assert.Greater(t, dsp.RMS(inBand), 10*dsp.RMS(outOfBand))
}

func TestHihatStemRejectsLowFrequencies(t *testing.T) {
	low := sine(200, 2*audio.SampleRate)
	sep := NewSeparator(low, audio.SampleRate)

	out := sep.Separate([]Tag{TagHihat})[0].Samples
	assert.Less(t, dsp.RMS(out), dsp.RMS(low)/10)
}

func TestKickStemBoostsOnsets(t *testing.T) {
	// A click train inside the kick band should come out louder than the
	// same material without detected onsets boosting it.
	n := 2 * audio.SampleRate
	mono := make([]float64, n)
	for i := 0; i < n; i += audio.SampleRate / 2 {
		for j := 0; j < 200 && i+j < n; j++ {
			mono[i+j] = math.Sin(2 * math.Pi * 60 * float64(j) / float64(audio.SampleRate))
		}
	}
	sep := NewSeparator(mono, audio.SampleRate)
	kick := sep.Separate([]Tag{TagKick})[0].Samples

	plain := dsp.Bandpass(6, 40, 120, audio.SampleRate).Filter(mono)
	assert.GreaterOrEqual(t, dsp.RMS(kick), dsp.RMS(plain))
}
