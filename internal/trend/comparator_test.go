package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
)

func entry(meta history.Metadata, analysis mix.Metrics) *history.Entry {
	return &history.Entry{
		ID:        "20250101_200000",
		Timestamp: time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
		Metadata:  meta,
		Analysis:  history.Snapshot{Metrics: analysis},
		Equipment: history.Equipment{Mixer: meta.ConsoleName, PASystem: meta.PASystemName},
	}
}

func TestConsoleTier(t *testing.T) {
	assert.Equal(t, 1.0, consoleTier("Yamaha CL5"))
	assert.Equal(t, 0.8, consoleTier("QL1"))
	assert.Equal(t, 0.7, consoleTier("Allen & Heath SQ-6"))
	assert.Equal(t, 0.5, consoleTier("Behringer X32"))
	assert.Equal(t, 0.5, consoleTier("unknown desk"))
}

func TestConsoleCorrection(t *testing.T) {
	// A CL reads about 1 dB hotter than an X32 at the same mix state.
	assert.InDelta(t, 1.0, consoleCorrection("Yamaha CL5", "Behringer X32"), 1e-9)
	assert.InDelta(t, -1.0, consoleCorrection("Behringer X32", "Yamaha CL5"), 1e-9)
	assert.Zero(t, consoleCorrection("Yamaha CL5", "Yamaha CL5"))
	assert.Zero(t, consoleCorrection("", "Yamaha CL5"))
}

func TestPACorrectionsBrightness(t *testing.T) {
	corrections := paCorrections("JBL VTX", "d&b Y-Series")
	for i := 0; i < 5; i++ {
		assert.Zero(t, corrections[i])
	}
	assert.InDelta(t, -3.0, corrections[5], 1e-9)
	assert.InDelta(t, -4.0, corrections[6], 1e-9)

	assert.Equal(t, [mix.NumBands]float64{}, paCorrections("JBL VTX", "JBL VTX"))
	assert.Equal(t, [mix.NumBands]float64{}, paCorrections("", "d&b"))
}

func TestCompareExactMatchImprovement(t *testing.T) {
	meta := history.Metadata{VenueCapacity: 400, ConsoleName: "Yamaha CL5", PASystemName: "d&b"}
	current := mix.Metrics{RMSDB: -14, StereoWidth: 25}

	past := entry(meta, mix.Metrics{RMSDB: -17.5, StereoWidth: 24})
	comp := New(current, meta).Compare(past)

	assert.Equal(t, 100, comp.Score)
	assert.Equal(t, "exact_match", comp.MatchType)
	assert.InDelta(t, 3.5, comp.RMS.Difference, 1e-9)
	assert.Zero(t, comp.RMS.Correction)

	require.NotEmpty(t, comp.Insights)
	assert.Equal(t, "improvement", comp.Insights[0].Type)
	assert.Equal(t, SeverityGood, comp.Insights[0].Severity)
}

func TestCompareExactMatchStable(t *testing.T) {
	meta := history.Metadata{VenueCapacity: 400, ConsoleName: "CL5", PASystemName: "d&b"}
	current := mix.Metrics{RMSDB: -15, StereoWidth: 25}

	comp := New(current, meta).Compare(entry(meta, mix.Metrics{RMSDB: -15.5, StereoWidth: 25}))
	require.Len(t, comp.Insights, 1)
	assert.Equal(t, "stable", comp.Insights[0].Type)
}

func TestCompareAppliesConsoleCorrection(t *testing.T) {
	meta := history.Metadata{VenueCapacity: 400, ConsoleName: "Yamaha CL5", PASystemName: "d&b"}
	pastMeta := history.Metadata{VenueCapacity: 400, ConsoleName: "Behringer X32", PASystemName: "d&b"}
	current := mix.Metrics{RMSDB: -15}

	comp := New(current, meta).Compare(entry(pastMeta, mix.Metrics{RMSDB: -15}))

	// Tier difference 0.5 doubles to a +1 dB correction on the past RMS.
	assert.InDelta(t, 1.0, comp.RMS.Correction, 1e-9)
	assert.InDelta(t, -14.0, comp.RMS.PastCorrected, 1e-9)
	assert.InDelta(t, -1.0, comp.RMS.Difference, 1e-9)

	// Not an exact match (different console), so the insight reports the
	// corrected delta instead of judging improvement.
	require.NotEmpty(t, comp.Insights)
	assert.Equal(t, "info", comp.Insights[0].Type)
}

func TestCompareBandInsights(t *testing.T) {
	meta := history.Metadata{VenueCapacity: 400, ConsoleName: "CL5", PASystemName: "d&b"}
	current := mix.Metrics{RMSDB: -15, StereoWidth: 40}
	current.BandEnergies = [mix.NumBands]float64{-20, -20, -20, -20, -20, -20, -20}

	pastAnalysis := mix.Metrics{RMSDB: -15, StereoWidth: 22}
	pastAnalysis.BandEnergies = [mix.NumBands]float64{-20, -28, -20, -20, -20, -20, -20}

	comp := New(current, meta).Compare(entry(meta, pastAnalysis))

	var types []string
	for _, in := range comp.Insights {
		types = append(types, in.Type)
	}
	// Stable RMS, a width change beyond 10 points, and one band beyond 6 dB.
	assert.Equal(t, []string{"stable", "change", "change"}, types)
	assert.Contains(t, comp.Insights[2].Message, "Bass")
}

func TestCompareAllOrder(t *testing.T) {
	meta := history.Metadata{VenueCapacity: 400}
	c := New(mix.Metrics{}, meta)

	entries := []*history.Entry{
		entry(history.Metadata{VenueCapacity: 410}, mix.Metrics{}),
		entry(history.Metadata{VenueCapacity: 800}, mix.Metrics{}),
	}
	comps := c.CompareAll(entries)
	require.Len(t, comps, 2)
	assert.Equal(t, 30, comps[0].Score)
	assert.Equal(t, 0, comps[1].Score)
}
