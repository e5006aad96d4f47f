package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/diagnose"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/pipeline"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/trend"
)

func testResult() *pipeline.Result {
	m := mix.Metrics{RMSDB: -16.2, CrestFactor: 11.3, StereoWidth: 28.5, Duration: 180}
	m.BandEnergies = [mix.NumBands]float64{-30, -18, -22, -20, -26, -32, -100}

	return &pipeline.Result{
		Mix:  m,
		Tags: []stems.Tag{stems.TagVocal},
		Diagnoses: []*diagnose.Diagnosis{{
			Tag:     stems.TagVocal,
			Metrics: diagnose.InstrumentMetrics{RMSDB: -22.1, LevelVsMix: -5.9, CrestFactor: 9.4},
			Bands:   []diagnose.BandLevel{{Name: "clarity", Low: 2000, High: 4000, DB: -33.2}},
			Recommendations: []diagnose.Recommendation{{
				Priority:      diagnose.SeverityImportant,
				Title:         "Improve vocal clarity",
				ProblemDetail: "clarity band is weak",
				Approaches: []diagnose.Approach{{
					Method:     "Channel EQ",
					Steps:      []string{"Boost 2.5kHz by 2-3dB, Q around 2"},
					Difficulty: 2,
				}},
			}},
		}},
		MixSuggestions: []diagnose.MixFinding{{
			Category: "loudness",
			Severity: diagnose.SeverityCritical,
			Message:  "overall level is low",
			Solution: "raise the mix bus 3dB",
		}},
		Comparisons: []trend.Comparison{{
			PastID:    "20250101_200000",
			PastDate:  time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
			PastVenue: "Club Quattro",
			Score:     100,
			MatchType: "exact_match",
			Insights:  []trend.Insight{{Type: "improvement", Severity: trend.SeverityGood, Message: "level up +3.0dB on the last session (same conditions)"}},
		}},
		EntryID: "20250102_210000",
	}
}

func TestSessionRendersEverySection(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, Session(out, testResult()))
	text := out.String()

	assert.Contains(t, text, "Sub Bass")
	assert.Contains(t, text, "silent") // empty brilliance band
	assert.Contains(t, text, "VOCAL")
	assert.Contains(t, text, "Improve vocal clarity")
	assert.Contains(t, text, "raise the mix bus 3dB")
	assert.Contains(t, text, "exact_match (100)")
	assert.Contains(t, text, "Saved as session 20250102_210000")
}

func TestEmailBodyLeadsWithSuggestions(t *testing.T) {
	body := EmailBody(testResult())

	assert.Contains(t, body, "[critical] overall level is low")
	assert.Contains(t, body, "vocal:")
	assert.Contains(t, body, "[important] Improve vocal clarity")
	assert.Contains(t, body, "level up +3.0dB")
	assert.Contains(t, body, "Saved as session 20250102_210000")

	// Actionable items come before the trend section.
	assert.Less(t, indexOf(body, "overall level is low"), indexOf(body, "Versus past sessions"))
}

func indexOf(s, sub string) int {
	return bytes.Index([]byte(s), []byte(sub))
}
