// Package trend compares the current mix analysis against historical
// sessions, normalizing for equipment differences before judging level and
// balance movement.
package trend

import (
	"fmt"
	"strings"
	"time"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
)

// Insight severities.
const (
	SeverityGood    = "good"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Insight is one qualitative statement derived from a comparison.
type Insight struct {
	Type     string `json:"type"` // improvement, regression, stable, change, info
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// MetricDelta carries a compared metric with the equipment correction that
// was applied to the historical value.
type MetricDelta struct {
	Current       float64 `json:"current"`
	PastRaw       float64 `json:"past_raw"`
	PastCorrected float64 `json:"past_corrected"`
	Difference    float64 `json:"difference"`
	Correction    float64 `json:"correction_applied"`
}

// Comparison is the report for one historical entry.
type Comparison struct {
	PastID    string    `json:"past_id"`
	PastDate  time.Time `json:"past_date"`
	PastVenue string    `json:"past_venue"`
	PastMixer string    `json:"past_mixer"`
	PastPA    string    `json:"past_pa"`

	Score     int    `json:"score"`
	MatchType string `json:"match_type"`

	RMS         MetricDelta `json:"rms"`
	StereoWidth MetricDelta `json:"stereo_width"`

	BandDifferences     [mix.NumBands]float64 `json:"band_differences"`
	PACorrectionApplied bool                  `json:"pa_correction_applied"`

	Insights []Insight `json:"insights"`
}

// Comparator evaluates the current session against past entries.
type Comparator struct {
	current mix.Metrics
	meta    history.Metadata
}

func New(current mix.Metrics, meta history.Metadata) *Comparator {
	return &Comparator{current: current, meta: meta}
}

// CompareAll produces one comparison per entry, in the given order.
func (c *Comparator) CompareAll(entries []*history.Entry) []Comparison {
	out := make([]Comparison, 0, len(entries))
	for _, e := range entries {
		out = append(out, c.Compare(e))
	}
	return out
}

// Compare normalizes the historical metrics for console and PA differences
// and derives insights from the corrected deltas.
func (c *Comparator) Compare(entry *history.Entry) Comparison {
	comp := Comparison{
		PastID:    entry.ID,
		PastDate:  entry.Timestamp,
		PastVenue: entry.Metadata.VenueName,
		PastMixer: entry.Equipment.Mixer,
		PastPA:    entry.Equipment.PASystem,
	}
	comp.Score = history.MatchScore(c.meta, entry.Metadata)
	comp.MatchType = history.MatchType(comp.Score)

	rmsCorrection := consoleCorrection(c.meta.ConsoleName, entry.Equipment.Mixer)
	comp.RMS = delta(c.current.RMSDB, entry.Analysis.RMSDB, rmsCorrection)
	comp.StereoWidth = delta(c.current.StereoWidth, entry.Analysis.StereoWidth, 0)

	corrections := paCorrections(c.meta.PASystemName, entry.Equipment.PASystem)
	for i := range comp.BandDifferences {
		comp.BandDifferences[i] = c.current.BandEnergies[i] - (entry.Analysis.BandEnergies[i] + corrections[i])
		if corrections[i] != 0 {
			comp.PACorrectionApplied = true
		}
	}

	comp.Insights = c.insights(&comp)
	return comp
}

func delta(current, past, correction float64) MetricDelta {
	corrected := past + correction
	return MetricDelta{
		Current:       current,
		PastRaw:       past,
		PastCorrected: corrected,
		Difference:    current - corrected,
		Correction:    correction,
	}
}

// consoleTiers ranks console families by output quality for level
// normalization. Later keys win when a name matches several.
var consoleTiers = []struct {
	key  string
	tier float64
}{
	{"cl", 1.0},
	{"ql", 0.8},
	{"sq", 0.7},
	{"x32", 0.5},
}

func consoleTier(name string) float64 {
	tier := 0.5
	lower := strings.ToLower(name)
	for _, t := range consoleTiers {
		if strings.Contains(lower, t.key) {
			tier = t.tier
		}
	}
	return tier
}

// consoleCorrection is added to the historical RMS: two tiers of console
// quality are worth about 2 dB per tier point.
func consoleCorrection(current, past string) float64 {
	if current == "" || past == "" || current == past {
		return 0
	}
	return (consoleTier(current) - consoleTier(past)) * 2.0
}

func paBrightness(name string) float64 {
	if strings.Contains(strings.ToLower(name), "jbl") {
		return 2
	}
	return 0
}

// paCorrections offsets the presence and brilliance bands for PA voicing
// differences; the lower five bands are left untouched.
func paCorrections(current, past string) [mix.NumBands]float64 {
	var corrections [mix.NumBands]float64
	if current == "" || past == "" || current == past {
		return corrections
	}
	diff := paBrightness(current) - paBrightness(past)
	corrections[5] = -diff * 1.5
	corrections[6] = -diff * 2.0
	return corrections
}

func (c *Comparator) insights(comp *Comparison) []Insight {
	var out []Insight

	rmsDiff := comp.RMS.Difference
	if comp.MatchType == "exact_match" {
		switch {
		case rmsDiff > 2:
			out = append(out, Insight{
				Type:     "improvement",
				Severity: SeverityGood,
				Message:  fmt.Sprintf("level up %+.1fdB on the last session (same conditions)", rmsDiff),
			})
		case rmsDiff < -2:
			out = append(out, Insight{
				Type:     "regression",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("level down %.1fdB on the last session (same conditions)", rmsDiff),
			})
		default:
			out = append(out, Insight{
				Type:     "stable",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("level on par with the last session (%+.1fdB)", rmsDiff),
			})
		}
	} else if comp.RMS.Correction != 0 {
		out = append(out, Insight{
			Type:     "info",
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("level delta %+.1fdB (system difference corrected: %+.1fdB)", rmsDiff, comp.RMS.Correction),
		})
	}

	if widthDiff := comp.StereoWidth.Difference; widthDiff > 10 || widthDiff < -10 {
		out = append(out, Insight{
			Type:     "change",
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("stereo width changed %+.1f%%", widthDiff),
		})
	}

	for i, diff := range comp.BandDifferences {
		if diff > 6 || diff < -6 {
			out = append(out, Insight{
				Type:     "change",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%s changed %+.1fdB", mix.Bands[i].Name, diff),
			})
		}
	}

	return out
}
