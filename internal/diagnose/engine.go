package diagnose

import (
	"fmt"
	"sort"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/dsp"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/equipment"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
)

// maxRecommendations caps how many top-ranked issues produce
// recommendations per instrument.
const maxRecommendations = 3

// Engine evaluates stems against the rule tables. One engine serves one
// analysis run; it holds the resolved equipment and venue context.
type Engine struct {
	Console equipment.ConsoleProfile
	PA      equipment.PAProfile

	VenueCapacity int
	StageVolume   string

	sampleRate int
}

func New(console equipment.ConsoleProfile, pa equipment.PAProfile, venueCapacity int, stageVolume string, sampleRate int) *Engine {
	return &Engine{
		Console:       console,
		PA:            pa,
		VenueCapacity: venueCapacity,
		StageVolume:   stageVolume,
		sampleRate:    sampleRate,
	}
}

// DiagnoseAll analyzes every stem in order and then applies
// cross-instrument rules. past holds the most recent prior diagnosis per
// tag; missing entries simply disable trend awareness for that tag. The
// result order follows the stem order, so repeated runs on identical input
// are identical.
func (e *Engine) DiagnoseAll(st []stems.Stem, mixRMSDB float64, past map[stems.Tag]PastInstrument) []*Diagnosis {
	diagnoses := make([]*Diagnosis, 0, len(st))
	for _, s := range st {
		if len(s.Samples) == 0 {
			continue
		}
		prev, ok := past[s.Tag]
		var prevPtr *PastInstrument
		if ok {
			prevPtr = &prev
		}
		diagnoses = append(diagnoses, e.diagnose(s, mixRMSDB, prevPtr))
	}
	e.applyRelationships(diagnoses)
	return diagnoses
}

func (e *Engine) diagnose(s stems.Stem, mixRMSDB float64, past *PastInstrument) *Diagnosis {
	d := &Diagnosis{Tag: s.Tag}
	d.Metrics = computeMetrics(s.Samples, e.sampleRate, mixRMSDB)

	if ranges, ok := subBands[s.Tag]; ok {
		spectrum := dsp.MeanSpectrum(dsp.STFT(s.Samples))
		freqs := dsp.FFTFrequencies(e.sampleRate)
		d.Bands = bandLevels(spectrum, freqs, ranges)
	}

	d.Trend = calculateTrend(d, past)
	d.Strengths = detectStrengths(s.Tag, d.Band, d.Metrics)

	d.Issues = detectIssues(d)
	d.Recommendations = e.recommend(d.Issues, d.Trend)
	if rec, ok := baselineRecommendation(s.Tag); ok {
		d.Recommendations = append(d.Recommendations, rec)
	}
	return d
}

// detectIssues runs the instrument's rule table and ranks the hits worst
// first; equal scores keep rule declaration order.
func detectIssues(d *Diagnosis) []Issue {
	in := ruleInput{metrics: d.Metrics, band: d.Band}
	var issues []Issue
	for _, rule := range issueRules[d.Tag] {
		if issue, ok := rule.evaluate(in); ok {
			issues = append(issues, issue)
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Score > issues[j].Score
	})
	return issues
}

// recommend maps the top-ranked issues to recommendations. Categories are
// deduplicated, and frequency-balance recommendations are suppressed when
// the clarity trend already shows clear improvement.
func (e *Engine) recommend(issues []Issue, trend *TrendRecord) []Recommendation {
	var recs []Recommendation
	addressed := make(map[string]bool)

	limit := len(issues)
	if limit > maxRecommendations {
		limit = maxRecommendations
	}
	for _, issue := range issues[:limit] {
		if trend != nil && trend.HasClarity && issue.Category == categoryFrequencyBalance && trend.ClarityChange > 2 {
			continue
		}
		if addressed[issue.Category] {
			continue
		}
		addressed[issue.Category] = true

		if rec, ok := e.buildRecommendation(issue, trend); ok {
			recs = append(recs, rec)
		}
	}
	return recs
}

// calculateTrend compares against the prior diagnosis of the same tag.
// A level move beyond 2 dB is significant.
func calculateTrend(d *Diagnosis, past *PastInstrument) *TrendRecord {
	if past == nil {
		return nil
	}
	t := &TrendRecord{
		Status:    TrendStable,
		RMSChange: d.Metrics.RMSDB - past.RMSDB,
	}
	if abs(t.RMSChange) > 2 {
		if t.RMSChange > 0 {
			t.Status = TrendImproving
		} else {
			t.Status = TrendDegrading
		}
	}
	if prev, ok := past.Bands["clarity"]; ok && len(d.Bands) > 0 {
		t.ClarityChange = d.Band("clarity") - prev
		t.HasClarity = true
	}
	return t
}

// applyRelationships adds recommendations driven by shared frequency
// territory between instruments.
func (e *Engine) applyRelationships(diagnoses []*Diagnosis) {
	byTag := make(map[stems.Tag]*Diagnosis, len(diagnoses))
	for _, d := range diagnoses {
		byTag[d.Tag] = d
	}

	// Kick and bass fighting over the same fundamental range get
	// reciprocal carve-outs.
	if kick, ok := byTag[stems.TagKick]; ok {
		if bass, ok := byTag[stems.TagBass]; ok {
			kickFund := kick.Band("fundamental")
			bassFund := bass.Band("fundamental")
			if abs(kickFund-bassFund) < 3 && kickFund > -100 && bassFund > -100 {
				kick.Recommendations = append(kick.Recommendations, Recommendation{
					Priority:      SeverityImportant,
					Title:         "Separate kick and bass frequencies",
					ProblemDetail: fmt.Sprintf("fundamentals within %.1fdB of each other", abs(kickFund-bassFund)),
					Approaches: []Approach{{
						Method: "Reciprocal EQ carve",
						Steps: []string{
							"Kick: PEQ 65Hz, Q=1.2, +4dB and PEQ 90Hz, Q=3.0, -4dB (yields the bass range)",
							"Bass: PEQ 90Hz, Q=1.0, +3dB and PEQ 65Hz, Q=3.0, -4dB (yields the kick range)",
							"Each instrument gets its own frequency slot",
						},
						Difficulty: 2,
					}},
					ExpectedResults: []string{"clear low end", "kick and bass separation"},
				})
			}
		}
	}

	// A vocal that cannot cut through gets space carved out of the
	// electric guitar's midrange.
	if vocal, ok := byTag[stems.TagVocal]; ok {
		if guitar, ok := byTag[stems.TagElectricGuitar]; ok {
			if vocal.Band("clarity") < -30 {
				guitar.Recommendations = append(guitar.Recommendations, Recommendation{
					Priority:      SeverityImportant,
					Title:         "Make space for the vocal",
					ProblemDetail: fmt.Sprintf("vocal clarity band at %.1fdB", vocal.Band("clarity")),
					Approaches: []Approach{{
						Method: "EQ dip",
						Steps: []string{
							"PEQ: 3.2kHz, Q=2.0, -2.5dB",
							"Frees the vocal clarity range",
						},
						Difficulty: 1,
					}},
					ExpectedResults: []string{"better vocal separation"},
				})
			}
		}
	}
}
