// Package diagnose evaluates approximated instrument stems against
// per-instrument rule tables and produces prioritized, equipment-aware
// mixing recommendations, plus whole-mix findings.
package diagnose

import (
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
)

// Severity ranks how urgently a finding needs attention.
type Severity string

const (
	SeverityCritical  Severity = "critical"
	SeverityImportant Severity = "important"
	SeverityOptional  Severity = "optional"
)

// TrendStatus classifies level movement against the most recent prior
// diagnosis of the same instrument.
type TrendStatus string

const (
	TrendImproving TrendStatus = "improving"
	TrendDegrading TrendStatus = "degrading"
	TrendStable    TrendStatus = "stable"
)

// InstrumentMetrics are the base measurements of one stem.
type InstrumentMetrics struct {
	RMSDB           float64 `json:"rms_db"`
	PeakDB          float64 `json:"peak_db"`
	CrestFactor     float64 `json:"crest_factor"`
	DynamicRange    float64 `json:"dynamic_range"`
	OnsetStrength   float64 `json:"onset_strength"`
	HarmonicRatio   float64 `json:"harmonic_ratio"`
	PercussiveRatio float64 `json:"percussive_ratio"`
	LevelVsMix      float64 `json:"level_vs_mix"`
}

// BandLevel is one named sub-band measurement.
type BandLevel struct {
	Name string  `json:"name"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	DB   float64 `json:"db"`
}

// Issue is one detected problem. Score is monotonic in how far the
// offending metric exceeds its threshold; higher means more severe.
type Issue struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Problem  string   `json:"problem"`
	Detail   string   `json:"detail"`
	Score    float64  `json:"score"`
}

// Approach is one independent way to remediate an issue.
type Approach struct {
	Method     string   `json:"method"`
	Steps      []string `json:"steps"`
	Pros       []string `json:"pros,omitempty"`
	Cons       []string `json:"cons,omitempty"`
	Difficulty int      `json:"difficulty"` // 1 (trivial) to 5 (expert)
}

// Recommendation groups the approaches offered for one issue.
type Recommendation struct {
	Priority        Severity   `json:"priority"`
	Title           string     `json:"title"`
	ProblemDetail   string     `json:"problem_detail"`
	Approaches      []Approach `json:"approaches"`
	ExpectedResults []string   `json:"expected_results,omitempty"`
	TrendNote       string     `json:"trend_note,omitempty"`
}

// Strength is a positive finding worth preserving.
type Strength struct {
	Point  string `json:"point"`
	Impact int    `json:"impact"` // 1 to 5
}

// TrendRecord compares the current stem against its most recent prior
// diagnosis.
type TrendRecord struct {
	Status        TrendStatus `json:"status"`
	RMSChange     float64     `json:"rms_change"`
	ClarityChange float64     `json:"clarity_change"`
	HasClarity    bool        `json:"has_clarity"`
}

// PastInstrument is the slice of a historical diagnosis the trend
// calculation needs.
type PastInstrument struct {
	RMSDB float64            `json:"rms_db"`
	Bands map[string]float64 `json:"freq_bands"`
}

// Diagnosis is the full result for one instrument stem.
type Diagnosis struct {
	Tag             stems.Tag         `json:"tag"`
	Metrics         InstrumentMetrics `json:"metrics"`
	Bands           []BandLevel       `json:"bands"`
	Strengths       []Strength        `json:"strengths"`
	Issues          []Issue           `json:"issues"`
	Recommendations []Recommendation  `json:"recommendations"`
	Trend           *TrendRecord      `json:"trend,omitempty"`
}

// Band returns the named sub-band level, or -100 when the diagnosis does
// not measure that band.
func (d *Diagnosis) Band(name string) float64 {
	for _, b := range d.Bands {
		if b.Name == name {
			return b.DB
		}
	}
	return -100
}

// BandMap flattens the sub-band levels for serialization.
func (d *Diagnosis) BandMap() map[string]float64 {
	m := make(map[string]float64, len(d.Bands))
	for _, b := range d.Bands {
		m[b.Name] = b.DB
	}
	return m
}

// MixFinding is a whole-mix strength or improvement suggestion.
type MixFinding struct {
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Solution string   `json:"solution,omitempty"`
	Impact   int      `json:"impact"`
}
