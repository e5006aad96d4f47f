package diagnose

import (
	"fmt"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
)

// Issue categories shared between detection and recommendation lookup.
const (
	categoryFrequencyBalance = "frequency_balance"
	categoryDynamics         = "dynamics"
	categoryLevelBalance     = "level_balance"
	categorySubsonic         = "subsonic"
	categoryAttack           = "attack"
)

// Problem labels double as dispatch keys for recommendation builders.
const (
	problemLowClarity     = "low clarity"
	problemMuddiness      = "muddiness"
	problemSibilance      = "excess sibilance"
	problemOverCompressed = "over-compressed vocal"
	problemWideDynamics   = "vocal dynamics too wide"
	problemVocalBuried    = "vocal buried in the mix"
	problemVocalTooLoud   = "vocal too loud"
	problemKickSubsonic   = "excess subsonic content"
	problemKickBoxy       = "boxy kick"
	problemKickNoPunch    = "lacks punch"
	problemSnareAttack    = "weak snare attack"
	problemSnareThin      = "thin snare body"
	problemBassInaudible  = "bass hard to hear"
	problemBassWoolly     = "woolly low end"
)

// ruleInput is everything an issue rule may inspect.
type ruleInput struct {
	metrics InstrumentMetrics
	band    func(name string) float64
}

// issueRule detects one problem. Evaluate returns the issue and whether it
// fired. Rules are declared in priority-independent order; ranking happens
// afterwards by score.
type issueRule struct {
	evaluate func(in ruleInput) (Issue, bool)
}

// subBands defines the named measurement ranges per instrument. Instruments
// absent from this map get no banded analysis, only base metrics.
var subBands = map[stems.Tag][]BandLevel{
	stems.TagVocal: {
		{Name: "fundamental", Low: 150, High: 400},
		{Name: "body", Low: 400, High: 1000},
		{Name: "clarity", Low: 2000, High: 4000},
		{Name: "presence", Low: 4000, High: 6000},
		{Name: "sibilance", Low: 6000, High: 8000},
		{Name: "air", Low: 8000, High: 12000},
	},
	stems.TagKick: {
		{Name: "subsonic", Low: 20, High: 40},
		{Name: "fundamental", Low: 40, High: 80},
		{Name: "attack", Low: 60, High: 100},
		{Name: "body", Low: 100, High: 200},
		{Name: "boxiness", Low: 200, High: 400},
		{Name: "click", Low: 2000, High: 5000},
	},
	stems.TagSnare: {
		{Name: "body", Low: 200, High: 400},
		{Name: "fatness", Low: 400, High: 800},
		{Name: "attack", Low: 2000, High: 5000},
		{Name: "crack", Low: 3000, High: 6000},
		{Name: "snappy", Low: 6000, High: 10000},
	},
	stems.TagBass: {
		{Name: "fundamental", Low: 80, High: 200},
		{Name: "harmonic", Low: 200, High: 800},
		{Name: "attack", Low: 1000, High: 3000},
		{Name: "brightness", Low: 3000, High: 6000},
	},
	stems.TagHihat: {
		{Name: "brightness", Low: 6000, High: 10000},
		{Name: "air", Low: 10000, High: 16000},
	},
	stems.TagElectricGuitar: {
		{Name: "body", Low: 200, High: 800},
		{Name: "presence", Low: 2000, High: 5000},
		{Name: "brightness", Low: 5000, High: 10000},
	},
	stems.TagAcousticGuitar: {
		{Name: "body", Low: 200, High: 800},
		{Name: "presence", Low: 2000, High: 5000},
		{Name: "brightness", Low: 5000, High: 10000},
	},
}

// issueRules holds the per-instrument detection tables. Every threshold is
// in dB against the stem's own mean spectrum or base metrics.
var issueRules = map[stems.Tag][]issueRule{
	stems.TagVocal: {
		// Intelligibility lives in 2-4 kHz; below -30 dB lyrics blur.
		{evaluate: func(in ruleInput) (Issue, bool) {
			clarity := in.band("clarity")
			if clarity >= -30 {
				return Issue{}, false
			}
			severity := SeverityImportant
			if clarity < -35 {
				severity = SeverityCritical
			}
			return Issue{
				Category: categoryFrequencyBalance,
				Severity: severity,
				Problem:  problemLowClarity,
				Detail:   fmt.Sprintf("2-4kHz: %.1fdB (target: -25dB or above)", clarity),
				Score:    abs(clarity + 25),
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			body, clarity := in.band("body"), in.band("clarity")
			if body <= clarity+8 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryFrequencyBalance,
				Severity: SeverityImportant,
				Problem:  problemMuddiness,
				Detail:   fmt.Sprintf("400-1000Hz excess (+%.1fdB vs clarity range)", body-clarity),
				Score:    body - clarity,
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			sibilance, clarity := in.band("sibilance"), in.band("clarity")
			if sibilance <= clarity+5 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryFrequencyBalance,
				Severity: SeverityImportant,
				Problem:  problemSibilance,
				Detail:   fmt.Sprintf("6-8kHz: %.1fdB (+%.1fdB vs clarity)", sibilance, sibilance-clarity),
				Score:    sibilance - clarity,
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			crest := in.metrics.CrestFactor
			switch {
			case crest < 6:
				return Issue{
					Category: categoryDynamics,
					Severity: SeverityCritical,
					Problem:  problemOverCompressed,
					Detail:   fmt.Sprintf("crest factor: %.1fdB (target: 8-12dB)", crest),
					Score:    abs(crest - 9),
				}, true
			case crest > 15:
				return Issue{
					Category: categoryDynamics,
					Severity: SeverityImportant,
					Problem:  problemWideDynamics,
					Detail:   fmt.Sprintf("crest factor: %.1fdB (target: 8-12dB)", crest),
					Score:    crest - 12,
				}, true
			}
			return Issue{}, false
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			lvm := in.metrics.LevelVsMix
			switch {
			case lvm < -8:
				return Issue{
					Category: categoryLevelBalance,
					Severity: SeverityImportant,
					Problem:  problemVocalBuried,
					Detail:   fmt.Sprintf("vs 2-mix: %.1fdB (target: -3 to -5dB)", lvm),
					Score:    abs(lvm + 4),
				}, true
			case lvm > -1:
				return Issue{
					Category: categoryLevelBalance,
					Severity: SeverityImportant,
					Problem:  problemVocalTooLoud,
					Detail:   fmt.Sprintf("vs 2-mix: %.1fdB (target: -3 to -5dB)", lvm),
					Score:    abs(lvm + 4),
				}, true
			}
			return Issue{}, false
		}},
	},
	stems.TagKick: {
		{evaluate: func(in ruleInput) (Issue, bool) {
			subsonic := in.band("subsonic")
			if subsonic <= -45 {
				return Issue{}, false
			}
			return Issue{
				Category: categorySubsonic,
				Severity: SeverityCritical,
				Problem:  problemKickSubsonic,
				Detail:   fmt.Sprintf("20-40Hz: %.1fdB", subsonic),
				Score:    subsonic + 45,
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			boxiness, fundamental := in.band("boxiness"), in.band("fundamental")
			if boxiness <= fundamental+5 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryFrequencyBalance,
				Severity: SeverityImportant,
				Problem:  problemKickBoxy,
				Detail:   fmt.Sprintf("200-400Hz excess (+%.1fdB vs fundamental)", boxiness-fundamental),
				Score:    boxiness - fundamental,
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			attack, fundamental := in.band("attack"), in.band("fundamental")
			if attack >= fundamental-5 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryAttack,
				Severity: SeverityImportant,
				Problem:  problemKickNoPunch,
				Detail:   fmt.Sprintf("attack band %.1fdB below fundamental %.1fdB", attack, fundamental),
				Score:    fundamental - attack,
			}, true
		}},
	},
	stems.TagSnare: {
		{evaluate: func(in ruleInput) (Issue, bool) {
			attack := in.band("attack")
			if attack >= -35 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryAttack,
				Severity: SeverityImportant,
				Problem:  problemSnareAttack,
				Detail:   fmt.Sprintf("2-5kHz: %.1fdB", attack),
				Score:    abs(attack + 35),
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			body := in.band("body")
			if body >= -40 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryFrequencyBalance,
				Severity: SeverityOptional,
				Problem:  problemSnareThin,
				Detail:   fmt.Sprintf("200-400Hz: %.1fdB", body),
				Score:    abs(body + 40),
			}, true
		}},
	},
	stems.TagBass: {
		// Harmonics carry the bass on small speakers.
		{evaluate: func(in ruleInput) (Issue, bool) {
			harmonic, fundamental := in.band("harmonic"), in.band("fundamental")
			if harmonic >= fundamental-10 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryFrequencyBalance,
				Severity: SeverityImportant,
				Problem:  problemBassInaudible,
				Detail:   fmt.Sprintf("harmonics %.1fdB below fundamental", fundamental-harmonic),
				Score:    fundamental - harmonic - 10,
			}, true
		}},
		{evaluate: func(in ruleInput) (Issue, bool) {
			harmonic, fundamental := in.band("harmonic"), in.band("fundamental")
			if fundamental <= harmonic+15 {
				return Issue{}, false
			}
			return Issue{
				Category: categoryDynamics,
				Severity: SeverityImportant,
				Problem:  problemBassWoolly,
				Detail:   fmt.Sprintf("fundamental +%.1fdB over harmonics", fundamental-harmonic),
				Score:    fundamental - harmonic - 15,
			}, true
		}},
	},
}

// strengthRules detect positive findings worth preserving.
func detectStrengths(tag stems.Tag, band func(string) float64, m InstrumentMetrics) []Strength {
	var out []Strength
	switch tag {
	case stems.TagVocal:
		clarity := band("clarity")
		if clarity > -25 {
			out = append(out, Strength{Point: fmt.Sprintf("excellent clarity (%.1fdB)", clarity), Impact: 5})
		} else if clarity > -28 {
			out = append(out, Strength{Point: fmt.Sprintf("good clarity (%.1fdB)", clarity), Impact: 4})
		}
		if air := band("air"); air > -30 {
			out = append(out, Strength{Point: fmt.Sprintf("rich air band (%.1fdB)", air), Impact: 4})
		}
		if m.CrestFactor >= 8 && m.CrestFactor <= 12 {
			out = append(out, Strength{Point: fmt.Sprintf("ideal dynamics (CF: %.1fdB)", m.CrestFactor), Impact: 5})
		}
	case stems.TagKick:
		if attack := band("attack"); attack > -25 {
			out = append(out, Strength{Point: fmt.Sprintf("good punch and attack (%.1fdB)", attack), Impact: 5})
		}
		if click := band("click"); click > -40 {
			out = append(out, Strength{Point: fmt.Sprintf("clear beater click (%.1fdB)", click), Impact: 4})
		}
	case stems.TagSnare:
		if crack := band("crack"); crack > -30 {
			out = append(out, Strength{Point: fmt.Sprintf("clear crack (%.1fdB)", crack), Impact: 4})
		}
		if snappy := band("snappy"); snappy > -35 {
			out = append(out, Strength{Point: fmt.Sprintf("crisp snares (%.1fdB)", snappy), Impact: 4})
		}
	case stems.TagBass:
		if fundamental := band("fundamental"); fundamental > -25 {
			out = append(out, Strength{Point: fmt.Sprintf("rich fundamental (%.1fdB)", fundamental), Impact: 5})
		}
		if attack := band("attack"); attack > -40 {
			out = append(out, Strength{Point: fmt.Sprintf("clear attack (%.1fdB)", attack), Impact: 4})
		}
	case stems.TagHihat:
		if brightness := band("brightness"); brightness > -30 {
			out = append(out, Strength{Point: "sufficient brightness", Impact: 4})
		}
	case stems.TagElectricGuitar, stems.TagAcousticGuitar:
		if presence := band("presence"); presence > -30 {
			out = append(out, Strength{Point: "good presence", Impact: 4})
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
