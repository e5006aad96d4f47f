package diagnose

import (
	"fmt"
	"strings"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
)

// buildRecommendation translates a ranked issue into a recommendation with
// one or more remediation approaches, gated and tailored by the engine's
// equipment profiles. Returns false when no builder exists for the issue.
func (e *Engine) buildRecommendation(issue Issue, trend *TrendRecord) (Recommendation, bool) {
	rec := Recommendation{
		Priority:      issue.Severity,
		ProblemDetail: issue.Detail,
	}

	switch issue.Problem {
	case problemLowClarity:
		rec.Title = "Improve vocal clarity"
		rec.Approaches = append(rec.Approaches,
			Approach{
				Method:     "EQ (basic)",
				Steps:      e.vocalClarityEQBasic(),
				Pros:       []string{"simple", "low feedback risk"},
				Cons:       []string{"limited effect"},
				Difficulty: 1,
			},
			Approach{
				Method:     "EQ + compressor (recommended)",
				Steps:      e.vocalClarityEQComp(),
				Pros:       []string{"large effect", "balanced"},
				Cons:       []string{"takes time to dial in"},
				Difficulty: 3,
			})
		if e.Console.HasDynamicEQ {
			rec.Approaches = append(rec.Approaches, Approach{
				Method: "Dynamic EQ (advanced)",
				Steps: []string{
					"Band 1: 250Hz, Threshold -20dB, Gain -3dB, Q 2.0, Attack 30ms (cuts only loud passages)",
					"Band 2: 3kHz, Threshold -25dB, Gain +4dB, Q 1.5, Attack 10ms (boosts clarity dynamically)",
				},
				Pros:       []string{"most natural", "frequency-dependent processing"},
				Cons:       []string{"hard to set up"},
				Difficulty: 4,
			})
		}
		if e.PA.Known {
			steps := []string{
				fmt.Sprintf("Measure the room with an RTA and check the 2-4kHz range on the %s rig", e.PA.Name),
				"Correct with system EQ rather than channel EQ",
			}
			for _, eq := range e.PA.CompensationEQ {
				steps = append(steps, "System EQ starting point: "+eq)
			}
			rec.Approaches = append(rec.Approaches, Approach{
				Method:     "PA system adjustment",
				Steps:      steps,
				Pros:       []string{"non-destructive to sources", "optimizes the whole system"},
				Cons:       []string{"venue dependent"},
				Difficulty: 3,
			})
		}
		rec.ExpectedResults = []string{"lyric intelligibility +40-60%", "stronger presence", "clear placement in the mix"}

	case problemMuddiness:
		rec.Title = "Remove vocal muddiness"
		rec.Approaches = append(rec.Approaches,
			Approach{
				Method: "Targeted EQ cut",
				Steps: []string{
					"PEQ: 400Hz, Q=1.0, -2.5dB (wide cut)",
					"or PEQ: 600Hz, Q=2.0, -3.0dB (surgical)",
					"Try both and judge by ear",
				},
				Pros:       []string{"immediate", "simple"},
				Cons:       []string{"overdoing it thins the voice"},
				Difficulty: 1,
			},
			Approach{
				Method: "HPF + mid shaping",
				Steps: []string{
					"HPF: 100Hz, 12dB/oct",
					"PEQ: 250Hz, Q=1.5, -2.0dB (mud)",
					"PEQ: 800Hz, Q=2.5, -2.5dB (boxiness)",
					"PEQ: 3kHz, Q=1.5, +2.0dB (clarity compensation)",
				},
				Pros:       []string{"improves overall balance", "helps clarity too"},
				Cons:       []string{"uses several bands"},
				Difficulty: 3,
			})
		rec.ExpectedResults = []string{"clear vocal", "better separation from instruments"}

	case problemSibilance:
		rec.Title = "Control sibilance"
		if e.Console.HasDeEsser {
			rec.Approaches = append(rec.Approaches, Approach{
				Method: "De-esser (recommended)",
				Steps: []string{
					"Frequency: 6.5kHz (sweep 6-7.5kHz by ear)",
					"Threshold: 3dB below where sibilants trigger",
					"Range: -3 to -6dB",
					"Attack: 1ms, Release: 50ms",
				},
				Pros:       []string{"frequency selective", "natural"},
				Cons:       []string{"needs console support"},
				Difficulty: 2,
			})
		}
		rec.Approaches = append(rec.Approaches,
			Approach{
				Method: "Manual EQ cut",
				Steps: []string{
					"PEQ: 6kHz, Q=3.0, -2.0dB",
					"or PEQ: 7kHz, Q=2.5, -2.5dB",
					"Cuts beyond -3dB darken the voice",
				},
				Pros:       []string{"works on any console"},
				Cons:       []string{"always-on cut sounds unnatural"},
				Difficulty: 2,
			},
			Approach{
				Method: "Microphone technique",
				Steps: []string{
					"Dynamic mics (SM58 family) soften sibilance; condensers accent it",
					"Closer placement raises lows and lowers sibilance",
					"Angling the mic slightly downward reduces sibilance",
				},
				Pros:       []string{"fixes the source", "no EQ needed"},
				Cons:       []string{"needs preparation"},
				Difficulty: 3,
			})
		rec.ExpectedResults = []string{"easier listening", "natural top end", "less listener fatigue"}

	case problemOverCompressed:
		rec.Title = "Optimize vocal dynamics"
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "Relax the compressor",
			Steps: []string{
				"Raise Threshold (-15dB toward -10dB)",
				"Lower Ratio (6:1 toward 3:1)",
				"Slow the Attack (5ms toward 15ms)",
				"Target crest factor 8-12dB",
			},
			Pros:       []string{"restores musical expression"},
			Cons:       []string{"level varies more"},
			Difficulty: 2,
		})
		rec.ExpectedResults = []string{"stable level", "expression preserved", "better overall balance"}

	case problemWideDynamics:
		rec.Title = "Optimize vocal dynamics"
		rec.Approaches = append(rec.Approaches, Approach{
			Method:     "Compressor setup",
			Steps:      e.vocalCompressorSteps(),
			Pros:       []string{"stable vocal", "better mix balance"},
			Cons:       []string{"takes practice"},
			Difficulty: 3,
		})
		rec.ExpectedResults = []string{"stable level", "expression preserved"}

	case problemVocalBuried, problemVocalTooLoud:
		rec.Title = "Rebalance vocal level"
		direction := "Raise"
		if issue.Problem == problemVocalTooLoud {
			direction = "Lower"
		}
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "Gain staging",
			Steps: []string{
				fmt.Sprintf("%s the vocal fader toward -3 to -5dB against the 2-mix", direction),
				"Check gain reduction on the vocal compressor first; makeup gain may be off",
				"Re-verify against the loudest chorus section",
			},
			Pros:       []string{"direct"},
			Cons:       []string{"masks upstream gain problems if rushed"},
			Difficulty: 1,
		})
		rec.ExpectedResults = []string{"vocal sits correctly in the mix"}

	case problemKickSubsonic:
		hpf := e.kickHPFFreq()
		rec.Title = "Set the kick HPF"
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "High-pass filter (required)",
			Steps: []string{
				fmt.Sprintf("HPF: %dHz, 24dB/oct", hpf),
				"Recovers 2-3dB of headroom and protects the PA",
				e.paKickNote(),
			},
			Pros:       []string{"tight low end", "less system load"},
			Difficulty: 1,
		})
		rec.ExpectedResults = []string{"headroom +2-3dB", "clear low end"}

	case problemKickBoxy:
		rec.Title = "Remove kick boxiness"
		rec.Approaches = append(rec.Approaches, Approach{
			Method:     "EQ cut",
			Steps:      []string{"PEQ: 250Hz, Q=3.0, -3.0dB"},
			Pros:       []string{"tighter kick"},
			Difficulty: 1,
		})
		rec.ExpectedResults = []string{"clear low end", "more punch"}

	case problemKickNoPunch:
		rec.Title = "Strengthen kick punch"
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "EQ + compressor",
			Steps: []string{
				"PEQ: 70Hz, Q=1.2, +4.0dB (fundamental)",
				"PEQ: 3kHz, Q=2.0, +2.0dB (beater)",
				"Compressor: Threshold -15dB, Ratio 3:1, Attack 20ms (keeps the attack), Release 150ms",
				"Gate (optional): Attack 0.1ms, Release 150ms",
			},
			Difficulty: 2,
		})
		rec.ExpectedResults = []string{"punch +40%", "clearer attack"}

	case problemSnareAttack:
		rec.Title = "Strengthen snare attack"
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "EQ + compressor",
			Steps: []string{
				"PEQ: 3.5kHz, Q=2.0, +3.0dB (crack)",
				"PEQ: 7kHz, Q=1.5, +2.0dB (snappy)",
				"Compressor: Threshold -12dB, Ratio 4:1, Attack 5ms, Release 100ms",
				"Gate: Attack 0.1ms, Release 80ms",
			},
			Difficulty: 2,
		})
		rec.ExpectedResults = []string{"attack +50%", "defined snare"}

	case problemSnareThin:
		rec.Title = "Strengthen snare body"
		rec.Approaches = append(rec.Approaches, Approach{
			Method:     "EQ boost",
			Steps:      []string{"PEQ: 250Hz, Q=1.5, +2.5dB"},
			Difficulty: 1,
		})
		rec.ExpectedResults = []string{"fuller snare", "more presence"}

	case problemBassInaudible:
		rec.Title = "Make the bass easier to hear"
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "Harmonic emphasis",
			Steps: []string{
				"PEQ: 400Hz, Q=1.5, +3.0dB (harmonics)",
				"PEQ: 2kHz, Q=2.0, +2.0dB (attack)",
			},
			Pros:       []string{"audible even on small speakers"},
			Difficulty: 2,
		})
		rec.ExpectedResults = []string{"audibility +60%", "clear bass line"}

	case problemBassWoolly:
		rec.Title = "Tighten the low end"
		rec.Approaches = append(rec.Approaches, Approach{
			Method: "EQ + compressor",
			Steps: []string{
				"PEQ: 120Hz, Q=2.0, -2.5dB (excess lows)",
				"Compressor: Threshold -15dB, Ratio 3:1, Attack 30ms (keeps the attack), Release 200ms",
			},
			Difficulty: 2,
		})
		rec.ExpectedResults = []string{"tight low end", "clear bass"}

	default:
		return Recommendation{}, false
	}

	if trend != nil {
		switch trend.Status {
		case TrendImproving:
			rec.TrendNote = "improving since last session; keep the current direction"
		case TrendDegrading:
			rec.TrendNote = "worse than last session; address promptly"
		}
	}
	return rec, true
}

// baselineRecommendation returns the always-on channel setup for the
// instruments whose diagnosis is not threshold driven. The electric guitar
// baseline is important because it protects the vocal's clarity range;
// the rest are optional starting points.
func baselineRecommendation(tag stems.Tag) (Recommendation, bool) {
	switch tag {
	case stems.TagHihat:
		return Recommendation{
			Priority: SeverityOptional,
			Title:    "Hi-hat setup",
			Approaches: []Approach{{
				Method: "HPF + EQ + light compression",
				Steps: []string{
					"HPF: 300Hz, 12dB/oct (removes low-end bleed)",
					"PEQ: 8kHz, Q=1.5, +1-2dB (brightness)",
					"Compressor (light): Threshold -10dB, Ratio 2:1",
				},
				Difficulty: 1,
			}},
			ExpectedResults: []string{"clear hi-hat"},
		}, true

	case stems.TagTom:
		return Recommendation{
			Priority: SeverityOptional,
			Title:    "Tom setup",
			Approaches: []Approach{{
				Method: "HPF + EQ + gate",
				Steps: []string{
					"HPF: 60Hz, 12dB/oct",
					"PEQ: 150Hz, Q=1.5, +3dB (body)",
					"PEQ: 2.5kHz, Q=2.0, +2dB (attack)",
					"Gate: Attack 0.5ms, Release 200ms, threshold by ear",
				},
				Difficulty: 2,
			}},
			ExpectedResults: []string{"defined tom sound"},
		}, true

	case stems.TagElectricGuitar:
		return Recommendation{
			Priority: SeverityImportant,
			Title:    "Electric guitar setup",
			Approaches: []Approach{{
				Method: "HPF + EQ + compressor",
				Steps: []string{
					"HPF: 80Hz, 12dB/oct",
					"PEQ: 2.5kHz, Q=2.0, +2-3dB (stays clear of the vocal's 3.2kHz boost)",
					"Compressor: Threshold -12dB, Ratio 3:1, Attack 15ms, Release 150ms",
				},
				Difficulty: 2,
			}},
			ExpectedResults: []string{"separation from the vocal", "clear guitar"},
		}, true

	case stems.TagAcousticGuitar:
		return Recommendation{
			Priority: SeverityOptional,
			Title:    "Acoustic guitar setup",
			Approaches: []Approach{{
				Method: "HPF + EQ",
				Steps: []string{
					"HPF: 80Hz, 12dB/oct",
					"PEQ: 3kHz, Q=1.5, +2dB (brightness)",
					"PEQ: 8kHz, Q=2.0, +1.5dB (air)",
				},
				Difficulty: 1,
			}},
			ExpectedResults: []string{"clear acoustic sound"},
		}, true

	case stems.TagKeyboard, stems.TagSynth:
		title := "Keyboard setup"
		if tag == stems.TagSynth {
			title = "Synth setup"
		}
		return Recommendation{
			Priority: SeverityOptional,
			Title:    title,
			Approaches: []Approach{{
				Method: "HPF + range check",
				Steps: []string{
					"HPF: 60Hz, 12dB/oct",
					"Check overlap with the vocal and guitar ranges; carve space where they collide",
				},
				Difficulty: 1,
			}},
			ExpectedResults: []string{"blends with the other instruments"},
		}, true
	}
	return Recommendation{}, false
}

// vocalClarityEQBasic tailors the basic clarity EQ to the room. Small
// venues with loud stages get narrow, cautious boosts to stay clear of
// feedback.
func (e *Engine) vocalClarityEQBasic() []string {
	small := e.VenueCapacity > 0 && e.VenueCapacity < 200
	loudStage := e.StageVolume == "high" || e.StageVolume == "medium"
	if small && loudStage {
		steps := []string{
			"Small venue with loud stage: watch for feedback",
			"PEQ Band 1: 3.2kHz, Q=3.0, +2.5dB (narrow, cautious)",
			"PEQ Band 2: 5kHz, Q=2.0, +1.5dB",
			"Raise in +0.5dB steps",
		}
		if len(e.PA.FeedbackProneHz) > 0 {
			steps = append(steps, fmt.Sprintf("This rig rings first around %s; avoid boosting there", hzList(e.PA.FeedbackProneHz)))
		}
		return steps
	}
	return []string{
		"PEQ Band 1: 2.5kHz, Q=1.5, +3.0dB (clarity)",
		"PEQ Band 2: 5kHz, Q=2.0, +2.0dB (presence)",
		"PEQ Band 3: 8kHz, shelving, +1.5dB (air)",
	}
}

func (e *Engine) vocalClarityEQComp() []string {
	steps := []string{
		"Step 1, HPF: 80Hz, 18dB/oct",
		"Step 2, cleanup EQ: 250Hz, Q=2.5, -2.0dB",
		"Step 3, compressor:",
	}
	steps = append(steps, e.compressorBlock()...)
	return append(steps,
		"Step 4, clarity EQ: 3kHz, Q=1.5, +3.0dB then 5kHz, Q=2.0, +2.0dB",
		"Order matters: HPF, cleanup EQ, compressor, clarity EQ",
	)
}

func (e *Engine) vocalCompressorSteps() []string {
	return append([]string{"Compressor:"}, e.compressorBlock()...)
}

// compressorBlock picks a model when the console offers one.
func (e *Engine) compressorBlock() []string {
	if e.Console.Known && strings.Contains(e.Console.Name, "CL") {
		return []string{
			"Type: Comp260 (VCA, transparent)",
			"Threshold: -18dB, Ratio: 4:1",
			"Attack: 10ms, Release: Auto",
			"Make-up: +3dB, target gain reduction 4-6dB",
		}
	}
	return []string{
		"Threshold: -18dB, Ratio: 4:1",
		"Attack: 10-15ms, Release: 100-150ms",
		"Make-up: +3dB, target gain reduction 4-6dB",
	}
}

// kickHPFFreq picks the kick channel high-pass from the PA's low-frequency
// extension.
func (e *Engine) kickHPFFreq() int {
	if !e.PA.Known {
		return 35
	}
	name := strings.ToLower(e.PA.Name)
	switch {
	case strings.Contains(name, "d&b") || e.PA.LowExtensionHz <= 45:
		return 35
	case strings.Contains(name, "jbl") || e.PA.LowExtensionHz <= 50:
		return 30
	default:
		return 40
	}
}

func hzList(freqs []float64) string {
	parts := make([]string, len(freqs))
	for i, f := range freqs {
		parts[i] = fmt.Sprintf("%.0fHz", f)
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) paKickNote() string {
	if !e.PA.Known {
		return "Assuming a generic PA system"
	}
	return fmt.Sprintf("Tuned for the %s characteristics", e.PA.Name)
}
