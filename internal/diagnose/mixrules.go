package diagnose

import (
	"fmt"
	"strings"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
)

// MixFindings evaluates the whole-mix metrics against loudness, phase,
// stereo-width and balance rules. It returns positive findings and
// improvement suggestions separately; suggestions are ordered critical
// first, then by rule order.
func (e *Engine) MixFindings(m mix.Metrics) (strengths, suggestions []MixFinding) {
	strengths = e.mixStrengths(m)

	var critical, important []MixFinding
	add := func(f MixFinding) {
		if f.Severity == SeverityCritical {
			critical = append(critical, f)
		} else {
			important = append(important, f)
		}
	}

	// Out-of-phase content cancels at the PA.
	if m.Correlation < 0.7 {
		add(MixFinding{
			Category: "stereo_image",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("low phase correlation (r=%.3f), phase interference present", m.Correlation),
			Solution: "Verify panning (center sources fully mono), check stereo reverb phase, and reduce the side channel by about 3dB with MS processing",
			Impact:   5,
		})
	}

	if e.VenueCapacity > 0 && e.VenueCapacity < 200 && m.StereoWidth > 35 {
		add(MixFinding{
			Category: "stereo_image",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("stereo width too wide for a small venue (%.1f%%)", m.StereoWidth),
			Solution: "Narrow the image to 18-22%, collapse everything below 100Hz to mono, and high-pass the side channel at 200Hz",
			Impact:   5,
		})
	} else if e.VenueCapacity >= 500 && m.StereoWidth < 25 {
		add(MixFinding{
			Category: "stereo_image",
			Severity: SeverityImportant,
			Message:  fmt.Sprintf("stereo width narrow for a large venue (%.1f%%)", m.StereoWidth),
			Solution: "Widen to 35-45%, open the reverb width to 60-70%, and add +2dB of stereo emphasis above 4kHz",
			Impact:   3,
		})
	}

	if m.RMSDB < -20 {
		add(MixFinding{
			Category: "loudness",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("low RMS (%.1f dBFS), the mix will sound thin", m.RMSDB),
			Solution: e.mixBusCompressorSuggestion(),
			Impact:   5,
		})
	}

	// Content below 40 Hz only burns amplifier headroom.
	if m.VeryLowRMS > 0.001 {
		freq, reason := e.masterHPF()
		add(MixFinding{
			Category: "subsonic",
			Severity: SeverityCritical,
			Message:  "subsonic content detected below 40Hz",
			Solution: fmt.Sprintf("Master HPF: %dHz, 24dB/oct Butterworth. %s Frees up to 3dB of headroom and protects the drivers.", freq, reason),
			Impact:   5,
		})
	}

	subBass, mid, highMid := m.BandEnergies[0], m.BandEnergies[3], m.BandEnergies[4]
	if subBass > mid+12 {
		add(MixFinding{
			Category: "frequency_balance",
			Severity: SeverityImportant,
			Message:  fmt.Sprintf("sub-bass excess (%.1fdB vs mid %.1fdB)", subBass, mid),
			Solution: "Master EQ: 60Hz, Q=1.0, -3dB and 80Hz, Q=0.7, -2dB; check room modes with an RTA",
			Impact:   4,
		})
	}
	if highMid < mid-10 {
		add(MixFinding{
			Category: "frequency_balance",
			Severity: SeverityImportant,
			Message:  fmt.Sprintf("clarity range lacking (%.1fdB vs mid %.1fdB)", highMid, mid),
			Solution: "Master EQ: 3.2kHz, Q=1.5, +3dB; 5kHz, Q=2.0, +2dB; 8kHz shelving +1.5dB. Excess boost invites feedback.",
			Impact:   4,
		})
	}

	if m.CrestFactor < 6 {
		add(MixFinding{
			Category: "dynamics",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("over-compression (crest factor %.1fdB below 6dB)", m.CrestFactor),
			Solution: "Raise the bus compressor threshold, lower the ratio toward 3:1, and keep the limiter ceiling at -0.3dBFS; target a crest factor of 10-14dB",
			Impact:   5,
		})
	}

	return strengths, append(critical, important...)
}

func (e *Engine) mixStrengths(m mix.Metrics) []MixFinding {
	var out []MixFinding

	if m.Correlation > 0.95 {
		out = append(out, MixFinding{
			Category: "stereo_image", Severity: SeverityOptional, Impact: 5,
			Message: fmt.Sprintf("excellent phase correlation (r=%.3f)", m.Correlation),
		})
	} else if m.Correlation > 0.85 {
		out = append(out, MixFinding{
			Category: "stereo_image", Severity: SeverityOptional, Impact: 4,
			Message: fmt.Sprintf("good phase correlation (r=%.3f)", m.Correlation),
		})
	}

	if m.CrestFactor >= 10 && m.CrestFactor <= 14 {
		out = append(out, MixFinding{
			Category: "dynamics", Severity: SeverityOptional, Impact: 5,
			Message: fmt.Sprintf("ideal crest factor (%.1fdB)", m.CrestFactor),
		})
	} else if m.CrestFactor >= 8 && m.CrestFactor < 10 {
		out = append(out, MixFinding{
			Category: "dynamics", Severity: SeverityOptional, Impact: 4,
			Message: fmt.Sprintf("good crest factor (%.1fdB)", m.CrestFactor),
		})
	}

	if m.OnsetAvg > 2.0 {
		out = append(out, MixFinding{
			Category: "transients", Severity: SeverityOptional, Impact: 4,
			Message: fmt.Sprintf("good transient response (%.2f)", m.OnsetAvg),
		})
	}

	if e.VenueCapacity > 0 {
		small := e.VenueCapacity < 200
		if (small && m.StereoWidth >= 15 && m.StereoWidth <= 25) ||
			(!small && m.StereoWidth >= 30 && m.StereoWidth <= 50) {
			out = append(out, MixFinding{
				Category: "stereo_image", Severity: SeverityOptional, Impact: 4,
				Message: fmt.Sprintf("stereo width suits the venue size (%.1f%%)", m.StereoWidth),
			})
		}
	}

	if m.BandEnergies[3] > -30 {
		out = append(out, MixFinding{
			Category: "frequency_balance", Severity: SeverityOptional, Impact: 4,
			Message: fmt.Sprintf("healthy midrange energy (%.1fdB)", m.BandEnergies[3]),
		})
	}

	return out
}

func (e *Engine) mixBusCompressorSuggestion() string {
	if e.Console.Known && strings.Contains(e.Console.Name, "CL") {
		return "Bus compressor, Comp260 (VCA): Attack 25ms, Release Auto, Ratio 3:1, Threshold -12dB, Make-up +4dB"
	}
	if e.Console.Known && strings.Contains(e.Console.Name, "X32") {
		return "Bus compressor, Vintage (Opto): Attack 20ms, Release 200ms, Ratio 4:1, Threshold -10dB, Make-up +5dB"
	}
	return "Bus compressor: Attack 20-30ms, Release 100-300ms, Ratio 3:1 to 4:1, soft knee; target RMS around -14dB"
}

// masterHPF picks the whole-mix high-pass from the PA's low extension.
func (e *Engine) masterHPF() (int, string) {
	if !e.PA.Known {
		return 35, "Assuming a generic PA system."
	}
	low := e.PA.LowExtensionHz
	switch {
	case low <= 45:
		return 35, fmt.Sprintf("%s reproduces down to %.0fHz, a 35Hz HPF protects it.", e.PA.Name, low)
	case low <= 50:
		return 40, fmt.Sprintf("%s extends to %.0fHz, a 40Hz HPF fits.", e.PA.Name, low)
	default:
		return 50, fmt.Sprintf("%s extends to %.0fHz, a 50Hz HPF is required.", e.PA.Name, low)
	}
}
