package report

import (
	"bytes"
	"fmt"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/pipeline"
)

// EmailBody builds the plain-text body for an emailed session report. It
// leads with the actionable items so the summary survives aggressive mail
// client truncation.
func EmailBody(result *pipeline.Result) string {
	out := new(bytes.Buffer)

	fmt.Fprintf(out, "Mix check: %.1f dB RMS, crest %.1f, width %.1f%%\n\n", result.Mix.RMSDB, result.Mix.CrestFactor, result.Mix.StereoWidth)

	for _, s := range result.MixSuggestions {
		fmt.Fprintf(out, "[%s] %s\n", s.Severity, s.Message)
		if s.Solution != "" {
			fmt.Fprintf(out, "  %s\n", s.Solution)
		}
	}
	if len(result.MixSuggestions) > 0 {
		fmt.Fprintln(out)
	}

	for _, d := range result.Diagnoses {
		if len(d.Recommendations) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", d.Tag)
		for _, rec := range d.Recommendations {
			fmt.Fprintf(out, "  [%s] %s\n", rec.Priority, rec.Title)
		}
	}

	if len(result.Comparisons) > 0 {
		fmt.Fprintln(out, "\nVersus past sessions:")
		for _, c := range result.Comparisons {
			for _, in := range c.Insights {
				fmt.Fprintf(out, "  %s\n", in.Message)
			}
		}
	}

	if result.EntryID != "" {
		fmt.Fprintf(out, "\nSaved as session %s\n", result.EntryID)
	}
	return out.String()
}
