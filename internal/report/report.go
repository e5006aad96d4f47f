// Package report renders analysis results as terminal tables and as plain
// text suitable for an emailed report.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/diagnose"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/pipeline"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/trend"
)

// Session writes the full report for one analysis run.
func Session(out io.Writer, result *pipeline.Result) error {
	fmt.Fprintf(out, "Mix: %.1f dB RMS, crest %.1f, stereo width %.1f%%, %.0fs\n\n",
		result.Mix.RMSDB, result.Mix.CrestFactor, result.Mix.StereoWidth, result.Mix.Duration)

	if err := MixMetrics(out, result.Mix); err != nil {
		return err
	}
	if err := mixFindings(out, result.MixStrengths, result.MixSuggestions); err != nil {
		return err
	}
	for _, d := range result.Diagnoses {
		if err := Instrument(out, d); err != nil {
			return err
		}
	}
	if len(result.Comparisons) > 0 {
		if err := Comparisons(out, result.Comparisons); err != nil {
			return err
		}
	}
	if result.EntryID != "" {
		fmt.Fprintf(out, "Saved as session %s\n", result.EntryID)
	}
	return nil
}

// MixMetrics renders the whole-mix frequency balance.
func MixMetrics(out io.Writer, m mix.Metrics) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Band", "Range", "Level"})
	for i, band := range mix.Bands {
		err := table.Append([]string{
			band.Name,
			fmt.Sprintf("%.0f-%.0f Hz", band.Low, band.High),
			db(m.BandEnergies[i]),
		})
		if err != nil {
			return fmt.Errorf("rendering mix table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering mix table: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}

func mixFindings(out io.Writer, strengths, suggestions []diagnose.MixFinding) error {
	if len(strengths) > 0 {
		fmt.Fprintln(out, "Working well:")
		for _, s := range strengths {
			fmt.Fprintf(out, "  + %s\n", s.Message)
		}
		fmt.Fprintln(out)
	}
	if len(suggestions) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Severity", "Finding", "Suggestion"})
	for _, s := range suggestions {
		if err := table.Append([]string{string(s.Severity), s.Message, s.Solution}); err != nil {
			return fmt.Errorf("rendering findings table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering findings table: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}

// Instrument renders one stem diagnosis: measured bands, strengths, then
// the prioritized recommendations with their approaches spelled out.
func Instrument(out io.Writer, d *diagnose.Diagnosis) error {
	fmt.Fprintf(out, "## %s (%.1f dB RMS, %+.1f dB vs mix, crest %.1f)\n",
		strings.ToUpper(string(d.Tag)), d.Metrics.RMSDB, d.Metrics.LevelVsMix, d.Metrics.CrestFactor)

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Band", "Range", "Level"})
	for _, b := range d.Bands {
		err := table.Append([]string{b.Name, fmt.Sprintf("%.0f-%.0f Hz", b.Low, b.High), db(b.DB)})
		if err != nil {
			return fmt.Errorf("rendering band table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering band table: %w", err)
	}

	if d.Trend != nil {
		fmt.Fprintf(out, "Trend: %s (%+.1f dB since last comparable session)\n", d.Trend.Status, d.Trend.RMSChange)
	}
	for _, s := range d.Strengths {
		fmt.Fprintf(out, "  + %s\n", s.Point)
	}
	for i, rec := range d.Recommendations {
		fmt.Fprintf(out, "\n%d. [%s] %s\n", i+1, rec.Priority, rec.Title)
		if rec.ProblemDetail != "" {
			fmt.Fprintf(out, "   %s\n", rec.ProblemDetail)
		}
		if rec.TrendNote != "" {
			fmt.Fprintf(out, "   %s\n", rec.TrendNote)
		}
		for _, a := range rec.Approaches {
			fmt.Fprintf(out, "   - %s (difficulty %d/5)\n", a.Method, a.Difficulty)
			for _, step := range a.Steps {
				fmt.Fprintf(out, "       %s\n", step)
			}
		}
		for _, res := range rec.ExpectedResults {
			fmt.Fprintf(out, "   => %s\n", res)
		}
	}
	fmt.Fprintln(out)
	return nil
}

// Comparisons renders the trend table plus per-session insights.
func Comparisons(out io.Writer, comps []trend.Comparison) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"Date", "Venue", "Match", "RMS delta", "Width delta"})
	for _, c := range comps {
		err := table.Append([]string{
			c.PastDate.Format("2006-01-02"),
			c.PastVenue,
			fmt.Sprintf("%s (%d)", c.MatchType, c.Score),
			fmt.Sprintf("%+.1f dB", c.RMS.Difference),
			fmt.Sprintf("%+.1f%%", c.StereoWidth.Difference),
		})
		if err != nil {
			return fmt.Errorf("rendering comparison table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering comparison table: %w", err)
	}

	for _, c := range comps {
		for _, in := range c.Insights {
			fmt.Fprintf(out, "  [%s] %s\n", in.Severity, in.Message)
		}
	}
	fmt.Fprintln(out)
	return nil
}

// Sessions renders a history listing.
func Sessions(out io.Writer, entries []*history.Entry) error {
	table := tablewriter.NewWriter(out)
	table.Header([]string{"ID", "Name", "Venue", "Capacity", "Console", "PA"})
	for _, e := range entries {
		err := table.Append([]string{
			e.ID,
			e.Name,
			e.Metadata.VenueName,
			strconv.Itoa(e.Metadata.VenueCapacity),
			e.Metadata.ConsoleName,
			e.Metadata.PASystemName,
		})
		if err != nil {
			return fmt.Errorf("rendering session table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering session table: %w", err)
	}
	return nil
}

func db(v float64) string {
	if v <= -100 {
		return "silent"
	}
	return fmt.Sprintf("%.1f dB", v)
}
