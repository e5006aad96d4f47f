// Package pipeline runs one analysis request end to end: decode, mix
// analysis, stem separation, diagnosis, trend comparison, and finally the
// history append. Stages run strictly in order; the request is cancellable
// between stages and a failed stage aborts the whole run with no partial
// history write.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/audio"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/diagnose"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/equipment"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/history"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/trend"
)

// similarLimit caps how many past sessions feed trend comparison and
// per-instrument trend lookup.
const similarLimit = 5

// Request describes one analysis run.
type Request struct {
	AudioPath   string
	Lineup      string
	SessionName string
	Meta        history.Metadata

	// StageTimeout bounds each stage when positive. A stage overrunning
	// it fails the whole request.
	StageTimeout time.Duration

	// SkipHistory analyzes without persisting, for previews.
	SkipHistory bool
}

// Result is the complete output of a successful run.
type Result struct {
	Mix            mix.Metrics
	Tags           []stems.Tag
	Diagnoses      []*diagnose.Diagnosis
	MixStrengths   []diagnose.MixFinding
	MixSuggestions []diagnose.MixFinding
	Comparisons    []trend.Comparison
	Console        equipment.ConsoleProfile
	PA             equipment.PAProfile
	EntryID        string
}

// Pipeline wires the stages to their collaborators. A single pipeline may
// serve concurrent requests; the store is the only shared mutable state.
type Pipeline struct {
	Decoder   audio.Decoder
	Store     *history.Store
	Equipment equipment.Provider
	Logger    *slog.Logger
}

// Run executes the request. Any stage failure aborts with an error naming
// the stage; history is appended only after everything else succeeded.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	result := &Result{}

	var w *audio.Waveform
	err := p.stage(ctx, req, "decoding audio", func(ctx context.Context) error {
		decoded, err := p.Decoder.Decode(ctx, req.AudioPath)
		if err != nil {
			return err
		}
		w = decoded
		log.Info("decoded audio", "path", req.AudioPath, "duration", w.Duration)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var past []*history.Entry
	err = p.stage(ctx, req, "loading analysis context", func(ctx context.Context) error {
		result.Mix = mix.Analyze(w)
		result.Tags = stems.ParseLineup(req.Lineup)

		console, err := p.Equipment.Console(ctx, req.Meta.ConsoleName)
		if err != nil {
			return fmt.Errorf("resolving console: %w", err)
		}
		pa, err := p.Equipment.PA(ctx, req.Meta.PASystemName)
		if err != nil {
			return fmt.Errorf("resolving pa system: %w", err)
		}
		result.Console, result.PA = console, pa

		// History reads happen before diagnosis so trend data is in hand.
		past, err = p.Store.Similar(req.Meta, similarLimit)
		if err != nil {
			return fmt.Errorf("finding similar sessions: %w", err)
		}
		log.Info("analysis context ready", "tags", len(result.Tags), "similar_sessions", len(past))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := p.diagnoseAndCompare(ctx, req, result, w, past); err != nil {
		return nil, err
	}

	if req.SkipHistory {
		return result, nil
	}

	id, err := p.Store.Append(req.SessionName, req.Meta, snapshot(result))
	if err != nil {
		return nil, fmt.Errorf("stage saving history: %w", err)
	}
	result.EntryID = id
	log.Info("session saved", "id", id)
	return result, nil
}

// diagnoseAndCompare runs the post-decode stages, each separately
// cancellable and timed.
func (p *Pipeline) diagnoseAndCompare(ctx context.Context, req Request, result *Result, w *audio.Waveform, past []*history.Entry) error {
	var separated []stems.Stem
	err := p.stage(ctx, req, "separating stems", func(context.Context) error {
		separated = stems.NewSeparator(w.Mono, w.SampleRate).Separate(result.Tags)
		return nil
	})
	if err != nil {
		return err
	}

	err = p.stage(ctx, req, "diagnosing instruments", func(context.Context) error {
		engine := diagnose.New(result.Console, result.PA, req.Meta.VenueCapacity, req.Meta.StageVolume, w.SampleRate)
		result.Diagnoses = engine.DiagnoseAll(separated, result.Mix.RMSDB, pastInstruments(past))
		result.MixStrengths, result.MixSuggestions = engine.MixFindings(result.Mix)
		return nil
	})
	if err != nil {
		return err
	}

	return p.stage(ctx, req, "comparing trends", func(context.Context) error {
		result.Comparisons = trend.New(result.Mix, req.Meta).CompareAll(past)
		return nil
	})
}

// stage runs one pipeline step, honoring cancellation before it starts and
// the per-stage timeout while it runs. Errors are tagged with the stage
// name so the failure surfaces as a single clear message.
func (p *Pipeline) stage(ctx context.Context, req Request, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}

	stageCtx := ctx
	if req.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, req.StageTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- fn(stageCtx) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		return nil
	case <-stageCtx.Done():
		return fmt.Errorf("stage %s: %w", name, stageCtx.Err())
	}
}

// pastInstruments picks the most relevant historical diagnosis per tag:
// the first similar entry (best match first) carrying that instrument.
func pastInstruments(past []*history.Entry) map[stems.Tag]diagnose.PastInstrument {
	out := make(map[stems.Tag]diagnose.PastInstrument)
	for _, entry := range past {
		for name, inst := range entry.Analysis.Instruments {
			tag := stems.Tag(name)
			if _, ok := out[tag]; !ok {
				out[tag] = inst
			}
		}
	}
	return out
}

// snapshot flattens a result into the persisted analysis payload.
func snapshot(result *Result) history.Snapshot {
	snap := history.Snapshot{
		Metrics:     result.Mix,
		Instruments: make(map[string]diagnose.PastInstrument, len(result.Diagnoses)),
	}
	for _, d := range result.Diagnoses {
		snap.Instruments[string(d.Tag)] = diagnose.PastInstrument{
			RMSDB: d.Metrics.RMSDB,
			Bands: d.BandMap(),
		}
	}
	return snap
}
