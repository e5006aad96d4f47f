package diagnose

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/audio"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/equipment"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/stems"
)

func testEngine() *Engine {
	return New(equipment.DefaultConsole("test"), equipment.DefaultPA("test"), 300, "low", audio.SampleRate)
}

func vocalDiagnosis(bands map[string]float64, m InstrumentMetrics) *Diagnosis {
	d := &Diagnosis{Tag: stems.TagVocal, Metrics: m}
	for _, r := range subBands[stems.TagVocal] {
		db, ok := bands[r.Name]
		if !ok {
			db = -25
		}
		d.Bands = append(d.Bands, BandLevel{Name: r.Name, Low: r.Low, High: r.High, DB: db})
	}
	return d
}

func TestOverCompressedVocalIsCriticalAndRankedFirst(t *testing.T) {
	// Crest factor 5 dB trips the over-compression rule (score 4). The
	// slightly-loud vocal scores 3.5, so dynamics must rank first.
	d := vocalDiagnosis(map[string]float64{"clarity": -20, "body": -25, "sibilance": -25},
		InstrumentMetrics{CrestFactor: 5, LevelVsMix: -0.5})

	issues := detectIssues(d)
	require.NotEmpty(t, issues)
	assert.Equal(t, problemOverCompressed, issues[0].Problem)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.InDelta(t, 4.0, issues[0].Score, 1e-9)
	for _, issue := range issues[1:] {
		assert.Less(t, issue.Score, issues[0].Score)
	}
}

func TestVocalClarityEscalatesToCritical(t *testing.T) {
	d := vocalDiagnosis(map[string]float64{"clarity": -36, "body": -40, "sibilance": -45},
		InstrumentMetrics{CrestFactor: 10, LevelVsMix: -4})
	issues := detectIssues(d)

	require.Len(t, issues, 1)
	assert.Equal(t, problemLowClarity, issues[0].Problem)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.InDelta(t, 11.0, issues[0].Score, 1e-9)
}

func TestSibilanceWithoutDeEsser(t *testing.T) {
	e := testEngine()
	e.Console.HasDeEsser = false

	rec, ok := e.buildRecommendation(Issue{
		Category: categoryFrequencyBalance,
		Severity: SeverityImportant,
		Problem:  problemSibilance,
	}, nil)
	require.True(t, ok)

	require.NotEmpty(t, rec.Approaches)
	for _, a := range rec.Approaches {
		assert.NotContains(t, strings.ToLower(a.Method), "de-esser")
	}
}

func TestSibilanceWithDeEsser(t *testing.T) {
	e := testEngine()
	e.Console.HasDeEsser = true

	rec, ok := e.buildRecommendation(Issue{Problem: problemSibilance, Severity: SeverityImportant}, nil)
	require.True(t, ok)
	assert.Contains(t, strings.ToLower(rec.Approaches[0].Method), "de-esser")
}

func TestDynamicEQApproachGatedByConsole(t *testing.T) {
	issue := Issue{Problem: problemLowClarity, Severity: SeverityImportant}

	e := testEngine()
	rec, ok := e.buildRecommendation(issue, nil)
	require.True(t, ok)
	for _, a := range rec.Approaches {
		assert.NotContains(t, a.Method, "Dynamic EQ")
	}

	e.Console.HasDynamicEQ = true
	rec, ok = e.buildRecommendation(issue, nil)
	require.True(t, ok)
	var found bool
	for _, a := range rec.Approaches {
		if strings.Contains(a.Method, "Dynamic EQ") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRecommendDedupesCategoryAndCaps(t *testing.T) {
	e := testEngine()
	issues := []Issue{
		{Category: categoryFrequencyBalance, Problem: problemLowClarity, Severity: SeverityCritical, Score: 12},
		{Category: categoryFrequencyBalance, Problem: problemMuddiness, Severity: SeverityImportant, Score: 10},
		{Category: categoryDynamics, Problem: problemOverCompressed, Severity: SeverityCritical, Score: 8},
		{Category: categoryLevelBalance, Problem: problemVocalBuried, Severity: SeverityImportant, Score: 6},
	}

	recs := e.recommend(issues, nil)
	// Top three issues considered; the duplicate frequency_balance entry
	// is skipped, so clarity and dynamics remain.
	require.Len(t, recs, 2)
	assert.Equal(t, "Improve vocal clarity", recs[0].Title)
	assert.Equal(t, "Optimize vocal dynamics", recs[1].Title)
}

func TestRecommendSkipsImprovingClarity(t *testing.T) {
	e := testEngine()
	issues := []Issue{
		{Category: categoryFrequencyBalance, Problem: problemLowClarity, Severity: SeverityImportant, Score: 5},
	}

	improving := &TrendRecord{Status: TrendImproving, HasClarity: true, ClarityChange: 3}
	assert.Empty(t, e.recommend(issues, improving))

	flat := &TrendRecord{Status: TrendStable, HasClarity: true, ClarityChange: 1}
	assert.Len(t, e.recommend(issues, flat), 1)
}

func TestCalculateTrend(t *testing.T) {
	d := vocalDiagnosis(map[string]float64{"clarity": -20}, InstrumentMetrics{RMSDB: -18})

	up := calculateTrend(d, &PastInstrument{RMSDB: -21, Bands: map[string]float64{"clarity": -24}})
	require.NotNil(t, up)
	assert.Equal(t, TrendImproving, up.Status)
	assert.InDelta(t, 4.0, up.ClarityChange, 1e-9)
	assert.True(t, up.HasClarity)

	down := calculateTrend(d, &PastInstrument{RMSDB: -14})
	assert.Equal(t, TrendDegrading, down.Status)
	assert.False(t, down.HasClarity)

	flat := calculateTrend(d, &PastInstrument{RMSDB: -17})
	assert.Equal(t, TrendStable, flat.Status)

	assert.Nil(t, calculateTrend(d, nil))
}

func TestKickHPFFollowsPA(t *testing.T) {
	e := testEngine()
	assert.Equal(t, 35, e.kickHPFFreq(), "unknown PA defaults to 35Hz")

	e.PA = equipment.PAProfile{Name: "d&b audiotechnik", LowExtensionHz: 45, Known: true}
	assert.Equal(t, 35, e.kickHPFFreq())

	e.PA = equipment.PAProfile{Name: "JBL", LowExtensionHz: 50, Known: true}
	assert.Equal(t, 30, e.kickHPFFreq())

	e.PA = equipment.PAProfile{Name: "Electro-Voice", LowExtensionHz: 55, Known: true}
	assert.Equal(t, 40, e.kickHPFFreq())
}

func TestRelationshipsKickBassCarve(t *testing.T) {
	kick := &Diagnosis{Tag: stems.TagKick, Bands: []BandLevel{{Name: "fundamental", DB: -20}}}
	bass := &Diagnosis{Tag: stems.TagBass, Bands: []BandLevel{{Name: "fundamental", DB: -21.5}}}

	testEngine().applyRelationships([]*Diagnosis{kick, bass})

	require.Len(t, kick.Recommendations, 1)
	assert.Equal(t, "Separate kick and bass frequencies", kick.Recommendations[0].Title)
	assert.Empty(t, bass.Recommendations)
}

func TestRelationshipsVocalGuitarSpace(t *testing.T) {
	vocal := &Diagnosis{Tag: stems.TagVocal, Bands: []BandLevel{{Name: "clarity", DB: -33}}}
	guitar := &Diagnosis{Tag: stems.TagElectricGuitar}

	testEngine().applyRelationships([]*Diagnosis{vocal, guitar})

	require.Len(t, guitar.Recommendations, 1)
	assert.Equal(t, "Make space for the vocal", guitar.Recommendations[0].Title)
}

func TestDiagnoseAllDeterministic(t *testing.T) {
	n := 2 * audio.SampleRate
	mono := make([]float64, n)
	for i := range mono {
		mono[i] = 0.4*math.Sin(2*math.Pi*220*float64(i)/float64(audio.SampleRate)) +
			0.2*math.Sin(2*math.Pi*3000*float64(i)/float64(audio.SampleRate))
	}
	sep := stems.NewSeparator(mono, audio.SampleRate)
	st := sep.Separate([]stems.Tag{stems.TagVocal, stems.TagKick, stems.TagBass})

	e := testEngine()
	first := e.DiagnoseAll(st, -18, nil)
	second := e.DiagnoseAll(st, -18, nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Tag, second[i].Tag)
		assert.Equal(t, first[i].Issues, second[i].Issues)
		require.Equal(t, len(first[i].Recommendations), len(second[i].Recommendations))
		for j := range first[i].Recommendations {
			assert.Equal(t, first[i].Recommendations[j].Title, second[i].Recommendations[j].Title)
		}
	}
}

func TestMixFindings(t *testing.T) {
	e := testEngine()
	e.VenueCapacity = 150

	m := mix.Metrics{
		RMSDB:       -25,
		CrestFactor: 4,
		Correlation: 0.5,
		StereoWidth: 40,
		VeryLowRMS:  0.01,
	}
	m.BandEnergies = [mix.NumBands]float64{-10, -20, -25, -28, -45, -50, -55}

	_, suggestions := e.MixFindings(m)

	categories := make(map[string]int)
	for _, s := range suggestions {
		categories[s.Category]++
	}
	assert.GreaterOrEqual(t, categories["stereo_image"], 1)
	assert.Equal(t, 1, categories["loudness"])
	assert.Equal(t, 1, categories["subsonic"])
	assert.Equal(t, 2, categories["frequency_balance"])
	assert.Equal(t, 1, categories["dynamics"])

	// Critical findings come first.
	sawImportant := false
	for _, s := range suggestions {
		if s.Severity != SeverityCritical {
			sawImportant = true
		} else {
			assert.False(t, sawImportant, "critical finding after an important one")
		}
	}
}

func TestMixFindingsStrengths(t *testing.T) {
	e := testEngine()
	e.VenueCapacity = 800

	m := mix.Metrics{
		RMSDB:       -14,
		CrestFactor: 11,
		Correlation: 0.97,
		StereoWidth: 40,
		OnsetAvg:    2.5,
	}
	m.BandEnergies = [mix.NumBands]float64{-40, -35, -30, -25, -30, -35, -40}

	strengths, suggestions := e.MixFindings(m)
	assert.Empty(t, suggestions)
	assert.Len(t, strengths, 5)
}

func TestBaselineSetupRecommendations(t *testing.T) {
	n := audio.SampleRate
	mono := make([]float64, n)
	for i := range mono {
		mono[i] = 0.3*math.Sin(2*math.Pi*220*float64(i)/float64(audio.SampleRate)) +
			0.2*math.Sin(2*math.Pi*8000*float64(i)/float64(audio.SampleRate))
	}
	tags := []stems.Tag{
		stems.TagHihat, stems.TagTom, stems.TagElectricGuitar,
		stems.TagAcousticGuitar, stems.TagKeyboard, stems.TagSynth,
	}
	st := stems.NewSeparator(mono, audio.SampleRate).Separate(tags)

	wantTitles := map[stems.Tag]string{
		stems.TagHihat:          "Hi-hat setup",
		stems.TagTom:            "Tom setup",
		stems.TagElectricGuitar: "Electric guitar setup",
		stems.TagAcousticGuitar: "Acoustic guitar setup",
		stems.TagKeyboard:       "Keyboard setup",
		stems.TagSynth:          "Synth setup",
	}

	diagnoses := testEngine().DiagnoseAll(st, -18, nil)
	require.Len(t, diagnoses, len(tags))
	for _, d := range diagnoses {
		require.NotEmpty(t, d.Recommendations, "no recommendation for %s", d.Tag)
		setup := d.Recommendations[len(d.Recommendations)-1]
		assert.Equal(t, wantTitles[d.Tag], setup.Title)
		if d.Tag == stems.TagElectricGuitar {
			assert.Equal(t, SeverityImportant, setup.Priority)
		} else {
			assert.Equal(t, SeverityOptional, setup.Priority)
		}
		require.NotEmpty(t, setup.Approaches)
		assert.NotEmpty(t, setup.Approaches[0].Steps)
	}
}
