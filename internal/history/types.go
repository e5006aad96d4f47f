// Package history persists analysis sessions in an embedded SQLite
// database and answers recency and similarity queries over them. Entries
// are append-only; they are never mutated after creation, only deleted.
package history

import (
	"time"

	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/diagnose"
	"github.com/Shunpe0907/foh-audio-analysis-v13/internal/mix"
)

// Metadata describes the session an analysis belongs to.
type Metadata struct {
	VenueName     string `json:"venue_name"`
	VenueCapacity int    `json:"venue_capacity"`
	StageVolume   string `json:"stage_volume"` // high, medium, low, none
	ConsoleName   string `json:"console_name"`
	PASystemName  string `json:"pa_system_name"`
	Notes         string `json:"notes"`
}

// Snapshot is the analysis payload stored with an entry. The embedded mix
// metrics flatten into the JSON object alongside the instrument map.
type Snapshot struct {
	mix.Metrics
	Instruments map[string]diagnose.PastInstrument `json:"instruments"`
}

// Equipment names the gear used, denormalized for comparison queries.
type Equipment struct {
	Mixer    string `json:"mixer"`
	PASystem string `json:"pa_system"`
}

// Entry is one persisted session.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  Metadata  `json:"metadata"`
	Analysis  Snapshot  `json:"analysis"`
	Equipment Equipment `json:"equipment"`
}

// MatchScore rates how comparable two sessions are: +30 when venue
// capacity differs by less than 50, +40 for an identical console name,
// +30 for an identical PA name. Empty equipment names never match.
func MatchScore(current, past Metadata) int {
	score := 0
	diff := current.VenueCapacity - past.VenueCapacity
	if diff < 0 {
		diff = -diff
	}
	if diff < 50 {
		score += 30
	}
	if current.ConsoleName != "" && current.ConsoleName == past.ConsoleName {
		score += 40
	}
	if current.PASystemName != "" && current.PASystemName == past.PASystemName {
		score += 30
	}
	return score
}

// MatchType classifies a score the way the comparison report presents it.
func MatchType(score int) string {
	switch {
	case score >= 80:
		return "exact_match"
	case score >= 50:
		return "similar"
	default:
		return "different"
	}
}
