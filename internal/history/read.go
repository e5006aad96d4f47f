package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const entryColumns = "id, name, created_at, venue_name, venue_capacity, stage_volume, console_name, pa_system_name, notes, analysis"

// Get returns one entry by id.
func (s *Store) Get(id string) (*Entry, error) {
	row := s.db.QueryRow("SELECT "+entryColumns+" FROM Session WHERE id = ?", id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no session with id %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return entry, nil
}

// Recent returns the newest n entries, newest first.
func (s *Store) Recent(n int) ([]*Entry, error) {
	rows, err := s.db.Query("SELECT "+entryColumns+" FROM Session ORDER BY created_at DESC, id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Similar returns up to limit past entries comparable to the given
// metadata, ranked by match score. Entries scoring 20 or below are
// excluded; equal scores rank newest first.
func (s *Store) Similar(meta Metadata, limit int) ([]*Entry, error) {
	rows, err := s.db.Query("SELECT " + entryColumns + " FROM Session")
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	type scored struct {
		entry *Entry
		score int
	}
	var matches []scored
	for _, e := range entries {
		if score := MatchScore(meta, e.Metadata); score > 20 {
			matches = append(matches, scored{entry: e, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].entry.Timestamp.After(matches[j].entry.Timestamp)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var createdAt, analysis string
	err := row.Scan(&e.ID, &e.Name, &createdAt, &e.Metadata.VenueName,
		&e.Metadata.VenueCapacity, &e.Metadata.StageVolume, &e.Metadata.ConsoleName,
		&e.Metadata.PASystemName, &e.Metadata.Notes, &analysis)
	if err != nil {
		return nil, err
	}

	e.Timestamp, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(analysis), &e.Analysis); err != nil {
		return nil, fmt.Errorf("decoding analysis for %s: %w", e.ID, err)
	}
	e.Equipment = Equipment{Mixer: e.Metadata.ConsoleName, PASystem: e.Metadata.PASystemName}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("reading session: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	return entries, nil
}
