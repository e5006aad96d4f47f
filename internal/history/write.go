package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Append stores a completed analysis and returns the new entry id. The
// insert runs in a transaction, so a partially-written entry is never
// visible. IDs are timestamps; same-second appends get a numeric suffix.
func (s *Store) Append(name string, meta Metadata, analysis Snapshot) (string, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("encoding analysis: %w", err)
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(tx, now)
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(`
INSERT INTO Session (id, name, created_at, venue_name, venue_capacity, stage_volume, console_name, pa_system_name, notes, analysis)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, now.Format(time.RFC3339), meta.VenueName, meta.VenueCapacity,
		meta.StageVolume, meta.ConsoleName, meta.PASystemName, meta.Notes, string(payload))
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing session: %w", err)
	}
	return id, nil
}

func nextID(tx *sql.Tx, now time.Time) (string, error) {
	base := now.Format("20060102_150405")
	id := base
	for n := 2; ; n++ {
		var exists string
		err := tx.QueryRow("SELECT id FROM Session WHERE id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking id: %w", err)
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// Delete removes one entry by id. Deleting a missing entry is an error so
// callers can report a bad id.
func (s *Store) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM Session WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no session with id %q", id)
	}
	return nil
}
