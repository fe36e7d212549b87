package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordReading stores a new odometer reading for a sensor entity.
func (s *Store) RecordReading(entity string, value float64) (*OdometerReading, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO odometer_readings (entity, value, recorded_at) VALUES (?, ?, ?)`,
		entity, value, now,
	)
	if err != nil {
		return nil, fmt.Errorf("record reading: %w", err)
	}
	id, _ := res.LastInsertId()
	r := &OdometerReading{ID: id, Entity: entity, Value: value}
	r.RecordedAt, _ = time.Parse(time.RFC3339, now)
	return r, nil
}

// LatestReading returns the most recent reading for the entity, or ok=false
// when the entity has never reported.
func (s *Store) LatestReading(entity string) (float64, bool, error) {
	var value float64
	err := s.db.QueryRow(
		`SELECT value FROM odometer_readings WHERE entity = ? ORDER BY recorded_at DESC, id DESC LIMIT 1`,
		entity,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("latest reading %q: %w", entity, err)
	}
	return value, true, nil
}

// ListLatestReadings returns the newest reading per entity, sorted by
// entity name.
func (s *Store) ListLatestReadings() ([]OdometerReading, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.entity, r.value, r.recorded_at
		FROM odometer_readings r
		JOIN (
			SELECT MAX(id) AS id
			FROM odometer_readings
			GROUP BY entity
		) latest ON latest.id = r.id
		ORDER BY r.entity`)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []OdometerReading
	for rows.Next() {
		var r OdometerReading
		var recordedAt string
		if err := rows.Scan(&r.ID, &r.Entity, &r.Value, &recordedAt); err != nil {
			return nil, err
		}
		r.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
