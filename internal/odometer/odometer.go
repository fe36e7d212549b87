// Package odometer resolves named sensor entities to their current
// distance reading.
package odometer

import "github.com/EnricoMenegatti/home-maintenance/internal/store"

// Reader resolves an entity reference to its current reading. A missing,
// unavailable or never-reported sensor is ok=false, not an error.
type Reader interface {
	Read(entity string) (float64, bool)
}

// StoreReader serves readings from the odometer_readings table, newest
// reading per entity.
type StoreReader struct {
	store *store.Store
}

func NewStoreReader(s *store.Store) *StoreReader {
	return &StoreReader{store: s}
}

func (r *StoreReader) Read(entity string) (float64, bool) {
	if entity == "" {
		return 0, false
	}
	value, ok, err := r.store.LatestReading(entity)
	if err != nil || !ok {
		return 0, false
	}
	return value, true
}

// Sample reads the current odometer for a distance task, or nil when the
// task has no entity or the sensor is unavailable. Calendar tasks always
// sample nil.
func Sample(r Reader, t store.Task) *float64 {
	if r == nil || !t.DistanceBased() || t.OdometerEntity == "" {
		return nil
	}
	if v, ok := r.Read(t.OdometerEntity); ok {
		return &v
	}
	return nil
}
