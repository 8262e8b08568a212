package data

import (
	"context"
	"fmt"
)

var stateQueries = map[string]string{
	"prediction":      "SELECT COUNT(*) FROM prediction",
	"model":           "SELECT COUNT(DISTINCT model) FROM prediction",
	"ocean_proximity": "SELECT COUNT(DISTINCT ocean_proximity) FROM prediction",
	"schema_version":  "SELECT COALESCE(MAX(version), 0) FROM schema_version",
}

// GetDataState returns record counts of the store.
func (s *Store) GetDataState(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64, len(stateQueries))
	for k, q := range stateQueries {
		var count int64
		if err := s.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}
	return state, nil
}
