package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/houseval/pkg/housing"
	"github.com/rs/xid"
)

const (
	predictionColumns = `id, created_at, model, baseline,
		longitude, latitude, housing_median_age, total_rooms, total_bedrooms,
		population, households, median_income, ocean_proximity, value`

	insertPrediction = `INSERT INTO prediction (` + predictionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectPrediction = `SELECT ` + predictionColumns + ` FROM prediction WHERE id = ?`

	selectPredictions = `SELECT ` + predictionColumns + ` FROM prediction
		ORDER BY created_at DESC, id DESC LIMIT ?`

	deletePredictions = `DELETE FROM prediction`

	// PredictionListLimitDefault is used when no positive limit is given.
	PredictionListLimitDefault = 50
)

// Prediction is a persisted estimate.
type Prediction struct {
	ID        string        `json:"id" yaml:"id"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Model     string        `json:"model" yaml:"model"`
	Baseline  string        `json:"baseline" yaml:"baseline"`
	Input     housing.Input `json:"input" yaml:"input"`
	Value     float64       `json:"value" yaml:"value"`
}

// NewPrediction returns a prediction with a fresh ID and timestamp.
func NewPrediction(model, baseline string, in housing.Input, value float64) *Prediction {
	return &Prediction{
		ID:        xid.New().String(),
		CreatedAt: time.Now().UTC(),
		Model:     model,
		Baseline:  baseline,
		Input:     in,
		Value:     value,
	}
}

// SavePrediction stores p, assigning an ID and timestamp when missing.
func (s *Store) SavePrediction(ctx context.Context, p *Prediction) error {
	return s.SavePredictions(ctx, []*Prediction{p})
}

// SavePredictions stores all predictions in a single transaction.
func (s *Store) SavePredictions(ctx context.Context, list []*Prediction) error {
	if s == nil || s.db == nil {
		return errDBNotInitialized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertPrediction))
	if err != nil {
		rollback(tx)
		return fmt.Errorf("failed to prepare prediction insert statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range list {
		if p == nil {
			rollback(tx)
			return errors.New("nil prediction")
		}
		if p.ID == "" {
			p.ID = xid.New().String()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}

		in := p.Input
		if _, err := stmt.ExecContext(ctx, p.ID, p.CreatedAt.UnixNano(), p.Model, p.Baseline,
			in.Longitude, in.Latitude, in.HousingMedianAge, in.TotalRooms, in.TotalBedrooms,
			in.Population, in.Households, in.MedianIncome, in.OceanProximity, p.Value); err != nil {
			rollback(tx)
			return fmt.Errorf("failed to insert prediction %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPrediction returns the prediction with id or ErrNotFound.
func (s *Store) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}

	row := s.db.QueryRowContext(ctx, s.rebind(selectPrediction), id)
	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("prediction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get prediction %s: %w", id, err)
	}
	return p, nil
}

// ListPredictions returns the most recent predictions, newest first.
func (s *Store) ListPredictions(ctx context.Context, limit int) ([]*Prediction, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = PredictionListLimitDefault
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(selectPredictions), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	list := make([]*Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return list, nil
}

// DeletePredictions removes every stored prediction and returns the count.
func (s *Store) DeletePredictions(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errDBNotInitialized
	}

	res, err := s.db.ExecContext(ctx, deletePredictions)
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted predictions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row scanner) (*Prediction, error) {
	var (
		p       Prediction
		created int64
	)
	in := &p.Input
	if err := row.Scan(&p.ID, &created, &p.Model, &p.Baseline,
		&in.Longitude, &in.Latitude, &in.HousingMedianAge, &in.TotalRooms, &in.TotalBedrooms,
		&in.Population, &in.Households, &in.MedianIncome, &in.OceanProximity, &p.Value); err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	return &p, nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Error("failed to rollback transaction", "error", err)
	}
}
