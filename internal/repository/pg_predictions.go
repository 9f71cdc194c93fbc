package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
)

// PGPredictionRepo implements PredictionRepo for PostgreSQL.
type PGPredictionRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPGPredictionRepo creates a PostgreSQL prediction repository.
func NewPGPredictionRepo(db *sqlx.DB, timeout time.Duration) repository.PredictionRepo {
	return &PGPredictionRepo{db: db, timeout: timeout}
}

func (r *PGPredictionRepo) Insert(ctx context.Context, p *models.Prediction) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	conditionsJSON, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("marshal conditions: %w", err)
	}

	const query = `
		INSERT INTO predictions
			(id, symbol, class, entry_price, predicted_direction, predicted_magnitude,
			 predicted_confidence, horizon_seconds, market_conditions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.Symbol, string(p.Class), p.EntryPrice, string(p.PredictedDirection),
		p.PredictedMagnitude, p.PredictedConfidence, int64(p.Horizon.Seconds()),
		conditionsJSON, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *PGPredictionRepo) DueUnresolved(ctx context.Context, now time.Time, limit int) ([]*models.Prediction, error) {
	const query = `
		SELECT ` + predictionCols + `
		FROM predictions
		WHERE resolved_at IS NULL
		  AND created_at + make_interval(secs => horizon_seconds) <= $1
		ORDER BY created_at ASC
		LIMIT $2`
	return r.list(ctx, query, now, limit)
}

func (r *PGPredictionRepo) RecentUnresolved(ctx context.Context, limit int) ([]*models.Prediction, error) {
	const query = `
		SELECT ` + predictionCols + `
		FROM predictions
		WHERE resolved_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *PGPredictionRepo) RecentResolved(ctx context.Context, limit int) ([]*models.Prediction, error) {
	const query = `
		SELECT ` + predictionCols + `
		FROM predictions
		WHERE resolved_at IS NOT NULL
		ORDER BY resolved_at DESC
		LIMIT $1`
	return r.list(ctx, query, limit)
}

// Resolve writes all resolution fields in a single conditional update.
// The resolved_at IS NULL guard makes a second resolution attempt a no-op.
func (r *PGPredictionRepo) Resolve(ctx context.Context, p *models.Prediction) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		UPDATE predictions SET
			exit_price = $2,
			actual_direction = $3,
			actual_magnitude = $4,
			direction_correct = $5,
			magnitude_accuracy = $6,
			timing_accuracy = $7,
			calibration_accuracy = $8,
			composite_score = $9,
			resolved_at = $10
		WHERE id = $1 AND resolved_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.ExitPrice, string(p.ActualDirection), p.ActualMagnitude,
		p.DirectionCorrect, p.MagnitudeAccuracy, p.TimingAccuracy,
		p.CalibrationAccuracy, p.CompositeScore, p.ResolvedAt)
	if err != nil {
		return false, fmt.Errorf("resolve prediction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve rows affected: %w", err)
	}
	return n == 1, nil
}

const predictionCols = `id, symbol, class, entry_price, predicted_direction,
	predicted_magnitude, predicted_confidence, horizon_seconds, market_conditions,
	created_at, exit_price, actual_direction, actual_magnitude, direction_correct,
	magnitude_accuracy, timing_accuracy, calibration_accuracy, composite_score, resolved_at`

func (r *PGPredictionRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var out []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPrediction(rows *sqlx.Rows) (*models.Prediction, error) {
	var (
		p               models.Prediction
		class, predDir  string
		horizonSecs     int64
		conditionsJSON  []byte
		exitPrice       *float64
		actualDir       *string
		actualMagnitude *float64
		dirCorrect      *bool
		magAcc          *float64
		timingAcc       *float64
		calibAcc        *float64
		composite       *float64
	)
	err := rows.Scan(&p.ID, &p.Symbol, &class, &p.EntryPrice, &predDir,
		&p.PredictedMagnitude, &p.PredictedConfidence, &horizonSecs, &conditionsJSON,
		&p.CreatedAt, &exitPrice, &actualDir, &actualMagnitude, &dirCorrect,
		&magAcc, &timingAcc, &calibAcc, &composite, &p.ResolvedAt)
	if err != nil {
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	p.Class = models.AssetClass(class)
	p.PredictedDirection = models.Direction(predDir)
	p.Horizon = time.Duration(horizonSecs) * time.Second
	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &p.Conditions); err != nil {
			return nil, fmt.Errorf("unmarshal conditions: %w", err)
		}
	}
	if exitPrice != nil {
		p.ExitPrice = *exitPrice
	}
	if actualDir != nil {
		p.ActualDirection = models.Direction(*actualDir)
	}
	if actualMagnitude != nil {
		p.ActualMagnitude = *actualMagnitude
	}
	if dirCorrect != nil {
		p.DirectionCorrect = *dirCorrect
	}
	if magAcc != nil {
		p.MagnitudeAccuracy = *magAcc
	}
	if timingAcc != nil {
		p.TimingAccuracy = *timingAcc
	}
	if calibAcc != nil {
		p.CalibrationAccuracy = *calibAcc
	}
	if composite != nil {
		p.CompositeScore = *composite
	}
	return &p, nil
}
