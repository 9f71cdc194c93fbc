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

// PGCorrelationRepo implements CorrelationRepo for PostgreSQL.
type PGCorrelationRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPGCorrelationRepo creates a PostgreSQL correlation repository.
func NewPGCorrelationRepo(db *sqlx.DB, timeout time.Duration) repository.CorrelationRepo {
	return &PGCorrelationRepo{db: db, timeout: timeout}
}

// Upsert replaces the statistic for the pair key. No history is kept.
func (r *PGCorrelationRepo) Upsert(ctx context.Context, rec *models.CorrelationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO correlations
			(symbol_a, symbol_b, timeframe, correlation_coefficient, sample_size, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol_a, symbol_b, timeframe) DO UPDATE SET
			correlation_coefficient = EXCLUDED.correlation_coefficient,
			sample_size = EXCLUDED.sample_size,
			calculated_at = EXCLUDED.calculated_at`

	_, err := r.db.ExecContext(ctx, query, rec.SymbolA, rec.SymbolB, rec.Timeframe,
		rec.Coefficient, rec.SampleSize, rec.CalculatedAt)
	if err != nil {
		return fmt.Errorf("upsert correlation: %w", err)
	}
	return nil
}

// PGVitalsRepo implements VitalsRepo for PostgreSQL.
type PGVitalsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPGVitalsRepo creates a PostgreSQL vitals repository.
func NewPGVitalsRepo(db *sqlx.DB, timeout time.Duration) repository.VitalsRepo {
	return &PGVitalsRepo{db: db, timeout: timeout}
}

// Upsert replaces the vital row by name.
func (r *PGVitalsRepo) Upsert(ctx context.Context, v *models.Vital) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	metadata := "{}"
	if len(v.Metadata) > 0 {
		b, err := json.Marshal(v.Metadata)
		if err != nil {
			return fmt.Errorf("marshal vital metadata: %w", err)
		}
		metadata = string(b)
	}

	const query = `
		INSERT INTO vitals (name, status, value, metadata, ts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			status = EXCLUDED.status,
			value = EXCLUDED.value,
			metadata = EXCLUDED.metadata,
			ts = EXCLUDED.ts`

	_, err := r.db.ExecContext(ctx, query, v.Name, string(v.Status), v.Value, metadata, v.Timestamp)
	if err != nil {
		return fmt.Errorf("upsert vital: %w", err)
	}
	return nil
}

// List returns every vital row, newest first.
func (r *PGVitalsRepo) List(ctx context.Context) ([]*models.Vital, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `SELECT name, status, value, metadata, ts FROM vitals ORDER BY ts DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vitals: %w", err)
	}
	defer rows.Close()

	var vitals []*models.Vital
	for rows.Next() {
		var v models.Vital
		var status string
		var metadata []byte
		if err := rows.Scan(&v.Name, &status, &v.Value, &metadata, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scan vital: %w", err)
		}
		v.Status = models.VitalStatus(status)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &v.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal vital metadata: %w", err)
			}
		}
		vitals = append(vitals, &v)
	}
	return vitals, rows.Err()
}
