package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
)

// PGEvolutionRepo implements EvolutionRepo for PostgreSQL.
type PGEvolutionRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPGEvolutionRepo creates a PostgreSQL evolution-state repository.
func NewPGEvolutionRepo(db *sqlx.DB, timeout time.Duration) repository.EvolutionRepo {
	return &PGEvolutionRepo{db: db, timeout: timeout}
}

func (r *PGEvolutionRepo) Get(ctx context.Context, scope string) (*models.EvolutionState, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT scope, generation, fitness_score, genes, total_predictions_seen,
		       last_mutation_at, adaptation_history
		FROM evolution_state
		WHERE scope = $1`

	var (
		s           models.EvolutionState
		genesJSON   []byte
		historyJSON []byte
	)
	err := r.db.QueryRowxContext(ctx, query, scope).Scan(&s.Scope, &s.Generation,
		&s.FitnessScore, &genesJSON, &s.TotalPredictionsSeen, &s.LastMutationAt, &historyJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return r.seed(ctx, scope)
	}
	if err != nil {
		return nil, fmt.Errorf("get evolution state: %w", err)
	}
	if err := json.Unmarshal(genesJSON, &s.Genes); err != nil {
		return nil, fmt.Errorf("unmarshal genes: %w", err)
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &s.AdaptationHistory); err != nil {
			return nil, fmt.Errorf("unmarshal adaptation history: %w", err)
		}
	}
	return &s, nil
}

// Advance persists the next generation. generation is incremented in the
// statement itself so it strictly increases even if two cycles race.
func (r *PGEvolutionRepo) Advance(ctx context.Context, s *models.EvolutionState) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	genesJSON, err := json.Marshal(s.Genes)
	if err != nil {
		return fmt.Errorf("marshal genes: %w", err)
	}
	historyJSON, err := json.Marshal(s.AdaptationHistory)
	if err != nil {
		return fmt.Errorf("marshal adaptation history: %w", err)
	}

	const query = `
		UPDATE evolution_state SET
			generation = generation + 1,
			fitness_score = $2,
			genes = $3,
			total_predictions_seen = $4,
			last_mutation_at = $5,
			adaptation_history = $6
		WHERE scope = $1
		RETURNING generation`

	err = r.db.QueryRowxContext(ctx, query, s.Scope, s.FitnessScore, genesJSON,
		s.TotalPredictionsSeen, s.LastMutationAt, historyJSON).Scan(&s.Generation)
	if err != nil {
		return fmt.Errorf("advance evolution state: %w", err)
	}
	return nil
}

func (r *PGEvolutionRepo) seed(ctx context.Context, scope string) (*models.EvolutionState, error) {
	genes := models.DefaultGenes()
	genesJSON, err := json.Marshal(genes)
	if err != nil {
		return nil, fmt.Errorf("marshal genes: %w", err)
	}

	const query = `
		INSERT INTO evolution_state
			(scope, generation, fitness_score, genes, total_predictions_seen, adaptation_history)
		VALUES ($1, 0, 0, $2, 0, '[]')
		ON CONFLICT (scope) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, scope, genesJSON); err != nil {
		return nil, fmt.Errorf("seed evolution state: %w", err)
	}
	return &models.EvolutionState{Scope: scope, Genes: genes, AdaptationHistory: []models.FitnessSnapshot{}}, nil
}
