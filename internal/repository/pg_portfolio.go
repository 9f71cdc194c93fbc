package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"PaperPulse/internal/domain/models"
	"PaperPulse/internal/domain/repository"
)

// PGPortfolioRepo implements PortfolioRepo for PostgreSQL. The singleton row
// is addressed by a fixed key; its existence is a schema invariant, not
// process state.
type PGPortfolioRepo struct {
	db             *sqlx.DB
	timeout        time.Duration
	initialBalance float64
	targetBalance  float64
}

// NewPGPortfolioRepo creates a PostgreSQL portfolio repository.
func NewPGPortfolioRepo(db *sqlx.DB, timeout time.Duration, initial, target float64) repository.PortfolioRepo {
	return &PGPortfolioRepo{db: db, timeout: timeout, initialBalance: initial, targetBalance: target}
}

func (r *PGPortfolioRepo) Get(ctx context.Context) (*models.PortfolioBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT balance, peak_balance, trough_balance, total_trades, winning_trades,
		       target_balance, updated_at
		FROM portfolio_balance
		WHERE id = 1`

	var b models.PortfolioBalance
	err := r.db.QueryRowxContext(ctx, query).Scan(&b.Balance, &b.PeakBalance,
		&b.TroughBalance, &b.TotalTrades, &b.WinningTrades, &b.TargetBalance, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.seed(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return &b, nil
}

// Apply folds the cycle's realized P&L into the ledger as one statement.
// Extrema and counters are adjusted server-side so overlapping cycles cannot
// lose a closed trade's contribution.
func (r *PGPortfolioRepo) Apply(ctx context.Context, netPnL float64, closed, wins int) (*models.PortfolioBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		UPDATE portfolio_balance SET
			balance = balance + $1,
			peak_balance = GREATEST(peak_balance, balance + $1),
			trough_balance = LEAST(trough_balance, balance + $1),
			total_trades = total_trades + $2,
			winning_trades = winning_trades + $3,
			updated_at = NOW()
		WHERE id = 1
		RETURNING balance, peak_balance, trough_balance, total_trades, winning_trades,
		          target_balance, updated_at`

	var b models.PortfolioBalance
	err := r.db.QueryRowxContext(ctx, query, netPnL, closed, wins).Scan(&b.Balance,
		&b.PeakBalance, &b.TroughBalance, &b.TotalTrades, &b.WinningTrades,
		&b.TargetBalance, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("apply portfolio: %w", err)
	}
	return &b, nil
}

func (r *PGPortfolioRepo) seed(ctx context.Context) (*models.PortfolioBalance, error) {
	const query = `
		INSERT INTO portfolio_balance
			(id, balance, peak_balance, trough_balance, total_trades, winning_trades, target_balance, updated_at)
		VALUES (1, $1, $1, $1, 0, 0, $2, NOW())
		ON CONFLICT (id) DO NOTHING
		RETURNING balance, peak_balance, trough_balance, total_trades, winning_trades,
		          target_balance, updated_at`

	var b models.PortfolioBalance
	err := r.db.QueryRowxContext(ctx, query, r.initialBalance, r.targetBalance).Scan(&b.Balance,
		&b.PeakBalance, &b.TroughBalance, &b.TotalTrades, &b.WinningTrades,
		&b.TargetBalance, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Another cycle seeded the row first; re-read it.
		return r.Get(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("seed portfolio: %w", err)
	}
	return &b, nil
}
