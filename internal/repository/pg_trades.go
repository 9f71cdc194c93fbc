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

// PGTradeRepo implements TradeRepo for PostgreSQL.
type PGTradeRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPGTradeRepo creates a PostgreSQL trade repository.
func NewPGTradeRepo(db *sqlx.DB, timeout time.Duration) repository.TradeRepo {
	return &PGTradeRepo{db: db, timeout: timeout}
}

// OpenTrade inserts a position. The unique index on prediction_id plus
// ON CONFLICT DO NOTHING guarantees at most one trade per prediction even
// when two overlapping cycles race on the same signal.
func (r *PGTradeRepo) OpenTrade(ctx context.Context, t *models.Trade) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO trades
			(symbol, class, direction, entry_price, shares, entry_time, prediction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'open')
		ON CONFLICT (prediction_id) DO NOTHING
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		t.Symbol, string(t.Class), string(t.Direction), t.EntryPrice,
		t.Shares, t.EntryTime, t.PredictionID).Scan(&t.ID)
	if err != nil {
		// No row returned means the conflict target fired: duplicate signal.
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("open trade: %w", err)
	}
	t.Status = models.TradeOpen
	return true, nil
}

func (r *PGTradeRepo) OpenTrades(ctx context.Context) ([]*models.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT id, symbol, class, direction, entry_price, shares, entry_time,
		       prediction_id, status, exit_price, exit_time, pnl, pnl_percent
		FROM trades
		WHERE status = 'open'
		ORDER BY entry_time ASC`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("open trades: %w", err)
	}
	defer rows.Close()

	var out []*models.Trade
	for rows.Next() {
		var (
			t                 models.Trade
			class, dir, state string
			exitPrice         *float64
			pnl               *float64
			pnlPct            *float64
		)
		if err := rows.Scan(&t.ID, &t.Symbol, &class, &dir, &t.EntryPrice, &t.Shares,
			&t.EntryTime, &t.PredictionID, &state, &exitPrice, &t.ExitTime, &pnl, &pnlPct); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Class = models.AssetClass(class)
		t.Direction = models.TradeDirection(dir)
		t.Status = models.TradeStatus(state)
		if exitPrice != nil {
			t.ExitPrice = *exitPrice
		}
		if pnl != nil {
			t.PnL = *pnl
		}
		if pnlPct != nil {
			t.PnLPercent = *pnlPct
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// CloseTrade marks a trade closed. The status='open' guard makes the close
// idempotent: a trade never transitions back from closed.
func (r *PGTradeRepo) CloseTrade(ctx context.Context, t *models.Trade) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		UPDATE trades SET
			status = 'closed',
			exit_price = $2,
			exit_time = $3,
			pnl = $4,
			pnl_percent = $5
		WHERE id = $1 AND status = 'open'`

	res, err := r.db.ExecContext(ctx, query, t.ID, t.ExitPrice, t.ExitTime, t.PnL, t.PnLPercent)
	if err != nil {
		return false, fmt.Errorf("close trade: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close rows affected: %w", err)
	}
	return n == 1, nil
}
