package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"swingtrade-backend/internal/domain"
)

// PostgresBacktestRepository persists finished backtest runs. The run row
// carries rules and summary as jsonb; the trades live in their own table
// keyed by (run_id, seq) so the recorded order is preserved.
type PostgresBacktestRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBacktestRepository(pool *pgxpool.Pool) *PostgresBacktestRepository {
	return &PostgresBacktestRepository{pool: pool}
}

func (r *PostgresBacktestRepository) SaveRun(run *domain.BacktestRun) error {
	if run == nil || run.ID == "" {
		return errors.New("run must have an ID")
	}

	rulesJSON, err := json.Marshal(run.Rules)
	if err != nil {
		return err
	}
	var summaryJSON []byte
	if run.Summary != nil {
		summaryJSON, err = json.Marshal(run.Summary)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		insert into backtest_runs(id, ticker, start_date, end_date, rules, summary, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`,
		run.ID,
		run.Ticker,
		run.StartDate,
		run.EndDate,
		rulesJSON,
		summaryJSON,
		run.CreatedAt,
	); err != nil {
		return err
	}

	for seq, t := range run.Trades {
		if _, err := tx.Exec(ctx, `
			insert into backtest_trades(
				run_id, seq, entry_date, entry_price, exit_date, exit_price,
				profit, profit_pct, exit_reason, holding_days
			) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			run.ID,
			seq,
			t.EntryDate,
			t.EntryPrice,
			t.ExitDate,
			t.ExitPrice,
			t.Profit,
			t.ProfitPct,
			t.ExitReason,
			t.HoldingDays,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresBacktestRepository) GetRunByID(id string) (*domain.BacktestRun, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		select id, ticker, start_date, end_date, rules, summary, created_at
		from backtest_runs
		where id = $1
	`, id)

	run, err := scanBacktestRun(row)
	if err != nil {
		return nil, fmt.Errorf("run with ID %s not found", id)
	}

	rows, err := r.pool.Query(ctx, `
		select entry_date, entry_price, exit_date, exit_price,
			profit, profit_pct, exit_reason, holding_days
		from backtest_trades
		where run_id = $1
		order by seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Trades = make([]domain.Trade, 0)
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(
			&t.EntryDate,
			&t.EntryPrice,
			&t.ExitDate,
			&t.ExitPrice,
			&t.Profit,
			&t.ProfitPct,
			&t.ExitReason,
			&t.HoldingDays,
		); err != nil {
			return nil, err
		}
		run.Trades = append(run.Trades, t)
	}
	return run, nil
}

// ListRuns returns run headers newest first. Trade lists are loaded per
// run through GetRunByID, not here.
func (r *PostgresBacktestRepository) ListRuns() []*domain.BacktestRun {
	rows, err := r.pool.Query(context.Background(), `
		select id, ticker, start_date, end_date, rules, summary, created_at
		from backtest_runs
		order by created_at desc
	`)
	if err != nil {
		return []*domain.BacktestRun{}
	}
	defer rows.Close()

	runs := make([]*domain.BacktestRun, 0)
	for rows.Next() {
		run, scanErr := scanBacktestRun(rows)
		if scanErr != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBacktestRun(s scanner) (*domain.BacktestRun, error) {
	var run domain.BacktestRun
	var rulesJSON []byte
	var summaryJSON []byte

	if err := s.Scan(
		&run.ID,
		&run.Ticker,
		&run.StartDate,
		&run.EndDate,
		&rulesJSON,
		&summaryJSON,
		&run.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rulesJSON, &run.Rules); err != nil {
		return nil, err
	}
	if len(summaryJSON) > 0 {
		var summary domain.PerformanceSummary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, err
		}
		run.Summary = &summary
	}

	return &run, nil
}

// compile-time check
var _ domain.BacktestRepository = (*PostgresBacktestRepository)(nil)
