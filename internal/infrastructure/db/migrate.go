package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables backtest persistence needs. Statements are
// idempotent so it runs on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists backtest_runs (
			id text primary key,
			ticker text not null,
			start_date timestamptz not null,
			end_date timestamptz not null,
			rules jsonb not null default '{}'::jsonb,
			summary jsonb null,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists backtest_runs_ticker_idx on backtest_runs(ticker, created_at desc);`,
		`create table if not exists backtest_trades (
			run_id text not null references backtest_runs(id) on delete cascade,
			seq int not null,
			entry_date timestamptz not null,
			entry_price double precision not null,
			exit_date timestamptz not null,
			exit_price double precision not null,
			profit double precision not null,
			profit_pct double precision not null,
			exit_reason text not null,
			holding_days int not null,
			primary key (run_id, seq)
		);`,
		`create index if not exists backtest_trades_exit_date_idx on backtest_trades(run_id, exit_date);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
