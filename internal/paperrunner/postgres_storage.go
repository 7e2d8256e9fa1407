package paperrunner

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
)

// PostgresStorage is the reference Storage adapter, backed by a pgx
// connection pool. Idempotency is enforced with ON CONFLICT DO NOTHING on
// the primary key, so replaying a write for a position or trade already
// recorded is a no-op rather than an error. Grounded on the teacher's
// internal/database/migrate.go connection-pool idiom, repurposed from
// migrating the teacher's live-trading schema to persisting paper
// positions and trades — a schema this repository defines fresh.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects to dsn and returns a ready PostgresStorage.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStorage) Close() {
	s.pool.Close()
}

// Migrate creates the paper_positions and paper_trades tables if absent.
// Ahead-of-time schema management (a golang-migrate migrations directory)
// is out of scope here; the runner's schema is small and stable enough to
// bootstrap inline.
func (s *PostgresStorage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS paper_positions (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			side         TEXT NOT NULL,
			entry_time   TIMESTAMPTZ NOT NULL,
			entry_price  DOUBLE PRECISION NOT NULL,
			qty          DOUBLE PRECISION NOT NULL,
			stop_price   DOUBLE PRECISION NOT NULL,
			has_stop     BOOLEAN NOT NULL,
			target_price DOUBLE PRECISION NOT NULL,
			has_target   BOOLEAN NOT NULL
		);
		CREATE TABLE IF NOT EXISTS paper_trades (
			position_id TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			side        TEXT NOT NULL,
			entry_time  TIMESTAMPTZ NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			qty         DOUBLE PRECISION NOT NULL,
			exit_time   TIMESTAMPTZ NOT NULL,
			exit_price  DOUBLE PRECISION NOT NULL,
			exit_reason TEXT NOT NULL,
			gross_pnl   DOUBLE PRECISION NOT NULL,
			net_pnl     DOUBLE PRECISION NOT NULL,
			commission  DOUBLE PRECISION NOT NULL,
			equity_time TIMESTAMPTZ NOT NULL,
			equity      DOUBLE PRECISION NOT NULL
		);
	`)
	return err
}

func (s *PostgresStorage) OpenPosition(ctx context.Context, pos Position) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO paper_positions
			(id, symbol, side, entry_time, entry_price, qty, stop_price, has_stop, target_price, has_target)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO NOTHING`,
		pos.ID, pos.Symbol, string(pos.Side), pos.EntryTime, pos.EntryPrice, pos.Qty,
		pos.StopPrice, pos.HasStop, pos.TargetPrice, pos.HasTarget)
	return err
}

func (s *PostgresStorage) ClosePosition(ctx context.Context, positionID string, trade backtest.Trade, equity EquitySnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO paper_trades
			(position_id, symbol, side, entry_time, entry_price, qty, exit_time, exit_price,
			 exit_reason, gross_pnl, net_pnl, commission, equity_time, equity)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (position_id) DO NOTHING`,
		positionID, trade.Symbol, string(trade.Side), trade.EntryTime, trade.EntryPrice, trade.Qty,
		trade.ExitTime, trade.ExitPrice, string(trade.ExitReason), trade.GrossPnL, trade.NetPnL,
		trade.Commission, equity.Time, equity.Equity); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM paper_positions WHERE id = $1`, positionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStorage) LoadOpenPositions(ctx context.Context) ([]Position, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, symbol, side, entry_time, entry_price, qty, stop_price, has_stop, target_price, has_target
		FROM paper_positions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		var side string
		if err := rows.Scan(&p.ID, &p.Symbol, &side, &p.EntryTime, &p.EntryPrice, &p.Qty,
			&p.StopPrice, &p.HasStop, &p.TargetPrice, &p.HasTarget); err != nil {
			return nil, err
		}
		p.Side = backtest.Side(side)
		out = append(out, p)
	}
	return out, rows.Err()
}
