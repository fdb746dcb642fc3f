package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// slot is the single cache key. The table holds at most one row.
const slot = "vehicles"

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and
// pgx.Tx. Accepting it instead of *pgxpool.Pool lets integration tests
// pass a transaction that is rolled back after each test, giving per-test
// isolation without manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG is a Store backed by a single-row Postgres table, for deployments
// that want the snapshot to survive process restarts or be shared across
// instances. It satisfies the same contract as Memory: errors degrade to
// cache misses and are logged, never surfaced; the upstream remains the
// system of record.
type PG struct {
	db     db
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewPG constructs a Postgres-backed Store. now is the clock; pass nil
// for time.Now.
func NewPG(db db, ttl time.Duration, now func() time.Time, logger *slog.Logger) *PG {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PG{db: db, ttl: ttl, now: now, logger: logger}
}

// Get returns the stored snapshot while it is younger than the TTL,
// deleting it lazily otherwise.
func (p *PG) Get() []domain.Vehicle {
	if p.ttl == 0 {
		return nil
	}

	const q = `
		SELECT refreshed_at, data
		FROM vehicle_cache
		WHERE slot = @slot`

	var (
		refreshedAt time.Time
		raw         []byte
	)
	ctx := context.Background()
	err := p.db.QueryRow(ctx, q, pgx.NamedArgs{"slot": slot}).Scan(&refreshedAt, &raw)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("cache read failed, treating as miss", "error", err)
		}
		return nil
	}

	if p.now().Sub(refreshedAt) >= p.ttl {
		p.Clear()
		return nil
	}

	var vehicles []domain.Vehicle
	if err := json.Unmarshal(raw, &vehicles); err != nil {
		p.logger.Warn("cache snapshot unreadable, clearing", "error", err)
		p.Clear()
		return nil
	}
	return vehicles
}

// Set replaces the snapshot row.
func (p *PG) Set(vehicles []domain.Vehicle) {
	raw, err := json.Marshal(vehicles)
	if err != nil {
		p.logger.Warn("cache snapshot marshal failed", "error", err)
		return
	}

	const q = `
		INSERT INTO vehicle_cache (slot, refreshed_at, data)
		VALUES (@slot, @refreshed_at, @data)
		ON CONFLICT (slot) DO UPDATE
		SET refreshed_at = EXCLUDED.refreshed_at,
		    data         = EXCLUDED.data`

	args := pgx.NamedArgs{"slot": slot, "refreshed_at": p.now(), "data": raw}
	if _, err := p.db.Exec(context.Background(), q, args); err != nil {
		p.logger.Warn("cache write failed", "error", err)
	}
}

// Clear removes the snapshot row.
func (p *PG) Clear() {
	const q = `DELETE FROM vehicle_cache WHERE slot = @slot`
	if _, err := p.db.Exec(context.Background(), q, pgx.NamedArgs{"slot": slot}); err != nil {
		p.logger.Warn("cache clear failed", "error", err)
	}
}
