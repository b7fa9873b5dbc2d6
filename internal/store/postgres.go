package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mapler/socialclock/internal/domain/event"
)

// Pool tuning for the event store. Wake-up traffic is tiny, so the pool
// stays small; long-lived pooling replaces the original per-call open/close.
const (
	maxConns        = 10
	minConns        = 2
	maxConnLifetime = 10 * time.Minute
	maxConnIdleTime = 5 * time.Minute
)

// uniqueViolationCode is the Postgres error code for primary-key collisions.
const uniqueViolationCode = "23505"

// createTableQuery mirrors the original alarm_event table shape.
const createTableQuery = `
CREATE TABLE IF NOT EXISTS alarm_event (
    event_id     TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    user_name    TEXT NOT NULL,
    start_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    end_at       TIMESTAMPTZ DEFAULT NULL,
    snooze_times INTEGER NOT NULL DEFAULT 0,
    sync_at      TIMESTAMPTZ DEFAULT NULL,
    deleted_at   TIMESTAMPTZ DEFAULT NULL
)`

// selectColumns is the column list shared by every read query.
const selectColumns = `event_id, user_id, user_name, start_at, end_at, snooze_times, sync_at, deleted_at`

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgresPool creates a tuned pgx pool and verifies connectivity.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return pool, nil
}

// NewPostgres wraps a pool as a Store and bootstraps the alarm_event table.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("create alarm_event table: %w", storageError(err))
	}

	return &Postgres{pool: pool}, nil
}

// FindAll returns every event ordered by start time, newest first.
func (p *Postgres) FindAll(ctx context.Context) ([]*event.AlarmEvent, error) {
	return p.FilterBy(ctx, Filter{}, ByStartAtDesc)
}

// FilterBy returns events matching the filter in the requested order.
// The filter is rendered as parameterized SQL, never concatenated values.
func (p *Postgres) FilterBy(ctx context.Context, filter Filter, order Order) ([]*event.AlarmEvent, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	where, args := whereClause(filter)
	query := `SELECT ` + selectColumns + ` FROM alarm_event` + where + orderClause(order)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", storageError(err))
	}
	defer rows.Close()

	var events []*event.AlarmEvent

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", storageError(err))
	}

	return events, nil
}

// GetByEventID returns the event with the provided id or ErrNotFound.
func (p *Postgres) GetByEventID(ctx context.Context, eventID string) (*event.AlarmEvent, error) {
	query := `SELECT ` + selectColumns + ` FROM alarm_event WHERE event_id = $1`

	e, err := scanEvent(p.pool.QueryRow(ctx, query, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", storageError(err))
	}

	return e, nil
}

// Insert stores a new event. A colliding event id yields ErrDuplicateKey.
func (p *Postgres) Insert(ctx context.Context, e *event.AlarmEvent) error {
	query := `INSERT INTO alarm_event (` + selectColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := p.pool.Exec(ctx, query,
		e.EventID,
		e.UserID,
		e.UserName,
		e.StartAt,
		e.EndAt,
		e.SnoozeTimes,
		e.SyncAt,
		e.DeletedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicateKey
	}

	if err != nil {
		return fmt.Errorf("insert event: %w", storageError(err))
	}

	return nil
}

// Update rewrites the mutable fields of the matching record.
// Identity fields and start_at are deliberately absent from the SET list.
func (p *Postgres) Update(ctx context.Context, e *event.AlarmEvent) (int64, error) {
	query := `UPDATE alarm_event
	          SET end_at = $1, snooze_times = $2, sync_at = $3, deleted_at = $4
	          WHERE event_id = $5`

	tag, err := p.pool.Exec(ctx, query,
		e.EndAt,
		e.SnoozeTimes,
		e.SyncAt,
		e.DeletedAt,
		e.EventID,
	)
	if err != nil {
		return 0, fmt.Errorf("update event: %w", storageError(err))
	}

	return tag.RowsAffected(), nil
}

// Delete removes the record. A missing id affects zero rows.
func (p *Postgres) Delete(ctx context.Context, eventID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM alarm_event WHERE event_id = $1`, eventID)
	if err != nil {
		return 0, fmt.Errorf("delete event: %w", storageError(err))
	}

	return tag.RowsAffected(), nil
}

// CountUnfinished reports how many events have not reached the finished
// state. Used by the metrics gauge.
func (p *Postgres) CountUnfinished(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM alarm_event WHERE end_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unfinished events: %w", storageError(err))
	}

	return count, nil
}

// scanEvent reads one alarm_event row.
func scanEvent(row pgx.Row) (*event.AlarmEvent, error) {
	var e event.AlarmEvent

	err := row.Scan(
		&e.EventID,
		&e.UserID,
		&e.UserName,
		&e.StartAt,
		&e.EndAt,
		&e.SnoozeTimes,
		&e.SyncAt,
		&e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// storageError tags connectivity failures with ErrStorageUnavailable so
// callers can distinguish an unreachable store from a data error.
func storageError(err error) error {
	var connectError *pgconn.ConnectError
	if errors.As(err, &connectError) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return err
}
