package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stove_automation/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSchema creates the tables used by the Postgres implementations.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    path TEXT PRIMARY KEY,
    value JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMPTZ NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta JSONB
);
CREATE INDEX IF NOT EXISTS events_type_occurred_at ON events (type, occurred_at);
CREATE INDEX IF NOT EXISTS events_occurred_at ON events (occurred_at);
`

// EnsurePostgresSchema applies PostgresSchema.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

type StatePostgres struct {
	pool *pgxpool.Pool
}

func NewStatePostgres(pool *pgxpool.Pool) *StatePostgres {
	return &StatePostgres{pool: pool}
}

var _ StateStore = (*StatePostgres)(nil)

func (r *StatePostgres) Get(ctx context.Context, path string) (any, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = r.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE path = $1`, p).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select %q: %w", p, err)
	}
	return decodeJSON(raw)
}

func (r *StatePostgres) Set(ctx context.Context, path string, value any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", p, err)
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO kv_store (path, value, updated_at) VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (path) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = NOW()`, p, string(b))
	if err != nil {
		return fmt.Errorf("upsert %q: %w", p, err)
	}
	return nil
}

// Update merges in SQL; keys with nil values are removed with the jsonb "-" operator.
func (r *StatePostgres) Update(ctx context.Context, path string, fields map[string]any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	set := make(map[string]any, len(fields))
	var remove []string
	for k, v := range fields {
		if v == nil {
			remove = append(remove, k)
			continue
		}
		set[k] = v
	}
	b, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", p, err)
	}
	if remove == nil {
		remove = []string{}
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO kv_store (path, value, updated_at) VALUES ($1, $2::jsonb, NOW())
ON CONFLICT (path) DO UPDATE
SET value = CASE
        WHEN jsonb_typeof(kv_store.value) = 'object' THEN (kv_store.value || EXCLUDED.value) - $3::text[]
        ELSE EXCLUDED.value
    END,
    updated_at = NOW()`, p, string(b), remove)
	if err != nil {
		return fmt.Errorf("update %q: %w", p, err)
	}
	return nil
}

func (r *StatePostgres) Delete(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM kv_store WHERE path = $1 OR path LIKE $2 ESCAPE '\'`, p, likePrefix(p))
	if err != nil {
		return fmt.Errorf("delete %q: %w", p, err)
	}
	return nil
}

func (r *StatePostgres) List(ctx context.Context, prefix string) (map[string]any, error) {
	p, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT path, value FROM kv_store WHERE path LIKE $1 ESCAPE '\' ORDER BY path`, likePrefix(p))
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", p, err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var (
			path string
			raw  []byte
		)
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, err
		}
		v, err := decodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", path, err)
		}
		out[path] = v
	}
	return out, rows.Err()
}

type EventPostgres struct {
	pool *pgxpool.Pool
}

func NewEventPostgres(pool *pgxpool.Pool) *EventPostgres {
	return &EventPostgres{pool: pool}
}

var _ EventRepo = (*EventPostgres)(nil)

func (r *EventPostgres) Append(ctx context.Context, e models.Event) error {
	metaPtr := normalizeEvent(&e)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, occurred_at, type, message, meta) VALUES ($1, $2, $3, $4, $5::jsonb)`,
		e.EventID, e.OccurredAt, e.Type, e.Description, metaPtr)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.Type, err)
	}
	return nil
}

func (r *EventPostgres) List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		args = append(args, from.UTC())
		conds = append(conds, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to.UTC())
		conds = append(conds, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		args = append(args, typ)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}

	q := `SELECT id, occurred_at, type, message, meta::text FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Event, 0, 64)
	for rows.Next() {
		var (
			ev   models.Event
			meta *string
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &ev.Description, &meta); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		if meta != nil && *meta != "" {
			var v any
			if err := json.Unmarshal([]byte(*meta), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = *meta
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *EventPostgres) DeleteBefore(ctx context.Context, typ string, cutoff time.Time) (int64, error) {
	typ = strings.ToUpper(strings.TrimSpace(typ))
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE type = $1 AND occurred_at < $2`, typ, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete %s events: %w", typ, err)
	}
	return tag.RowsAffected(), nil
}
