package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

var _ StateStore = (*StateSQLite)(nil)

const (
	upsertValueSQL = `
		INSERT INTO kv_store (path, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
	selectValueSQL  = `SELECT value FROM kv_store WHERE path = ?`
	deleteValueSQL  = `DELETE FROM kv_store WHERE path = ? OR path LIKE ? ESCAPE '\'`
	listByPrefixSQL = `SELECT path, value FROM kv_store WHERE path LIKE ? ESCAPE '\' ORDER BY path ASC`
)

// Get returns the decoded value at path, or (nil, nil) when absent.
func (r *StateSQLite) Get(ctx context.Context, path string) (any, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	var raw string
	if err := r.db.QueryRowContext(ctx, selectValueSQL, p).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select %q: %w", p, err)
	}
	return decodeJSON([]byte(raw))
}

// Set replaces the value at path.
func (r *StateSQLite) Set(ctx context.Context, path string, value any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", p, err)
	}
	if _, err := r.db.ExecContext(ctx, upsertValueSQL, p, string(b), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %q: %w", p, err)
	}
	return nil
}

// Update merges fields into the object at path inside a transaction.
func (r *StateSQLite) Update(ctx context.Context, path string, fields map[string]any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %q: %w", p, err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing []byte
	var raw string
	switch err := tx.QueryRowContext(ctx, selectValueSQL, p).Scan(&raw); {
	case err == nil:
		existing = []byte(raw)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("select %q: %w", p, err)
	}

	merged, err := mergeFields(existing, fields)
	if err != nil {
		return fmt.Errorf("merge %q: %w", p, err)
	}
	if _, err := tx.ExecContext(ctx, upsertValueSQL, p, string(merged), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert %q: %w", p, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update %q: %w", p, err)
	}
	return nil
}

// Delete removes the value at path and everything below it.
func (r *StateSQLite) Delete(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, deleteValueSQL, p, likePrefix(p)); err != nil {
		return fmt.Errorf("delete %q: %w", p, err)
	}
	return nil
}

// List returns all values strictly below prefix.
func (r *StateSQLite) List(ctx context.Context, prefix string) (map[string]any, error) {
	p, err := CleanPath(prefix)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, listByPrefixSQL, likePrefix(p))
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", p, err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var path, raw string
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, err
		}
		v, err := decodeJSON([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", path, err)
		}
		out[path] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
