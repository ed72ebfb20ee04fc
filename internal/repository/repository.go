package repository

import (
	"context"
	"database/sql"
	"time"

	"stove_automation/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StateStore is the hierarchical key-value store holding schedules, mode,
// cooldown markers and automation state. Paths are "/"-separated.
type StateStore interface {
	// Get returns the decoded JSON value at path, or nil when absent.
	Get(ctx context.Context, path string) (any, error)
	Set(ctx context.Context, path string, value any) error
	// Update merges fields into the object at path, creating it when absent.
	// A nil field value removes that key.
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	// List returns every value stored below prefix, keyed by full path.
	List(ctx context.Context, prefix string) (map[string]any, error)
}

// EventRepo is the append-only event log (audit, analytics, PID tuning).
type EventRepo interface {
	Append(ctx context.Context, e models.Event) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.Event, error)
	DeleteBefore(ctx context.Context, typ string, cutoff time.Time) (int64, error)
}

type Repository struct {
	Store     StateStore
	EventRepo EventRepo
}

// NewRepository wires the SQLite implementations.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Store:     NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
	}
}

// NewPostgresRepository wires the Postgres implementations.
func NewPostgresRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Store:     NewStatePostgres(pool),
		EventRepo: NewEventPostgres(pool),
	}
}
