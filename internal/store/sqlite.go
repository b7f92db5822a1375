package store

import (
	"context"
	"database/sql"

	"fitflow/internal/db"
	"fitflow/internal/model"
)

// Local keeps the workout log in a SQLite database.
type Local struct {
	db *sql.DB
}

func NewLocal(database *sql.DB) *Local {
	return &Local{db: database}
}

func (l *Local) List(ctx context.Context) ([]model.PersistedLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.ListWorkouts(l.db)
}

func (l *Local) Append(ctx context.Context, entry model.LogEntry) (model.PersistedLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return model.PersistedLogEntry{}, err
	}
	return db.InsertWorkout(l.db, entry)
}
