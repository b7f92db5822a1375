package db

import (
	"database/sql"
	"fmt"

	"fitflow/internal/model"
)

// ListWorkouts retrieves every logged workout in insertion order.
func ListWorkouts(db *sql.DB) ([]model.PersistedLogEntry, error) {
	query := `
		SELECT id, date, exercise, duration, calories, COALESCE(notes, '')
		FROM workouts
		ORDER BY id
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	results := []model.PersistedLogEntry{}
	for rows.Next() {
		var w model.PersistedLogEntry
		if err := rows.Scan(&w.ID, &w.Date, &w.Exercise, &w.Duration, &w.Calories, &w.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan workout row: %w", err)
		}
		results = append(results, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workout rows: %w", err)
	}

	return results, nil
}

// GetWorkout retrieves a single workout by ID.
func GetWorkout(db *sql.DB, id int64) (model.PersistedLogEntry, error) {
	query := `
		SELECT id, date, exercise, duration, calories, notes
		FROM workouts
		WHERE id = ?
	`

	var w model.PersistedLogEntry
	var notes sql.NullString
	err := db.QueryRow(query, id).Scan(&w.ID, &w.Date, &w.Exercise, &w.Duration, &w.Calories, &notes)
	if err != nil {
		return model.PersistedLogEntry{}, fmt.Errorf("failed to get workout: %w", err)
	}
	w.Notes = notes.String

	return w, nil
}

// InsertWorkout appends a workout and returns the stored row.
func InsertWorkout(db *sql.DB, e model.LogEntry) (model.PersistedLogEntry, error) {
	query := `
		INSERT INTO workouts (date, exercise, duration, calories, notes)
		VALUES (?, ?, ?, ?, ?)
	`

	var notes interface{}
	if e.Notes != "" {
		notes = e.Notes
	}

	result, err := db.Exec(query, e.Date, e.Exercise, e.Duration, e.Calories, notes)
	if err != nil {
		return model.PersistedLogEntry{}, fmt.Errorf("failed to insert workout: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.PersistedLogEntry{}, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return GetWorkout(db, id)
}
