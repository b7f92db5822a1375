package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// BodyPartsLoadedMsg is sent when the body part tag list is loaded.
type BodyPartsLoadedMsg struct {
	BodyParts []string
	Err       error
}

// CatalogLoadedMsg is sent when a body part fetch completes.
type CatalogLoadedMsg struct {
	BodyPart string
	Err      error
}

// SearchCompletedMsg is sent when a free-text search completes.
type SearchCompletedMsg struct {
	Query string
	Count int
	Err   error
}

// MediaLoadedMsg is sent when an exercise preview image is rendered.
type MediaLoadedMsg struct {
	ExerciseID string
	ASCII      string
	Err        error
}

// WorkoutsHydratedMsg is sent when the persisted log has been loaded.
type WorkoutsHydratedMsg struct {
	Err error
}

// WorkoutSubmittedMsg is sent when a submission attempt finishes.
type WorkoutSubmittedMsg struct {
	Entry PersistedLogEntry
	Err   error
}

// WorkoutStatusMsg is sent whenever the logging pipeline changes state
// outside of a submission command, e.g. when the success banner expires.
type WorkoutStatusMsg struct{}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenCatalog Screen = iota
	ScreenWorkouts
	ScreenExerciseDetail
	ScreenWorkoutForm
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
