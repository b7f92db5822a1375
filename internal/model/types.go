package model

// BodyPartAll is the reserved body part tag meaning "no filter applied".
const BodyPartAll = "all"

// Exercise represents a catalog exercise.
type Exercise struct {
	ID        string
	Name      string
	Target    string
	Equipment string
	BodyPart  string
	GifURL    string
	Details   ExerciseDetails
}

// ExerciseDetails holds the descriptive parts of a catalog exercise.
type ExerciseDetails struct {
	SecondaryMuscles []string
	Instructions     []string
}

// Candidate is one structured exercise returned by the interpreter service.
type Candidate struct {
	Name        string
	UserInput   string
	DurationMin float64
	Calories    float64
	MET         float64
	PhotoURL    string
}

// LogEntry represents data for appending a workout to the log store.
type LogEntry struct {
	Date     string // ISO 8601 date (YYYY-MM-DD)
	Exercise string
	Duration int // minutes
	Calories float64
	Notes    string
}

// PersistedLogEntry represents a workout as returned by the log store.
type PersistedLogEntry struct {
	ID       int64
	Date     string
	Exercise string
	Duration int
	Calories float64
	Notes    string
}
