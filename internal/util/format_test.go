package util

import (
	"testing"
	"time"
)

func TestFormatDateHuman(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"2026-10-15": "Today",
		"2026-10-14": "Yesterday",
		"2026-10-11": "4d ago",
		"2026-03-02": "Mar 02",
		"2024-01-15": "Jan 15 '24",
		"":           "Unknown",
		"not a date": "not a date",
	}
	for in, want := range tests {
		if got := formatDateHumanAt(in, now); got != want {
			t.Errorf("formatDateHumanAt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCalories(t *testing.T) {
	tests := map[float64]string{
		0:     "—",
		312.4: "312 kcal",
		99.5:  "100 kcal",
	}
	for in, want := range tests {
		if got := FormatCalories(in); got != want {
			t.Errorf("FormatCalories(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		0:   "—",
		45:  "45 min",
		60:  "1h",
		90:  "1h 30m",
		125: "2h 5m",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPluralizeAndTitleCase(t *testing.T) {
	if got := Pluralize(1, "exercise"); got != "1 exercise" {
		t.Errorf("got %q", got)
	}
	if got := Pluralize(0, "exercise"); got != "0 exercises" {
		t.Errorf("got %q", got)
	}
	if got := TitleCase("upper  arms"); got != "Upper Arms" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("dumbbell incline curl", 10); got != "dumbbel..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("curl", 10); got != "curl" {
		t.Errorf("got %q", got)
	}
}
