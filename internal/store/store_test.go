package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fitflow/internal/db"
	"fitflow/internal/model"
)

func TestSheety_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"sheet1":[
			{"id":2,"date":"2026-10-14","exercise":"running","duration":30,"calories":300.5,"notes":""},
			{"id":3,"date":"2026-10-15","exercise":"yoga","duration":"45","calories":"","notes":"slow flow"}
		]}`))
	}))
	defer srv.Close()

	entries, err := NewSheety(srv.URL, "", "secret").List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != 2 || entries[0].Calories != 300.5 {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Duration != 45 || entries[1].Calories != 0 || entries[1].Notes != "slow flow" {
		t.Errorf("string cells not decoded: %+v", entries[1])
	}
}

func TestSheety_ListPluralKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("no token configured, got auth header")
		}
		w.Write([]byte(`{"workouts":[{"id":2,"date":"2026-10-15","exercise":"rowing","duration":20,"calories":180}]}`))
	}))
	defer srv.Close()

	entries, err := NewSheety(srv.URL, "workout", "").List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Exercise != "rowing" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestSheety_Append(t *testing.T) {
	var got map[string]map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"sheet1":{"id":7,"date":"2026-10-15","exercise":"running","duration":30,"calories":300,"notes":"park"}}`))
	}))
	defer srv.Close()

	persisted, err := NewSheety(srv.URL, "", "").Append(context.Background(), model.LogEntry{
		Date: "2026-10-15", Exercise: "running", Duration: 30, Calories: 300, Notes: "park",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	row, ok := got["sheet1"]
	if !ok {
		t.Fatalf("request not wrapped in sheet1: %v", got)
	}
	if row["exercise"] != "running" || row["duration"] != float64(30) {
		t.Errorf("unexpected request row %v", row)
	}
	if _, ok := row["id"]; ok {
		t.Errorf("id should not be sent: %v", row)
	}
	if persisted.ID != 7 || persisted.Notes != "park" {
		t.Errorf("unexpected persisted entry %+v", persisted)
	}
}

func TestSheetRow_DurationRounding(t *testing.T) {
	tests := []struct {
		cell number
		want int
	}{
		{29.5, 30},
		{29.4, 29},
		{-0.6, -1},
		{-2.5, -3},
	}
	for _, tt := range tests {
		if got := (sheetRow{Duration: tt.cell}).toModel().Duration; got != tt.want {
			t.Errorf("duration %v: got %d, want %d", tt.cell, got, tt.want)
		}
	}
}

func TestSheety_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"malformed", http.StatusOK, `{"sheet1":`},
		{"missing key", http.StatusOK, `{"other":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewSheety(srv.URL, "", "").Append(context.Background(), model.LogEntry{Exercise: "swim"})
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLocal_AppendAndList(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "workouts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	local := NewLocal(database)
	ctx := context.Background()

	persisted, err := local.Append(ctx, model.LogEntry{Date: "2026-10-15", Exercise: "cycling", Duration: 40, Calories: 350})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if persisted.ID == 0 || persisted.Exercise != "cycling" {
		t.Errorf("unexpected persisted entry %+v", persisted)
	}

	entries, err := local.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0] != persisted {
		t.Errorf("list mismatch: %+v", entries)
	}
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocal(nil).List(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://api.sheety.co/abc/workouts/sheet1": true,
		"http://localhost:8080/sheet":               true,
		"/home/me/.fitflow/workouts.db":             false,
		"workouts.db":                               false,
		"":                                          false,
	}
	for in, want := range tests {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}
