package main

import (
	"os"
	"path/filepath"
	"testing"

	"fitflow/cmd"
	"fitflow/internal/logging"
)

func TestBuildApp_LocalStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dbPath := filepath.Join(home, "data", "workouts.db")

	app, cleanup, err := buildApp(&cmd.Config{Store: dbPath, CatalogLimit: 50}, logging.Discard())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer cleanup()

	if app.Init() == nil {
		t.Error("expected startup commands")
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestBuildApp_RemoteStoreSkipsDatabase(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, cleanup, err := buildApp(&cmd.Config{Store: "https://api.sheety.co/abc/workouts/sheet1"}, logging.Discard())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	cleanup()

	if _, err := os.Stat(filepath.Join(home, ".fitflow", "workouts.db")); !os.IsNotExist(err) {
		t.Errorf("remote store should not create a local database, stat err = %v", err)
	}
}

func TestBuildApp_DatabaseErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	_, cleanup, err := buildApp(&cmd.Config{Store: filepath.Join(blocker, "workouts.db")}, logging.Discard())
	if err == nil {
		t.Fatal("expected database open error")
	}
	// Safe to call after a failed build.
	cleanup()
}
