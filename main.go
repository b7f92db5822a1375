package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"fitflow/cmd"
	"fitflow/internal/browse"
	"fitflow/internal/catalog"
	"fitflow/internal/db"
	"fitflow/internal/interpreter"
	"fitflow/internal/logging"
	"fitflow/internal/store"
	"fitflow/internal/ui"
	"fitflow/internal/workout"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup (log file, database)
// always happens before exit.
func run() int {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version)
	if err != nil {
		if errors.Is(err, cmd.ErrVersionRequested) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closer, err := logging.OpenFile(config.LogPath, logging.ParseLevel(config.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(logger)

	if config.RapidAPIKey == "" {
		fmt.Fprintln(os.Stderr, "ℹ  No RAPIDAPI_KEY set — exercise catalog requests will fail")
	}
	if config.NutritionixAppID == "" || config.NutritionixAPIKey == "" {
		fmt.Fprintln(os.Stderr, "ℹ  No Nutritionix credentials set — workout logging will fail")
	}

	app, cleanup, err := buildApp(config, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	// Create and run Bubble Tea app
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("app exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		return 1
	}
	return 0
}

// buildApp wires the store, clients and state containers into the root
// model. cleanup releases the store and pending timers.
func buildApp(config *cmd.Config, logger *slog.Logger) (ui.Model, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Pick the workout sheet
	var sheet workout.Store
	if config.Remote() {
		logger.Info("using sheety store", "url", config.Store)
		sheet = store.NewSheety(config.Store, store.DefaultSheetKey, config.SheetyToken)
	} else {
		database, err := db.Open(config.Store)
		if err != nil {
			return ui.Model{}, cleanup, fmt.Errorf("failed to open database: %w", err)
		}
		closers = append(closers, func() { _ = database.Close() })
		logger.Info("using sqlite store", "path", config.Store)
		sheet = store.NewLocal(database)
	}

	interp := interpreter.NewClient(config.NutritionixAppID, config.NutritionixAPIKey).
		WithProfile(config.Profile)
	pipeline := workout.New(interp, sheet, logger)
	closers = append(closers, pipeline.Close)

	catalogView := ui.NewCatalogModel()
	source := catalog.NewClient(config.RapidAPIKey, catalog.WithLimit(config.CatalogLimit))
	controller := browse.New(source, &browse.Filter{}, logger, catalogView.Scroll)

	prefsPath, err := ui.DefaultPrefsPath()
	if err != nil {
		logger.Warn("ui prefs disabled", "error", err)
	}

	app := ui.New(controller, catalogView, pipeline, ui.Options{
		Media:     ui.NewMediaLoader(),
		Logger:    logger,
		PrefsPath: prefsPath,
	})
	return app, cleanup, nil
}
