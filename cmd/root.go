package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fitflow/internal/interpreter"
	"fitflow/internal/store"

	"github.com/joho/godotenv"
)

// ErrVersionRequested is returned by ParseFlags when -version was passed.
var ErrVersionRequested = errors.New("version requested")

// Config holds CLI configuration.
type Config struct {
	ConfigDir string

	// Store is either a Sheety endpoint URL or a SQLite file path.
	Store       string
	SheetyToken string

	RapidAPIKey       string
	NutritionixAppID  string
	NutritionixAPIKey string
	Profile           interpreter.Profile

	// CatalogLimit is the number of exercises requested per catalog
	// fetch. Zero leaves it to the service default.
	CatalogLimit int

	LogPath  string
	LogLevel string
}

// Remote reports whether workouts are kept in a Sheety sheet.
func (c *Config) Remote() bool {
	return store.IsRemote(c.Store)
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string) (*Config, error) {
	return parse(flag.CommandLine, os.Args[1:], version, true)
}

func parse(fs *flag.FlagSet, args []string, version string, interactive bool) (*Config, error) {
	config := &Config{}

	// Load .env files first so env-based defaults work with existing flag parsing.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	var showVersion bool
	fs.StringVar(&config.Store, "store", "", "Sheety endpoint URL or SQLite file path (default: ~/.fitflow/workouts.db)")
	fs.StringVar(&config.RapidAPIKey, "rapidapi-key", "", "RapidAPI key for ExerciseDB (or set RAPIDAPI_KEY env var)")
	fs.StringVar(&config.NutritionixAppID, "nutritionix-app-id", "", "Nutritionix application ID (or set NUTRITIONIX_APP_ID env var)")
	fs.StringVar(&config.NutritionixAPIKey, "nutritionix-key", "", "Nutritionix API key (or set NUTRITIONIX_API_KEY env var)")
	fs.StringVar(&config.SheetyToken, "sheety-token", "", "Sheety bearer token (or set SHEETY_TOKEN env var)")
	fs.IntVar(&config.CatalogLimit, "catalog-limit", 0, "Exercises requested per catalog fetch, 0 for the service default (or set FITFLOW_CATALOG_LIMIT env var)")
	fs.StringVar(&config.LogPath, "log", "", "Path to log file (default: ~/.fitflow/fitflow.log)")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Println("fitflow", version)
		return nil, ErrVersionRequested
	}

	fromEnv(&config.Store, "SHEETY_API_URL")
	fromEnv(&config.RapidAPIKey, "RAPIDAPI_KEY")
	fromEnv(&config.NutritionixAppID, "NUTRITIONIX_APP_ID")
	fromEnv(&config.NutritionixAPIKey, "NUTRITIONIX_API_KEY")
	fromEnv(&config.SheetyToken, "SHEETY_TOKEN")
	config.LogLevel = os.Getenv("FITFLOW_LOG_LEVEL")
	if config.CatalogLimit == 0 {
		if v, err := strconv.Atoi(os.Getenv("FITFLOW_CATALOG_LIMIT")); err == nil {
			config.CatalogLimit = v
		}
	}
	if config.CatalogLimit < 0 {
		return nil, fmt.Errorf("catalog limit must not be negative: %d", config.CatalogLimit)
	}
	config.Profile = profileFromEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	config.ConfigDir = filepath.Join(home, ".fitflow")
	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if config.Store == "" {
		config.Store = filepath.Join(config.ConfigDir, "workouts.db")
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(config.ConfigDir, "fitflow.log")
	}

	if err := fillSecrets(config); err != nil {
		return nil, err
	}

	settings, err := loadOnboardingSettings(config.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if interactive && shouldRunOnboarding(settings, config) {
		if _, err := runOnboarding(config.ConfigDir, config); err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
		if err := fillSecrets(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// fillSecrets fills keys still missing after flags and env from the
// owner-only files written during onboarding.
func fillSecrets(config *Config) error {
	for _, s := range []struct {
		dst  *string
		name string
	}{
		{&config.RapidAPIKey, secretRapidAPIKey},
		{&config.NutritionixAppID, secretNutritionixAppID},
		{&config.NutritionixAPIKey, secretNutritionixAPIKey},
	} {
		if *s.dst != "" {
			continue
		}
		v, err := loadSecret(config.ConfigDir, s.name)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", s.name, err)
		}
		*s.dst = v
	}
	return nil
}

func fromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = strings.TrimSpace(os.Getenv(key))
	}
}

// profileFromEnv reads optional body metrics used to sharpen calorie estimates.
func profileFromEnv() interpreter.Profile {
	p := interpreter.Profile{Gender: strings.TrimSpace(os.Getenv("FITFLOW_GENDER"))}
	if v, err := strconv.ParseFloat(os.Getenv("FITFLOW_WEIGHT_KG"), 64); err == nil {
		p.WeightKg = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("FITFLOW_HEIGHT_CM"), 64); err == nil {
		p.HeightCm = v
	}
	if v, err := strconv.Atoi(os.Getenv("FITFLOW_AGE")); err == nil {
		p.Age = v
	}
	return p
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is ignored.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}
