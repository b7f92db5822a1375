package cmd

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("fitflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHEETY_API_URL", "SHEETY_TOKEN", "RAPIDAPI_KEY", "NUTRITIONIX_APP_ID",
		"NUTRITIONIX_API_KEY", "FITFLOW_LOG_LEVEL", "FITFLOW_GENDER",
		"FITFLOW_WEIGHT_KG", "FITFLOW_HEIGHT_CM", "FITFLOW_AGE", "FITFLOW_CATALOG_LIMIT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := parse(newFlagSet(), nil, "test", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".fitflow", "workouts.db"); config.Store != want {
		t.Errorf("store = %q, want %q", config.Store, want)
	}
	if config.Remote() {
		t.Error("default store should be local")
	}
	if filepath.Base(config.LogPath) != "fitflow.log" {
		t.Errorf("unexpected log path %q", config.LogPath)
	}
}

func TestParse_FlagsBeatEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAPIDAPI_KEY", "env-rapid")
	t.Setenv("SHEETY_API_URL", "https://api.sheety.co/abc/workouts/sheet1")
	t.Setenv("FITFLOW_WEIGHT_KG", "72.5")
	t.Setenv("FITFLOW_AGE", "31")

	config, err := parse(newFlagSet(), []string{"-rapidapi-key", "flag-rapid"}, "test", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if config.RapidAPIKey != "flag-rapid" {
		t.Errorf("rapidapi key = %q", config.RapidAPIKey)
	}
	if !config.Remote() {
		t.Errorf("expected remote store, got %q", config.Store)
	}
	if config.Profile.WeightKg != 72.5 || config.Profile.Age != 31 {
		t.Errorf("unexpected profile %+v", config.Profile)
	}
}

func TestParse_CatalogLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("FITFLOW_CATALOG_LIMIT", "200")

	config, err := parse(newFlagSet(), nil, "test", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if config.CatalogLimit != 200 {
		t.Errorf("env limit = %d, want 200", config.CatalogLimit)
	}

	config, err = parse(newFlagSet(), []string{"-catalog-limit", "1500"}, "test", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if config.CatalogLimit != 1500 {
		t.Errorf("flag limit = %d, want 1500", config.CatalogLimit)
	}

	if _, err := parse(newFlagSet(), []string{"-catalog-limit", "-1"}, "test", false); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestParse_Version(t *testing.T) {
	clearEnv(t)
	if _, err := parse(newFlagSet(), []string{"-version"}, "1.2.3", false); err != ErrVersionRequested {
		t.Fatalf("expected ErrVersionRequested, got %v", err)
	}
}

func TestParse_ReadsSavedSecrets(t *testing.T) {
	clearEnv(t)
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".fitflow")
	if err := saveSecret(dir, secretNutritionixAppID, " app-id "); err != nil {
		t.Fatalf("save: %v", err)
	}

	config, err := parse(newFlagSet(), nil, "test", false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if config.NutritionixAppID != "app-id" {
		t.Errorf("app id = %q", config.NutritionixAppID)
	}

	info, err := os.Stat(filepath.Join(dir, secretNutritionixAppID))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("secret file mode = %o", perm)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("FITFLOW_TEST_A", "")
	os.Unsetenv("FITFLOW_TEST_A")
	t.Setenv("FITFLOW_TEST_B", "keep")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nexport FITFLOW_TEST_A=\"quoted value\"\nFITFLOW_TEST_B=override\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	loadDotEnv(path)

	if got := os.Getenv("FITFLOW_TEST_A"); got != "quoted value" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("FITFLOW_TEST_B"); got != "keep" {
		t.Errorf("B = %q, existing env should win", got)
	}
}

func TestOnboarding_SkipsKnownKeys(t *testing.T) {
	m := newOnboardingModel(&Config{RapidAPIKey: "have"})
	if m.step != stepAppID {
		t.Fatalf("expected to start at app id step, got %d", m.step)
	}

	m.inputs[stepAppID].SetValue("my-app")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(onboardingModel)
	if m.step != stepAppKey {
		t.Fatalf("expected key step, got %d", m.step)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(onboardingModel)
	if m.step != stepDone || cmd == nil {
		t.Fatalf("expected done with quit, got step %d", m.step)
	}
	if !m.settings.Catalog || m.settings.Logging {
		t.Errorf("unexpected settings %+v", m.settings)
	}
	if m.status != "Missing Nutritionix credentials. Workout logging disabled." {
		t.Errorf("status = %q", m.status)
	}
}

func TestOnboarding_SaveWritesOnlyTypedKeys(t *testing.T) {
	dir := t.TempDir()
	config := &Config{RapidAPIKey: "from-env"}
	m := newOnboardingModel(config)
	m.captured[stepAppID] = "typed-id"
	m.captured[stepAppKey] = "typed-key"
	next, _ := m.finish()
	m = next.(onboardingModel)

	if err := m.save(dir, config); err != nil {
		t.Fatalf("save: %v", err)
	}
	if v, _ := loadSecret(dir, secretRapidAPIKey); v != "" {
		t.Errorf("env key should not be written, got %q", v)
	}
	if v, _ := loadSecret(dir, secretNutritionixAPIKey); v != "typed-key" {
		t.Errorf("api key = %q", v)
	}

	settings, err := loadOnboardingSettings(dir)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if !settings.Completed || !settings.Catalog || !settings.Logging {
		t.Errorf("unexpected settings %+v", settings)
	}
}
