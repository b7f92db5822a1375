package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	secretRapidAPIKey       = "rapidapi_key"
	secretNutritionixAppID  = "nutritionix_app_id"
	secretNutritionixAPIKey = "nutritionix_api_key"
)

type OnboardingSettings struct {
	Completed bool `json:"completed"`
	Catalog   bool `json:"catalog_enabled"`
	Logging   bool `json:"logging_enabled"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

func saveSecret(configDir, name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(filepath.Join(configDir, name), []byte(value+"\n"), 0600)
}

func loadSecret(configDir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(configDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func shouldRunOnboarding(settings OnboardingSettings, config *Config) bool {
	if settings.Completed {
		return false
	}
	if config.RapidAPIKey != "" && config.NutritionixAppID != "" && config.NutritionixAPIKey != "" {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepRapidAPI onboardingStep = iota
	stepAppID
	stepAppKey
	stepDone
)

var stepTabs = []struct {
	step  onboardingStep
	title string
}{
	{stepRapidAPI, "Exercise Catalog"},
	{stepAppID, "Nutritionix App ID"},
	{stepAppKey, "Nutritionix Key"},
}

type onboardingModel struct {
	step     onboardingStep
	inputs   [stepDone]textinput.Model
	captured [stepDone]string
	settings OnboardingSettings
	status   string
	width    int
	height   int
}

var (
	obColorMuted  = lipgloss.Color("#6C7A89")
	obColorText   = lipgloss.Color("#E4E8EC")
	obColorAccent = lipgloss.Color("#F2A65A")
	obColorDanger = lipgloss.Color("#f38ba8")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newKeyInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 300
	in.Prompt = "key> "
	in.EchoMode = textinput.EchoPassword
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	return in
}

// newOnboardingModel starts at the first key the config is still missing.
func newOnboardingModel(config *Config) onboardingModel {
	m := onboardingModel{
		settings: OnboardingSettings{Completed: true},
	}
	m.inputs[stepRapidAPI] = newKeyInput("Paste RapidAPI key here")
	m.inputs[stepAppID] = newKeyInput("Paste Nutritionix app ID here")
	m.inputs[stepAppID].EchoMode = textinput.EchoNormal
	m.inputs[stepAppKey] = newKeyInput("Paste Nutritionix API key here")

	m.captured[stepRapidAPI] = config.RapidAPIKey
	m.captured[stepAppID] = config.NutritionixAppID
	m.captured[stepAppKey] = config.NutritionixAPIKey

	m.step = m.nextMissing(stepRapidAPI)
	if m.step < stepDone {
		m.inputs[m.step].Focus()
	}
	return m
}

func (m onboardingModel) nextMissing(from onboardingStep) onboardingStep {
	for s := from; s < stepDone; s++ {
		if strings.TrimSpace(m.captured[s]) == "" {
			return s
		}
	}
	return stepDone
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.step >= stepDone {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.captured[m.step] = strings.TrimSpace(m.inputs[m.step].Value())
			return m.advance()
		case "esc":
			m.captured[m.step] = ""
			return m.advance()
		case "ctrl+c":
			m.status = "Setup canceled."
			return m.finish()
		}
		var cmd tea.Cmd
		m.inputs[m.step], cmd = m.inputs[m.step].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m onboardingModel) advance() (tea.Model, tea.Cmd) {
	m.inputs[m.step].Blur()
	m.step = m.nextMissing(m.step + 1)
	if m.step >= stepDone {
		return m.finish()
	}
	m.inputs[m.step].Focus()
	return m, textinput.Blink
}

func (m onboardingModel) finish() (tea.Model, tea.Cmd) {
	m.step = stepDone
	m.settings.Catalog = m.captured[stepRapidAPI] != ""
	m.settings.Logging = m.captured[stepAppID] != "" && m.captured[stepAppKey] != ""

	if m.status == "" {
		switch {
		case m.settings.Catalog && m.settings.Logging:
			m.status = "Keys saved."
		case !m.settings.Catalog:
			m.status = "No RapidAPI key. Exercise catalog disabled."
		default:
			m.status = "Missing Nutritionix credentials. Workout logging disabled."
		}
	}
	return m, tea.Quit
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	contentHeight := height - 6
	if contentHeight < 8 {
		contentHeight = 8
	}
	ui := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		m.renderTabs(width),
		m.renderContent(width, contentHeight),
		m.renderFooter(width),
	)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("fitflow") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	tabs := []string{"  "}
	for _, t := range stepTabs {
		if t.step == m.step {
			tabs = append(tabs, obTabActive.Render(t.title))
		} else {
			tabs = append(tabs, obTabInactive.Render(t.title))
		}
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, tabs...))
}

func (m onboardingModel) renderFooter(width int) string {
	if m.step >= stepDone {
		return obFooterStyle.Width(width).Render("Setup complete")
	}
	return obFooterStyle.Width(width).Render("enter save  esc skip  ctrl+c cancel")
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var lines []string
	switch m.step {
	case stepRapidAPI:
		lines = []string{
			obLabelStyle.Render("Browse exercises with ExerciseDB"),
			"",
			obMutedStyle.Render("1) https://rapidapi.com/justin-WFnsXH_t6/api/exercisedb"),
			obMutedStyle.Render("2) Subscribe to the free plan"),
			obMutedStyle.Render("3) Copy X-RapidAPI-Key"),
		}
	case stepAppID, stepAppKey:
		lines = []string{
			obLabelStyle.Render("Log workouts in plain words with Nutritionix"),
			"",
			obMutedStyle.Render("1) https://developer.nutritionix.com"),
			obMutedStyle.Render("2) Create an application"),
			obMutedStyle.Render("3) Copy the application ID and key"),
		}
	default:
		msg := obMutedStyle.Render(m.status)
		if strings.Contains(strings.ToLower(m.status), "disabled") {
			msg = obWarnStyle.Render(m.status)
		}
		card := obPanelStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg))
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
	}

	input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.inputs[m.step].View())
	lines = append(lines,
		"",
		obLabelStyle.Render(stepTabs[m.step].title),
		input,
		"",
		obMutedStyle.Render("Press Enter to save, Esc to skip."),
		obMutedStyle.Render("Keys are stored owner-only under ~/.fitflow"),
	)

	card := obPanelStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir string, config *Config) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(config), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if err := m.save(configDir, config); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}

// save persists keys the user typed. Keys that came from flags or env are
// left out of the secret files.
func (m onboardingModel) save(configDir string, config *Config) error {
	for _, s := range []struct {
		step     onboardingStep
		name     string
		existing string
	}{
		{stepRapidAPI, secretRapidAPIKey, config.RapidAPIKey},
		{stepAppID, secretNutritionixAppID, config.NutritionixAppID},
		{stepAppKey, secretNutritionixAPIKey, config.NutritionixAPIKey},
	} {
		if s.existing != "" {
			continue
		}
		if err := saveSecret(configDir, s.name, m.captured[s.step]); err != nil {
			return err
		}
	}
	return saveOnboardingSettings(configDir, m.settings)
}
