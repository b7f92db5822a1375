package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitflow/internal/browse"
	"fitflow/internal/errs"
	"fitflow/internal/model"
	"fitflow/internal/util"
	"fitflow/internal/workout"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options holds the optional collaborators of the root model.
type Options struct {
	Media     *MediaLoader
	Logger    *slog.Logger
	PrefsPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	catalog   *browse.Controller
	workouts  *workout.Pipeline
	media     *MediaLoader
	logger    *slog.Logger
	prefsPath string

	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error       string
	info        string
	logged      string
	showingHelp bool

	// Requests issued but not yet answered. The controller and pipeline
	// only mark themselves busy once the command goroutine runs.
	catalogPending int
	hydratePending bool

	// Screen models
	catalogView  *CatalogModel
	workoutsView *WorkoutsModel
	detail       *ExerciseDetailModel
	form         *WorkoutFormModel
	spinner      spinner.Model

	keys     KeyMap
	formKeys FormKeyMap
	prefs    UIPreferences
}

// New creates a new root model. catalogView should be the model whose
// Scroll method was given to browse.New.
func New(catalog *browse.Controller, catalogView *CatalogModel, workouts *workout.Pipeline, opts Options) Model {
	if catalogView == nil {
		catalogView = NewCatalogModel()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	prefs := loadUIPreferences(opts.PrefsPath)
	workoutsView := NewWorkoutsModel()
	workoutsView.ApplyPrefs(prefs.Workouts)

	return Model{
		catalog:        catalog,
		workouts:       workouts,
		media:          opts.Media,
		logger:         logger.With("component", "ui"),
		prefsPath:      opts.PrefsPath,
		screen:         model.ScreenCatalog,
		mode:           model.ModeNav,
		gState:         GStateIdle,
		catalogView:    catalogView,
		workoutsView:   workoutsView,
		spinner:        sp,
		catalogPending: 1,
		hydratePending: true,
		keys:           DefaultKeyMap(),
		formKeys:       DefaultFormKeyMap(),
		prefs:          prefs,
	}
}

// Init starts the catalog load and the workout log hydration.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadBodyPartsCmd(m.catalog),
		filterBodyPartCmd(m.catalog, model.BodyPartAll),
		hydrateWorkoutsCmd(m.workouts),
		m.catalogView.spinner.Tick,
		m.spinner.Tick,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			m.info = ""
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case spinner.TickMsg:
		return m.routeSpinnerTick(msg)

	case model.ErrorMsg:
		m.error = errs.UserMessage(msg.Err)
		return m, nil

	case model.BodyPartsLoadedMsg:
		// Catalog failures are logged by the controller and the strip keeps
		// whatever it had.
		return m, nil

	case model.CatalogLoadedMsg:
		m.catalogPending = max(0, m.catalogPending-1)
		m.catalogView.applyScroll()
		if msg.Err != nil {
			m.catalogFailed(msg.Err)
			return m, nil
		}
		m.error = ""
		m.catalogView.setResult(len(m.catalog.Exercises()), util.TitleCase(msg.BodyPart))
		return m, nil

	case model.SearchCompletedMsg:
		m.catalogPending = max(0, m.catalogPending-1)
		m.catalogView.applyScroll()
		if msg.Err != nil {
			m.catalogFailed(msg.Err)
			return m, nil
		}
		m.error = ""
		m.catalogView.setResult(msg.Count, fmt.Sprintf("%q", m.catalog.Filter().Query))
		return m, nil

	case model.MediaLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("media preview failed", "exercise_id", msg.ExerciseID, "error", msg.Err)
		}
		if m.detail != nil {
			m.detail.SetMedia(msg)
		}
		return m, nil

	case model.WorkoutsHydratedMsg:
		m.hydratePending = false
		m.syncWorkouts()
		return m, nil

	case model.WorkoutSubmittedMsg:
		if m.form != nil {
			form, _ := m.form.Update(msg)
			m.form = &form
		}
		if msg.Err != nil {
			return m, nil
		}
		m.mode = model.ModeNav
		m.screen = model.ScreenWorkouts
		m.form = nil
		m.error = ""
		m.syncWorkouts()
		m.workoutsView.JumpToBottom()
		m.logged = fmt.Sprintf("Logged %s · %s · %s",
			util.TitleCase(msg.Entry.Exercise), util.FormatDuration(msg.Entry.Duration), util.FormatCalories(msg.Entry.Calories))
		return m, successExpiryCmd(m.workouts)

	case model.WorkoutStatusMsg:
		if m.workouts.Status() != workout.Succeeded {
			m.logged = ""
		}
		return m, nil

	case model.FormCancelledMsg:
		m.mode = model.ModeNav
		m.screen = model.ScreenWorkouts
		m.form = nil
		return m, nil

	default:
		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}
	}

	return m, nil
}

// catalogFailed shows only input errors. Fetch failures are logged by the
// controller and the previous results stay on screen.
func (m *Model) catalogFailed(err error) {
	if errs.GetCode(err) == errs.CodeValidation {
		m.error = errs.UserMessage(err)
	}
}

func (m *Model) syncWorkouts() {
	m.workoutsView.SetEntries(m.workouts.Snapshot().Entries)
}

func (m Model) routeSpinnerTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.catalog.Loading() || m.catalogPending > 0 {
		m.catalogView.spinner, cmd = m.catalogView.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.hydratePending || m.workouts.Snapshot().Hydrating {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.detail != nil && m.detail.loading {
		m.detail.spinner, cmd = m.detail.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.form != nil {
		form, cmd := m.form.Update(msg)
		m.form = &form
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	showTabs := m.screen == model.ScreenCatalog || m.screen == model.ScreenWorkouts

	contentHeight := m.height - 4
	if showTabs {
		contentHeight -= 2
	}

	switch m.screen {
	case model.ScreenCatalog:
		breadcrumbParts = []string{"Catalog"}
		content = m.catalogView.View(m.catalog, m.width, contentHeight)
	case model.ScreenWorkouts:
		breadcrumbParts = []string{"Workout Log"}
		content = m.renderWorkouts(contentHeight)
	case model.ScreenExerciseDetail:
		breadcrumbParts = []string{"Catalog", "Detail"}
		if m.detail != nil {
			breadcrumbParts = []string{"Catalog", util.TitleCase(m.detail.exercise.Name)}
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenWorkoutForm:
		breadcrumbParts = []string{"Workout Log", "New"}
		if m.form != nil {
			content = m.form.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.mode, m.keys, m.formKeys, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if showTabs {
		parts = append(parts, renderTabs(m.screen, m.width))
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.logged != "" && m.workouts.Status() == workout.Succeeded {
		parts = append(parts, SuccessStyle.Width(m.width).Render("✓ "+m.logged))
	} else if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderWorkouts(height int) string {
	snap := m.workouts.Snapshot()
	switch {
	case snap.Hydrating || m.hydratePending:
		return EmptyStateStyle.Width(m.width).Render(m.spinner.View() + " Loading workouts...")
	case snap.HydrationErr != nil:
		msg := errs.UserMessage(snap.HydrationErr) + "\n\n" + HelpDescStyle.Render("press r to retry")
		return ErrorStyle.Padding(2, 4).Width(m.width).Render(msg)
	}
	return m.workoutsView.View(m.width, height)
}

func renderTabs(screen model.Screen, width int) string {
	tabs := []struct {
		name   string
		screen model.Screen
	}{
		{"Catalog", model.ScreenCatalog},
		{"Workout Log", model.ScreenWorkouts},
	}

	var tabStrings []string
	for _, tab := range tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if screen == tab.screen {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}

		tabStrings = append(tabStrings, tabStyle.Render(tab.name))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabStrings...)
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		Render(tabBar)
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("fitflow")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == model.ScreenCatalog || m.screen == model.ScreenWorkouts {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.PrevTab), key.Matches(msg, m.keys.NextTab):
			m.gState = GStateIdle
			if m.screen == model.ScreenCatalog {
				m.screen = model.ScreenWorkouts
			} else {
				m.screen = model.ScreenCatalog
			}
			return m, nil
		case key.Matches(msg, m.keys.Catalog):
			m.screen = model.ScreenCatalog
			return m, nil
		case key.Matches(msg, m.keys.Workouts):
			m.screen = model.ScreenWorkouts
			return m, nil
		}
	}

	switch m.screen {
	case model.ScreenCatalog:
		return m.handleCatalogNav(msg)
	case model.ScreenWorkouts:
		return m.handleWorkoutsNav(msg)
	case model.ScreenExerciseDetail:
		return m.handleDetailNav(msg)
	}
	return m, nil
}

func (m Model) handleCatalogNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.catalogView
	page := m.catalog.PageSlice()

	switch {
	case key.Matches(msg, m.keys.NextColumn):
		view.ToggleFocus()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = model.ModeInsert
		return m, view.StartSearch()

	case key.Matches(msg, m.keys.ClearSearch):
		filter := m.catalog.Filter()
		if filter.Query == "" {
			return m, nil
		}
		m.catalogPending++
		return m, tea.Batch(filterBodyPartCmd(m.catalog, filter.BodyPart), view.spinner.Tick)

	case key.Matches(msg, m.keys.PrevPage):
		if err := m.catalog.Paginate(m.catalog.Page() - 1); err != nil {
			m.info = "Already on the first page"
			return m, nil
		}
		view.applyScroll()
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.catalog.Page() >= m.catalog.PageCount() {
			m.info = "Already on the last page"
			return m, nil
		}
		if err := m.catalog.Paginate(m.catalog.Page() + 1); err == nil {
			view.applyScroll()
		}
		return m, nil
	}

	if view.focus == focusStrip {
		parts := m.catalog.BodyParts()
		switch {
		case key.Matches(msg, m.keys.Left):
			view.MovePart(-1, len(parts))
		case key.Matches(msg, m.keys.Right):
			view.MovePart(1, len(parts))
		case key.Matches(msg, m.keys.Select):
			if view.partCursor < len(parts) {
				view.focus = focusGrid
				m.catalogPending++
				return m, tea.Batch(filterBodyPartCmd(m.catalog, parts[view.partCursor]), view.spinner.Tick)
			}
		case key.Matches(msg, m.keys.Back):
			view.focus = focusGrid
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		view.MoveCard(-1, 0, len(page))
	case key.Matches(msg, m.keys.Right):
		view.MoveCard(1, 0, len(page))
	case key.Matches(msg, m.keys.Up):
		view.MoveCard(0, -1, len(page))
	case key.Matches(msg, m.keys.Down):
		view.MoveCard(0, 1, len(page))
	case key.Matches(msg, m.keys.Select):
		ex, ok := view.SelectedExercise(page)
		if !ok {
			return m, nil
		}
		m.detail = NewExerciseDetailModel(ex)
		m.screen = model.ScreenExerciseDetail
		m.info = ""
		return m, tea.Batch(loadMediaCmd(m.media, ex), m.detail.spinner.Tick)
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || msg.String() == "h" {
		m.screen = model.ScreenCatalog
		m.detail = nil
	}
	return m, nil
}

func (m Model) handleWorkoutsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.workouts.Snapshot()
	if snap.Hydrating || m.hydratePending {
		return m, nil
	}
	if snap.HydrationErr != nil {
		// Only the list is replaced; logging still works.
		switch {
		case key.Matches(msg, m.keys.Retry):
			m.hydratePending = true
			return m, tea.Batch(hydrateWorkoutsCmd(m.workouts), m.spinner.Tick)
		case key.Matches(msg, m.keys.Add):
			return m.openWorkoutForm()
		}
		return m, nil
	}

	// "gg" state machine
	if msg.String() == "g" {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			m.workoutsView.JumpToTop()
			return m, nil
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	view := m.workoutsView
	switch {
	case key.Matches(msg, m.keys.Add):
		return m.openWorkoutForm()
	case key.Matches(msg, m.keys.Down):
		view.MoveDown()
	case key.Matches(msg, m.keys.Up):
		view.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		view.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		view.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		view.HalfPageUp(m.height / 2)
	case key.Matches(msg, m.keys.NextColumn):
		view.NextColumn()
		m.persistTablePrefs(view)
	case key.Matches(msg, m.keys.PrevColumn):
		view.PrevColumn()
		m.persistTablePrefs(view)
	case key.Matches(msg, m.keys.SortAsc):
		view.SortActiveColumn(false)
		m.info = "Sorted ascending"
		m.persistTablePrefs(view)
	case key.Matches(msg, m.keys.SortDesc):
		view.SortActiveColumn(true)
		m.info = "Sorted descending"
		m.persistTablePrefs(view)
	case key.Matches(msg, m.keys.FilterValue):
		if view.FilterBySelectedValue() {
			m.info = "Filter applied from selected value"
		} else {
			m.info = "No filterable value in selected cell"
		}
	case key.Matches(msg, m.keys.ClearFilter):
		if view.ClearFilter() {
			m.info = "Filter cleared"
		}
	}
	return m, nil
}

func (m *Model) persistTablePrefs(t tableController) {
	m.prefs.Workouts = t.Prefs()
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("failed to save ui preferences", "error", err)
	}
}

// handleInsertMode handles insert mode input.
func (m Model) handleInsertMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenCatalog:
		return m.handleSearchInput(msg)
	case model.ScreenWorkoutForm:
		if m.form != nil {
			form, cmd := m.form.Update(msg)
			m.form = &form
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	view := m.catalogView
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			view.StopSearch()
			m.mode = model.ModeNav
			return m, nil
		case "enter":
			query := view.SearchValue()
			view.StopSearch()
			m.mode = model.ModeNav
			m.catalogPending++
			return m, tea.Batch(searchCmd(m.catalog, query), view.spinner.Tick)
		}
	}
	return m, view.UpdateSearch(msg)
}

// Commands

func (m Model) openWorkoutForm() (tea.Model, tea.Cmd) {
	if m.workouts.Status() == workout.Submitting {
		m.info = "A workout is still being logged"
		return m, nil
	}
	m.mode = model.ModeInsert
	m.screen = model.ScreenWorkoutForm
	m.form = NewWorkoutFormModel(m.workouts, m.formKeys)
	m.error = ""
	return m, nil
}

func hydrateWorkoutsCmd(p *workout.Pipeline) tea.Cmd {
	return func() tea.Msg {
		err := p.Hydrate(context.Background())
		return model.WorkoutsHydratedMsg{Err: err}
	}
}

// successExpiryCmd wakes the UI once the success state has expired so the
// banner is cleared.
func successExpiryCmd(p *workout.Pipeline) tea.Cmd {
	return tea.Tick(p.SuccessDisplay()+50*time.Millisecond, func(time.Time) tea.Msg {
		return model.WorkoutStatusMsg{}
	})
}
