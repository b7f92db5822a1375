package ui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"fitflow/internal/browse"
	"fitflow/internal/model"
	"fitflow/internal/util"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const gridColumns = 3

type catalogFocus int

const (
	focusGrid catalogFocus = iota
	focusStrip
)

// CatalogModel is the view state of the catalog screen. The data itself
// lives in the browse.Controller.
type CatalogModel struct {
	focus      catalogFocus
	partCursor int
	cursor     int

	search    textinput.Model
	searching bool
	spinner   spinner.Model
	pager     paginator.Model

	lastCount  int
	lastLabel  string
	hasResults bool

	scrollReq atomic.Int64
}

// NewCatalogModel creates the catalog view. Its Scroll method is meant to
// be passed to browse.New.
func NewCatalogModel() *CatalogModel {
	in := textinput.New()
	in.Placeholder = "Search by name, muscle, equipment or body part..."
	in.CharLimit = 80
	in.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pg := paginator.New()
	pg.Type = paginator.Arabic
	pg.PerPage = browse.PageSize
	pg.ArabicFormat = "page %d of %d"

	return &CatalogModel{
		search:  in,
		spinner: sp,
		pager:   pg,
	}
}

// Scroll records a request to move the view to the results grid. It is
// safe to call from any goroutine; the request is applied on the next
// update.
func (m *CatalogModel) Scroll(offset int) {
	m.scrollReq.Store(int64(offset) + 1)
}

func (m *CatalogModel) applyScroll() {
	if m.scrollReq.Swap(0) > 0 {
		m.cursor = 0
		m.focus = focusGrid
	}
}

// StartSearch focuses the search input.
func (m *CatalogModel) StartSearch() tea.Cmd {
	m.searching = true
	m.search.SetValue("")
	return m.search.Focus()
}

// StopSearch blurs the search input.
func (m *CatalogModel) StopSearch() {
	m.searching = false
	m.search.Blur()
}

func (m *CatalogModel) SearchValue() string {
	return m.search.Value()
}

func (m *CatalogModel) UpdateSearch(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *CatalogModel) ToggleFocus() {
	if m.focus == focusGrid {
		m.focus = focusStrip
	} else {
		m.focus = focusGrid
	}
}

// MovePart moves the body part highlight by delta, wrapping around.
func (m *CatalogModel) MovePart(delta, total int) {
	if total == 0 {
		return
	}
	m.partCursor = (m.partCursor + delta + total) % total
}

// MoveCard moves the card cursor within the current page.
func (m *CatalogModel) MoveCard(dx, dy, count int) {
	if count == 0 {
		m.cursor = 0
		return
	}
	next := m.cursor + dx + dy*gridColumns
	if next < 0 || next >= count {
		return
	}
	m.cursor = next
}

func (m *CatalogModel) clampCursor(count int) {
	if m.cursor >= count {
		m.cursor = max(0, count-1)
	}
}

// SelectedExercise returns the highlighted card on the current page.
func (m *CatalogModel) SelectedExercise(page []model.Exercise) (model.Exercise, bool) {
	if m.cursor < 0 || m.cursor >= len(page) {
		return model.Exercise{}, false
	}
	return page[m.cursor], true
}

func (m *CatalogModel) setResult(count int, label string) {
	m.lastCount = count
	m.lastLabel = label
	m.hasResults = true
}

// View renders the catalog screen.
func (m *CatalogModel) View(ctrl *browse.Controller, width, height int) string {
	parts := ctrl.BodyParts()
	filter := ctrl.Filter()
	page := ctrl.PageSlice()
	m.clampCursor(len(page))

	var sections []string
	sections = append(sections, m.renderStrip(parts, filter.BodyPart, width))

	if m.searching {
		sections = append(sections, BorderStyle.Width(width-4).Padding(0, 1).Render(m.search.View()))
	} else if filter.Query != "" {
		sections = append(sections, HelpDescStyle.Render(fmt.Sprintf("  search: %q  (x to clear)", filter.Query)))
	}

	switch {
	case ctrl.Loading():
		sections = append(sections, HelpDescStyle.Padding(1, 2).Render(m.spinner.View()+" Loading exercises..."))
	case m.hasResults:
		count := fmt.Sprintf("%s found for %s", util.Pluralize(m.lastCount, "exercise"), m.lastLabel)
		sections = append(sections, StatusBarStyle.Render(count))
	}

	if len(page) == 0 {
		msg := "No exercises found.\nTry a different search term or body part."
		if len(ctrl.Exercises()) > 0 {
			msg = "No exercises on this page.\nPress [ to go back."
		}
		sections = append(sections, EmptyStateStyle.Width(width).Render(msg))
	} else {
		sections = append(sections, m.renderGrid(page, width))
	}

	m.pager.SetTotalPages(len(ctrl.Exercises()))
	m.pager.Page = ctrl.Page() - 1
	sections = append(sections, StatusBarStyle.Render(m.pager.View()))

	return lipgloss.NewStyle().MaxHeight(height).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *CatalogModel) renderStrip(parts []string, active string, width int) string {
	if len(parts) == 0 {
		return HelpDescStyle.Padding(0, 1).Render("Loading body parts...")
	}

	var chips []string
	for i, p := range parts {
		style := ChipStyle
		switch {
		case p == active:
			style = ActiveChipStyle
		case m.focus == focusStrip && i == m.partCursor:
			style = FocusedChipStyle
		}
		chips = append(chips, style.Render(util.TitleCase(p)))
	}

	strip := lipgloss.NewStyle().Width(width - 2).Render(strings.Join(chips, " "))
	if m.focus == focusStrip {
		return ActiveBorderStyle.Padding(0, 1).Width(width - 2).Render(strip)
	}
	return BorderStyle.Padding(0, 1).Width(width - 2).Render(strip)
}

func (m *CatalogModel) renderGrid(page []model.Exercise, width int) string {
	cardWidth := max(20, (width-4)/gridColumns-2)

	var rows []string
	for start := 0; start < len(page); start += gridColumns {
		end := min(start+gridColumns, len(page))
		var cards []string
		for i := start; i < end; i++ {
			cards = append(cards, m.renderCard(page[i], cardWidth, m.focus == focusGrid && i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *CatalogModel) renderCard(ex model.Exercise, width int, selected bool) string {
	style := CardStyle
	if selected {
		style = SelectedCardStyle
	}

	inner := width - 4
	lines := []string{
		CardTitleStyle.Render(util.TruncateString(util.TitleCase(ex.Name), inner)),
		HelpDescStyle.Render(util.TruncateString("target: "+ex.Target, inner)),
		HelpDescStyle.Render(util.TruncateString("equipment: "+ex.Equipment, inner)),
		TagStyle.Render(util.TruncateString(ex.BodyPart, inner)),
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// Commands

func loadBodyPartsCmd(ctrl *browse.Controller) tea.Cmd {
	return func() tea.Msg {
		parts, err := ctrl.LoadBodyParts(context.Background())
		return model.BodyPartsLoadedMsg{BodyParts: parts, Err: err}
	}
}

func filterBodyPartCmd(ctrl *browse.Controller, tag string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.SetBodyPartFilter(context.Background(), tag)
		return model.CatalogLoadedMsg{BodyPart: tag, Err: err}
	}
}

func searchCmd(ctrl *browse.Controller, query string) tea.Cmd {
	return func() tea.Msg {
		count, err := ctrl.Search(context.Background(), query)
		return model.SearchCompletedMsg{Query: query, Count: count, Err: err}
	}
}
