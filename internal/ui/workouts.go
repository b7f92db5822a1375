package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fitflow/internal/model"
	"fitflow/internal/util"

	"github.com/charmbracelet/lipgloss"
)

type workoutColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// WorkoutsModel represents the workout log screen.
type WorkoutsModel struct {
	allRows []model.PersistedLogEntry
	rows    []model.PersistedLogEntry
	cursor  int
	offset  int

	columns      []workoutColumn
	activeColumn int
	sortKey      string
	sortDesc     bool
	filterKey    string
	filterValue  string
}

// NewWorkoutsModel creates a new workout log model.
func NewWorkoutsModel() *WorkoutsModel {
	return &WorkoutsModel{
		columns: []workoutColumn{
			{key: "date", label: "date", width: 12},
			{key: "exercise", label: "exercise", width: 24},
			{key: "duration", label: "duration", width: 12},
			{key: "calories", label: "calories", width: 12},
			{key: "notes", label: "notes", width: 28},
		},
	}
}

// SetEntries replaces the rows, keeping sort and filter settings.
func (m *WorkoutsModel) SetEntries(entries []model.PersistedLogEntry) {
	m.allRows = append([]model.PersistedLogEntry(nil), entries...)
	m.rebuild()
}

func (m *WorkoutsModel) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
	m.rebuild()
}

func (m *WorkoutsModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		SortKey:       m.sortKey,
		SortDesc:      m.sortDesc,
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

func (m *WorkoutsModel) rebuild() {
	rows := append([]model.PersistedLogEntry(nil), m.allRows...)

	if m.filterKey != "" && m.filterValue != "" {
		filtered := make([]model.PersistedLogEntry, 0, len(rows))
		target := strings.ToLower(strings.TrimSpace(m.filterValue))
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(m.getValue(r, m.filterKey)), target) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			left := strings.ToLower(m.getValue(rows[i], m.sortKey))
			right := strings.ToLower(m.getValue(rows[j], m.sortKey))
			if left == right {
				return rows[i].ID < rows[j].ID
			}
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}

	m.rows = rows
	m.clampCursor()
}

func (m *WorkoutsModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// getValue returns a sortable string for the column. Numbers are zero
// padded so they sort as strings.
func (m *WorkoutsModel) getValue(row model.PersistedLogEntry, key string) string {
	switch key {
	case "date":
		return row.Date
	case "exercise":
		return row.Exercise
	case "duration":
		return fmt.Sprintf("%06d", row.Duration)
	case "calories":
		return fmt.Sprintf("%010.2f", row.Calories)
	case "notes":
		return row.Notes
	default:
		return ""
	}
}

func (m *WorkoutsModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *WorkoutsModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *WorkoutsModel) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

func (m *WorkoutsModel) FilterBySelectedValue() bool {
	if len(m.rows) == 0 {
		return false
	}
	key := m.columns[m.activeColumn].key
	value := strings.TrimSpace(m.getValue(m.rows[m.cursor], key))
	if value == "" {
		return false
	}
	m.filterKey = key
	m.filterValue = value
	m.rebuild()
	return true
}

func (m *WorkoutsModel) ClearFilter() bool {
	if m.filterKey == "" {
		return false
	}
	m.filterKey = ""
	m.filterValue = ""
	m.rebuild()
	return true
}

func (m *WorkoutsModel) TableMeta() string {
	col := strings.ToUpper(m.columns[m.activeColumn].label)
	parts := []string{fmt.Sprintf("col %s", col)}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filter %s=%q", strings.ToUpper(m.filterKey), m.displayFilterValue()))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *WorkoutsModel) displayFilterValue() string {
	switch m.filterKey {
	case "duration", "calories":
		if v, err := strconv.ParseFloat(m.filterValue, 64); err == nil {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return m.filterValue
}

// TotalCalories sums the calories of the visible rows.
func (m *WorkoutsModel) TotalCalories() float64 {
	var total float64
	for _, r := range m.rows {
		total += r.Calories
	}
	return total
}

func (m *WorkoutsModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *WorkoutsModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

// View renders the workout log.
func (m *WorkoutsModel) View(width, height int) string {
	if len(m.allRows) == 0 {
		emptyMsg := `    No workouts logged yet.
    Press  a  to describe your first one.`
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(emptyMsg)
	}

	visible := m.visibleColumnIndexes()

	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := strings.ToUpper(col.label)
		if idx == m.activeColumn {
			label = "❋ " + label
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}

	if len(widths) > 0 {
		extra := width - totalFixed - 4
		if extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)

	visibleHeight := height - 3
	var rows []string

	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i%2 == 1 {
			style = style.Background(lipgloss.Color("#212631"))
		}
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			col := m.columns[idx]
			switch col.key {
			case "date":
				cells = append(cells, util.FormatDateHuman(row.Date))
			case "exercise":
				cells = append(cells, util.TruncateString(util.TitleCase(row.Exercise), col.width-2))
			case "duration":
				cells = append(cells, util.FormatDuration(row.Duration))
			case "calories":
				kcal := util.FormatCalories(row.Calories)
				if row.Calories > 0 && i != m.cursor {
					kcal = lipgloss.NewStyle().Foreground(ColorYellow).Render(kcal)
				}
				cells = append(cells, kcal)
			case "notes":
				cells = append(cells, util.TruncateString(row.Notes, widths[len(cells)]-2))
			}
		}

		rows = append(rows, renderTableRow(cells, widths, style))
	}

	filterInfo := ""
	if m.filterKey != "" {
		filterInfo = fmt.Sprintf("  ·  filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	status := StatusBarStyle.Render(fmt.Sprintf("Total workouts: %d  ·  %s burned%s  ·  %s",
		len(m.rows), util.FormatCalories(m.TotalCalories()), filterInfo, m.TableMeta()))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		strings.Join(rows, "\n"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		"",
		status,
	)
}

// MoveDown moves the cursor down.
func (m *WorkoutsModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		if m.cursor >= m.offset+10 {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *WorkoutsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

func (m *WorkoutsModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

func (m *WorkoutsModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		if m.cursor >= 10 {
			m.offset = m.cursor - 9
		}
	}
}

// HalfPageDown moves down half a page.
func (m *WorkoutsModel) HalfPageDown(pageSize int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(m.cursor+pageSize/2, len(m.rows)-1)
	if m.cursor >= m.offset+10 {
		m.offset = m.cursor - 9
	}
}

// HalfPageUp moves up half a page.
func (m *WorkoutsModel) HalfPageUp(pageSize int) {
	m.cursor = max(m.cursor-pageSize/2, 0)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
