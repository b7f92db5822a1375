package ui

import (
	"strings"

	"fitflow/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders the context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, keys KeyMap, formKeys FormKeyMap, width int) string {
	if mode == model.ModeInsert {
		if screen == model.ScreenCatalog {
			return renderHelpLine([]string{helpKey("enter", "search"), helpKey("esc", "cancel")}, width)
		}
		return renderHelpLine(bindingHelp(formKeys.NextField, formKeys.PrevField, formKeys.Save, formKeys.Cancel), width)
	}

	switch screen {
	case model.ScreenCatalog:
		items := append([]string{helpKey("h/j/k/l", "move"), helpKey("tab", "body parts")},
			bindingHelp(keys.Select, keys.Search, keys.PrevPage, keys.NextPage, keys.Workouts, keys.Help)...)
		return renderHelpLine(items, width)
	case model.ScreenWorkouts:
		items := append([]string{helpKey("j/k", "navigate")},
			bindingHelp(keys.Add, keys.NextColumn, keys.SortAsc, keys.FilterValue, keys.Catalog, keys.Help)...)
		return renderHelpLine(items, width)
	case model.ScreenExerciseDetail:
		return renderHelpLine([]string{helpKey("h/esc", "back")}, width)
	default:
		return renderHelpLine(bindingHelp(keys.Quit, keys.Help), width)
	}
}

func bindingHelp(bindings ...key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, helpKey(h.Key, h.Desc))
	}
	return out
}

func helpKey(k, desc string) string {
	return HelpKeyStyle.Render(k) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"← / →", "Switch tab"},
			{"c / w", "Go to catalog / workout log"},
			{"esc / b", "Back / cancel"},
			{"q", "Quit (from a tab)"},
			{"?", "Toggle help"},
		}),
		titleSection("Catalog"),
		helpSection([]helpItem{
			{"tab", "Toggle body part strip / card grid"},
			{"h / l", "Move between body parts or cards"},
			{"j / k", "Move between card rows"},
			{"enter", "Apply body part / open exercise"},
			{"/", "Search name, muscle, equipment, body part"},
			{"x", "Clear search"},
			{"[ / ] or p / n", "Previous / next page"},
		}),
		titleSection("Workout Log"),
		helpSection([]helpItem{
			{"a", "Log a workout in plain words"},
			{"j / k", "Move down / up"},
			{"gg / G", "Jump to top / bottom"},
			{"ctrl+d / ctrl+u", "Half page down / up"},
			{"tab / shift+tab", "Cycle active column"},
			{"s / S", "Sort active column asc/desc"},
			{"f / F", "Filter by selected value / clear"},
			{"r", "Retry loading the log after a failure"},
		}),
		titleSection("Workout Form"),
		helpSection([]helpItem{
			{"tab", "Next field"},
			{"shift+tab", "Previous field"},
			{"ctrl+s", "Log workout"},
			{"esc", "Cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
