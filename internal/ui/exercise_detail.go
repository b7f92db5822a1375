package ui

import (
	"fmt"
	"strings"

	"fitflow/internal/model"
	"fitflow/internal/util"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// ExerciseDetailModel represents the exercise detail screen.
type ExerciseDetailModel struct {
	exercise model.Exercise
	preview  string
	loading  bool
	mediaErr error
	spinner  spinner.Model
}

// NewExerciseDetailModel creates a new exercise detail model.
func NewExerciseDetailModel(ex model.Exercise) *ExerciseDetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &ExerciseDetailModel{
		exercise: ex,
		loading:  ex.GifURL != "",
		spinner:  sp,
	}
}

// SetMedia stores the rendered preview if it belongs to this exercise.
func (m *ExerciseDetailModel) SetMedia(msg model.MediaLoadedMsg) {
	if msg.ExerciseID != m.exercise.ID {
		return
	}
	m.loading = false
	m.preview = msg.ASCII
	m.mediaErr = msg.Err
}

// View renders the exercise detail.
func (m *ExerciseDetailModel) View(width, height int) string {
	ex := m.exercise

	shortcuts := HelpDescStyle.Render("h/esc back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var fields []string
	fields = append(fields, renderField("Name", util.TitleCase(ex.Name)))
	fields = append(fields, renderField("Body Part", util.TitleCase(ex.BodyPart)))
	fields = append(fields, renderField("Target", ex.Target))
	fields = append(fields, renderField("Equipment", ex.Equipment))
	if len(ex.Details.SecondaryMuscles) > 0 {
		fields = append(fields, renderField("Also Works", strings.Join(ex.Details.SecondaryMuscles, ", ")))
	}

	var sections []string
	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	if len(ex.Details.Instructions) > 0 {
		sections = append(sections, LabelStyle.Render("Instructions:"))
		var steps []string
		for i, step := range ex.Details.Instructions {
			steps = append(steps, fmt.Sprintf("%d. %s", i+1, step))
		}
		sections = append(sections, NormalRowStyle.Width(max(20, width/2-8)).Render(strings.Join(steps, "\n")))
	} else {
		sections = append(sections, HelpDescStyle.Render("No instructions for this exercise"))
	}

	info := strings.Join(sections, "\n\n")

	var media string
	switch {
	case m.loading:
		media = HelpDescStyle.Render(m.spinner.View() + " Loading preview...")
	case m.mediaErr != nil:
		media = HelpDescStyle.Render("Preview unavailable")
	case m.preview != "":
		media = m.preview
	}

	body := info
	if media != "" && width >= 100 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(width/2).Render(info), "  ", media)
	} else if media != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, info, "", media)
	}

	content := PanelStyle.
		Width(width - 4).
		MaxHeight(max(0, height-1)).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
