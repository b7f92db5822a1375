package ui

import (
	"context"
	"strings"

	"fitflow/internal/errs"
	"fitflow/internal/model"
	"fitflow/internal/workout"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WorkoutFormModel represents the log-a-workout form.
type WorkoutFormModel struct {
	pipeline     *workout.Pipeline
	keys         FormKeyMap
	focusedField int
	inputs       []textinput.Model
	error        string
	submitting   bool
	spinner      spinner.Model
}

// NewWorkoutFormModel creates a new workout form.
func NewWorkoutFormModel(pipeline *workout.Pipeline, keys FormKeyMap) *WorkoutFormModel {
	inputs := make([]textinput.Model, 3)

	// Description
	inputs[0] = textinput.New()
	inputs[0].Placeholder = "e.g. ran 3 miles, 45 min yoga..."
	inputs[0].Focus()
	inputs[0].CharLimit = 200

	// Duration
	inputs[1] = textinput.New()
	inputs[1].Placeholder = "minutes (optional, estimated if blank)"
	inputs[1].CharLimit = 4

	// Notes
	inputs[2] = textinput.New()
	inputs[2].Placeholder = "How did it feel?"
	inputs[2].CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &WorkoutFormModel{
		pipeline: pipeline,
		keys:     keys,
		inputs:   inputs,
		spinner:  sp,
	}
}

// Update handles all messages.
func (m WorkoutFormModel) Update(msg tea.Msg) (WorkoutFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case model.WorkoutSubmittedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.error = errs.UserMessage(msg.Err)
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		if m.submitting {
			return m, nil
		}
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case key.Matches(keyMsg, m.keys.Save):
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.error = ""
		return m, tea.Batch(m.spinner.Tick, m.submit())
	case key.Matches(keyMsg, m.keys.NextField):
		m.nextField()
		return m, nil
	case key.Matches(keyMsg, m.keys.PrevField):
		m.prevField()
		return m, nil
	}

	if m.submitting {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(keyMsg)
	return m, cmd
}

func (m *WorkoutFormModel) submission() workout.Submission {
	return workout.Submission{
		Text:     m.inputs[0].Value(),
		Duration: m.inputs[1].Value(),
		Notes:    m.inputs[2].Value(),
	}
}

func (m *WorkoutFormModel) submit() tea.Cmd {
	pipeline := m.pipeline
	sub := m.submission()
	return func() tea.Msg {
		entry, err := pipeline.Submit(context.Background(), sub)
		return model.WorkoutSubmittedMsg{Entry: entry, Err: err}
	}
}

// View renders the form.
func (m *WorkoutFormModel) View(width, height int) string {
	var fields []string

	fields = append(fields, renderFormField("What did you do? *", m.inputs[0], m.focusedField == 0))
	fields = append(fields, renderFormField("Duration (minutes)", m.inputs[1], m.focusedField == 1))
	fields = append(fields, renderFormField("Notes", m.inputs[2], m.focusedField == 2))

	if m.submitting {
		fields = append(fields, "")
		fields = append(fields, HelpDescStyle.Render(m.spinner.View()+" Analyzing workout..."))
	} else if m.error != "" {
		fields = append(fields, "")
		fields = append(fields, ErrorStyle.Render(m.error))
	}

	return PanelStyle.
		Width(width - 4).
		Height(max(0, height-4)).
		Render(strings.Join(fields, "\n\n"))
}

func (m *WorkoutFormModel) nextField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField = (m.focusedField + 1) % len(m.inputs)
	m.inputs[m.focusedField].Focus()
}

func (m *WorkoutFormModel) prevField() {
	m.inputs[m.focusedField].Blur()
	m.focusedField--
	if m.focusedField < 0 {
		m.focusedField = len(m.inputs) - 1
	}
	m.inputs[m.focusedField].Focus()
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		input.View(),
	)

	return style.Render(field)
}
