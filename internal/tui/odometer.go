package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

type odometerModel struct {
	store  *store.Store
	width  int
	height int

	readings []store.OdometerReading
	cursor   int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formEntity *string
	formValue  *string
}

func newOdometerModel(s *store.Store) odometerModel {
	entity, value := "", ""
	return odometerModel{
		store:      s,
		formEntity: &entity,
		formValue:  &value,
	}
}

func (o *odometerModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

func (o odometerModel) refresh() tea.Cmd {
	return func() tea.Msg {
		readings, _ := o.store.ListLatestReadings()
		return odometerDataMsg{readings: readings}
	}
}

func (o odometerModel) update(msg tea.Msg) (odometerModel, tea.Cmd) {
	if o.formActive && o.form != nil {
		return o.updateForm(msg)
	}

	switch msg := msg.(type) {
	case odometerDataMsg:
		o.readings = msg.readings
		if o.cursor >= len(o.readings) {
			o.cursor = max(0, len(o.readings)-1)
		}
		return o, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if o.cursor > 0 {
				o.cursor--
			}
		case key.Matches(msg, keys.Down):
			if o.cursor < len(o.readings)-1 {
				o.cursor++
			}
		case key.Matches(msg, keys.New):
			return o.showRecordForm("")
		case key.Matches(msg, keys.Enter):
			// Record a fresh reading for the selected entity.
			if len(o.readings) > 0 {
				return o.showRecordForm(o.readings[o.cursor].Entity)
			}
		}
	}
	return o, nil
}

func (o odometerModel) showRecordForm(entity string) (odometerModel, tea.Cmd) {
	*o.formEntity = entity
	*o.formValue = ""

	o.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Sensor entity").Value(o.formEntity),
			huh.NewInput().Title("Reading").Value(o.formValue).
				Validate(func(s string) error {
					if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	o.formActive = true
	return o, o.form.Init()
}

func (o odometerModel) updateForm(msg tea.Msg) (odometerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			o.formActive = false
			o.form = nil
			return o, nil
		}
	}

	form, cmd := o.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		o.form = f
	}

	if o.form.State == huh.StateCompleted {
		o.formActive = false
		entity := strings.TrimSpace(*o.formEntity)
		value, err := strconv.ParseFloat(strings.TrimSpace(*o.formValue), 64)
		if entity == "" || err != nil {
			return o, o.refresh()
		}
		if _, err := o.store.RecordReading(entity, value); err != nil {
			return o, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return o, tea.Batch(o.refresh(), statusCmd(fmt.Sprintf("Recorded %s = %.0f", entity, value), false))
	}

	return o, cmd
}

func (o odometerModel) view() string {
	w := o.width - 4

	if o.formActive && o.form != nil {
		title := titleStyle.Render("Record Reading")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", o.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Odometer Readings")

	if len(o.readings) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No readings yet. Press n to record one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %12s %-12s", "", "Entity", "Reading", "Recorded")))

	for i, r := range o.readings {
		cursor := "  "
		style := normalItemStyle
		if i == o.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s● %-28s %12.0f %-12s",
			cursor, truncate(r.Entity, 28), r.Value, r.RecordedAt.Local().Format("2006-01-02"),
		)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new reading  enter: update selected"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
