package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/EnricoMenegatti/home-maintenance/internal/confirm"
	"github.com/EnricoMenegatti/home-maintenance/internal/odometer"
	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

var intervalTypes = []string{
	store.IntervalDays,
	store.IntervalWeeks,
	store.IntervalMonths,
	store.IntervalKilometers,
	store.IntervalMiles,
}

var taskCategories = []string{"home", "vehicle", "garden", "appliance", "other"}

type tasksModel struct {
	store   *store.Store
	reader  odometer.Reader
	machine *confirm.Machine
	width   int
	height  int

	rows   []taskRow
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "task", "edit_task"
	editingID  string

	// Form field pointers (survive value copies)
	formTitle          *string
	formIntervalValue  *string
	formIntervalType   *string
	formLastPerformed  *string
	formOdometerEntity *string
	formLastOdometer   *string
	formCategory       *string
	formItemName       *string
}

func newTasksModel(s *store.Store, reader odometer.Reader, machine *confirm.Machine) tasksModel {
	title, iv, it, lp := "", "", intervalTypes[0], ""
	oe, lo, cat, item := "", "", taskCategories[0], ""
	return tasksModel{
		store:              s,
		reader:             reader,
		machine:            machine,
		formTitle:          &title,
		formIntervalValue:  &iv,
		formIntervalType:   &it,
		formLastPerformed:  &lp,
		formOdometerEntity: &oe,
		formLastOdometer:   &lo,
		formCategory:       &cat,
		formItemName:       &item,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.store.GetAllTasks()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error loading tasks: %v", err), isError: true}
		}
		now := time.Now()
		results := computeResults(tasks, m.reader, now)

		rows := make([]taskRow, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, taskRow{task: t, due: results[t.ID]})
		}
		return tasksDataMsg{rows: rows}
	}
}

func (m tasksModel) dueCount() int {
	n := 0
	for _, r := range m.rows {
		if r.due.IsDue {
			n++
		}
	}
	return n
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Confirm):
			return m.pressConfirm()
		case key.Matches(msg, keys.New):
			return m.showNewTaskForm()
		case key.Matches(msg, keys.Edit):
			if len(m.rows) > 0 {
				return m.showEditTaskForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(m.rows) > 0 {
				id := m.rows[m.cursor].task.ID
				if err := m.store.DeleteTask(id); err != nil {
					return m, statusCmd(fmt.Sprintf("Error: %v", err), true)
				}
				return m, tea.Batch(m.refresh(), statusCmd("Task deleted", false))
			}
		}
	}
	return m, nil
}

// pressConfirm feeds one press into the confirmation machine for the
// selected task. The commit closure samples a fresh odometer reading for
// distance tasks and updates the store; it runs on the second press only.
func (m tasksModel) pressConfirm() (tasksModel, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	task := m.rows[m.cursor].task

	res, err := m.machine.Press(task.ID, func() error {
		var odo *float64
		if task.DistanceBased() {
			odo = odometer.Sample(m.reader, task)
		}
		return m.store.UpdateLastPerformed(task.ID, odo)
	})
	if err != nil {
		return m, statusCmd(fmt.Sprintf("Error completing %s: %v", task.Title, err), true)
	}

	switch res.Phase {
	case confirm.PendingFirstPress:
		secs := int(m.machine.Config().ConfirmationTimeout.Seconds())
		return m, statusCmd(fmt.Sprintf("Press c again within %ds to confirm %s", secs, task.Title), false)
	case confirm.RecentlyConfirmed:
		return m, tea.Batch(
			m.refresh(),
			statusCmd(fmt.Sprintf("%s marked done", task.Title), false),
		)
	}
	return m, nil
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formIntervalValue = ""
	*m.formIntervalType = intervalTypes[0]
	*m.formLastPerformed = ""
	*m.formOdometerEntity = ""
	*m.formLastOdometer = ""
	*m.formCategory = taskCategories[0]
	*m.formItemName = ""
	m.formType = "task"

	m.form = m.buildTaskForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showEditTaskForm() (tasksModel, tea.Cmd) {
	t := m.rows[m.cursor].task
	*m.formTitle = t.Title
	*m.formIntervalValue = strconv.Itoa(t.IntervalValue)
	*m.formIntervalType = t.IntervalType
	*m.formLastPerformed = formatDate(t.LastPerformed)
	*m.formOdometerEntity = t.OdometerEntity
	*m.formLastOdometer = ""
	if t.LastOdometer != nil {
		*m.formLastOdometer = strconv.FormatFloat(*t.LastOdometer, 'f', -1, 64)
	}
	*m.formCategory = t.Category
	if *m.formCategory == "" {
		*m.formCategory = taskCategories[len(taskCategories)-1]
	}
	*m.formItemName = t.ItemName
	m.formType = "edit_task"
	m.editingID = t.ID

	m.form = m.buildTaskForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) buildTaskForm() *huh.Form {
	typeOptions := make([]huh.Option[string], len(intervalTypes))
	for i, t := range intervalTypes {
		typeOptions[i] = huh.NewOption(t, t)
	}
	catOptions := make([]huh.Option[string], len(taskCategories))
	for i, c := range taskCategories {
		catOptions[i] = huh.NewOption(c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewInput().Title("Interval value").Value(m.formIntervalValue).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive number")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Interval type").Options(typeOptions...).Value(m.formIntervalType),
			huh.NewInput().Title("Last performed (YYYY-MM-DD, empty = today)").Value(m.formLastPerformed),
		),
		huh.NewGroup(
			huh.NewInput().Title("Odometer entity (distance tasks)").Value(m.formOdometerEntity),
			huh.NewInput().Title("Last odometer").Value(m.formLastOdometer).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(m.formCategory),
			huh.NewInput().Title("Item name").Value(m.formItemName),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if *m.formTitle == "" {
			return m, m.refresh()
		}
		return m.submitForm()
	}

	return m, cmd
}

func (m tasksModel) submitForm() (tasksModel, tea.Cmd) {
	intervalValue, _ := strconv.Atoi(strings.TrimSpace(*m.formIntervalValue))
	var lastOdometer *float64
	if s := strings.TrimSpace(*m.formLastOdometer); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			lastOdometer = &v
		}
	}

	switch m.formType {
	case "task":
		t := store.Task{
			Title:          *m.formTitle,
			IntervalValue:  intervalValue,
			IntervalType:   *m.formIntervalType,
			LastPerformed:  *m.formLastPerformed,
			LastOdometer:   lastOdometer,
			OdometerEntity: *m.formOdometerEntity,
			Category:       *m.formCategory,
			ItemName:       *m.formItemName,
		}
		if _, err := m.store.AddTask(t, nil); err != nil {
			return m, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return m, tea.Batch(m.refresh(), statusCmd("Task created", false))

	case "edit_task":
		u := store.TaskUpdate{
			Title:          m.formTitle,
			IntervalValue:  &intervalValue,
			IntervalType:   m.formIntervalType,
			LastPerformed:  m.formLastPerformed,
			OdometerEntity: m.formOdometerEntity,
			Category:       m.formCategory,
			ItemName:       m.formItemName,
		}
		if lastOdometer != nil {
			u.LastOdometer = lastOdometer
		}
		if err := m.store.UpdateTask(m.editingID, u); err != nil {
			return m, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return m, tea.Batch(m.refresh(), statusCmd("Task updated", false))
	}
	return m, m.refresh()
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isError: isError}
	}
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formType == "edit_task" {
			title = titleStyle.Render("Edit Task")
		}
		formView := m.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Maintenance Tasks")
	if n := m.dueCount(); n > 0 {
		title += "  " + errorStyle.Render(fmt.Sprintf("%d due", n))
	}

	if len(m.rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-2s %-26s %-14s %-12s %-12s", "", "Title", "Interval", "Next due", "Last"))
	rows = append(rows, header)

	for i, r := range m.rows {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		last := formatDate(r.task.LastPerformed)
		if r.task.DistanceBased() {
			last = formatOdometer(r.task.LastOdometer)
		}

		row := style.Render(fmt.Sprintf("%s%s %-26s %-14s %-12s %-12s",
			cursor,
			m.renderMarker(r),
			truncate(r.task.Title, 26),
			formatInterval(r.task.IntervalValue, r.task.IntervalType),
			formatNextDue(r.due.NextDue),
			last,
		))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  c: confirm done (twice)  n: new  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderMarker derives the row marker from the confirmation indicator,
// read fresh on every render, falling back to the due state.
func (m tasksModel) renderMarker(r taskRow) string {
	switch m.machine.State(r.task.ID).Indicator {
	case confirm.IndicatorPending:
		return warningStyle.Render("▲")
	case confirm.IndicatorConfirmed:
		return successStyle.Render("✔")
	}
	if r.due.IsDue {
		return errorStyle.Render("!")
	}
	return mutedStyle.Render("·")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
