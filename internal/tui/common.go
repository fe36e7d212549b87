package tui

import (
	"fmt"
	"time"

	"github.com/EnricoMenegatti/home-maintenance/internal/due"
	"github.com/EnricoMenegatti/home-maintenance/internal/odometer"
	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewHistory
	viewOdometer
)

var viewNames = []string{"Tasks", "History", "Odometer"}

// --- Messages ---

// taskRow pairs a task with its computed due state for display.
type taskRow struct {
	task store.Task
	due  due.Result
}

type tasksDataMsg struct {
	rows []taskRow
}

type historyDataMsg struct {
	months []store.MonthlyCompletions
	recent []store.Completion
	titles map[string]string
}

type odometerDataMsg struct {
	readings []store.OdometerReading
}

type statusMsg struct {
	text    string
	isError bool
}

// refreshMsg is delivered when the confirmation machine requests a display
// refresh for one task, e.g. after a timer expiry.
type refreshMsg struct {
	taskID string
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// computeResults runs the due engine over a task snapshot, sampling the
// odometer per task.
func computeResults(tasks []store.Task, reader odometer.Reader, now time.Time) map[string]due.Result {
	results := make(map[string]due.Result, len(tasks))
	for _, t := range tasks {
		results[t.ID] = due.Compute(t, now, odometer.Sample(reader, t))
	}
	return results
}

// formatDate trims a stored midnight timestamp down to its date part.
func formatDate(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format("2006-01-02")
	}
	return iso
}

// formatNextDue shortens the engine's next-due value for list rows.
func formatNextDue(nextDue string) string {
	if t, err := time.Parse(time.RFC3339, nextDue); err == nil {
		return t.Format("2006-01-02")
	}
	return nextDue
}

func formatOdometer(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *v)
}

func formatInterval(value int, intervalType string) string {
	return fmt.Sprintf("%d %s", value, intervalType)
}
