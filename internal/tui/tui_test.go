package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/EnricoMenegatti/home-maintenance/internal/confirm"
	"github.com/EnricoMenegatti/home-maintenance/internal/due"
	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeReader serves canned odometer values.
type fakeReader map[string]float64

func (r fakeReader) Read(entity string) (float64, bool) {
	v, ok := r[entity]
	return v, ok
}

func addTask(t *testing.T, s *store.Store, task store.Task) string {
	t.Helper()
	id, err := s.AddTask(task, nil)
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	return id
}

// ============================================================
// Due computation over a task snapshot
// ============================================================

func TestComputeResults(t *testing.T) {
	odo := 40000.0
	tasks := []store.Task{
		{
			ID:            "t1",
			IntervalValue: 7,
			IntervalType:  store.IntervalDays,
			LastPerformed: "2020-01-01",
		},
		{
			ID:             "t2",
			IntervalValue:  5000,
			IntervalType:   store.IntervalKilometers,
			LastOdometer:   &odo,
			OdometerEntity: "sensor.car_odometer",
		},
	}
	reader := fakeReader{"sensor.car_odometer": 46000}

	results := computeResults(tasks, reader, time.Now())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results["t1"].IsDue {
		t.Fatal("ancient calendar task should be due")
	}
	if !results["t2"].IsDue {
		t.Fatal("odometer past threshold should be due")
	}
}

func TestComputeResultsUnavailableSensor(t *testing.T) {
	odo := 40000.0
	tasks := []store.Task{{
		ID:             "t1",
		IntervalValue:  5000,
		IntervalType:   store.IntervalKilometers,
		LastOdometer:   &odo,
		OdometerEntity: "sensor.gone",
	}}

	results := computeResults(tasks, fakeReader{}, time.Now())
	if results["t1"].IsDue {
		t.Fatal("unavailable sensor must not mark due")
	}
	if results["t1"].NextDue != due.NextDueNoOdometer {
		t.Fatalf("NextDue = %q", results["t1"].NextDue)
	}
}

// ============================================================
// Tasks model
// ============================================================

func newTestTasksModel(t *testing.T) (tasksModel, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	machine := confirm.New(confirm.DefaultConfig(), nil)
	m := newTasksModel(s, fakeReader{}, machine)
	m.setSize(100, 30)
	return m, s
}

func loadRows(t *testing.T, m tasksModel) tasksModel {
	t.Helper()
	msg := m.refresh()()
	data, ok := msg.(tasksDataMsg)
	if !ok {
		t.Fatalf("refresh returned %T", msg)
	}
	m, _ = m.update(data)
	return m
}

func TestTasksRefresh(t *testing.T) {
	m, s := newTestTasksModel(t)
	addTask(t, s, store.Task{Title: "Clean gutters", IntervalValue: 6, IntervalType: store.IntervalMonths})
	addTask(t, s, store.Task{Title: "Water plants", IntervalValue: 3, IntervalType: store.IntervalDays})

	m = loadRows(t, m)
	if len(m.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.rows))
	}
	if m.rows[0].task.Title != "Clean gutters" {
		t.Fatalf("rows not sorted: %q", m.rows[0].task.Title)
	}
}

func TestTasksCursorClamped(t *testing.T) {
	m, s := newTestTasksModel(t)
	addTask(t, s, store.Task{Title: "Only one", IntervalValue: 1, IntervalType: store.IntervalDays})

	m.cursor = 5
	m = loadRows(t, m)
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want clamped to 0", m.cursor)
	}
}

func TestDueCount(t *testing.T) {
	m, s := newTestTasksModel(t)
	addTask(t, s, store.Task{Title: "Overdue", IntervalValue: 7, IntervalType: store.IntervalDays, LastPerformed: "2020-01-01"})
	addTask(t, s, store.Task{Title: "Fresh", IntervalValue: 365, IntervalType: store.IntervalDays})

	m = loadRows(t, m)
	if n := m.dueCount(); n != 1 {
		t.Fatalf("dueCount = %d, want 1", n)
	}
}

func TestDoublePressMarksDone(t *testing.T) {
	m, s := newTestTasksModel(t)
	id := addTask(t, s, store.Task{Title: "Water plants", IntervalValue: 3, IntervalType: store.IntervalDays, LastPerformed: "2020-01-01"})
	m = loadRows(t, m)

	// First press arms the confirmation
	m, _ = m.pressConfirm()
	if res := m.machine.State(id); res.Phase != confirm.PendingFirstPress {
		t.Fatalf("phase = %v after first press", res.Phase)
	}

	// Completion log untouched so far
	if completions, _ := s.ListCompletions(id, 0); len(completions) != 0 {
		t.Fatal("first press must not commit")
	}

	// Second press commits
	m, _ = m.pressConfirm()
	if res := m.machine.State(id); res.Phase != confirm.RecentlyConfirmed {
		t.Fatalf("phase = %v after second press", res.Phase)
	}

	task, _ := s.GetTask(id)
	want := time.Date(time.Now().Year(), time.Now().Month(), time.Now().Day(), 0, 0, 0, 0, time.Local).Format(time.RFC3339)
	if task.LastPerformed != want {
		t.Fatalf("last performed = %q, want today", task.LastPerformed)
	}
	if completions, _ := s.ListCompletions(id, 0); len(completions) != 1 {
		t.Fatal("completion not logged")
	}
}

func TestDoublePressDistanceTaskCapturesOdometer(t *testing.T) {
	s := newTestStore(t)
	machine := confirm.New(confirm.DefaultConfig(), nil)
	m := newTasksModel(s, fakeReader{"sensor.car_odometer": 46000}, machine)
	m.setSize(100, 30)

	baseline := 40000.0
	id := addTask(t, s, store.Task{
		Title:          "Oil change",
		IntervalValue:  5000,
		IntervalType:   store.IntervalKilometers,
		LastOdometer:   &baseline,
		OdometerEntity: "sensor.car_odometer",
	})
	m = loadRows(t, m)

	m, _ = m.pressConfirm()
	m, _ = m.pressConfirm()

	task, _ := s.GetTask(id)
	if task.LastOdometer == nil || *task.LastOdometer != 46000 {
		t.Fatalf("baseline not advanced: %v", task.LastOdometer)
	}
}

func TestPressConfirmEmptyList(t *testing.T) {
	m, _ := newTestTasksModel(t)
	_, cmd := m.pressConfirm()
	if cmd != nil {
		t.Fatal("press on empty list should be a no-op")
	}
}

func TestTasksViewMarkers(t *testing.T) {
	m, s := newTestTasksModel(t)
	addTask(t, s, store.Task{Title: "Overdue thing", IntervalValue: 7, IntervalType: store.IntervalDays, LastPerformed: "2020-01-01"})
	m = loadRows(t, m)

	view := m.view()
	if !strings.Contains(view, "!") {
		t.Fatal("due marker missing from view")
	}

	m, _ = m.pressConfirm()
	view = m.view()
	if !strings.Contains(view, "▲") {
		t.Fatal("pending marker missing after first press")
	}

	m, _ = m.pressConfirm()
	view = m.view()
	if !strings.Contains(view, "✔") {
		t.Fatal("confirmed marker missing after second press")
	}
}

// ============================================================
// History model
// ============================================================

func TestHistoryRange(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	from, to := historyRange(now)

	if !to.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("to = %v", to)
	}
	if !from.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", from)
	}
}

func TestHistoryRefresh(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.AddTask(store.Task{Title: "Logged task", IntervalValue: 1, IntervalType: store.IntervalDays}, nil)
	s.UpdateLastPerformed(id, nil)

	h := newHistoryModel(s)
	h.setSize(100, 30)

	msg := h.refresh()()
	data, ok := msg.(historyDataMsg)
	if !ok {
		t.Fatalf("refresh returned %T", msg)
	}
	if len(data.recent) != 1 {
		t.Fatalf("recent = %d, want 1", len(data.recent))
	}
	if data.titles[id] != "Logged task" {
		t.Fatalf("titles = %v", data.titles)
	}

	h, _ = h.update(data)
	view := h.view()
	if !strings.Contains(view, "Logged task") {
		t.Fatal("recent completion missing from view")
	}
}

// ============================================================
// Odometer model
// ============================================================

func TestOdometerRefresh(t *testing.T) {
	s := newTestStore(t)
	s.RecordReading("sensor.car_odometer", 42500)

	o := newOdometerModel(s)
	o.setSize(100, 30)

	msg := o.refresh()()
	data, ok := msg.(odometerDataMsg)
	if !ok {
		t.Fatalf("refresh returned %T", msg)
	}
	if len(data.readings) != 1 || data.readings[0].Value != 42500 {
		t.Fatalf("readings = %+v", data.readings)
	}

	o, _ = o.update(data)
	view := o.view()
	if !strings.Contains(view, "sensor.car_odometer") {
		t.Fatal("entity missing from view")
	}
}

func TestOdometerCursorClamped(t *testing.T) {
	s := newTestStore(t)
	o := newOdometerModel(s)
	o.cursor = 3
	o, _ = o.update(odometerDataMsg{readings: nil})
	if o.cursor != 0 {
		t.Fatalf("cursor = %d", o.cursor)
	}
}

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatDate(t *testing.T) {
	iso := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local).Format(time.RFC3339)
	if got := formatDate(iso); got != "2025-03-01" {
		t.Fatalf("formatDate = %q", got)
	}
	// Non-dates pass through untouched
	if got := formatDate("unknown"); got != "unknown" {
		t.Fatalf("formatDate = %q", got)
	}
}

func TestFormatNextDue(t *testing.T) {
	iso := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local).Format(time.RFC3339)
	if got := formatNextDue(iso); got != "2025-06-01" {
		t.Fatalf("formatNextDue = %q", got)
	}
	if got := formatNextDue("47000 kilometers"); got != "47000 kilometers" {
		t.Fatalf("formatNextDue = %q", got)
	}
	if got := formatNextDue(due.NextDueNoOdometer); got != due.NextDueNoOdometer {
		t.Fatalf("formatNextDue = %q", got)
	}
}

func TestFormatOdometer(t *testing.T) {
	v := 42000.0
	if got := formatOdometer(&v); got != "42000" {
		t.Fatalf("formatOdometer = %q", got)
	}
	if got := formatOdometer(nil); got != "-" {
		t.Fatalf("formatOdometer = %q", got)
	}
}

func TestFormatInterval(t *testing.T) {
	if got := formatInterval(3, store.IntervalMonths); got != "3 months" {
		t.Fatalf("formatInterval = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a very long task title", 10); got != "a very lo…" {
		t.Fatalf("truncate = %q", got)
	}
}
