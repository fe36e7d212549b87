package due

import (
	"testing"
	"time"

	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

func calendarTask(lastPerformed string, value int, intervalType string) store.Task {
	return store.Task{
		ID:            "home_maintenance_test",
		Title:         "test",
		IntervalValue: value,
		IntervalType:  intervalType,
		LastPerformed: lastPerformed,
	}
}

func distanceTask(lastOdometer *float64, value int, intervalType string) store.Task {
	return store.Task{
		ID:             "home_maintenance_test",
		Title:          "test",
		IntervalValue:  value,
		IntervalType:   intervalType,
		LastOdometer:   lastOdometer,
		OdometerEntity: "sensor.car_odometer",
	}
}

func ptr(v float64) *float64 { return &v }

func localDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// ============================================================
// Calendar intervals
// ============================================================

func TestCalendarDays(t *testing.T) {
	task := calendarTask("2025-03-01", 7, store.IntervalDays)

	// One day early: not due
	r := Compute(task, localDate(2025, 3, 7), nil)
	if r.IsDue {
		t.Fatal("should not be due on day 6")
	}

	// Exactly on the due date: due
	r = Compute(task, localDate(2025, 3, 8), nil)
	if !r.IsDue {
		t.Fatal("should be due on day 7")
	}
	want := localDate(2025, 3, 8).Format(time.RFC3339)
	if r.NextDue != want {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, want)
	}

	// Overdue stays due
	r = Compute(task, localDate(2025, 4, 1), nil)
	if !r.IsDue {
		t.Fatal("overdue task should stay due")
	}
}

func TestCalendarWeeks(t *testing.T) {
	task := calendarTask("2025-03-01", 2, store.IntervalWeeks)
	r := Compute(task, localDate(2025, 3, 14), nil)
	if r.IsDue {
		t.Fatal("13 days in, 2-week task should not be due")
	}
	r = Compute(task, localDate(2025, 3, 15), nil)
	if !r.IsDue {
		t.Fatal("14 days in, 2-week task should be due")
	}
}

func TestCalendarMonths(t *testing.T) {
	task := calendarTask("2025-01-15", 3, store.IntervalMonths)
	r := Compute(task, localDate(2025, 4, 14), nil)
	if r.IsDue {
		t.Fatal("should not be due one day early")
	}
	r = Compute(task, localDate(2025, 4, 15), nil)
	if !r.IsDue {
		t.Fatal("should be due after 3 months")
	}
}

func TestMonthEndClamping(t *testing.T) {
	// Jan 31 + 1 month must land on the last day of February, never
	// roll into March.
	task := calendarTask("2024-01-31", 1, store.IntervalMonths)
	r := Compute(task, localDate(2024, 2, 1), nil)
	want := localDate(2024, 2, 29).Format(time.RFC3339) // 2024 is a leap year
	if r.NextDue != want {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, want)
	}

	task = calendarTask("2023-01-31", 1, store.IntervalMonths)
	r = Compute(task, localDate(2023, 2, 1), nil)
	want = localDate(2023, 2, 28).Format(time.RFC3339)
	if r.NextDue != want {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, want)
	}
}

func TestMonthClampAcrossYear(t *testing.T) {
	task := calendarTask("2024-10-31", 4, store.IntervalMonths)
	r := Compute(task, localDate(2025, 1, 1), nil)
	want := localDate(2025, 2, 28).Format(time.RFC3339)
	if r.NextDue != want {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, want)
	}
}

func TestCalendarIgnoresTimeOfDay(t *testing.T) {
	// A timestamped last_performed and an afternoon "now" both truncate
	// to midnight before comparison.
	task := calendarTask(
		time.Date(2025, 3, 1, 18, 45, 0, 0, time.Local).Format(time.RFC3339),
		7, store.IntervalDays,
	)
	now := time.Date(2025, 3, 8, 6, 0, 0, 0, time.Local)
	r := Compute(task, now, nil)
	if !r.IsDue {
		t.Fatal("due decision should not depend on time of day")
	}
}

func TestUnparsableDateFailsOpen(t *testing.T) {
	task := calendarTask("garbage", 7, store.IntervalDays)
	r := Compute(task, localDate(2025, 3, 1), nil)
	if !r.IsDue {
		t.Fatal("unreadable date should mark the task due")
	}
	if r.NextDue != NextDueUnknown {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, NextDueUnknown)
	}
}

func TestEmptyDateFailsOpen(t *testing.T) {
	task := calendarTask("", 7, store.IntervalDays)
	r := Compute(task, localDate(2025, 3, 1), nil)
	if !r.IsDue || r.NextDue != NextDueUnknown {
		t.Fatalf("empty date: IsDue=%v NextDue=%q", r.IsDue, r.NextDue)
	}
}

func TestUnknownIntervalTypePassesThrough(t *testing.T) {
	task := calendarTask("2025-03-01", 7, "fortnights")
	r := Compute(task, localDate(2025, 6, 1), nil)
	if r.IsDue {
		t.Fatal("unknown interval type should never be due")
	}
	if r.NextDue != "2025-03-01" {
		t.Fatalf("NextDue = %q, want last_performed passthrough", r.NextDue)
	}
}

// ============================================================
// Odometer intervals
// ============================================================

func TestDistanceNotDue(t *testing.T) {
	task := distanceTask(ptr(40000), 5000, store.IntervalKilometers)
	r := Compute(task, time.Now(), ptr(44999))
	if r.IsDue {
		t.Fatal("below threshold should not be due")
	}
	if r.NextDue != "45000 kilometers" {
		t.Fatalf("NextDue = %q", r.NextDue)
	}
}

func TestDistanceDueAtThreshold(t *testing.T) {
	task := distanceTask(ptr(40000), 5000, store.IntervalKilometers)
	r := Compute(task, time.Now(), ptr(45000))
	if !r.IsDue {
		t.Fatal("at threshold should be due")
	}
	r = Compute(task, time.Now(), ptr(47200))
	if !r.IsDue {
		t.Fatal("past threshold should be due")
	}
}

func TestDistanceMilesLabel(t *testing.T) {
	task := distanceTask(ptr(12000), 3000, store.IntervalMiles)
	r := Compute(task, time.Now(), ptr(13000))
	if r.NextDue != "15000 miles" {
		t.Fatalf("NextDue = %q", r.NextDue)
	}
}

func TestDistanceNoCurrentReadingFailsClosed(t *testing.T) {
	task := distanceTask(ptr(40000), 5000, store.IntervalKilometers)
	r := Compute(task, time.Now(), nil)
	if r.IsDue {
		t.Fatal("missing sensor must not mark the task due")
	}
	if r.NextDue != NextDueNoOdometer {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, NextDueNoOdometer)
	}
}

func TestDistanceNoBaselineFailsClosed(t *testing.T) {
	task := distanceTask(nil, 5000, store.IntervalKilometers)
	r := Compute(task, time.Now(), ptr(99999))
	if r.IsDue {
		t.Fatal("missing baseline must not mark the task due")
	}
	if r.NextDue != NextDueNoOdometer {
		t.Fatalf("NextDue = %q, want %q", r.NextDue, NextDueNoOdometer)
	}
}

func TestDistanceIgnoresLastPerformed(t *testing.T) {
	// A stale calendar date must not influence an odometer task.
	task := distanceTask(ptr(40000), 5000, store.IntervalKilometers)
	task.LastPerformed = "2020-01-01"
	r := Compute(task, localDate(2025, 6, 1), ptr(41000))
	if r.IsDue {
		t.Fatal("distance decision leaked calendar state")
	}
}

// ============================================================
// Purity
// ============================================================

func TestComputeIsIdempotent(t *testing.T) {
	task := calendarTask("2025-03-01", 7, store.IntervalDays)
	now := localDate(2025, 3, 10)

	first := Compute(task, now, nil)
	second := Compute(task, now, nil)
	if first.IsDue != second.IsDue || first.NextDue != second.NextDue {
		t.Fatalf("repeated calls diverged: %+v vs %+v", first, second)
	}
}

func TestComputeDoesNotMutateTask(t *testing.T) {
	task := calendarTask("2025-03-01", 7, store.IntervalDays)
	before := task
	Compute(task, localDate(2025, 3, 10), nil)
	if task != before {
		t.Fatalf("task mutated: %+v", task)
	}
}

func TestAttributes(t *testing.T) {
	task := calendarTask("2025-03-01", 7, store.IntervalDays)
	task.TagID = "tag-123"
	r := Compute(task, localDate(2025, 3, 10), nil)

	if r.Attributes["interval_value"] != 7 {
		t.Fatalf("interval_value = %v", r.Attributes["interval_value"])
	}
	if r.Attributes["interval_type"] != store.IntervalDays {
		t.Fatalf("interval_type = %v", r.Attributes["interval_type"])
	}
	if r.Attributes["tag_id"] != "tag-123" {
		t.Fatalf("tag_id = %v", r.Attributes["tag_id"])
	}
	if r.Attributes["next_due"] != r.NextDue {
		t.Fatal("next_due attribute should mirror NextDue")
	}
}
