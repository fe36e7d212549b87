// Package due computes whether a maintenance task is due. Compute is a
// pure function: failures never surface as errors, only as explicit
// "unknown" markers in the result.
package due

import (
	"fmt"
	"time"

	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

// Result is the computed due state for one task.
type Result struct {
	IsDue bool
	// NextDue is the user-facing next-due value: an ISO date for calendar
	// tasks, "<value> <unit>" for odometer tasks, or an "unknown" marker.
	NextDue string
	// Attributes is observational output for inspection layers; Compute
	// never reads it back.
	Attributes map[string]any
}

const (
	// NextDueUnknown marks an undecidable calendar task.
	NextDueUnknown = "unknown"
	// NextDueNoOdometer marks a distance task without enough readings.
	NextDueNoOdometer = "unknown (odometer not available)"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Compute derives the due state of a task at the given wall-clock time.
// currentOdometer is the freshest reading for the task's odometer entity,
// or nil when the sensor is unavailable; it is ignored for calendar tasks.
func Compute(t store.Task, now time.Time, currentOdometer *float64) Result {
	attrs := map[string]any{
		"interval_value": t.IntervalValue,
		"interval_type":  t.IntervalType,
	}
	if t.TagID != "" {
		attrs["tag_id"] = t.TagID
	}

	if t.DistanceBased() {
		return computeDistance(t, currentOdometer, attrs)
	}
	return computeCalendar(t, now, attrs)
}

func computeDistance(t store.Task, current *float64, attrs map[string]any) Result {
	attrs["last_odometer"] = t.LastOdometer
	// last_performed plays no role in the distance decision but is still
	// echoed for reference.
	attrs["last_performed"] = t.LastPerformed

	var nextDue *float64
	if t.LastOdometer != nil {
		v := *t.LastOdometer + float64(t.IntervalValue)
		nextDue = &v
		attrs["next_due_odometer"] = v
	}
	if current != nil {
		attrs["current_odometer"] = *current
	}

	if t.LastOdometer == nil || current == nil {
		attrs["next_due"] = NextDueNoOdometer
		return Result{IsDue: false, NextDue: NextDueNoOdometer, Attributes: attrs}
	}

	label := fmt.Sprintf("%.0f %s", *nextDue, t.IntervalType)
	attrs["next_due"] = label
	return Result{IsDue: *current >= *nextDue, NextDue: label, Attributes: attrs}
}

func computeCalendar(t store.Task, now time.Time, attrs map[string]any) Result {
	attrs["last_performed"] = t.LastPerformed

	last, ok := parseDate(t.LastPerformed, now.Location())
	if !ok {
		// Fail open: a task with an unreadable date needs attention.
		attrs["next_due"] = NextDueUnknown
		return Result{IsDue: true, NextDue: NextDueUnknown, Attributes: attrs}
	}

	var dueDate time.Time
	switch t.IntervalType {
	case store.IntervalDays:
		dueDate = last.AddDate(0, 0, t.IntervalValue)
	case store.IntervalWeeks:
		dueDate = last.AddDate(0, 0, 7*t.IntervalValue)
	case store.IntervalMonths:
		dueDate = addMonths(last, t.IntervalValue)
	default:
		// Unrecognized interval type is a configuration defect, not a
		// fault: pass last_performed through unchanged.
		attrs["next_due"] = t.LastPerformed
		return Result{IsDue: false, NextDue: t.LastPerformed, Attributes: attrs}
	}

	dueDate = midnight(dueDate)
	today := midnight(now)
	attrs["next_due"] = dueDate.Format(time.RFC3339)
	return Result{IsDue: !today.Before(dueDate), NextDue: dueDate.Format(time.RFC3339), Attributes: attrs}
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// addMonths advances by whole calendar months, clamping to the last valid
// day of the target month (Jan 31 + 1 month lands on Feb 28/29, never
// rolling into March).
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hh, mm, ss := t.Clock()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
