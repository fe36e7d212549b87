package store

import "time"

// Interval types. Days, weeks and months are calendar intervals;
// kilometers and miles are odometer intervals.
const (
	IntervalDays       = "days"
	IntervalWeeks      = "weeks"
	IntervalMonths     = "months"
	IntervalKilometers = "kilometers"
	IntervalMiles      = "miles"
)

type Task struct {
	ID             string
	Title          string
	IntervalValue  int
	IntervalType   string
	LastPerformed  string // ISO date, local midnight
	LastOdometer   *float64
	OdometerEntity string
	TagID          string
	Icon           string
	Category       string
	ItemName       string
	Labels         string // comma-separated
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DistanceBased reports whether the task recurs by odometer rather than
// by calendar.
func (t Task) DistanceBased() bool {
	return t.IntervalType == IntervalKilometers || t.IntervalType == IntervalMiles
}

// TaskUpdate carries the mutable task fields for UpdateTask. Nil pointers
// leave the stored value unchanged.
type TaskUpdate struct {
	Title          *string
	IntervalValue  *int
	IntervalType   *string
	LastPerformed  *string
	LastOdometer   *float64
	OdometerEntity *string
	TagID          *string
	Icon           *string
	Category       *string
	ItemName       *string
	Labels         *string
}

type Completion struct {
	ID          int64
	TaskID      string
	PerformedAt string // ISO date
	Odometer    *float64
	CreatedAt   time.Time
}

// MonthlyCompletions is the aggregated completion count for one calendar
// month, used by the history chart.
type MonthlyCompletions struct {
	Month string // "2006-01"
	Count int
}

type OdometerReading struct {
	ID         int64
	Entity     string
	Value      float64
	RecordedAt time.Time
}
