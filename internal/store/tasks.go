package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// taskColumns is the select list shared by every task query.
const taskColumns = `id, title, interval_value, interval_type, last_performed,
	last_odometer, odometer_entity, tag_id, icon, category, item_name, labels,
	created_at, updated_at`

// dateLayouts are the accepted forms for a user-supplied last_performed date.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// NormalizeDate parses a user-supplied date string and normalizes it to
// local midnight in RFC3339 form. An empty input yields today's midnight.
func NormalizeDate(raw string, now time.Time) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return midnight(now.Local()).Format(time.RFC3339), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(raw), time.Local); err == nil {
			return midnight(t.Local()).Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("could not parse date: %q", raw)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddTask inserts a task and returns its id. A missing id is generated;
// last_performed is normalized to local midnight (today when empty).
func (s *Store) AddTask(t Task, labels []string) (string, error) {
	if t.ID == "" {
		t.ID = "home_maintenance_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	lastPerformed, err := NormalizeDate(t.LastPerformed, time.Now())
	if err != nil {
		return "", err
	}
	if len(labels) > 0 {
		t.Labels = strings.Join(labels, ",")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO tasks (id, title, interval_value, interval_type, last_performed,
			last_odometer, odometer_entity, tag_id, icon, category, item_name, labels,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.IntervalValue, t.IntervalType, lastPerformed,
		t.LastOdometer, t.OdometerEntity, t.TagID, t.Icon, t.Category, t.ItemName, t.Labels,
		now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return t.ID, nil
}

func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) GetAllTasks() ([]Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies the non-nil fields of u to the task. A supplied
// last_performed is normalized to local midnight first.
func (s *Store) UpdateTask(id string, u TaskUpdate) error {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.IntervalValue != nil {
		set("interval_value", *u.IntervalValue)
	}
	if u.IntervalType != nil {
		set("interval_type", *u.IntervalType)
	}
	if u.LastPerformed != nil {
		normalized, err := NormalizeDate(*u.LastPerformed, time.Now())
		if err != nil {
			return err
		}
		set("last_performed", normalized)
	}
	if u.LastOdometer != nil {
		set("last_odometer", *u.LastOdometer)
	}
	if u.OdometerEntity != nil {
		set("odometer_entity", *u.OdometerEntity)
	}
	if u.TagID != nil {
		set("tag_id", *u.TagID)
	}
	if u.Icon != nil {
		set("icon", *u.Icon)
	}
	if u.Category != nil {
		set("category", *u.Category)
	}
	if u.ItemName != nil {
		set("item_name", *u.ItemName)
	}
	if u.Labels != nil {
		set("labels", *u.Labels)
	}
	if len(sets) == 0 {
		return nil
	}
	set("updated_at", time.Now().UTC().Format(time.RFC3339))

	args = append(args, id)
	_, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	return nil
}

// UpdateLastPerformed marks the task completed now: last_performed moves
// to today's midnight, the odometer baseline is advanced when a reading is
// supplied, and a completion log row is appended.
func (s *Store) UpdateLastPerformed(id string, performedOdometer *float64) error {
	performedAt := midnight(time.Now().Local()).Format(time.RFC3339)
	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	if performedOdometer != nil {
		res, err = s.db.Exec(
			`UPDATE tasks SET last_performed = ?, last_odometer = ?, updated_at = ? WHERE id = ?`,
			performedAt, *performedOdometer, now, id,
		)
	} else {
		res, err = s.db.Exec(
			`UPDATE tasks SET last_performed = ?, updated_at = ? WHERE id = ?`,
			performedAt, now, id,
		)
	}
	if err != nil {
		return fmt.Errorf("update last performed %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update last performed %s: %w", id, sql.ErrNoRows)
	}

	_, err = s.db.Exec(
		`INSERT INTO completions (task_id, performed_at, odometer) VALUES (?, ?, ?)`,
		id, performedAt, performedOdometer,
	)
	if err != nil {
		return fmt.Errorf("log completion %s: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

type taskScanner interface {
	Scan(dest ...any) error
}

func scanTask(row taskScanner) (*Task, error) {
	t := &Task{}
	var lastOdometer sql.NullFloat64
	var createdAt, updatedAt string
	err := row.Scan(
		&t.ID, &t.Title, &t.IntervalValue, &t.IntervalType, &t.LastPerformed,
		&lastOdometer, &t.OdometerEntity, &t.TagID, &t.Icon, &t.Category, &t.ItemName, &t.Labels,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastOdometer.Valid {
		t.LastOdometer = &lastOdometer.Float64
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}
