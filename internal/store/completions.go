package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ListCompletions returns the completion log, most recent first. An empty
// taskID lists completions across all tasks.
func (s *Store) ListCompletions(taskID string, limit int) ([]Completion, error) {
	query := `SELECT id, task_id, performed_at, odometer, created_at FROM completions`
	var args []any
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY performed_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []Completion
	for rows.Next() {
		var c Completion
		var odometer sql.NullFloat64
		var createdAt string
		if err := rows.Scan(&c.ID, &c.TaskID, &c.PerformedAt, &odometer, &createdAt); err != nil {
			return nil, err
		}
		if odometer.Valid {
			c.Odometer = &odometer.Float64
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// CompletionsByMonth aggregates completion counts per calendar month in
// [from, to), for the history chart.
func (s *Store) CompletionsByMonth(from, to time.Time) ([]MonthlyCompletions, error) {
	rows, err := s.db.Query(`
		SELECT strftime('%Y-%m', performed_at) AS month, COUNT(*)
		FROM completions
		WHERE performed_at >= ? AND performed_at < ?
		GROUP BY month
		ORDER BY month`,
		from.Format(time.RFC3339), to.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("completions by month: %w", err)
	}
	defer rows.Close()

	var months []MonthlyCompletions
	for rows.Next() {
		var m MonthlyCompletions
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
