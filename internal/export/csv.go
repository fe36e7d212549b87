package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/EnricoMenegatti/home-maintenance/internal/due"
	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

func ToCSV(tasks []store.Task, results map[string]due.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Interval", "Type", "Last Performed", "Last Odometer", "Next Due", "Due", "Category", "Item"}); err != nil {
		return err
	}

	for _, t := range tasks {
		res := results[t.ID]
		lastOdo := ""
		if t.LastOdometer != nil {
			lastOdo = fmt.Sprintf("%.0f", *t.LastOdometer)
		}
		row := []string{
			t.ID,
			t.Title,
			fmt.Sprintf("%d", t.IntervalValue),
			t.IntervalType,
			formatDate(t.LastPerformed),
			lastOdo,
			res.NextDue,
			fmt.Sprintf("%t", res.IsDue),
			t.Category,
			t.ItemName,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// formatDate trims a stored midnight timestamp down to its date part.
func formatDate(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format("2006-01-02")
	}
	return iso
}
