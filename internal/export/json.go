package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/EnricoMenegatti/home-maintenance/internal/due"
	"github.com/EnricoMenegatti/home-maintenance/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	IntervalValue int      `json:"interval_value"`
	IntervalType  string   `json:"interval_type"`
	LastPerformed string   `json:"last_performed"`
	LastOdometer  *float64 `json:"last_odometer,omitempty"`
	NextDue       string   `json:"next_due"`
	IsDue         bool     `json:"is_due"`
	TagID         string   `json:"tag_id,omitempty"`
	Category      string   `json:"category,omitempty"`
	ItemName      string   `json:"item_name,omitempty"`
}

func ToJSON(tasks []store.Task, results map[string]due.Result, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		res := results[t.ID]
		export.Tasks = append(export.Tasks, jsonTask{
			ID:            t.ID,
			Title:         t.Title,
			IntervalValue: t.IntervalValue,
			IntervalType:  t.IntervalType,
			LastPerformed: formatDate(t.LastPerformed),
			LastOdometer:  t.LastOdometer,
			NextDue:       res.NextDue,
			IsDue:         res.IsDue,
			TagID:         t.TagID,
			Category:      t.Category,
			ItemName:      t.ItemName,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
