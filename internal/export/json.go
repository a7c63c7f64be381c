package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Items      []jsonItem  `json:"items"`
}

type jsonItem struct {
	TaskID      int64    `json:"task_id"`
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	DurationMin int      `json:"duration_minutes"`
	Status      string   `json:"status"`
	ActualValue *float64 `json:"actual_value,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Recurring   bool     `json:"recurring"`
}

func ToJSON(w io.Writer, items []tracker.Item, categories map[int64]*store.Category) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(items),
	}

	for _, it := range items {
		categoryName := "Unknown"
		if c, ok := categories[it.Task.CategoryID]; ok {
			categoryName = c.Name
		}

		export.Items = append(export.Items, jsonItem{
			TaskID:      it.Task.ID,
			Date:        it.Date.String(),
			Title:       it.Task.Title,
			Category:    categoryName,
			StartTime:   it.Task.StartTime,
			EndTime:     it.Task.EndTime,
			DurationMin: it.Task.DurationMinutes,
			Status:      string(it.Status),
			ActualValue: it.ActualValue,
			Notes:       it.Notes,
			Recurring:   it.Task.Recurring(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}
