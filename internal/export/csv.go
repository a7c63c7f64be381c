package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

func ToCSV(w io.Writer, items []tracker.Item, categories map[int64]*store.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Header
	if err := cw.Write([]string{"Date", "Title", "Category", "Start", "End", "Duration (min)", "Status", "Actual Value", "Notes"}); err != nil {
		return err
	}

	for _, it := range items {
		categoryName := "Unknown"
		if c, ok := categories[it.Task.CategoryID]; ok {
			categoryName = c.Name
		}
		valueStr := ""
		if it.ActualValue != nil {
			valueStr = fmt.Sprintf("%g", *it.ActualValue)
		}

		row := []string{
			it.Date.String(),
			it.Task.Title,
			categoryName,
			it.Task.StartTime,
			it.Task.EndTime,
			fmt.Sprintf("%d", it.Task.DurationMinutes),
			string(it.Status),
			valueStr,
			it.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}
