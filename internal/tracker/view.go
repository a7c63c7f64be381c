package tracker

import (
	"sort"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/store"
)

// Item is one schedulable entry on a concrete date: either a
// non-recurring task, a persisted occurrence of a recurring task, or a
// virtual projection of a recurrence rule onto a date with no persisted
// state yet.
type Item struct {
	Task         *store.Task  `json:"task"`
	Date         date.Date    `json:"date"`
	Status       store.Status `json:"status"`
	ActualValue  *float64     `json:"actual_value,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	OccurrenceID *int64       `json:"occurrence_id,omitempty"` // nil for non-recurring tasks and virtual items
	Virtual      bool         `json:"virtual"`
}

// Day returns the user's schedule for a single date.
func (s *Service) Day(userID int64, d date.Date) ([]Item, error) {
	return s.Range(userID, d, d)
}

// Month returns the user's schedule for a calendar month.
func (s *Service) Month(userID int64, year, month int) ([]Item, error) {
	if month < 1 || month > 12 {
		return nil, Errorf(CodeValidation, "month %d out of range 1-12", month)
	}
	first := date.New(year, time.Month(month), 1)
	last := first.AddDays(first.DaysInMonth() - 1)
	return s.Range(userID, first, last)
}

// Range merges three sources over [from, to]: non-recurring tasks by
// exact date, persisted occurrences, and virtual projections for every
// applying date not yet covered by a persisted row. Persisted state
// always wins over projection, and skipped occurrences suppress their
// date entirely.
func (s *Service) Range(userID int64, from, to date.Date) ([]Item, error) {
	if to.Before(from) {
		return nil, Errorf(CodeValidation, "range end %s is before start %s", to, from)
	}

	var items []Item

	nonRecurring := false
	plain, err := s.st.ListTasks(store.TaskFilter{UserID: userID, From: &from, To: &to, Recurring: &nonRecurring})
	if err != nil {
		return nil, err
	}
	for i := range plain {
		t := &plain[i]
		items = append(items, Item{
			Task:        t,
			Date:        t.Date,
			Status:      t.Status,
			ActualValue: t.ActualValue,
			Notes:       t.Notes,
		})
	}

	templates, err := s.st.ListRecurring(userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*store.Task, len(templates))
	for i := range templates {
		byID[templates[i].ID] = &templates[i]
	}

	occs, err := s.st.ListOccurrencesInRange(userID, from, to)
	if err != nil {
		return nil, err
	}
	covered := make(map[int64]map[date.Date]bool)
	for i := range occs {
		o := &occs[i]
		t := byID[o.TaskID]
		if t == nil {
			continue
		}
		if covered[o.TaskID] == nil {
			covered[o.TaskID] = make(map[date.Date]bool)
		}
		covered[o.TaskID][o.Date] = true
		if o.Status == store.StatusSkipped {
			continue
		}
		id := o.ID
		items = append(items, Item{
			Task:         t,
			Date:         o.Date,
			Status:       o.Status,
			ActualValue:  o.ActualValue,
			Notes:        o.Notes,
			OccurrenceID: &id,
		})
	}

	for i := range templates {
		t := &templates[i]
		rule := t.Rule()
		for _, d := range rule.Expand(from, to) {
			if covered[t.ID][d] {
				continue
			}
			items = append(items, Item{
				Task:    t,
				Date:    d,
				Status:  store.StatusPending,
				Virtual: true,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Task.StartTime != b.Task.StartTime {
			return a.Task.StartTime < b.Task.StartTime
		}
		return a.Task.ID < b.Task.ID
	})
	return items, nil
}

// OccurrenceFor resolves the state of a recurring task on one date
// without persisting anything: the stored occurrence when present,
// otherwise a virtual pending item when the rule applies there.
func (s *Service) OccurrenceFor(userID, taskID int64, d date.Date) (*Item, error) {
	t, err := s.st.GetTask(userID, taskID)
	if err != nil {
		return nil, notFoundOr(err, "task %d not found", taskID)
	}
	if !t.Recurring() {
		return nil, Errorf(CodeValidation, "task %d is not recurring", taskID)
	}

	occ, err := s.st.GetOccurrence(taskID, d)
	if err != nil {
		return nil, err
	}
	if occ != nil {
		id := occ.ID
		return &Item{
			Task:         t,
			Date:         d,
			Status:       occ.Status,
			ActualValue:  occ.ActualValue,
			Notes:        occ.Notes,
			OccurrenceID: &id,
		}, nil
	}
	if !t.Rule().Applies(d) {
		return nil, Errorf(CodeNotFound, "task %d has no occurrence on %s", taskID, d)
	}
	return &Item{Task: t, Date: d, Status: store.StatusPending, Virtual: true}, nil
}
