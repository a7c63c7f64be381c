package tracker

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
	"github.com/andrevf/planday/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedCategory(t *testing.T, s *Service) *store.Category {
	t.Helper()
	c := &store.Category{Name: "Fitness"}
	if err := s.Store().CreateCategory(c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func seedGoal(t *testing.T, s *Service, userID, categoryID int64, target float64) *store.Goal {
	t.Helper()
	g := &store.Goal{
		UserID:          userID,
		Title:           "Run 10 km",
		CategoryID:      categoryID,
		Period:          "monthly",
		StartDate:       date.New(2024, time.March, 1),
		EndDate:         date.New(2024, time.March, 31),
		TargetValue:     target,
		MeasurementUnit: "km",
	}
	if err := s.Store().CreateGoal(g); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return g
}

// baseInput returns a valid non-recurring task input on 2024-03-01.
func baseInput(categoryID int64) TaskInput {
	return TaskInput{
		Title:      "Morning run",
		CategoryID: categoryID,
		Date:       date.New(2024, time.March, 1),
		StartTime:  "07:00",
		EndTime:    "08:00",
	}
}

// dailyInput returns a daily template over 2024-03-01 .. 2024-03-05.
func dailyInput(categoryID int64) TaskInput {
	in := baseInput(categoryID)
	end := date.New(2024, time.March, 5)
	in.RepeatPattern = recur.Daily
	in.RepeatEndDate = &end
	return in
}

func f64(v float64) *float64 { return &v }

func mustGoal(t *testing.T, s *Service, userID, goalID int64) *store.Goal {
	t.Helper()
	g, err := s.Store().GetGoal(userID, goalID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	return g
}
