package report

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

func newTestReporter(t *testing.T) (*Reporter, *tracker.Service) {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := tracker.New(st, log)
	return New(svc, log), svc
}

func seedCategory(t *testing.T, svc *tracker.Service, name string) *store.Category {
	t.Helper()
	c := &store.Category{Name: name}
	if err := svc.Store().CreateCategory(c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func f64(v float64) *float64 { return &v }

func TestTaskReport(t *testing.T) {
	rep, svc := newTestReporter(t)
	fitness := seedCategory(t, svc, "Fitness")
	work := seedCategory(t, svc, "Work")

	mk := func(title string, cat int64, day int, start, end string, status store.Status) {
		in := tracker.TaskInput{
			Title:      title,
			CategoryID: cat,
			Date:       date.New(2024, time.March, day),
			StartTime:  start,
			EndTime:    end,
			Status:     status,
		}
		if _, err := svc.CreateTask(1, in); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	mk("Run", fitness.ID, 1, "07:00", "08:00", store.StatusCompleted)
	mk("Email", work.ID, 1, "09:00", "10:00", store.StatusPending)
	mk("Gym", fitness.ID, 2, "07:00", "08:00", store.StatusFailed)
	mk("Standup", work.ID, 3, "09:00", "09:30", store.StatusCompleted)

	got, err := rep.TaskReport(1, date.New(2024, time.March, 1), date.New(2024, time.March, 3))
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 4 || got.Completed != 2 {
		t.Fatalf("expected 4 total / 2 completed, got %d/%d", got.Total, got.Completed)
	}
	if got.CompletionRate != 50 {
		t.Fatalf("expected 50%% completion, got %g", got.CompletionRate)
	}
	if got.ByStatus["completed"] != 2 || got.ByStatus["pending"] != 1 || got.ByStatus["failed"] != 1 {
		t.Fatalf("unexpected status breakdown %+v", got.ByStatus)
	}
	if got.ByCategory["Fitness"] != 2 || got.ByCategory["Work"] != 2 {
		t.Fatalf("unexpected category breakdown %+v", got.ByCategory)
	}
	if len(got.ByDay) != 3 {
		t.Fatalf("expected 3 day buckets, got %d", len(got.ByDay))
	}
	if got.ByDay[0].Total != 2 || got.ByDay[0].Completed != 1 {
		t.Fatalf("unexpected first day bucket %+v", got.ByDay[0])
	}
	if got.MinutesPlanned != 210 || got.MinutesDone != 90 {
		t.Fatalf("expected 210/90 minutes, got %d/%d", got.MinutesPlanned, got.MinutesDone)
	}
}

func TestTaskReportCountsVirtualOccurrences(t *testing.T) {
	rep, svc := newTestReporter(t)
	cat := seedCategory(t, svc, "Habits")

	end := date.New(2024, time.March, 5)
	in := tracker.TaskInput{
		Title:         "Meditate",
		CategoryID:    cat.ID,
		Date:          date.New(2024, time.March, 1),
		StartTime:     "06:00",
		EndTime:       "06:15",
		RepeatPattern: recur.Daily,
		RepeatEndDate: &end,
	}
	task, err := svc.CreateTask(1, in)
	if err != nil {
		t.Fatal(err)
	}
	d := date.New(2024, time.March, 2)
	if _, err := svc.SetStatus(1, task.ID, tracker.StatusChange{Status: store.StatusCompleted, Date: &d}); err != nil {
		t.Fatal(err)
	}

	got, err := rep.TaskReport(1, date.New(2024, time.March, 1), date.New(2024, time.March, 5))
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 5 || got.Completed != 1 {
		t.Fatalf("expected 5 occurrences / 1 completed, got %d/%d", got.Total, got.Completed)
	}
	if got.CompletionRate != 20 {
		t.Fatalf("expected 20%%, got %g", got.CompletionRate)
	}
}

func TestGoalReport(t *testing.T) {
	rep, svc := newTestReporter(t)
	fitness := seedCategory(t, svc, "Fitness")
	work := seedCategory(t, svc, "Work")

	mk := func(title string, cat int64, period string, progress float64, completed bool) {
		g := &store.Goal{
			UserID: 1, Title: title, CategoryID: cat, Period: period,
			StartDate: date.New(2024, time.March, 1), EndDate: date.New(2024, time.March, 31),
			TargetValue: 100, MeasurementUnit: "count",
		}
		if err := svc.Store().CreateGoal(g); err != nil {
			t.Fatal(err)
		}
		if err := svc.Store().SetGoalProgress(g.ID, progress, progress, completed); err != nil {
			t.Fatal(err)
		}
	}
	mk("Run 100k", fitness.ID, "monthly", 100, true)
	mk("Lift", fitness.ID, "weekly", 50, false)
	mk("Read papers", work.ID, "monthly", 30, false)

	got, err := rep.GoalReport(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 3 || got.Completed != 1 {
		t.Fatalf("expected 3/1, got %d/%d", got.Total, got.Completed)
	}
	if got.AvgProgress != 60 {
		t.Fatalf("expected avg 60, got %g", got.AvgProgress)
	}
	fit := got.ByCategory["Fitness"]
	if fit.Total != 2 || fit.Completed != 1 || fit.AvgProgress != 75 {
		t.Fatalf("unexpected fitness summary %+v", fit)
	}
	monthly := got.ByPeriod["monthly"]
	if monthly.Total != 2 || monthly.AvgProgress != 65 {
		t.Fatalf("unexpected monthly summary %+v", monthly)
	}
}

func TestDashboard(t *testing.T) {
	rep, svc := newTestReporter(t)
	cat := seedCategory(t, svc, "Life")

	now := time.Now()
	today := date.New(now.Year(), now.Month(), now.Day())

	mk := func(title, start, end string, status store.Status) {
		in := tracker.TaskInput{
			Title: title, CategoryID: cat.ID, Date: today,
			StartTime: start, EndTime: end, Status: status,
		}
		if _, err := svc.CreateTask(1, in); err != nil {
			t.Fatal(err)
		}
	}
	mk("Done thing", "07:00", "08:00", store.StatusCompleted)
	mk("Open thing", "09:00", "10:00", store.StatusPending)

	g := &store.Goal{
		UserID: 1, Title: "Soon due", CategoryID: cat.ID, Period: "monthly",
		StartDate: today.AddDays(-20), EndDate: today.AddDays(3),
		TargetValue: 100, MeasurementUnit: "count",
	}
	if err := svc.Store().CreateGoal(g); err != nil {
		t.Fatal(err)
	}

	got, err := rep.Dashboard(1, now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Today.Total != 2 || got.Today.Completed != 1 || got.Today.Pending != 1 {
		t.Fatalf("unexpected today block %+v", got.Today)
	}
	if got.Today.CompletionRate != 50 {
		t.Fatalf("expected 50%%, got %g", got.Today.CompletionRate)
	}
	if got.Week.Total < 2 {
		t.Fatalf("week block must include today's tasks, got %+v", got.Week)
	}
	if len(got.Goals.CloseToDeadline) != 1 || got.Goals.CloseToDeadline[0].Title != "Soon due" {
		t.Fatalf("expected one goal close to deadline, got %+v", got.Goals.CloseToDeadline)
	}
	if len(got.Trend) != 30 {
		t.Fatalf("expected 30 trend buckets, got %d", len(got.Trend))
	}
}
