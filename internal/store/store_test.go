package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCategory(t *testing.T, s *Store) *Category {
	t.Helper()
	c := &Category{Name: "Fitness", Icon: "dumbbell", Color: "#ff0000"}
	if err := s.CreateCategory(c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func seedGoal(t *testing.T, s *Store, userID, categoryID int64, target float64) *Goal {
	t.Helper()
	g := &Goal{
		UserID:          userID,
		Title:           "Run 100 km",
		CategoryID:      categoryID,
		Period:          "monthly",
		StartDate:       date.New(2024, time.March, 1),
		EndDate:         date.New(2024, time.March, 31),
		TargetValue:     target,
		MeasurementUnit: "km",
	}
	if err := s.CreateGoal(g); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	return g
}

func seedTask(t *testing.T, s *Store, userID, categoryID int64, mutate func(*Task)) *Task {
	t.Helper()
	task := &Task{
		UserID:          userID,
		Title:           "Morning run",
		CategoryID:      categoryID,
		Date:            date.New(2024, time.March, 1),
		StartTime:       "07:00",
		EndTime:         "08:00",
		DurationMinutes: 60,
		Priority:        2,
		Status:          StatusPending,
		RepeatPattern:   recur.None,
		EnergyLevel:     EnergyMedium,
	}
	if mutate != nil {
		mutate(task)
	}
	if err := s.CreateTask(task); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func f64(v float64) *float64 { return &v }

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir + "/sub/planday.db")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
}

// ============================================================
// Tasks
// ============================================================

func TestTaskRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	end := date.New(2024, time.March, 31)
	created := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
		task.RepeatEndDate = &end
		task.TargetValue = f64(5)
		task.Notes = "easy pace"
	})

	got, err := s.GetTask(1, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Morning run" || got.RepeatPattern != recur.Daily {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.RepeatEndDate == nil || !got.RepeatEndDate.Equal(end) {
		t.Fatalf("expected repeat end %s, got %v", end, got.RepeatEndDate)
	}
	if got.TargetValue == nil || *got.TargetValue != 5 {
		t.Fatalf("expected target 5, got %v", got.TargetValue)
	}
}

func TestGetTaskScopedToUser(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	task := seedTask(t, s, 1, cat.ID, nil)

	if _, err := s.GetTask(2, task.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for wrong user, got %v", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	seedTask(t, s, 1, cat.ID, nil)
	seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.Title = "Evening yoga"
		task.Date = date.New(2024, time.March, 2)
		task.Status = StatusCompleted
	})
	seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.Title = "Weekly review"
		task.RepeatPattern = recur.Weekly
	})
	seedTask(t, s, 2, cat.ID, nil)

	all, err := s.ListTasks(TaskFilter{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks for user 1, got %d", len(all))
	}

	completed := StatusCompleted
	byStatus, err := s.ListTasks(TaskFilter{UserID: 1, Status: &completed})
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 || byStatus[0].Title != "Evening yoga" {
		t.Fatalf("unexpected status filter result %+v", byStatus)
	}

	recurring := true
	templates, err := s.ListTasks(TaskFilter{UserID: 1, Recurring: &recurring})
	if err != nil {
		t.Fatal(err)
	}
	if len(templates) != 1 || templates[0].Title != "Weekly review" {
		t.Fatalf("unexpected recurring filter result %+v", templates)
	}

	from := date.New(2024, time.March, 2)
	to := date.New(2024, time.March, 2)
	inRange, err := s.ListTasks(TaskFilter{UserID: 1, From: &from, To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(inRange) != 1 || inRange[0].Title != "Evening yoga" {
		t.Fatalf("unexpected range filter result %+v", inRange)
	}
}

func TestDeleteTaskCascadesOccurrences(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	task := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
	})

	o := &Occurrence{TaskID: task.ID, Date: task.Date, Status: StatusCompleted}
	if err := s.CreateOccurrence(o); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTask(1, task.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetOccurrence(task.ID, task.Date)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected occurrence to be deleted with its task")
	}
}

// ============================================================
// Occurrences
// ============================================================

func TestUpsertOccurrenceReturnsPriorState(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	task := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
	})
	d := date.New(2024, time.March, 3)

	cur, prior, err := s.UpsertOccurrence(task.ID, d, StatusCompleted, f64(2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if prior != nil {
		t.Fatal("expected nil prior on first upsert")
	}
	if cur.Status != StatusCompleted || *cur.ActualValue != 2 {
		t.Fatalf("unexpected occurrence %+v", cur)
	}

	cur, prior, err = s.UpsertOccurrence(task.ID, d, StatusPending, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if prior == nil || prior.Status != StatusCompleted || *prior.ActualValue != 2 {
		t.Fatalf("expected prior completed state, got %+v", prior)
	}
	// Nil actual leaves the stored value untouched.
	if cur.ActualValue == nil || *cur.ActualValue != 2 {
		t.Fatalf("expected actual_value preserved, got %v", cur.ActualValue)
	}
}

func TestUniqueOccurrencePerDate(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	task := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
	})
	d := date.New(2024, time.March, 3)

	if err := s.CreateOccurrence(&Occurrence{TaskID: task.ID, Date: d, Status: StatusPending}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateOccurrence(&Occurrence{TaskID: task.ID, Date: d, Status: StatusPending}); err == nil {
		t.Fatal("expected unique constraint violation for duplicate (task, date)")
	}
}

func TestSumCompletedValues(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	task := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
	})

	days := []struct {
		day    int
		status Status
		value  *float64
	}{
		{1, StatusCompleted, f64(2)},
		{2, StatusCompleted, f64(3)},
		{3, StatusFailed, f64(9)},
		{4, StatusCompleted, nil},
	}
	for _, c := range days {
		o := &Occurrence{TaskID: task.ID, Date: date.New(2024, time.March, c.day), Status: c.status, ActualValue: c.value}
		if err := s.CreateOccurrence(o); err != nil {
			t.Fatal(err)
		}
	}

	total, err := s.SumCompletedValues(task.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Fatalf("expected sum 5, got %g", total)
	}

	from := date.New(2024, time.March, 2)
	total, err = s.SumCompletedValues(task.ID, &from)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("expected sum 3 from Mar 2, got %g", total)
	}
}

func TestReassignOccurrencesFrom(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	task := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
	})
	split := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.RepeatPattern = recur.Daily
		task.Date = date.New(2024, time.March, 3)
	})

	for day := 1; day <= 4; day++ {
		o := &Occurrence{TaskID: task.ID, Date: date.New(2024, time.March, day), Status: StatusCompleted}
		if err := s.CreateOccurrence(o); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.ReassignOccurrencesFrom(task.ID, split.ID, date.New(2024, time.March, 3)); err != nil {
		t.Fatal(err)
	}

	old, err := s.ListOccurrences(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	moved, err := s.ListOccurrences(split.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(old) != 2 || len(moved) != 2 {
		t.Fatalf("expected 2+2 after reassign, got %d+%d", len(old), len(moved))
	}
}

// ============================================================
// Goals
// ============================================================

func TestGoalProgressWritePath(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	g := seedGoal(t, s, 1, cat.ID, 100)

	if err := s.SetGoalProgress(g.ID, 40, 40, false); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetGoal(1, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentValue != 40 || got.ProgressPercentage != 40 || got.IsCompleted {
		t.Fatalf("unexpected goal state %+v", got)
	}
}

func TestUpdateGoalPreservesDerivedFields(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	g := seedGoal(t, s, 1, cat.ID, 100)
	if err := s.SetGoalProgress(g.ID, 55, 55, false); err != nil {
		t.Fatal(err)
	}

	g.Title = "Run 120 km"
	g.TargetValue = 120
	if err := s.UpdateGoal(g); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetGoal(1, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Run 120 km" || got.TargetValue != 120 {
		t.Fatalf("declared fields not updated: %+v", got)
	}
	if got.CurrentValue != 55 {
		t.Fatalf("current_value must survive UpdateGoal, got %g", got.CurrentValue)
	}
}

func TestDeleteGoalUnlinksTasks(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)
	g := seedGoal(t, s, 1, cat.ID, 100)
	task := seedTask(t, s, 1, cat.ID, func(task *Task) {
		task.GoalID = &g.ID
	})

	if err := s.DeleteGoal(1, g.ID); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetTask(1, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.GoalID != nil {
		t.Fatal("expected goal_id cleared when goal is deleted")
	}
}

// ============================================================
// Profiles and preferences
// ============================================================

func TestEnergyProfileDefaultsThenUpsert(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetEnergyProfile(7)
	if err != nil {
		t.Fatal(err)
	}
	if p.MidMorning != 7 || p.SaturdayMod != 1 {
		t.Fatalf("unexpected default profile %+v", p)
	}

	p.Evening = 9
	if err := s.UpsertEnergyProfile(p); err != nil {
		t.Fatal(err)
	}
	p.Evening = 2
	if err := s.UpsertEnergyProfile(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetEnergyProfile(7)
	if err != nil {
		t.Fatal(err)
	}
	if got.Evening != 2 {
		t.Fatalf("expected evening 2 after second upsert, got %d", got.Evening)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetPreferences(7)
	if err != nil {
		t.Fatal(err)
	}
	if p.DefaultView != "day" || p.ReminderBeforeMinutes != 15 {
		t.Fatalf("unexpected default preferences %+v", p)
	}

	wake := "06:30"
	p.DefaultView = "week"
	p.WakeUpTime = &wake
	if err := s.UpsertPreferences(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPreferences(7)
	if err != nil {
		t.Fatal(err)
	}
	if got.DefaultView != "week" || got.WakeUpTime == nil || *got.WakeUpTime != "06:30" {
		t.Fatalf("unexpected preferences %+v", got)
	}
}

// ============================================================
// Transactions
// ============================================================

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	cat := seedCategory(t, s)

	wantErr := errors.New("boom")
	err := s.WithTx(func(tx *Tx) error {
		seedErr := tx.CreateTask(&Task{
			UserID: 1, Title: "doomed", CategoryID: cat.ID,
			Date: date.New(2024, time.March, 1), StartTime: "07:00", EndTime: "08:00",
			Priority: 2, Status: StatusPending, RepeatPattern: recur.None, EnergyLevel: EnergyMedium,
		})
		if seedErr != nil {
			return seedErr
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected boom, got %v", err)
	}

	tasks, err := s.ListTasks(TaskFilter{UserID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected rollback, found %d tasks", len(tasks))
	}
}
