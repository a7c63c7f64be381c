package tracker

import (
	"testing"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/store"
)

func TestCurrentEnergyLevelUsesPeriodAndDayModifier(t *testing.T) {
	s := newTestService(t)

	// Default profile: mid-morning 7, Monday modifier 0, Saturday +1.
	monday := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	level, err := s.CurrentEnergyLevel(1, monday)
	if err != nil {
		t.Fatal(err)
	}
	if level != 7 {
		t.Fatalf("expected 7 on Monday mid-morning, got %d", level)
	}

	saturday := time.Date(2024, time.March, 9, 9, 0, 0, 0, time.UTC)
	level, err = s.CurrentEnergyLevel(1, saturday)
	if err != nil {
		t.Fatal(err)
	}
	if level != 8 {
		t.Fatalf("expected 8 on Saturday mid-morning, got %d", level)
	}
}

func TestCurrentEnergyLevelClamps(t *testing.T) {
	s := newTestService(t)
	p := store.DefaultEnergyProfile(1)
	p.Night = 1
	p.SundayMod = -5
	if err := s.Store().UpsertEnergyProfile(p); err != nil {
		t.Fatal(err)
	}

	sundayNight := time.Date(2024, time.March, 10, 2, 0, 0, 0, time.UTC)
	level, err := s.CurrentEnergyLevel(1, sundayNight)
	if err != nil {
		t.Fatal(err)
	}
	if level != 1 {
		t.Fatalf("expected clamp to 1, got %d", level)
	}
}

func TestMatchScore(t *testing.T) {
	high := &store.Task{EnergyLevel: store.EnergyHigh}
	medium := &store.Task{EnergyLevel: store.EnergyMedium}
	low := &store.Task{EnergyLevel: store.EnergyLow}

	if got := MatchScore(high, 8); got != 10 {
		t.Fatalf("expected perfect match 10, got %d", got)
	}
	if got := MatchScore(medium, 8); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := MatchScore(low, 8); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestRecommendationsRankedByScore(t *testing.T) {
	s := newTestService(t)
	cat := seedCategory(t, s)

	// Monday mid-morning, energy 7: high (8) beats medium (5) beats low (2).
	// The task set comes from the same clock as the energy level.
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	day := date.New(2024, time.March, 4)
	for i, level := range []string{store.EnergyLow, store.EnergyHigh, store.EnergyMedium} {
		in := baseInput(cat.ID)
		in.Title = level + " task"
		in.EnergyLevel = level
		in.Date = day
		in.StartTime = []string{"06:00", "09:00", "12:00"}[i]
		in.EndTime = []string{"07:00", "10:00", "13:00"}[i]
		if _, err := s.CreateTask(1, in); err != nil {
			t.Fatal(err)
		}
	}
	// A completed task never gets recommended.
	done := baseInput(cat.ID)
	done.Title = "already done"
	done.Date = day
	done.StartTime = "15:00"
	done.EndTime = "16:00"
	done.Status = store.StatusCompleted
	if _, err := s.CreateTask(1, done); err != nil {
		t.Fatal(err)
	}
	// Neither does a task scheduled for another day.
	tomorrow := baseInput(cat.ID)
	tomorrow.Title = "tomorrow task"
	tomorrow.Date = day.AddDays(1)
	if _, err := s.CreateTask(1, tomorrow); err != nil {
		t.Fatal(err)
	}

	recs, err := s.Recommendations(1, now, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	want := []string{"high task", "medium task", "low task"}
	for i, title := range want {
		if recs[i].Task.Title != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, recs[i].Task.Title)
		}
	}

	limited, err := s.Recommendations(1, now, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit 2, got %d", len(limited))
	}
}
