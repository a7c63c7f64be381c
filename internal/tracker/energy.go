package tracker

import (
	"sort"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/store"
)

// energyOf maps a task's declared energy level to the 1-10 scale.
func energyOf(level string) int {
	switch level {
	case store.EnergyHigh:
		return 8
	case store.EnergyLow:
		return 2
	default:
		return 5
	}
}

// periodEnergy picks the profile slot covering hour (0-23).
func periodEnergy(p *store.EnergyProfile, hour int) int {
	switch {
	case hour >= 5 && hour < 8:
		return p.EarlyMorning
	case hour >= 8 && hour < 11:
		return p.MidMorning
	case hour >= 11 && hour < 14:
		return p.LateMorning
	case hour >= 14 && hour < 17:
		return p.EarlyAfternoon
	case hour >= 17 && hour < 20:
		return p.LateAfternoon
	case hour >= 20 && hour < 23:
		return p.Evening
	default:
		return p.Night
	}
}

// CurrentEnergyLevel estimates the user's energy right now from their
// profile: the period base plus the weekday modifier, clamped to 1-10.
func (s *Service) CurrentEnergyLevel(userID int64, now time.Time) (int, error) {
	p, err := s.st.GetEnergyProfile(userID)
	if err != nil {
		return 0, err
	}
	wd := (int(now.Weekday()) + 6) % 7 // time.Weekday is Sunday-based
	level := periodEnergy(p, now.Hour()) + p.DayModifier(wd)
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}
	return level, nil
}

// MatchScore rates how well a task fits the given energy level, 10 for
// a perfect match falling off linearly with distance.
func MatchScore(task *store.Task, energy int) int {
	score := 10 - abs(energy-energyOf(task.EnergyLevel))
	if score < 0 {
		score = 0
	}
	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Recommendation pairs a pending task with its energy match score.
type Recommendation struct {
	Task   *store.Task `json:"task"`
	Score  int         `json:"score"`
	Energy int         `json:"energy"` // the level the score was computed against
}

// Recommendations returns the pending non-recurring tasks on now's day
// ranked by how well they match the user's energy at now. limit <= 0
// means 5.
func (s *Service) Recommendations(userID int64, now time.Time, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 5
	}
	energy, err := s.CurrentEnergyLevel(userID, now)
	if err != nil {
		return nil, err
	}

	today := date.New(now.Year(), now.Month(), now.Day())
	nonRecurring := false
	status := store.StatusPending
	tasks, err := s.st.ListTasks(store.TaskFilter{
		UserID:    userID,
		From:      &today,
		To:        &today,
		Status:    &status,
		Recurring: &nonRecurring,
	})
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		recs = append(recs, Recommendation{Task: t, Score: MatchScore(t, energy), Energy: energy})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Task.Priority > recs[j].Task.Priority
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
