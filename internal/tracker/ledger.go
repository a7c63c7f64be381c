package tracker

import (
	"math"

	"github.com/andrevf/planday/internal/store"
)

// The goal ledger is the only path by which a goal's current_value moves
// as a side effect of task state. Each completed unit of work is credited
// exactly once; reversals debit exactly what was credited.

// ComputeDelta returns the signed ledger delta for a completion-state
// transition from (oldStatus, oldVal) to (newStatus, newVal).
func ComputeDelta(oldStatus, newStatus store.Status, oldVal, newVal *float64) float64 {
	wasDone := oldStatus == store.StatusCompleted
	isDone := newStatus == store.StatusCompleted
	switch {
	case !wasDone && isDone:
		return valueOf(newVal)
	case wasDone && !isDone:
		return -valueOf(oldVal)
	case wasDone && isDone:
		return valueOf(newVal) - valueOf(oldVal)
	default:
		return 0
	}
}

// ApplyDelta applies a signed delta to the goal's accumulated value and
// recomputes the derived progress fields. current_value is floored at 0;
// progress_percentage is capped at 100 (the value itself is not).
// A zero delta is a no-op and performs no write.
func ApplyDelta(tx *store.Tx, userID, goalID int64, delta float64) (*store.Goal, error) {
	g, err := tx.GetGoal(userID, goalID)
	if err != nil {
		return nil, notFoundOr(err, "goal %d not found", goalID)
	}
	if delta == 0 {
		return g, nil
	}

	current := g.CurrentValue + delta
	if current < 0 {
		current = 0
	}
	progress, completed := progressFor(current, g.TargetValue)
	if err := tx.SetGoalProgress(g.ID, current, progress, completed); err != nil {
		return nil, err
	}
	g.CurrentValue = current
	g.ProgressPercentage = progress
	g.IsCompleted = completed
	return g, nil
}

// SetGoalValue is the explicit manual override: it sets current_value
// directly, bypassing the delta policy, then recomputes progress.
func (s *Service) SetGoalValue(userID, goalID int64, value float64) (*store.Goal, error) {
	if value < 0 {
		return nil, Errorf(CodeValidation, "goal value must not be negative")
	}
	var g *store.Goal
	err := s.st.WithTx(func(tx *store.Tx) error {
		var err error
		g, err = tx.GetGoal(userID, goalID)
		if err != nil {
			return notFoundOr(err, "goal %d not found", goalID)
		}
		progress, completed := progressFor(value, g.TargetValue)
		if err := tx.SetGoalProgress(g.ID, value, progress, completed); err != nil {
			return err
		}
		g.CurrentValue = value
		g.ProgressPercentage = progress
		g.IsCompleted = completed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// progressFor derives (progress_percentage, is_completed) from a value
// pair. Both are pure functions of current and target and are never set
// independently.
func progressFor(current, target float64) (float64, bool) {
	if target <= 0 {
		return 0, false
	}
	progress := current / target * 100
	if progress > 100 {
		progress = 100
	}
	progress = math.Round(progress*100) / 100
	return progress, progress >= 100
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
