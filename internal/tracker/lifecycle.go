package tracker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
	"github.com/andrevf/planday/internal/store"
)

// Service orchestrates task state changes. Every mutating operation runs
// inside one store transaction spanning the entity change, the occurrence
// upsert/delete and the ledger delta, so a failure partway leaves no
// partial goal adjustment.
type Service struct {
	st  *store.Store
	log *slog.Logger
}

func New(st *store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{st: st, log: log}
}

// Store exposes the underlying store for plain reads.
func (s *Service) Store() *store.Store { return s.st }

// TaskInput carries the writable fields of a task.
type TaskInput struct {
	Title           string
	Description     string
	CategoryID      int64
	Date            date.Date
	StartTime       string // HH:MM
	EndTime         string // HH:MM
	DurationMinutes int    // 0 = derive from start/end
	Priority        int    // 0 = default 2
	Status          store.Status
	RepeatPattern   recur.Pattern
	RepeatDays      string
	RepeatEndDate   *date.Date
	GoalID          *int64
	TargetValue     *float64
	ActualValue     *float64
	Notes           string
	EnergyLevel     string
	IgnoreOverlap   bool
}

func (in *TaskInput) normalize() {
	if in.Priority == 0 {
		in.Priority = 2
	}
	if in.Status == "" {
		in.Status = store.StatusPending
	}
	if in.RepeatPattern == "" {
		in.RepeatPattern = recur.None
	}
	if in.EnergyLevel == "" {
		in.EnergyLevel = store.EnergyMedium
	}
}

func (in *TaskInput) validate() error {
	if in.Title == "" {
		return Errorf(CodeValidation, "title is required")
	}
	if in.Date.IsZero() {
		return Errorf(CodeValidation, "date is required")
	}
	if _, err := parseClock(in.StartTime); err != nil {
		return Errorf(CodeValidation, "invalid start_time %q: expected HH:MM", in.StartTime)
	}
	if _, err := parseClock(in.EndTime); err != nil {
		return Errorf(CodeValidation, "invalid end_time %q: expected HH:MM", in.EndTime)
	}
	if in.Priority < 1 || in.Priority > 4 {
		return Errorf(CodeValidation, "priority %d out of range 1-4", in.Priority)
	}
	if _, err := store.ParseStatus(string(in.Status)); err != nil {
		return Errorf(CodeValidation, "%v", err)
	}
	if _, err := recur.ParsePattern(string(in.RepeatPattern)); err != nil {
		return Errorf(CodeValidation, "%v", err)
	}
	if in.RepeatPattern == recur.Custom {
		if _, err := recur.ParseDays(in.RepeatDays); err != nil {
			return Errorf(CodeValidation, "invalid repeat_days: %v", err)
		}
	}
	if in.RepeatEndDate != nil && in.RepeatEndDate.Before(in.Date) {
		return Errorf(CodeValidation, "repeat_end_date %s is before task date %s", in.RepeatEndDate, in.Date)
	}
	switch in.EnergyLevel {
	case store.EnergyHigh, store.EnergyMedium, store.EnergyLow:
	default:
		return Errorf(CodeValidation, "unknown energy level %q", in.EnergyLevel)
	}
	return nil
}

// parseClock parses HH:MM into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// deriveDuration computes minutes between start and end, treating
// end < start as crossing midnight.
func deriveDuration(startTime, endTime string) int {
	start, _ := parseClock(startTime)
	end, _ := parseClock(endTime)
	if end < start {
		end += 24 * 60
	}
	return end - start
}

// timeSpan returns the [start, end) minute interval of a task on its
// date, extending past 1440 when the task crosses midnight.
func timeSpan(startTime, endTime string) (int, int) {
	start, _ := parseClock(startTime)
	end, _ := parseClock(endTime)
	if end < start {
		end += 24 * 60
	}
	return start, end
}

// checkOverlap rejects a non-recurring task whose [start, end) interval
// collides with another of the user's tasks on the same date.
func checkOverlap(tx *store.Tx, userID int64, d date.Date, startTime, endTime string, excludeID int64) error {
	newStart, newEnd := timeSpan(startTime, endTime)

	others, err := tx.ListTasks(store.TaskFilter{UserID: userID, From: &d, To: &d})
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.ID == excludeID {
			continue
		}
		otherStart, otherEnd := timeSpan(other.StartTime, other.EndTime)
		if newStart < otherEnd && newEnd > otherStart {
			return Errorf(CodeConflict, "task overlaps %q (%s-%s)", other.Title, other.StartTime, other.EndTime).
				WithDetails(map[string]any{
					"task_id":    other.ID,
					"title":      other.Title,
					"start_time": other.StartTime,
					"end_time":   other.EndTime,
				})
		}
	}
	return nil
}

// verifyRefs checks that the category and goal referenced by the input
// exist (the goal owner-scoped).
func verifyRefs(tx *store.Tx, userID int64, categoryID int64, goalID *int64) error {
	if _, err := tx.GetCategory(categoryID); err != nil {
		return notFoundOr(err, "category %d not found", categoryID)
	}
	if goalID != nil {
		if _, err := tx.GetGoal(userID, *goalID); err != nil {
			return notFoundOr(err, "goal %d not found", *goalID)
		}
	}
	return nil
}

// CreateTask validates and persists a task. Recurring tasks with an end
// date get their occurrence rows materialized eagerly over the whole
// span; a non-recurring task created already completed credits its goal.
func (s *Service) CreateTask(userID int64, in TaskInput) (*store.Task, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &store.Task{
		UserID:          userID,
		Title:           in.Title,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		Date:            in.Date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: in.DurationMinutes,
		Priority:        in.Priority,
		Status:          in.Status,
		RepeatPattern:   in.RepeatPattern,
		RepeatDays:      in.RepeatDays,
		RepeatEndDate:   in.RepeatEndDate,
		GoalID:          in.GoalID,
		TargetValue:     in.TargetValue,
		ActualValue:     in.ActualValue,
		Notes:           in.Notes,
		EnergyLevel:     in.EnergyLevel,
	}
	if t.DurationMinutes == 0 {
		t.DurationMinutes = deriveDuration(t.StartTime, t.EndTime)
	}
	if t.RepeatPattern != recur.Custom {
		t.RepeatDays = ""
	}
	if t.Recurring() {
		// Per-date state of a template lives in its occurrences.
		t.Status = store.StatusPending
		t.ActualValue = nil
	}

	err := s.st.WithTx(func(tx *store.Tx) error {
		if err := verifyRefs(tx, userID, t.CategoryID, t.GoalID); err != nil {
			return err
		}
		if !t.Recurring() && !in.IgnoreOverlap {
			if err := checkOverlap(tx, userID, t.Date, t.StartTime, t.EndTime, 0); err != nil {
				return err
			}
		}
		if err := tx.CreateTask(t); err != nil {
			return err
		}

		if t.Recurring() && t.RepeatEndDate != nil {
			for _, d := range t.Rule().Expand(t.Date, *t.RepeatEndDate) {
				o := &store.Occurrence{TaskID: t.ID, Date: d, Status: store.StatusPending}
				if err := tx.CreateOccurrence(o); err != nil {
					return err
				}
			}
		}

		if !t.Recurring() && t.Status == store.StatusCompleted && t.GoalID != nil {
			if _, err := ApplyDelta(tx, userID, *t.GoalID, valueOf(t.ActualValue)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task created", "task_id", t.ID, "user_id", userID, "pattern", string(t.RepeatPattern))
	return t, nil
}

// UpdateTask replaces a task's fields, keeping the goal ledger
// consistent across status, value and goal changes. Switching a task
// between recurring and non-recurring is rejected; delete and recreate
// instead.
func (s *Service) UpdateTask(userID, taskID int64, in TaskInput) (*store.Task, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	var t *store.Task
	err := s.st.WithTx(func(tx *store.Tx) error {
		var err error
		t, err = tx.GetTask(userID, taskID)
		if err != nil {
			return notFoundOr(err, "task %d not found", taskID)
		}
		if t.Recurring() != (in.RepeatPattern != recur.None) {
			return Errorf(CodeValidation, "cannot change a task between recurring and non-recurring")
		}
		if err := verifyRefs(tx, userID, in.CategoryID, in.GoalID); err != nil {
			return err
		}

		oldGoal, oldStatus, oldVal := t.GoalID, t.Status, t.ActualValue

		t.Title = in.Title
		t.Description = in.Description
		t.CategoryID = in.CategoryID
		t.Date = in.Date
		t.StartTime = in.StartTime
		t.EndTime = in.EndTime
		t.DurationMinutes = in.DurationMinutes
		if t.DurationMinutes == 0 {
			t.DurationMinutes = deriveDuration(t.StartTime, t.EndTime)
		}
		t.Priority = in.Priority
		t.Status = in.Status
		t.RepeatPattern = in.RepeatPattern
		t.RepeatDays = in.RepeatDays
		if t.RepeatPattern != recur.Custom {
			t.RepeatDays = ""
		}
		t.RepeatEndDate = in.RepeatEndDate
		t.GoalID = in.GoalID
		t.TargetValue = in.TargetValue
		t.ActualValue = in.ActualValue
		t.Notes = in.Notes
		t.EnergyLevel = in.EnergyLevel
		if t.Recurring() {
			t.Status = oldStatus
			t.ActualValue = oldVal
		}

		if !t.Recurring() && !in.IgnoreOverlap {
			if err := checkOverlap(tx, userID, t.Date, t.StartTime, t.EndTime, t.ID); err != nil {
				return err
			}
		}
		if err := tx.UpdateTask(t); err != nil {
			return err
		}

		return s.settleGoalChange(tx, userID, t, oldGoal, oldStatus, oldVal)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// settleGoalChange applies the ledger consequences of an edited task row:
// same-goal transitions follow the delta policy; a goal change debits the
// old goal and credits the new one independently. For templates the row
// itself carries no completion state, but reassigning the goal moves the
// accumulated occurrence contributions.
func (s *Service) settleGoalChange(tx *store.Tx, userID int64, t *store.Task, oldGoal *int64, oldStatus store.Status, oldVal *float64) error {
	sameGoal := (oldGoal == nil && t.GoalID == nil) ||
		(oldGoal != nil && t.GoalID != nil && *oldGoal == *t.GoalID)

	if sameGoal {
		if t.GoalID == nil {
			return nil
		}
		delta := ComputeDelta(oldStatus, t.Status, oldVal, t.ActualValue)
		_, err := ApplyDelta(tx, userID, *t.GoalID, delta)
		return err
	}

	var moved float64
	if t.Recurring() {
		sum, err := tx.SumCompletedValues(t.ID, nil)
		if err != nil {
			return err
		}
		moved += sum
	}
	if oldStatus == store.StatusCompleted {
		moved += valueOf(oldVal)
	}
	newContribution := moved
	if !t.Recurring() {
		// The row's own contribution to the new goal follows its
		// current state, not its old one.
		newContribution = 0
		if t.Status == store.StatusCompleted {
			newContribution = valueOf(t.ActualValue)
		}
	}

	if oldGoal != nil {
		if _, err := ApplyDelta(tx, userID, *oldGoal, -moved); err != nil {
			return err
		}
	}
	if t.GoalID != nil {
		if _, err := ApplyDelta(tx, userID, *t.GoalID, newContribution); err != nil {
			return err
		}
	}
	return nil
}

// StatusChange is a status transition request for a task or one
// occurrence of a recurring task.
type StatusChange struct {
	Status      store.Status
	ActualValue *float64
	Notes       *string
	Date        *date.Date // occurrence date; defaults to today
}

// StatusResult reports the entity the transition landed on and the goal
// state after the ledger delta, if any.
type StatusResult struct {
	Task       *store.Task       `json:"task"`
	Occurrence *store.Occurrence `json:"occurrence,omitempty"` // nil for non-recurring tasks
	Goal       *store.Goal       `json:"goal,omitempty"`       // nil when the task has no goal
}

// SetStatus performs a completion-state transition. For recurring tasks
// the state lands on the (task, date) occurrence; for non-recurring
// tasks on the task row. The goal ledger is invoked exactly once with
// the delta derived from the captured prior state.
func (s *Service) SetStatus(userID, taskID int64, ch StatusChange) (*StatusResult, error) {
	if _, err := store.ParseStatus(string(ch.Status)); err != nil {
		return nil, Errorf(CodeValidation, "%v", err)
	}

	res := &StatusResult{}
	err := s.st.WithTx(func(tx *store.Tx) error {
		t, err := tx.GetTask(userID, taskID)
		if err != nil {
			return notFoundOr(err, "task %d not found", taskID)
		}
		res.Task = t

		var oldStatus store.Status
		var oldVal, newVal *float64

		if t.Recurring() {
			d := date.Today()
			if ch.Date != nil {
				d = *ch.Date
			}
			cur, prior, err := tx.UpsertOccurrence(t.ID, d, ch.Status, ch.ActualValue, ch.Notes)
			if err != nil {
				return err
			}
			res.Occurrence = cur
			oldStatus = store.StatusPending
			if prior != nil {
				oldStatus = prior.Status
				oldVal = prior.ActualValue
			}
			newVal = cur.ActualValue
		} else {
			oldStatus = t.Status
			oldVal = t.ActualValue
			t.Status = ch.Status
			if ch.ActualValue != nil {
				t.ActualValue = ch.ActualValue
			}
			if ch.Notes != nil {
				t.Notes = *ch.Notes
			}
			if err := tx.UpdateTask(t); err != nil {
				return err
			}
			newVal = t.ActualValue
		}

		if t.GoalID != nil {
			delta := ComputeDelta(oldStatus, ch.Status, oldVal, newVal)
			g, err := ApplyDelta(tx, userID, *t.GoalID, delta)
			if err != nil {
				return err
			}
			res.Goal = g
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteTask removes a task and its occurrences. Completed contributions
// are reversed first, since deletion is irreversible and the goal must
// reflect the net effect.
func (s *Service) DeleteTask(userID, taskID int64) error {
	return s.st.WithTx(func(tx *store.Tx) error {
		t, err := tx.GetTask(userID, taskID)
		if err != nil {
			return notFoundOr(err, "task %d not found", taskID)
		}
		if err := s.reverseAllContributions(tx, userID, t); err != nil {
			return err
		}
		return tx.DeleteTask(userID, taskID)
	})
}

// reverseAllContributions debits the task's entire credited value: its
// own row if completed, plus every completed occurrence.
func (s *Service) reverseAllContributions(tx *store.Tx, userID int64, t *store.Task) error {
	if t.GoalID == nil {
		return nil
	}
	total := 0.0
	if t.Status == store.StatusCompleted {
		total += valueOf(t.ActualValue)
	}
	if t.Recurring() {
		sum, err := tx.SumCompletedValues(t.ID, nil)
		if err != nil {
			return err
		}
		total += sum
	}
	if total == 0 {
		return nil
	}
	_, err := ApplyDelta(tx, userID, *t.GoalID, -total)
	return err
}

// SeriesMode selects how much of a recurring series an operation covers.
type SeriesMode string

const (
	OnlyThis      SeriesMode = "only_this"
	ThisAndFuture SeriesMode = "this_and_future"
	All           SeriesMode = "all"
)

// ParseSeriesMode validates a mode string.
func ParseSeriesMode(s string) (SeriesMode, error) {
	switch m := SeriesMode(s); m {
	case OnlyThis, ThisAndFuture, All:
		return m, nil
	default:
		return "", Errorf(CodeValidation, "unknown mode %q", s)
	}
}

// DeleteRecurring deletes part of a recurring series.
//
// only_this reverses and deletes the single occurrence, or records a
// skipped marker so the date is never projected again. this_and_future
// truncates the series to date-1 after reversing contributions from date
// onward (collapsing to full deletion when date <= anchor). all deletes
// the whole task.
func (s *Service) DeleteRecurring(userID, taskID int64, mode SeriesMode, d *date.Date) error {
	if mode != All && d == nil {
		return Errorf(CodeValidation, "date is required for mode %q", string(mode))
	}

	return s.st.WithTx(func(tx *store.Tx) error {
		t, err := tx.GetTask(userID, taskID)
		if err != nil {
			return notFoundOr(err, "task %d not found", taskID)
		}
		if mode != All && !t.Recurring() {
			return Errorf(CodeValidation, "task %d is not recurring", taskID)
		}

		switch mode {
		case OnlyThis:
			occ, err := tx.GetOccurrence(t.ID, *d)
			if err != nil {
				return err
			}
			if occ != nil && occ.Status == store.StatusCompleted && t.GoalID != nil {
				if _, err := ApplyDelta(tx, userID, *t.GoalID, -valueOf(occ.ActualValue)); err != nil {
					return err
				}
			}
			// The skipped tombstone excludes the date from every future
			// projection; plain deletion would let it reappear.
			notes := "removed by user"
			_, _, err = tx.UpsertOccurrence(t.ID, *d, store.StatusSkipped, nil, &notes)
			return err

		case ThisAndFuture:
			if !d.After(t.Date) {
				if err := s.reverseAllContributions(tx, userID, t); err != nil {
					return err
				}
				return tx.DeleteTask(userID, t.ID)
			}
			if t.GoalID != nil {
				sum, err := tx.SumCompletedValues(t.ID, d)
				if err != nil {
					return err
				}
				if _, err := ApplyDelta(tx, userID, *t.GoalID, -sum); err != nil {
					return err
				}
			}
			if err := tx.SetRepeatEnd(t.ID, d.AddDays(-1)); err != nil {
				return err
			}
			return tx.DeleteOccurrencesFrom(t.ID, *d)

		case All:
			if err := s.reverseAllContributions(tx, userID, t); err != nil {
				return err
			}
			return tx.DeleteTask(userID, t.ID)

		default:
			return Errorf(CodeValidation, "unknown mode %q", string(mode))
		}
	})
}

// Patch carries the optional fields of a recurring-series edit. Nil
// fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	CategoryID  *int64
	StartTime   *string
	EndTime     *string
	Priority    *int
	Status      *store.Status
	ActualValue *float64
	Notes       *string
	GoalID      *int64
	ClearGoal   bool
	TargetValue *float64
	EnergyLevel *string
}

func (p *Patch) validate() error {
	if p.StartTime != nil {
		if _, err := parseClock(*p.StartTime); err != nil {
			return Errorf(CodeValidation, "invalid start_time %q: expected HH:MM", *p.StartTime)
		}
	}
	if p.EndTime != nil {
		if _, err := parseClock(*p.EndTime); err != nil {
			return Errorf(CodeValidation, "invalid end_time %q: expected HH:MM", *p.EndTime)
		}
	}
	if p.Priority != nil && (*p.Priority < 1 || *p.Priority > 4) {
		return Errorf(CodeValidation, "priority %d out of range 1-4", *p.Priority)
	}
	if p.Status != nil {
		if _, err := store.ParseStatus(string(*p.Status)); err != nil {
			return Errorf(CodeValidation, "%v", err)
		}
	}
	if p.EnergyLevel != nil {
		switch *p.EnergyLevel {
		case store.EnergyHigh, store.EnergyMedium, store.EnergyLow:
		default:
			return Errorf(CodeValidation, "unknown energy level %q", *p.EnergyLevel)
		}
	}
	if p.GoalID != nil && p.ClearGoal {
		return Errorf(CodeValidation, "goal_id and clear_goal are mutually exclusive")
	}
	return nil
}

// apply writes the patch's template-level fields onto t and recomputes
// the duration when a time changed.
func (p *Patch) apply(t *store.Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	timesChanged := false
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
		timesChanged = true
	}
	if p.EndTime != nil {
		t.EndTime = *p.EndTime
		timesChanged = true
	}
	if timesChanged {
		t.DurationMinutes = deriveDuration(t.StartTime, t.EndTime)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.GoalID != nil {
		t.GoalID = p.GoalID
	}
	if p.ClearGoal {
		t.GoalID = nil
	}
	if p.TargetValue != nil {
		t.TargetValue = p.TargetValue
	}
	if p.EnergyLevel != nil {
		t.EnergyLevel = *p.EnergyLevel
	}
}

// changesGoal reports whether applying the patch would change the
// task's goal reference.
func (p *Patch) changesGoal(t *store.Task) bool {
	if p.ClearGoal {
		return t.GoalID != nil
	}
	if p.GoalID == nil {
		return false
	}
	return t.GoalID == nil || *t.GoalID != *p.GoalID
}

// EditRecurring edits part of a recurring series.
//
// only_this patches a single occurrence. this_and_future patches the
// template in place when date <= anchor, otherwise splits the series:
// the old template is truncated to date-1 and a new template starting
// at date carries the patched fields and the occurrences from date on.
// all patches the template and propagates status/actual_value/notes to
// every existing occurrence.
func (s *Service) EditRecurring(userID, taskID int64, mode SeriesMode, d *date.Date, p Patch) (*store.Task, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if mode != All && d == nil {
		return nil, Errorf(CodeValidation, "date is required for mode %q", string(mode))
	}

	var result *store.Task
	err := s.st.WithTx(func(tx *store.Tx) error {
		t, err := tx.GetTask(userID, taskID)
		if err != nil {
			return notFoundOr(err, "task %d not found", taskID)
		}
		if !t.Recurring() {
			return Errorf(CodeValidation, "task %d is not recurring", taskID)
		}
		if p.GoalID != nil {
			if _, err := tx.GetGoal(userID, *p.GoalID); err != nil {
				return notFoundOr(err, "goal %d not found", *p.GoalID)
			}
		}
		if p.CategoryID != nil {
			if _, err := tx.GetCategory(*p.CategoryID); err != nil {
				return notFoundOr(err, "category %d not found", *p.CategoryID)
			}
		}
		result = t

		switch mode {
		case OnlyThis:
			return s.patchOccurrence(tx, userID, t, *d, p)
		case ThisAndFuture:
			if !d.After(t.Date) {
				return s.patchTemplate(tx, userID, t, p)
			}
			split, err := s.splitSeries(tx, userID, t, *d, p)
			if err != nil {
				return err
			}
			result = split
			return nil
		case All:
			if err := s.patchTemplate(tx, userID, t, p); err != nil {
				return err
			}
			return s.propagateToOccurrences(tx, userID, t, p)
		default:
			return Errorf(CodeValidation, "unknown mode %q", string(mode))
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// patchOccurrence upserts one occurrence with the patch's per-date
// fields, keeping the ledger consistent.
func (s *Service) patchOccurrence(tx *store.Tx, userID int64, t *store.Task, d date.Date, p Patch) error {
	status := store.StatusPending
	if prior, err := tx.GetOccurrence(t.ID, d); err != nil {
		return err
	} else if prior != nil {
		status = prior.Status
	}
	if p.Status != nil {
		status = *p.Status
	}

	cur, prior, err := tx.UpsertOccurrence(t.ID, d, status, p.ActualValue, p.Notes)
	if err != nil {
		return err
	}
	if t.GoalID == nil {
		return nil
	}
	oldStatus := store.StatusPending
	var oldVal *float64
	if prior != nil {
		oldStatus = prior.Status
		oldVal = prior.ActualValue
	}
	delta := ComputeDelta(oldStatus, cur.Status, oldVal, cur.ActualValue)
	_, err = ApplyDelta(tx, userID, *t.GoalID, delta)
	return err
}

// patchTemplate applies the patch to the template row, moving the
// series' accumulated contributions when the goal changes.
func (s *Service) patchTemplate(tx *store.Tx, userID int64, t *store.Task, p Patch) error {
	oldGoal, oldStatus, oldVal := t.GoalID, t.Status, t.ActualValue
	p.apply(t)
	if err := tx.UpdateTask(t); err != nil {
		return err
	}
	return s.settleGoalChange(tx, userID, t, oldGoal, oldStatus, oldVal)
}

// splitSeries truncates t at d-1 and creates a new template starting at
// d carrying the patched fields. Occurrences from d onward move to the
// new template; if the patch changes the goal, their completed values
// move with them.
func (s *Service) splitSeries(tx *store.Tx, userID int64, t *store.Task, d date.Date, p Patch) (*store.Task, error) {
	split := *t
	split.ID = 0
	split.Date = d
	split.Status = store.StatusPending
	split.ActualValue = nil
	p.apply(&split)

	if err := tx.CreateTask(&split); err != nil {
		return nil, err
	}

	goalChanged := p.changesGoal(t)
	var movedSum float64
	if goalChanged {
		sum, err := tx.SumCompletedValues(t.ID, &d)
		if err != nil {
			return nil, err
		}
		movedSum = sum
	}

	if err := tx.ReassignOccurrencesFrom(t.ID, split.ID, d); err != nil {
		return nil, err
	}
	if err := tx.SetRepeatEnd(t.ID, d.AddDays(-1)); err != nil {
		return nil, err
	}

	if goalChanged && movedSum != 0 {
		if t.GoalID != nil {
			if _, err := ApplyDelta(tx, userID, *t.GoalID, -movedSum); err != nil {
				return nil, err
			}
		}
		if split.GoalID != nil {
			if _, err := ApplyDelta(tx, userID, *split.GoalID, movedSum); err != nil {
				return nil, err
			}
		}
	}
	return &split, nil
}

// propagateToOccurrences pushes the patch's per-date fields onto every
// existing occurrence of the template, one ledger delta each.
func (s *Service) propagateToOccurrences(tx *store.Tx, userID int64, t *store.Task, p Patch) error {
	if p.Status == nil && p.ActualValue == nil && p.Notes == nil {
		return nil
	}
	occs, err := tx.ListOccurrences(t.ID)
	if err != nil {
		return err
	}
	for _, occ := range occs {
		status := occ.Status
		if p.Status != nil {
			status = *p.Status
		}
		cur, prior, err := tx.UpsertOccurrence(t.ID, occ.Date, status, p.ActualValue, p.Notes)
		if err != nil {
			return err
		}
		if t.GoalID == nil {
			continue
		}
		oldStatus := store.StatusPending
		var oldVal *float64
		if prior != nil {
			oldStatus = prior.Status
			oldVal = prior.ActualValue
		}
		delta := ComputeDelta(oldStatus, cur.Status, oldVal, cur.ActualValue)
		if _, err := ApplyDelta(tx, userID, *t.GoalID, delta); err != nil {
			return err
		}
	}
	return nil
}
