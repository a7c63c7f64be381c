package store

import (
	"fmt"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
)

// Status is the completion state of a task or occurrence.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusSkipped:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Energy levels a task can be tagged with.
const (
	EnergyHigh   = "high"
	EnergyMedium = "medium"
	EnergyLow    = "low"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Goal struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"-"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	CategoryID         int64     `json:"category_id"`
	Period             string    `json:"period"` // weekly, monthly, quarterly, biannual, yearly
	StartDate          date.Date `json:"start_date"`
	EndDate            date.Date `json:"end_date"`
	TargetValue        float64   `json:"target_value"`
	CurrentValue       float64   `json:"current_value"`
	MeasurementUnit    string    `json:"measurement_unit"`
	CustomUnit         string    `json:"custom_unit,omitempty"`
	IsCompleted        bool      `json:"is_completed"`
	ProgressPercentage float64   `json:"progress_percentage"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Task is either a single schedulable task (repeat_pattern none) or a
// template whose per-date state lives in Occurrence rows.
type Task struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"-"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	CategoryID      int64         `json:"category_id"`
	Date            date.Date     `json:"date"`
	StartTime       string        `json:"start_time"` // HH:MM
	EndTime         string        `json:"end_time"`   // HH:MM
	DurationMinutes int           `json:"duration_minutes"`
	Priority        int           `json:"priority"` // 1=low .. 4=urgent
	Status          Status        `json:"status"`
	RepeatPattern   recur.Pattern `json:"repeat_pattern"`
	RepeatDays      string        `json:"repeat_days,omitempty"` // custom pattern weekday list, e.g. "0,2,4"
	RepeatEndDate   *date.Date    `json:"repeat_end_date,omitempty"`
	GoalID          *int64        `json:"goal_id,omitempty"`
	TargetValue     *float64      `json:"target_value,omitempty"`
	ActualValue     *float64      `json:"actual_value,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	EnergyLevel     string        `json:"energy_level"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Recurring reports whether the task is a recurrence template.
func (t *Task) Recurring() bool {
	return t.RepeatPattern != recur.None
}

// Rule builds the recurrence rule for this task. Call only on tasks that
// were validated at creation; RepeatDays is assumed parseable.
func (t *Task) Rule() recur.Rule {
	var days []int
	if t.RepeatPattern == recur.Custom {
		days, _ = recur.ParseDays(t.RepeatDays)
	}
	return recur.Rule{
		Anchor:  t.Date,
		Pattern: t.RepeatPattern,
		Days:    days,
		Until:   t.RepeatEndDate,
	}
}

// Occurrence is the persisted per-date state of one instance of a
// recurring task. At most one row exists per (task, date).
type Occurrence struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	Date        date.Date `json:"date"`
	Status      Status    `json:"status"`
	ActualValue *float64  `json:"actual_value,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EnergyProfile holds a user's energy curve over the day (1-10 per
// period) plus per-weekday modifiers.
type EnergyProfile struct {
	UserID         int64 `json:"-"`
	EarlyMorning   int   `json:"early_morning"`   // 05-08
	MidMorning     int   `json:"mid_morning"`     // 08-11
	LateMorning    int   `json:"late_morning"`    // 11-14
	EarlyAfternoon int   `json:"early_afternoon"` // 14-17
	LateAfternoon  int   `json:"late_afternoon"`  // 17-20
	Evening        int   `json:"evening"`         // 20-23
	Night          int   `json:"night"`           // 23-05
	// Modifiers indexed Monday..Sunday.
	MondayMod    int `json:"monday_mod"`
	TuesdayMod   int `json:"tuesday_mod"`
	WednesdayMod int `json:"wednesday_mod"`
	ThursdayMod  int `json:"thursday_mod"`
	FridayMod    int `json:"friday_mod"`
	SaturdayMod  int `json:"saturday_mod"`
	SundayMod    int `json:"sunday_mod"`
}

// DayModifier returns the modifier for weekday wd (0=Monday .. 6=Sunday).
func (p *EnergyProfile) DayModifier(wd int) int {
	mods := [7]int{p.MondayMod, p.TuesdayMod, p.WednesdayMod, p.ThursdayMod, p.FridayMod, p.SaturdayMod, p.SundayMod}
	if wd < 0 || wd > 6 {
		return 0
	}
	return mods[wd]
}

// DefaultEnergyProfile returns the profile used when a user has not
// configured one.
func DefaultEnergyProfile(userID int64) *EnergyProfile {
	return &EnergyProfile{
		UserID:         userID,
		EarlyMorning:   5,
		MidMorning:     7,
		LateMorning:    6,
		EarlyAfternoon: 5,
		LateAfternoon:  4,
		Evening:        3,
		Night:          2,
		SaturdayMod:    1,
		SundayMod:      1,
	}
}

type UserPreference struct {
	UserID                int64   `json:"-"`
	DefaultView           string  `json:"default_view"` // day, week, month
	WeekStart             int     `json:"week_start"`   // 0=Monday, 6=Sunday
	WakeUpTime            *string `json:"wake_up_time,omitempty"`
	SleepTime             *string `json:"sleep_time,omitempty"`
	WorkStartTime         *string `json:"work_start_time,omitempty"`
	WorkEndTime           *string `json:"work_end_time,omitempty"`
	BreakStartTime        *string `json:"break_start_time,omitempty"`
	BreakEndTime          *string `json:"break_end_time,omitempty"`
	Theme                 string  `json:"theme"`
	ReminderBeforeMinutes int     `json:"reminder_before_minutes"`
}

// DefaultPreferences returns the preference row used when a user has
// not saved one.
func DefaultPreferences(userID int64) *UserPreference {
	return &UserPreference{
		UserID:                userID,
		DefaultView:           "day",
		Theme:                 "system",
		ReminderBeforeMinutes: 15,
	}
}

// TaskFilter narrows ListTasks queries. Zero fields are ignored.
type TaskFilter struct {
	UserID     int64
	From       *date.Date
	To         *date.Date
	CategoryID *int64
	GoalID     *int64
	Status     *Status
	Recurring  *bool // true: templates only, false: non-recurring only
}
