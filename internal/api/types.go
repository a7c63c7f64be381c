package api

import (
	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

// taskRequest is the create/update payload for a task. Cross-field and
// date rules are enforced by the service; the binding tags cover shape.
type taskRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	CategoryID      int64      `json:"category_id" binding:"required"`
	Date            date.Date  `json:"date"`
	StartTime       string     `json:"start_time" binding:"required,clock"`
	EndTime         string     `json:"end_time" binding:"required,clock"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=0"`
	Priority        int        `json:"priority" binding:"omitempty,min=1,max=4"`
	Status          string     `json:"status" binding:"omitempty,oneof=pending in_progress completed failed skipped"`
	RepeatPattern   string     `json:"repeat_pattern" binding:"omitempty,oneof=none daily weekdays weekends weekly monthly custom"`
	RepeatDays      string     `json:"repeat_days" binding:"omitempty,weekdaylist"`
	RepeatEndDate   *date.Date `json:"repeat_end_date"`
	GoalID          *int64     `json:"goal_id"`
	TargetValue     *float64   `json:"target_value" binding:"omitempty,gte=0"`
	ActualValue     *float64   `json:"actual_value" binding:"omitempty,gte=0"`
	Notes           string     `json:"notes"`
	EnergyLevel     string     `json:"energy_level" binding:"omitempty,oneof=high medium low"`
	IgnoreOverlap   bool       `json:"ignore_overlap"`
}

func (r *taskRequest) toInput() tracker.TaskInput {
	return tracker.TaskInput{
		Title:           r.Title,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		Priority:        r.Priority,
		Status:          store.Status(r.Status),
		RepeatPattern:   recur.Pattern(r.RepeatPattern),
		RepeatDays:      r.RepeatDays,
		RepeatEndDate:   r.RepeatEndDate,
		GoalID:          r.GoalID,
		TargetValue:     r.TargetValue,
		ActualValue:     r.ActualValue,
		Notes:           r.Notes,
		EnergyLevel:     r.EnergyLevel,
		IgnoreOverlap:   r.IgnoreOverlap,
	}
}

// completeRequest is the shorthand completion payload; status is implied.
type completeRequest struct {
	ActualValue *float64   `json:"actual_value" binding:"omitempty,gte=0"`
	Notes       *string    `json:"notes"`
	Date        *date.Date `json:"date"`
}

type statusRequest struct {
	Status      string     `json:"status" binding:"required,oneof=pending in_progress completed failed skipped"`
	ActualValue *float64   `json:"actual_value" binding:"omitempty,gte=0"`
	Notes       *string    `json:"notes"`
	Date        *date.Date `json:"date"`
}

// seriesRequest edits or deletes part of a recurring series.
type seriesRequest struct {
	Mode string     `json:"mode" binding:"required,oneof=only_this this_and_future all"`
	Date *date.Date `json:"date"`

	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	CategoryID  *int64   `json:"category_id"`
	StartTime   *string  `json:"start_time" binding:"omitempty,clock"`
	EndTime     *string  `json:"end_time" binding:"omitempty,clock"`
	Priority    *int     `json:"priority" binding:"omitempty,min=1,max=4"`
	Status      *string  `json:"status" binding:"omitempty,oneof=pending in_progress completed failed skipped"`
	ActualValue *float64 `json:"actual_value" binding:"omitempty,gte=0"`
	Notes       *string  `json:"notes"`
	GoalID      *int64   `json:"goal_id"`
	ClearGoal   bool     `json:"clear_goal"`
	TargetValue *float64 `json:"target_value" binding:"omitempty,gte=0"`
	EnergyLevel *string  `json:"energy_level" binding:"omitempty,oneof=high medium low"`
}

func (r *seriesRequest) toPatch() tracker.Patch {
	p := tracker.Patch{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Priority:    r.Priority,
		ActualValue: r.ActualValue,
		Notes:       r.Notes,
		GoalID:      r.GoalID,
		ClearGoal:   r.ClearGoal,
		TargetValue: r.TargetValue,
		EnergyLevel: r.EnergyLevel,
	}
	if r.Status != nil {
		st := store.Status(*r.Status)
		p.Status = &st
	}
	return p
}

type goalRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	CategoryID      int64     `json:"category_id" binding:"required"`
	Period          string    `json:"period" binding:"required,oneof=weekly monthly quarterly biannual yearly"`
	StartDate       date.Date `json:"start_date"`
	EndDate         date.Date `json:"end_date"`
	TargetValue     float64   `json:"target_value" binding:"required,gt=0"`
	MeasurementUnit string    `json:"measurement_unit" binding:"required"`
	CustomUnit      string    `json:"custom_unit"`
}

type goalValueRequest struct {
	Value float64 `json:"value" binding:"gte=0"`
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type energyProfileRequest struct {
	EarlyMorning   int `json:"early_morning" binding:"required,min=1,max=10"`
	MidMorning     int `json:"mid_morning" binding:"required,min=1,max=10"`
	LateMorning    int `json:"late_morning" binding:"required,min=1,max=10"`
	EarlyAfternoon int `json:"early_afternoon" binding:"required,min=1,max=10"`
	LateAfternoon  int `json:"late_afternoon" binding:"required,min=1,max=10"`
	Evening        int `json:"evening" binding:"required,min=1,max=10"`
	Night          int `json:"night" binding:"required,min=1,max=10"`
	MondayMod      int `json:"monday_mod" binding:"min=-5,max=5"`
	TuesdayMod     int `json:"tuesday_mod" binding:"min=-5,max=5"`
	WednesdayMod   int `json:"wednesday_mod" binding:"min=-5,max=5"`
	ThursdayMod    int `json:"thursday_mod" binding:"min=-5,max=5"`
	FridayMod      int `json:"friday_mod" binding:"min=-5,max=5"`
	SaturdayMod    int `json:"saturday_mod" binding:"min=-5,max=5"`
	SundayMod      int `json:"sunday_mod" binding:"min=-5,max=5"`
}

type preferencesRequest struct {
	DefaultView           string  `json:"default_view" binding:"omitempty,oneof=day week month"`
	WeekStart             int     `json:"week_start" binding:"min=0,max=6"`
	WakeUpTime            *string `json:"wake_up_time" binding:"omitempty,clock"`
	SleepTime             *string `json:"sleep_time" binding:"omitempty,clock"`
	WorkStartTime         *string `json:"work_start_time" binding:"omitempty,clock"`
	WorkEndTime           *string `json:"work_end_time" binding:"omitempty,clock"`
	BreakStartTime        *string `json:"break_start_time" binding:"omitempty,clock"`
	BreakEndTime          *string `json:"break_end_time" binding:"omitempty,clock"`
	Theme                 string  `json:"theme" binding:"omitempty,oneof=light dark system"`
	ReminderBeforeMinutes int     `json:"reminder_before_minutes" binding:"min=0,max=1440"`
}
