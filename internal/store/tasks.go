package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/recur"
)

const taskCols = `id, user_id, title, description, category_id, date, start_time, end_time,
	duration_minutes, priority, status, repeat_pattern, repeat_days, repeat_end_date,
	goal_id, target_value, actual_value, notes, energy_level, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*Task, error) {
	t := &Task{}
	var status, pattern, createdAt, updatedAt string
	var repeatEnd sql.NullString
	var goalID sql.NullInt64
	var targetValue, actualValue sql.NullFloat64

	err := r.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.CategoryID, &t.Date,
		&t.StartTime, &t.EndTime, &t.DurationMinutes, &t.Priority, &status,
		&pattern, &t.RepeatDays, &repeatEnd, &goalID, &targetValue, &actualValue,
		&t.Notes, &t.EnergyLevel, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.RepeatPattern = recur.Pattern(pattern)
	if repeatEnd.Valid {
		d, err := date.Parse(repeatEnd.String)
		if err != nil {
			return nil, fmt.Errorf("task %d repeat_end_date: %w", t.ID, err)
		}
		t.RepeatEndDate = &d
	}
	if goalID.Valid {
		t.GoalID = &goalID.Int64
	}
	if targetValue.Valid {
		t.TargetValue = &targetValue.Float64
	}
	if actualValue.Valid {
		t.ActualValue = &actualValue.Float64
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func nullDate(d *date.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *queries) CreateTask(t *Task) error {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	res, err := s.q.Exec(
		`INSERT INTO tasks (user_id, title, description, category_id, date, start_time, end_time,
			duration_minutes, priority, status, repeat_pattern, repeat_days, repeat_end_date,
			goal_id, target_value, actual_value, notes, energy_level, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Title, t.Description, t.CategoryID, t.Date.String(), t.StartTime, t.EndTime,
		t.DurationMinutes, t.Priority, string(t.Status), string(t.RepeatPattern), t.RepeatDays,
		nullDate(t.RepeatEndDate), nullInt(t.GoalID), nullFloat(t.TargetValue),
		nullFloat(t.ActualValue), t.Notes, t.EnergyLevel, nowStr, nowStr,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (s *queries) GetTask(userID, id int64) (*Task, error) {
	t, err := scanTask(s.q.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *queries) UpdateTask(t *Task) error {
	now := time.Now().UTC()
	_, err := s.q.Exec(
		`UPDATE tasks SET title = ?, description = ?, category_id = ?, date = ?, start_time = ?,
			end_time = ?, duration_minutes = ?, priority = ?, status = ?, repeat_pattern = ?,
			repeat_days = ?, repeat_end_date = ?, goal_id = ?, target_value = ?, actual_value = ?,
			notes = ?, energy_level = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.CategoryID, t.Date.String(), t.StartTime, t.EndTime,
		t.DurationMinutes, t.Priority, string(t.Status), string(t.RepeatPattern), t.RepeatDays,
		nullDate(t.RepeatEndDate), nullInt(t.GoalID), nullFloat(t.TargetValue),
		nullFloat(t.ActualValue), t.Notes, t.EnergyLevel, now.Format(time.RFC3339),
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	t.UpdatedAt = now
	return nil
}

func (s *queries) DeleteTask(userID, id int64) error {
	res, err := s.q.Exec(`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// SetRepeatEnd truncates a template's recurrence to end (inclusive).
func (s *queries) SetRepeatEnd(taskID int64, end date.Date) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.q.Exec(
		`UPDATE tasks SET repeat_end_date = ?, updated_at = ? WHERE id = ?`,
		end.String(), now, taskID,
	)
	if err != nil {
		return fmt.Errorf("set repeat end for task %d: %w", taskID, err)
	}
	return nil
}

func (s *queries) ListTasks(f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE user_id = ?`
	args := []any{f.UserID}

	if f.From != nil {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if f.To != nil {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	if f.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *f.CategoryID)
	}
	if f.GoalID != nil {
		query += ` AND goal_id = ?`
		args = append(args, *f.GoalID)
	}
	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*f.Status))
	}
	if f.Recurring != nil {
		if *f.Recurring {
			query += ` AND repeat_pattern != 'none'`
		} else {
			query += ` AND repeat_pattern = 'none'`
		}
	}
	query += ` ORDER BY date, start_time`

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListRecurring returns every template task for the user, regardless of date.
func (s *queries) ListRecurring(userID int64) ([]Task, error) {
	recurring := true
	return s.ListTasks(TaskFilter{UserID: userID, Recurring: &recurring})
}
