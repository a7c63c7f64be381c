package store

import (
	"database/sql"
	"fmt"
	"time"
)

const goalCols = `id, user_id, title, description, category_id, period, start_date, end_date,
	target_value, current_value, measurement_unit, custom_unit, is_completed,
	progress_percentage, created_at, updated_at`

func scanGoal(r rowScanner) (*Goal, error) {
	g := &Goal{}
	var completed int
	var createdAt, updatedAt string

	err := r.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.CategoryID, &g.Period,
		&g.StartDate, &g.EndDate, &g.TargetValue, &g.CurrentValue, &g.MeasurementUnit,
		&g.CustomUnit, &completed, &g.ProgressPercentage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	g.IsCompleted = completed == 1
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	g.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return g, nil
}

func (s *queries) CreateGoal(g *Goal) error {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	res, err := s.q.Exec(
		`INSERT INTO goals (user_id, title, description, category_id, period, start_date, end_date,
			target_value, current_value, measurement_unit, custom_unit, is_completed,
			progress_percentage, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Title, g.Description, g.CategoryID, g.Period, g.StartDate.String(),
		g.EndDate.String(), g.TargetValue, g.CurrentValue, g.MeasurementUnit, g.CustomUnit,
		boolToInt(g.IsCompleted), g.ProgressPercentage, nowStr, nowStr,
	)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	g.ID, _ = res.LastInsertId()
	g.CreatedAt, g.UpdatedAt = now, now
	return nil
}

func (s *queries) GetGoal(userID, id int64) (*Goal, error) {
	g, err := scanGoal(s.q.QueryRow(
		`SELECT `+goalCols+` FROM goals WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("get goal %d: %w", id, err)
	}
	return g, nil
}

func (s *queries) ListGoals(userID int64) ([]Goal, error) {
	rows, err := s.q.Query(
		`SELECT `+goalCols+` FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *queries) UpdateGoal(g *Goal) error {
	now := time.Now().UTC()
	_, err := s.q.Exec(
		`UPDATE goals SET title = ?, description = ?, category_id = ?, period = ?, start_date = ?,
			end_date = ?, target_value = ?, measurement_unit = ?, custom_unit = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		g.Title, g.Description, g.CategoryID, g.Period, g.StartDate.String(), g.EndDate.String(),
		g.TargetValue, g.MeasurementUnit, g.CustomUnit, now.Format(time.RFC3339), g.ID, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	g.UpdatedAt = now
	return nil
}

// SetGoalProgress persists the ledger-computed value triple. It is the
// only write path for current_value, progress_percentage and is_completed.
func (s *queries) SetGoalProgress(goalID int64, current, progress float64, completed bool) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.q.Exec(
		`UPDATE goals SET current_value = ?, progress_percentage = ?, is_completed = ?, updated_at = ?
		 WHERE id = ?`,
		current, progress, boolToInt(completed), now, goalID,
	)
	if err != nil {
		return fmt.Errorf("set goal %d progress: %w", goalID, err)
	}
	return nil
}

func (s *queries) DeleteGoal(userID, id int64) error {
	res, err := s.q.Exec(`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete goal %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
