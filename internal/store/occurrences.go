package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andrevf/planday/internal/date"
)

const occurrenceCols = `id, task_id, date, status, actual_value, notes, created_at, updated_at`

func scanOccurrence(r rowScanner) (*Occurrence, error) {
	o := &Occurrence{}
	var status, createdAt, updatedAt string
	var actualValue sql.NullFloat64

	err := r.Scan(&o.ID, &o.TaskID, &o.Date, &status, &actualValue, &o.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if actualValue.Valid {
		o.ActualValue = &actualValue.Float64
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return o, nil
}

// GetOccurrence returns the persisted occurrence for (task, date), or
// nil if none exists. Reading never materializes a row.
func (s *queries) GetOccurrence(taskID int64, d date.Date) (*Occurrence, error) {
	o, err := scanOccurrence(s.q.QueryRow(
		`SELECT `+occurrenceCols+` FROM occurrences WHERE task_id = ? AND date = ?`,
		taskID, d.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get occurrence (%d, %s): %w", taskID, d, err)
	}
	return o, nil
}

func (s *queries) CreateOccurrence(o *Occurrence) error {
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)
	res, err := s.q.Exec(
		`INSERT INTO occurrences (task_id, date, status, actual_value, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.TaskID, o.Date.String(), string(o.Status), nullFloat(o.ActualValue), o.Notes, nowStr, nowStr,
	)
	if err != nil {
		return fmt.Errorf("insert occurrence (%d, %s): %w", o.TaskID, o.Date, err)
	}
	o.ID, _ = res.LastInsertId()
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

// UpsertOccurrence creates or updates the occurrence for (task, date) and
// returns the resulting row plus the prior row (nil when created), so
// callers can compute goal deltas from the captured previous state.
// A nil actual or notes leaves the stored value untouched on update.
func (s *queries) UpsertOccurrence(taskID int64, d date.Date, status Status, actual *float64, notes *string) (*Occurrence, *Occurrence, error) {
	prior, err := s.GetOccurrence(taskID, d)
	if err != nil {
		return nil, nil, err
	}

	if prior == nil {
		o := &Occurrence{TaskID: taskID, Date: d, Status: status, ActualValue: actual}
		if notes != nil {
			o.Notes = *notes
		}
		if err := s.CreateOccurrence(o); err != nil {
			return nil, nil, err
		}
		return o, nil, nil
	}

	cur := *prior
	cur.Status = status
	if actual != nil {
		cur.ActualValue = actual
	}
	if notes != nil {
		cur.Notes = *notes
	}
	now := time.Now().UTC()
	_, err = s.q.Exec(
		`UPDATE occurrences SET status = ?, actual_value = ?, notes = ?, updated_at = ? WHERE id = ?`,
		string(cur.Status), nullFloat(cur.ActualValue), cur.Notes, now.Format(time.RFC3339), cur.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("update occurrence %d: %w", cur.ID, err)
	}
	cur.UpdatedAt = now
	return &cur, prior, nil
}

// DeleteOccurrencesFrom removes every occurrence of the task on or after from.
func (s *queries) DeleteOccurrencesFrom(taskID int64, from date.Date) error {
	_, err := s.q.Exec(`DELETE FROM occurrences WHERE task_id = ? AND date >= ?`, taskID, from.String())
	if err != nil {
		return fmt.Errorf("delete occurrences of task %d from %s: %w", taskID, from, err)
	}
	return nil
}

func (s *queries) ListOccurrences(taskID int64) ([]Occurrence, error) {
	return s.listOccurrences(
		`SELECT `+occurrenceCols+` FROM occurrences WHERE task_id = ? ORDER BY date`, taskID)
}

// ListOccurrencesInRange returns all persisted occurrences of the user's
// tasks with date in [from, to].
func (s *queries) ListOccurrencesInRange(userID int64, from, to date.Date) ([]Occurrence, error) {
	return s.listOccurrences(
		`SELECT o.id, o.task_id, o.date, o.status, o.actual_value, o.notes, o.created_at, o.updated_at
		 FROM occurrences o
		 JOIN tasks t ON t.id = o.task_id
		 WHERE t.user_id = ? AND o.date >= ? AND o.date <= ?
		 ORDER BY o.date`,
		userID, from.String(), to.String())
}

func (s *queries) listOccurrences(query string, args ...any) ([]Occurrence, error) {
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	defer rows.Close()

	var occs []Occurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occs = append(occs, *o)
	}
	return occs, rows.Err()
}

// SumCompletedValues sums actual_value over the task's completed
// occurrences, optionally restricted to dates on or after from.
func (s *queries) SumCompletedValues(taskID int64, from *date.Date) (float64, error) {
	query := `SELECT COALESCE(SUM(actual_value), 0) FROM occurrences
		WHERE task_id = ? AND status = 'completed'`
	args := []any{taskID}
	if from != nil {
		query += ` AND date >= ?`
		args = append(args, from.String())
	}
	var total float64
	if err := s.q.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum completed values for task %d: %w", taskID, err)
	}
	return total, nil
}

// ReassignOccurrencesFrom moves the task's occurrences on or after from
// to another task. Used when an edit splits a recurring series.
func (s *queries) ReassignOccurrencesFrom(taskID, newTaskID int64, from date.Date) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.q.Exec(
		`UPDATE occurrences SET task_id = ?, updated_at = ? WHERE task_id = ? AND date >= ?`,
		newTaskID, now, taskID, from.String(),
	)
	if err != nil {
		return fmt.Errorf("reassign occurrences of task %d: %w", taskID, err)
	}
	return nil
}
