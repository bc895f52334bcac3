package repo

import (
	"context"
	"database/sql"

	"crewtrack/internal/domain"
)

func (r Repo) InsertCompletionTx(ctx context.Context, tx *sql.Tx, c domain.Completion) (domain.Completion, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO completions(employee_id,task_id,started_at,ended_at,points_earned,duration_seconds)
VALUES (?,?,?,?,?,?)`,
		c.EmployeeID, c.TaskID, c.StartedAt, c.EndedAt, c.PointsEarned, c.DurationSeconds)
	if err != nil {
		return c, err
	}
	c.ID, err = res.LastInsertId()
	return c, err
}

// CompletionDetail is a completion joined with the task name for history
// rendering. The task name reflects the current catalog; points and duration
// come from the immutable snapshot.
type CompletionDetail struct {
	domain.Completion
	TaskName string
}

// ListCompletionsByEmployee returns the employee's most recent completions,
// newest first.
func (r Repo) ListCompletionsByEmployee(ctx context.Context, employeeID int64, limit int) ([]CompletionDetail, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.employee_id, c.task_id, c.started_at, c.ended_at, c.points_earned, c.duration_seconds,
		       COALESCE(t.name, 'deleted task')
		FROM completions c
		LEFT JOIN tasks t ON c.task_id = t.id
		WHERE c.employee_id=?
		ORDER BY c.ended_at DESC
		LIMIT ?`, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []CompletionDetail
	for rows.Next() {
		var d CompletionDetail
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.TaskID, &d.StartedAt, &d.EndedAt, &d.PointsEarned, &d.DurationSeconds, &d.TaskName); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
