package repo

import (
	"context"
	"database/sql"

	"crewtrack/internal/domain"
)

// AssignmentDetail is an assignment joined with the names the keyboards and
// notifications need.
type AssignmentDetail struct {
	ID           int64
	EmployeeID   int64
	EmployeeName string
	EmployeeChat *int64
	TaskID       int64
	TaskName     string
	TaskPoints   int
	StartedAt    string
}

// InsertAssignmentTx opens an assignment. Points carries the task's value at
// claim time; the completion row copies it untouched.
func (r Repo) InsertAssignmentTx(ctx context.Context, tx *sql.Tx, employeeID, taskID int64, points int, startedAt string) (domain.Assignment, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO assignments(employee_id,task_id,points,started_at) VALUES (?,?,?,?)`,
		employeeID, taskID, points, startedAt)
	if err != nil {
		return domain.Assignment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Assignment{}, err
	}
	return domain.Assignment{ID: id, EmployeeID: employeeID, TaskID: taskID, Points: points, StartedAt: startedAt}, nil
}

// CountActiveTx counts the employee's running assignments inside the claiming
// transaction, so two racing claims cannot both see room under the ceiling.
func (r Repo) CountActiveTx(ctx context.Context, tx *sql.Tx, employeeID int64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE employee_id=?`, employeeID).Scan(&n)
	return n, err
}

func (r Repo) PairActiveTx(ctx context.Context, tx *sql.Tx, employeeID, taskID int64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE employee_id=? AND task_id=?`, employeeID, taskID).Scan(&n)
	return n > 0, err
}

func (r Repo) CountAssignmentsForTaskTx(ctx context.Context, tx *sql.Tx, taskID int64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE task_id=?`, taskID).Scan(&n)
	return n, err
}

// GetAssignmentForEmployeeTx loads one assignment only if it belongs to the
// given employee; completing someone else's work is a NotFound.
func (r Repo) GetAssignmentForEmployeeTx(ctx context.Context, tx *sql.Tx, id, employeeID int64) (domain.Assignment, error) {
	var a domain.Assignment
	err := tx.QueryRowContext(ctx, `SELECT id,employee_id,task_id,points,started_at FROM assignments WHERE id=? AND employee_id=?`, id, employeeID).
		Scan(&a.ID, &a.EmployeeID, &a.TaskID, &a.Points, &a.StartedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

func (r Repo) DeleteAssignmentTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssignmentsByEmployee returns an employee's running work with task
// details, oldest first.
func (r Repo) ListAssignmentsByEmployee(ctx context.Context, employeeID int64) ([]AssignmentDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.employee_id, e.name, e.chat_id, a.task_id, t.name, a.points, a.started_at
		FROM assignments a
		JOIN employees e ON a.employee_id = e.id
		JOIN tasks t ON a.task_id = t.id
		WHERE a.employee_id=?
		ORDER BY a.started_at`, employeeID)
	if err != nil {
		return nil, err
	}
	return scanAssignmentDetails(rows)
}

// ListAssignments returns every running assignment grouped for the cancel
// keyboard: by employee name, then start time.
func (r Repo) ListAssignments(ctx context.Context) ([]AssignmentDetail, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT a.id, a.employee_id, e.name, e.chat_id, a.task_id, t.name, a.points, a.started_at
		FROM assignments a
		JOIN employees e ON a.employee_id = e.id
		JOIN tasks t ON a.task_id = t.id
		ORDER BY e.name, a.started_at`)
	if err != nil {
		return nil, err
	}
	return scanAssignmentDetails(rows)
}

// GetAssignmentDetailTx is the joined read used when cancelling: it carries
// the names and the bound chat for the follow-up notification.
func (r Repo) GetAssignmentDetailTx(ctx context.Context, tx *sql.Tx, id int64) (AssignmentDetail, error) {
	var d AssignmentDetail
	var chat sql.NullInt64
	err := tx.QueryRowContext(ctx, `
		SELECT a.id, a.employee_id, e.name, e.chat_id, a.task_id, t.name, a.points, a.started_at
		FROM assignments a
		JOIN employees e ON a.employee_id = e.id
		JOIN tasks t ON a.task_id = t.id
		WHERE a.id=?`, id).
		Scan(&d.ID, &d.EmployeeID, &d.EmployeeName, &chat, &d.TaskID, &d.TaskName, &d.TaskPoints, &d.StartedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if chat.Valid {
		d.EmployeeChat = &chat.Int64
	}
	return d, err
}

func scanAssignmentDetails(rows *sql.Rows) ([]AssignmentDetail, error) {
	defer rows.Close()
	var res []AssignmentDetail
	for rows.Next() {
		var d AssignmentDetail
		var chat sql.NullInt64
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.EmployeeName, &chat, &d.TaskID, &d.TaskName, &d.TaskPoints, &d.StartedAt); err != nil {
			return nil, err
		}
		if chat.Valid {
			d.EmployeeChat = &chat.Int64
		}
		res = append(res, d)
	}
	return res, rows.Err()
}
