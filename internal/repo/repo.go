package repo

import (
	"context"
	"database/sql"
	"errors"

	"crewtrack/internal/domain"
)

// Repo is the storage layer for all core tables. Lifecycle operations that
// check an invariant before mutating must use the ...Tx variants inside one
// transaction; plain variants are for reads and standalone writes.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func (r Repo) InsertEmployeeTx(ctx context.Context, tx *sql.Tx, name string, salary float64) (domain.Employee, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO employees(name,salary,active) VALUES (?,?,1)`, name, salary)
	if err != nil {
		return domain.Employee{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Employee{}, err
	}
	return domain.Employee{ID: id, Name: name, Salary: salary, Active: true}, nil
}

func scanEmployee(row *sql.Row) (domain.Employee, error) {
	var e domain.Employee
	var chatID sql.NullInt64
	err := row.Scan(&e.ID, &e.Name, &e.Salary, &chatID, &e.Active)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	if chatID.Valid {
		e.ChatID = &chatID.Int64
	}
	return e, err
}

func (r Repo) GetEmployee(ctx context.Context, id int64) (domain.Employee, error) {
	return scanEmployee(r.DB.QueryRowContext(ctx, `SELECT id,name,salary,chat_id,active FROM employees WHERE id=?`, id))
}

func (r Repo) GetEmployeeTx(ctx context.Context, tx *sql.Tx, id int64) (domain.Employee, error) {
	return scanEmployee(tx.QueryRowContext(ctx, `SELECT id,name,salary,chat_id,active FROM employees WHERE id=?`, id))
}

// GetEmployeeByChat resolves the employee bound to a chat identity. Only
// active employees resolve; a deactivated binding behaves as unbound.
func (r Repo) GetEmployeeByChat(ctx context.Context, chatID int64) (domain.Employee, error) {
	return scanEmployee(r.DB.QueryRowContext(ctx, `SELECT id,name,salary,chat_id,active FROM employees WHERE chat_id=? AND active=1`, chatID))
}

func (r Repo) GetEmployeeByChatTx(ctx context.Context, tx *sql.Tx, chatID int64) (domain.Employee, error) {
	return scanEmployee(tx.QueryRowContext(ctx, `SELECT id,name,salary,chat_id,active FROM employees WHERE chat_id=? AND active=1`, chatID))
}

// ListEmployees returns employees ordered by name. When activeOnly is false,
// deactivated employees are included as well.
func (r Repo) ListEmployees(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	query := `SELECT id,name,salary,chat_id,active FROM employees`
	if activeOnly {
		query += ` WHERE active=1`
	}
	query += ` ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Employee
	for rows.Next() {
		var e domain.Employee
		var chatID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &e.Salary, &chatID, &e.Active); err != nil {
			return nil, err
		}
		if chatID.Valid {
			e.ChatID = &chatID.Int64
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) UpdateEmployeeNameTx(ctx context.Context, tx *sql.Tx, id int64, name string) error {
	res, err := tx.ExecContext(ctx, `UPDATE employees SET name=? WHERE id=?`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateEmployeeSalaryTx(ctx context.Context, tx *sql.Tx, id int64, salary float64) error {
	res, err := tx.ExecContext(ctx, `UPDATE employees SET salary=? WHERE id=?`, salary, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeactivateEmployeeTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `UPDATE employees SET active=0 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReleaseChatTx clears a chat binding left behind on other rows, typically a
// deactivated employee still holding the chat's unique slot.
func (r Repo) ReleaseChatTx(ctx context.Context, tx *sql.Tx, chatID, exceptEmployeeID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE employees SET chat_id=NULL WHERE chat_id=? AND id<>?`, chatID, exceptEmployeeID)
	return err
}

func (r Repo) BindChatTx(ctx context.Context, tx *sql.Tx, employeeID, chatID int64) error {
	res, err := tx.ExecContext(ctx, `UPDATE employees SET chat_id=? WHERE id=?`, chatID, employeeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
