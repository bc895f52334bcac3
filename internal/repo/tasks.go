package repo

import (
	"context"
	"database/sql"

	"crewtrack/internal/domain"
)

func (r Repo) InsertTaskTx(ctx context.Context, tx *sql.Tx, name string, points int, category domain.Category) (domain.Task, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO tasks(name,points,category) VALUES (?,?,?)`, name, points, string(category))
	if err != nil {
		return domain.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{ID: id, Name: name, Points: points, Category: category}, nil
}

func scanTask(row *sql.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Name, &t.Points, &t.Category)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

func (r Repo) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx, `SELECT id,name,points,category FROM tasks WHERE id=?`, id))
}

func (r Repo) GetTaskTx(ctx context.Context, tx *sql.Tx, id int64) (domain.Task, error) {
	return scanTask(tx.QueryRowContext(ctx, `SELECT id,name,points,category FROM tasks WHERE id=?`, id))
}

// ListTasks returns the full catalog ordered by category then name, the order
// every keyboard and report renders it in.
func (r Repo) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,points,category FROM tasks ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Points, &t.Category); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) CountTasks(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

func (r Repo) UpdateTaskNameTx(ctx context.Context, tx *sql.Tx, id int64, name string) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET name=? WHERE id=?`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateTaskPointsTx(ctx context.Context, tx *sql.Tx, id int64, points int) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET points=? WHERE id=?`, points, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateTaskCategoryTx(ctx context.Context, tx *sql.Tx, id int64, category domain.Category) error {
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET category=? WHERE id=?`, string(category), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteTaskTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
