package repo

import (
	"context"

	"crewtrack/internal/domain"
)

// Aggregate row types for the analytics queries. Every aggregate COALESCEs to
// zero so an empty window renders as 0, never as a missing value.

type EmployeeAggRow struct {
	EmployeeID     int64
	Name           string
	Completed      int
	Points         int
	AvgDurationMin float64
	TotalHours     float64
	Salary         float64
	Active         bool
}

type TaskAggRow struct {
	TaskID         int64
	Name           string
	Category       domain.Category
	Points         int
	Completed      int
	AvgDurationMin float64
}

type FleetAggRow struct {
	Employees      int
	Completed      int
	Points         int
	AvgDurationMin float64
	TotalHours     float64
}

type CategoryAggRow struct {
	Category       domain.Category
	Completed      int
	Points         int
	AvgDurationMin float64
}

type WeekdayAggRow struct {
	Weekday   int // 0 = Sunday, strftime('%w') convention
	Completed int
	Points    int
}

// EmployeeAggregates computes per-employee completion stats for completions
// ending at or after windowStart. Employees without completions in the window
// still appear with zeroes. Deactivated employees are excluded unless
// includeInactive is set.
func (r Repo) EmployeeAggregates(ctx context.Context, windowStart string, includeInactive bool) ([]EmployeeAggRow, error) {
	query := `
		SELECT e.id, e.name,
		       COUNT(c.id),
		       COALESCE(SUM(c.points_earned), 0),
		       COALESCE(AVG(c.duration_seconds), 0) / 60.0,
		       COALESCE(SUM(c.duration_seconds), 0) / 3600.0,
		       e.salary, e.active
		FROM employees e
		LEFT JOIN completions c ON e.id = c.employee_id AND c.ended_at >= ?`
	if !includeInactive {
		query += ` WHERE e.active = 1`
	}
	query += ` GROUP BY e.id ORDER BY COALESCE(SUM(c.points_earned), 0) DESC`
	rows, err := r.DB.QueryContext(ctx, query, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []EmployeeAggRow
	for rows.Next() {
		var a EmployeeAggRow
		if err := rows.Scan(&a.EmployeeID, &a.Name, &a.Completed, &a.Points, &a.AvgDurationMin, &a.TotalHours, &a.Salary, &a.Active); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// TaskAggregates reports completion count and mean duration per catalog task
// within the window, ordered by category then name.
func (r Repo) TaskAggregates(ctx context.Context, windowStart string) ([]TaskAggRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.id, t.name, t.category, t.points,
		       COUNT(c.id),
		       COALESCE(AVG(c.duration_seconds), 0) / 60.0
		FROM tasks t
		LEFT JOIN completions c ON t.id = c.task_id AND c.ended_at >= ?
		GROUP BY t.id
		ORDER BY t.category, t.name`, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []TaskAggRow
	for rows.Next() {
		var a TaskAggRow
		if err := rows.Scan(&a.TaskID, &a.Name, &a.Category, &a.Points, &a.Completed, &a.AvgDurationMin); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// FleetAggregates summarizes the whole crew's output within the window,
// counting active employees only.
func (r Repo) FleetAggregates(ctx context.Context, windowStart string) (FleetAggRow, error) {
	var a FleetAggRow
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT c.employee_id),
		       COUNT(c.id),
		       COALESCE(SUM(c.points_earned), 0),
		       COALESCE(AVG(c.duration_seconds), 0) / 60.0,
		       COALESCE(SUM(c.duration_seconds), 0) / 3600.0
		FROM completions c
		JOIN employees e ON c.employee_id = e.id
		WHERE c.ended_at >= ? AND e.active = 1`, windowStart).
		Scan(&a.Employees, &a.Completed, &a.Points, &a.AvgDurationMin, &a.TotalHours)
	return a, err
}

// CategoryAggregates buckets the window's completions by task category for
// active employees, highest point sum first.
func (r Repo) CategoryAggregates(ctx context.Context, windowStart string) ([]CategoryAggRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.category,
		       COUNT(c.id),
		       COALESCE(SUM(c.points_earned), 0),
		       COALESCE(AVG(c.duration_seconds), 0) / 60.0
		FROM completions c
		JOIN tasks t ON c.task_id = t.id
		JOIN employees e ON c.employee_id = e.id
		WHERE c.ended_at >= ? AND e.active = 1
		GROUP BY t.category
		ORDER BY COALESCE(SUM(c.points_earned), 0) DESC`, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []CategoryAggRow
	for rows.Next() {
		var a CategoryAggRow
		if err := rows.Scan(&a.Category, &a.Completed, &a.Points, &a.AvgDurationMin); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// WeekdayAggregates buckets the window's completions by weekday of the end
// timestamp, Sunday first.
func (r Repo) WeekdayAggregates(ctx context.Context, windowStart string) ([]WeekdayAggRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT CAST(strftime('%w', substr(c.ended_at, 1, 10)) AS INTEGER),
		       COUNT(c.id),
		       COALESCE(SUM(c.points_earned), 0)
		FROM completions c
		JOIN employees e ON c.employee_id = e.id
		WHERE c.ended_at >= ? AND e.active = 1
		GROUP BY 1
		ORDER BY 1`, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []WeekdayAggRow
	for rows.Next() {
		var a WeekdayAggRow
		if err := rows.Scan(&a.Weekday, &a.Completed, &a.Points); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

type EmployeeTotals struct {
	Completed      int
	Points         int
	AvgDurationMin float64
	TotalHours     float64
}

// EmployeeLifetimeTotals backs the "my statistics" view; it is deliberately
// unwindowed.
func (r Repo) EmployeeLifetimeTotals(ctx context.Context, employeeID int64) (EmployeeTotals, error) {
	var t EmployeeTotals
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(points_earned), 0),
		       COALESCE(AVG(duration_seconds), 0) / 60.0,
		       COALESCE(SUM(duration_seconds), 0) / 3600.0
		FROM completions
		WHERE employee_id=?`, employeeID).
		Scan(&t.Completed, &t.Points, &t.AvgDurationMin, &t.TotalHours)
	return t, err
}

type EmployeeCategoryRow struct {
	Category  domain.Category
	Completed int
	Points    int
}

func (r Repo) EmployeeCategoryTotals(ctx context.Context, employeeID int64) ([]EmployeeCategoryRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.category, COUNT(*), COALESCE(SUM(c.points_earned), 0)
		FROM completions c
		JOIN tasks t ON c.task_id = t.id
		WHERE c.employee_id=?
		GROUP BY t.category
		ORDER BY COALESCE(SUM(c.points_earned), 0) DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []EmployeeCategoryRow
	for rows.Next() {
		var a EmployeeCategoryRow
		if err := rows.Scan(&a.Category, &a.Completed, &a.Points); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
