package analytics

import (
	"context"
	"time"

	"crewtrack/internal/repo"
)

// Aggregator reads completion history and derives the reporting views. It
// never mutates; all math on top of the SQL aggregates lives here.
type Aggregator struct {
	Repo repo.Repo
	Now  func() time.Time
}

func New(r repo.Repo) Aggregator {
	return Aggregator{Repo: r, Now: time.Now}
}

func (a Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// EmployeeReport is one employee's output within a window, with the derived
// rate metrics attached.
type EmployeeReport struct {
	repo.EmployeeAggRow
	PointsPerHour  float64
	SalaryPerPoint float64
}

// ByEmployee reports every employee's window output, highest point total
// first. Deactivated employees appear only when includeInactive is set.
func (a Aggregator) ByEmployee(ctx context.Context, w Window, includeInactive bool) ([]EmployeeReport, error) {
	rows, err := a.Repo.EmployeeAggregates(ctx, w.StartString(a.now()), includeInactive)
	if err != nil {
		return nil, err
	}
	res := make([]EmployeeReport, 0, len(rows))
	for _, r := range rows {
		pph := PointsPerHour(r.Points, r.Completed, r.AvgDurationMin, r.TotalHours)
		res = append(res, EmployeeReport{
			EmployeeAggRow: r,
			PointsPerHour:  pph,
			SalaryPerPoint: SalaryPerPoint(r.Salary, pph),
		})
	}
	return res, nil
}

// ByTask reports window completion stats for the whole catalog, ordered by
// category then name.
func (a Aggregator) ByTask(ctx context.Context, w Window) ([]repo.TaskAggRow, error) {
	return a.Repo.TaskAggregates(ctx, w.StartString(a.now()))
}

// FleetReport is the crew-wide summary with its category and weekday
// breakdowns.
type FleetReport struct {
	Totals     repo.FleetAggRow
	Categories []repo.CategoryAggRow
	Weekdays   []repo.WeekdayAggRow
}

func (a Aggregator) Fleet(ctx context.Context, w Window) (FleetReport, error) {
	start := w.StartString(a.now())
	totals, err := a.Repo.FleetAggregates(ctx, start)
	if err != nil {
		return FleetReport{}, err
	}
	cats, err := a.Repo.CategoryAggregates(ctx, start)
	if err != nil {
		return FleetReport{}, err
	}
	days, err := a.Repo.WeekdayAggregates(ctx, start)
	if err != nil {
		return FleetReport{}, err
	}
	return FleetReport{Totals: totals, Categories: cats, Weekdays: days}, nil
}

// PersonalStats is the lifetime view an employee sees for themselves.
type PersonalStats struct {
	Totals     repo.EmployeeTotals
	Categories []repo.EmployeeCategoryRow
}

func (a Aggregator) Personal(ctx context.Context, employeeID int64) (PersonalStats, error) {
	totals, err := a.Repo.EmployeeLifetimeTotals(ctx, employeeID)
	if err != nil {
		return PersonalStats{}, err
	}
	cats, err := a.Repo.EmployeeCategoryTotals(ctx, employeeID)
	if err != nil {
		return PersonalStats{}, err
	}
	return PersonalStats{Totals: totals, Categories: cats}, nil
}
