package analytics_test

import (
	"context"
	"math"
	"testing"
	"time"

	"crewtrack/internal/analytics"
	"crewtrack/internal/db"
	"crewtrack/internal/domain"
	"crewtrack/internal/engine"
	"crewtrack/internal/migrate"
)

func TestPointsPerHour(t *testing.T) {
	// Primary branch: mean task points scaled by tasks per hour.
	if got := analytics.PointsPerHour(10, 1, 5, 0); got != 120 {
		t.Fatalf("primary branch = %v, want 120", got)
	}
	if got := analytics.PointsPerHour(30, 3, 30, 0); got != 20 {
		t.Fatalf("primary branch = %v, want 20", got)
	}
	// Fallback: total points over total hours.
	if got := analytics.PointsPerHour(10, 0, 0, 2); got != 5 {
		t.Fatalf("fallback branch = %v, want 5", got)
	}
	// Zero-duration completions keep the fallback alive.
	if got := analytics.PointsPerHour(10, 2, 0, 4); got != 2.5 {
		t.Fatalf("fallback with completions = %v, want 2.5", got)
	}
	if got := analytics.PointsPerHour(0, 0, 0, 0); got != 0 {
		t.Fatalf("no data = %v, want 0", got)
	}
}

func TestSalaryPerPoint(t *testing.T) {
	if got := analytics.SalaryPerPoint(3000, 120); math.Abs(got-0.15625) > 1e-9 {
		t.Fatalf("salary per point = %v, want 0.15625", got)
	}
	if got := analytics.SalaryPerPoint(3000, 0); got != 0 {
		t.Fatalf("zero rate = %v, want 0", got)
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)
	if got := analytics.Today.Start(now); !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("today start = %v", got)
	}
	if got := analytics.Week.Start(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("week start = %v", got)
	}
	if got := analytics.Month.Start(now); !got.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("month start = %v", got)
	}
	if got := analytics.AllTime.Start(now); !got.Equal(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("all-time start = %v", got)
	}
}

type testEnv struct {
	Engine engine.Engine
	Agg    analytics.Aggregator
	Ctx    context.Context
	Now    *time.Time
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	eng := engine.New(conn)
	eng.Now = func() time.Time { return now }
	agg := analytics.New(eng.Repo)
	agg.Now = eng.Now
	return testEnv{Engine: eng, Agg: agg, Ctx: context.Background(), Now: &now}
}

// completeAt claims at start and completes at end, moving the fixed clock.
func (env testEnv) completeAt(t *testing.T, employeeID, taskID int64, start, end time.Time) {
	t.Helper()
	*env.Now = start
	a, err := env.Engine.Claim(env.Ctx, employeeID, taskID, "tester")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	*env.Now = end
	if _, err := env.Engine.Complete(env.Ctx, employeeID, a.ID, "tester"); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestByEmployeeWindows(t *testing.T) {
	env := newTestEnv(t)
	emp, err := env.Engine.CreateEmployee(env.Ctx, "Ann", 3000, "tester")
	if err != nil {
		t.Fatal(err)
	}
	task, err := env.Engine.CreateTask(env.Ctx, "restock", 10, domain.CategoryLogistics, "tester")
	if err != nil {
		t.Fatal(err)
	}
	yesterday := time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC)
	env.completeAt(t, emp.ID, task.ID, yesterday, yesterday.Add(5*time.Minute))
	today := time.Date(2024, 3, 1, 11, 55, 0, 0, time.UTC)
	env.completeAt(t, emp.ID, task.ID, today, today.Add(5*time.Minute))
	*env.Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	todayRep, err := env.Agg.ByEmployee(env.Ctx, analytics.Today, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(todayRep) != 1 {
		t.Fatalf("today reports = %d, want 1", len(todayRep))
	}
	r := todayRep[0]
	if r.Completed != 1 || r.Points != 10 {
		t.Fatalf("today: completed=%d points=%d", r.Completed, r.Points)
	}
	// 10 points in 5 minutes: 120 points per hour, 3000/(120*160) per point.
	if math.Abs(r.PointsPerHour-120) > 1e-9 {
		t.Fatalf("points per hour = %v, want 120", r.PointsPerHour)
	}
	if math.Abs(r.SalaryPerPoint-0.15625) > 1e-9 {
		t.Fatalf("salary per point = %v, want 0.15625", r.SalaryPerPoint)
	}

	allRep, err := env.Agg.ByEmployee(env.Ctx, analytics.AllTime, false)
	if err != nil {
		t.Fatal(err)
	}
	if allRep[0].Completed != 2 || allRep[0].Points != 20 {
		t.Fatalf("all time: completed=%d points=%d", allRep[0].Completed, allRep[0].Points)
	}
}

func TestByEmployeeActiveFilter(t *testing.T) {
	env := newTestEnv(t)
	ann, _ := env.Engine.CreateEmployee(env.Ctx, "Ann", 3000, "tester")
	bob, _ := env.Engine.CreateEmployee(env.Ctx, "Bob", 2000, "tester")
	task, _ := env.Engine.CreateTask(env.Ctx, "restock", 10, domain.CategoryLogistics, "tester")
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.completeAt(t, bob.ID, task.ID, start, start.Add(10*time.Minute))
	if err := env.Engine.DeactivateEmployee(env.Ctx, bob.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	_ = ann
	*env.Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	activeOnly, err := env.Agg.ByEmployee(env.Ctx, analytics.AllTime, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range activeOnly {
		if r.Name == "Bob" {
			t.Fatal("deactivated employee in active-only report")
		}
	}
	all, err := env.Agg.ByEmployee(env.Ctx, analytics.AllTime, true)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range all {
		if r.Name == "Bob" && r.Points == 10 {
			found = true
		}
	}
	if !found {
		t.Fatal("deactivated employee missing from show-all report")
	}
}

func TestByTaskOrdering(t *testing.T) {
	env := newTestEnv(t)
	emp, _ := env.Engine.CreateEmployee(env.Ctx, "Ann", 3000, "tester")
	sale, _ := env.Engine.CreateTask(env.Ctx, "Ring up a sale", 5, domain.CategorySales, "tester")
	unpack, _ := env.Engine.CreateTask(env.Ctx, "Unpack delivery", 10, domain.CategoryUnpacking, "tester")
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.completeAt(t, emp.ID, sale.ID, start, start.Add(2*time.Minute))
	*env.Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rows, err := env.Agg.ByTask(env.Ctx, analytics.AllTime)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want both catalog tasks", len(rows))
	}
	// Category then name; a task without completions still shows with zeros.
	if rows[0].Name != "Ring up a sale" || rows[0].Completed != 1 {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[1].TaskID != unpack.ID || rows[1].Completed != 0 {
		t.Fatalf("second row = %+v", rows[1])
	}
}

func TestFleetBreakdowns(t *testing.T) {
	env := newTestEnv(t)
	emp, _ := env.Engine.CreateEmployee(env.Ctx, "Ann", 3000, "tester")
	task, _ := env.Engine.CreateTask(env.Ctx, "restock", 10, domain.CategoryLogistics, "tester")
	// 2024-03-01 is a Friday.
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.completeAt(t, emp.ID, task.ID, start, start.Add(10*time.Minute))
	*env.Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rep, err := env.Agg.Fleet(env.Ctx, analytics.AllTime)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Totals.Completed != 1 || rep.Totals.Points != 10 {
		t.Fatalf("totals = %+v", rep.Totals)
	}
	if len(rep.Categories) != 1 || rep.Categories[0].Category != domain.CategoryLogistics {
		t.Fatalf("categories = %+v", rep.Categories)
	}
	if len(rep.Weekdays) != 1 || rep.Weekdays[0].Weekday != 5 {
		t.Fatalf("weekdays = %+v", rep.Weekdays)
	}
}

func TestPersonalStats(t *testing.T) {
	env := newTestEnv(t)
	emp, _ := env.Engine.CreateEmployee(env.Ctx, "Ann", 3000, "tester")
	task, _ := env.Engine.CreateTask(env.Ctx, "restock", 10, domain.CategoryLogistics, "tester")
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.completeAt(t, emp.ID, task.ID, start, start.Add(10*time.Minute))

	stats, err := env.Agg.Personal(env.Ctx, emp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Totals.Completed != 1 || stats.Totals.Points != 10 {
		t.Fatalf("totals = %+v", stats.Totals)
	}
	if len(stats.Categories) != 1 || stats.Categories[0].Category != domain.CategoryLogistics {
		t.Fatalf("categories = %+v", stats.Categories)
	}
}
