package dialog

import (
	"fmt"
	"strings"
	"time"

	"crewtrack/internal/analytics"
	"crewtrack/internal/domain"
	"crewtrack/internal/repo"
)

// Keyboard construction. Every selectable list row carries an "ID: n" suffix
// the parser recovers the selection from; grouping headers are rendered as
// "--- x ---" rows and rejected on selection.

func header(label string) string {
	return fmt.Sprintf("--- %s ---", label)
}

func idRow(label string, id int64) string {
	return fmt.Sprintf("%s%s%d", label, idSeparator, id)
}

// taskKeyboard renders the catalog grouped by category.
func taskKeyboard(tasks []domain.Task) [][]string {
	var kb [][]string
	var current domain.Category
	for _, t := range tasks {
		if t.Category != current {
			current = t.Category
			kb = append(kb, []string{header(string(t.Category))})
		}
		kb = append(kb, []string{idRow(fmt.Sprintf("%s (%d points)", t.Name, t.Points), t.ID)})
	}
	kb = append(kb, []string{backCaption})
	return kb
}

// employeeKeyboard renders one employee per row, optionally with salary.
func employeeKeyboard(emps []domain.Employee, withSalary bool) [][]string {
	var kb [][]string
	for _, e := range emps {
		label := e.Name
		if withSalary {
			label = fmt.Sprintf("%s (salary: %.2f)", e.Name, e.Salary)
		}
		kb = append(kb, []string{idRow(label, e.ID)})
	}
	kb = append(kb, []string{backCaption})
	return kb
}

func elapsedMinutes(startedAt string, now time.Time) float64 {
	started, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return 0
	}
	return now.Sub(started).Minutes()
}

// completeKeyboard lists the employee's own running assignments.
func completeKeyboard(active []repo.AssignmentDetail, now time.Time) [][]string {
	var kb [][]string
	for _, a := range active {
		label := fmt.Sprintf("%s (%d points, %.2f min)", a.TaskName, a.TaskPoints, elapsedMinutes(a.StartedAt, now))
		kb = append(kb, []string{idRow(label, a.ID)})
	}
	kb = append(kb, []string{backCaption})
	return kb
}

// cancelKeyboard lists every running assignment grouped by employee.
func cancelKeyboard(active []repo.AssignmentDetail, now time.Time) [][]string {
	var kb [][]string
	var current string
	for _, a := range active {
		if a.EmployeeName != current {
			current = a.EmployeeName
			kb = append(kb, []string{header(a.EmployeeName)})
		}
		label := fmt.Sprintf("%s (%.2f min)", a.TaskName, elapsedMinutes(a.StartedAt, now))
		kb = append(kb, []string{idRow(label, a.ID)})
	}
	kb = append(kb, []string{backCaption})
	return kb
}

func categoryKeyboard() [][]string {
	cats := domain.Categories()
	var kb [][]string
	for i := 0; i < len(cats); i += 2 {
		row := []string{string(cats[i])}
		if i+1 < len(cats) {
			row = append(row, string(cats[i+1]))
		}
		kb = append(kb, row)
	}
	return kb
}

func periodKeyboard() [][]string {
	return [][]string{
		{periodCaption(analytics.Today), periodCaption(analytics.Week)},
		{periodCaption(analytics.Month), periodCaption(analytics.AllTime)},
		{backCaption},
	}
}

func analyticsKeyboard() [][]string {
	return [][]string{
		{MenuByEmployee.Caption(), MenuByTask.Caption()},
		{MenuFleet.Caption(), backCaption},
	}
}

func adminMenuKeyboard() [][]string {
	return [][]string{
		{MenuAddEmployee.Caption(), MenuAddTask.Caption()},
		{MenuEditEmployee.Caption(), MenuEditTask.Caption()},
		{MenuAssignTask.Caption(), MenuAnalytics.Caption()},
		{MenuHistory.Caption(), MenuCancelActive.Caption()},
		{backCaption},
	}
}

func employeeMenuKeyboard() [][]string {
	return [][]string{
		{MenuTakeTask.Caption(), MenuCompleteTask.Caption()},
		{MenuMyStats.Caption(), backCaption},
	}
}

func mainMenuKeyboard(isAdmin, isEmployee bool) [][]string {
	var kb [][]string
	if isAdmin {
		kb = append(kb, []string{MenuAdmin.Caption()})
	}
	if isEmployee {
		kb = append(kb, []string{MenuEmployee.Caption()})
	}
	return kb
}

func editEmployeeKeyboard() [][]string {
	return [][]string{
		{MenuChangeName.Caption(), MenuChangeSalary.Caption()},
		{MenuDeactivate.Caption(), backCaption},
	}
}

func editTaskKeyboard() [][]string {
	return [][]string{
		{MenuChangeName.Caption(), MenuChangePoints.Caption()},
		{MenuChangeCategory.Caption(), MenuDeleteTask.Caption()},
		{backCaption},
	}
}

// Report rendering.

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func employeeReportText(reports []analytics.EmployeeReport, w analytics.Window, showAll bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee report (%s)\n", w)
	if showAll {
		b.WriteString("(all employees, including deactivated)\n\n")
	} else {
		b.WriteString("(active employees only)\n\n")
	}
	for _, r := range reports {
		status := "active"
		if !r.Active {
			status = "deactivated"
		}
		fmt.Fprintf(&b, "%s (ID: %d) - %s\n", r.Name, r.EmployeeID, status)
		fmt.Fprintf(&b, "  completed: %d\n", r.Completed)
		fmt.Fprintf(&b, "  points: %d\n", r.Points)
		fmt.Fprintf(&b, "  avg time per task: %.2f min\n", r.AvgDurationMin)
		fmt.Fprintf(&b, "  total time: %.2f h\n", r.TotalHours)
		fmt.Fprintf(&b, "  rate: %.2f points/h\n", r.PointsPerHour)
		fmt.Fprintf(&b, "  cost per point: %.2f\n\n", r.SalaryPerPoint)
	}
	return strings.TrimRight(b.String(), "\n")
}

func taskReportText(rows []repo.TaskAggRow, w analytics.Window) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task report (%s)\n", w)
	var current domain.Category
	for _, r := range rows {
		if r.Category != current {
			current = r.Category
			fmt.Fprintf(&b, "\n%s\n", r.Category)
		}
		fmt.Fprintf(&b, "- %s (%d points): completed %d, avg %.2f min\n", r.Name, r.Points, r.Completed, r.AvgDurationMin)
	}
	return strings.TrimRight(b.String(), "\n")
}

func fleetReportText(rep analytics.FleetReport, w analytics.Window) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall report (%s)\n\n", w)
	fmt.Fprintf(&b, "employees with completions: %d\n", rep.Totals.Employees)
	fmt.Fprintf(&b, "completed: %d\n", rep.Totals.Completed)
	fmt.Fprintf(&b, "points: %d\n", rep.Totals.Points)
	fmt.Fprintf(&b, "avg time per task: %.2f min\n", rep.Totals.AvgDurationMin)
	fmt.Fprintf(&b, "total time: %.2f h\n", rep.Totals.TotalHours)
	if len(rep.Categories) > 0 {
		b.WriteString("\nBy category:\n")
		for _, c := range rep.Categories {
			fmt.Fprintf(&b, "- %s: %d tasks, %d points, avg %.2f min\n", c.Category, c.Completed, c.Points, c.AvgDurationMin)
		}
	}
	if len(rep.Weekdays) > 0 {
		b.WriteString("\nBy weekday:\n")
		for _, d := range rep.Weekdays {
			name := ""
			if d.Weekday >= 0 && d.Weekday < len(weekdayNames) {
				name = weekdayNames[d.Weekday]
			}
			fmt.Fprintf(&b, "- %s: %d tasks, %d points\n", name, d.Completed, d.Points)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func personalStatsText(name string, stats analytics.PersonalStats, active []repo.AssignmentDetail, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Statistics for %s\n\n", name)
	fmt.Fprintf(&b, "completed: %d\n", stats.Totals.Completed)
	fmt.Fprintf(&b, "points: %d\n", stats.Totals.Points)
	fmt.Fprintf(&b, "avg time per task: %.2f min\n", stats.Totals.AvgDurationMin)
	fmt.Fprintf(&b, "total time: %.2f h\n", stats.Totals.TotalHours)
	if len(stats.Categories) > 0 {
		b.WriteString("\nBy category:\n")
		for _, c := range stats.Categories {
			fmt.Fprintf(&b, "- %s: %d tasks, %d points\n", c.Category, c.Completed, c.Points)
		}
	}
	if len(active) > 0 {
		b.WriteString("\nIn progress:\n")
		for _, a := range active {
			fmt.Fprintf(&b, "- %s (%d points), %.2f min so far\n", a.TaskName, a.TaskPoints, elapsedMinutes(a.StartedAt, now))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func historyText(name string, recs []repo.CompletionDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Completed tasks for %s (last %d)\n\n", name, len(recs))
	for _, r := range recs {
		fmt.Fprintf(&b, "%s\n", r.TaskName)
		fmt.Fprintf(&b, "  points: %d\n", r.PointsEarned)
		fmt.Fprintf(&b, "  duration: %.2f min\n", float64(r.DurationSeconds)/60.0)
		fmt.Fprintf(&b, "  started: %s\n", formatTS(r.StartedAt))
		fmt.Fprintf(&b, "  finished: %s\n\n", formatTS(r.EndedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTS(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("02.01.2006 15:04")
}
