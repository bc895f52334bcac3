package dialog_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"crewtrack/internal/db"
	"crewtrack/internal/dialog"
	"crewtrack/internal/domain"
	"crewtrack/internal/engine"
	"crewtrack/internal/migrate"
)

const (
	adminChat    int64 = 1
	employeeChat int64 = 2
)

type testEnv struct {
	Engine  engine.Engine
	Machine *dialog.Machine
	Ctx     context.Context
	Now     *time.Time
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
	m := dialog.New(eng, []int64{adminChat}, nil)
	return testEnv{Engine: eng, Machine: m, Ctx: context.Background(), Now: &now}
}

func (env testEnv) send(t *testing.T, chat int64, text string) []dialog.Reply {
	t.Helper()
	replies, err := env.Machine.Handle(env.Ctx, chat, text)
	if err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
	if len(replies) == 0 {
		t.Fatalf("handle %q: no replies", text)
	}
	return replies
}

func allText(replies []dialog.Reply) string {
	var parts []string
	for _, r := range replies {
		parts = append(parts, r.Text)
	}
	return strings.Join(parts, "\n")
}

// keyboardRow finds the first keyboard cell containing the substring, so
// tests can press list buttons without knowing generated IDs.
func keyboardRow(t *testing.T, replies []dialog.Reply, substr string) string {
	t.Helper()
	for _, r := range replies {
		for _, row := range r.Keyboard {
			for _, cell := range row {
				if strings.Contains(cell, substr) {
					return cell
				}
			}
		}
	}
	t.Fatalf("no keyboard cell containing %q in %+v", substr, replies)
	return ""
}

func (env testEnv) employee(t *testing.T, name string) domain.Employee {
	t.Helper()
	emp, err := env.Engine.CreateEmployee(env.Ctx, name, 3000, "tester")
	if err != nil {
		t.Fatal(err)
	}
	return emp
}

func (env testEnv) task(t *testing.T, name string, points int, cat domain.Category) domain.Task {
	t.Helper()
	task, err := env.Engine.CreateTask(env.Ctx, name, points, cat, "tester")
	if err != nil {
		t.Fatal(err)
	}
	return task
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		want dialog.Command
	}{
		{"/start", dialog.CmdStart{}},
		{"/register 12", dialog.CmdRegister{EmployeeID: 12}},
		{"/register", dialog.CmdRegister{}},
		{"/register abc", dialog.CmdRegister{}},
		{"/register -3", dialog.CmdRegister{}},
		{"Back", dialog.CmdBack{}},
		{"--- Sales ---", dialog.CmdHeader{}},
		{"Admin menu", dialog.CmdMenu{Item: dialog.MenuAdmin}},
		{"Sales", dialog.CmdCategory{Category: domain.CategorySales}},
		{"Restock (5 points) - ID: 7", dialog.CmdSelect{ID: 7}},
		{"hello there", dialog.CmdText{Text: "hello there"}},
	}
	for _, c := range cases {
		if got := dialog.ParseCommand(c.in); got != c.want {
			t.Errorf("ParseCommand(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestStartHintsRegistrationWhenUnbound(t *testing.T) {
	env := newTestEnv(t)
	replies := env.send(t, employeeChat, "/start")
	if !strings.Contains(allText(replies), "/register ID") {
		t.Fatalf("no registration hint in %q", allText(replies))
	}
	// A bound chat gets no hint.
	emp := env.employee(t, "Ann")
	env.send(t, employeeChat, "/register "+idArg(emp.ID))
	replies = env.send(t, employeeChat, "/start")
	if strings.Contains(allText(replies), "/register ID") {
		t.Fatalf("unexpected registration hint in %q", allText(replies))
	}
}

func idArg(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRegisterOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ann := env.employee(t, "Ann")

	replies := env.send(t, employeeChat, "/register")
	if !strings.Contains(allText(replies), "Example: /register 123") {
		t.Fatalf("usage text missing: %q", allText(replies))
	}
	replies = env.send(t, employeeChat, "/register 999")
	if !strings.Contains(allText(replies), "not found") {
		t.Fatalf("want not-found, got %q", allText(replies))
	}
	replies = env.send(t, employeeChat, "/register "+idArg(ann.ID))
	if !strings.Contains(allText(replies), "You are registered as Ann.") {
		t.Fatalf("want success, got %q", allText(replies))
	}
	replies = env.send(t, employeeChat, "/register "+idArg(ann.ID))
	if !strings.Contains(allText(replies), "already registered as Ann") {
		t.Fatalf("want already-registered, got %q", allText(replies))
	}
	// Another chat cannot take a bound employee.
	replies = env.send(t, 3, "/register "+idArg(ann.ID))
	if !strings.Contains(allText(replies), "linked to another account") {
		t.Fatalf("want bound-elsewhere, got %q", allText(replies))
	}
}

func TestAdminMenuGated(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, employeeChat, "/start")
	replies := env.send(t, employeeChat, "Admin menu")
	if !strings.Contains(allText(replies), "Unrecognized input") {
		t.Fatalf("non-admin reached admin menu: %q", allText(replies))
	}
	env.send(t, adminChat, "/start")
	replies = env.send(t, adminChat, "Admin menu")
	if !strings.Contains(allText(replies), "Admin menu") {
		t.Fatalf("admin menu not shown: %q", allText(replies))
	}
}

func TestAddEmployeeChain(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	replies := env.send(t, adminChat, "Add employee")
	if !strings.Contains(allText(replies), "name") {
		t.Fatalf("no name prompt: %q", allText(replies))
	}
	env.send(t, adminChat, "Bob")
	// Garbage and non-positive salaries re-prompt without losing the name.
	replies = env.send(t, adminChat, "lots")
	if !strings.Contains(allText(replies), "positive number") {
		t.Fatalf("no re-prompt: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "-5")
	if !strings.Contains(allText(replies), "positive number") {
		t.Fatalf("no re-prompt: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "2500")
	if !strings.Contains(allText(replies), "Employee Bob added with salary 2500.00.") {
		t.Fatalf("no confirmation: %q", allText(replies))
	}
	if !strings.Contains(allText(replies), "/register") {
		t.Fatalf("no register hint: %q", allText(replies))
	}
	emps, err := env.Engine.Repo.ListEmployees(env.Ctx, true)
	if err != nil || len(emps) != 1 || emps[0].Name != "Bob" {
		t.Fatalf("employee not created: %+v err=%v", emps, err)
	}
}

func TestAddTaskChain(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	env.send(t, adminChat, "Add task")
	env.send(t, adminChat, "Restock shelves")
	replies := env.send(t, adminChat, "ten")
	if !strings.Contains(allText(replies), "whole number") {
		t.Fatalf("no re-prompt: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "8")
	if !strings.Contains(allText(replies), "category") {
		t.Fatalf("no category prompt: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "Sales")
	if !strings.Contains(allText(replies), "Task 'Restock shelves' added.") {
		t.Fatalf("no confirmation: %q", allText(replies))
	}
	tasks, err := env.Engine.Repo.ListTasks(env.Ctx)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("task not created: %+v err=%v", tasks, err)
	}
	if tasks[0].Points != 8 || tasks[0].Category != domain.CategorySales {
		t.Fatalf("task fields: %+v", tasks[0])
	}
}

func TestAssignFlow(t *testing.T) {
	env := newTestEnv(t)
	ann := env.employee(t, "Ann")
	env.task(t, "restock", 5, domain.CategoryLogistics)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	replies := env.send(t, adminChat, "Assign task")
	empRow := keyboardRow(t, replies, "Ann")
	replies = env.send(t, adminChat, empRow)
	taskRow := keyboardRow(t, replies, "restock")
	replies = env.send(t, adminChat, taskRow)
	if !strings.Contains(allText(replies), "Task 'restock' (5 points) assigned to Ann.") {
		t.Fatalf("no confirmation: %q", allText(replies))
	}
	active, err := env.Engine.Repo.ListAssignmentsByEmployee(env.Ctx, ann.ID)
	if err != nil || len(active) != 1 {
		t.Fatalf("assignment missing: %+v err=%v", active, err)
	}

	// Assigning the same task again reports the duplicate and stays put.
	replies = env.send(t, adminChat, "Assign task")
	empRow = keyboardRow(t, replies, "Ann")
	replies = env.send(t, adminChat, empRow)
	taskRow = keyboardRow(t, replies, "restock")
	replies = env.send(t, adminChat, taskRow)
	if !strings.Contains(allText(replies), "already working on this task") {
		t.Fatalf("no duplicate message: %q", allText(replies))
	}
}

func TestTakeAndCompleteTask(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	env.task(t, "restock", 10, domain.CategoryLogistics)
	env.send(t, employeeChat, "/register "+idArg(emp.ID))
	env.send(t, employeeChat, "Employee menu")
	replies := env.send(t, employeeChat, "Take task")
	taskRow := keyboardRow(t, replies, "restock")
	replies = env.send(t, employeeChat, taskRow)
	if !strings.Contains(allText(replies), "You took task 'restock' (10 points).") {
		t.Fatalf("no claim confirmation: %q", allText(replies))
	}

	*env.Now = env.Now.Add(3 * time.Minute)
	replies = env.send(t, employeeChat, "Complete task")
	doneRow := keyboardRow(t, replies, "restock")
	replies = env.send(t, employeeChat, doneRow)
	txt := allText(replies)
	if !strings.Contains(txt, "Task 'restock' completed.") ||
		!strings.Contains(txt, "Points earned: 10") ||
		!strings.Contains(txt, "Duration: 3.00 min") {
		t.Fatalf("completion text: %q", txt)
	}
	recs, err := env.Engine.Repo.ListCompletionsByEmployee(env.Ctx, emp.ID, 20)
	if err != nil || len(recs) != 1 {
		t.Fatalf("completion missing: %+v err=%v", recs, err)
	}
}

func TestCategoryHeaderNotSelectable(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	env.task(t, "restock", 5, domain.CategoryLogistics)
	env.send(t, employeeChat, "/register "+idArg(emp.ID))
	env.send(t, employeeChat, "Employee menu")
	env.send(t, employeeChat, "Take task")
	replies := env.send(t, employeeChat, "--- Logistics ---")
	if !strings.Contains(allText(replies), "category header") {
		t.Fatalf("header accepted: %q", allText(replies))
	}
	// The list is still live afterwards.
	replies = env.send(t, employeeChat, "restock (5 points) - ID: "+idArg(env.mustTaskID(t)))
	if !strings.Contains(allText(replies), "You took task") {
		t.Fatalf("selection after header failed: %q", allText(replies))
	}
}

func (env testEnv) mustTaskID(t *testing.T) int64 {
	t.Helper()
	tasks, err := env.Engine.Repo.ListTasks(env.Ctx)
	if err != nil || len(tasks) == 0 {
		t.Fatalf("no tasks: %v", err)
	}
	return tasks[0].ID
}

func TestBackEdges(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	env.send(t, adminChat, "Add employee")
	replies := env.send(t, adminChat, "Back")
	if !strings.Contains(allText(replies), "Admin menu") {
		t.Fatalf("back from name entry: %q", allText(replies))
	}
	env.send(t, adminChat, "Analytics")
	replies = env.send(t, adminChat, "All time")
	if !strings.Contains(allText(replies), "Choose a report") {
		t.Fatalf("no axis menu: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "Back")
	if !strings.Contains(allText(replies), "reporting period") {
		t.Fatalf("back from axis menu: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "Back")
	if !strings.Contains(allText(replies), "Admin menu") {
		t.Fatalf("back from period menu: %q", allText(replies))
	}
	replies = env.send(t, adminChat, "Back")
	if !strings.Contains(allText(replies), "Main menu") {
		t.Fatalf("back from admin menu: %q", allText(replies))
	}
}

func TestAnalyticsShowAllToggle(t *testing.T) {
	env := newTestEnv(t)
	ann := env.employee(t, "Ann")
	bob := env.employee(t, "Bob")
	task := env.task(t, "restock", 10, domain.CategoryLogistics)
	for _, id := range []int64{ann.ID, bob.ID} {
		a, err := env.Engine.Claim(env.Ctx, id, task.ID, "tester")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := env.Engine.Complete(env.Ctx, id, a.ID, "tester"); err != nil {
			t.Fatal(err)
		}
	}
	if err := env.Engine.DeactivateEmployee(env.Ctx, bob.ID, "tester"); err != nil {
		t.Fatal(err)
	}

	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	env.send(t, adminChat, "Analytics")
	env.send(t, adminChat, "All time")
	replies := env.send(t, adminChat, "By employee")
	txt := allText(replies)
	if !strings.Contains(txt, "(active employees only)") || strings.Contains(txt, "Bob") {
		t.Fatalf("active-only report: %q", txt)
	}
	replies = env.send(t, adminChat, "Show all")
	txt = allText(replies)
	if !strings.Contains(txt, "including deactivated") || !strings.Contains(txt, "Bob") {
		t.Fatalf("show-all report: %q", txt)
	}
	replies = env.send(t, adminChat, "Active only")
	if strings.Contains(allText(replies), "Bob") {
		t.Fatalf("toggle back: %q", allText(replies))
	}
}

func TestFleetReportEmptyWindow(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	env.send(t, adminChat, "Analytics")
	env.send(t, adminChat, "Today")
	replies := env.send(t, adminChat, "Overall")
	if !strings.Contains(allText(replies), "No data to analyze for today.") {
		t.Fatalf("empty fleet report: %q", allText(replies))
	}
}

func TestHistoryView(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 10, domain.CategoryLogistics)
	a, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Complete(env.Ctx, emp.ID, a.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	replies := env.send(t, adminChat, "Task history")
	empRow := keyboardRow(t, replies, "Ann")
	replies = env.send(t, adminChat, empRow)
	txt := allText(replies)
	if !strings.Contains(txt, "Completed tasks for Ann") || !strings.Contains(txt, "restock") {
		t.Fatalf("history text: %q", txt)
	}
}

func TestInvalidInputKeepsState(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	replies := env.send(t, adminChat, "what can you do?")
	if !strings.Contains(allText(replies), "Unrecognized input") {
		t.Fatalf("no error reply: %q", allText(replies))
	}
	// Still in the admin menu.
	replies = env.send(t, adminChat, "Add employee")
	if !strings.Contains(allText(replies), "name") {
		t.Fatalf("state lost after invalid input: %q", allText(replies))
	}
}

func TestSessionPersistsAcrossMachines(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, adminChat, "/start")
	env.send(t, adminChat, "Admin menu")
	env.send(t, adminChat, "Add employee")
	env.send(t, adminChat, "Bob")

	// A fresh machine over the same storage picks the flow up mid-step.
	env.Machine = dialog.New(env.Engine, []int64{adminChat}, nil)
	replies := env.send(t, adminChat, "2500")
	if !strings.Contains(allText(replies), "Employee Bob added with salary 2500.00.") {
		t.Fatalf("flow lost across machines: %q", allText(replies))
	}
}

func TestEmployeeSideRequiresBinding(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, employeeChat, "/start")
	replies := env.send(t, employeeChat, "Employee menu")
	if !strings.Contains(allText(replies), "Unrecognized input") {
		t.Fatalf("unbound chat reached employee menu: %q", allText(replies))
	}
}
