package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"crewtrack/internal/db"
	"crewtrack/internal/domain"
	"crewtrack/internal/engine"
	"crewtrack/internal/migrate"
	"crewtrack/internal/notify"
	"crewtrack/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
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
	eng.Events.Now = eng.Now
	return testEnv{Engine: eng, Ctx: context.Background(), Now: &now}
}

func (env testEnv) employee(t *testing.T, name string) domain.Employee {
	t.Helper()
	emp, err := env.Engine.CreateEmployee(env.Ctx, name, 3000, "tester")
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return emp
}

func (env testEnv) task(t *testing.T, name string, points int) domain.Task {
	t.Helper()
	task, err := env.Engine.CreateTask(env.Ctx, name, points, domain.CategoryOther, "tester")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestClaimCeiling(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	for i := 0; i < engine.MaxActiveAssignments; i++ {
		task := env.task(t, "task", 5)
		if _, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester"); err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
	}
	extra := env.task(t, "one too many", 5)
	if _, err := env.Engine.Claim(env.Ctx, emp.ID, extra.ID, "tester"); !errors.Is(err, engine.ErrConcurrencyLimit) {
		t.Fatalf("want ErrConcurrencyLimit, got %v", err)
	}
	active, err := env.Engine.Repo.ListAssignmentsByEmployee(env.Ctx, emp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != engine.MaxActiveAssignments {
		t.Fatalf("active = %d, want %d", len(active), engine.MaxActiveAssignments)
	}
}

func TestClaimDuplicatePair(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	if _, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester"); !errors.Is(err, engine.ErrDuplicateAssignment) {
		t.Fatalf("want ErrDuplicateAssignment, got %v", err)
	}
	// Completing frees the pair for another claim.
	active, _ := env.Engine.Repo.ListAssignmentsByEmployee(env.Ctx, emp.ID)
	if _, err := env.Engine.Complete(env.Ctx, emp.ID, active[0].ID, "tester"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester"); err != nil {
		t.Fatalf("re-claim after complete: %v", err)
	}
}

func TestClaimUnknownTargets(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	if _, err := env.Engine.Claim(env.Ctx, emp.ID, 999, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("unknown task: want ErrNotFound, got %v", err)
	}
	if _, err := env.Engine.Claim(env.Ctx, 999, task.ID, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("unknown employee: want ErrNotFound, got %v", err)
	}
	if err := env.Engine.DeactivateEmployee(env.Ctx, emp.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("deactivated employee: want ErrNotFound, got %v", err)
	}
}

func TestCompleteSnapshotsPoints(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 10)
	a, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	// A later catalog edit must not touch points earned.
	if err := env.Engine.SetTaskPoints(env.Ctx, task.ID, 99, "tester"); err != nil {
		t.Fatal(err)
	}
	*env.Now = env.Now.Add(90 * time.Second)
	rec, err := env.Engine.Complete(env.Ctx, emp.ID, a.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if rec.PointsEarned != 10 {
		t.Fatalf("points earned = %d, want 10", rec.PointsEarned)
	}
	if rec.DurationSeconds != 90 {
		t.Fatalf("duration = %d, want 90", rec.DurationSeconds)
	}
	active, _ := env.Engine.Repo.ListAssignmentsByEmployee(env.Ctx, emp.ID)
	if len(active) != 0 {
		t.Fatalf("assignment not removed, %d active", len(active))
	}
	recs, err := env.Engine.Repo.ListCompletionsByEmployee(env.Ctx, emp.ID, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("completions = %d, want 1", len(recs))
	}
}

func TestCompleteRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ann := env.employee(t, "Ann")
	bob := env.employee(t, "Bob")
	task := env.task(t, "restock", 5)
	a, err := env.Engine.Claim(env.Ctx, ann.ID, task.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Complete(env.Ctx, bob.ID, a.ID, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := env.Engine.Complete(env.Ctx, ann.ID, a.ID, "tester"); err != nil {
		t.Fatalf("owner complete: %v", err)
	}
	// A second complete of the same assignment finds nothing.
	if _, err := env.Engine.Complete(env.Ctx, ann.ID, a.ID, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("double complete: want ErrNotFound, got %v", err)
	}
}

func TestCancelLeavesNoCompletion(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	a, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	d, err := env.Engine.Cancel(env.Ctx, a.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if d.TaskName != "restock" || d.EmployeeName != "Ann" {
		t.Fatalf("detail = %+v", d)
	}
	recs, _ := env.Engine.Repo.ListCompletionsByEmployee(env.Ctx, emp.ID, 20)
	if len(recs) != 0 {
		t.Fatalf("cancel wrote %d completions", len(recs))
	}
	if _, err := env.Engine.Cancel(env.Ctx, a.ID, "tester"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("double cancel: want ErrNotFound, got %v", err)
	}
}

func TestDeactivateGuardedByActiveWork(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	a, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.DeactivateEmployee(env.Ctx, emp.ID, "tester"); !errors.Is(err, engine.ErrHasActiveWork) {
		t.Fatalf("want ErrHasActiveWork, got %v", err)
	}
	if _, err := env.Engine.Complete(env.Ctx, emp.ID, a.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.DeactivateEmployee(env.Ctx, emp.ID, "tester"); err != nil {
		t.Fatalf("deactivate after complete: %v", err)
	}
	// History stays queryable for deactivated employees.
	recs, err := env.Engine.Repo.ListCompletionsByEmployee(env.Ctx, emp.ID, 20)
	if err != nil || len(recs) != 1 {
		t.Fatalf("history after deactivate: %d records, err %v", len(recs), err)
	}
}

func TestDeleteTaskGuardedByAssignments(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	a, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.DeleteTask(env.Ctx, task.ID, "tester"); !errors.Is(err, engine.ErrTaskInUse) {
		t.Fatalf("want ErrTaskInUse, got %v", err)
	}
	if _, err := env.Engine.Complete(env.Ctx, emp.ID, a.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	if err := env.Engine.DeleteTask(env.Ctx, task.ID, "tester"); err != nil {
		t.Fatalf("delete after complete: %v", err)
	}
	// The completion survives with its snapshot; the join falls back for the name.
	recs, _ := env.Engine.Repo.ListCompletionsByEmployee(env.Ctx, emp.ID, 20)
	if len(recs) != 1 || recs[0].PointsEarned != 5 {
		t.Fatalf("history after task delete: %+v", recs)
	}
}

func TestAssignNotifiesBoundChat(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	if res, _, err := env.Engine.Bind(env.Ctx, 42, emp.ID); err != nil || res != engine.BindOk {
		t.Fatalf("bind: res=%v err=%v", res, err)
	}
	var gotChat int64
	var gotText string
	env.Engine.Notifier = notify.Func(func(chatID int64, text string) error {
		gotChat, gotText = chatID, text
		return nil
	})
	if _, err := env.Engine.Assign(env.Ctx, emp.ID, task.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	if gotChat != 42 || gotText == "" {
		t.Fatalf("notification: chat=%d text=%q", gotChat, gotText)
	}
}

func TestAssignSurvivesNotifierFailure(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	if res, _, err := env.Engine.Bind(env.Ctx, 42, emp.ID); err != nil || res != engine.BindOk {
		t.Fatalf("bind: res=%v err=%v", res, err)
	}
	core, logged := observer.New(zapcore.WarnLevel)
	env.Engine.Log = zap.New(core)
	env.Engine.Notifier = notify.Func(func(chatID int64, text string) error {
		return errors.New("chat transport down")
	})
	if _, err := env.Engine.Assign(env.Ctx, emp.ID, task.ID, "tester"); err != nil {
		t.Fatalf("assign must not surface notification failure: %v", err)
	}
	active, _ := env.Engine.Repo.ListAssignmentsByEmployee(env.Ctx, emp.ID)
	if len(active) != 1 {
		t.Fatalf("active = %d, want 1", len(active))
	}
	entries := logged.FilterMessage("notification failed").All()
	if len(entries) != 1 {
		t.Fatalf("logged failures = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["chat_id"] != int64(42) {
		t.Fatalf("logged chat_id = %v, want 42", fields["chat_id"])
	}
}

func TestBindOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ann := env.employee(t, "Ann")
	bob := env.employee(t, "Bob")

	res, emp, err := env.Engine.Bind(env.Ctx, 42, ann.ID)
	if err != nil || res != engine.BindOk || emp.ID != ann.ID {
		t.Fatalf("first bind: res=%v emp=%d err=%v", res, emp.ID, err)
	}
	res, emp, err = env.Engine.Bind(env.Ctx, 42, bob.ID)
	if err != nil || res != engine.BindAlreadyBound || emp.ID != ann.ID {
		t.Fatalf("bound chat: res=%v emp=%d err=%v", res, emp.ID, err)
	}
	res, _, err = env.Engine.Bind(env.Ctx, 43, ann.ID)
	if err != nil || res != engine.BindBoundElsewhere {
		t.Fatalf("taken employee: res=%v err=%v", res, err)
	}
	res, _, err = env.Engine.Bind(env.Ctx, 43, 999)
	if err != nil || res != engine.BindNotFound {
		t.Fatalf("unknown employee: res=%v err=%v", res, err)
	}
	if err := env.Engine.DeactivateEmployee(env.Ctx, bob.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	res, _, err = env.Engine.Bind(env.Ctx, 43, bob.ID)
	if err != nil || res != engine.BindInactive {
		t.Fatalf("inactive employee: res=%v err=%v", res, err)
	}
}

func TestBindReassignsChatOfDeactivated(t *testing.T) {
	env := newTestEnv(t)
	old := env.employee(t, "Old")
	if res, _, err := env.Engine.Bind(env.Ctx, 42, old.ID); err != nil || res != engine.BindOk {
		t.Fatalf("bind: res=%v err=%v", res, err)
	}
	if err := env.Engine.DeactivateEmployee(env.Ctx, old.ID, "tester"); err != nil {
		t.Fatal(err)
	}
	// The deactivated binding no longer claims the chat; a successor can take it.
	repl := env.employee(t, "Replacement")
	res, _, err := env.Engine.Bind(env.Ctx, 42, repl.ID)
	if err != nil || res != engine.BindOk {
		t.Fatalf("rebind: res=%v err=%v", res, err)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateEmployee(env.Ctx, "", 3000, "tester"); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := env.Engine.CreateEmployee(env.Ctx, "Ann", 0, "tester"); err == nil {
		t.Fatal("zero salary accepted")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, "restock", 0, domain.CategoryOther, "tester"); err == nil {
		t.Fatal("zero points accepted")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, "restock", 5, domain.Category("Nonsense"), "tester"); err == nil {
		t.Fatal("unknown category accepted")
	}
}

func TestMutationsAppendEvents(t *testing.T) {
	env := newTestEnv(t)
	emp := env.employee(t, "Ann")
	task := env.task(t, "restock", 5)
	a, err := env.Engine.Claim(env.Ctx, emp.ID, task.ID, "chat:42")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Engine.Complete(env.Ctx, emp.ID, a.ID, "chat:42"); err != nil {
		t.Fatal(err)
	}
	events, err := env.Engine.Repo.LatestEvents(env.Ctx, 50, "", "")
	if err != nil {
		t.Fatal(err)
	}
	types := map[string]bool{}
	for _, e := range events {
		types[e.Type] = true
	}
	for _, want := range []string{"employee.create", "task.create", "assignment.claim", "assignment.complete"} {
		if !types[want] {
			t.Fatalf("missing event %q in %v", want, types)
		}
	}
}
