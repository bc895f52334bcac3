package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"crewtrack/internal/domain"
	"crewtrack/internal/events"
	"crewtrack/internal/notify"
	"crewtrack/internal/repo"
)

// MaxActiveAssignments is the per-employee concurrency ceiling.
const MaxActiveAssignments = 3

// Engine owns every lifecycle mutation. Each operation runs its invariant
// checks and writes inside a single transaction, so concurrent sessions
// cannot overshoot the ceiling or leave dangling references.
type Engine struct {
	DB       *sql.DB
	Repo     repo.Repo
	Events   events.Writer
	Notifier notify.Notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func New(db *sql.DB) Engine {
	return Engine{
		DB:       db,
		Repo:     repo.Repo{DB: db},
		Events:   events.Writer{DB: db},
		Notifier: notify.LogNotifier{},
		Log:      zap.NewNop(),
		Now:      time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// notifyChat delivers best effort. A failed delivery is logged and the
// lifecycle outcome never depends on it.
func (e Engine) notifyChat(chatID *int64, text string) {
	if chatID == nil || e.Notifier == nil {
		return
	}
	if err := e.Notifier.Send(*chatID, text); err != nil && e.Log != nil {
		e.Log.Warn("notification failed", zap.Int64("chat_id", *chatID), zap.Error(err))
	}
}

func (e Engine) CreateEmployee(ctx context.Context, name string, salary float64, actor string) (domain.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Employee{}, errors.New("name is required")
	}
	if salary <= 0 {
		return domain.Employee{}, errors.New("salary must be positive")
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Employee{}, err
	}
	defer tx.Rollback()
	emp, err := e.Repo.InsertEmployeeTx(ctx, tx, name, salary)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "employee.create", "employee", idStr(emp.ID), actor, events.EventPayload{"name": name, "salary": salary}); err != nil {
		return domain.Employee{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Employee{}, err
	}
	return emp, nil
}

func (e Engine) RenameEmployee(ctx context.Context, id int64, name, actor string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	return e.mutate(ctx, "employee.rename", "employee", idStr(id), actor,
		events.EventPayload{"name": name},
		func(tx *sql.Tx) error { return e.Repo.UpdateEmployeeNameTx(ctx, tx, id, name) })
}

func (e Engine) SetEmployeeSalary(ctx context.Context, id int64, salary float64, actor string) error {
	if salary <= 0 {
		return errors.New("salary must be positive")
	}
	return e.mutate(ctx, "employee.salary", "employee", idStr(id), actor,
		events.EventPayload{"salary": salary},
		func(tx *sql.Tx) error { return e.Repo.UpdateEmployeeSalaryTx(ctx, tx, id, salary) })
}

// DeactivateEmployee soft-deletes. History keeps the row; an employee with
// running assignments cannot be removed.
func (e Engine) DeactivateEmployee(ctx context.Context, id int64, actor string) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := e.Repo.GetEmployeeTx(ctx, tx, id); err != nil {
		return err
	}
	n, err := e.Repo.CountActiveTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrHasActiveWork
	}
	if err := e.Repo.DeactivateEmployeeTx(ctx, tx, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "employee.deactivate", "employee", idStr(id), actor, nil); err != nil {
		return err
	}
	return tx.Commit()
}

func (e Engine) CreateTask(ctx context.Context, name string, points int, category domain.Category, actor string) (domain.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Task{}, errors.New("name is required")
	}
	if points <= 0 {
		return domain.Task{}, errors.New("points must be positive")
	}
	if !category.Valid() {
		return domain.Task{}, fmt.Errorf("unknown category %q", category)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	task, err := e.Repo.InsertTaskTx(ctx, tx, name, points, category)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "task.create", "task", idStr(task.ID), actor, events.EventPayload{"name": name, "points": points, "category": category}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (e Engine) RenameTask(ctx context.Context, id int64, name, actor string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	return e.mutate(ctx, "task.rename", "task", idStr(id), actor,
		events.EventPayload{"name": name},
		func(tx *sql.Tx) error { return e.Repo.UpdateTaskNameTx(ctx, tx, id, name) })
}

// SetTaskPoints changes the catalog value going forward. Assignments already
// claimed keep their snapshot.
func (e Engine) SetTaskPoints(ctx context.Context, id int64, points int, actor string) error {
	if points <= 0 {
		return errors.New("points must be positive")
	}
	return e.mutate(ctx, "task.points", "task", idStr(id), actor,
		events.EventPayload{"points": points},
		func(tx *sql.Tx) error { return e.Repo.UpdateTaskPointsTx(ctx, tx, id, points) })
}

func (e Engine) SetTaskCategory(ctx context.Context, id int64, category domain.Category, actor string) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	return e.mutate(ctx, "task.category", "task", idStr(id), actor,
		events.EventPayload{"category": category},
		func(tx *sql.Tx) error { return e.Repo.UpdateTaskCategoryTx(ctx, tx, id, category) })
}

// DeleteTask removes a catalog entry. Past completions keep reporting it by
// snapshot; only active assignments block deletion.
func (e Engine) DeleteTask(ctx context.Context, id int64, actor string) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := e.Repo.GetTaskTx(ctx, tx, id); err != nil {
		return err
	}
	n, err := e.Repo.CountAssignmentsForTaskTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrTaskInUse
	}
	if err := e.Repo.DeleteTaskTx(ctx, tx, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "task.delete", "task", idStr(id), actor, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// Claim opens an assignment for the employee's own pick. The ceiling and the
// one-assignment-per-task rule are checked inside the same transaction as the
// insert.
func (e Engine) Claim(ctx context.Context, employeeID, taskID int64, actor string) (domain.Assignment, error) {
	a, _, err := e.claim(ctx, employeeID, taskID, actor, "assignment.claim")
	return a, err
}

// Assign is the admin-initiated claim. Same invariants; after commit the
// employee's bound chat is notified best effort.
func (e Engine) Assign(ctx context.Context, employeeID, taskID int64, actor string) (domain.Assignment, error) {
	a, info, err := e.claim(ctx, employeeID, taskID, actor, "assignment.assign")
	if err != nil {
		return domain.Assignment{}, err
	}
	e.notifyChat(info.chat, fmt.Sprintf("New assignment: %s (%d points)", info.taskName, a.Points))
	return a, nil
}

type claimInfo struct {
	taskName string
	chat     *int64
}

func (e Engine) claim(ctx context.Context, employeeID, taskID int64, actor, evtType string) (domain.Assignment, claimInfo, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	defer tx.Rollback()

	emp, err := e.Repo.GetEmployeeTx(ctx, tx, employeeID)
	if err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	if !emp.Active {
		return domain.Assignment{}, claimInfo{}, repo.ErrNotFound
	}
	task, err := e.Repo.GetTaskTx(ctx, tx, taskID)
	if err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	n, err := e.Repo.CountActiveTx(ctx, tx, employeeID)
	if err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	if n >= MaxActiveAssignments {
		return domain.Assignment{}, claimInfo{}, ErrConcurrencyLimit
	}
	dup, err := e.Repo.PairActiveTx(ctx, tx, employeeID, taskID)
	if err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	if dup {
		return domain.Assignment{}, claimInfo{}, ErrDuplicateAssignment
	}
	startedAt := e.now().UTC().Format(time.RFC3339)
	a, err := e.Repo.InsertAssignmentTx(ctx, tx, employeeID, taskID, task.Points, startedAt)
	if err != nil {
		return domain.Assignment{}, claimInfo{}, fmt.Errorf("insert assignment: %w", err)
	}
	if err := e.Events.Append(ctx, tx, evtType, "assignment", idStr(a.ID), actor, events.EventPayload{
		"employee_id": employeeID, "task_id": taskID, "points": task.Points,
	}); err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Assignment{}, claimInfo{}, err
	}
	return a, claimInfo{taskName: task.Name, chat: emp.ChatID}, nil
}

// Complete closes an assignment the employee owns: one transaction inserts
// the immutable completion and deletes the assignment. Duration is whole
// seconds between claim and completion, never negative.
func (e Engine) Complete(ctx context.Context, employeeID, assignmentID int64, actor string) (domain.Completion, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Completion{}, err
	}
	defer tx.Rollback()

	a, err := e.Repo.GetAssignmentForEmployeeTx(ctx, tx, assignmentID, employeeID)
	if err != nil {
		return domain.Completion{}, err
	}
	started, err := time.Parse(time.RFC3339, a.StartedAt)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("parse started_at: %w", err)
	}
	ended := e.now().UTC()
	duration := int64(ended.Sub(started) / time.Second)
	if duration < 0 {
		duration = 0
	}
	c, err := e.Repo.InsertCompletionTx(ctx, tx, domain.Completion{
		EmployeeID:      a.EmployeeID,
		TaskID:          a.TaskID,
		StartedAt:       a.StartedAt,
		EndedAt:         ended.Format(time.RFC3339),
		PointsEarned:    a.Points,
		DurationSeconds: duration,
	})
	if err != nil {
		return domain.Completion{}, fmt.Errorf("insert completion: %w", err)
	}
	if err := e.Repo.DeleteAssignmentTx(ctx, tx, a.ID); err != nil {
		return domain.Completion{}, err
	}
	if err := e.Events.Append(ctx, tx, "assignment.complete", "completion", idStr(c.ID), actor, events.EventPayload{
		"employee_id": a.EmployeeID, "task_id": a.TaskID, "points": a.Points, "duration_seconds": duration,
	}); err != nil {
		return domain.Completion{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Completion{}, err
	}
	return c, nil
}

// Cancel destroys an assignment without a completion and tells the employee.
func (e Engine) Cancel(ctx context.Context, assignmentID int64, actor string) (repo.AssignmentDetail, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return repo.AssignmentDetail{}, err
	}
	defer tx.Rollback()

	d, err := e.Repo.GetAssignmentDetailTx(ctx, tx, assignmentID)
	if err != nil {
		return repo.AssignmentDetail{}, err
	}
	if err := e.Repo.DeleteAssignmentTx(ctx, tx, d.ID); err != nil {
		return repo.AssignmentDetail{}, err
	}
	if err := e.Events.Append(ctx, tx, "assignment.cancel", "assignment", idStr(d.ID), actor, events.EventPayload{
		"employee_id": d.EmployeeID, "task_id": d.TaskID,
	}); err != nil {
		return repo.AssignmentDetail{}, err
	}
	if err := tx.Commit(); err != nil {
		return repo.AssignmentDetail{}, err
	}
	e.notifyChat(d.EmployeeChat, fmt.Sprintf("Assignment cancelled: %s", d.TaskName))
	return d, nil
}

// mutate wraps a single-row update with its audit event.
func (e Engine) mutate(ctx context.Context, evtType, entityKind, entityID, actor string, payload events.EventPayload, fn func(tx *sql.Tx) error) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, evtType, entityKind, entityID, actor, payload); err != nil {
		return err
	}
	return tx.Commit()
}

func idStr(id int64) string {
	return fmt.Sprintf("%d", id)
}
