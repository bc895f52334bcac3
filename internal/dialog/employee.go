package dialog

import (
	"context"
	"errors"
	"fmt"

	"crewtrack/internal/domain"
	"crewtrack/internal/engine"
	"crewtrack/internal/repo"
)

// requireEmployee resolves the chat's bound employee. The binding can vanish
// mid-conversation (deactivation), so every employee-side state re-checks.
func (m *Machine) requireEmployee(ctx context.Context, s *session) (domain.Employee, []Reply, error) {
	emp, bound, err := m.boundEmployee(ctx, s.chatID)
	if err != nil {
		return domain.Employee{}, nil, err
	}
	if !bound {
		replies, err := m.mainMenu(ctx, s, "You are not registered as an employee. Use /register ID first.")
		return domain.Employee{}, replies, err
	}
	return emp, nil, nil
}

func (m *Machine) stateEmployee(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	emp, replies, err := m.requireEmployee(ctx, s)
	if err != nil || replies != nil {
		return replies, err
	}
	switch c := cmd.(type) {
	case CmdBack:
		return m.mainMenu(ctx, s, "Main menu")
	case CmdMenu:
		switch c.Item {
		case MenuTakeTask:
			active, err := m.Repo.ListAssignmentsByEmployee(ctx, emp.ID)
			if err != nil {
				return nil, err
			}
			if len(active) >= engine.MaxActiveAssignments {
				return []Reply{text(fmt.Sprintf("You already have %d active tasks. Complete at least one before taking another.",
					engine.MaxActiveAssignments))}, nil
			}
			reply, ok, err := m.taskListReply(ctx, "Choose a task:")
			if err != nil {
				return nil, err
			}
			if !ok {
				return []Reply{text("No tasks available.")}, nil
			}
			s.state = StateTakeTask
			return []Reply{reply}, nil
		case MenuCompleteTask:
			active, err := m.Repo.ListAssignmentsByEmployee(ctx, emp.ID)
			if err != nil {
				return nil, err
			}
			if len(active) == 0 {
				return []Reply{text("You have no active tasks.")}, nil
			}
			s.state = StateCompleteTask
			return []Reply{withKeyboard("Choose a task to complete:", completeKeyboard(active, m.now()))}, nil
		case MenuMyStats:
			stats, err := m.Analytics.Personal(ctx, emp.ID)
			if err != nil {
				return nil, err
			}
			active, err := m.Repo.ListAssignmentsByEmployee(ctx, emp.ID)
			if err != nil {
				return nil, err
			}
			return []Reply{text(personalStatsText(emp.Name, stats, active, m.now()))}, nil
		}
	}
	return []Reply{text(invalidInputMsg)}, nil
}

func (m *Machine) stateTakeTask(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	emp, replies, err := m.requireEmployee(ctx, s)
	if err != nil || replies != nil {
		return replies, err
	}
	switch c := cmd.(type) {
	case CmdBack:
		return m.employeeMenu(s), nil
	case CmdHeader:
		return []Reply{text("That is a category header. Please choose a task.")}, nil
	case CmdSelect:
		a, err := m.Engine.Claim(ctx, emp.ID, c.ID, m.actor(s))
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return []Reply{text("Task not found.")}, nil
		case errors.Is(err, engine.ErrDuplicateAssignment):
			return []Reply{text("You already took this task.")}, nil
		case errors.Is(err, engine.ErrConcurrencyLimit):
			return []Reply{text(fmt.Sprintf("You already have %d active tasks. Complete at least one before taking another.",
				engine.MaxActiveAssignments))}, nil
		case err != nil:
			return nil, err
		}
		task, err := m.Repo.GetTask(ctx, a.TaskID)
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("You took task '%s' (%d points).\nStarted: %s", task.Name, a.Points, formatTS(a.StartedAt))
		return m.employeeMenu(s, text(msg)), nil
	}
	return []Reply{text("Couldn't read the task ID. Please pick a task from the list.")}, nil
}

func (m *Machine) stateCompleteTask(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	emp, replies, err := m.requireEmployee(ctx, s)
	if err != nil || replies != nil {
		return replies, err
	}
	switch c := cmd.(type) {
	case CmdBack:
		return m.employeeMenu(s), nil
	case CmdSelect:
		rec, err := m.Engine.Complete(ctx, emp.ID, c.ID, m.actor(s))
		if errors.Is(err, repo.ErrNotFound) {
			return []Reply{text("Task not found or not yours.")}, nil
		}
		if err != nil {
			return nil, err
		}
		name := "task"
		if task, terr := m.Repo.GetTask(ctx, rec.TaskID); terr == nil {
			name = task.Name
		}
		msg := fmt.Sprintf("Task '%s' completed.\nPoints earned: %d\nDuration: %.2f min",
			name, rec.PointsEarned, float64(rec.DurationSeconds)/60.0)
		return m.employeeMenu(s, text(msg)), nil
	}
	return []Reply{text("Couldn't read the task ID. Please pick a task from the list.")}, nil
}
