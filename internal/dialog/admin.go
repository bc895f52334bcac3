package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crewtrack/internal/analytics"
	"crewtrack/internal/engine"
	"crewtrack/internal/repo"
)

// List prompts. Each select* state re-renders its own list after NotFound so
// a stale keyboard never strands the conversation.

func (m *Machine) employeeListReply(ctx context.Context, caption string, withSalary bool) (Reply, bool, error) {
	emps, err := m.Repo.ListEmployees(ctx, true)
	if err != nil {
		return Reply{}, false, err
	}
	if len(emps) == 0 {
		return Reply{}, false, nil
	}
	return withKeyboard(caption, employeeKeyboard(emps, withSalary)), true, nil
}

func (m *Machine) taskListReply(ctx context.Context, caption string) (Reply, bool, error) {
	tasks, err := m.Repo.ListTasks(ctx)
	if err != nil {
		return Reply{}, false, err
	}
	if len(tasks) == 0 {
		return Reply{}, false, nil
	}
	return withKeyboard(caption, taskKeyboard(tasks)), true, nil
}

func (m *Machine) cancelListReply(ctx context.Context) (Reply, bool, error) {
	active, err := m.Repo.ListAssignments(ctx)
	if err != nil {
		return Reply{}, false, err
	}
	if len(active) == 0 {
		return Reply{}, false, nil
	}
	return withKeyboard("Choose an assignment to cancel:", cancelKeyboard(active, m.now())), true, nil
}

func (m *Machine) stateAdmin(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.mainMenu(ctx, s, "Main menu")
	case CmdMenu:
		switch c.Item {
		case MenuAddEmployee:
			s.state = StateEnterEmployeeName
			return []Reply{text("Enter the new employee's name:")}, nil
		case MenuAddTask:
			s.state = StateEnterTaskName
			return []Reply{text("Enter the new task's name:")}, nil
		case MenuAnalytics:
			s.state = StateSelectPeriod
			return []Reply{withKeyboard("Choose a reporting period:", periodKeyboard())}, nil
		case MenuAssignTask:
			reply, ok, err := m.employeeListReply(ctx, "Choose an employee to assign a task to:", false)
			if err != nil {
				return nil, err
			}
			if !ok {
				return []Reply{text("No active employees.")}, nil
			}
			s.state = StateSelectEmployee
			return []Reply{reply}, nil
		case MenuEditEmployee:
			reply, ok, err := m.employeeListReply(ctx, "Choose an employee to edit:", true)
			if err != nil {
				return nil, err
			}
			if !ok {
				return []Reply{text("No active employees.")}, nil
			}
			s.state = StateSelectEmployeeEdit
			return []Reply{reply}, nil
		case MenuEditTask:
			reply, ok, err := m.taskListReply(ctx, "Choose a task to edit:")
			if err != nil {
				return nil, err
			}
			if !ok {
				return []Reply{text("No tasks available.")}, nil
			}
			s.state = StateSelectTaskEdit
			return []Reply{reply}, nil
		case MenuCancelActive:
			reply, ok, err := m.cancelListReply(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return []Reply{text("No active assignments.")}, nil
			}
			s.state = StateSelectCancel
			return []Reply{reply}, nil
		case MenuHistory:
			reply, ok, err := m.employeeListReply(ctx, "Choose an employee to view history:", false)
			if err != nil {
				return nil, err
			}
			if !ok {
				return []Reply{text("No active employees.")}, nil
			}
			s.state = StateViewHistory
			return []Reply{reply}, nil
		}
	}
	return []Reply{text(invalidInputMsg)}, nil
}

// Add-employee chain: name, then salary.

func (m *Machine) stateEnterEmployeeName(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		return m.adminMenu(s), nil
	}
	name := strings.TrimSpace(raw)
	if name == "" {
		return []Reply{text("The name cannot be empty. Enter the new employee's name:")}, nil
	}
	s.data.EmployeeName = name
	s.state = StateEnterEmployeeSalary
	return []Reply{text(fmt.Sprintf("Enter the salary for %s:", name))}, nil
}

func (m *Machine) stateEnterEmployeeSalary(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		return m.adminMenu(s), nil
	}
	salary, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || salary <= 0 {
		return []Reply{text("Please enter a positive number for the salary.")}, nil
	}
	emp, err := m.Engine.CreateEmployee(ctx, s.data.EmployeeName, salary, m.actor(s))
	if err != nil {
		return nil, err
	}
	s.data = sessionData{}
	msg := fmt.Sprintf("Employee %s added with salary %.2f.\nEmployee ID: %d\n\nThey can register with:\n/register %d",
		emp.Name, emp.Salary, emp.ID, emp.ID)
	return m.adminMenu(s, text(msg)), nil
}

// Add-task chain: name, points, category.

func (m *Machine) stateEnterTaskName(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		return m.adminMenu(s), nil
	}
	name := strings.TrimSpace(raw)
	if name == "" {
		return []Reply{text("The name cannot be empty. Enter the new task's name:")}, nil
	}
	s.data.TaskName = name
	s.state = StateEnterTaskPoints
	return []Reply{text(fmt.Sprintf("Enter the points for task '%s':", name))}, nil
}

func (m *Machine) stateEnterTaskPoints(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		return m.adminMenu(s), nil
	}
	points, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return []Reply{text("Please enter a whole number for the points.")}, nil
	}
	if points <= 0 {
		return []Reply{text("Points must be a positive number.")}, nil
	}
	s.data.TaskPoints = points
	s.state = StateEnterTaskCategory
	return []Reply{withKeyboard(fmt.Sprintf("Choose a category for task '%s':", s.data.TaskName), categoryKeyboard())}, nil
}

func (m *Machine) stateEnterTaskCategory(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdCategory:
		task, err := m.Engine.CreateTask(ctx, s.data.TaskName, s.data.TaskPoints, c.Category, m.actor(s))
		if err != nil {
			return nil, err
		}
		s.data = sessionData{}
		msg := fmt.Sprintf("Task '%s' added.\nCategory: %s\nPoints: %d", task.Name, task.Category, task.Points)
		return m.adminMenu(s, text(msg)), nil
	}
	return []Reply{text("Please choose a category from the list.")}, nil
}

// Assign chain: pick employee, then pick task.

func (m *Machine) stateSelectEmployee(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdSelect:
		emp, err := m.Repo.GetEmployee(ctx, c.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return m.reselectEmployee(ctx, s, "Employee not found.")
		}
		if err != nil {
			return nil, err
		}
		s.data.SelectedEmployeeID = emp.ID
		s.data.SelectedEmployeeName = emp.Name
		reply, ok, err := m.taskListReply(ctx, fmt.Sprintf("Choose a task for %s:", emp.Name))
		if err != nil {
			return nil, err
		}
		if !ok {
			return m.adminMenu(s, text("No tasks available.")), nil
		}
		s.state = StateAssignTask
		return []Reply{reply}, nil
	}
	return []Reply{text("Couldn't read the employee ID. Please pick an employee from the list.")}, nil
}

func (m *Machine) reselectEmployee(ctx context.Context, s *session, msg string) ([]Reply, error) {
	reply, ok, err := m.employeeListReply(ctx, "Choose an employee to assign a task to:", false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return m.adminMenu(s, text(msg)), nil
	}
	return []Reply{text(msg), reply}, nil
}

func (m *Machine) stateAssignTask(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		reply, ok, err := m.employeeListReply(ctx, "Choose an employee to assign a task to:", false)
		if err != nil {
			return nil, err
		}
		if !ok {
			return m.adminMenu(s, text("No active employees.")), nil
		}
		s.state = StateSelectEmployee
		return []Reply{reply}, nil
	case CmdHeader:
		return []Reply{text("That is a category header. Please choose a task.")}, nil
	case CmdSelect:
		a, err := m.Engine.Assign(ctx, s.data.SelectedEmployeeID, c.ID, m.actor(s))
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return []Reply{text("Task not found.")}, nil
		case errors.Is(err, engine.ErrConcurrencyLimit):
			return []Reply{text(fmt.Sprintf("%s already has %d active tasks. Complete or cancel one first.",
				s.data.SelectedEmployeeName, engine.MaxActiveAssignments))}, nil
		case errors.Is(err, engine.ErrDuplicateAssignment):
			return []Reply{text(fmt.Sprintf("%s is already working on this task.", s.data.SelectedEmployeeName))}, nil
		case err != nil:
			return nil, err
		}
		task, err := m.Repo.GetTask(ctx, a.TaskID)
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Task '%s' (%d points) assigned to %s.", task.Name, a.Points, s.data.SelectedEmployeeName)
		s.data = sessionData{}
		return m.adminMenu(s, text(msg)), nil
	}
	return []Reply{text("Couldn't read the task ID. Please pick a task from the list.")}, nil
}

// Edit-employee chain.

func (m *Machine) stateSelectEmployeeEdit(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdSelect:
		emp, err := m.Repo.GetEmployee(ctx, c.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return m.reselectEmployeeEdit(ctx, s, "Employee not found.")
		}
		if err != nil {
			return nil, err
		}
		s.data.EditEmployeeID = emp.ID
		s.data.EditEmployeeName = emp.Name
		s.state = StateEditEmployee
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for %s:", emp.Name), editEmployeeKeyboard())}, nil
	}
	return []Reply{text("Couldn't read the employee ID. Please pick an employee from the list.")}, nil
}

func (m *Machine) reselectEmployeeEdit(ctx context.Context, s *session, msgs ...string) ([]Reply, error) {
	reply, ok, err := m.employeeListReply(ctx, "Choose an employee to edit:", true)
	if err != nil {
		return nil, err
	}
	var replies []Reply
	for _, msg := range msgs {
		replies = append(replies, text(msg))
	}
	if !ok {
		return m.adminMenu(s, replies...), nil
	}
	s.state = StateSelectEmployeeEdit
	return append(replies, reply), nil
}

func (m *Machine) stateEditEmployee(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.reselectEmployeeEdit(ctx, s)
	case CmdMenu:
		switch c.Item {
		case MenuChangeName:
			s.state = StateEditEmployeeName
			return []Reply{text(fmt.Sprintf("Enter a new name for %s:", s.data.EditEmployeeName))}, nil
		case MenuChangeSalary:
			s.state = StateEditEmployeeSalary
			return []Reply{text(fmt.Sprintf("Enter a new salary for %s:", s.data.EditEmployeeName))}, nil
		case MenuDeactivate:
			err := m.Engine.DeactivateEmployee(ctx, s.data.EditEmployeeID, m.actor(s))
			if errors.Is(err, engine.ErrHasActiveWork) {
				return []Reply{text(fmt.Sprintf("Cannot deactivate %s while they have active tasks. Cancel those first.",
					s.data.EditEmployeeName))}, nil
			}
			if err != nil {
				return nil, err
			}
			msg := fmt.Sprintf("Employee %s deactivated.", s.data.EditEmployeeName)
			s.data = sessionData{}
			return m.adminMenu(s, text(msg)), nil
		}
	}
	return []Reply{text(invalidInputMsg)}, nil
}

func (m *Machine) stateEditEmployeeName(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		s.state = StateEditEmployee
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for %s:", s.data.EditEmployeeName), editEmployeeKeyboard())}, nil
	}
	name := strings.TrimSpace(raw)
	if name == "" {
		return []Reply{text("The name cannot be empty. Enter a new name:")}, nil
	}
	if err := m.Engine.RenameEmployee(ctx, s.data.EditEmployeeID, name, m.actor(s)); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Employee name changed from '%s' to '%s'.", s.data.EditEmployeeName, name)
	return m.reselectEmployeeEdit(ctx, s, msg)
}

func (m *Machine) stateEditEmployeeSalary(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		s.state = StateEditEmployee
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for %s:", s.data.EditEmployeeName), editEmployeeKeyboard())}, nil
	}
	salary, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || salary <= 0 {
		return []Reply{text("Please enter a positive number for the salary.")}, nil
	}
	if err := m.Engine.SetEmployeeSalary(ctx, s.data.EditEmployeeID, salary, m.actor(s)); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Salary for %s changed to %.2f.", s.data.EditEmployeeName, salary)
	return m.reselectEmployeeEdit(ctx, s, msg)
}

// Edit-task chain.

func (m *Machine) stateSelectTaskEdit(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdHeader:
		return []Reply{text("That is a category header. Please choose a task.")}, nil
	case CmdSelect:
		task, err := m.Repo.GetTask(ctx, c.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return m.reselectTaskEdit(ctx, s, "Task not found.")
		}
		if err != nil {
			return nil, err
		}
		s.data.EditTaskID = task.ID
		s.data.EditTaskName = task.Name
		s.state = StateEditTask
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for task '%s':", task.Name), editTaskKeyboard())}, nil
	}
	return []Reply{text("Couldn't read the task ID. Please pick a task from the list.")}, nil
}

func (m *Machine) reselectTaskEdit(ctx context.Context, s *session, msgs ...string) ([]Reply, error) {
	reply, ok, err := m.taskListReply(ctx, "Choose a task to edit:")
	if err != nil {
		return nil, err
	}
	var replies []Reply
	for _, msg := range msgs {
		replies = append(replies, text(msg))
	}
	if !ok {
		return m.adminMenu(s, replies...), nil
	}
	s.state = StateSelectTaskEdit
	return append(replies, reply), nil
}

func (m *Machine) stateEditTask(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.reselectTaskEdit(ctx, s)
	case CmdMenu:
		switch c.Item {
		case MenuChangeName:
			s.state = StateEditTaskName
			return []Reply{text(fmt.Sprintf("Enter a new name for task '%s':", s.data.EditTaskName))}, nil
		case MenuChangePoints:
			s.state = StateEditTaskPoints
			return []Reply{text(fmt.Sprintf("Enter new points for task '%s':", s.data.EditTaskName))}, nil
		case MenuChangeCategory:
			s.state = StateEditTaskCategory
			return []Reply{withKeyboard(fmt.Sprintf("Choose a new category for task '%s':", s.data.EditTaskName), categoryKeyboard())}, nil
		case MenuDeleteTask:
			err := m.Engine.DeleteTask(ctx, s.data.EditTaskID, m.actor(s))
			if errors.Is(err, engine.ErrTaskInUse) {
				return []Reply{text(fmt.Sprintf("Cannot delete task '%s' while it is being worked on. Cancel those assignments first.",
					s.data.EditTaskName))}, nil
			}
			if err != nil {
				return nil, err
			}
			msg := fmt.Sprintf("Task '%s' deleted.", s.data.EditTaskName)
			s.data = sessionData{}
			return m.adminMenu(s, text(msg)), nil
		}
	}
	return []Reply{text(invalidInputMsg)}, nil
}

func (m *Machine) stateEditTaskName(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		s.state = StateEditTask
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for task '%s':", s.data.EditTaskName), editTaskKeyboard())}, nil
	}
	name := strings.TrimSpace(raw)
	if name == "" {
		return []Reply{text("The name cannot be empty. Enter a new name:")}, nil
	}
	if err := m.Engine.RenameTask(ctx, s.data.EditTaskID, name, m.actor(s)); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Task name changed from '%s' to '%s'.", s.data.EditTaskName, name)
	return m.reselectTaskEdit(ctx, s, msg)
}

func (m *Machine) stateEditTaskPoints(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	if _, ok := cmd.(CmdBack); ok {
		s.state = StateEditTask
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for task '%s':", s.data.EditTaskName), editTaskKeyboard())}, nil
	}
	points, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return []Reply{text("Please enter a whole number for the points.")}, nil
	}
	if points <= 0 {
		return []Reply{text("Points must be a positive number.")}, nil
	}
	if err := m.Engine.SetTaskPoints(ctx, s.data.EditTaskID, points, m.actor(s)); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Points for task '%s' changed to %d.", s.data.EditTaskName, points)
	return m.reselectTaskEdit(ctx, s, msg)
}

func (m *Machine) stateEditTaskCategory(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		s.state = StateEditTask
		return []Reply{withKeyboard(fmt.Sprintf("Choose an action for task '%s':", s.data.EditTaskName), editTaskKeyboard())}, nil
	case CmdCategory:
		if err := m.Engine.SetTaskCategory(ctx, s.data.EditTaskID, c.Category, m.actor(s)); err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Category for task '%s' changed to %s.", s.data.EditTaskName, c.Category)
		return m.reselectTaskEdit(ctx, s, msg)
	}
	return []Reply{text("Please choose a category from the list.")}, nil
}

// Cancel and history.

func (m *Machine) stateSelectCancel(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdHeader:
		return []Reply{text("That is a grouping header. Please choose an assignment.")}, nil
	case CmdSelect:
		d, err := m.Engine.Cancel(ctx, c.ID, m.actor(s))
		if errors.Is(err, repo.ErrNotFound) {
			reply, ok, lerr := m.cancelListReply(ctx)
			if lerr != nil {
				return nil, lerr
			}
			if !ok {
				return m.adminMenu(s, text("Assignment not found."), text("No active assignments.")), nil
			}
			return []Reply{text("Assignment not found."), reply}, nil
		}
		if err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Task '%s' cancelled for %s.", d.TaskName, d.EmployeeName)
		reply, ok, err := m.cancelListReply(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return m.adminMenu(s, text(msg), text("No active assignments.")), nil
		}
		return []Reply{text(msg), reply}, nil
	}
	return []Reply{text("Couldn't read the assignment ID. Please pick one from the list.")}, nil
}

func (m *Machine) stateViewHistory(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdSelect:
		emp, err := m.Repo.GetEmployee(ctx, c.ID)
		if errors.Is(err, repo.ErrNotFound) {
			reply, ok, lerr := m.employeeListReply(ctx, "Choose an employee to view history:", false)
			if lerr != nil {
				return nil, lerr
			}
			if !ok {
				return m.adminMenu(s, text("Employee not found.")), nil
			}
			return []Reply{text("Employee not found."), reply}, nil
		}
		if err != nil {
			return nil, err
		}
		recs, err := m.Repo.ListCompletionsByEmployee(ctx, emp.ID, 20)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return m.adminMenu(s, text(fmt.Sprintf("%s has no completed tasks yet.", emp.Name))), nil
		}
		return m.adminMenu(s, text(historyText(emp.Name, recs))), nil
	}
	return []Reply{text("Couldn't read the employee ID. Please pick an employee from the list.")}, nil
}

// Analytics: period first, then axis.

func (m *Machine) stateSelectPeriod(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	switch c := cmd.(type) {
	case CmdBack:
		return m.adminMenu(s), nil
	case CmdPeriod:
		s.data.Window = int(c.Window)
		s.state = StateAnalytics
		return []Reply{withKeyboard(fmt.Sprintf("Choose a report (%s):", c.Window), analyticsKeyboard())}, nil
	}
	return []Reply{text("Please choose a period from the list.")}, nil
}

func (m *Machine) stateAnalytics(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	w := analytics.Window(s.data.Window)
	menu, ok := cmd.(CmdMenu)
	if !ok {
		if _, isBack := cmd.(CmdBack); isBack {
			s.state = StateSelectPeriod
			return []Reply{withKeyboard("Choose a reporting period:", periodKeyboard())}, nil
		}
		return []Reply{text(invalidInputMsg)}, nil
	}
	switch menu.Item {
	case MenuByEmployee:
		return m.employeeAnalytics(ctx, s, w)
	case MenuShowAll:
		s.data.ShowAll = true
		return m.employeeAnalytics(ctx, s, w)
	case MenuActiveOnly:
		s.data.ShowAll = false
		return m.employeeAnalytics(ctx, s, w)
	case MenuByTask:
		rows, err := m.Analytics.ByTask(ctx, w)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return []Reply{text("No task data.")}, nil
		}
		return []Reply{text(taskReportText(rows, w))}, nil
	case MenuFleet:
		rep, err := m.Analytics.Fleet(ctx, w)
		if err != nil {
			return nil, err
		}
		if rep.Totals.Completed == 0 {
			return []Reply{text(fmt.Sprintf("No data to analyze for %s.", w))}, nil
		}
		return []Reply{text(fleetReportText(rep, w))}, nil
	}
	return []Reply{text(invalidInputMsg)}, nil
}

func (m *Machine) employeeAnalytics(ctx context.Context, s *session, w analytics.Window) ([]Reply, error) {
	reports, err := m.Analytics.ByEmployee(ctx, w, s.data.ShowAll)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return []Reply{text("No employee data.")}, nil
	}
	toggle := MenuShowAll.Caption()
	if s.data.ShowAll {
		toggle = MenuActiveOnly.Caption()
	}
	kb := [][]string{{toggle}, {backCaption}}
	return []Reply{withKeyboard(employeeReportText(reports, w, s.data.ShowAll), kb)}, nil
}
