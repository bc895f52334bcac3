package dialog

import (
	"crewtrack/internal/analytics"
	"crewtrack/internal/domain"
)

// Command is the tagged union every inbound message is mapped to before the
// state machine sees it. Handlers dispatch on command type, never on display
// strings.
type Command interface {
	isCommand()
}

// CmdStart resets the session to the entry menu.
type CmdStart struct{}

// CmdRegister binds the chat to an employee record. ID is zero when the
// argument was missing or not a number.
type CmdRegister struct {
	EmployeeID int64
}

// CmdBack returns to the state's explicit back target.
type CmdBack struct{}

// CmdMenu is a recognized menu caption.
type CmdMenu struct {
	Item MenuItem
}

// CmdSelect is a list row carrying an "ID: n" suffix.
type CmdSelect struct {
	ID int64
}

// CmdHeader is a category or grouping header row, never selectable.
type CmdHeader struct{}

// CmdCategory is one of the fixed task categories.
type CmdCategory struct {
	Category domain.Category
}

// CmdPeriod is one of the fixed analytics windows.
type CmdPeriod struct {
	Window analytics.Window
}

// CmdText is free-form input, used by the data-entry states.
type CmdText struct {
	Text string
}

func (CmdStart) isCommand()    {}
func (CmdRegister) isCommand() {}
func (CmdBack) isCommand()     {}
func (CmdMenu) isCommand()     {}
func (CmdSelect) isCommand()   {}
func (CmdHeader) isCommand()   {}
func (CmdCategory) isCommand() {}
func (CmdPeriod) isCommand()   {}
func (CmdText) isCommand()     {}

// MenuItem enumerates every fixed menu caption.
type MenuItem int

const (
	MenuAdmin MenuItem = iota
	MenuEmployee
	MenuAddEmployee
	MenuAddTask
	MenuEditEmployee
	MenuEditTask
	MenuAssignTask
	MenuAnalytics
	MenuHistory
	MenuCancelActive
	MenuTakeTask
	MenuCompleteTask
	MenuMyStats
	MenuByEmployee
	MenuByTask
	MenuFleet
	MenuShowAll
	MenuActiveOnly
	MenuChangeName
	MenuChangeSalary
	MenuDeactivate
	MenuChangePoints
	MenuChangeCategory
	MenuDeleteTask
)

var menuCaptions = map[MenuItem]string{
	MenuAdmin:          "Admin menu",
	MenuEmployee:       "Employee menu",
	MenuAddEmployee:    "Add employee",
	MenuAddTask:        "Add task",
	MenuEditEmployee:   "Edit employee",
	MenuEditTask:       "Edit task",
	MenuAssignTask:     "Assign task",
	MenuAnalytics:      "Analytics",
	MenuHistory:        "Task history",
	MenuCancelActive:   "Cancel active task",
	MenuTakeTask:       "Take task",
	MenuCompleteTask:   "Complete task",
	MenuMyStats:        "My statistics",
	MenuByEmployee:     "By employee",
	MenuByTask:         "By task",
	MenuFleet:          "Overall",
	MenuShowAll:        "Show all",
	MenuActiveOnly:     "Active only",
	MenuChangeName:     "Change name",
	MenuChangeSalary:   "Change salary",
	MenuDeactivate:     "Deactivate",
	MenuChangePoints:   "Change points",
	MenuChangeCategory: "Change category",
	MenuDeleteTask:     "Delete task",
}

const backCaption = "Back"

func (m MenuItem) Caption() string {
	return menuCaptions[m]
}

var periodCaptions = map[analytics.Window]string{
	analytics.Today:   "Today",
	analytics.Week:    "Last 7 days",
	analytics.Month:   "Last 30 days",
	analytics.AllTime: "All time",
}

func periodCaption(w analytics.Window) string {
	return periodCaptions[w]
}
