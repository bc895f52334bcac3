package dialog

// State tags the session's position in the dialog graph. The graph is flat:
// every back edge names its target state explicitly, there is no history
// stack.
type State string

const (
	StateMain State = "main"

	// Admin side.
	StateAdmin               State = "admin"
	StateEnterEmployeeName   State = "enter_employee_name"
	StateEnterEmployeeSalary State = "enter_employee_salary"
	StateEnterTaskName       State = "enter_task_name"
	StateEnterTaskPoints     State = "enter_task_points"
	StateEnterTaskCategory   State = "enter_task_category"
	StateSelectEmployee      State = "select_employee"
	StateAssignTask          State = "assign_task"
	StateSelectEmployeeEdit  State = "select_employee_edit"
	StateEditEmployee        State = "edit_employee"
	StateEditEmployeeName    State = "edit_employee_name"
	StateEditEmployeeSalary  State = "edit_employee_salary"
	StateSelectTaskEdit      State = "select_task_edit"
	StateEditTask            State = "edit_task"
	StateEditTaskName        State = "edit_task_name"
	StateEditTaskPoints      State = "edit_task_points"
	StateEditTaskCategory    State = "edit_task_category"
	StateSelectCancel        State = "select_cancel"
	StateViewHistory         State = "view_history"
	StateSelectPeriod        State = "select_period"
	StateAnalytics           State = "analytics"

	// Employee side.
	StateEmployee     State = "employee"
	StateTakeTask     State = "take_task"
	StateCompleteTask State = "complete_task"
)

// sessionData is the field bag staged across multi-step flows. It is stored
// as JSON in the session row and stays opaque outside this package.
type sessionData struct {
	EmployeeName string `json:"employee_name,omitempty"`
	TaskName     string `json:"task_name,omitempty"`
	TaskPoints   int    `json:"task_points,omitempty"`

	SelectedEmployeeID   int64  `json:"selected_employee_id,omitempty"`
	SelectedEmployeeName string `json:"selected_employee_name,omitempty"`

	EditEmployeeID   int64  `json:"edit_employee_id,omitempty"`
	EditEmployeeName string `json:"edit_employee_name,omitempty"`
	EditTaskID       int64  `json:"edit_task_id,omitempty"`
	EditTaskName     string `json:"edit_task_name,omitempty"`

	Window  int  `json:"window,omitempty"`
	ShowAll bool `json:"show_all,omitempty"`
}
