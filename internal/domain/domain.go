package domain

// Category classifies tasks on the shop floor. The set is fixed; the dialog
// keyboards and analytics grouping both rely on it being closed.
type Category string

const (
	CategoryUnpacking   Category = "Unpacking"
	CategoryLogistics   Category = "Logistics"
	CategorySales       Category = "Sales"
	CategoryMarketing   Category = "Marketing"
	CategoryProcurement Category = "Procurement"
	CategoryOther       Category = "Other"
)

// Categories lists every valid category in keyboard order.
func Categories() []Category {
	return []Category{
		CategoryUnpacking, CategoryLogistics,
		CategorySales, CategoryMarketing,
		CategoryProcurement, CategoryOther,
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryUnpacking, CategoryLogistics, CategorySales,
		CategoryMarketing, CategoryProcurement, CategoryOther:
		return true
	}
	return false
}

type Employee struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Salary float64 `json:"salary"`
	ChatID *int64  `json:"chat_id,omitempty"`
	Active bool    `json:"active"`
}

type Task struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Points   int      `json:"points"`
	Category Category `json:"category"`
}

// Assignment is a task currently in progress by one employee. It is created on
// claim or admin assign and destroyed on completion or cancellation, never
// updated in place. Points snapshots the task's value at claim time so later
// catalog edits cannot change what an in-flight assignment is worth.
type Assignment struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	TaskID     int64  `json:"task_id"`
	Points     int    `json:"points"`
	StartedAt  string `json:"started_at" format:"date-time"`
}

// Completion is the immutable record that an employee finished a task.
// PointsEarned snapshots the task's value at claim time; later task edits must
// not change it.
type Completion struct {
	ID              int64  `json:"id"`
	EmployeeID      int64  `json:"employee_id"`
	TaskID          int64  `json:"task_id"`
	StartedAt       string `json:"started_at" format:"date-time"`
	EndedAt         string `json:"ended_at" format:"date-time"`
	PointsEarned    int    `json:"points_earned"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// Session is the per-chat conversational state. Exactly one row per chat
// identity; the data bag is opaque JSON owned by the dialog package.
type Session struct {
	ChatID    int64  `json:"chat_id"`
	State     string `json:"state"`
	Data      string `json:"data"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

type APIKey struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	Actor      string `json:"actor"`
	Payload    string `json:"payload_json"`
}
