package engine

import "errors"

var (
	// ErrConcurrencyLimit means the employee already holds the maximum
	// number of active assignments.
	ErrConcurrencyLimit = errors.New("active assignment limit reached")
	// ErrDuplicateAssignment means the employee is already working on the
	// requested task.
	ErrDuplicateAssignment = errors.New("task already in progress for employee")
	// ErrHasActiveWork blocks deactivating an employee who still holds
	// active assignments.
	ErrHasActiveWork = errors.New("employee has active assignments")
	// ErrTaskInUse blocks deleting a task referenced by an active
	// assignment.
	ErrTaskInUse = errors.New("task has active assignments")
)
