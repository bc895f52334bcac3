package engine

import (
	"context"
	"errors"
	"fmt"

	"crewtrack/internal/domain"
	"crewtrack/internal/events"
	"crewtrack/internal/repo"
)

// BindResult is the outcome of linking a chat identity to an employee record.
type BindResult int

const (
	BindOk BindResult = iota
	// BindAlreadyBound: this chat is already linked to an active employee.
	BindAlreadyBound
	// BindNotFound: no employee with the requested ID.
	BindNotFound
	// BindInactive: the employee exists but was deactivated.
	BindInactive
	// BindBoundElsewhere: the employee is linked to a different chat.
	BindBoundElsewhere
)

// Bind links chatID to the employee record. The bound employee (existing one
// for BindAlreadyBound, requested one otherwise) is returned when known.
func (e Engine) Bind(ctx context.Context, chatID, employeeID int64) (BindResult, domain.Employee, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return BindNotFound, domain.Employee{}, err
	}
	defer tx.Rollback()

	if existing, err := e.Repo.GetEmployeeByChatTx(ctx, tx, chatID); err == nil {
		return BindAlreadyBound, existing, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return BindNotFound, domain.Employee{}, err
	}

	emp, err := e.Repo.GetEmployeeTx(ctx, tx, employeeID)
	if errors.Is(err, repo.ErrNotFound) {
		return BindNotFound, domain.Employee{}, nil
	}
	if err != nil {
		return BindNotFound, domain.Employee{}, err
	}
	if !emp.Active {
		return BindInactive, emp, nil
	}
	if emp.ChatID != nil && *emp.ChatID != chatID {
		return BindBoundElsewhere, emp, nil
	}

	// A deactivated employee may still hold this chat's unique slot.
	if err := e.Repo.ReleaseChatTx(ctx, tx, chatID, employeeID); err != nil {
		return BindNotFound, domain.Employee{}, err
	}
	if err := e.Repo.BindChatTx(ctx, tx, employeeID, chatID); err != nil {
		return BindNotFound, domain.Employee{}, err
	}
	if err := e.Events.Append(ctx, tx, "employee.bind", "employee", idStr(employeeID), fmt.Sprintf("chat:%d", chatID), events.EventPayload{"chat_id": chatID}); err != nil {
		return BindNotFound, domain.Employee{}, err
	}
	if err := tx.Commit(); err != nil {
		return BindNotFound, domain.Employee{}, err
	}
	emp.ChatID = &chatID
	return BindOk, emp, nil
}
