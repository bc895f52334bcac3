package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crewtrack/internal/analytics"
	"crewtrack/internal/domain"
	"crewtrack/internal/engine"
	"crewtrack/internal/repo"
)

// Machine drives the conversational flows. One Handle call processes one
// inbound message: it loads the chat's session, dispatches on (state,
// command), persists the session, and returns the reply effects. Messages
// from one chat must be handled in arrival order; different chats may run
// concurrently, the engine's transactions serialize them.
type Machine struct {
	Engine    engine.Engine
	Repo      repo.Repo
	Analytics analytics.Aggregator
	Admins    []int64
	Log       *zap.Logger
	Now       func() time.Time
}

func New(eng engine.Engine, admins []int64, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{
		Engine:    eng,
		Repo:      eng.Repo,
		Analytics: analytics.Aggregator{Repo: eng.Repo, Now: eng.Now},
		Admins:    admins,
		Log:       log,
		Now:       eng.Now,
	}
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// session is the in-memory view of one chat's persisted state.
type session struct {
	chatID int64
	state  State
	data   sessionData
}

func (m *Machine) actor(s *session) string {
	return fmt.Sprintf("chat:%d", s.chatID)
}

func (m *Machine) isAdmin(chatID int64) bool {
	for _, id := range m.Admins {
		if id == chatID {
			return true
		}
	}
	return false
}

// boundEmployee resolves the active employee linked to the chat, if any.
func (m *Machine) boundEmployee(ctx context.Context, chatID int64) (domain.Employee, bool, error) {
	emp, err := m.Repo.GetEmployeeByChat(ctx, chatID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Employee{}, false, nil
	}
	if err != nil {
		return domain.Employee{}, false, err
	}
	return emp, true, nil
}

func (m *Machine) loadSession(ctx context.Context, chatID int64) (*session, error) {
	row, err := m.Repo.GetSession(ctx, chatID)
	if errors.Is(err, repo.ErrNotFound) {
		return &session{chatID: chatID, state: StateMain}, nil
	}
	if err != nil {
		return nil, err
	}
	s := &session{chatID: chatID, state: State(row.State)}
	if err := json.Unmarshal([]byte(row.Data), &s.data); err != nil {
		// A corrupted field bag resets the conversation, never kills it.
		m.Log.Warn("reset corrupted session", zap.Int64("chat_id", chatID), zap.Error(err))
		s.state = StateMain
		s.data = sessionData{}
	}
	return s, nil
}

func (m *Machine) saveSession(ctx context.Context, s *session) error {
	data, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}
	return m.Repo.SaveSession(ctx, domain.Session{
		ChatID:    s.chatID,
		State:     string(s.state),
		Data:      string(data),
		UpdatedAt: m.now().UTC().Format(time.RFC3339),
	})
}

// Handle processes one inbound message and returns the replies to send.
func (m *Machine) Handle(ctx context.Context, chatID int64, raw string) ([]Reply, error) {
	cmd := ParseCommand(raw)
	s, err := m.loadSession(ctx, chatID)
	if err != nil {
		return nil, err
	}

	var replies []Reply
	switch c := cmd.(type) {
	case CmdStart:
		replies, err = m.handleStart(ctx, s)
	case CmdRegister:
		replies, err = m.handleRegister(ctx, s, c)
	default:
		replies, err = m.dispatch(ctx, s, cmd, raw)
	}
	if err != nil {
		return nil, err
	}
	if err := m.saveSession(ctx, s); err != nil {
		return nil, err
	}
	return replies, nil
}

func (m *Machine) dispatch(ctx context.Context, s *session, cmd Command, raw string) ([]Reply, error) {
	switch s.state {
	case StateMain:
		return m.stateMain(ctx, s, cmd)
	case StateAdmin:
		return m.stateAdmin(ctx, s, cmd)
	case StateEnterEmployeeName:
		return m.stateEnterEmployeeName(ctx, s, cmd, raw)
	case StateEnterEmployeeSalary:
		return m.stateEnterEmployeeSalary(ctx, s, cmd, raw)
	case StateEnterTaskName:
		return m.stateEnterTaskName(ctx, s, cmd, raw)
	case StateEnterTaskPoints:
		return m.stateEnterTaskPoints(ctx, s, cmd, raw)
	case StateEnterTaskCategory:
		return m.stateEnterTaskCategory(ctx, s, cmd)
	case StateSelectEmployee:
		return m.stateSelectEmployee(ctx, s, cmd)
	case StateAssignTask:
		return m.stateAssignTask(ctx, s, cmd)
	case StateSelectEmployeeEdit:
		return m.stateSelectEmployeeEdit(ctx, s, cmd)
	case StateEditEmployee:
		return m.stateEditEmployee(ctx, s, cmd)
	case StateEditEmployeeName:
		return m.stateEditEmployeeName(ctx, s, cmd, raw)
	case StateEditEmployeeSalary:
		return m.stateEditEmployeeSalary(ctx, s, cmd, raw)
	case StateSelectTaskEdit:
		return m.stateSelectTaskEdit(ctx, s, cmd)
	case StateEditTask:
		return m.stateEditTask(ctx, s, cmd)
	case StateEditTaskName:
		return m.stateEditTaskName(ctx, s, cmd, raw)
	case StateEditTaskPoints:
		return m.stateEditTaskPoints(ctx, s, cmd, raw)
	case StateEditTaskCategory:
		return m.stateEditTaskCategory(ctx, s, cmd)
	case StateSelectCancel:
		return m.stateSelectCancel(ctx, s, cmd)
	case StateViewHistory:
		return m.stateViewHistory(ctx, s, cmd)
	case StateSelectPeriod:
		return m.stateSelectPeriod(ctx, s, cmd)
	case StateAnalytics:
		return m.stateAnalytics(ctx, s, cmd)
	case StateEmployee:
		return m.stateEmployee(ctx, s, cmd)
	case StateTakeTask:
		return m.stateTakeTask(ctx, s, cmd)
	case StateCompleteTask:
		return m.stateCompleteTask(ctx, s, cmd)
	default:
		// Unknown persisted state from an older build: start over.
		s.state = StateMain
		s.data = sessionData{}
		return m.mainMenu(ctx, s, "Main menu")
	}
}

const invalidInputMsg = "Unrecognized input. Please use the menu buttons."

// mainMenu renders the entry menu and moves the session there.
func (m *Machine) mainMenu(ctx context.Context, s *session, caption string) ([]Reply, error) {
	_, bound, err := m.boundEmployee(ctx, s.chatID)
	if err != nil {
		return nil, err
	}
	s.state = StateMain
	return []Reply{withKeyboard(caption, mainMenuKeyboard(m.isAdmin(s.chatID), bound))}, nil
}

// adminMenu renders the admin menu and moves the session there. Extra
// replies, typically an operation's outcome, are sent first.
func (m *Machine) adminMenu(s *session, before ...Reply) []Reply {
	s.state = StateAdmin
	return append(before, withKeyboard("Admin menu", adminMenuKeyboard()))
}

func (m *Machine) employeeMenu(s *session, before ...Reply) []Reply {
	s.state = StateEmployee
	return append(before, withKeyboard("Employee menu", employeeMenuKeyboard()))
}

func (m *Machine) handleStart(ctx context.Context, s *session) ([]Reply, error) {
	s.state = StateMain
	s.data = sessionData{}
	replies := []Reply{text("Hi! I track task assignments and crew performance.")}
	_, bound, err := m.boundEmployee(ctx, s.chatID)
	if err != nil {
		return nil, err
	}
	if !bound {
		replies = append(replies, text("If you are an employee, register with /register ID, where ID is your employee identifier."))
	}
	replies = append(replies, withKeyboard("Choose a mode:", mainMenuKeyboard(m.isAdmin(s.chatID), bound)))
	return replies, nil
}

func (m *Machine) handleRegister(ctx context.Context, s *session, c CmdRegister) ([]Reply, error) {
	if c.EmployeeID == 0 {
		return []Reply{text("To register, send /register ID with your employee identifier. Example: /register 123")}, nil
	}
	res, emp, err := m.Engine.Bind(ctx, s.chatID, c.EmployeeID)
	if err != nil {
		return nil, err
	}
	switch res {
	case engine.BindAlreadyBound:
		return []Reply{text(fmt.Sprintf("You are already registered as %s (ID: %d).", emp.Name, emp.ID))}, nil
	case engine.BindNotFound:
		return []Reply{text(fmt.Sprintf("Employee with ID %d not found.", c.EmployeeID))}, nil
	case engine.BindInactive:
		return []Reply{text(fmt.Sprintf("Employee with ID %d is deactivated. Contact an administrator.", c.EmployeeID))}, nil
	case engine.BindBoundElsewhere:
		return []Reply{text("This employee is already linked to another account.")}, nil
	}
	s.state = StateMain
	return []Reply{
		text(fmt.Sprintf("You are registered as %s.", emp.Name)),
		withKeyboard("Choose a mode:", mainMenuKeyboard(m.isAdmin(s.chatID), true)),
	}, nil
}

func (m *Machine) stateMain(ctx context.Context, s *session, cmd Command) ([]Reply, error) {
	menu, ok := cmd.(CmdMenu)
	if !ok {
		return []Reply{text(invalidInputMsg)}, nil
	}
	switch menu.Item {
	case MenuAdmin:
		if !m.isAdmin(s.chatID) {
			return []Reply{text(invalidInputMsg)}, nil
		}
		return m.adminMenu(s), nil
	case MenuEmployee:
		_, bound, err := m.boundEmployee(ctx, s.chatID)
		if err != nil {
			return nil, err
		}
		if !bound {
			return []Reply{text(invalidInputMsg)}, nil
		}
		return m.employeeMenu(s), nil
	}
	return []Reply{text(invalidInputMsg)}, nil
}
