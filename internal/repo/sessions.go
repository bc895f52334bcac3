package repo

import (
	"context"
	"database/sql"

	"crewtrack/internal/domain"
)

func (r Repo) GetSession(ctx context.Context, chatID int64) (domain.Session, error) {
	var s domain.Session
	err := r.DB.QueryRowContext(ctx, `SELECT chat_id,state,data,updated_at FROM sessions WHERE chat_id=?`, chatID).
		Scan(&s.ChatID, &s.State, &s.Data, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// SaveSession upserts the one session row per chat identity.
func (r Repo) SaveSession(ctx context.Context, s domain.Session) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(chat_id,state,data,updated_at) VALUES (?,?,?,?)
ON CONFLICT(chat_id) DO UPDATE SET state=excluded.state, data=excluded.data, updated_at=excluded.updated_at`,
		s.ChatID, s.State, s.Data, s.UpdatedAt)
	return err
}
