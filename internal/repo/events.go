package repo

import (
	"context"

	"crewtrack/internal/domain"
)

// LatestEvents returns the newest audit events, optionally filtered by type
// and entity kind.
func (r Repo) LatestEvents(ctx context.Context, limit int, evtType, entityKind string) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, ts, type, entity_kind, COALESCE(entity_id,''), actor, COALESCE(payload_json,'') FROM events`
	args := []any{}
	where := ""
	if evtType != "" {
		where = " WHERE type = ?"
		args = append(args, evtType)
	}
	if entityKind != "" {
		if where == "" {
			where = " WHERE entity_kind = ?"
		} else {
			where += " AND entity_kind = ?"
		}
		args = append(args, entityKind)
	}
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, q+where+` ORDER BY id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &e.Actor, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
