package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"confpaper/internal/audit"
	id "confpaper/pkg/domain"
)

// Store implements audit.Store on the audit_events table. Inserts are
// idempotent on event id.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (id, paper_id, actor_id, action, detail, request_id, client_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		uuid.UUID(event.PaperID),
		nullableUser(event.ActorID),
		string(event.Action),
		event.Detail,
		event.RequestID,
		event.ClientIP,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPaper(ctx context.Context, paperID id.PaperID) ([]audit.Event, error) {
	query := `
		SELECT id, paper_id, actor_id, action, detail, request_id, client_ip, created_at
		FROM audit_events
		WHERE paper_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(paperID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e       audit.Event
			pid     uuid.UUID
			actorID uuid.NullUUID
			action  string
		)
		if err := rows.Scan(&e.ID, &pid, &actorID, &action, &e.Detail, &e.RequestID, &e.ClientIP, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.PaperID = id.PaperID(pid)
		if actorID.Valid {
			e.ActorID = id.UserID(actorID.UUID)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nullableUser(u id.UserID) uuid.NullUUID {
	if u.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(u), Valid: true}
}
