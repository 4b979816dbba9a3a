package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"confpaper/internal/platform/database"
	"confpaper/internal/review/models"
	id "confpaper/pkg/domain"
	"confpaper/pkg/platform/sentinel"
)

// SQLStore persists review records in PostgreSQL or SQLite. Queries are
// written with "?" placeholders and rebound for the dialect.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewPostgres(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: database.PostgresDialect}
}

func NewSQLite(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: database.SQLiteDialect}
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *SQLStore) CreateTemplate(ctx context.Context, t *models.Template) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT EXISTS (SELECT 1 FROM review_templates WHERE name = ? AND version = ?)`),
		t.Name, t.Version).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check template version: %w", err)
	}
	if exists {
		return fmt.Errorf("template %s v%d: %w", t.Name, t.Version, sentinel.ErrConflict)
	}
	_, err = s.exec(ctx, `
		INSERT INTO review_templates (id, name, version, schema_doc, is_active)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.UUID(t.ID), t.Name, t.Version, schemaArg(t.Schema), t.IsActive)
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("template %s: %w", t.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

const templateColumns = `id, name, version, schema_doc, is_active`

func (s *SQLStore) FindTemplate(ctx context.Context, templateID id.TemplateID) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT `+templateColumns+` FROM review_templates WHERE id = ?`), uuid.UUID(templateID))
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

func (s *SQLStore) ListActiveTemplates(ctx context.Context) ([]*models.Template, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+templateColumns+` FROM review_templates WHERE is_active = ? ORDER BY name, version DESC`), true)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	_, err := s.exec(ctx, `
		INSERT INTO review_assignments (id, paper_id, reviewer_id, assigned_by, assigned_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.UUID(a.ID), uuid.UUID(a.PaperID), uuid.UUID(a.ReviewerID), uuid.UUID(a.AssignedBy),
		s.dialect.TimeArg(a.AssignedAt))
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("reviewer %s on paper %s: %w", a.ReviewerID, a.PaperID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *SQLStore) FindAssignment(ctx context.Context, assignmentID id.AssignmentID) (*models.Assignment, error) {
	var (
		a          models.Assignment
		assignedAt database.Time
	)
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT id, paper_id, reviewer_id, assigned_by, assigned_at
		FROM review_assignments WHERE id = ?`), uuid.UUID(assignmentID)).Scan(
		(*uuid.UUID)(&a.ID), (*uuid.UUID)(&a.PaperID), (*uuid.UUID)(&a.ReviewerID),
		(*uuid.UUID)(&a.AssignedBy), &assignedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	a.AssignedAt = assignedAt.Time
	return &a, nil
}

// ListAssignments returns the paper's assignments oldest first, each joined
// with its review when one exists.
func (s *SQLStore) ListAssignments(ctx context.Context, paperID id.PaperID) ([]*models.AssignmentView, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(`
		SELECT a.id, a.paper_id, a.reviewer_id, a.assigned_by, a.assigned_at,
		       r.id, r.template_id, r.content, r.submitted_at
		FROM review_assignments a
		LEFT JOIN reviews r ON r.assignment_id = a.id
		WHERE a.paper_id = ?
		ORDER BY a.assigned_at, a.id`), uuid.UUID(paperID))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []*models.AssignmentView
	for rows.Next() {
		var (
			v           models.AssignmentView
			assignedAt  database.Time
			reviewID    uuid.NullUUID
			templateID  uuid.NullUUID
			content     []byte
			submittedAt database.Time
		)
		if err := rows.Scan(
			(*uuid.UUID)(&v.ID), (*uuid.UUID)(&v.PaperID), (*uuid.UUID)(&v.ReviewerID),
			(*uuid.UUID)(&v.AssignedBy), &assignedAt,
			&reviewID, &templateID, &content, &submittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		v.AssignedAt = assignedAt.Time
		if reviewID.Valid {
			v.Review = &models.Review{
				ID:           id.ReviewID(reviewID.UUID),
				AssignmentID: v.ID,
				TemplateID:   id.TemplateID(templateID.UUID),
				Content:      json.RawMessage(content),
				SubmittedAt:  submittedAt.Time,
			}
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateReview(ctx context.Context, r *models.Review) error {
	_, err := s.exec(ctx, `
		INSERT INTO reviews (id, assignment_id, template_id, content, submitted_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.UUID(r.ID), uuid.UUID(r.AssignmentID), uuid.UUID(r.TemplateID), string(r.Content),
		s.dialect.TimeArg(r.SubmittedAt))
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("review for assignment %s: %w", r.AssignmentID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		t      models.Template
		schema []byte
	)
	if err := row.Scan((*uuid.UUID)(&t.ID), &t.Name, &t.Version, &schema, &t.IsActive); err != nil {
		return nil, err
	}
	t.Schema = json.RawMessage(schema)
	return &t, nil
}

func schemaArg(schema json.RawMessage) string {
	if len(schema) == 0 {
		return "{}"
	}
	return string(schema)
}

const pgUniqueViolation = "23505"

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
