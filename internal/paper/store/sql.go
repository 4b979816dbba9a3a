package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"confpaper/internal/paper/models"
	"confpaper/internal/platform/database"
	id "confpaper/pkg/domain"
	"confpaper/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore persists papers with their authors and files in PostgreSQL or
// SQLite. Queries are written with "?" placeholders and rebound for the
// dialect; SQLite keeps ids as text and timestamps as unix milliseconds.
type SQLStore struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect database.Dialect
}

func NewPostgres(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: database.PostgresDialect}
}

// NewPostgresTx binds a store to an open transaction. Multi-statement writes
// join tx instead of opening their own.
func NewPostgresTx(tx *sql.Tx) *SQLStore {
	return &SQLStore{tx: tx, dialect: database.PostgresDialect}
}

func NewSQLite(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, dialect: database.SQLiteDialect}
}

func NewSQLiteTx(tx *sql.Tx) *SQLStore {
	return &SQLStore{tx: tx, dialect: database.SQLiteDialect}
}

func (s *SQLStore) q() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *SQLStore) inTx(ctx context.Context, fn func(q querier) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin paper tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit paper tx: %w", err)
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, paper *models.Paper) error {
	return s.inTx(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx, s.dialect.Rebind(`
			INSERT INTO papers (id, title, abstract, status, submitter_id, submitted_at,
				decided_at, decided_by, decision_comment, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`),
			uuid.UUID(paper.ID),
			paper.Title,
			paper.Abstract,
			int(paper.Status),
			uuid.UUID(paper.SubmitterID),
			s.dialect.NullTimeArg(paper.SubmittedAt),
			s.dialect.NullTimeArg(paper.DecidedAt),
			nullUser(paper.DecidedBy),
			nullString(paper.DecisionComment),
			s.dialect.TimeArg(paper.CreatedAt),
			s.dialect.TimeArg(paper.UpdatedAt),
		)
		if err != nil {
			if isConflict(err) {
				return fmt.Errorf("paper %s: %w", paper.ID, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert paper: %w", err)
		}
		return s.writeChildren(ctx, q, paper)
	})
}

func (s *SQLStore) Save(ctx context.Context, paper *models.Paper) error {
	return s.inTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, s.dialect.Rebind(`
			UPDATE papers
			SET title = ?, abstract = ?, status = ?, submitted_at = ?,
				decided_at = ?, decided_by = ?, decision_comment = ?, updated_at = ?
			WHERE id = ?
		`),
			paper.Title,
			paper.Abstract,
			int(paper.Status),
			s.dialect.NullTimeArg(paper.SubmittedAt),
			s.dialect.NullTimeArg(paper.DecidedAt),
			nullUser(paper.DecidedBy),
			nullString(paper.DecisionComment),
			s.dialect.TimeArg(paper.UpdatedAt),
			uuid.UUID(paper.ID),
		)
		if err != nil {
			return fmt.Errorf("update paper: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update paper rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("paper %s: %w", paper.ID, sentinel.ErrNotFound)
		}
		if _, err := q.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM paper_authors WHERE paper_id = ?`), uuid.UUID(paper.ID)); err != nil {
			return fmt.Errorf("clear paper authors: %w", err)
		}
		if _, err := q.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM paper_files WHERE paper_id = ?`), uuid.UUID(paper.ID)); err != nil {
			return fmt.Errorf("clear paper files: %w", err)
		}
		return s.writeChildren(ctx, q, paper)
	})
}

func (s *SQLStore) writeChildren(ctx context.Context, q querier, paper *models.Paper) error {
	insertAuthor := s.dialect.Rebind(`
		INSERT INTO paper_authors (paper_id, author_order, first_name, last_name, email,
			institution, user_id, is_corresponding, is_presenter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, a := range paper.Authors {
		_, err := q.ExecContext(ctx, insertAuthor,
			uuid.UUID(paper.ID), a.Order, a.FirstName, a.LastName, a.Email,
			a.Institution, nullUser(a.UserID), a.IsCorresponding, a.IsPresenter,
		)
		if err != nil {
			return fmt.Errorf("insert paper author: %w", err)
		}
	}
	insertFile := s.dialect.Rebind(`
		INSERT INTO paper_files (id, paper_id, file_type, storage_path, original_name, size_bytes, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, f := range paper.Files {
		_, err := q.ExecContext(ctx, insertFile,
			uuid.UUID(f.ID), uuid.UUID(paper.ID), string(f.Type), f.StoragePath,
			f.OriginalName, f.Size, s.dialect.TimeArg(f.UploadedAt),
		)
		if err != nil {
			if isConflict(err) {
				return fmt.Errorf("paper file %s: %w", f.Type, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert paper file: %w", err)
		}
	}
	return nil
}

const paperColumns = `id, title, abstract, status, submitter_id, submitted_at,
	decided_at, decided_by, decision_comment, created_at, updated_at`

func (s *SQLStore) FindByID(ctx context.Context, paperID id.PaperID) (*models.Paper, error) {
	row := s.q().QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+paperColumns+` FROM papers WHERE id = ?`), uuid.UUID(paperID))
	paper, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find paper by id: %w", err)
	}
	if err := s.loadChildren(ctx, []*models.Paper{paper}); err != nil {
		return nil, err
	}
	return paper, nil
}

func (s *SQLStore) ListBySubmitter(ctx context.Context, userID id.UserID, status *models.Status) ([]*models.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers WHERE submitter_id = ?`
	args := []any{uuid.UUID(userID)}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, int(*status))
	}
	return s.list(ctx, query, args...)
}

func (s *SQLStore) ListAll(ctx context.Context, status *models.Status) ([]*models.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, int(*status))
	}
	return s.list(ctx, query, args...)
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]*models.Paper, error) {
	rows, err := s.q().QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close()

	var papers []*models.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}
	if err := s.loadChildren(ctx, papers); err != nil {
		return nil, err
	}
	return papers, nil
}

// paperIDFilter matches paper_id against ids: one array parameter on
// PostgreSQL, an IN list on SQLite.
func (s *SQLStore) paperIDFilter(ids []string) (string, []any) {
	if s.dialect.Name == database.PostgresDialect.Name {
		return `paper_id = ANY(?::uuid[])`, []any{pq.Array(ids)}
	}
	args := make([]any, len(ids))
	for i, v := range ids {
		args[i] = v
	}
	return `paper_id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + `)`, args
}

// loadChildren fills authors and files for every paper with one query each.
func (s *SQLStore) loadChildren(ctx context.Context, papers []*models.Paper) error {
	if len(papers) == 0 {
		return nil
	}
	byID := make(map[id.PaperID]*models.Paper, len(papers))
	ids := make([]string, 0, len(papers))
	for _, p := range papers {
		byID[p.ID] = p
		ids = append(ids, p.ID.String())
	}
	filter, args := s.paperIDFilter(ids)

	authorRows, err := s.q().QueryContext(ctx, s.dialect.Rebind(`
		SELECT paper_id, author_order, first_name, last_name, email, institution,
			user_id, is_corresponding, is_presenter
		FROM paper_authors
		WHERE `+filter+`
		ORDER BY paper_id, author_order
	`), args...)
	if err != nil {
		return fmt.Errorf("load paper authors: %w", err)
	}
	defer authorRows.Close()
	for authorRows.Next() {
		var (
			paperID uuid.UUID
			userID  uuid.NullUUID
			a       models.Author
		)
		if err := authorRows.Scan(&paperID, &a.Order, &a.FirstName, &a.LastName, &a.Email,
			&a.Institution, &userID, &a.IsCorresponding, &a.IsPresenter); err != nil {
			return fmt.Errorf("scan paper author: %w", err)
		}
		a.UserID = fromNullUser(userID)
		if p, ok := byID[id.PaperID(paperID)]; ok {
			p.Authors = append(p.Authors, a)
		}
	}
	if err := authorRows.Err(); err != nil {
		return fmt.Errorf("iterate paper authors: %w", err)
	}

	fileRows, err := s.q().QueryContext(ctx, s.dialect.Rebind(`
		SELECT id, paper_id, file_type, storage_path, original_name, size_bytes, uploaded_at
		FROM paper_files
		WHERE `+filter+`
		ORDER BY uploaded_at
	`), args...)
	if err != nil {
		return fmt.Errorf("load paper files: %w", err)
	}
	defer fileRows.Close()
	for fileRows.Next() {
		var (
			fileID, paperID uuid.UUID
			fileType        string
			uploadedAt      database.Time
			f               models.PaperFile
		)
		if err := fileRows.Scan(&fileID, &paperID, &fileType, &f.StoragePath,
			&f.OriginalName, &f.Size, &uploadedAt); err != nil {
			return fmt.Errorf("scan paper file: %w", err)
		}
		f.ID = id.FileID(fileID)
		f.PaperID = id.PaperID(paperID)
		f.Type = models.FileType(fileType)
		f.UploadedAt = uploadedAt.Time
		if p, ok := byID[f.PaperID]; ok {
			p.Files = append(p.Files, f)
		}
	}
	if err := fileRows.Err(); err != nil {
		return fmt.Errorf("iterate paper files: %w", err)
	}
	return nil
}

// ReferencedPaths returns the storage path of every recorded paper file.
func (s *SQLStore) ReferencedPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.q().QueryContext(ctx, `SELECT storage_path FROM paper_files`)
	if err != nil {
		return nil, fmt.Errorf("list referenced paths: %w", err)
	}
	defer rows.Close()
	paths := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan referenced path: %w", err)
		}
		paths[path] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referenced paths: %w", err)
	}
	return paths, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (*models.Paper, error) {
	var (
		p                      models.Paper
		paperID, submitterID   uuid.UUID
		status                 int
		submittedAt, decidedAt database.Time
		createdAt, updatedAt   database.Time
		decidedBy              uuid.NullUUID
		decisionComment        sql.NullString
	)
	if err := row.Scan(&paperID, &p.Title, &p.Abstract, &status, &submitterID, &submittedAt,
		&decidedAt, &decidedBy, &decisionComment, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PaperID(paperID)
	p.SubmitterID = id.UserID(submitterID)
	p.Status = models.Status(status)
	p.SubmittedAt = submittedAt.Ptr()
	p.DecidedAt = decidedAt.Ptr()
	p.DecidedBy = fromNullUser(decidedBy)
	if decisionComment.Valid {
		p.DecisionComment = &decisionComment.String
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

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

func nullUser(u *id.UserID) uuid.NullUUID {
	if u == nil || u.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func fromNullUser(u uuid.NullUUID) *id.UserID {
	if !u.Valid {
		return nil
	}
	v := id.UserID(u.UUID)
	return &v
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
