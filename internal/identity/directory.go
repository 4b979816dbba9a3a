// Package identity resolves registered users to display names. Accounts
// themselves are managed elsewhere; this package only reads them.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	id "confpaper/pkg/domain"
	"confpaper/pkg/platform/sentinel"
)

// User is the narrow view of a registered account.
type User struct {
	ID        id.UserID
	FirstName string
	LastName  string
	Email     string
}

func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// InMemoryDirectory serves users registered at startup or in tests.
type InMemoryDirectory struct {
	mu    sync.RWMutex
	users map[id.UserID]User
}

func NewInMemoryDirectory(users ...User) *InMemoryDirectory {
	d := &InMemoryDirectory{users: make(map[id.UserID]User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *InMemoryDirectory) Add(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *InMemoryDirectory) DisplayName(_ context.Context, userID id.UserID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return u.DisplayName(), nil
}

// SQLDirectory reads the users table.
type SQLDirectory struct {
	db    *sql.DB
	query string
	arg   func(id.UserID) any
}

func NewPostgresDirectory(db *sql.DB) *SQLDirectory {
	return &SQLDirectory{
		db:    db,
		query: `SELECT first_name, last_name FROM users WHERE id = $1`,
		arg:   func(u id.UserID) any { return uuid.UUID(u) },
	}
}

func NewSQLiteDirectory(db *sql.DB) *SQLDirectory {
	return &SQLDirectory{
		db:    db,
		query: `SELECT first_name, last_name FROM users WHERE id = ?`,
		arg:   func(u id.UserID) any { return u.String() },
	}
}

func (d *SQLDirectory) DisplayName(ctx context.Context, userID id.UserID) (string, error) {
	var u User
	err := d.db.QueryRowContext(ctx, d.query, d.arg(userID)).Scan(&u.FirstName, &u.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("find user display name: %w", err)
	}
	return u.DisplayName(), nil
}
