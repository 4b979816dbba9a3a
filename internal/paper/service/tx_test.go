package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confpaper/internal/paper/models"
	"confpaper/internal/paper/store"
	"confpaper/internal/platform/database"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/sentinel"
)

func draftFor(t *testing.T) *models.Paper {
	t.Helper()
	p, err := models.NewPaper(id.NewPaperID(), id.NewUserID(), "Tx", "Abstract", []models.Author{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", IsCorresponding: true},
	}, time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return p
}

func TestSQLTxCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tx := NewSQLTx(db, func(tx *sql.Tx) Store { return store.NewSQLiteTx(tx) })
	papers := store.NewSQLite(db)

	committed := draftFor(t)
	require.NoError(t, tx.RunInTx(ctx, func(s Store) error {
		return s.Create(ctx, committed)
	}))
	_, err = papers.FindByID(ctx, committed.ID)
	assert.NoError(t, err)

	rolledBack := draftFor(t)
	boom := errors.New("boom")
	err = tx.RunInTx(ctx, func(s Store) error {
		if err := s.Create(ctx, rolledBack); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = papers.FindByID(ctx, rolledBack.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestTxRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, tx := range map[string]StoreTx{
		"sharded": NewShardedTx(store.NewInMemory()),
		"sql":     NewSQLTx(nil, nil),
	} {
		t.Run(name, func(t *testing.T) {
			err := tx.RunInTx(ctx, func(Store) error {
				t.Fatal("session must not start")
				return nil
			})
			assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		})
	}
}

func TestShardedTxSerializesSamePaper(t *testing.T) {
	tx := NewShardedTx(store.NewInMemory())
	ctx := withTxPaper(context.Background(), id.NewPaperID())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.RunInTx(ctx, func(Store) error {
				mu.Lock()
				active++
				maxSeen = max(maxSeen, active)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
