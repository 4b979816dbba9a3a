package service

import (
	"context"
	"database/sql"
	"hash/fnv"
	"sync"
	"time"

	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
)

// numPaperShards spreads in-memory sessions over independent locks keyed by
// paper id, so unrelated papers never wait on each other.
const numPaperShards = 64

// defaultPaperTxTimeout bounds a session that has no deadline of its own.
const defaultPaperTxTimeout = 5 * time.Second

// ShardedTx is the in-memory StoreTx. Sessions on the same paper are
// serialized; sessions on different shards run concurrently.
type ShardedTx struct {
	shards  [numPaperShards]sync.Mutex
	store   Store
	timeout time.Duration
}

func NewShardedTx(store Store) *ShardedTx {
	return &ShardedTx{store: store}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultPaperTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.store)
}

// SQLTx runs each session inside a database transaction. bind wraps the
// transaction in the store implementation for the configured dialect.
type SQLTx struct {
	db      *sql.DB
	bind    func(*sql.Tx) Store
	timeout time.Duration
}

func NewSQLTx(db *sql.DB, bind func(*sql.Tx) Store) *SQLTx {
	return &SQLTx{db: db, bind: bind}
}

func (t *SQLTx) RunInTx(ctx context.Context, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultPaperTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(t.bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}

type txPaperKey struct{}

// withTxPaper tags ctx with the paper a session will touch.
func withTxPaper(ctx context.Context, paperID id.PaperID) context.Context {
	return context.WithValue(ctx, txPaperKey{}, paperID)
}

func selectShard(ctx context.Context) int {
	paperID, ok := ctx.Value(txPaperKey{}).(id.PaperID)
	if !ok || paperID.IsNil() {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write(paperID[:])
	return int(h.Sum32() % numPaperShards)
}
