package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confpaper/internal/audit"
	"confpaper/internal/audit/store/memory"
	id "confpaper/pkg/domain"
	"confpaper/pkg/platform/circuit"
)

func TestPublisher_Emit(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := audit.NewPublisher(store)
	paperID := id.NewPaperID()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{PaperID: paperID, Action: audit.ActionDraftCreated}))

	events, err := pub.ListByPaper(context.Background(), paperID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionDraftCreated, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.NotEqual(t, [16]byte{}, [16]byte(events[0].ID))
}

func TestPublisher_OutboxNeverBlocks(t *testing.T) {
	store := memory.NewInMemoryStore()
	outbox := make(chan audit.Event, 1)
	pub := audit.NewPublisher(store,
		audit.WithOutbox(outbox),
		audit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	paperID := id.NewPaperID()

	for range 3 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{PaperID: paperID, Action: audit.ActionDraftUpdated}))
	}

	events, err := store.ListByPaper(context.Background(), paperID)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Len(t, outbox, 1)
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
	fail   bool
}

func (s *recordingSink) Publish(_ context.Context, e audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if s.fail {
		return errors.New("sink unavailable")
	}
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestWorker_DrainsOutbox(t *testing.T) {
	inbox := make(chan audit.Event, 4)
	sink := &recordingSink{fail: true}
	worker := audit.NewWorker(sink, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	inbox <- audit.Event{Action: audit.ActionSubmitted}
	inbox <- audit.Event{Action: audit.ActionAccepted}
	close(inbox)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, worker.Run(ctx))
	assert.Equal(t, 2, sink.count())
}

func TestWorker_OpenBreakerSkipsDelivery(t *testing.T) {
	inbox := make(chan audit.Event, 3)
	sink := &recordingSink{fail: true}
	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	worker := audit.NewWorker(sink, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)), audit.WithBreaker(breaker))

	for range 3 {
		inbox <- audit.Event{Action: audit.ActionSubmitted}
	}
	close(inbox)

	require.NoError(t, worker.Run(context.Background()))
	assert.Equal(t, 1, sink.count())
	assert.True(t, breaker.IsOpen())
}
