package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "confpaper/pkg/domain"
)

// Store persists audit events. It is append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPaper(ctx context.Context, paperID id.PaperID) ([]Event, error)
}

// Publisher captures structured audit events. Events are written to the store
// synchronously and, when an outbox channel is configured, handed to a Worker
// for delivery to external sinks.
type Publisher struct {
	store  Store
	outbox chan<- Event
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

// WithOutbox forwards every stored event to ch without blocking. Events are
// dropped with a warning when ch is full.
func WithOutbox(ch chan<- Event) PublisherOption {
	return func(p *Publisher) {
		p.outbox = ch
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.outbox != nil {
		select {
		case p.outbox <- event:
		default:
			p.logger.WarnContext(ctx, "audit outbox full, dropping event",
				"action", event.Action,
				"paper_id", event.PaperID,
			)
		}
	}
	return nil
}

func (p *Publisher) ListByPaper(ctx context.Context, paperID id.PaperID) ([]Event, error) {
	return p.store.ListByPaper(ctx, paperID)
}
