package audit

import (
	"context"
	"log/slog"

	"confpaper/pkg/platform/circuit"
)

// Sink delivers audit events outside the process (for example to Kafka).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher's outbox into a Sink. Delivery failures are
// logged and the event is dropped; the store already holds the record. After
// repeated failures the breaker opens and events are dropped without a
// delivery attempt until a probe succeeds.
type Worker struct {
	sink    Sink
	inbox   <-chan Event
	logger  *slog.Logger
	breaker *circuit.Breaker
}

type WorkerOption func(*Worker)

func WithBreaker(b *circuit.Breaker) WorkerOption {
	return func(w *Worker) {
		w.breaker = b
	}
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{sink: sink, inbox: inbox, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.breaker == nil {
		w.breaker = circuit.New("audit-sink")
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if !w.breaker.Allow() {
		w.logger.DebugContext(ctx, "audit sink circuit open, dropping event",
			"action", event.Action,
			"event_id", event.ID,
		)
		return
	}
	if err := w.sink.Publish(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to publish audit event",
			"error", err,
			"action", event.Action,
			"event_id", event.ID,
		)
		if _, change := w.breaker.RecordFailure(); change.Opened {
			w.logger.WarnContext(ctx, "audit sink circuit opened", "breaker", w.breaker.Name())
		}
		return
	}
	if _, change := w.breaker.RecordSuccess(); change.Closed {
		w.logger.InfoContext(ctx, "audit sink circuit closed", "breaker", w.breaker.Name())
	}
}
