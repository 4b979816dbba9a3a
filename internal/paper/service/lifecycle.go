package service

import (
	"context"
	"log/slog"
	"time"

	"confpaper/internal/audit"
	papermetrics "confpaper/internal/paper/metrics"
	"confpaper/internal/paper/models"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/requestcontext"
)

// LifecycleService drives the post-submission transitions. Review and
// decision steps are reserved for privileged callers; withdrawal and
// camera-ready submission are also open to the submitter.
type LifecycleService struct {
	tx      StoreTx
	logger  *slog.Logger
	metrics *papermetrics.Metrics
	audit   auditEmitter
}

func NewLifecycleService(store Store, opts ...Option) *LifecycleService {
	cfg := newConfig(store, opts)
	return &LifecycleService{
		tx:      cfg.tx,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		audit:   auditEmitter{logger: cfg.logger, publisher: cfg.auditPublisher},
	}
}

type access int

const (
	privilegedOnly access = iota
	ownerOrPrivileged
)

type transition struct {
	op     string
	access access
	action audit.Action
	detail string
	apply  func(p *models.Paper, now time.Time) error
}

func (s *LifecycleService) run(ctx context.Context, paperID id.PaperID, caller Caller, t transition) (paper *models.Paper, err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, t.op, paperID)
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation(t.op, start)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(withTxPaper(ctx, paperID), func(store Store) error {
		p, err := store.FindByID(ctx, paperID)
		if err != nil {
			return wrapPaperErr(err, "load paper")
		}
		if !allowed(p, caller, t.access) {
			return dErrors.New(dErrors.CodeForbidden, "not allowed to "+t.op+" this paper")
		}
		if err := t.apply(p, now); err != nil {
			return err
		}
		if err := store.Save(ctx, p); err != nil {
			return err
		}
		paper = p
		return nil
	})
	if err != nil {
		err = wrapPaperErr(err, t.op)
		logFailure(ctx, s.logger, "paper transition failed", err,
			"operation", t.op,
			"paper_id", paperID,
			"user_id", caller.UserID,
		)
		return nil, err
	}

	s.metrics.IncrementTransition(paper.Status.String())
	s.audit.emit(ctx, t.action, paperID, caller.UserID, t.detail)
	return paper, nil
}

func allowed(p *models.Paper, caller Caller, a access) bool {
	if caller.IsPrivileged() {
		return true
	}
	return a == ownerOrPrivileged && p.IsOwnedBy(caller.UserID)
}

func (s *LifecycleService) Withdraw(ctx context.Context, paperID id.PaperID, caller Caller) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "withdraw", access: ownerOrPrivileged, action: audit.ActionWithdrawn,
		apply: func(p *models.Paper, now time.Time) error { return p.Withdraw(now) },
	})
}

func (s *LifecycleService) MoveToUnderReview(ctx context.Context, paperID id.PaperID, caller Caller) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "move_to_review", access: privilegedOnly, action: audit.ActionMovedToReview,
		apply: func(p *models.Paper, now time.Time) error { return p.MoveToUnderReview(now) },
	})
}

func (s *LifecycleService) MarkReviewsCompleted(ctx context.Context, paperID id.PaperID, caller Caller) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "complete_reviews", access: privilegedOnly, action: audit.ActionReviewsCompleted,
		apply: func(p *models.Paper, now time.Time) error { return p.MarkReviewsCompleted(now) },
	})
}

func (s *LifecycleService) Accept(ctx context.Context, paperID id.PaperID, caller Caller, comment string) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "accept", access: privilegedOnly, action: audit.ActionAccepted, detail: comment,
		apply: func(p *models.Paper, now time.Time) error { return p.Accept(caller.UserID, comment, now) },
	})
}

func (s *LifecycleService) Reject(ctx context.Context, paperID id.PaperID, caller Caller, comment string) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "reject", access: privilegedOnly, action: audit.ActionRejected, detail: comment,
		apply: func(p *models.Paper, now time.Time) error { return p.Reject(caller.UserID, comment, now) },
	})
}

func (s *LifecycleService) SubmitCameraReady(ctx context.Context, paperID id.PaperID, caller Caller) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "submit_camera_ready", access: ownerOrPrivileged, action: audit.ActionCameraReadySubmitted,
		apply: func(p *models.Paper, now time.Time) error { return p.SubmitCameraReady(now) },
	})
}

func (s *LifecycleService) Schedule(ctx context.Context, paperID id.PaperID, caller Caller) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "schedule", access: privilegedOnly, action: audit.ActionScheduled,
		apply: func(p *models.Paper, now time.Time) error { return p.Schedule(now) },
	})
}

func (s *LifecycleService) MarkPresented(ctx context.Context, paperID id.PaperID, caller Caller) (*models.Paper, error) {
	return s.run(ctx, paperID, caller, transition{
		op: "mark_presented", access: privilegedOnly, action: audit.ActionPresented,
		apply: func(p *models.Paper, now time.Time) error { return p.MarkPresented(now) },
	})
}
