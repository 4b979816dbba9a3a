// Package service coordinates the paper aggregate with persistence, file
// storage and auditing.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"confpaper/internal/audit"
	papermetrics "confpaper/internal/paper/metrics"
	"confpaper/internal/paper/models"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/middleware/metadata"
	"confpaper/pkg/platform/sentinel"
	"confpaper/pkg/requestcontext"
)

// Store persists paper aggregates. Save replaces the stored authors and files
// with the aggregate's current lists.
type Store interface {
	Create(ctx context.Context, paper *models.Paper) error
	Save(ctx context.Context, paper *models.Paper) error
	FindByID(ctx context.Context, paperID id.PaperID) (*models.Paper, error)
	ListBySubmitter(ctx context.Context, userID id.UserID, status *models.Status) ([]*models.Paper, error)
	ListAll(ctx context.Context, status *models.Status) ([]*models.Paper, error)
}

// FileStorage stores raw file bytes and hands back opaque relative handles.
type FileStorage interface {
	Save(ctx context.Context, content io.Reader, originalName string) (string, error)
	Delete(ctx context.Context, storagePath string) error
	OpenRead(ctx context.Context, storagePath string) (io.ReadSeekCloser, error)
}

// UserDirectory resolves display names for registered users.
type UserDirectory interface {
	DisplayName(ctx context.Context, userID id.UserID) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// StoreTx scopes one persistence session to a single service call.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

// Caller identifies who is invoking an operation.
type Caller struct {
	UserID id.UserID
	Roles  []id.Role
}

// CallerFromContext reads the identity placed on ctx by the auth middleware.
func CallerFromContext(ctx context.Context) Caller {
	return Caller{UserID: requestcontext.UserID(ctx), Roles: requestcontext.Roles(ctx)}
}

func (c Caller) IsPrivileged() bool {
	return id.AnyPrivileged(c.Roles)
}

// CanView reports whether the caller owns the paper or holds a privileged role.
func (c Caller) CanView(p *models.Paper) bool {
	return p.IsOwnedBy(c.UserID) || c.IsPrivileged()
}

type serviceConfig struct {
	logger         *slog.Logger
	metrics        *papermetrics.Metrics
	auditPublisher AuditPublisher
	tx             StoreTx
	directory      UserDirectory
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *papermetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

// WithTx overrides the default in-memory session with a database-backed one.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithUserDirectory enables submitter display names in paper details.
func WithUserDirectory(directory UserDirectory) Option {
	return func(c *serviceConfig) {
		c.directory = directory
	}
}

func newConfig(store Store, opts []Option) *serviceConfig {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tx == nil {
		cfg.tx = NewShardedTx(store)
	}
	return cfg
}

var tracer = otel.Tracer("confpaper/internal/paper/service")

func startSpan(ctx context.Context, op string, paperID id.PaperID) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "paper."+op)
	if !paperID.IsNil() {
		span.SetAttributes(attribute.String("paper.id", paperID.String()))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}

// wrapPaperErr translates store facts into domain errors. Errors that already
// carry a domain code pass through unchanged.
func wrapPaperErr(err error, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "paper not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "paper was modified concurrently")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}

// isRejection reports errors that are the caller's fault and are logged at warn.
func isRejection(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeInvalidState, dErrors.CodeNotFound,
		dErrors.CodeForbidden, dErrors.CodeBadRequest, dErrors.CodeConflict:
		return true
	default:
		return false
	}
}

func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", requestcontext.RequestID(ctx))
	if isRejection(err) {
		logger.WarnContext(ctx, msg, args...)
		return
	}
	logger.ErrorContext(ctx, msg, args...)
}

type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

// emit records an audit event. Audit failures are logged and never fail the
// operation that already committed.
func (e auditEmitter) emit(ctx context.Context, action audit.Action, paperID id.PaperID, actor id.UserID, detail string) {
	e.logger.InfoContext(ctx, string(action),
		"paper_id", paperID,
		"actor_id", actor,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if e.publisher == nil {
		return
	}
	err := e.publisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		PaperID:   paperID,
		ActorID:   actor,
		Action:    action,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  metadata.ClientIP(ctx),
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
			"paper_id", paperID,
		)
	}
}
