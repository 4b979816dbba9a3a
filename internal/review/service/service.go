// Package service assigns reviewers to papers and records their reviews.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"confpaper/internal/audit"
	papermodels "confpaper/internal/paper/models"
	paperservice "confpaper/internal/paper/service"
	"confpaper/internal/review/models"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/middleware/metadata"
	"confpaper/pkg/platform/sentinel"
	"confpaper/pkg/requestcontext"
)

// Caller is the identity invoking a review operation.
type Caller = paperservice.Caller

func CallerFromContext(ctx context.Context) Caller {
	return paperservice.CallerFromContext(ctx)
}

type Store interface {
	CreateTemplate(ctx context.Context, t *models.Template) error
	FindTemplate(ctx context.Context, templateID id.TemplateID) (*models.Template, error)
	ListActiveTemplates(ctx context.Context) ([]*models.Template, error)
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	FindAssignment(ctx context.Context, assignmentID id.AssignmentID) (*models.Assignment, error)
	ListAssignments(ctx context.Context, paperID id.PaperID) ([]*models.AssignmentView, error)
	CreateReview(ctx context.Context, r *models.Review) error
}

// PaperReader loads papers so review rules can check their status.
type PaperReader interface {
	FindByID(ctx context.Context, paperID id.PaperID) (*papermodels.Paper, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store  Store
	papers PaperReader
	logger *slog.Logger
	audit  AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func New(store Store, papers PaperReader, opts ...Option) *Service {
	s := &Service{store: store, papers: papers}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

var tracer = otel.Tracer("confpaper/internal/review/service")

// CreateTemplateInput describes a new review form.
type CreateTemplateInput struct {
	Name    string
	Version int
	Schema  json.RawMessage
}

// CreateTemplate registers an active review template. Name and version
// together are unique.
func (s *Service) CreateTemplate(ctx context.Context, in CreateTemplateInput, caller Caller) (tmpl *models.Template, err error) {
	ctx, span := tracer.Start(ctx, "review.create_template")
	defer func() { endSpan(span, err) }()

	if !caller.IsPrivileged() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only chairs may create review templates")
	}
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if in.Version <= 0 {
		in.Version = 1
	}
	if len(in.Schema) > 0 {
		if err := models.ValidateContent(in.Schema); err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "schema must be a JSON object")
		}
	}
	tmpl = &models.Template{
		ID:       id.NewTemplateID(),
		Name:     in.Name,
		Version:  in.Version,
		Schema:   in.Schema,
		IsActive: true,
	}
	if err := s.store.CreateTemplate(ctx, tmpl); err != nil {
		err = wrapStoreErr(err, "template", "create template")
		s.logFailure(ctx, "failed to create review template", err, "user_id", caller.UserID)
		return nil, err
	}
	return tmpl, nil
}

func (s *Service) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	templates, err := s.store.ListActiveTemplates(ctx)
	if err != nil {
		err = wrapStoreErr(err, "template", "list templates")
		s.logFailure(ctx, "failed to list review templates", err)
		return nil, err
	}
	return templates, nil
}

// AssignReviewer assigns reviewerID to a submitted or in-review paper. The
// submitter cannot review their own paper.
func (s *Service) AssignReviewer(ctx context.Context, paperID id.PaperID, reviewerID id.UserID, caller Caller) (assignment *models.Assignment, err error) {
	ctx, span := tracer.Start(ctx, "review.assign_reviewer",
		trace.WithAttributes(attribute.String("paper.id", paperID.String())))
	defer func() { endSpan(span, err) }()

	defer func() {
		if err != nil {
			s.logFailure(ctx, "failed to assign reviewer", err,
				"paper_id", paperID, "reviewer_id", reviewerID, "user_id", caller.UserID)
		}
	}()

	if !caller.IsPrivileged() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only chairs may assign reviewers")
	}
	paper, err := s.papers.FindByID(ctx, paperID)
	if err != nil {
		return nil, wrapStoreErr(err, "paper", "load paper")
	}
	if paper.Status != papermodels.StatusSubmitted && paper.Status != papermodels.StatusUnderReview {
		return nil, dErrors.New(dErrors.CodeInvalidState, "reviewers can only be assigned to submitted papers")
	}
	if paper.IsOwnedBy(reviewerID) {
		return nil, dErrors.New(dErrors.CodeValidation, "the submitter cannot review their own paper")
	}

	assignment, err = models.NewAssignment(paperID, reviewerID, caller.UserID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAssignment(ctx, assignment); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "reviewer is already assigned to this paper")
		}
		return nil, wrapStoreErr(err, "assignment", "create assignment")
	}

	s.emit(ctx, audit.ActionReviewerAssigned, paperID, caller.UserID, "reviewer="+reviewerID.String())
	return assignment, nil
}

// ListAssignments returns a paper's assignments with any submitted reviews.
func (s *Service) ListAssignments(ctx context.Context, paperID id.PaperID, caller Caller) ([]*models.AssignmentView, error) {
	if !caller.IsPrivileged() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only chairs may list assignments")
	}
	if _, err := s.papers.FindByID(ctx, paperID); err != nil {
		return nil, wrapStoreErr(err, "paper", "load paper")
	}
	views, err := s.store.ListAssignments(ctx, paperID)
	if err != nil {
		err = wrapStoreErr(err, "assignment", "list assignments")
		s.logFailure(ctx, "failed to list assignments", err, "paper_id", paperID)
		return nil, err
	}
	return views, nil
}

// SubmitReview records the assigned reviewer's review. The paper must be
// under review and the template active; each assignment takes one review.
func (s *Service) SubmitReview(ctx context.Context, assignmentID id.AssignmentID, templateID id.TemplateID, content json.RawMessage, caller Caller) (review *models.Review, err error) {
	ctx, span := tracer.Start(ctx, "review.submit",
		trace.WithAttributes(attribute.String("assignment.id", assignmentID.String())))
	defer func() { endSpan(span, err) }()

	defer func() {
		if err != nil {
			s.logFailure(ctx, "failed to submit review", err,
				"assignment_id", assignmentID, "user_id", caller.UserID)
		}
	}()

	assignment, err := s.store.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, wrapStoreErr(err, "assignment", "load assignment")
	}
	if assignment.ReviewerID != caller.UserID {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the assigned reviewer may submit this review")
	}
	paper, err := s.papers.FindByID(ctx, assignment.PaperID)
	if err != nil {
		return nil, wrapStoreErr(err, "paper", "load paper")
	}
	if paper.Status != papermodels.StatusUnderReview {
		return nil, dErrors.New(dErrors.CodeInvalidState, "paper is not under review")
	}
	tmpl, err := s.store.FindTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown review template")
		}
		return nil, wrapStoreErr(err, "template", "load template")
	}

	review, err = models.NewReview(assignmentID, tmpl, content, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a review was already submitted for this assignment")
		}
		return nil, wrapStoreErr(err, "review", "store review")
	}

	s.emit(ctx, audit.ActionReviewSubmitted, assignment.PaperID, caller.UserID, "assignment="+assignmentID.String())
	return review, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, paperID id.PaperID, actor id.UserID, detail string) {
	s.logger.InfoContext(ctx, string(action),
		"paper_id", paperID,
		"actor_id", actor,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		PaperID:   paperID,
		ActorID:   actor,
		Action:    action,
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  metadata.ClientIP(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "error", err, "action", action)
	}
}

func (s *Service) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", requestcontext.RequestID(ctx))
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeTimeout:
		s.logger.ErrorContext(ctx, msg, args...)
	default:
		s.logger.WarnContext(ctx, msg, args...)
	}
}

func wrapStoreErr(err error, entity, action string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, entity+" already exists")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
