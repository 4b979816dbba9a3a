// Package handler exposes review assignment and submission over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"confpaper/internal/review/models"
	"confpaper/internal/review/service"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/httputil"
	"confpaper/pkg/requestcontext"
)

type Service interface {
	CreateTemplate(ctx context.Context, in service.CreateTemplateInput, caller service.Caller) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	AssignReviewer(ctx context.Context, paperID id.PaperID, reviewerID id.UserID, caller service.Caller) (*models.Assignment, error)
	ListAssignments(ctx context.Context, paperID id.PaperID, caller service.Caller) ([]*models.AssignmentView, error)
	SubmitReview(ctx context.Context, assignmentID id.AssignmentID, templateID id.TemplateID, content json.RawMessage, caller service.Caller) (*models.Review, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts reviewer routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/review-templates", h.HandleListTemplates)
	r.Post("/reviews/{assignmentId}", h.HandleSubmitReview)
}

// RegisterAdmin mounts chair routes on a privileged router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/review-templates", h.HandleCreateTemplate)
	r.Post("/papers/{paperId}/assignments", h.HandleAssign)
	r.Get("/papers/{paperId}/assignments", h.HandleListAssignments)
}

// CreateTemplateRequest is the body of a template registration.
type CreateTemplateRequest struct {
	Name    string          `json:"name"`
	Version int             `json:"version"`
	Schema  json.RawMessage `json:"schema"`
}

func (r *CreateTemplateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Version < 0 {
		return dErrors.New(dErrors.CodeValidation, "version must be positive")
	}
	return nil
}

type templatesResponse struct {
	Templates []*models.Template `json:"templates"`
}

type assignmentsResponse struct {
	Assignments []*models.AssignmentView `json:"assignments"`
}

func (h *Handler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateTemplateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	tmpl, err := h.service.CreateTemplate(ctx, service.CreateTemplateInput{
		Name:    req.Name,
		Version: req.Version,
		Schema:  req.Schema,
	}, service.CallerFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if templates == nil {
		templates = []*models.Template{}
	}
	httputil.WriteJSON(w, http.StatusOK, templatesResponse{Templates: templates})
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID, err := id.ParsePaperID(chi.URLParam(r, "paperId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AssignReviewerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	reviewerID, err := id.ParseUserID(req.ReviewerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	assignment, err := h.service.AssignReviewer(ctx, paperID, reviewerID, service.CallerFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, assignment)
}

func (h *Handler) HandleListAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID, err := id.ParsePaperID(chi.URLParam(r, "paperId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	views, err := h.service.ListAssignments(ctx, paperID, service.CallerFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if views == nil {
		views = []*models.AssignmentView{}
	}
	httputil.WriteJSON(w, http.StatusOK, assignmentsResponse{Assignments: views})
}

func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assignmentID, err := id.ParseAssignmentID(chi.URLParam(r, "assignmentId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.SubmitReviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	templateID, err := id.ParseTemplateID(req.TemplateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	review, err := h.service.SubmitReview(ctx, assignmentID, templateID, req.Content, service.CallerFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, review)
}
