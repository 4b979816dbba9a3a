// Package handler exposes the paper services over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"confpaper/internal/paper/models"
	"confpaper/internal/paper/service"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/httputil"
	"confpaper/pkg/requestcontext"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file.
const multipartMemory = 8 << 20

type SubmissionService interface {
	CreateDraft(ctx context.Context, req models.CreateDraftRequest, userID id.UserID) (id.PaperID, error)
	UpdateDraft(ctx context.Context, paperID id.PaperID, req models.UpdateDraftRequest, userID id.UserID) error
	UploadFile(ctx context.Context, paperID id.PaperID, fileType models.FileType, content io.ReadSeeker, originalName string, userID id.UserID) (*models.PaperFile, error)
	Submit(ctx context.Context, paperID id.PaperID, userID id.UserID) error
}

type QueryService interface {
	ListUserPapers(ctx context.Context, userID id.UserID, status *models.Status) ([]models.PaperSummary, error)
	ListAllPapers(ctx context.Context, status *models.Status) ([]models.PaperSummary, error)
	GetPaperDetails(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.PaperDetails, error)
	GetPaperFile(ctx context.Context, paperID id.PaperID, fileType models.FileType, caller service.Caller) models.FileResult
}

type LifecycleService interface {
	Withdraw(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)
	MoveToUnderReview(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)
	MarkReviewsCompleted(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)
	Accept(ctx context.Context, paperID id.PaperID, caller service.Caller, comment string) (*models.Paper, error)
	Reject(ctx context.Context, paperID id.PaperID, caller service.Caller, comment string) (*models.Paper, error)
	SubmitCameraReady(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)
	Schedule(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)
	MarkPresented(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)
}

// Handler wires paper endpoints to the submission, query and lifecycle services.
type Handler struct {
	submission SubmissionService
	query      QueryService
	lifecycle  LifecycleService
	logger     *slog.Logger
	maxUpload  int64
}

func New(submission SubmissionService, query QueryService, lifecycle LifecycleService, logger *slog.Logger, maxUpload int64) *Handler {
	return &Handler{
		submission: submission,
		query:      query,
		lifecycle:  lifecycle,
		logger:     logger,
		maxUpload:  maxUpload,
	}
}

// Register mounts the author-facing routes. It expects an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/papers", h.HandleCreateDraft)
	r.Get("/papers/mine", h.HandleListMine)
	r.Get("/papers/{paperId}", h.HandleGetDetails)
	r.Put("/papers/{paperId}", h.HandleUpdateDraft)
	r.Post("/papers/{paperId}/files/{fileType}", h.HandleUploadFile)
	r.Get("/papers/{paperId}/files/{fileType}", h.HandleDownloadFile)
	r.Post("/papers/{paperId}/submit", h.HandleSubmit)
	r.Post("/papers/{paperId}/withdraw", h.transition(h.lifecycle.Withdraw))
	r.Post("/papers/{paperId}/camera-ready", h.transition(h.lifecycle.SubmitCameraReady))
}

// RegisterAdmin mounts the chair routes. It expects a router already
// restricted to privileged callers.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/papers", h.HandleListAll)
	r.Post("/papers/{paperId}/under-review", h.transition(h.lifecycle.MoveToUnderReview))
	r.Post("/papers/{paperId}/reviews-completed", h.transition(h.lifecycle.MarkReviewsCompleted))
	r.Post("/papers/{paperId}/accept", h.decision(h.lifecycle.Accept))
	r.Post("/papers/{paperId}/reject", h.decision(h.lifecycle.Reject))
	r.Post("/papers/{paperId}/schedule", h.transition(h.lifecycle.Schedule))
	r.Post("/papers/{paperId}/presented", h.transition(h.lifecycle.MarkPresented))
}

func (h *Handler) HandleCreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	req, ok := httputil.DecodeAndPrepare[DraftRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	paperID, err := h.submission.CreateDraft(ctx, req.ToCreate(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreatedResponse{ID: paperID})
}

func (h *Handler) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	paperID, ok := h.paperID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DraftRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.submission.UpdateDraft(ctx, paperID, req.ToUpdate(), requestcontext.UserID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadFile accepts a multipart body with the file in field "file".
func (h *Handler) HandleUploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	paperID, ok := h.paperID(w, r)
	if !ok {
		return
	}
	fileType, err := models.ParseFileType(chi.URLParam(r, "fileType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file exceeds the upload limit"))
			return
		}
		h.logger.WarnContext(ctx, "failed to parse upload",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer part.Close()

	file, err := h.submission.UploadFile(ctx, paperID, fileType, part, header.Filename, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.FileSummary{
		ID:           file.ID,
		Type:         file.Type,
		OriginalName: file.OriginalName,
		Size:         file.Size,
		UploadedAt:   file.UploadedAt,
		DownloadURL:  models.DownloadURL(paperID, file.Type),
	})
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID, ok := h.paperID(w, r)
	if !ok {
		return
	}
	if err := h.submission.Submit(ctx, paperID, requestcontext.UserID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TransitionResponse{ID: paperID, Status: models.StatusSubmitted})
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}
	papers, err := h.query.ListUserPapers(ctx, requestcontext.UserID(ctx), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Papers: nonNil(papers)})
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFilter(w, r)
	if !ok {
		return
	}
	papers, err := h.query.ListAllPapers(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Papers: nonNil(papers)})
}

func (h *Handler) HandleGetDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID, ok := h.paperID(w, r)
	if !ok {
		return
	}
	details, err := h.query.GetPaperDetails(ctx, paperID, service.CallerFromContext(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

// HandleDownloadFile streams the file as application/pdf with range support.
// Any failure, including a malformed path, answers 404.
func (h *Handler) HandleDownloadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notFound := func(msg string) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, msg))
	}

	paperID, err := id.ParsePaperID(chi.URLParam(r, "paperId"))
	if err != nil {
		notFound("file not found")
		return
	}
	fileType, err := models.ParseFileType(chi.URLParam(r, "fileType"))
	if err != nil {
		notFound("file not found")
		return
	}

	res := h.query.GetPaperFile(ctx, paperID, fileType, service.CallerFromContext(ctx))
	if !res.Found {
		notFound(res.Message)
		return
	}
	defer res.Content.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.OriginalName}))
	http.ServeContent(w, r, res.OriginalName, res.UploadedAt, res.Content)
}

type transitionFunc func(ctx context.Context, paperID id.PaperID, caller service.Caller) (*models.Paper, error)

type decisionFunc func(ctx context.Context, paperID id.PaperID, caller service.Caller, comment string) (*models.Paper, error)

func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		paperID, ok := h.paperID(w, r)
		if !ok {
			return
		}
		p, err := fn(ctx, paperID, service.CallerFromContext(ctx))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toTransition(p))
	}
}

// decision reads an optional comment. An empty body means no comment.
func (h *Handler) decision(fn decisionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		paperID, ok := h.paperID(w, r)
		if !ok {
			return
		}
		req, ok := httputil.DecodeOptionalAndPrepare[DecisionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		p, err := fn(ctx, paperID, service.CallerFromContext(ctx), req.Comment)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toTransition(p))
	}
}

func (h *Handler) paperID(w http.ResponseWriter, r *http.Request) (id.PaperID, bool) {
	paperID, err := id.ParsePaperID(chi.URLParam(r, "paperId"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PaperID{}, false
	}
	return paperID, true
}

func statusFilter(w http.ResponseWriter, r *http.Request) (*models.Status, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, true
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return &status, true
}

func nonNil(papers []models.PaperSummary) []models.PaperSummary {
	if papers == nil {
		return []models.PaperSummary{}
	}
	return papers
}
