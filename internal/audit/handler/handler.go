// Package handler serves a paper's audit trail to chairs.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"confpaper/internal/audit"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/httputil"
	"confpaper/pkg/requestcontext"
)

type Reader interface {
	ListByPaper(ctx context.Context, paperID id.PaperID) ([]audit.Event, error)
}

type Handler struct {
	reader Reader
	logger *slog.Logger
}

func New(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// RegisterAdmin mounts the audit route on a privileged router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/papers/{paperId}/audit", h.HandleList)
}

type listResponse struct {
	Events []audit.Event `json:"events"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paperID, err := id.ParsePaperID(chi.URLParam(r, "paperId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.reader.ListByPaper(ctx, paperID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"error", err,
			"paper_id", paperID,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Events: events})
}
