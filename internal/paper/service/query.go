package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"confpaper/internal/paper/models"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/sentinel"
	"confpaper/pkg/requestcontext"
)

// fileNotFoundMessage is the single message returned for every failed
// download, so callers cannot probe which papers or files exist.
const fileNotFoundMessage = "file not found"

// QueryService serves read projections. Every paper-targeted query re-checks
// ownership or privilege; nothing is cached between calls.
type QueryService struct {
	store     Store
	storage   FileStorage
	directory UserDirectory
	logger    *slog.Logger
}

func NewQueryService(store Store, storage FileStorage, opts ...Option) *QueryService {
	cfg := newConfig(store, opts)
	return &QueryService{
		store:     store,
		storage:   storage,
		directory: cfg.directory,
		logger:    cfg.logger,
	}
}

// ListUserPapers returns papers submitted by userID, newest submission first.
// Drafts (never submitted) sort after submitted papers, newest draft first.
func (s *QueryService) ListUserPapers(ctx context.Context, userID id.UserID, status *models.Status) (summaries []models.PaperSummary, err error) {
	ctx, span := startSpan(ctx, "ListUserPapers", id.PaperID{})
	defer func() { endSpan(span, err) }()

	papers, err := s.store.ListBySubmitter(ctx, userID, status)
	if err != nil {
		err = wrapPaperErr(err, "list papers")
		logFailure(ctx, s.logger, "failed to list user papers", err, "user_id", userID)
		return nil, err
	}
	return summarize(papers), nil
}

// ListAllPapers returns every paper. Callers must restrict it to privileged
// users; the HTTP layer does so.
func (s *QueryService) ListAllPapers(ctx context.Context, status *models.Status) (summaries []models.PaperSummary, err error) {
	ctx, span := startSpan(ctx, "ListAllPapers", id.PaperID{})
	defer func() { endSpan(span, err) }()

	papers, err := s.store.ListAll(ctx, status)
	if err != nil {
		err = wrapPaperErr(err, "list papers")
		logFailure(ctx, s.logger, "failed to list papers", err)
		return nil, err
	}
	return summarize(papers), nil
}

func (s *QueryService) GetPaperDetails(ctx context.Context, paperID id.PaperID, caller Caller) (details *models.PaperDetails, err error) {
	ctx, span := startSpan(ctx, "GetPaperDetails", paperID)
	defer func() { endSpan(span, err) }()

	paper, err := s.store.FindByID(ctx, paperID)
	if err != nil {
		err = wrapPaperErr(err, "load paper")
		logFailure(ctx, s.logger, "failed to load paper", err, "paper_id", paperID)
		return nil, err
	}
	if !caller.CanView(paper) {
		err = dErrors.New(dErrors.CodeForbidden, "not allowed to view this paper")
		logFailure(ctx, s.logger, "paper access denied", err, "paper_id", paperID, "user_id", caller.UserID)
		return nil, err
	}

	return models.Detail(paper, s.submitterName(ctx, paper.SubmitterID)), nil
}

// GetPaperFile opens the paper's file of the given type. Every failure,
// including authorization, collapses into the same not-found result; the
// cause is only logged. On success the caller must close result.Content.
func (s *QueryService) GetPaperFile(ctx context.Context, paperID id.PaperID, fileType models.FileType, caller Caller) models.FileResult {
	ctx, span := startSpan(ctx, "GetPaperFile", paperID)
	var spanErr error
	defer func() { endSpan(span, spanErr) }()

	fail := func(reason string, err error) models.FileResult {
		spanErr = err
		s.logger.WarnContext(ctx, "file download failed",
			"reason", reason,
			"error", err,
			"paper_id", paperID,
			"file_type", fileType,
			"user_id", caller.UserID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.FileNotFound(fileNotFoundMessage)
	}

	paper, err := s.store.FindByID(ctx, paperID)
	if err != nil {
		return fail("paper lookup", err)
	}
	if !caller.CanView(paper) {
		return fail("unauthorized", dErrors.New(dErrors.CodeForbidden, "not allowed to view this paper"))
	}
	file, ok := paper.FileOfType(fileType)
	if !ok {
		return fail("no file of type", sentinel.ErrNotFound)
	}

	content, err := s.storage.OpenRead(ctx, file.StoragePath)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "storage read failed",
				"error", err,
				"storage_path", file.StoragePath,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return fail("storage read", err)
	}

	return models.FileResult{
		Found:        true,
		Content:      content,
		OriginalName: file.OriginalName,
		Size:         file.Size,
		UploadedAt:   file.UploadedAt,
	}
}

// submitterName falls back to the raw id when the directory is absent or
// cannot resolve the user.
func (s *QueryService) submitterName(ctx context.Context, userID id.UserID) string {
	if s.directory == nil {
		return userID.String()
	}
	name, err := s.directory.DisplayName(ctx, userID)
	if err != nil || name == "" {
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to resolve submitter name",
				"error", err,
				"user_id", userID,
			)
		}
		return userID.String()
	}
	return name
}

func summarize(papers []*models.Paper) []models.PaperSummary {
	sortBySubmission(papers)
	out := make([]models.PaperSummary, 0, len(papers))
	for _, p := range papers {
		out = append(out, models.Summarize(p))
	}
	return out
}

func sortBySubmission(papers []*models.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		a, b := papers[i], papers[j]
		switch {
		case a.SubmittedAt != nil && b.SubmittedAt != nil:
			if !a.SubmittedAt.Equal(*b.SubmittedAt) {
				return a.SubmittedAt.After(*b.SubmittedAt)
			}
		case a.SubmittedAt != nil:
			return true
		case b.SubmittedAt != nil:
			return false
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
