package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"confpaper/internal/audit"
	papermetrics "confpaper/internal/paper/metrics"
	"confpaper/internal/paper/models"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/requestcontext"
)

// SubmissionService handles the submitter's side of the lifecycle: drafting,
// uploading files and submitting.
type SubmissionService struct {
	store   Store
	storage FileStorage
	tx      StoreTx
	logger  *slog.Logger
	metrics *papermetrics.Metrics
	audit   auditEmitter
}

func NewSubmissionService(store Store, storage FileStorage, opts ...Option) *SubmissionService {
	cfg := newConfig(store, opts)
	return &SubmissionService{
		store:   store,
		storage: storage,
		tx:      cfg.tx,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		audit:   auditEmitter{logger: cfg.logger, publisher: cfg.auditPublisher},
	}
}

// CreateDraft validates the request through the aggregate factory and
// persists the new draft. Nothing is written when validation fails.
func (s *SubmissionService) CreateDraft(ctx context.Context, req models.CreateDraftRequest, userID id.UserID) (paperID id.PaperID, err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "CreateDraft", id.PaperID{})
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation("create_draft", start)

	if userID.IsNil() {
		return id.PaperID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	paper, err := models.NewPaper(id.NewPaperID(), userID, req.Title, req.Abstract, models.ToAuthors(req.Authors), requestcontext.Now(ctx))
	if err != nil {
		logFailure(ctx, s.logger, "draft rejected", err, "user_id", userID)
		return id.PaperID{}, err
	}

	err = s.tx.RunInTx(withTxPaper(ctx, paper.ID), func(store Store) error {
		return store.Create(ctx, paper)
	})
	if err != nil {
		err = wrapPaperErr(err, "create draft")
		logFailure(ctx, s.logger, "failed to create draft", err, "paper_id", paper.ID)
		return id.PaperID{}, err
	}

	s.metrics.IncrementDraftsCreated()
	s.audit.emit(ctx, audit.ActionDraftCreated, paper.ID, userID, "")
	return paper.ID, nil
}

// UpdateDraft replaces metadata and authors of a draft owned by userID.
func (s *SubmissionService) UpdateDraft(ctx context.Context, paperID id.PaperID, req models.UpdateDraftRequest, userID id.UserID) (err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "UpdateDraft", paperID)
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation("update_draft", start)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(withTxPaper(ctx, paperID), func(store Store) error {
		paper, err := loadOwned(ctx, store, paperID, userID)
		if err != nil {
			return err
		}
		// Work on a copy so a failed author replacement cannot leave a
		// half-applied metadata change behind.
		next := paper.Clone()
		if err := next.UpdateMetadata(req.Title, req.Abstract, now); err != nil {
			return err
		}
		if err := next.ReplaceAuthors(models.ToAuthors(req.Authors), now); err != nil {
			return err
		}
		return store.Save(ctx, next)
	})
	if err != nil {
		err = wrapPaperErr(err, "update draft")
		logFailure(ctx, s.logger, "failed to update draft", err, "paper_id", paperID, "user_id", userID)
		return err
	}

	s.audit.emit(ctx, audit.ActionDraftUpdated, paperID, userID, "")
	return nil
}

// UploadFile stores content and attaches it to the paper, replacing any file
// of the same type.
//
// Bytes are written to storage first. If recording the file then fails, the
// stored bytes are deleted once (a failed delete is logged, not retried). The
// replaced file's bytes are deleted only after the new record is committed.
// The caller keeps ownership of content.
func (s *SubmissionService) UploadFile(ctx context.Context, paperID id.PaperID, fileType models.FileType, content io.ReadSeeker, originalName string, userID id.UserID) (file *models.PaperFile, err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "UploadFile", paperID)
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation("upload_file", start)

	if !fileType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown file type")
	}
	size, err := streamSize(content)
	if err != nil {
		logFailure(ctx, s.logger, "upload rejected", err, "paper_id", paperID)
		return nil, err
	}

	paper, err := loadOwned(ctx, s.store, paperID, userID)
	if err != nil {
		err = wrapPaperErr(err, "load paper")
		logFailure(ctx, s.logger, "upload rejected", err, "paper_id", paperID, "user_id", userID)
		return nil, err
	}
	if err := paper.CanAttachFile(); err != nil {
		logFailure(ctx, s.logger, "upload rejected", err, "paper_id", paperID)
		return nil, err
	}

	handle, err := s.storage.Save(ctx, content, originalName)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store file",
			"error", err,
			"paper_id", paperID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to store file")
	}

	now := requestcontext.Now(ctx)
	var replaced *models.PaperFile
	err = s.tx.RunInTx(withTxPaper(ctx, paperID), func(store Store) error {
		current, err := loadOwned(ctx, store, paperID, userID)
		if err != nil {
			return err
		}
		record, err := models.NewPaperFile(current.ID, fileType, handle, originalName, size, now)
		if err != nil {
			return err
		}
		replaced, err = current.ReplaceFile(*record, now)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, current); err != nil {
			return err
		}
		file = record
		return nil
	})
	if err != nil {
		err = wrapPaperErr(err, "record uploaded file")
		logFailure(ctx, s.logger, "failed to record uploaded file", err, "paper_id", paperID, "storage_path", handle)
		s.compensate(ctx, handle)
		return nil, err
	}

	if replaced != nil && replaced.StoragePath != handle {
		if delErr := s.storage.Delete(ctx, replaced.StoragePath); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced file",
				"error", delErr,
				"paper_id", paperID,
				"storage_path", replaced.StoragePath,
			)
		}
	}

	s.metrics.IncrementFilesUploaded(fileType.String())
	s.audit.emit(ctx, audit.ActionFileUploaded, paperID, userID, fileType.String())
	return file, nil
}

// compensate removes bytes whose database record was never committed.
// It runs on a context detached from cancellation so an aborted request still
// cleans up after itself.
func (s *SubmissionService) compensate(ctx context.Context, handle string) {
	cleanupCtx := context.WithoutCancel(ctx)
	if err := s.storage.Delete(cleanupCtx, handle); err != nil {
		s.metrics.IncrementCompensation("failed")
		s.logger.ErrorContext(ctx, "compensating delete failed, file orphaned",
			"error", err,
			"storage_path", handle,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.metrics.IncrementCompensation("deleted")
}

// Submit moves a complete draft to Submitted. Aggregate rejections are
// returned unchanged.
func (s *SubmissionService) Submit(ctx context.Context, paperID id.PaperID, userID id.UserID) (err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "Submit", paperID)
	defer func() { endSpan(span, err) }()
	defer s.metrics.ObserveOperation("submit", start)

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(withTxPaper(ctx, paperID), func(store Store) error {
		paper, err := loadOwned(ctx, store, paperID, userID)
		if err != nil {
			return err
		}
		if err := paper.Submit(now); err != nil {
			return err
		}
		return store.Save(ctx, paper)
	})
	if err != nil {
		err = wrapPaperErr(err, "submit paper")
		logFailure(ctx, s.logger, "submission failed", err, "paper_id", paperID, "user_id", userID)
		return err
	}

	s.metrics.IncrementTransition(models.StatusSubmitted.String())
	s.audit.emit(ctx, audit.ActionSubmitted, paperID, userID, "")
	return nil
}

// loadOwned fetches a paper and checks that userID submitted it.
func loadOwned(ctx context.Context, store Store, paperID id.PaperID, userID id.UserID) (*models.Paper, error) {
	paper, err := store.FindByID(ctx, paperID)
	if err != nil {
		return nil, wrapPaperErr(err, "load paper")
	}
	if !paper.IsOwnedBy(userID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the submitter may modify this paper")
	}
	return paper, nil
}

// streamSize measures the bytes left from the current offset, then seeks
// back to it.
func streamSize(content io.ReadSeeker) (int64, error) {
	if content == nil {
		return 0, dErrors.New(dErrors.CodeValidation, "file content is required")
	}
	cur, err := content.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, "file content must be seekable")
	}
	end, err := content.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, "file content must be seekable")
	}
	size := end - cur
	if _, err := content.Seek(cur, io.SeekStart); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, "file content must be seekable")
	}
	if size == 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	return size, nil
}
