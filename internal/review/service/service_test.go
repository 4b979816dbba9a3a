package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,PaperReader,AuditPublisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confpaper/internal/audit"
	papermodels "confpaper/internal/paper/models"
	"confpaper/internal/review/models"
	"confpaper/internal/review/service/mocks"
	"confpaper/internal/review/store"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/sentinel"
	"confpaper/pkg/requestcontext"
)

type ReviewSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	ctx       context.Context
	now       time.Time
	store     *store.InMemory
	papers    *mocks.MockPaperReader
	publisher *mocks.MockAuditPublisher
	service   *Service
	chair     Caller
	reviewer  Caller
	paper     *papermodels.Paper
	template  *models.Template
}

func TestReviewSuite(t *testing.T) {
	suite.Run(t, new(ReviewSuite))
}

func (s *ReviewSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Date(2025, time.September, 3, 14, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.papers = mocks.NewMockPaperReader(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, s.papers,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
	)
	s.chair = Caller{UserID: id.NewUserID(), Roles: []id.Role{id.RolePaperChair}}
	s.reviewer = Caller{UserID: id.NewUserID(), Roles: []id.Role{id.RoleReviewer}}
	s.paper = &papermodels.Paper{ID: id.NewPaperID(), SubmitterID: id.NewUserID(), Status: papermodels.StatusSubmitted}
	s.template = &models.Template{ID: id.NewTemplateID(), Name: "Standard", Version: 1, IsActive: true}
	s.Require().NoError(s.store.CreateTemplate(s.ctx, s.template))
}

func (s *ReviewSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ReviewSuite) expectPaper() {
	s.papers.EXPECT().FindByID(gomock.Any(), s.paper.ID).Return(s.paper, nil)
}

func (s *ReviewSuite) assign() *models.Assignment {
	s.expectPaper()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	a, err := s.service.AssignReviewer(s.ctx, s.paper.ID, s.reviewer.UserID, s.chair)
	s.Require().NoError(err)
	return a
}

// =============================================================================
// AssignReviewer
// =============================================================================

func (s *ReviewSuite) TestAssignReviewer() {
	s.expectPaper()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(audit.ActionReviewerAssigned, e.Action)
		s.Equal(s.paper.ID, e.PaperID)
		s.Equal(s.chair.UserID, e.ActorID)
		return nil
	})

	a, err := s.service.AssignReviewer(s.ctx, s.paper.ID, s.reviewer.UserID, s.chair)
	s.Require().NoError(err)
	s.Equal(s.reviewer.UserID, a.ReviewerID)
	s.Equal(s.chair.UserID, a.AssignedBy)
	s.True(s.now.Equal(a.AssignedAt))

	s.Run("duplicate assignment conflicts", func() {
		s.expectPaper()
		_, err := s.service.AssignReviewer(s.ctx, s.paper.ID, s.reviewer.UserID, s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ReviewSuite) TestAssignReviewerRules() {
	s.Run("non-chair is forbidden", func() {
		_, err := s.service.AssignReviewer(s.ctx, s.paper.ID, id.NewUserID(), s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing paper", func() {
		s.papers.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.AssignReviewer(s.ctx, id.NewPaperID(), id.NewUserID(), s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("draft paper", func() {
		draft := &papermodels.Paper{ID: id.NewPaperID(), SubmitterID: id.NewUserID(), Status: papermodels.StatusDraft}
		s.papers.EXPECT().FindByID(gomock.Any(), draft.ID).Return(draft, nil)
		_, err := s.service.AssignReviewer(s.ctx, draft.ID, id.NewUserID(), s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("submitter cannot review own paper", func() {
		s.expectPaper()
		_, err := s.service.AssignReviewer(s.ctx, s.paper.ID, s.paper.SubmitterID, s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("paper lookup failure is internal", func() {
		s.papers.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
		_, err := s.service.AssignReviewer(s.ctx, s.paper.ID, id.NewUserID(), s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ReviewSuite) TestAuditFailureDoesNotFailAssignment() {
	s.expectPaper()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
	_, err := s.service.AssignReviewer(s.ctx, s.paper.ID, s.reviewer.UserID, s.chair)
	s.NoError(err)
}

// =============================================================================
// SubmitReview
// =============================================================================

func (s *ReviewSuite) TestSubmitReview() {
	a := s.assign()
	s.paper.Status = papermodels.StatusUnderReview

	s.expectPaper()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(audit.ActionReviewSubmitted, e.Action)
		s.Equal(s.paper.ID, e.PaperID)
		return nil
	})
	r, err := s.service.SubmitReview(s.ctx, a.ID, s.template.ID, json.RawMessage(`{"score":3}`), s.reviewer)
	s.Require().NoError(err)
	s.Equal(a.ID, r.AssignmentID)

	s.expectPaper()
	views, err := s.service.ListAssignments(s.ctx, s.paper.ID, s.chair)
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Require().NotNil(views[0].Review)
	s.Equal(r.ID, views[0].Review.ID)

	s.Run("second review conflicts", func() {
		s.expectPaper()
		_, err := s.service.SubmitReview(s.ctx, a.ID, s.template.ID, json.RawMessage(`{"score":5}`), s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ReviewSuite) TestSubmitReviewRules() {
	a := s.assign()
	content := json.RawMessage(`{"score":3}`)

	s.Run("missing assignment", func() {
		_, err := s.service.SubmitReview(s.ctx, id.NewAssignmentID(), s.template.ID, content, s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("someone else's assignment", func() {
		_, err := s.service.SubmitReview(s.ctx, a.ID, s.template.ID, content, s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("paper not under review", func() {
		s.expectPaper()
		_, err := s.service.SubmitReview(s.ctx, a.ID, s.template.ID, content, s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.paper.Status = papermodels.StatusUnderReview

	s.Run("unknown template", func() {
		s.expectPaper()
		_, err := s.service.SubmitReview(s.ctx, a.ID, id.NewTemplateID(), content, s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("inactive template", func() {
		retired := &models.Template{ID: id.NewTemplateID(), Name: "Old", Version: 1}
		s.Require().NoError(s.store.CreateTemplate(s.ctx, retired))
		s.expectPaper()
		_, err := s.service.SubmitReview(s.ctx, a.ID, retired.ID, content, s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("content must be an object", func() {
		s.expectPaper()
		_, err := s.service.SubmitReview(s.ctx, a.ID, s.template.ID, json.RawMessage(`[1,2,3]`), s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ReviewSuite) TestListAssignmentsRequiresChair() {
	_, err := s.service.ListAssignments(s.ctx, s.paper.ID, s.reviewer)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ReviewSuite) TestStoreFailureIsInternal() {
	failing := mocks.NewMockStore(s.ctrl)
	svc := New(failing, s.papers, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	failing.EXPECT().ListActiveTemplates(gomock.Any()).Return(nil, errors.New("disk full"))

	_, err := svc.ListTemplates(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

// =============================================================================
// Templates
// =============================================================================

func (s *ReviewSuite) TestCreateTemplate() {
	tmpl, err := s.service.CreateTemplate(s.ctx, CreateTemplateInput{
		Name:   "Short form",
		Schema: json.RawMessage(`{"fields":["score"]}`),
	}, s.chair)
	s.Require().NoError(err)
	s.Equal(1, tmpl.Version)
	s.True(tmpl.IsActive)

	all, err := s.service.ListTemplates(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	s.Run("reviewers cannot create templates", func() {
		_, err := s.service.CreateTemplate(s.ctx, CreateTemplateInput{Name: "x"}, s.reviewer)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("name is required", func() {
		_, err := s.service.CreateTemplate(s.ctx, CreateTemplateInput{}, s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate version conflicts", func() {
		_, err := s.service.CreateTemplate(s.ctx, CreateTemplateInput{Name: "Short form", Version: 1}, s.chair)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}
