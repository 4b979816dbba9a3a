package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confpaper/internal/paper/models"
	"confpaper/internal/paper/service/mocks"
	"confpaper/internal/paper/store"
	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
	"confpaper/pkg/platform/sentinel"
	"confpaper/pkg/requestcontext"
)

type QuerySuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	ctx       context.Context
	now       time.Time
	store     *store.InMemory
	storage   *mocks.MockFileStorage
	directory *mocks.MockUserDirectory
	service   *QueryService
	owner     id.UserID
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Date(2025, time.June, 10, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.storage = mocks.NewMockFileStorage(s.ctrl)
	s.directory = mocks.NewMockUserDirectory(s.ctrl)
	s.service = NewQueryService(s.store, s.storage,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithUserDirectory(s.directory),
	)
	s.owner = id.NewUserID()
}

func (s *QuerySuite) TearDownTest() {
	s.ctrl.Finish()
}

// seed stores a paper for submitter, submitted at submittedAt when non-nil.
func (s *QuerySuite) seed(submitter id.UserID, title string, created time.Time, submittedAt *time.Time) *models.Paper {
	p, err := models.NewPaper(id.NewPaperID(), submitter, title, "abstract", []models.Author{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", IsCorresponding: true},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.org", IsPresenter: true},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org"},
	}, created)
	s.Require().NoError(err)
	f, err := models.NewPaperFile(p.ID, models.FileTypeInitialSubmission, "2025/06/"+title+".pdf", title+".pdf", 42, created)
	s.Require().NoError(err)
	_, err = p.ReplaceFile(*f, created)
	s.Require().NoError(err)
	if submittedAt != nil {
		s.Require().NoError(p.Submit(*submittedAt))
	}
	s.Require().NoError(s.store.Create(s.ctx, p))
	return p
}

func at(t time.Time) *time.Time { return &t }

func (s *QuerySuite) TestListUserPapersOrdering() {
	base := s.now.Add(-72 * time.Hour)
	draftOld := s.seed(s.owner, "draft-old", base, nil)
	draftNew := s.seed(s.owner, "draft-new", base.Add(time.Hour), nil)
	subOld := s.seed(s.owner, "sub-old", base, at(base.Add(2*time.Hour)))
	subNew := s.seed(s.owner, "sub-new", base, at(base.Add(3*time.Hour)))
	s.seed(id.NewUserID(), "someone-else", base, nil)

	got, err := s.service.ListUserPapers(s.ctx, s.owner, nil)
	s.Require().NoError(err)
	s.Require().Len(got, 4)
	s.Equal([]id.PaperID{subNew.ID, subOld.ID, draftNew.ID, draftOld.ID},
		[]id.PaperID{got[0].ID, got[1].ID, got[2].ID, got[3].ID})

	s.Run("status filter", func() {
		submitted := models.StatusSubmitted
		got, err := s.service.ListUserPapers(s.ctx, s.owner, &submitted)
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("summary carries formatted authors and download links", func() {
		summary := got[0]
		s.Equal("Ada Lovelace (Corresponding), Alan Turing (Presenter), Grace Hopper", summary.Authors)
		s.Require().Len(summary.Files, 1)
		s.Equal(models.DownloadURL(subNew.ID, models.FileTypeInitialSubmission), summary.Files[0].DownloadURL)
	})
}

func (s *QuerySuite) TestListAllPapers() {
	s.seed(s.owner, "a", s.now, nil)
	s.seed(id.NewUserID(), "b", s.now, at(s.now))

	got, err := s.service.ListAllPapers(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *QuerySuite) TestGetPaperDetails() {
	p := s.seed(s.owner, "details", s.now, nil)

	s.Run("owner sees details with submitter name", func() {
		s.directory.EXPECT().DisplayName(gomock.Any(), s.owner).Return("Ada Lovelace", nil)
		d, err := s.service.GetPaperDetails(s.ctx, p.ID, Caller{UserID: s.owner})
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", d.SubmitterName)
		s.Len(d.FormattedAuthors, 3)
	})

	s.Run("unknown submitter falls back to id", func() {
		s.directory.EXPECT().DisplayName(gomock.Any(), s.owner).Return("", sentinel.ErrNotFound)
		d, err := s.service.GetPaperDetails(s.ctx, p.ID, Caller{UserID: s.owner})
		s.Require().NoError(err)
		s.Equal(s.owner.String(), d.SubmitterName)
	})

	s.Run("chair may view", func() {
		s.directory.EXPECT().DisplayName(gomock.Any(), s.owner).Return("Ada Lovelace", nil)
		_, err := s.service.GetPaperDetails(s.ctx, p.ID, Caller{UserID: id.NewUserID(), Roles: []id.Role{id.RolePaperChair}})
		s.NoError(err)
	})

	s.Run("reviewer role alone is not enough", func() {
		_, err := s.service.GetPaperDetails(s.ctx, p.ID, Caller{UserID: id.NewUserID(), Roles: []id.Role{id.RoleReviewer}})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing paper", func() {
		_, err := s.service.GetPaperDetails(s.ctx, id.NewPaperID(), Caller{UserID: s.owner})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// GetPaperFile
// =============================================================================
// Every failure path must look identical to the caller.

func (s *QuerySuite) TestGetPaperFile() {
	p := s.seed(s.owner, "file", s.now, nil)

	s.Run("owner receives content", func() {
		tmp := filepath.Join(s.T().TempDir(), "f.pdf")
		s.Require().NoError(os.WriteFile(tmp, []byte("%PDF"), 0o600))
		fh, err := os.Open(tmp)
		s.Require().NoError(err)
		s.storage.EXPECT().OpenRead(gomock.Any(), "2025/06/file.pdf").Return(fh, nil)

		res := s.service.GetPaperFile(s.ctx, p.ID, models.FileTypeInitialSubmission, Caller{UserID: s.owner})
		s.Require().True(res.Found)
		defer res.Content.Close()
		s.Equal("file.pdf", res.OriginalName)
		s.Equal(int64(42), res.Size)
	})

	notFound := models.FileNotFound(fileNotFoundMessage)
	cases := []struct {
		name     string
		paperID  id.PaperID
		fileType models.FileType
		caller   Caller
		setup    func()
	}{
		{name: "missing paper", paperID: id.NewPaperID(), fileType: models.FileTypeInitialSubmission, caller: Caller{UserID: s.owner}},
		{name: "stranger", paperID: p.ID, fileType: models.FileTypeInitialSubmission, caller: Caller{UserID: id.NewUserID()}},
		{name: "no file of type", paperID: p.ID, fileType: models.FileTypeCameraReady, caller: Caller{UserID: s.owner}},
		{name: "bytes missing from storage", paperID: p.ID, fileType: models.FileTypeInitialSubmission, caller: Caller{UserID: s.owner},
			setup: func() {
				s.storage.EXPECT().OpenRead(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
			}},
		{name: "storage failure", paperID: p.ID, fileType: models.FileTypeInitialSubmission, caller: Caller{UserID: s.owner},
			setup: func() {
				s.storage.EXPECT().OpenRead(gomock.Any(), gomock.Any()).Return(nil, errors.New("io error"))
			}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			if tc.setup != nil {
				tc.setup()
			}
			res := s.service.GetPaperFile(s.ctx, tc.paperID, tc.fileType, tc.caller)
			s.Equal(notFound, res)
		})
	}
}
