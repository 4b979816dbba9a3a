package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"confpaper/internal/audit"
	audithandler "confpaper/internal/audit/handler"
	auditmemory "confpaper/internal/audit/store/memory"
	"confpaper/internal/filestore"
	"confpaper/internal/identity"
	jwttoken "confpaper/internal/jwt_token"
	paperhandler "confpaper/internal/paper/handler"
	paperservice "confpaper/internal/paper/service"
	paperstore "confpaper/internal/paper/store"
	"confpaper/internal/platform/metrics"
	reviewhandler "confpaper/internal/review/handler"
	reviewservice "confpaper/internal/review/service"
	reviewstore "confpaper/internal/review/store"
	id "confpaper/pkg/domain"
)

// RouterSuite drives the whole API over HTTP against in-memory backends.
type RouterSuite struct {
	suite.Suite
	server   *httptest.Server
	tokens   *jwttoken.JWTService
	author   id.UserID
	chair    id.UserID
	reviewer id.UserID
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := filestore.NewLocal(s.T().TempDir())
	s.Require().NoError(err)

	s.author, s.chair, s.reviewer = id.NewUserID(), id.NewUserID(), id.NewUserID()
	directory := identity.NewInMemoryDirectory(identity.User{ID: s.author, FirstName: "Ada", LastName: "Lovelace"})
	publisher := audit.NewPublisher(auditmemory.NewInMemoryStore())

	papers := paperstore.NewInMemory()
	tx := paperservice.NewShardedTx(papers)
	opts := []paperservice.Option{
		paperservice.WithLogger(logger),
		paperservice.WithTx(tx),
		paperservice.WithAuditPublisher(publisher),
		paperservice.WithUserDirectory(directory),
	}
	reviews := reviewservice.New(reviewstore.NewInMemory(), papers,
		reviewservice.WithLogger(logger),
		reviewservice.WithAuditPublisher(publisher),
	)

	s.tokens = jwttoken.NewJWTService("router-test-key", "confpaper", "confpaper-api")
	reg := prometheus.NewRegistry()
	router := NewRouter(Deps{
		Logger:    logger,
		Metrics:   metrics.NewWithRegisterer(reg),
		Gatherer:  reg,
		Validator: jwttoken.NewJWTServiceAdapter(s.tokens),
		Papers: paperhandler.New(
			paperservice.NewSubmissionService(papers, storage, opts...),
			paperservice.NewQueryService(papers, storage, opts...),
			paperservice.NewLifecycleService(papers, opts...),
			logger, 1<<20,
		),
		Reviews: reviewhandler.New(reviews, logger),
		Audit:   audithandler.New(publisher, logger),
		Checks: map[string]HealthCheck{
			"storage": func(context.Context) error { return nil },
		},
	})
	s.server = httptest.NewServer(router)
}

func (s *RouterSuite) TearDownTest() {
	s.server.Close()
}

func (s *RouterSuite) token(user id.UserID, roles ...id.Role) string {
	tok, err := s.tokens.GenerateAccessToken(user, roles, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *RouterSuite) call(method, path, token string, body io.Reader, contentType string) *http.Response {
	req, err := http.NewRequest(method, s.server.URL+path, body)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *RouterSuite) callJSON(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	return s.call(method, path, token, reader, "application/json")
}

func decode[T any](s *RouterSuite, resp *http.Response) T {
	var v T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *RouterSuite) TestHealthAndMetrics() {
	resp := s.call(http.MethodGet, "/healthz", "", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.call(http.MethodGet, "/metrics", "", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "confpaper_http_requests_total")
}

func (s *RouterSuite) TestAuthBoundaries() {
	resp := s.call(http.MethodGet, "/api/papers/mine", "", nil, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.call(http.MethodGet, "/api/admin/papers", s.token(s.author, id.RoleAuthor), nil, "")
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.call(http.MethodGet, "/api/admin/papers", s.token(s.chair, id.RolePaperChair), nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestPaperThroughReview() {
	authorTok := s.token(s.author, id.RoleAuthor)
	chairTok := s.token(s.chair, id.RoleConferenceChair)
	reviewerTok := s.token(s.reviewer, id.RoleReviewer)

	resp := s.callJSON(http.MethodPost, "/api/papers", authorTok, map[string]any{
		"title":    "Analytical Engines",
		"abstract": "Notes on the engine.",
		"authors": []map[string]any{
			{"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.org", "is_corresponding": true, "is_presenter": true},
		},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	paperID := decode[paperhandler.CreatedResponse](s, resp).ID.String()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "engine.pdf")
	s.Require().NoError(err)
	_, err = part.Write([]byte("%PDF-1.4 analytical engine"))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())
	resp = s.call(http.MethodPost, "/api/papers/"+paperID+"/files/initial_submission", authorTok, &buf, mw.FormDataContentType())
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp = s.call(http.MethodPost, "/api/papers/"+paperID+"/submit", authorTok, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.call(http.MethodGet, "/api/papers/"+paperID+"/files/initial_submission", authorTok, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))
	content, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("%PDF-1.4 analytical engine", string(content))

	resp = s.call(http.MethodGet, "/api/papers/"+paperID+"/files/initial_submission", reviewerTok, nil, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.call(http.MethodPost, "/api/admin/papers/"+paperID+"/under-review", chairTok, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.callJSON(http.MethodPost, "/api/admin/review-templates", chairTok, map[string]any{"name": "Standard"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	templateID := decode[map[string]any](s, resp)["id"].(string)

	resp = s.callJSON(http.MethodPost, "/api/admin/papers/"+paperID+"/assignments", chairTok, map[string]string{
		"reviewer_id": s.reviewer.String(),
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	assignmentID := decode[map[string]any](s, resp)["id"].(string)

	resp = s.callJSON(http.MethodPost, "/api/reviews/"+assignmentID, reviewerTok, map[string]any{
		"template_id": templateID,
		"content":     map[string]any{"score": 5},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp = s.call(http.MethodPost, "/api/admin/papers/"+paperID+"/reviews-completed", chairTok, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp = s.callJSON(http.MethodPost, "/api/admin/papers/"+paperID+"/accept", chairTok, map[string]string{"comment": "Visionary"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.call(http.MethodGet, "/api/papers/"+paperID, authorTok, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	details := decode[map[string]any](s, resp)
	s.Equal("accepted", details["status"])
	s.Equal("Ada Lovelace", details["submitter_name"])
	s.Equal("Visionary", details["decision_comment"])

	resp = s.call(http.MethodGet, "/api/admin/papers/"+paperID+"/audit", chairTok, nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	trail := decode[struct {
		Events []audit.Event `json:"events"`
	}](s, resp)
	s.Require().NotEmpty(trail.Events)
	s.Equal("127.0.0.1", trail.Events[0].ClientIP)
	actions := make([]audit.Action, len(trail.Events))
	for i, e := range trail.Events {
		actions[i] = e.Action
	}
	s.Equal([]audit.Action{
		audit.ActionDraftCreated,
		audit.ActionFileUploaded,
		audit.ActionSubmitted,
		audit.ActionMovedToReview,
		audit.ActionReviewerAssigned,
		audit.ActionReviewSubmitted,
		audit.ActionReviewsCompleted,
		audit.ActionAccepted,
	}, actions)
}

func (s *RouterSuite) TestUnhealthyDependency() {
	rec := httptest.NewRecorder()
	healthHandler(map[string]HealthCheck{
		"database": func(context.Context) error { return errors.New("down") },
	}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"status":"degraded","checks":{"database":"unavailable"}}`, rec.Body.String())
}
