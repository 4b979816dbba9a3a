// Package papers holds step definitions for the paper lifecycle.
package papers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the subset of the scenario context these steps use.
type TestContext interface {
	AddUser(name string, roles ...string)
	UserID(name string) string
	ActAs(name string) error
	JSON(method, path string, body any) error
	Upload(path, filename string, content []byte) error
	Status() int
	ResponseField(field string) (any, error)
	Capture(key, value string)
	Captured(key string) string
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &paperSteps{tc: tc}

	ctx.Step(`^a user "([^"]*)" with role "([^"]*)"$`, s.userWithRole)
	ctx.Step(`^"([^"]*)" creates a draft titled "([^"]*)"$`, s.createDraft)
	ctx.Step(`^"([^"]*)" uploads the initial submission "([^"]*)"$`, s.uploadInitial)
	ctx.Step(`^"([^"]*)" submits the paper$`, s.submit)
	ctx.Step(`^"([^"]*)" moves the paper to "([^"]*)"$`, s.transition)
	ctx.Step(`^"([^"]*)" accepts the paper with comment "([^"]*)"$`, s.accept)
	ctx.Step(`^"([^"]*)" assigns "([^"]*)" as reviewer$`, s.assignReviewer)
	ctx.Step(`^"([^"]*)" creates the review template "([^"]*)"$`, s.createTemplate)
	ctx.Step(`^"([^"]*)" submits a review with score (\d+)$`, s.submitReview)
	ctx.Step(`^"([^"]*)" views the paper$`, s.view)
	ctx.Step(`^"([^"]*)" lists all papers$`, s.listAll)
	ctx.Step(`^the response status is (\d+)$`, s.statusIs)
	ctx.Step(`^the paper status is "([^"]*)"$`, s.paperStatusIs)
}

type paperSteps struct {
	tc TestContext
}

func (s *paperSteps) userWithRole(_ context.Context, name, role string) error {
	s.tc.AddUser(name, role)
	return nil
}

func (s *paperSteps) paperPath(suffix string) string {
	return "/api/papers/" + s.tc.Captured("paper_id") + suffix
}

func (s *paperSteps) adminPaperPath(suffix string) string {
	return "/api/admin/papers/" + s.tc.Captured("paper_id") + suffix
}

func (s *paperSteps) createDraft(_ context.Context, actor, title string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	err := s.tc.JSON(http.MethodPost, "/api/papers", map[string]any{
		"title":    title,
		"abstract": "Scenario abstract.",
		"authors": []map[string]any{{
			"first_name":       actor,
			"last_name":        "Author",
			"email":            actor + "@example.org",
			"is_corresponding": true,
			"is_presenter":     true,
		}},
	})
	if err != nil {
		return err
	}
	return s.captureField("id", "paper_id")
}

func (s *paperSteps) uploadInitial(_ context.Context, actor, filename string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.Upload(s.paperPath("/files/initial_submission"), filename, []byte("%PDF-1.4 scenario"))
}

func (s *paperSteps) submit(_ context.Context, actor string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.JSON(http.MethodPost, s.paperPath("/submit"), nil)
}

func (s *paperSteps) transition(_ context.Context, actor, action string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.JSON(http.MethodPost, s.adminPaperPath("/"+action), nil)
}

func (s *paperSteps) accept(_ context.Context, actor, comment string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.JSON(http.MethodPost, s.adminPaperPath("/accept"), map[string]string{"comment": comment})
}

func (s *paperSteps) createTemplate(_ context.Context, actor, name string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	if err := s.tc.JSON(http.MethodPost, "/api/admin/review-templates", map[string]string{"name": name}); err != nil {
		return err
	}
	return s.captureField("id", "template_id")
}

func (s *paperSteps) assignReviewer(_ context.Context, actor, reviewer string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	err := s.tc.JSON(http.MethodPost, s.adminPaperPath("/assignments"), map[string]string{
		"reviewer_id": s.tc.UserID(reviewer),
	})
	if err != nil {
		return err
	}
	return s.captureField("id", "assignment_id")
}

func (s *paperSteps) submitReview(_ context.Context, actor string, score int) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.JSON(http.MethodPost, "/api/reviews/"+s.tc.Captured("assignment_id"), map[string]any{
		"template_id": s.tc.Captured("template_id"),
		"content":     map[string]int{"score": score},
	})
}

func (s *paperSteps) view(_ context.Context, actor string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.JSON(http.MethodGet, s.paperPath(""), nil)
}

func (s *paperSteps) listAll(_ context.Context, actor string) error {
	if err := s.tc.ActAs(actor); err != nil {
		return err
	}
	return s.tc.JSON(http.MethodGet, "/api/admin/papers", nil)
}

func (s *paperSteps) statusIs(_ context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *paperSteps) paperStatusIs(_ context.Context, want string) error {
	got, err := s.tc.ResponseField("status")
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected paper status %q, got %v", want, got)
	}
	return nil
}

// captureField stores a string field of a successful response under key.
func (s *paperSteps) captureField(field, key string) error {
	if s.tc.Status() >= 300 {
		return fmt.Errorf("request failed with status %d", s.tc.Status())
	}
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	str, ok := v.(string)
	if !ok {
		return fmt.Errorf("field %q is not a string", field)
	}
	s.tc.Capture(key, str)
	return nil
}
