// Package models holds the review records. They are plain data; the paper
// aggregate does not depend on them.
package models

import (
	"bytes"
	"encoding/json"
	"time"

	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
)

// Assignment links one reviewer to one paper.
type Assignment struct {
	ID         id.AssignmentID `json:"id"`
	PaperID    id.PaperID      `json:"paper_id"`
	ReviewerID id.UserID       `json:"reviewer_id"`
	AssignedBy id.UserID       `json:"assigned_by"`
	AssignedAt time.Time       `json:"assigned_at"`
}

func NewAssignment(paperID id.PaperID, reviewer, assignedBy id.UserID, now time.Time) (*Assignment, error) {
	if reviewer.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "reviewer_id is required")
	}
	return &Assignment{
		ID:         id.NewAssignmentID(),
		PaperID:    paperID,
		ReviewerID: reviewer,
		AssignedBy: assignedBy,
		AssignedAt: now,
	}, nil
}

// Template describes a review form. Its schema is stored and served as-is.
type Template struct {
	ID       id.TemplateID   `json:"id"`
	Name     string          `json:"name"`
	Version  int             `json:"version"`
	Schema   json.RawMessage `json:"schema"`
	IsActive bool            `json:"is_active"`
}

// Review is a reviewer's submitted form for one assignment.
type Review struct {
	ID           id.ReviewID     `json:"id"`
	AssignmentID id.AssignmentID `json:"assignment_id"`
	TemplateID   id.TemplateID   `json:"template_id"`
	Content      json.RawMessage `json:"content"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// NewReview checks that content is a JSON object and that tmpl accepts new
// reviews.
func NewReview(assignmentID id.AssignmentID, tmpl *Template, content json.RawMessage, now time.Time) (*Review, error) {
	if tmpl == nil || !tmpl.IsActive {
		return nil, dErrors.New(dErrors.CodeValidation, "review template is not active")
	}
	if err := ValidateContent(content); err != nil {
		return nil, err
	}
	return &Review{
		ID:           id.NewReviewID(),
		AssignmentID: assignmentID,
		TemplateID:   tmpl.ID,
		Content:      append(json.RawMessage(nil), content...),
		SubmittedAt:  now,
	}, nil
}

func ValidateContent(content json.RawMessage) error {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return dErrors.New(dErrors.CodeValidation, "review content is required")
	}
	var obj map[string]json.RawMessage
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return dErrors.New(dErrors.CodeValidation, "review content must be a JSON object")
	}
	return nil
}

// AssignmentView pairs an assignment with its review, if one was submitted.
type AssignmentView struct {
	Assignment
	Review *Review `json:"review,omitempty"`
}

// AssignReviewerRequest is the body of an assignment request.
type AssignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

func (r *AssignReviewerRequest) Validate() error {
	if r.ReviewerID == "" {
		return dErrors.New(dErrors.CodeValidation, "reviewer_id is required")
	}
	return nil
}

// SubmitReviewRequest is the body of a review submission.
type SubmitReviewRequest struct {
	TemplateID string          `json:"template_id"`
	Content    json.RawMessage `json:"content"`
}

func (r *SubmitReviewRequest) Validate() error {
	if r.TemplateID == "" {
		return dErrors.New(dErrors.CodeValidation, "template_id is required")
	}
	return ValidateContent(r.Content)
}
