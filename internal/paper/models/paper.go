package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
)

// Paper is the aggregate root for a conference submission.
//
// Invariants:
//   - exactly one corresponding author and at most one presenter
//   - author orders are 0..n-1 with no gaps
//   - at most one file per FileType
//   - created in Draft only through NewPaper; never deleted
//
// Every method either applies its full effect or returns an error and leaves
// the paper untouched.
type Paper struct {
	ID              id.PaperID  `json:"id"`
	Title           string      `json:"title"`
	Abstract        string      `json:"abstract"`
	Status          Status      `json:"status"`
	SubmitterID     id.UserID   `json:"submitter_id"`
	SubmittedAt     *time.Time  `json:"submitted_at,omitempty"`
	DecidedAt       *time.Time  `json:"decided_at,omitempty"`
	DecidedBy       *id.UserID  `json:"decided_by,omitempty"`
	DecisionComment *string     `json:"decision_comment,omitempty"`
	Authors         []Author    `json:"authors"`
	Files           []PaperFile `json:"files"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewPaper creates a draft. Title, abstract and authors are validated before
// anything is returned, so a failed call has nothing to persist.
func NewPaper(paperID id.PaperID, submitter id.UserID, title, abstract string, authors []Author, now time.Time) (*Paper, error) {
	if submitter.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "submitter is required")
	}
	title, abstract, err := normalizeMetadata(title, abstract)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeAuthors(authors)
	if err != nil {
		return nil, err
	}
	return &Paper{
		ID:          paperID,
		Title:       title,
		Abstract:    abstract,
		Status:      StatusDraft,
		SubmitterID: submitter,
		Authors:     normalized,
		Files:       []PaperFile{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func normalizeMetadata(title, abstract string) (string, string, error) {
	title = strings.TrimSpace(title)
	abstract = strings.TrimSpace(abstract)
	if title == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(title) > 500 {
		return "", "", dErrors.New(dErrors.CodeValidation, "title must be 500 characters or less")
	}
	if abstract == "" {
		return "", "", dErrors.New(dErrors.CodeValidation, "abstract is required")
	}
	return title, abstract, nil
}

// Clone returns a deep copy so stores never share slices or pointers with callers.
func (p *Paper) Clone() *Paper {
	if p == nil {
		return nil
	}
	c := *p
	c.SubmittedAt = clonePtr(p.SubmittedAt)
	c.DecidedAt = clonePtr(p.DecidedAt)
	c.DecidedBy = clonePtr(p.DecidedBy)
	c.DecisionComment = clonePtr(p.DecisionComment)
	c.Authors = make([]Author, len(p.Authors))
	for i, a := range p.Authors {
		a.UserID = clonePtr(a.UserID)
		c.Authors[i] = a
	}
	c.Files = slices.Clone(p.Files)
	if c.Files == nil {
		c.Files = []PaperFile{}
	}
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (p *Paper) IsOwnedBy(userID id.UserID) bool {
	return !userID.IsNil() && p.SubmitterID == userID
}

// FileOfType returns the current file of the given type, if any.
func (p *Paper) FileOfType(t FileType) (*PaperFile, bool) {
	for i := range p.Files {
		if p.Files[i].Type == t {
			return &p.Files[i], true
		}
	}
	return nil, false
}

func (p *Paper) HasFile(t FileType) bool {
	_, ok := p.FileOfType(t)
	return ok
}

func invalidState(op string, s Status) error {
	return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("cannot %s a paper in status %s", op, s))
}

// CanSubmit reports why Submit would fail, or nil.
func (p *Paper) CanSubmit() error {
	if p.Status != StatusDraft {
		return invalidState("submit", p.Status)
	}
	if strings.TrimSpace(p.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(p.Abstract) == "" {
		return dErrors.New(dErrors.CodeValidation, "abstract is required")
	}
	if err := ValidateAuthors(p.Authors); err != nil {
		return err
	}
	if !p.HasFile(FileTypeInitialSubmission) {
		return dErrors.New(dErrors.CodeInvalidState, "Initial submission file is required")
	}
	return nil
}

func (p *Paper) Submit(now time.Time) error {
	if err := p.CanSubmit(); err != nil {
		return err
	}
	p.Status = StatusSubmitted
	p.SubmittedAt = &now
	p.UpdatedAt = now
	return nil
}

func (p *Paper) transition(op string, from, to Status, now time.Time) error {
	if p.Status != from {
		return invalidState(op, p.Status)
	}
	p.Status = to
	p.UpdatedAt = now
	return nil
}

func (p *Paper) MoveToUnderReview(now time.Time) error {
	return p.transition("move to review", StatusSubmitted, StatusUnderReview, now)
}

func (p *Paper) MarkReviewsCompleted(now time.Time) error {
	return p.transition("complete reviews for", StatusUnderReview, StatusReviewsCompleted, now)
}

func (p *Paper) Accept(decider id.UserID, comment string, now time.Time) error {
	return p.decide("accept", StatusAccepted, decider, comment, now)
}

func (p *Paper) Reject(decider id.UserID, comment string, now time.Time) error {
	return p.decide("reject", StatusRejected, decider, comment, now)
}

func (p *Paper) decide(op string, to Status, decider id.UserID, comment string, now time.Time) error {
	if p.Status != StatusReviewsCompleted {
		return invalidState(op, p.Status)
	}
	if decider.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "decider is required")
	}
	p.Status = to
	p.DecidedAt = &now
	p.DecidedBy = &decider
	if c := strings.TrimSpace(comment); c != "" {
		p.DecisionComment = &c
	} else {
		p.DecisionComment = nil
	}
	p.UpdatedAt = now
	return nil
}

func (p *Paper) SubmitCameraReady(now time.Time) error {
	if p.Status != StatusAccepted {
		return invalidState("submit camera-ready for", p.Status)
	}
	if !p.HasFile(FileTypeCameraReady) {
		return dErrors.New(dErrors.CodeInvalidState, "Camera-ready file is required")
	}
	p.Status = StatusCameraReadySubmitted
	p.UpdatedAt = now
	return nil
}

func (p *Paper) Schedule(now time.Time) error {
	return p.transition("schedule", StatusCameraReadySubmitted, StatusScheduled, now)
}

func (p *Paper) MarkPresented(now time.Time) error {
	return p.transition("mark presented", StatusScheduled, StatusPresented, now)
}

// CanWithdraw allows withdrawal from any status before a decision.
func (p *Paper) CanWithdraw() error {
	if p.Status >= StatusAccepted {
		return invalidState("withdraw", p.Status)
	}
	return nil
}

func (p *Paper) Withdraw(now time.Time) error {
	if err := p.CanWithdraw(); err != nil {
		return err
	}
	p.Status = StatusWithdrawn
	p.UpdatedAt = now
	return nil
}

// ReplaceAuthors swaps the whole author list. Orders are reassigned 0..n-1 in
// input order.
func (p *Paper) ReplaceAuthors(authors []Author, now time.Time) error {
	if p.Status != StatusDraft {
		return invalidState("edit authors of", p.Status)
	}
	normalized, err := normalizeAuthors(authors)
	if err != nil {
		return err
	}
	p.Authors = normalized
	p.UpdatedAt = now
	return nil
}

func (p *Paper) UpdateMetadata(title, abstract string, now time.Time) error {
	if p.Status != StatusDraft {
		return invalidState("edit", p.Status)
	}
	title, abstract, err := normalizeMetadata(title, abstract)
	if err != nil {
		return err
	}
	p.Title = title
	p.Abstract = abstract
	p.UpdatedAt = now
	return nil
}

// CanAttachFile allows file changes until the paper has been presented.
func (p *Paper) CanAttachFile() error {
	if p.Status >= StatusPresented {
		return invalidState("attach files to", p.Status)
	}
	return nil
}

// ReplaceFile attaches file, dropping any existing file of the same type.
// The dropped record is returned so the caller can delete its bytes once the
// change is committed.
func (p *Paper) ReplaceFile(file PaperFile, now time.Time) (*PaperFile, error) {
	if err := p.CanAttachFile(); err != nil {
		return nil, err
	}
	if !file.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown file type")
	}
	file.PaperID = p.ID

	var replaced *PaperFile
	if idx := slices.IndexFunc(p.Files, func(f PaperFile) bool { return f.Type == file.Type }); idx >= 0 {
		old := p.Files[idx]
		replaced = &old
		p.Files = slices.Delete(slices.Clone(p.Files), idx, idx+1)
	}
	p.Files = append(p.Files, file)
	p.UpdatedAt = now
	return replaced, nil
}
