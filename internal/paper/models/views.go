package models

import (
	"fmt"
	"io"
	"time"

	id "confpaper/pkg/domain"
)

// AuthorInput is the author payload accepted when creating or editing a draft.
type AuthorInput struct {
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Institution     string     `json:"institution"`
	UserID          *id.UserID `json:"user_id,omitempty"`
	IsCorresponding bool       `json:"is_corresponding"`
	IsPresenter     bool       `json:"is_presenter"`
}

// ToAuthors converts inputs in order; orders are assigned by the aggregate.
func ToAuthors(in []AuthorInput) []Author {
	out := make([]Author, len(in))
	for i, a := range in {
		out[i] = Author{
			FirstName:       a.FirstName,
			LastName:        a.LastName,
			Email:           a.Email,
			Institution:     a.Institution,
			UserID:          a.UserID,
			IsCorresponding: a.IsCorresponding,
			IsPresenter:     a.IsPresenter,
		}
	}
	return out
}

type CreateDraftRequest struct {
	Title    string        `json:"title"`
	Abstract string        `json:"abstract"`
	Authors  []AuthorInput `json:"authors"`
}

type UpdateDraftRequest struct {
	Title    string        `json:"title"`
	Abstract string        `json:"abstract"`
	Authors  []AuthorInput `json:"authors"`
}

// FileSummary is the read projection of a PaperFile.
type FileSummary struct {
	ID           id.FileID `json:"id"`
	Type         FileType  `json:"type"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
	DownloadURL  string    `json:"download_url"`
}

// DownloadURL is the API path serving a paper's file of the given type.
func DownloadURL(paperID id.PaperID, t FileType) string {
	return fmt.Sprintf("/api/papers/%s/files/%s", paperID, t)
}

func SummarizeFiles(p *Paper) []FileSummary {
	out := make([]FileSummary, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, FileSummary{
			ID:           f.ID,
			Type:         f.Type,
			OriginalName: f.OriginalName,
			Size:         f.Size,
			UploadedAt:   f.UploadedAt,
			DownloadURL:  DownloadURL(p.ID, f.Type),
		})
	}
	return out
}

// PaperSummary is the list projection.
type PaperSummary struct {
	ID          id.PaperID    `json:"id"`
	Title       string        `json:"title"`
	Status      Status        `json:"status"`
	SubmitterID id.UserID     `json:"submitter_id"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	Authors     string        `json:"authors"`
	Files       []FileSummary `json:"files"`
	CreatedAt   time.Time     `json:"created_at"`
}

func Summarize(p *Paper) PaperSummary {
	return PaperSummary{
		ID:          p.ID,
		Title:       p.Title,
		Status:      p.Status,
		SubmitterID: p.SubmitterID,
		SubmittedAt: p.SubmittedAt,
		Authors:     FormatAuthors(p.Authors),
		Files:       SummarizeFiles(p),
		CreatedAt:   p.CreatedAt,
	}
}

// PaperDetails is the single-paper projection.
type PaperDetails struct {
	ID               id.PaperID    `json:"id"`
	Title            string        `json:"title"`
	Abstract         string        `json:"abstract"`
	Status           Status        `json:"status"`
	SubmitterID      id.UserID     `json:"submitter_id"`
	SubmitterName    string        `json:"submitter_name"`
	SubmittedAt      *time.Time    `json:"submitted_at,omitempty"`
	DecidedAt        *time.Time    `json:"decided_at,omitempty"`
	DecidedBy        *id.UserID    `json:"decided_by,omitempty"`
	DecisionComment  *string       `json:"decision_comment,omitempty"`
	Authors          []Author      `json:"authors"`
	FormattedAuthors []string      `json:"formatted_authors"`
	Files            []FileSummary `json:"files"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func Detail(p *Paper, submitterName string) *PaperDetails {
	formatted := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		formatted[i] = a.Formatted()
	}
	return &PaperDetails{
		ID:               p.ID,
		Title:            p.Title,
		Abstract:         p.Abstract,
		Status:           p.Status,
		SubmitterID:      p.SubmitterID,
		SubmitterName:    submitterName,
		SubmittedAt:      p.SubmittedAt,
		DecidedAt:        p.DecidedAt,
		DecidedBy:        p.DecidedBy,
		DecisionComment:  p.DecisionComment,
		Authors:          p.Authors,
		FormattedAuthors: formatted,
		Files:            SummarizeFiles(p),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// FileResult is the uniform outcome of a file download. When Found is false,
// Message explains the failure and Content is nil; callers never see the
// underlying cause.
type FileResult struct {
	Found        bool
	Message      string
	Content      io.ReadSeekCloser
	OriginalName string
	Size         int64
	UploadedAt   time.Time
}

func FileNotFound(msg string) FileResult {
	return FileResult{Found: false, Message: msg}
}
