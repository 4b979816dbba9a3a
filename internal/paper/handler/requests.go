package handler

import (
	"strings"

	"confpaper/internal/paper/models"
	dErrors "confpaper/pkg/domain-errors"
)

// DraftRequest is the body of draft creation and edits. Content rules live
// on the aggregate; this only rejects payloads that cannot be a draft.
type DraftRequest struct {
	Title    string               `json:"title"`
	Abstract string               `json:"abstract"`
	Authors  []models.AuthorInput `json:"authors"`
}

func (r *DraftRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Abstract = strings.TrimSpace(r.Abstract)
	for i := range r.Authors {
		r.Authors[i].FirstName = strings.TrimSpace(r.Authors[i].FirstName)
		r.Authors[i].LastName = strings.TrimSpace(r.Authors[i].LastName)
		r.Authors[i].Email = strings.TrimSpace(r.Authors[i].Email)
	}
	if len(r.Authors) > maxAuthors {
		return dErrors.New(dErrors.CodeValidation, "too many authors")
	}
	return nil
}

const maxAuthors = 100

func (r *DraftRequest) ToCreate() models.CreateDraftRequest {
	return models.CreateDraftRequest{Title: r.Title, Abstract: r.Abstract, Authors: r.Authors}
}

func (r *DraftRequest) ToUpdate() models.UpdateDraftRequest {
	return models.UpdateDraftRequest{Title: r.Title, Abstract: r.Abstract, Authors: r.Authors}
}

// DecisionRequest carries the optional chair comment on accept or reject.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

func (r *DecisionRequest) Validate() error {
	r.Comment = strings.TrimSpace(r.Comment)
	return nil
}
