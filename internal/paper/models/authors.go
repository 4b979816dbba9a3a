package models

import (
	"net/mail"
	"slices"
	"strings"

	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
)

// Author is a paper-scoped snapshot of a person at submission time. UserID is
// a lookup reference to a registered account and carries no ownership.
type Author struct {
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Institution     string     `json:"institution"`
	UserID          *id.UserID `json:"user_id,omitempty"`
	Order           int        `json:"order"`
	IsCorresponding bool       `json:"is_corresponding"`
	IsPresenter     bool       `json:"is_presenter"`
}

func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Formatted renders "First Last (Corresponding)", "First Last (Presenter)" or
// just "First Last" for plain co-authors.
func (a Author) Formatted() string {
	var roles []string
	if a.IsCorresponding {
		roles = append(roles, "Corresponding")
	}
	if a.IsPresenter {
		roles = append(roles, "Presenter")
	}
	if len(roles) == 0 {
		return a.FullName()
	}
	return a.FullName() + " (" + strings.Join(roles, ", ") + ")"
}

// FormatAuthors joins the formatted names in author order.
func FormatAuthors(authors []Author) string {
	ordered := slices.Clone(authors)
	slices.SortStableFunc(ordered, func(a, b Author) int { return a.Order - b.Order })
	parts := make([]string, len(ordered))
	for i, a := range ordered {
		parts[i] = a.Formatted()
	}
	return strings.Join(parts, ", ")
}

// ValidateAuthors enforces the composition rules: at least one author,
// exactly one corresponding author, at most one presenter.
func ValidateAuthors(authors []Author) error {
	if len(authors) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one author is required")
	}
	corresponding, presenters := 0, 0
	for _, a := range authors {
		if a.IsCorresponding {
			corresponding++
		}
		if a.IsPresenter {
			presenters++
		}
	}
	if corresponding != 1 {
		return dErrors.New(dErrors.CodeValidation, "exactly one corresponding author is required")
	}
	if presenters > 1 {
		return dErrors.New(dErrors.CodeValidation, "at most one presenter is allowed")
	}
	return nil
}

// normalizeAuthors trims fields, checks per-author data and assigns orders
// 0..n-1 in input order. The input slice is not modified.
func normalizeAuthors(authors []Author) ([]Author, error) {
	out := make([]Author, len(authors))
	for i, a := range authors {
		a.FirstName = strings.TrimSpace(a.FirstName)
		a.LastName = strings.TrimSpace(a.LastName)
		a.Email = strings.TrimSpace(a.Email)
		a.Institution = strings.TrimSpace(a.Institution)
		if a.FirstName == "" || a.LastName == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "author first and last name are required")
		}
		if a.Email != "" {
			if _, err := mail.ParseAddress(a.Email); err != nil {
				return nil, dErrors.New(dErrors.CodeValidation, "invalid author email: "+a.Email)
			}
		}
		if a.UserID != nil && a.UserID.IsNil() {
			a.UserID = nil
		}
		a.Order = i
		out[i] = a
	}
	if err := ValidateAuthors(out); err != nil {
		return nil, err
	}
	return out, nil
}
