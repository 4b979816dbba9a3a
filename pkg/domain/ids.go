// Package domain holds identifier and role primitives shared across modules.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "confpaper/pkg/domain-errors"
)

// Typed identifiers. Distinct types stop a paper id from being passed where a
// user id is expected.
type (
	UserID       uuid.UUID
	PaperID      uuid.UUID
	FileID       uuid.UUID
	AssignmentID uuid.UUID
	ReviewID     uuid.UUID
	TemplateID   uuid.UUID
)

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id PaperID) String() string      { return uuid.UUID(id).String() }
func (id FileID) String() string       { return uuid.UUID(id).String() }
func (id AssignmentID) String() string { return uuid.UUID(id).String() }
func (id ReviewID) String() string     { return uuid.UUID(id).String() }
func (id TemplateID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PaperID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id FileID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AssignmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ReviewID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps ids as canonical strings in JSON.
func (id UserID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id PaperID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id FileID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id AssignmentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ReviewID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id TemplateID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error       { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *PaperID) UnmarshalText(b []byte) error      { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *FileID) UnmarshalText(b []byte) error       { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *AssignmentID) UnmarshalText(b []byte) error { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *ReviewID) UnmarshalText(b []byte) error     { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *TemplateID) UnmarshalText(b []byte) error   { return unmarshalUUID((*uuid.UUID)(id), b) }

func unmarshalUUID(dst *uuid.UUID, b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid id")
	}
	*dst = u
	return nil
}

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewPaperID() PaperID           { return PaperID(uuid.New()) }
func NewFileID() FileID             { return FileID(uuid.New()) }
func NewAssignmentID() AssignmentID { return AssignmentID(uuid.New()) }
func NewReviewID() ReviewID         { return ReviewID(uuid.New()) }
func NewTemplateID() TemplateID     { return TemplateID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

func ParsePaperID(s string) (PaperID, error) {
	u, err := parseUUID(s, "paper_id")
	return PaperID(u), err
}

func ParseFileID(s string) (FileID, error) {
	u, err := parseUUID(s, "file_id")
	return FileID(u), err
}

func ParseAssignmentID(s string) (AssignmentID, error) {
	u, err := parseUUID(s, "assignment_id")
	return AssignmentID(u), err
}

func ParseReviewID(s string) (ReviewID, error) {
	u, err := parseUUID(s, "review_id")
	return ReviewID(u), err
}

func ParseTemplateID(s string) (TemplateID, error) {
	u, err := parseUUID(s, "template_id")
	return TemplateID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs at trust boundaries.
func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	return u, nil
}
