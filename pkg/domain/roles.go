package domain

import (
	"strings"

	dErrors "confpaper/pkg/domain-errors"
)

// Role is a conference-wide role granted to a user.
type Role string

const (
	RoleAuthor          Role = "author"
	RoleReviewer        Role = "reviewer"
	RolePaperChair      Role = "paper_chair"
	RoleConferenceChair Role = "conference_chair"
	RoleAdmin           Role = "admin"
)

var validRoles = map[Role]struct{}{
	RoleAuthor:          {},
	RoleReviewer:        {},
	RolePaperChair:      {},
	RoleConferenceChair: {},
	RoleAdmin:           {},
}

// ParseRole accepts the canonical lower snake-case name, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validRoles[r]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+s)
	}
	return r, nil
}

// IsPrivileged reports whether the role may see and manage every paper.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleConferenceChair, RolePaperChair:
		return true
	default:
		return false
	}
}

// AnyPrivileged reports whether any of roles is privileged.
func AnyPrivileged(roles []Role) bool {
	for _, r := range roles {
		if r.IsPrivileged() {
			return true
		}
	}
	return false
}
