package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "confpaper/pkg/domain"
	dErrors "confpaper/pkg/domain-errors"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{"object", `{"score": 4, "comments": "solid"}`, true},
		{"empty object", ` {} `, true},
		{"array", `[1, 2]`, false},
		{"string", `"great"`, false},
		{"null", `null`, false},
		{"blank", ``, false},
		{"malformed", `{"score":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(json.RawMessage(tt.content))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestNewReview(t *testing.T) {
	now := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	active := &Template{ID: id.NewTemplateID(), Name: "Standard", Version: 1, IsActive: true}

	r, err := NewReview(id.NewAssignmentID(), active, json.RawMessage(`{"score":5}`), now)
	require.NoError(t, err)
	assert.Equal(t, active.ID, r.TemplateID)
	assert.True(t, now.Equal(r.SubmittedAt))

	retired := &Template{ID: id.NewTemplateID(), IsActive: false}
	_, err = NewReview(id.NewAssignmentID(), retired, json.RawMessage(`{}`), now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewAssignmentRequiresReviewer(t *testing.T) {
	_, err := NewAssignment(id.NewPaperID(), id.UserID{}, id.NewUserID(), time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
