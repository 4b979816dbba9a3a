package audit

import (
	"time"

	"github.com/google/uuid"

	id "confpaper/pkg/domain"
)

// Action names a recorded lifecycle action.
type Action string

const (
	ActionDraftCreated         Action = "paper_draft_created"
	ActionDraftUpdated         Action = "paper_draft_updated"
	ActionFileUploaded         Action = "paper_file_uploaded"
	ActionSubmitted            Action = "paper_submitted"
	ActionWithdrawn            Action = "paper_withdrawn"
	ActionMovedToReview        Action = "paper_under_review"
	ActionReviewsCompleted     Action = "paper_reviews_completed"
	ActionAccepted             Action = "paper_accepted"
	ActionRejected             Action = "paper_rejected"
	ActionCameraReadySubmitted Action = "paper_camera_ready_submitted"
	ActionScheduled            Action = "paper_scheduled"
	ActionPresented            Action = "paper_presented"
	ActionReviewerAssigned     Action = "reviewer_assigned"
	ActionReviewSubmitted      Action = "review_submitted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	PaperID   id.PaperID `json:"paper_id"`
	ActorID   id.UserID  `json:"actor_id"`
	Action    Action     `json:"action"`
	Detail    string     `json:"detail,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	ClientIP  string     `json:"client_ip,omitempty"`
}
