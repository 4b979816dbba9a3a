package models

import (
	dErrors "confpaper/pkg/domain-errors"
)

// Status is the paper lifecycle state. The numeric order is part of the
// contract: Withdraw and ReplaceFile gate on ordinal comparison, so values
// must never be reordered.
type Status int

const (
	StatusDraft                Status = 0
	StatusAbstractSubmitted    Status = 1 // defined, not reachable
	StatusSubmitted            Status = 2
	StatusUnderReview          Status = 3
	StatusReviewsCompleted     Status = 4
	StatusAccepted             Status = 5
	StatusRejected             Status = 6
	StatusWithdrawn            Status = 7
	StatusCameraReadySubmitted Status = 8
	StatusScheduled            Status = 9
	StatusPresented            Status = 10
)

var statusNames = [...]string{
	StatusDraft:                "draft",
	StatusAbstractSubmitted:    "abstract_submitted",
	StatusSubmitted:            "submitted",
	StatusUnderReview:          "under_review",
	StatusReviewsCompleted:     "reviews_completed",
	StatusAccepted:             "accepted",
	StatusRejected:             "rejected",
	StatusWithdrawn:            "withdrawn",
	StatusCameraReadySubmitted: "camera_ready_submitted",
	StatusScheduled:            "scheduled",
	StatusPresented:            "presented",
}

func (s Status) IsValid() bool {
	return s >= StatusDraft && int(s) < len(statusNames)
}

func (s Status) String() string {
	if !s.IsValid() {
		return "unknown"
	}
	return statusNames[s]
}

// ParseStatus accepts the snake_case name used in JSON and query strings, or
// the same name in kebab-case or PascalCase.
func ParseStatus(raw string) (Status, error) {
	name := foldName(raw)
	for i, n := range statusNames {
		if foldName(n) == name {
			return Status(i), nil
		}
	}
	return 0, dErrors.New(dErrors.CodeValidation, "unknown paper status: "+raw)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
