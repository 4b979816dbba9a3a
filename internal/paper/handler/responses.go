package handler

import (
	"confpaper/internal/paper/models"
	id "confpaper/pkg/domain"
)

type CreatedResponse struct {
	ID id.PaperID `json:"id"`
}

type ListResponse struct {
	Papers []models.PaperSummary `json:"papers"`
}

// TransitionResponse reports the paper's state after a lifecycle step.
type TransitionResponse struct {
	ID     id.PaperID    `json:"id"`
	Status models.Status `json:"status"`
}

func toTransition(p *models.Paper) TransitionResponse {
	return TransitionResponse{ID: p.ID, Status: p.Status}
}
