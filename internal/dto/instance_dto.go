package dto

import (
	"time"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// InstanceCreateRequest opens a new draft instance for a user on a form.
type InstanceCreateRequest struct {
	FormID uint   `json:"form_id" validate:"required,gt=0"`
	UserID string `json:"user_id" validate:"required"`
}

// InstanceSubmitRequest moves a draft into Submitted. Comments are optional.
type InstanceSubmitRequest struct {
	Comments string `json:"comments"`
}

// InstanceReviewRequest marks a submitted instance as under review.
type InstanceReviewRequest struct {
	Comments string `json:"comments"`
}

// InstanceApproveRequest approves an instance with its final score.
type InstanceApproveRequest struct {
	TotalScore *float64 `json:"total_score" validate:"required,gte=0"`
	Comments   string   `json:"comments"`
}

// InstanceRejectRequest rejects an instance. Comments are mandatory.
type InstanceRejectRequest struct {
	Comments string `json:"comments" validate:"required"`
}

// InstanceReturnRequest sends an instance back for revision. Comments are
// mandatory.
type InstanceReturnRequest struct {
	Comments string `json:"comments" validate:"required"`
}

// InstanceAppealRequest opens an appeal on a decided instance.
type InstanceAppealRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// InstanceResponse is the API shape of a form instance.
type InstanceResponse struct {
	ID               uint         `json:"id"`
	FormID           uint         `json:"form_id"`
	UserID           string       `json:"user_id"`
	CurrentStage     models.Stage `json:"current_stage"`
	TotalScore       *float64     `json:"total_score"`
	SubmissionDate   *time.Time   `json:"submission_date"`
	Comments         string       `json:"comments"`
	CreatedAt        time.Time    `json:"created_at"`
	LastModifiedDate time.Time    `json:"last_modified_date"`
}

// TransitionResponse reports the outcome of a workflow transition. Warnings
// carry partial failures (a notification that could not be delivered) which
// never roll back the transition itself.
type TransitionResponse struct {
	Instance InstanceResponse `json:"instance"`
	Warnings []string         `json:"warnings,omitempty"`
}

// NewInstanceResponse converts a FormInstance model into a DTO.
func NewInstanceResponse(model models.FormInstance) InstanceResponse {
	return InstanceResponse{
		ID:               model.ID,
		FormID:           model.FormID,
		UserID:           model.UserID,
		CurrentStage:     model.CurrentStage,
		TotalScore:       model.TotalScore,
		SubmissionDate:   model.SubmissionDate,
		Comments:         model.Comments,
		CreatedAt:        model.CreatedAt,
		LastModifiedDate: model.LastModifiedDate,
	}
}

// NewInstanceResponseSlice converts instance models into DTOs.
func NewInstanceResponseSlice(instances []models.FormInstance) []InstanceResponse {
	responses := make([]InstanceResponse, 0, len(instances))
	for _, instance := range instances {
		responses = append(responses, NewInstanceResponse(instance))
	}
	return responses
}
