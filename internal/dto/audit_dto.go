package dto

import (
	"time"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// AuditListRequest filters the audit trail.
type AuditListRequest struct {
	EntityType string `query:"entity_type"`
	EntityID   *uint  `query:"entity_id"`
	ActorID    string `query:"actor_id"`
	Action     string `query:"action"`
	Page       int    `query:"page" validate:"omitempty,gte=1"`
	Limit      int    `query:"limit" validate:"omitempty,gte=1,lte=200"`
}

// AuditEntryResponse is the API shape of one audit record.
type AuditEntryResponse struct {
	ID         uint           `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   *uint          `json:"entity_id,omitempty"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PaginationMeta describes the paging window of a list response.
type PaginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// AuditListResponse is a paged slice of audit entries.
type AuditListResponse struct {
	Entries    []AuditEntryResponse `json:"entries"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAuditEntryResponse converts an AuditEntry model into a DTO.
func NewAuditEntryResponse(model models.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         model.ID,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		ActorID:    model.ActorID,
		Action:     model.Action,
		Details:    model.Details,
		CreatedAt:  model.CreatedAt,
	}
}
