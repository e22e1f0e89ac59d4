package dto

import "github.com/excellence-hub/excellence-forms-api/internal/models"

// PermissionAssignRequest grants a person explicit rights on a section.
type PermissionAssignRequest struct {
	SectionID   uint   `json:"section_id" validate:"required,gt=0"`
	PersonID    string `json:"person_id" validate:"required"`
	CanView     bool   `json:"can_view"`
	CanEdit     bool   `json:"can_edit"`
	CanEvaluate bool   `json:"can_evaluate"`
}

// PermissionUpdateRequest rewrites the flags of an existing grant.
type PermissionUpdateRequest struct {
	CanView     *bool `json:"can_view"`
	CanEdit     *bool `json:"can_edit"`
	CanEvaluate *bool `json:"can_evaluate"`
}

// PermissionResponse is the API shape of a stored grant.
type PermissionResponse struct {
	ID          uint   `json:"id"`
	SectionID   uint   `json:"section_id"`
	PersonID    string `json:"person_id"`
	CanView     bool   `json:"can_view"`
	CanEdit     bool   `json:"can_edit"`
	CanEvaluate bool   `json:"can_evaluate"`
}

// SectionRightsResponse reports the effective rights of a person on a
// section after combining the responsible-person rule with stored grants.
type SectionRightsResponse struct {
	SectionID   uint   `json:"section_id"`
	PersonID    string `json:"person_id"`
	CanView     bool   `json:"can_view"`
	CanEdit     bool   `json:"can_edit"`
	CanEvaluate bool   `json:"can_evaluate"`
}

// NewPermissionResponse converts a SectionPermission model into a DTO.
func NewPermissionResponse(model models.SectionPermission) PermissionResponse {
	return PermissionResponse{
		ID:          model.ID,
		SectionID:   model.SectionID,
		PersonID:    model.PersonID,
		CanView:     model.CanView,
		CanEdit:     model.CanEdit,
		CanEvaluate: model.CanEvaluate,
	}
}

// NewPermissionResponseSlice converts permission models into DTOs.
func NewPermissionResponseSlice(permissions []models.SectionPermission) []PermissionResponse {
	responses := make([]PermissionResponse, 0, len(permissions))
	for _, permission := range permissions {
		responses = append(responses, NewPermissionResponse(permission))
	}
	return responses
}
