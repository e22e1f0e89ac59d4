package dto

import (
	"time"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// FormCreateRequest describes the payload for creating a form definition.
type FormCreateRequest struct {
	Name         string     `json:"name" validate:"required,min=2,max=255"`
	Description  string     `json:"description"`
	Instructions string     `json:"instructions"`
	AcademicYear string     `json:"academic_year" validate:"required"`
	Semester     string     `json:"semester" validate:"omitempty,oneof=A B S"`
	StartDate    *time.Time `json:"start_date"`
	DueDate      *time.Time `json:"due_date"`
	CreatedBy    string     `json:"created_by" validate:"required"`
}

// FormUpdateRequest carries mutable form metadata.
type FormUpdateRequest struct {
	Name           *string    `json:"name" validate:"omitempty,min=2,max=255"`
	Description    *string    `json:"description"`
	Instructions   *string    `json:"instructions"`
	StartDate      *time.Time `json:"start_date"`
	DueDate        *time.Time `json:"due_date"`
	IsActive       *bool      `json:"is_active"`
	LastModifiedBy string     `json:"last_modified_by" validate:"required"`
}

// FormFilter narrows form listing.
type FormFilter struct {
	AcademicYear  *string `query:"academic_year"`
	ActiveOnly    bool    `query:"active_only"`
	PublishedOnly bool    `query:"published_only"`
}

// FormResponse is the API shape of a form definition.
type FormResponse struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Instructions     string     `json:"instructions"`
	AcademicYear     string     `json:"academic_year"`
	Semester         string     `json:"semester"`
	StartDate        *time.Time `json:"start_date"`
	DueDate          *time.Time `json:"due_date"`
	IsActive         bool       `json:"is_active"`
	IsPublished      bool       `json:"is_published"`
	CreatedBy        string     `json:"created_by"`
	LastModifiedBy   string     `json:"last_modified_by"`
	CreatedAt        time.Time  `json:"created_at"`
	LastModifiedDate time.Time  `json:"last_modified_date"`
}

// NewFormResponse converts a Form model into a DTO.
func NewFormResponse(model models.Form) FormResponse {
	return FormResponse{
		ID:               model.ID,
		Name:             model.Name,
		Description:      model.Description,
		Instructions:     model.Instructions,
		AcademicYear:     model.AcademicYear,
		Semester:         model.Semester,
		StartDate:        model.StartDate,
		DueDate:          model.DueDate,
		IsActive:         model.IsActive,
		IsPublished:      model.IsPublished,
		CreatedBy:        model.CreatedBy,
		LastModifiedBy:   model.LastModifiedBy,
		CreatedAt:        model.CreatedAt,
		LastModifiedDate: model.LastModifiedDate,
	}
}

// NewFormResponseSlice converts form models into DTOs.
func NewFormResponseSlice(forms []models.Form) []FormResponse {
	responses := make([]FormResponse, 0, len(forms))
	for _, form := range forms {
		responses = append(responses, NewFormResponse(form))
	}
	return responses
}
