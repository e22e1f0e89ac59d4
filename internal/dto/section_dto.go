package dto

import "github.com/excellence-hub/excellence-forms-api/internal/models"

// SectionCreateRequest describes a new section. Level is derived from the
// parent server-side; callers never set it directly.
type SectionCreateRequest struct {
	FormID            uint     `json:"form_id" validate:"required,gt=0"`
	ParentSectionID   *uint    `json:"parent_section_id" validate:"omitempty,gt=0"`
	OrderIndex        int      `json:"order_index" validate:"gte=0"`
	Title             string   `json:"title" validate:"required,min=1,max=255"`
	Description       string   `json:"description"`
	Explanation       string   `json:"explanation"`
	MaxPoints         *float64 `json:"max_points" validate:"omitempty,gte=0"`
	ResponsiblePerson string   `json:"responsible_person"`
	IsRequired        bool     `json:"is_required"`
	IsVisible         *bool    `json:"is_visible"`
	MaxOccurrences    *int     `json:"max_occurrences" validate:"omitempty,gt=0"`
}

// SectionUpdateRequest carries mutable section attributes.
type SectionUpdateRequest struct {
	OrderIndex        *int     `json:"order_index" validate:"omitempty,gte=0"`
	Title             *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description       *string  `json:"description"`
	Explanation       *string  `json:"explanation"`
	MaxPoints         *float64 `json:"max_points" validate:"omitempty,gte=0"`
	ResponsiblePerson *string  `json:"responsible_person"`
	IsRequired        *bool    `json:"is_required"`
	IsVisible         *bool    `json:"is_visible"`
	MaxOccurrences    *int     `json:"max_occurrences" validate:"omitempty,gt=0"`
}

// SectionResponse is the flat API shape of a section.
type SectionResponse struct {
	ID                uint     `json:"id"`
	FormID            uint     `json:"form_id"`
	ParentSectionID   *uint    `json:"parent_section_id"`
	Level             int      `json:"level"`
	OrderIndex        int      `json:"order_index"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Explanation       string   `json:"explanation"`
	MaxPoints         *float64 `json:"max_points"`
	ResponsiblePerson string   `json:"responsible_person"`
	IsRequired        bool     `json:"is_required"`
	IsVisible         bool     `json:"is_visible"`
	MaxOccurrences    *int     `json:"max_occurrences"`
}

// SectionTreeNode is a section with its ordered children, produced by one
// indexed pass over the flat section list.
type SectionTreeNode struct {
	SectionResponse
	Fields   []FieldResponse   `json:"fields,omitempty"`
	Children []SectionTreeNode `json:"children,omitempty"`
}

// NewSectionResponse converts a FormSection model into a DTO.
func NewSectionResponse(model models.FormSection) SectionResponse {
	return SectionResponse{
		ID:                model.ID,
		FormID:            model.FormID,
		ParentSectionID:   model.ParentSectionID,
		Level:             model.Level,
		OrderIndex:        model.OrderIndex,
		Title:             model.Title,
		Description:       model.Description,
		Explanation:       model.Explanation,
		MaxPoints:         model.MaxPoints,
		ResponsiblePerson: model.ResponsiblePerson,
		IsRequired:        model.IsRequired,
		IsVisible:         model.IsVisible,
		MaxOccurrences:    model.MaxOccurrences,
	}
}

// NewSectionResponseSlice converts section models into DTOs.
func NewSectionResponseSlice(sections []models.FormSection) []SectionResponse {
	responses := make([]SectionResponse, 0, len(sections))
	for _, section := range sections {
		responses = append(responses, NewSectionResponse(section))
	}
	return responses
}
