package dto

import "github.com/excellence-hub/excellence-forms-api/internal/models"

// FieldCreateRequest describes a new section field.
type FieldCreateRequest struct {
	SectionID            uint     `json:"section_id" validate:"required,gt=0"`
	Name                 string   `json:"name" validate:"required,min=1,max=128"`
	Label                string   `json:"label" validate:"required,min=1,max=255"`
	FieldType            string   `json:"field_type" validate:"required,oneof=text number select radio checkbox date textarea"`
	IsRequired           bool     `json:"is_required"`
	DefaultValue         string   `json:"default_value"`
	Placeholder          string   `json:"placeholder"`
	HelpText             string   `json:"help_text"`
	OrderIndex           int      `json:"order_index" validate:"gte=0"`
	IsVisible            *bool    `json:"is_visible"`
	MaxLength            *int     `json:"max_length"`
	MinValue             *float64 `json:"min_value"`
	MaxValue             *float64 `json:"max_value"`
	ScoreCalculationRule string   `json:"score_calculation_rule"`
}

// FieldUpdateRequest carries mutable field attributes.
type FieldUpdateRequest struct {
	Name                 *string  `json:"name" validate:"omitempty,min=1,max=128"`
	Label                *string  `json:"label" validate:"omitempty,min=1,max=255"`
	FieldType            *string  `json:"field_type" validate:"omitempty,oneof=text number select radio checkbox date textarea"`
	IsRequired           *bool    `json:"is_required"`
	DefaultValue         *string  `json:"default_value"`
	Placeholder          *string  `json:"placeholder"`
	HelpText             *string  `json:"help_text"`
	OrderIndex           *int     `json:"order_index" validate:"omitempty,gte=0"`
	IsVisible            *bool    `json:"is_visible"`
	MaxLength            *int     `json:"max_length"`
	MinValue             *float64 `json:"min_value"`
	MaxValue             *float64 `json:"max_value"`
	ScoreCalculationRule *string  `json:"score_calculation_rule"`
	IsActive             *bool    `json:"is_active"`
}

// FieldResponse is the API shape of a section field.
type FieldResponse struct {
	ID                   uint             `json:"id"`
	SectionID            uint             `json:"section_id"`
	Name                 string           `json:"name"`
	Label                string           `json:"label"`
	FieldType            string           `json:"field_type"`
	IsRequired           bool             `json:"is_required"`
	DefaultValue         string           `json:"default_value"`
	Placeholder          string           `json:"placeholder"`
	HelpText             string           `json:"help_text"`
	OrderIndex           int              `json:"order_index"`
	IsVisible            bool             `json:"is_visible"`
	MaxLength            *int             `json:"max_length"`
	MinValue             *float64         `json:"min_value"`
	MaxValue             *float64         `json:"max_value"`
	ScoreCalculationRule string           `json:"score_calculation_rule"`
	IsActive             bool             `json:"is_active"`
	Options              []OptionResponse `json:"options,omitempty"`
}

// OptionCreateRequest describes a new option on a choice field.
type OptionCreateRequest struct {
	FieldID    uint     `json:"field_id" validate:"required,gt=0"`
	Value      string   `json:"value" validate:"required,min=1,max=255"`
	Label      string   `json:"label" validate:"required,min=1,max=255"`
	ScoreValue *float64 `json:"score_value"`
	OrderIndex int      `json:"order_index" validate:"gte=0"`
	IsDefault  bool     `json:"is_default"`
}

// OptionUpdateRequest carries mutable option attributes.
type OptionUpdateRequest struct {
	Value      *string  `json:"value" validate:"omitempty,min=1,max=255"`
	Label      *string  `json:"label" validate:"omitempty,min=1,max=255"`
	ScoreValue *float64 `json:"score_value"`
	OrderIndex *int     `json:"order_index" validate:"omitempty,gte=0"`
	IsDefault  *bool    `json:"is_default"`
}

// OptionResponse is the API shape of a field option.
type OptionResponse struct {
	ID         uint     `json:"id"`
	FieldID    uint     `json:"field_id"`
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	ScoreValue *float64 `json:"score_value"`
	OrderIndex int      `json:"order_index"`
	IsDefault  bool     `json:"is_default"`
}

// NewFieldResponse converts a SectionField model into a DTO.
func NewFieldResponse(model models.SectionField) FieldResponse {
	response := FieldResponse{
		ID:                   model.ID,
		SectionID:            model.SectionID,
		Name:                 model.Name,
		Label:                model.Label,
		FieldType:            model.FieldType,
		IsRequired:           model.IsRequired,
		DefaultValue:         model.DefaultValue,
		Placeholder:          model.Placeholder,
		HelpText:             model.HelpText,
		OrderIndex:           model.OrderIndex,
		IsVisible:            model.IsVisible,
		MaxLength:            model.MaxLength,
		MinValue:             model.MinValue,
		MaxValue:             model.MaxValue,
		ScoreCalculationRule: model.ScoreCalculationRule,
		IsActive:             model.IsActive,
	}

	if len(model.Options) > 0 {
		options := make([]OptionResponse, 0, len(model.Options))
		for _, option := range model.Options {
			options = append(options, NewOptionResponse(option))
		}
		response.Options = options
	}

	return response
}

// NewFieldResponseSlice converts field models into DTOs.
func NewFieldResponseSlice(fields []models.SectionField) []FieldResponse {
	responses := make([]FieldResponse, 0, len(fields))
	for _, field := range fields {
		responses = append(responses, NewFieldResponse(field))
	}
	return responses
}

// NewOptionResponse converts a FieldOption model into a DTO.
func NewOptionResponse(model models.FieldOption) OptionResponse {
	return OptionResponse{
		ID:         model.ID,
		FieldID:    model.FieldID,
		Value:      model.Value,
		Label:      model.Label,
		ScoreValue: model.ScoreValue,
		OrderIndex: model.OrderIndex,
		IsDefault:  model.IsDefault,
	}
}

// NewOptionResponseSlice converts option models into DTOs.
func NewOptionResponseSlice(options []models.FieldOption) []OptionResponse {
	responses := make([]OptionResponse, 0, len(options))
	for _, option := range options {
		responses = append(responses, NewOptionResponse(option))
	}
	return responses
}
