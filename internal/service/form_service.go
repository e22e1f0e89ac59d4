package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// FormService manages form definitions and their section/field/option
// structure. Publication is gated on the structure validator; once a form
// is published, adding or removing structure is forbidden.
type FormService interface {
	List(ctx context.Context, filter dto.FormFilter) ([]dto.FormResponse, error)
	Get(ctx context.Context, id uint) (dto.FormResponse, error)
	Create(ctx context.Context, payload dto.FormCreateRequest) (dto.FormResponse, error)
	Update(ctx context.Context, id uint, payload dto.FormUpdateRequest) (dto.FormResponse, error)
	Publish(ctx context.Context, id uint, actorID string) (dto.FormResponse, error)
	GetStructure(ctx context.Context, formID uint) ([]dto.SectionTreeNode, error)

	AddSection(ctx context.Context, payload dto.SectionCreateRequest) (dto.SectionResponse, error)
	UpdateSection(ctx context.Context, id uint, payload dto.SectionUpdateRequest) (dto.SectionResponse, error)
	DeleteSection(ctx context.Context, id uint) error

	AddField(ctx context.Context, payload dto.FieldCreateRequest) (dto.FieldResponse, error)
	UpdateField(ctx context.Context, id uint, payload dto.FieldUpdateRequest) (dto.FieldResponse, error)
	DeleteField(ctx context.Context, id uint) error

	AddOption(ctx context.Context, payload dto.OptionCreateRequest) (dto.OptionResponse, error)
	UpdateOption(ctx context.Context, id uint, payload dto.OptionUpdateRequest) (dto.OptionResponse, error)
	DeleteOption(ctx context.Context, id uint) error
}

type formService struct {
	forms      repository.FormRepository
	sections   repository.SectionRepository
	fields     repository.FieldRepository
	validation ValidationService
	audit      AuditRecorder
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewFormService constructs a FormService instance.
func NewFormService(
	formRepo repository.FormRepository,
	sectionRepo repository.SectionRepository,
	fieldRepo repository.FieldRepository,
	validation ValidationService,
	audit AuditRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) FormService {
	return &formService{
		forms:      formRepo,
		sections:   sectionRepo,
		fields:     fieldRepo,
		validation: validation,
		audit:      audit,
		validator:  validate,
		logger:     logger.With().Str("component", "form_service").Logger(),
	}
}

func (s *formService) List(ctx context.Context, filter dto.FormFilter) ([]dto.FormResponse, error) {
	forms, err := s.forms.List(ctx, repository.FormFilter{
		AcademicYear:  filter.AcademicYear,
		ActiveOnly:    filter.ActiveOnly,
		PublishedOnly: filter.PublishedOnly,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewFormResponseSlice(forms), nil
}

func (s *formService) Get(ctx context.Context, id uint) (dto.FormResponse, error) {
	form, err := s.getForm(ctx, id)
	if err != nil {
		return dto.FormResponse{}, err
	}
	return dto.NewFormResponse(form), nil
}

func (s *formService) Create(ctx context.Context, payload dto.FormCreateRequest) (dto.FormResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FormResponse{}, err
	}

	if payload.StartDate != nil && payload.DueDate != nil && payload.DueDate.Before(*payload.StartDate) {
		return dto.FormResponse{}, fmt.Errorf("%w: due date precedes start date", ErrInvalidArgument)
	}

	form := models.Form{
		Name:           payload.Name,
		Description:    payload.Description,
		Instructions:   payload.Instructions,
		AcademicYear:   payload.AcademicYear,
		Semester:       payload.Semester,
		StartDate:      payload.StartDate,
		DueDate:        payload.DueDate,
		IsActive:       true,
		CreatedBy:      payload.CreatedBy,
		LastModifiedBy: payload.CreatedBy,
	}
	if err := s.forms.Create(ctx, &form); err != nil {
		return dto.FormResponse{}, err
	}

	s.audit.Record(ctx, payload.CreatedBy, "form.create", "Form", &form.ID, map[string]any{
		"name":          form.Name,
		"academic_year": form.AcademicYear,
	})
	s.logger.Info().Uint("form_id", form.ID).Str("name", form.Name).Msg("form created")

	return dto.NewFormResponse(form), nil
}

func (s *formService) Update(ctx context.Context, id uint, payload dto.FormUpdateRequest) (dto.FormResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FormResponse{}, err
	}

	form, err := s.getForm(ctx, id)
	if err != nil {
		return dto.FormResponse{}, err
	}

	if payload.Name != nil {
		form.Name = *payload.Name
	}
	if payload.Description != nil {
		form.Description = *payload.Description
	}
	if payload.Instructions != nil {
		form.Instructions = *payload.Instructions
	}
	if payload.StartDate != nil {
		form.StartDate = payload.StartDate
	}
	if payload.DueDate != nil {
		form.DueDate = payload.DueDate
	}
	if payload.IsActive != nil {
		form.IsActive = *payload.IsActive
	}
	form.LastModifiedBy = payload.LastModifiedBy

	if err := s.forms.Update(ctx, &form); err != nil {
		return dto.FormResponse{}, err
	}

	return dto.NewFormResponse(form), nil
}

func (s *formService) Publish(ctx context.Context, id uint, actorID string) (dto.FormResponse, error) {
	form, err := s.getForm(ctx, id)
	if err != nil {
		return dto.FormResponse{}, err
	}
	if form.IsPublished {
		return dto.NewFormResponse(form), nil
	}

	report, err := s.validation.ValidateStructure(ctx, id)
	if err != nil {
		return dto.FormResponse{}, err
	}
	if !report.Valid {
		return dto.FormResponse{}, &ValidationFailedError{Issues: report.Issues}
	}

	if err := s.forms.Publish(ctx, id, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FormResponse{}, ErrFormNotFound
		}
		return dto.FormResponse{}, err
	}

	s.audit.Record(ctx, actorID, "form.publish", "Form", &id, nil)
	s.logger.Info().Uint("form_id", id).Str("actor_id", actorID).Msg("form published")

	published, err := s.getForm(ctx, id)
	if err != nil {
		return dto.FormResponse{}, err
	}
	return dto.NewFormResponse(published), nil
}

// GetStructure assembles the section tree from the flat section list in one
// indexed pass, children grouped by parent id and roots at parent nil.
func (s *formService) GetStructure(ctx context.Context, formID uint) ([]dto.SectionTreeNode, error) {
	if _, err := s.getForm(ctx, formID); err != nil {
		return nil, err
	}

	sections, err := s.sections.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*dto.SectionTreeNode, len(sections))
	order := make([]uint, 0, len(sections))
	for _, section := range sections {
		fields, err := s.fields.ListBySection(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		nodes[section.ID] = &dto.SectionTreeNode{
			SectionResponse: dto.NewSectionResponse(section),
			Fields:          dto.NewFieldResponseSlice(fields),
		}
		order = append(order, section.ID)
	}

	var roots []dto.SectionTreeNode
	// Sections arrive ordered by level then order index, so every parent is
	// fully built before its children attach.
	for i := len(order) - 1; i >= 0; i-- {
		node := nodes[order[i]]
		if node.ParentSectionID == nil {
			continue
		}
		if parent, ok := nodes[*node.ParentSectionID]; ok {
			parent.Children = append([]dto.SectionTreeNode{*node}, parent.Children...)
		}
	}
	for _, id := range order {
		node := nodes[id]
		if node.ParentSectionID == nil {
			roots = append(roots, *node)
		}
	}

	return roots, nil
}

func (s *formService) AddSection(ctx context.Context, payload dto.SectionCreateRequest) (dto.SectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SectionResponse{}, err
	}

	form, err := s.getForm(ctx, payload.FormID)
	if err != nil {
		return dto.SectionResponse{}, err
	}
	if form.IsPublished {
		return dto.SectionResponse{}, ErrFormPublished
	}

	level := 1
	if payload.ParentSectionID != nil {
		parent, err := s.sections.GetByID(ctx, *payload.ParentSectionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SectionResponse{}, ErrSectionNotFound
			}
			return dto.SectionResponse{}, err
		}
		if parent.FormID != payload.FormID {
			return dto.SectionResponse{}, fmt.Errorf("%w: parent section belongs to a different form", ErrInvalidArgument)
		}
		level = parent.Level + 1
	}

	visible := true
	if payload.IsVisible != nil {
		visible = *payload.IsVisible
	}

	section := models.FormSection{
		FormID:            payload.FormID,
		ParentSectionID:   payload.ParentSectionID,
		Level:             level,
		OrderIndex:        payload.OrderIndex,
		Title:             payload.Title,
		Description:       payload.Description,
		Explanation:       payload.Explanation,
		MaxPoints:         payload.MaxPoints,
		ResponsiblePerson: payload.ResponsiblePerson,
		IsRequired:        payload.IsRequired,
		IsVisible:         visible,
		MaxOccurrences:    payload.MaxOccurrences,
	}
	if err := s.sections.Create(ctx, &section); err != nil {
		return dto.SectionResponse{}, err
	}

	s.logger.Info().Uint("section_id", section.ID).Uint("form_id", section.FormID).Int("level", level).Msg("section added")

	return dto.NewSectionResponse(section), nil
}

func (s *formService) UpdateSection(ctx context.Context, id uint, payload dto.SectionUpdateRequest) (dto.SectionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SectionResponse{}, err
	}

	section, err := s.getSection(ctx, id)
	if err != nil {
		return dto.SectionResponse{}, err
	}

	if payload.OrderIndex != nil {
		section.OrderIndex = *payload.OrderIndex
	}
	if payload.Title != nil {
		section.Title = *payload.Title
	}
	if payload.Description != nil {
		section.Description = *payload.Description
	}
	if payload.Explanation != nil {
		section.Explanation = *payload.Explanation
	}
	if payload.MaxPoints != nil {
		section.MaxPoints = payload.MaxPoints
	}
	if payload.ResponsiblePerson != nil {
		section.ResponsiblePerson = *payload.ResponsiblePerson
	}
	if payload.IsRequired != nil {
		section.IsRequired = *payload.IsRequired
	}
	if payload.IsVisible != nil {
		section.IsVisible = *payload.IsVisible
	}
	if payload.MaxOccurrences != nil {
		section.MaxOccurrences = payload.MaxOccurrences
	}

	if err := s.sections.Update(ctx, &section); err != nil {
		return dto.SectionResponse{}, err
	}

	return dto.NewSectionResponse(section), nil
}

func (s *formService) DeleteSection(ctx context.Context, id uint) error {
	section, err := s.getSection(ctx, id)
	if err != nil {
		return err
	}

	form, err := s.getForm(ctx, section.FormID)
	if err != nil {
		return err
	}
	if form.IsPublished {
		return ErrFormPublished
	}

	children, err := s.sections.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: section %d has %d child section(s)", ErrInvalidArgument, id, len(children))
	}

	// Fields and their options go first.
	fields, err := s.fields.ListBySection(ctx, id)
	if err != nil {
		return err
	}
	for _, field := range fields {
		if err := s.fields.DeleteOptionsByField(ctx, field.ID); err != nil {
			return err
		}
	}
	if err := s.fields.DeleteBySection(ctx, id); err != nil {
		return err
	}

	if err := s.sections.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("section_id", id).Msg("section deleted")
	return nil
}

func (s *formService) AddField(ctx context.Context, payload dto.FieldCreateRequest) (dto.FieldResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FieldResponse{}, err
	}

	section, err := s.getSection(ctx, payload.SectionID)
	if err != nil {
		return dto.FieldResponse{}, err
	}
	form, err := s.getForm(ctx, section.FormID)
	if err != nil {
		return dto.FieldResponse{}, err
	}
	if form.IsPublished {
		return dto.FieldResponse{}, ErrFormPublished
	}

	if payload.MinValue != nil && payload.MaxValue != nil && *payload.MinValue > *payload.MaxValue {
		return dto.FieldResponse{}, fmt.Errorf("%w: min value cannot be greater than max value", ErrInvalidArgument)
	}

	maxLength := payload.MaxLength
	if payload.FieldType == models.FieldTypeText && (maxLength == nil || *maxLength <= 0) {
		def := models.DefaultTextMaxLength
		maxLength = &def
	}

	visible := true
	if payload.IsVisible != nil {
		visible = *payload.IsVisible
	}

	field := models.SectionField{
		SectionID:            payload.SectionID,
		Name:                 payload.Name,
		Label:                payload.Label,
		FieldType:            payload.FieldType,
		IsRequired:           payload.IsRequired,
		DefaultValue:         payload.DefaultValue,
		Placeholder:          payload.Placeholder,
		HelpText:             payload.HelpText,
		OrderIndex:           payload.OrderIndex,
		IsVisible:            visible,
		MaxLength:            maxLength,
		MinValue:             payload.MinValue,
		MaxValue:             payload.MaxValue,
		ScoreCalculationRule: payload.ScoreCalculationRule,
		IsActive:             true,
	}
	if err := s.fields.Create(ctx, &field); err != nil {
		return dto.FieldResponse{}, err
	}

	return dto.NewFieldResponse(field), nil
}

func (s *formService) UpdateField(ctx context.Context, id uint, payload dto.FieldUpdateRequest) (dto.FieldResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FieldResponse{}, err
	}

	field, err := s.getField(ctx, id)
	if err != nil {
		return dto.FieldResponse{}, err
	}

	if payload.Name != nil {
		field.Name = *payload.Name
	}
	if payload.Label != nil {
		field.Label = *payload.Label
	}
	if payload.FieldType != nil {
		field.FieldType = *payload.FieldType
	}
	if payload.IsRequired != nil {
		field.IsRequired = *payload.IsRequired
	}
	if payload.DefaultValue != nil {
		field.DefaultValue = *payload.DefaultValue
	}
	if payload.Placeholder != nil {
		field.Placeholder = *payload.Placeholder
	}
	if payload.HelpText != nil {
		field.HelpText = *payload.HelpText
	}
	if payload.OrderIndex != nil {
		field.OrderIndex = *payload.OrderIndex
	}
	if payload.IsVisible != nil {
		field.IsVisible = *payload.IsVisible
	}
	if payload.MaxLength != nil {
		field.MaxLength = payload.MaxLength
	}
	if payload.MinValue != nil {
		field.MinValue = payload.MinValue
	}
	if payload.MaxValue != nil {
		field.MaxValue = payload.MaxValue
	}
	if payload.ScoreCalculationRule != nil {
		field.ScoreCalculationRule = *payload.ScoreCalculationRule
	}
	if payload.IsActive != nil {
		field.IsActive = *payload.IsActive
	}

	if field.MinValue != nil && field.MaxValue != nil && *field.MinValue > *field.MaxValue {
		return dto.FieldResponse{}, fmt.Errorf("%w: min value cannot be greater than max value", ErrInvalidArgument)
	}
	if field.FieldType == models.FieldTypeText && (field.MaxLength == nil || *field.MaxLength <= 0) {
		def := models.DefaultTextMaxLength
		field.MaxLength = &def
	}

	if err := s.fields.Update(ctx, &field); err != nil {
		return dto.FieldResponse{}, err
	}

	return dto.NewFieldResponse(field), nil
}

func (s *formService) DeleteField(ctx context.Context, id uint) error {
	field, err := s.getField(ctx, id)
	if err != nil {
		return err
	}

	section, err := s.getSection(ctx, field.SectionID)
	if err != nil {
		return err
	}
	form, err := s.getForm(ctx, section.FormID)
	if err != nil {
		return err
	}
	if form.IsPublished {
		return ErrFormPublished
	}

	if err := s.fields.DeleteOptionsByField(ctx, id); err != nil {
		return err
	}
	return s.fields.Delete(ctx, id)
}

func (s *formService) AddOption(ctx context.Context, payload dto.OptionCreateRequest) (dto.OptionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OptionResponse{}, err
	}

	field, err := s.getField(ctx, payload.FieldID)
	if err != nil {
		return dto.OptionResponse{}, err
	}
	if !field.IsChoice() {
		return dto.OptionResponse{}, fmt.Errorf("%w: field type %q does not take options", ErrInvalidArgument, field.FieldType)
	}

	section, err := s.getSection(ctx, field.SectionID)
	if err != nil {
		return dto.OptionResponse{}, err
	}
	form, err := s.getForm(ctx, section.FormID)
	if err != nil {
		return dto.OptionResponse{}, err
	}
	if form.IsPublished {
		return dto.OptionResponse{}, ErrFormPublished
	}

	option := models.FieldOption{
		FieldID:    payload.FieldID,
		Value:      payload.Value,
		Label:      payload.Label,
		ScoreValue: payload.ScoreValue,
		OrderIndex: payload.OrderIndex,
		IsDefault:  payload.IsDefault,
	}
	if err := s.fields.CreateOption(ctx, &option); err != nil {
		return dto.OptionResponse{}, err
	}

	return dto.NewOptionResponse(option), nil
}

func (s *formService) UpdateOption(ctx context.Context, id uint, payload dto.OptionUpdateRequest) (dto.OptionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OptionResponse{}, err
	}

	option, err := s.fields.GetOptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OptionResponse{}, ErrOptionNotFound
		}
		return dto.OptionResponse{}, err
	}

	if payload.Value != nil {
		option.Value = *payload.Value
	}
	if payload.Label != nil {
		option.Label = *payload.Label
	}
	if payload.ScoreValue != nil {
		option.ScoreValue = payload.ScoreValue
	}
	if payload.OrderIndex != nil {
		option.OrderIndex = *payload.OrderIndex
	}
	if payload.IsDefault != nil {
		option.IsDefault = *payload.IsDefault
	}

	if err := s.fields.UpdateOption(ctx, &option); err != nil {
		return dto.OptionResponse{}, err
	}

	return dto.NewOptionResponse(option), nil
}

func (s *formService) DeleteOption(ctx context.Context, id uint) error {
	option, err := s.fields.GetOptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionNotFound
		}
		return err
	}

	field, err := s.getField(ctx, option.FieldID)
	if err != nil {
		return err
	}
	section, err := s.getSection(ctx, field.SectionID)
	if err != nil {
		return err
	}
	form, err := s.getForm(ctx, section.FormID)
	if err != nil {
		return err
	}
	if form.IsPublished {
		return ErrFormPublished
	}

	return s.fields.DeleteOption(ctx, id)
}

func (s *formService) getForm(ctx context.Context, id uint) (models.Form, error) {
	if id == 0 {
		return models.Form{}, fmt.Errorf("%w: form id must be greater than zero", ErrInvalidArgument)
	}
	form, err := s.forms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Form{}, ErrFormNotFound
		}
		return models.Form{}, err
	}
	return form, nil
}

func (s *formService) getSection(ctx context.Context, id uint) (models.FormSection, error) {
	if id == 0 {
		return models.FormSection{}, fmt.Errorf("%w: section id must be greater than zero", ErrInvalidArgument)
	}
	section, err := s.sections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormSection{}, ErrSectionNotFound
		}
		return models.FormSection{}, err
	}
	return section, nil
}

func (s *formService) getField(ctx context.Context, id uint) (models.SectionField, error) {
	if id == 0 {
		return models.SectionField{}, fmt.Errorf("%w: field id must be greater than zero", ErrInvalidArgument)
	}
	field, err := s.fields.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SectionField{}, ErrFieldNotFound
		}
		return models.SectionField{}, err
	}
	return field, nil
}
