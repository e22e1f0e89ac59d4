package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// ValidationService runs the structure and content validators. Both collect
// every defect they find and report them in discovery order; a single bad
// section never hides the defects after it.
type ValidationService interface {
	// ValidateStructure scans a form's section/field tree and reports all
	// structural defects. A missing form or an empty section list
	// short-circuits, since the remaining checks have nothing to scan.
	ValidateStructure(ctx context.Context, formID uint) (dto.ValidationReport, error)
	// ValidateContent scans an instance's required sections and reports
	// every required field whose user value is empty or missing.
	ValidateContent(ctx context.Context, instanceID uint) (dto.ValidationReport, error)
}

type validationService struct {
	forms     repository.FormRepository
	sections  repository.SectionRepository
	fields    repository.FieldRepository
	instances repository.InstanceRepository
	values    repository.FieldValueRepository
	logger    zerolog.Logger
}

// NewValidationService constructs a ValidationService instance.
func NewValidationService(
	formRepo repository.FormRepository,
	sectionRepo repository.SectionRepository,
	fieldRepo repository.FieldRepository,
	instanceRepo repository.InstanceRepository,
	valueRepo repository.FieldValueRepository,
	logger zerolog.Logger,
) ValidationService {
	return &validationService{
		forms:     formRepo,
		sections:  sectionRepo,
		fields:    fieldRepo,
		instances: instanceRepo,
		values:    valueRepo,
		logger:    logger.With().Str("component", "validation_service").Logger(),
	}
}

func (s *validationService) ValidateStructure(ctx context.Context, formID uint) (dto.ValidationReport, error) {
	if formID == 0 {
		return dto.ValidationReport{}, fmt.Errorf("%w: form id must be greater than zero", ErrInvalidArgument)
	}

	var issues []dto.ValidationIssue

	if _, err := s.forms.GetByID(ctx, formID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			issues = append(issues, dto.ValidationIssue{
				Key:     "Form",
				Message: fmt.Sprintf("Form with ID %d does not exist", formID),
			})
			return dto.NewValidationReport(issues), nil
		}
		return dto.ValidationReport{}, err
	}

	sections, err := s.sections.ListByForm(ctx, formID)
	if err != nil {
		return dto.ValidationReport{}, err
	}
	if len(sections) == 0 {
		issues = append(issues, dto.ValidationIssue{
			Key:     "Sections",
			Message: "Form must contain at least one section",
		})
		return dto.NewValidationReport(issues), nil
	}

	byID := make(map[uint]models.FormSection, len(sections))
	for _, section := range sections {
		byID[section.ID] = section
	}

	for _, section := range sections {
		if section.FormID != formID {
			issues = append(issues, dto.ValidationIssue{
				Key:     fmt.Sprintf("Section_%d", section.ID),
				Message: fmt.Sprintf("Section belongs to a different form (Form ID: %d)", section.FormID),
			})
		}

		if section.ParentSectionID != nil {
			parent, ok := byID[*section.ParentSectionID]
			if !ok {
				issues = append(issues, dto.ValidationIssue{
					Key:     fmt.Sprintf("Section_%d_Parent", section.ID),
					Message: fmt.Sprintf("Parent section with ID %d does not exist", *section.ParentSectionID),
				})
			} else if section.Level != parent.Level+1 {
				issues = append(issues, dto.ValidationIssue{
					Key:     fmt.Sprintf("Section_%d_Level", section.ID),
					Message: fmt.Sprintf("Section level (%d) does not match parent level + 1 (%d)", section.Level, parent.Level+1),
				})
			}
		} else if section.Level != 1 {
			issues = append(issues, dto.ValidationIssue{
				Key:     fmt.Sprintf("Section_%d_Level", section.ID),
				Message: fmt.Sprintf("Root section level must be 1 (Current: %d)", section.Level),
			})
		}

		fields, err := s.fields.ListBySection(ctx, section.ID)
		if err != nil {
			return dto.ValidationReport{}, err
		}
		if len(fields) == 0 {
			issues = append(issues, dto.ValidationIssue{
				Key:     fmt.Sprintf("Section_%d_Fields", section.ID),
				Message: "Section must contain at least one field",
			})
		}

		for _, field := range fields {
			if field.SectionID != section.ID {
				issues = append(issues, dto.ValidationIssue{
					Key:     fmt.Sprintf("Field_%d_Section", field.ID),
					Message: fmt.Sprintf("Field belongs to a different section (Section ID: %d)", field.SectionID),
				})
			}

			if field.FieldType == "" {
				issues = append(issues, dto.ValidationIssue{
					Key:     fmt.Sprintf("Field_%d_Type", field.ID),
					Message: "Field type is required",
				})
				continue
			}

			switch strings.ToLower(field.FieldType) {
			case models.FieldTypeNumber:
				if field.MinValue != nil && field.MaxValue != nil && *field.MinValue > *field.MaxValue {
					issues = append(issues, dto.ValidationIssue{
						Key:     fmt.Sprintf("Field_%d_Range", field.ID),
						Message: "Min value cannot be greater than max value",
					})
				}
			case models.FieldTypeSelect, models.FieldTypeRadio, models.FieldTypeCheckbox:
				if len(field.Options) == 0 {
					issues = append(issues, dto.ValidationIssue{
						Key:     fmt.Sprintf("Field_%d_Options", field.ID),
						Message: "Field of type select/radio/checkbox must have at least one option",
					})
				}
			}
		}
	}

	s.logger.Debug().Uint("form_id", formID).Int("issues", len(issues)).Msg("structure validated")

	return dto.NewValidationReport(issues), nil
}

func (s *validationService) ValidateContent(ctx context.Context, instanceID uint) (dto.ValidationReport, error) {
	if instanceID == 0 {
		return dto.ValidationReport{}, fmt.Errorf("%w: instance id must be greater than zero", ErrInvalidArgument)
	}

	var issues []dto.ValidationIssue

	instance, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			issues = append(issues, dto.ValidationIssue{
				Key:     "Instance",
				Message: fmt.Sprintf("Instance with ID %d does not exist", instanceID),
			})
			return dto.NewValidationReport(issues), nil
		}
		return dto.ValidationReport{}, err
	}

	if _, err := s.forms.GetByID(ctx, instance.FormID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			issues = append(issues, dto.ValidationIssue{
				Key:     "Form",
				Message: fmt.Sprintf("Form with ID %d does not exist", instance.FormID),
			})
			return dto.NewValidationReport(issues), nil
		}
		return dto.ValidationReport{}, err
	}

	sections, err := s.sections.ListByForm(ctx, instance.FormID)
	if err != nil {
		return dto.ValidationReport{}, err
	}

	for _, section := range sections {
		if !section.IsRequired {
			continue
		}

		fields, err := s.fields.ListBySection(ctx, section.ID)
		if err != nil {
			return dto.ValidationReport{}, err
		}

		for _, field := range fields {
			if !field.IsRequired {
				continue
			}

			value, err := s.values.GetValue(ctx, instanceID, field.ID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ValidationReport{}, err
			}
			if strings.TrimSpace(value.Value) == "" {
				issues = append(issues, dto.ValidationIssue{
					Key:     fmt.Sprintf("Section_%d", section.ID),
					Message: fmt.Sprintf("Field '%s' is required", field.Label),
				})
			}
		}
	}

	s.logger.Debug().Uint("instance_id", instanceID).Int("issues", len(issues)).Msg("content validated")

	return dto.NewValidationReport(issues), nil
}
