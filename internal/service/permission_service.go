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

// PermissionService resolves effective section rights and manages explicit
// grants.
type PermissionService interface {
	// Resolve computes a person's effective rights on a section. The
	// section's responsible person always holds all three rights; anyone
	// else gets the flags of their grant row, or all-false without one.
	// The three rights are independent and never imply one another.
	Resolve(ctx context.Context, sectionID uint, personID string) (dto.SectionRightsResponse, error)
	ListBySection(ctx context.Context, sectionID uint) ([]dto.PermissionResponse, error)
	Assign(ctx context.Context, payload dto.PermissionAssignRequest) (dto.PermissionResponse, error)
	Update(ctx context.Context, id uint, payload dto.PermissionUpdateRequest) (dto.PermissionResponse, error)
	Remove(ctx context.Context, id uint) error
}

type permissionService struct {
	permissions repository.PermissionRepository
	sections    repository.SectionRepository
	persons     repository.PersonRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewPermissionService constructs a PermissionService instance.
func NewPermissionService(
	permissionRepo repository.PermissionRepository,
	sectionRepo repository.SectionRepository,
	personRepo repository.PersonRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) PermissionService {
	return &permissionService{
		permissions: permissionRepo,
		sections:    sectionRepo,
		persons:     personRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "permission_service").Logger(),
	}
}

func (s *permissionService) Resolve(ctx context.Context, sectionID uint, personID string) (dto.SectionRightsResponse, error) {
	if sectionID == 0 || personID == "" {
		return dto.SectionRightsResponse{}, fmt.Errorf("%w: section id and person id are required", ErrInvalidArgument)
	}

	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SectionRightsResponse{}, ErrSectionNotFound
		}
		return dto.SectionRightsResponse{}, err
	}

	rights := dto.SectionRightsResponse{SectionID: sectionID, PersonID: personID}

	if section.ResponsiblePerson == personID {
		rights.CanView = true
		rights.CanEdit = true
		rights.CanEvaluate = true
		return rights, nil
	}

	grant, err := s.permissions.GetBySectionAndPerson(ctx, sectionID, personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No grant row: every right defaults to false.
			return rights, nil
		}
		return dto.SectionRightsResponse{}, err
	}

	rights.CanView = grant.CanView
	rights.CanEdit = grant.CanEdit
	rights.CanEvaluate = grant.CanEvaluate
	return rights, nil
}

func (s *permissionService) ListBySection(ctx context.Context, sectionID uint) ([]dto.PermissionResponse, error) {
	if sectionID == 0 {
		return nil, fmt.Errorf("%w: section id must be greater than zero", ErrInvalidArgument)
	}

	if _, err := s.sections.GetByID(ctx, sectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	permissions, err := s.permissions.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	return dto.NewPermissionResponseSlice(permissions), nil
}

func (s *permissionService) Assign(ctx context.Context, payload dto.PermissionAssignRequest) (dto.PermissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PermissionResponse{}, err
	}

	if _, err := s.sections.GetByID(ctx, payload.SectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PermissionResponse{}, ErrSectionNotFound
		}
		return dto.PermissionResponse{}, err
	}

	if _, err := s.persons.GetByID(ctx, payload.PersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PermissionResponse{}, ErrPersonNotFound
		}
		return dto.PermissionResponse{}, err
	}

	// An existing grant for the pair is rewritten in place instead of
	// duplicated.
	existing, err := s.permissions.GetBySectionAndPerson(ctx, payload.SectionID, payload.PersonID)
	if err == nil {
		existing.CanView = payload.CanView
		existing.CanEdit = payload.CanEdit
		existing.CanEvaluate = payload.CanEvaluate
		if err := s.permissions.Update(ctx, &existing); err != nil {
			return dto.PermissionResponse{}, err
		}
		return dto.NewPermissionResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PermissionResponse{}, err
	}

	permission := models.SectionPermission{
		SectionID:   payload.SectionID,
		PersonID:    payload.PersonID,
		CanView:     payload.CanView,
		CanEdit:     payload.CanEdit,
		CanEvaluate: payload.CanEvaluate,
	}
	if err := s.permissions.Create(ctx, &permission); err != nil {
		return dto.PermissionResponse{}, err
	}

	s.logger.Info().
		Uint("section_id", permission.SectionID).
		Str("person_id", permission.PersonID).
		Msg("permission granted")

	return dto.NewPermissionResponse(permission), nil
}

func (s *permissionService) Update(ctx context.Context, id uint, payload dto.PermissionUpdateRequest) (dto.PermissionResponse, error) {
	if id == 0 {
		return dto.PermissionResponse{}, fmt.Errorf("%w: permission id must be greater than zero", ErrInvalidArgument)
	}

	permission, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PermissionResponse{}, ErrPermissionNotFound
		}
		return dto.PermissionResponse{}, err
	}

	if payload.CanView != nil {
		permission.CanView = *payload.CanView
	}
	if payload.CanEdit != nil {
		permission.CanEdit = *payload.CanEdit
	}
	if payload.CanEvaluate != nil {
		permission.CanEvaluate = *payload.CanEvaluate
	}

	if err := s.permissions.Update(ctx, &permission); err != nil {
		return dto.PermissionResponse{}, err
	}

	return dto.NewPermissionResponse(permission), nil
}

func (s *permissionService) Remove(ctx context.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("%w: permission id must be greater than zero", ErrInvalidArgument)
	}

	if _, err := s.permissions.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionNotFound
		}
		return err
	}

	if err := s.permissions.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("permission_id", id).Msg("permission removed")
	return nil
}
