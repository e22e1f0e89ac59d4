package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// AuditRecorder appends entries to the audit trail. Record is
// fire-and-forget: a failed write is logged and never propagated to the
// operation that triggered it.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType string, entityID *uint, details map[string]any)
}

// AuditService is the full audit surface: recording plus trail queries.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, payload dto.AuditListRequest) (dto.AuditListResponse, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint) ([]dto.AuditEntryResponse, error)
}

type auditService struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

// NewAuditService constructs an AuditService instance.
func NewAuditService(repo repository.AuditRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, actorID, action, entityType string, entityID *uint, details map[string]any) {
	entry := models.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSONMap(details),
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).
			Str("actor_id", actorID).
			Str("action", action).
			Msg("failed to record audit entry")
	}
}

func (s *auditService) List(ctx context.Context, payload dto.AuditListRequest) (dto.AuditListResponse, error) {
	filter := repository.AuditFilter{
		Action:     payload.Action,
		EntityType: payload.EntityType,
		Page:       payload.Page,
		PageSize:   payload.Limit,
	}
	if payload.ActorID != "" {
		actor := payload.ActorID
		filter.ActorID = &actor
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	responses := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditEntryResponse(entry))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.PageSize
	if limit <= 0 {
		limit = 50
	}

	return dto.AuditListResponse{
		Entries: responses,
		Pagination: dto.PaginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	}, nil
}

func (s *auditService) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]dto.AuditEntryResponse, error) {
	entries, err := s.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditEntryResponse(entry))
	}

	return responses, nil
}
