package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	ActorID    *string
	Action     string
	EntityType string
	Page       int
	PageSize   int
}

// AuditRepository defines data operations for the audit trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, int64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository instantiates the repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var entries []models.AuditEntry
	if err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType string, entityID uint) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
