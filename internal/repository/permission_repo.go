package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// PermissionRepository defines data operations for section grants.
type PermissionRepository interface {
	ListBySection(ctx context.Context, sectionID uint) ([]models.SectionPermission, error)
	GetByID(ctx context.Context, id uint) (models.SectionPermission, error)
	GetBySectionAndPerson(ctx context.Context, sectionID uint, personID string) (models.SectionPermission, error)
	Create(ctx context.Context, permission *models.SectionPermission) error
	Update(ctx context.Context, permission *models.SectionPermission) error
	Delete(ctx context.Context, id uint) error
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository instantiates the repository.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListBySection(ctx context.Context, sectionID uint) ([]models.SectionPermission, error) {
	var permissions []models.SectionPermission
	if err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Find(&permissions).Error; err != nil {
		return nil, err
	}

	return permissions, nil
}

func (r *permissionRepository) GetByID(ctx context.Context, id uint) (models.SectionPermission, error) {
	var permission models.SectionPermission
	if err := r.db.WithContext(ctx).First(&permission, id).Error; err != nil {
		return models.SectionPermission{}, err
	}

	return permission, nil
}

func (r *permissionRepository) GetBySectionAndPerson(ctx context.Context, sectionID uint, personID string) (models.SectionPermission, error) {
	var permission models.SectionPermission
	if err := r.db.WithContext(ctx).
		Where("section_id = ? AND person_id = ?", sectionID, personID).
		First(&permission).Error; err != nil {
		return models.SectionPermission{}, err
	}

	return permission, nil
}

func (r *permissionRepository) Create(ctx context.Context, permission *models.SectionPermission) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

func (r *permissionRepository) Update(ctx context.Context, permission *models.SectionPermission) error {
	return r.db.WithContext(ctx).Save(permission).Error
}

func (r *permissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SectionPermission{}, id).Error
}
