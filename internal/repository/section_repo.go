package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// SectionRepository defines data operations for form sections.
type SectionRepository interface {
	ListByForm(ctx context.Context, formID uint) ([]models.FormSection, error)
	ListChildren(ctx context.Context, sectionID uint) ([]models.FormSection, error)
	GetByID(ctx context.Context, id uint) (models.FormSection, error)
	Create(ctx context.Context, section *models.FormSection) error
	Update(ctx context.Context, section *models.FormSection) error
	Delete(ctx context.Context, id uint) error
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository instantiates the repository.
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) ListByForm(ctx context.Context, formID uint) ([]models.FormSection, error) {
	var sections []models.FormSection
	if err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("level ASC, order_index ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}

	return sections, nil
}

func (r *sectionRepository) ListChildren(ctx context.Context, sectionID uint) ([]models.FormSection, error) {
	var sections []models.FormSection
	if err := r.db.WithContext(ctx).
		Where("parent_section_id = ?", sectionID).
		Order("order_index ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}

	return sections, nil
}

func (r *sectionRepository) GetByID(ctx context.Context, id uint) (models.FormSection, error) {
	var section models.FormSection
	if err := r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return models.FormSection{}, err
	}

	return section, nil
}

func (r *sectionRepository) Create(ctx context.Context, section *models.FormSection) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepository) Update(ctx context.Context, section *models.FormSection) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *sectionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FormSection{}, id).Error
}
