package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// FieldRepository defines data operations for section fields and their
// options.
type FieldRepository interface {
	ListBySection(ctx context.Context, sectionID uint) ([]models.SectionField, error)
	GetByID(ctx context.Context, id uint) (models.SectionField, error)
	Create(ctx context.Context, field *models.SectionField) error
	Update(ctx context.Context, field *models.SectionField) error
	Delete(ctx context.Context, id uint) error
	DeleteBySection(ctx context.Context, sectionID uint) error

	ListOptions(ctx context.Context, fieldID uint) ([]models.FieldOption, error)
	GetOptionByID(ctx context.Context, id uint) (models.FieldOption, error)
	CreateOption(ctx context.Context, option *models.FieldOption) error
	UpdateOption(ctx context.Context, option *models.FieldOption) error
	DeleteOption(ctx context.Context, id uint) error
	DeleteOptionsByField(ctx context.Context, fieldID uint) error
}

type fieldRepository struct {
	db *gorm.DB
}

// NewFieldRepository instantiates the repository.
func NewFieldRepository(db *gorm.DB) FieldRepository {
	return &fieldRepository{db: db}
}

func (r *fieldRepository) ListBySection(ctx context.Context, sectionID uint) ([]models.SectionField, error) {
	var fields []models.SectionField
	if err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("field_options.order_index ASC")
		}).
		Where("section_id = ?", sectionID).
		Order("order_index ASC").
		Find(&fields).Error; err != nil {
		return nil, err
	}

	return fields, nil
}

func (r *fieldRepository) GetByID(ctx context.Context, id uint) (models.SectionField, error) {
	var field models.SectionField
	if err := r.db.WithContext(ctx).Preload("Options").First(&field, id).Error; err != nil {
		return models.SectionField{}, err
	}

	return field, nil
}

func (r *fieldRepository) Create(ctx context.Context, field *models.SectionField) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *fieldRepository) Update(ctx context.Context, field *models.SectionField) error {
	return r.db.WithContext(ctx).Save(field).Error
}

func (r *fieldRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SectionField{}, id).Error
}

func (r *fieldRepository) DeleteBySection(ctx context.Context, sectionID uint) error {
	return r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Delete(&models.SectionField{}).Error
}

func (r *fieldRepository) ListOptions(ctx context.Context, fieldID uint) ([]models.FieldOption, error) {
	var options []models.FieldOption
	if err := r.db.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("order_index ASC").
		Find(&options).Error; err != nil {
		return nil, err
	}

	return options, nil
}

func (r *fieldRepository) GetOptionByID(ctx context.Context, id uint) (models.FieldOption, error) {
	var option models.FieldOption
	if err := r.db.WithContext(ctx).First(&option, id).Error; err != nil {
		return models.FieldOption{}, err
	}

	return option, nil
}

func (r *fieldRepository) CreateOption(ctx context.Context, option *models.FieldOption) error {
	return r.db.WithContext(ctx).Create(option).Error
}

func (r *fieldRepository) UpdateOption(ctx context.Context, option *models.FieldOption) error {
	return r.db.WithContext(ctx).Save(option).Error
}

func (r *fieldRepository) DeleteOption(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FieldOption{}, id).Error
}

func (r *fieldRepository) DeleteOptionsByField(ctx context.Context, fieldID uint) error {
	return r.db.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Delete(&models.FieldOption{}).Error
}
