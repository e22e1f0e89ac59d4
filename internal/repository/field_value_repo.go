package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// FieldValueRepository defines data operations for user-entered field
// values.
type FieldValueRepository interface {
	GetValue(ctx context.Context, instanceID, fieldID uint) (models.FieldValue, error)
	ListByInstance(ctx context.Context, instanceID uint) ([]models.FieldValue, error)
	Upsert(ctx context.Context, value *models.FieldValue) error
}

type fieldValueRepository struct {
	db *gorm.DB
}

// NewFieldValueRepository instantiates the repository.
func NewFieldValueRepository(db *gorm.DB) FieldValueRepository {
	return &fieldValueRepository{db: db}
}

func (r *fieldValueRepository) GetValue(ctx context.Context, instanceID, fieldID uint) (models.FieldValue, error) {
	var value models.FieldValue
	if err := r.db.WithContext(ctx).
		Where("instance_id = ? AND field_id = ?", instanceID, fieldID).
		First(&value).Error; err != nil {
		return models.FieldValue{}, err
	}

	return value, nil
}

func (r *fieldValueRepository) ListByInstance(ctx context.Context, instanceID uint) ([]models.FieldValue, error) {
	var values []models.FieldValue
	if err := r.db.WithContext(ctx).
		Where("instance_id = ?", instanceID).
		Find(&values).Error; err != nil {
		return nil, err
	}

	return values, nil
}

func (r *fieldValueRepository) Upsert(ctx context.Context, value *models.FieldValue) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "instance_id"}, {Name: "field_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(value).Error
}
