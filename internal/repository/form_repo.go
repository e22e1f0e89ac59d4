package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// FormFilter narrows form queries.
type FormFilter struct {
	AcademicYear  *string
	ActiveOnly    bool
	PublishedOnly bool
}

// FormRepository defines data operations for form definitions.
type FormRepository interface {
	List(ctx context.Context, filter FormFilter) ([]models.Form, error)
	GetByID(ctx context.Context, id uint) (models.Form, error)
	Create(ctx context.Context, form *models.Form) error
	Update(ctx context.Context, form *models.Form) error
	Publish(ctx context.Context, id uint, modifiedBy string) error
}

type formRepository struct {
	db *gorm.DB
}

// NewFormRepository instantiates the repository.
func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) List(ctx context.Context, filter FormFilter) ([]models.Form, error) {
	query := r.db.WithContext(ctx).Model(&models.Form{})

	if filter.AcademicYear != nil {
		query = query.Where("academic_year = ?", *filter.AcademicYear)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	var forms []models.Form
	if err := query.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, err
	}

	return forms, nil
}

func (r *formRepository) GetByID(ctx context.Context, id uint) (models.Form, error) {
	var form models.Form
	if err := r.db.WithContext(ctx).First(&form, id).Error; err != nil {
		return models.Form{}, err
	}

	return form, nil
}

func (r *formRepository) Create(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Create(form).Error
}

func (r *formRepository) Update(ctx context.Context, form *models.Form) error {
	return r.db.WithContext(ctx).Save(form).Error
}

func (r *formRepository) Publish(ctx context.Context, id uint, modifiedBy string) error {
	result := r.db.WithContext(ctx).Model(&models.Form{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_published":     true,
			"last_modified_by": modifiedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
