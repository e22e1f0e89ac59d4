package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// ErrStageConflict reports that a conditional stage update matched no row:
// the instance changed stage between read and write.
var ErrStageConflict = errors.New("instance stage changed concurrently")

// StageUpdate carries the column values written by a workflow transition.
// Nil pointers leave the column untouched.
type StageUpdate struct {
	Stage          models.Stage
	Comments       *string
	TotalScore     *float64
	SubmissionDate *time.Time
	ModifiedAt     time.Time
}

// InstanceRepository defines data operations for form instances.
type InstanceRepository interface {
	GetByID(ctx context.Context, id uint) (models.FormInstance, error)
	ListByUser(ctx context.Context, userID string) ([]models.FormInstance, error)
	ListByForm(ctx context.Context, formID uint) ([]models.FormInstance, error)
	ListByStage(ctx context.Context, stage models.Stage) ([]models.FormInstance, error)
	Create(ctx context.Context, instance *models.FormInstance) error
	// UpdateStageIf applies update only while the row still holds expected
	// as its current stage; it fails with ErrStageConflict otherwise. This
	// is the persistence-time re-validation of the transition precondition.
	UpdateStageIf(ctx context.Context, id uint, expected models.Stage, update StageUpdate) error
}

type instanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository instantiates the repository.
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &instanceRepository{db: db}
}

func (r *instanceRepository) GetByID(ctx context.Context, id uint) (models.FormInstance, error) {
	var instance models.FormInstance
	if err := r.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		return models.FormInstance{}, err
	}

	return instance, nil
}

func (r *instanceRepository) ListByUser(ctx context.Context, userID string) ([]models.FormInstance, error) {
	var instances []models.FormInstance
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&instances).Error; err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *instanceRepository) ListByForm(ctx context.Context, formID uint) ([]models.FormInstance, error) {
	var instances []models.FormInstance
	if err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Find(&instances).Error; err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *instanceRepository) ListByStage(ctx context.Context, stage models.Stage) ([]models.FormInstance, error) {
	var instances []models.FormInstance
	if err := r.db.WithContext(ctx).
		Where("current_stage = ?", stage).
		Order("created_at DESC").
		Find(&instances).Error; err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *instanceRepository) Create(ctx context.Context, instance *models.FormInstance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

func (r *instanceRepository) UpdateStageIf(ctx context.Context, id uint, expected models.Stage, update StageUpdate) error {
	values := map[string]interface{}{
		"current_stage":      update.Stage,
		"last_modified_date": update.ModifiedAt,
	}
	if update.Comments != nil {
		values["comments"] = *update.Comments
	}
	if update.TotalScore != nil {
		values["total_score"] = *update.TotalScore
	}
	if update.SubmissionDate != nil {
		values["submission_date"] = *update.SubmissionDate
	}

	result := r.db.WithContext(ctx).Model(&models.FormInstance{}).
		Where("id = ? AND current_stage = ?", id, expected).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStageConflict
	}

	return nil
}
