package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FormInstance{}, &models.FieldValue{}))
	return db
}

func TestUpdateStageIf(t *testing.T) {
	db := newTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	instance := models.FormInstance{FormID: 1, UserID: "u100", CurrentStage: models.StageDraft}
	require.NoError(t, repo.Create(ctx, &instance))

	submittedAt := time.Now().UTC().Truncate(time.Second)
	err := repo.UpdateStageIf(ctx, instance.ID, models.StageDraft, StageUpdate{
		Stage:          models.StageSubmitted,
		SubmissionDate: &submittedAt,
		ModifiedAt:     submittedAt,
	})
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, instance.ID)
	require.NoError(t, err)
	require.Equal(t, models.StageSubmitted, updated.CurrentStage)
	require.NotNil(t, updated.SubmissionDate)
	// Columns without an update value stay untouched.
	require.Nil(t, updated.TotalScore)
}

func TestUpdateStageIfConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewInstanceRepository(db)
	ctx := context.Background()

	instance := models.FormInstance{FormID: 1, UserID: "u100", CurrentStage: models.StageUnderReview}
	require.NoError(t, repo.Create(ctx, &instance))

	// The row moved on since this caller read it: the conditional write must
	// refuse instead of overwriting the newer stage.
	err := repo.UpdateStageIf(ctx, instance.ID, models.StageSubmitted, StageUpdate{
		Stage:      models.StageApproved,
		ModifiedAt: time.Now(),
	})
	require.ErrorIs(t, err, ErrStageConflict)

	unchanged, err := repo.GetByID(ctx, instance.ID)
	require.NoError(t, err)
	require.Equal(t, models.StageUnderReview, unchanged.CurrentStage)
}

func TestFieldValueUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewFieldValueRepository(db)
	ctx := context.Background()

	first := models.FieldValue{InstanceID: 1, FieldID: 7, Value: "draft answer", UpdatedAt: time.Now()}
	require.NoError(t, repo.Upsert(ctx, &first))

	second := models.FieldValue{InstanceID: 1, FieldID: 7, Value: "final answer", UpdatedAt: time.Now()}
	require.NoError(t, repo.Upsert(ctx, &second))

	stored, err := repo.GetValue(ctx, 1, 7)
	require.NoError(t, err)
	require.Equal(t, "final answer", stored.Value)

	values, err := repo.ListByInstance(ctx, 1)
	require.NoError(t, err)
	require.Len(t, values, 1)
}
