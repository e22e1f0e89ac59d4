package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

func seedStatisticsRepos() (*fakeInstanceRepo, *fakeFormRepo) {
	instances := &fakeInstanceRepo{instances: []models.FormInstance{
		{ID: 1, FormID: 1, UserID: "u100", CurrentStage: models.StageApproved, TotalScore: ptr(80.0)},
		{ID: 2, FormID: 1, UserID: "u101", CurrentStage: models.StageApproved, TotalScore: ptr(90.0)},
		{ID: 3, FormID: 1, UserID: "u102", CurrentStage: models.StageSubmitted},
		{ID: 4, FormID: 1, UserID: "u100", CurrentStage: models.StageRejected},
		{ID: 5, FormID: 2, UserID: "u100", CurrentStage: models.StageDraft},
	}, nextID: 5}
	forms := newFakeFormRepo(
		models.Form{ID: 1, Name: "Excellence 2026", AcademicYear: "2026"},
		models.Form{ID: 2, Name: "Teaching Award", AcademicYear: "2026"},
	)
	return instances, forms
}

func TestFormStatistics(t *testing.T) {
	instances, forms := seedStatisticsRepos()
	svc := NewStatisticsService(instances, forms, nil, time.Minute, testLogger())

	stats, err := svc.FormStatistics(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Stages["Total"])
	require.Equal(t, 2, stats.Stages[string(models.StageApproved)])
	require.Equal(t, 1, stats.Stages[string(models.StageSubmitted)])
	require.NotNil(t, stats.AverageScore)
	require.InDelta(t, 85.0, *stats.AverageScore, 0.001)
}

func TestFormStatisticsUnknownForm(t *testing.T) {
	instances, forms := seedStatisticsRepos()
	svc := NewStatisticsService(instances, forms, nil, time.Minute, testLogger())

	_, err := svc.FormStatistics(context.Background(), 99)
	require.ErrorIs(t, err, ErrFormNotFound)
}

func TestUserStatistics(t *testing.T) {
	instances, forms := seedStatisticsRepos()
	svc := NewStatisticsService(instances, forms, nil, time.Minute, testLogger())

	stats, err := svc.UserStatistics(context.Background(), "u100")
	require.NoError(t, err)
	require.Equal(t, 3, stats.Stages["Total"])
	require.Equal(t, 1, stats.Stages[string(models.StageDraft)])
}

func TestYearlyTrends(t *testing.T) {
	instances, forms := seedStatisticsRepos()
	svc := NewStatisticsService(instances, forms, nil, time.Minute, testLogger())

	trends, err := svc.YearlyTrends(context.Background(), "2026")
	require.NoError(t, err)
	require.Equal(t, 4, trends.FormCounts["Excellence 2026"])
	require.Equal(t, 1, trends.FormCounts["Teaching Award"])
}

func TestFormStatisticsServedFromCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	instances, forms := seedStatisticsRepos()
	svc := NewStatisticsService(instances, forms, client, time.Minute, testLogger())

	first, err := svc.FormStatistics(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, server.Exists("stats:form:1"))

	// New instances do not show until the cache entry expires.
	extra := models.FormInstance{FormID: 1, UserID: "u200", CurrentStage: models.StageDraft}
	require.NoError(t, instances.Create(context.Background(), &extra))

	cached, err := svc.FormStatistics(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, first.Stages["Total"], cached.Stages["Total"])

	server.FastForward(2 * time.Minute)

	fresh, err := svc.FormStatistics(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, first.Stages["Total"]+1, fresh.Stages["Total"])
}
