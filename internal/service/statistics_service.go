package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// StatisticsService aggregates submission statistics. Results are cached in
// redis; a nil cache client degrades to direct computation.
type StatisticsService interface {
	FormStatistics(ctx context.Context, formID uint) (dto.FormStatisticsResponse, error)
	UserStatistics(ctx context.Context, userID string) (dto.UserStatisticsResponse, error)
	YearlyTrends(ctx context.Context, academicYear string) (dto.YearlyTrendsResponse, error)
}

type statisticsService struct {
	instances repository.InstanceRepository
	forms     repository.FormRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// NewStatisticsService constructs a StatisticsService instance.
func NewStatisticsService(
	instanceRepo repository.InstanceRepository,
	formRepo repository.FormRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) StatisticsService {
	return &statisticsService{
		instances: instanceRepo,
		forms:     formRepo,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "statistics_service").Logger(),
	}
}

func (s *statisticsService) FormStatistics(ctx context.Context, formID uint) (dto.FormStatisticsResponse, error) {
	if formID == 0 {
		return dto.FormStatisticsResponse{}, fmt.Errorf("%w: form id must be greater than zero", ErrInvalidArgument)
	}

	cacheKey := fmt.Sprintf("stats:form:%d", formID)
	var cached dto.FormStatisticsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	if _, err := s.forms.GetByID(ctx, formID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FormStatisticsResponse{}, ErrFormNotFound
		}
		return dto.FormStatisticsResponse{}, err
	}

	instances, err := s.instances.ListByForm(ctx, formID)
	if err != nil {
		return dto.FormStatisticsResponse{}, err
	}

	response := dto.FormStatisticsResponse{
		FormID: formID,
		Stages: stageCounts(instances),
	}

	var scoreSum float64
	var scored int
	for _, instance := range instances {
		if instance.CurrentStage == models.StageApproved && instance.TotalScore != nil {
			scoreSum += *instance.TotalScore
			scored++
		}
	}
	if scored > 0 {
		average := scoreSum / float64(scored)
		response.AverageScore = &average
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *statisticsService) UserStatistics(ctx context.Context, userID string) (dto.UserStatisticsResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return dto.UserStatisticsResponse{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	cacheKey := "stats:user:" + userID
	var cached dto.UserStatisticsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	instances, err := s.instances.ListByUser(ctx, userID)
	if err != nil {
		return dto.UserStatisticsResponse{}, err
	}

	response := dto.UserStatisticsResponse{
		UserID: userID,
		Stages: stageCounts(instances),
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *statisticsService) YearlyTrends(ctx context.Context, academicYear string) (dto.YearlyTrendsResponse, error) {
	if strings.TrimSpace(academicYear) == "" {
		return dto.YearlyTrendsResponse{}, fmt.Errorf("%w: academic year is required", ErrInvalidArgument)
	}

	cacheKey := "stats:trends:" + academicYear
	var cached dto.YearlyTrendsResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	forms, err := s.forms.List(ctx, repository.FormFilter{AcademicYear: &academicYear})
	if err != nil {
		return dto.YearlyTrendsResponse{}, err
	}

	response := dto.YearlyTrendsResponse{
		AcademicYear: academicYear,
		FormCounts:   make(map[string]int, len(forms)),
	}
	for _, form := range forms {
		instances, err := s.instances.ListByForm(ctx, form.ID)
		if err != nil {
			return dto.YearlyTrendsResponse{}, err
		}
		response.FormCounts[form.Name] = len(instances)
	}

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func stageCounts(instances []models.FormInstance) dto.StageCounts {
	counts := dto.StageCounts{"Total": len(instances)}
	for _, instance := range instances {
		counts[string(instance.CurrentStage)]++
	}
	return counts
}

func (s *statisticsService) readCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read statistics cache")
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), out); err != nil {
		return false
	}

	s.logger.Debug().Str("key", key).Msg("statistics cache hit")
	return true
}

func (s *statisticsService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store statistics cache")
	}
}
