package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/observability"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

// InstanceService is the lifecycle engine for form instances. Every
// transition validates its required inputs first, then its stage
// precondition, and persists through a stage-conditional update so two
// concurrent decisions on the same instance cannot both succeed.
type InstanceService interface {
	Create(ctx context.Context, payload dto.InstanceCreateRequest) (dto.InstanceResponse, error)
	Get(ctx context.Context, id uint) (dto.InstanceResponse, error)
	ListByUser(ctx context.Context, userID string) ([]dto.InstanceResponse, error)
	ListByForm(ctx context.Context, formID uint) ([]dto.InstanceResponse, error)
	ListByStage(ctx context.Context, stage models.Stage) ([]dto.InstanceResponse, error)
	SaveFieldValue(ctx context.Context, instanceID, fieldID uint, value string) error

	Submit(ctx context.Context, id uint, payload dto.InstanceSubmitRequest, actorID string) (dto.TransitionResponse, error)
	MarkUnderReview(ctx context.Context, id uint, payload dto.InstanceReviewRequest, actorID string) (dto.TransitionResponse, error)
	Approve(ctx context.Context, id uint, payload dto.InstanceApproveRequest, actorID string) (dto.TransitionResponse, error)
	Reject(ctx context.Context, id uint, payload dto.InstanceRejectRequest, actorID string) (dto.TransitionResponse, error)
	ReturnForRevision(ctx context.Context, id uint, payload dto.InstanceReturnRequest, actorID string) (dto.TransitionResponse, error)
	Appeal(ctx context.Context, id uint, payload dto.InstanceAppealRequest, actorID string) (dto.TransitionResponse, error)
}

type instanceService struct {
	instances  repository.InstanceRepository
	forms      repository.FormRepository
	fields     repository.FieldRepository
	values     repository.FieldValueRepository
	persons    repository.PersonRepository
	validation ValidationService
	notifier   Notifier
	audit      AuditRecorder
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	tracer     trace.Tracer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewInstanceService constructs an InstanceService instance.
func NewInstanceService(
	instanceRepo repository.InstanceRepository,
	formRepo repository.FormRepository,
	fieldRepo repository.FieldRepository,
	valueRepo repository.FieldValueRepository,
	personRepo repository.PersonRepository,
	validation ValidationService,
	notifier Notifier,
	audit AuditRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) InstanceService {
	return &instanceService{
		instances:  instanceRepo,
		forms:      formRepo,
		fields:     fieldRepo,
		values:     valueRepo,
		persons:    personRepo,
		validation: validation,
		notifier:   notifier,
		audit:      audit,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		tracer:     otel.Tracer("github.com/excellence-hub/excellence-forms-api/internal/service/instance"),
		logger:     logger.With().Str("component", "instance_service").Logger(),
		now:        time.Now,
	}
}

func (s *instanceService) Create(ctx context.Context, payload dto.InstanceCreateRequest) (dto.InstanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.InstanceResponse{}, err
	}

	form, err := s.forms.GetByID(ctx, payload.FormID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InstanceResponse{}, ErrFormNotFound
		}
		return dto.InstanceResponse{}, err
	}
	if !form.IsOpen() {
		return dto.InstanceResponse{}, fmt.Errorf("%w: form %d is not open for submissions", ErrInvalidArgument, form.ID)
	}

	if _, err := s.persons.GetByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.InstanceResponse{}, ErrPersonNotFound
		}
		return dto.InstanceResponse{}, err
	}

	// One active instance per (user, form): only Rejected and Closed free
	// the slot. A Draft may therefore coexist with an UnderAppeal instance,
	// since appealing a rejection does not reclaim the slot retroactively.
	existing, err := s.instances.ListByUser(ctx, payload.UserID)
	if err != nil {
		return dto.InstanceResponse{}, err
	}
	for _, other := range existing {
		if other.FormID == payload.FormID && !other.CurrentStage.ReleasesSlot() {
			return dto.InstanceResponse{}, ErrDuplicateInstance
		}
	}

	instance := models.FormInstance{
		FormID:           payload.FormID,
		UserID:           payload.UserID,
		CurrentStage:     models.StageDraft,
		CreatedAt:        s.now(),
		LastModifiedDate: s.now(),
	}
	if err := s.instances.Create(ctx, &instance); err != nil {
		return dto.InstanceResponse{}, err
	}

	s.audit.Record(ctx, payload.UserID, "instance.create", "FormInstance", &instance.ID, map[string]any{
		"form_id": payload.FormID,
	})
	s.logger.Info().Uint("instance_id", instance.ID).Uint("form_id", payload.FormID).Msg("instance created")

	return dto.NewInstanceResponse(instance), nil
}

func (s *instanceService) Get(ctx context.Context, id uint) (dto.InstanceResponse, error) {
	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return dto.InstanceResponse{}, err
	}
	return dto.NewInstanceResponse(instance), nil
}

func (s *instanceService) ListByUser(ctx context.Context, userID string) ([]dto.InstanceResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	instances, err := s.instances.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewInstanceResponseSlice(instances), nil
}

func (s *instanceService) ListByForm(ctx context.Context, formID uint) ([]dto.InstanceResponse, error) {
	if formID == 0 {
		return nil, fmt.Errorf("%w: form id must be greater than zero", ErrInvalidArgument)
	}
	instances, err := s.instances.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	return dto.NewInstanceResponseSlice(instances), nil
}

func (s *instanceService) ListByStage(ctx context.Context, stage models.Stage) ([]dto.InstanceResponse, error) {
	if !stage.IsValid() {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidArgument, stage)
	}
	instances, err := s.instances.ListByStage(ctx, stage)
	if err != nil {
		return nil, err
	}
	return dto.NewInstanceResponseSlice(instances), nil
}

func (s *instanceService) SaveFieldValue(ctx context.Context, instanceID, fieldID uint, value string) error {
	if instanceID == 0 || fieldID == 0 {
		return fmt.Errorf("%w: instance id and field id must be greater than zero", ErrInvalidArgument)
	}

	instance, err := s.getInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	// Values are only editable while the user still owns the instance.
	if instance.CurrentStage != models.StageDraft && instance.CurrentStage != models.StageReturnedForRevision {
		return &InvalidStateError{
			Current:  instance.CurrentStage,
			Expected: []models.Stage{models.StageDraft, models.StageReturnedForRevision},
		}
	}

	if _, err := s.fields.GetByID(ctx, fieldID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFieldNotFound
		}
		return err
	}

	fieldValue := models.FieldValue{
		InstanceID: instanceID,
		FieldID:    fieldID,
		Value:      s.sanitizer.Sanitize(value),
		UpdatedAt:  s.now(),
	}
	return s.values.Upsert(ctx, &fieldValue)
}

func (s *instanceService) Submit(ctx context.Context, id uint, payload dto.InstanceSubmitRequest, actorID string) (dto.TransitionResponse, error) {
	ctx, span := s.startTransitionSpan(ctx, "instance.submit", id, actorID)
	defer span.End()

	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "instance_lookup_failed")
	}

	if !models.CanEnter(models.StageSubmitted, instance.CurrentStage) {
		err := NewInvalidStateError(instance.CurrentStage, models.StageSubmitted)
		return s.failSpan(span, err, "invalid_state")
	}

	report, err := s.validation.ValidateContent(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "content_validation_failed")
	}
	if !report.Valid {
		err := &ValidationFailedError{Issues: report.Issues}
		return s.failSpan(span, err, "content_invalid")
	}

	submittedAt := s.now()
	update := repository.StageUpdate{
		Stage:          models.StageSubmitted,
		SubmissionDate: &submittedAt,
		ModifiedAt:     submittedAt,
	}
	if comments := s.cleanText(payload.Comments); comments != "" {
		update.Comments = &comments
	}

	return s.applyTransition(ctx, span, instance, update, actorID, "instance.submit", func(warnCtx context.Context) error {
		return s.notifier.NotifySubmission(warnCtx, id)
	})
}

func (s *instanceService) MarkUnderReview(ctx context.Context, id uint, payload dto.InstanceReviewRequest, actorID string) (dto.TransitionResponse, error) {
	ctx, span := s.startTransitionSpan(ctx, "instance.mark_under_review", id, actorID)
	defer span.End()

	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "instance_lookup_failed")
	}

	if !models.CanEnter(models.StageUnderReview, instance.CurrentStage) {
		err := NewInvalidStateError(instance.CurrentStage, models.StageUnderReview)
		return s.failSpan(span, err, "invalid_state")
	}

	update := repository.StageUpdate{Stage: models.StageUnderReview, ModifiedAt: s.now()}
	if comments := s.cleanText(payload.Comments); comments != "" {
		update.Comments = &comments
	}

	return s.applyTransition(ctx, span, instance, update, actorID, "instance.mark_under_review", func(warnCtx context.Context) error {
		return s.notifier.NotifyStatusChange(warnCtx, id, instance.CurrentStage, models.StageUnderReview)
	})
}

func (s *instanceService) Approve(ctx context.Context, id uint, payload dto.InstanceApproveRequest, actorID string) (dto.TransitionResponse, error) {
	ctx, span := s.startTransitionSpan(ctx, "instance.approve", id, actorID)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return s.failSpan(span, fmt.Errorf("%w: total score is required and must be non-negative", ErrInvalidArgument), "invalid_argument")
	}

	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "instance_lookup_failed")
	}

	if !models.CanEnter(models.StageApproved, instance.CurrentStage) {
		err := NewInvalidStateError(instance.CurrentStage, models.StageApproved)
		return s.failSpan(span, err, "invalid_state")
	}

	update := repository.StageUpdate{
		Stage:      models.StageApproved,
		TotalScore: payload.TotalScore,
		ModifiedAt: s.now(),
	}
	if comments := s.cleanText(payload.Comments); comments != "" {
		update.Comments = &comments
	}

	span.SetAttributes(attribute.Float64("instance.total_score", *payload.TotalScore))

	return s.applyTransition(ctx, span, instance, update, actorID, "instance.approve", func(warnCtx context.Context) error {
		return s.notifier.NotifyStatusChange(warnCtx, id, instance.CurrentStage, models.StageApproved)
	})
}

func (s *instanceService) Reject(ctx context.Context, id uint, payload dto.InstanceRejectRequest, actorID string) (dto.TransitionResponse, error) {
	ctx, span := s.startTransitionSpan(ctx, "instance.reject", id, actorID)
	defer span.End()

	// Comments are a mandatory input; the check precedes any state lookup.
	comments := s.cleanText(payload.Comments)
	if comments == "" {
		return s.failSpan(span, fmt.Errorf("%w: comments are required when rejecting", ErrInvalidArgument), "invalid_argument")
	}

	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "instance_lookup_failed")
	}

	if !models.CanEnter(models.StageRejected, instance.CurrentStage) {
		err := NewInvalidStateError(instance.CurrentStage, models.StageRejected)
		return s.failSpan(span, err, "invalid_state")
	}

	update := repository.StageUpdate{Stage: models.StageRejected, Comments: &comments, ModifiedAt: s.now()}

	return s.applyTransition(ctx, span, instance, update, actorID, "instance.reject", func(warnCtx context.Context) error {
		return s.notifier.NotifyStatusChange(warnCtx, id, instance.CurrentStage, models.StageRejected)
	})
}

func (s *instanceService) ReturnForRevision(ctx context.Context, id uint, payload dto.InstanceReturnRequest, actorID string) (dto.TransitionResponse, error) {
	ctx, span := s.startTransitionSpan(ctx, "instance.return_for_revision", id, actorID)
	defer span.End()

	comments := s.cleanText(payload.Comments)
	if comments == "" {
		return s.failSpan(span, fmt.Errorf("%w: comments are required when returning for revision", ErrInvalidArgument), "invalid_argument")
	}

	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "instance_lookup_failed")
	}

	if !models.CanEnter(models.StageReturnedForRevision, instance.CurrentStage) {
		err := NewInvalidStateError(instance.CurrentStage, models.StageReturnedForRevision)
		return s.failSpan(span, err, "invalid_state")
	}

	update := repository.StageUpdate{Stage: models.StageReturnedForRevision, Comments: &comments, ModifiedAt: s.now()}

	return s.applyTransition(ctx, span, instance, update, actorID, "instance.return_for_revision", func(warnCtx context.Context) error {
		return s.notifier.NotifyStatusChange(warnCtx, id, instance.CurrentStage, models.StageReturnedForRevision)
	})
}

func (s *instanceService) Appeal(ctx context.Context, id uint, payload dto.InstanceAppealRequest, actorID string) (dto.TransitionResponse, error) {
	ctx, span := s.startTransitionSpan(ctx, "instance.appeal", id, actorID)
	defer span.End()

	reason := s.cleanText(payload.Reason)
	if reason == "" {
		return s.failSpan(span, fmt.Errorf("%w: appeal reason is required", ErrInvalidArgument), "invalid_argument")
	}

	instance, err := s.getInstance(ctx, id)
	if err != nil {
		return s.failSpan(span, err, "instance_lookup_failed")
	}

	if !models.CanEnter(models.StageUnderAppeal, instance.CurrentStage) {
		err := NewInvalidStateError(instance.CurrentStage, models.StageUnderAppeal)
		return s.failSpan(span, err, "invalid_state")
	}

	update := repository.StageUpdate{Stage: models.StageUnderAppeal, Comments: &reason, ModifiedAt: s.now()}

	return s.applyTransition(ctx, span, instance, update, actorID, "instance.appeal", func(warnCtx context.Context) error {
		return s.notifier.NotifyStatusChange(warnCtx, id, instance.CurrentStage, models.StageUnderAppeal)
	})
}

// applyTransition persists the stage change conditionally on the stage the
// instance held at read time, records the audit entry, and runs the
// notification hook. Notification failures surface as warnings on the
// response, never as transition failures.
func (s *instanceService) applyTransition(
	ctx context.Context,
	span trace.Span,
	instance models.FormInstance,
	update repository.StageUpdate,
	actorID string,
	action string,
	notify func(context.Context) error,
) (dto.TransitionResponse, error) {
	if err := s.instances.UpdateStageIf(ctx, instance.ID, instance.CurrentStage, update); err != nil {
		if errors.Is(err, repository.ErrStageConflict) {
			return s.failSpan(span, err, "stage_conflict")
		}
		return s.failSpan(span, err, "stage_update_failed")
	}

	updated, err := s.instances.GetByID(ctx, instance.ID)
	if err != nil {
		return s.failSpan(span, err, "instance_reload_failed")
	}

	observability.WorkflowTransitionsTotal().
		WithLabelValues(string(instance.CurrentStage), string(update.Stage)).Inc()

	s.audit.Record(ctx, actorID, action, "FormInstance", &instance.ID, map[string]any{
		"from": string(instance.CurrentStage),
		"to":   string(update.Stage),
	})

	response := dto.TransitionResponse{Instance: dto.NewInstanceResponse(updated)}
	if err := notify(ctx); err != nil {
		s.logger.Warn().Err(err).Uint("instance_id", instance.ID).Msg("notification failed after transition")
		response.Warnings = append(response.Warnings, fmt.Sprintf("notification failed: %v", err))
	}

	span.SetAttributes(
		attribute.String("instance.stage.from", string(instance.CurrentStage)),
		attribute.String("instance.stage.to", string(update.Stage)),
	)

	s.logger.Info().
		Uint("instance_id", instance.ID).
		Str("from", string(instance.CurrentStage)).
		Str("to", string(update.Stage)).
		Str("actor_id", actorID).
		Msg("instance transitioned")

	return response, nil
}

func (s *instanceService) getInstance(ctx context.Context, id uint) (models.FormInstance, error) {
	if id == 0 {
		return models.FormInstance{}, fmt.Errorf("%w: instance id must be greater than zero", ErrInvalidArgument)
	}

	instance, err := s.instances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FormInstance{}, ErrInstanceNotFound
		}
		return models.FormInstance{}, err
	}
	return instance, nil
}

func (s *instanceService) cleanText(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

func (s *instanceService) startTransitionSpan(ctx context.Context, name string, id uint, actorID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int64("instance.id", int64(id)),
		attribute.String("instance.actor_id", actorID),
	))
}

func (s *instanceService) failSpan(span trace.Span, err error, status string) (dto.TransitionResponse, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return dto.TransitionResponse{}, err
}
