package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

type instanceFixture struct {
	instances *fakeInstanceRepo
	forms     *fakeFormRepo
	fields    *fakeFieldRepo
	values    *fakeValueRepo
	persons   *fakePersonRepo
	notifier  *fakeNotifier
	audit     *fakeAudit
	svc       InstanceService
}

func newInstanceFixture(validation ValidationService) *instanceFixture {
	if validation == nil {
		validation = &stubValidation{report: dto.NewValidationReport(nil)}
	}

	f := &instanceFixture{
		instances: &fakeInstanceRepo{},
		forms: newFakeFormRepo(models.Form{
			ID: 1, Name: "Excellence 2026", AcademicYear: "2026",
			IsActive: true, IsPublished: true,
		}),
		fields:   newFakeFieldRepo(),
		values:   newFakeValueRepo(),
		persons:  newFakePersonRepo(models.Person{ID: "u100", Username: "jdoe", IsActive: true}),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
	}
	f.svc = NewInstanceService(
		f.instances, f.forms, f.fields, f.values, f.persons,
		validation, f.notifier, f.audit, newValidate(), testLogger(),
	)
	return f
}

func (f *instanceFixture) seedInstance(stage models.Stage) uint {
	instance := models.FormInstance{FormID: 1, UserID: "u100", CurrentStage: stage}
	_ = f.instances.Create(context.Background(), &instance)
	return instance.ID
}

func TestInstanceCreate(t *testing.T) {
	f := newInstanceFixture(nil)

	created, err := f.svc.Create(context.Background(), dto.InstanceCreateRequest{FormID: 1, UserID: "u100"})
	require.NoError(t, err)
	require.Equal(t, models.StageDraft, created.CurrentStage)
	require.Equal(t, uint(1), created.FormID)
	require.Contains(t, f.audit.actions, "instance.create")
}

func TestInstanceCreateRequiresOpenForm(t *testing.T) {
	f := newInstanceFixture(nil)
	f.forms.forms[2] = models.Form{ID: 2, Name: "Draft Form", IsActive: true, IsPublished: false}

	_, err := f.svc.Create(context.Background(), dto.InstanceCreateRequest{FormID: 2, UserID: "u100"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.Create(context.Background(), dto.InstanceCreateRequest{FormID: 99, UserID: "u100"})
	require.ErrorIs(t, err, ErrFormNotFound)
}

func TestInstanceCreateDuplicateRule(t *testing.T) {
	f := newInstanceFixture(nil)
	f.seedInstance(models.StageSubmitted)

	_, err := f.svc.Create(context.Background(), dto.InstanceCreateRequest{FormID: 1, UserID: "u100"})
	require.ErrorIs(t, err, ErrDuplicateInstance)
}

func TestInstanceCreateAfterRejection(t *testing.T) {
	f := newInstanceFixture(nil)
	rejectedID := f.seedInstance(models.StageRejected)

	// A rejection frees the slot for a fresh draft.
	created, err := f.svc.Create(context.Background(), dto.InstanceCreateRequest{FormID: 1, UserID: "u100"})
	require.NoError(t, err)
	require.Equal(t, models.StageDraft, created.CurrentStage)

	// Appealing the rejected instance afterwards is still legal: the draft
	// and the appeal coexist, since the appeal never reclaims the slot.
	appealed, err := f.svc.Appeal(context.Background(), rejectedID, dto.InstanceAppealRequest{Reason: "score disputed"}, "u100")
	require.NoError(t, err)
	require.Equal(t, models.StageUnderAppeal, appealed.Instance.CurrentStage)
}

func TestSubmitFromDraft(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageDraft)

	result, err := f.svc.Submit(context.Background(), id, dto.InstanceSubmitRequest{}, "u100")
	require.NoError(t, err)
	require.Equal(t, models.StageSubmitted, result.Instance.CurrentStage)
	require.NotNil(t, result.Instance.SubmissionDate)
	require.Empty(t, result.Warnings)
	require.Equal(t, []uint{id}, f.notifier.submissions)
	require.Contains(t, f.audit.actions, "instance.submit")
}

func TestSubmitBlockedByContentValidation(t *testing.T) {
	validation := &stubValidation{report: dto.NewValidationReport([]dto.ValidationIssue{
		{Key: "Section_1", Message: "Field 'Score' is required"},
	})}
	f := newInstanceFixture(validation)
	id := f.seedInstance(models.StageDraft)

	_, err := f.svc.Submit(context.Background(), id, dto.InstanceSubmitRequest{}, "u100")

	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	require.Len(t, failed.Issues, 1)

	instance, err := f.instances.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, models.StageDraft, instance.CurrentStage)
	require.Empty(t, f.notifier.submissions)
}

func TestSubmitFromWrongStage(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageApproved)

	_, err := f.svc.Submit(context.Background(), id, dto.InstanceSubmitRequest{}, "u100")

	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, models.StageApproved, invalid.Current)
	require.Equal(t, []models.Stage{models.StageDraft}, invalid.Expected)
}

func TestMarkUnderReview(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageSubmitted)

	result, err := f.svc.MarkUnderReview(context.Background(), id, dto.InstanceReviewRequest{}, "c200")
	require.NoError(t, err)
	require.Equal(t, models.StageUnderReview, result.Instance.CurrentStage)
	require.Equal(t, []uint{id}, f.notifier.statusChanges)
}

func TestApprove(t *testing.T) {
	for _, from := range []models.Stage{models.StageSubmitted, models.StageUnderReview} {
		t.Run(string(from), func(t *testing.T) {
			f := newInstanceFixture(nil)
			id := f.seedInstance(from)

			result, err := f.svc.Approve(context.Background(), id, dto.InstanceApproveRequest{
				TotalScore: ptr(87.5),
				Comments:   "well documented",
			}, "c200")
			require.NoError(t, err)
			require.Equal(t, models.StageApproved, result.Instance.CurrentStage)
			require.NotNil(t, result.Instance.TotalScore)
			require.Equal(t, 87.5, *result.Instance.TotalScore)
		})
	}
}

func TestApproveRequiresScore(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageSubmitted)

	_, err := f.svc.Approve(context.Background(), id, dto.InstanceApproveRequest{}, "c200")
	require.ErrorIs(t, err, ErrInvalidArgument)

	instance, err := f.instances.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, models.StageSubmitted, instance.CurrentStage)
}

func TestApproveTwice(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageSubmitted)

	_, err := f.svc.Approve(context.Background(), id, dto.InstanceApproveRequest{TotalScore: ptr(90.0)}, "c200")
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), id, dto.InstanceApproveRequest{TotalScore: ptr(95.0)}, "c200")

	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, models.StageApproved, invalid.Current)
}

func TestRejectRequiresCommentsBeforeLookup(t *testing.T) {
	f := newInstanceFixture(nil)

	// Input validation fires before the instance lookup, so a blank comment
	// on a nonexistent instance still reports the missing input.
	_, err := f.svc.Reject(context.Background(), 999, dto.InstanceRejectRequest{Comments: "   "}, "c200")
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.NotErrorIs(t, err, ErrInstanceNotFound)
}

func TestReject(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageUnderReview)

	result, err := f.svc.Reject(context.Background(), id, dto.InstanceRejectRequest{Comments: "insufficient evidence"}, "c200")
	require.NoError(t, err)
	require.Equal(t, models.StageRejected, result.Instance.CurrentStage)
	require.Equal(t, "insufficient evidence", result.Instance.Comments)
}

func TestReturnForRevisionReopensEditing(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageSubmitted)
	field := models.SectionField{SectionID: 1, Name: "score", Label: "Score", FieldType: models.FieldTypeNumber}
	require.NoError(t, f.fields.Create(context.Background(), &field))

	result, err := f.svc.ReturnForRevision(context.Background(), id, dto.InstanceReturnRequest{Comments: "please attach the report"}, "c200")
	require.NoError(t, err)
	require.Equal(t, models.StageReturnedForRevision, result.Instance.CurrentStage)

	// Returned instances are editable again.
	require.NoError(t, f.svc.SaveFieldValue(context.Background(), id, field.ID, "42"))
}

func TestAppealStagePrecondition(t *testing.T) {
	f := newInstanceFixture(nil)

	for _, from := range []models.Stage{models.StageRejected, models.StageApproved} {
		id := f.seedInstance(from)
		result, err := f.svc.Appeal(context.Background(), id, dto.InstanceAppealRequest{Reason: "score disputed"}, "u100")
		require.NoError(t, err)
		require.Equal(t, models.StageUnderAppeal, result.Instance.CurrentStage)
	}

	id := f.seedInstance(models.StageDraft)
	_, err := f.svc.Appeal(context.Background(), id, dto.InstanceAppealRequest{Reason: "score disputed"}, "u100")

	var invalid *InvalidStateError
	require.ErrorAs(t, err, &invalid)
	require.ElementsMatch(t, []models.Stage{models.StageRejected, models.StageApproved}, invalid.Expected)
}

func TestNotificationFailureIsAWarning(t *testing.T) {
	f := newInstanceFixture(nil)
	f.notifier.err = errors.New("smtp relay down")
	id := f.seedInstance(models.StageDraft)

	result, err := f.svc.Submit(context.Background(), id, dto.InstanceSubmitRequest{}, "u100")
	require.NoError(t, err)
	require.Equal(t, models.StageSubmitted, result.Instance.CurrentStage)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "notification failed")
}

func TestTransitionStageConflict(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageSubmitted)
	f.instances.updateErr = repository.ErrStageConflict

	_, err := f.svc.Reject(context.Background(), id, dto.InstanceRejectRequest{Comments: "late"}, "c200")
	require.ErrorIs(t, err, repository.ErrStageConflict)
}

func TestSaveFieldValue(t *testing.T) {
	f := newInstanceFixture(nil)
	id := f.seedInstance(models.StageDraft)
	field := models.SectionField{SectionID: 1, Name: "summary", Label: "Summary", FieldType: models.FieldTypeText}
	require.NoError(t, f.fields.Create(context.Background(), &field))

	require.NoError(t, f.svc.SaveFieldValue(context.Background(), id, field.ID, "<b>three</b> publications"))

	stored, err := f.values.GetValue(context.Background(), id, field.ID)
	require.NoError(t, err)
	require.Equal(t, "three publications", stored.Value)
	require.False(t, stored.UpdatedAt.After(time.Now()))
}

func TestSaveFieldValueLockedStages(t *testing.T) {
	f := newInstanceFixture(nil)
	field := models.SectionField{SectionID: 1, Name: "summary", Label: "Summary", FieldType: models.FieldTypeText}
	require.NoError(t, f.fields.Create(context.Background(), &field))

	for _, stage := range []models.Stage{models.StageSubmitted, models.StageUnderReview, models.StageApproved} {
		id := f.seedInstance(stage)
		err := f.svc.SaveFieldValue(context.Background(), id, field.ID, "late edit")

		var invalid *InvalidStateError
		require.ErrorAs(t, err, &invalid, "stage %s must refuse edits", stage)
	}
}

func TestListByStageRejectsUnknownStage(t *testing.T) {
	f := newInstanceFixture(nil)

	_, err := f.svc.ListByStage(context.Background(), models.Stage("Pondering"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}
