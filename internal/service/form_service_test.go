package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

type formFixture struct {
	forms    *fakeFormRepo
	sections *fakeSectionRepo
	fields   *fakeFieldRepo
	audit    *fakeAudit
	svc      FormService
}

func newFormFixture(validation ValidationService) *formFixture {
	if validation == nil {
		validation = &stubValidation{report: dto.NewValidationReport(nil)}
	}

	f := &formFixture{
		forms:    newFakeFormRepo(),
		sections: newFakeSectionRepo(),
		fields:   newFakeFieldRepo(),
		audit:    &fakeAudit{},
	}
	f.svc = NewFormService(f.forms, f.sections, f.fields, validation, f.audit, newValidate(), testLogger())
	return f
}

func (f *formFixture) seedForm(published bool) uint {
	form := models.Form{Name: "Excellence 2026", AcademicYear: "2026", IsActive: true, IsPublished: published}
	_ = f.forms.Create(context.Background(), &form)
	return form.ID
}

func TestFormCreate(t *testing.T) {
	f := newFormFixture(nil)

	form, err := f.svc.Create(context.Background(), dto.FormCreateRequest{
		Name:         "Excellence 2026",
		AcademicYear: "2026",
		Semester:     "A",
		CreatedBy:    "admin1",
	})
	require.NoError(t, err)
	require.True(t, form.IsActive)
	require.False(t, form.IsPublished)
	require.Contains(t, f.audit.actions, "form.create")
}

func TestFormCreateRejectsInvertedDates(t *testing.T) {
	f := newFormFixture(nil)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	due := start.AddDate(0, -1, 0)

	_, err := f.svc.Create(context.Background(), dto.FormCreateRequest{
		Name:         "Excellence 2026",
		AcademicYear: "2026",
		CreatedBy:    "admin1",
		StartDate:    &start,
		DueDate:      &due,
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFormPublishGatedOnStructure(t *testing.T) {
	validation := &stubValidation{report: dto.NewValidationReport([]dto.ValidationIssue{
		{Key: "Sections", Message: "Form must contain at least one section"},
	})}
	f := newFormFixture(validation)
	formID := f.seedForm(false)

	_, err := f.svc.Publish(context.Background(), formID, "admin1")

	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	require.Len(t, failed.Issues, 1)

	form, _ := f.forms.GetByID(context.Background(), formID)
	require.False(t, form.IsPublished)
}

func TestFormPublish(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)

	form, err := f.svc.Publish(context.Background(), formID, "admin1")
	require.NoError(t, err)
	require.True(t, form.IsPublished)
	require.Contains(t, f.audit.actions, "form.publish")

	// Publishing again is a no-op, not an error.
	again, err := f.svc.Publish(context.Background(), formID, "admin1")
	require.NoError(t, err)
	require.True(t, again.IsPublished)
}

func TestAddSectionDerivesLevel(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)

	root, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{
		FormID: formID, Title: "Teaching",
	})
	require.NoError(t, err)
	require.Equal(t, 1, root.Level)

	child, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{
		FormID: formID, ParentSectionID: &root.ID, Title: "Courses",
	})
	require.NoError(t, err)
	require.Equal(t, 2, child.Level)
}

func TestAddSectionRejectsForeignParent(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)
	otherID := f.seedForm(false)

	foreign, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{
		FormID: otherID, Title: "Other",
	})
	require.NoError(t, err)

	_, err = f.svc.AddSection(context.Background(), dto.SectionCreateRequest{
		FormID: formID, ParentSectionID: &foreign.ID, Title: "Stray",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPublishedFormFreezesStructure(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)

	section, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching"})
	require.NoError(t, err)
	field, err := f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "summary", Label: "Summary", FieldType: models.FieldTypeText,
	})
	require.NoError(t, err)

	_, err = f.svc.Publish(context.Background(), formID, "admin1")
	require.NoError(t, err)

	_, err = f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Late"})
	require.ErrorIs(t, err, ErrFormPublished)

	_, err = f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "late", Label: "Late", FieldType: models.FieldTypeText,
	})
	require.ErrorIs(t, err, ErrFormPublished)

	err = f.svc.DeleteField(context.Background(), field.ID)
	require.ErrorIs(t, err, ErrFormPublished)

	err = f.svc.DeleteSection(context.Background(), section.ID)
	require.ErrorIs(t, err, ErrFormPublished)

	// In-place edits stay allowed after publication.
	updated, err := f.svc.UpdateSection(context.Background(), section.ID, dto.SectionUpdateRequest{
		Title: ptr("Teaching & Supervision"),
	})
	require.NoError(t, err)
	require.Equal(t, "Teaching & Supervision", updated.Title)
}

func TestDeleteSectionWithChildren(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)

	root, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching"})
	require.NoError(t, err)
	_, err = f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, ParentSectionID: &root.ID, Title: "Courses"})
	require.NoError(t, err)

	err = f.svc.DeleteSection(context.Background(), root.ID)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeleteSectionCascadesFieldsAndOptions(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)

	section, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching"})
	require.NoError(t, err)
	field, err := f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "rating", Label: "Rating", FieldType: models.FieldTypeSelect,
	})
	require.NoError(t, err)
	option, err := f.svc.AddOption(context.Background(), dto.OptionCreateRequest{
		FieldID: field.ID, Value: "good", Label: "Good",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSection(context.Background(), section.ID))

	_, err = f.fields.GetByID(context.Background(), field.ID)
	require.Error(t, err)
	_, err = f.fields.GetOptionByID(context.Background(), option.ID)
	require.Error(t, err)
}

func TestAddFieldDefaultsTextMaxLength(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)
	section, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching"})
	require.NoError(t, err)

	field, err := f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "summary", Label: "Summary", FieldType: models.FieldTypeText,
	})
	require.NoError(t, err)
	require.NotNil(t, field.MaxLength)
	require.Equal(t, models.DefaultTextMaxLength, *field.MaxLength)

	explicit, err := f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "title", Label: "Title", FieldType: models.FieldTypeText, MaxLength: ptr(64),
	})
	require.NoError(t, err)
	require.Equal(t, 64, *explicit.MaxLength)
}

func TestAddFieldRejectsInvertedRange(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)
	section, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching"})
	require.NoError(t, err)

	_, err = f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "score", Label: "Score", FieldType: models.FieldTypeNumber,
		MinValue: ptr(10.0), MaxValue: ptr(1.0),
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddOptionRequiresChoiceField(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)
	section, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching"})
	require.NoError(t, err)
	field, err := f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: section.ID, Name: "summary", Label: "Summary", FieldType: models.FieldTypeText,
	})
	require.NoError(t, err)

	_, err = f.svc.AddOption(context.Background(), dto.OptionCreateRequest{
		FieldID: field.ID, Value: "x", Label: "X",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetStructureBuildsTree(t *testing.T) {
	f := newFormFixture(nil)
	formID := f.seedForm(false)

	teaching, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Teaching", OrderIndex: 0})
	require.NoError(t, err)
	research, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, Title: "Research", OrderIndex: 1})
	require.NoError(t, err)
	courses, err := f.svc.AddSection(context.Background(), dto.SectionCreateRequest{FormID: formID, ParentSectionID: &teaching.ID, Title: "Courses", OrderIndex: 0})
	require.NoError(t, err)
	_, err = f.svc.AddField(context.Background(), dto.FieldCreateRequest{
		SectionID: courses.ID, Name: "count", Label: "Course count", FieldType: models.FieldTypeNumber,
	})
	require.NoError(t, err)

	tree, err := f.svc.GetStructure(context.Background(), formID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, "Teaching", tree[0].Title)
	require.Equal(t, "Research", tree[1].Title)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "Courses", tree[0].Children[0].Title)
	require.Len(t, tree[0].Children[0].Fields, 1)
	require.Equal(t, research.ID, tree[1].ID)
}
