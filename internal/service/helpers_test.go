package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newValidate() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func ptr[T any](v T) *T {
	return &v
}

// fakeInstanceRepo keeps instances in a slice so list order is stable.
type fakeInstanceRepo struct {
	instances []models.FormInstance
	nextID    uint
	updateErr error
}

func (f *fakeInstanceRepo) GetByID(_ context.Context, id uint) (models.FormInstance, error) {
	for _, instance := range f.instances {
		if instance.ID == id {
			return instance, nil
		}
	}
	return models.FormInstance{}, gorm.ErrRecordNotFound
}

func (f *fakeInstanceRepo) ListByUser(_ context.Context, userID string) ([]models.FormInstance, error) {
	var out []models.FormInstance
	for _, instance := range f.instances {
		if instance.UserID == userID {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (f *fakeInstanceRepo) ListByForm(_ context.Context, formID uint) ([]models.FormInstance, error) {
	var out []models.FormInstance
	for _, instance := range f.instances {
		if instance.FormID == formID {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (f *fakeInstanceRepo) ListByStage(_ context.Context, stage models.Stage) ([]models.FormInstance, error) {
	var out []models.FormInstance
	for _, instance := range f.instances {
		if instance.CurrentStage == stage {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (f *fakeInstanceRepo) Create(_ context.Context, instance *models.FormInstance) error {
	f.nextID++
	instance.ID = f.nextID
	f.instances = append(f.instances, *instance)
	return nil
}

func (f *fakeInstanceRepo) UpdateStageIf(_ context.Context, id uint, expected models.Stage, update repository.StageUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.instances {
		if f.instances[i].ID != id {
			continue
		}
		if f.instances[i].CurrentStage != expected {
			return repository.ErrStageConflict
		}
		f.instances[i].CurrentStage = update.Stage
		f.instances[i].LastModifiedDate = update.ModifiedAt
		if update.Comments != nil {
			f.instances[i].Comments = *update.Comments
		}
		if update.TotalScore != nil {
			f.instances[i].TotalScore = update.TotalScore
		}
		if update.SubmissionDate != nil {
			f.instances[i].SubmissionDate = update.SubmissionDate
		}
		return nil
	}
	return repository.ErrStageConflict
}

type fakeFormRepo struct {
	forms  map[uint]models.Form
	nextID uint
}

func newFakeFormRepo(forms ...models.Form) *fakeFormRepo {
	repo := &fakeFormRepo{forms: make(map[uint]models.Form)}
	for _, form := range forms {
		repo.forms[form.ID] = form
		if form.ID > repo.nextID {
			repo.nextID = form.ID
		}
	}
	return repo
}

func (f *fakeFormRepo) List(_ context.Context, filter repository.FormFilter) ([]models.Form, error) {
	var out []models.Form
	for _, form := range f.forms {
		if filter.AcademicYear != nil && form.AcademicYear != *filter.AcademicYear {
			continue
		}
		if filter.ActiveOnly && !form.IsActive {
			continue
		}
		if filter.PublishedOnly && !form.IsPublished {
			continue
		}
		out = append(out, form)
	}
	return out, nil
}

func (f *fakeFormRepo) GetByID(_ context.Context, id uint) (models.Form, error) {
	form, ok := f.forms[id]
	if !ok {
		return models.Form{}, gorm.ErrRecordNotFound
	}
	return form, nil
}

func (f *fakeFormRepo) Create(_ context.Context, form *models.Form) error {
	f.nextID++
	form.ID = f.nextID
	f.forms[form.ID] = *form
	return nil
}

func (f *fakeFormRepo) Update(_ context.Context, form *models.Form) error {
	if _, ok := f.forms[form.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.forms[form.ID] = *form
	return nil
}

func (f *fakeFormRepo) Publish(_ context.Context, id uint, modifiedBy string) error {
	form, ok := f.forms[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	form.IsPublished = true
	form.LastModifiedBy = modifiedBy
	f.forms[id] = form
	return nil
}

type fakeSectionRepo struct {
	sections map[uint]models.FormSection
	nextID   uint
}

func newFakeSectionRepo(sections ...models.FormSection) *fakeSectionRepo {
	repo := &fakeSectionRepo{sections: make(map[uint]models.FormSection)}
	for _, section := range sections {
		repo.sections[section.ID] = section
		if section.ID > repo.nextID {
			repo.nextID = section.ID
		}
	}
	return repo
}

func (f *fakeSectionRepo) ListByForm(_ context.Context, formID uint) ([]models.FormSection, error) {
	var out []models.FormSection
	// level then order index, matching the repository's query ordering
	for level := 1; level <= 8; level++ {
		for order := 0; order < 64; order++ {
			for _, section := range f.sections {
				if section.FormID == formID && section.Level == level && section.OrderIndex == order {
					out = append(out, section)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeSectionRepo) ListChildren(_ context.Context, sectionID uint) ([]models.FormSection, error) {
	var out []models.FormSection
	for _, section := range f.sections {
		if section.ParentSectionID != nil && *section.ParentSectionID == sectionID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (f *fakeSectionRepo) GetByID(_ context.Context, id uint) (models.FormSection, error) {
	section, ok := f.sections[id]
	if !ok {
		return models.FormSection{}, gorm.ErrRecordNotFound
	}
	return section, nil
}

func (f *fakeSectionRepo) Create(_ context.Context, section *models.FormSection) error {
	f.nextID++
	section.ID = f.nextID
	f.sections[section.ID] = *section
	return nil
}

func (f *fakeSectionRepo) Update(_ context.Context, section *models.FormSection) error {
	if _, ok := f.sections[section.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.sections[section.ID] = *section
	return nil
}

func (f *fakeSectionRepo) Delete(_ context.Context, id uint) error {
	delete(f.sections, id)
	return nil
}

type fakeFieldRepo struct {
	fields  map[uint]models.SectionField
	options map[uint]models.FieldOption
	nextID  uint
}

func newFakeFieldRepo(fields ...models.SectionField) *fakeFieldRepo {
	repo := &fakeFieldRepo{
		fields:  make(map[uint]models.SectionField),
		options: make(map[uint]models.FieldOption),
	}
	for _, field := range fields {
		repo.fields[field.ID] = field
		if field.ID > repo.nextID {
			repo.nextID = field.ID
		}
		for _, option := range field.Options {
			repo.options[option.ID] = option
		}
	}
	return repo
}

func (f *fakeFieldRepo) ListBySection(_ context.Context, sectionID uint) ([]models.SectionField, error) {
	var out []models.SectionField
	for order := 0; order < 64; order++ {
		for _, field := range f.fields {
			if field.SectionID == sectionID && field.OrderIndex == order {
				out = append(out, field)
			}
		}
	}
	return out, nil
}

func (f *fakeFieldRepo) GetByID(_ context.Context, id uint) (models.SectionField, error) {
	field, ok := f.fields[id]
	if !ok {
		return models.SectionField{}, gorm.ErrRecordNotFound
	}
	return field, nil
}

func (f *fakeFieldRepo) Create(_ context.Context, field *models.SectionField) error {
	f.nextID++
	field.ID = f.nextID
	f.fields[field.ID] = *field
	return nil
}

func (f *fakeFieldRepo) Update(_ context.Context, field *models.SectionField) error {
	if _, ok := f.fields[field.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.fields[field.ID] = *field
	return nil
}

func (f *fakeFieldRepo) Delete(_ context.Context, id uint) error {
	delete(f.fields, id)
	return nil
}

func (f *fakeFieldRepo) DeleteBySection(_ context.Context, sectionID uint) error {
	for id, field := range f.fields {
		if field.SectionID == sectionID {
			delete(f.fields, id)
		}
	}
	return nil
}

func (f *fakeFieldRepo) ListOptions(_ context.Context, fieldID uint) ([]models.FieldOption, error) {
	var out []models.FieldOption
	for _, option := range f.options {
		if option.FieldID == fieldID {
			out = append(out, option)
		}
	}
	return out, nil
}

func (f *fakeFieldRepo) GetOptionByID(_ context.Context, id uint) (models.FieldOption, error) {
	option, ok := f.options[id]
	if !ok {
		return models.FieldOption{}, gorm.ErrRecordNotFound
	}
	return option, nil
}

func (f *fakeFieldRepo) CreateOption(_ context.Context, option *models.FieldOption) error {
	f.nextID++
	option.ID = f.nextID
	f.options[option.ID] = *option
	return nil
}

func (f *fakeFieldRepo) UpdateOption(_ context.Context, option *models.FieldOption) error {
	if _, ok := f.options[option.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.options[option.ID] = *option
	return nil
}

func (f *fakeFieldRepo) DeleteOption(_ context.Context, id uint) error {
	delete(f.options, id)
	return nil
}

func (f *fakeFieldRepo) DeleteOptionsByField(_ context.Context, fieldID uint) error {
	for id, option := range f.options {
		if option.FieldID == fieldID {
			delete(f.options, id)
		}
	}
	return nil
}

type fakeValueRepo struct {
	values map[[2]uint]models.FieldValue
}

func newFakeValueRepo() *fakeValueRepo {
	return &fakeValueRepo{values: make(map[[2]uint]models.FieldValue)}
}

func (f *fakeValueRepo) set(instanceID, fieldID uint, value string) {
	f.values[[2]uint{instanceID, fieldID}] = models.FieldValue{
		InstanceID: instanceID,
		FieldID:    fieldID,
		Value:      value,
	}
}

func (f *fakeValueRepo) GetValue(_ context.Context, instanceID, fieldID uint) (models.FieldValue, error) {
	value, ok := f.values[[2]uint{instanceID, fieldID}]
	if !ok {
		return models.FieldValue{}, gorm.ErrRecordNotFound
	}
	return value, nil
}

func (f *fakeValueRepo) ListByInstance(_ context.Context, instanceID uint) ([]models.FieldValue, error) {
	var out []models.FieldValue
	for _, value := range f.values {
		if value.InstanceID == instanceID {
			out = append(out, value)
		}
	}
	return out, nil
}

func (f *fakeValueRepo) Upsert(_ context.Context, value *models.FieldValue) error {
	f.values[[2]uint{value.InstanceID, value.FieldID}] = *value
	return nil
}

type fakePersonRepo struct {
	persons map[string]models.Person
}

func newFakePersonRepo(persons ...models.Person) *fakePersonRepo {
	repo := &fakePersonRepo{persons: make(map[string]models.Person)}
	for _, person := range persons {
		repo.persons[person.ID] = person
	}
	return repo
}

func (f *fakePersonRepo) GetByID(_ context.Context, id string) (models.Person, error) {
	person, ok := f.persons[id]
	if !ok {
		return models.Person{}, gorm.ErrRecordNotFound
	}
	return person, nil
}

func (f *fakePersonRepo) GetByUsername(_ context.Context, username string) (models.Person, error) {
	for _, person := range f.persons {
		if person.Username == username {
			return person, nil
		}
	}
	return models.Person{}, gorm.ErrRecordNotFound
}

func (f *fakePersonRepo) ListByDepartment(_ context.Context, departmentID uint) ([]models.Person, error) {
	var out []models.Person
	for _, person := range f.persons {
		if person.DepartmentID != nil && *person.DepartmentID == departmentID {
			out = append(out, person)
		}
	}
	return out, nil
}

func (f *fakePersonRepo) Create(_ context.Context, person *models.Person) error {
	f.persons[person.ID] = *person
	return nil
}

func (f *fakePersonRepo) Update(_ context.Context, person *models.Person) error {
	f.persons[person.ID] = *person
	return nil
}

type fakePermissionRepo struct {
	permissions map[uint]models.SectionPermission
	nextID      uint
}

func newFakePermissionRepo(permissions ...models.SectionPermission) *fakePermissionRepo {
	repo := &fakePermissionRepo{permissions: make(map[uint]models.SectionPermission)}
	for _, permission := range permissions {
		repo.permissions[permission.ID] = permission
		if permission.ID > repo.nextID {
			repo.nextID = permission.ID
		}
	}
	return repo
}

func (f *fakePermissionRepo) ListBySection(_ context.Context, sectionID uint) ([]models.SectionPermission, error) {
	var out []models.SectionPermission
	for _, permission := range f.permissions {
		if permission.SectionID == sectionID {
			out = append(out, permission)
		}
	}
	return out, nil
}

func (f *fakePermissionRepo) GetByID(_ context.Context, id uint) (models.SectionPermission, error) {
	permission, ok := f.permissions[id]
	if !ok {
		return models.SectionPermission{}, gorm.ErrRecordNotFound
	}
	return permission, nil
}

func (f *fakePermissionRepo) GetBySectionAndPerson(_ context.Context, sectionID uint, personID string) (models.SectionPermission, error) {
	for _, permission := range f.permissions {
		if permission.SectionID == sectionID && permission.PersonID == personID {
			return permission, nil
		}
	}
	return models.SectionPermission{}, gorm.ErrRecordNotFound
}

func (f *fakePermissionRepo) Create(_ context.Context, permission *models.SectionPermission) error {
	f.nextID++
	permission.ID = f.nextID
	f.permissions[permission.ID] = *permission
	return nil
}

func (f *fakePermissionRepo) Update(_ context.Context, permission *models.SectionPermission) error {
	if _, ok := f.permissions[permission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.permissions[permission.ID] = *permission
	return nil
}

func (f *fakePermissionRepo) Delete(_ context.Context, id uint) error {
	delete(f.permissions, id)
	return nil
}

type fakeNotificationRepo struct {
	notifications []models.Notification
	nextID        uint
	createErr     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	notification.ID = f.nextID
	f.notifications = append(f.notifications, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, notification := range f.notifications {
		if notification.UserID == userID {
			out = append(out, notification)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, notification := range f.notifications {
		if notification.UserID == userID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id uint, userID string) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeNotifier records workflow notifications and can be told to fail.
type fakeNotifier struct {
	submissions   []uint
	statusChanges []uint
	err           error
}

func (f *fakeNotifier) NotifySubmission(_ context.Context, instanceID uint) error {
	if f.err != nil {
		return f.err
	}
	f.submissions = append(f.submissions, instanceID)
	return nil
}

func (f *fakeNotifier) NotifyStatusChange(_ context.Context, instanceID uint, _, _ models.Stage) error {
	if f.err != nil {
		return f.err
	}
	f.statusChanges = append(f.statusChanges, instanceID)
	return nil
}

// fakeAudit records audit actions in call order.
type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, _, action, _ string, _ *uint, _ map[string]any) {
	f.actions = append(f.actions, action)
}

// stubValidation returns a canned report for both validators.
type stubValidation struct {
	report dto.ValidationReport
	err    error
}

func (s *stubValidation) ValidateStructure(context.Context, uint) (dto.ValidationReport, error) {
	return s.report, s.err
}

func (s *stubValidation) ValidateContent(context.Context, uint) (dto.ValidationReport, error) {
	return s.report, s.err
}
