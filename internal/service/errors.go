package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/excellence-hub/excellence-forms-api/internal/dto"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
)

// ErrInvalidArgument indicates a malformed or missing required input, such
// as a non-positive id or empty comments on a rejection.
var ErrInvalidArgument = errors.New("invalid argument")

// Not-found sentinels for the entities the workflow references.
var (
	ErrFormNotFound         = errors.New("form not found")
	ErrSectionNotFound      = errors.New("section not found")
	ErrFieldNotFound        = errors.New("field not found")
	ErrOptionNotFound       = errors.New("option not found")
	ErrInstanceNotFound     = errors.New("instance not found")
	ErrPermissionNotFound   = errors.New("permission not found")
	ErrPersonNotFound       = errors.New("person not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// ErrFormPublished indicates a structural mutation attempted on a form that
// has already been published. Structure is frozen at publication.
var ErrFormPublished = errors.New("form is published; structure is frozen")

// ErrDuplicateInstance indicates the user already holds an active instance
// for the form. Only Rejected or Closed instances free the slot.
var ErrDuplicateInstance = errors.New("an active instance already exists for this user and form")

// ErrInvalidCredentials indicates a failed username/password login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// InvalidStateError reports a workflow transition attempted from a stage the
// transition does not accept.
type InvalidStateError struct {
	Current  models.Stage
	Expected []models.Stage
}

func (e *InvalidStateError) Error() string {
	expected := make([]string, 0, len(e.Expected))
	for _, stage := range e.Expected {
		expected = append(expected, string(stage))
	}
	return fmt.Sprintf("invalid state: current stage is %s, expected one of [%s]",
		e.Current, strings.Join(expected, ", "))
}

// NewInvalidStateError builds an InvalidStateError for a transition into
// target from current, listing the stages the transition accepts.
func NewInvalidStateError(current, target models.Stage) *InvalidStateError {
	return &InvalidStateError{Current: current, Expected: models.AllowedSources(target)}
}

// ValidationFailedError carries every issue a validator collected, not just
// the first, so callers can surface all defects at once.
type ValidationFailedError struct {
	Issues []dto.ValidationIssue
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed with %d issue(s)", len(e.Issues))
}
