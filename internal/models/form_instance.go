package models

import "time"

// Stage is the lifecycle state of a form instance. The set is closed;
// transitions are only legal when listed in stageSources.
type Stage string

const (
	StageDraft               Stage = "Draft"
	StageSubmitted           Stage = "Submitted"
	StageUnderReview         Stage = "UnderReview"
	StageApproved            Stage = "Approved"
	StageRejected            Stage = "Rejected"
	StageReturnedForRevision Stage = "ReturnedForRevision"
	StageUnderAppeal         Stage = "UnderAppeal"
	// StageClosed is a terminal sink set by administrative tooling, never
	// by a workflow transition.
	StageClosed Stage = "Closed"
)

// stageSources lists, per target stage, the stages an instance may come from.
var stageSources = map[Stage][]Stage{
	StageSubmitted:           {StageDraft},
	StageUnderReview:         {StageSubmitted},
	StageApproved:            {StageSubmitted, StageUnderReview},
	StageRejected:            {StageSubmitted, StageUnderReview},
	StageReturnedForRevision: {StageSubmitted, StageUnderReview},
	StageUnderAppeal:         {StageRejected, StageApproved},
}

// AllowedSources returns the stages from which target may be entered.
func AllowedSources(target Stage) []Stage {
	sources := stageSources[target]
	out := make([]Stage, len(sources))
	copy(out, sources)
	return out
}

// CanEnter reports whether an instance in stage from may move to target.
func CanEnter(target, from Stage) bool {
	for _, source := range stageSources[target] {
		if source == from {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known lifecycle stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageDraft, StageSubmitted, StageUnderReview, StageApproved,
		StageRejected, StageReturnedForRevision, StageUnderAppeal, StageClosed:
		return true
	}
	return false
}

// ReleasesSlot reports whether an instance in this stage frees the
// (user, form) pair to create a new instance.
func (s Stage) ReleasesSlot() bool {
	return s == StageRejected || s == StageClosed
}

// FormInstance is one user's submission against a published form.
type FormInstance struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FormID           uint       `gorm:"not null;index" json:"form_id"`
	UserID           string     `gorm:"size:16;not null;index" json:"user_id"`
	CurrentStage     Stage      `gorm:"size:32;not null;default:Draft" json:"current_stage"`
	TotalScore       *float64   `json:"total_score"`
	SubmissionDate   *time.Time `json:"submission_date"`
	Comments         string     `gorm:"type:text" json:"comments"`
	CreatedAt        time.Time  `json:"created_at"`
	LastModifiedDate time.Time  `json:"last_modified_date"`
}
