package models

import "time"

// Form defines an excellence submission form for one academic year.
// Structure (sections, fields, options) may only change while the form
// is unpublished.
type Form struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:255;not null" json:"name"`
	Description      string     `gorm:"type:text" json:"description"`
	Instructions     string     `gorm:"type:text" json:"instructions"`
	AcademicYear     string     `gorm:"size:16;not null" json:"academic_year"`
	Semester         string     `gorm:"size:1" json:"semester"`
	StartDate        *time.Time `json:"start_date"`
	DueDate          *time.Time `json:"due_date"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	IsPublished      bool       `gorm:"not null;default:false" json:"is_published"`
	CreatedBy        string     `gorm:"size:16;not null" json:"created_by"`
	LastModifiedBy   string     `gorm:"size:16" json:"last_modified_by"`
	CreatedAt        time.Time  `json:"created_at"`
	LastModifiedDate time.Time  `json:"last_modified_date"`
	Sections         []FormSection
}

// IsOpen reports whether the form currently accepts new instances.
func (f Form) IsOpen() bool {
	return f.IsActive && f.IsPublished
}
