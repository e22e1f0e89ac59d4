package models

// SectionPermission is an explicit access grant on a section for one person.
// The section's own responsible person needs no grant row; they always hold
// all three rights.
type SectionPermission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SectionID   uint   `gorm:"not null;index" json:"section_id"`
	PersonID    string `gorm:"size:16;not null;index" json:"person_id"`
	CanView     bool   `gorm:"not null;default:false" json:"can_view"`
	CanEdit     bool   `gorm:"not null;default:false" json:"can_edit"`
	CanEvaluate bool   `gorm:"not null;default:false" json:"can_evaluate"`
}
