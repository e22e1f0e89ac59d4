package models

// FormSection is one node in a form's section tree. A nil ParentSectionID
// marks a root; Level is 1 for roots and parent.Level+1 otherwise.
type FormSection struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	FormID            uint     `gorm:"not null;index" json:"form_id"`
	ParentSectionID   *uint    `gorm:"index" json:"parent_section_id"`
	Level             int      `gorm:"not null" json:"level"`
	OrderIndex        int      `gorm:"not null" json:"order_index"`
	Title             string   `gorm:"size:255;not null" json:"title"`
	Description       string   `gorm:"type:text" json:"description"`
	Explanation       string   `gorm:"type:text" json:"explanation"`
	MaxPoints         *float64 `json:"max_points"`
	ResponsiblePerson string   `gorm:"size:16;index" json:"responsible_person"`
	IsRequired        bool     `gorm:"not null;default:false" json:"is_required"`
	IsVisible         bool     `gorm:"not null;default:true" json:"is_visible"`
	MaxOccurrences    *int     `json:"max_occurrences"`
	Fields            []SectionField
}

// IsRoot reports whether the section sits at the top of the hierarchy.
func (s FormSection) IsRoot() bool {
	return s.ParentSectionID == nil
}
