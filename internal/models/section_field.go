package models

// Field types recognised by the structure validator. Choice types
// (select, radio, checkbox) must carry at least one option.
const (
	FieldTypeText     = "text"
	FieldTypeNumber   = "number"
	FieldTypeSelect   = "select"
	FieldTypeRadio    = "radio"
	FieldTypeCheckbox = "checkbox"
	FieldTypeDate     = "date"
	FieldTypeTextarea = "textarea"
)

// DefaultTextMaxLength applies to text fields created without an explicit
// positive max length.
const DefaultTextMaxLength = 255

// SectionField is a leaf input inside a form section.
type SectionField struct {
	ID                   uint     `gorm:"primaryKey" json:"id"`
	SectionID            uint     `gorm:"not null;index" json:"section_id"`
	Name                 string   `gorm:"size:128;not null" json:"name"`
	Label                string   `gorm:"size:255;not null" json:"label"`
	FieldType            string   `gorm:"size:32;not null" json:"field_type"`
	IsRequired           bool     `gorm:"not null;default:false" json:"is_required"`
	DefaultValue         string   `gorm:"size:512" json:"default_value"`
	Placeholder          string   `gorm:"size:255" json:"placeholder"`
	HelpText             string   `gorm:"type:text" json:"help_text"`
	OrderIndex           int      `gorm:"not null" json:"order_index"`
	IsVisible            bool     `gorm:"not null;default:true" json:"is_visible"`
	MaxLength            *int     `json:"max_length"`
	MinValue             *float64 `json:"min_value"`
	MaxValue             *float64 `json:"max_value"`
	ScoreCalculationRule string   `gorm:"size:255" json:"score_calculation_rule"`
	IsActive             bool     `gorm:"not null;default:true" json:"is_active"`
	Options              []FieldOption
}

// IsChoice reports whether the field requires a predefined option list.
func (f SectionField) IsChoice() bool {
	switch f.FieldType {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	}
	return false
}

// FieldOption is one selectable value for a choice field.
type FieldOption struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	FieldID    uint     `gorm:"not null;index" json:"field_id"`
	Value      string   `gorm:"size:255;not null" json:"value"`
	Label      string   `gorm:"size:255;not null" json:"label"`
	ScoreValue *float64 `json:"score_value"`
	OrderIndex int      `gorm:"not null" json:"order_index"`
	IsDefault  bool     `gorm:"not null;default:false" json:"is_default"`
}
