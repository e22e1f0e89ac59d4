package models

import "time"

// FieldValue holds the value a user entered for one field of one instance.
type FieldValue struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InstanceID uint      `gorm:"not null;index:idx_instance_field,unique" json:"instance_id"`
	FieldID    uint      `gorm:"not null;index:idx_instance_field,unique" json:"field_id"`
	Value      string    `gorm:"type:text" json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}
