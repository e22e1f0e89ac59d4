package models

import "time"

// Notification kinds raised by the instance workflow.
const (
	NotificationTypeSubmission   = "submission"
	NotificationTypeStatusChange = "status_change"
	NotificationTypeReminder     = "reminder"
)

// Notification is a persisted message for a user, mirrored to email on a
// best-effort basis.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:16;not null;index" json:"user_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
