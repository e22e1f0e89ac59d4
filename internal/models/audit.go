package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEntry records one actor action against an entity. Writes are
// fire-and-forget; a failed write never fails the triggering operation.
type AuditEntry struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    string            `gorm:"size:16;not null;index" json:"actor_id"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt  time.Time         `json:"created_at"`
}
