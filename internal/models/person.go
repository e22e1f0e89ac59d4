package models

import "time"

// Person roles consulted by the authorization layer.
const (
	RoleAdmin           = "admin"
	RoleCommitteeMember = "committee"
	RoleInstructor      = "instructor"
)

// Person is a system user identified by an institutional id.
type Person struct {
	ID           string    `gorm:"primaryKey;size:16" json:"id"`
	FirstName    string    `gorm:"size:64;not null" json:"first_name"`
	LastName     string    `gorm:"size:64;not null" json:"last_name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;default:instructor" json:"role"`
	DepartmentID *uint     `json:"department_id"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName joins the person's first and last names.
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}
