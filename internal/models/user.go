package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access tier attached to a user identity.
type Role string

const (
	RoleStudent   Role = "student"
	RoleAuthority Role = "authority"
	RoleAdmin     Role = "admin"
)

// SupervisorRoles may read and update every complaint.
var SupervisorRoles = []Role{RoleAdmin, RoleAuthority}

// ParseRole validates a role label. An empty label yields the least-privileged role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleStudent, true
	case RoleStudent, RoleAuthority, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// IsSupervisor reports whether the role has supervisory access to all complaints.
func (r Role) IsSupervisor() bool {
	return r == RoleAdmin || r == RoleAuthority
}

// User is a registered account. Password holds the bcrypt hash and never leaves the server.
type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:text;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the ID is still empty.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
