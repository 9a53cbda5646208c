package identity

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type Role string

const (
	RoleUser     Role = "USER"
	RoleVerifier Role = "VERIFIER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts any casing and rejects roles outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleVerifier, RoleAdmin:
		return r, true
	}
	return "", false
}

// Staff reports whether the role reviews applications rather than submits them.
func (r Role) Staff() bool { return r == RoleVerifier || r == RoleAdmin }

// Subject is an authenticated caller.
type Subject struct {
	ID   string
	Role Role
}

// Profile is the display identity of a user.
type Profile struct {
	UserID string
	Name   string
	Email  string
}

// Table: users
type User struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       string         `gorm:"column:user_id;type:char(32);not null;uniqueIndex:ux_users_user_id"`
	Name         string         `gorm:"column:name;type:varchar(120);not null"`
	Email        string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(100);not null"`
	Role         Role           `gorm:"column:role;type:varchar(16);not null;index:idx_users_role"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
	DeletedBy    *string        `gorm:"column:deleted_by;type:char(32)"`
}

func (User) TableName() string { return "users" }

func (u *User) Profile() Profile {
	return Profile{UserID: u.UserID, Name: u.Name, Email: u.Email}
}
