package model

import (
	"errors"
	"time"
)

type UserRole string // wire names match the dashboard client

const (
	RoleAdmin      UserRole = "System Administrator"
	RoleNormalUser UserRole = "Normal User"
	RoleStoreOwner UserRole = "Store Owner"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseUserRole maps a wire value to a role. Empty input yields RoleNormalUser.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case "":
		return RoleNormalUser, nil
	case RoleAdmin, RoleNormalUser, RoleStoreOwner:
		return UserRole(s), nil
	default:
		return "", ErrUnknownRole
	}
}

// Valid reports whether r is one of the three known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleNormalUser, RoleStoreOwner:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(60);not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Address      string    `gorm:"type:varchar(400)" json:"address"`
	Role         UserRole  `gorm:"type:varchar(32);not null;default:'Normal User';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
