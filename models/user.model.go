package models

import (
	"time"

	"gorm.io/gorm"
)

// Role codes, shared with the client's session handling.
const (
	RoleUser       = 0
	RoleAdmin      = 1
	RoleStaff      = 3
	RoleSuperAdmin = 4
)

type User struct {
	gorm.Model
	Name      string    `gorm:"default:''"`
	Email     string    `gorm:"unique;not null"`
	Password  string    `gorm:"not null"`
	Role      int       `gorm:"default:0"`
	LastLogin time.Time `gorm:"default:NULL"`
	IsDeleted bool      `gorm:"default:false"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin || u.Role == RoleSuperAdmin }
