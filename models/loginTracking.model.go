package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking records every login attempt. UserID is zero when the email
// matched no account.
type LoginTracking struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ip_address"`
	Device    string    `json:"device"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}
