package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Name          string `gorm:"not null"`
	Role          string `gorm:"default:'user'"` // user, reviewer, admin
	Status        string `gorm:"default:'active'"`
	KYCVerified   bool   `gorm:"default:false"`
	KYCVerifiedAt *time.Time
}

// AccountAgeDays returns how many whole days ago the account was created.
func (u *User) AccountAgeDays(now time.Time) int {
	return int(now.Sub(u.CreatedAt).Hours() / 24)
}
