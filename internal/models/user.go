// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the Mythology Codex. Accounts are provisioned
// by an administrator (typically a teacher); there is no self-serve signup.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"unique;not null" json:"username"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `gorm:"size:80" json:"display_name"`
	Avatar      string         `json:"avatar"`
	IsAdmin     bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Mythologies []Mythology `gorm:"foreignKey:UserID" json:"mythologies,omitempty"`
}
