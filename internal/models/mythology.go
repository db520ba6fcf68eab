package models

import (
	"time"

	"gorm.io/gorm"
)

// Mythology is a user-authored mythology world: the unit that crossover
// requests and alliances connect.
type Mythology struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name        string         `gorm:"size:120;not null" json:"name"`
	Slug        string         `gorm:"size:24;not null;uniqueIndex" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Theme       string         `gorm:"size:60" json:"theme"`
	IsPublic    bool           `gorm:"default:true" json:"is_public"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Figures []Figure `gorm:"foreignKey:MythologyID" json:"figures,omitempty"`
}

// TableName specifies the table name for GORM.
func (Mythology) TableName() string {
	return "mythologies"
}
