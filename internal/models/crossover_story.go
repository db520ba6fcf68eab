package models

import "time"

// DefaultCrossoverStoryTitle is the placeholder title given to a story draft
// spawned by an accepted story-type crossover request.
const DefaultCrossoverStoryTitle = "Untitled Crossover Story"

// CrossoverStoryStatus is the editorial state of a crossover story.
type CrossoverStoryStatus string

const (
	// CrossoverStoryStatusDraft is the initial state of every crossover story.
	CrossoverStoryStatusDraft CrossoverStoryStatus = "draft"
	// CrossoverStoryStatusPublished marks a story visible to both worlds' readers.
	CrossoverStoryStatusPublished CrossoverStoryStatus = "published"
)

// CrossoverStory is a shared narrative draft spanning two mythology worlds,
// co-authored by the requester and target of an accepted story request.
type CrossoverStory struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	Mythology1ID uint                 `gorm:"not null;index" json:"mythology1_id"`
	Mythology1   *Mythology           `gorm:"foreignKey:Mythology1ID" json:"mythology1,omitempty"`
	Mythology2ID uint                 `gorm:"not null;index" json:"mythology2_id"`
	Mythology2   *Mythology           `gorm:"foreignKey:Mythology2ID" json:"mythology2,omitempty"`
	Author1ID    uint                 `gorm:"not null" json:"author1_id"`
	Author1      *User                `gorm:"foreignKey:Author1ID" json:"author1,omitempty"`
	Author2ID    uint                 `gorm:"not null" json:"author2_id"`
	Author2      *User                `gorm:"foreignKey:Author2ID" json:"author2,omitempty"`
	Title        string               `gorm:"size:200;not null" json:"title"`
	StoryType    string               `gorm:"size:20;not null;default:'crossover'" json:"story_type"`
	Status       CrossoverStoryStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Content      string               `gorm:"type:text" json:"content"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (CrossoverStory) TableName() string {
	return "crossover_stories"
}
