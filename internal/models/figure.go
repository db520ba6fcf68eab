package models

import "time"

// FigureKind distinguishes the beings that populate a mythology.
type FigureKind string

const (
	// FigureKindCharacter is a god, hero, or mortal.
	FigureKindCharacter FigureKind = "character"
	// FigureKindCreature is a beast or monster.
	FigureKindCreature FigureKind = "creature"
)

// ValidFigureKind reports whether k is a recognized figure kind.
func ValidFigureKind(k FigureKind) bool {
	return k == FigureKindCharacter || k == FigureKindCreature
}

// Figure is a character or creature belonging to one mythology world.
type Figure struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	MythologyID uint       `gorm:"not null;index" json:"mythology_id"`
	Mythology   *Mythology `gorm:"foreignKey:MythologyID" json:"mythology,omitempty"`
	Kind        FigureKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Name        string     `gorm:"size:120;not null" json:"name"`
	Title       string     `gorm:"size:120" json:"title"`
	Domain      string     `gorm:"size:120" json:"domain"`
	Description string     `gorm:"type:text" json:"description"`
	ImageURL    string     `json:"image_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
