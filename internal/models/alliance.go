package models

import "time"

// AllianceRelationship is the durable relationship kind between two worlds.
type AllianceRelationship string

const (
	// AllianceRelationshipAlliance marks the worlds as allies.
	AllianceRelationshipAlliance AllianceRelationship = "alliance"
	// AllianceRelationshipConflict marks the worlds as in conflict.
	AllianceRelationshipConflict AllianceRelationship = "conflict"
	// AllianceRelationshipTradePartners marks the worlds as trade partners.
	AllianceRelationshipTradePartners AllianceRelationship = "trade_partners"
)

// RelationshipForRequestType maps an accepted request's type to the
// relationship it materializes. Story requests materialize no relationship.
func RelationshipForRequestType(t CrossoverRequestType) (AllianceRelationship, bool) {
	switch t {
	case CrossoverRequestTypeAlliance:
		return AllianceRelationshipAlliance, true
	case CrossoverRequestTypeConflict:
		return AllianceRelationshipConflict, true
	case CrossoverRequestTypeTrade:
		return AllianceRelationshipTradePartners, true
	}
	return "", false
}

// MythologyAlliance is the single relationship row for an unordered pair of
// mythology worlds. The pair is stored canonically with the smaller id first
// so at most one row exists per pair; re-accepting a request between the same
// worlds retypes and reactivates the row instead of duplicating it.
type MythologyAlliance struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	Mythology1ID        uint                 `gorm:"not null;uniqueIndex:idx_alliance_pair" json:"mythology1_id"`
	Mythology1          *Mythology           `gorm:"foreignKey:Mythology1ID" json:"mythology1,omitempty"`
	Mythology2ID        uint                 `gorm:"not null;uniqueIndex:idx_alliance_pair" json:"mythology2_id"`
	Mythology2          *Mythology           `gorm:"foreignKey:Mythology2ID" json:"mythology2,omitempty"`
	RelationshipType    AllianceRelationship `gorm:"type:varchar(20);not null" json:"relationship_type"`
	IsActive            bool                 `gorm:"default:true" json:"is_active"`
	FormedFromRequestID uint                 `json:"formed_from_request_id"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (MythologyAlliance) TableName() string {
	return "mythology_alliances"
}

// CanonicalPair orders two mythology ids so the smaller id comes first.
// Any total order suffices here; numeric order of the primary keys is used.
func CanonicalPair(a, b uint) (uint, uint) {
	if a <= b {
		return a, b
	}
	return b, a
}
