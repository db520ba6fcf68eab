package models

import "time"

// CrossoverRequestType determines the side effect applied when a request is
// accepted: alliance/conflict/trade materialize a relationship row, story
// spawns a shared draft.
type CrossoverRequestType string

const (
	// CrossoverRequestTypeAlliance proposes an alliance between two worlds.
	CrossoverRequestTypeAlliance CrossoverRequestType = "alliance"
	// CrossoverRequestTypeConflict proposes a conflict between two worlds.
	CrossoverRequestTypeConflict CrossoverRequestType = "conflict"
	// CrossoverRequestTypeTrade proposes a trade relationship.
	CrossoverRequestTypeTrade CrossoverRequestType = "trade"
	// CrossoverRequestTypeStory proposes a shared crossover story.
	CrossoverRequestTypeStory CrossoverRequestType = "story"
)

// ValidCrossoverRequestType reports whether t is a recognized request type.
func ValidCrossoverRequestType(t CrossoverRequestType) bool {
	switch t {
	case CrossoverRequestTypeAlliance, CrossoverRequestTypeConflict,
		CrossoverRequestTypeTrade, CrossoverRequestTypeStory:
		return true
	}
	return false
}

// CrossoverRequestStatus is the lifecycle state of a crossover request.
// Transitions only occur out of pending; the other three states are terminal.
type CrossoverRequestStatus string

const (
	// CrossoverRequestStatusPending indicates the request awaits a response.
	CrossoverRequestStatusPending CrossoverRequestStatus = "pending"
	// CrossoverRequestStatusAccepted indicates the target accepted.
	CrossoverRequestStatusAccepted CrossoverRequestStatus = "accepted"
	// CrossoverRequestStatusDeclined indicates the target declined.
	CrossoverRequestStatusDeclined CrossoverRequestStatus = "declined"
	// CrossoverRequestStatusCancelled indicates the requester withdrew it.
	CrossoverRequestStatusCancelled CrossoverRequestStatus = "cancelled"
)

// CrossoverRequest is a proposal from one user's mythology world to interact
// with another's. Invariants: requester and target are distinct users, each
// owning the mythology on their side of the request.
type CrossoverRequest struct {
	ID                   uint                   `gorm:"primaryKey" json:"id"`
	RequesterID          uint                   `gorm:"not null;index" json:"requester_id"`
	Requester            *User                  `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	TargetUserID         uint                   `gorm:"not null;index" json:"target_user_id"`
	TargetUser           *User                  `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
	RequesterMythologyID uint                   `gorm:"not null" json:"requester_mythology_id"`
	RequesterMythology   *Mythology             `gorm:"foreignKey:RequesterMythologyID" json:"requester_mythology,omitempty"`
	TargetMythologyID    uint                   `gorm:"not null" json:"target_mythology_id"`
	TargetMythology      *Mythology             `gorm:"foreignKey:TargetMythologyID" json:"target_mythology,omitempty"`
	RequestType          CrossoverRequestType   `gorm:"type:varchar(20);not null" json:"request_type"`
	Status               CrossoverRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Message              string                 `gorm:"type:text" json:"message"`
	ResponseMessage      string                 `gorm:"type:text" json:"response_message"`
	RespondedAt          *time.Time             `json:"responded_at"`
	CompletedAt          *time.Time             `json:"completed_at"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (CrossoverRequest) TableName() string {
	return "crossover_requests"
}
