package model

import "time"

// Interaction kinds.
const (
	InteractionCall    = "call"
	InteractionMessage = "message"
	InteractionMeeting = "meeting"
	InteractionOther   = "other"
)

// Interaction is a logged contact with a profile.
type Interaction struct {
	ID         uint      `gorm:"primaryKey"`
	ProfileID  uint      `gorm:"index;not null"`
	Kind       string    `gorm:"type:text;not null"`
	Notes      string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// LifeEvent is a milestone in a profile's life.
type LifeEvent struct {
	ID          uint      `gorm:"primaryKey"`
	ProfileID   uint      `gorm:"index;not null"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	Date        time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Feedback statuses.
const (
	FeedbackNew      = "new"
	FeedbackReviewed = "reviewed"
	FeedbackResolved = "resolved"
)

// Feedback is a standalone note about the app itself.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Category  string    `gorm:"type:text" json:"category,omitempty"`
	Status    string    `gorm:"type:text;not null;default:new" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName keeps the singular table name.
func (Feedback) TableName() string { return "feedback" }
