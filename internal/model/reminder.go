package model

import "time"

// Reminder is a scheduled follow-up, optionally tied to a profile.
type Reminder struct {
	ID             uint      `gorm:"primaryKey"`
	ProfileID      *uint     `gorm:"index"`
	Title          string    `gorm:"type:text;not null"`
	Description    string    `gorm:"type:text"`
	RemindAt       time.Time `gorm:"index;not null"`
	Completed      bool      `gorm:"not null;default:false"`
	CompletedAt    *time.Time
	NotificationID string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
