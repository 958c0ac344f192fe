package remote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type remoteProfile struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    string         `gorm:"uniqueIndex:idx_remote_profiles_owner;not null"`
	LocalID   uint           `gorm:"uniqueIndex:idx_remote_profiles_owner;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

func (remoteProfile) TableName() string { return "remote_profiles" }

type remoteFeedback struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	LocalID   uint
	Message   string `gorm:"type:text;not null"`
	Category  string `gorm:"type:text"`
	CreatedAt time.Time
}

func (remoteFeedback) TableName() string { return "remote_feedback" }

// DBMirror writes straight into the backend's database (PostgreSQL in production).
type DBMirror struct {
	db *gorm.DB
}

// NewDB migrates the mirror tables and returns the mirror.
func NewDB(db *gorm.DB) (*DBMirror, error) {
	if err := db.AutoMigrate(&remoteProfile{}, &remoteFeedback{}); err != nil {
		return nil, err
	}
	return &DBMirror{db: db}, nil
}

// PushProfile upserts the profile payload keyed by user and local id.
func (m *DBMirror) PushProfile(ctx context.Context, s Session, p model.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	row := remoteProfile{
		UserID:    s.UserID,
		LocalID:   p.ID,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: time.Now().UTC(),
	}
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "local_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}

// DeleteProfile removes the mirrored profile.
func (m *DBMirror) DeleteProfile(ctx context.Context, s Session, profileID uint) error {
	return m.db.WithContext(ctx).
		Where("user_id = ? AND local_id = ?", s.UserID, profileID).
		Delete(&remoteProfile{}).Error
}

// PushFeedback appends a feedback row.
func (m *DBMirror) PushFeedback(ctx context.Context, s Session, f model.Feedback) error {
	return m.db.WithContext(ctx).Create(&remoteFeedback{
		UserID:   s.UserID,
		LocalID:  f.ID,
		Message:  f.Message,
		Category: f.Category,
	}).Error
}
