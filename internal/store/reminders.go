package store

import (
	"context"
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"gorm.io/gorm"
)

// ReminderFilter narrows ListReminders.
type ReminderFilter struct {
	ProfileID        *uint
	IncludeCompleted bool
}

// GetReminder loads one reminder.
func (s *Store) GetReminder(ctx context.Context, id uint) (*model.Reminder, error) {
	var r model.Reminder
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReminders returns reminders ordered by due time.
func (s *Store) ListReminders(ctx context.Context, f ReminderFilter) ([]model.Reminder, error) {
	q := s.db.WithContext(ctx).Order("remind_at ASC, id ASC")
	if f.ProfileID != nil {
		q = q.Where("profile_id = ?", *f.ProfileID)
	}
	if !f.IncludeCompleted {
		q = q.Where("completed = ?", false)
	}

	reminders := []model.Reminder{}
	if err := q.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// PendingReminders returns every reminder that is not completed.
func (s *Store) PendingReminders(ctx context.Context) ([]model.Reminder, error) {
	return s.ListReminders(ctx, ReminderFilter{})
}

// SaveReminder creates or overwrites a reminder and returns its ID.
func (s *Store) SaveReminder(ctx context.Context, r *model.Reminder) (uint, error) {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return 0, err
	}
	return r.ID, nil
}

// SnoozeReminder moves a reminder to a new time and records its new notification handle.
func (s *Store) SnoozeReminder(ctx context.Context, id uint, until time.Time, notificationID string) error {
	return s.updateReminder(ctx, id, map[string]interface{}{
		"remind_at":       until,
		"notification_id": notificationID,
	})
}

// CompleteReminder marks a reminder done and clears its notification handle.
func (s *Store) CompleteReminder(ctx context.Context, id uint, at time.Time) error {
	return s.updateReminder(ctx, id, map[string]interface{}{
		"completed":       true,
		"completed_at":    at,
		"notification_id": "",
	})
}

// SetReminderNotification records the notification handle of a reminder.
func (s *Store) SetReminderNotification(ctx context.Context, id uint, notificationID string) error {
	return s.updateReminder(ctx, id, map[string]interface{}{"notification_id": notificationID})
}

// ClearReminderNotification empties the notification handle of a reminder
// while it still equals notificationID. A handle changed in the meantime is
// left alone.
func (s *Store) ClearReminderNotification(ctx context.Context, id uint, notificationID string) error {
	return s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND notification_id = ?", id, notificationID).
		Update("notification_id", "").Error
}

// DeleteReminder removes a reminder.
func (s *Store) DeleteReminder(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Reminder{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) updateReminder(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
