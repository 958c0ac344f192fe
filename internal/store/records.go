package store

import (
	"context"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/pathakanu/myCircle/internal/remote"
	"gorm.io/gorm"
)

// AddInteraction appends an interaction and returns its ID.
func (s *Store) AddInteraction(ctx context.Context, in *model.Interaction) (uint, error) {
	if err := s.db.WithContext(ctx).Create(in).Error; err != nil {
		return 0, err
	}
	return in.ID, nil
}

// ListInteractions returns a profile's interactions, newest first.
func (s *Store) ListInteractions(ctx context.Context, profileID uint) ([]model.Interaction, error) {
	out := []model.Interaction{}
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("occurred_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddLifeEvent appends a life event and returns its ID.
func (s *Store) AddLifeEvent(ctx context.Context, ev *model.LifeEvent) (uint, error) {
	if err := s.db.WithContext(ctx).Create(ev).Error; err != nil {
		return 0, err
	}
	return ev.ID, nil
}

// ListLifeEvents returns a profile's life events in date order.
func (s *Store) ListLifeEvents(ctx context.Context, profileID uint) ([]model.LifeEvent, error) {
	out := []model.LifeEvent{}
	err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitFeedback stores a feedback entry with status "new" and mirrors it.
func (s *Store) SubmitFeedback(ctx context.Context, f *model.Feedback) (uint, error) {
	f.Status = model.FeedbackNew
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return 0, err
	}

	snapshot := *f
	s.mirrorAsync("push_feedback", func(ctx context.Context, m remote.Mirror, session remote.Session) error {
		return m.PushFeedback(ctx, session, snapshot)
	})
	return f.ID, nil
}

// ListFeedback returns feedback entries, newest first. An empty status matches all.
func (s *Store) ListFeedback(ctx context.Context, status string) ([]model.Feedback, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []model.Feedback{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SetFeedbackStatus updates the status of a feedback entry.
func (s *Store) SetFeedbackStatus(ctx context.Context, id uint, status string) error {
	res := s.db.WithContext(ctx).Model(&model.Feedback{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
