package store

import (
	"context"
	"strings"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/pathakanu/myCircle/internal/remote"
	"gorm.io/gorm"
)

// ProfileFilter narrows ListProfiles. Zero values match everything.
type ProfileFilter struct {
	Relationship string
	Query        string
}

// GetProfile loads one profile.
func (s *Store) GetProfile(ctx context.Context, id uint) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// ListProfiles returns profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context, f ProfileFilter) ([]model.Profile, error) {
	q := s.db.WithContext(ctx).Order("name COLLATE NOCASE ASC")
	if f.Relationship != "" {
		q = q.Where("relationship = ?", f.Relationship)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(notes) LIKE ? OR LOWER(tags) LIKE ?", like, like, like)
	}

	profiles := []model.Profile{}
	if err := q.Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].Normalize()
	}
	return profiles, nil
}

// SaveProfile creates the profile when its ID is zero and otherwise overwrites
// every column of the existing row. It returns the profile ID.
func (s *Store) SaveProfile(ctx context.Context, p *model.Profile) (uint, error) {
	p.Normalize()
	db := s.db.WithContext(ctx)

	if p.ID == 0 {
		if err := db.Create(p).Error; err != nil {
			return 0, err
		}
	} else {
		res := db.Model(p).Select("*").Omit("id", "created_at").Updates(p)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, gorm.ErrRecordNotFound
		}
	}

	snapshot := *p
	s.mirrorAsync("push_profile", func(ctx context.Context, m remote.Mirror, session remote.Session) error {
		return m.PushProfile(ctx, session, snapshot)
	})
	return p.ID, nil
}

// DeleteProfile removes a profile together with its reminders, interactions
// and life events.
func (s *Store) DeleteProfile(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&model.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&model.Interaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&model.LifeEvent{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Profile{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mirrorAsync("delete_profile", func(ctx context.Context, m remote.Mirror, session remote.Session) error {
		return m.DeleteProfile(ctx, session, id)
	})
	return nil
}
