package database

import (
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"gorm.io/gorm"
)

// SeedMockData fills an empty database with sample profiles for the in-memory fallback.
func SeedMockData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Profile{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		profiles := []model.Profile{
			{
				Name:         "Maya Patel",
				Age:          31,
				Relationship: model.RelationshipFriend,
				Job:          "Architect",
				Notes:        "Met at the climbing gym.",
				Tags:         model.TagList{{Name: "climbing", Color: "#4caf50"}},
				Likes:        model.StringList{"bouldering", "masala chai"},
				Interests:    model.StringList{"urban design"},
				SocialMedia:  model.SocialList{{Platform: "instagram", Handle: "@maya.climbs"}},
			},
			{
				Name:         "Arjun Pathak",
				Age:          58,
				Relationship: model.RelationshipFamily,
				Job:          "Teacher",
				Kids:         model.StringList{"Anu", "Ravi"},
				Likes:        model.StringList{"cricket"},
			},
			{
				Name:         "Lena Fischer",
				Relationship: model.RelationshipCoworker,
				Job:          "Product manager",
				Dislikes:     model.StringList{"early meetings"},
			},
		}
		for i := range profiles {
			profiles[i].Normalize()
			if err := tx.Create(&profiles[i]).Error; err != nil {
				return err
			}
		}

		due := time.Now().Add(24 * time.Hour)
		reminder := model.Reminder{
			ProfileID: &profiles[0].ID,
			Title:     "Ask Maya about the competition",
			RemindAt:  due,
		}
		return tx.Create(&reminder).Error
	})
}
