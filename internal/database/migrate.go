package database

import (
	"github.com/pathakanu/myCircle/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Tables in creation order.
var tables = []interface{}{
	&model.Profile{},
	&model.Interaction{},
	&model.Reminder{},
	&model.LifeEvent{},
	&model.Feedback{},
}

// profile list columns that older databases lack
var listColumns = []string{
	"tags",
	"parents",
	"kids",
	"siblings",
	"likes",
	"dislikes",
	"interests",
	"social_media",
}

// Migrate creates missing tables and adds missing columns. It never drops anything.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	m := db.Migrator()

	var added []string
	if m.HasTable(&model.Profile{}) {
		for _, col := range listColumns {
			if !m.HasColumn(&model.Profile{}, col) {
				added = append(added, col)
			}
		}
	}

	if err := db.AutoMigrate(tables...); err != nil {
		return err
	}
	for _, col := range added {
		log.Info().Str("table", "profiles").Str("column", col).Msg("schema: added column")
	}

	// rows that predate a list column hold NULL
	for _, col := range listColumns {
		err := db.Model(&model.Profile{}).
			Where(col + " IS NULL OR " + col + " = ''").
			UpdateColumn(col, "[]").Error
		if err != nil {
			return err
		}
	}
	return nil
}
