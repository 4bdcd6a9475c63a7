package db

import (
	types "github.com/recallery/recallery-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},

		// Scheduling state
		&types.ReviewCard{},
		&types.ReviewLog{},

		// Mastery tracking
		&types.ConceptMastery{},
		&types.TopicMastery{},
		&types.KnowledgeGap{},
	)
}
