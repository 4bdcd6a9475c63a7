package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recallery/recallery-backend/internal/domain/user"
)

// ReviewLog is the append-only history row written once per review.
type ReviewLog struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CardID uuid.UUID  `gorm:"type:uuid;not null;index" json:"card_id"`

	Rating        int       `gorm:"column:rating;not null" json:"rating"`
	StateBefore   string    `gorm:"column:state_before;not null" json:"state_before"`
	StateAfter    string    `gorm:"column:state_after;not null" json:"state_after"`
	ElapsedDays   float64   `gorm:"column:elapsed_days;not null" json:"elapsed_days"`
	ScheduledDays float64   `gorm:"column:scheduled_days;not null" json:"scheduled_days"`
	ReviewedAt    time.Time `gorm:"column:reviewed_at;not null" json:"reviewed_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReviewLog) TableName() string { return "review_log" }
