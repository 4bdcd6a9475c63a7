package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/recallery/recallery-backend/internal/domain/user"
)

// ConceptMastery is the per-(user, concept) mastery record. TotalExposures
// doubles as the optimistic-lock version counter: every write bumps it and
// every conditional update is keyed on the value read. PeakMastery is a
// monotonic high-water mark and never drops below MasteryLevel.
type ConceptMastery struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_concept,unique" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ConceptID uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_concept,unique" json:"concept_id"`

	MasteryLevel      float64 `gorm:"column:mastery_level;not null" json:"mastery_level"`
	PeakMastery       float64 `gorm:"column:peak_mastery;not null" json:"peak_mastery"`
	TotalExposures    int     `gorm:"column:total_exposures;not null;default:0" json:"total_exposures"`
	SuccessfulRecalls int     `gorm:"column:successful_recalls;not null;default:0" json:"successful_recalls"`

	LastExposedAt *time.Time     `gorm:"column:last_exposed_at" json:"last_exposed_at,omitempty"`
	Metadata      datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptMastery) TableName() string { return "concept_mastery" }
