package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/recallery/recallery-backend/internal/domain/user"
)

const (
	KnowledgeGapOpen     = "open"
	KnowledgeGapResolved = "resolved"
)

// KnowledgeGap marks a concept a user repeatedly missed. Gaps are resolved
// best-effort when mastery recovers past the configured threshold.
type KnowledgeGap struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_gap_user_concept" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ConceptID uuid.UUID  `gorm:"type:uuid;not null;index:idx_gap_user_concept" json:"concept_id"`

	Status     string         `gorm:"column:status;not null;default:open" json:"status"`
	ResolvedAt *time.Time     `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (KnowledgeGap) TableName() string { return "knowledge_gap" }
