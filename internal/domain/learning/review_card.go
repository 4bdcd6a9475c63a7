package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/recallery/recallery-backend/internal/domain/user"
)

// Card memory states. Cards cycle between these indefinitely; there is no
// terminal state.
const (
	CardStateNew        = "new"
	CardStateLearning   = "learning"
	CardStateReview     = "review"
	CardStateRelearning = "relearning"
)

// ReviewCard is the per-(user, card) memory state driven by the scheduler.
// Stability is the memory decay time-constant in days and stays positive;
// DueAt never precedes LastReviewedAt.
type ReviewCard struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_review_card_user_due" json:"user_id"`
	User     *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	LessonID uuid.UUID  `gorm:"type:uuid;not null;index" json:"lesson_id"`

	State          string     `gorm:"column:state;not null;default:new" json:"state"`
	Stability      float64    `gorm:"column:stability;not null;default:1" json:"stability"`
	Difficulty     float64    `gorm:"column:difficulty;not null;default:5" json:"difficulty"`
	DueAt          time.Time  `gorm:"column:due_at;not null;index:idx_review_card_user_due" json:"due_at"`
	ScheduledDays  float64    `gorm:"column:scheduled_days;not null;default:0" json:"scheduled_days"`
	ElapsedDays    float64    `gorm:"column:elapsed_days;not null;default:0" json:"elapsed_days"`
	Reps           int        `gorm:"column:reps;not null;default:0" json:"reps"`
	Lapses         int        `gorm:"column:lapses;not null;default:0" json:"lapses"`
	LastReviewedAt *time.Time `gorm:"column:last_reviewed_at" json:"last_reviewed_at,omitempty"`

	ConceptIDs datatypes.JSON `gorm:"type:jsonb;column:concept_ids" json:"concept_ids,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReviewCard) TableName() string { return "review_card" }

// TopicKey groups cards of the same course+lesson unit for interleaving.
func (c *ReviewCard) TopicKey() string {
	return c.CourseID.String() + ":" + c.LessonID.String()
}
