package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/recallery/recallery-backend/internal/srs"
)

// Config bounds one generated practice session.
type Config struct {
	CardCount               int  `yaml:"card_count"`
	MaxConsecutiveSameTopic int  `yaml:"max_consecutive_same_topic"`
	MaxNewCards             int  `yaml:"max_new_cards"`
	PrioritizeLowMastery    bool `yaml:"prioritize_low_mastery"`
}

func DefaultConfig() Config {
	return Config{
		CardCount:               20,
		MaxConsecutiveSameTopic: 2,
		MaxNewCards:             5,
		PrioritizeLowMastery:    true,
	}
}

// Candidate wraps one card with the session-building inputs derived for it.
// LessonMastery is a snapshot taken when the pool was loaded; PriorityScore is
// filled in by Score.
type Candidate struct {
	CardID         uuid.UUID
	State          srs.State
	DueAt          time.Time
	LastReviewedAt time.Time // zero if never reviewed
	Lapses         int
	TopicKey       string
	LessonMastery  float64
	PriorityScore  float64
}

// Tuning holds the scorer's weights. All terms are additive; higher scores
// mean more urgent.
type Tuning struct {
	DueBonus          float64 `yaml:"due_bonus"`
	OverduePerDay     float64 `yaml:"overdue_per_day"`
	OverdueCapDays    float64 `yaml:"overdue_cap_days"`
	NewCardBonus      float64 `yaml:"new_card_bonus"`
	NotYetDuePenalty  float64 `yaml:"not_yet_due_penalty"`
	RecentWindowHours float64 `yaml:"recent_window_hours"`
	RecentPenalty     float64 `yaml:"recent_penalty"`
	WeakThreshold     float64 `yaml:"weak_threshold"`
	WeakWeight        float64 `yaml:"weak_weight"`
	LapseThreshold    int     `yaml:"lapse_threshold"`
	LapseWeight       float64 `yaml:"lapse_weight"`
	LapseCap          int     `yaml:"lapse_cap"`
}

func DefaultTuning() Tuning {
	return Tuning{
		DueBonus:          100,
		OverduePerDay:     2,
		OverdueCapDays:    14,
		NewCardBonus:      50,
		NotYetDuePenalty:  -10,
		RecentWindowHours: 12,
		RecentPenalty:     -5,
		WeakThreshold:     0.4,
		WeakWeight:        30,
		LapseThreshold:    3,
		LapseWeight:       4,
		LapseCap:          10,
	}
}
