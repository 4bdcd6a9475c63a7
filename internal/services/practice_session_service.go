package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recallery/recallery-backend/internal/data/repos"
	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/platform/logger"
	"github.com/recallery/recallery-backend/internal/session"
	"github.com/recallery/recallery-backend/internal/srs"
)

// PracticeSessionService assembles interleaved practice sessions from the
// user's due and new cards.
type PracticeSessionService struct {
	db     *gorm.DB
	log    *logger.Logger
	cards  repos.ReviewCardRepo
	topics repos.TopicMasteryRepo
	tuning session.Tuning

	// seed feeds the shuffle rng; injectable for reproducible tests.
	seed func() int64
}

func NewPracticeSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cards repos.ReviewCardRepo,
	topics repos.TopicMasteryRepo,
	tuning session.Tuning,
) *PracticeSessionService {
	return &PracticeSessionService{
		db:     db,
		log:    baseLog.With("service", "PracticeSessionService"),
		cards:  cards,
		topics: topics,
		tuning: tuning,
		seed:   func() int64 { return time.Now().UnixNano() },
	}
}

// BuildSession scores the candidate pool, picks the most urgent cards under
// the session's caps, and orders them so no topic runs past the configured
// limit. The returned cards are in presentation order.
func (s *PracticeSessionService) BuildSession(ctx context.Context, userID uuid.UUID, cfg session.Config) ([]*types.ReviewCard, error) {
	now := time.Now().UTC()

	due, err := s.cards.ListDueByUser(ctx, nil, userID, now, 0)
	if err != nil {
		return nil, fmt.Errorf("list due cards: %w", err)
	}
	fresh, err := s.cards.ListNewByUser(ctx, nil, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list new cards: %w", err)
	}
	masterySnapshot, err := s.topics.SnapshotByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load topic mastery: %w", err)
	}

	pool := append(due, fresh...)
	byID := make(map[uuid.UUID]*types.ReviewCard, len(pool))
	candidates := make([]session.Candidate, 0, len(pool))
	for _, card := range pool {
		byID[card.ID] = card
		c := session.Candidate{
			CardID:        card.ID,
			State:         srs.State(card.State),
			DueAt:         card.DueAt,
			Lapses:        card.Lapses,
			TopicKey:      card.TopicKey(),
			LessonMastery: masterySnapshot[card.TopicKey()],
		}
		if card.LastReviewedAt != nil {
			c.LastReviewedAt = *card.LastReviewedAt
		}
		candidates = append(candidates, c)
	}

	tuning := s.tuning
	if !cfg.PrioritizeLowMastery {
		tuning.WeakWeight = 0
	}

	session.ScoreAll(candidates, now, tuning)
	selected := session.SelectByPriority(candidates, cfg)
	ordered := session.ShuffleWithConstraint(selected, cfg.MaxConsecutiveSameTopic, rand.New(rand.NewSource(s.seed())))

	out := make([]*types.ReviewCard, 0, len(ordered))
	for _, c := range ordered {
		out = append(out, byID[c.CardID])
	}

	s.log.Debug("built practice session",
		"user_id", userID, "pool", len(pool), "selected", len(out))
	return out, nil
}
