package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/recallery/recallery-backend/internal/data/repos"
	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/mastery"
	pkgerrors "github.com/recallery/recallery-backend/internal/pkg/errors"
	"github.com/recallery/recallery-backend/internal/platform/logger"
	"github.com/recallery/recallery-backend/internal/srs"
)

const masteryUpdateConcurrency = 4

// ReviewService records review submissions: it runs the scheduler over the
// card's memory state, persists the result, and folds the outcome into every
// linked concept's mastery record.
type ReviewService struct {
	db        *gorm.DB
	log       *logger.Logger
	scheduler *srs.Scheduler
	updater   *mastery.Updater
	cards     repos.ReviewCardRepo
	logs      repos.ReviewLogRepo
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	scheduler *srs.Scheduler,
	updater *mastery.Updater,
	cards repos.ReviewCardRepo,
	logs repos.ReviewLogRepo,
) *ReviewService {
	return &ReviewService{
		db:        db,
		log:       baseLog.With("service", "ReviewService"),
		scheduler: scheduler,
		updater:   updater,
		cards:     cards,
		logs:      logs,
	}
}

type RecordReviewInput struct {
	UserID uuid.UUID
	CardID uuid.UUID
	Rating srs.Rating

	// ReviewedAt defaults to now; TargetRetention to the scheduler default.
	ReviewedAt      time.Time
	TargetRetention float64

	// Graded-answer extras; nil for plain flashcard reviews.
	ScoreRatio     *float64
	ResponseTimeMs *int64

	// ConceptIDs overrides the card's linked concepts when non-empty.
	ConceptIDs []uuid.UUID
}

type ConceptUpdate struct {
	ConceptID uuid.UUID
	Outcome   mastery.Outcome
}

type RecordReviewResult struct {
	Card    *types.ReviewCard
	Mastery []ConceptUpdate

	// Contended lists concepts whose mastery update lost the optimistic-lock
	// race on every attempt. The review itself still succeeded.
	Contended []uuid.UUID
}

func (s *ReviewService) RecordReview(ctx context.Context, in RecordReviewInput) (*RecordReviewResult, error) {
	card, err := s.cards.GetByID(ctx, nil, in.CardID)
	if err != nil {
		return nil, fmt.Errorf("load card: %w", err)
	}
	if card == nil || card.UserID != in.UserID {
		return nil, fmt.Errorf("card %s for user %s: %w", in.CardID, in.UserID, pkgerrors.ErrNotFound)
	}

	now := in.ReviewedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	retention := in.TargetRetention
	if retention == 0 {
		retention = srs.DefaultTargetRetention
	}

	elapsedDays := 0.0
	if card.LastReviewedAt != nil {
		elapsedDays = now.Sub(*card.LastReviewedAt).Hours() / 24
		if elapsedDays < 0 {
			elapsedDays = 0
		}
	}

	before := srs.CardState{
		State:         srs.State(card.State),
		Stability:     card.Stability,
		Difficulty:    card.Difficulty,
		DueAt:         card.DueAt,
		ScheduledDays: card.ScheduledDays,
		Reps:          card.Reps,
		Lapses:        card.Lapses,
	}
	after, err := s.scheduler.Schedule(before, in.Rating, elapsedDays, retention, now)
	if err != nil {
		return nil, fmt.Errorf("schedule review: %w", err)
	}

	stateBefore := card.State
	card.State = string(after.State)
	card.Stability = after.Stability
	card.Difficulty = after.Difficulty
	card.DueAt = after.DueAt
	card.ScheduledDays = after.ScheduledDays
	card.ElapsedDays = after.ElapsedDays
	card.Reps = after.Reps
	card.Lapses = after.Lapses
	card.LastReviewedAt = &now

	if err := s.cards.SaveMemoryState(ctx, nil, card); err != nil {
		return nil, fmt.Errorf("persist card state: %w", err)
	}
	if err := s.logs.Append(ctx, nil, &types.ReviewLog{
		UserID:        card.UserID,
		CardID:        card.ID,
		Rating:        int(in.Rating),
		StateBefore:   stateBefore,
		StateAfter:    card.State,
		ElapsedDays:   elapsedDays,
		ScheduledDays: card.ScheduledDays,
		ReviewedAt:    now,
	}); err != nil {
		return nil, fmt.Errorf("append review log: %w", err)
	}

	result := &RecordReviewResult{Card: card}

	conceptIDs := in.ConceptIDs
	if len(conceptIDs) == 0 {
		conceptIDs = s.linkedConcepts(card)
	}
	if len(conceptIDs) == 0 {
		return result, nil
	}

	exp := mastery.Exposure{
		Correct:        in.Rating != srs.Again,
		ScoreRatio:     in.ScoreRatio,
		ResponseTimeMs: in.ResponseTimeMs,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(masteryUpdateConcurrency)
	for _, conceptID := range conceptIDs {
		conceptID := conceptID
		g.Go(func() error {
			out, err := s.updater.Update(gctx, card.UserID, conceptID, exp)
			if err != nil {
				// A contended concept never aborts the batch; everything else
				// is a store failure and does.
				if errors.Is(err, pkgerrors.ErrConcurrencyExhausted) {
					s.log.Warn("mastery update contended",
						"user_id", card.UserID, "concept_id", conceptID)
					mu.Lock()
					result.Contended = append(result.Contended, conceptID)
					mu.Unlock()
					return nil
				}
				return err
			}
			mu.Lock()
			result.Mastery = append(result.Mastery, ConceptUpdate{ConceptID: conceptID, Outcome: out})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("update mastery: %w", err)
	}

	return result, nil
}

func (s *ReviewService) linkedConcepts(card *types.ReviewCard) []uuid.UUID {
	if len(card.ConceptIDs) == 0 {
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(card.ConceptIDs, &ids); err != nil {
		s.log.Warn("card has malformed concept link list", "card_id", card.ID, "error", err)
		return nil
	}
	return ids
}
