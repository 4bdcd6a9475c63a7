package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/recallery/recallery-backend/internal/data/repos"
	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/mastery"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

// NewMasteryUpdater wires the gorm-backed repos into a mastery updater.
func NewMasteryUpdater(all *repos.All, cfg mastery.Config, baseLog *logger.Logger) *mastery.Updater {
	return mastery.NewUpdater(
		&masteryStore{repo: all.ConceptMastery},
		&gapResolver{repo: all.KnowledgeGap},
		cfg,
		baseLog,
	)
}

// masteryStore adapts the gorm-backed ConceptMasteryRepo to the updater's
// store contract.
type masteryStore struct {
	repo repos.ConceptMasteryRepo
}

func (s *masteryStore) Get(ctx context.Context, userID, conceptID uuid.UUID) (*mastery.Record, error) {
	row, err := s.repo.Get(ctx, nil, userID, conceptID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &mastery.Record{
		UserID:            row.UserID,
		ConceptID:         row.ConceptID,
		MasteryLevel:      row.MasteryLevel,
		PeakMastery:       row.PeakMastery,
		TotalExposures:    row.TotalExposures,
		SuccessfulRecalls: row.SuccessfulRecalls,
	}, nil
}

func (s *masteryStore) InsertIfAbsent(ctx context.Context, rec mastery.Record) (bool, error) {
	now := time.Now().UTC()
	row := &types.ConceptMastery{
		UserID:            rec.UserID,
		ConceptID:         rec.ConceptID,
		MasteryLevel:      rec.MasteryLevel,
		PeakMastery:       rec.PeakMastery,
		TotalExposures:    rec.TotalExposures,
		SuccessfulRecalls: rec.SuccessfulRecalls,
		LastExposedAt:     &now,
	}
	return s.repo.InsertIfAbsent(ctx, nil, row)
}

func (s *masteryStore) ConditionalUpdate(ctx context.Context, rec mastery.Record, expectedExposures int) (int64, error) {
	now := time.Now().UTC()
	row := &types.ConceptMastery{
		UserID:            rec.UserID,
		ConceptID:         rec.ConceptID,
		MasteryLevel:      rec.MasteryLevel,
		PeakMastery:       rec.PeakMastery,
		TotalExposures:    rec.TotalExposures,
		SuccessfulRecalls: rec.SuccessfulRecalls,
		LastExposedAt:     &now,
	}
	return s.repo.ConditionalUpdate(ctx, nil, row, expectedExposures)
}

// gapResolver adapts the KnowledgeGapRepo to the updater's best-effort gap
// resolution hook.
type gapResolver struct {
	repo repos.KnowledgeGapRepo
}

func (g *gapResolver) ResolveOpenGaps(ctx context.Context, userID, conceptID uuid.UUID) error {
	return g.repo.ResolveOpen(ctx, nil, userID, conceptID)
}
