package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

type ConceptMasteryRepo interface {
	Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.ConceptMastery, error)
	ListByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*types.ConceptMastery, error)

	// InsertIfAbsent creates the row unless the (user, concept) pair already
	// exists; it reports false, without error, on conflict.
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, row *types.ConceptMastery) (bool, error)

	// ConditionalUpdate writes the mastery columns only while total_exposures
	// still equals expectedExposures, returning the rows affected. Zero rows
	// means another writer bumped the version first.
	ConditionalUpdate(ctx context.Context, tx *gorm.DB, row *types.ConceptMastery, expectedExposures int) (int64, error)
}

type conceptMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptMasteryRepo(db *gorm.DB, baseLog *logger.Logger) ConceptMasteryRepo {
	return &conceptMasteryRepo{db: db, log: baseLog.With("repo", "ConceptMasteryRepo")}
}

func (r *conceptMasteryRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.ConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil, nil
	}

	var row types.ConceptMastery
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptMasteryRepo) ListByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*types.ConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ConceptMastery{}
	if userID == uuid.Nil || len(conceptIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND concept_id IN ?", userID, conceptIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conceptMasteryRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, row *types.ConceptMastery) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "concept_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *conceptMasteryRepo) ConditionalUpdate(ctx context.Context, tx *gorm.DB, row *types.ConceptMastery, expectedExposures int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return 0, nil
	}

	res := transaction.WithContext(ctx).
		Model(&types.ConceptMastery{}).
		Where("user_id = ? AND concept_id = ? AND total_exposures = ?",
			row.UserID, row.ConceptID, expectedExposures).
		Updates(map[string]interface{}{
			"mastery_level":      row.MasteryLevel,
			"peak_mastery":       row.PeakMastery,
			"total_exposures":    row.TotalExposures,
			"successful_recalls": row.SuccessfulRecalls,
			"last_exposed_at":    row.LastExposedAt,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
