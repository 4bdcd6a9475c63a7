package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

type ReviewLogRepo interface {
	Append(ctx context.Context, tx *gorm.DB, row *types.ReviewLog) error
	ListByCard(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, limit int) ([]*types.ReviewLog, error)
}

type reviewLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewLogRepo(db *gorm.DB, baseLog *logger.Logger) ReviewLogRepo {
	return &reviewLogRepo{db: db, log: baseLog.With("repo", "ReviewLogRepo")}
}

func (r *reviewLogRepo) Append(ctx context.Context, tx *gorm.DB, row *types.ReviewLog) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	return transaction.WithContext(ctx).Create(row).Error
}

func (r *reviewLogRepo) ListByCard(ctx context.Context, tx *gorm.DB, cardID uuid.UUID, limit int) ([]*types.ReviewLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ReviewLog{}
	if cardID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("reviewed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
