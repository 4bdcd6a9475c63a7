package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

type ReviewCardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ReviewCard) ([]*types.ReviewCard, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReviewCard, error)
	ListDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, asOf time.Time, limit int) ([]*types.ReviewCard, error)
	ListNewByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ReviewCard, error)
	SaveMemoryState(ctx context.Context, tx *gorm.DB, row *types.ReviewCard) error
}

type reviewCardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewCardRepo(db *gorm.DB, baseLog *logger.Logger) ReviewCardRepo {
	return &reviewCardRepo{db: db, log: baseLog.With("repo", "ReviewCardRepo")}
}

func (r *reviewCardRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ReviewCard) ([]*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ReviewCard{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reviewCardRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var row types.ReviewCard
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
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

func (r *reviewCardRepo) ListDueByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, asOf time.Time, limit int) ([]*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ReviewCard{}
	if userID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND state <> ? AND due_at <= ?", userID, types.CardStateNew, asOf).
		Order("due_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewCardRepo) ListNewByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ReviewCard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.ReviewCard{}
	if userID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, types.CardStateNew).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewCardRepo) SaveMemoryState(ctx context.Context, tx *gorm.DB, row *types.ReviewCard) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil || row.ID == uuid.Nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.ReviewCard{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"state":            row.State,
			"stability":        row.Stability,
			"difficulty":       row.Difficulty,
			"due_at":           row.DueAt,
			"scheduled_days":   row.ScheduledDays,
			"elapsed_days":     row.ElapsedDays,
			"reps":             row.Reps,
			"lapses":           row.Lapses,
			"last_reviewed_at": row.LastReviewedAt,
			"updated_at":       time.Now().UTC(),
		}).Error
}
