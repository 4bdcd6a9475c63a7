package learning

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

type KnowledgeGapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.KnowledgeGap) ([]*types.KnowledgeGap, error)
	ListOpenByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.KnowledgeGap, error)
	ResolveOpen(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) error
}

type knowledgeGapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeGapRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeGapRepo {
	return &knowledgeGapRepo{db: db, log: baseLog.With("repo", "KnowledgeGapRepo")}
}

func (r *knowledgeGapRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.KnowledgeGap) ([]*types.KnowledgeGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.KnowledgeGap{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *knowledgeGapRepo) ListOpenByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.KnowledgeGap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.KnowledgeGap{}
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.KnowledgeGapOpen).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *knowledgeGapRepo) ResolveOpen(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || conceptID == uuid.Nil {
		return nil
	}

	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.KnowledgeGap{}).
		Where("user_id = ? AND concept_id = ? AND status = ?", userID, conceptID, types.KnowledgeGapOpen).
		Updates(map[string]interface{}{
			"status":      types.KnowledgeGapResolved,
			"resolved_at": &now,
			"updated_at":  now,
		}).Error
}
