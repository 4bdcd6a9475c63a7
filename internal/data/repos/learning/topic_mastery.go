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

type TopicMasteryRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.TopicMastery) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TopicMastery, error)

	// SnapshotByUser returns topic -> mastery for session scoring.
	SnapshotByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[string]float64, error)
}

type topicMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicMasteryRepo(db *gorm.DB, baseLog *logger.Logger) TopicMasteryRepo {
	return &topicMasteryRepo{db: db, log: baseLog.With("repo", "TopicMasteryRepo")}
}

func (r *topicMasteryRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.TopicMastery) error {
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
	row.LastUpdate = time.Now().UTC()

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "topic"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mastery", "metadata", "last_update", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *topicMasteryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.TopicMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	results := []*types.TopicMastery{}
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicMasteryRepo) SnapshotByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (map[string]float64, error) {
	rows, err := r.ListByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]float64, len(rows))
	for _, row := range rows {
		snapshot[row.Topic] = row.Mastery
	}
	return snapshot, nil
}
