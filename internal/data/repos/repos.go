package repos

import (
	"github.com/recallery/recallery-backend/internal/data/repos/learning"
	"github.com/recallery/recallery-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ReviewCardRepo = learning.ReviewCardRepo
type ReviewLogRepo = learning.ReviewLogRepo
type ConceptMasteryRepo = learning.ConceptMasteryRepo
type TopicMasteryRepo = learning.TopicMasteryRepo
type KnowledgeGapRepo = learning.KnowledgeGapRepo

// All bundles every repo over one database handle.
type All struct {
	ReviewCard     ReviewCardRepo
	ReviewLog      ReviewLogRepo
	ConceptMastery ConceptMasteryRepo
	TopicMastery   TopicMasteryRepo
	KnowledgeGap   KnowledgeGapRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *All {
	return &All{
		ReviewCard:     learning.NewReviewCardRepo(db, baseLog),
		ReviewLog:      learning.NewReviewLogRepo(db, baseLog),
		ConceptMastery: learning.NewConceptMasteryRepo(db, baseLog),
		TopicMastery:   learning.NewTopicMasteryRepo(db, baseLog),
		KnowledgeGap:   learning.NewKnowledgeGapRepo(db, baseLog),
	}
}
