package domain

import (
	"github.com/recallery/recallery-backend/internal/domain/learning"
	"github.com/recallery/recallery-backend/internal/domain/user"
)

type User = user.User

type ReviewCard = learning.ReviewCard
type ReviewLog = learning.ReviewLog
type ConceptMastery = learning.ConceptMastery
type TopicMastery = learning.TopicMastery
type KnowledgeGap = learning.KnowledgeGap

const (
	CardStateNew        = learning.CardStateNew
	CardStateLearning   = learning.CardStateLearning
	CardStateReview     = learning.CardStateReview
	CardStateRelearning = learning.CardStateRelearning

	KnowledgeGapOpen     = learning.KnowledgeGapOpen
	KnowledgeGapResolved = learning.KnowledgeGapResolved
)
