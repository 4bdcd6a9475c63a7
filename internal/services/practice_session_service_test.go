package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/session"
)

type fakeTopicRepo struct {
	snapshot map[string]float64
}

func (r *fakeTopicRepo) Upsert(context.Context, *gorm.DB, *types.TopicMastery) error { return nil }

func (r *fakeTopicRepo) ListByUser(context.Context, *gorm.DB, uuid.UUID) ([]*types.TopicMastery, error) {
	return nil, nil
}

func (r *fakeTopicRepo) SnapshotByUser(context.Context, *gorm.DB, uuid.UUID) (map[string]float64, error) {
	if r.snapshot == nil {
		return map[string]float64{}, nil
	}
	return r.snapshot, nil
}

func sessionCard(userID, courseID, lessonID uuid.UUID, state string, dueAt time.Time) *types.ReviewCard {
	return &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: courseID, LessonID: lessonID,
		State: state, Stability: 1, Difficulty: 5,
		DueAt: dueAt,
	}
}

func newSessionFixture(cards *fakeCardRepo, topics *fakeTopicRepo) *PracticeSessionService {
	svc := NewPracticeSessionService(nil, testLogger(), cards, topics, session.DefaultTuning())
	svc.seed = func() int64 { return 42 }
	return svc
}

func TestBuildSessionPrefersDueOverFuture(t *testing.T) {
	userID := uuid.New()
	courseID := uuid.New()
	now := time.Now().UTC()

	lessonA, lessonB := uuid.New(), uuid.New()
	due := sessionCard(userID, courseID, lessonA, types.CardStateReview, now.Add(-24*time.Hour))
	alsoDue := sessionCard(userID, courseID, lessonB, types.CardStateReview, now.Add(-time.Hour))
	future := sessionCard(userID, courseID, lessonA, types.CardStateReview, now.Add(72*time.Hour))
	cards := newFakeCardRepo(due, alsoDue, future)
	svc := newSessionFixture(cards, &fakeTopicRepo{})

	cfg := session.DefaultConfig()
	cfg.CardCount = 2
	got, err := svc.BuildSession(context.Background(), userID, cfg)
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("session size = %d, want 2", len(got))
	}
	for _, c := range got {
		if c.ID == future.ID {
			t.Fatalf("a not-yet-due card displaced a due card")
		}
	}
}

func TestBuildSessionCapsNewCards(t *testing.T) {
	userID := uuid.New()
	courseID := uuid.New()
	now := time.Now().UTC()

	pool := []*types.ReviewCard{}
	for i := 0; i < 10; i++ {
		pool = append(pool, sessionCard(userID, courseID, uuid.New(), types.CardStateNew, now))
	}
	for i := 0; i < 10; i++ {
		pool = append(pool, sessionCard(userID, courseID, uuid.New(), types.CardStateReview, now.Add(-time.Duration(i+1)*time.Hour)))
	}
	svc := newSessionFixture(newFakeCardRepo(pool...), &fakeTopicRepo{})

	cfg := session.DefaultConfig()
	cfg.CardCount = 10
	cfg.MaxNewCards = 3
	got, err := svc.BuildSession(context.Background(), userID, cfg)
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}

	if len(got) != 10 {
		t.Fatalf("session size = %d, want 10", len(got))
	}
	newCount := 0
	for _, c := range got {
		if c.State == types.CardStateNew {
			newCount++
		}
	}
	if newCount > 3 {
		t.Fatalf("new cards = %d, want at most 3", newCount)
	}
}

func TestBuildSessionInterleavesTopics(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()

	// Three lessons, four overdue cards each.
	pool := []*types.ReviewCard{}
	for i := 0; i < 3; i++ {
		courseID, lessonID := uuid.New(), uuid.New()
		for j := 0; j < 4; j++ {
			pool = append(pool, sessionCard(userID, courseID, lessonID, types.CardStateReview, now.Add(-24*time.Hour)))
		}
	}
	svc := newSessionFixture(newFakeCardRepo(pool...), &fakeTopicRepo{})

	cfg := session.DefaultConfig()
	cfg.CardCount = 12
	cfg.MaxConsecutiveSameTopic = 2
	got, err := svc.BuildSession(context.Background(), userID, cfg)
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("session size = %d, want 12", len(got))
	}

	run := 0
	for i := range got {
		if i > 0 && got[i].TopicKey() == got[i-1].TopicKey() {
			run++
		} else {
			run = 1
		}
		if run > 2 {
			t.Fatalf("topic %s runs %d in a row", got[i].TopicKey(), run)
		}
	}
}

func TestBuildSessionBoostsWeakTopics(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()

	weakCourse, weakLesson := uuid.New(), uuid.New()
	strongCourse, strongLesson := uuid.New(), uuid.New()
	weak := sessionCard(userID, weakCourse, weakLesson, types.CardStateReview, now.Add(-time.Hour))
	strong := sessionCard(userID, strongCourse, strongLesson, types.CardStateReview, now.Add(-time.Hour))
	topics := &fakeTopicRepo{snapshot: map[string]float64{
		weak.TopicKey():   0.1,
		strong.TopicKey(): 0.9,
	}}
	svc := newSessionFixture(newFakeCardRepo(weak, strong), topics)

	cfg := session.DefaultConfig()
	cfg.CardCount = 1
	got, err := svc.BuildSession(context.Background(), userID, cfg)
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	if len(got) != 1 || got[0].ID != weak.ID {
		t.Fatalf("picked %v, want the weak-topic card", got)
	}

	// With low-mastery prioritization off the tie is broken by due order, and
	// both cards score identically; the selector keeps stable order instead of
	// favoring weakness.
	cfg.PrioritizeLowMastery = false
	got, err = svc.BuildSession(context.Background(), userID, cfg)
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("session size = %d, want 1", len(got))
	}
}

func TestBuildSessionEmptyPool(t *testing.T) {
	svc := newSessionFixture(newFakeCardRepo(), &fakeTopicRepo{})

	got, err := svc.BuildSession(context.Background(), uuid.New(), session.DefaultConfig())
	if err != nil {
		t.Fatalf("BuildSession: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("session size = %d, want 0", len(got))
	}
}
