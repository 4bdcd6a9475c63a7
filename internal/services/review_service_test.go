package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	types "github.com/recallery/recallery-backend/internal/domain"
	"github.com/recallery/recallery-backend/internal/mastery"
	pkgerrors "github.com/recallery/recallery-backend/internal/pkg/errors"
	"github.com/recallery/recallery-backend/internal/platform/logger"
	"github.com/recallery/recallery-backend/internal/srs"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// fakeCardRepo serves cards from memory and records the saved state.
type fakeCardRepo struct {
	cards map[uuid.UUID]*types.ReviewCard
	saved *types.ReviewCard
}

func newFakeCardRepo(cards ...*types.ReviewCard) *fakeCardRepo {
	r := &fakeCardRepo{cards: map[uuid.UUID]*types.ReviewCard{}}
	for _, c := range cards {
		r.cards[c.ID] = c
	}
	return r
}

func (r *fakeCardRepo) Create(_ context.Context, _ *gorm.DB, rows []*types.ReviewCard) ([]*types.ReviewCard, error) {
	for _, c := range rows {
		r.cards[c.ID] = c
	}
	return rows, nil
}

func (r *fakeCardRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.ReviewCard, error) {
	c, ok := r.cards[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCardRepo) ListDueByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, asOf time.Time, _ int) ([]*types.ReviewCard, error) {
	out := []*types.ReviewCard{}
	for _, c := range r.cards {
		if c.UserID == userID && c.State != types.CardStateNew && !c.DueAt.After(asOf) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) ListNewByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, _ int) ([]*types.ReviewCard, error) {
	out := []*types.ReviewCard{}
	for _, c := range r.cards {
		if c.UserID == userID && c.State == types.CardStateNew {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) SaveMemoryState(_ context.Context, _ *gorm.DB, row *types.ReviewCard) error {
	r.saved = row
	return nil
}

type fakeLogRepo struct {
	appended []*types.ReviewLog
}

func (r *fakeLogRepo) Append(_ context.Context, _ *gorm.DB, row *types.ReviewLog) error {
	r.appended = append(r.appended, row)
	return nil
}

func (r *fakeLogRepo) ListByCard(context.Context, *gorm.DB, uuid.UUID, int) ([]*types.ReviewLog, error) {
	return nil, nil
}

type masteryKey struct {
	user    uuid.UUID
	concept uuid.UUID
}

// fakeMasteryStore is an in-memory mastery.Store. Concepts listed in contended
// lose every conditional write, as if another writer kept winning.
type fakeMasteryStore struct {
	rows      map[masteryKey]mastery.Record
	contended map[uuid.UUID]bool
}

func newFakeMasteryStore() *fakeMasteryStore {
	return &fakeMasteryStore{
		rows:      map[masteryKey]mastery.Record{},
		contended: map[uuid.UUID]bool{},
	}
}

func (s *fakeMasteryStore) Get(_ context.Context, userID, conceptID uuid.UUID) (*mastery.Record, error) {
	rec, ok := s.rows[masteryKey{userID, conceptID}]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *fakeMasteryStore) InsertIfAbsent(_ context.Context, rec mastery.Record) (bool, error) {
	k := masteryKey{rec.UserID, rec.ConceptID}
	if s.contended[rec.ConceptID] {
		return false, nil
	}
	if _, ok := s.rows[k]; ok {
		return false, nil
	}
	s.rows[k] = rec
	return true, nil
}

func (s *fakeMasteryStore) ConditionalUpdate(_ context.Context, rec mastery.Record, expectedExposures int) (int64, error) {
	k := masteryKey{rec.UserID, rec.ConceptID}
	if s.contended[rec.ConceptID] {
		return 0, nil
	}
	cur, ok := s.rows[k]
	if !ok || cur.TotalExposures != expectedExposures {
		return 0, nil
	}
	s.rows[k] = rec
	return 1, nil
}

func conceptJSON(t *testing.T, ids ...uuid.UUID) []byte {
	t.Helper()
	raw, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("marshal concept ids: %v", err)
	}
	return raw
}

func newReviewFixture(store mastery.Store, cards *fakeCardRepo, logs *fakeLogRepo) *ReviewService {
	logg := testLogger()
	updater := mastery.NewUpdater(store, nil, mastery.DefaultConfig(), logg)
	return NewReviewService(nil, logg, srs.NewScheduler(srs.DefaultParams()), updater, cards, logs)
}

func TestRecordReviewSchedulesAndLogs(t *testing.T) {
	userID := uuid.New()
	reviewedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	last := reviewedAt.Add(-5 * 24 * time.Hour)
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateReview, Stability: 5, Difficulty: 5,
		DueAt: reviewedAt.Add(-24 * time.Hour), Reps: 3,
		LastReviewedAt: &last,
	}
	cards := newFakeCardRepo(card)
	logs := &fakeLogRepo{}
	svc := newReviewFixture(newFakeMasteryStore(), cards, logs)

	res, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: card.ID,
		Rating: srs.Good, ReviewedAt: reviewedAt,
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}

	if res.Card.State != types.CardStateReview {
		t.Fatalf("state = %s, want review after a good answer", res.Card.State)
	}
	if res.Card.Stability <= 5 {
		t.Fatalf("stability = %v, want growth past 5", res.Card.Stability)
	}
	if !res.Card.DueAt.After(reviewedAt) {
		t.Fatalf("due_at = %v, want a future due date", res.Card.DueAt)
	}
	if res.Card.Reps != 4 {
		t.Fatalf("reps = %d, want 4", res.Card.Reps)
	}
	if cards.saved == nil {
		t.Fatalf("card state was never persisted")
	}

	if len(logs.appended) != 1 {
		t.Fatalf("review logs = %d, want 1", len(logs.appended))
	}
	entry := logs.appended[0]
	if entry.CardID != card.ID || entry.Rating != int(srs.Good) {
		t.Fatalf("log = %+v", entry)
	}
	if entry.StateBefore != types.CardStateReview || entry.StateAfter != types.CardStateReview {
		t.Fatalf("log states = %s -> %s", entry.StateBefore, entry.StateAfter)
	}
	if math.Abs(entry.ElapsedDays-5) > 1e-9 {
		t.Fatalf("elapsed days = %v, want 5", entry.ElapsedDays)
	}
}

func TestRecordReviewRejectsUnknownOrForeignCard(t *testing.T) {
	userID := uuid.New()
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateNew, Stability: 1, Difficulty: 5,
		DueAt: time.Now().UTC(),
	}
	svc := newReviewFixture(newFakeMasteryStore(), newFakeCardRepo(card), &fakeLogRepo{})

	_, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: uuid.New(), Rating: srs.Good,
	})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("unknown card: err = %v, want ErrNotFound", err)
	}

	_, err = svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: uuid.New(), CardID: card.ID, Rating: srs.Good,
	})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("foreign card: err = %v, want ErrNotFound", err)
	}
}

func TestRecordReviewUpdatesLinkedConcepts(t *testing.T) {
	userID := uuid.New()
	conceptA, conceptB := uuid.New(), uuid.New()
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateNew, Stability: 1, Difficulty: 5,
		DueAt:      time.Now().UTC(),
		ConceptIDs: conceptJSON(t, conceptA, conceptB),
	}
	store := newFakeMasteryStore()
	svc := newReviewFixture(store, newFakeCardRepo(card), &fakeLogRepo{})

	res, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: card.ID, Rating: srs.Good,
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}

	if len(res.Mastery) != 2 {
		t.Fatalf("mastery updates = %d, want one per linked concept", len(res.Mastery))
	}
	for _, upd := range res.Mastery {
		if upd.Outcome.MasteryLevel != 0.3 {
			t.Fatalf("concept %s seeded at %v, want 0.3", upd.ConceptID, upd.Outcome.MasteryLevel)
		}
	}
	if len(store.rows) != 2 {
		t.Fatalf("store rows = %d, want 2", len(store.rows))
	}
}

func TestRecordReviewAgainCountsAsIncorrect(t *testing.T) {
	userID := uuid.New()
	conceptID := uuid.New()
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateNew, Stability: 1, Difficulty: 5,
		DueAt:      time.Now().UTC(),
		ConceptIDs: conceptJSON(t, conceptID),
	}
	store := newFakeMasteryStore()
	svc := newReviewFixture(store, newFakeCardRepo(card), &fakeLogRepo{})

	res, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: card.ID, Rating: srs.Again,
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if len(res.Mastery) != 1 || res.Mastery[0].Outcome.MasteryLevel != 0.1 {
		t.Fatalf("mastery = %+v, want the incorrect seed 0.1", res.Mastery)
	}
	rec := store.rows[masteryKey{userID, conceptID}]
	if rec.SuccessfulRecalls != 0 {
		t.Fatalf("again answer counted as a recall")
	}
}

func TestRecordReviewExplicitConceptsOverrideCardLinks(t *testing.T) {
	userID := uuid.New()
	linked := uuid.New()
	override := uuid.New()
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateNew, Stability: 1, Difficulty: 5,
		DueAt:      time.Now().UTC(),
		ConceptIDs: conceptJSON(t, linked),
	}
	store := newFakeMasteryStore()
	svc := newReviewFixture(store, newFakeCardRepo(card), &fakeLogRepo{})

	res, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: card.ID, Rating: srs.Good,
		ConceptIDs: []uuid.UUID{override},
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if len(res.Mastery) != 1 || res.Mastery[0].ConceptID != override {
		t.Fatalf("mastery = %+v, want only the explicit concept", res.Mastery)
	}
	if _, ok := store.rows[masteryKey{userID, linked}]; ok {
		t.Fatalf("card-linked concept updated despite the override")
	}
}

func TestRecordReviewSurvivesContendedConcepts(t *testing.T) {
	userID := uuid.New()
	calm, contended := uuid.New(), uuid.New()
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateNew, Stability: 1, Difficulty: 5,
		DueAt:      time.Now().UTC(),
		ConceptIDs: conceptJSON(t, calm, contended),
	}
	store := newFakeMasteryStore()
	store.contended[contended] = true
	svc := newReviewFixture(store, newFakeCardRepo(card), &fakeLogRepo{})

	res, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: card.ID, Rating: srs.Good,
	})
	if err != nil {
		t.Fatalf("contention must not fail the review: %v", err)
	}
	if len(res.Mastery) != 1 || res.Mastery[0].ConceptID != calm {
		t.Fatalf("mastery = %+v, want only the uncontended concept", res.Mastery)
	}
	if len(res.Contended) != 1 || res.Contended[0] != contended {
		t.Fatalf("contended = %v, want the losing concept reported", res.Contended)
	}
}

func TestRecordReviewToleratesMalformedConceptLinks(t *testing.T) {
	userID := uuid.New()
	card := &types.ReviewCard{
		ID: uuid.New(), UserID: userID,
		CourseID: uuid.New(), LessonID: uuid.New(),
		State: types.CardStateNew, Stability: 1, Difficulty: 5,
		DueAt:      time.Now().UTC(),
		ConceptIDs: []byte(`{"not":"a list"}`),
	}
	store := newFakeMasteryStore()
	svc := newReviewFixture(store, newFakeCardRepo(card), &fakeLogRepo{})

	res, err := svc.RecordReview(context.Background(), RecordReviewInput{
		UserID: userID, CardID: card.ID, Rating: srs.Good,
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if len(res.Mastery) != 0 || len(store.rows) != 0 {
		t.Fatalf("mastery updates ran against malformed links")
	}
}
