package srs

import (
	"fmt"
	"math"
	"time"

	pkgerrors "github.com/recallery/recallery-backend/internal/pkg/errors"
)

// Rating is the reviewer's self-graded outcome, ordinal 1-4.
type Rating int

const (
	Again Rating = 1
	Hard  Rating = 2
	Good  Rating = 3
	Easy  Rating = 4
)

func (r Rating) Valid() bool { return r >= Again && r <= Easy }

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// State is the card's position in the learning state machine.
type State string

const (
	StateNew        State = "new"
	StateLearning   State = "learning"
	StateReview     State = "review"
	StateRelearning State = "relearning"
)

// CardState is the scheduler's view of a card's memory state. It carries no
// identity and no storage concerns; callers map it onto their persistence row.
type CardState struct {
	State          State
	Stability      float64
	Difficulty     float64
	DueAt          time.Time
	ScheduledDays  float64
	ElapsedDays    float64
	Reps           int
	Lapses         int
	LastReviewedAt time.Time
}

// NewCardState returns the memory state a freshly created card starts with.
func NewCardState(p Params, createdAt time.Time) CardState {
	return CardState{
		State:      StateNew,
		Stability:  p.MinStability,
		Difficulty: difficultyMidpoint,
		DueAt:      createdAt,
	}
}

const difficultyMidpoint = 5.0

// Scheduler computes review-state transitions. It is pure and safe for
// concurrent use.
type Scheduler struct {
	params Params
}

func NewScheduler(p Params) *Scheduler {
	return &Scheduler{params: p}
}

// Retrievability estimates the probability that a memory with the given
// stability is still recallable elapsedDays after its last review. It is 1 at
// elapsed 0 and decays along the FSRS power-law curve.
func Retrievability(stability, elapsedDays float64) float64 {
	if stability <= 0 {
		return 0
	}
	return 1.0 / (1.0 + elapsedDays/(9.0*stability))
}

// IntervalForRetention solves the forgetting curve for the elapsed time at
// which retrievability drops to the target.
func IntervalForRetention(stability, targetRetention float64) float64 {
	return 9.0 * stability * (1.0/targetRetention - 1.0)
}

// Schedule applies one review outcome to a card's memory state and returns the
// next state. Malformed input is rejected up front; the computation itself has
// no failure modes and no side effects.
func (s *Scheduler) Schedule(card CardState, rating Rating, elapsedDays, targetRetention float64, now time.Time) (CardState, error) {
	if !rating.Valid() {
		return CardState{}, fmt.Errorf("rating %d out of range [1,4]: %w", int(rating), pkgerrors.ErrInvalidArgument)
	}
	if elapsedDays < 0 {
		return CardState{}, fmt.Errorf("elapsed days %v negative: %w", elapsedDays, pkgerrors.ErrInvalidArgument)
	}
	if targetRetention <= 0 || targetRetention >= 1 {
		return CardState{}, fmt.Errorf("target retention %v outside (0,1): %w", targetRetention, pkgerrors.ErrInvalidArgument)
	}

	p := s.params
	next := card
	next.Reps++
	next.ElapsedDays = 0
	next.LastReviewedAt = now

	switch card.State {
	case StateNew, "":
		next.Difficulty = s.initDifficulty(rating)
		next.Stability = s.initStability(rating)
		if rating == Easy {
			s.graduate(&next, targetRetention, now)
		} else {
			s.holdInLearning(&next, StateLearning, now)
		}

	case StateLearning:
		if rating == Again {
			next.Stability = s.floorStability(card.Stability * p.AgainShrink)
			s.holdInLearning(&next, StateLearning, now)
			break
		}
		next.Stability = math.Max(card.Stability, s.initStability(rating))
		next.Difficulty = s.nextDifficulty(card.Difficulty, rating)
		if next.Stability >= p.GraduationStability {
			s.graduate(&next, targetRetention, now)
		} else {
			s.holdInLearning(&next, StateLearning, now)
		}

	case StateReview:
		if rating == Again {
			next.Lapses++
			next.State = StateRelearning
			next.Stability = s.floorStability(card.Stability * p.AgainShrink)
			next.Difficulty = s.nextDifficulty(card.Difficulty, Again)
			s.holdInLearning(&next, StateRelearning, now)
			break
		}
		next.Stability = s.nextReviewStability(card.Stability, card.Difficulty, elapsedDays, rating)
		next.Difficulty = s.nextDifficulty(card.Difficulty, rating)
		s.graduate(&next, targetRetention, now)

	case StateRelearning:
		if rating == Again {
			next.Stability = s.floorStability(card.Stability * p.AgainShrink)
			next.Difficulty = s.nextDifficulty(card.Difficulty, Again)
			s.holdInLearning(&next, StateRelearning, now)
			break
		}
		next.Stability = math.Max(card.Stability, s.initStability(rating))
		next.Difficulty = s.nextDifficulty(card.Difficulty, rating)
		s.graduate(&next, targetRetention, now)

	default:
		return CardState{}, fmt.Errorf("card state %q unknown: %w", card.State, pkgerrors.ErrInvalidArgument)
	}

	return next, nil
}

// graduate moves the card into review and schedules the next sitting so that
// retrievability at the scheduled interval equals the target retention.
func (s *Scheduler) graduate(next *CardState, targetRetention float64, now time.Time) {
	next.State = StateReview
	interval := IntervalForRetention(next.Stability, targetRetention)
	if interval > s.params.MaxIntervalDays {
		interval = s.params.MaxIntervalDays
	}
	if interval < 0 {
		interval = 0
	}
	next.ScheduledDays = interval
	next.DueAt = now.Add(daysToDuration(interval))
}

// holdInLearning keeps the card in a (re)learning step with a short interval.
func (s *Scheduler) holdInLearning(next *CardState, state State, now time.Time) {
	next.State = state
	step := s.params.LearningStepMinutes
	if state == StateRelearning {
		step = s.params.RelearningStepMinutes
	}
	next.ScheduledDays = step / minutesPerDay
	next.DueAt = now.Add(daysToDuration(next.ScheduledDays))
}

const minutesPerDay = 24 * 60

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}

func (s *Scheduler) initStability(rating Rating) float64 {
	return s.floorStability(s.params.InitStabilityBase + s.params.InitStabilityStep*float64(rating-Again))
}

func (s *Scheduler) initDifficulty(rating Rating) float64 {
	return s.clampDifficulty(s.params.InitDifficultyBase - s.params.InitDifficultyStep*float64(rating-Good))
}

// nextReviewStability grows stability multiplicatively after a successful
// review. The growth term scales with how far retrievability has decayed, how
// easy the item is, and how saturated stability already is; hard reviews grow
// least and easy reviews most.
func (s *Scheduler) nextReviewStability(stability, difficulty, elapsedDays float64, rating Rating) float64 {
	p := s.params
	r := Retrievability(stability, elapsedDays)

	growth := p.GrowthScale *
		(11.0 - difficulty) *
		math.Pow(stability, -p.GrowthDecay) *
		(math.Exp((1.0-r)*p.RetrievabilityGain) - 1.0)
	switch rating {
	case Hard:
		growth *= p.HardPenalty
	case Easy:
		growth *= p.EasyBonus
	}

	return s.floorStability(stability * (1.0 + growth))
}

// nextDifficulty moves difficulty toward the outcome and reverts slightly to
// the midpoint so extreme values do not stick forever.
func (s *Scheduler) nextDifficulty(difficulty float64, rating Rating) float64 {
	d := difficulty - s.params.DifficultyDelta*float64(rating-Good)
	d += s.params.DifficultyReversion * (difficultyMidpoint - d)
	return s.clampDifficulty(d)
}

func (s *Scheduler) floorStability(v float64) float64 {
	return math.Max(v, s.params.MinStability)
}

func (s *Scheduler) clampDifficulty(v float64) float64 {
	return math.Min(math.Max(v, s.params.MinDifficulty), s.params.MaxDifficulty)
}
