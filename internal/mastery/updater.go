package mastery

import (
	"context"

	"github.com/google/uuid"

	"github.com/recallery/recallery-backend/internal/platform/logger"
)

// Exposure is one observed interaction with a concept. ScoreRatio and
// ResponseTimeMs are set only on the AI-graded path; plain flashcard reviews
// leave them nil and take the fixed deltas.
type Exposure struct {
	Correct        bool
	ScoreRatio     *float64
	ResponseTimeMs *int64
}

// Outcome is the mastery state after a successful update.
type Outcome struct {
	MasteryLevel float64
	PeakMastery  float64
}

// Updater applies bounded mastery adjustments under optimistic concurrency.
// Updates to different (user, concept) keys never block each other.
type Updater struct {
	store Store
	gaps  GapResolver
	cfg   Config
	log   *logger.Logger
}

func NewUpdater(store Store, gaps GapResolver, cfg Config, baseLog *logger.Logger) *Updater {
	return &Updater{
		store: store,
		gaps:  gaps,
		cfg:   cfg,
		log:   baseLog.With("component", "MasteryUpdater"),
	}
}

// Update folds one exposure into the (user, concept) mastery record, creating
// it on first exposure. Version conflicts are retried with fresh reads up to
// the configured attempt budget; exhausting it returns an error wrapping
// ErrConcurrencyExhausted for this concept only. Gap resolution on recovery
// is best-effort and never fails the update.
func (u *Updater) Update(ctx context.Context, userID, conceptID uuid.UUID, exp Exposure) (Outcome, error) {
	var out Outcome

	err := RetryOptimistic(ctx, u.cfg.MaxAttempts, func(ctx context.Context) (bool, error) {
		rec, err := u.store.Get(ctx, userID, conceptID)
		if err != nil {
			return false, err
		}

		if rec == nil {
			seed := u.cfg.InitialIncorrect
			recalls := 0
			if exp.Correct {
				seed = u.cfg.InitialCorrect
				recalls = 1
			}
			created := Record{
				UserID:            userID,
				ConceptID:         conceptID,
				MasteryLevel:      seed,
				PeakMastery:       seed,
				TotalExposures:    1,
				SuccessfulRecalls: recalls,
			}
			ok, err := u.store.InsertIfAbsent(ctx, created)
			if err != nil {
				return false, err
			}
			if !ok {
				// Another writer created the row first; fall through to the
				// update path on the next cycle.
				return false, nil
			}
			out = Outcome{MasteryLevel: seed, PeakMastery: seed}
			return true, nil
		}

		level := clamp01(rec.MasteryLevel + u.delta(exp))
		peak := rec.PeakMastery
		if level > peak {
			peak = level
		}

		next := *rec
		next.MasteryLevel = level
		next.PeakMastery = peak
		next.TotalExposures = rec.TotalExposures + 1
		if exp.Correct {
			next.SuccessfulRecalls = rec.SuccessfulRecalls + 1
		}

		rows, err := u.store.ConditionalUpdate(ctx, next, rec.TotalExposures)
		if err != nil {
			return false, err
		}
		if rows == 0 {
			return false, nil
		}
		out = Outcome{MasteryLevel: level, PeakMastery: peak}
		return true, nil
	})
	if err != nil {
		return Outcome{}, err
	}

	if exp.Correct && out.MasteryLevel >= u.cfg.GapResolveThreshold && u.gaps != nil {
		if err := u.gaps.ResolveOpenGaps(ctx, userID, conceptID); err != nil {
			u.log.Warn("knowledge gap resolution failed",
				"user_id", userID, "concept_id", conceptID, "error", err)
		}
	}

	return out, nil
}

// delta computes the signed mastery adjustment for one exposure.
func (u *Updater) delta(exp Exposure) float64 {
	if exp.ScoreRatio == nil {
		if exp.Correct {
			return u.cfg.CorrectDelta
		}
		return -u.cfg.IncorrectDelta
	}

	ratio := clamp01(*exp.ScoreRatio)
	if !exp.Correct {
		return -(u.cfg.GradedIncorrectBase + (1.0-ratio)*u.cfg.GradedIncorrectWeight)
	}
	d := u.cfg.GradedCorrectBase + ratio*u.cfg.GradedScoreWeight
	if exp.ResponseTimeMs != nil && *exp.ResponseTimeMs < u.cfg.FastAnswerMs {
		d += u.cfg.FastAnswerBonus
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
