package session

import (
	"time"

	"github.com/recallery/recallery-backend/internal/srs"
)

// Score assigns an urgency score to one candidate. It is deterministic for
// identical inputs and always returns a finite value.
//
// Ranking intent, most to least urgent: overdue review cards (more overdue
// first), new cards, recently reviewed not-yet-due cards. Weak topics and
// frequently lapsed cards are boosted on top of that.
func Score(c Candidate, now time.Time, t Tuning) float64 {
	score := 0.0

	if c.State == srs.StateNew {
		score += t.NewCardBonus
	} else if !c.DueAt.After(now) {
		score += t.DueBonus
		overdueDays := now.Sub(c.DueAt).Hours() / 24
		if overdueDays > t.OverdueCapDays {
			overdueDays = t.OverdueCapDays
		}
		score += overdueDays * t.OverduePerDay
	} else {
		score += t.NotYetDuePenalty
		if !c.LastReviewedAt.IsZero() && now.Sub(c.LastReviewedAt).Hours() < t.RecentWindowHours {
			score += t.RecentPenalty
		}
	}

	if c.LessonMastery < t.WeakThreshold {
		score += t.WeakWeight * (1.0 - c.LessonMastery)
	}

	if c.Lapses >= t.LapseThreshold {
		lapses := c.Lapses
		if lapses > t.LapseCap {
			lapses = t.LapseCap
		}
		score += t.LapseWeight * float64(lapses)
	}

	return score
}

// ScoreAll annotates every candidate in place and returns the slice.
func ScoreAll(cards []Candidate, now time.Time, t Tuning) []Candidate {
	for i := range cards {
		cards[i].PriorityScore = Score(cards[i], now, t)
	}
	return cards
}
