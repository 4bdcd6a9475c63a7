package session

import (
	"sort"

	"github.com/recallery/recallery-backend/internal/srs"
)

// SelectByPriority takes the highest-priority cards up to cfg.CardCount,
// capping new-state cards at cfg.MaxNewCards. New cards displaced by the cap
// are deferred, not dropped: if the greedy pass comes up short they backfill
// the remaining slots in priority order. Output size is always
// min(cfg.CardCount, len(cards)).
func SelectByPriority(cards []Candidate, cfg Config) []Candidate {
	if cfg.CardCount <= 0 || len(cards) == 0 {
		return []Candidate{}
	}

	pool := make([]Candidate, len(cards))
	copy(pool, cards)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].PriorityScore > pool[j].PriorityScore
	})

	selected := make([]Candidate, 0, cfg.CardCount)
	deferred := make([]Candidate, 0)
	newTaken := 0

	for _, c := range pool {
		if len(selected) == cfg.CardCount {
			break
		}
		if c.State == srs.StateNew && newTaken >= cfg.MaxNewCards {
			deferred = append(deferred, c)
			continue
		}
		if c.State == srs.StateNew {
			newTaken++
		}
		selected = append(selected, c)
	}

	// Short of target with deferred new cards left over: the new-card cap
	// yields rather than returning a smaller session.
	for _, c := range deferred {
		if len(selected) == cfg.CardCount {
			break
		}
		selected = append(selected, c)
	}

	return selected
}
