package session

import (
	"math/rand"
)

// interleave repair gives up after this many fixes per input element.
const repairAttemptsPerCard = 3

// ShuffleWithConstraint returns a random permutation of cards in which no
// topic key appears more than maxConsecutive times in a row, when such an
// arrangement exists. Repair is local: the first violating element is swapped
// with the nearest safe element of another topic, searching forward then
// backward, and a small window around the violation is reshuffled when no
// safe swap exists. Attempts are bounded; when the topic distribution makes
// the constraint unsatisfiable the best ordering found so far is returned
// instead of failing. The output is always a permutation of the input.
//
// The rng is the only randomness source, so a seeded rng makes the result
// reproducible.
func ShuffleWithConstraint(cards []Candidate, maxConsecutive int, rng *rand.Rand) []Candidate {
	if maxConsecutive < 1 {
		maxConsecutive = 1
	}

	out := make([]Candidate, len(cards))
	copy(out, cards)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	// Any permutation of at most maxConsecutive cards is trivially valid.
	if len(out) <= maxConsecutive {
		return out
	}

	best := make([]Candidate, len(out))
	copy(best, out)
	bestViolations := countViolations(best, maxConsecutive)

	maxAttempts := repairAttemptsPerCard * len(out)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		i := firstViolation(out, maxConsecutive)
		if i < 0 {
			return out
		}

		if !trySwapForward(out, i, maxConsecutive) && !trySwapBackward(out, i, maxConsecutive) {
			reshuffleWindow(out, i, maxConsecutive, rng)
		}

		if v := countViolations(out, maxConsecutive); v < bestViolations {
			copy(best, out)
			bestViolations = v
			if v == 0 {
				return best
			}
		}
	}

	return best
}

// firstViolation returns the index of the first element extending a
// same-topic run beyond the limit, or -1.
func firstViolation(cards []Candidate, limit int) int {
	run := 0
	for i := range cards {
		if i > 0 && cards[i].TopicKey == cards[i-1].TopicKey {
			run++
		} else {
			run = 1
		}
		if run > limit {
			return i
		}
	}
	return -1
}

// countViolations counts elements that sit beyond the run limit.
func countViolations(cards []Candidate, limit int) int {
	run := 0
	violations := 0
	for i := range cards {
		if i > 0 && cards[i].TopicKey == cards[i-1].TopicKey {
			run++
		} else {
			run = 1
		}
		if run > limit {
			violations++
		}
	}
	return violations
}

func trySwapForward(cards []Candidate, i, limit int) bool {
	for j := i + 1; j < len(cards); j++ {
		if cards[j].TopicKey == cards[i].TopicKey {
			continue
		}
		if swapIfSafe(cards, i, j, limit) {
			return true
		}
	}
	return false
}

func trySwapBackward(cards []Candidate, i, limit int) bool {
	for j := i - 1; j >= 0; j-- {
		if cards[j].TopicKey == cards[i].TopicKey {
			continue
		}
		if swapIfSafe(cards, i, j, limit) {
			return true
		}
	}
	return false
}

// swapIfSafe swaps i and j if the neighborhoods around both positions end up
// free of over-limit runs; otherwise it reverts the swap.
func swapIfSafe(cards []Candidate, i, j, limit int) bool {
	cards[i], cards[j] = cards[j], cards[i]
	if segmentClean(cards, i, limit) && segmentClean(cards, j, limit) {
		return true
	}
	cards[i], cards[j] = cards[j], cards[i]
	return false
}

// segmentClean reports whether no run around position i exceeds the limit.
func segmentClean(cards []Candidate, i, limit int) bool {
	lo := i - limit
	if lo < 0 {
		lo = 0
	}
	hi := i + limit
	if hi > len(cards)-1 {
		hi = len(cards) - 1
	}

	// Extend to full runs so run lengths are measured correctly.
	for lo > 0 && cards[lo-1].TopicKey == cards[lo].TopicKey {
		lo--
	}
	for hi < len(cards)-1 && cards[hi+1].TopicKey == cards[hi].TopicKey {
		hi++
	}

	run := 1
	for k := lo + 1; k <= hi; k++ {
		if cards[k].TopicKey == cards[k-1].TopicKey {
			run++
		} else {
			run = 1
		}
		if run > limit {
			return false
		}
	}
	return true
}

// reshuffleWindow scrambles a local window around a stuck violation so repair
// can make progress from a different arrangement.
func reshuffleWindow(cards []Candidate, i, limit int, rng *rand.Rand) {
	lo := i - limit - 1
	if lo < 0 {
		lo = 0
	}
	hi := i + limit + 1
	if hi > len(cards) {
		hi = len(cards)
	}
	window := cards[lo:hi]
	rng.Shuffle(len(window), func(a, b int) {
		window[a], window[b] = window[b], window[a]
	})
}
