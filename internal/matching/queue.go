// Package matching holds the swipe-driven discovery machine: a candidate
// queue with a forward-only cursor and an engine that turns likes into
// matches.
package matching

import (
	"iter"

	"dealmatch/internal/domain"
)

// Queue is an ordered, immutable candidate list with a cursor that only
// moves forward. It is not safe for concurrent use.
type Queue struct {
	candidates []domain.Profile
	cursor     int
}

// NewQueue copies candidates into a fresh queue positioned at 0.
func NewQueue(candidates []domain.Profile) *Queue {
	return &Queue{candidates: append([]domain.Profile(nil), candidates...)}
}

// Len is the number of candidates the queue was built with.
func (q *Queue) Len() int { return len(q.candidates) }

// Position returns the cursor.
func (q *Queue) Position() int { return q.cursor }

// Exhausted reports whether no candidate remains.
func (q *Queue) Exhausted() bool { return q.cursor >= len(q.candidates) }

// Current returns the candidate at the cursor.
func (q *Queue) Current() (domain.Profile, error) {
	if q.Exhausted() {
		return domain.Profile{}, domain.ErrNoCandidate
	}
	return q.candidates[q.cursor], nil
}

// Peek yields up to n candidates starting at the cursor without moving it.
// The sequence is bound to the cursor at call time and can be ranged over
// repeatedly.
func (q *Queue) Peek(n int) iter.Seq[domain.Profile] {
	start := q.cursor
	end := min(start+max(n, 0), len(q.candidates))
	return func(yield func(domain.Profile) bool) {
		for i := start; i < end; i++ {
			if !yield(q.candidates[i]) {
				return
			}
		}
	}
}

// Advance moves the cursor by one. It saturates at Len.
func (q *Queue) Advance() {
	if q.cursor < len(q.candidates) {
		q.cursor++
	}
}
