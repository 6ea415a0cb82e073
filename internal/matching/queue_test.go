package matching

import (
	"errors"
	"testing"

	"dealmatch/internal/domain"
)

func profiles(ids ...string) []domain.Profile {
	out := make([]domain.Profile, len(ids))
	for i, id := range ids {
		out[i] = domain.Profile{ID: id, Name: "Profile " + id}
	}
	return out
}

func collect(q *Queue, n int) []string {
	var ids []string
	for p := range q.Peek(n) {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestQueuePeekDoesNotAdvance(t *testing.T) {
	q := NewQueue(profiles("p1", "p2", "p3", "p4"))
	first := collect(q, 3)
	second := collect(q, 3)
	if len(first) != 3 || first[0] != "p1" || first[2] != "p3" {
		t.Fatalf("unexpected peek: %v", first)
	}
	if len(second) != 3 || second[0] != first[0] {
		t.Fatalf("peek not restartable: %v vs %v", first, second)
	}
	if q.Position() != 0 {
		t.Fatalf("peek moved cursor to %d", q.Position())
	}
	q.Advance()
	q.Advance()
	q.Advance()
	if got := collect(q, 3); len(got) != 1 || got[0] != "p4" {
		t.Fatalf("expected tail peek [p4], got %v", got)
	}
	if got := collect(q, -1); len(got) != 0 {
		t.Fatalf("negative peek yielded %v", got)
	}
}

func TestQueueSaturatesAtEnd(t *testing.T) {
	q := NewQueue(profiles("p1"))
	if _, err := q.Current(); err != nil {
		t.Fatalf("current: %v", err)
	}
	q.Advance()
	q.Advance()
	if q.Position() != 1 || !q.Exhausted() {
		t.Fatalf("expected saturated cursor at 1, got %d", q.Position())
	}
	if _, err := q.Current(); !errors.Is(err, domain.ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}

func TestQueueEarlyStopInPeek(t *testing.T) {
	q := NewQueue(profiles("p1", "p2", "p3"))
	seen := 0
	for range q.Peek(3) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected early stop after one, got %d", seen)
	}
}

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{"like": Like, "right": Like, "pass": Pass, "left": Pass}
	for in, want := range cases {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Errorf("expected error for unknown direction")
	}
}
