package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acssjr/vizu/internal/model"
)

var flat = model.Ratings{Attraction: 2, Trust: 2, Intelligence: 2}

func commitN(r *Registry, sessionID string, ratings model.Ratings, n int) Outcome {
	var out Outcome
	for range n {
		out = r.Commit(sessionID, ratings)
	}
	return out
}

func TestCommit_WarnOnceThenPenalize(t *testing.T) {
	r := NewRegistry(time.Hour)

	out := commitN(r, "s1", flat, 4)
	assert.False(t, out.PatternDetected, "no pattern under 5 votes")

	out = r.Commit("s1", flat)
	assert.True(t, out.PatternDetected)
	assert.True(t, out.WarnNow, "5th identical vote warns")
	assert.False(t, out.Penalized, "first offense is not penalized")

	out = r.Commit("s1", flat)
	assert.True(t, out.Penalized, "6th identical vote is penalized")
	assert.False(t, out.WarnNow, "warning fires only once")
}

func TestCommit_RecoveryClearsPenalty(t *testing.T) {
	r := NewRegistry(time.Hour)
	commitN(r, "s1", flat, 6)
	assert.True(t, r.WarningShown("s1"))

	varied := []model.Ratings{
		{Attraction: 0, Trust: 3, Intelligence: 1},
		{Attraction: 3, Trust: 0, Intelligence: 2},
		{Attraction: 1, Trust: 2, Intelligence: 0},
		{Attraction: 2, Trust: 1, Intelligence: 3},
		{Attraction: 0, Trust: 2, Intelligence: 3},
	}
	var out Outcome
	for _, v := range varied {
		out = r.Commit("s1", v)
	}

	assert.False(t, out.PatternDetected)
	assert.False(t, out.Penalized)
	// The warning stays consumed: relapsing goes straight to penalty.
	out = commitN(r, "s1", flat, 5)
	assert.True(t, out.Penalized, "relapse after warning penalizes immediately")
}

func TestCommit_SessionsAreIsolated(t *testing.T) {
	r := NewRegistry(time.Hour)
	commitN(r, "s1", flat, 6)

	out := commitN(r, "s2", flat, 5)
	assert.True(t, out.WarnNow, "a fresh session starts with a clean slate")
}

func TestPeek_MatchesNextCommit(t *testing.T) {
	r := NewRegistry(time.Hour)
	commitN(r, "s1", flat, 4)

	peeked := r.Peek("s1", flat)
	assert.True(t, peeked.PatternDetected, "candidate completes the pattern sample")
	assert.True(t, peeked.WarnNow)

	committed := r.Commit("s1", flat)
	assert.Equal(t, peeked, committed, "commit decides the same outcome the peek predicted")
}

func TestPeek_DoesNotMutateState(t *testing.T) {
	r := NewRegistry(time.Hour)
	commitN(r, "s1", flat, 4)

	// A rejected submission is peeked but never committed. However many
	// times it is retried, the window must not grow and the one-time
	// warning must not be consumed.
	for range 10 {
		out := r.Peek("s1", flat)
		assert.True(t, out.WarnNow, "warning is not consumed by a peek")
		assert.False(t, out.Penalized)
	}
	assert.False(t, r.WarningShown("s1"))

	out := r.Commit("s1", flat)
	assert.True(t, out.WarnNow, "first accepted pattern vote still warns")
}

func TestPeek_FreshSessionIsClean(t *testing.T) {
	r := NewRegistry(time.Hour)

	out := r.Peek("s1", flat)
	assert.False(t, out.PatternDetected)
	assert.Equal(t, 0, r.Len(), "peeking must not create a session")
}

func TestEnd_ResetsState(t *testing.T) {
	r := NewRegistry(time.Hour)
	commitN(r, "s1", flat, 6)
	r.End("s1")

	assert.Equal(t, 0, r.Len())
	out := commitN(r, "s1", flat, 5)
	assert.True(t, out.WarnNow, "state is rebuilt from scratch after End")
}
