// Package session owns the per-session state the pattern detector needs:
// the rater's recent-vote window and the warn-once flags. State is held in
// memory only; a new session always starts clean.
package session

import (
	"sync"
	"time"

	"github.com/acssjr/vizu/internal/engine"
	"github.com/acssjr/vizu/internal/model"
)

// State is the detector state for one rater session.
type State struct {
	Window       *engine.Window
	WarningShown bool
	Penalized    bool
	lastTouched  time.Time
}

// Outcome describes what the pattern state machine decided for one vote.
type Outcome struct {
	PatternDetected bool
	// WarnNow is true exactly once per session: the first vote on which a
	// pattern is detected. The reward for that vote stays full.
	WarnNow bool
	// Penalized is true when the pattern persists after the warning.
	Penalized bool
}

// Registry tracks session states keyed by session ID. Idle sessions are
// swept after the TTL; Vizu treats eviction the same as the rater opening
// a new session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
}

// NewRegistry creates a session registry with the given idle TTL and
// starts its background sweep.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		sessions: make(map[string]*State),
		ttl:      ttl,
	}
	go r.sweep()
	return r
}

// Peek evaluates what the state machine would decide for the candidate
// vote without mutating any session state. The orchestrator peeks before
// the transactional submit: a rejected submission must leave the window
// and the warn-once flags exactly as they were.
func (r *Registry) Peek(sessionID string, ratings model.Ratings) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		// A session's first vote can never complete a pattern sample.
		return Outcome{}
	}
	return decide(s, engine.DetectLowRigor(s.Window.Extended(ratings)))
}

// Commit appends an accepted vote to the session's window and advances
// the warn-once-then-penalize state machine. Call only after the vote is
// durably stored.
func (r *Registry) Commit(sessionID string, ratings model.Ratings) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &State{Window: engine.NewWindow()}
		r.sessions[sessionID] = s
	}
	s.lastTouched = time.Now()

	s.Window.Append(ratings)
	detected := engine.DetectLowRigor(s.Window)
	out := decide(s, detected)

	switch {
	case !detected:
		// Recovery restores the full reward; the warning stays consumed.
		s.Penalized = false
	case !s.WarningShown:
		s.WarningShown = true
	default:
		s.Penalized = true
	}

	return out
}

// decide maps the detection result and the session's current flags onto
// an outcome. Pure read; Commit applies the matching flag transitions.
func decide(s *State, detected bool) Outcome {
	switch {
	case !detected:
		return Outcome{}
	case !s.WarningShown:
		return Outcome{PatternDetected: true, WarnNow: true}
	default:
		return Outcome{PatternDetected: true, Penalized: true}
	}
}

// WarningShown reports whether the session has already been warned.
// Exposed for the orchestrator's karma computation.
func (r *Registry) WarningShown(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	return ok && s.WarningShown
}

// End discards a session's state.
func (r *Registry) End(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of live sessions (for testing and metrics).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		cutoff := time.Now().Add(-r.ttl)
		for id, s := range r.sessions {
			if s.lastTouched.Before(cutoff) {
				delete(r.sessions, id)
			}
		}
		r.mu.Unlock()
	}
}
