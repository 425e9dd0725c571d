package engine

import (
	"gonum.org/v1/gonum/stat"

	"github.com/acssjr/vizu/internal/model"
)

const (
	// WindowSize is how many recent votes a session window retains.
	WindowSize = 10

	// Pattern detection looks at the most recent patternSample votes.
	patternSample = 5

	// Below this population stddev across the flattened axis values,
	// the recent votes are considered a low-rigor pattern.
	patternStdDevThreshold = 0.3
)

// Window is a bounded buffer of a rater's most recent raw votes. It lives
// in the rater's session and is never persisted; a new session starts with
// an empty window.
type Window struct {
	entries []model.Ratings
}

// NewWindow returns an empty recent-vote window.
func NewWindow() *Window {
	return &Window{entries: make([]model.Ratings, 0, WindowSize)}
}

// Append adds a vote to the window, evicting the oldest entry once the
// window is full.
func (w *Window) Append(r model.Ratings) {
	w.entries = append(w.entries, r)
	if len(w.entries) > WindowSize {
		w.entries = w.entries[len(w.entries)-WindowSize:]
	}
}

// Len returns the number of votes currently in the window.
func (w *Window) Len() int {
	return len(w.entries)
}

// Extended returns a copy of the window with the candidate vote appended,
// leaving the receiver untouched. Used to evaluate a vote before it is
// accepted.
func (w *Window) Extended(r model.Ratings) *Window {
	c := &Window{entries: make([]model.Ratings, len(w.entries), len(w.entries)+1)}
	copy(c.entries, w.entries)
	c.Append(r)
	return c
}

// flattenRecent returns the axis values of the last n entries as one list.
func (w *Window) flattenRecent(n int) []float64 {
	start := len(w.entries) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, n*3)
	for _, e := range w.entries[start:] {
		for _, v := range e.Values() {
			out = append(out, float64(v))
		}
	}
	return out
}

// DetectLowRigor reports whether the rater's recent votes show
// suspiciously little variance (e.g. always clicking the same button).
// Requires at least 5 votes in the window; only the most recent 5 count.
func DetectLowRigor(w *Window) bool {
	if w == nil || w.Len() < patternSample {
		return false
	}
	values := w.flattenRecent(patternSample)
	return stat.PopStdDev(values, nil) < patternStdDevThreshold
}

// KarmaWithPenalty applies the warn-once-then-penalize rule to the base
// reward. The first detected pattern is free (the rater gets a warning
// instead); once the warning has been shown, a persisting pattern earns
// zero. There is no partial penalty.
func KarmaWithPenalty(baseKarma int, patternDetected, warningShown bool) int {
	if patternDetected && warningShown {
		return 0
	}
	return baseKarma
}
