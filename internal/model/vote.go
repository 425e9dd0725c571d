package model

import "time"

// Ratings holds one raw 0-3 integer rating per trait axis.
type Ratings struct {
	Attraction   int `json:"attraction"`
	Trust        int `json:"trust"`
	Intelligence int `json:"intelligence"`
}

// Values returns the three axis values in a fixed order.
func (r Ratings) Values() [3]int {
	return [3]int{r.Attraction, r.Trust, r.Intelligence}
}

// NormalizedRatings holds the bias/rigor-corrected axis values.
type NormalizedRatings struct {
	Attraction   float64 `json:"attraction"`
	Trust        float64 `json:"trust"`
	Intelligence float64 `json:"intelligence"`
}

// Vote is an immutable record of one rater's feedback on one photo.
// At most one vote exists per (photoId, voterId) pair; the database
// enforces that with a unique constraint.
type Vote struct {
	ID          string            `json:"id"`
	PhotoID     string            `json:"photoId"`
	VoterID     string            `json:"voterId"`
	Raw         Ratings           `json:"raw"`
	Normalized  NormalizedRatings `json:"normalized"`
	VoterWeight float64           `json:"voterWeight"`
	VoterBias   float64           `json:"voterBias"`
	Tags        []string          `json:"tags,omitempty"`
	Note        string            `json:"note,omitempty"`
	DurationMs  *int              `json:"-"`
	Device      string            `json:"-"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// SubmissionMeta is optional client-side metadata attached to a vote.
type SubmissionMeta struct {
	DurationMs int    `json:"durationMs,omitempty"`
	Device     string `json:"device,omitempty"`
}

// VoteRequest is the API request body for submitting a vote.
type VoteRequest struct {
	VoterID   string          `json:"voterId"`
	PhotoID   string          `json:"photoId"`
	SessionID string          `json:"sessionId,omitempty"`
	Ratings   Ratings         `json:"ratings"`
	Tags      []string        `json:"tags,omitempty"`
	Note      string          `json:"note,omitempty"`
	Meta      *SubmissionMeta `json:"meta,omitempty"`
}

// SkipRequest is the API request body for skipping a photo.
type SkipRequest struct {
	VoterID string `json:"voterId"`
	PhotoID string `json:"photoId"`
}

// VoteResponse is the API response after submitting a vote.
type VoteResponse struct {
	Success     bool   `json:"success"`
	VoteID      string `json:"voteId"`
	KarmaEarned int    `json:"karmaEarned"`
	// Warning is true exactly once: the first time a low-rigor rating
	// pattern is detected in the rater's session.
	Warning bool `json:"warning,omitempty"`
	// Category and Penalized are kept server-side for instrumentation.
	Category  string `json:"-"`
	Penalized bool   `json:"-"`
}
