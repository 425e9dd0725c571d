package model

import "time"

// Photo status lifecycle. Only approved photos are served to raters.
const (
	PhotoStatusPending  = "pending"
	PhotoStatusApproved = "approved"
	PhotoStatusRejected = "rejected"
	PhotoStatusExpired  = "expired"
)

// Photo represents an uploaded photo with its vote aggregate.
type Photo struct {
	PhotoID      string     `json:"photoId"`
	OwnerID      string     `json:"-"`
	ImageURL     string     `json:"imageUrl"`
	Category     string     `json:"category,omitempty"`
	Status       string     `json:"-"`
	VoteCount    int        `json:"totalVotes"`
	TargetGender *string    `json:"-"`
	TargetAgeMin *int       `json:"-"`
	TargetAgeMax *int       `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"-"`
	LastUpdated  time.Time  `json:"lastUpdated"`

	// Aggregate values are nil until the photo has at least one vote.
	AvgAttraction   *float64 `json:"avgAttraction,omitempty"`
	AvgTrust        *float64 `json:"avgTrust,omitempty"`
	AvgIntelligence *float64 `json:"avgIntelligence,omitempty"`
	AvgConfidence   *float64 `json:"avgConfidence,omitempty"`
}

// NextPhotoResponse is the minimal descriptor returned to a rater by
// GET /api/photos/next.
type NextPhotoResponse struct {
	PhotoID  string `json:"photoId"`
	ImageURL string `json:"imageUrl"`
	Category string `json:"category,omitempty"`
}

// PhotoAggregateResponse is the owner-facing aggregate view of a photo.
type PhotoAggregateResponse struct {
	PhotoID         string   `json:"photoId"`
	VoteCount       int      `json:"totalVotes"`
	AvgAttraction   *float64 `json:"avgAttraction"`
	AvgTrust        *float64 `json:"avgTrust"`
	AvgIntelligence *float64 `json:"avgIntelligence"`
	AvgConfidence   *float64 `json:"avgConfidence"`
	LastUpdated     string   `json:"lastUpdated"`
}
