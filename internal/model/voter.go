package model

import "time"

// Voter represents a rater profile with karma and demographic metadata.
// Gender and BirthDate feed the photo targeting filters; both are optional.
type Voter struct {
	VoterID    string     `json:"voterId"`
	Gender     *string    `json:"-"`
	BirthDate  *time.Time `json:"-"`
	Karma      int        `json:"karma"`
	TotalVotes int        `json:"totalVotes"`
	FirstSeen  time.Time  `json:"-"`
	LastActive time.Time  `json:"-"`
}

// Age returns the voter's age in floored whole years at the given time,
// or -1 if the birth date is unknown.
func (v *Voter) Age(now time.Time) int {
	if v.BirthDate == nil {
		return -1
	}
	years := now.Year() - v.BirthDate.Year()
	anniversary := v.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// VoterResponse is the API response for voter lookups.
type VoterResponse struct {
	VoterID    string `json:"voterId"`
	Karma      int    `json:"karma"`
	TotalVotes int    `json:"totalVotes"`
	AccountAge int    `json:"accountAge"`
}

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalPhotos     int `json:"totalPhotos"`
	TotalVotes      int `json:"totalVotes"`
	TotalVoters     int `json:"totalVoters"`
	ActiveVoters24h int `json:"activeVoters24h"`
}
