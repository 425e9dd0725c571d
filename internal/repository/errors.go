package repository

import "errors"

// Business-rule violations surfaced to callers with a specific reason.
// All of them abort the operation with no side effect.
var (
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrPhotoInactive     = errors.New("photo is not in an active state")
	ErrPhotoExpired      = errors.New("photo has expired")
	ErrSelfVote          = errors.New("raters cannot vote on their own photo")
	ErrDuplicateVote     = errors.New("rater has already voted on this photo")
	ErrVoterNotFound     = errors.New("voter not found")
	ErrNoPhotosAvailable = errors.New("no eligible photos available")
)
