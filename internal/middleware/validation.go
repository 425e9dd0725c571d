package middleware

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxPhotoIDLen = 64  // photos.photo_id VARCHAR(64)
	MaxVoterIDLen = 64  // voters.voter_id VARCHAR(64)
	MaxNoteLen    = 500 // votes.note VARCHAR(500)
	MaxTagLen     = 32  // feedback tag entries
	MaxTags       = 10

	// Rating scale bounds. Ratings are integers; anything outside is
	// rejected before any side effect.
	RatingMin = 0
	RatingMax = 3
)

var (
	// photoIDRe matches photo IDs: UUIDs or other url-safe identifiers.
	photoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// voterIDRe matches voter IDs: hex SHA256 hashes (64 chars) or shorter hashed IDs.
	voterIDRe = regexp.MustCompile(`^[0-9a-f]+$`)
	// tagRe matches feedback tags: lowercase snake_case labels.
	tagRe = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidatePhotoID checks that a photo ID is well-formed and within DB limits.
func ValidatePhotoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "photoId is required"
	}
	if len(id) > MaxPhotoIDLen {
		return "", "photoId must be at most 64 characters"
	}
	if !photoIDRe.MatchString(id) {
		return "", "photoId contains invalid characters"
	}
	return id, ""
}

// ValidateVoterID checks that a voter ID is a valid hex hash.
func ValidateVoterID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "voterId is required"
	}
	if len(id) > MaxVoterIDLen {
		return "", "voterId must be at most 64 characters"
	}
	if !voterIDRe.MatchString(id) {
		return "", "voterId must be a hexadecimal hash"
	}
	return id, ""
}

// ValidateRating checks a single axis value: integer within [0, 3].
// JSON decoding already rejects non-integers for int fields, so the
// bounds are the remaining check.
func ValidateRating(axis string, value int) string {
	if value < RatingMin || value > RatingMax {
		return axis + " rating must be between 0 and 3"
	}
	return ""
}

// ValidateTags trims, bounds, and filters the feedback tag list.
func ValidateTags(tags []string) ([]string, string) {
	if len(tags) > MaxTags {
		return nil, "at most 10 tags are allowed"
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag == "" {
			continue
		}
		if len(tag) > MaxTagLen || !tagRe.MatchString(tag) {
			return nil, "invalid tag: " + tag
		}
		out = append(out, tag)
	}
	return out, ""
}

// ValidateNote trims and truncates the optional free-text note to DB
// limits. Truncation backs off to a rune boundary so a multi-byte
// character is never split into invalid UTF-8.
func ValidateNote(note string) string {
	note = strings.TrimSpace(note)
	if len(note) > MaxNoteLen {
		cut := MaxNoteLen
		for cut > 0 && !utf8.RuneStart(note[cut]) {
			cut--
		}
		note = note[:cut]
	}
	return note
}
