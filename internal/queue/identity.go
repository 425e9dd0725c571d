package queue

import (
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/acssjr/vizu/pkg/hash"
)

// Identity is the device-local credential a rater votes under. The raw
// UUID never leaves the device; only the derived voter ID is sent with
// votes, so submissions stay anonymous and unlinkable to the device.
type Identity struct {
	LocalUUID string
	VoterID   string
}

// LoadOrCreateIdentity reads the device UUID from path, generating and
// persisting a fresh one on first run, and derives the voter ID from it.
func LoadOrCreateIdentity(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		localUUID := strings.TrimSpace(string(data))
		if _, parseErr := uuid.Parse(localUUID); parseErr == nil {
			return Identity{LocalUUID: localUUID, VoterID: hash.HashVoterID(localUUID)}, nil
		}
		// Corrupt file: regenerate rather than vote under a malformed ID.
	} else if !errors.Is(err, os.ErrNotExist) {
		return Identity{}, err
	}

	localUUID := uuid.NewString()
	if err := os.WriteFile(path, []byte(localUUID+"\n"), 0o600); err != nil {
		return Identity{}, err
	}
	return Identity{LocalUUID: localUUID, VoterID: hash.HashVoterID(localUUID)}, nil
}
