package queue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acssjr/vizu/pkg/hash"
)

func TestLoadOrCreateIdentity_CreatesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")

	id, err := LoadOrCreateIdentity(path)
	require.NoError(t, err)
	assert.NotEmpty(t, id.LocalUUID)
	assert.Equal(t, hash.HashVoterID(id.LocalUUID), id.VoterID)
	assert.Len(t, id.VoterID, 64)

	// Second load returns the same identity.
	again, err := LoadOrCreateIdentity(path)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestLoadOrCreateIdentity_RegeneratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")
	require.NoError(t, os.WriteFile(path, []byte("not-a-uuid"), 0o600))

	id, err := LoadOrCreateIdentity(path)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", id.LocalUUID)
	assert.Equal(t, hash.HashVoterID(id.LocalUUID), id.VoterID)
}
