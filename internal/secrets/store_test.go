package secrets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "credentials"))

	require.NoError(t, store.SetPassword("user@example.com", "hunter2"))

	password, err := store.Password("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)
}

func TestPasswordMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Password("user@example.com")
	assert.ErrorIs(t, err, ErrNoStoredCredential)
}

func TestDeletePassword(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.SetPassword("user@example.com", "hunter2"))

	require.NoError(t, store.DeletePassword("user@example.com"))

	_, err := store.Password("user@example.com")
	assert.ErrorIs(t, err, ErrNoStoredCredential)

	assert.ErrorIs(t, store.DeletePassword("user@example.com"), ErrNoStoredCredential)
}

func TestSetPasswordOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.SetPassword("user@example.com", "old"))
	require.NoError(t, store.SetPassword("user@example.com", "new"))

	password, err := store.Password("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new", password)
}
