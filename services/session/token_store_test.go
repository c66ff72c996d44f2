package session

import (
	"os"
	"path/filepath"
	"testing"

	"powerme/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.UserProfile {
	return models.UserProfile{ID: 7, Email: "amy@example.com", Roles: []string{"USER"}}
}

func credPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "credential.json")
}

func TestPersistentSaveSurvivesNewStore(t *testing.T) {
	path := credPath(t)
	store := NewCredentialStore(path)
	require.NoError(t, store.Save("tok-1", testUser(), true))

	// A fresh store over the same path models a process restart.
	restarted := NewCredentialStore(path)
	cred, err := restarted.Load()
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok-1", cred.Token)
	assert.Equal(t, testUser(), cred.User)
	assert.True(t, cred.Persistent)
}

func TestSessionScopedSaveDoesNotSurviveRestart(t *testing.T) {
	path := credPath(t)
	store := NewCredentialStore(path)
	require.NoError(t, store.Save("tok-1", testUser(), false))

	cred, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.False(t, cred.Persistent)

	restarted := NewCredentialStore(path)
	cred, err = restarted.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestLoadPrefersDurableStore(t *testing.T) {
	store := NewCredentialStore(credPath(t))
	require.NoError(t, store.Save("session-tok", testUser(), false))
	require.NoError(t, store.Save("durable-tok", testUser(), true))

	cred, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "durable-tok", cred.Token)
}

func TestCorruptDurableEntryClearedOnLoad(t *testing.T) {
	path := credPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewCredentialStore(path)
	cred, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupt entry should be removed")
}

func TestClearWipesBothBackends(t *testing.T) {
	path := credPath(t)
	store := NewCredentialStore(path)
	require.NoError(t, store.Save("session-tok", testUser(), false))
	require.NoError(t, store.Save("durable-tok", testUser(), true))

	store.Clear()

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
