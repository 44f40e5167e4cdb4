package instagram_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitroom-app/backend/internal/instagram"
)

func stateFixture() instagram.State {
	return instagram.State{
		Username: "poster",
		DeviceID: "device-123",
		Cookies: []instagram.Cookie{
			{Name: "sessionid", Value: "abc", Domain: ".instagram.com", Path: "/"},
			{Name: "csrftoken", Value: "xyz"},
		},
	}
}

func TestState_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	in := stateFixture()

	require.NoError(t, instagram.SaveState(path, in))
	got, err := instagram.LoadState(path)

	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestState_SaveOwnerOnlyPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, instagram.SaveState(path, stateFixture()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "state file holds live credentials")
}

func TestState_LoadMissing(t *testing.T) {
	_, err := instagram.LoadState(filepath.Join(t.TempDir(), "absent.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestState_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))

	_, err := instagram.LoadState(path)

	require.Error(t, err)
}

func TestState_RemoveIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, instagram.SaveState(path, stateFixture()))

	require.NoError(t, instagram.RemoveState(path))
	assert.NoError(t, instagram.RemoveState(path), "removing an absent file is fine")
}
