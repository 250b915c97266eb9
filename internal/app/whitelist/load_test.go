package whitelist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadEntries_ReplacesStoreContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelist.txt")
	require.NoError(t, os.WriteFile(path, []byte(`[{"token":"dG9r","access_profiles":[1,2]}]`), 0o600))

	store := NewStore()
	require.NoError(t, LoadEntries(store, path))

	entry, ok := store.findEntry([]byte("tok"))
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, entry.AccessProfiles)
}

func Test_LoadProfiles_ReplacesStoreContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.txt")
	body := `[{"id":5,"access_points":[1],"time_slots":[{"weekday":1,"from":700,"to":1000}]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	store := NewStore()
	require.NoError(t, LoadProfiles(store, path))

	profile, ok := store.findProfile(5)
	require.True(t, ok)
	assert.Equal(t, []int{1}, profile.AccessPoints)
	require.Len(t, profile.TimeSlots, 1)
	assert.Equal(t, 700, profile.TimeSlots[0].From)
}

func Test_LoadEntries_MissingFile_LeavesStoreEmptyWithoutError(t *testing.T) {
	store := NewStore()
	err := LoadEntries(store, filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)

	_, ok := store.findEntry([]byte("anything"))
	assert.False(t, ok)
}
