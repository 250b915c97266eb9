package ticker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"barracuda/internal/app/bus"
)

func Test_Load_ReplacesTrackedProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin_profiles.txt")
	body := `[{"id":9,"time_slots":[{"weekday":1,"from":0,"to":2359}]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	tk := New(bus.New())
	require.NoError(t, Load(tk, path))

	_, ok := tk.profiles[9]
	require.True(t, ok)
}
