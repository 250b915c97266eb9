package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID int `json:"id"`
}

func Test_ReadJSON_ParsesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.txt")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1},{"id":2}]`), 0o600))

	records, err := ReadJSON[[]record](path)
	require.NoError(t, err)
	assert.Equal(t, []record{{ID: 1}, {ID: 2}}, records)
}

func Test_ReadJSON_MissingFile_ReturnsZeroValue(t *testing.T) {
	records, err := ReadJSON[[]record](filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Nil(t, records)
}

func Test_ReadJSON_InvalidJSON_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, err := ReadJSON[[]record](path)
	assert.Error(t, err)
}
