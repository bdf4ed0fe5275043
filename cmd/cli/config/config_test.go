package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("LANDLAB_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	f, err := Load()
	require.NoError(t, err)
	assert.Equal(t, File{}, f)
}

func TestSaveLoad_RoundTripAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landlab.yaml")
	t.Setenv("LANDLAB_CONFIG", path)

	want := File{APIURL: "http://api.test", Token: "tok", Username: "alice"}
	require.NoError(t, Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "landlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))
	t.Setenv("LANDLAB_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestAPIURL_Precedence(t *testing.T) {
	t.Setenv("LANDLAB_API_URL", "")
	assert.Equal(t, defaultAPIURL, APIURL(File{}))
	assert.Equal(t, "http://file.test", APIURL(File{APIURL: "http://file.test"}))

	t.Setenv("LANDLAB_API_URL", "http://env.test")
	assert.Equal(t, "http://env.test", APIURL(File{APIURL: "http://file.test"}))
}
