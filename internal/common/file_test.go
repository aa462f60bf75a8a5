package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "state.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(path+".tmp"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, FileExists(dir), "directories are not files")
	assert.False(t, FileExists(filepath.Join(dir, "missing")))

	_, err := os.Stat(filepath.Join(dir, "missing"))
	assert.True(t, IsNotExist(err))
}

func TestEnsureParentDir(t *testing.T) {
	assert.NoError(t, EnsureParentDir("state.json"))

	path := filepath.Join(t.TempDir(), "x", "y", "z.csv")
	require.NoError(t, EnsureParentDir(path))
	assert.DirExists(t, filepath.Dir(path))
}
