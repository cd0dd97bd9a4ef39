package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	scoresFile := filepath.Join(tmpDir, "scores.json")

	require.NoError(t, WriteFileAtomic(scoresFile, []byte(`{"scores":[]}`), 0o644))

	data, err := os.ReadFile(scoresFile)
	require.NoError(t, err)
	assert.Equal(t, `{"scores":[]}`, string(data))

	info, err := os.Stat(scoresFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// No temp files left behind
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scores.json", entries[0].Name())
}

func TestWriteFileAtomicOverwrite(t *testing.T) {
	t.Parallel()

	scoresFile := filepath.Join(t.TempDir(), "scores.json")
	require.NoError(t, WriteFileAtomic(scoresFile, []byte("initial"), 0o644))
	require.NoError(t, WriteFileAtomic(scoresFile, []byte("updated content"), 0o644))

	data, err := os.ReadFile(scoresFile)
	require.NoError(t, err)
	assert.Equal(t, "updated content", string(data))
}

func TestWriteFileAtomicCreatesDirectory(t *testing.T) {
	t.Parallel()

	scoresFile := filepath.Join(t.TempDir(), "nested", "dir", "scores.json")
	require.NoError(t, WriteFileAtomic(scoresFile, []byte("data"), 0o600))

	data, err := os.ReadFile(scoresFile)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestReadFileIfExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	data, err := ReadFileIfExists(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, data)

	present := filepath.Join(dir, "present.json")
	require.NoError(t, os.WriteFile(present, []byte("[]"), 0o644))
	data, err = ReadFileIfExists(present)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
