package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "stonepaper.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "stonepaper.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := open(t)

			_, err := s.Get(ctx, "scores")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "scores", []byte(`[{"userWins":1,"computerWins":2}]`)))
			value, err := s.Get(ctx, "scores")
			require.NoError(t, err)
			assert.Equal(t, `[{"userWins":1,"computerWins":2}]`, string(value))

			require.NoError(t, s.Set(ctx, "scores", []byte(`[]`)))
			value, err = s.Get(ctx, "scores")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(value))

			require.NoError(t, s.Set(ctx, "other", []byte("x")))
			require.NoError(t, s.Delete(ctx, "scores"))
			_, err = s.Get(ctx, "scores")
			assert.ErrorIs(t, err, ErrNotFound)

			value, err = s.Get(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, "x", string(value))

			// Deleting a missing key is not an error
			require.NoError(t, s.Delete(ctx, "scores"))

			assert.Error(t, s.Set(ctx, " ", []byte("x")))
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stonepaper.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "scores", []byte(`[{"userWins":3,"computerWins":0}]`)))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	value, err := second.Get(ctx, "scores")
	require.NoError(t, err)
	assert.Equal(t, `[{"userWins":3,"computerWins":0}]`, string(value))
}

func TestFileStoreCorruptDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stonepaper.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "scores")
	assert.ErrorIs(t, err, ErrCorrupt)

	// A write replaces the corrupt document
	require.NoError(t, s.Set(ctx, "scores", []byte("[]")))
	value, err := s.Get(ctx, "scores")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
}

func TestSQLiteStorePersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stonepaper.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "scores", []byte(`[]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	value, err := second.Get(ctx, "scores")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
}

func TestOpen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := Open(DriverFile, filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(DriverSQLite, filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", "")
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(DriverFile, "")
	assert.Error(t, err)
}
