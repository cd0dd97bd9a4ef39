package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lox/stonepaper/internal/fileutil"
)

// ErrCorrupt is returned by Get when the backing document cannot be decoded
var ErrCorrupt = errors.New("store document is corrupt")

// FileStore keeps all keys in a single JSON object on disk, rewritten
// atomically on every change. The file is read on each Get so values written
// by another process are visible.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the JSON document at path. The file
// is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the location of the backing document
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if errors.Is(err, ErrCorrupt) {
		doc = make(map[string]string)
	} else if err != nil {
		return err
	}
	doc[key] = string(value)
	return f.save(doc)
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	switch {
	case errors.Is(err, ErrCorrupt):
		// Clearing a corrupt document leaves a clean one behind
		doc = make(map[string]string)
	case err != nil:
		return err
	default:
		if _, ok := doc[key]; !ok {
			return nil
		}
	}
	delete(doc, key)
	return f.save(doc)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) load() (map[string]string, error) {
	data, err := fileutil.ReadFileIfExists(f.path)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]string)
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return doc, nil
}

func (f *FileStore) save(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	return fileutil.WriteFileAtomic(f.path, data, 0o644)
}
