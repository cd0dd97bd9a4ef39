package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/stonepaper/internal/store"
)

// StoreRepository saves the history list as a JSON array under one store key.
// Appends through one repository are serialised, so managers sharing it never
// lose each other's records.
type StoreRepository struct {
	mu     sync.Mutex
	store  store.Store
	key    string
	logger *log.Logger
}

// NewStoreRepository creates a repository over s. An empty key uses DefaultKey.
func NewStoreRepository(s store.Store, key string, logger *log.Logger) *StoreRepository {
	if key == "" {
		key = DefaultKey
	}
	return &StoreRepository{
		store:  s,
		key:    key,
		logger: logger.WithPrefix("history").With("key", key),
	}
}

// Load returns the saved records. An absent key, a corrupt store document or
// malformed JSON all load as an empty history.
func (r *StoreRepository) Load(ctx context.Context) ([]Record, error) {
	data, err := r.store.Get(ctx, r.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return []Record{}, nil
	case errors.Is(err, store.ErrCorrupt):
		r.logger.Warn("Stored history is unreadable, treating as empty", "error", err)
		return []Record{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Warn("Stored history is malformed, treating as empty", "error", err)
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return Trim(records), nil
}

// Save replaces the stored list, keeping at most Capacity records
func (r *StoreRepository) Save(ctx context.Context, records []Record) error {
	records = Trim(records)
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	r.logger.Debug("Saved history", "records", len(records))
	return nil
}

// Append pushes r onto the stored list, evicting the oldest record at capacity
func (r *StoreRepository) Append(ctx context.Context, rec Record) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	records = Push(records, rec)
	if err := r.Save(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Clear removes the key entirely
func (r *StoreRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	r.logger.Debug("Cleared history")
	return nil
}
