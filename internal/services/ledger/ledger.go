// Package ledger owns the persisted dataset: transactions, categories,
// budgets, goals and recurring rules. Every mutation is written through to
// storage before it becomes visible; readers always get copies.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"budgetlens/internal/models"
	"budgetlens/internal/services/storage"
)

// FileName is the ledger snapshot inside the data directory
const FileName = "ledger.json"

var (
	ErrNotFound      = errors.New("not found")
	ErrCategoryInUse = errors.New("category is in use")
	ErrInvalid       = errors.New("invalid input")

	// ErrLocked mirrors storage.ErrLocked so callers need only this package
	ErrLocked = storage.ErrLocked
)

// Clock returns the current time
type Clock func() time.Time

// Ledger is the in-memory dataset backed by a storage file
type Ledger struct {
	store *storage.Storage
	log   zerolog.Logger
	now   Clock

	mu     sync.RWMutex
	data   models.Dataset
	loaded bool
}

// Open loads the ledger from store. An encrypted, locked store yields a
// ledger that answers ErrLocked until Reload succeeds.
func Open(store *storage.Storage, log zerolog.Logger) (*Ledger, error) {
	l := &Ledger{store: store, log: log, now: time.Now}
	if err := l.Reload(); err != nil && !errors.Is(err, ErrLocked) {
		return nil, err
	}
	return l, nil
}

// SetClock replaces the time source used for createdAt/updatedAt stamps
func (l *Ledger) SetClock(c Clock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = c
}

// Reload re-reads the snapshot from storage. A missing file starts an empty
// ledger seeded with the default categories.
func (l *Ledger) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.store.ReadFile(FileName)
	switch {
	case errors.Is(err, os.ErrNotExist):
		seeded := models.Dataset{Categories: models.DefaultCategories()}
		if err := l.persist(seeded); err != nil {
			l.loaded = false
			return err
		}
		l.data = seeded
		l.loaded = true
		l.log.Info().Msg("Started new ledger with default categories")
		return nil
	case err != nil:
		l.loaded = false
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	var data models.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse ledger: %w", err)
	}
	l.data = data
	l.loaded = true
	l.log.Info().
		Int("transactions", len(data.Transactions)).
		Int("categories", len(data.Categories)).
		Int("recurring", len(data.RecurringRules)).
		Msg("Ledger loaded")
	return nil
}

// Unload drops the in-memory dataset, e.g. after the storage was locked
func (l *Ledger) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = models.Dataset{}
	l.loaded = false
}

// Snapshot returns a copy of the whole dataset
func (l *Ledger) Snapshot() (models.Dataset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return models.Dataset{}, ErrLocked
	}
	return l.data.Clone(), nil
}

// update applies fn to a copy of the dataset and persists the result. The
// in-memory state only changes when both succeed.
func (l *Ledger) update(fn func(d *models.Dataset, now time.Time) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		return ErrLocked
	}

	next := l.data.Clone()
	if err := fn(&next, l.now().UTC()); err != nil {
		return err
	}
	if err := l.persist(next); err != nil {
		return err
	}
	l.data = next
	return nil
}

// persist writes d to storage. Caller holds mu.
func (l *Ledger) persist(d models.Dataset) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := l.store.WriteFile(FileName, raw); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func remove[T any](items []T, id string, idOf func(T) string) ([]T, error) {
	i := indexOf(items, id, idOf)
	if i < 0 {
		return items, ErrNotFound
	}
	return append(items[:i:i], items[i+1:]...), nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Replace swaps in a whole dataset, e.g. a restored JSON export. Categories
// default to the seeded set when the import carries none.
func (l *Ledger) Replace(d models.Dataset) error {
	for i, tx := range d.Transactions {
		if err := validateTransaction(tx); err != nil {
			return fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}
	if len(d.Categories) == 0 {
		d.Categories = models.DefaultCategories()
	}
	err := l.update(func(next *models.Dataset, _ time.Time) error {
		*next = d.Clone()
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Info().Int("transactions", len(d.Transactions)).Msg("Ledger replaced")
	return nil
}
