// internal/store/memory.go
//
// In-memory registry of live puzzle controllers.
//
// Characteristics:
//   - Stores *game.Controller values keyed by controller ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Delete and Close stop the controllers' timers so no ticker outlives
//     its puzzle.
//   - State is lost when the process restarts; finished games are recorded
//     in SQLite by the HTTP layer instead.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/wordsearch/internal/game"
)

// ErrNotFound is returned by Get for an unknown puzzle ID.
var ErrNotFound = errors.New("puzzle not found")

// Store keeps live puzzles addressable by ID.
type Store interface {
	// Save registers or replaces a controller under c.ID().
	Save(ctx context.Context, c *game.Controller) error

	// Get returns the controller for id or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Controller, error)

	// Delete tears down and forgets the controller for id.
	// Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Len reports how many puzzles are registered.
	Len() int

	// Close tears down every registered controller.
	Close() error
}

type memory struct {
	mu      sync.RWMutex
	puzzles map[string]*game.Controller
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{puzzles: make(map[string]*game.Controller)}
}

func (m *memory) Save(ctx context.Context, c *game.Controller) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.puzzles[c.ID()]; ok && old != c {
		old.Close()
	}
	m.puzzles[c.ID()] = c
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.puzzles[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	c, ok := m.puzzles[id]
	delete(m.puzzles, id)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.puzzles)
}

func (m *memory) Close() error {
	m.mu.Lock()
	all := m.puzzles
	m.puzzles = make(map[string]*game.Controller)
	m.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
	return nil
}
