// Package memory keeps the game record in process memory. It backs tests and
// ephemeral runs, and can simulate write failures.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bossfight/internal/state"
	"bossfight/internal/store"
)

const backend = "memory"

type Store struct {
	mu       sync.Mutex
	defaults state.Defaults
	record   *state.GameState
	failErr  error
}

var _ store.Store = (*Store)(nil)

func New(defaults state.Defaults) *Store {
	return &Store{defaults: defaults}
}

// FailWrites makes every subsequent write fail with err until called with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Seed replaces the stored record without bumping its version.
func (s *Store) Seed(st state.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = &st
}

func (s *Store) Load(ctx context.Context) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(), nil
}

func (s *Store) Save(ctx context.Context, st state.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked("save", st)
}

func (s *Store) Reset(ctx context.Context) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.loadLocked()
	s.record = nil
	next := s.defaults()
	next.Version = previous.Version + 1
	return next, s.writeLocked("reset", next)
}

func (s *Store) Update(ctx context.Context, fn store.Mutation) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.loadLocked()
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	next.Version = current.Version + 1
	return next, s.writeLocked("update", next)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) loadLocked() state.GameState {
	if s.record == nil {
		return s.defaults()
	}
	return *s.record
}

func (s *Store) writeLocked(op string, st state.GameState) error {
	if s.failErr != nil {
		return store.Wrap(backend, op, fmt.Errorf("simulated: %w", s.failErr))
	}
	s.record = &st
	return nil
}
