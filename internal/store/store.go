// Package store defines the capability every game record backend provides.
package store

import (
	"context"
	"errors"
	"fmt"

	"bossfight/internal/state"
)

// Mutation computes the next record from the current one. Returning an
// error aborts the update and leaves the stored record untouched.
type Mutation func(current state.GameState) (state.GameState, error)

// Store owns the single game record.
//
// Load never fails on a missing or unreadable record; it returns the
// default without persisting it. Save, Reset, and Update report write
// failures as *PersistenceError, alongside the in-memory result so the
// caller can still answer the request. An Update that never computed or
// never could have applied its result fails with ErrConflict or
// ErrUnavailable instead.
type Store interface {
	Load(ctx context.Context) (state.GameState, error)
	Save(ctx context.Context, s state.GameState) error
	Reset(ctx context.Context) (state.GameState, error)
	// Update runs a read-modify-write of the record that no other Update,
	// Save, or Reset can interleave with. The stored version is bumped by one.
	Update(ctx context.Context, fn Mutation) (state.GameState, error)
	Close() error
}

// FallbackFunc observes a load that fell back to the default record because
// the stored one could not be read.
type FallbackFunc func(ctx context.Context, err error)

// ErrPersistence matches every *PersistenceError.
var ErrPersistence = errors.New("persistence failure")

// ErrConflict reports a lost compare-and-swap race after all retries. The
// mutation did not land, so it is never a *PersistenceError.
var ErrConflict = errors.New("concurrent update conflict")

// ErrUnavailable reports a record that could not be read, so no mutation
// was attempted.
var ErrUnavailable = errors.New("game state unavailable")

// PersistenceError is a write that did not durably land.
type PersistenceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s store %s: %v", e.Backend, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Fail annotates an error that must reach the caller. Unlike Wrap the
// result never matches ErrPersistence.
func Fail(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s store %s: %w", backend, op, err)
}

// Wrap returns nil for a nil err and a *PersistenceError otherwise.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Backend: backend, Op: op, Err: err}
}
