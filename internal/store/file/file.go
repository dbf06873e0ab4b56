// Package file persists the game record as a JSON document on local disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"bossfight/internal/state"
	"bossfight/internal/store"
)

const backend = "file"

// Store keeps the record in one JSON file. Writes go to a temporary file in
// the same directory that is then renamed over the record.
type Store struct {
	mu         sync.Mutex
	path       string
	defaults   state.Defaults
	OnFallback store.FallbackFunc
}

var _ store.Store = (*Store)(nil)

func New(path string, defaults state.Defaults) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	if defaults == nil {
		return nil, fmt.Errorf("defaults are required")
	}
	return &Store{path: filepath.Clean(path), defaults: defaults}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx), nil
}

func (s *Store) Save(ctx context.Context, st state.GameState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Wrap(backend, "save", s.writeLocked(st))
}

func (s *Store) Reset(ctx context.Context) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.loadLocked(ctx)
	next := s.defaults()
	next.Version = previous.Version + 1

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return next, store.Wrap(backend, "reset", err)
	}
	return next, store.Wrap(backend, "reset", s.writeLocked(next))
}

func (s *Store) Update(ctx context.Context, fn store.Mutation) (state.GameState, error) {
	if err := ctx.Err(); err != nil {
		return state.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.loadLocked(ctx)
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	next.Version = current.Version + 1
	return next, store.Wrap(backend, "update", s.writeLocked(next))
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) loadLocked(ctx context.Context) state.GameState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.fallback(ctx, err)
		}
		return s.defaults()
	}
	var st state.GameState
	if err := json.Unmarshal(data, &st); err != nil {
		s.fallback(ctx, fmt.Errorf("decode %s: %w", s.path, err))
		return s.defaultsAt(versionOf(data))
	}
	if !st.Valid() {
		s.fallback(ctx, fmt.Errorf("decode %s: record out of range: %+v", s.path, st))
		return s.defaultsAt(st.Version)
	}
	return st
}

// defaultsAt is the default record carrying the version of the unusable one
// it replaces, so versions never move backwards.
func (s *Store) defaultsAt(version uint64) state.GameState {
	st := s.defaults()
	st.Version = version
	return st
}

// versionOf salvages the version field from a record whose other fields do
// not decode. Unparseable data yields zero.
func versionOf(data []byte) uint64 {
	var stamp struct {
		Version uint64 `json:"version"`
	}
	if err := json.Unmarshal(data, &stamp); err != nil {
		return 0
	}
	return stamp.Version
}

func (s *Store) writeLocked(st state.GameState) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) fallback(ctx context.Context, err error) {
	if s.OnFallback != nil {
		s.OnFallback(ctx, err)
	}
}
