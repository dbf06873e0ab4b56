package memory

import (
	"context"
	"errors"
	"testing"

	"bossfight/internal/catalog"
	"bossfight/internal/state"
	"bossfight/internal/store"
)

func TestFailWritesKeepsPreviousRecord(t *testing.T) {
	s := New(state.DefaultsFor(catalog.Default, nil))
	ctx := context.Background()
	diskFull := errors.New("disk full")

	s.FailWrites(diskFull)
	next, err := s.Update(ctx, func(cur state.GameState) (state.GameState, error) {
		cur.CurrentHP = 1
		return cur, nil
	})
	if !errors.Is(err, store.ErrPersistence) || !errors.Is(err, diskFull) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if next.CurrentHP != 1 {
		t.Fatalf("expected in-memory result, got %+v", next)
	}

	loaded, _ := s.Load(ctx)
	if loaded.CurrentHP != 100 {
		t.Fatalf("failed write must not land, got %+v", loaded)
	}

	s.FailWrites(nil)
	if _, err := s.Update(ctx, func(cur state.GameState) (state.GameState, error) { return cur, nil }); err != nil {
		t.Fatalf("expected writes to recover, got %v", err)
	}
}

func TestResetAfterSeed(t *testing.T) {
	s := New(state.DefaultsFor(catalog.Default, nil))
	s.Seed(state.GameState{Level: 4, CurrentHP: 0, MaxHP: 200, Version: 9})

	reset, err := s.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if reset.Level != 1 || reset.CurrentHP != 100 || reset.Version != 10 {
		t.Fatalf("unexpected reset %+v", reset)
	}
	loaded, _ := s.Load(context.Background())
	if loaded != reset {
		t.Fatalf("Load after Reset = %+v, want %+v", loaded, reset)
	}
}
