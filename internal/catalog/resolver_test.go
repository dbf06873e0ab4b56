package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type memorySource struct {
	path string
	data []byte
	err  error
}

func (m *memorySource) Load() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memorySource) Path() string {
	return m.path
}

func TestResolverWithoutSourceServesDefault(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Current() != Default() {
		t.Fatalf("expected built-in roster")
	}
	if r.Path() != "" {
		t.Fatalf("expected empty path, got %q", r.Path())
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload without source should be a no-op, got %v", err)
	}
}

func TestResolverReloadKeepsPreviousOnFailure(t *testing.T) {
	src := &memorySource{path: "inline.yaml", data: []byte(twoStageYAML)}
	r, err := NewResolver(src)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	if r.Current().Len() != 2 {
		t.Fatalf("expected 2 stages, got %d", r.Current().Len())
	}

	src.data = []byte("stages: []")
	if err := r.Reload(); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
	if r.Current().Len() != 2 {
		t.Fatalf("failed reload must keep previous catalog")
	}

	src.err = os.ErrPermission
	if err := r.Reload(); !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected load error to surface, got %v", err)
	}
}

func TestNewResolverFailsOnBadInitialSource(t *testing.T) {
	if _, err := NewResolver(&memorySource{path: "bad.yaml", data: []byte("stages: [")}); err == nil {
		t.Fatalf("expected error for bad initial catalog")
	}
}

func TestWatcherReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(twoStageYAML), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	w, err := Watch(r)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewrite catalog: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-w.Reloads:
			if err != nil {
				continue
			}
			if r.Current().Len() == 4 {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for reload, have %d stages", r.Current().Len())
		}
	}
}
