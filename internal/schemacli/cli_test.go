package schemacli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bossfight/internal/catalog"
)

func TestExecuteWritesSchemaToStdout(t *testing.T) {
	var stdout bytes.Buffer
	if err := Execute(&stdout, io.Discard, nil); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if doc["title"] != "Boss Fight Stage Catalog" {
		t.Fatalf("unexpected schema title %v", doc["title"])
	}
}

func TestExecuteWritesFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "out", "catalog.schema.json")
	defaultsPath := filepath.Join(dir, "out", "bosses.yaml")

	err := Execute(io.Discard, io.Discard, []string{
		"--out=" + schemaPath,
		"--defaults=" + defaultsPath,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if _, err := os.Stat(schemaPath); err != nil {
		t.Fatalf("expected schema file: %v", err)
	}
	c, err := catalog.LoadFile(defaultsPath)
	if err != nil {
		t.Fatalf("defaults file did not load: %v", err)
	}
	if c.Len() != catalog.Default().Len() {
		t.Fatalf("expected %d stages, got %d", catalog.Default().Len(), c.Len())
	}
}

func TestExecuteChecksCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bosses.yaml")
	if err := Execute(io.Discard, io.Discard, []string{"--schema=false", "--defaults=" + path}); err != nil {
		t.Fatalf("write defaults: %v", err)
	}

	var stdout bytes.Buffer
	if err := Execute(&stdout, io.Discard, []string{"--schema=false", "--check=" + path}); err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "4 stages") {
		t.Fatalf("unexpected check output %q", stdout.String())
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("stages:\n  - index: 2\n    name: X\n    max_hp: 1\n"), 0o644); err != nil {
		t.Fatalf("write broken catalog: %v", err)
	}
	err := Execute(io.Discard, io.Discard, []string{"--schema=false", "--check=" + broken})
	if !errors.Is(err, catalog.ErrInvalidCatalog) {
		t.Fatalf("expected invalid catalog error, got %v", err)
	}
}

func TestExecuteRejectsEmptyRequest(t *testing.T) {
	if err := Execute(io.Discard, io.Discard, []string{"--schema=false"}); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("expected ErrNoOutput, got %v", err)
	}
	if err := Execute(io.Discard, io.Discard, []string{"extra"}); err == nil {
		t.Fatalf("expected error for positional arguments")
	}
	if err := Execute(io.Discard, io.Discard, []string{"--unknown"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
