// Package schemacli writes the catalog JSON schema and the built-in roster
// as a starter catalog document.
package schemacli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bossfight/internal/catalog"
)

var ErrNoOutput = errors.New("schema: nothing to write")

// Execute parses args and writes the requested documents. An empty --out
// writes the schema to stdout.
func Execute(stdout io.Writer, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "", "path for the catalog JSON schema (stdout when empty)")
	defaults := fs.String("defaults", "", "path for a YAML catalog holding the built-in roster")
	check := fs.String("check", "", "validate a catalog file and report its stage count")
	schemaOnly := fs.Bool("schema", true, "write the JSON schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("schema: unexpected arguments %v", fs.Args())
	}
	if !*schemaOnly && *defaults == "" && *check == "" {
		return ErrNoOutput
	}

	if *check != "" {
		c, err := catalog.LoadFile(*check)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d stages\n", *check, c.Len())
	}

	if *defaults != "" {
		data, err := catalog.Marshal(catalog.Default())
		if err != nil {
			return err
		}
		if err := writeFile(*defaults, data); err != nil {
			return err
		}
	}

	if !*schemaOnly {
		return nil
	}
	data, err := json.MarshalIndent(catalog.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("schema: encode: %w", err)
	}
	data = append(data, '\n')
	if *out == "" {
		_, err := stdout.Write(data)
		return err
	}
	return writeFile(*out, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("schema: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("schema: write %s: %w", path, err)
	}
	return nil
}
