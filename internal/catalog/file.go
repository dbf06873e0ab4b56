package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk catalog format. YAML is canonical; JSON documents
// parse as well since they are valid YAML.
type Document struct {
	Stages []Stage `json:"stages" yaml:"stages" jsonschema:"title=Stages,description=Roster entries ordered by index,minItems=1,required"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c, err := New(doc.Stages)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads and validates the catalog document at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal renders c in the canonical YAML document format.
func Marshal(c *Catalog) ([]byte, error) {
	data, err := yaml.Marshal(Document{Stages: c.Stages()})
	if err != nil {
		return nil, fmt.Errorf("catalog: encode: %w", err)
	}
	return data, nil
}
