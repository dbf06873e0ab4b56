// Package catalog holds the fixed, ordered roster of bosses the game cycles
// through and the policies that map a stage number onto a roster entry.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Background is the presentation theme the student view switches to while a
// stage is active.
type Background struct {
	ID             string  `json:"name" yaml:"id" jsonschema:"title=Background id,required"`
	Color          string  `json:"color" yaml:"color" jsonschema:"title=Base color"`
	Gradient       string  `json:"gradient" yaml:"gradient" jsonschema:"title=CSS gradient"`
	LightIntensity float64 `json:"light_intensity" yaml:"light_intensity" jsonschema:"minimum=0,maximum=1"`
	WaterEffect    bool    `json:"water_effect" yaml:"water_effect"`
	ParticleColor  string  `json:"particle_color" yaml:"particle_color"`
}

// Stage is one immutable roster entry.
type Stage struct {
	Index      int               `json:"index" yaml:"index" jsonschema:"title=Stage index,description=1-based position in the roster,minimum=1,required"`
	Name       string            `json:"name" yaml:"name" jsonschema:"title=Display name,required"`
	Names      map[string]string `json:"names,omitempty" yaml:"names,omitempty" jsonschema:"description=Localized display names keyed by BCP 47 tag"`
	Emoji      string            `json:"emoji" yaml:"emoji"`
	Image      string            `json:"image" yaml:"image"`
	MaxHP      int               `json:"max_hp" yaml:"max_hp" jsonschema:"title=Max HP,minimum=1,required"`
	Background Background        `json:"background" yaml:"background" jsonschema:"required"`
}

// NameFor returns the display name best matching tag, falling back to Name.
func (s Stage) NameFor(tag language.Tag) string {
	if len(s.Names) == 0 || tag == language.Und {
		return s.Name
	}
	keys := make([]string, 0, len(s.Names))
	for key := range s.Names {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Index 0 is the fallback the matcher picks on no confidence.
	tags := []language.Tag{language.Und}
	for _, key := range keys {
		parsed, err := language.Parse(key)
		if err != nil {
			continue
		}
		tags = append(tags, parsed)
	}
	_, idx, confidence := language.NewMatcher(tags).Match(tag)
	if idx == 0 || confidence == language.No {
		return s.Name
	}
	if name := s.Names[keys[idx-1]]; name != "" {
		return name
	}
	return s.Name
}

// Catalog is a validated, non-empty roster ordered by Index.
type Catalog struct {
	stages []Stage
}

var ErrInvalidCatalog = errors.New("invalid catalog")

// New validates stages and returns a catalog ordered by index. Indices must
// form the dense sequence 1..N.
func New(stages []Stage) (*Catalog, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrInvalidCatalog)
	}
	sorted := make([]Stage, len(stages))
	for i, stage := range stages {
		sorted[i] = cloneStage(stage)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for i, stage := range sorted {
		if stage.Index != i+1 {
			return nil, fmt.Errorf("%w: expected stage index %d, got %d", ErrInvalidCatalog, i+1, stage.Index)
		}
		if strings.TrimSpace(stage.Name) == "" {
			return nil, fmt.Errorf("%w: stage %d has no name", ErrInvalidCatalog, stage.Index)
		}
		if stage.MaxHP <= 0 {
			return nil, fmt.Errorf("%w: stage %d max_hp must be positive, got %d", ErrInvalidCatalog, stage.Index, stage.MaxHP)
		}
		if li := stage.Background.LightIntensity; li < 0 || li > 1 {
			return nil, fmt.Errorf("%w: stage %d light_intensity %v outside [0,1]", ErrInvalidCatalog, stage.Index, li)
		}
	}
	return &Catalog{stages: sorted}, nil
}

// MustNew is New for compile-time rosters.
func MustNew(stages []Stage) *Catalog {
	c, err := New(stages)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.stages)
}

func (c *Catalog) First() Stage {
	return cloneStage(c.stages[0])
}

// Stages returns a copy of the roster in index order.
func (c *Catalog) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	for i, stage := range c.stages {
		out[i] = cloneStage(stage)
	}
	return out
}

// Resolve maps any stage number onto a roster entry using policy. It never
// fails: out-of-range input is coerced into [1, Len()].
func (c *Catalog) Resolve(index int, policy Policy) Stage {
	return cloneStage(c.stages[policy.Normalize(index, len(c.stages))-1])
}

func cloneStage(stage Stage) Stage {
	if stage.Names != nil {
		names := make(map[string]string, len(stage.Names))
		for k, v := range stage.Names {
			names[k] = v
		}
		stage.Names = names
	}
	return stage
}
