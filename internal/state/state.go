// Package state defines the single persisted game record.
package state

import (
	"time"

	"bossfight/internal/catalog"
)

// GameState is the whole of the game's mutable progress. Version increases
// by one on every persisted mutation and is zero for a record that has
// never been written.
type GameState struct {
	Level       int       `json:"level"`
	CurrentHP   int       `json:"current_hp"`
	MaxHP       int       `json:"max_hp"`
	LastUpdated time.Time `json:"last_updated"`
	Version     uint64    `json:"version"`
}

// Default is the record used when nothing usable is persisted: the first
// stage at full health.
func Default(c *catalog.Catalog, now time.Time) GameState {
	first := c.First()
	return GameState{
		Level:       first.Index,
		CurrentHP:   first.MaxHP,
		MaxHP:       first.MaxHP,
		LastUpdated: now,
	}
}

// Defeated reports whether the current stage's HP pool is exhausted.
func (s GameState) Defeated() bool {
	return s.CurrentHP <= 0
}

// Valid reports whether the record satisfies the level and HP bounds.
func (s GameState) Valid() bool {
	return s.Level >= 1 && s.MaxHP > 0 && s.CurrentHP >= 0 && s.CurrentHP <= s.MaxHP
}

// Defaults supplies the fallback record for stores.
type Defaults func() GameState

// DefaultsFor builds a Defaults from a catalog lookup and a clock.
func DefaultsFor(current func() *catalog.Catalog, now func() time.Time) Defaults {
	if now == nil {
		now = time.Now
	}
	return func() GameState {
		return Default(current(), now())
	}
}
