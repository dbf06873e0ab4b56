// Package game holds the transition rules of the boss fight and the service
// that applies them to the persisted record.
package game

import (
	"fmt"
	"math"
	"time"

	"bossfight/internal/catalog"
	"bossfight/internal/state"
)

// Engine computes transitions without touching storage. The zero value
// serves the built-in roster with wrapping progression.
type Engine struct {
	Catalog func() *catalog.Catalog
	Policy  catalog.Policy
	Clock   func() time.Time
}

// Damage describes the effect of one award. Defeated is advisory: it never
// triggers an advance on its own.
type Damage struct {
	Dealt    int
	Defeated bool
}

// DamageFor converts award points into HP loss. Every award deals at least 1.
func DamageFor(amount int64) int {
	dealt := amount / 10
	if dealt < 1 {
		return 1
	}
	if dealt > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(dealt)
}

func (e Engine) catalog() *catalog.Catalog {
	if e.Catalog != nil {
		if c := e.Catalog(); c != nil {
			return c
		}
	}
	return catalog.Default()
}

func (e Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

// DefaultState is the first stage at full health.
func (e Engine) DefaultState() state.GameState {
	return state.Default(e.catalog(), e.now())
}

// Defaults adapts DefaultState for store constructors.
func (e Engine) Defaults() state.Defaults {
	return e.DefaultState
}

// Stage resolves the roster entry displayed for st.
func (e Engine) Stage(st state.GameState) catalog.Stage {
	return e.catalog().Resolve(st.Level, e.Policy)
}

// ApplyDamage subtracts the damage for amount from the current HP pool.
func (e Engine) ApplyDamage(st state.GameState, amount int64) (state.GameState, Damage, error) {
	if amount < 0 {
		return st, Damage{}, fmt.Errorf("%w: amount %d is negative", ErrInvalidInput, amount)
	}
	dealt := DamageFor(amount)
	next := st
	next.CurrentHP = st.CurrentHP - dealt
	if next.CurrentHP < 0 {
		next.CurrentHP = 0
	}
	next.LastUpdated = e.now()
	return next, Damage{Dealt: dealt, Defeated: next.CurrentHP == 0}, nil
}

// AdvanceStage moves to the next stage at full health regardless of the
// current HP. Under PolicyWrap the level is unbounded and the boss after the
// last roster entry is the first one again. Under PolicyClamp the last stage
// returns ErrAlreadyFinal.
func (e Engine) AdvanceStage(st state.GameState) (state.GameState, catalog.Stage, error) {
	c := e.catalog()
	if e.Policy.IsFinal(st.Level, c.Len()) {
		return st, c.Resolve(st.Level, e.Policy), fmt.Errorf("%w: stage %d of %d", ErrAlreadyFinal, st.Level, c.Len())
	}
	// Under PolicyWrap the level keeps counting; only the roster lookup wraps.
	level := st.Level + 1
	if e.Policy == catalog.PolicyClamp {
		level = e.Policy.Normalize(level, c.Len())
	}
	stage := c.Resolve(level, e.Policy)
	next := st
	next.Level = level
	next.CurrentHP = stage.MaxHP
	next.MaxHP = stage.MaxHP
	next.LastUpdated = e.now()
	return next, stage, nil
}
