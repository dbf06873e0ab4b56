package catalog

import (
	"fmt"
	"strings"
)

// Policy decides what happens when progression runs past the roster.
type Policy int

const (
	// PolicyWrap cycles back to the first stage indefinitely.
	PolicyWrap Policy = iota
	// PolicyClamp makes the last stage terminal.
	PolicyClamp
)

func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "wrap", "roster":
		return PolicyWrap, nil
	case "clamp", "evolve", "terminal":
		return PolicyClamp, nil
	default:
		return PolicyWrap, fmt.Errorf("unknown advance policy %q", raw)
	}
}

func (p Policy) String() string {
	if p == PolicyClamp {
		return "clamp"
	}
	return "wrap"
}

// UnmarshalText lets configuration loaders decode a Policy directly.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Normalize coerces index into [1, n].
func (p Policy) Normalize(index, n int) int {
	if n <= 0 {
		return 1
	}
	if p == PolicyClamp {
		switch {
		case index < 1:
			return 1
		case index > n:
			return n
		default:
			return index
		}
	}
	mod := (index - 1) % n
	if mod < 0 {
		mod += n
	}
	return mod + 1
}

// IsFinal reports whether index is the terminal stage under p. Wrapping
// rosters have no terminal stage.
func (p Policy) IsFinal(index, n int) bool {
	return p == PolicyClamp && index >= n
}
