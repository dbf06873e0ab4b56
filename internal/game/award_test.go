package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAward(t *testing.T) {
	valid := []struct {
		name string
		raw  any
		want int64
	}{
		{name: "integer number", raw: json.Number("55"), want: 55},
		{name: "fraction truncates", raw: json.Number("19.9"), want: 19},
		{name: "exponent", raw: json.Number("1e3"), want: 1000},
		{name: "float64", raw: float64(42.7), want: 42},
		{name: "int", raw: 7, want: 7},
		{name: "numeric string", raw: " 120 ", want: 120},
		{name: "zero", raw: json.Number("0"), want: 0},
	}
	for _, tc := range valid {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAward(tc.raw)
			if err != nil {
				t.Fatalf("ParseAward(%v) failed: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseAward(%v) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}

	invalid := []struct {
		name string
		raw  any
	}{
		{name: "negative", raw: json.Number("-5")},
		{name: "negative float", raw: -0.0001e6},
		{name: "negative fraction", raw: json.Number("-0.5")},
		{name: "word", raw: "ten"},
		{name: "fractional string", raw: "5.5"},
		{name: "bool", raw: true},
		{name: "null", raw: nil},
		{name: "object", raw: map[string]any{"n": 1}},
		{name: "huge", raw: json.Number("1e300")},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseAward(tc.raw); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ParseAward(%v) expected ErrInvalidInput, got %v", tc.raw, err)
			}
		})
	}
}
