package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAward coerces a decoded JSON amount into whole points. Fractions are
// truncated toward zero; strings must hold a base-10 integer.
func ParseAward(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return checkAward(n)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: amount %q is not a number", ErrInvalidInput, v.String())
		}
		return floatAward(f)
	case float64:
		return floatAward(v)
	case float32:
		return floatAward(float64(v))
	case int:
		return checkAward(int64(v))
	case int64:
		return checkAward(v)
	case int32:
		return checkAward(int64(v))
	case uint:
		return uintAward(uint64(v))
	case uint64:
		return uintAward(v)
	case uint32:
		return checkAward(int64(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: amount %q is not a whole number", ErrInvalidInput, v)
		}
		return checkAward(n)
	case nil:
		return 0, fmt.Errorf("%w: amount is null", ErrInvalidInput)
	default:
		return 0, fmt.Errorf("%w: amount of type %T is not a number", ErrInvalidInput, raw)
	}
}

func floatAward(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, fmt.Errorf("%w: amount %v out of range", ErrInvalidInput, f)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: amount %v is negative", ErrInvalidInput, f)
	}
	return int64(f), nil
}

func uintAward(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%w: amount %d out of range", ErrInvalidInput, u)
	}
	return int64(u), nil
}

func checkAward(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: amount %d is negative", ErrInvalidInput, n)
	}
	return n, nil
}
