package colorconv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cast"
)

// ErrTypeConversion is returned when a color component is not numeric.
var ErrTypeConversion = errors.New("color tuple contains non-numeric object")

// FromValues decodes a three element R,G,B sequence of loosely typed numbers,
// as produced by JSON or YAML decoding.
//
// Integers, floats and booleans are accepted; floats are truncated. Values
// outside [0,255] are not range checked and wrap to a byte.
func FromValues(vals []any) (RGB, error) {
	if len(vals) != 3 {
		return RGB{}, fmt.Errorf("color tuple must have 3 components, got %d", len(vals))
	}

	var ch [3]uint8
	for i, v := range vals {
		n, err := componentToInt(v)
		if err != nil {
			return RGB{}, fmt.Errorf("component %d: %w", i, err)
		}
		ch[i] = uint8(n)
	}

	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func componentToInt(v any) (int64, error) {
	// json.Number may use exponent or fraction notation, which cast rejects.
	if num, ok := v.(json.Number); ok {
		if n, err := num.Int64(); err == nil {
			return n, nil
		}
		f, err := num.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrTypeConversion, num.String())
		}
		return int64(f), nil
	}

	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, bool:
	default:
		return 0, fmt.Errorf("%w (%T)", ErrTypeConversion, v)
	}

	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTypeConversion, err)
	}
	return n, nil
}

// Parse reads a color from a flag or config value. Accepted forms are hex
// ("#ff8000", "ff8000", "#f80") and decimal triples ("255,128,0").
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, errors.New("empty color")
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return RGB{}, fmt.Errorf("invalid color %q: expected r,g,b", s)
		}
		vals := make([]any, 3)
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return RGB{}, fmt.Errorf("invalid color %q: %w", s, ErrTypeConversion)
			}
			if n < 0 || n > 255 {
				return RGB{}, fmt.Errorf("invalid color %q: component %d out of range", s, n)
			}
			vals[i] = n
		}
		return FromValues(vals)
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}
