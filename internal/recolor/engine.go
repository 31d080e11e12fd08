// Package recolor swaps the hue of a texture while keeping its shading.
//
// Given a base color (the color the texture was painted in) and a replacement
// color, every masked pixel takes the replacement hue and is shifted in
// saturation and value by the difference between the two colors. Unmasked
// pixels and all alpha values are copied unchanged.
package recolor

import (
	"fmt"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/mask"
)

// Options controls an exchange.
type Options struct {
	// ValidateMaskColors rejects masks containing anything other than opaque
	// red, opaque white or fully transparent pixels.
	ValidateMaskColors bool

	// IgnoreBright is accepted for compatibility with existing asset
	// pipelines. It currently has no effect on the output.
	IgnoreBright bool

	// MaxBytes caps the size of the output buffer. Zero means no limit.
	MaxBytes int
}

// Delta is the per-call adjustment derived from the base and replacement colors.
type Delta struct {
	Hue            int // replacement hue, applied as-is
	Saturation     int
	Value          int
	BaseSaturation int // substituted for achromatic source pixels
}

// NewDelta computes the adjustment that maps base onto replacement.
func NewDelta(base, replacement colorconv.RGB) Delta {
	b := colorconv.RGBToHSV(base)
	r := colorconv.RGBToHSV(replacement)

	return Delta{
		Hue:            r.H,
		Saturation:     r.S - b.S,
		Value:          r.V - b.V,
		BaseSaturation: b.S,
	}
}

// Apply recolors a single pixel.
func (d Delta) Apply(c colorconv.RGB) colorconv.RGB {
	hsv := colorconv.RGBToHSV(c)

	// Grey pixels carry no hue; borrow the base saturation so shading
	// highlights and shadows pick up the new color.
	if hsv.S == 0 {
		hsv.S = d.BaseSaturation
	}

	hsv.H = d.Hue % 360
	hsv.S = clampPercent(hsv.S + d.Saturation)
	hsv.V = clampPercent(hsv.V + d.Value)

	return colorconv.HSVToRGB(hsv)
}

// Exchange recolors src, a packed RGBA buffer, and returns a new buffer of the
// same length. maskBuf is optional: nil recolors every pixel, otherwise it
// must be an RGBA buffer of the same length as src.
//
// Neither src nor maskBuf is modified. On error no output is returned.
func Exchange(src []byte, base, replacement colorconv.RGB, maskBuf []byte, opts Options) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFormat, len(src))
	}
	if maskBuf != nil && len(maskBuf) != len(src) {
		return nil, fmt.Errorf("%w: mask has %d bytes, texture has %d", ErrSizeMismatch, len(maskBuf), len(src))
	}
	if opts.MaxBytes > 0 && len(src) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes requested, limit %d", ErrAllocation, len(src), opts.MaxBytes)
	}

	delta := NewDelta(base, replacement)
	policy := mask.NewPolicy(maskBuf, opts.ValidateMaskColors)

	dst := make([]byte, len(src))
	for off := 0; off < len(src); off += 4 {
		masked, err := policy.Masked(off)
		if err != nil {
			return nil, err
		}

		px := colorconv.RGB{R: src[off], G: src[off+1], B: src[off+2]}
		if masked {
			px = delta.Apply(px)
		}

		dst[off] = px.R
		dst[off+1] = px.G
		dst[off+2] = px.B
		dst[off+3] = src[off+3]
	}

	return dst, nil
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
