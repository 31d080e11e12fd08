// Package mask decides which pixels of a texture are eligible for recoloring
// and builds recolor masks from ordinary images.
//
// A recolor mask is an RGBA image of the same size as the texture. Opaque red
// marks a pixel for recoloring; opaque white and fully transparent pixels are
// left alone.
package mask

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
)

// ErrInvalidColor is returned in validating mode when a mask pixel is neither
// opaque red, opaque white nor fully transparent.
var ErrInvalidColor = errors.New("invalid color in mask, only red (FF0000) and white (FFFFFF) should be present")

var (
	// Red marks a pixel for recoloring.
	Red = colorconv.RGBA{R: 0xFF, A: 0xFF}
	// White leaves a pixel untouched.
	White = colorconv.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// ColorError reports the first offending mask pixel.
type ColorError struct {
	Pixel int
	Color colorconv.RGBA
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("%v: pixel %d is %02X%02X%02X%02X",
		ErrInvalidColor, e.Pixel, e.Color.R, e.Color.G, e.Color.B, e.Color.A)
}

func (e *ColorError) Unwrap() error {
	return ErrInvalidColor
}

// Classify reports whether a pixel under mask color px is eligible for
// recoloring.
//
// Without validation only exact opaque red is masked and every other color is
// ignored. With validation, any color outside the legal palette is an error.
func Classify(px colorconv.RGBA, validate bool) (bool, error) {
	if !validate {
		return px == Red, nil
	}

	switch {
	case px == Red:
		return true, nil
	case px == White:
		return false, nil
	case px.A == 0:
		return false, nil
	default:
		return false, ErrInvalidColor
	}
}

// Policy classifies pixels of an optional mask buffer.
// The zero value has no mask and marks every pixel.
type Policy struct {
	buf      []byte
	validate bool
}

// NewPolicy wraps a packed RGBA mask buffer. A nil buffer means no mask.
func NewPolicy(buf []byte, validate bool) Policy {
	return Policy{buf: buf, validate: validate}
}

// HasMask reports whether a mask buffer is attached.
func (p Policy) HasMask() bool {
	return p.buf != nil
}

// Masked classifies the pixel starting at byte offset off.
func (p Policy) Masked(off int) (bool, error) {
	if p.buf == nil {
		return true, nil
	}

	px := colorconv.RGBA{R: p.buf[off], G: p.buf[off+1], B: p.buf[off+2], A: p.buf[off+3]}
	masked, err := Classify(px, p.validate)
	if err != nil {
		return false, &ColorError{Pixel: off / 4, Color: px}
	}
	return masked, nil
}
