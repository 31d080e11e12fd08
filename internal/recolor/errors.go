package recolor

import (
	"errors"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/mask"
)

var (
	// ErrInvalidFormat is returned when the source length is not a multiple of 4.
	ErrInvalidFormat = errors.New("input image data was not in RGBA mode")
	// ErrSizeMismatch is returned when mask and source differ in size.
	ErrSizeMismatch = errors.New("mask is not the same size as the texture")
	// ErrAllocation is returned when the output buffer would exceed Options.MaxBytes.
	ErrAllocation = errors.New("output buffer exceeds allocation limit")
	// ErrInvalidMaskColor is returned in validating mode for an illegal mask pixel.
	ErrInvalidMaskColor = mask.ErrInvalidColor
	// ErrTypeConversion is returned when a color component is not numeric.
	ErrTypeConversion = colorconv.ErrTypeConversion
)

// MaskColorError carries the index and color of the offending mask pixel.
type MaskColorError = mask.ColorError
