// Package colorconv converts 8-bit RGB colors to and from an integer HSV
// representation (hue in degrees, saturation and value in percent).
//
// The conversions are intentionally lossy: RGBToHSV truncates every component
// to an integer while HSVToRGB rounds, so a round trip can drift by a few
// levels per channel. The exact behavior is relied upon by recolored assets
// and must stay reproducible.
package colorconv

import "math"

// achromaticEpsilon is the chroma (or saturation) below which a color is
// treated as grey and its hue is ignored.
const achromaticEpsilon = 0.001

// RGB is an 8-bit red, green, blue triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBA is an RGB color with an 8-bit straight (non-premultiplied) alpha.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// RGB drops the alpha channel.
func (c RGBA) RGB() RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// HSV holds hue in whole degrees [0,359] and saturation/value in whole
// percent [0,100].
type HSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

// RGBToHSV converts c to HSV, truncating each component to an integer.
//
// When two channels tie for the maximum, red wins over green and green wins
// over blue.
func RGBToHSV(c RGB) HSV {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	minv := math.Min(r, math.Min(g, b))
	maxv := math.Max(r, math.Max(g, b))
	delta := maxv - minv

	v := maxv

	var s float64
	if maxv > 0 {
		s = delta / maxv
	}

	var h float64
	if delta >= achromaticEpsilon {
		switch {
		case r >= maxv:
			h = (g - b) / delta
		case g >= maxv:
			h = (b-r)/delta + 2
		default:
			h = (r-g)/delta + 4
		}

		h *= 60
		if h < 0 {
			h += 360
		}
	}

	return HSV{
		H: int(h),
		S: int(s * 100),
		V: int(v * 100),
	}
}

// HSVToRGB converts c back to RGB, rounding each channel to the nearest
// integer. Hue is reduced modulo 360; saturation and value are expected to be
// within [0,100].
func HSVToRGB(c HSV) RGB {
	hue := c.H % 360
	if hue < 0 {
		hue += 360
	}

	h := float64(hue)
	s := float64(c.S) / 100
	v := float64(c.V) / 100

	if s < achromaticEpsilon {
		g := channel(v)
		return RGB{R: g, G: g, B: g}
	}

	h /= 60
	sector := math.Floor(h)
	frac := h - sector

	x := v * (1 - s)
	y := v * (1 - s*frac)
	z := v * (1 - s*(1-frac))

	var r, g, b float64
	switch int(sector) {
	case 0: // red to yellow
		r, g, b = v, z, x
	case 1: // yellow to green
		r, g, b = y, v, x
	case 2: // green to cyan
		r, g, b = x, v, z
	case 3: // cyan to blue
		r, g, b = x, y, v
	case 4: // blue to magenta
		r, g, b = z, x, v
	default: // magenta to red
		r, g, b = v, x, y
	}

	return RGB{R: channel(r), G: channel(g), B: channel(b)}
}

// channel scales a [0,1] intensity to a byte, rounding half away from zero.
func channel(f float64) uint8 {
	n := math.Round(f * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
