package texture

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/aquilax/go-perlin"
)

// SwatchParams defines a shaded sample texture painted in a single color.
type SwatchParams struct {
	Size  int
	Color colorconv.RGB
	Seed  int64
	// Scale is the noise feature size in pixels (larger = smoother).
	Scale float64
	// Shading is the maximum brightness swing in percent (0..100).
	Shading int
}

// DefaultSwatchParams returns sensible defaults for previews.
func DefaultSwatchParams(c colorconv.RGB) SwatchParams {
	return SwatchParams{
		Size:    256,
		Color:   c,
		Seed:    1337,
		Scale:   48,
		Shading: 30,
	}
}

// GenerateSwatch paints a texture whose pixels all share the hue and
// saturation of p.Color while the value varies with Perlin noise. It is a
// convenient input for previewing recolor variants.
func GenerateSwatch(p SwatchParams) (*image.NRGBA, error) {
	if p.Size <= 0 {
		return nil, fmt.Errorf("size must be positive")
	}
	if p.Scale <= 0 {
		return nil, fmt.Errorf("scale must be positive")
	}
	if p.Shading < 0 || p.Shading > 100 {
		return nil, fmt.Errorf("shading must be within [0,100]")
	}

	base := colorconv.RGBToHSV(p.Color)

	// alpha: persistence, beta: lacunarity, n: octaves
	noise := perlin.NewPerlin(2.0, 2.0, 3, p.Seed)

	dst := image.NewNRGBA(image.Rect(0, 0, p.Size, p.Size))
	for y := 0; y < p.Size; y++ {
		for x := 0; x < p.Size; x++ {
			n := noise.Noise2D(float64(x)/p.Scale, float64(y)/p.Scale)
			if n < -1 {
				n = -1
			}
			if n > 1 {
				n = 1
			}

			hsv := base
			hsv.V = clampPercent(base.V + int(n*float64(p.Shading)))
			c := colorconv.HSVToRGB(hsv)

			dst.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
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
