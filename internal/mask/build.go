package mask

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"
)

// FromAlpha builds a recolor mask from the coverage of img: every pixel with
// non-zero alpha becomes opaque red, everything else fully transparent.
func FromAlpha(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	red := color.NRGBA{R: Red.R, G: Red.G, B: Red.B, A: Red.A}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// RGBA() returns values in range 0-65535, so check if alpha > 0
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				dst.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, red)
			}
		}
	}

	return dst
}

// Fit resizes a mask to width x height using nearest-neighbor sampling, so
// the result only contains colors that were already present in m.
func Fit(m image.Image, width, height int) *image.NRGBA {
	if b := m.Bounds(); b.Dx() == width && b.Dy() == height {
		if n, ok := m.(*image.NRGBA); ok && b.Min == (image.Point{}) {
			return n
		}
	}

	g := gift.New(gift.Resize(width, height, gift.NearestNeighborResampling))
	dst := image.NewNRGBA(g.Bounds(m.Bounds()))
	g.Draw(dst, m)
	return dst
}

// Coverage counts the pixels of a packed RGBA mask that Classify would mark
// for recoloring without validation.
func Coverage(buf []byte) int {
	n := 0
	for off := 0; off+3 < len(buf); off += 4 {
		if buf[off] == Red.R && buf[off+1] == Red.G && buf[off+2] == Red.B && buf[off+3] == Red.A {
			n++
		}
	}
	return n
}
