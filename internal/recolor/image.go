package recolor

import (
	"fmt"
	"image"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
)

// ExchangeImage runs Exchange over an NRGBA texture. The optional mask must
// have the same dimensions. The result always has its origin at (0,0).
func ExchangeImage(src *image.NRGBA, base, replacement colorconv.RGB, m *image.NRGBA, opts Options) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil texture", ErrInvalidFormat)
	}

	var maskBuf []byte
	if m != nil {
		if m.Bounds().Size() != src.Bounds().Size() {
			return nil, fmt.Errorf("%w: mask is %v, texture is %v", ErrSizeMismatch, m.Bounds().Size(), src.Bounds().Size())
		}
		maskBuf = Pack(m)
	}

	out, err := Exchange(Pack(src), base, replacement, maskBuf, opts)
	if err != nil {
		return nil, err
	}

	size := src.Bounds().Size()
	return &image.NRGBA{
		Pix:    out,
		Stride: size.X * 4,
		Rect:   image.Rect(0, 0, size.X, size.Y),
	}, nil
}

// Pack returns the pixels of img as a tightly packed, row-major RGBA buffer.
// When img is already packed its Pix slice is returned without copying.
func Pack(img *image.NRGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowLen := w * 4

	if img.Stride == rowLen {
		start := img.PixOffset(b.Min.X, b.Min.Y)
		return img.Pix[start : start+rowLen*h]
	}

	buf := make([]byte, rowLen*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(buf[y*rowLen:], img.Pix[off:off+rowLen])
	}
	return buf
}
