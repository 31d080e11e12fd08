package mask

import (
	"image"
	"image/color"
	"math"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
)

// Grow returns a copy of m in which every pixel within radius pixels
// (Euclidean) of a red pixel is red as well. Other pixels are copied as-is.
// Useful to cover antialiased seams around painted regions.
//
// Distances come from the Felzenszwalb & Huttenlocher separable squared
// distance transform, so the cost is linear in the number of pixels.
func Grow(m *image.NRGBA, radius float64) *image.NRGBA {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	if radius <= 0 || w == 0 || h == 0 {
		return dst
	}

	// Larger than any squared distance inside the image. Real infinity would
	// turn the envelope intersections into NaN.
	far := float64(w*w+h*h) + 1

	dist := make([]float64, w*h)
	for i := range dist {
		off := i * 4
		px := colorconv.RGBA{R: dst.Pix[off], G: dst.Pix[off+1], B: dst.Pix[off+2], A: dst.Pix[off+3]}
		if px == Red {
			dist[i] = 0
		} else {
			dist[i] = far
		}
	}

	n := w
	if h > n {
		n = h
	}
	in := make([]float64, n)
	out := make([]float64, n)

	for y := 0; y < h; y++ {
		row := dist[y*w : (y+1)*w]
		copy(in[:w], row)
		squaredDistance1D(in[:w], out[:w])
		copy(row, out[:w])
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			in[y] = dist[y*w+x]
		}
		squaredDistance1D(in[:h], out[:h])
		for y := 0; y < h; y++ {
			dist[y*w+x] = out[y]
		}
	}

	r2 := radius * radius
	red := color.NRGBA{R: Red.R, G: Red.G, B: Red.B, A: Red.A}
	for i, d := range dist {
		if d <= r2 {
			dst.SetNRGBA(i%w, i/w, red)
		}
	}
	return dst
}

// squaredDistance1D computes, for every q, min_p (q-p)^2 + f[p] using the
// lower envelope of parabolas rooted at each p.
func squaredDistance1D(f, d []float64) {
	n := len(f)
	if n == 0 {
		return
	}

	v := make([]int, n)       // parabola roots in the envelope
	z := make([]float64, n+1) // boundaries between envelope parabolas

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		var s float64
		for k >= 0 {
			s = ((f[q] + float64(q*q)) - (f[v[k]] + float64(v[k]*v[k]))) / (2.0 * float64(q-v[k]))
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dx := float64(q - v[k])
		d[q] = dx*dx + f[v[k]]
	}
}
