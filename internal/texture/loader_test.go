package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "shield.png")

	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	src.SetNRGBA(2, 1, color.NRGBA{G: 200, B: 100, A: 1})

	require.NoError(t, SavePNG(path, src, png.BestSpeed))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), got.Bounds())
	assert.Equal(t, src.Pix, got.Pix)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file should be renamed away")
	assert.Equal(t, "shield.png", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteFileAtomicConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blue", "shield.png")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = WriteFileAtomic(path, bytes.Repeat([]byte{byte(i)}, 4096))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 4096)
	assert.Equal(t, bytes.Repeat(data[:1], 4096), data, "file should hold exactly one writer's data")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDecodeConvertsPaletted(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{B: 255, A: 255},
	})
	pal.SetColorIndex(1, 0, 1)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, pal))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, got.NRGBAAt(1, 0))
}

func TestToNRGBA(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, n, ToNRGBA(n))

	sub := image.NewNRGBA(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3))
	got := ToNRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 2, 2), got.Bounds())
}

func TestParseCompression(t *testing.T) {
	tests := map[string]png.CompressionLevel{
		"":        png.DefaultCompression,
		"default": png.DefaultCompression,
		"speed":   png.BestSpeed,
		"BEST":    png.BestCompression,
		"none":    png.NoCompression,
	}
	for in, want := range tests {
		got, err := ParseCompression(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCompression("ultra")
	assert.Error(t, err)
}

func TestDiscoverSkipsMasks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.PNG", "a_mask.png", "notes.txt", "c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	got, err := Discover(dir, "_mask")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.webp"),
	}, got)

	assert.Equal(t, filepath.Join(dir, "a_mask.png"), MaskPath(filepath.Join(dir, "a.PNG"), "_mask"))
	assert.Equal(t, "", MaskPath(filepath.Join(dir, "b.png"), "_mask"))
	assert.Equal(t, "", MaskPath(filepath.Join(dir, "a.PNG"), ""))
}

func TestDiscoverRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"shield.png", "shield.jpg", "banner.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	_, err := Discover(dir, "_mask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"shield"`)
}

func TestName(t *testing.T) {
	assert.Equal(t, "shield", Name("/x/y/shield.png"))
	assert.Equal(t, "a.b", Name("a.b.webp"))
}
