package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Extensions lists the file extensions Discover treats as textures.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Load decodes an image file and converts it to non-premultiplied RGBA with
// its origin at (0,0).
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	return ToNRGBA(img), nil
}

// Decode reads an image from r; see Load.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture: %w", err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA returns img as *image.NRGBA anchored at (0,0), copying only when
// needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	return imaging.Clone(img)
}

// ParseCompression maps a compression name (default, speed, best, none) to a
// PNG compression level.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "speed", "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	case "none", "no":
		return png.NoCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("invalid png compression %q (use default, speed, best, none)", name)
	}
}

// EncodePNG encodes img as PNG.
func EncodePNG(w io.Writer, img image.Image, level png.CompressionLevel) error {
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// PNGBytes encodes img as PNG into memory.
func PNGBytes(img image.Image, level png.CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img, level); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path, creating parent directories. The file is
// written to a temporary name first and renamed into place.
func SavePNG(path string, img image.Image, level png.CompressionLevel) error {
	data, err := PNGBytes(img, level)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a uniquely named temporary file next to path
// and renames it into place, so concurrent writers never share a temp file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to chmod %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// Discover lists texture files in dir, sorted by name. Files whose base name
// ends in maskSuffix are masks and are skipped. Two textures sharing a name
// (foo.png and foo.jpg) would render to the same output and are an error.
func Discover(dir, maskSuffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture dir %s: %w", dir, err)
	}

	var paths []string
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !isTextureExt(ext) {
			continue
		}
		if maskSuffix != "" && strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), maskSuffix) {
			continue
		}
		stem := Name(name)
		if prev, ok := seen[stem]; ok {
			return nil, fmt.Errorf("textures %s and %s share the name %q", prev, name, stem)
		}
		seen[stem] = name
		paths = append(paths, filepath.Join(dir, name))
	}

	sort.Strings(paths)
	return paths, nil
}

// MaskPath returns the path of the mask that belongs to texture, or "" if
// there is none on disk.
func MaskPath(texturePath, maskSuffix string) string {
	if maskSuffix == "" {
		return ""
	}
	dir := filepath.Dir(texturePath)
	stem := Name(texturePath)

	for _, ext := range Extensions {
		p := filepath.Join(dir, stem+maskSuffix+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Name returns the file name of path without directory and extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isTextureExt(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
