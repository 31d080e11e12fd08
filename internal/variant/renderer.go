package variant

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/texrecolor/internal/mask"
	"github.com/MeKo-Tech/texrecolor/internal/recolor"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/MeKo-Tech/texrecolor/internal/texturedb"
	"github.com/MeKo-Tech/texrecolor/internal/worker"
)

// Sink stores an encoded variant and returns a description of where it went.
type Sink interface {
	Exists(texture, variant string) bool
	Put(texture, variant string, data []byte) (string, error)
}

// FolderSink writes variants as {dir}/{variant}/{texture}.png.
type FolderSink struct {
	Dir string
}

// Path returns the output path of a variant.
func (s FolderSink) Path(tex, variant string) string {
	return filepath.Join(s.Dir, variant, tex+".png")
}

// Exists reports whether the variant file is already on disk.
func (s FolderSink) Exists(tex, variant string) bool {
	_, err := os.Stat(s.Path(tex, variant))
	return err == nil
}

// Put writes data atomically.
func (s FolderSink) Put(tex, variant string, data []byte) (string, error) {
	p := s.Path(tex, variant)
	if err := texture.WriteFileAtomic(p, data); err != nil {
		return "", err
	}
	return p, nil
}

// DBSink writes variants into a texturedb database.
type DBSink struct {
	Writer *texturedb.Writer
}

// Exists reports whether the variant is already in the database. Lookup
// errors count as missing so the variant is rendered again.
func (s DBSink) Exists(tex, variant string) bool {
	ok, err := s.Writer.Exists(tex, variant)
	return err == nil && ok
}

// Put queues the variant for writing.
func (s DBSink) Put(tex, variant string, data []byte) (string, error) {
	if err := s.Writer.WriteVariant(tex, variant, data); err != nil {
		return "", err
	}
	return s.Writer.Path() + "#" + tex + "/" + variant, nil
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	Set            Resolved
	Sink           Sink
	MaskSuffix     string // mask file for foo.png is foo{MaskSuffix}.png
	FitMask        bool   // resize masks that do not match their texture
	PNGCompression png.CompressionLevel
	MaxBytes       int
}

// Renderer recolors textures into the variants of a set. It implements
// worker.Processor.
type Renderer struct {
	cfg    RendererConfig
	logger *slog.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(cfg RendererConfig, logger *slog.Logger) (*Renderer, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if len(cfg.Set.Colors) == 0 {
		return nil, fmt.Errorf("variant set has no colors")
	}
	return &Renderer{cfg: cfg, logger: logger}, nil
}

// Process renders one texture in one variant.
func (r *Renderer) Process(ctx context.Context, task worker.Task) (string, error) {
	name := texture.Name(task.Texture)

	replacement, ok := r.cfg.Set.Colors[task.Variant]
	if !ok {
		return "", fmt.Errorf("unknown variant %q", task.Variant)
	}

	if !task.Force && r.cfg.Sink.Exists(name, task.Variant) {
		r.log().Debug("variant exists, skipping", "texture", name, "variant", task.Variant)
		return "", nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := texture.Load(task.Texture)
	if err != nil {
		return "", err
	}

	var m *image.NRGBA
	if p := texture.MaskPath(task.Texture, r.cfg.MaskSuffix); p != "" {
		m, err = texture.Load(p)
		if err != nil {
			return "", err
		}
		if r.cfg.FitMask && m.Bounds().Size() != src.Bounds().Size() {
			r.log().Warn("resizing mask to texture size", "mask", p, "mask_size", m.Bounds().Size(), "texture_size", src.Bounds().Size())
			m = mask.Fit(m, src.Bounds().Dx(), src.Bounds().Dy())
		}
	}

	out, err := recolor.ExchangeImage(src, r.cfg.Set.Base, replacement, m, recolor.Options{
		ValidateMaskColors: r.cfg.Set.ValidateMask,
		IgnoreBright:       r.cfg.Set.IgnoreBright,
		MaxBytes:           r.cfg.MaxBytes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to recolor %s as %s: %w", name, task.Variant, err)
	}

	data, err := texture.PNGBytes(out, r.cfg.PNGCompression)
	if err != nil {
		return "", err
	}

	dest, err := r.cfg.Sink.Put(name, task.Variant, data)
	if err != nil {
		return "", err
	}

	r.log().Debug("variant rendered", "texture", name, "variant", task.Variant, "dest", dest)
	return dest, nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
