// Package server exposes texture recoloring over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/mask"
	"github.com/MeKo-Tech/texrecolor/internal/recolor"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
)

// RecolorConfig configures the on-demand recolor handler.
type RecolorConfig struct {
	TexturesDir    string
	MaskSuffix     string
	CacheControl   string
	PNGCompression png.CompressionLevel
	MaxConcurrent  int
	MaxBytes       int
	FitMask        bool
}

// RecolorStatus reports handler counters.
type RecolorStatus struct {
	Active        int   `json:"active"`
	Served        int64 `json:"served"`
	Failed        int64 `json:"failed"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// OnDemandRecolor serves /recolor/{texture}.png, recoloring the named texture
// with the colors given in the query string:
//
//	base, replacement   colors (hex or r,g,b), required
//	mask                "0" ignores the texture's mask file
//	validate            "1" rejects masks with colors other than red/white/transparent
//	ignore_bright       accepted and passed through
type OnDemandRecolor struct {
	cfg    RecolorConfig
	logger *slog.Logger
	sem    chan struct{}

	active atomic.Int32
	served atomic.Int64
	failed atomic.Int64
}

// NewOnDemandRecolor creates the handler.
func NewOnDemandRecolor(cfg RecolorConfig, logger *slog.Logger) (*OnDemandRecolor, error) {
	if cfg.TexturesDir == "" {
		return nil, fmt.Errorf("textures dir is required")
	}
	if st, err := os.Stat(cfg.TexturesDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("textures dir does not exist: %s", cfg.TexturesDir)
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	return &OnDemandRecolor{
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
	}, nil
}

// Handler returns the HTTP handler.
func (h *OnDemandRecolor) Handler() http.Handler {
	return http.HandlerFunc(h.serveRecolor)
}

// Status returns the current counters.
func (h *OnDemandRecolor) Status() RecolorStatus {
	return RecolorStatus{
		Active:        int(h.active.Load()),
		Served:        h.served.Load(),
		Failed:        h.failed.Load(),
		MaxConcurrent: h.cfg.MaxConcurrent,
	}
}

// StatusHandler serves Status as JSON.
func (h *OnDemandRecolor) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(h.Status()); err != nil {
			h.log().Error("failed to encode status", "error", err)
		}
	})
}

func (h *OnDemandRecolor) serveRecolor(w http.ResponseWriter, r *http.Request) {
	name, ok := parseTexturePath(r.URL.Path, "/recolor/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	base, err := colorconv.Parse(q.Get("base"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid base color: %v", err), http.StatusBadRequest)
		return
	}
	replacement, err := colorconv.Parse(q.Get("replacement"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid replacement color: %v", err), http.StatusBadRequest)
		return
	}
	opts := recolor.Options{
		ValidateMaskColors: queryBool(q.Get("validate")),
		IgnoreBright:       queryBool(q.Get("ignore_bright")),
		MaxBytes:           h.cfg.MaxBytes,
	}
	useMask := q.Get("mask") != "0"

	texPath := findTexture(h.cfg.TexturesDir, name)
	if texPath == "" {
		http.Error(w, fmt.Sprintf("texture not found: %s", name), http.StatusNotFound)
		return
	}

	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	case <-r.Context().Done():
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	}

	h.active.Add(1)
	start := time.Now()
	data, err := h.render(texPath, base, replacement, useMask, opts)
	h.active.Add(-1)

	if err != nil {
		h.failed.Add(1)
		status := statusForError(err)
		h.log().Warn("recolor failed", "texture", name, "base", base, "replacement", replacement, "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}
	h.served.Add(1)
	h.log().Debug("texture recolored", "texture", name, "base", base, "replacement", replacement, "ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", h.cfg.CacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.log().Error("failed to write response", "error", err)
	}
}

func (h *OnDemandRecolor) render(texPath string, base, replacement colorconv.RGB, useMask bool, opts recolor.Options) ([]byte, error) {
	src, err := texture.Load(texPath)
	if err != nil {
		return nil, err
	}

	var m *image.NRGBA
	if useMask {
		if p := texture.MaskPath(texPath, h.cfg.MaskSuffix); p != "" {
			if m, err = texture.Load(p); err != nil {
				return nil, err
			}
			if h.cfg.FitMask {
				m = mask.Fit(m, src.Bounds().Dx(), src.Bounds().Dy())
			}
		}
	}

	out, err := recolor.ExchangeImage(src, base, replacement, m, opts)
	if err != nil {
		return nil, err
	}
	return texture.PNGBytes(out, h.cfg.PNGCompression)
}

func (h *OnDemandRecolor) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, recolor.ErrInvalidMaskColor), errors.Is(err, recolor.ErrSizeMismatch), errors.Is(err, recolor.ErrInvalidFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, recolor.ErrAllocation):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// parseTexturePath extracts "name" from "{prefix}name.png".
func parseTexturePath(requestPath, prefix string) (string, bool) {
	if !strings.HasPrefix(requestPath, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(requestPath, prefix)
	if rest == "" || strings.Contains(rest, "/") || !strings.HasSuffix(rest, ".png") {
		return "", false
	}

	name := strings.TrimSuffix(path.Base(rest), ".png")
	if !validName(name) {
		return "", false
	}
	return name, true
}

// findTexture returns the path of the texture file named name, trying each
// known extension.
func findTexture(dir, name string) string {
	for _, ext := range texture.Extensions {
		p := filepath.Join(dir, name+ext)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return !strings.HasPrefix(name, ".")
}

func queryBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// WithCORS allows browser tools on other origins to fetch textures.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
