package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MeKo-Tech/texrecolor/internal/texturedb"
)

// VariantsHandler serves pre-rendered variants from a texturedb database:
//
//	/variants/{texture}/{variant}.png   the encoded variant
//	/variants/{texture}                 JSON list of variant names
type VariantsHandler struct {
	reader       *texturedb.Reader
	logger       *slog.Logger
	cacheControl string
}

// VariantsConfig configures the variants handler.
type VariantsConfig struct {
	DBPath       string
	CacheControl string
}

// NewVariantsHandler opens the database and creates the handler.
func NewVariantsHandler(cfg VariantsConfig, logger *slog.Logger) (*VariantsHandler, error) {
	reader, err := texturedb.OpenReader(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open variant database: %w", err)
	}

	return &VariantsHandler{
		reader:       reader,
		logger:       logger,
		cacheControl: cfg.CacheControl,
	}, nil
}

// Handler returns the HTTP handler.
func (h *VariantsHandler) Handler() http.Handler {
	return http.HandlerFunc(h.serveVariant)
}

func (h *VariantsHandler) serveVariant(w http.ResponseWriter, r *http.Request) {
	tex, variant, ok := parseVariantPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if variant == "" {
		names, err := h.reader.Variants(tex)
		if err != nil {
			h.log().Error("failed to list variants", "texture", tex, "error", err)
			http.Error(w, "failed to list variants", http.StatusInternalServerError)
			return
		}
		if len(names) == 0 {
			http.Error(w, fmt.Sprintf("texture not found: %s", tex), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(names); err != nil {
			h.log().Error("failed to write response", "error", err)
		}
		return
	}

	data, err := h.reader.ReadVariant(tex, variant)
	if errors.Is(err, texturedb.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.log().Error("failed to read variant", "texture", tex, "variant", variant, "error", err)
		http.Error(w, "failed to read variant", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		h.log().Error("failed to write response", "error", err)
	}
}

// Close closes the database.
func (h *VariantsHandler) Close() error {
	return h.reader.Close()
}

func (h *VariantsHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseVariantPath parses /variants/{texture}/{variant}.png or
// /variants/{texture}. The variant is empty for the listing form.
func parseVariantPath(requestPath string) (string, string, bool) {
	const prefix = "/variants/"
	if !strings.HasPrefix(requestPath, prefix) {
		return "", "", false
	}

	parts := strings.Split(strings.TrimPrefix(requestPath, prefix), "/")
	switch len(parts) {
	case 1:
		if !validName(parts[0]) {
			return "", "", false
		}
		return parts[0], "", true
	case 2:
		if !validName(parts[0]) || !strings.HasSuffix(parts[1], ".png") {
			return "", "", false
		}
		variant := strings.TrimSuffix(parts[1], ".png")
		if !validName(variant) {
			return "", "", false
		}
		return parts[0], variant, true
	default:
		return "", "", false
	}
}
