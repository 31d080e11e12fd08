package cmd

import (
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"time"

	"github.com/MeKo-Tech/texrecolor/internal/server"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recolored textures over HTTP",
	Long: `Serve recolored textures over HTTP.

  /recolor/{texture}.png?base=ff0000&replacement=0000ff   recolor on demand
  /variants/{texture}/{variant}.png                       pre-rendered (requires --db)
  /status                                                 recolor counters
  /healthz                                                liveness`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("textures-dir", filepath.Join("assets", "textures"), "Directory containing source textures")
	serveCmd.Flags().String("db", "", "Variant database written by 'batch --format=sqlite'")
	serveCmd.Flags().Int("max-concurrent", runtime.NumCPU(), "Max concurrent recolor operations (default: number of CPUs)")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served textures")
	serveCmd.Flags().Bool("fit-mask", false, "Resize masks that do not match their texture size")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.textures_dir", "textures-dir")
	mustBind("serve.db", "db")
	mustBind("serve.max_concurrent", "max-concurrent")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.fit_mask", "fit-mask")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	texturesDir := viper.GetString("serve.textures_dir")
	dbPath := viper.GetString("serve.db")
	maxConc := viper.GetInt("serve.max_concurrent")
	cacheControl := viper.GetString("serve.cache_control")

	compression, err := texture.ParseCompression(viper.GetString("png_compression"))
	if err != nil {
		return err
	}

	rc, err := server.NewOnDemandRecolor(server.RecolorConfig{
		TexturesDir:    texturesDir,
		MaskSuffix:     viper.GetString("mask_suffix"),
		CacheControl:   cacheControl,
		PNGCompression: compression,
		MaxConcurrent:  maxConc,
		MaxBytes:       viper.GetInt("max_bytes"),
		FitMask:        viper.GetBool("serve.fit_mask"),
	}, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/status", rc.StatusHandler())
	mux.Handle("/recolor/", server.WithCORS(rc.Handler()))

	if dbPath != "" {
		vh, err := server.NewVariantsHandler(server.VariantsConfig{DBPath: dbPath, CacheControl: cacheControl}, logger)
		if err != nil {
			return err
		}
		defer vh.Close()
		mux.Handle("/variants/", server.WithCORS(vh.Handler()))
	}

	logger.Info("texture server listening",
		"addr", addr,
		"textures_dir", texturesDir,
		"db", dbPath,
		"max_concurrent", maxConc,
	)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
