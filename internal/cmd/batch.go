package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/MeKo-Tech/texrecolor/internal/texturedb"
	"github.com/MeKo-Tech/texrecolor/internal/variant"
	"github.com/MeKo-Tech/texrecolor/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Render every texture in a directory in every color of a variant set",
	Long: `Render every texture in --textures-dir once per color of the variant set.

The variant set is read from the "variants" section of the config file:

  variants:
    name: teams
    base: "#ff0000"
    validate_mask: true
    colors:
      blue: "#0000ff"
      green: "0,160,0"

--base and --color override the config. Output goes to
{output-dir}/{variant}/{texture}.png, or into a single SQLite database with
--format=sqlite.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("textures-dir", filepath.Join("assets", "textures"), "Directory containing source textures")
	batchCmd.Flags().String("output-dir", "./variants", "Output directory for folder format")
	batchCmd.Flags().String("base", "", "Base color, overrides variants.base")
	batchCmd.Flags().StringToString("color", nil, "Variant colors as name=color, merged over variants.colors")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")
	batchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some textures fail")
	batchCmd.Flags().Bool("force", false, "Re-render variants that already exist")
	batchCmd.Flags().Bool("fit-mask", false, "Resize masks that do not match their texture size")
	batchCmd.Flags().String("format", "folder", "Output format: folder or sqlite")
	batchCmd.Flags().String("output-file", "", "Output database for sqlite format (e.g. variants.db)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.textures_dir", "textures-dir"},
		{"batch.output_dir", "output-dir"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.allow_failures", "allow-failures"},
		{"batch.force", "force"},
		{"batch.fit_mask", "fit-mask"},
		{"batch.format", "format"},
		{"batch.output_file", "output-file"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// loadVariantSet reads the variant set from config and applies flag overrides.
func loadVariantSet(base string, colors map[string]string) (variant.Resolved, error) {
	var set variant.Set
	if err := viper.UnmarshalKey("variants", &set); err != nil {
		return variant.Resolved{}, fmt.Errorf("failed to read variants config: %w", err)
	}

	if base != "" {
		set.Base = base
	}
	if len(colors) > 0 {
		merged := make(map[string]string, len(set.Colors)+len(colors))
		for k, v := range set.Colors {
			merged[k] = v
		}
		for k, v := range colors {
			merged[k] = v
		}
		set.Colors = merged
	}
	if set.Base == "" {
		set.Base = "#ff0000"
	}

	return set.Resolve()
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	texturesDir := viper.GetString("batch.textures_dir")
	outputDir := viper.GetString("batch.output_dir")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	allowFailures := viper.GetBool("batch.allow_failures")
	force := viper.GetBool("batch.force")
	fitMask := viper.GetBool("batch.fit_mask")
	format := viper.GetString("batch.format")
	outputFile := viper.GetString("batch.output_file")
	maskSuffix := viper.GetString("mask_suffix")

	base, err := cmd.Flags().GetString("base")
	if err != nil {
		return err
	}
	colors, err := cmd.Flags().GetStringToString("color")
	if err != nil {
		return err
	}

	set, err := loadVariantSet(base, colors)
	if err != nil {
		return err
	}

	compression, err := texture.ParseCompression(viper.GetString("png_compression"))
	if err != nil {
		return err
	}

	if format != "folder" && format != "sqlite" {
		return fmt.Errorf("invalid format %q: must be 'folder' or 'sqlite'", format)
	}
	if format == "sqlite" && outputFile == "" {
		return fmt.Errorf("--output-file is required when using --format=sqlite")
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	textures, err := texture.Discover(texturesDir, maskSuffix)
	if err != nil {
		return err
	}
	if len(textures) == 0 {
		return fmt.Errorf("no textures found in %s", texturesDir)
	}

	var sink variant.Sink = variant.FolderSink{Dir: outputDir}
	var dbWriter *texturedb.Writer
	if format == "sqlite" {
		dbWriter, err = texturedb.New(outputFile, texturedb.Metadata{
			Name:        set.Name,
			Description: "Recolored texture variants",
			Format:      "png",
			Base:        set.Base.Hex(),
			Variants:    set.Names(),
			Version:     "1.0",
		})
		if err != nil {
			return fmt.Errorf("failed to create variant database: %w", err)
		}
		defer dbWriter.Close()
		sink = variant.DBSink{Writer: dbWriter}
	}

	renderer, err := variant.NewRenderer(variant.RendererConfig{
		Set:            set,
		Sink:           sink,
		MaskSuffix:     maskSuffix,
		FitMask:        fitMask,
		PNGCompression: compression,
		MaxBytes:       viper.GetInt("max_bytes"),
	}, logger)
	if err != nil {
		return err
	}

	tasks := set.Tasks(textures, force)

	logger.Info("Starting batch recolor",
		"textures_dir", texturesDir,
		"textures", len(textures),
		"variants", strings.Join(set.Names(), ","),
		"tasks", len(tasks),
		"workers", workers,
		"format", format,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	progress := worker.NewProgress(len(tasks), showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Processor:  renderer,
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Recolor failed", "task", r.Task.String(), "error", r.Err)
		}
	}

	logger.Info(progress.Summary())

	if dbWriter != nil {
		if err := dbWriter.Close(); err != nil {
			return err
		}
		logger.Info("Variant database written", "path", outputFile)
	}

	if failedCount > 0 {
		if allowFailures {
			logger.Warn("Some textures failed, but continuing due to --allow-failures flag", "failed_count", failedCount)
			return nil
		}
		return fmt.Errorf("%d of %d variants failed", failedCount, len(tasks))
	}

	return nil
}
