package cmd

import (
	"fmt"
	"image"
	"image/png"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/mask"
	"github.com/MeKo-Tech/texrecolor/internal/recolor"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var recolorCmd = &cobra.Command{
	Use:   "recolor <input> <output>",
	Short: "Recolor a single texture",
	Long: `Recolor a single texture from the base color to the replacement color.

The mask is taken from --mask, or from the file next to the input named by
--mask-suffix when it exists. Without a mask every pixel is recolored.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecolor,
}

func init() {
	rootCmd.AddCommand(recolorCmd)

	recolorCmd.Flags().String("base", "#ff0000", "Color the texture was painted in (hex or r,g,b)")
	recolorCmd.Flags().String("replacement", "", "Color to recolor to (hex or r,g,b)")
	recolorCmd.Flags().String("mask", "", "Mask file (default: auto-detect via --mask-suffix)")
	recolorCmd.Flags().Bool("no-mask", false, "Ignore any mask and recolor every pixel")
	recolorCmd.Flags().Bool("validate-mask", false, "Fail on mask pixels other than red, white or transparent")
	recolorCmd.Flags().Bool("ignore-bright", false, "Reserved; accepted for compatibility and currently has no effect")
	recolorCmd.Flags().Bool("fit-mask", false, "Resize a mask that does not match the texture size")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"recolor.base", "base"},
		{"recolor.replacement", "replacement"},
		{"recolor.mask", "mask"},
		{"recolor.no_mask", "no-mask"},
		{"recolor.validate_mask", "validate-mask"},
		{"recolor.ignore_bright", "ignore-bright"},
		{"recolor.fit_mask", "fit-mask"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, recolorCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

type recolorJob struct {
	Input       string
	Output      string
	Base        colorconv.RGB
	Replacement colorconv.RGB
	MaskPath    string
	NoMask      bool
	MaskSuffix  string
	FitMask     bool
	Options     recolor.Options
	Compression png.CompressionLevel
}

func runRecolor(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	base, err := colorconv.Parse(viper.GetString("recolor.base"))
	if err != nil {
		return fmt.Errorf("invalid --base: %w", err)
	}
	replacement, err := colorconv.Parse(viper.GetString("recolor.replacement"))
	if err != nil {
		return fmt.Errorf("invalid --replacement: %w", err)
	}
	compression, err := texture.ParseCompression(viper.GetString("png_compression"))
	if err != nil {
		return err
	}

	job := recolorJob{
		Input:       args[0],
		Output:      args[1],
		Base:        base,
		Replacement: replacement,
		MaskPath:    viper.GetString("recolor.mask"),
		NoMask:      viper.GetBool("recolor.no_mask"),
		MaskSuffix:  viper.GetString("mask_suffix"),
		FitMask:     viper.GetBool("recolor.fit_mask"),
		Options: recolor.Options{
			ValidateMaskColors: viper.GetBool("recolor.validate_mask"),
			IgnoreBright:       viper.GetBool("recolor.ignore_bright"),
			MaxBytes:           viper.GetInt("max_bytes"),
		},
		Compression: compression,
	}

	if err := job.run(); err != nil {
		return err
	}

	logger.Info("Texture recolored",
		"input", job.Input,
		"output", job.Output,
		"base", job.Base,
		"replacement", job.Replacement,
	)
	return nil
}

func (j recolorJob) run() error {
	src, err := texture.Load(j.Input)
	if err != nil {
		return err
	}

	var m *image.NRGBA
	maskPath := j.MaskPath
	if maskPath == "" && !j.NoMask {
		maskPath = texture.MaskPath(j.Input, j.MaskSuffix)
	}
	if maskPath != "" && !j.NoMask {
		if m, err = texture.Load(maskPath); err != nil {
			return err
		}
		if j.FitMask && m.Bounds().Size() != src.Bounds().Size() {
			logger.Warn("Resizing mask to texture size", "mask", maskPath, "mask_size", m.Bounds().Size(), "texture_size", src.Bounds().Size())
			m = mask.Fit(m, src.Bounds().Dx(), src.Bounds().Dy())
		}
		logger.Debug("Using mask", "mask", maskPath, "masked_pixels", mask.Coverage(recolor.Pack(m)))
	}

	out, err := recolor.ExchangeImage(src, j.Base, j.Replacement, m, j.Options)
	if err != nil {
		return fmt.Errorf("failed to recolor %s: %w", j.Input, err)
	}

	return texture.SavePNG(j.Output, out, j.Compression)
}
