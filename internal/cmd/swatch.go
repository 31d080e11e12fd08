package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var swatchCmd = &cobra.Command{
	Use:   "swatch <output>",
	Short: "Generate a shaded sample texture in a single color",
	Long: `Generate a seamless-looking sample texture painted in --color, with brightness
varied by Perlin noise. Swatches are useful for previewing variant sets.`,
	Args: cobra.ExactArgs(1),
	RunE: runSwatch,
}

func init() {
	rootCmd.AddCommand(swatchCmd)

	swatchCmd.Flags().String("color", "#ff0000", "Swatch color (hex or r,g,b)")
	swatchCmd.Flags().Int("size", 256, "Swatch size in pixels (square)")
	swatchCmd.Flags().Int64("seed", 1337, "Deterministic noise seed")
	swatchCmd.Flags().Float64("scale", 48, "Noise feature size in pixels")
	swatchCmd.Flags().Int("shading", 30, "Maximum brightness swing in percent (0..100)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"swatch.color", "color"},
		{"swatch.size", "size"},
		{"swatch.seed", "seed"},
		{"swatch.scale", "scale"},
		{"swatch.shading", "shading"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, swatchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runSwatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	c, err := colorconv.Parse(viper.GetString("swatch.color"))
	if err != nil {
		return fmt.Errorf("invalid --color: %w", err)
	}
	compression, err := texture.ParseCompression(viper.GetString("png_compression"))
	if err != nil {
		return err
	}

	params := texture.DefaultSwatchParams(c)
	params.Size = viper.GetInt("swatch.size")
	params.Seed = viper.GetInt64("swatch.seed")
	params.Scale = viper.GetFloat64("swatch.scale")
	params.Shading = viper.GetInt("swatch.shading")

	img, err := texture.GenerateSwatch(params)
	if err != nil {
		return err
	}
	if err := texture.SavePNG(args[0], img, compression); err != nil {
		return err
	}

	logger.Info("Swatch generated", "path", args[0], "color", c, "size", params.Size, "seed", params.Seed)
	return nil
}
