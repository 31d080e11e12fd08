package cmd

import (
	"fmt"
	"image/png"

	"github.com/MeKo-Tech/texrecolor/internal/mask"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var maskCmd = &cobra.Command{
	Use:   "mask <input> <output>",
	Short: "Build a recolor mask from an image's alpha channel",
	Long: `Build a recolor mask from an image: every pixel that is not fully transparent
becomes opaque red (recolor), everything else stays transparent (keep).

Use --width/--height to resize the result to a texture's dimensions and
--grow to extend the recolored region over antialiased edges.`,
	Args: cobra.ExactArgs(2),
	RunE: runMask,
}

func init() {
	rootCmd.AddCommand(maskCmd)

	maskCmd.Flags().Int("width", 0, "Resize the mask to this width (0 = keep)")
	maskCmd.Flags().Int("height", 0, "Resize the mask to this height (0 = keep)")
	maskCmd.Flags().Float64("grow", 0, "Extend the red region by this many pixels")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"mask.width", "width"},
		{"mask.height", "height"},
		{"mask.grow", "grow"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, maskCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runMask(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	compression, err := texture.ParseCompression(viper.GetString("png_compression"))
	if err != nil {
		return err
	}

	n, err := buildMask(args[0], args[1], maskOptions{
		Width:  viper.GetInt("mask.width"),
		Height: viper.GetInt("mask.height"),
		Grow:   viper.GetFloat64("mask.grow"),
	}, compression)
	if err != nil {
		return err
	}

	logger.Info("Mask written", "input", args[0], "output", args[1], "masked_pixels", n)
	return nil
}

type maskOptions struct {
	Width, Height int
	Grow          float64
}

// buildMask writes the alpha mask of input to output and returns the number
// of pixels marked for recoloring.
func buildMask(input, output string, opts maskOptions, compression png.CompressionLevel) (int, error) {
	src, err := texture.Load(input)
	if err != nil {
		return 0, err
	}

	m := mask.FromAlpha(src)
	if opts.Width > 0 || opts.Height > 0 {
		width, height := opts.Width, opts.Height
		if width <= 0 {
			width = m.Bounds().Dx()
		}
		if height <= 0 {
			height = m.Bounds().Dy()
		}
		m = mask.Fit(m, width, height)
	}
	if opts.Grow > 0 {
		m = mask.Grow(m, opts.Grow)
	}

	if err := texture.SavePNG(output, m, compression); err != nil {
		return 0, err
	}
	return mask.Coverage(m.Pix), nil
}
