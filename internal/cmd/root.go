package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "texrecolor",
	Short: "Hue-preserving texture recoloring",
	Long: `texrecolor swaps the color of painted textures while keeping their shading.

A texture painted in a base color is recolored to a replacement color: every
pixel selected by the optional red/white mask takes the replacement hue and is
shifted in saturation and brightness by the difference between the two colors.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("mask-suffix", "_mask", "Suffix of mask files next to their texture (foo.png -> foo_mask.png)")
	rootCmd.PersistentFlags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	rootCmd.PersistentFlags().Int("max-bytes", 0, "Refuse textures whose RGBA buffer exceeds this many bytes (0 = no limit)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"mask_suffix", "mask-suffix"},
		{"png_compression", "png-compression"},
		{"max_bytes", "max-bytes"},
		{"verbose", "verbose"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, rootCmd.PersistentFlags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TEXRECOLOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
