package cmd

import (
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/texrecolor/internal/colorconv"
	"github.com/MeKo-Tech/texrecolor/internal/recolor"
	"github.com/MeKo-Tech/texrecolor/internal/texture"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVariantSet(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("variants", map[string]any{
		"name":          "teams",
		"base":          "#ff0000",
		"validate_mask": true,
		"colors": map[string]any{
			"blue":  "#0000ff",
			"green": "0,160,0",
		},
	})

	tests := []struct {
		name      string
		base      string
		colors    map[string]string
		wantBase  colorconv.RGB
		wantNames []string
	}{
		{
			name:      "config only",
			wantBase:  colorconv.RGB{R: 255},
			wantNames: []string{"blue", "green"},
		},
		{
			name:      "flag overrides",
			base:      "0,255,0",
			colors:    map[string]string{"blue": "#000080", "gold": "#ffd700"},
			wantBase:  colorconv.RGB{G: 255},
			wantNames: []string{"blue", "gold", "green"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := loadVariantSet(tt.base, tt.colors)
			require.NoError(t, err)
			assert.Equal(t, "teams", set.Name)
			assert.True(t, set.ValidateMask)
			assert.Equal(t, tt.wantBase, set.Base)
			assert.Equal(t, tt.wantNames, set.Names())
		})
	}

	set, err := loadVariantSet("", map[string]string{"blue": "#000080"})
	require.NoError(t, err)
	assert.Equal(t, colorconv.RGB{B: 128}, set.Colors["blue"])
}

func TestLoadVariantSetDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	set, err := loadVariantSet("", map[string]string{"blue": "#0000ff"})
	require.NoError(t, err)
	assert.Equal(t, colorconv.RGB{R: 255}, set.Base)

	_, err = loadVariantSet("", nil)
	assert.Error(t, err)
}

func TestRecolorJob(t *testing.T) {
	initLogging()
	dir := t.TempDir()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 128, A: 100})
	in := filepath.Join(dir, "shield.png")
	require.NoError(t, texture.SavePNG(in, src, png.BestSpeed))

	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	m.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	require.NoError(t, texture.SavePNG(filepath.Join(dir, "shield_mask.png"), m, png.BestSpeed))

	job := recolorJob{
		Input:       in,
		Output:      filepath.Join(dir, "out", "blue.png"),
		Base:        colorconv.RGB{R: 255},
		Replacement: colorconv.RGB{B: 255},
		MaskSuffix:  "_mask",
		Compression: png.BestSpeed,
	}

	t.Run("auto mask", func(t *testing.T) {
		require.NoError(t, job.run())
		out, err := texture.Load(job.Output)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{B: 255, A: 255}, out.NRGBAAt(0, 0))
		assert.Equal(t, color.NRGBA{R: 128, A: 100}, out.NRGBAAt(1, 0))
	})

	t.Run("no mask", func(t *testing.T) {
		j := job
		j.NoMask = true
		require.NoError(t, j.run())
		out, err := texture.Load(j.Output)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{B: 128, A: 100}, out.NRGBAAt(1, 0))
	})

	t.Run("max bytes", func(t *testing.T) {
		j := job
		j.Options = recolor.Options{MaxBytes: 4}
		assert.ErrorIs(t, j.run(), recolor.ErrAllocation)
	})
}

func TestBuildMask(t *testing.T) {
	dir := t.TempDir()

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{G: 10, A: 1})
	src.SetNRGBA(1, 1, color.NRGBA{B: 200, A: 255})
	in := filepath.Join(dir, "decal.png")
	require.NoError(t, texture.SavePNG(in, src, png.BestSpeed))

	out := filepath.Join(dir, "decal_mask.png")
	n, err := buildMask(in, out, maskOptions{}, png.BestSpeed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m, err := texture.Load(out)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, m.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, m.NRGBAAt(1, 0))

	n, err = buildMask(in, out, maskOptions{Width: 4, Height: 4}, png.BestSpeed)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = buildMask(in, out, maskOptions{Grow: 1}, png.BestSpeed)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
