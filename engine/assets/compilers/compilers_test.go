package compilers

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextureCompiler(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}

	tests := []struct {
		name         string
		target       platform.TargetPlatform
		w, h         int
		wantW, wantH int
	}{
		{"desktop keeps size", platform.Linux, 2048, 10, 2048, 10},
		{"mobile scales wide", platform.Android, 2048, 10, 1024, 5},
		{"mobile scales tall", platform.IOS, 8, 4096, 2, 1024},
		{"mobile keeps small", platform.Android, 4, 2, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := metadata.NewTextureAsset("texture.Red", solidPNG(t, tt.w, tt.h, red), nil, false)
			require.NoError(t, err)

			require.NoError(t, (&TextureCompiler{}).Compile(tex, tt.target))
			require.NotNil(t, tex.PlatformData())
			assert.Equal(t, tt.target, tex.PlatformData().Platform)
			require.NotNil(t, tex.Image)
			assert.Equal(t, tt.wantW, tex.Image.Bounds().Dx())
			assert.Equal(t, tt.wantH, tex.Image.Bounds().Dy())
		})
	}
}

func TestTextureCompilerRejectsGarbage(t *testing.T) {
	tex, err := metadata.NewTextureAsset("texture.Bad", []byte("not an image"), nil, false)
	require.NoError(t, err)
	err = (&TextureCompiler{}).Compile(tex, platform.Linux)
	require.ErrorIs(t, err, core.ErrCorruptData)
	assert.True(t, tex.SourceOnly())
}

func TestFontCompilerFallsBackToGoRegular(t *testing.T) {
	f, err := metadata.NewFontAsset("font.Default", "NoSuchFont", 16, false, 2, nil)
	require.NoError(t, err)

	require.NoError(t, (&FontCompiler{Dirs: []string{t.TempDir()}}).Compile(f, platform.Linux))
	require.NotNil(t, f.Font)
	assert.Greater(t, f.Font.LineHeight, 0)
	assert.Equal(t, 2, f.Font.Spacing)
	require.NotNil(t, f.Font.Atlas)

	a, ok := f.Font.Glyph('A')
	require.True(t, ok)
	assert.Greater(t, a.Width, 0)
	assert.Greater(t, a.Advance, 0)

	space, ok := f.Font.Glyph(' ')
	require.True(t, ok)
	assert.Greater(t, space.Advance, 0)
}

func TestFontCompilerRejectsBadSize(t *testing.T) {
	f, err := metadata.NewFontAsset("font.Zero", "Arial", 0, false, 0, nil)
	require.NoError(t, err)
	require.Error(t, (&FontCompiler{}).Compile(f, platform.Linux))
}

func TestAudioCompiler(t *testing.T) {
	wav := metadata.EncodeWAV(&metadata.Sound{
		Channels:      1,
		SampleRate:    8000,
		BitsPerSample: 16,
		Samples:       make([]byte, 16000),
	})
	a, err := metadata.NewAudioAsset("audio.Beep", wav, nil, false)
	require.NoError(t, err)

	require.NoError(t, (&AudioCompiler{}).Compile(a, platform.Windows))
	require.NotNil(t, a.Sound)
	assert.InDelta(t, 1.0, a.Sound.Duration(), 0.001)

	bad, err := metadata.NewAudioAsset("audio.Bad", []byte("RIFF"), nil, false)
	require.NoError(t, err)
	require.Error(t, (&AudioCompiler{}).Compile(bad, platform.Windows))
}

func TestModelCompiler(t *testing.T) {
	m, err := metadata.NewModelAsset("model.Hero", []byte("mesh"), map[string][]byte{"run": []byte("anim")}, "fbx", nil, nil, false)
	require.NoError(t, err)

	require.NoError(t, (&ModelCompiler{}).Compile(m, platform.Linux))
	require.NotNil(t, m.Model)
	assert.Equal(t, []byte("mesh"), m.Model.Data)
	assert.Equal(t, []string{"run"}, m.AnimationNames())
}

func TestAtlasCompiler(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	textures := map[string][]byte{
		"texture.Red":  solidPNG(t, 4, 4, red),
		"texture.Blue": solidPNG(t, 2, 2, blue),
	}
	resolve := func(name string) (*metadata.TextureAsset, error) {
		data, ok := textures[name]
		if !ok {
			return nil, fmt.Errorf("%w: '%s'", core.ErrAssetNotFound, name)
		}
		return metadata.NewTextureAsset(name, data, nil, false)
	}

	atlas, err := metadata.NewTextureAtlasAsset("atlas.Ui", []string{"texture.Red", "texture.Blue"}, nil)
	require.NoError(t, err)
	require.NoError(t, (&AtlasCompiler{Resolve: resolve}).Compile(atlas, platform.Linux))

	require.NotNil(t, atlas.AtlasTexture)
	img := atlas.AtlasTexture.Image
	require.NotNil(t, img)
	w, h := float32(img.Bounds().Dx()), float32(img.Bounds().Dy())

	for name, want := range map[string]color.NRGBA{"texture.Red": red, "texture.Blue": blue} {
		uv, ok := atlas.UVBounds(name)
		require.True(t, ok, name)
		assert.True(t, uv.TopLeftU >= 0 && uv.BottomRightU <= 1)
		assert.True(t, uv.TopLeftV >= 0 && uv.BottomRightV <= 1)

		x := int(math.Round(float64(uv.TopLeftU * w)))
		y := int(math.Round(float64(uv.TopLeftV * h)))
		assert.Equal(t, want, color.NRGBAModel.Convert(img.At(x, y)), name)
		// overscan repeats the edge
		assert.Equal(t, want, color.NRGBAModel.Convert(img.At(x-AtlasOverscan, y-AtlasOverscan)), name)
	}

	missing, err := metadata.NewTextureAtlasAsset("atlas.Broken", []string{"texture.Gone"}, nil)
	require.NoError(t, err)
	err = (&AtlasCompiler{Resolve: resolve}).Compile(missing, platform.Linux)
	require.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestEffectCompiler(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}
	e, err := metadata.NewEffectAsset("effect.Basic", "technique T {}", nil, false)
	require.NoError(t, err)

	ec := &EffectCompiler{Tool: "cp", Args: []string{"{input}", "{output}"}}
	require.NoError(t, ec.Compile(e, platform.Linux))
	assert.Equal(t, []byte("technique T {}"), e.Program)

	failing := &EffectCompiler{Tool: "false"}
	require.Error(t, failing.Compile(e, platform.Linux))

	require.Error(t, (&EffectCompiler{}).Compile(e, platform.Linux))
}

func TestRegister(t *testing.T) {
	desktop := assets.NewRegistry()
	Register(desktop, platform.Linux, Options{EffectTool: "fxc"})
	for _, k := range []assets.Kind{assets.KindTexture, assets.KindAudio, assets.KindModel, assets.KindFont, assets.KindEffect} {
		_, ok := desktop.Compiler(k)
		assert.True(t, ok, "desktop compiler for %s", k)
	}
	_, ok := desktop.Compiler(assets.KindTextureAtlas)
	assert.False(t, ok)

	mobile := assets.NewRegistry()
	Register(mobile, platform.Android, Options{EffectTool: "fxc"})
	_, ok = mobile.Compiler(assets.KindFont)
	assert.False(t, ok)
	_, ok = mobile.Compiler(assets.KindEffect)
	assert.False(t, ok)
	_, ok = mobile.Compiler(assets.KindTexture)
	assert.True(t, ok)
}
