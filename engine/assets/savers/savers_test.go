package savers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func TestRegisterDefaults(t *testing.T) {
	reg := assets.NewRegistry()
	require.NoError(t, RegisterDefaults(reg))

	for _, k := range []assets.Kind{
		assets.KindFont, assets.KindLanguage, assets.KindTexture, assets.KindLevel,
		assets.KindAudio, assets.KindTileset, assets.KindEffect, assets.KindAI,
		assets.KindModel, assets.KindConfiguration, assets.KindVariable, assets.KindTextureAtlas,
	} {
		_, ok := reg.Saver(k)
		assert.True(t, ok, "no saver for %s", k)
	}
	require.ErrorIs(t, RegisterDefaults(reg), core.ErrAlreadyRegistered)
}

func TestFontTargets(t *testing.T) {
	pd := &compiled.PlatformData{Platform: platform.Linux, Data: (&metadata.FontPayload{LineHeight: 8}).Marshal()}
	f, err := metadata.NewFontAsset("font.Default", "Arial", 12, true, 1, pd)
	require.NoError(t, err)

	tests := []struct {
		name   string
		target assets.Target
		check  func(t *testing.T, raw *assets.RawAsset)
	}{
		{"runtime", assets.TargetRuntime, func(t *testing.T, raw *assets.RawAsset) {
			assert.False(t, raw.IsCompiled())
			assert.Equal(t, "Arial", raw.String(metadata.PropFontName, ""))
			got, err := raw.PlatformData()
			require.NoError(t, err)
			assert.Equal(t, pd.Data, got.Data)
		}},
		{"source", assets.TargetSourceFile, func(t *testing.T, raw *assets.RawAsset) {
			assert.False(t, raw.IsCompiled())
			assert.EqualValues(t, 12, raw.Int(metadata.PropFontSize, 0))
			assert.True(t, raw.Bool(metadata.PropUseKerning, false))
			_, ok := raw.Property(assets.PropPlatformData)
			assert.False(t, ok)
		}},
		{"compiled", assets.TargetCompiledFile, func(t *testing.T, raw *assets.RawAsset) {
			assert.True(t, raw.IsCompiled())
			assert.Equal(t, metadata.FontLoader, raw.Loader())
			got, err := raw.PlatformData()
			require.NoError(t, err)
			assert.Equal(t, platform.Linux, got.Platform)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Font().Handle(f, tt.target)
			require.NoError(t, err)
			require.NotNil(t, raw)
			tt.check(t, raw)
		})
	}
}

func TestSourcedFromRawHasNoSourceFile(t *testing.T) {
	tex := metadata.DefaultTexture("texture.Player")
	tex.SourcedFromRaw = true

	raw, err := Texture().Handle(tex, assets.TargetSourceFile)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = Texture().Handle(tex, assets.TargetRuntime)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.True(t, raw.Bool(assets.PropSourcedFromRaw, false))
	assert.Equal(t, tex.RawData, raw.Bytes(metadata.PropRawData))
}

func TestSourceOnlyHasNoCompiledFile(t *testing.T) {
	e, err := metadata.NewEffectAsset("effect.Basic", "float4 main() {}", nil, false)
	require.NoError(t, err)

	raw, err := Effect().Handle(e, assets.TargetCompiledFile)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = Effect().Handle(e, assets.TargetSourceFile)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "float4 main() {}", raw.String(metadata.PropCode, ""))
	assert.Equal(t, metadata.EffectLoader, raw.Loader())
}

func TestConfigurationSource(t *testing.T) {
	c := metadata.NewConfigurationAsset("config.Game", []metadata.SettingGroup{
		{Name: "video", Settings: []metadata.Setting{{Key: "width", Value: assets.Integer(800)}}},
	})

	raw, err := Configuration().Handle(c, assets.TargetSourceFile)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.EqualValues(t, 1, raw.Int("GroupCount", 0))
	assert.Equal(t, "video", raw.String("GroupName0", ""))
}

func TestWrongType(t *testing.T) {
	_, err := Font().Handle(metadata.NewVariableAsset("a", assets.Null()), assets.TargetRuntime)
	require.ErrorIs(t, err, core.ErrWrongAssetType)
}
