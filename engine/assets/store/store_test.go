package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	s := FSStore(t.TempDir())

	_, err := s.Get(ctx, "Linux/font/Default.bin")
	assert.ErrorIs(t, err, Missing)

	require.NoError(t, s.Set(ctx, "Linux/font/Default.bin", []byte{1, 2}))
	data, err := s.Get(ctx, "Linux/font/Default.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)

	_, ok := s.ModTime("Linux/font/Default.bin")
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "Linux/font/Default.bin"))
	require.NoError(t, s.Delete(ctx, "Linux/font/Default.bin"))
	_, ok = s.ModTime("Linux/font/Default.bin")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "font/Default.asset", SourceKey("font.Default"))
	assert.Equal(t, "MacOSX/font/Default.bin", CompiledKey("font.Default", platform.MacOSX))
	assert.Equal(t, "font/Default.bin", UnqualifiedCompiledKey("font.Default"))
}

func TestWriterSource(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(FSStore(root))

	raw := assets.NewRawAsset(map[string]assets.Value{
		"Loader":  assets.String("TextureAssetLoader"),
		"RawData": assets.Bytes([]byte{7, 255}),
	}, false)
	require.NoError(t, w.WriteRawAsset("texture.Player", raw))

	data, err := os.ReadFile(filepath.Join(root, "texture", "Player.asset"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Loader":"TextureAssetLoader","RawData":[7,255]}`, string(data))

	back, err := assets.ParseJSONRawAsset(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 255}, back.Bytes("RawData"))
}

func TestWriterCompiled(t *testing.T) {
	root := t.TempDir()
	w := NewWriter(FSStore(root))

	c := &compiled.CompiledAsset{
		Loader:       "AudioAssetLoader",
		PlatformData: &compiled.PlatformData{Platform: platform.Android, Data: []byte("wave")},
	}
	require.NoError(t, w.WriteRawAsset("audio.Jump", assets.NewCompiledRawAsset(c)))

	data, err := os.ReadFile(filepath.Join(root, "Android", "audio", "Jump.bin"))
	require.NoError(t, err)
	decoded, err := compiled.DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}
