package build

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/loaders"
	"github.com/spaghettifunk/assetforge/engine/assets/savers"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newBuilder(t *testing.T, root, out string, mirror store.Store) *Builder {
	t.Helper()
	reg := assets.NewRegistry()
	_, err := loaders.RegisterDefaults(reg)
	require.NoError(t, err)
	require.NoError(t, savers.RegisterDefaults(reg))

	return NewBuilder(Options{
		Root:       root,
		Output:     out,
		Platforms:  []platform.TargetPlatform{platform.Linux, platform.Android},
		Workers:    2,
		RawFormats: true,
		Registry:   reg,
		Host:       platform.Linux,
		Mirror:     mirror,
	})
}

func TestOutOfDate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		source   time.Time
		compiled time.Time
		exists   bool
		want     bool
	}{
		{"missing compiled", now, time.Time{}, false, true},
		{"source newer", now, now.Add(-time.Minute), true, true},
		{"compiled newer", now.Add(-time.Minute), now, true, false},
		{"same time", now, now, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutOfDate(tt.source, tt.compiled, tt.exists))
		})
	}
}

func TestBuilderRun(t *testing.T) {
	root, out, mirrorDir := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(root, "texture", "Green.png"), pngBytes(t))
	writeFile(t, filepath.Join(root, "font", "Default.asset"),
		[]byte(`{"Loader":"FontAssetLoader","FontName":"Missing","FontSize":10,"UseKerning":false,"Spacing":0}`))
	writeFile(t, filepath.Join(root, "player", "speed.asset"), []byte(`{"Loader":"VariableAssetLoader","Value":4}`))

	mirror := store.FSStore(mirrorDir)
	b := newBuilder(t, root, out, mirror)
	ctx := context.Background()

	report, err := b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Android/font.Default",
		"Android/texture.Green",
		"Linux/font.Default",
		"Linux/texture.Green",
	}, report.Compiled)
	assert.Equal(t, []string{"Android/player.speed", "Linux/player.speed"}, report.Skipped)

	for _, p := range []platform.TargetPlatform{platform.Linux, platform.Android} {
		data, err := os.ReadFile(filepath.Join(out, p.String(), "texture", "Green.bin"))
		require.NoError(t, err)
		c, err := compiled.DecodeBytes(data)
		require.NoError(t, err)
		assert.Equal(t, p, c.PlatformData.Platform)

		_, err = mirror.Get(ctx, store.CompiledKey("texture.Green", p))
		require.NoError(t, err)

		m, err := ReadManifest(ctx, store.FSStore(out), p)
		require.NoError(t, err)
		assert.Equal(t, p.String(), m.Platform)
		require.Len(t, m.Assets, 2)
		assert.Equal(t, "font.Default", m.Assets[0].Name)
		assert.Equal(t, "texture.Green", m.Assets[1].Name)
		assert.Equal(t, string(assets.KindTexture), m.Assets[1].Kind)
		assert.Greater(t, m.Assets[1].Size, 0)
	}

	// second run has nothing to do
	report, err = b.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Compiled)
	assert.Len(t, report.UpToDate, 4)

	// a touched source is recompiled
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "texture", "Green.png"), future, future))
	report, err = b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Android/texture.Green", "Linux/texture.Green"}, report.Compiled)
}

func TestBuilderDeletesOrphans(t *testing.T) {
	root, out, mirrorDir := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(root, "texture", "Green.png"), pngBytes(t))
	orphan := filepath.Join(out, "Linux", "texture", "Gone.bin")
	writeFile(t, orphan, []byte{0})
	mirror := store.FSStore(mirrorDir)
	require.NoError(t, mirror.Set(context.Background(), store.CompiledKey("texture.Gone", platform.Linux), []byte{0}))

	b := newBuilder(t, root, out, mirror)
	report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Linux/texture.Gone"}, report.Deleted)

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))
	_, err = mirror.Get(context.Background(), store.CompiledKey("texture.Gone", platform.Linux))
	assert.ErrorIs(t, err, store.Missing)
	_, err = os.Stat(filepath.Join(out, "Linux", "texture", "Green.bin"))
	assert.NoError(t, err)
}

func TestBuilderReportsFailures(t *testing.T) {
	root, out := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(root, "texture", "Broken.png"), []byte("not a png"))

	b := newBuilder(t, root, out, nil)
	_, err := b.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "texture.Broken")
}

func TestBuilderRequiresRegistry(t *testing.T) {
	_, err := NewBuilder(Options{}).Run(context.Background())
	require.Error(t, err)
}
