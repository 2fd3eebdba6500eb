package assets_test

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/compilers"
	"github.com/spaghettifunk/assetforge/engine/assets/loaders"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/assets/savers"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/assets/strategies"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func newManager(t *testing.T, root string, options assets.ManagerOptions) *assets.AssetManager {
	t.Helper()

	reg := assets.NewRegistry()
	_, err := loaders.RegisterDefaults(reg)
	require.NoError(t, err)
	require.NoError(t, savers.RegisterDefaults(reg))

	chain := []assets.LoadStrategy{
		strategies.LocalSource{},
		strategies.LocalCompiled{Platform: options.Platform},
	}
	raw := assets.NewRawAssetLoader(root, chain)
	return assets.NewAssetManager(raw, reg, store.NewWriter(store.FSStore(root)), options)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeVariable(t *testing.T, root, name string, value int) {
	t.Helper()
	writeFile(t, filepath.Join(root, assets.NamePath(name)+".asset"),
		fmt.Sprintf(`{"Loader":"%s","Value":%d}`, metadata.VariableLoader, value))
}

func writeCompiledFont(t *testing.T, root, name string, lineHeight int) {
	t.Helper()
	payload := &metadata.FontPayload{LineHeight: lineHeight}
	raw := assets.NewCompiledRawAsset(&compiled.CompiledAsset{
		Loader: metadata.FontLoader,
		PlatformData: &compiled.PlatformData{
			Platform: platform.Linux,
			Data:     payload.Marshal(),
		},
	})
	require.NoError(t, store.NewWriter(store.FSStore(root)).WriteRawAsset(name, raw))
}

func writeFontSource(t *testing.T, root, name string) {
	t.Helper()
	writeFile(t, filepath.Join(root, assets.NamePath(name)+".asset"),
		fmt.Sprintf(`{"Loader":"%s","FontName":"Arial","FontSize":12,"UseKerning":true,"Spacing":0}`, metadata.FontLoader))
}

// listFiles returns every file under root, relative to it.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	require.NoError(t, err)
	return files
}

func variableValue(t *testing.T, a assets.Asset) int64 {
	t.Helper()
	v, ok := a.(*metadata.VariableAsset)
	require.True(t, ok, "expected a variable asset, got %T", a)
	i, ok := v.Value.AsInt()
	require.True(t, ok)
	return i
}

func TestSourceFallsThroughToCompiled(t *testing.T) {
	root := t.TempDir()
	writeFontSource(t, root, "font.Default")
	writeCompiledFont(t, root, "font.Default", 14)

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	f, err := assets.Get[*metadata.FontAsset](m, "font.Default")
	require.NoError(t, err)
	assert.True(t, f.CompiledOnly())
	require.NotNil(t, f.Font)
	assert.Equal(t, 14, f.Font.LineHeight)
}

func TestSourceOnlyAllowed(t *testing.T) {
	root := t.TempDir()
	writeFontSource(t, root, "font.Default")
	writeCompiledFont(t, root, "font.Default", 14)

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux, AllowSourceOnly: true})
	f, err := assets.Get[*metadata.FontAsset](m, "font.Default")
	require.NoError(t, err)
	assert.Equal(t, "Arial", f.FontName)
	assert.True(t, f.SourceOnly())
}

func TestNotCompiled(t *testing.T) {
	root := t.TempDir()
	writeFontSource(t, root, "font.Default")

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Android})
	_, err := m.Get("font.Default")
	require.ErrorIs(t, err, core.ErrAssetNotCompiled)
	assert.Contains(t, err.Error(), "font.Default")
	assert.Contains(t, err.Error(), "Android")
}

func TestLoaderNotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "odd.asset"), `{"Loader":"SomethingElse"}`)

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	_, err := m.Get("odd")
	require.ErrorIs(t, err, core.ErrLoaderNotFound)
}

func TestFailedIsCachedUntilDirty(t *testing.T) {
	root := t.TempDir()
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	_, err := m.Get("player.speed")
	require.ErrorIs(t, err, core.ErrAssetNotFound)
	assert.Equal(t, assets.StateFailed, m.State("player.speed"))

	writeVariable(t, root, "player.speed", 3)
	_, err = m.Get("player.speed")
	require.ErrorIs(t, err, core.ErrAssetNotFound)

	m.Dirty("player.speed")
	assert.Equal(t, assets.StateUnresolved, m.State("player.speed"))
	a, err := m.Get("player.speed")
	require.NoError(t, err)
	assert.EqualValues(t, 3, variableValue(t, a))
}

func TestDirtyUncachedIsNoop(t *testing.T) {
	m := newManager(t, t.TempDir(), assets.ManagerOptions{Platform: platform.Linux})
	m.Dirty("never.loaded")
	assert.Equal(t, assets.StateUnresolved, m.State("never.loaded"))
}

func TestDirtyReloadsIntoNewInstance(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	first, err := m.Get("player.speed")
	require.NoError(t, err)
	assert.Equal(t, assets.StateCachedClean, m.State("player.speed"))

	writeVariable(t, root, "player.speed", 2)
	cached, err := m.Get("player.speed")
	require.NoError(t, err)
	assert.EqualValues(t, 1, variableValue(t, cached))

	m.Dirty("player.speed")
	assert.Equal(t, assets.StateCachedDirty, m.State("player.speed"))

	second, err := m.Get("player.speed")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.EqualValues(t, 2, variableValue(t, second))
	assert.EqualValues(t, 1, variableValue(t, first))
	assert.Equal(t, assets.StateCachedClean, m.State("player.speed"))
}

func TestReloadLeavesHeldInstanceUntouched(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	held, err := assets.Get[*metadata.VariableAsset](m, "player.speed")
	require.NoError(t, err)

	stop := make(chan struct{})
	seen := make(chan int64, 1)
	go func() {
		var last int64
		defer func() { seen <- last }()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if i, ok := held.Value.AsInt(); ok {
				last = i
			}
			if held.Name() != "player.speed" {
				last = -1
				return
			}
		}
	}()

	for i := 2; i < 40; i++ {
		writeVariable(t, root, "player.speed", i)
		m.Dirty("player.speed")
		a, err := m.Get("player.speed")
		require.NoError(t, err)
		assert.EqualValues(t, i, variableValue(t, a))
	}
	close(stop)

	assert.EqualValues(t, 1, <-seen)
	assert.EqualValues(t, 1, variableValue(t, held))
}

func TestSelfReferencingAtlasFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "atlas", "Ui.asset"),
		fmt.Sprintf(`{"Loader":"%s","SourceTextureNames":["atlas.Ui"]}`, metadata.TextureAtlasLoader))

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	compilers.Register(m.Registry(), platform.Linux, compilers.Options{
		ResolveTexture: func(name string) (*metadata.TextureAsset, error) {
			return assets.Get[*metadata.TextureAsset](m, name)
		},
	})

	result := make(chan error, 1)
	go func() {
		_, err := m.Get("atlas.Ui")
		result <- err
	}()

	select {
	case err := <-result:
		require.ErrorIs(t, err, core.ErrResolutionCycle)
		assert.Contains(t, err.Error(), "atlas.Ui")
	case <-time.After(5 * time.Second):
		t.Fatal("resolving a self-referencing atlas did not return")
	}
	assert.Equal(t, assets.StateFailed, m.State("atlas.Ui"))
}

func TestCompiledWithoutPlatformDataIsCorrupt(t *testing.T) {
	root := t.TempDir()
	raw := assets.NewCompiledRawAsset(&compiled.CompiledAsset{Loader: metadata.FontLoader})
	require.NoError(t, store.NewWriter(store.FSStore(root)).WriteRawAsset("font.Broken", raw))

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux, AllowSourceOnly: true})
	_, err := m.Get("font.Broken")
	require.ErrorIs(t, err, core.ErrCorruptData)
	assert.Contains(t, err.Error(), "font.Broken")
	assert.Equal(t, assets.StateFailed, m.State("font.Broken"))
}

func TestSourceCompiledWithRegisteredCompiler(t *testing.T) {
	root := t.TempDir()
	writeFontSource(t, root, "font.Default")

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	compilers.Register(m.Registry(), platform.Linux, compilers.Options{FontDirs: []string{root}})

	f, err := assets.Get[*metadata.FontAsset](m, "font.Default")
	require.NoError(t, err)
	assert.Equal(t, "Arial", f.FontName)
	assert.False(t, f.SourceOnly())
	require.NotNil(t, f.PlatformData())
	assert.Equal(t, platform.Linux, f.PlatformData().Platform)
	require.NotNil(t, f.Font)
	assert.Greater(t, f.Font.LineHeight, 0)
}

func TestSourceTakesPrecedenceOverCompiled(t *testing.T) {
	root := t.TempDir()
	writeFontSource(t, root, "font.Default")
	writeCompiledFont(t, root, "font.Default", 999)

	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	compilers.Register(m.Registry(), platform.Linux, compilers.Options{FontDirs: []string{root}})

	f, err := assets.Get[*metadata.FontAsset](m, "font.Default")
	require.NoError(t, err)
	assert.Equal(t, "Arial", f.FontName)
	assert.False(t, f.CompiledOnly())
	require.NotNil(t, f.Font)
	assert.NotEqual(t, 999, f.Font.LineHeight)
}

func TestDirtyPath(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	_, err := m.Get("player.speed")
	require.NoError(t, err)

	name, ok := m.DirtyPath(filepath.Join(root, "player", "speed.asset"))
	require.True(t, ok)
	assert.Equal(t, "player.speed", name)
	assert.Equal(t, assets.StateCachedDirty, m.State("player.speed"))

	_, ok = m.DirtyPath(filepath.Join(t.TempDir(), "elsewhere.asset"))
	assert.False(t, ok)
}

func TestConcurrentGetAndDirty(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				a, err := m.Get("player.speed")
				if err != nil {
					errs <- err
					return
				}
				if a == nil {
					errs <- fmt.Errorf("nil asset")
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Dirty("player.speed")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	_, err := m.Get("player.speed")
	require.NoError(t, err)
	state := m.State("player.speed")
	assert.Contains(t, []assets.State{assets.StateCachedClean, assets.StateCachedDirty}, state)
}

func TestTryGet(t *testing.T) {
	m := newManager(t, t.TempDir(), assets.ManagerOptions{Platform: platform.Linux})

	a, err := m.TryGet("")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = m.TryGet("missing.thing")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestGetWrongType(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	_, err := assets.Get[*metadata.FontAsset](m, "player.speed")
	require.ErrorIs(t, err, core.ErrWrongAssetType)
}

func TestGetOrDefault(t *testing.T) {
	m := newManager(t, t.TempDir(), assets.ManagerOptions{Platform: platform.Linux})

	tex, err := assets.GetOrDefault[*metadata.TextureAsset](m, "texture.Missing")
	require.NoError(t, err)
	require.NotNil(t, tex.Image)
	assert.Equal(t, "texture.Missing", tex.Name())

	_, err = assets.GetOrDefault[*metadata.VariableAsset](m, "player.missing")
	require.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestSaveAndBake(t *testing.T) {
	root := t.TempDir()
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	a, err := m.NewAsset(assets.KindVariable, "player.lives")
	require.NoError(t, err)
	v := a.(*metadata.VariableAsset)
	v.Value = assets.Integer(3)

	require.NoError(t, m.Save(v))
	assert.Equal(t, assets.StateCachedClean, m.State("player.lives"))
	got, err := m.Get("player.lives")
	require.NoError(t, err)
	assert.Same(t, v, got)

	_, err = os.Stat(filepath.Join(root, "player", "lives.asset"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, m.Bake(v))
	data, err := os.ReadFile(filepath.Join(root, "player", "lives.asset"))
	require.NoError(t, err)
	assert.Contains(t, string(data), metadata.VariableLoader)

	fresh := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	reloaded, err := fresh.Get("player.lives")
	require.NoError(t, err)
	assert.EqualValues(t, 3, variableValue(t, reloaded))
}

func TestSaveWithoutRepresentationIsNoop(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	before := listFiles(t, root)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	ai := metadata.NewAIAsset("enemy.brain", "Chase", nil)
	require.NoError(t, m.Save(ai))
	require.NoError(t, m.Bake(ai))
	assert.Equal(t, assets.StateUnresolved, m.State("enemy.brain"))

	logo := metadata.DefaultTexture("texture.Logo")
	require.True(t, logo.SourcedFromRaw)
	require.NoError(t, m.Bake(logo))
	assert.Equal(t, assets.StateUnresolved, m.State("texture.Logo"))

	assert.Equal(t, before, listFiles(t, root))
}

func TestSaveWithoutSaver(t *testing.T) {
	reg := assets.NewRegistry()
	raw := assets.NewRawAssetLoader(t.TempDir(), nil)
	m := assets.NewAssetManager(raw, reg, nil, assets.ManagerOptions{Platform: platform.Linux})

	err := m.Save(metadata.NewVariableAsset("a", assets.Integer(1)))
	require.ErrorIs(t, err, core.ErrSaverNotFound)
}

func TestNewAssetCannotCreate(t *testing.T) {
	m := newManager(t, t.TempDir(), assets.ManagerOptions{Platform: platform.Linux})
	_, err := m.NewAsset(assets.KindTexture, "texture.Blank")
	require.Error(t, err)
}

func TestRescanAndNames(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	writeVariable(t, root, "player.lives", 3)
	writeCompiledFont(t, root, "font.Default", 10)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	names, err := m.GetAllNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"font.Default", "player.lives", "player.speed"}, names)

	all, err := m.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "font.Default", all[0].Name())

	paths := m.GetPotentialPaths("player.speed")
	assert.Contains(t, paths, filepath.Join(root, "player", "speed.asset"))
	assert.Contains(t, paths, filepath.Join(root, "Linux", "player", "speed.bin"))
}

func TestClose(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})
	_, err := m.Get("player.speed")
	require.NoError(t, err)

	m.Close()
	assert.Equal(t, assets.StateUnresolved, m.State("player.speed"))
}
