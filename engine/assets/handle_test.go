package assets_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func TestHandleFollowsReload(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux, HotReload: true})

	h, err := assets.GetHandle[*metadata.VariableAsset](m, "player.speed")
	require.NoError(t, err)
	assert.Equal(t, "player.speed", h.Name())

	writeVariable(t, root, "player.speed", 5)
	m.Dirty("player.speed")

	v, err := h.Get()
	require.NoError(t, err)
	i, _ := v.Value.AsInt()
	assert.EqualValues(t, 5, i)
}

func TestHandleKeepsValueWhenTypeChanges(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux, HotReload: true})

	h, err := assets.GetHandle[*metadata.VariableAsset](m, "player.speed")
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "player", "speed.asset"),
		fmt.Sprintf(`{"Loader":"%s","Value":"fast"}`, metadata.LanguageLoader))
	m.Dirty("player.speed")

	v, err := h.Get()
	require.NoError(t, err)
	i, _ := v.Value.AsInt()
	assert.EqualValues(t, 1, i)

	// the handle no longer follows the name
	writeVariable(t, root, "player.speed", 9)
	m.Dirty("player.speed")
	v = h.MustGet()
	i, _ = v.Value.AsInt()
	assert.EqualValues(t, 1, i)
}

func TestHandleWithoutHotReload(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux})

	h, err := assets.GetHandle[*metadata.VariableAsset](m, "player.speed")
	require.NoError(t, err)

	writeVariable(t, root, "player.speed", 2)
	m.Dirty("player.speed")

	v, err := h.Get()
	require.NoError(t, err)
	i, _ := v.Value.AsInt()
	assert.EqualValues(t, 1, i)
}

func TestHandleReportsFailedReload(t *testing.T) {
	root := t.TempDir()
	writeVariable(t, root, "player.speed", 1)
	m := newManager(t, root, assets.ManagerOptions{Platform: platform.Linux, HotReload: true})

	h, err := assets.GetHandle[*metadata.VariableAsset](m, "player.speed")
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "player", "speed.asset"), `{not json`)
	m.Dirty("player.speed")

	v, err := h.Get()
	require.Error(t, err)
	require.NotNil(t, v)
	i, _ := v.Value.AsInt()
	assert.EqualValues(t, 1, i)
}

func TestGetHandleMissing(t *testing.T) {
	m := newManager(t, t.TempDir(), assets.ManagerOptions{Platform: platform.Linux, HotReload: true})
	_, err := assets.GetHandle[*metadata.VariableAsset](m, "nothing.here")
	require.Error(t, err)
}
