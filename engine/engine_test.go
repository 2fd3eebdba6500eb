package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

type idle struct{}

func (idle) Update(elapsed time.Duration) {}

func newEngine(t *testing.T, hotReload bool) (*Engine, string) {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.ContentRoot = t.TempDir()
	cfg.HotReload = hotReload
	e, err := New(cfg, WithPlatform(platform.Linux))
	require.NoError(t, err)
	require.NoError(t, e.Initialize(context.Background()))
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, cfg.ContentRoot
}

func writeVariable(t *testing.T, root, name string, value int) {
	t.Helper()
	path := filepath.Join(root, assets.NamePath(name)+".asset")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`{"Loader":"%s","Value":%d}`, metadata.VariableLoader, value)), 0o644))
}

func TestNewRejectsUnknownPlatform(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Platform = "Dreamcast"
	_, err := New(cfg)
	require.Error(t, err)
}

func TestNewUsesConfiguredPlatform(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Platform = "Android"
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, platform.Android, e.Platform())
	assert.Equal(t, EngineStageUninitialized, e.Stage())
}

func TestInitializeResolvesContent(t *testing.T) {
	e, root := newEngine(t, false)
	writeVariable(t, root, "variable.Gravity", 10)

	v, err := assets.Get[*metadata.VariableAsset](e.Manager(), "variable.Gravity")
	require.NoError(t, err)
	i, ok := v.Value.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(10), i)

	assert.Error(t, e.Initialize(context.Background()))
}

func TestInitializeFailureResetsEngine(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.ContentRoot = t.TempDir()
	cfg.HotReload = true
	cfg.Store.RedisAddr = "127.0.0.1:1"
	e, err := New(cfg, WithPlatform(platform.Linux))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.Error(t, e.Initialize(ctx))
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	assert.Nil(t, e.redis)
	assert.Nil(t, e.manager)
	assert.Nil(t, e.watcher)

	cfg.Store.RedisAddr = ""
	require.NoError(t, e.Initialize(context.Background()))
	t.Cleanup(func() { _ = e.Shutdown() })
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.NotNil(t, e.Manager())
}

func TestDeclare(t *testing.T) {
	e, _ := newEngine(t, false)

	e.Declare("variable.Declared", assets.NewRawAsset(map[string]assets.Value{
		assets.PropLoader: assets.String(metadata.VariableLoader),
		"Value":           assets.Integer(3),
	}, false))
	v, err := assets.Get[*metadata.VariableAsset](e.Manager(), "variable.Declared")
	require.NoError(t, err)
	i, _ := v.Value.AsInt()
	assert.Equal(t, int64(3), i)

	e.Declare("variable.Declared", assets.NewRawAsset(map[string]assets.Value{
		assets.PropLoader: assets.String(metadata.VariableLoader),
		"Value":           assets.Integer(4),
	}, false))
	v, err = assets.Get[*metadata.VariableAsset](e.Manager(), "variable.Declared")
	require.NoError(t, err)
	i, _ = v.Value.AsInt()
	assert.Equal(t, int64(4), i)
}

func TestDeclareAI(t *testing.T) {
	e, _ := newEngine(t, false)

	require.NoError(t, e.DeclareAI("ai.Guard", "idle", func() metadata.AIBehaviour { return idle{} }))
	assert.ErrorIs(t, e.DeclareAI("ai.Other", "idle", func() metadata.AIBehaviour { return idle{} }), core.ErrAlreadyRegistered)

	a, err := assets.Get[*metadata.AIAsset](e.Manager(), "ai.Guard")
	require.NoError(t, err)
	assert.Equal(t, "idle", a.TypeName)
	assert.IsType(t, idle{}, a.Behaviour)
}

func TestRunStopsOnQuit(t *testing.T) {
	e, _ := newEngine(t, false)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()
	require.Eventually(t, func() bool { return e.Stage() == EngineStageRunning }, 5*time.Second, 10*time.Millisecond)

	e.Quit()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShutdown, e.Stage())
}

func TestRunFiresDirtiedEvents(t *testing.T) {
	e, root := newEngine(t, true)
	writeVariable(t, root, "variable.Speed", 1)
	_, err := e.Manager().Get("variable.Speed")
	require.NoError(t, err)

	names := make(chan string, 8)
	listener := new(int)
	require.True(t, core.EventRegister(core.EVENT_CODE_ASSET_DIRTIED, listener, func(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
		select {
		case names <- data.Name:
		default:
		}
		return false
	}))
	t.Cleanup(func() { core.EventUnregister(core.EVENT_CODE_ASSET_DIRTIED, listener) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	writeVariable(t, root, "variable.Speed", 2)
	select {
	case name := <-names:
		assert.Equal(t, "variable.Speed", name)
		assert.Contains(t, e.RecentlyDirtied(), "variable.Speed")
	case <-time.After(5 * time.Second):
		t.Fatal("no dirtied event")
	}
}
