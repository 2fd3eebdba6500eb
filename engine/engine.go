package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compilers"
	"github.com/spaghettifunk/assetforge/engine/assets/loaders"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/assets/remote"
	"github.com/spaghettifunk/assetforge/engine/assets/savers"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/assets/strategies"
	"github.com/spaghettifunk/assetforge/engine/containers"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// recentDirtied bounds the history kept by RecentlyDirtied.
const recentDirtied = 32

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it owned
	EngineStageShutdown
)

type Option func(*Engine)

// WithEmbedded adds resources compiled into the binary to the chain.
func WithEmbedded(fsys fs.FS) Option {
	return func(e *Engine) { e.embedded = fsys }
}

// WithBundle sets the platform asset bundle read on mobile platforms.
func WithBundle(fsys fs.FS) Option {
	return func(e *Engine) { e.bundle = fsys }
}

// WithPlatform overrides the configured target platform.
func WithPlatform(p platform.TargetPlatform) Option {
	return func(e *Engine) {
		e.platform = p
		e.platformSet = true
	}
}

// Engine owns one asset manager and everything it needs: the strategy
// chain, the registry, the optional Redis store and the hot reload watcher.
type Engine struct {
	currentStage atomic.Uint32
	config       *core.Config
	embedded     fs.FS
	bundle       fs.FS
	platform     platform.TargetPlatform
	platformSet  bool
	host         platform.TargetPlatform

	registry *assets.Registry
	declared *strategies.Declared
	ai       *loaders.AILoader
	redis    *store.RedisStore
	manager  *assets.AssetManager
	watcher  *assets.Watcher
	clock    *core.Clock

	historyMutex sync.Mutex
	history      *containers.RingQueue[string]

	quit     chan struct{}
	quitOnce sync.Once
}

func New(cfg *core.Config, options ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:  cfg,
		host:    platform.GetExecutingPlatform(),
		clock:   core.NewClock(),
		history: containers.NewRingQueue[string](recentDirtied),
		quit:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if !e.platformSet {
		if cfg.Platform != "" {
			p, err := platform.Parse(cfg.Platform)
			if err != nil {
				return nil, err
			}
			e.platform = p
		} else {
			e.platform = e.host
		}
	}
	return e, nil
}

// Initialize builds the asset manager. On failure everything acquired so far
// is released and the engine can be initialized again.
func (e *Engine) Initialize(ctx context.Context) (err error) {
	if e.Stage() != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.setStage(EngineStageInitializing)
	defer func() {
		if err != nil {
			e.abortInitialize()
		}
	}()

	core.SetLogLevel(e.config.Log.Level)

	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	e.registry = assets.NewRegistry()
	ai, err := loaders.RegisterDefaults(e.registry)
	if err != nil {
		return err
	}
	e.ai = ai
	if err := savers.RegisterDefaults(e.registry); err != nil {
		return err
	}

	chainOpts := strategies.ChainOptions{
		Platform:   e.platform,
		Embedded:   e.embedded,
		Namespace:  e.config.EmbeddedNamespace,
		Bundle:     e.bundle,
		RawFormats: e.config.RawFormats,
		Production: e.config.Production,
	}
	if e.config.Store.RedisAddr != "" {
		ttl := time.Duration(e.config.Store.TTLSeconds) * time.Second
		rs, err := store.DialRedis(ctx, e.config.Store.RedisAddr, e.config.Store.RedisDB, e.config.Store.Prefix, ttl)
		if err != nil {
			return err
		}
		e.redis = rs
		chainOpts.Store = rs
	}
	e.declared = strategies.NewDeclared()
	chainOpts.Declared = e.declared

	root := e.config.ContentRoot
	raw := assets.NewRawAssetLoader(root, strategies.ChainFor(chainOpts))
	if e.config.SourcePath != "" {
		raw.SetSourcePath(e.config.SourcePath)
	}

	hotReload := e.config.HotReload && !e.config.Production && e.host.IsDesktop()
	e.manager = assets.NewAssetManager(raw, e.registry, store.NewWriter(store.FSStore(root)), assets.ManagerOptions{
		Platform:        e.platform,
		AllowSourceOnly: e.config.AllowSourceOnly,
		HotReload:       hotReload,
	})

	fontDirs := []string{root, filepath.Join(root, "fonts")}
	if sp := raw.SourcePath(); sp != "" {
		fontDirs = append(fontDirs, sp, filepath.Join(sp, "fonts"))
	}
	compilers.Register(e.registry, e.host, compilers.Options{
		FontDirs:   fontDirs,
		EffectTool: e.config.Effect.Tool,
		EffectArgs: e.config.Effect.Args,
		ResolveTexture: func(name string) (*metadata.TextureAsset, error) {
			return assets.Get[*metadata.TextureAsset](e.manager, name)
		},
	})
	e.registerRemote()

	if hotReload {
		w, err := assets.NewWatcher(e.manager)
		if err != nil {
			return err
		}
		e.watcher = w
		if err := w.Start(); err != nil {
			return err
		}
	}

	core.LogInfo("Asset manager ready for %s (host %s, hot reload %t)", e.platform, e.host, hotReload)
	e.setStage(EngineStageInitialized)
	return nil
}

func (e *Engine) abortInitialize() {
	if e.watcher != nil {
		_ = e.watcher.Close()
		e.watcher = nil
	}
	if e.manager != nil {
		e.manager.Close()
		e.manager = nil
	}
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			core.LogWarn("Closing the redis store failed: %s", err)
		}
		e.redis = nil
	}
	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	e.setStage(EngineStageUninitialized)
}

// registerRemote binds the remote compilers for whatever the host cannot
// compile itself.
func (e *Engine) registerRemote() {
	remoteFonts := !e.host.IsDesktop() || e.config.Remote.RemoteFonts
	remoteEffects := !e.host.IsDesktop() || e.config.Effect.Tool == ""
	if !remoteFonts && !remoteEffects {
		return
	}
	locator := &remote.DiscoveryLocator{
		Address:       e.config.Remote.DiscoveryAddress,
		DiscoveryPort: e.config.Remote.DiscoveryPort,
		HTTPPort:      e.config.Remote.HTTPPort,
		Timeout:       time.Duration(e.config.Remote.TimeoutMillis) * time.Millisecond,
	}
	if remoteFonts {
		e.registry.RegisterCompiler(assets.EraseCompiler[*metadata.FontAsset](remote.NewFontCompiler(locator, nil)))
	}
	if remoteEffects {
		e.registry.RegisterCompiler(assets.EraseCompiler[*metadata.EffectAsset](remote.NewEffectCompiler(locator, nil)))
	}
}

func (e *Engine) Stage() Stage {
	return Stage(e.currentStage.Load())
}

func (e *Engine) setStage(s Stage) {
	e.currentStage.Store(uint32(s))
}

func (e *Engine) Platform() platform.TargetPlatform {
	return e.platform
}

func (e *Engine) Manager() *assets.AssetManager {
	return e.manager
}

// Declare registers a raw asset from code and drops any cached copy.
func (e *Engine) Declare(name string, raw *assets.RawAsset) {
	e.declared.Declare(name, raw)
	e.manager.Dirty(name)
}

// DeclareAI registers factory under typeName and declares an AI asset using it.
func (e *Engine) DeclareAI(name, typeName string, factory metadata.AIFactory) error {
	if err := e.ai.Register(typeName, factory); err != nil {
		return err
	}
	e.Declare(name, assets.NewRawAsset(map[string]assets.Value{
		assets.PropLoader: assets.String(metadata.AILoader),
		metadata.PropType: assets.String(typeName),
	}, false))
	return nil
}

// Run forwards watcher activity to the event system until ctx is done or a
// quit event is fired.
func (e *Engine) Run(ctx context.Context) error {
	if e.Stage() != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.setStage(EngineStageRunning)
	e.clock.Start()

	var dirtied <-chan string
	var errs <-chan error
	if e.watcher != nil {
		dirtied = e.watcher.Dirtied()
		errs = e.watcher.Errors()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quit:
			return nil
		case name := <-dirtied:
			e.historyMutex.Lock()
			e.history.Overwrite(name)
			e.historyMutex.Unlock()
			core.EventFire(core.EVENT_CODE_ASSET_DIRTIED, e, core.EventContext{Name: name})
		case err := <-errs:
			core.EventFire(core.EVENT_CODE_WATCHER_ERROR, e, core.EventContext{Err: err})
		}
	}
}

// RecentlyDirtied returns the names of the latest assets changed on disk,
// oldest first.
func (e *Engine) RecentlyDirtied() []string {
	e.historyMutex.Lock()
	defer e.historyMutex.Unlock()
	return e.history.Items()
}

// Quit asks a running engine to return from Run.
func (e *Engine) Quit() {
	core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

func (e *Engine) Shutdown() error {
	if e.Stage() == EngineStageShutdown {
		return nil
	}
	e.setStage(EngineStageShuttingDown)

	var err error
	if e.watcher != nil {
		err = e.watcher.Close()
	}
	if e.manager != nil {
		e.manager.Close()
	}
	if e.redis != nil {
		if cerr := e.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)

	e.clock.Update()
	e.clock.Stop()
	core.LogInfo("Engine shut down after %s", e.clock.Elapsed().Round(time.Millisecond))
	e.setStage(EngineStageShutdown)
	return err
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	if sender != e {
		return false
	}
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.quitOnce.Do(func() { close(e.quit) })
		return true
	}
	return false
}
