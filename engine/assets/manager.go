package assets

import (
	"errors"
	"fmt"

	"github.com/petermattis/goid"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// State is the lifecycle position of one asset name in the cache.
type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateCachedClean
	StateCachedDirty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateCachedClean:
		return "cached-clean"
	case StateCachedDirty:
		return "cached-dirty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RawAssetWriter persists raw representations produced by savers.
type RawAssetWriter interface {
	WriteRawAsset(name string, raw *RawAsset) error
}

type ManagerOptions struct {
	Platform platform.TargetPlatform
	// AllowSourceOnly caches assets that are still source-only after
	// compilation instead of failing with ErrAssetNotCompiled.
	AllowSourceOnly bool
	// HotReload lets handles follow dirtied assets.
	HotReload bool
}

type cacheEntry struct {
	state State
	asset Asset
	err   error
	done  chan struct{}
	// goroutine running the resolution, used to catch self-dependencies
	owner int64
	// set when Dirty arrives while the entry is resolving
	dirtied bool
}

type slot struct {
	name       string
	generation uint64
}

// AssetManager resolves names through the strategy chain, caches the results
// and serves them to handles. One mutex guards the cache and the handle slots.
type AssetManager struct {
	mutex     deadlock.Mutex
	entries   map[string]*cacheEntry
	slots     []slot
	slotIndex map[string]int

	raw      *RawAssetLoader
	registry *Registry
	compiler *TransparentCompiler
	writer   RawAssetWriter
	options  ManagerOptions
}

func NewAssetManager(raw *RawAssetLoader, registry *Registry, writer RawAssetWriter, options ManagerOptions) *AssetManager {
	return &AssetManager{
		entries:   make(map[string]*cacheEntry),
		slotIndex: make(map[string]int),
		raw:       raw,
		registry:  registry,
		compiler:  NewTransparentCompiler(registry, options.Platform),
		writer:    writer,
		options:   options,
	}
}

func (m *AssetManager) Platform() platform.TargetPlatform {
	return m.options.Platform
}

func (m *AssetManager) Registry() *Registry {
	return m.registry
}

func (m *AssetManager) RawLoader() *RawAssetLoader {
	return m.raw
}

// Get resolves name, using the cache when possible.
func (m *AssetManager) Get(name string) (Asset, error) {
	return m.GetUnresolved(name)
}

// GetUnresolved returns the cached asset for name or resolves it. Concurrent
// callers for the same name wait for the first resolution instead of
// starting their own. Failures are remembered until the name is dirtied.
//
// A dirtied asset is replaced by a new instance; the one callers already
// hold is never modified. Handles pick up the replacement.
func (m *AssetManager) GetUnresolved(name string) (Asset, error) {
	self := goid.Get()

	m.mutex.Lock()
lookup:
	for {
		e, ok := m.entries[name]
		if !ok {
			break
		}
		switch e.state {
		case StateCachedClean:
			m.mutex.Unlock()
			return e.asset, nil
		case StateFailed:
			m.mutex.Unlock()
			return nil, e.err
		case StateResolving:
			if e.owner == self {
				m.mutex.Unlock()
				return nil, fmt.Errorf("%w: '%s' depends on itself", core.ErrResolutionCycle, name)
			}
			done := e.done
			m.mutex.Unlock()
			<-done
			m.mutex.Lock()
		case StateCachedDirty:
			break lookup
		}
	}
	entry := &cacheEntry{
		state: StateResolving,
		done:  make(chan struct{}),
		owner: self,
	}
	m.entries[name] = entry
	m.mutex.Unlock()

	core.LogDebug("Resolving asset '%s'", name)
	asset, err := m.resolve(name)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	defer close(entry.done)

	switch {
	case entry.dirtied && err != nil:
		delete(m.entries, name)
	case entry.dirtied:
		entry.state = StateCachedDirty
		entry.asset = asset
	case err != nil:
		entry.state = StateFailed
		entry.err = err
	default:
		entry.state = StateCachedClean
		entry.asset = asset
	}
	return asset, err
}

func (m *AssetManager) resolve(name string) (Asset, error) {
	failedDueToCompilation := false
	sawCandidate := false

	for candidate, err := range m.raw.Candidates(name) {
		if err != nil {
			return nil, fmt.Errorf("failed to load '%s': %w", name, err)
		}
		sawCandidate = true

		loader, ok := m.registry.LoaderFor(candidate.Raw)
		if !ok {
			continue
		}
		asset, err := loader.Handle(name, candidate.Raw)
		if err != nil {
			return nil, fmt.Errorf("loader '%s' failed for '%s': %w", loader.Name(), name, err)
		}
		if asset.SourceOnly() && asset.CompiledOnly() {
			return nil, fmt.Errorf("%w: '%s' has neither source nor compiled data", core.ErrCorruptData, name)
		}

		asset, err = m.compiler.Handle(asset, false)
		if err != nil {
			if errors.Is(err, core.ErrAssetNotCompiled) {
				if m.options.AllowSourceOnly {
					return asset, nil
				}
				failedDueToCompilation = true
				continue
			}
			return nil, err
		}
		if asset.SourceOnly() {
			if m.options.AllowSourceOnly {
				return asset, nil
			}
			// keep looking; a later candidate may carry compiled data
			failedDueToCompilation = true
			continue
		}
		core.LogDebug("Resolved '%s' via %s (%s)", name, candidate.Strategy, loader.Name())
		return asset, nil
	}

	if failedDueToCompilation {
		return nil, notCompiled(name, m.options.Platform)
	}
	if sawCandidate {
		return nil, fmt.Errorf("%w: unable to load asset '%s'", core.ErrLoaderNotFound, name)
	}
	return nil, fmt.Errorf("%w: '%s'", core.ErrAssetNotFound, name)
}

// TryGet returns nil without an error when name is empty or not found.
func (m *AssetManager) TryGet(name string) (Asset, error) {
	if name == "" {
		return nil, nil
	}
	a, err := m.GetUnresolved(name)
	if errors.Is(err, core.ErrAssetNotFound) {
		return nil, nil
	}
	return a, err
}

// Dirty marks a cached asset stale. The next Get re-resolves it from scratch.
// Names that are not cached are ignored.
func (m *AssetManager) Dirty(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.entries[name]
	if !ok {
		return
	}
	switch e.state {
	case StateCachedClean:
		e.state = StateCachedDirty
	case StateResolving:
		e.dirtied = true
	case StateFailed:
		delete(m.entries, name)
	case StateCachedDirty:
		return
	}
	m.bump(name)
	core.LogDebug("Asset '%s' dirtied", name)
}

// DirtyPath dirties the asset backed by a file path and returns its name.
func (m *AssetManager) DirtyPath(path string) (string, bool) {
	name, ok := m.raw.NameFromPath(path)
	if !ok {
		return "", false
	}
	m.Dirty(name)
	return name, true
}

// State reports where name is in the cache lifecycle.
func (m *AssetManager) State(name string) State {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if e, ok := m.entries[name]; ok {
		return e.state
	}
	return StateUnresolved
}

func (m *AssetManager) store(asset Asset) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.entries[asset.Name()] = &cacheEntry{
		state: StateCachedClean,
		asset: asset,
	}
	m.bump(asset.Name())
}

func (m *AssetManager) saver(asset Asset) (Saver, error) {
	s, ok := m.registry.Saver(asset.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: unable to save asset '%s' of kind %s", core.ErrSaverNotFound, asset.Name(), asset.Kind())
	}
	return s, nil
}

// Save makes asset the cached value for its name. A saver that produces no
// runtime representation turns Save into a no-op.
func (m *AssetManager) Save(asset Asset) error {
	s, err := m.saver(asset)
	if err != nil {
		return err
	}
	raw, err := s.Handle(asset, TargetRuntime)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	m.store(asset)
	return nil
}

// Bake saves asset and also writes its source representation to the backing
// store. Assets without a source representation are left untouched.
func (m *AssetManager) Bake(asset Asset) error {
	s, err := m.saver(asset)
	if err != nil {
		return err
	}
	raw, err := s.Handle(asset, TargetSourceFile)
	if err != nil {
		return err
	}
	if raw == nil {
		core.LogDebug("Asset '%s' has no source representation; nothing baked", asset.Name())
		return nil
	}
	if m.writer == nil {
		return fmt.Errorf("no raw asset writer configured to bake '%s'", asset.Name())
	}
	if err := m.writer.WriteRawAsset(asset.Name(), raw); err != nil {
		return err
	}
	m.store(asset)
	return nil
}

// Recompile compiles asset again even if it already has compiled data.
func (m *AssetManager) Recompile(asset Asset) error {
	compiled, err := m.compiler.Handle(asset, true)
	if err != nil {
		return err
	}
	m.store(compiled)
	return nil
}

// NewAsset creates a blank asset of kind. It is not cached until saved.
func (m *AssetManager) NewAsset(kind Kind, name string) (Asset, error) {
	l, ok := m.registry.LoaderOf(kind)
	if !ok {
		return nil, fmt.Errorf("%w: kind %s", core.ErrLoaderNotFound, kind)
	}
	if !l.CanNew() {
		return nil, fmt.Errorf("loader '%s' cannot create new assets", l.Name())
	}
	return l.GetNew(name)
}

// RescanAssets resolves every asset found in the content root. Failures are
// logged and joined into the returned error.
func (m *AssetManager) RescanAssets() error {
	names, err := m.raw.ScanNames()
	if err != nil {
		return err
	}
	var errs []error
	for _, n := range names {
		if _, err := m.GetUnresolved(n); err != nil {
			core.LogWarn("Unable to resolve '%s' during rescan: %s", n, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetAll rescans and returns every cached asset ordered by name.
func (m *AssetManager) GetAll() ([]Asset, error) {
	err := m.RescanAssets()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	names := make([]string, 0, len(m.entries))
	for n, e := range m.entries {
		if e.asset != nil && (e.state == StateCachedClean || e.state == StateCachedDirty) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	out := make([]Asset, len(names))
	for i, n := range names {
		out[i] = m.entries[n].asset
	}
	return out, err
}

// GetAllNames lists scanned and cached names without resolving anything.
func (m *AssetManager) GetAllNames() ([]string, error) {
	names, err := m.raw.ScanNames()
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	for n := range m.entries {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	m.mutex.Unlock()

	slices.Sort(names)
	return names, nil
}

// GetPotentialPaths lists every file that could back name.
func (m *AssetManager) GetPotentialPaths(name string) []string {
	return m.raw.PotentialPaths(name)
}

// Get resolves name and asserts its type.
func Get[T Asset](m *AssetManager, name string) (T, error) {
	var zero T
	a, err := m.GetUnresolved(name)
	if err != nil {
		return zero, err
	}
	t, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: '%s' is a %s asset", core.ErrWrongAssetType, name, a.Kind())
	}
	return t, nil
}

// GetOrDefault falls back to the loader's placeholder when name is not found.
func GetOrDefault[T Asset](m *AssetManager, name string) (T, error) {
	t, err := Get[T](m, name)
	if err == nil || !errors.Is(err, core.ErrAssetNotFound) {
		return t, err
	}
	l, ok := m.registry.LoaderOf(KindOf[T]())
	if !ok {
		return t, err
	}
	def, ok := l.GetDefault(name)
	if !ok {
		return t, err
	}
	typed, ok := def.(T)
	if !ok {
		return t, err
	}
	core.LogWarn("Asset '%s' not found, using default %s", name, def.Kind())
	return typed, nil
}

// Close releases the runtime data of every cached asset and empties the cache.
// Handles re-resolve on their next Get.
func (m *AssetManager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for name, e := range m.entries {
		if e.state == StateResolving {
			continue
		}
		if r, ok := e.asset.(Releaser); ok {
			r.Release()
		}
		delete(m.entries, name)
		m.bump(name)
	}
}
