package assets

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// Loader turns raw data into a typed asset.
type Loader interface {
	Kind() Kind
	// Name is the discriminator written into the Loader property.
	Name() string
	CanHandle(raw *RawAsset) bool
	Handle(name string, raw *RawAsset) (Asset, error)
	// GetDefault returns a placeholder for callers that tolerate a missing asset.
	GetDefault(name string) (Asset, bool)
	CanNew() bool
	GetNew(name string) (Asset, error)
}

// Saver regenerates the raw representation of an asset. A nil result with no
// error means the asset has no representation for that target.
type Saver interface {
	Kind() Kind
	Handle(asset Asset, target Target) (*RawAsset, error)
}

// Compiler produces platform data for a source-only asset.
type Compiler interface {
	Kind() Kind
	Compile(asset Asset, target platform.TargetPlatform) error
}

// AssetCompiler is the typed form compilers are written against.
type AssetCompiler[T Asset] interface {
	Compile(asset T, target platform.TargetPlatform) error
}

type erasedCompiler[T Asset] struct {
	kind  Kind
	inner AssetCompiler[T]
}

// EraseCompiler adapts a typed compiler to the registry's Compiler interface.
func EraseCompiler[T Asset](c AssetCompiler[T]) Compiler {
	return &erasedCompiler[T]{kind: KindOf[T](), inner: c}
}

func (e *erasedCompiler[T]) Kind() Kind {
	return e.kind
}

func (e *erasedCompiler[T]) Compile(asset Asset, target platform.TargetPlatform) error {
	typed, ok := asset.(T)
	if !ok {
		return fmt.Errorf("%w: compiler for %s got %T", core.ErrWrongAssetType, e.kind, asset)
	}
	return e.inner.Compile(typed, target)
}

// Registry maps each asset kind to its loader, saver and compiler. It is
// filled once at startup; loaders are asked in registration order.
type Registry struct {
	loaders   []Loader
	savers    map[Kind]Saver
	compilers map[Kind]Compiler
}

func NewRegistry() *Registry {
	return &Registry{
		savers:    make(map[Kind]Saver),
		compilers: make(map[Kind]Compiler),
	}
}

func (r *Registry) RegisterLoader(l Loader) error {
	for _, existing := range r.loaders {
		if existing.Kind() == l.Kind() {
			core.LogError("Loader of kind '%s' already exists and will not be registered.", l.Kind())
			return fmt.Errorf("loader %s: %w", l.Kind(), core.ErrAlreadyRegistered)
		}
	}
	r.loaders = append(r.loaders, l)
	core.LogDebug("Loader '%s' registered.", l.Name())
	return nil
}

func (r *Registry) RegisterSaver(s Saver) error {
	if _, ok := r.savers[s.Kind()]; ok {
		core.LogError("Saver of kind '%s' already exists and will not be registered.", s.Kind())
		return fmt.Errorf("saver %s: %w", s.Kind(), core.ErrAlreadyRegistered)
	}
	r.savers[s.Kind()] = s
	return nil
}

// RegisterCompiler replaces any compiler already bound to the kind, so
// platform-specific registration can override a generic one.
func (r *Registry) RegisterCompiler(c Compiler) {
	if _, ok := r.compilers[c.Kind()]; ok {
		core.LogDebug("Compiler for '%s' replaced.", c.Kind())
	}
	r.compilers[c.Kind()] = c
}

func (r *Registry) Loaders() []Loader {
	out := make([]Loader, len(r.loaders))
	copy(out, r.loaders)
	return out
}

// LoaderFor returns the first loader that claims raw. A panicking CanHandle counts
// as a refusal.
func (r *Registry) LoaderFor(raw *RawAsset) (Loader, bool) {
	for _, l := range r.loaders {
		if claims(l, raw) {
			return l, true
		}
	}
	return nil, false
}

func claims(l Loader, raw *RawAsset) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			core.LogWarn("Loader '%s' panicked while checking raw data: %v", l.Name(), rec)
			ok = false
		}
	}()
	return l.CanHandle(raw)
}

func (r *Registry) LoaderOf(kind Kind) (Loader, bool) {
	for _, l := range r.loaders {
		if l.Kind() == kind {
			return l, true
		}
	}
	return nil, false
}

func (r *Registry) Saver(kind Kind) (Saver, bool) {
	s, ok := r.savers[kind]
	return s, ok
}

func (r *Registry) Compiler(kind Kind) (Compiler, bool) {
	c, ok := r.compilers[kind]
	return c, ok
}

// Clone copies the registry so a caller can bind a different set of compilers,
// for example when compiling for a platform other than the executing one.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	out.loaders = r.Loaders()
	for k, s := range r.savers {
		out.savers[k] = s
	}
	for k, c := range r.compilers {
		out.compilers[k] = c
	}
	return out
}
