package assets

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// TransparentCompiler compiles source-only assets on demand for one platform.
type TransparentCompiler struct {
	registry *Registry
	platform platform.TargetPlatform
}

func NewTransparentCompiler(registry *Registry, target platform.TargetPlatform) *TransparentCompiler {
	return &TransparentCompiler{
		registry: registry,
		platform: target,
	}
}

func (tc *TransparentCompiler) Platform() platform.TargetPlatform {
	return tc.platform
}

// Handle compiles asset for the executing platform when it is source-only or
// force is set.
func (tc *TransparentCompiler) Handle(asset Asset, force bool) (Asset, error) {
	return tc.HandleFor(asset, tc.platform, force)
}

// HandleFor compiles asset for target. Assets that already carry compiled data
// are returned unchanged unless force is set. A compiler may legitimately
// leave the asset source-only (for example when no remote compiler answers);
// callers check SourceOnly on the result.
func (tc *TransparentCompiler) HandleFor(asset Asset, target platform.TargetPlatform, force bool) (Asset, error) {
	if !asset.SourceOnly() && !force {
		return asset, nil
	}

	compiler, ok := tc.registry.Compiler(asset.Kind())
	if !ok {
		return asset, notCompiled(asset.Name(), target)
	}

	core.LogDebug("Compiling '%s' (%s) for %s", asset.Name(), asset.Kind(), target)
	if err := compiler.Compile(asset, target); err != nil {
		return asset, fmt.Errorf("failed to compile '%s' for %s: %w", asset.Name(), target, err)
	}
	return asset, nil
}

func notCompiled(name string, target platform.TargetPlatform) error {
	return fmt.Errorf("%w: '%s' is not compiled for %s, and no runtime compiler is available; "+
		"compile it on a desktop platform before deploying", core.ErrAssetNotCompiled, name, target)
}
