package compilers

import (
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

type Options struct {
	FontDirs      []string
	EffectTool    string
	EffectArgs    []string
	EffectTimeout time.Duration
	// ResolveTexture feeds the atlas compiler. Without it atlases are not
	// compiled locally.
	ResolveTexture TextureResolver
}

// Register binds the local compilers that can run on host. Fonts and effects
// are only compiled on desktop hosts; other platforms rely on remote
// compilers or precompiled data.
func Register(reg *assets.Registry, host platform.TargetPlatform, opts Options) {
	reg.RegisterCompiler(assets.EraseCompiler[*metadata.TextureAsset](&TextureCompiler{}))
	reg.RegisterCompiler(assets.EraseCompiler[*metadata.AudioAsset](&AudioCompiler{}))
	reg.RegisterCompiler(assets.EraseCompiler[*metadata.ModelAsset](&ModelCompiler{}))
	if opts.ResolveTexture != nil {
		reg.RegisterCompiler(assets.EraseCompiler[*metadata.TextureAtlasAsset](&AtlasCompiler{Resolve: opts.ResolveTexture}))
	}

	if !host.IsDesktop() {
		core.LogDebug("Skipping font and effect compilers on %s", host)
		return
	}
	reg.RegisterCompiler(assets.EraseCompiler[*metadata.FontAsset](&FontCompiler{Dirs: opts.FontDirs}))
	if opts.EffectTool != "" {
		reg.RegisterCompiler(assets.EraseCompiler[*metadata.EffectAsset](&EffectCompiler{
			Tool:    opts.EffectTool,
			Args:    opts.EffectArgs,
			Timeout: opts.EffectTimeout,
		}))
	}
}
