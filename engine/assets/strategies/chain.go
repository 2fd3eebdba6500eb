package strategies

import (
	"io/fs"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// ChainOptions selects the optional parts of a strategy chain.
type ChainOptions struct {
	Platform platform.TargetPlatform
	// Embedded holds resources compiled into the binary.
	Embedded  fs.FS
	Namespace string
	// Bundle is the platform asset bundle used on mobile platforms.
	Bundle   fs.FS
	Store    store.Store
	Declared *Declared
	// RawFormats enables synthesis from .png, .wav and friends.
	RawFormats bool
	// Production drops local source and raw strategies.
	Production bool
}

// DesktopChain orders strategies so editable source wins over compiled data
// and compiled data wins over raw formats.
func DesktopChain(opts ChainOptions) []assets.LoadStrategy {
	var chain []assets.LoadStrategy
	if !opts.Production {
		chain = append(chain, LocalSource{})
	}
	if opts.Embedded != nil {
		chain = append(chain, EmbeddedSource{FS: opts.Embedded, Namespace: opts.Namespace})
	}
	chain = append(chain, LocalCompiled{Platform: opts.Platform})
	if opts.Store != nil {
		chain = append(chain, Store{Store: opts.Store, Platform: opts.Platform})
	}
	if opts.Embedded != nil {
		chain = append(chain, EmbeddedCompiled{FS: opts.Embedded, Namespace: opts.Namespace, Platform: opts.Platform})
	}
	if opts.Declared != nil {
		chain = append(chain, opts.Declared)
	}
	if opts.RawFormats && !opts.Production {
		chain = append(chain, RawStrategies()...)
	}
	return chain
}

// MobileChain never touches the filesystem directly.
func MobileChain(opts ChainOptions) []assets.LoadStrategy {
	var chain []assets.LoadStrategy
	if opts.Bundle != nil {
		chain = append(chain, Bundle{FS: opts.Bundle, Platform: opts.Platform})
	}
	if opts.Embedded != nil {
		chain = append(chain,
			EmbeddedCompiled{FS: opts.Embedded, Namespace: opts.Namespace, Platform: opts.Platform},
			EmbeddedSource{FS: opts.Embedded, Namespace: opts.Namespace},
		)
	}
	if opts.Declared != nil {
		chain = append(chain, opts.Declared)
	}
	return chain
}

// ChainFor picks the chain for the configured platform.
func ChainFor(opts ChainOptions) []assets.LoadStrategy {
	if opts.Platform.IsMobile() {
		return MobileChain(opts)
	}
	return DesktopChain(opts)
}
