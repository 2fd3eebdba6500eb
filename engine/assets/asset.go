package assets

import (
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

// Kind is the closed set of asset types the pipeline knows how to load.
type Kind string

const (
	KindFont          Kind = "font"
	KindLanguage      Kind = "language"
	KindTexture       Kind = "texture"
	KindLevel         Kind = "level"
	KindAudio         Kind = "audio"
	KindTileset       Kind = "tileset"
	KindEffect        Kind = "effect"
	KindAI            Kind = "ai"
	KindModel         Kind = "model"
	KindConfiguration Kind = "configuration"
	KindVariable      Kind = "variable"
	KindTextureAtlas  Kind = "atlas"
)

// Asset is a named, typed resource. An asset must have at least one
// representation, so SourceOnly and CompiledOnly are never both true.
type Asset interface {
	Name() string
	Kind() Kind
	SourceOnly() bool
	CompiledOnly() bool
}

// Compilable assets carry a platform payload. SetPlatformData replaces the
// payload and rebuilds the decoded runtime data from it.
type Compilable interface {
	Asset
	PlatformData() *compiled.PlatformData
	SetPlatformData(pd *compiled.PlatformData) error
}

// Releaser frees decoded runtime data before an asset is reloaded or evicted.
type Releaser interface {
	Release()
}

// Target tells a saver which representation to produce.
type Target int

const (
	TargetRuntime Target = iota
	TargetSourceFile
	TargetCompiledFile
)

func (t Target) String() string {
	switch t {
	case TargetRuntime:
		return "runtime"
	case TargetSourceFile:
		return "source"
	case TargetCompiledFile:
		return "compiled"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of an asset type without an instance. Asset
// implementations return a constant from Kind, so calling it on the zero
// value is safe.
func KindOf[T Asset]() Kind {
	var zero T
	return zero.Kind()
}
