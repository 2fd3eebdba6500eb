package savers

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/core"
)

// saver turns one asset type back into raw data.
type saver[T assets.Asset] struct {
	kind   assets.Kind
	loader string
	// source returns the editable properties of the asset.
	source func(T) map[string]assets.Value
	// fromRaw reports assets synthesized from a raw file; they never get a
	// parallel source document.
	fromRaw func(T) bool
}

func (s *saver[T]) Kind() assets.Kind {
	return s.kind
}

// Handle returns nil without an error when the asset has no representation
// for target.
func (s *saver[T]) Handle(asset assets.Asset, target assets.Target) (*assets.RawAsset, error) {
	typed, ok := asset.(T)
	if !ok {
		return nil, fmt.Errorf("%w: %s saver cannot save '%s' of kind %s", core.ErrWrongAssetType, s.kind, asset.Name(), asset.Kind())
	}

	var pd *compiled.PlatformData
	if c, ok := asset.(assets.Compilable); ok {
		pd = c.PlatformData()
	}
	raw := s.fromRaw != nil && s.fromRaw(typed)

	switch target {
	case assets.TargetCompiledFile:
		if pd == nil {
			return nil, nil
		}
		return s.compiled(pd), nil

	case assets.TargetSourceFile:
		if asset.CompiledOnly() || raw || s.source == nil {
			return nil, nil
		}
		props := s.source(typed)
		props[assets.PropLoader] = assets.String(s.loader)
		return assets.NewRawAsset(props, false), nil

	default:
		if asset.CompiledOnly() || s.source == nil {
			if pd == nil {
				return nil, nil
			}
			return s.compiled(pd), nil
		}
		props := s.source(typed)
		props[assets.PropLoader] = assets.String(s.loader)
		if _, ok := asset.(assets.Compilable); ok {
			props[assets.PropPlatformData] = assets.PlatformDataValue(pd)
		}
		if raw {
			props[assets.PropSourcedFromRaw] = assets.Bool(true)
		}
		return assets.NewRawAsset(props, false), nil
	}
}

func (s *saver[T]) compiled(pd *compiled.PlatformData) *assets.RawAsset {
	return assets.NewCompiledRawAsset(&compiled.CompiledAsset{
		Loader:       s.loader,
		PlatformData: pd,
	})
}

// RegisterDefaults registers a saver for every asset kind.
func RegisterDefaults(reg *assets.Registry) error {
	for _, s := range All() {
		if err := reg.RegisterSaver(s); err != nil {
			return err
		}
	}
	return nil
}
