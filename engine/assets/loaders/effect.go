package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type EffectLoader struct {
	noNew
	noDefault
}

func (el *EffectLoader) Kind() assets.Kind { return assets.KindEffect }
func (el *EffectLoader) Name() string { return metadata.EffectLoader }

func (el *EffectLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.EffectLoader)
}

func (el *EffectLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	pd, err := raw.PlatformData()
	if err != nil {
		return nil, err
	}
	if raw.IsCompiled() {
		return metadata.NewEffectAsset(name, "", pd, false)
	}
	return metadata.NewEffectAsset(
		name,
		raw.String(metadata.PropCode, ""),
		pd,
		raw.Bool(assets.PropSourcedFromRaw, false),
	)
}
