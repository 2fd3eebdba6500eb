package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type TextureAtlasLoader struct {
	noDefault
}

func (al *TextureAtlasLoader) Kind() assets.Kind { return assets.KindTextureAtlas }
func (al *TextureAtlasLoader) Name() string { return metadata.TextureAtlasLoader }

func (al *TextureAtlasLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.TextureAtlasLoader)
}

func (al *TextureAtlasLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	pd, err := raw.PlatformData()
	if err != nil {
		return nil, err
	}
	if raw.IsCompiled() {
		return metadata.NewTextureAtlasAsset(name, nil, pd)
	}
	return metadata.NewTextureAtlasAsset(name, raw.Strings(metadata.PropSourceTextureNames), pd)
}

func (al *TextureAtlasLoader) CanNew() bool { return true }

func (al *TextureAtlasLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewTextureAtlasAsset(name, []string{}, nil)
}
