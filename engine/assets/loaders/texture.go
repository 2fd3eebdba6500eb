package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type TextureLoader struct {
	noNew
}

func (tl *TextureLoader) Kind() assets.Kind { return assets.KindTexture }
func (tl *TextureLoader) Name() string { return metadata.TextureLoader }

func (tl *TextureLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.TextureLoader)
}

func (tl *TextureLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	pd, err := raw.PlatformData()
	if err != nil {
		return nil, err
	}
	if raw.IsCompiled() {
		return metadata.NewTextureAsset(name, nil, pd, false)
	}
	return metadata.NewTextureAsset(
		name,
		raw.Bytes(metadata.PropRawData),
		pd,
		raw.Bool(assets.PropSourcedFromRaw, false),
	)
}

func (tl *TextureLoader) GetDefault(name string) (assets.Asset, bool) {
	return metadata.DefaultTexture(name), true
}
