package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type FontLoader struct {
	noDefault
}

func (fl *FontLoader) Kind() assets.Kind { return assets.KindFont }
func (fl *FontLoader) Name() string { return metadata.FontLoader }

func (fl *FontLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.FontLoader)
}

func (fl *FontLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	pd, err := raw.PlatformData()
	if err != nil {
		return nil, err
	}
	if raw.IsCompiled() {
		return metadata.NewFontAsset(name, "", 0, false, 0, pd)
	}
	return metadata.NewFontAsset(
		name,
		raw.String(metadata.PropFontName, ""),
		int(raw.Int(metadata.PropFontSize, 0)),
		raw.Bool(metadata.PropUseKerning, false),
		int(raw.Int(metadata.PropSpacing, 0)),
		pd,
	)
}

func (fl *FontLoader) CanNew() bool { return true }

func (fl *FontLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewFontAsset(name, "Arial", 12, true, 0, nil)
}
