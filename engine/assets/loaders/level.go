package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type LevelLoader struct {
	noDefault
}

func (ll *LevelLoader) Kind() assets.Kind { return assets.KindLevel }
func (ll *LevelLoader) Name() string { return metadata.LevelLoader }

func (ll *LevelLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.LevelLoader)
}

func (ll *LevelLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	format := metadata.LevelDataFormat(raw.String(metadata.PropLevelDataFormat, string(metadata.LevelFormatUnknown)))
	return metadata.NewLevelAsset(
		name,
		raw.String(metadata.PropLevelData, ""),
		format,
		raw.String(metadata.PropSourcePath, ""),
	), nil
}

func (ll *LevelLoader) CanNew() bool { return true }

func (ll *LevelLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewLevelAsset(name, "", metadata.LevelFormatOgmoEditor, ""), nil
}
