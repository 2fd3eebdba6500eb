package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type TilesetLoader struct {
	noDefault
}

func (tl *TilesetLoader) Kind() assets.Kind { return assets.KindTileset }
func (tl *TilesetLoader) Name() string { return metadata.TilesetLoader }

func (tl *TilesetLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.TilesetLoader)
}

func (tl *TilesetLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	return metadata.NewTilesetAsset(
		name,
		raw.String(metadata.PropTextureName, ""),
		int(raw.Int(metadata.PropCellWidth, 16)),
		int(raw.Int(metadata.PropCellHeight, 16)),
	), nil
}

func (tl *TilesetLoader) CanNew() bool { return true }

func (tl *TilesetLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewTilesetAsset(name, "", 16, 16), nil
}
