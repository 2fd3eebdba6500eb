package metadata

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
)

// TilesetAsset slices a texture into fixed size cells.
type TilesetAsset struct {
	name string

	TextureName string
	CellWidth   int
	CellHeight  int
}

func NewTilesetAsset(name, textureName string, cellWidth, cellHeight int) *TilesetAsset {
	return &TilesetAsset{
		name:        name,
		TextureName: textureName,
		CellWidth:   cellWidth,
		CellHeight:  cellHeight,
	}
}

func (t *TilesetAsset) Name() string { return t.name }
func (t *TilesetAsset) Kind() assets.Kind { return assets.KindTileset }
func (t *TilesetAsset) SourceOnly() bool { return false }
func (t *TilesetAsset) CompiledOnly() bool { return false }

// Cells reports how many columns and rows fit in a texture of the given size.
func (t *TilesetAsset) Cells(textureWidth, textureHeight int) (columns, rows int) {
	if t.CellWidth <= 0 || t.CellHeight <= 0 {
		return 0, 0
	}
	return textureWidth / t.CellWidth, textureHeight / t.CellHeight
}
