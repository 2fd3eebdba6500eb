package compilers

import (
	"fmt"
	"image"
	"sort"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// AtlasOverscan is the number of edge pixels repeated around every packed
// texture so filtering never samples a neighbour.
const AtlasOverscan = 2

// TextureResolver looks up a texture by name, compiling it if needed.
type TextureResolver func(name string) (*metadata.TextureAsset, error)

// AtlasCompiler packs the source textures of an atlas into one texture.
type AtlasCompiler struct {
	Resolve TextureResolver
}

type atlasCell struct {
	name string
	img  *image.NRGBA
	x, y int
}

func (ac *AtlasCompiler) Compile(asset *metadata.TextureAtlasAsset, target platform.TargetPlatform) error {
	if ac.Resolve == nil {
		return fmt.Errorf("atlas '%s': no texture resolver configured", asset.Name())
	}

	cells := make([]*atlasCell, 0, len(asset.SourceTextureNames))
	for _, n := range asset.SourceTextureNames {
		tex, err := ac.Resolve(n)
		if err != nil {
			return fmt.Errorf("atlas '%s': %w", asset.Name(), err)
		}
		img, err := textureImage(tex)
		if err != nil {
			return fmt.Errorf("atlas '%s': texture '%s': %w", asset.Name(), n, err)
		}
		cells = append(cells, &atlasCell{name: n, img: img})
	}

	atlas, mappings := pack(cells)
	tex, err := metadata.EncodeTexturePayload(atlas)
	if err != nil {
		return err
	}
	payload := &metadata.AtlasPayload{Texture: tex, Mappings: mappings}
	return asset.SetPlatformData(&compiled.PlatformData{
		Platform: target,
		Data:     payload.Marshal(),
	})
}

func textureImage(tex *metadata.TextureAsset) (*image.NRGBA, error) {
	if tex.Image != nil {
		return toNRGBA(tex.Image), nil
	}
	return DecodeImage(tex.RawData)
}

// pack places cells on shelves, tallest first, inside a power-of-two wide
// atlas.
func pack(cells []*atlasCell) (*image.NRGBA, map[string]metadata.UVMapping) {
	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].img.Bounds().Dy() > cells[j].img.Bounds().Dy()
	})

	area, widest := 0, 1
	for _, c := range cells {
		w, h := c.img.Bounds().Dx()+2*AtlasOverscan, c.img.Bounds().Dy()+2*AtlasOverscan
		area += w * h
		if w > widest {
			widest = w
		}
	}
	width := 1
	for width*width < area || width < widest {
		width *= 2
	}

	x, y, shelf := 0, 0, 0
	for _, c := range cells {
		w, h := c.img.Bounds().Dx()+2*AtlasOverscan, c.img.Bounds().Dy()+2*AtlasOverscan
		if x+w > width {
			x = 0
			y += shelf
			shelf = 0
		}
		c.x, c.y = x+AtlasOverscan, y+AtlasOverscan
		x += w
		if h > shelf {
			shelf = h
		}
	}
	height := y + shelf
	if height == 0 {
		height = 1
	}

	atlas := image.NewNRGBA(image.Rect(0, 0, width, height))
	mappings := make(map[string]metadata.UVMapping, len(cells))
	for _, c := range cells {
		blitClamped(atlas, c)
		b := c.img.Bounds()
		mappings[c.name] = metadata.UVMapping{
			TopLeftU:     float32(c.x) / float32(width),
			TopLeftV:     float32(c.y) / float32(height),
			BottomRightU: float32(c.x+b.Dx()) / float32(width),
			BottomRightV: float32(c.y+b.Dy()) / float32(height),
		}
	}
	return atlas, mappings
}

// blitClamped draws the cell image and extends its edge pixels into the
// overscan border.
func blitClamped(dst *image.NRGBA, c *atlasCell) {
	b := c.img.Bounds()
	w, h := b.Dx(), b.Dy()
	draw.Draw(dst, image.Rect(c.x, c.y, c.x+w, c.y+h), c.img, b.Min, draw.Src)

	for dy := -AtlasOverscan; dy < h+AtlasOverscan; dy++ {
		for dx := -AtlasOverscan; dx < w+AtlasOverscan; dx++ {
			if dx >= 0 && dx < w && dy >= 0 && dy < h {
				continue
			}
			sx, sy := clamp(dx, 0, w-1), clamp(dy, 0, h-1)
			dst.SetNRGBA(c.x+dx, c.y+dy, c.img.NRGBAAt(b.Min.X+sx, b.Min.Y+sy))
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
