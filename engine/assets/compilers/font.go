package compilers

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const (
	firstGlyph = ' '
	lastGlyph  = '~'

	fontAtlasWidth = 256
	glyphPadding   = 1
)

// FontCompiler rasterizes printable ASCII into a glyph atlas.
type FontCompiler struct {
	// Dirs are searched for <FontName>.ttf and <FontName>.otf. When nothing
	// matches the built-in Go Regular face is used.
	Dirs []string
}

func (fc *FontCompiler) Compile(asset *metadata.FontAsset, target platform.TargetPlatform) error {
	if asset.FontSize <= 0 {
		return fmt.Errorf("font '%s' has invalid size %d", asset.Name(), asset.FontSize)
	}

	data := fc.locate(asset.FontName)
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font '%s': %w", asset.FontName, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(asset.FontSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	payload, err := rasterize(face, asset.Spacing)
	if err != nil {
		return err
	}
	return asset.SetPlatformData(&compiled.PlatformData{
		Platform: target,
		Data:     payload.Marshal(),
	})
}

func (fc *FontCompiler) locate(name string) []byte {
	if name != "" {
		for _, dir := range fc.Dirs {
			for _, ext := range []string{".ttf", ".otf"} {
				data, err := os.ReadFile(filepath.Join(dir, name+ext))
				if err == nil {
					return data
				}
				data, err = os.ReadFile(filepath.Join(dir, strings.ToLower(name)+ext))
				if err == nil {
					return data
				}
			}
		}
	}
	core.LogDebug("Font '%s' not found, using Go Regular", name)
	return goregular.TTF
}

type glyphCell struct {
	r       rune
	bounds  fixed.Rectangle26_6
	advance fixed.Int26_6
	x, y    int
	w, h    int
}

func rasterize(face font.Face, spacing int) (*metadata.FontPayload, error) {
	var cells []glyphCell

	// shelf layout
	x, y, shelf := 0, 0, 0
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		bounds, advance, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		w := (bounds.Max.X - bounds.Min.X).Ceil() + 1
		h := (bounds.Max.Y - bounds.Min.Y).Ceil() + 1
		if x+w+glyphPadding > fontAtlasWidth {
			x = 0
			y += shelf + glyphPadding
			shelf = 0
		}
		cells = append(cells, glyphCell{r: r, bounds: bounds, advance: advance, x: x, y: y, w: w, h: h})
		x += w + glyphPadding
		if h > shelf {
			shelf = h
		}
	}
	height := y + shelf
	if height == 0 {
		height = 1
	}

	atlas := image.NewNRGBA(image.Rect(0, 0, fontAtlasWidth, height))
	metrics := face.Metrics()
	payload := &metadata.FontPayload{
		LineHeight: metrics.Height.Ceil(),
		Ascent:     metrics.Ascent.Ceil(),
		Spacing:    spacing,
	}

	for _, c := range cells {
		g := metadata.Glyph{
			Rune:    c.r,
			X:       c.x,
			Y:       c.y,
			OffsetX: c.bounds.Min.X.Floor(),
			OffsetY: c.bounds.Min.Y.Floor(),
			Advance: c.advance.Ceil(),
		}
		dot := fixed.P(c.x-g.OffsetX, c.y-g.OffsetY)
		dr, mask, maskp, _, ok := face.Glyph(dot, c.r)
		if ok && !dr.Empty() {
			draw.DrawMask(atlas, dr, image.White, image.Point{}, mask, maskp, draw.Over)
			g.X, g.Y = dr.Min.X, dr.Min.Y
			g.Width, g.Height = dr.Dx(), dr.Dy()
		}
		payload.Glyphs = append(payload.Glyphs, g)
	}

	tex, err := metadata.EncodeTexturePayload(atlas)
	if err != nil {
		return nil, err
	}
	payload.Atlas = tex
	return payload, nil
}
