package metadata

import (
	"fmt"
	"image"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

const (
	fieldFontLineHeight protowire.Number = 1
	fieldFontAscent     protowire.Number = 2
	fieldFontSpacing    protowire.Number = 3
	fieldFontAtlas      protowire.Number = 4
	fieldFontGlyph      protowire.Number = 5

	fieldGlyphRune    protowire.Number = 1
	fieldGlyphX       protowire.Number = 2
	fieldGlyphY       protowire.Number = 3
	fieldGlyphWidth   protowire.Number = 4
	fieldGlyphHeight  protowire.Number = 5
	fieldGlyphOffsetX protowire.Number = 6
	fieldGlyphOffsetY protowire.Number = 7
	fieldGlyphAdvance protowire.Number = 8
)

// Glyph locates one rasterized rune inside the font atlas.
type Glyph struct {
	Rune    rune
	X, Y    int
	Width   int
	Height  int
	OffsetX int
	OffsetY int
	Advance int
}

// FontPayload is the compiled form of a font: a glyph atlas plus metrics.
type FontPayload struct {
	LineHeight int
	Ascent     int
	Spacing    int
	Atlas      *TexturePayload
	Glyphs     []Glyph
}

func (p *FontPayload) Marshal() []byte {
	var b []byte
	b = appendInt(b, fieldFontLineHeight, p.LineHeight)
	b = appendInt(b, fieldFontAscent, p.Ascent)
	b = appendInt(b, fieldFontSpacing, p.Spacing)
	if p.Atlas != nil {
		b = appendBytes(b, fieldFontAtlas, p.Atlas.Marshal())
	}
	for _, g := range p.Glyphs {
		var gb []byte
		gb = appendInt(gb, fieldGlyphRune, int(g.Rune))
		gb = appendInt(gb, fieldGlyphX, g.X)
		gb = appendInt(gb, fieldGlyphY, g.Y)
		gb = appendInt(gb, fieldGlyphWidth, g.Width)
		gb = appendInt(gb, fieldGlyphHeight, g.Height)
		gb = appendInt(gb, fieldGlyphOffsetX, g.OffsetX)
		gb = appendInt(gb, fieldGlyphOffsetY, g.OffsetY)
		gb = appendInt(gb, fieldGlyphAdvance, g.Advance)
		b = protowire.AppendTag(b, fieldFontGlyph, protowire.BytesType)
		b = protowire.AppendBytes(b, gb)
	}
	return b
}

func UnmarshalFontPayload(b []byte) (*FontPayload, error) {
	p := &FontPayload{}
	err := readFields(b, func(f field) error {
		switch f.num {
		case fieldFontLineHeight:
			p.LineHeight = f.int()
		case fieldFontAscent:
			p.Ascent = f.int()
		case fieldFontSpacing:
			p.Spacing = f.int()
		case fieldFontAtlas:
			atlas, err := UnmarshalTexturePayload(f.bytes)
			if err != nil {
				return err
			}
			p.Atlas = atlas
		case fieldFontGlyph:
			g, err := unmarshalGlyph(f.bytes)
			if err != nil {
				return err
			}
			p.Glyphs = append(p.Glyphs, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func unmarshalGlyph(b []byte) (Glyph, error) {
	var g Glyph
	err := readFields(b, func(f field) error {
		switch f.num {
		case fieldGlyphRune:
			g.Rune = rune(f.int())
		case fieldGlyphX:
			g.X = f.int()
		case fieldGlyphY:
			g.Y = f.int()
		case fieldGlyphWidth:
			g.Width = f.int()
		case fieldGlyphHeight:
			g.Height = f.int()
		case fieldGlyphOffsetX:
			g.OffsetX = f.int()
		case fieldGlyphOffsetY:
			g.OffsetY = f.int()
		case fieldGlyphAdvance:
			g.Advance = f.int()
		}
		return nil
	})
	return g, err
}

// Glyph looks up the metrics of r.
func (p *FontPayload) Glyph(r rune) (Glyph, bool) {
	for _, g := range p.Glyphs {
		if g.Rune == r {
			return g, true
		}
	}
	return Glyph{}, false
}

type FontAsset struct {
	name string

	FontName   string
	FontSize   int
	UseKerning bool
	Spacing    int
	Compiled   *compiled.PlatformData

	Font  *FontPayload
	Atlas image.Image
}

func NewFontAsset(name, fontName string, fontSize int, useKerning bool, spacing int, pd *compiled.PlatformData) (*FontAsset, error) {
	f := &FontAsset{
		name:       name,
		FontName:   fontName,
		FontSize:   fontSize,
		UseKerning: useKerning,
		Spacing:    spacing,
	}
	if err := f.SetPlatformData(pd); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FontAsset) Name() string { return f.name }
func (f *FontAsset) Kind() assets.Kind { return assets.KindFont }
func (f *FontAsset) SourceOnly() bool { return f.Compiled == nil }
func (f *FontAsset) CompiledOnly() bool { return f.FontName == "" }

func (f *FontAsset) PlatformData() *compiled.PlatformData {
	return f.Compiled
}

func (f *FontAsset) SetPlatformData(pd *compiled.PlatformData) error {
	f.Release()
	f.Compiled = pd
	if pd == nil {
		return nil
	}
	payload, err := UnmarshalFontPayload(pd.Data)
	if err != nil {
		return fmt.Errorf("font '%s': %w", f.name, err)
	}
	if payload.Atlas != nil {
		img, err := payload.Atlas.Image()
		if err != nil {
			return fmt.Errorf("font '%s': %w", f.name, err)
		}
		f.Atlas = img
	}
	f.Font = payload
	return nil
}

func (f *FontAsset) Release() {
	f.Font = nil
	f.Atlas = nil
}
