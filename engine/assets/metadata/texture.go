package metadata

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

const (
	fieldTextureWidth  protowire.Number = 1
	fieldTextureHeight protowire.Number = 2
	fieldTexturePixels protowire.Number = 3
)

// TexturePayload is the compiled form of a texture: PNG encoded NRGBA pixels.
type TexturePayload struct {
	Width  int
	Height int
	Pixels []byte
}

func (p *TexturePayload) Marshal() []byte {
	var b []byte
	b = appendInt(b, fieldTextureWidth, p.Width)
	b = appendInt(b, fieldTextureHeight, p.Height)
	b = appendBytes(b, fieldTexturePixels, p.Pixels)
	return b
}

func UnmarshalTexturePayload(b []byte) (*TexturePayload, error) {
	p := &TexturePayload{}
	err := readFields(b, func(f field) error {
		switch f.num {
		case fieldTextureWidth:
			p.Width = f.int()
		case fieldTextureHeight:
			p.Height = f.int()
		case fieldTexturePixels:
			p.Pixels = append([]byte{}, f.bytes...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeTexturePayload builds the payload for img.
func EncodeTexturePayload(img image.Image) (*TexturePayload, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	return &TexturePayload{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: buf.Bytes(),
	}, nil
}

// Image decodes the pixel data.
func (p *TexturePayload) Image() (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(p.Pixels))
	if err != nil {
		return nil, corrupt(err)
	}
	if b := img.Bounds(); b.Dx() != p.Width || b.Dy() != p.Height {
		return nil, corrupt(fmt.Errorf("texture is %dx%d, header says %dx%d", b.Dx(), b.Dy(), p.Width, p.Height))
	}
	return img, nil
}

type TextureAsset struct {
	name string

	// RawData holds the source image file (PNG, BMP, TIFF or WebP).
	RawData        []byte
	Compiled       *compiled.PlatformData
	SourcedFromRaw bool

	// Image is the decoded compiled texture.
	Image image.Image
}

func NewTextureAsset(name string, rawData []byte, pd *compiled.PlatformData, sourcedFromRaw bool) (*TextureAsset, error) {
	t := &TextureAsset{
		name:           name,
		RawData:        rawData,
		SourcedFromRaw: sourcedFromRaw,
	}
	if err := t.SetPlatformData(pd); err != nil {
		return nil, err
	}
	return t, nil
}

// DefaultTexture is the placeholder served when a texture cannot be found.
func DefaultTexture(name string) *TextureAsset {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 255, B: 255, A: 255})

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return &TextureAsset{
		name:           name,
		RawData:        buf.Bytes(),
		SourcedFromRaw: true,
		Image:          img,
	}
}

func (t *TextureAsset) Name() string { return t.name }
func (t *TextureAsset) Kind() assets.Kind { return assets.KindTexture }
func (t *TextureAsset) SourceOnly() bool { return t.Compiled == nil }
func (t *TextureAsset) CompiledOnly() bool { return t.RawData == nil }

func (t *TextureAsset) PlatformData() *compiled.PlatformData {
	return t.Compiled
}

// SetPlatformData replaces the compiled payload and decodes it.
func (t *TextureAsset) SetPlatformData(pd *compiled.PlatformData) error {
	t.Release()
	t.Compiled = pd
	if pd == nil {
		return nil
	}
	payload, err := UnmarshalTexturePayload(pd.Data)
	if err != nil {
		return fmt.Errorf("texture '%s': %w", t.name, err)
	}
	img, err := payload.Image()
	if err != nil {
		return fmt.Errorf("texture '%s': %w", t.name, err)
	}
	t.Image = img
	return nil
}

func (t *TextureAsset) Release() {
	t.Image = nil
}
