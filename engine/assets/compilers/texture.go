package compilers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// MaxMobileTextureSize bounds the longest edge of textures compiled for
// mobile platforms.
const MaxMobileTextureSize = 1024

type TextureCompiler struct{}

func (tc *TextureCompiler) Compile(asset *metadata.TextureAsset, target platform.TargetPlatform) error {
	if len(asset.RawData) == 0 {
		return fmt.Errorf("texture '%s' has no source image", asset.Name())
	}
	img, err := DecodeImage(asset.RawData)
	if err != nil {
		return fmt.Errorf("texture '%s': %w", asset.Name(), err)
	}
	if target.IsMobile() {
		img = fit(img, MaxMobileTextureSize)
	}
	payload, err := metadata.EncodeTexturePayload(img)
	if err != nil {
		return err
	}
	return asset.SetPlatformData(&compiled.PlatformData{
		Platform: target,
		Data:     payload.Marshal(),
	})
}

// DecodeImage decodes any registered image format into NRGBA.
func DecodeImage(data []byte) (*image.NRGBA, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptData, err)
	}
	core.LogDebug("Decoded %s image %dx%d", format, src.Bounds().Dx(), src.Bounds().Dy())
	return toNRGBA(src), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// fit scales img down so its longest edge is at most limit.
func fit(img *image.NRGBA, limit int) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= limit && h <= limit {
		return img
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
