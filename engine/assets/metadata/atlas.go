package metadata

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

const (
	fieldAtlasTexture protowire.Number = 1
	fieldAtlasMapping protowire.Number = 2

	fieldMappingName         protowire.Number = 1
	fieldMappingTopLeftU     protowire.Number = 2
	fieldMappingTopLeftV     protowire.Number = 3
	fieldMappingBottomRightU protowire.Number = 4
	fieldMappingBottomRightV protowire.Number = 5
)

// UVMapping is the normalized rectangle of one source texture in the atlas.
type UVMapping struct {
	TopLeftU     float32
	TopLeftV     float32
	BottomRightU float32
	BottomRightV float32
}

type AtlasPayload struct {
	Texture  *TexturePayload
	Mappings map[string]UVMapping
}

func (p *AtlasPayload) Marshal() []byte {
	var b []byte
	if p.Texture != nil {
		b = appendBytes(b, fieldAtlasTexture, p.Texture.Marshal())
	}
	for _, n := range sortedKeys(p.Mappings) {
		m := p.Mappings[n]
		var mb []byte
		mb = appendString(mb, fieldMappingName, n)
		mb = appendFloat(mb, fieldMappingTopLeftU, m.TopLeftU)
		mb = appendFloat(mb, fieldMappingTopLeftV, m.TopLeftV)
		mb = appendFloat(mb, fieldMappingBottomRightU, m.BottomRightU)
		mb = appendFloat(mb, fieldMappingBottomRightV, m.BottomRightV)
		b = protowire.AppendTag(b, fieldAtlasMapping, protowire.BytesType)
		b = protowire.AppendBytes(b, mb)
	}
	return b
}

func UnmarshalAtlasPayload(b []byte) (*AtlasPayload, error) {
	p := &AtlasPayload{Mappings: map[string]UVMapping{}}
	err := readFields(b, func(f field) error {
		switch f.num {
		case fieldAtlasTexture:
			t, err := UnmarshalTexturePayload(f.bytes)
			if err != nil {
				return err
			}
			p.Texture = t
		case fieldAtlasMapping:
			var name string
			var m UVMapping
			err := readFields(f.bytes, func(mf field) error {
				switch mf.num {
				case fieldMappingName:
					name = string(mf.bytes)
				case fieldMappingTopLeftU:
					m.TopLeftU = mf.float()
				case fieldMappingTopLeftV:
					m.TopLeftV = mf.float()
				case fieldMappingBottomRightU:
					m.BottomRightU = mf.float()
				case fieldMappingBottomRightV:
					m.BottomRightV = mf.float()
				}
				return nil
			})
			if err != nil {
				return err
			}
			p.Mappings[name] = m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

type TextureAtlasAsset struct {
	name string

	SourceTextureNames []string
	Compiled           *compiled.PlatformData

	AtlasTexture *TextureAsset
	Mappings     map[string]UVMapping
}

func NewTextureAtlasAsset(name string, sourceTextureNames []string, pd *compiled.PlatformData) (*TextureAtlasAsset, error) {
	a := &TextureAtlasAsset{
		name:               name,
		SourceTextureNames: sourceTextureNames,
	}
	if err := a.SetPlatformData(pd); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *TextureAtlasAsset) Name() string { return a.name }
func (a *TextureAtlasAsset) Kind() assets.Kind { return assets.KindTextureAtlas }
func (a *TextureAtlasAsset) SourceOnly() bool { return a.Compiled == nil }
func (a *TextureAtlasAsset) CompiledOnly() bool { return a.SourceTextureNames == nil }

func (a *TextureAtlasAsset) PlatformData() *compiled.PlatformData {
	return a.Compiled
}

func (a *TextureAtlasAsset) SetPlatformData(pd *compiled.PlatformData) error {
	a.Release()
	a.Compiled = pd
	if pd == nil {
		return nil
	}
	payload, err := UnmarshalAtlasPayload(pd.Data)
	if err != nil {
		return fmt.Errorf("atlas '%s': %w", a.name, err)
	}
	if payload.Texture != nil {
		tex, err := NewTextureAsset(a.name, nil, &compiled.PlatformData{
			Platform: pd.Platform,
			Data:     payload.Texture.Marshal(),
		}, false)
		if err != nil {
			return err
		}
		a.AtlasTexture = tex
	}
	a.Mappings = payload.Mappings
	return nil
}

func (a *TextureAtlasAsset) Release() {
	a.AtlasTexture = nil
	a.Mappings = nil
}

// UVBounds returns where the named source texture sits in the atlas.
func (a *TextureAtlasAsset) UVBounds(textureName string) (UVMapping, bool) {
	m, ok := a.Mappings[textureName]
	return m, ok
}
