package metadata

import (
	"fmt"

	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

const (
	fieldModelExtension protowire.Number = 1
	fieldModelData      protowire.Number = 2
	fieldModelAnimation protowire.Number = 3
	fieldModelOption    protowire.Number = 4

	fieldAnimationName protowire.Number = 1
	fieldAnimationData protowire.Number = 2
)

// ModelPayload is the compiled form of a model. The mesh data stays in its
// interchange format; animations ride along by name.
type ModelPayload struct {
	Extension     string
	Data          []byte
	Animations    map[string][]byte
	ImportOptions []string
}

func (p *ModelPayload) Marshal() []byte {
	var b []byte
	b = appendString(b, fieldModelExtension, p.Extension)
	b = appendBytes(b, fieldModelData, p.Data)

	for _, n := range sortedKeys(p.Animations) {
		var ab []byte
		ab = appendString(ab, fieldAnimationName, n)
		ab = appendBytes(ab, fieldAnimationData, p.Animations[n])
		b = protowire.AppendTag(b, fieldModelAnimation, protowire.BytesType)
		b = protowire.AppendBytes(b, ab)
	}
	for _, o := range p.ImportOptions {
		b = protowire.AppendTag(b, fieldModelOption, protowire.BytesType)
		b = protowire.AppendString(b, o)
	}
	return b
}

func UnmarshalModelPayload(b []byte) (*ModelPayload, error) {
	p := &ModelPayload{Animations: map[string][]byte{}}
	err := readFields(b, func(f field) error {
		switch f.num {
		case fieldModelExtension:
			p.Extension = string(f.bytes)
		case fieldModelData:
			p.Data = append([]byte{}, f.bytes...)
		case fieldModelOption:
			p.ImportOptions = append(p.ImportOptions, string(f.bytes))
		case fieldModelAnimation:
			var name string
			var data []byte
			err := readFields(f.bytes, func(af field) error {
				switch af.num {
				case fieldAnimationName:
					name = string(af.bytes)
				case fieldAnimationData:
					data = append([]byte{}, af.bytes...)
				}
				return nil
			})
			if err != nil {
				return err
			}
			p.Animations[name] = data
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

type ModelAsset struct {
	name string

	RawData                 []byte
	RawAdditionalAnimations map[string][]byte
	Extension               string
	ImportOptions           []string
	Compiled                *compiled.PlatformData
	SourcedFromRaw          bool

	Model *ModelPayload
}

func NewModelAsset(name string, rawData []byte, animations map[string][]byte, extension string, importOptions []string, pd *compiled.PlatformData, sourcedFromRaw bool) (*ModelAsset, error) {
	m := &ModelAsset{
		name:                    name,
		RawData:                 rawData,
		RawAdditionalAnimations: animations,
		Extension:               extension,
		ImportOptions:           importOptions,
		SourcedFromRaw:          sourcedFromRaw,
	}
	if err := m.SetPlatformData(pd); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ModelAsset) Name() string { return m.name }
func (m *ModelAsset) Kind() assets.Kind { return assets.KindModel }
func (m *ModelAsset) SourceOnly() bool { return m.Compiled == nil }
func (m *ModelAsset) CompiledOnly() bool { return m.RawData == nil }

func (m *ModelAsset) PlatformData() *compiled.PlatformData {
	return m.Compiled
}

func (m *ModelAsset) SetPlatformData(pd *compiled.PlatformData) error {
	m.Release()
	m.Compiled = pd
	if pd == nil {
		return nil
	}
	payload, err := UnmarshalModelPayload(pd.Data)
	if err != nil {
		return fmt.Errorf("model '%s': %w", m.name, err)
	}
	m.Model = payload
	return nil
}

func (m *ModelAsset) Release() {
	m.Model = nil
}

// AnimationNames lists the animations available to the model.
func (m *ModelAsset) AnimationNames() []string {
	if m.Model != nil {
		return sortedKeys(m.Model.Animations)
	}
	return sortedKeys(m.RawAdditionalAnimations)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
