package loaders

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type ModelLoader struct {
	noNew
	noDefault
}

func (ml *ModelLoader) Kind() assets.Kind { return assets.KindModel }
func (ml *ModelLoader) Name() string { return metadata.ModelLoader }

func (ml *ModelLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.ModelLoader)
}

func (ml *ModelLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	pd, err := raw.PlatformData()
	if err != nil {
		return nil, err
	}
	if raw.IsCompiled() {
		return metadata.NewModelAsset(name, nil, nil, "", nil, pd, false)
	}

	var animations map[string][]byte
	if obj := raw.Object(metadata.PropRawAdditionalAnimations); obj != nil {
		animations = make(map[string][]byte, len(obj))
		for anim, v := range obj {
			data, ok := v.AsBytes()
			if !ok {
				return nil, fmt.Errorf("model '%s': animation '%s' is a %s", name, anim, v.Kind)
			}
			animations[anim] = data
		}
	}
	return metadata.NewModelAsset(
		name,
		raw.Bytes(metadata.PropRawData),
		animations,
		raw.String(metadata.PropExtension, ""),
		raw.Strings(metadata.PropImportOptions),
		pd,
		raw.Bool(assets.PropSourcedFromRaw, false),
	)
}
