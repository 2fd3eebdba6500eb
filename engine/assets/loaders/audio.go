package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type AudioLoader struct {
	noNew
	noDefault
}

func (al *AudioLoader) Kind() assets.Kind { return assets.KindAudio }
func (al *AudioLoader) Name() string { return metadata.AudioLoader }

func (al *AudioLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.AudioLoader)
}

func (al *AudioLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	pd, err := raw.PlatformData()
	if err != nil {
		return nil, err
	}
	if raw.IsCompiled() {
		return metadata.NewAudioAsset(name, nil, pd, false)
	}
	return metadata.NewAudioAsset(
		name,
		raw.Bytes(metadata.PropRawData),
		pd,
		raw.Bool(assets.PropSourcedFromRaw, false),
	)
}
