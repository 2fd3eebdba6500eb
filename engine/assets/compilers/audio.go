package compilers

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// AudioCompiler validates the source WAV and stores it in canonical form.
type AudioCompiler struct{}

func (ac *AudioCompiler) Compile(asset *metadata.AudioAsset, target platform.TargetPlatform) error {
	sound, err := metadata.ParseWAV(asset.RawData)
	if err != nil {
		return fmt.Errorf("audio '%s': %w", asset.Name(), err)
	}
	return asset.SetPlatformData(&compiled.PlatformData{
		Platform: target,
		Data:     metadata.EncodeWAV(sound),
	})
}

type ModelCompiler struct{}

func (mc *ModelCompiler) Compile(asset *metadata.ModelAsset, target platform.TargetPlatform) error {
	if len(asset.RawData) == 0 {
		return fmt.Errorf("model '%s' has no source data", asset.Name())
	}
	payload := &metadata.ModelPayload{
		Extension:     asset.Extension,
		Data:          asset.RawData,
		Animations:    asset.RawAdditionalAnimations,
		ImportOptions: asset.ImportOptions,
	}
	return asset.SetPlatformData(&compiled.PlatformData{
		Platform: target,
		Data:     payload.Marshal(),
	})
}
