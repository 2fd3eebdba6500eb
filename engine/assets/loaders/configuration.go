package loaders

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type ConfigurationLoader struct {
	noDefault
}

func (cl *ConfigurationLoader) Kind() assets.Kind { return assets.KindConfiguration }
func (cl *ConfigurationLoader) Name() string { return metadata.ConfigurationLoader }

func (cl *ConfigurationLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.ConfigurationLoader)
}

func (cl *ConfigurationLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	groups, err := metadata.UnflattenGroups(raw)
	if err != nil {
		return nil, fmt.Errorf("configuration '%s': %w", name, err)
	}
	return metadata.NewConfigurationAsset(name, groups), nil
}

func (cl *ConfigurationLoader) CanNew() bool { return true }

func (cl *ConfigurationLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewConfigurationAsset(name, nil), nil
}
