package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

type VariableLoader struct {
	noDefault
}

func (vl *VariableLoader) Kind() assets.Kind { return assets.KindVariable }
func (vl *VariableLoader) Name() string { return metadata.VariableLoader }

func (vl *VariableLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.VariableLoader)
}

func (vl *VariableLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	return metadata.NewVariableAsset(name, assets.Property(raw, metadata.PropValue, assets.Null())), nil
}

func (vl *VariableLoader) CanNew() bool { return true }

func (vl *VariableLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewVariableAsset(name, assets.Null()), nil
}

type LanguageLoader struct {
	noDefault
}

func (ll *LanguageLoader) Kind() assets.Kind { return assets.KindLanguage }
func (ll *LanguageLoader) Name() string { return metadata.LanguageLoader }

func (ll *LanguageLoader) CanHandle(raw *assets.RawAsset) bool {
	return assets.LoaderMatches(raw.Loader(), metadata.LanguageLoader)
}

func (ll *LanguageLoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	return metadata.NewLanguageAsset(name, raw.String(metadata.PropValue, "")), nil
}

func (ll *LanguageLoader) CanNew() bool { return true }

func (ll *LanguageLoader) GetNew(name string) (assets.Asset, error) {
	return metadata.NewLanguageAsset(name, ""), nil
}
