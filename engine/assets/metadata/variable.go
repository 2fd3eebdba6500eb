package metadata

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
)

// VariableAsset holds one tunable value.
type VariableAsset struct {
	name  string
	Value assets.Value
}

func NewVariableAsset(name string, v assets.Value) *VariableAsset {
	return &VariableAsset{name: name, Value: v}
}

func (v *VariableAsset) Name() string { return v.name }
func (v *VariableAsset) Kind() assets.Kind { return assets.KindVariable }
func (v *VariableAsset) SourceOnly() bool { return false }
func (v *VariableAsset) CompiledOnly() bool { return false }

// LanguageAsset holds one localized string.
type LanguageAsset struct {
	name  string
	Value string
}

func NewLanguageAsset(name, value string) *LanguageAsset {
	return &LanguageAsset{name: name, Value: value}
}

func (l *LanguageAsset) Name() string { return l.name }
func (l *LanguageAsset) Kind() assets.Kind { return assets.KindLanguage }
func (l *LanguageAsset) SourceOnly() bool { return false }
func (l *LanguageAsset) CompiledOnly() bool { return false }
