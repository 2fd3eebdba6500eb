package metadata

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

type EffectAsset struct {
	name string

	Code           string
	Compiled       *compiled.PlatformData
	SourcedFromRaw bool

	// Program is the compiled bytecode handed to the renderer.
	Program []byte
}

func NewEffectAsset(name, code string, pd *compiled.PlatformData, sourcedFromRaw bool) (*EffectAsset, error) {
	e := &EffectAsset{
		name:           name,
		Code:           code,
		SourcedFromRaw: sourcedFromRaw,
	}
	if err := e.SetPlatformData(pd); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EffectAsset) Name() string { return e.name }
func (e *EffectAsset) Kind() assets.Kind { return assets.KindEffect }
func (e *EffectAsset) SourceOnly() bool { return e.Compiled == nil }
func (e *EffectAsset) CompiledOnly() bool { return e.Code == "" }

func (e *EffectAsset) PlatformData() *compiled.PlatformData {
	return e.Compiled
}

func (e *EffectAsset) SetPlatformData(pd *compiled.PlatformData) error {
	e.Release()
	e.Compiled = pd
	if pd != nil {
		e.Program = append([]byte{}, pd.Data...)
	}
	return nil
}

func (e *EffectAsset) Release() {
	e.Program = nil
}
