package loaders

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
)

// noNew is embedded by loaders that cannot create blank assets.
type noNew struct{}

func (noNew) CanNew() bool { return false }

func (noNew) GetNew(name string) (assets.Asset, error) {
	return nil, errCannotCreate
}

// noDefault is embedded by loaders without a placeholder asset.
type noDefault struct{}

func (noDefault) GetDefault(name string) (assets.Asset, bool) {
	return nil, false
}

// RegisterDefaults registers a loader for every asset kind, in the order they
// are tried. The returned AI loader accepts behaviour factories.
func RegisterDefaults(reg *assets.Registry) (*AILoader, error) {
	ai := NewAILoader()
	for _, l := range []assets.Loader{
		&FontLoader{},
		&LanguageLoader{},
		&TextureLoader{},
		&LevelLoader{},
		&AudioLoader{},
		&TilesetLoader{},
		&EffectLoader{},
		ai,
		&ModelLoader{},
		&ConfigurationLoader{},
		&VariableLoader{},
		&TextureAtlasLoader{},
	} {
		if err := reg.RegisterLoader(l); err != nil {
			return nil, err
		}
	}
	return ai, nil
}

var (
	_ assets.Loader = (*FontLoader)(nil)
	_ assets.Loader = (*LanguageLoader)(nil)
	_ assets.Loader = (*TextureLoader)(nil)
	_ assets.Loader = (*LevelLoader)(nil)
	_ assets.Loader = (*AudioLoader)(nil)
	_ assets.Loader = (*TilesetLoader)(nil)
	_ assets.Loader = (*EffectLoader)(nil)
	_ assets.Loader = (*AILoader)(nil)
	_ assets.Loader = (*ModelLoader)(nil)
	_ assets.Loader = (*ConfigurationLoader)(nil)
	_ assets.Loader = (*VariableLoader)(nil)
	_ assets.Loader = (*TextureAtlasLoader)(nil)
)
