package savers

import (
	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

// All returns one saver per asset kind.
func All() []assets.Saver {
	return []assets.Saver{
		Font(),
		Language(),
		Texture(),
		Level(),
		Audio(),
		Tileset(),
		Effect(),
		AI(),
		Model(),
		Configuration(),
		Variable(),
		TextureAtlas(),
	}
}

func Font() assets.Saver {
	return &saver[*metadata.FontAsset]{
		kind:   assets.KindFont,
		loader: metadata.FontLoader,
		source: func(f *metadata.FontAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropFontName:   assets.String(f.FontName),
				metadata.PropFontSize:   assets.Integer(int64(f.FontSize)),
				metadata.PropUseKerning: assets.Bool(f.UseKerning),
				metadata.PropSpacing:    assets.Integer(int64(f.Spacing)),
			}
		},
	}
}

func Texture() assets.Saver {
	return &saver[*metadata.TextureAsset]{
		kind:   assets.KindTexture,
		loader: metadata.TextureLoader,
		source: func(t *metadata.TextureAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropRawData: assets.Bytes(t.RawData),
			}
		},
		fromRaw: func(t *metadata.TextureAsset) bool { return t.SourcedFromRaw },
	}
}

func Audio() assets.Saver {
	return &saver[*metadata.AudioAsset]{
		kind:   assets.KindAudio,
		loader: metadata.AudioLoader,
		source: func(a *metadata.AudioAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropRawData: assets.Bytes(a.RawData),
			}
		},
		fromRaw: func(a *metadata.AudioAsset) bool { return a.SourcedFromRaw },
	}
}

func Effect() assets.Saver {
	return &saver[*metadata.EffectAsset]{
		kind:   assets.KindEffect,
		loader: metadata.EffectLoader,
		source: func(e *metadata.EffectAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropCode: assets.String(e.Code),
			}
		},
		fromRaw: func(e *metadata.EffectAsset) bool { return e.SourcedFromRaw },
	}
}

func Model() assets.Saver {
	return &saver[*metadata.ModelAsset]{
		kind:   assets.KindModel,
		loader: metadata.ModelLoader,
		source: func(m *metadata.ModelAsset) map[string]assets.Value {
			animations := make(map[string]assets.Value, len(m.RawAdditionalAnimations))
			for n, d := range m.RawAdditionalAnimations {
				animations[n] = assets.Bytes(d)
			}
			return map[string]assets.Value{
				metadata.PropRawData:                 assets.Bytes(m.RawData),
				metadata.PropExtension:               assets.String(m.Extension),
				metadata.PropImportOptions:           assets.Strings(m.ImportOptions),
				metadata.PropRawAdditionalAnimations: assets.Object(animations),
			}
		},
		fromRaw: func(m *metadata.ModelAsset) bool { return m.SourcedFromRaw },
	}
}

func TextureAtlas() assets.Saver {
	return &saver[*metadata.TextureAtlasAsset]{
		kind:   assets.KindTextureAtlas,
		loader: metadata.TextureAtlasLoader,
		source: func(a *metadata.TextureAtlasAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropSourceTextureNames: assets.Strings(a.SourceTextureNames),
			}
		},
	}
}

func Level() assets.Saver {
	return &saver[*metadata.LevelAsset]{
		kind:   assets.KindLevel,
		loader: metadata.LevelLoader,
		source: func(l *metadata.LevelAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropLevelData:       assets.String(l.LevelData),
				metadata.PropLevelDataFormat: assets.String(string(l.Format)),
				metadata.PropSourcePath:      assets.String(l.SourcePath),
			}
		},
		// a level read from an .oel file is edited in place
		fromRaw: func(l *metadata.LevelAsset) bool { return l.SourcePath != "" },
	}
}

func Tileset() assets.Saver {
	return &saver[*metadata.TilesetAsset]{
		kind:   assets.KindTileset,
		loader: metadata.TilesetLoader,
		source: func(t *metadata.TilesetAsset) map[string]assets.Value {
			return map[string]assets.Value{
				metadata.PropTextureName: assets.String(t.TextureName),
				metadata.PropCellWidth:   assets.Integer(int64(t.CellWidth)),
				metadata.PropCellHeight:  assets.Integer(int64(t.CellHeight)),
			}
		},
	}
}

func Configuration() assets.Saver {
	return &saver[*metadata.ConfigurationAsset]{
		kind:   assets.KindConfiguration,
		loader: metadata.ConfigurationLoader,
		source: func(c *metadata.ConfigurationAsset) map[string]assets.Value {
			return metadata.FlattenGroups(c.Groups)
		},
	}
}

func Variable() assets.Saver {
	return &saver[*metadata.VariableAsset]{
		kind:   assets.KindVariable,
		loader: metadata.VariableLoader,
		source: func(v *metadata.VariableAsset) map[string]assets.Value {
			return map[string]assets.Value{metadata.PropValue: v.Value}
		},
	}
}

func Language() assets.Saver {
	return &saver[*metadata.LanguageAsset]{
		kind:   assets.KindLanguage,
		loader: metadata.LanguageLoader,
		source: func(l *metadata.LanguageAsset) map[string]assets.Value {
			return map[string]assets.Value{metadata.PropValue: assets.String(l.Value)}
		},
	}
}

// AI assets are declared in code, so there is nothing to write back. At
// runtime the saver still records which behaviour the asset uses.
func AI() assets.Saver {
	return &saver[*metadata.AIAsset]{
		kind:   assets.KindAI,
		loader: metadata.AILoader,
	}
}
