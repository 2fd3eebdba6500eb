package metadata

// Loader discriminators written into the Loader property of raw assets.
const (
	FontLoader          = "FontAssetLoader"
	LanguageLoader      = "LanguageAssetLoader"
	TextureLoader       = "TextureAssetLoader"
	LevelLoader         = "LevelAssetLoader"
	AudioLoader         = "AudioAssetLoader"
	TilesetLoader       = "TilesetAssetLoader"
	EffectLoader        = "EffectAssetLoader"
	AILoader            = "AIAssetLoader"
	ModelLoader         = "ModelAssetLoader"
	ConfigurationLoader = "ConfigurationAssetLoader"
	VariableLoader      = "VariableAssetLoader"
	TextureAtlasLoader  = "TextureAtlasAssetLoader"
)

// Property keys shared by strategies, loaders and savers.
const (
	PropRawData                 = "RawData"
	PropRawAdditionalAnimations = "RawAdditionalAnimations"
	PropExtension               = "Extension"
	PropImportOptions           = "ImportOptions"
	PropFontName                = "FontName"
	PropFontSize                = "FontSize"
	PropUseKerning              = "UseKerning"
	PropSpacing                 = "Spacing"
	PropCode                    = "Code"
	PropLevelData               = "LevelData"
	PropLevelDataFormat         = "LevelDataFormat"
	PropSourcePath              = "SourcePath"
	PropTextureName             = "TextureName"
	PropCellWidth               = "CellWidth"
	PropCellHeight              = "CellHeight"
	PropSourceTextureNames      = "SourceTextureNames"
	PropValue                   = "Value"
	PropType                    = "Type"
)
