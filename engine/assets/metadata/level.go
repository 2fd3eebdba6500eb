package metadata

import (
	"encoding/xml"
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets"
)

type LevelDataFormat string

const (
	LevelFormatOgmoEditor LevelDataFormat = "OgmoEditor"
	LevelFormatUnknown    LevelDataFormat = "Unknown"
)

// LevelAsset keeps the level document as text; it has no compiled form.
type LevelAsset struct {
	name string

	LevelData  string
	Format     LevelDataFormat
	SourcePath string
}

func NewLevelAsset(name, levelData string, format LevelDataFormat, sourcePath string) *LevelAsset {
	return &LevelAsset{
		name:       name,
		LevelData:  levelData,
		Format:     format,
		SourcePath: sourcePath,
	}
}

func (l *LevelAsset) Name() string { return l.name }
func (l *LevelAsset) Kind() assets.Kind { return assets.KindLevel }
func (l *LevelAsset) SourceOnly() bool { return false }
func (l *LevelAsset) CompiledOnly() bool { return false }

// OgmoLevel is the part of an Ogmo Editor level document the pipeline reads.
type OgmoLevel struct {
	XMLName xml.Name    `xml:"level"`
	Width   int         `xml:"width,attr"`
	Height  int         `xml:"height,attr"`
	Layers  []OgmoLayer `xml:",any"`
}

type OgmoLayer struct {
	XMLName xml.Name
	Content string `xml:",innerxml"`
}

func (l OgmoLayer) Name() string {
	return l.XMLName.Local
}

func ParseOgmoLevel(data string) (*OgmoLevel, error) {
	var lvl OgmoLevel
	if err := xml.Unmarshal([]byte(data), &lvl); err != nil {
		return nil, fmt.Errorf("invalid ogmo level: %w", err)
	}
	return &lvl, nil
}

// Parse decodes the level document according to its format.
func (l *LevelAsset) Parse() (*OgmoLevel, error) {
	if l.Format != LevelFormatOgmoEditor {
		return nil, fmt.Errorf("level '%s' has unsupported format %s", l.name, l.Format)
	}
	return ParseOgmoLevel(l.LevelData)
}
