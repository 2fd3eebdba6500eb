package strategies

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
)

// rawFile synthesizes a raw asset straight from a domain file, without a
// .asset wrapper.
type rawFile struct {
	name       string
	extensions []string
	build      func(path string, data []byte) (map[string]assets.Value, error)
}

func (r *rawFile) Name() string { return r.name }
func (r *rawFile) ScanSourcePath() bool { return true }
func (r *rawFile) AssetExtensions() []string { return r.extensions }

func (r *rawFile) PotentialPaths(root, name string) []string {
	base := filepath.Join(root, assets.NamePath(name))
	paths := make([]string, len(r.extensions))
	for i, ext := range r.extensions {
		paths[i] = base + "." + ext
	}
	return paths
}

func (r *rawFile) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	for _, path := range r.PotentialPaths(root, name) {
		data, modified, err := readFile(path)
		if err != nil {
			return nil, modified, err
		}
		if data == nil {
			continue
		}
		props, err := r.build(path, data)
		if err != nil {
			return nil, modified, fmt.Errorf("%s: %w", path, err)
		}
		return assets.NewRawAsset(props, false), modified, nil
	}
	return nil, time.Time{}, nil
}

func sourcedFromRaw(loader string, props map[string]assets.Value) map[string]assets.Value {
	props[assets.PropLoader] = assets.String(loader)
	props[assets.PropPlatformData] = assets.Null()
	props[assets.PropSourcedFromRaw] = assets.Bool(true)
	return props
}

// RawTexture reads image files.
func RawTexture() assets.LoadStrategy {
	return &rawFile{
		name:       "raw texture",
		extensions: []string{"png", "bmp", "tiff", "webp"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			return sourcedFromRaw(metadata.TextureLoader, map[string]assets.Value{
				metadata.PropRawData: assets.Bytes(data),
			}), nil
		},
	}
}

// RawAudio reads wave files.
func RawAudio() assets.LoadStrategy {
	return &rawFile{
		name:       "raw audio",
		extensions: []string{"wav"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			return sourcedFromRaw(metadata.AudioLoader, map[string]assets.Value{
				metadata.PropRawData: assets.Bytes(data),
			}), nil
		},
	}
}

// RawEffect reads effect source and expands #include lines.
func RawEffect() assets.LoadStrategy {
	return &rawFile{
		name:       "raw effect",
		extensions: []string{"fx"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			code, err := expandIncludes(path, data, nil)
			if err != nil {
				return nil, err
			}
			return sourcedFromRaw(metadata.EffectLoader, map[string]assets.Value{
				metadata.PropCode: assets.String(code),
			}), nil
		},
	}
}

const maxIncludeDepth = 32

func expandIncludes(path string, data []byte, stack []string) (string, error) {
	if len(stack) > maxIncludeDepth {
		return "", fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}
	for _, p := range stack {
		if p == path {
			return "", fmt.Errorf("include cycle through %s", path)
		}
	}
	stack = append(stack, path)

	var out strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		target, ok := includeTarget(line)
		if !ok {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		includePath := filepath.Join(filepath.Dir(path), filepath.FromSlash(target))
		included, err := os.ReadFile(includePath)
		if err != nil {
			return "", fmt.Errorf("cannot include '%s': %w", target, err)
		}
		expanded, err := expandIncludes(includePath, included, stack)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func includeTarget(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "#include")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 {
		return "", false
	}
	switch {
	case rest[0] == '<' && strings.HasSuffix(rest, ">"):
	case rest[0] == '"' && strings.HasSuffix(rest, `"`):
	default:
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

// RawModel reads model files. Sibling <last>-<animation>.fbx files become
// additional animations.
func RawModel() assets.LoadStrategy {
	return &rawFile{
		name:       "raw model",
		extensions: []string{"fbx", "x"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			animations := map[string]assets.Value{}
			if ext == "fbx" {
				found, err := siblingAnimations(path)
				if err != nil {
					return nil, err
				}
				for n, d := range found {
					animations[n] = assets.Bytes(d)
				}
			}
			return sourcedFromRaw(metadata.ModelLoader, map[string]assets.Value{
				metadata.PropRawData:                 assets.Bytes(data),
				metadata.PropExtension:               assets.String(ext),
				metadata.PropRawAdditionalAnimations: assets.Object(animations),
			}), nil
		},
	}
}

func siblingAnimations(path string) (map[string][]byte, error) {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := map[string][]byte{}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, stem+"-") || !strings.EqualFold(filepath.Ext(n), ".fbx") {
			continue
		}
		anim := strings.TrimSuffix(strings.TrimPrefix(n, stem+"-"), filepath.Ext(n))
		data, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		out[anim] = data
	}
	return out, nil
}

// RawLevel reads Ogmo Editor levels.
func RawLevel() assets.LoadStrategy {
	return &rawFile{
		name:       "raw level",
		extensions: []string{"oel"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			return map[string]assets.Value{
				assets.PropLoader:            assets.String(metadata.LevelLoader),
				metadata.PropLevelData:       assets.String(string(data)),
				metadata.PropLevelDataFormat: assets.String(string(metadata.LevelFormatOgmoEditor)),
				metadata.PropSourcePath:      assets.String(path),
			}, nil
		},
	}
}

// RawConfiguration reads INI files into flattened Group* properties.
func RawConfiguration() assets.LoadStrategy {
	return &rawFile{
		name:       "raw configuration",
		extensions: []string{"ini"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			groups, err := ParseINI(data)
			if err != nil {
				return nil, err
			}
			props := metadata.FlattenGroups(groups)
			props[assets.PropLoader] = assets.String(metadata.ConfigurationLoader)
			return props, nil
		},
	}
}

// ParseINI reads [group] sections of key=value pairs. Values are typed as
// integers, then floats, then strings. Lines starting with ; or # are
// comments. Keys before the first section land in an unnamed group.
func ParseINI(data []byte) ([]metadata.SettingGroup, error) {
	var groups []metadata.SettingGroup
	current := -1

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated section", lineNo)
			}
			groups = append(groups, metadata.SettingGroup{Name: strings.TrimSpace(line[1 : len(line)-1])})
			current = len(groups) - 1
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value", lineNo)
		}
		if current < 0 {
			groups = append(groups, metadata.SettingGroup{})
			current = 0
		}
		groups[current].Settings = append(groups[current].Settings, metadata.Setting{
			Key:   strings.TrimSpace(key),
			Value: iniValue(strings.TrimSpace(value)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

func iniValue(s string) assets.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return assets.Integer(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return assets.Float(f)
	}
	return assets.String(strings.Trim(s, `"`))
}

// RawBitmapFont turns an AngelCode .fnt descriptor into a font source using
// its face name and size.
func RawBitmapFont() assets.LoadStrategy {
	return &rawFile{
		name:       "raw bitmap font",
		extensions: []string{"fnt"},
		build: func(path string, data []byte) (map[string]assets.Value, error) {
			font, err := bmfont.Load(path)
			if err != nil {
				return nil, err
			}
			size := font.Descriptor.Info.Size
			if size < 0 {
				size = -size
			}
			return map[string]assets.Value{
				assets.PropLoader:       assets.String(metadata.FontLoader),
				assets.PropPlatformData: assets.Null(),
				metadata.PropFontName:   assets.String(font.Descriptor.Info.Face),
				metadata.PropFontSize:   assets.Integer(int64(size)),
				metadata.PropUseKerning: assets.Bool(len(font.Descriptor.Kerning) > 0),
				metadata.PropSpacing:    assets.Integer(0),
			}, nil
		},
	}
}

// RawStrategies returns every raw format strategy in chain order.
func RawStrategies() []assets.LoadStrategy {
	return []assets.LoadStrategy{
		RawTexture(),
		RawEffect(),
		RawModel(),
		RawAudio(),
		RawLevel(),
		RawConfiguration(),
		RawBitmapFont(),
	}
}
