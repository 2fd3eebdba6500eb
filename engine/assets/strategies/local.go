package strategies

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// readFile returns nil data without an error when path does not exist.
func readFile(path string) ([]byte, time.Time, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	if info.IsDir() {
		return nil, time.Time{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

// LocalSource reads editable <name>.asset JSON documents.
type LocalSource struct{}

func (LocalSource) Name() string { return "local source" }
func (LocalSource) ScanSourcePath() bool { return true }
func (LocalSource) AssetExtensions() []string { return []string{"asset"} }

func (LocalSource) PotentialPaths(root, name string) []string {
	return []string{filepath.Join(root, assets.NamePath(name)+".asset")}
}

func (s LocalSource) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	path := s.PotentialPaths(root, name)[0]
	data, modified, err := readFile(path)
	if err != nil || data == nil {
		return nil, modified, err
	}
	raw, err := assets.ParseJSONRawAsset(data)
	if err != nil {
		return nil, modified, fmt.Errorf("%s: %w", path, err)
	}
	return raw, modified, nil
}

// LocalCompiled reads <Platform>/<name>.bin and then the unqualified <name>.bin.
type LocalCompiled struct {
	Platform platform.TargetPlatform
}

func (LocalCompiled) Name() string { return "local compiled" }
func (LocalCompiled) ScanSourcePath() bool { return false }
func (LocalCompiled) AssetExtensions() []string { return []string{"bin"} }

func (s LocalCompiled) PotentialPaths(root, name string) []string {
	rel := assets.NamePath(name) + ".bin"
	return []string{
		filepath.Join(root, s.Platform.String(), rel),
		filepath.Join(root, rel),
	}
}

func (s LocalCompiled) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	for _, path := range s.PotentialPaths(root, name) {
		data, modified, err := readFile(path)
		if err != nil {
			return nil, modified, err
		}
		if data == nil {
			continue
		}
		c, err := compiled.DecodeBytes(data)
		if err != nil {
			return nil, modified, fmt.Errorf("%s: %w", path, err)
		}
		return assets.NewCompiledRawAsset(c), modified, nil
	}
	return nil, time.Time{}, nil
}

var _ assets.LoadStrategy = LocalSource{}
var _ assets.LoadStrategy = LocalCompiled{}
