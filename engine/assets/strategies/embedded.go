package strategies

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

func readFS(fsys fs.FS, name string) ([]byte, time.Time, error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var modified time.Time
	if info, err := fs.Stat(fsys, name); err == nil {
		modified = info.ModTime()
	}
	return data, modified, nil
}

// EmbeddedSource reads <namespace>.<name>.asset documents compiled into the
// binary, typically through embed.FS.
type EmbeddedSource struct {
	FS        fs.FS
	Namespace string
}

func (EmbeddedSource) Name() string { return "embedded source" }
func (EmbeddedSource) ScanSourcePath() bool { return false }
func (EmbeddedSource) AssetExtensions() []string { return nil }
func (EmbeddedSource) PotentialPaths(root, name string) []string { return nil }

func (s EmbeddedSource) resource(name string) string {
	return fmt.Sprintf("%s.%s.asset", s.Namespace, name)
}

func (s EmbeddedSource) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	if s.FS == nil {
		return nil, time.Time{}, nil
	}
	data, modified, err := readFS(s.FS, s.resource(name))
	if err != nil || data == nil {
		return nil, modified, err
	}
	raw, err := assets.ParseJSONRawAsset(data)
	if err != nil {
		return nil, modified, fmt.Errorf("%s: %w", s.resource(name), err)
	}
	return raw, modified, nil
}

// EmbeddedCompiled reads <namespace>.<name>-<Platform>.bin resources.
type EmbeddedCompiled struct {
	FS        fs.FS
	Namespace string
	Platform  platform.TargetPlatform
}

func (EmbeddedCompiled) Name() string { return "embedded compiled" }
func (EmbeddedCompiled) ScanSourcePath() bool { return false }
func (EmbeddedCompiled) AssetExtensions() []string { return nil }
func (EmbeddedCompiled) PotentialPaths(root, name string) []string { return nil }

func (s EmbeddedCompiled) resource(name string) string {
	return fmt.Sprintf("%s.%s-%s.bin", s.Namespace, name, s.Platform)
}

func (s EmbeddedCompiled) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	if s.FS == nil {
		return nil, time.Time{}, nil
	}
	return loadCompiledFS(s.FS, s.resource(name))
}

func loadCompiledFS(fsys fs.FS, names ...string) (*assets.RawAsset, time.Time, error) {
	for _, n := range names {
		data, modified, err := readFS(fsys, n)
		if err != nil {
			return nil, modified, err
		}
		if data == nil {
			continue
		}
		c, err := compiled.DecodeBytes(data)
		if err != nil {
			return nil, modified, fmt.Errorf("%s: %w", n, err)
		}
		return assets.NewCompiledRawAsset(c), modified, nil
	}
	return nil, time.Time{}, nil
}

// Bundle reads compiled blobs from a platform asset bundle laid out like the
// content root: <Platform>/<path>.bin, then <path>.bin.
type Bundle struct {
	FS       fs.FS
	Platform platform.TargetPlatform
}

func (Bundle) Name() string { return "bundle" }
func (Bundle) ScanSourcePath() bool { return false }
func (Bundle) AssetExtensions() []string { return nil }
func (Bundle) PotentialPaths(root, name string) []string { return nil }

func (s Bundle) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	if s.FS == nil {
		return nil, time.Time{}, nil
	}
	rel := strings.ReplaceAll(name, ".", "/") + ".bin"
	return loadCompiledFS(s.FS, path.Join(s.Platform.String(), rel), rel)
}

var _ assets.LoadStrategy = EmbeddedSource{}
var _ assets.LoadStrategy = EmbeddedCompiled{}
var _ assets.LoadStrategy = Bundle{}
