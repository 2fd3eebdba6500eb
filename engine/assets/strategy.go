package assets

import (
	"bufio"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// LoadStrategy finds one physical representation of an asset. Absence is not
// an error: AttemptLoad returns a nil RawAsset.
type LoadStrategy interface {
	Name() string
	// ScanSourcePath marks strategies that also look in the extra source path.
	ScanSourcePath() bool
	// AssetExtensions lists the file suffixes claimed, without the dot.
	AssetExtensions() []string
	AttemptLoad(root, name string) (*RawAsset, time.Time, error)
	PotentialPaths(root, name string) []string
}

// Candidate is one raw representation produced while resolving a name.
type Candidate struct {
	Raw      *RawAsset
	Modified time.Time
	Strategy string
	Root     string
}

// SourcePathFile names the file in the content root that points at an
// additional source directory.
const SourcePathFile = ".source"

// NamePath converts a dotted asset name into a relative file path without
// extension.
func NamePath(name string) string {
	return filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))
}

// RawAssetLoader walks the strategy chain for a content root.
type RawAssetLoader struct {
	root       string
	sourcePath string
	strategies []LoadStrategy
}

func NewRawAssetLoader(root string, strategies []LoadStrategy) *RawAssetLoader {
	l := &RawAssetLoader{
		root:       root,
		strategies: strategies,
	}
	if sp, err := readSourcePath(root); err == nil && sp != "" {
		l.sourcePath = sp
		core.LogInfo("Using source path '%s' from %s.", sp, SourcePathFile)
	}
	return l
}

func readSourcePath(root string) (string, error) {
	if root == "" {
		return "", nil
	}
	f, err := os.Open(filepath.Join(root, SourcePathFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return "", nil
	}
	if !filepath.IsAbs(line) {
		line = filepath.Join(root, line)
	}
	return filepath.Clean(line), nil
}

// SetSourcePath overrides whatever the .source file specified.
func (l *RawAssetLoader) SetSourcePath(path string) {
	l.sourcePath = path
}

func (l *RawAssetLoader) Root() string {
	return l.root
}

func (l *RawAssetLoader) SourcePath() string {
	return l.sourcePath
}

func (l *RawAssetLoader) Strategies() []LoadStrategy {
	return l.strategies
}

// Candidates lazily yields every representation of name in chain order. For
// each strategy the source path is tried before the content root.
func (l *RawAssetLoader) Candidates(name string) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for _, s := range l.strategies {
			for _, root := range l.rootsFor(s) {
				raw, modified, err := s.AttemptLoad(root, name)
				if err != nil {
					if !yield(Candidate{Strategy: s.Name(), Root: root}, fmt.Errorf("%s: %w", s.Name(), err)) {
						return
					}
					continue
				}
				if raw == nil {
					continue
				}
				if !yield(Candidate{Raw: raw, Modified: modified, Strategy: s.Name(), Root: root}, nil) {
					return
				}
			}
		}
	}
}

func (l *RawAssetLoader) rootsFor(s LoadStrategy) []string {
	if s.ScanSourcePath() && l.sourcePath != "" {
		return []string{l.sourcePath, l.root}
	}
	return []string{l.root}
}

// PotentialPaths lists every path any strategy would check for name.
func (l *RawAssetLoader) PotentialPaths(name string) []string {
	var out []string
	for _, s := range l.strategies {
		for _, root := range l.rootsFor(s) {
			for _, p := range s.PotentialPaths(root, name) {
				if !slices.Contains(out, p) {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

func (l *RawAssetLoader) extensions() map[string]struct{} {
	exts := make(map[string]struct{})
	for _, s := range l.strategies {
		for _, e := range s.AssetExtensions() {
			exts["."+strings.TrimPrefix(e, ".")] = struct{}{}
		}
	}
	return exts
}

// ScanNames walks the content root and returns every asset name a strategy
// could resolve, sorted.
func (l *RawAssetLoader) ScanNames() ([]string, error) {
	if l.root == "" {
		return nil, nil
	}
	if _, err := os.Stat(l.root); os.IsNotExist(err) {
		return nil, nil
	}

	exts := l.extensions()
	seen := make(map[string]struct{})
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if strings.Contains(base, "-") || strings.HasPrefix(base, ".") {
			return nil
		}
		ext := filepath.Ext(base)
		if _, ok := exts[ext]; !ok {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(strings.TrimSuffix(rel, ext)), "/", ".")
		seen[platform.StripPrefix(name)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names, nil
}

// NameFromPath maps a file under the source path or content root back to the
// asset name it backs.
func (l *RawAssetLoader) NameFromPath(path string) (string, bool) {
	for _, root := range []string{l.sourcePath, l.root} {
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		dir, base := "", rel
		if i := strings.LastIndex(rel, "/"); i >= 0 {
			dir, base = rel[:i+1], rel[i+1:]
		}
		if strings.HasPrefix(base, ".") {
			return "", false
		}
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if i := strings.Index(base, "-"); i > 0 {
			base = base[:i]
		}
		name := strings.ReplaceAll(dir+base, "/", ".")
		return platform.StripPrefix(name), true
	}
	return "", false
}
