package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compilers"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/assets/strategies"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
	"github.com/spaghettifunk/assetforge/engine/systems"
)

type Options struct {
	// Root is the content root holding source assets.
	Root       string
	SourcePath string
	// Output receives <Platform>/<path>.bin files and the manifests.
	Output    string
	Platforms []platform.TargetPlatform
	Workers   int
	// RawFormats also compiles .png, .wav and the other raw formats.
	RawFormats bool
	// Registry supplies loaders and savers. Compilers are bound per platform.
	Registry  *assets.Registry
	Compilers compilers.Options
	// Host gates which compilers are available.
	Host platform.TargetPlatform
	// Mirror optionally receives a copy of every compiled blob.
	Mirror store.Store
}

// Report summarizes a bulk compile.
type Report struct {
	Compiled []string
	UpToDate []string
	Skipped  []string
	Deleted  []string
}

// Builder compiles every asset under a content root for a set of platforms.
type Builder struct {
	opts   Options
	output store.FSStore

	mutex  sync.Mutex
	report Report
	errs   []error
}

func NewBuilder(opts Options) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Builder{
		opts:   opts,
		output: store.FSStore(opts.Output),
	}
}

// Run compiles out of date assets, removes orphaned compiled files and
// writes a manifest per platform.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	if b.opts.Registry == nil {
		return nil, fmt.Errorf("build requires a registry")
	}
	b.report = Report{}
	b.errs = nil

	for _, p := range b.opts.Platforms {
		if err := b.runPlatform(ctx, p); err != nil {
			b.errs = append(b.errs, fmt.Errorf("%s: %w", p, err))
		}
	}

	report := b.report
	slices.Sort(report.Compiled)
	slices.Sort(report.UpToDate)
	slices.Sort(report.Skipped)
	slices.Sort(report.Deleted)
	return &report, errors.Join(b.errs...)
}

func (b *Builder) manager(p platform.TargetPlatform) *assets.AssetManager {
	chain := []assets.LoadStrategy{strategies.LocalSource{}}
	if b.opts.RawFormats {
		chain = append(chain, strategies.RawStrategies()...)
	}
	raw := assets.NewRawAssetLoader(b.opts.Root, chain)
	if b.opts.SourcePath != "" {
		raw.SetSourcePath(b.opts.SourcePath)
	}

	reg := b.opts.Registry.Clone()
	mgr := assets.NewAssetManager(raw, reg, nil, assets.ManagerOptions{
		Platform:        p,
		AllowSourceOnly: true,
	})
	opts := b.opts.Compilers
	opts.ResolveTexture = func(name string) (*metadata.TextureAsset, error) {
		return assets.Get[*metadata.TextureAsset](mgr, name)
	}
	compilers.Register(reg, b.opts.Host, opts)
	return mgr
}

func (b *Builder) runPlatform(ctx context.Context, p platform.TargetPlatform) error {
	core.LogInfo("Compiling assets for %s", p)
	mgr := b.manager(p)

	names, err := mgr.RawLoader().ScanNames()
	if err != nil {
		return err
	}

	js, err := systems.NewJobSystem(ctx, b.opts.Workers, len(names))
	if err != nil {
		return err
	}

	var entriesMutex sync.Mutex
	entries := make([]ManifestEntry, 0, len(names))
	for _, name := range names {
		err := js.Submit(systems.JobTask{
			Name: p.String() + ":" + name,
			OnStart: func(ctx context.Context) error {
				e, err := b.compile(ctx, mgr, p, name)
				if err != nil || e == nil {
					return err
				}
				entriesMutex.Lock()
				entries = append(entries, *e)
				entriesMutex.Unlock()
				return nil
			},
			OnFailure: func(err error) {
				b.fail(fmt.Errorf("%s: %w", name, err))
			},
		})
		if err != nil {
			return err
		}
	}
	if err := js.Shutdown(); err != nil {
		return err
	}

	if err := b.deleteOrphans(ctx, p, names); err != nil {
		return err
	}

	slices.SortFunc(entries, func(x, y ManifestEntry) int {
		return strings.Compare(x.Name, y.Name)
	})
	return writeManifest(ctx, b.output, p, &Manifest{
		Platform:  p.String(),
		Generated: time.Now().UnixNano(),
		Assets:    entries,
	})
}

func (b *Builder) fail(err error) {
	b.mutex.Lock()
	b.errs = append(b.errs, err)
	b.mutex.Unlock()
}

func (b *Builder) record(list *[]string, entry string) {
	b.mutex.Lock()
	*list = append(*list, entry)
	b.mutex.Unlock()
}

// source returns the first representation of name without compiling it.
func source(mgr *assets.AssetManager, name string) (assets.Asset, time.Time, error) {
	for c, err := range mgr.RawLoader().Candidates(name) {
		if err != nil {
			return nil, time.Time{}, err
		}
		loader, ok := mgr.Registry().LoaderFor(c.Raw)
		if !ok {
			continue
		}
		asset, err := loader.Handle(name, c.Raw)
		if err != nil {
			return nil, time.Time{}, err
		}
		return asset, c.Modified, nil
	}
	return nil, time.Time{}, fmt.Errorf("%w: '%s'", core.ErrAssetNotFound, name)
}

// OutOfDate reports whether a compiled file must be regenerated.
func OutOfDate(source time.Time, compiled time.Time, compiledExists bool) bool {
	return !compiledExists || source.After(compiled)
}

func (b *Builder) compile(ctx context.Context, mgr *assets.AssetManager, p platform.TargetPlatform, name string) (*ManifestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	label := p.String() + "/" + name
	key := store.CompiledKey(name, p)

	asset, modified, err := source(mgr, name)
	if err != nil {
		return nil, err
	}
	if _, ok := asset.(assets.Compilable); !ok {
		// nothing to compile for plain data assets
		b.record(&b.report.Skipped, label)
		return nil, nil
	}
	compiledAt, exists := b.output.ModTime(key)

	entry := &ManifestEntry{
		Name:           name,
		Kind:           string(asset.Kind()),
		SourceModified: modified.UnixNano(),
	}

	if !OutOfDate(modified, compiledAt, exists) {
		if info, err := os.Stat(b.output.Path(key)); err == nil {
			entry.Size = int(info.Size())
		}
		b.record(&b.report.UpToDate, label)
		return entry, nil
	}

	asset, err = mgr.Get(name)
	if err != nil {
		return nil, err
	}
	if asset.SourceOnly() {
		core.LogWarn("No compiler for '%s' on %s; skipping", name, p)
		b.record(&b.report.Skipped, label)
		return nil, nil
	}

	saver, ok := mgr.Registry().Saver(asset.Kind())
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrSaverNotFound, name)
	}
	raw, err := saver.Handle(asset, assets.TargetCompiledFile)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		b.record(&b.report.Skipped, label)
		return nil, nil
	}

	if err := store.NewWriter(b.output).WriteRawAsset(name, raw); err != nil {
		return nil, err
	}
	if b.opts.Mirror != nil {
		if err := store.NewWriter(b.opts.Mirror).WriteRawAsset(name, raw); err != nil {
			return nil, fmt.Errorf("mirror: %w", err)
		}
	}
	if info, err := os.Stat(b.output.Path(key)); err == nil {
		entry.Size = int(info.Size())
	}
	core.LogDebug("Compiled %s", label)
	b.record(&b.report.Compiled, label)
	return entry, nil
}

// deleteOrphans removes compiled files whose source no longer exists.
func (b *Builder) deleteOrphans(ctx context.Context, p platform.TargetPlatform, names []string) error {
	dir := filepath.Join(b.opts.Output, p.String())
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	var orphans []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".bin" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(strings.TrimSuffix(rel, ".bin")), "/", ".")
		if _, found := slices.BinarySearch(names, name); !found {
			orphans = append(orphans, name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range orphans {
		key := store.CompiledKey(name, p)
		if err := b.output.Delete(ctx, key); err != nil {
			return err
		}
		if b.opts.Mirror != nil {
			if err := b.opts.Mirror.Delete(ctx, key); err != nil {
				core.LogWarn("Unable to delete '%s' from mirror: %s", key, err)
			}
		}
		core.LogInfo("Deleted orphaned %s", key)
		b.record(&b.report.Deleted, p.String()+"/"+name)
	}
	return nil
}
