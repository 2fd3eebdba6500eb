package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strings"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// SourceKey is where the source document of name lives.
func SourceKey(name string) string {
	return strings.ReplaceAll(name, ".", "/") + ".asset"
}

// CompiledKey is where the compiled blob of name for p lives.
func CompiledKey(name string, p platform.TargetPlatform) string {
	return path.Join(p.String(), strings.ReplaceAll(name, ".", "/")+".bin")
}

// UnqualifiedCompiledKey is the platform independent fallback location.
func UnqualifiedCompiledKey(name string) string {
	return strings.ReplaceAll(name, ".", "/") + ".bin"
}

// Writer persists raw assets into a store: source documents as indented JSON,
// compiled assets as enveloped blobs under their platform directory.
type Writer struct {
	store Store
}

func NewWriter(s Store) *Writer {
	return &Writer{store: s}
}

func (w *Writer) WriteRawAsset(name string, raw *assets.RawAsset) error {
	ctx := context.Background()
	if raw.IsCompiled() {
		c, err := raw.CompiledAsset()
		if err != nil {
			return err
		}
		data, err := compiled.EncodeBytes(c)
		if err != nil {
			return err
		}
		key := UnqualifiedCompiledKey(name)
		if c.PlatformData != nil {
			key = CompiledKey(name, c.PlatformData.Platform)
		}
		return w.store.Set(ctx, key, data)
	}

	doc, err := raw.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, doc, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	return w.store.Set(ctx, SourceKey(name), out.Bytes())
}

var _ assets.RawAssetWriter = (*Writer)(nil)
