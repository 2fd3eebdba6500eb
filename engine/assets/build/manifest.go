package build

import (
	"context"
	"path"

	"github.com/fxamacker/cbor/v2"

	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const manifestFile = "manifest.cbor"

type ManifestEntry struct {
	Name string `cbor:"name"`
	Kind string `cbor:"kind"`
	// SourceModified is the source timestamp in Unix nanoseconds.
	SourceModified int64 `cbor:"source_modified"`
	Size           int   `cbor:"size"`
}

// Manifest lists every compiled asset of one platform.
type Manifest struct {
	Platform  string          `cbor:"platform"`
	Generated int64           `cbor:"generated"`
	Assets    []ManifestEntry `cbor:"assets"`
}

// ManifestKey is where the manifest of p lives in the output store.
func ManifestKey(p platform.TargetPlatform) string {
	return path.Join(p.String(), manifestFile)
}

func writeManifest(ctx context.Context, s store.Store, p platform.TargetPlatform, m *Manifest) error {
	data, err := cbor.Marshal(m)
	if err != nil {
		return err
	}
	return s.Set(ctx, ManifestKey(p), data)
}

// ReadManifest loads the manifest of p from s.
func ReadManifest(ctx context.Context, s store.Store, p platform.TargetPlatform) (*Manifest, error) {
	data, err := s.Get(ctx, ManifestKey(p))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
