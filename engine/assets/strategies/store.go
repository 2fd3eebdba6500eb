package strategies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/assets/store"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const defaultStoreTimeout = 2 * time.Second

// Store reads compiled blobs shared through a store, such as the Redis mirror
// written by the bulk compiler.
type Store struct {
	Store    store.Store
	Platform platform.TargetPlatform
	Timeout  time.Duration
}

func (Store) Name() string { return "store" }
func (Store) ScanSourcePath() bool { return false }
func (Store) AssetExtensions() []string { return nil }
func (Store) PotentialPaths(root, name string) []string { return nil }

func (s Store) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	if s.Store == nil {
		return nil, time.Time{}, nil
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, key := range []string{store.CompiledKey(name, s.Platform), store.UnqualifiedCompiledKey(name)} {
		data, err := s.Store.Get(ctx, key)
		if errors.Is(err, store.Missing) {
			continue
		}
		if err != nil {
			return nil, time.Time{}, err
		}
		c, err := compiled.DecodeBytes(data)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("%s: %w", key, err)
		}
		return assets.NewCompiledRawAsset(c), time.Time{}, nil
	}
	return nil, time.Time{}, nil
}

var _ assets.LoadStrategy = Store{}
