package strategies

import (
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/spaghettifunk/assetforge/engine/assets"
)

// Declared serves raw assets registered from code.
type Declared struct {
	mutex    deadlock.RWMutex
	declared map[string]*assets.RawAsset
}

func NewDeclared() *Declared {
	return &Declared{declared: make(map[string]*assets.RawAsset)}
}

// Declare registers raw under name, replacing any earlier declaration.
func (d *Declared) Declare(name string, raw *assets.RawAsset) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.declared[name] = raw
}

func (d *Declared) Names() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	names := make([]string, 0, len(d.declared))
	for n := range d.declared {
		names = append(names, n)
	}
	return names
}

func (d *Declared) Name() string { return "declared" }
func (d *Declared) ScanSourcePath() bool { return false }
func (d *Declared) AssetExtensions() []string { return nil }
func (d *Declared) PotentialPaths(root, name string) []string { return nil }

func (d *Declared) AttemptLoad(root, name string) (*assets.RawAsset, time.Time, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	raw, ok := d.declared[name]
	if !ok {
		return nil, time.Time{}, nil
	}
	return raw.Clone(), time.Time{}, nil
}

var _ assets.LoadStrategy = (*Declared)(nil)
