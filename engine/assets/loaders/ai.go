package loaders

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/metadata"
	"github.com/spaghettifunk/assetforge/engine/core"
)

// AILoader claims raw assets whose Type names a registered behaviour factory.
type AILoader struct {
	noNew
	noDefault

	mutex     deadlock.RWMutex
	factories map[string]metadata.AIFactory
}

func NewAILoader() *AILoader {
	return &AILoader{factories: make(map[string]metadata.AIFactory)}
}

// Register makes typeName available to declared AI assets.
func (al *AILoader) Register(typeName string, factory metadata.AIFactory) error {
	al.mutex.Lock()
	defer al.mutex.Unlock()
	if _, ok := al.factories[typeName]; ok {
		return fmt.Errorf("%w: AI type %s", core.ErrAlreadyRegistered, typeName)
	}
	al.factories[typeName] = factory
	return nil
}

func (al *AILoader) factory(typeName string) (metadata.AIFactory, bool) {
	al.mutex.RLock()
	defer al.mutex.RUnlock()
	f, ok := al.factories[typeName]
	return f, ok
}

func (al *AILoader) Kind() assets.Kind { return assets.KindAI }
func (al *AILoader) Name() string { return metadata.AILoader }

func (al *AILoader) CanHandle(raw *assets.RawAsset) bool {
	_, ok := al.factory(raw.String(metadata.PropType, ""))
	return ok
}

func (al *AILoader) Handle(name string, raw *assets.RawAsset) (assets.Asset, error) {
	typeName := raw.String(metadata.PropType, "")
	f, ok := al.factory(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: no AI type %s for '%s'", core.ErrLoaderNotFound, typeName, name)
	}
	return metadata.NewAIAsset(name, typeName, f()), nil
}
