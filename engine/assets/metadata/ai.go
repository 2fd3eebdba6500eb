package metadata

import (
	"time"

	"github.com/spaghettifunk/assetforge/engine/assets"
)

// AIBehaviour is the runtime logic an AI asset carries.
type AIBehaviour interface {
	Update(elapsed time.Duration)
}

// AIFactory builds a fresh behaviour for each loaded AI asset.
type AIFactory func() AIBehaviour

// AIAsset binds a name to behaviour created by a registered factory.
type AIAsset struct {
	name string

	TypeName  string
	Behaviour AIBehaviour
}

func NewAIAsset(name, typeName string, behaviour AIBehaviour) *AIAsset {
	return &AIAsset{
		name:      name,
		TypeName:  typeName,
		Behaviour: behaviour,
	}
}

func (a *AIAsset) Name() string { return a.name }
func (a *AIAsset) Kind() assets.Kind { return assets.KindAI }
func (a *AIAsset) SourceOnly() bool { return false }

// CompiledOnly is true because AI assets only exist as declarations in code.
func (a *AIAsset) CompiledOnly() bool { return true }
