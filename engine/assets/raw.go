package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

const (
	PropLoader         = "Loader"
	PropPlatformData   = "PlatformData"
	PropPlatform       = "Platform"
	PropData           = "Data"
	PropSourcedFromRaw = "SourcedFromRaw"
)

// RawAsset is the untyped property bag a load strategy produces and a loader
// consumes. It is never mutated after construction.
type RawAsset struct {
	properties map[string]Value
	compiled   bool
}

func NewRawAsset(properties map[string]Value, isCompiled bool) *RawAsset {
	if properties == nil {
		properties = make(map[string]Value)
	}
	return &RawAsset{
		properties: properties,
		compiled:   isCompiled,
	}
}

// NewCompiledRawAsset exposes a decoded compiled container through the same
// accessors as source data.
func NewCompiledRawAsset(c *compiled.CompiledAsset) *RawAsset {
	props := map[string]Value{
		PropLoader:       String(c.Loader),
		PropPlatformData: Null(),
	}
	if c.PlatformData != nil {
		props[PropPlatformData] = PlatformDataValue(c.PlatformData)
	}
	return NewRawAsset(props, true)
}

// PlatformDataValue converts compiled data into its property representation.
func PlatformDataValue(pd *compiled.PlatformData) Value {
	if pd == nil {
		return Null()
	}
	return Object(map[string]Value{
		PropPlatform: Integer(int64(pd.Platform)),
		PropData:     Bytes(pd.Data),
	})
}

func (r *RawAsset) IsCompiled() bool {
	return r.compiled
}

func (r *RawAsset) Property(key string) (Value, bool) {
	v, ok := r.properties[key]
	return v, ok
}

// Keys returns the property names in sorted order.
func (r *RawAsset) Keys() []string {
	keys := make([]string, 0, len(r.properties))
	for k := range r.properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Loader returns the loader discriminator stored in the data.
func (r *RawAsset) Loader() string {
	return r.String(PropLoader, "")
}

func (r *RawAsset) String(key string, def string) string {
	return Property(r, key, def)
}

func (r *RawAsset) Int(key string, def int64) int64 {
	return Property(r, key, def)
}

func (r *RawAsset) Float(key string, def float64) float64 {
	return Property(r, key, def)
}

func (r *RawAsset) Bool(key string, def bool) bool {
	return Property(r, key, def)
}

func (r *RawAsset) Bytes(key string) []byte {
	return Property[[]byte](r, key, nil)
}

func (r *RawAsset) Strings(key string) []string {
	return Property[[]string](r, key, nil)
}

func (r *RawAsset) Object(key string) map[string]Value {
	return Property[map[string]Value](r, key, nil)
}

// Property reads key as T, returning def when the key is missing, null, or not
// convertible. T may be string, int, int64, float64, bool, []byte, []string,
// map[string]Value or Value.
func Property[T any](r *RawAsset, key string, def T) T {
	v, ok := r.properties[key]
	if !ok || v.IsNull() {
		return def
	}

	var out interface{}
	switch any(def).(type) {
	case string:
		out, ok = v.AsString()
	case int64:
		out, ok = v.AsInt()
	case int:
		var i int64
		i, ok = v.AsInt()
		out = int(i)
	case float64:
		out, ok = v.AsFloat()
	case bool:
		out, ok = v.AsBool()
	case []byte:
		out, ok = v.AsBytes()
	case []string:
		out, ok = v.AsStrings()
	case map[string]Value:
		out, ok = v.Object, v.Kind == ObjectValue
	case Value:
		out = v
	default:
		return def
	}
	if !ok {
		return def
	}
	return out.(T)
}

// PlatformData decodes the PlatformData property, if present.
func (r *RawAsset) PlatformData() (*compiled.PlatformData, error) {
	v, ok := r.properties[PropPlatformData]
	if !ok || v.IsNull() {
		return nil, nil
	}
	if v.Kind != ObjectValue {
		return nil, fmt.Errorf("%w: PlatformData is a %s", core.ErrCorruptData, v.Kind)
	}

	pd := &compiled.PlatformData{}
	if p, ok := v.Object[PropPlatform]; ok && !p.IsNull() {
		ordinal, ok := p.AsInt()
		if !ok {
			return nil, fmt.Errorf("%w: platform is a %s", core.ErrCorruptData, p.Kind)
		}
		target, err := platform.FromOrdinal(ordinal)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrCorruptData, err)
		}
		pd.Platform = target
	}
	if d, ok := v.Object[PropData]; ok && !d.IsNull() {
		data, ok := d.AsBytes()
		if !ok {
			return nil, fmt.Errorf("%w: platform data is a %s", core.ErrCorruptData, d.Kind)
		}
		pd.Data = data
	}
	return pd, nil
}

// CompiledAsset converts the property bag back into a compiled container.
func (r *RawAsset) CompiledAsset() (*compiled.CompiledAsset, error) {
	pd, err := r.PlatformData()
	if err != nil {
		return nil, err
	}
	return &compiled.CompiledAsset{
		Loader:       r.Loader(),
		PlatformData: pd,
	}, nil
}

// Clone returns a deep copy.
func (r *RawAsset) Clone() *RawAsset {
	props := make(map[string]Value, len(r.properties))
	if err := copier.CopyWithOption(&props, &r.properties, copier.Option{DeepCopy: true}); err != nil {
		core.LogWarn("deep copy of raw asset failed, falling back to shallow copy: %s", err)
		for k, v := range r.properties {
			props[k] = v
		}
	}
	return NewRawAsset(props, r.compiled)
}

// With returns a copy with key set to v.
func (r *RawAsset) With(key string, v Value) *RawAsset {
	props := make(map[string]Value, len(r.properties)+1)
	for k, e := range r.properties {
		props[k] = e
	}
	props[key] = v
	return NewRawAsset(props, r.compiled)
}

// ParseJSONRawAsset reads a source asset document.
func ParseJSONRawAsset(data []byte) (*RawAsset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptData, err)
	}
	props := make(map[string]Value, len(doc))
	for k, e := range doc {
		v, err := jsonValue(e)
		if err != nil {
			return nil, err
		}
		props[k] = v
	}
	return NewRawAsset(props, false), nil
}

func jsonValue(e interface{}) (Value, error) {
	switch t := e.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: bad number %s", core.ErrCorruptData, t)
		}
		return Float(f), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, a := range t {
			v, err := jsonValue(a)
			if err != nil {
				return Null(), err
			}
			out[i] = v
		}
		return Array(out...), nil
	case map[string]interface{}:
		out := make(map[string]Value, len(t))
		for k, a := range t {
			v, err := jsonValue(a)
			if err != nil {
				return Null(), err
			}
			out[k] = v
		}
		return Object(out), nil
	default:
		return ValueOf(t)
	}
}

// MarshalJSON writes the source document form. Byte payloads become arrays of
// integers.
func (r *RawAsset) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(r.properties))
	for k, v := range r.properties {
		doc[k] = jsonInterface(v)
	}
	return json.Marshal(doc)
}

func jsonInterface(v Value) interface{} {
	switch v.Kind {
	case BytesValue:
		out := make([]int, len(v.Bytes))
		for i, b := range v.Bytes {
			out[i] = int(b)
		}
		return out
	case ArrayValue:
		out := make([]interface{}, len(v.Array))
		for i, e := range v.Array {
			out[i] = jsonInterface(e)
		}
		return out
	case ObjectValue:
		out := make(map[string]interface{}, len(v.Object))
		for k, e := range v.Object {
			out[k] = jsonInterface(e)
		}
		return out
	default:
		return v.Interface()
	}
}

// LoaderMatches compares loader discriminators, ignoring any namespace prefix
// so that "Engine.FontAssetLoader" and "FontAssetLoader" are the same loader.
func LoaderMatches(discriminator, loader string) bool {
	if discriminator == "" {
		return false
	}
	if i := strings.LastIndex(discriminator, "."); i >= 0 {
		discriminator = discriminator[i+1:]
	}
	return discriminator == loader
}
