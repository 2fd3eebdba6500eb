package metadata

import (
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets"
)

// Flattened property keys used by INI sourced configuration assets.
const (
	PropGroupCount = "GroupCount"
)

func groupNameKey(i int) string { return fmt.Sprintf("GroupName%d", i) }
func groupKeyCountKey(i int) string { return fmt.Sprintf("GroupKeyCount%d", i) }
func groupKeyNameKey(i, k int) string { return fmt.Sprintf("GroupKey%dKeyName%d", i, k) }
func groupKeyTypeKey(i, k int) string { return fmt.Sprintf("GroupKey%dKeyType%d", i, k) }
func groupKeyValueKey(i, k int) string { return fmt.Sprintf("GroupKey%dKeyValue%d", i, k) }

type Setting struct {
	Key   string
	Value assets.Value
}

type SettingGroup struct {
	Name     string
	Settings []Setting
}

// ConfigurationAsset keeps groups and keys in source order.
type ConfigurationAsset struct {
	name   string
	Groups []SettingGroup
}

func NewConfigurationAsset(name string, groups []SettingGroup) *ConfigurationAsset {
	return &ConfigurationAsset{name: name, Groups: groups}
}

func (c *ConfigurationAsset) Name() string { return c.name }
func (c *ConfigurationAsset) Kind() assets.Kind { return assets.KindConfiguration }
func (c *ConfigurationAsset) SourceOnly() bool { return false }
func (c *ConfigurationAsset) CompiledOnly() bool { return false }

func (c *ConfigurationAsset) GroupNames() []string {
	names := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		names[i] = g.Name
	}
	return names
}

func (c *ConfigurationAsset) Setting(group, key string) (assets.Value, bool) {
	for _, g := range c.Groups {
		if g.Name != group {
			continue
		}
		for _, s := range g.Settings {
			if s.Key == key {
				return s.Value, true
			}
		}
	}
	return assets.Value{}, false
}

// Set replaces or appends a setting, creating the group when needed.
func (c *ConfigurationAsset) Set(group, key string, v assets.Value) {
	for gi := range c.Groups {
		g := &c.Groups[gi]
		if g.Name != group {
			continue
		}
		for si := range g.Settings {
			if g.Settings[si].Key == key {
				g.Settings[si].Value = v
				return
			}
		}
		g.Settings = append(g.Settings, Setting{Key: key, Value: v})
		return
	}
	c.Groups = append(c.Groups, SettingGroup{Name: group, Settings: []Setting{{Key: key, Value: v}}})
}

// ConfigSetting reads a typed setting with a fallback.
func ConfigSetting[T any](c *ConfigurationAsset, group, key string, def T) T {
	v, ok := c.Setting(group, key)
	if !ok {
		return def
	}
	raw := assets.NewRawAsset(map[string]assets.Value{"v": v}, false)
	return assets.Property(raw, "v", def)
}

func valueType(v assets.Value) string {
	switch v.Kind {
	case assets.IntegerValue:
		return "int"
	case assets.FloatValue:
		return "float"
	case assets.BoolValue:
		return "bool"
	default:
		return "string"
	}
}

// FlattenGroups writes groups as flat Group* properties.
func FlattenGroups(groups []SettingGroup) map[string]assets.Value {
	props := map[string]assets.Value{
		PropGroupCount: assets.Integer(int64(len(groups))),
	}
	for i, g := range groups {
		props[groupNameKey(i)] = assets.String(g.Name)
		props[groupKeyCountKey(i)] = assets.Integer(int64(len(g.Settings)))
		for k, s := range g.Settings {
			props[groupKeyNameKey(i, k)] = assets.String(s.Key)
			props[groupKeyTypeKey(i, k)] = assets.String(valueType(s.Value))
			props[groupKeyValueKey(i, k)] = s.Value
		}
	}
	return props
}

// UnflattenGroups rebuilds groups from flat Group* properties.
func UnflattenGroups(raw *assets.RawAsset) ([]SettingGroup, error) {
	count := int(raw.Int(PropGroupCount, 0))
	groups := make([]SettingGroup, 0, count)
	for i := 0; i < count; i++ {
		name, ok := raw.Property(groupNameKey(i))
		if !ok {
			return nil, fmt.Errorf("missing %s", groupNameKey(i))
		}
		groupName, _ := name.AsString()
		g := SettingGroup{Name: groupName}

		keys := int(raw.Int(groupKeyCountKey(i), 0))
		for k := 0; k < keys; k++ {
			key := raw.String(groupKeyNameKey(i, k), "")
			if key == "" {
				return nil, fmt.Errorf("missing %s", groupKeyNameKey(i, k))
			}
			v, _ := raw.Property(groupKeyValueKey(i, k))
			g.Settings = append(g.Settings, Setting{Key: key, Value: v})
		}
		groups = append(groups, g)
	}
	return groups, nil
}
