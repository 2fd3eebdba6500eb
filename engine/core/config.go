package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

type RemoteConfig struct {
	// Broadcast target for compiler discovery.
	DiscoveryAddress string `toml:"discovery_address" yaml:"discovery_address"`
	DiscoveryPort    int    `toml:"discovery_port" yaml:"discovery_port"`
	HTTPPort         int    `toml:"http_port" yaml:"http_port"`
	TimeoutMillis    int    `toml:"timeout_ms" yaml:"timeout_ms"`
	// Route font compilation through the remote compiler instead of the local rasterizer.
	RemoteFonts bool `toml:"remote_fonts" yaml:"remote_fonts"`
}

type StoreConfig struct {
	RedisAddr  string `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB    int    `toml:"redis_db" yaml:"redis_db"`
	TTLSeconds int    `toml:"ttl_seconds" yaml:"ttl_seconds"`
	Prefix     string `toml:"prefix" yaml:"prefix"`
}

type BuildConfig struct {
	Output    string   `toml:"output" yaml:"output"`
	Workers   int      `toml:"workers" yaml:"workers"`
	Platforms []string `toml:"platforms" yaml:"platforms"`
}

type EffectConfig struct {
	// External effect compiler. Arguments may reference {input}, {output} and {platform}.
	Tool string   `toml:"tool" yaml:"tool"`
	Args []string `toml:"args" yaml:"args"`
}

type Config struct {
	ContentRoot       string `toml:"content_root" yaml:"content_root"`
	SourcePath        string `toml:"source_path" yaml:"source_path"`
	Platform          string `toml:"platform" yaml:"platform"`
	Production        bool   `toml:"production" yaml:"production"`
	HotReload         bool   `toml:"hot_reload" yaml:"hot_reload"`
	RawFormats        bool   `toml:"raw_formats" yaml:"raw_formats"`
	AllowSourceOnly   bool   `toml:"allow_source_only" yaml:"allow_source_only"`
	EmbeddedNamespace string `toml:"embedded_namespace" yaml:"embedded_namespace"`

	Log    LogConfig    `toml:"log" yaml:"log"`
	Remote RemoteConfig `toml:"remote" yaml:"remote"`
	Store  StoreConfig  `toml:"store" yaml:"store"`
	Build  BuildConfig  `toml:"build" yaml:"build"`
	Effect EffectConfig `toml:"effect" yaml:"effect"`
}

func DefaultConfig() *Config {
	return &Config{
		ContentRoot:       "content",
		HotReload:         true,
		RawFormats:        true,
		EmbeddedNamespace: "assetforge",
		Log: LogConfig{
			Level: "info",
		},
		Remote: RemoteConfig{
			DiscoveryAddress: "255.255.255.255",
			DiscoveryPort:    4321,
			HTTPPort:         8080,
			TimeoutMillis:    500,
		},
		Store: StoreConfig{
			TTLSeconds: 3600,
			Prefix:     "assets",
		},
		Build: BuildConfig{
			Output:  "compiled",
			Workers: 4,
		},
	}
}

// LoadConfig reads a TOML or YAML file on top of DefaultConfig. The format is
// picked from the file extension.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format '%s'", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ContentRoot == "" {
		return fmt.Errorf("content_root is required")
	}
	if c.Remote.DiscoveryPort <= 0 || c.Remote.DiscoveryPort > 65535 {
		return fmt.Errorf("invalid discovery_port %d", c.Remote.DiscoveryPort)
	}
	if c.Remote.HTTPPort <= 0 || c.Remote.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port %d", c.Remote.HTTPPort)
	}
	if c.Remote.TimeoutMillis <= 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	if c.Build.Workers <= 0 {
		return fmt.Errorf("build workers must be positive")
	}
	return nil
}

// Write encodes the configuration as TOML.
func (c *Config) Write(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
