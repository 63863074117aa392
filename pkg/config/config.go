// Package config handles loading, validating and saving the application
// configuration. Settings come from a YAML file in the per-user config
// directory with sensible built-in defaults; CLI flags and the WAYPKG_URL
// environment variable take precedence over the file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/glorpus-work/waypkg/pkg/errors"
	"github.com/glorpus-work/waypkg/pkg/fsutil"
	"github.com/glorpus-work/waypkg/pkg/platform"
	"github.com/glorpus-work/waypkg/pkg/remote"
	"gopkg.in/yaml.v3"
)

// DefaultArchiveURL is the flat package mirror queried when neither a flag,
// the environment nor the config file names one.
const DefaultArchiveURL = "https://archive.archlinux.org/packages/.all/"

// EnvArchiveURL overrides the archive base URL when no --url flag is given.
const EnvArchiveURL = "WAYPKG_URL"

// Config represents the application configuration.
type Config struct {
	// ArchiveURL is the base URL of the flat package archive. Must end
	// with a slash.
	ArchiveURL string `yaml:"archive_url"`

	// HTTPTimeout applies to every header probe and download.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Architectures filters search results; empty means unfiltered.
	Architectures []string `yaml:"architectures"`

	// CacheDir holds the cached archive index. Empty selects the per-user
	// cache directory.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		ArchiveURL:    DefaultArchiveURL,
		HTTPTimeout:   remote.DefaultTimeout,
		Architectures: platform.DefaultArchitectures(),
		LogLevel:      "info",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := fsutil.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from a file. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return os.WriteFile(path, data, fsutil.FileModeDefault)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.ArchiveURL, "/") {
		return errors.Wrapf(errors.ErrConfigValidation, "archive_url %q must end with a slash", c.ArchiveURL)
	}
	if c.HTTPTimeout <= 0 {
		return errors.Wrap(errors.ErrConfigValidation, "http_timeout must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown log_level %q", c.LogLevel)
	}
	return nil
}

// IndexCacheDir returns the directory holding the cached index, resolving
// the per-user default when none is configured.
func (c *Config) IndexCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return fsutil.CacheDir()
}

// ToMap flattens the configuration for display, keyed by YAML field name.
func (c *Config) ToMap() map[string]string {
	return map[string]string{
		"archive_url":   c.ArchiveURL,
		"http_timeout":  c.HTTPTimeout.String(),
		"architectures": strings.Join(c.Architectures, ", "),
		"cache_dir":     c.CacheDir,
		"log_level":     c.LogLevel,
	}
}

// String renders the configuration as sorted key: value lines.
func (c *Config) String() string {
	m := c.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, m[k])
	}
	return b.String()
}

func (c *Config) applyDefaults() {
	if c.ArchiveURL == "" {
		c.ArchiveURL = DefaultArchiveURL
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = remote.DefaultTimeout
	}
	if c.Architectures == nil {
		c.Architectures = platform.DefaultArchitectures()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
