// Package config loads prompt vault settings from defaults, an optional
// YAML file and PROMPT_VAULT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/prompt-vault/internal/catalog"
	"github.com/dpshade/prompt-vault/internal/storage"
	"github.com/dpshade/prompt-vault/internal/transfer"
)

// EnvPrefix prefixes every environment override, e.g.
// PROMPT_VAULT_CATALOG_URL
const EnvPrefix = "PROMPT_VAULT"

// Config is the full prompt vault configuration
type Config struct {
	Home     string            `mapstructure:"home" yaml:"home"`
	Backend  string            `mapstructure:"backend" yaml:"backend"`
	LogLevel string            `mapstructure:"log_level" yaml:"log_level"`
	Catalog  CatalogConfig     `mapstructure:"catalog" yaml:"catalog"`
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Import   transfer.Defaults `mapstructure:"import" yaml:"import"`
	Labels   LabelConfig       `mapstructure:"labels" yaml:"labels"`
}

// CatalogConfig locates the catalog document
type CatalogConfig struct {
	// URL is fetched when File is empty
	URL string `mapstructure:"url" yaml:"url"`
	// File is a local JSON or YAML catalog
	File    string        `mapstructure:"file" yaml:"file"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries uint          `mapstructure:"retries" yaml:"retries"`
	// Offline serves cached responses through the offline shim
	Offline bool `mapstructure:"offline" yaml:"offline"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LabelConfig holds the label normalizer tables
type LabelConfig struct {
	Acronyms   []string `mapstructure:"acronyms" yaml:"acronyms"`
	SmallWords []string `mapstructure:"small_words" yaml:"small_words"`
	// Literals are extra whole-word corrections kept exactly as written,
	// e.g. "iOS"
	Literals []string `mapstructure:"literals" yaml:"literals"`
}

// Formatter builds a label formatter from the configured tables
func (c LabelConfig) Formatter() *catalog.LabelFormatter {
	acronyms := c.Acronyms
	if len(acronyms) == 0 {
		acronyms = catalog.DefaultAcronyms
	}
	smallWords := c.SmallWords
	if len(smallWords) == 0 {
		smallWords = catalog.DefaultSmallWords
	}
	corrections := append([]catalog.Correction(nil), catalog.DefaultCorrections...)
	for _, lit := range c.Literals {
		if lit = strings.TrimSpace(lit); lit != "" {
			corrections = append(corrections, catalog.LiteralCorrection(lit))
		}
	}
	return catalog.NewLabelFormatter(acronyms, smallWords, corrections)
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	home, err := storage.DefaultDir()
	if err != nil {
		home = ".prompt-vault"
	}
	return &Config{
		Home:     home,
		Backend:  string(storage.KindFile),
		LogLevel: "info",
		Catalog: CatalogConfig{
			URL:     "http://127.0.0.1:8787/prompts.json",
			Timeout: 10 * time.Second,
			Retries: 3,
			Offline: true,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8787"},
		Import: transfer.DefaultDefaults(),
		Labels: LabelConfig{
			Acronyms:   append([]string(nil), catalog.DefaultAcronyms...),
			SmallWords: append([]string(nil), catalog.DefaultSmallWords...),
		},
	}
}

// LogFile is where the terminal UI writes its log
func (c *Config) LogFile() string {
	return filepath.Join(c.Home, "logs", "prompt-vault.log")
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config. An
// empty cfgFile searches for config.yaml in the working directory and in
// the default data directory.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	v := cm.v
	v.SetDefault("home", defaults.Home)
	v.SetDefault("backend", defaults.Backend)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("catalog.url", defaults.Catalog.URL)
	v.SetDefault("catalog.file", defaults.Catalog.File)
	v.SetDefault("catalog.timeout", defaults.Catalog.Timeout)
	v.SetDefault("catalog.retries", defaults.Catalog.Retries)
	v.SetDefault("catalog.offline", defaults.Catalog.Offline)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("import.tab", defaults.Import.Tab)
	v.SetDefault("import.section", defaults.Import.Section)
	v.SetDefault("import.category", defaults.Import.Category)
	v.SetDefault("labels.acronyms", defaults.Labels.Acronyms)
	v.SetDefault("labels.small_words", defaults.Labels.SmallWords)
	v.SetDefault("labels.literals", []string{})

	// Environment variables with PROMPT_VAULT_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(defaults.Home)
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// Set overrides one key, as command line flags do, and reloads
func (cm *Manager) Set(key string, value interface{}) error {
	cm.v.Set(key, value)
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// ConfigFile returns the file in use, or "" when running on defaults
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cm.reload()
	})
	cm.v.WatchConfig()
}

func (cm *Manager) reload() {
	cfg, err := cm.load()
	if err != nil {
		return
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// WriteDefault writes the default configuration to path
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Prompt Vault configuration
# Every key can be overridden with PROMPT_VAULT_<KEY>, e.g. PROMPT_VAULT_CATALOG_URL
# backend: file | sqlite | memory
# catalog.url defaults to the catalog of a local "prompt-vault serve". The
# server itself needs a real source: set catalog.file or point catalog.url
# at the published prompts.json.

`)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}
