// Package config loads docchunk's run configuration: the soft chunk
// word budget, worker pool size, and output directory, from a config
// file, environment variables, and CLI flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the fully-resolved run configuration.
type Config struct {
	ChunkSize     int    `mapstructure:"chunk_size"`
	DocumentTitle string `mapstructure:"document_title"`
	OutDir        string `mapstructure:"out_dir"`
	Workers       int    `mapstructure:"workers"`
	LogLevel      string `mapstructure:"log_level"`
	FoldAccents   bool   `mapstructure:"fold_accents"`
}

// DefaultConfig returns docchunk's built-in defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 200,
		OutDir:    "./data",
		Workers:   4,
		LogLevel:  "info",
	}
}

// Manager owns the loaded configuration and its viper wiring.
type Manager struct {
	config Config
}

// NewManager loads configuration from cfgFile (if non-empty, otherwise
// ./docchunk.yaml when present) and environment variables prefixed
// DOCCHUNK_, which take precedence over the file; keys set by neither
// keep the built-in defaults.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{}
	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.config = cfg
	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("chunk_size", defaults.ChunkSize)
	viper.SetDefault("document_title", defaults.DocumentTitle)
	viper.SetDefault("out_dir", defaults.OutDir)
	viper.SetDefault("workers", defaults.Workers)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("fold_accents", defaults.FoldAccents)

	viper.SetEnvPrefix("DOCCHUNK")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docchunk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func (m *Manager) load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Get returns the currently loaded configuration.
func (m *Manager) Get() Config {
	return m.config
}

// WatchConfig enables hot-reloading: on change, the manager re-reads
// viper's state and re-unmarshals into Config.
func (m *Manager) WatchConfig(onChange func(Config)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := m.load()
		if err != nil {
			return
		}
		m.config = cfg
		if onChange != nil {
			onChange(cfg)
		}
	})
	viper.WatchConfig()
}
