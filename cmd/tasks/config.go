package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const appName = "tasks"

// Backends a store can persist to.
const (
	backendFile   = "file"
	backendSqlite = "sqlite"
	backendMemory = "memory"
)

var errBadConfig = errors.New("bad configuration")

// Config holds the settings of the program. Fields are filled, in increasing order of precedence, from defaults,
// the YAML config file, TASKS_* environment variables (including those set in tasks.env next to the config file),
// and command-line flags.
type Config struct {
	// Backend is one of file, sqlite, memory.
	Backend string `mapstructure:"backend"`

	// Dir holds the task list (file backend: <slot>.data; sqlite backend: tasks.db) and, by
	// default, the log file.
	Dir string `mapstructure:"dir"`

	// Slot names the task list within the backend, so that more than one list can share a directory.
	Slot string `mapstructure:"slot"`

	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Backend:  backendFile,
		Dir:      filepath.Join(home, "lib", appName),
		Slot:     "tasks",
		LogLevel: "warning",
	}
}

// DefaultConfigPath is $XDG_CONFIG_HOME/tasks/config.yaml, or ~/.config/tasks/config.yaml.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(appName, "config.yaml")
	}
	return filepath.Join(home, ".config", appName, "config.yaml")
}

// LoadConfig reads the config file at pathname, if it exists, and applies environment overrides.
func LoadConfig(pathname string) (Config, error) {
	cfg := DefaultConfig()

	envFile := filepath.Join(filepath.Dir(pathname), appName+".env")
	if _, err := os.Stat(envFile); err == nil {
		// Does not override variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil {
			return cfg, fmt.Errorf("%s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(appName)
	v.AutomaticEnv()
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("dir", cfg.Dir)
	v.SetDefault("slot", cfg.Slot)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_path", cfg.LogPath)

	if _, err := os.Stat(pathname); err == nil {
		v.SetConfigFile(pathname)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("%s: %w", pathname, err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", pathname, err)
	}
	return cfg.normalize()
}

// normalize expands ~, fills in derived defaults and validates.
func (cfg Config) normalize() (Config, error) {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch cfg.Backend {
	case backendFile, backendSqlite, backendMemory:
	default:
		return cfg, fmt.Errorf("backend %q: %w", cfg.Backend, errBadConfig)
	}
	if strings.TrimSpace(cfg.Slot) == "" {
		return cfg, fmt.Errorf("empty slot: %w", errBadConfig)
	}
	cfg.Dir = expandHome(cfg.Dir)
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.Dir, appName+".log")
	}
	cfg.LogPath = expandHome(cfg.LogPath)
	return cfg, nil
}

func expandHome(pathname string) string {
	if pathname != "~" && !strings.HasPrefix(pathname, "~/") {
		return pathname
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return pathname
	}
	return filepath.Join(home, strings.TrimPrefix(pathname, "~"))
}
