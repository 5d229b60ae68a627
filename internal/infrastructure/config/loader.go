package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/installez/assets"
	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/ports"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath     = "INSTALLEZ_CONFIG"
	EnvPackageManager = "INSTALLEZ_PACKAGE_MANAGER"
	EnvBridgeAddr     = "INSTALLEZ_BRIDGE_ADDR"
	EnvHistoryEnabled = "INSTALLEZ_HISTORY"
	EnvLogLevel       = "INSTALLEZ_LOG_LEVEL"
)

// FileLoader loads YAML configuration from ~/.installez/config.yaml (overridable via INSTALLEZ_CONFIG).
type FileLoader struct {
	overridePath string
	dotenvLoaded bool
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	l.loadDotenv()

	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("create config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
		data = assets.DefaultConfigYAML
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return applyEnv(cfg), nil
}

// Path resolves the config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".installez", "config.yaml")
}

// loadDotenv reads ./.env once; variables already set win.
func (l *FileLoader) loadDotenv() {
	if l.dotenvLoaded {
		return
	}
	l.dotenvLoaded = true
	_ = godotenv.Load()
}

// Parse decodes YAML on top of the embedded defaults.
func Parse(data []byte) (domain.Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return domain.Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

// Defaults returns the embedded default configuration.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("embedded defaults: %w", err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg domain.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.PackageManager.Executable == "" {
		cfg.PackageManager.Executable = domain.DefaultExecutable
	}
	if cfg.PackageManager.NotFoundMarker == "" {
		cfg.PackageManager.NotFoundMarker = domain.DefaultNotFoundMarker
	}
	if cfg.PackageManager.TermsMarker == "" {
		cfg.PackageManager.TermsMarker = domain.DefaultTermsMarker
	}
	if cfg.Bridge.Addr == "" {
		cfg.Bridge.Addr = domain.DefaultBridgeAddr
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(userHomeDir(), ".installez", "history.db")
	}
	cfg.History.Path = expandPath(cfg.History.Path)
	if cfg.Executor.Timeout < 0 {
		cfg.Executor.Timeout = 0
	}
	return cfg
}

func applyEnv(cfg domain.Config) domain.Config {
	if v := os.Getenv(EnvPackageManager); v != "" {
		cfg.PackageManager.Executable = v
	}
	if v := os.Getenv(EnvBridgeAddr); v != "" {
		cfg.Bridge.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	switch strings.ToLower(os.Getenv(EnvHistoryEnabled)) {
	case "1", "true", "yes":
		cfg.History.Enabled = true
	case "0", "false", "no":
		cfg.History.Enabled = false
	}
	return cfg
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
