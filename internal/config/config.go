// Package config loads and persists qinter settings from
// ~/.qinter/config.yaml, with QINTER_* environment overrides applied on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DisplayConfig controls how rendered explanations are presented.
type DisplayConfig struct {
	MaxSuggestions int  `yaml:"max_suggestions"`
	MaxExamples    int  `yaml:"max_examples"`
	ShowPackInfo   bool `yaml:"show_pack_info"`
}

// Settings is the full qinter configuration.
type Settings struct {
	RegistryURL string        `yaml:"registry_url"`
	PacksDir    string        `yaml:"packs_dir"`
	AutoReload  bool          `yaml:"auto_reload"`
	Display     DisplayConfig `yaml:"display"`
	Debug       bool          `yaml:"debug"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		RegistryURL: "http://127.0.0.1:8000",
		PacksDir:    defaultPacksDir(),
		AutoReload:  false,
		Display: DisplayConfig{
			MaxSuggestions: 5,
			MaxExamples:    3,
			ShowPackInfo:   false,
		},
	}
}

// Path returns the location of the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".qinter", "config.yaml"), nil
}

// Load reads the config file, writing defaults if it does not exist, and
// applies environment overrides last so they always win.
func Load() (Settings, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path.
func LoadFrom(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First-run persistence is best effort; defaults still apply.
		_ = SaveTo(path, s)
	case err != nil:
		return s, fmt.Errorf("read config %s: %w", path, err)
	default:
		if uerr := yaml.Unmarshal(data, &s); uerr != nil {
			return Default(), fmt.Errorf("parse config %s: %w", path, uerr)
		}
	}

	applyEnvOverrides(&s)
	return s, nil
}

// Save writes settings to the default config path.
func Save(s Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, s)
}

// SaveTo writes settings as YAML, creating parent directories as needed.
func SaveTo(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Environment overrides, checked after the file load.
const (
	EnvRegistryURL = "QINTER_REGISTRY_URL"
	EnvPacksDir    = "QINTER_PACKS_DIR"
	EnvDebug       = "QINTER_DEBUG"
)

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv(EnvRegistryURL); v != "" {
		s.RegistryURL = v
	}
	if v := os.Getenv(EnvPacksDir); v != "" {
		s.PacksDir = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Debug = b
		}
	}
}

func defaultPacksDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".qinter", "packages")
}
