package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in $XDG_CONFIG_HOME/citeline/config.yml.
type GlobalConfig struct {
	CorpusPath string `yaml:"corpus_path,omitempty"` // Repository used outside any repository tree
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "citeline"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// ErrNoRepository is returned when no repository is found and no corpus_path is set.
var ErrNoRepository = errors.New("no citeline repository found")

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	data, err := os.ReadFile(GlobalConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.CorpusPath != "" {
		cfg.CorpusPath = ExpandPath(cfg.CorpusPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ResolveRepository finds the repository containing start, falling back to
// the corpus_path from the global config.
func ResolveRepository(start string) (string, error) {
	root, err := FindRepository(start)
	if err == nil {
		return root, nil
	}

	cfg, gerr := LoadGlobalConfig()
	if gerr != nil {
		return "", gerr
	}
	if cfg.CorpusPath == "" {
		return "", fmt.Errorf("%w: %v", ErrNoRepository, err)
	}
	if !IsRepository(cfg.CorpusPath) {
		return "", fmt.Errorf("%w: corpus_path %s has no %s directory", ErrNoRepository, cfg.CorpusPath, CiteDir)
	}
	return cfg.CorpusPath, nil
}

// HelpfulConfigMessage returns a hint for when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No citeline repository found.

Run 'citeline init' in your corpus directory, or create %s to set a default corpus:
  mkdir -p %s
  echo 'corpus_path: /path/to/your/corpus' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
