// Package config handles repository configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/segmentio/encoding/json"
)

// Config represents repository configuration stored in .citeline/config.json.
type Config struct {
	TimelineHeadline string `json:"timeline_headline"` // Headline of the publications timeline
	DefaultVirus     string `json:"default_virus"`     // Virus named on the index page at "/"
}

const (
	CiteDir       = ".citeline"
	ConfigFile    = "config.json"
	ArticlesFile  = "articles.jsonl"
	CitationsFile = "citations.jsonl"
	CacheDir      = "cache"
	DBFile        = "corpus.db"
)

// Defaults for a fresh repository.
const (
	DefaultTimelineHeadline = "Zika Virus"
	DefaultVirus            = "zika"
)

// Default returns the configuration written by init.
func Default() *Config {
	return &Config{
		TimelineHeadline: DefaultTimelineHeadline,
		DefaultVirus:     DefaultVirus,
	}
}

// CitePath returns the path to the .citeline directory from a root path.
func CitePath(root string) string {
	return filepath.Join(root, CiteDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, CiteDir, ConfigFile)
}

// ArticlesPath returns the path to articles.jsonl from a root path.
func ArticlesPath(root string) string {
	return filepath.Join(root, CiteDir, ArticlesFile)
}

// CitationsPath returns the path to citations.jsonl from a root path.
func CitationsPath(root string) string {
	return filepath.Join(root, CiteDir, CitationsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, CiteDir, CacheDir)
}

// DBPath returns the path to corpus.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, CiteDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a citeline repository.
func IsRepository(root string) bool {
	info, err := os.Stat(CitePath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a citeline repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(ExpandPath(start))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a citeline repository (no %s directory found)", CiteDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root. Fields
// missing from the file take their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// keys maps config key names to their fields.
var keys = map[string]func(*Config) *string{
	"timeline_headline": func(c *Config) *string { return &c.TimelineHeadline },
	"default_virus":     func(c *Config) *string { return &c.DefaultVirus },
}

// ValidKeys returns the settable config keys in sorted order.
func ValidKeys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the value stored under key.
func (c *Config) Get(key string) (string, error) {
	field, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	return *field(c), nil
}

// Set validates and stores value under key.
func (c *Config) Set(key, value string) error {
	field, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	if err := validate(key, value); err != nil {
		return err
	}
	*field(c) = value
	return nil
}

func validate(key, value string) error {
	switch key {
	case "default_virus":
		if value == "" || strings.ContainsAny(value, "/?#") {
			return fmt.Errorf("invalid default_virus: %q (must be a non-empty path segment)", value)
		}
	case "timeline_headline":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("timeline_headline must not be empty")
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
