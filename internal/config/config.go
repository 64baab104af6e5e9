// Package config manages persistent settings in JSON files. Keys are written
// as "section.name"; each section is a top-level object in the file. Keys
// shared by every project (such as the GitHub token) live in a global file,
// all others in a per-project file in the working directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/holonoms/ghtree/internal/filetree"
	"github.com/holonoms/ghtree/internal/hierarchy"
)

const (
	KeyToken   = "github.token"
	KeyAPIURL  = "github.api_url"
	KeySort    = "view.sort"
	KeyStyle   = "view.style"
	KeyIcons   = "view.icons"
	KeyExclude = "filter.exclude"

	// ProjectFile is the name of the per-project settings file.
	ProjectFile = ".ghtree"
)

// Key describes a supported setting.
type Key struct {
	Name   string
	Global bool
	Usage  string
	// Secret values are masked when listed.
	Secret   bool
	validate func(string) error
}

// Keys lists every supported setting.
var Keys = []Key{
	{Name: KeyToken, Global: true, Secret: true, Usage: "GitHub personal access token"},
	{Name: KeyAPIURL, Usage: "GitHub API root (for GitHub Enterprise)", validate: validateURL},
	{Name: KeySort, Usage: "default sort: " + strings.Join(hierarchy.PolicyNames(), ", "), validate: validateSort},
	{Name: KeyStyle, Usage: "default style: " + strings.Join(filetree.StyleNames(), ", "), validate: validateStyle},
	{Name: KeyIcons, Usage: "show icons in plain output (true/false)", validate: validateBool},
	{Name: KeyExclude, Usage: "comma separated gitignore patterns to exclude"},
}

// LookupKey returns the description of a supported key.
func LookupKey(name string) (Key, bool) {
	i := slices.IndexFunc(Keys, func(k Key) bool { return k.Name == name })
	if i < 0 {
		return Key{}, false
	}
	return Keys[i], true
}

// Validate checks that value is acceptable for key.
func Validate(key, value string) error {
	k, ok := LookupKey(key)
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if k.validate == nil {
		return nil
	}
	if err := k.validate(value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Config manages application configuration, automatically storing values in either
// global or project-specific locations based on the key.
type Config struct {
	globalPath  string
	projectPath string
	global      map[string]map[string]string
	project     map[string]map[string]string
}

// New creates a new Config instance. If projectDir is empty, only global config
// is used. Global config is stored in ~/.config/ghtree/config.json, while
// project config is stored in .ghtree in the project directory.
func New(projectDir string) (*Config, error) {
	globalDir, err := getGlobalConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine global config path: %w", err)
	}

	config := &Config{
		globalPath: filepath.Join(globalDir, "config.json"),
		global:     make(map[string]map[string]string),
		project:    make(map[string]map[string]string),
	}

	if err := config.load(config.globalPath, config.global); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}

	if projectDir != "" {
		config.projectPath = filepath.Join(projectDir, ProjectFile)
		if err := config.load(config.projectPath, config.project); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load project config: %w", err)
		}
	}

	return config, nil
}

// GlobalPath returns the location of the global config file.
func (c *Config) GlobalPath() string {
	return c.globalPath
}

// Has checks if a configuration key exists
func (c *Config) Has(key string) bool {
	section, name := splitKey(key)
	_, exists := c.store(key)[section][name]
	return exists
}

// Get retrieves a configuration value. Returns empty string if not found.
func (c *Config) Get(key string) string {
	section, name := splitKey(key)
	return c.store(key)[section][name]
}

// GetBool retrieves a boolean value, falling back to def when unset or
// malformed.
func (c *Config) GetBool(key string, def bool) bool {
	v, err := strconv.ParseBool(c.Get(key))
	if err != nil {
		return def
	}
	return v
}

// GetList retrieves a comma separated value as a list.
func (c *Config) GetList(key string) []string {
	var out []string
	for _, v := range strings.Split(c.Get(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Set stores a configuration value and persists it to the appropriate location
func (c *Config) Set(key, value string) error {
	section, name := splitKey(key)
	data := c.store(key)
	if _, exists := data[section]; !exists {
		data[section] = make(map[string]string)
	}
	data[section][name] = value
	return c.save(key)
}

// Delete removes a configuration value
func (c *Config) Delete(key string) error {
	section, name := splitKey(key)
	data := c.store(key)
	if sectionData, exists := data[section]; exists {
		delete(sectionData, name)
		if len(sectionData) == 0 {
			delete(data, section)
		}
	}
	return c.save(key)
}

// GetAllKeys returns all configuration keys, sorted.
func (c *Config) GetAllKeys() []string {
	var keys []string
	for _, data := range []map[string]map[string]string{c.global, c.project} {
		for section, sectionData := range data {
			for name := range sectionData {
				keys = append(keys, section+"."+name)
			}
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// IsGlobalKey checks if a key is stored in global config
func (c *Config) IsGlobalKey(key string) bool {
	k, ok := LookupKey(key)
	return ok && k.Global
}

// MARK: Internal helper functions

func splitKey(key string) (section, name string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return "", key
	}
	return parts[0], parts[1]
}

func (c *Config) store(key string) map[string]map[string]string {
	if c.IsGlobalKey(key) {
		return c.global
	}
	return c.project
}

func (c *Config) load(path string, data map[string]map[string]string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, &data)
}

func (c *Config) save(key string) error {
	if c.IsGlobalKey(key) {
		// The global file may hold a token.
		return write(c.globalPath, c.global, 0o600)
	}
	if c.projectPath == "" {
		return fmt.Errorf("no project directory for %s", key)
	}
	return write(c.projectPath, c.project, 0o644)
}

func write(path string, data map[string]map[string]string, perm os.FileMode) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func getGlobalConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin", "linux", "freebsd", "openbsd", "netbsd":
		if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
			configDir = xdgHome
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}

	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}

	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return filepath.Join(configDir, "ghtree"), nil
}

// MARK: Validators

func validateSort(v string) error {
	_, err := hierarchy.ParseSortPolicy(v)
	return err
}

func validateStyle(v string) error {
	_, err := filetree.ParseStyle(v)
	return err
}

func validateBool(v string) error {
	if _, err := strconv.ParseBool(v); err != nil {
		return fmt.Errorf("want true or false")
	}
	return nil
}

func validateURL(v string) error {
	if !strings.HasPrefix(v, "https://") && !strings.HasPrefix(v, "http://") {
		return fmt.Errorf("want an http(s) URL")
	}
	return nil
}
