// Package config provides hierarchical configuration management for bumpchanges using koanf.
// Configuration is loaded with priority: environment variables (BUMPCHANGES_*) > project config
// (.bumpchanges.yml) > defaults. A legacy .bumpchanges.json is read when no YAML file exists.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "BUMPCHANGES_"

// TimezoneEnv names the zone used for release dates, kept for workflows
// written against the original action.
const TimezoneEnv = "CHANGELOG_TIMEZONE"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the bumpchanges configuration
type Configuration struct {
	// Changelog is the changelog path relative to the repository root.
	Changelog string `koanf:"changelog" validate:"required"`

	// RepoURL is the base of compare and tag links. When unset it is derived
	// from GITHUB_SERVER_URL and GITHUB_REPOSITORY.
	RepoURL string `koanf:"repo_url" validate:"omitempty,url"`

	// Timezone is an IANA zone name used to date promoted releases.
	Timezone string `koanf:"timezone"`

	PrereleaseIdentifier string   `koanf:"prerelease_identifier" validate:"required,alphanum"`
	VersionFiles         []string `koanf:"version_files" validate:"dive,required"`
	AutomationActors     []string `koanf:"automation_actors" validate:"dive,required"`
	LogLevel             string   `koanf:"log_level" validate:"oneof=debug info notice warn warning error"`
	ProtectedPaths       []string `koanf:"protected_paths" validate:"dive,required"`

	// Sources records which layer last set each key.
	Sources map[string]ConfigSource `koanf:"-"`
	// UnknownKeys lists keys found in the project config that bumpchanges
	// does not recognize.
	UnknownKeys []string `koanf:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// Dir is the directory holding the project config (default: current directory).
	Dir string
	// ProjectConfigPath overrides the project config path (default: <Dir>/.bumpchanges.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from the project config in dir and the environment.
// Priority: Environment variables > Project config > Defaults
//
// Config paths:
//   - Project config: <dir>/.bumpchanges.yml
//   - Legacy project config: <dir>/.bumpchanges.json (read when no YAML exists)
func Load(dir string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{Dir: dir})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)
	sources := make(map[string]ConfigSource)

	loadDefaults(k)
	markSources(sources, k.Keys(), SourceDefault)

	project := koanf.New(".")
	if err := loadProjectConfig(project, opts, warningWriter); err != nil {
		return nil, err
	}
	if err := k.Merge(project); err != nil {
		return nil, fmt.Errorf("merging project config: %w", err)
	}
	markSources(sources, project.Keys(), SourceProject)

	environment := koanf.New(".")
	if err := loadEnvironmentConfig(environment); err != nil {
		return nil, err
	}
	if err := k.Merge(environment); err != nil {
		return nil, fmt.Errorf("merging environment config: %w", err)
	}
	markSources(sources, environment.Keys(), SourceEnv)

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	cfg.UnknownKeys = UnknownKeys(project.Keys())
	return cfg, nil
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
	if url := githubRepoURL(); url != "" {
		k.Set("repo_url", url)
	}
}

// githubRepoURL derives the repository URL from the variables every
// GitHub Actions runner exports.
func githubRepoURL() string {
	server := strings.TrimSuffix(os.Getenv("GITHUB_SERVER_URL"), "/")
	repo := os.Getenv("GITHUB_REPOSITORY")
	if server == "" || repo == "" {
		return ""
	}
	return server + "/" + repo
}

// loadProjectConfig loads the project config (YAML preferred, legacy JSON supported).
// Warns if both exist (YAML used, JSON ignored).
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions, warningWriter io.Writer) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	projectYAMLPath := ProjectConfigPath(dir)
	if opts.ProjectConfigPath != "" {
		projectYAMLPath = opts.ProjectConfigPath
	}
	legacyProjectPath := LegacyProjectConfigPath(dir)

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := loadYAMLConfig(k, projectYAMLPath); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		if legacyProjectExists && !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n\n", legacyProjectPath, projectYAMLPath)
		}
	} else if legacyProjectExists {
		if err := k.Load(file.Provider(legacyProjectPath), json.Parser()); err != nil {
			return fmt.Errorf("failed to load legacy project config %s: %w", legacyProjectPath, err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides. CHANGELOG_TIMEZONE
// sets the timezone unless BUMPCHANGES_TIMEZONE is also present.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if tz := os.Getenv(TimezoneEnv); tz != "" {
		k.Set("timezone", tz)
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.RepoURL = strings.TrimSuffix(cfg.RepoURL, "/")

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func markSources(sources map[string]ConfigSource, keys []string, src ConfigSource) {
	for _, key := range keys {
		sources[key] = src
	}
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys and
// splits list values on commas.
// Example: BUMPCHANGES_VERSION_FILES=a.py,b.toml -> version_files: [a.py b.toml]
func envTransform(key, value string) (string, interface{}) {
	name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	schema, err := GetKeySchema(name)
	if err != nil {
		return "", nil
	}
	if schema.Type == TypeList {
		return name, splitList(value)
	}
	return name, value
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Location resolves the configured timezone. An unknown zone yields UTC
// together with the lookup error so callers can warn and continue.
func (c *Configuration) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "UTC") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown timezone %q, using UTC: %w", c.Timezone, err)
	}
	return loc, nil
}

// Source reports which layer set key.
func (c *Configuration) Source(key string) ConfigSource {
	if src, ok := c.Sources[key]; ok {
		return src
	}
	return SourceDefault
}

// Values returns the effective settings keyed by their configuration key.
func (c *Configuration) Values() map[string]any {
	return map[string]any{
		"changelog":             c.Changelog,
		"repo_url":              c.RepoURL,
		"timezone":              c.Timezone,
		"prerelease_identifier": c.PrereleaseIdentifier,
		"version_files":         c.VersionFiles,
		"automation_actors":     c.AutomationActors,
		"log_level":             c.LogLevel,
		"protected_paths":       c.ProtectedPaths,
	}
}
