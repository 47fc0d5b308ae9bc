// Package config tests layered loading, validation and the key registry.
// Related: internal/config/config.go, internal/config/validate.go, internal/config/schema.go
// Tags: config, koanf, validation, env

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GITHUB_SERVER_URL", "GITHUB_REPOSITORY", TimezoneEnv} {
		t.Setenv(name, "")
	}
	for _, name := range KeyNames() {
		t.Setenv(EnvPrefix+strings.ToUpper(name), "")
		os.Unsetenv(EnvPrefix + strings.ToUpper(name))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "CHANGELOG.md", cfg.Changelog)
	assert.Empty(t, cfg.RepoURL)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "rc", cfg.PrereleaseIdentifier)
	assert.Empty(t, cfg.VersionFiles)
	assert.Equal(t, []string{"github-actions[bot]"}, cfg.AutomationActors)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"**/.git/**", "**/.github/**"}, cfg.ProtectedPaths)
	assert.Equal(t, SourceDefault, cfg.Source("changelog"))
}

func TestLoad_GitHubRepoURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_SERVER_URL", "https://github.example.com/")
	t.Setenv("GITHUB_REPOSITORY", "acme/widget")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://github.example.com/acme/widget", cfg.RepoURL)
}

func TestLoad_ProjectConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ProjectConfigFile, `changelog: docs/CHANGES.md
repo_url: https://github.com/acme/widget/
prerelease_identifier: beta
version_files:
  - src/widget/__init__.py
  - plugin.yml
log_level: DEBUG
colour: blue
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "docs/CHANGES.md", cfg.Changelog)
	assert.Equal(t, "https://github.com/acme/widget", cfg.RepoURL)
	assert.Equal(t, "beta", cfg.PrereleaseIdentifier)
	assert.Equal(t, []string{"src/widget/__init__.py", "plugin.yml"}, cfg.VersionFiles)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"colour"}, cfg.UnknownKeys)
	assert.Equal(t, SourceProject, cfg.Source("changelog"))
	assert.Equal(t, SourceDefault, cfg.Source("timezone"))
}

func TestLoad_LegacyJSON(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, LegacyProjectConfigFile, `{"changelog": "HISTORY.md", "automation_actors": ["release-bot"]}`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "HISTORY.md", cfg.Changelog)
	assert.Equal(t, []string{"release-bot"}, cfg.AutomationActors)
}

func TestLoad_YAMLWinsOverLegacyJSON(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ProjectConfigFile, "changelog: FROM_YAML.md\n")
	writeFile(t, dir, LegacyProjectConfigFile, `{"changelog": "FROM_JSON.md"}`)

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{Dir: dir, WarningWriter: &warnings})
	require.NoError(t, err)
	assert.Equal(t, "FROM_YAML.md", cfg.Changelog)
	assert.Contains(t, warnings.String(), "Legacy JSON config found")

	warnings.Reset()
	_, err = LoadWithOptions(LoadOptions{Dir: dir, WarningWriter: &warnings, SkipWarnings: true})
	require.NoError(t, err)
	assert.Empty(t, warnings.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ProjectConfigFile, "changelog: FROM_YAML.md\ntimezone: Europe/Berlin\n")

	t.Setenv("BUMPCHANGES_CHANGELOG", "FROM_ENV.md")
	t.Setenv("BUMPCHANGES_VERSION_FILES", "a.py, b.toml,,")
	t.Setenv("BUMPCHANGES_NOT_A_KEY", "ignored")
	t.Setenv(TimezoneEnv, "Asia/Tokyo")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "FROM_ENV.md", cfg.Changelog)
	assert.Equal(t, []string{"a.py", "b.toml"}, cfg.VersionFiles)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, SourceEnv, cfg.Source("changelog"))
	assert.Equal(t, SourceEnv, cfg.Source("timezone"))
}

func TestLoad_PrefixedTimezoneBeatsLegacyVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv(TimezoneEnv, "Asia/Tokyo")
	t.Setenv("BUMPCHANGES_TIMEZONE", "Europe/Paris")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		yaml      string
		wantField string
		wantMsg   string
	}{
		"bad log level": {
			yaml:      "log_level: loud\n",
			wantField: "log_level",
			wantMsg:   "must be one of",
		},
		"bad repo url": {
			yaml:      "repo_url: not a url\n",
			wantField: "repo_url",
			wantMsg:   "must be a URL",
		},
		"empty changelog": {
			yaml:      "changelog: \"\"\n",
			wantField: "changelog",
			wantMsg:   "is required",
		},
		"punctuation in identifier": {
			yaml:      "prerelease_identifier: rc-1\n",
			wantField: "prerelease_identifier",
			wantMsg:   "letters and digits",
		},
		"empty version file": {
			yaml:      "version_files: [\"\"]\n",
			wantField: "version_files[0]",
			wantMsg:   "is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			writeFile(t, dir, ProjectConfigFile, tt.yaml)

			_, err := Load(dir)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Contains(t, verr.Message, tt.wantMsg)
		})
	}
}

func TestLoad_YAMLSyntaxError(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ProjectConfigFile, "changelog: CHANGELOG.md\nversion_files: [a, b\n")

	_, err := Load(dir)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Positive(t, verr.Line)
}

func TestValidateYAMLSyntax(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := map[string]struct {
		path    string
		wantErr bool
	}{
		"missing file": {path: filepath.Join(dir, "missing.yml")},
		"empty file":   {path: writeFile(t, dir, "empty.yml", "  \n")},
		"valid":        {path: writeFile(t, dir, "valid.yml", "changelog: CHANGELOG.md\n")},
		"bad indent":   {path: writeFile(t, dir, "bad.yml", "a:\n  b: 1\n c: 2\n"), wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := ValidateYAMLSyntax(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLocation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		zone    string
		want    *time.Location
		wantErr bool
	}{
		"empty":   {zone: "", want: time.UTC},
		"utc":     {zone: "utc", want: time.UTC},
		"unknown": {zone: "Mars/Olympus_Mons", want: time.UTC, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := &Configuration{Timezone: tt.zone}
			loc, err := cfg.Location()
			assert.Equal(t, tt.want, loc)
			if tt.wantErr {
				assert.ErrorContains(t, err, "Mars/Olympus_Mons")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSchema(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"b", "z"}, UnknownKeys([]string{"z", "changelog", "b", "log_level"}))
	assert.Contains(t, KeyNames(), "version_files")

	_, err := GetKeySchema("nope")
	assert.EqualError(t, err, "unknown configuration key: nope")

	assert.NoError(t, ValidateValue("log_level", "notice"))
	assert.NoError(t, ValidateValue("changelog", "anything"))
	assert.ErrorContains(t, ValidateValue("log_level", "trace"), "valid options")

	defaults := GetDefaults()
	assert.NotContains(t, defaults, "repo_url")
	actors := defaults["automation_actors"].([]string)
	actors[0] = "mutated"
	assert.Equal(t, "github-actions[bot]", GetDefaults()["automation_actors"].([]string)[0])
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ProjectConfigFile, GetDefaultConfigTemplate())

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.UnknownKeys)
	assert.Equal(t, "CHANGELOG.md", cfg.Changelog)
	assert.Equal(t, []string{"**/.git/**", "**/.github/**"}, cfg.ProtectedPaths)
}

func TestValuesCoversKnownKeys(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	values := cfg.Values()
	for _, key := range KeyNames() {
		assert.Contains(t, values, key)
	}
	assert.Len(t, values, len(KeyNames()))
	assert.Equal(t, "rc", values["prerelease_identifier"])
}
