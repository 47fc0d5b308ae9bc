// Package cli tests the config init, show and keys commands.
// Related: internal/cli/config.go
// Tags: cli, config, init, show, keys

package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/bumpchanges/internal/config"
)

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := config.ProjectConfigPath(dir)

	res := runCLI(t, "config", "init", dir)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "created at")
	assert.Equal(t, config.GetDefaultConfigTemplate(), readFile(t, path))

	writeFile(t, dir, config.ProjectConfigFile, "changelog: HISTORY.md\n")
	res = runCLI(t, "config", "init", dir)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "exists at")
	assert.Equal(t, "changelog: HISTORY.md\n", readFile(t, path), "init must not overwrite without --force")

	writeFile(t, dir, config.LegacyProjectConfigFile, "{}")
	res = runCLI(t, "config", "init", dir, "--force")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "overwritten at")
	assert.Contains(t, res.stdout, config.LegacyProjectConfigFile+" is ignored")
	assert.Equal(t, config.GetDefaultConfigTemplate(), readFile(t, path))
}

func TestConfigShow(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), ".bumpchanges.yml", "changelog: HISTORY.md\nversion_files: [a.py]\n")

	res := runCLIWithEnv(t, map[string]string{"BUMPCHANGES_LOG_LEVEL": "debug"},
		"--config", cfgPath, "config", "show")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var values map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &values))
	assert.Equal(t, "HISTORY.md", values["changelog"])
	assert.Equal(t, []any{"a.py"}, values["version_files"])
	assert.Equal(t, "debug", values["log_level"])
	assert.Equal(t, "rc", values["prerelease_identifier"])
}

func TestConfigShow_JSONSources(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), ".bumpchanges.yml", "changelog: HISTORY.md\n")

	res := runCLIWithEnv(t, map[string]string{"CHANGELOG_TIMEZONE": "Europe/Berlin"},
		"--config", cfgPath, "config", "show", "--format", "json", "--sources")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var values map[string]struct {
		Value  any    `json:"value"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &values))
	assert.Equal(t, "project", values["changelog"].Source)
	assert.Equal(t, "env", values["timezone"].Source)
	assert.Equal(t, "Europe/Berlin", values["timezone"].Value)
	assert.Equal(t, "default", values["prerelease_identifier"].Source)
}

func TestConfigShow_InvalidFormat(t *testing.T) {
	res := runCLI(t, "config", "show", "--format", "ini")
	assert.Equal(t, ExitInvalidArguments, res.code)
}

func TestConfigKeys(t *testing.T) {
	res := runCLI(t, "config", "keys")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	for _, key := range config.KeyNames() {
		assert.Contains(t, res.stdout, key)
	}
	assert.Contains(t, res.stdout, "allowed: [debug info notice warn warning error]")
}

func TestUnknownConfigKeyWarns(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), ".bumpchanges.yml", "colour: blue\n")

	res := runCLI(t, "--config", cfgPath, "config", "show")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "::warning::unknown configuration key ignored key=colour")
}

func TestVersionCmd(t *testing.T) {
	res := runCLI(t, "version", "--plain")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "bumpchanges ")
	assert.Contains(t, res.stdout, "commit: ")
	assert.Contains(t, res.stdout, "platform: ")

	broken := writeFile(t, t.TempDir(), ".bumpchanges.yml", "log_level: [unclosed\n")
	res = runCLI(t, "--config", broken, "version")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, SourceURL)
}

func TestConfigInit_DefaultDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	res := runCLI(t, "config", "init")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(dir, config.ProjectConfigFile))
}
