// Package cli tests the promote-changelog release step.
// Related: internal/cli/promote.go
// Tags: cli, promote, changelog, outputs

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unreleasedChangelog = `# Changelog

All notable changes to this project will be documented in this file.

## [Unreleased]

### Added

- Thing

## [1.1.0] - 2024-01-01

### Fixed

- Bug

[Unreleased]: https://github.com/acme/widget/compare/v1.1.0...HEAD
[1.1.0]: https://github.com/acme/widget/releases/tag/v1.1.0
`

func TestPromote(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "CHANGELOG.md", unreleasedChangelog)
	bodyFile := filepath.Join(dir, "body.md")

	res := runCLIWithEnv(t, map[string]string{
		"GITHUB_ACTOR":    "octocat",
		"GITHUB_REF_NAME": "main",
		"BUMP_TYPE":       "minor",
	}, "promote-changelog", path, "https://github.com/acme/widget", "1.2.0",
		"--date", "2024-02-01", "--body-file", bodyFile)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	content := readFile(t, path)
	assert.Contains(t, content, "## [Unreleased]\n\n## [1.2.0] - 2024-02-01\n\n### Added\n\n- Thing\n")
	assert.Contains(t, content, "[Unreleased]: https://github.com/acme/widget/compare/v1.2.0...HEAD\n")
	assert.Contains(t, content, "[1.2.0]: https://github.com/acme/widget/compare/v1.1.0...v1.2.0\n")

	assert.Equal(t, "1.2.0", res.outputs["version"])
	assert.Equal(t, "Update CHANGELOG for version `1.2.0`", res.outputs["commit_message"])
	assert.Equal(t, "Prepare for version `1.2.0`", res.outputs["pr_title"])
	assert.Equal(t, bodyFile, res.outputs["pr_bodyfile"])
	assert.Contains(t, res.outputs["pr_body"], "| Actor | @octocat |")
	assert.Contains(t, res.outputs["pr_body"], "| Bump Type | `minor` |")

	body := readFile(t, bodyFile)
	assert.True(t, strings.HasPrefix(body, "Update CHANGELOG in preparation for release **1.2.0**."))
	assert.Contains(t, body, "- Thing")
	assert.Contains(t, res.stderr, "::notice::changelog promoted")
}

func TestPromote_RepoURLFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "CHANGELOG.md", unreleasedChangelog)

	res := runCLIWithEnv(t, map[string]string{
		"GITHUB_SERVER_URL": "https://github.example.com/",
		"GITHUB_REPOSITORY": "acme/gadget",
		"GITHUB_WORKSPACE":  dir,
	}, "promote-changelog", path, "", "v1.2.0", "--date", "2024-02-01")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	assert.Contains(t, readFile(t, path), "[1.2.0]: https://github.example.com/acme/gadget/compare/v1.1.0...v1.2.0\n")

	bodyFile := res.outputs["pr_bodyfile"]
	assert.Equal(t, dir, filepath.Dir(bodyFile))
	_, err := os.Stat(bodyFile)
	assert.NoError(t, err)
}

func TestPromote_Refusals(t *testing.T) {
	tests := map[string]struct {
		content  string
		args     []string
		wantCode int
		wantErr  string
	}{
		"nothing to release": {
			content:  "# Changelog\n\n## [Unreleased]\n\n## [1.1.0] - 2024-01-01\n\n### Fixed\n\n- Bug\n",
			args:     []string{"1.2.0"},
			wantCode: ExitValidationFailed,
			wantErr:  "cannot promote",
		},
		"version not newer": {
			content:  unreleasedChangelog,
			args:     []string{"1.0.5"},
			wantCode: ExitValidationFailed,
			wantErr:  "cannot promote",
		},
		"invalid version": {
			content:  unreleasedChangelog,
			args:     []string{"not-a-version"},
			wantCode: ExitInvalidArguments,
			wantErr:  "invalid version",
		},
		"invalid date": {
			content:  unreleasedChangelog,
			args:     []string{"1.2.0", "--date", "01/02/2024"},
			wantCode: ExitInvalidArguments,
			wantErr:  "invalid --date",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "CHANGELOG.md", tt.content)

			args := append([]string{"promote-changelog", path, "https://github.com/acme/widget"}, tt.args...)
			args = append(args, "--body-file", filepath.Join(dir, "body.md"))
			res := runCLI(t, args...)

			assert.Equal(t, tt.wantCode, res.code)
			assert.Contains(t, res.stderr, tt.wantErr)
			assert.Equal(t, tt.content, readFile(t, path), "changelog must be left untouched")
			assert.Empty(t, res.outputs)
		})
	}
}

func TestPromote_NoRepoURL(t *testing.T) {
	dir := t.TempDir()
	content := "# Changelog\n\n## [Unreleased]\n\n- New\n\n## [1.1.0] - 2024-01-01\n\n- Old\n\n" +
		"[Unreleased]: https://example.com/diff/v1.1.0..HEAD\n"
	path := writeFile(t, dir, "CHANGELOG.md", content)

	res := runCLI(t, "promote-changelog", path, "", "1.2.0",
		"--date", "2024-02-01", "--body-file", filepath.Join(dir, "body.md"))

	assert.Equal(t, ExitInvalidArguments, res.code)
	assert.Contains(t, res.stderr, "no repository URL")
	assert.Equal(t, content, readFile(t, path), "changelog must be left untouched")
	assert.Empty(t, res.outputs)
}

func TestPromote_MissingChangelog(t *testing.T) {
	res := runCLI(t, "promote-changelog", filepath.Join(t.TempDir(), "CHANGELOG.md"), "", "1.0.0", "--date", "2024-01-01")
	assert.Equal(t, ExitMissingDependencies, res.code)
}
