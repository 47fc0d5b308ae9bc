package errors

import "fmt"

// Common error messages for the bumpchanges CLI.
// These templates ensure consistent, actionable error messages.

// InvalidVersion creates an error for a version string that cannot be parsed.
func InvalidVersion(err error) *CLIError {
	return WrapWithMessage(err, Argument,
		"invalid version",
		"Versions look like 1.2.3, 1.2.3-rc.1 or a digit-led string such as 2024.1",
		"A leading 'v' is accepted and stripped",
	)
}

// UnknownBumpKind creates an error for an unsupported bump kind argument.
func UnknownBumpKind(err error) *CLIError {
	e := WrapWithMessage(err, Argument,
		"invalid bump kind",
		"Valid kinds: major, minor, patch, prerelease, exact",
	)
	e.Usage = "bumpchanges next-version <repo> <bump-kind> <prerelease> [exact-version]"
	return e
}

// MissingExactVersion creates an error when the exact bump kind has no version.
func MissingExactVersion() *CLIError {
	return NewArgumentErrorWithUsage(
		"the exact bump kind requires a version",
		"bumpchanges next-version <repo> exact false 1.2.3",
		"Pass the version as the fourth argument",
	)
}

// InvalidBoolArgument creates an error for a boolean argument that is not true or false.
func InvalidBoolArgument(name, value string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid %s: %q", name, value),
		"Use true or false",
	)
}

// NoBaselineVersion creates an error when no release tag can anchor a relative bump.
func NoBaselineVersion(err error) *CLIError {
	return WrapWithMessage(err, Data,
		"cannot compute the next version",
		"Tag the first release by hand, e.g. git tag v0.1.0",
		"Or run with the exact bump kind and an explicit version",
		"Free-form tags such as v2024.1 are never used as a baseline",
	)
}

// TagExists creates an error when the computed release tag is already taken.
func TagExists(err error) *CLIError {
	return WrapWithMessage(err, Data,
		"the next version is already released",
		"Pick a different bump kind or exact version",
		"List existing tags with: git tag --list 'v*'",
	)
}

// MissingUnreleasedSection creates an error for a changelog without an Unreleased section.
func MissingUnreleasedSection(path string, err error) *CLIError {
	return WrapWithMessage(err, Data,
		fmt.Sprintf("cannot promote %s", path),
		"Add a '## [Unreleased]' section above the newest release",
		"Record pending changes under it with '### Added', '### Fixed', ...",
	)
}

// NothingToRelease creates an error when the Unreleased section has no entries.
func NothingToRelease(path string, err error) *CLIError {
	return WrapWithMessage(err, Data,
		fmt.Sprintf("cannot promote %s", path),
		"Add at least one bullet under '## [Unreleased]' before releasing",
	)
}

// MissingRepoURL creates an error when the changelog links cannot be rebuilt.
func MissingRepoURL(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("cannot promote %s", path),
		"Pass the repository URL as the second argument",
		"Or set repo_url in .bumpchanges.yml (defaults to $GITHUB_SERVER_URL/$GITHUB_REPOSITORY)",
	)
}

// ReleaseOrder creates an error when the target version does not sort above the latest release.
func ReleaseOrder(path string, err error) *CLIError {
	return WrapWithMessage(err, Data,
		fmt.Sprintf("cannot promote %s", path),
		"Release versions must increase; compute one with 'bumpchanges next-version'",
		"Check the newest release with: bumpchanges changelog show --plain",
	)
}

// MalformedChangelog creates an error for a changelog that cannot be parsed or validated.
func MalformedChangelog(path string, err error) *CLIError {
	return WrapWithMessage(err, Data,
		fmt.Sprintf("malformed changelog %s", path),
		"Follow the Keep a Changelog layout: https://keepachangelog.com",
		"Run 'bumpchanges changelog check "+path+"' to see every problem",
	)
}

// AmbiguousVersionLiteral creates an error when a version file has zero or several candidate lines.
func AmbiguousVersionLiteral(err error) *CLIError {
	return WrapWithMessage(err, Data,
		"version files were left unchanged",
		"Each file must contain exactly one line such as __version__ = \"1.2.3\"",
		"Remove duplicate assignments or drop the file from version_files",
	)
}

// UnsafeVersionFile creates an error for a version file outside the repository or on a protected path.
func UnsafeVersionFile(err error) *CLIError {
	return WrapWithMessage(err, Argument,
		"version files were left unchanged",
		"List regular files inside the repository, relative to its root",
		"Paths matching protected_paths (default **/.git/**, **/.github/**) are refused",
	)
}

// NotATag creates an error for a ref that does not name a tag.
func NotATag(err error) *CLIError {
	return WrapWithMessage(err, Argument,
		"cannot resolve a release alias",
		"Run on tag events, passing GITHUB_REF (refs/tags/<tag>) or a bare tag name",
	)
}

// AliasAmbiguous creates an error when two tags spell the same newest version.
func AliasAmbiguous(err error) *CLIError {
	return WrapWithMessage(err, Data,
		"cannot resolve a release alias",
		"Delete one of the equivalent tags, e.g. git push --delete origin v1.00.0",
	)
}

// NotAMergedAutomationPR creates an error when the finalize step runs for the wrong pull request.
func NotAMergedAutomationPR(err error) *CLIError {
	return WrapWithMessage(err, Data,
		"refusing to publish a release",
		"Only merged pull requests from branches named automation-create-release-<version> are released",
		"Add the author to automation_actors if a person opens release pull requests",
	)
}

// EventPayloadError creates an error when the workflow event payload cannot be read.
func EventPayloadError(err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		"cannot read the workflow event",
		"Run inside a pull_request workflow, or pass --event-path",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"failed to load configuration",
		"Check .bumpchanges.yml for YAML syntax errors",
		"Create a commented template with: bumpchanges config init",
		"List valid keys with: bumpchanges config keys",
	)
}

// FileNotFound creates an error for a missing input file.
func FileNotFound(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("file not found: %s", path),
		"Check that the path is correct and relative to the working directory",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository(path string, err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		fmt.Sprintf("not a git repository: %s", path),
		"Check out the repository with full tag history (actions/checkout with fetch-depth: 0)",
		"Or pass the path of an existing repository",
	)
}
