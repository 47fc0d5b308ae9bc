package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# bumpchanges configuration
# See 'bumpchanges config keys' for all options

# Changelog settings
changelog: CHANGELOG.md               # Changelog path relative to the repository root
# repo_url: ""                        # Compare link base (default: $GITHUB_SERVER_URL/$GITHUB_REPOSITORY)
timezone: UTC                         # Zone used for release dates (CHANGELOG_TIMEZONE overrides)

# Version settings
prerelease_identifier: rc             # 1.2.0-rc.1, 1.2.0-rc.2, ...
version_files: []                     # Files with a hard-coded version literal, e.g. [src/pkg/__init__.py]
protected_paths:                      # Globs version_files may never match
  - "**/.git/**"
  - "**/.github/**"

# Release settings
automation_actors:                    # Authors trusted to open release pull requests
  - github-actions[bot]

# Logging
log_level: info                       # debug | info | notice | warn | error
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	defaults := make(map[string]interface{}, len(KnownKeys))
	for name, schema := range KnownKeys {
		if schema.Default == nil {
			continue
		}
		// Lists are copied so callers cannot mutate the registry.
		if list, ok := schema.Default.([]string); ok {
			defaults[name] = append([]string{}, list...)
			continue
		}
		defaults[name] = schema.Default
	}
	return defaults
}
