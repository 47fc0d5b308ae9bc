package config

import "path/filepath"

// ProjectConfigFile is the name of the project config file at the
// repository root.
const ProjectConfigFile = ".bumpchanges.yml"

// LegacyProjectConfigFile is the JSON config file read when no YAML config
// exists.
const LegacyProjectConfigFile = ".bumpchanges.json"

// ProjectConfigPath returns the path to the project config file in dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectConfigFile)
}

// LegacyProjectConfigPath returns the path to the legacy JSON config file in dir.
func LegacyProjectConfigPath(dir string) string {
	return filepath.Join(dir, LegacyProjectConfigFile)
}
