package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeString ConfigValueType = iota
	TypeList
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key name as written in .bumpchanges.yml
	Type          ConfigValueType // Expected value type
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value (nil when derived at load time)
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"changelog": {
		Path:        "changelog",
		Type:        TypeString,
		Description: "Path of the changelog file, relative to the repository root",
		Default:     "CHANGELOG.md",
	},
	"repo_url": {
		Path:        "repo_url",
		Type:        TypeString,
		Description: "Repository URL used for compare links (default: $GITHUB_SERVER_URL/$GITHUB_REPOSITORY)",
		Default:     nil,
	},
	"timezone": {
		Path:        "timezone",
		Type:        TypeString,
		Description: "IANA time zone for release dates (CHANGELOG_TIMEZONE is also honored)",
		Default:     "UTC",
	},
	"prerelease_identifier": {
		Path:        "prerelease_identifier",
		Type:        TypeString,
		Description: "Identifier used for prerelease versions, as in 1.2.0-rc.1",
		Default:     "rc",
	},
	"version_files": {
		Path:        "version_files",
		Type:        TypeList,
		Description: "Files holding a hard-coded version literal to rewrite on release",
		Default:     []string{},
	},
	"automation_actors": {
		Path:        "automation_actors",
		Type:        TypeList,
		Description: "Accounts trusted to open release pull requests",
		Default:     []string{"github-actions[bot]"},
	},
	"log_level": {
		Path:          "log_level",
		Type:          TypeEnum,
		AllowedValues: []string{"debug", "info", "notice", "warn", "warning", "error"},
		Description:   "Minimum level of log records written to stderr",
		Default:       "info",
	},
	"protected_paths": {
		Path:        "protected_paths",
		Type:        TypeList,
		Description: "Glob patterns of paths version files may never point into",
		Default:     []string{"**/.git/**", "**/.github/**"},
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// KeyNames returns the registered key names in sorted order.
func KeyNames() []string {
	names := make([]string, 0, len(KnownKeys))
	for name := range KnownKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownKeys returns the keys in keys that are not registered, sorted.
func UnknownKeys(keys []string) []string {
	var unknown []string
	for _, key := range keys {
		if _, err := GetKeySchema(key); err != nil {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ValidateValue checks a raw string value against the schema for key.
func ValidateValue(key, value string) error {
	schema, err := GetKeySchema(key)
	if err != nil {
		return err
	}
	if schema.Type != TypeEnum {
		return nil
	}
	if slices.Contains(schema.AllowedValues, value) {
		return nil
	}
	return fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
