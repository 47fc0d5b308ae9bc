// Package changelog models a Keep a Changelog style CHANGELOG.md as a small
// typed document: a preamble, an ordered list of sections (one Unreleased
// section followed by releases, newest first), each holding change-kind
// groups of bullet entries, and a trailing block of link reference
// definitions.
//
// This package implements:
//   - Markdown parsing with heading repair and label normalization
//   - Structural validation (one leading Unreleased section, descending releases)
//   - Promotion of the Unreleased section into a dated release
//   - Deterministic re-rendering with regenerated comparison links
//   - Version and entry querying plus terminal display for the CLI
package changelog
