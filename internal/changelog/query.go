package changelog

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// GetVersion retrieves a section by version. Accepts "v0.6.0", "0.6.0" and
// "unreleased" in any case.
func (c *Changelog) GetVersion(name string) (*Section, error) {
	if strings.EqualFold(name, UnreleasedLabel) {
		if u := c.GetUnreleased(); u != nil {
			return u, nil
		}
	} else if v, err := version.ParseLenient(version.StripTagPrefix(name)); err == nil {
		for _, s := range c.Releases() {
			if s.Version.Equal(v) {
				return s, nil
			}
		}
	}

	return nil, &VersionNotFoundError{
		Version:           name,
		AvailableVersions: c.ListVersions(),
	}
}

// GetUnreleased returns the Unreleased section, or nil.
func (c *Changelog) GetUnreleased() *Section {
	for _, s := range c.Sections {
		if s.IsUnreleased() {
			return s
		}
	}
	return nil
}

// Releases returns the release sections, newest first.
func (c *Changelog) Releases() []*Section {
	out := make([]*Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		if !s.IsUnreleased() {
			out = append(out, s)
		}
	}
	return out
}

// GetLatestRelease returns the most recent release, or nil.
func (c *Changelog) GetLatestRelease() *Section {
	for _, s := range c.Sections {
		if !s.IsUnreleased() {
			return s
		}
	}
	return nil
}

// ListVersions returns section names in document order.
func (c *Changelog) ListVersions() []string {
	names := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		names[i] = s.Name()
	}
	return names
}

// AllEntries returns all entries from all sections, newest first.
func (c *Changelog) AllEntries() []Entry {
	var entries []Entry
	for _, s := range c.Sections {
		entries = append(entries, s.Entries()...)
	}
	return entries
}

// GetLastN retrieves the N most recent entries across all sections.
func (c *Changelog) GetLastN(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}

	entries := c.AllEntries()
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

// GetEntryCount returns the total number of entries across all sections.
func (c *Changelog) GetEntryCount() int {
	count := 0
	for _, s := range c.Sections {
		count += s.EntryCount()
	}
	return count
}
