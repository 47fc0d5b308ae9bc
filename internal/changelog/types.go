package changelog

import (
	"strings"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

// UnreleasedLabel is the canonical heading text of the Unreleased section.
const UnreleasedLabel = "Unreleased"

// Changelog is the parsed document. Sections are ordered as in the file:
// the Unreleased section first, then releases from newest to oldest.
type Changelog struct {
	// Preamble holds the lines before the first section (title, intro text).
	Preamble []string
	Sections []*Section
	// Links holds reference definitions that are not version links. They are
	// rendered after the generated version links.
	Links []LinkDef
	// RepoURL is the repository web URL used to generate version links. When
	// empty, version links found in the file are rendered unchanged.
	RepoURL string
	// Warnings lists non-fatal repairs made while parsing.
	Warnings []string

	versionLinks map[string]string
}

// LinkDef is a markdown link reference definition, "[Label]: URL".
type LinkDef struct {
	Label string
	URL   string
}

// Section is either the Unreleased section (Version is nil) or a release.
type Section struct {
	Version *version.Version
	// Date is the release date (YYYY-MM-DD), empty when not recorded.
	Date string
	// Suffix is trailing heading text after the date, such as "[YANKED]".
	Suffix string
	// Notices are free paragraphs kept above the change groups.
	Notices []string
	Groups  []*Group

	line int
}

// Group is a change-kind subsection such as "Added" or "Fixed".
type Group struct {
	Label string
	// Entries are bullet texts without the leading marker. Continuation
	// lines are kept, joined with newlines, including their indentation.
	Entries []string
}

// Entry is a flattened view of a single changelog entry, used for querying
// and display where the section and group context is needed.
type Entry struct {
	Text     string `yaml:"text" json:"text"`
	Category string `yaml:"category" json:"category"`
	Version  string `yaml:"version" json:"version"`
}

// IsUnreleased reports whether s is the Unreleased section.
func (s *Section) IsUnreleased() bool {
	return s.Version == nil
}

// Name returns "Unreleased" or the version string.
func (s *Section) Name() string {
	if s.IsUnreleased() {
		return UnreleasedLabel
	}
	return s.Version.String()
}

// Group returns the group with the given label, creating it when missing.
// The label is normalized first, so "fix" and "Fixed" share one group.
func (s *Section) Group(label string) *Group {
	label = NormalizeLabel(label)
	for _, g := range s.Groups {
		if strings.EqualFold(g.Label, label) {
			return g
		}
	}
	g := &Group{Label: label}
	s.Groups = append(s.Groups, g)
	return g
}

// EntryCount returns the number of entries across all groups.
func (s *Section) EntryCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Entries)
	}
	return n
}

// Entries returns a flattened list of all entries in group order.
func (s *Section) Entries() []Entry {
	entries := make([]Entry, 0, s.EntryCount())
	for _, g := range s.Groups {
		for _, text := range g.Entries {
			entries = append(entries, Entry{Text: text, Category: g.Label, Version: s.Name()})
		}
	}
	return entries
}

// IsCanonical reports whether the group label is a Keep a Changelog kind.
func (g *Group) IsCanonical() bool {
	return IsCanonicalLabel(g.Label)
}
