package changelog

import (
	"fmt"
	"io"
	"strings"
)

// RenderMarkdown writes the changelog in canonical form: the preamble, then
// each section with its notices and groups, then version links followed by
// any other reference definitions. Blocks are separated by exactly one blank
// line and the output ends with a single newline.
//
// The function is idempotent - given the same input, it produces identical output.
func RenderMarkdown(c *Changelog, w io.Writer) error {
	var blocks []string

	if len(c.Preamble) > 0 {
		blocks = append(blocks, strings.Join(c.Preamble, "\n"))
	}
	for _, s := range c.Sections {
		blocks = append(blocks, sectionBlocks(s)...)
	}
	if links := c.linkLines(); len(links) > 0 {
		blocks = append(blocks, strings.Join(links, "\n"))
	}

	if _, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n"); err != nil {
		return fmt.Errorf("writing changelog: %w", err)
	}
	return nil
}

// RenderMarkdownString is a convenience function that renders to a string.
func RenderMarkdownString(c *Changelog) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(c, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderSection renders a single section, heading included. Used for pull
// request bodies and release notes.
func RenderSection(s *Section) string {
	return strings.Join(sectionBlocks(s), "\n\n") + "\n"
}

func sectionBlocks(s *Section) []string {
	blocks := []string{formatSectionHeader(s)}
	blocks = append(blocks, s.Notices...)

	for _, g := range s.Groups {
		blocks = append(blocks, "### "+g.Label)
		if len(g.Entries) == 0 {
			continue
		}
		items := make([]string, len(g.Entries))
		for i, e := range g.Entries {
			items[i] = "- " + e
		}
		blocks = append(blocks, strings.Join(items, "\n"))
	}
	return blocks
}

// formatSectionHeader formats the section heading line.
func formatSectionHeader(s *Section) string {
	if s.IsUnreleased() {
		return "## [" + UnreleasedLabel + "]"
	}
	header := fmt.Sprintf("## [%s]", s.Version)
	if s.Date != "" {
		header += " - " + s.Date
	}
	if s.Suffix != "" {
		header += " " + s.Suffix
	}
	return header
}

// linkLines returns the reference definitions in document order: one per
// section that has a link, then the preserved non-version definitions.
func (c *Changelog) linkLines() []string {
	var lines []string
	for i, s := range c.Sections {
		if url := c.SectionLink(i); url != "" {
			lines = append(lines, fmt.Sprintf("[%s]: %s", s.Name(), url))
		}
	}
	for _, l := range c.Links {
		lines = append(lines, fmt.Sprintf("[%s]: %s", l.Label, l.URL))
	}
	return lines
}

// SectionLink returns the link target for the section at index i. With a
// RepoURL the link is generated: releases compare against the next older
// release, the oldest release links to its tag, and Unreleased compares the
// newest release to HEAD. Without a RepoURL the link found in the file is
// returned, if any.
func (c *Changelog) SectionLink(i int) string {
	s := c.Sections[i]
	if c.RepoURL == "" {
		return c.versionLinks[linkKey(s.Name())]
	}

	repo := strings.TrimRight(c.RepoURL, "/")
	prev := c.olderRelease(i)

	if s.IsUnreleased() {
		if prev == nil {
			return repo + "/commits/HEAD"
		}
		return fmt.Sprintf("%s/compare/%s...HEAD", repo, prev.Version.Tag())
	}

	if prev == nil {
		return fmt.Sprintf("%s/releases/tag/%s", repo, s.Version.Tag())
	}
	return fmt.Sprintf("%s/compare/%s...%s", repo, prev.Version.Tag(), s.Version.Tag())
}

// olderRelease returns the first release listed after index i.
func (c *Changelog) olderRelease(i int) *Section {
	for _, s := range c.Sections[i+1:] {
		if !s.IsUnreleased() {
			return s
		}
	}
	return nil
}
