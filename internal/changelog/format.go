package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a changelog category.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps lowercase change kinds to their terminal styling.
var categoryStyles = map[string]CategoryStyle{
	"added":      {Color: color.New(color.FgGreen), Icon: "✓"},
	"changed":    {Color: color.New(color.FgBlue), Icon: "~"},
	"deprecated": {Color: color.New(color.FgRed), Icon: "⚠"},
	"removed":    {Color: color.New(color.FgRed), Icon: "✗"},
	"fixed":      {Color: color.New(color.FgYellow), Icon: "⚡"},
	"security":   {Color: color.New(color.FgMagenta), Icon: "🔒"},
}

// defaultStyle is used for labels outside the canonical set.
var defaultStyle = CategoryStyle{Color: color.New(color.FgWhite), Icon: "•"}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatSection writes a single section to the writer with terminal styling.
func FormatSection(s *Section, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeSectionHeader(s, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, notice := range s.Notices {
		if _, err := fmt.Fprintf(w, "\n%s\n", notice); err != nil {
			return err
		}
	}

	for _, g := range s.Groups {
		if len(g.Entries) == 0 {
			continue
		}
		if err := writeCategorySection(g, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// FormatEntries writes entries grouped by section, preserving order.
func FormatEntries(c *Changelog, entries []Entry, w io.Writer, opts FormatOptions) error {
	var current string
	var group *Group
	var sections []*Section

	for _, e := range entries {
		if len(sections) == 0 || current != e.Version {
			current = e.Version
			s, err := c.GetVersion(e.Version)
			if err != nil {
				return err
			}
			sections = append(sections, &Section{Version: s.Version, Date: s.Date})
			group = nil
		}
		last := sections[len(sections)-1]
		if group == nil || group.Label != e.Category {
			group = &Group{Label: e.Category}
			last.Groups = append(last.Groups, group)
		}
		group.Entries = append(group.Entries, e.Text)
	}

	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := FormatSection(s, w, opts); err != nil {
			return fmt.Errorf("formatting version %s: %w", s.Name(), err)
		}
	}
	return nil
}

// writeSectionHeader writes the section header line.
func writeSectionHeader(s *Section, w io.Writer, opts FormatOptions) error {
	var header string
	switch {
	case s.IsUnreleased():
		header = UnreleasedLabel
	case s.Date != "":
		header = fmt.Sprintf("%s (%s)", s.Version.Tag(), s.Date)
	default:
		header = s.Version.Tag()
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeCategorySection writes a single group with its entries.
func writeCategorySection(g *Group, w io.Writer, opts FormatOptions, width int) error {
	style := styleFor(g.Label)

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", g.Label); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(g.Label)); err != nil {
			return err
		}
	}

	for _, text := range g.Entries {
		if err := writeEntry(text, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes a single changelog entry with optional wrapping.
func writeEntry(text string, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(flattenEntry(text), width-len(prefix), "    ")

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

func styleFor(label string) CategoryStyle {
	if style, ok := categoryStyles[strings.ToLower(label)]; ok {
		return style
	}
	return defaultStyle
}

// flattenEntry joins continuation lines so wrapping can reflow them.
func flattenEntry(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
