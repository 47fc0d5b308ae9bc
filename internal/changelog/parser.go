package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

var (
	// ErrMissingUnreleased is returned when no Unreleased section exists.
	ErrMissingUnreleased = errors.New("changelog has no Unreleased section")

	// ErrMalformed is the kind of every structural parse or validation failure.
	ErrMalformed = errors.New("malformed changelog")
)

// ValidationError describes a structural problem at a specific line.
type ValidationError struct {
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Unwrap lets callers match ValidationError against ErrMalformed.
func (e *ValidationError) Unwrap() error {
	return ErrMalformed
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)(?:\s+#+)?\s*$`)
	bulletPattern  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	linkDefPattern = regexp.MustCompile(`^ {0,3}\[([^\]]+)\]:\s*(\S+)`)
	rulePattern    = regexp.MustCompile(`^ {0,3}(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
	fencePattern   = regexp.MustCompile("^ {0,3}(```|~~~)")
	datePattern    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:\s+(.*))?$`)
	repoURLPattern = regexp.MustCompile(`^(https?://.+?)/(?:compare|releases/tag|commits|tree)/`)
)

// Load reads and validates a changelog file.
func Load(path string) (*Changelog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer f.Close()

	c, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadFromReader parses and validates a changelog from an io.Reader.
func LoadFromReader(r io.Reader) (*Changelog, error) {
	c, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse builds the document tree without checking section invariants. Most
// callers want LoadFromReader, which also validates.
func Parse(r io.Reader) (*Changelog, error) {
	p := &parser{
		c:     &Changelog{versionLinks: make(map[string]string)},
		entry: -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		p.lineNo++
		if err := p.parseLine(strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}

	p.flushParagraph()
	p.c.Preamble = trimBlankLines(p.c.Preamble)
	if p.c.RepoURL == "" {
		p.c.RepoURL = inferRepoURL(p.c.versionLinks)
	}
	return p.c, nil
}

// Validate checks the section invariants: exactly one Unreleased section in
// first position, and releases strictly descending with no duplicates.
func Validate(c *Changelog) error {
	unreleased := 0
	var prev *Section
	for i, s := range c.Sections {
		if s.IsUnreleased() {
			unreleased++
			if unreleased > 1 {
				return &ValidationError{Line: s.line, Message: "duplicate Unreleased section"}
			}
			if i != 0 {
				return &ValidationError{Line: s.line, Message: "Unreleased section must come before all releases"}
			}
			continue
		}

		if prev != nil {
			switch version.Compare(s.Version, prev.Version) {
			case 0:
				return &ValidationError{Line: s.line, Message: fmt.Sprintf("duplicate release %s (also at line %d)", s.Version, prev.line)}
			case 1:
				return &ValidationError{Line: s.line, Message: fmt.Sprintf("release %s is listed below older release %s", s.Version, prev.Version)}
			}
		}
		prev = s
	}

	if unreleased == 0 {
		return ErrMissingUnreleased
	}
	return nil
}

type parser struct {
	c       *Changelog
	section *Section
	group   *Group
	entry   int
	para    []string
	inFence bool
	lineNo  int
}

func (p *parser) parseLine(line string) error {
	if p.section == nil {
		return p.parsePreambleLine(line)
	}

	if p.inFence || fencePattern.MatchString(line) {
		if fencePattern.MatchString(line) {
			p.inFence = !p.inFence
		}
		p.appendText(line)
		return nil
	}

	trimmed := strings.TrimRight(line, " \t")
	switch {
	case trimmed == "":
		p.flushParagraph()
		p.entry = -1
		return nil
	case rulePattern.MatchString(trimmed):
		p.flushParagraph()
		p.entry = -1
		return nil
	}

	if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
		p.flushParagraph()
		p.entry = -1
		return p.parseHeading(len(m[1]), m[2])
	}

	if m := linkDefPattern.FindStringSubmatch(trimmed); m != nil && len(p.para) == 0 {
		p.entry = -1
		p.addLink(m[1], m[2])
		return nil
	}

	if m := bulletPattern.FindStringSubmatch(trimmed); m != nil {
		p.flushParagraph()
		p.addEntry(m[1])
		return nil
	}

	p.appendText(trimmed)
	return nil
}

func (p *parser) parsePreambleLine(line string) error {
	if m := headingPattern.FindStringSubmatch(strings.TrimRight(line, " \t")); m != nil {
		level, text := len(m[1]), m[2]
		if level <= 2 && isSectionHeading(text) {
			return p.startSection(level, text)
		}
	}
	p.c.Preamble = append(p.c.Preamble, strings.TrimRight(line, " \t"))
	return nil
}

func (p *parser) parseHeading(level int, text string) error {
	if level <= 2 && isSectionHeading(text) {
		return p.startSection(level, text)
	}

	if level >= 3 || IsCanonicalLabel(text) {
		if level < 3 {
			p.warnf("heading %q demoted to a change group", text)
		}
		p.group = p.section.Group(text)
		return nil
	}

	return &ValidationError{Line: p.lineNo, Message: fmt.Sprintf("unexpected heading %q inside section %s", text, p.section.Name())}
}

func (p *parser) startSection(level int, text string) error {
	label, rest := splitHeading(text)
	if level == 1 {
		p.warnf("heading %q promoted to a section", text)
	}

	s := &Section{line: p.lineNo}
	if !strings.EqualFold(label, UnreleasedLabel) {
		raw := label
		if raw[0] == 'v' || raw[0] == 'V' {
			raw = raw[1:]
			p.warnf("leading %q stripped from version %q", label[:1], label)
		}
		v, err := version.ParseLenient(raw)
		if err != nil {
			return &ValidationError{Line: p.lineNo, Message: fmt.Sprintf("invalid release version %q: %v", label, err)}
		}
		s.Version = v

		if err := parseSectionDate(s, rest); err != nil {
			return &ValidationError{Line: p.lineNo, Message: err.Error()}
		}
	}

	p.c.Sections = append(p.c.Sections, s)
	p.section = s
	p.group = nil
	p.entry = -1
	return nil
}

// parseSectionDate reads "- 2024-01-01 [YANKED]" or "(2024-01-01)" after a
// release label.
func parseSectionDate(s *Section, rest string) error {
	rest = strings.TrimSpace(strings.TrimLeft(rest, "-–—: \t"))
	if strings.HasPrefix(rest, "(") {
		if end := strings.IndexByte(rest, ')'); end > 0 {
			rest = strings.TrimSpace(rest[1:end] + " " + rest[end+1:])
		}
	}
	if rest == "" {
		return nil
	}

	m := datePattern.FindStringSubmatch(rest)
	if m == nil {
		return fmt.Errorf("invalid date %q for release %s (expected: YYYY-MM-DD)", rest, s.Version)
	}
	if _, err := time.Parse(time.DateOnly, m[1]); err != nil {
		return fmt.Errorf("invalid date %q for release %s: %v", m[1], s.Version, err)
	}
	s.Date = m[1]
	s.Suffix = strings.TrimSpace(m[2])
	return nil
}

func (p *parser) addEntry(text string) {
	if p.group == nil {
		p.group = p.section.Group("Changed")
	}
	p.group.Entries = append(p.group.Entries, text)
	p.entry = len(p.group.Entries) - 1
}

// appendText continues the open entry or accumulates a notice paragraph.
func (p *parser) appendText(line string) {
	if p.entry >= 0 && p.group != nil {
		p.group.Entries[p.entry] += "\n" + line
		return
	}
	p.para = append(p.para, line)
}

func (p *parser) flushParagraph() {
	if len(p.para) == 0 || p.section == nil {
		return
	}
	p.section.Notices = append(p.section.Notices, strings.Join(p.para, "\n"))
	p.para = nil
}

func (p *parser) addLink(label, url string) {
	if strings.EqualFold(label, UnreleasedLabel) || looksLikeVersion(label) {
		p.c.versionLinks[linkKey(label)] = url
		return
	}
	p.c.Links = append(p.c.Links, LinkDef{Label: label, URL: url})
}

func (p *parser) warnf(format string, args ...any) {
	p.c.Warnings = append(p.c.Warnings, fmt.Sprintf("line %d: ", p.lineNo)+fmt.Sprintf(format, args...))
}

func isSectionHeading(text string) bool {
	label, _ := splitHeading(text)
	return strings.EqualFold(label, UnreleasedLabel) || looksLikeVersion(label)
}

func inferRepoURL(links map[string]string) string {
	for _, key := range slices.Sorted(maps.Keys(links)) {
		if m := repoURLPattern.FindStringSubmatch(links[key]); m != nil {
			return m[1]
		}
	}
	return ""
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
