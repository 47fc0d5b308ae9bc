// Package versionfile rewrites the single hard-coded version literal kept in
// project files such as __init__.py, package.json or a plugin manifest.
//
// A literal is one line of the shape
//
//	[indent][quote]<key>[quote]<separator>[quote]<version>[quote][trailer]
//
// where the key ends in "version" (any case, optionally wrapped in "__"),
// the separator is "=", ":", a typed annotation such as ": str =", or plain
// whitespace, and the version starts with a digit. "Manifest-Version" is
// never treated as a project version.
package versionfile

import (
	"bytes"
	"regexp"
	"strings"
)

// literalPattern splits a candidate line into indent, key quotes, key,
// separator, value quotes, value and trailer. Quote pairing and the key
// rules are checked in code since RE2 has no backreferences.
var literalPattern = regexp.MustCompile(
	`^(\s*)(["']?)([A-Za-z_][A-Za-z0-9_.-]*)(["']?)` +
		`(\s*(?::\s*[A-Za-z_]\w*\s*=|:|=|\s)\s*)` +
		`(["']?)(\d[0-9A-Za-z.+_~-]*)(["']?)(.*)$`)

// excludedKeys are keys ending in "version" that never hold a project version.
var excludedKeys = map[string]bool{
	"manifest-version": true,
}

// Match is a version literal found on one line of a file.
type Match struct {
	Line   int // 1-based
	Prefix string
	Value  string
	Suffix string
}

// Replace returns the line with the literal value swapped for v, keeping
// quoting, spacing and any trailing comment.
func (m Match) Replace(v string) string {
	return m.Prefix + v + m.Suffix
}

// MatchLine reports whether line holds a version literal.
func MatchLine(line string) (Match, bool) {
	g := literalPattern.FindStringSubmatch(line)
	if g == nil {
		return Match{}, false
	}
	indent, keyOpen, key, keyClose, sep, valOpen, value, valClose, rest :=
		g[1], g[2], g[3], g[4], g[5], g[6], g[7], g[8], g[9]

	if keyOpen != keyClose || valOpen != valClose {
		return Match{}, false
	}
	if !isVersionKey(key) || !validTrailer(rest) {
		return Match{}, false
	}

	return Match{
		Prefix: indent + keyOpen + key + keyClose + sep + valOpen,
		Value:  value,
		Suffix: valClose + rest,
	}, true
}

// FindLiterals scans content line by line. Line terminators are not part
// of the matched text.
func FindLiterals(content []byte) []Match {
	var matches []Match
	for i, line := range splitLines(content) {
		if m, ok := MatchLine(string(trimEOL(line))); ok {
			m.Line = i + 1
			matches = append(matches, m)
		}
	}
	return matches
}

func isVersionKey(key string) bool {
	lower := strings.ToLower(key)
	if excludedKeys[lower] {
		return false
	}
	return strings.HasSuffix(strings.Trim(lower, "_"), "version")
}

// validTrailer accepts what may follow a literal: nothing, a separator such
// as "," or ";", or a comment.
func validTrailer(rest string) bool {
	trimmed := strings.TrimSpace(rest)
	switch {
	case trimmed == "":
		return true
	case trimmed[0] == ',' || trimmed[0] == ';' || trimmed[0] == '#':
		return true
	case strings.HasPrefix(trimmed, "//"):
		return true
	}
	return false
}

// splitLines splits content after each "\n", keeping the terminators so a
// rewrite can reassemble the file byte for byte.
func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}
