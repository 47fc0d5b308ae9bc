package changelog

import (
	"regexp"
	"strings"
)

// ValidCategories returns the Keep a Changelog change kinds in their
// conventional order.
func ValidCategories() []string {
	return []string{"Added", "Changed", "Deprecated", "Removed", "Fixed", "Security"}
}

// labelSynonyms maps lowercase spellings to canonical change kinds.
var labelSynonyms = map[string]string{
	"add":        "Added",
	"added":      "Added",
	"change":     "Changed",
	"changed":    "Changed",
	"update":     "Changed",
	"updated":    "Changed",
	"deprecate":  "Deprecated",
	"deprecated": "Deprecated",
	"remove":     "Removed",
	"removed":    "Removed",
	"fix":        "Fixed",
	"fixed":      "Fixed",
	"security":   "Security",
}

// NormalizeLabel strips brackets and a trailing colon from a group heading
// and maps known synonyms to their canonical kind. Unknown labels are
// returned trimmed but otherwise as written.
func NormalizeLabel(raw string) string {
	label := strings.TrimSpace(raw)
	label = strings.TrimSuffix(label, ":")
	label = strings.TrimSpace(strings.Trim(label, "[]"))
	if canonical, ok := labelSynonyms[strings.ToLower(label)]; ok {
		return canonical
	}
	return label
}

// IsCanonicalLabel reports whether label normalizes to a Keep a Changelog kind.
func IsCanonicalLabel(label string) bool {
	_, ok := labelSynonyms[strings.ToLower(NormalizeLabel(label))]
	return ok
}

// IsUnreleasedLabel reports whether heading text names the Unreleased
// section, in any capitalization and with or without link brackets.
func IsUnreleasedLabel(text string) bool {
	label, _ := splitHeading(text)
	return strings.EqualFold(strings.TrimSpace(label), UnreleasedLabel)
}

var bracketLabelPattern = regexp.MustCompile(`^\[([^\]]*)\](?:\([^)]*\))?\s*(.*)$`)

// splitHeading separates a section heading into its label and the text
// after it. "[1.2.3](url) - 2024-01-01" yields "1.2.3" and "- 2024-01-01".
func splitHeading(text string) (label, rest string) {
	text = strings.TrimSpace(text)
	if m := bracketLabelPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if idx := strings.IndexAny(text, " \t"); idx >= 0 {
		return text[:idx], strings.TrimSpace(text[idx:])
	}
	return text, ""
}

// looksLikeVersion reports whether a heading label starts like a version,
// optionally with a stray "v".
func looksLikeVersion(label string) bool {
	if label == "" {
		return false
	}
	if label[0] == 'v' || label[0] == 'V' {
		label = label[1:]
	}
	return label != "" && label[0] >= '0' && label[0] <= '9'
}

// linkKey normalizes a reference label for version link lookup.
func linkKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if looksLikeVersion(key) && key[0] == 'v' {
		key = key[1:]
	}
	return key
}
