// Package version models release version identifiers in two regimes:
// strict semantic versions (MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]) backed by
// Masterminds/semver, and free-form digit-led strings such as "2024.1" or
// "1.0rc1" that are compared segment by segment.
//
// The external string form of a Version never carries a leading "v"; the
// matching git tag always does (see Tag and FromTag).
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidFormat is returned when a string is not a usable version.
	ErrInvalidFormat = errors.New("invalid version format")

	// ErrNotAVersionTag is returned when a tag is not "v" followed by a version.
	ErrNotAVersionTag = errors.New("not a version tag")
)

// ParseError reports the offending input alongside the sentinel error kind.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// freeFormPattern splits a digit-led string into its dotted numeric core and
// an optional qualifier made of identifier characters.
var freeFormPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)([0-9A-Za-z.+_~-]*)$`)

// leadingCore matches the dotted numeric prefix of a digit-led string.
var leadingCore = regexp.MustCompile(`^\d+(?:\.\d+)*`)

// Version is an immutable, parsed version identifier.
type Version struct {
	raw   string
	core  []uint64
	pre   string
	build string
	sem   *semver.Version
}

// Parse parses raw in whichever regime fits. Strings that satisfy the strict
// semantic grammar become semantic versions; any other digit-led string
// becomes a free-form version. Strings that do not begin with a digit fail
// with ErrInvalidFormat.
func Parse(raw string) (*Version, error) {
	if raw == "" || !isDigit(raw[0]) {
		return nil, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}

	if v, err := ParseSemantic(raw); err == nil {
		return v, nil
	}

	return parseFreeForm(raw)
}

// ParseLenient accepts any digit-led string. Strings Parse understands are
// parsed by it; anything else is kept verbatim as a free-form version whose
// core is the leading dotted digits and which has no prerelease qualifier.
// Use it for versions a user names explicitly, such as an exact bump.
func ParseLenient(raw string) (*Version, error) {
	v, err := Parse(raw)
	if err == nil {
		return v, nil
	}
	if raw == "" || !isDigit(raw[0]) {
		return nil, err
	}

	core, err := parseCore(leadingCore.FindString(raw))
	if err != nil {
		return nil, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}
	return &Version{raw: raw, core: core}, nil
}

// ParseSemantic parses raw as a strict semantic version.
func ParseSemantic(raw string) (*Version, error) {
	sv, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}
	return fromSemver(raw, sv), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(raw string) *Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func fromSemver(raw string, sv *semver.Version) *Version {
	return &Version{
		raw:   raw,
		core:  []uint64{sv.Major(), sv.Minor(), sv.Patch()},
		pre:   sv.Prerelease(),
		build: sv.Metadata(),
		sem:   sv,
	}
}

func parseFreeForm(raw string) (*Version, error) {
	m := freeFormPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}

	core, err := parseCore(m[1])
	if err != nil {
		return nil, &ParseError{Input: raw, Err: ErrInvalidFormat}
	}

	rest := m[2]
	var build string
	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		rest, build = rest[:idx], rest[idx+1:]
	}
	if rest != "" && strings.ContainsRune("-._", rune(rest[0])) {
		rest = rest[1:]
	}

	return &Version{raw: raw, core: core, pre: rest, build: build}, nil
}

func parseCore(dotted string) ([]uint64, error) {
	segments := strings.Split(dotted, ".")
	core := make([]uint64, len(segments))
	for i, seg := range segments {
		n, err := strconv.ParseUint(seg, 10, 64)
		if err != nil {
			return nil, err
		}
		core[i] = n
	}
	return core, nil
}

// String returns the version exactly as it was written, without a "v".
func (v *Version) String() string {
	return v.raw
}

// IsSemantic reports whether v satisfies the strict semantic grammar.
func (v *Version) IsSemantic() bool {
	return v.sem != nil
}

// IsPrerelease reports whether v carries a prerelease qualifier.
func (v *Version) IsPrerelease() bool {
	return v.pre != ""
}

// Prerelease returns the prerelease qualifier without its leading separator.
func (v *Version) Prerelease() string {
	return v.pre
}

// Metadata returns the build metadata, which never affects ordering.
func (v *Version) Metadata() string {
	return v.build
}

// Core returns a copy of the numeric core components.
func (v *Version) Core() []uint64 {
	out := make([]uint64, len(v.core))
	copy(out, v.core)
	return out
}

// Major returns the first numeric component.
func (v *Version) Major() uint64 {
	return v.core[0]
}

// IncMajor returns the next major release. Only semantic versions can be
// incremented.
func (v *Version) IncMajor() (*Version, error) {
	return v.inc(func(sv *semver.Version) semver.Version { return sv.IncMajor() })
}

// IncMinor returns the next minor release.
func (v *Version) IncMinor() (*Version, error) {
	return v.inc(func(sv *semver.Version) semver.Version { return sv.IncMinor() })
}

// IncPatch returns the next patch release. A prerelease increments to its
// own release, matching semver precedence.
func (v *Version) IncPatch() (*Version, error) {
	return v.inc(func(sv *semver.Version) semver.Version { return sv.IncPatch() })
}

func (v *Version) inc(step func(*semver.Version) semver.Version) (*Version, error) {
	if v.sem == nil {
		return nil, &ParseError{Input: v.raw, Err: fmt.Errorf("%w: cannot increment a free-form version", ErrInvalidFormat)}
	}
	next := step(v.sem)
	return fromSemver(next.String(), &next), nil
}

// Release returns v with its prerelease and metadata removed.
func (v *Version) Release() *Version {
	if v.sem != nil {
		rel := semver.New(v.sem.Major(), v.sem.Minor(), v.sem.Patch(), "", "")
		return fromSemver(rel.String(), rel)
	}
	parts := make([]string, len(v.core))
	for i, n := range v.core {
		parts[i] = strconv.FormatUint(n, 10)
	}
	raw := strings.Join(parts, ".")
	return &Version{raw: raw, core: v.Core()}
}

// WithPrerelease returns v's release with the given prerelease qualifier.
func (v *Version) WithPrerelease(pre string) (*Version, error) {
	if v.sem == nil {
		return nil, &ParseError{Input: v.raw, Err: fmt.Errorf("%w: cannot attach a prerelease to a free-form version", ErrInvalidFormat)}
	}
	rel := semver.New(v.sem.Major(), v.sem.Minor(), v.sem.Patch(), "", "")
	next, err := rel.SetPrerelease(pre)
	if err != nil {
		return nil, &ParseError{Input: pre, Err: ErrInvalidFormat}
	}
	return fromSemver(next.String(), &next), nil
}

// PrereleaseCounter extracts N from a "<id>.N" prerelease qualifier.
func (v *Version) PrereleaseCounter(id string) (int, bool) {
	suffix, ok := strings.CutPrefix(v.pre, id+".")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
