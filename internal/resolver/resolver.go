// Package resolver computes the next release version from the set of
// existing git tags and a requested bump. Resolution is pure: callers supply
// the tag list and receive a version plus the release branch name that
// carries it to the finalize step.
package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

// Bump selects how the next version is derived.
type Bump string

const (
	BumpMajor      Bump = "major"
	BumpMinor      Bump = "minor"
	BumpPatch      Bump = "patch"
	BumpPrerelease Bump = "prerelease"
	BumpExact      Bump = "exact"
)

// DefaultPrereleaseID is the prerelease identifier used when none is configured.
const DefaultPrereleaseID = "rc"

var (
	// ErrNoBaseline is returned when a relative bump has nothing to bump from.
	ErrNoBaseline = errors.New("no baseline version")

	// ErrTagExists is returned when the resolved version is already tagged.
	ErrTagExists = errors.New("tag already exists")

	// ErrUnknownBump is returned for an unrecognized bump kind.
	ErrUnknownBump = errors.New("unknown bump kind")
)

// ParseBump validates a bump kind given on the command line.
func ParseBump(s string) (Bump, error) {
	b := Bump(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BumpMajor, BumpMinor, BumpPatch, BumpPrerelease, BumpExact:
		return b, nil
	}
	return "", fmt.Errorf("%w %q (valid: major, minor, patch, prerelease, exact)", ErrUnknownBump, s)
}

// Request describes the version the caller wants.
type Request struct {
	Bump Bump
	// Prerelease appends a "<PrereleaseID>.N" suffix to a major, minor or
	// patch bump.
	Prerelease bool
	// Exact is used verbatim for BumpExact. A stray leading "v" is dropped.
	Exact string
	// PrereleaseID defaults to DefaultPrereleaseID.
	PrereleaseID string
}

// Result is the outcome of a successful resolution.
type Result struct {
	Next *version.Version
	// Baseline is the release the bump started from. Nil for exact versions.
	Baseline *version.Version
	Branch   string
}

// Tag returns the git tag the release will receive.
func (r *Result) Tag() string {
	return r.Next.Tag()
}

// Resolve computes the next version from tags.
func Resolve(tags []string, req Request) (*Result, error) {
	id := req.PrereleaseID
	if id == "" {
		id = DefaultPrereleaseID
	}

	existing := make(map[string]bool, len(tags))
	for _, t := range tags {
		existing[t] = true
	}

	var (
		res *Result
		err error
	)
	switch req.Bump {
	case BumpExact:
		res, err = resolveExact(req.Exact)
	case BumpMajor, BumpMinor, BumpPatch:
		res, err = resolveRelative(version.FromTags(tags), existing, req.Bump, req.Prerelease, id)
	case BumpPrerelease:
		res, err = resolvePrerelease(version.FromTags(tags), existing, id)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBump, req.Bump)
	}
	if err != nil {
		return nil, err
	}

	if existing[res.Next.Tag()] {
		return nil, fmt.Errorf("%w: %s", ErrTagExists, res.Next.Tag())
	}

	res.Branch = BranchName(res.Next)
	return res, nil
}

func resolveExact(raw string) (*Result, error) {
	v, err := version.ParseLenient(version.StripTagPrefix(strings.TrimSpace(raw)))
	if err != nil {
		return nil, fmt.Errorf("exact version: %w", err)
	}
	return &Result{Next: v}, nil
}

func resolveRelative(tagged []version.Tagged, existing map[string]bool, bump Bump, prerelease bool, id string) (*Result, error) {
	baseline := latestRelease(tagged)
	if baseline == nil {
		return nil, fmt.Errorf("%w: no released semantic version tag to %s-bump from", ErrNoBaseline, bump)
	}

	var (
		next *version.Version
		err  error
	)
	switch bump {
	case BumpMajor:
		next, err = baseline.IncMajor()
	case BumpMinor:
		next, err = baseline.IncMinor()
	default:
		next, err = baseline.IncPatch()
	}
	if err != nil {
		return nil, err
	}

	if prerelease {
		next, err = firstUnusedPrerelease(next, existing, id)
		if err != nil {
			return nil, err
		}
	}

	return &Result{Next: next, Baseline: baseline}, nil
}

// resolvePrerelease continues the newest pending prerelease above the
// baseline, or starts "<id>.1" on the next patch release. A pending
// prerelease keeps its own identifier so the result sorts above it.
func resolvePrerelease(tagged []version.Tagged, existing map[string]bool, id string) (*Result, error) {
	baseline := latestRelease(tagged)
	if baseline == nil {
		return nil, fmt.Errorf("%w: no released semantic version tag to continue a prerelease from", ErrNoBaseline)
	}

	var pending *version.Version
	for _, tv := range tagged {
		v := tv.Version
		if !v.IsSemantic() || !v.IsPrerelease() || !v.GreaterThan(baseline) {
			continue
		}
		if pending == nil || v.GreaterThan(pending) {
			pending = v
		}
	}

	if pending == nil {
		next, err := baseline.IncPatch()
		if err != nil {
			return nil, err
		}
		next, err = next.WithPrerelease(fmt.Sprintf("%s.%d", id, 1))
		if err != nil {
			return nil, err
		}
		return &Result{Next: next, Baseline: baseline}, nil
	}

	id = prereleaseIdentifier(pending.Prerelease())
	release := pending.Release()
	counter := 0
	for _, tv := range tagged {
		v := tv.Version
		if !v.IsSemantic() || !v.Release().Equal(release) {
			continue
		}
		if n, ok := v.PrereleaseCounter(id); ok && n > counter {
			counter = n
		}
	}

	next, err := release.WithPrerelease(fmt.Sprintf("%s.%d", id, counter+1))
	if err != nil {
		return nil, err
	}
	if existing[next.Tag()] {
		next, err = firstUnusedPrerelease(release, existing, id)
		if err != nil {
			return nil, err
		}
	}
	return &Result{Next: next, Baseline: baseline}, nil
}

// prereleaseIdentifier returns the "<id>" of a "<id>.N" qualifier. Any other
// qualifier is returned whole, so "<qualifier>.1" still sorts above it.
func prereleaseIdentifier(pre string) string {
	idx := strings.LastIndexByte(pre, '.')
	if idx <= 0 {
		return pre
	}
	if _, err := strconv.Atoi(pre[idx+1:]); err != nil {
		return pre
	}
	return pre[:idx]
}

// firstUnusedPrerelease picks the lowest "<id>.N" (N >= 1) on release whose
// tag does not exist yet.
func firstUnusedPrerelease(release *version.Version, existing map[string]bool, id string) (*version.Version, error) {
	for n := 1; ; n++ {
		candidate, err := release.WithPrerelease(fmt.Sprintf("%s.%d", id, n))
		if err != nil {
			return nil, err
		}
		if !existing[candidate.Tag()] {
			return candidate, nil
		}
	}
}

// latestRelease returns the highest semantic non-prerelease version. Tags in
// the free-form regime (including floating aliases like "v2") never serve as
// a bump baseline.
func latestRelease(tagged []version.Tagged) *version.Version {
	var best *version.Version
	for _, tv := range tagged {
		v := tv.Version
		if !v.IsSemantic() || v.IsPrerelease() {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}
