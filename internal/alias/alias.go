// Package alias computes floating major-version tags such as "v2", which
// always point at the newest release sharing that major component.
package alias

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

var (
	// ErrNotATag is returned when the changed ref does not name a tag.
	ErrNotATag = errors.New("ref is not a tag")

	// ErrAmbiguous is returned when two different tags spell the newest
	// version, so neither can be picked deterministically.
	ErrAmbiguous = errors.New("ambiguous alias target")
)

// Action is what the caller must do with the alias ref.
type Action string

const (
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionUpToDate Action = "up_to_date"
	ActionNone     Action = "none"
)

// Target is the resolved alias. An empty Tag means no eligible release
// remains for the alias.
type Target struct {
	Alias string
	Tag   string
}

// Plan pairs a Target with the action that brings the alias ref in line.
type Plan struct {
	Target
	Action Action
	// Current is the commit the alias points at today, if it exists.
	Current string
}

// ChangedTag extracts the tag name from "refs/tags/<tag>" or a bare tag.
func ChangedTag(ref string) (string, error) {
	if tag, ok := strings.CutPrefix(ref, "refs/tags/"); ok {
		if tag == "" || strings.Contains(tag, "/") {
			return "", fmt.Errorf("%w: %s", ErrNotATag, ref)
		}
		return tag, nil
	}
	if strings.HasPrefix(ref, "refs/") || ref == "" {
		return "", fmt.Errorf("%w: %s", ErrNotATag, ref)
	}
	return ref, nil
}

// Name returns the alias tag for a major version, "v" followed by major.
func Name(major uint64) string {
	return fmt.Sprintf("%s%d", version.TagPrefix, major)
}

// MajorOf reports the major component of a strict semantic version tag.
// Tags that are not strict semantic versions, or whose major is zero, have
// no alias.
func MajorOf(tag string) (uint64, bool) {
	v, ok := releaseCandidate(tag)
	if !ok || v.Major() < 1 {
		return 0, false
	}
	return v.Major(), true
}

// Resolve selects the newest released tag with the given major. Tags listed
// in ineligible (draft releases, releases flagged as prereleases, a tag that
// was just deleted) are skipped along with prerelease versions.
func Resolve(tags []string, major uint64, ineligible []string) (Target, error) {
	target := Target{Alias: Name(major)}

	skip := make(map[string]bool, len(ineligible))
	for _, tag := range ineligible {
		skip[tag] = true
	}

	var best *version.Version
	var tie string
	for _, tag := range tags {
		if skip[tag] {
			continue
		}
		v, ok := releaseCandidate(tag)
		if !ok || v.IsPrerelease() || semver.Major(tag) != target.Alias {
			continue
		}

		switch {
		case best == nil || v.GreaterThan(best):
			best, target.Tag, tie = v, tag, ""
		case v.Equal(best) && tag != target.Tag:
			tie = tag
		}
	}
	if tie != "" {
		return Target{}, fmt.Errorf("%w: %s and %s are the same version", ErrAmbiguous, target.Tag, tie)
	}
	return target, nil
}

// Decide compares the target with the current tag commits (annotated tags
// already dereferenced) and picks the action for the alias ref.
func Decide(target Target, commits map[string]string) Plan {
	current, exists := commits[target.Alias]
	plan := Plan{Target: target, Current: current}

	switch {
	case target.Tag == "" && exists:
		plan.Action = ActionDelete
	case target.Tag == "":
		plan.Action = ActionNone
	case exists && current == commits[target.Tag]:
		plan.Action = ActionUpToDate
	default:
		plan.Action = ActionUpdate
	}
	return plan
}

// releaseCandidate parses tag when it is a canonical semantic version tag.
// x/mod/semver accepts shorthands such as "v2" and "v2.1"; those are
// rejected here so aliases never alias each other.
func releaseCandidate(tag string) (*version.Version, bool) {
	if !semver.IsValid(tag) {
		return nil, false
	}
	v, err := version.FromTag(tag)
	if err != nil || !v.IsSemantic() {
		return nil, false
	}
	return v, true
}
