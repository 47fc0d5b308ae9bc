package changelog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariel-frischer/bumpchanges/internal/version"
)

var (
	// ErrNothingToRelease is returned when the Unreleased section has no entries.
	ErrNothingToRelease = errors.New("nothing to release")

	// ErrReleaseOrder is returned when the promoted version would break the
	// descending release order.
	ErrReleaseOrder = errors.New("release version out of order")

	// ErrNoRepoURL is returned when neither the caller nor the existing links
	// name the repository the reference links point into.
	ErrNoRepoURL = errors.New("no repository URL for changelog links")
)

// ReleaseDate formats now as a release date in loc. A nil loc means UTC.
func ReleaseDate(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(time.DateOnly)
}

// Promote turns the Unreleased section into a release of target dated date,
// inserts a fresh empty Unreleased section above it and regenerates the
// reference links from repoURL. An empty repoURL falls back to the URL found
// in the existing links. Empty groups are dropped from the new release. The
// document is left untouched on error.
func (c *Changelog) Promote(target *version.Version, repoURL, date string) (*Section, error) {
	unreleased := c.GetUnreleased()
	if unreleased == nil {
		return nil, ErrMissingUnreleased
	}
	if unreleased.EntryCount() == 0 {
		return nil, fmt.Errorf("%w: the Unreleased section has no entries", ErrNothingToRelease)
	}

	for _, s := range c.Releases() {
		if s.Version.Equal(target) {
			return nil, fmt.Errorf("%w: %s is already in the changelog", ErrReleaseOrder, target)
		}
	}
	if latest := c.GetLatestRelease(); latest != nil && !target.GreaterThan(latest.Version) {
		return nil, fmt.Errorf("%w: %s is not newer than the latest release %s", ErrReleaseOrder, target, latest.Version)
	}

	repo := strings.TrimRight(repoURL, "/")
	if repo == "" {
		repo = c.RepoURL
	}
	if repo == "" {
		return nil, fmt.Errorf("%w: pass the repository URL or use compare/tag links in the changelog", ErrNoRepoURL)
	}

	released := &Section{
		Version: target,
		Date:    date,
		Notices: unreleased.Notices,
	}
	for _, g := range unreleased.Groups {
		if len(g.Entries) > 0 {
			released.Groups = append(released.Groups, g)
		}
	}

	sections := make([]*Section, 0, len(c.Sections)+1)
	sections = append(sections, &Section{}, released)
	for _, s := range c.Sections {
		if s != unreleased {
			sections = append(sections, s)
		}
	}
	c.Sections = sections
	c.RepoURL = repo
	return released, nil
}
