package release

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ariel-frischer/bumpchanges/internal/resolver"
	"github.com/ariel-frischer/bumpchanges/internal/version"
)

// ErrNotAMergedAutomationPR is returned when the finalize step runs for a
// pull request the release automation did not open, or one that was closed
// without merging.
var ErrNotAMergedAutomationPR = errors.New("not a merged release pull request")

// DefaultAutomationActors are the accounts trusted to open release pull
// requests when none are configured.
var DefaultAutomationActors = []string{"github-actions[bot]"}

// Policy decides which pull request authors count as the automation.
type Policy struct {
	AutomationActors []string
}

func (p Policy) trusts(u User) bool {
	actors := p.AutomationActors
	if len(actors) == 0 {
		actors = DefaultAutomationActors
	}
	return u.Type == "Bot" || slices.Contains(actors, u.Login)
}

// Prepared is everything needed to tag and publish a release after its pull
// request merged.
type Prepared struct {
	Version    *version.Version
	Tag        string
	Prerelease bool
	// Target is the merge commit the tag must point at.
	Target   string
	Title    string
	PRNumber int
}

// Prepare checks ev against the release pull request contract and derives
// the release. headRef overrides the head branch from the payload when not
// empty, matching GITHUB_HEAD_REF.
func Prepare(ev *Event, headRef string, policy Policy) (*Prepared, error) {
	pr := ev.PullRequest
	if pr == nil {
		return nil, fmt.Errorf("%w: event has no pull request", ErrNotAMergedAutomationPR)
	}
	if !pr.Merged || pr.State != "closed" {
		return nil, fmt.Errorf("%w: pull request #%d is %s and not merged", ErrNotAMergedAutomationPR, pr.Number, pr.State)
	}
	if !policy.trusts(pr.User) {
		return nil, fmt.Errorf("%w: pull request #%d was opened by %s, not by the release automation", ErrNotAMergedAutomationPR, pr.Number, pr.User.Login)
	}

	if headRef == "" {
		headRef = pr.Head.Ref
	}
	raw, ok := resolver.VersionFromBranch(headRef)
	if !ok {
		return nil, fmt.Errorf("%w: branch %q does not start with %q", ErrNotAMergedAutomationPR, headRef, resolver.BranchPrefix)
	}

	v, err := version.ParseLenient(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: branch %q: %w", ErrNotAMergedAutomationPR, headRef, err)
	}
	if pr.MergeCommitSHA == "" {
		return nil, fmt.Errorf("%w: pull request #%d has no merge commit", ErrNotAMergedAutomationPR, pr.Number)
	}

	number := pr.Number
	if number == 0 {
		number = ev.Number
	}

	return &Prepared{
		Version:    v,
		Tag:        v.Tag(),
		Prerelease: v.IsSemantic() && v.IsPrerelease(),
		Target:     pr.MergeCommitSHA,
		Title:      "Release " + v.String(),
		PRNumber:   number,
	}, nil
}

// PriorTag returns the newest semantic version tag below p.Version, the
// starting point for generated release notes. Tags in ineligible (drafts)
// are skipped. It returns "" for free-form versions or when nothing older
// exists.
func (p *Prepared) PriorTag(tags []string, ineligible []string) string {
	if !p.Version.IsSemantic() {
		return ""
	}

	var best *version.Tagged
	for _, t := range version.FromTags(tags) {
		if !t.Version.IsSemantic() || slices.Contains(ineligible, t.Tag) {
			continue
		}
		if !t.Version.LessThan(p.Version) {
			continue
		}
		if best == nil || t.Version.GreaterThan(best.Version) {
			best = &t
		}
	}
	if best == nil {
		return ""
	}
	return best.Tag
}
