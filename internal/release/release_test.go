// Package release tests the release pull request contract on both ends.
// Related: internal/release/finalize.go, internal/release/details.go, internal/release/event.go
// Tags: release, finalize, pull-request, github

package release

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/bumpchanges/internal/changelog"
	"github.com/ariel-frischer/bumpchanges/internal/version"
)

func mergedEvent(branch string) *Event {
	return &Event{
		Action: "closed",
		Number: 42,
		PullRequest: &PullRequest{
			Number:         42,
			State:          "closed",
			Merged:         true,
			MergeCommitSHA: "abc123",
			User:           User{Login: "github-actions[bot]", Type: "Bot"},
			Head:           Ref{Ref: branch},
		},
	}
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		event   func() *Event
		headRef string
		policy  Policy
		want    *Prepared
		wantErr bool
	}{
		"release branch": {
			event: func() *Event { return mergedEvent("automation-create-release-1.2.0") },
			want: &Prepared{
				Tag: "v1.2.0", Target: "abc123", Title: "Release 1.2.0", PRNumber: 42,
			},
		},
		"prerelease": {
			event: func() *Event { return mergedEvent("automation-create-release-2.0.0-rc.1") },
			want: &Prepared{
				Tag: "v2.0.0-rc.1", Prerelease: true, Target: "abc123", Title: "Release 2.0.0-rc.1", PRNumber: 42,
			},
		},
		"free-form version is never a prerelease": {
			event: func() *Event { return mergedEvent("automation-create-release-2024.1rc1") },
			want: &Prepared{
				Tag: "v2024.1rc1", Target: "abc123", Title: "Release 2024.1rc1", PRNumber: 42,
			},
		},
		"digit-led branch version kept verbatim": {
			event: func() *Event { return mergedEvent("automation-create-release-1.2.3(b)") },
			want: &Prepared{
				Tag: "v1.2.3(b)", Target: "abc123", Title: "Release 1.2.3(b)", PRNumber: 42,
			},
		},
		"head ref override": {
			event:   func() *Event { return mergedEvent("ignored") },
			headRef: "refs/heads/automation-create-release-1.0.1",
			want: &Prepared{
				Tag: "v1.0.1", Target: "abc123", Title: "Release 1.0.1", PRNumber: 42,
			},
		},
		"configured human actor": {
			event: func() *Event {
				ev := mergedEvent("automation-create-release-1.2.0")
				ev.PullRequest.User = User{Login: "release-manager", Type: "User"}
				return ev
			},
			policy: Policy{AutomationActors: []string{"release-manager"}},
			want: &Prepared{
				Tag: "v1.2.0", Target: "abc123", Title: "Release 1.2.0", PRNumber: 42,
			},
		},
		"feature branch": {
			event:   func() *Event { return mergedEvent("feature-foo") },
			wantErr: true,
		},
		"closed without merge": {
			event: func() *Event {
				ev := mergedEvent("automation-create-release-1.2.0")
				ev.PullRequest.Merged = false
				return ev
			},
			wantErr: true,
		},
		"still open": {
			event: func() *Event {
				ev := mergedEvent("automation-create-release-1.2.0")
				ev.PullRequest.State = "open"
				return ev
			},
			wantErr: true,
		},
		"human author": {
			event: func() *Event {
				ev := mergedEvent("automation-create-release-1.2.0")
				ev.PullRequest.User = User{Login: "mallory", Type: "User"}
				return ev
			},
			wantErr: true,
		},
		"empty version": {
			event:   func() *Event { return mergedEvent("automation-create-release-") },
			wantErr: true,
		},
		"unparseable version": {
			event:   func() *Event { return mergedEvent("automation-create-release-next") },
			wantErr: true,
		},
		"missing merge commit": {
			event: func() *Event {
				ev := mergedEvent("automation-create-release-1.2.0")
				ev.PullRequest.MergeCommitSHA = ""
				return ev
			},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Prepare(tt.event(), tt.headRef, tt.policy)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotAMergedAutomationPR)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want.Tag, got.Tag)
			assert.Equal(t, tt.want.Tag[1:], got.Version.String())
			assert.Equal(t, tt.want.Prerelease, got.Prerelease)
			assert.Equal(t, tt.want.Target, got.Target)
			assert.Equal(t, tt.want.Title, got.Title)
			assert.Equal(t, tt.want.PRNumber, got.PRNumber)
		})
	}
}

func TestPriorTag(t *testing.T) {
	t.Parallel()

	tags := []string{"v1.0.0", "v1.1.0", "v1.2.0-rc.1", "v1.2.0", "v2.0.0", "v1", "nightly"}

	tests := map[string]struct {
		version    string
		ineligible []string
		want       string
	}{
		"nearest below":           {version: "1.2.1", want: "v1.2.0"},
		"prerelease counts":       {version: "1.2.0", want: "v1.2.0-rc.1"},
		"drafts skipped":          {version: "1.2.1", ineligible: []string{"v1.2.0"}, want: "v1.2.0-rc.1"},
		"nothing older":           {version: "0.9.0", want: ""},
		"free-form has no prior":  {version: "2024.1", want: ""},
		"newer tags are excluded": {version: "1.5.0", want: "v1.2.0"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := &Prepared{Version: version.MustParse(tt.version)}
			assert.Equal(t, tt.want, p.PriorTag(tags, tt.ineligible))
		})
	}
}

func TestLoadEvent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	valid := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{
  "action": "closed",
  "number": 7,
  "pull_request": {
    "number": 7,
    "state": "closed",
    "merged": true,
    "merge_commit_sha": "deadbeef",
    "user": {"login": "github-actions[bot]", "type": "Bot"},
    "head": {"ref": "automation-create-release-1.0.0", "sha": "cafe"}
  }
}`), 0o644))

	ev, err := LoadEvent(valid)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", ev.PullRequest.MergeCommitSHA)
	assert.Equal(t, "automation-create-release-1.0.0", ev.PullRequest.Head.Ref)

	push := filepath.Join(dir, "push.json")
	require.NoError(t, os.WriteFile(push, []byte(`{"ref": "refs/heads/main"}`), 0o644))
	_, err = LoadEvent(push)
	var evErr *EventError
	assert.ErrorAs(t, err, &evErr)

	_, err = LoadEvent(filepath.Join(dir, "missing.json"))
	assert.ErrorAs(t, err, &evErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewDetails(t *testing.T) {
	t.Parallel()

	v := version.MustParse("1.2.0")
	section := &changelog.Section{
		Version: v,
		Date:    "2024-01-01",
		Groups:  []*changelog.Group{{Label: "Added", Entries: []string{"Thing"}}},
	}

	d := NewDetails(v, BumpInputs{
		Actor:           "alice",
		TriggeringActor: "bob",
		Branch:          "main",
		BumpType:        "exact",
		ExactVersion:    "1.2.0",
	}, section)

	assert.Equal(t, "Update CHANGELOG for version `1.2.0`", d.CommitMessage)
	assert.Equal(t, "Prepare for version `1.2.0`", d.PRTitle)

	want := "Update CHANGELOG in preparation for release **1.2.0**.\n\n" +
		"Merging this PR will trigger another workflow to create the release tag **v1.2.0**.\n\n" +
		"| Input | Value |\n" +
		"| ----- | ----- |\n" +
		"| Actor | @alice |\n" +
		"| Triggering Actor | @bob |\n" +
		"| Branch | `main` |\n" +
		"| Bump Type | `exact` |\n" +
		"| Exact version | 1.2.0 |\n" +
		"\n" +
		"## [1.2.0] - 2024-01-01\n\n### Added\n\n- Thing\n"
	assert.Equal(t, want, d.PRBody)
}

func TestNewDetails_SameActorAndRelativeBump(t *testing.T) {
	t.Parallel()

	d := NewDetails(version.MustParse("1.3.0"), BumpInputs{
		Actor:           "alice",
		TriggeringActor: "alice",
		Branch:          "main",
		BumpType:        "minor",
		ExactVersion:    "9.9.9",
	}, nil)

	assert.NotContains(t, d.PRBody, "Triggering Actor")
	assert.NotContains(t, d.PRBody, "Exact version")
	assert.Contains(t, d.PRBody, "| Bump Type | `minor` |\n")
}
