// Package release holds the two ends of the release pull request: the text
// the promote step puts on the pull request, and the checks and derived
// values the finalize step needs once that pull request is merged.
package release

import (
	"encoding/json"
	"fmt"
	"os"
)

// Event is the subset of a GitHub pull_request webhook payload the finalize
// step reads.
type Event struct {
	Action      string       `json:"action"`
	Number      int          `json:"number"`
	PullRequest *PullRequest `json:"pull_request"`
}

// PullRequest is the pull request object of an Event.
type PullRequest struct {
	Number         int    `json:"number"`
	State          string `json:"state"`
	Title          string `json:"title"`
	Merged         bool   `json:"merged"`
	MergeCommitSHA string `json:"merge_commit_sha"`
	User           User   `json:"user"`
	MergedBy       *User  `json:"merged_by"`
	Head           Ref    `json:"head"`
	Base           Ref    `json:"base"`
}

// User identifies a GitHub account.
type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Ref is a branch reference of a pull request.
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// EventError reports an event payload that could not be read or decoded.
type EventError struct {
	Path string
	Err  error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("reading event payload %s: %v", e.Path, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// LoadEvent reads the payload the runner stores at GITHUB_EVENT_PATH.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &EventError{Path: path, Err: err}
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, &EventError{Path: path, Err: err}
	}
	if ev.PullRequest == nil {
		return nil, &EventError{Path: path, Err: fmt.Errorf("payload has no pull_request object")}
	}
	return &ev, nil
}
